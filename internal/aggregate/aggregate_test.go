package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTotalBalance(t *testing.T) {
	t.Parallel()
	g := &Aggregator{fx: fixtures{Accounts: []FixtureAccount{
		{ID: "a", Balance: dec("100.50")},
		{ID: "b", Balance: dec("199.50")},
	}}}
	if got := g.TotalBalance(); !got.Equal(dec("300")) {
		t.Fatalf("TotalBalance = %s", got)
	}
}

func TestSpendingByCategory(t *testing.T) {
	t.Parallel()
	g := &Aggregator{fx: fixtures{Transactions: []FixtureTransaction{
		{Type: "debit", Amount: dec("-75"), Category: "Food"},
		{Type: "debit", Amount: dec("-25"), Category: "Transport"},
		{Type: "credit", Amount: dec("1000"), Category: "Salary"},
	}}}
	got := g.SpendingByCategory()
	if len(got) != 2 {
		t.Fatalf("want 2 categories, got %+v", got)
	}
	// Sorted by amount descending.
	if got[0].Category != "Food" || !got[0].Amount.Equal(dec("75")) || got[0].Percent != 75 {
		t.Fatalf("food row: %+v", got[0])
	}
	if got[1].Category != "Transport" || got[1].Percent != 25 {
		t.Fatalf("transport row: %+v", got[1])
	}
}

func TestSpendingByCategory_NoDebitsYieldsZeroPercent(t *testing.T) {
	t.Parallel()
	g := &Aggregator{fx: fixtures{Transactions: []FixtureTransaction{
		{Type: "credit", Amount: dec("1000"), Category: "Salary"},
		{Type: "credit", Amount: dec("500"), Category: "Refund"},
	}}}
	got := g.SpendingByCategory()
	for _, row := range got {
		if row.Percent != 0 {
			t.Fatalf("want 0%%, got %+v", row)
		}
	}
}

func TestMonthlySpending(t *testing.T) {
	t.Parallel()
	g := &Aggregator{fx: fixtures{Transactions: []FixtureTransaction{
		{Type: "debit", Amount: dec("-10"), Date: "2025-07-03"},
		{Type: "debit", Amount: dec("-20"), Date: "2025-07-21"},
		{Type: "debit", Amount: dec("-5"), Date: "2025-08-01"},
		{Type: "credit", Amount: dec("100"), Date: "2025-07-25"},
	}}}
	got := g.MonthlySpending()
	if len(got) != 2 {
		t.Fatalf("want 2 months, got %v", got)
	}
	if !got["2025-07"].Equal(dec("30")) || !got["2025-08"].Equal(dec("5")) {
		t.Fatalf("months: %v", got)
	}
}

func TestSavingsProgress(t *testing.T) {
	t.Parallel()
	g := &Aggregator{fx: fixtures{SavingsGoals: []SavingsGoal{
		{Current: dec("30"), Target: dec("100")},
		{Current: dec("20"), Target: dec("100")},
	}}}
	if got := g.SavingsProgress(); got != 25 {
		t.Fatalf("SavingsProgress = %v", got)
	}

	empty := &Aggregator{}
	if got := empty.SavingsProgress(); got != 0 {
		t.Fatalf("zero targets: %v", got)
	}
}

func TestFixtureMutatorsAreInMemoryOnly(t *testing.T) {
	t.Parallel()
	g, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := g.MonthlySpending()["2025-09"]

	g.AddTransaction(FixtureTransaction{Type: "debit", Amount: dec("-42"), Category: "Food", Date: "2025-09-01"})
	if got := g.MonthlySpending()["2025-09"]; !got.Equal(before.Add(dec("42"))) {
		t.Fatalf("AddTransaction not visible: %s", got)
	}

	if !g.UpdateSavingsGoal("goal-1", dec("999")) {
		t.Fatalf("UpdateSavingsGoal: goal-1 missing")
	}
	if g.UpdateSavingsGoal("no-such-goal", dec("1")) {
		t.Fatalf("want false for unknown goal")
	}
	if !g.ToggleMicroAction("act-1") || g.ToggleMicroAction("nope") {
		t.Fatalf("ToggleMicroAction behavior wrong")
	}

	// A second aggregator sees the pristine fixtures: nothing was persisted.
	fresh, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v := fresh.MonthlySpending()["2025-09"]; !v.IsZero() {
		t.Fatalf("mutation leaked into fixtures: %s", v)
	}
}

func TestEmbeddedFixturesParse(t *testing.T) {
	t.Parallel()
	g, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(g.Alerts()) < 20 {
		t.Fatalf("alerts fixture too small: %d", len(g.Alerts()))
	}
	if g.TotalBalance().IsZero() {
		t.Fatalf("accounts fixture empty")
	}
	if len(g.SpendingByCategory()) == 0 {
		t.Fatalf("no debit categories in fixtures")
	}
}
