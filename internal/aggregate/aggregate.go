// Package aggregate derives presentation-ready figures from static fixture
// data. It is read-only with respect to persistence: the fixture mutators
// change in-memory state for the life of the process and nothing else. This
// is deliberately separate from the reactive collection store.
package aggregate

import (
	_ "embed"
	"encoding/json"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

//go:embed fixtures.json
var fixturesJSON []byte

// FixtureAccount is a mock account used for dashboard totals.
type FixtureAccount struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// FixtureTransaction is a mock transaction; debits carry negative amounts.
type FixtureTransaction struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Merchant string          `json:"merchant"`
	Date     string          `json:"date"` // YYYY-MM-DD
}

// SavingsGoal tracks progress toward a target amount.
type SavingsGoal struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Current decimal.Decimal `json:"current"`
	Target  decimal.Decimal `json:"target"`
}

// MicroAction is a toggleable savings suggestion.
type MicroAction struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	MonthlySaving decimal.Decimal `json:"monthlySaving"`
	Enabled       bool            `json:"enabled"`
}

// Alert is a fixture entry served by the mock alerts endpoint.
type Alert struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// CategorySpend is one row of the spending-by-category breakdown.
type CategorySpend struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  float64         `json:"percent"`
}

type fixtures struct {
	Accounts     []FixtureAccount     `json:"accounts"`
	Transactions []FixtureTransaction `json:"transactions"`
	SavingsGoals []SavingsGoal        `json:"savingsGoals"`
	MicroActions []MicroAction        `json:"microActions"`
	Alerts       []Alert              `json:"alerts"`
}

// Aggregator computes read-only summaries over the fixture set.
type Aggregator struct {
	mu sync.Mutex
	fx fixtures
}

// New parses the embedded fixtures. An error here means a broken build asset.
func New() (*Aggregator, error) {
	var fx fixtures
	if err := json.Unmarshal(fixturesJSON, &fx); err != nil {
		return nil, err
	}
	return &Aggregator{fx: fx}, nil
}

// TotalBalance sums the balance of every fixture account.
func (g *Aggregator) TotalBalance() decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := decimal.Zero
	for _, a := range g.fx.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// SpendingByCategory sums abs(amount) of every debit transaction per
// category and reports each category's share of the total. With no debits
// every percentage is zero, never NaN.
func (g *Aggregator) SpendingByCategory() []CategorySpend {
	g.mu.Lock()
	defer g.mu.Unlock()
	byCat := map[string]decimal.Decimal{}
	total := decimal.Zero
	for _, t := range g.fx.Transactions {
		if t.Type != "debit" {
			continue
		}
		amt := t.Amount.Abs()
		byCat[t.Category] = byCat[t.Category].Add(amt)
		total = total.Add(amt)
	}
	out := make([]CategorySpend, 0, len(byCat))
	for cat, amt := range byCat {
		pct := 0.0
		if !total.IsZero() {
			pct, _ = amt.Div(total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}
		out = append(out, CategorySpend{Category: cat, Amount: amt, Percent: pct})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	return out
}

// MonthlySpending groups debit amounts by the "YYYY-MM" prefix of the
// transaction date.
func (g *Aggregator) MonthlySpending() map[string]decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, t := range g.fx.Transactions {
		if t.Type != "debit" || len(t.Date) < 7 {
			continue
		}
		month := t.Date[:7]
		out[month] = out[month].Add(t.Amount.Abs())
	}
	return out
}

// SavingsProgress reports summed current amounts over summed targets as a
// percentage; zero targets yield zero.
func (g *Aggregator) SavingsProgress() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	current, target := decimal.Zero, decimal.Zero
	for _, goal := range g.fx.SavingsGoals {
		current = current.Add(goal.Current)
		target = target.Add(goal.Target)
	}
	if target.IsZero() {
		return 0
	}
	pct, _ := current.Div(target).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}

// Alerts returns a copy of the alerts fixture.
func (g *Aggregator) Alerts() []Alert {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Alert(nil), g.fx.Alerts...)
}

// AddTransaction appends a transaction to the in-memory fixture set. Not
// persisted anywhere; the next process start sees the original fixtures.
func (g *Aggregator) AddTransaction(t FixtureTransaction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fx.Transactions = append(g.fx.Transactions, t)
}

// UpdateSavingsGoal sets the current amount of a goal in memory only.
func (g *Aggregator) UpdateSavingsGoal(id string, current decimal.Decimal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.fx.SavingsGoals {
		if g.fx.SavingsGoals[i].ID == id {
			g.fx.SavingsGoals[i].Current = current
			return true
		}
	}
	return false
}

// ToggleMicroAction flips a micro-action's enabled flag in memory only.
func (g *Aggregator) ToggleMicroAction(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.fx.MicroActions {
		if g.fx.MicroActions[i].ID == id {
			g.fx.MicroActions[i].Enabled = !g.fx.MicroActions[i].Enabled
			return true
		}
	}
	return false
}
