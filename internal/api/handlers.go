// Package api exposes the demo HTTP surface: the randomized mock endpoints
// the dashboard polls plus the auth and data flows backed by the collection
// store.
package api

import (
	"encoding/json"
	"math/rand"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendlens/spark/internal/aggregate"
	"github.com/spendlens/spark/internal/auth"
	"github.com/spendlens/spark/internal/data"
	"github.com/spendlens/spark/internal/model"
	"github.com/spendlens/spark/internal/store"
)

// Handlers bundles the services the routes need.
type Handlers struct {
	auth *auth.Service
	data *data.Service
	agg  *aggregate.Aggregator
	st   *store.Store
	log  *zap.Logger
}

// NewHandlers wires the route handlers to their services.
func NewHandlers(a *auth.Service, d *data.Service, g *aggregate.Aggregator, st *store.Store, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{auth: a, data: d, agg: g, st: st, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Alerts returns a shuffled random subset of up to 20 fixture alerts.
// Deliberately non-deterministic; clients must not assert exact contents.
func (h *Handlers) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.agg.Alerts()
	rand.Shuffle(len(alerts), func(i, j int) { alerts[i], alerts[j] = alerts[j], alerts[i] })
	if len(alerts) > 20 {
		alerts = alerts[:20]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// Balance returns randomized balance and spending figures, recomputed on
// every call. No persistence, no determinism.
func (h *Handlers) Balance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":         100_000 + rand.Float64()*900_000,
		"monthlySpending": 20_000 + rand.Float64()*180_000,
		"savingsRate":     5 + rand.Float64()*35,
		"currency":        "NGN",
	})
}

// Summary serves the fixture-derived dashboard aggregates.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"totalBalance":       h.agg.TotalBalance(),
		"spendingByCategory": h.agg.SpendingByCategory(),
		"monthlySpending":    h.agg.MonthlySpending(),
		"savingsProgress":    h.agg.SavingsProgress(),
	})
}

type verifyAccountRequest struct {
	AccountNumber string `json:"accountNumber"`
}

// VerifyAccount runs the account-entry step of the login flow.
func (h *Handlers) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	var req verifyAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.auth.VerifyAccountNumber(r.Context(), req.AccountNumber))
}

type sendOTPRequest struct {
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email"`
}

// SendOTP runs the OTP-issuance step.
func (h *Handlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	ok := h.auth.SendOTP(r.Context(), req.AccountNumber, req.Email)
	writeJSON(w, http.StatusOK, map[string]bool{"sent": ok})
}

type verifyOTPRequest struct {
	AccountNumber string `json:"accountNumber"`
	OTP           string `json:"otp"`
}

// VerifyOTP completes login and opens the session.
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	user, ok := h.auth.VerifyOTP(r.Context(), req.AccountNumber, req.OTP)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// Session resolves the persisted session to its user, or 401.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CheckSession(r.Context())
	if user == nil {
		http.Error(w, "no active session", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"session": h.auth.CurrentSession(),
	})
}

// Logout clears the session; always a 204, even when already logged out.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type createTransactionRequest struct {
	UserID   string          `json:"userId"`
	Type     string          `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Category string          `json:"category"`
	Merchant string          `json:"merchant"`
}

// CreateTransaction appends a transaction for the given user.
func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	txType := model.TransactionType(req.Type)
	if txType != model.TypeDebit && txType != model.TypeCredit {
		http.Error(w, "type must be debit or credit", http.StatusBadRequest)
		return
	}
	tx := h.data.CreateTransaction(r.Context(), model.Transaction{
		UserID:   req.UserID,
		Type:     txType,
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
		Merchant: req.Merchant,
	})
	writeJSON(w, http.StatusCreated, tx)
}

// ListTransactions returns transactions for the userId query parameter.
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	writeJSON(w, http.StatusOK, h.data.TransactionsFor(r.Context(), userID))
}

// ListNotifications returns notifications for the userId query parameter.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	writeJSON(w, http.StatusOK, h.data.NotificationsFor(r.Context(), userID))
}

// MarkNotificationRead transitions one notification to read.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	n, ok := h.data.MarkNotificationRead(r.Context(), id)
	if !ok {
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Reset wipes every collection and the session. Demo convenience.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	h.st.ClearAll(r.Context())
	h.auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
