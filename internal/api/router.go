package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter assembles the demo routes with logging and panic recovery.
func NewRouter(h *Handlers, log *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(Recover(log), Logging(log))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")

	r.HandleFunc("/api/alerts", h.Alerts).Methods("GET")
	r.HandleFunc("/api/balance", h.Balance).Methods("GET")
	r.HandleFunc("/api/summary", h.Summary).Methods("GET")

	r.HandleFunc("/api/auth/verify-account", h.VerifyAccount).Methods("POST")
	r.HandleFunc("/api/auth/send-otp", h.SendOTP).Methods("POST")
	r.HandleFunc("/api/auth/verify-otp", h.VerifyOTP).Methods("POST")
	r.HandleFunc("/api/auth/session", h.Session).Methods("GET")
	r.HandleFunc("/api/auth/logout", h.Logout).Methods("POST")

	r.HandleFunc("/api/transactions", h.CreateTransaction).Methods("POST")
	r.HandleFunc("/api/transactions", h.ListTransactions).Methods("GET")
	r.HandleFunc("/api/notifications", h.ListNotifications).Methods("GET")
	r.HandleFunc("/api/notifications/{id}/read", h.MarkNotificationRead).Methods("POST")

	r.HandleFunc("/api/admin/reset", h.Reset).Methods("POST")

	return r
}
