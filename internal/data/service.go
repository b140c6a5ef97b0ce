// Package data is the typed facade the application uses over the collection
// store: transactions, accounts, notifications, analytics, and social
// connections.
package data

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendlens/spark/internal/model"
	"github.com/spendlens/spark/internal/store"
)

// Service exposes per-entity operations on top of the generic collections.
type Service struct {
	transactions  *store.Collection[model.Transaction, *model.Transaction]
	accounts      *store.Collection[model.Account, *model.Account]
	notifications *store.Collection[model.Notification, *model.Notification]
	analytics     *store.Collection[model.SpendingAnalytics, *model.SpendingAnalytics]
	social        *store.Collection[model.SocialConnection, *model.SocialConnection]
	log           *zap.Logger
}

// New binds the non-user collections to their storage keys.
func New(st *store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		transactions:  store.NewCollection[model.Transaction](st, model.KeyTransactions),
		accounts:      store.NewCollection[model.Account](st, model.KeyAccounts),
		notifications: store.NewCollection[model.Notification](st, model.KeyNotifications),
		analytics:     store.NewCollection[model.SpendingAnalytics](st, model.KeyAnalytics),
		social:        store.NewCollection[model.SocialConnection](st, model.KeySocialConnections),
		log:           log,
	}
}

// CreateTransaction records a money movement. It does not touch any account
// balance; the collections are unreconciled on purpose.
func (s *Service) CreateTransaction(ctx context.Context, t model.Transaction) model.Transaction {
	if t.Status == "" {
		t.Status = "completed"
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	return s.transactions.Create(ctx, t)
}

// TransactionsFor returns all transactions belonging to userID.
func (s *Service) TransactionsFor(ctx context.Context, userID string) []model.Transaction {
	return s.transactions.Find(ctx, func(t model.Transaction) bool { return t.UserID == userID })
}

// SubscribeTransactions registers a change listener on the transactions collection.
func (s *Service) SubscribeTransactions(fn func([]model.Transaction)) func() {
	return s.transactions.Subscribe(fn)
}

// CreateAccount opens an account record for a user.
func (s *Service) CreateAccount(ctx context.Context, a model.Account) model.Account {
	return s.accounts.Create(ctx, a)
}

// AccountsFor returns all accounts belonging to userID.
func (s *Service) AccountsFor(ctx context.Context, userID string) []model.Account {
	return s.accounts.Find(ctx, func(a model.Account) bool { return a.UserID == userID })
}

// AdjustBalance applies a signed delta to an account balance. Reports false
// when the account does not exist.
func (s *Service) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (model.Account, bool) {
	return s.accounts.Update(ctx, accountID, func(a *model.Account) {
		a.Balance = a.Balance.Add(delta)
	})
}

// Notify creates an unread notification for a user.
func (s *Service) Notify(ctx context.Context, userID, title, message string) model.Notification {
	return s.notifications.Create(ctx, model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Status:  model.NotificationUnread,
	})
}

// NotificationsFor returns all notifications for userID, oldest first.
func (s *Service) NotificationsFor(ctx context.Context, userID string) []model.Notification {
	return s.notifications.Find(ctx, func(n model.Notification) bool { return n.UserID == userID })
}

// MarkNotificationRead transitions a notification to read and stamps readAt.
// Marking an already-read notification keeps the original readAt.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (model.Notification, bool) {
	return s.notifications.Update(ctx, id, func(n *model.Notification) {
		if n.Status == model.NotificationRead {
			return
		}
		now := time.Now().UTC()
		n.Status = model.NotificationRead
		n.ReadAt = &now
	})
}

// UnreadCount returns how many notifications for userID are still unread.
func (s *Service) UnreadCount(ctx context.Context, userID string) int {
	return len(s.notifications.Find(ctx, func(n model.Notification) bool {
		return n.UserID == userID && n.Status == model.NotificationUnread
	}))
}

// SubscribeNotifications registers a change listener on the notifications collection.
func (s *Service) SubscribeNotifications(fn func([]model.Notification)) func() {
	return s.notifications.Subscribe(fn)
}

// RecordAnalytics appends a spending analytics datapoint.
func (s *Service) RecordAnalytics(ctx context.Context, a model.SpendingAnalytics) model.SpendingAnalytics {
	return s.analytics.Create(ctx, a)
}

// AnalyticsFor returns all analytics datapoints for userID.
func (s *Service) AnalyticsFor(ctx context.Context, userID string) []model.SpendingAnalytics {
	return s.analytics.Find(ctx, func(a model.SpendingAnalytics) bool { return a.UserID == userID })
}

// AddSocialConnection appends a connection between two users.
func (s *Service) AddSocialConnection(ctx context.Context, c model.SocialConnection) model.SocialConnection {
	if c.Status == "" {
		c.Status = "pending"
	}
	return s.social.Create(ctx, c)
}

// ConnectionsFor returns all social connections for userID.
func (s *Service) ConnectionsFor(ctx context.Context, userID string) []model.SocialConnection {
	return s.social.Find(ctx, func(c model.SocialConnection) bool { return c.UserID == userID })
}
