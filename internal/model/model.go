// Package model defines domain entities shared by the collection store and services.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Storage keys for the persisted collections and the single session slot.
// These are stable external contracts; changing one orphans stored data.
const (
	KeyUsers             = "alat-users"
	KeyTransactions      = "alat-transactions"
	KeyAccounts          = "alat-accounts"
	KeySocialConnections = "alat-social-connections"
	KeyNotifications     = "alat-notifications"
	KeyAnalytics         = "alat-analytics"
	KeySession           = "alat-session"
)

// Meta carries the generated identity and audit timestamps shared by all records.
// The collection store assigns ID and CreatedAt at creation and refreshes
// UpdatedAt on every mutation; callers never set these themselves.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordMeta exposes the embedded Meta for generic stamping by the store.
func (m *Meta) RecordMeta() *Meta { return m }

// User is an account holder. AccountNumber is the lookup identity (unique,
// 10 digits); ID is the opaque storage primary key.
type User struct {
	Meta
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	IsVerified    bool   `json:"isVerified"`
}

// DeviceInfo is best-effort metadata about the device a session was opened on.
type DeviceInfo struct {
	UserAgent string `json:"userAgent"`
	Platform  string `json:"platform"`
	IPAddress string `json:"ipAddress"`
}

// Session is the single persisted record for the currently authenticated
// user. Exactly one lives under KeySession at a time; there is no session table.
type Session struct {
	UserID       string     `json:"userId"`
	SessionID    string     `json:"sessionId"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	IsActive     bool       `json:"isActive"`
	DeviceInfo   DeviceInfo `json:"deviceInfo"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TransactionType discriminates debits from credits.
type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// Transaction is a single money movement. Creating one does not touch any
// Account balance; the two collections are deliberately unreconciled.
type Transaction struct {
	Meta
	UserID      string          `json:"userId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Merchant    string          `json:"merchant,omitempty"`
	Status      string          `json:"status"`
	Date        time.Time       `json:"date"`
}

// Account holds a balance for a user.
type Account struct {
	Meta
	UserID   string            `json:"userId"`
	Name     string            `json:"name"`
	Balance  decimal.Decimal   `json:"balance"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Notification statuses.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is a user-facing message; created unread, transitions to read once.
type Notification struct {
	Meta
	UserID  string     `json:"userId"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Status  string     `json:"status"`
	ReadAt  *time.Time `json:"readAt,omitempty"`
}

// SpendingAnalytics is an append-only analytics datapoint scoped to a user.
type SpendingAnalytics struct {
	Meta
	UserID   string          `json:"userId"`
	Period   string          `json:"period"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// SocialConnection is an append-only link between two users.
type SocialConnection struct {
	Meta
	UserID       string `json:"userId"`
	FriendUserID string `json:"friendUserId"`
	Status       string `json:"status"`
}
