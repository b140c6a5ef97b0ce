// Package auth implements the demo session manager: account verification,
// OTP issuance, and the single persisted session slot.
//
// Verification here is intentionally permissive: any well-formed 10-digit
// account number "exists" and any 6-digit OTP is accepted. That is the
// product's demo contract, not an oversight; see the repository design notes.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spendlens/spark/internal/model"
	"github.com/spendlens/spark/internal/storage"
	"github.com/spendlens/spark/internal/store"
)

// Defaults for session lifetime and the simulated network latency.
const (
	DefaultSessionTTL  = 24 * time.Hour
	DefaultVerifyDelay = 2 * time.Second
	DefaultOTPDelay    = 1500 * time.Millisecond
)

// VerifyResult reports whether an account number resolves to a user and, if
// so, the masked email the UI should display.
type VerifyResult struct {
	Exists      bool   `json:"exists"`
	MaskedEmail string `json:"maskedEmail,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithSessionTTL overrides the 24h session lifetime.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) { s.sessionTTL = d }
}

// WithDelays overrides the simulated latency for account verification and
// OTP sending. Tests pass zero.
func WithDelays(verify, otp time.Duration) Option {
	return func(s *Service) { s.verifyDelay, s.otpDelay = verify, otp }
}

// Service manages the verification flow and the current session. It keeps
// the authenticated user in memory and mirrors the session to the single
// persisted slot under model.KeySession.
type Service struct {
	users   *store.Collection[model.User, *model.User]
	adapter *storage.Adapter
	signKey []byte
	log     *zap.Logger

	sessionTTL  time.Duration
	verifyDelay time.Duration
	otpDelay    time.Duration

	mu      sync.Mutex
	curUser *model.User
	curSess *model.Session
}

// NewService constructs the session manager. signKey signs access tokens.
func NewService(st *store.Store, signKey []byte, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		users:       store.NewCollection[model.User](st, model.KeyUsers),
		adapter:     st.Adapter(),
		signKey:     signKey,
		log:         log,
		sessionTTL:  DefaultSessionTTL,
		verifyDelay: DefaultVerifyDelay,
		otpDelay:    DefaultOTPDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyAccountNumber checks the account-entry step. Any well-formed
// 10-digit number is treated as existing; when no user record exists yet a
// deterministic placeholder email is synthesized from the last four digits.
func (s *Service) VerifyAccountNumber(ctx context.Context, accountNumber string) VerifyResult {
	s.sleep(ctx, s.verifyDelay)
	if !allDigits(accountNumber, 10) {
		return VerifyResult{Exists: false}
	}
	email := s.emailFor(ctx, accountNumber)
	return VerifyResult{Exists: true, MaskedEmail: MaskEmail(email)}
}

// SendOTP simulates OTP delivery. Nothing is sent; the call succeeds for any
// well-formed account number and email after the simulated delay.
func (s *Service) SendOTP(ctx context.Context, accountNumber, email string) bool {
	s.sleep(ctx, s.otpDelay)
	if !allDigits(accountNumber, 10) || !strings.Contains(email, "@") {
		return false
	}
	s.log.Info("otp issued", zap.String("account", accountNumber))
	return true
}

// VerifyOTP accepts any 6-digit code for a well-formed account number. On
// success it finds or creates the user, opens a fresh session in the
// persisted slot, and returns the user. Failure is reported via false.
func (s *Service) VerifyOTP(ctx context.Context, accountNumber, otp string) (*model.User, bool) {
	if !allDigits(accountNumber, 10) || !allDigits(otp, 6) {
		return nil, false
	}
	user := s.findOrCreateUser(ctx, accountNumber)
	sess := s.newSession(user.ID)
	storage.WriteValue(ctx, s.adapter, model.KeySession, sess)

	s.mu.Lock()
	s.curUser = &user
	s.curSess = &sess
	s.mu.Unlock()

	s.log.Info("session opened",
		zap.String("userId", user.ID),
		zap.String("sessionId", sess.SessionID),
		zap.Time("expiresAt", sess.ExpiresAt),
	)
	return &user, true
}

// CheckSession resolves the persisted session to a user. An absent slot
// yields nil; an expired session triggers logout cleanup and yields nil; a
// session whose user vanished from the store yields nil without touching
// the stale slot.
func (s *Service) CheckSession(ctx context.Context) *model.User {
	sess, ok := storage.ReadValue[model.Session](ctx, s.adapter, model.KeySession)
	if !ok || !sess.IsActive {
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		s.Logout(ctx)
		return nil
	}
	matches := s.users.Find(ctx, func(u model.User) bool { return u.ID == sess.UserID })
	if len(matches) == 0 {
		return nil
	}
	user := matches[0]
	s.mu.Lock()
	s.curUser = &user
	s.curSess = &sess
	s.mu.Unlock()
	return &user
}

// Logout clears the in-memory user/session and removes the persisted slot.
// Calling it while logged out is a no-op.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	s.curUser = nil
	s.curSess = nil
	s.mu.Unlock()
	s.adapter.Delete(ctx, model.KeySession)
}

// CurrentUser returns the in-memory authenticated user, if any. No I/O.
func (s *Service) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curUser == nil {
		return nil
	}
	u := *s.curUser
	return &u
}

// CurrentSession returns the in-memory session, if any. No I/O.
func (s *Service) CurrentSession() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curSess == nil {
		return nil
	}
	c := *s.curSess
	return &c
}

func (s *Service) emailFor(ctx context.Context, accountNumber string) string {
	matches := s.users.Find(ctx, func(u model.User) bool { return u.AccountNumber == accountNumber })
	if len(matches) > 0 && matches[0].Email != "" {
		return matches[0].Email
	}
	return "user" + accountNumber[len(accountNumber)-4:] + "@email.com"
}

func (s *Service) findOrCreateUser(ctx context.Context, accountNumber string) model.User {
	matches := s.users.Find(ctx, func(u model.User) bool { return u.AccountNumber == accountNumber })
	if len(matches) > 0 {
		return matches[0]
	}
	return s.users.Create(ctx, model.User{
		AccountNumber: accountNumber,
		Email:         "user" + accountNumber[len(accountNumber)-4:] + "@email.com",
		IsVerified:    true,
	})
}

func (s *Service) newSession(userID string) model.Session {
	now := time.Now().UTC()
	exp := now.Add(s.sessionTTL)
	access, err := s.issueAccessToken(userID, now, exp)
	if err != nil {
		// Signing only fails on a broken key; fall back to an opaque token
		// so the demo session still works.
		s.log.Warn("access token signing failed", zap.Error(err))
		access = randomToken()
	}
	host, _ := os.Hostname()
	return model.Session{
		UserID:       userID,
		SessionID:    uuid.Must(uuid.NewV4()).String(),
		AccessToken:  access,
		RefreshToken: randomToken(),
		ExpiresAt:    exp,
		IsActive:     true,
		DeviceInfo: model.DeviceInfo{
			UserAgent: "sparkd/" + runtime.Version(),
			Platform:  runtime.GOOS,
			IPAddress: host,
		},
		CreatedAt: now,
	}
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *Service) issueAccessToken(userID string, now, exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.signKey)
}

// randomToken returns an opaque 64-hex-char token from crypto/rand.
func randomToken() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return hex.EncodeToString(b[:])
}

// sleep waits for the configured simulated latency. Cancellation only cuts
// the wait short; the operation itself always completes.
func (s *Service) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// MaskEmail redacts the local part of an email, keeping the first two and
// last two characters and replacing the middle with one '*' per hidden
// character. Local parts of four characters or fewer get no stars; the
// boundary characters may overlap rather than panic.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at:]
	n := len(local)
	head := local
	if n > 2 {
		head = local[:2]
	}
	tail := local
	if n > 2 {
		tail = local[n-2:]
	}
	stars := n - 4
	if stars < 0 {
		stars = 0
	}
	return head + strings.Repeat("*", stars) + tail + domain
}

// allDigits reports whether s is exactly n ASCII digits.
func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
