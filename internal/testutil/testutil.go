package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"soundwars/config"
	"soundwars/internal/database"
	"soundwars/pkg/payment"

	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory sqlite database. A single connection keeps
// every query on the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDB(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", MaxIdleConns: 1, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Clock is a settable clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{now: t.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Oracle is a scripted payment gateway. Verdict builds the answer for a
// transaction id; Err and Delay simulate gateway trouble.
type Oracle struct {
	Verdict func(transactionID string) *payment.Verdict
	Err     error
	Delay   time.Duration

	calls atomic.Int64
}

func (o *Oracle) VerifyTransaction(ctx context.Context, transactionID string) (*payment.Verdict, error) {
	o.calls.Add(1)
	if o.Delay > 0 {
		select {
		case <-time.After(o.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if o.Err != nil {
		return nil, o.Err
	}
	return o.Verdict(transactionID), nil
}

func (o *Oracle) Calls() int64 {
	return o.calls.Load()
}

// SuccessfulFor answers every transaction as a successful charge of amount for txRef.
func SuccessfulFor(txRef string, amountMinor int64, currency string) func(string) *payment.Verdict {
	return func(transactionID string) *payment.Verdict {
		return &payment.Verdict{
			TransactionID: transactionID,
			TxRef:         txRef,
			FlwRef:        "FLW-" + transactionID,
			Status:        payment.StatusSuccessful,
			AmountMinor:   amountMinor,
			Currency:      currency,
			PaymentType:   "card",
		}
	}
}

// Mail is one message captured by Mailer.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

// Mailer records sent messages.
type Mailer struct {
	mu   sync.Mutex
	sent []Mail
}

func (m *Mailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	m.sent = append(m.sent, Mail{To: to, Subject: subject, HTML: html})
	m.mu.Unlock()
	return nil
}

func (m *Mailer) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}
