package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"soundwars/internal/apperr"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/testutil"
	"soundwars/pkg/payment"
)

const testTxRef = "abc1234567"

func (e *env) pendingPayment(t *testing.T, userID uint) *models.Payment {
	t.Helper()
	p, err := e.paymentSvc.Initialize(context.Background(), userID, testTxRef)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return p
}

func webhookBody(event, txRef, status string, id int, amountMajor string) []byte {
	return []byte(fmt.Sprintf(`{"event":%q,"data":{"id":%d,"tx_ref":%q,"flw_ref":"FLW-%d","amount":%s,"currency":"NGN","status":%q,"payment_type":"card"}}`,
		event, id, txRef, id, amountMajor, status))
}

func TestInitializePayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "payer")
	p := e.pendingPayment(t, u.ID)
	if p.Status != domain.PaymentStatusPending || p.AmountMinor != testFee || p.Currency != testCurrency {
		t.Errorf("payment = %+v", p)
	}
	if _, err := e.paymentSvc.Initialize(ctx, u.ID, testTxRef); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("reused tx_ref: err = %v, want conflict", err)
	}
	if _, err := e.paymentSvc.Initialize(ctx, u.ID, "short"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bad tx_ref: err = %v, want validation", err)
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.artist(t, "payer", false)
	e.pendingPayment(t, a.UserID)
	e.oracle.Verdict = testutil.SuccessfulFor(testTxRef, testFee, testCurrency)

	first, err := e.paymentSvc.Verify(ctx, a.UserID, "9001", testTxRef)
	if err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	if first.Status != domain.PaymentStatusSuccessful || first.VerifiedAt == nil {
		t.Fatalf("payment = %+v", first)
	}
	e.clock.Advance(time.Hour)
	second, err := e.paymentSvc.Verify(ctx, a.UserID, "9001", testTxRef)
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}
	if !second.VerifiedAt.Equal(*first.VerifiedAt) {
		t.Errorf("verified_at moved from %v to %v", first.VerifiedAt, second.VerifiedAt)
	}
	if e.oracle.Calls() != 1 {
		t.Errorf("oracle calls = %d, want 1", e.oracle.Calls())
	}

	artist, _ := e.artists.GetByID(ctx, a.ID)
	if !artist.IsPaid || !artist.IsVerified || artist.PaymentID == nil || *artist.PaymentID != first.ID {
		t.Errorf("artist = %+v", artist)
	}
	e.notif.Wait()
	if len(e.mail.Sent()) != 1 {
		t.Errorf("emails = %d, want 1", len(e.mail.Sent()))
	}
}

func TestVerifyGatewayFailureLeavesPending(t *testing.T) {
	tests := []struct {
		name   string
		oracle func(o *testutil.Oracle)
	}{
		{"gateway error", func(o *testutil.Oracle) { o.Err = payment.ErrGateway }},
		{"gateway timeout", func(o *testutil.Oracle) {
			o.Delay = time.Second
			o.Verdict = testutil.SuccessfulFor(testTxRef, testFee, testCurrency)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.payCfg.VerifyTimeout = 20 * time.Millisecond
			ctx := context.Background()
			a := e.artist(t, "payer", false)
			e.pendingPayment(t, a.UserID)
			tt.oracle(e.oracle)

			_, err := e.paymentSvc.Verify(ctx, a.UserID, "9001", testTxRef)
			if !apperr.Is(err, apperr.KindExternalService) || !apperr.Retryable(err) {
				t.Fatalf("err = %v, want retryable external service error", err)
			}
			p, _ := e.payments.GetByTxRef(ctx, testTxRef)
			if p.Status != domain.PaymentStatusPending || p.VerifiedAt != nil || p.TransactionID != nil {
				t.Errorf("payment mutated: %+v", p)
			}
			artist, _ := e.artists.GetByID(ctx, a.ID)
			if artist.IsPaid {
				t.Error("artist marked paid")
			}
		})
	}
}

func TestVerifyRejectsMismatchedVerdict(t *testing.T) {
	tests := []struct {
		name    string
		verdict func(string) *payment.Verdict
	}{
		{"wrong amount", testutil.SuccessfulFor(testTxRef, testFee-100, testCurrency)},
		{"wrong currency", testutil.SuccessfulFor(testTxRef, testFee, "USD")},
		{"wrong reference", testutil.SuccessfulFor("someone-elses-ref", testFee, testCurrency)},
		{"not successful", func(id string) *payment.Verdict {
			v := testutil.SuccessfulFor(testTxRef, testFee, testCurrency)(id)
			v.Status = "failed"
			return v
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()
			u := e.user(t, "payer")
			e.pendingPayment(t, u.ID)
			e.oracle.Verdict = tt.verdict
			if _, err := e.paymentSvc.Verify(ctx, u.ID, "9001", testTxRef); !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
			p, _ := e.payments.GetByTxRef(ctx, testTxRef)
			if p.Status != domain.PaymentStatusPending {
				t.Errorf("status = %s, want pending", p.Status)
			}
		})
	}
}

func TestVerifyOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	thief := e.user(t, "thief")
	e.pendingPayment(t, owner.ID)
	e.oracle.Verdict = testutil.SuccessfulFor(testTxRef, testFee, testCurrency)
	if _, err := e.paymentSvc.Verify(ctx, thief.ID, "9001", testTxRef); !apperr.Is(err, apperr.KindAuthorization) {
		t.Errorf("err = %v, want authorization", err)
	}
	if _, err := e.paymentSvc.Verify(ctx, owner.ID, "9001", "unknownref123"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
	if _, err := e.paymentSvc.Status(ctx, thief.ID, testTxRef); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Status by other user: err = %v, want not found", err)
	}
}

func TestWebhookSignature(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "payer")
	e.pendingPayment(t, u.ID)
	body := webhookBody(payment.EventChargeCompleted, testTxRef, "successful", 77, "25000")

	for _, sig := range []string{"", "wrong"} {
		if err := e.paymentSvc.HandleWebhook(ctx, sig, body); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("signature %q: err = %v, want ErrInvalidSignature", sig, err)
		}
	}
	e.payCfg.WebhookHash = ""
	if err := e.paymentSvc.HandleWebhook(ctx, "", body); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("unset secret: err = %v, want ErrInvalidSignature", err)
	}
	p, _ := e.payments.GetByTxRef(ctx, testTxRef)
	if p.Status != domain.PaymentStatusPending {
		t.Errorf("status = %s after rejected webhooks", p.Status)
	}
}

func TestWebhookSettlesOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.artist(t, "payer", false)
	e.pendingPayment(t, a.UserID)
	body := webhookBody(payment.EventChargeCompleted, testTxRef, "successful", 77, "25000")

	for i := 0; i < 3; i++ {
		if err := e.paymentSvc.HandleWebhook(ctx, testHash, body); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}
	p, _ := e.payments.GetByTxRef(ctx, testTxRef)
	if p.Status != domain.PaymentStatusSuccessful || p.TransactionID == nil || *p.TransactionID != "77" {
		t.Errorf("payment = %+v", p)
	}
	var events int64
	e.db.Model(&models.WebhookEvent{}).Count(&events)
	if events != 1 {
		t.Errorf("webhook events = %d, want 1", events)
	}
	artist, _ := e.artists.GetByID(ctx, a.ID)
	if !artist.IsPaid {
		t.Error("artist not marked paid")
	}
}

func TestWebhookRetriedAfterStorageFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.artist(t, "payer", false)
	e.pendingPayment(t, a.UserID)
	body := webhookBody(payment.EventChargeCompleted, testTxRef, "successful", 80, "25000")

	failing := failUpdates(t, e.db, "payments")
	if err := e.paymentSvc.HandleWebhook(ctx, testHash, body); !errors.Is(err, errInjected) {
		t.Fatalf("first delivery err = %v, want storage error", err)
	}
	p, _ := e.payments.GetByTxRef(ctx, testTxRef)
	if p.Status != domain.PaymentStatusPending {
		t.Fatalf("status after failed delivery = %s, want pending", p.Status)
	}

	failing.Store(false)
	if err := e.paymentSvc.HandleWebhook(ctx, testHash, body); err != nil {
		t.Fatalf("retry: %v", err)
	}
	p, _ = e.payments.GetByTxRef(ctx, testTxRef)
	if p.Status != domain.PaymentStatusSuccessful {
		t.Errorf("status after retry = %s, want successful", p.Status)
	}
	artist, _ := e.artists.GetByID(ctx, a.ID)
	if !artist.IsPaid {
		t.Error("artist not marked paid after retry")
	}
	var ev models.WebhookEvent
	e.db.First(&ev)
	if ev.ProcessedAt == nil || ev.ProcessingError != "" {
		t.Errorf("event = %+v, want processed without error", ev)
	}
	if err := e.paymentSvc.HandleWebhook(ctx, testHash, body); err != nil {
		t.Errorf("third delivery: %v", err)
	}
}

func TestWebhookUnknownChargeStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "payer")
	e.pendingPayment(t, u.ID)
	body := webhookBody(payment.EventChargeCompleted, testTxRef, "100%-odd", 81, "25000")
	if err := e.paymentSvc.HandleWebhook(ctx, testHash, body); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	var ev models.WebhookEvent
	e.db.First(&ev)
	if want := `unhandled charge status "100%-odd"`; ev.ProcessingError != want {
		t.Errorf("processing error = %q, want %q", ev.ProcessingError, want)
	}
}

func TestWebhookAmountMismatchIsAcknowledged(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "payer")
	e.pendingPayment(t, u.ID)
	body := webhookBody(payment.EventChargeCompleted, testTxRef, "successful", 78, "100")
	if err := e.paymentSvc.HandleWebhook(ctx, testHash, body); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	p, _ := e.payments.GetByTxRef(ctx, testTxRef)
	if p.Status != domain.PaymentStatusPending {
		t.Errorf("status = %s, want pending", p.Status)
	}
	var ev models.WebhookEvent
	e.db.First(&ev)
	if ev.ProcessedAt == nil || ev.ProcessingError == "" {
		t.Errorf("event = %+v, want processing error recorded", ev)
	}
}

func TestWebhookFailedCharge(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "payer")
	e.pendingPayment(t, u.ID)
	body := webhookBody(payment.EventChargeCompleted, testTxRef, "failed", 79, "25000")
	if err := e.paymentSvc.HandleWebhook(ctx, testHash, body); err != nil {
		t.Fatal(err)
	}
	p, _ := e.payments.GetByTxRef(ctx, testTxRef)
	if p.Status != domain.PaymentStatusFailed {
		t.Errorf("status = %s, want failed", p.Status)
	}
	e.oracle.Verdict = testutil.SuccessfulFor(testTxRef, testFee, testCurrency)
	if _, err := e.paymentSvc.Verify(ctx, u.ID, "79", testTxRef); !apperr.Is(err, apperr.KindState) {
		t.Errorf("verify failed payment: err = %v, want state", err)
	}
}

func TestWebhookAndVerifyRace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.artist(t, "payer", false)
	e.pendingPayment(t, a.UserID)
	e.oracle.Verdict = testutil.SuccessfulFor(testTxRef, testFee, testCurrency)
	body := webhookBody(payment.EventChargeCompleted, testTxRef, "successful", 9001, "25000")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := e.paymentSvc.Verify(ctx, a.UserID, "9001", testTxRef); err != nil {
			errs <- fmt.Errorf("verify: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := e.paymentSvc.HandleWebhook(ctx, testHash, body); err != nil {
			errs <- fmt.Errorf("webhook: %w", err)
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	p, _ := e.payments.GetByTxRef(ctx, testTxRef)
	if p.Status != domain.PaymentStatusSuccessful {
		t.Errorf("status = %s", p.Status)
	}
	var settled int64
	e.db.Model(&models.AuditLog{}).Where("action = ?", "payment_successful").Count(&settled)
	if settled != 1 {
		t.Errorf("settlements recorded = %d, want 1", settled)
	}
}

func TestPaymentBeforeArtistProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "early")
	e.pendingPayment(t, u.ID)
	e.oracle.Verdict = testutil.SuccessfulFor(testTxRef, testFee, testCurrency)
	if _, err := e.paymentSvc.Verify(ctx, u.ID, "9001", testTxRef); err != nil {
		t.Fatal(err)
	}
	a, err := e.artistSvc.Create(ctx, u.ID, ArtistInput{StageName: "Early Bird"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !a.IsPaid || !a.IsVerified || a.PaymentID == nil {
		t.Errorf("artist = %+v, want paid", a)
	}
}
