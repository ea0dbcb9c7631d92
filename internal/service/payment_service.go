package service

import (
	"context"
	"encoding/json"
	"errors"

	"soundwars/config"
	"soundwars/internal/apperr"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/repository"
	"soundwars/internal/validate"
	"soundwars/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type PaymentService struct {
	db          *gorm.DB
	cfg         *config.PaymentConfig
	oracle      payment.Oracle
	paymentRepo *repository.PaymentRepository
	artistRepo  *repository.ArtistRepository
	userRepo    *repository.UserRepository
	eventRepo   *repository.WebhookEventRepository
	auditRepo   *repository.AuditLogRepository
	notif       *NotificationService
	clock       Clock
	log         *zap.Logger
}

func NewPaymentService(
	db *gorm.DB,
	cfg *config.PaymentConfig,
	oracle payment.Oracle,
	paymentRepo *repository.PaymentRepository,
	artistRepo *repository.ArtistRepository,
	userRepo *repository.UserRepository,
	eventRepo *repository.WebhookEventRepository,
	auditRepo *repository.AuditLogRepository,
	notif *NotificationService,
	clock Clock,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:          db,
		cfg:         cfg,
		oracle:      oracle,
		paymentRepo: paymentRepo,
		artistRepo:  artistRepo,
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		auditRepo:   auditRepo,
		notif:       notif,
		clock:       clock,
		log:         log,
	}
}

// Initialize records a pending registration payment under a client-chosen reference.
func (s *PaymentService) Initialize(ctx context.Context, userID uint, txRef string) (*models.Payment, error) {
	if err := validate.TxRef(txRef); err != nil {
		return nil, err
	}
	if _, err := s.paymentRepo.GetByTxRef(ctx, txRef); err == nil {
		return nil, apperr.Conflict("transaction reference already used")
	} else if !isNotFound(err) {
		return nil, err
	}
	p := &models.Payment{
		UserID:      userID,
		TxRef:       txRef,
		AmountMinor: s.cfg.FeeMinor(),
		Currency:    s.cfg.Currency,
		Status:      domain.PaymentStatusPending,
		Purpose:     domain.PaymentPurposeArtistRegistration,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, conflictOr(err, apperr.Conflict("transaction reference already used"))
	}
	return p, nil
}

// Verify asks the gateway about transactionID and settles the matching pending
// payment. Verifying a settled payment returns it unchanged.
func (s *PaymentService) Verify(ctx context.Context, userID uint, transactionID, txRef string) (*models.Payment, error) {
	if transactionID == "" {
		return nil, apperr.Validation("transaction_id is required")
	}
	if err := validate.TxRef(txRef); err != nil {
		return nil, err
	}
	p, err := s.paymentRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		return nil, notFound(err, "payment")
	}
	if p.UserID != userID {
		return nil, apperr.Forbidden("payment belongs to another user")
	}
	switch p.Status {
	case domain.PaymentStatusSuccessful:
		return p, nil
	case domain.PaymentStatusFailed:
		return nil, apperr.State("payment already marked failed")
	}

	oracleCtx, cancel := context.WithTimeout(ctx, s.cfg.VerifyTimeout)
	defer cancel()
	verdict, err := s.oracle.VerifyTransaction(oracleCtx, transactionID)
	if err != nil {
		s.log.Warn("payment verification failed", zap.String("tx_ref", txRef), zap.Error(err))
		return nil, apperr.External(err, "payment verification unavailable, please retry")
	}
	if !verdict.Successful() {
		return nil, apperr.Validation("payment not successful").With("gateway_status", verdict.Status)
	}
	if err := s.checkVerdict(p, verdict); err != nil {
		return nil, err
	}
	return s.settle(ctx, p, verdict, "verify")
}

func (s *PaymentService) checkVerdict(p *models.Payment, v *payment.Verdict) error {
	if v.TxRef != p.TxRef {
		return apperr.Validation("transaction does not match payment reference")
	}
	if v.AmountMinor != p.AmountMinor || v.Currency != p.Currency {
		return apperr.Validation("invalid payment amount").
			With("expected_amount_minor", p.AmountMinor).
			With("expected_currency", p.Currency)
	}
	return nil
}

// settle moves p from pending to successful and unlocks the artist profile,
// both only if this caller won the pending -> successful transition.
func (s *PaymentService) settle(ctx context.Context, p *models.Payment, v *payment.Verdict, source string) (*models.Payment, error) {
	now := s.clock.Now()
	var applied bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.paymentRepo.WithTx(tx).MarkSuccessful(ctx, p.TxRef, repository.Settlement{
			TransactionID: v.TransactionID,
			FlwRef:        v.FlwRef,
			PaymentType:   v.PaymentType,
			At:            now,
		})
		if err != nil {
			return conflictOr(err, apperr.Conflict("gateway transaction already applied to another payment"))
		}
		if n == 0 {
			return nil
		}
		applied = true
		_, err = s.artistRepo.WithTx(tx).MarkPaid(ctx, p.UserID, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	current, err := s.paymentRepo.GetByTxRef(ctx, p.TxRef)
	if err != nil {
		return nil, err
	}
	if !applied {
		if current.Status != domain.PaymentStatusSuccessful {
			return nil, apperr.State("payment already marked %s", current.Status)
		}
		return current, nil
	}
	s.log.Info("payment settled", zap.String("tx_ref", p.TxRef), zap.String("source", source),
		zap.String("transaction_id", v.TransactionID))
	s.audit(ctx, current, "payment_successful", source)
	if u, err := s.userRepo.GetByID(ctx, p.UserID); err == nil {
		s.notif.PaymentConfirmed(u.Email, u.Username, p.TxRef)
	}
	return current, nil
}

func (s *PaymentService) audit(ctx context.Context, p *models.Payment, action, source string) {
	meta, _ := json.Marshal(map[string]interface{}{"source": source, "status": p.Status, "amount_minor": p.AmountMinor})
	userID := p.UserID
	err := s.auditRepo.Create(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "payment",
		ResourceID: p.TxRef,
		Metadata:   datatypes.JSON(meta),
	})
	if err != nil {
		s.log.Warn("audit log write failed", zap.String("tx_ref", p.TxRef), zap.Error(err))
	}
}

// HandleWebhook authenticates and applies a gateway callback. Duplicate and
// irrelevant deliveries are acknowledged without effect.
func (s *PaymentService) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	if !payment.VerifyHash(signature, s.cfg.WebhookHash) {
		return ErrInvalidSignature
	}
	ev, verdict, err := payment.ParseWebhook(body)
	if err != nil {
		return apperr.Validation("malformed webhook payload")
	}
	record := &models.WebhookEvent{
		Provider:        domain.PaymentProviderFlutterwave,
		ProviderEventID: ev.Event + ":" + verdict.TransactionID,
		EventType:       ev.Event,
		TxRef:           verdict.TxRef,
		Payload:         datatypes.JSON(body),
	}
	fresh, err := s.eventRepo.Record(ctx, record)
	if err != nil {
		return err
	}
	if !fresh {
		s.log.Info("duplicate webhook ignored", zap.String("event_id", record.ProviderEventID))
		return nil
	}
	procErr := s.applyWebhook(ctx, ev.Event, verdict)
	if procErr != nil && !isBusinessError(procErr) {
		// left unprocessed so the gateway's retry is applied again
		s.log.Error("webhook apply failed", zap.String("tx_ref", verdict.TxRef), zap.Error(procErr))
		return procErr
	}
	if procErr != nil {
		s.log.Warn("webhook not applied", zap.String("tx_ref", verdict.TxRef), zap.Error(procErr))
	}
	return s.eventRepo.MarkProcessed(ctx, record.ID, s.clock.Now(), procErr)
}

func isBusinessError(err error) bool {
	return apperr.KindOf(err) != ""
}

func (s *PaymentService) applyWebhook(ctx context.Context, event string, v *payment.Verdict) error {
	if event != payment.EventChargeCompleted {
		return nil
	}
	p, err := s.paymentRepo.GetByTxRef(ctx, v.TxRef)
	if err != nil {
		return notFound(err, "payment")
	}
	if p.Status != domain.PaymentStatusPending {
		return nil
	}
	switch v.Status {
	case payment.StatusSuccessful:
		if err := s.checkVerdict(p, v); err != nil {
			return err
		}
		_, err := s.settle(ctx, p, v, "webhook")
		return err
	case "failed":
		n, err := s.paymentRepo.MarkFailed(ctx, p.TxRef)
		if err != nil {
			return err
		}
		if n == 1 {
			p.Status = domain.PaymentStatusFailed
			s.audit(ctx, p, "payment_failed", "webhook")
		}
		return nil
	default:
		return apperr.Validation("unhandled charge status %q", v.Status)
	}
}

// Status returns one of the caller's payments.
func (s *PaymentService) Status(ctx context.Context, userID uint, txRef string) (*models.Payment, error) {
	p, err := s.paymentRepo.GetByTxRef(ctx, txRef)
	if err != nil || p.UserID != userID {
		if err == nil || isNotFound(err) {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, err
	}
	return p, nil
}
