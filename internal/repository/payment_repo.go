package repository

import (
	"context"
	"time"

	"soundwars/internal/domain"
	"soundwars/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByTxRef(ctx context.Context, txRef string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Where("tx_ref = ?", txRef).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Settlement is what the gateway told us about a transaction.
type Settlement struct {
	TransactionID string
	FlwRef        string
	PaymentType   string
	At            time.Time
}

// MarkSuccessful flips a pending payment to successful. It affects zero rows
// when another request already reconciled it.
func (r *PaymentRepository) MarkSuccessful(ctx context.Context, txRef string, s Settlement) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("tx_ref = ? AND status = ?", txRef, domain.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         domain.PaymentStatusSuccessful,
			"transaction_id": s.TransactionID,
			"flw_ref":        s.FlwRef,
			"payment_type":   s.PaymentType,
			"verified_at":    s.At,
		})
	return res.RowsAffected, res.Error
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, txRef string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("tx_ref = ? AND status = ?", txRef, domain.PaymentStatusPending).
		Update("status", domain.PaymentStatusFailed)
	return res.RowsAffected, res.Error
}

// LatestSuccessfulForUser returns the user's newest successful payment.
func (r *PaymentRepository) LatestSuccessfulForUser(ctx context.Context, userID uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.PaymentStatusSuccessful).
		Order("verified_at DESC").First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
