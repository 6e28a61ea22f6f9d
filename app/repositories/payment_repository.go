package repositories

import (
	"context"

	"github.com/tiffinbox/tiffin/app/models"
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

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Where("payment_id = ?", id).First(&p).Error
	return p, err
}

// Complete records the gateway's payment id against a verified payment.
func (r *PaymentRepository) Complete(ctx context.Context, id, transactionID string) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("payment_id = ?", id).
		Updates(map[string]any{"payment_status": models.PaymentCompleted, "transaction_id": transactionID}).Error
}
