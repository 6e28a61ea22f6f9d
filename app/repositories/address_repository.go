package repositories

import (
	"context"

	"github.com/tiffinbox/tiffin/app/models"
	"gorm.io/gorm"
)

type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *AddressRepository) WithTx(tx *gorm.DB) *AddressRepository {
	return &AddressRepository{db: tx}
}

func (r *AddressRepository) Create(ctx context.Context, a *models.Address) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AddressRepository) FindByID(ctx context.Context, id uint64) (models.Address, error) {
	var a models.Address
	err := r.db.WithContext(ctx).Where("address_id = ?", id).First(&a).Error
	return a, err
}

// ListByUser returns the delivery addresses owned by userID.
func (r *AddressRepository) ListByUser(ctx context.Context, userID uint64) ([]models.Address, error) {
	var out []models.Address
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("address_id").Find(&out).Error
	return out, err
}

func (r *AddressRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Address{}).Where("address_id = ?", id).Updates(fields).Error
}

func (r *AddressRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Where("address_id = ?", id).Delete(&models.Address{}).Error
}
