package repositories

import (
	"context"
	"database/sql"

	"github.com/tiffinbox/tiffin/app/models"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) WithTx(tx *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: tx}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

// FindOwned loads a review only if userID wrote it.
func (r *ReviewRepository) FindOwned(ctx context.Context, id, userID uint64) (models.Review, error) {
	var rv models.Review
	err := r.db.WithContext(ctx).Where("review_id = ? AND user_id = ?", id, userID).First(&rv).Error
	return rv, err
}

func (r *ReviewRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Review{}).Where("review_id = ?", id).Updates(fields).Error
}

// DeleteOwned removes a review written by userID. It reports whether a row
// matched.
func (r *ReviewRepository) DeleteOwned(ctx context.Context, id, userID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Where("review_id = ? AND user_id = ?", id, userID).Delete(&models.Review{})
	return res.RowsAffected > 0, res.Error
}

// AverageRating returns the mean rating of the restaurant's reviews. Valid
// is false when it has none.
func (r *ReviewRepository) AverageRating(ctx context.Context, restaurantID uint64) (sql.NullFloat64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(rating)").
		Where("restaurant_id = ?", restaurantID).
		Scan(&avg).Error
	return avg, err
}

func (r *ReviewRepository) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]models.Review, error) {
	var out []models.Review
	err := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Order("review_id DESC").Find(&out).Error
	return out, err
}
