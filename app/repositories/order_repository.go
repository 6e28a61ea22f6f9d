package repositories

import (
	"context"
	"time"

	"github.com/tiffinbox/tiffin/app/models"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create inserts the order row only. Items are written by CreateItems so the
// caller controls both inside one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("OrderItems").Create(o).Error
}

func (r *OrderRepository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindByID loads an order with its items.
func (r *OrderRepository) FindByID(ctx context.Context, id uint64) (models.Order, error) {
	var o models.Order
	err := r.withItems(ctx).Where("order_id = ?", id).First(&o).Error
	return o, err
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uint64) ([]models.Order, error) {
	var out []models.Order
	err := r.withItems(ctx).Where("user_id = ?", userID).Order("order_id DESC").Find(&out).Error
	return out, err
}

func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]models.Order, error) {
	var out []models.Order
	err := r.withItems(ctx).Where("restaurant_id = ?", restaurantID).Order("order_id DESC").Find(&out).Error
	return out, err
}

// CreatedSince returns the restaurant's orders created at or after since,
// without items.
func (r *OrderRepository) CreatedSince(ctx context.Context, restaurantID uint64, since time.Time) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Select("order_id", "total_amount", "payment_status", "created_at").
		Where("restaurant_id = ? AND created_at >= ?", restaurantID, since).
		Find(&out).Error
	return out, err
}

// SetStatus writes a new status. Leaving Pending also disarms the
// auto-cancel deadline.
func (r *OrderRepository) SetStatus(ctx context.Context, id uint64, status string) error {
	fields := map[string]any{"order_status": status}
	if status != models.StatusPending {
		fields["cancel_at"] = nil
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("order_id = ?", id).Updates(fields).Error
}

// MarkPaid flags the order Paid and disarms its deadline. A cancelled order
// is left alone and ok is false.
func (r *OrderRepository) MarkPaid(ctx context.Context, id uint64) (ok bool, err error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Order{}).
		Where("order_id = ? AND order_status <> ?", id, models.StatusCancelled).
		Updates(map[string]any{"payment_status": models.PaymentPaid, "cancel_at": nil})
	if res.Error != nil || res.RowsAffected > 0 {
		return res.Error == nil, res.Error
	}
	// MySQL counts unchanged rows as unaffected, so tell an order that was
	// already Paid apart from a cancelled one.
	var n int64
	err = db.Model(&models.Order{}).
		Where("order_id = ? AND order_status <> ? AND payment_status = ?", id, models.StatusCancelled, models.PaymentPaid).
		Count(&n).Error
	return n > 0, err
}

// DueForCancel returns the Pending orders whose deadline is at or before
// now, without items.
func (r *OrderRepository) DueForCancel(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Select("order_id", "user_id", "restaurant_id", "total_amount", "order_status", "payment_status").
		Where("order_status = ? AND cancel_at IS NOT NULL AND cancel_at <= ?", models.StatusPending, now).
		Order("order_id").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CancelIfDue cancels one order if it is still Pending and due. The
// conditions are repeated in the statement so a concurrent status change,
// payment or second sweeper wins; ok reports whether this call cancelled it.
func (r *OrderRepository) CancelIfDue(ctx context.Context, id uint64, now time.Time) (ok bool, err error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ? AND order_status = ? AND cancel_at IS NOT NULL AND cancel_at <= ?", id, models.StatusPending, now).
		Updates(map[string]any{"order_status": models.StatusCancelled, "cancel_at": nil})
	return res.RowsAffected == 1, res.Error
}

func (r *OrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_item_id")
	})
}
