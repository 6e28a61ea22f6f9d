package repositories

import (
	"context"

	"github.com/tiffinbox/tiffin/app/models"
	"gorm.io/gorm"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) WithTx(tx *gorm.DB) *MenuRepository {
	return &MenuRepository{db: tx}
}

func (r *MenuRepository) Create(ctx context.Context, m *models.Menu) error {
	return r.db.WithContext(ctx).Omit("MenuItems").Create(m).Error
}

func (r *MenuRepository) FindByID(ctx context.Context, id uint64) (models.Menu, error) {
	var m models.Menu
	err := r.db.WithContext(ctx).Where("menu_id = ?", id).First(&m).Error
	return m, err
}

// ListByRestaurant returns the restaurant's menus with their items.
func (r *MenuRepository) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]models.Menu, error) {
	var out []models.Menu
	err := r.db.WithContext(ctx).
		Preload("MenuItems", func(db *gorm.DB) *gorm.DB { return db.Order("menu_item_id") }).
		Where("restaurant_id = ?", restaurantID).
		Order("menu_id").
		Find(&out).Error
	return out, err
}

func (r *MenuRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Menu{}).Where("menu_id = ?", id).Updates(fields).Error
}

// Delete removes a menu and its items.
func (r *MenuRepository) Delete(ctx context.Context, id uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("menu_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
		return err
	}
	return db.Where("menu_id = ?", id).Delete(&models.Menu{}).Error
}

// ImageURLs returns the stored image of every item on the menu.
func (r *MenuRepository) ImageURLs(ctx context.Context, menuID uint64) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("menu_id = ? AND image_url <> ''", menuID).
		Pluck("image_url", &urls).Error
	return urls, err
}

func (r *MenuRepository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *MenuRepository) FindItem(ctx context.Context, id uint64) (models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).Where("menu_item_id = ?", id).First(&item).Error
	return item, err
}

// FindItems loads the items with the given ids in one query.
func (r *MenuRepository) FindItems(ctx context.Context, ids []uint64) ([]models.MenuItem, error) {
	var out []models.MenuItem
	err := r.db.WithContext(ctx).Where("menu_item_id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *MenuRepository) UpdateItem(ctx context.Context, id uint64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("menu_item_id = ?", id).Updates(fields).Error
}

func (r *MenuRepository) DeleteItem(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Where("menu_item_id = ?", id).Delete(&models.MenuItem{}).Error
}
