package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/pkg/cache"
	"github.com/tiffinbox/tiffin/pkg/orm"
	"gorm.io/gorm"
)

// SearchCachePrefix namespaces cached restaurant listings in Redis.
const SearchCachePrefix = "restaurants:search:"

type RestaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

func (r *RestaurantRepository) WithTx(tx *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: tx}
}

func (r *RestaurantRepository) Create(ctx context.Context, rest *models.Restaurant) error {
	return r.db.WithContext(ctx).Omit("Address", "Menus").Create(rest).Error
}

// FindByID loads a restaurant without its associations.
func (r *RestaurantRepository) FindByID(ctx context.Context, id uint64) (models.Restaurant, error) {
	var rest models.Restaurant
	err := r.db.WithContext(ctx).Where("restaurant_id = ?", id).First(&rest).Error
	return rest, err
}

// FindDetailed loads a restaurant with its address and menus with items.
func (r *RestaurantRepository) FindDetailed(ctx context.Context, id uint64) (models.Restaurant, error) {
	var rest models.Restaurant
	err := orm.Use(r.db).WithContext(ctx).
		Model(&models.Restaurant{}).
		Preload("Address").
		Preload("Menus", func(db *gorm.DB) *gorm.DB { return db.Order("menu_id") }).
		Preload("Menus.MenuItems", func(db *gorm.DB) *gorm.DB { return db.Order("menu_item_id") }).
		Where("restaurant_id = ?", id).
		First(&rest)
	return rest, err
}

func (r *RestaurantRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	n, err := orm.Use(r.db).WithContext(ctx).Model(&models.Restaurant{}).Where("restaurant_id = ?", id).Count()
	return n > 0, err
}

// UsingAddress returns the restaurant located at addressID, if any.
func (r *RestaurantRepository) UsingAddress(ctx context.Context, addressID uint64) (models.Restaurant, error) {
	var rest models.Restaurant
	err := r.db.WithContext(ctx).Where("address_id = ?", addressID).First(&rest).Error
	return rest, err
}

func (r *RestaurantRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("restaurant_id = ?", id).Updates(fields).Error
}

// SetRating stores a recomputed average rating.
func (r *RestaurantRepository) SetRating(ctx context.Context, id uint64, rating decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("restaurant_id = ?", id).
		Update("rating", rating).Error
}

// Delete removes a restaurant with its menus, menu items and address. The
// rows are deleted explicitly because sqlite does not enforce the cascade.
func (r *RestaurantRepository) Delete(ctx context.Context, rest models.Restaurant) error {
	db := r.db.WithContext(ctx)
	menuIDs := db.Model(&models.Menu{}).Select("menu_id").Where("restaurant_id = ?", rest.ID)
	if err := db.Where("menu_id IN (?)", menuIDs).Delete(&models.MenuItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("restaurant_id = ?", rest.ID).Delete(&models.Menu{}).Error; err != nil {
		return err
	}
	if err := db.Where("restaurant_id = ?", rest.ID).Delete(&models.Restaurant{}).Error; err != nil {
		return err
	}
	return db.Where("address_id = ?", rest.AddressID).Delete(&models.Address{}).Error
}

// ItemImageURLs returns the stored image of every item on the restaurant's
// menus.
func (r *RestaurantRepository) ItemImageURLs(ctx context.Context, id uint64) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&models.MenuItem{}).
		Joins("JOIN menus ON menus.menu_id = menu_items.menu_id").
		Where("menus.restaurant_id = ? AND menu_items.image_url <> ''", id).
		Pluck("menu_items.image_url", &urls).Error
	return urls, err
}

// Search matches city and name as case-insensitive substrings. Results are
// read through the Redis cache for ttl.
func (r *RestaurantRepository) Search(ctx context.Context, city, name string, ttl time.Duration) ([]models.Restaurant, error) {
	city, name = strings.ToLower(strings.TrimSpace(city)), strings.ToLower(strings.TrimSpace(name))

	q := orm.Use(r.db).WithContext(ctx).
		Model(&models.Restaurant{}).
		Joins("JOIN addresses ON addresses.address_id = restaurants.address_id").
		Preload("Address").
		Order("restaurants.restaurant_id")
	if city != "" {
		q = q.Where("LOWER(addresses.city) LIKE ?", "%"+city+"%")
	}
	if name != "" {
		q = q.Where("LOWER(restaurants.name) LIKE ?", "%"+name+"%")
	}

	var out []models.Restaurant
	err := q.Cache(SearchCachePrefix+city+":"+name, ttl, &out)
	return out, err
}

// All lists every restaurant, optionally narrowed by exact state and city.
func (r *RestaurantRepository) All(ctx context.Context, state, city string) ([]models.Restaurant, error) {
	q := orm.Use(r.db).WithContext(ctx).
		Model(&models.Restaurant{}).
		Joins("JOIN addresses ON addresses.address_id = restaurants.address_id").
		Preload("Address").
		Order("restaurants.restaurant_id")
	if state != "" {
		q = q.Where("LOWER(addresses.state) = ?", strings.ToLower(state))
	}
	if city != "" {
		q = q.Where("LOWER(addresses.city) = ?", strings.ToLower(city))
	}

	var out []models.Restaurant
	err := q.Get(&out)
	return out, err
}

// ForgetSearches drops every cached listing.
func (r *RestaurantRepository) ForgetSearches() error {
	return cache.ForgetPrefix(SearchCachePrefix)
}
