package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"gorm.io/gorm"
)

type RestaurantService struct {
	db          *gorm.DB
	restaurants *repositories.RestaurantRepository
	addresses   *repositories.AddressRepository
	cacheTTL    time.Duration
}

func NewRestaurantService(db *gorm.DB) *RestaurantService {
	return &RestaurantService{
		db:          db,
		restaurants: repositories.NewRestaurantRepository(db),
		addresses:   repositories.NewAddressRepository(db),
		cacheTTL:    config.RestaurantCacheTTL(),
	}
}

// Create registers a restaurant and its address in one transaction. A
// customer who registers a restaurant becomes an owner.
func (s *RestaurantService) Create(ctx context.Context, ownerID uint64, in requests.CreateRestaurant) (models.Restaurant, error) {
	addr := addressFrom(in.Address)
	rest := models.Restaurant{
		UserID:         ownerID,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Cuisines:       in.Cuisines,
		Email:          normalizeEmail(in.Email),
		OpeningHours:   in.OpeningHours,
		ClosingHour:    in.ClosingHours,
		PhoneNumber:    in.PhoneNumber,
		RestaurantType: in.RestaurantType,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.addresses.WithTx(tx).Create(ctx, &addr); err != nil {
			return fmt.Errorf("create address: %w", err)
		}
		rest.AddressID = addr.ID
		if err := s.restaurants.WithTx(tx).Create(ctx, &rest); err != nil {
			return fmt.Errorf("create restaurant: %w", err)
		}
		return tx.Model(&models.User{}).
			Where("user_id = ? AND user_type = ?", ownerID, models.RoleCustomer).
			Update("user_type", models.RoleOwner).Error
	})
	if err != nil {
		return models.Restaurant{}, err
	}

	s.forgetSearches(ctx)
	rest.Address = &addr
	return rest, nil
}

// Detail returns a restaurant with its address and menus.
func (s *RestaurantService) Detail(ctx context.Context, id uint64) (models.Restaurant, error) {
	rest, err := s.restaurants.FindDetailed(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Restaurant{}, apperr.NotFound("Restaurant not found")
	}
	return rest, err
}

// Owned loads a restaurant and checks userID owns it.
func (s *RestaurantService) Owned(ctx context.Context, id, userID uint64) (models.Restaurant, error) {
	rest, err := s.restaurants.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Restaurant{}, apperr.NotFound("Restaurant not found")
	}
	if err != nil {
		return models.Restaurant{}, err
	}
	if rest.UserID != userID {
		return models.Restaurant{}, apperr.Forbidden("You are not the owner of this restaurant")
	}
	return rest, nil
}

func (s *RestaurantService) Update(ctx context.Context, id, userID uint64, in requests.UpdateRestaurant) (models.Restaurant, error) {
	if _, err := s.Owned(ctx, id, userID); err != nil {
		return models.Restaurant{}, err
	}

	fields := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	set("name", in.Name)
	set("phone_number", in.PhoneNumber)
	set("opening_hours", in.OpeningHours)
	set("closing_hour", in.ClosingHours)
	set("description", in.Description)
	set("cuisines", in.Cuisines)
	set("restaurant_type", in.RestaurantType)
	if in.Email != nil {
		fields["email"] = normalizeEmail(*in.Email)
	}

	if len(fields) > 0 {
		if err := s.restaurants.Update(ctx, id, fields); err != nil {
			return models.Restaurant{}, fmt.Errorf("update restaurant: %w", err)
		}
		s.forgetSearches(ctx)
	}
	return s.Detail(ctx, id)
}

// Delete removes the restaurant with its menus, items, item images and
// address.
func (s *RestaurantService) Delete(ctx context.Context, id, userID uint64) (models.Restaurant, error) {
	rest, err := s.Owned(ctx, id, userID)
	if err != nil {
		return models.Restaurant{}, err
	}
	images, err := s.restaurants.ItemImageURLs(ctx, id)
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("list item images: %w", err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.restaurants.WithTx(tx).Delete(ctx, rest)
	})
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("delete restaurant: %w", err)
	}
	s.forgetSearches(ctx)
	deleteImages(ctx, images...)
	return rest, nil
}

// UpdateAddress edits an address. The caller must own it directly or own
// the restaurant located there.
func (s *RestaurantService) UpdateAddress(ctx context.Context, addressID, userID uint64, in requests.UpdateAddress) (models.Address, error) {
	addr, err := s.addresses.FindByID(ctx, addressID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Address{}, apperr.NotFound("Address not found")
	}
	if err != nil {
		return models.Address{}, err
	}

	allowed := addr.UserID != nil && *addr.UserID == userID
	if !allowed {
		rest, err := s.restaurants.UsingAddress(ctx, addressID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Address{}, err
		}
		allowed = err == nil && rest.UserID == userID
	}
	if !allowed {
		return models.Address{}, apperr.Forbidden("You are not allowed to update this address")
	}

	fields := map[string]any{"street": strings.TrimSpace(in.Street)}
	if in.City != nil {
		fields["city"] = strings.TrimSpace(*in.City)
	}
	if in.State != nil {
		fields["state"] = strings.TrimSpace(*in.State)
	}
	if in.PostalCode != nil {
		fields["postal_code"] = strings.TrimSpace(*in.PostalCode)
	}
	if err := s.addresses.Update(ctx, addressID, fields); err != nil {
		return models.Address{}, fmt.Errorf("update address: %w", err)
	}
	s.forgetSearches(ctx)
	return s.addresses.FindByID(ctx, addressID)
}

// Search is the public listing, cached in Redis.
func (s *RestaurantService) Search(ctx context.Context, city, name string) ([]models.Restaurant, error) {
	return s.restaurants.Search(ctx, city, name, s.cacheTTL)
}

func (s *RestaurantService) All(ctx context.Context, state, city string) ([]models.Restaurant, error) {
	return s.restaurants.All(ctx, state, city)
}

func (s *RestaurantService) forgetSearches(ctx context.Context) {
	if err := s.restaurants.ForgetSearches(); err != nil {
		logger.WithCtx(ctx).Warn("restaurant cache not invalidated", "error", err)
	}
}
