package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/storage"
	"gorm.io/gorm"
)

// MenuService manages menus and the items on them.
type MenuService struct {
	db          *gorm.DB
	menus       *repositories.MenuRepository
	restaurants *RestaurantService
}

func NewMenuService(db *gorm.DB, restaurants *RestaurantService) *MenuService {
	return &MenuService{
		db:          db,
		menus:       repositories.NewMenuRepository(db),
		restaurants: restaurants,
	}
}

// Image is an uploaded file.
type Image struct {
	Name string
	Body io.Reader
}

func (s *MenuService) Create(ctx context.Context, restaurantID, userID uint64, in requests.Menu) (models.Menu, error) {
	if _, err := s.restaurants.Owned(ctx, restaurantID, userID); err != nil {
		return models.Menu{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = models.DefaultMenuName
	}
	menu := models.Menu{RestaurantID: restaurantID, Name: name, Description: in.Description}
	if err := s.menus.Create(ctx, &menu); err != nil {
		return models.Menu{}, fmt.Errorf("create menu: %w", err)
	}
	return menu, nil
}

// List returns a restaurant's menus with items.
func (s *MenuService) List(ctx context.Context, restaurantID uint64) ([]models.Menu, error) {
	menus, err := s.menus.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return nil, apperr.NotFound("No Menu found!")
	}
	return menus, nil
}

func (s *MenuService) Update(ctx context.Context, menuID, userID uint64, in requests.UpdateMenu) (models.Menu, error) {
	if _, err := s.ownedMenu(ctx, menuID, userID); err != nil {
		return models.Menu{}, err
	}
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			name = models.DefaultMenuName
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if len(fields) > 0 {
		if err := s.menus.Update(ctx, menuID, fields); err != nil {
			return models.Menu{}, fmt.Errorf("update menu: %w", err)
		}
	}
	return s.menus.FindByID(ctx, menuID)
}

// Delete removes a menu, its items and their images.
func (s *MenuService) Delete(ctx context.Context, menuID, userID uint64) (models.Menu, error) {
	menu, err := s.ownedMenu(ctx, menuID, userID)
	if err != nil {
		return models.Menu{}, err
	}
	images, err := s.menus.ImageURLs(ctx, menuID)
	if err != nil {
		return models.Menu{}, fmt.Errorf("list item images: %w", err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.menus.WithTx(tx).Delete(ctx, menuID)
	})
	if err != nil {
		return models.Menu{}, fmt.Errorf("delete menu: %w", err)
	}
	deleteImages(ctx, images...)
	return menu, nil
}

// AddItem creates an item, storing img first when one is given.
func (s *MenuService) AddItem(ctx context.Context, menuID, userID uint64, in requests.MenuItem, img *Image) (models.MenuItem, error) {
	if _, err := s.ownedMenu(ctx, menuID, userID); err != nil {
		return models.MenuItem{}, err
	}

	item := models.MenuItem{
		MenuID:       menuID,
		Name:         strings.TrimSpace(in.Name),
		Price:        in.Price.Round(2),
		Description:  in.Description,
		Category:     in.Category,
		Availability: in.Availability == nil || *in.Availability,
		IsVeg:        in.IsVeg,
	}
	if img != nil {
		url, err := storeImage(ctx, img)
		if err != nil {
			return models.MenuItem{}, err
		}
		item.ImageURL = url
	}

	if err := s.menus.CreateItem(ctx, &item); err != nil {
		deleteImages(ctx, item.ImageURL)
		return models.MenuItem{}, fmt.Errorf("create menu item: %w", err)
	}
	return item, nil
}

func (s *MenuService) Item(ctx context.Context, id uint64) (models.MenuItem, error) {
	item, err := s.menus.FindItem(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.MenuItem{}, apperr.NotFound("Menu item not found")
	}
	return item, err
}

// UpdateItem applies a partial update. A new image replaces the old one,
// whose object is deleted once the row points at the new URL.
func (s *MenuService) UpdateItem(ctx context.Context, id, userID uint64, in requests.UpdateMenuItem, img *Image) (models.MenuItem, error) {
	item, err := s.ownedItem(ctx, id, userID)
	if err != nil {
		return models.MenuItem{}, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		fields["price"] = in.Price.Round(2)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Availability != nil {
		fields["availability"] = *in.Availability
	}
	if in.IsVeg != nil {
		fields["is_veg"] = *in.IsVeg
	}

	var replaced string
	if img != nil {
		url, err := storeImage(ctx, img)
		if err != nil {
			return models.MenuItem{}, err
		}
		fields["image_url"] = url
		replaced = item.ImageURL
	}

	if len(fields) > 0 {
		if err := s.menus.UpdateItem(ctx, id, fields); err != nil {
			if url, ok := fields["image_url"].(string); ok {
				deleteImages(ctx, url)
			}
			return models.MenuItem{}, fmt.Errorf("update menu item: %w", err)
		}
	}
	deleteImages(ctx, replaced)
	return s.menus.FindItem(ctx, id)
}

func (s *MenuService) DeleteItem(ctx context.Context, id, userID uint64) (models.MenuItem, error) {
	item, err := s.ownedItem(ctx, id, userID)
	if err != nil {
		return models.MenuItem{}, err
	}
	if err := s.menus.DeleteItem(ctx, id); err != nil {
		return models.MenuItem{}, fmt.Errorf("delete menu item: %w", err)
	}
	deleteImages(ctx, item.ImageURL)
	return item, nil
}

func (s *MenuService) ownedMenu(ctx context.Context, menuID, userID uint64) (models.Menu, error) {
	menu, err := s.menus.FindByID(ctx, menuID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Menu{}, apperr.NotFound("No Menu found!")
	}
	if err != nil {
		return models.Menu{}, err
	}
	if _, err := s.restaurants.Owned(ctx, menu.RestaurantID, userID); err != nil {
		return models.Menu{}, err
	}
	return menu, nil
}

func (s *MenuService) ownedItem(ctx context.Context, id, userID uint64) (models.MenuItem, error) {
	item, err := s.Item(ctx, id)
	if err != nil {
		return models.MenuItem{}, err
	}
	if _, err := s.ownedMenu(ctx, item.MenuID, userID); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

// ImageKey builds the object key for an uploaded menu image:
// menuImages/{unix_ms}_{uuid}_{slug}.
func ImageKey(filename string, now time.Time) string {
	return fmt.Sprintf("menuImages/%d_%s_%s", now.UnixMilli(), uuid.NewString(), slug(filename))
}

func storeImage(ctx context.Context, img *Image) (string, error) {
	url, err := storage.Store(ctx, ImageKey(img.Name, time.Now()), img.Body)
	if err != nil {
		return "", apperr.New(http.StatusInternalServerError, "Image upload failed").Wrap(err)
	}
	return url, nil
}

// deleteImages removes stored objects. Failures are logged; the rows that
// referenced them are already gone.
func deleteImages(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := storage.DeleteURL(ctx, url); err != nil {
			logger.WithCtx(ctx).Warn("image not deleted", "url", url, "error", err)
		}
	}
}

// slug lowercases name and replaces every run of other characters with a
// dash. The extension is kept.
func slug(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	base := strings.TrimSuffix(name, path.Ext(name))

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(base) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		out = "image"
	}
	return out + ext
}
