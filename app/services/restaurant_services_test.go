package services_test

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/storage"
)

func localDisk(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	storage.RegisterDisk("test", storage.NewLocalDisk(root, "/storage"))
	storage.SetDefault("test")
	return root
}

func count(t *testing.T, w *world, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, w.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateRestaurantPromotesCustomer(t *testing.T) {
	w := newWorld(t)
	var owner models.User
	require.NoError(t, w.db.First(&owner, "user_id = ?", w.owner.ID).Error)
	assert.Equal(t, models.RoleOwner, owner.UserType)

	require.NotNil(t, w.restaurant.Address)
	assert.Equal(t, "Pune", w.restaurant.Address.City)
	assert.Equal(t, "India", w.restaurant.Address.Country)

	detail, err := services.NewRestaurantService(w.db).Detail(context.Background(), w.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, detail.Menus, 1)
	assert.Len(t, detail.Menus[0].MenuItems, 2)
}

func TestRestaurantOwnership(t *testing.T) {
	w := newWorld(t)
	svc := services.NewRestaurantService(w.db)
	ctx := context.Background()
	name := "Annapurna Express"

	_, err := svc.Update(ctx, w.restaurant.ID, w.customer.ID, requests.UpdateRestaurant{Name: &name})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	_, err = svc.Delete(ctx, w.restaurant.ID, w.customer.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	_, err = svc.Detail(ctx, w.restaurant.ID+1)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	updated, err := svc.Update(ctx, w.restaurant.ID, w.owner.ID, requests.UpdateRestaurant{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestUpdateAddressAccess(t *testing.T) {
	w := newWorld(t)
	svc := services.NewRestaurantService(w.db)
	ctx := context.Background()
	city := "Mumbai"

	_, err := svc.UpdateAddress(ctx, w.restaurant.AddressID, w.customer.ID, requests.UpdateAddress{Street: "1 Link Road"})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	addr, err := svc.UpdateAddress(ctx, w.restaurant.AddressID, w.owner.ID, requests.UpdateAddress{Street: "1 Link Road", City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", addr.City)

	addr, err = svc.UpdateAddress(ctx, w.address.ID, w.customer.ID, requests.UpdateAddress{Street: "5 JM Road"})
	require.NoError(t, err)
	assert.Equal(t, "5 JM Road", addr.Street)
	assert.Equal(t, "Pune", addr.City)
}

func TestSearchByCityAndName(t *testing.T) {
	w := newWorld(t)
	svc := services.NewRestaurantService(w.db)
	ctx := context.Background()

	found, err := svc.Search(ctx, "pune", "anna")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, w.restaurant.ID, found[0].ID)

	found, err = svc.Search(ctx, "Delhi", "")
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := svc.All(ctx, "MH", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteRestaurantCascades(t *testing.T) {
	root := localDisk(t)
	w := newWorld(t)
	ctx := context.Background()
	restaurants := services.NewRestaurantService(w.db)
	menus := services.NewMenuService(w.db, restaurants)

	item, err := menus.AddItem(ctx, w.menu.ID, w.owner.ID, requests.MenuItem{Name: "Kulfi", Price: decimal.NewFromInt(4)},
		&services.Image{Name: "Kulfi Pista.JPG", Body: bytes.NewReader([]byte("jpeg"))})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(item.ImageURL, "/storage/menuImages/"))
	stored := filepath.Join(root, strings.TrimPrefix(item.ImageURL, "/storage/"))
	require.FileExists(t, stored)

	_, err = restaurants.Delete(ctx, w.restaurant.ID, w.owner.ID)
	require.NoError(t, err)

	assert.Zero(t, count(t, w, &models.Restaurant{}))
	assert.Zero(t, count(t, w, &models.Menu{}))
	assert.Zero(t, count(t, w, &models.MenuItem{}))
	// Only the customer's delivery address is left.
	assert.EqualValues(t, 1, count(t, w, &models.Address{}))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestMenus(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	menus := services.NewMenuService(w.db, services.NewRestaurantService(w.db))

	_, err := menus.Create(ctx, w.restaurant.ID, w.customer.ID, requests.Menu{Name: "Dinner"})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	other, err := menus.Create(ctx, w.restaurant.ID, w.owner.ID, requests.Menu{Name: "  "})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMenuName, other.Name)

	list, err := menus.List(ctx, w.restaurant.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = menus.Delete(ctx, w.menu.ID, w.owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count(t, w, &models.MenuItem{}))
	_, err = menus.Delete(ctx, other.ID, w.owner.ID)
	require.NoError(t, err)

	_, err = menus.List(ctx, w.restaurant.ID)
	assert.Equal(t, "No Menu found!", statusMessage(t, err))
}

func TestUpdateMenuItemReplacesImage(t *testing.T) {
	root := localDisk(t)
	w := newWorld(t)
	ctx := context.Background()
	menus := services.NewMenuService(w.db, services.NewRestaurantService(w.db))

	first, err := menus.UpdateItem(ctx, w.thali.ID, w.owner.ID, requests.UpdateMenuItem{},
		&services.Image{Name: "thali.png", Body: strings.NewReader("one")})
	require.NoError(t, err)
	firstPath := filepath.Join(root, strings.TrimPrefix(first.ImageURL, "/storage/"))
	require.FileExists(t, firstPath)

	price := decimal.RequireFromString("12.5")
	second, err := menus.UpdateItem(ctx, w.thali.ID, w.owner.ID, requests.UpdateMenuItem{Price: &price},
		&services.Image{Name: "thali.png", Body: strings.NewReader("two")})
	require.NoError(t, err)
	assert.NotEqual(t, first.ImageURL, second.ImageURL)
	assert.Equal(t, "12.50", second.Price.StringFixed(2))
	assert.NoFileExists(t, firstPath)

	_, err = menus.DeleteItem(ctx, w.thali.ID, w.customer.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	_, err = menus.Item(ctx, w.thali.ID+100)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestImageKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	key := services.ImageKey("My Paneer Tikka!!.PNG", at)
	pattern := regexp.MustCompile(`^menuImages/1700000000123_[0-9a-f-]{36}_my-paneer-tikka\.png$`)
	assert.Regexp(t, pattern, key)

	assert.True(t, strings.HasSuffix(services.ImageKey("../../etc/###", at), "_image"))
}
