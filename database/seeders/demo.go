package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/pkg/auth"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

const (
	adminEmail = "admin@tiffin.test"
	ownerEmail = "owner@tiffin.test"
	demoName   = "Annapurna Tiffin House"
)

// SeedUsers creates the admin and the restaurant owner.
func SeedUsers(_ context.Context, db *gorm.DB) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	for _, u := range []models.User{
		{Name: "Admin", Email: adminEmail, Password: hash, UserType: models.RoleAdmin},
		{Name: "Owner", Email: ownerEmail, Password: hash, UserType: models.RoleOwner},
	} {
		row := u
		if err := db.Where(models.User{Email: u.Email}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}
	return nil
}

// SeedRestaurant gives the owner one restaurant with a lunch menu.
func SeedRestaurant(_ context.Context, db *gorm.DB) error {
	var owner models.User
	if err := db.Where("email = ?", ownerEmail).First(&owner).Error; err != nil {
		return fmt.Errorf("owner: %w", err)
	}

	var existing models.Restaurant
	err := db.Where("name = ? AND user_id = ?", demoName, owner.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		addr := models.Address{Street: "12 FC Road", City: "Pune", State: "Maharashtra", PostalCode: "411004", Country: "India"}
		if err := tx.Create(&addr).Error; err != nil {
			return err
		}
		r := models.Restaurant{
			UserID:         owner.ID,
			Name:           demoName,
			AddressID:      addr.ID,
			Description:    "Home-style vegetarian thalis",
			Cuisines:       "Maharashtrian, Gujarati",
			Email:          ownerEmail,
			OpeningHours:   "09:00",
			ClosingHour:    "22:00",
			PhoneNumber:    "9800000000",
			RestaurantType: "veg",
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		menu := models.Menu{RestaurantID: r.ID, Name: "Lunch", Description: "Served 12:00 to 15:00"}
		if err := tx.Create(&menu).Error; err != nil {
			return err
		}
		items := []models.MenuItem{
			{MenuID: menu.ID, Name: "Puneri Thali", Price: decimal.RequireFromString("180.00"), Category: "Thali", Availability: true, IsVeg: true},
			{MenuID: menu.ID, Name: "Misal Pav", Price: decimal.RequireFromString("90.00"), Category: "Snacks", Availability: true, IsVeg: true},
			{MenuID: menu.ID, Name: "Sweet Lassi", Price: decimal.RequireFromString("60.00"), Category: "Drinks", Availability: true, IsVeg: true},
		}
		return tx.Create(&items).Error
	})
}
