package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID             uint64          `gorm:"column:restaurant_id;primaryKey;autoIncrement" json:"restaurant_id,string"`
	UserID         uint64          `gorm:"not null;index" json:"user_id,string"`
	Name           string          `gorm:"size:255;not null;index" json:"name"`
	AddressID      uint64          `gorm:"not null" json:"address_id,string"`
	Description    string          `gorm:"type:text" json:"description"`
	Cuisines       string          `gorm:"size:255" json:"cuisines"`
	Email          string          `gorm:"size:255;not null" json:"email"`
	OpeningHours   string          `gorm:"size:32;not null" json:"opening_hours"`
	ClosingHour    string          `gorm:"size:32;not null" json:"closing_hour"`
	PhoneNumber    string          `gorm:"size:32;not null" json:"phone_number"`
	RestaurantType string          `gorm:"size:64" json:"restaurant_type"`
	Rating         decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Address *Address `gorm:"foreignKey:AddressID;references:ID" json:"address,omitempty"`
	Menus   []Menu   `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnDelete:CASCADE" json:"menus,omitempty"`
}

type Menu struct {
	ID           uint64 `gorm:"column:menu_id;primaryKey;autoIncrement" json:"menu_id,string"`
	RestaurantID uint64 `gorm:"not null;index" json:"restaurant_id,string"`
	Name         string `gorm:"size:255;not null;default:Other" json:"name"`
	Description  string `gorm:"type:text" json:"description"`

	MenuItems []MenuItem `gorm:"foreignKey:MenuID;references:ID;constraint:OnDelete:CASCADE" json:"menu_items,omitempty"`
}

// DefaultMenuName is used when a menu is created without a name.
const DefaultMenuName = "Other"

type MenuItem struct {
	ID           uint64          `gorm:"column:menu_item_id;primaryKey;autoIncrement" json:"menu_item_id,string"`
	MenuID       uint64          `gorm:"not null;index" json:"menu_id,string"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"size:100" json:"category"`
	Availability bool            `gorm:"not null;default:true" json:"availability"`
	IsVeg        bool            `gorm:"not null;default:false" json:"is_veg"`
	ImageURL     string          `gorm:"size:512" json:"image_url"`
}
