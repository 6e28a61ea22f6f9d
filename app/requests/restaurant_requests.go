package requests

import "github.com/shopspring/decimal"

type CreateRestaurant struct {
	Name           string  `json:"name" validate:"required,max=255"`
	Email          string  `json:"email" validate:"required,email"`
	PhoneNumber    string  `json:"phone_number" validate:"required,max=32"`
	OpeningHours   string  `json:"opening_hours" validate:"required,max=32"`
	ClosingHours   string  `json:"closing_hours" validate:"required,max=32"`
	Description    string  `json:"description"`
	Cuisines       string  `json:"cuisines" validate:"max=255"`
	RestaurantType string  `json:"restaurant_type" validate:"max=64"`
	Address        Address `json:"address"`
}

type UpdateRestaurant struct {
	Name           *string `json:"name" validate:"nullable,max=255"`
	Email          *string `json:"email" validate:"nullable,email"`
	PhoneNumber    *string `json:"phone_number" validate:"nullable,max=32"`
	OpeningHours   *string `json:"opening_hours" validate:"nullable,max=32"`
	ClosingHours   *string `json:"closing_hours" validate:"nullable,max=32"`
	Description    *string `json:"description"`
	Cuisines       *string `json:"cuisines" validate:"nullable,max=255"`
	RestaurantType *string `json:"restaurant_type" validate:"nullable,max=64"`
}

type Menu struct {
	Name        string `json:"name" validate:"max=255"`
	Description string `json:"description"`
}

type UpdateMenu struct {
	Name        *string `json:"name" validate:"nullable,max=255"`
	Description *string `json:"description"`
}

// MenuItem is bound from multipart/form-data, or JSON when no image is sent.
type MenuItem struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Price        decimal.Decimal `json:"price" validate:"required,gt=0"`
	Description  string          `json:"description"`
	Category     string          `json:"category" validate:"max=100"`
	Availability *bool           `json:"availability"`
	IsVeg        bool            `json:"is_veg" form:"is_veg,isVeg"`
}

type UpdateMenuItem struct {
	Name         *string          `json:"name" validate:"nullable,max=255"`
	Price        *decimal.Decimal `json:"price" validate:"nullable,gt=0"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category" validate:"nullable,max=100"`
	Availability *bool            `json:"availability"`
	IsVeg        *bool            `json:"is_veg" form:"is_veg,isVeg"`
}
