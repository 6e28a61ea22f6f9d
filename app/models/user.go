package models

import "time"

const (
	RoleCustomer = "customer"
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
)

// User is an account. Password and RefreshToken hold digests and never
// leave the server.
type User struct {
	ID           uint64    `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id,string"`
	Name         string    `gorm:"size:255" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"-"`
	PhoneNumber  string    `gorm:"size:32" json:"phone_number"`
	UserType     string    `gorm:"size:16;not null;default:customer" json:"user_type"`
	RefreshToken string    `gorm:"size:64" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Address is either a restaurant's location or a customer's delivery
// address, in which case UserID is set.
type Address struct {
	ID         uint64   `gorm:"column:address_id;primaryKey;autoIncrement" json:"address_id,string"`
	UserID     *uint64  `gorm:"index" json:"user_id,string,omitempty"`
	Street     string   `gorm:"size:255;not null" json:"street"`
	City       string   `gorm:"size:100;not null;index" json:"city"`
	State      string   `gorm:"size:100;not null" json:"state"`
	PostalCode string   `gorm:"size:20;not null" json:"postal_code"`
	Country    string   `gorm:"size:100;not null;default:India" json:"country"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}
