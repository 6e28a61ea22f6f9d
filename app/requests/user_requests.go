// Package requests holds the request bodies controllers bind and validate.
package requests

type SignUp struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ActivateUser struct {
	ActivationToken string `json:"activation_token" validate:"required"`
	ActivationCode  string `json:"activation_code" validate:"required,digits=4"`
}

type SignIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshToken struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateUser struct {
	Name        *string `json:"name" validate:"nullable,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"nullable,max=32"`
}

type UpdatePassword struct {
	Password        string `json:"password" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=newPassword"`
}

type ForgetPassword struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPassword struct {
	ResetToken string `json:"reset_token" validate:"required"`
	Code       string `json:"code" validate:"required,digits=4"`
	Password   string `json:"password" validate:"required,min=6"`
}

type Address struct {
	Street     string   `json:"street" validate:"required,max=255"`
	City       string   `json:"city" validate:"required,max=100"`
	State      string   `json:"state" validate:"required,max=100"`
	PostalCode string   `json:"postal_code" validate:"required,max=20"`
	Country    string   `json:"country" validate:"max=100"`
	Latitude   *float64 `json:"latitude" validate:"nullable,between=-90,90"`
	Longitude  *float64 `json:"longitude" validate:"nullable,between=-180,180"`
}

type UpdateAddress struct {
	Street     string  `json:"street" validate:"required,max=255"`
	City       *string `json:"city" validate:"nullable,max=100"`
	State      *string `json:"state" validate:"nullable,max=100"`
	PostalCode *string `json:"postal_code" validate:"nullable,max=20"`
}
