package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tiffinbox/tiffin/pkg/validate"
)

type itemInput struct {
	MenuItemID uint64          `json:"menu_item_id" validate:"required"`
	Quantity   int             `json:"quantity"     validate:"required,min=1"`
	Price      decimal.Decimal `json:"price"        validate:"required,gt=0,places=2"`
}

type orderInput struct {
	TotalAmount       decimal.Decimal `json:"total_amount"        validate:"required,gt=0"`
	DeliveryAddressID uint64          `json:"delivery_address_id" validate:"required"`
	Items             []itemInput     `json:"order_items"         validate:"required,min=1,dive"`
}

type addressInput struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city"   validate:"required"`
}

type restaurantInput struct {
	Name    string       `json:"name"    validate:"required,min=2"`
	Email   string       `json:"email"   validate:"required,email"`
	Address addressInput `json:"address"`
}

func validOrder() orderInput {
	return orderInput{
		TotalAmount:       decimal.RequireFromString("35.00"),
		DeliveryAddressID: 7,
		Items: []itemInput{
			{MenuItemID: 1, Quantity: 3, Price: decimal.RequireFromString("10.00")},
			{MenuItemID: 2, Quantity: 1, Price: decimal.RequireFromString("5.00")},
		},
	}
}

func TestValidOrderPasses(t *testing.T) {
	if errs := validate.Struct(validOrder()); validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestDecimalRequiredAndPositive(t *testing.T) {
	in := validOrder()
	in.TotalAmount = decimal.Zero
	errs := validate.Struct(in)
	if errs["total_amount"] != "The total_amount field is required." {
		t.Errorf("expected required error, got %q", errs["total_amount"])
	}

	in.TotalAmount = decimal.RequireFromString("-1")
	errs = validate.Struct(in)
	if _, ok := errs["total_amount"]; !ok {
		t.Error("expected negative total to fail gt=0")
	}
}

func TestEmptyItemsFail(t *testing.T) {
	in := validOrder()
	in.Items = nil
	errs := validate.Struct(in)
	if _, ok := errs["order_items"]; !ok {
		t.Errorf("expected order_items error, got %v", errs)
	}
}

func TestDiveReportsElementPath(t *testing.T) {
	in := validOrder()
	in.Items[1].Quantity = 0
	in.Items[0].Price = decimal.Zero

	errs := validate.Struct(in)
	if _, ok := errs["order_items.1.quantity"]; !ok {
		t.Errorf("expected order_items.1.quantity error, got %v", errs)
	}
	if _, ok := errs["order_items.0.price"]; !ok {
		t.Errorf("expected order_items.0.price error, got %v", errs)
	}
}

func TestNestedStructIsWalked(t *testing.T) {
	errs := validate.Struct(&restaurantInput{Name: "Dosa Point", Email: "hi@dosa.in"})
	if _, ok := errs["address.street"]; !ok {
		t.Errorf("expected address.street error, got %v", errs)
	}
	if _, ok := errs["address.city"]; !ok {
		t.Errorf("expected address.city error, got %v", errs)
	}
}

func TestInRuleWithSpaces(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=Pending,Ready for Pickup,Cancelled"`
	}
	if errs := validate.Struct(in{Status: "Ready for Pickup"}); validate.HasErrors(errs) {
		t.Errorf("expected valid status, got %v", errs)
	}
	if errs := validate.Struct(in{Status: "Shipped"}); !validate.HasErrors(errs) {
		t.Error("expected unknown status to fail")
	}
}

func TestNullablePointer(t *testing.T) {
	type in struct {
		Rating *float64 `json:"rating" validate:"nullable,between=0,5"`
	}
	if errs := validate.Struct(in{}); validate.HasErrors(errs) {
		t.Errorf("expected nil rating to be skipped, got %v", errs)
	}
	bad := 7.0
	if errs := validate.Struct(in{Rating: &bad}); !validate.HasErrors(errs) {
		t.Error("expected rating 7 to fail")
	}
	zero := 0.0
	if errs := validate.Struct(in{Rating: &zero}); validate.HasErrors(errs) {
		t.Errorf("expected rating 0 to pass, got %v", errs)
	}
}

func TestEqField(t *testing.T) {
	type in struct {
		NewPassword     string `json:"newPassword"     validate:"required,min=6"`
		ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=newPassword"`
	}
	if errs := validate.Struct(in{NewPassword: "secret1", ConfirmPassword: "secret2"}); !validate.HasErrors(errs) {
		t.Error("expected mismatch to fail")
	}
	if errs := validate.Struct(in{NewPassword: "secret1", ConfirmPassword: "secret1"}); validate.HasErrors(errs) {
		t.Errorf("expected match to pass, got %v", errs)
	}
}

func TestSizeAndAlpha(t *testing.T) {
	type in struct {
		Currency string `json:"currency" validate:"nullable,size=3,alpha"`
	}
	if errs := validate.Struct(in{Currency: "INR"}); validate.HasErrors(errs) {
		t.Errorf("expected INR to pass, got %v", errs)
	}
	if errs := validate.Struct(in{Currency: "RUPEE"}); !validate.HasErrors(errs) {
		t.Error("expected 5-letter currency to fail")
	}
	if errs := validate.Struct(in{Currency: "1NR"}); !validate.HasErrors(errs) {
		t.Error("expected digit in currency to fail")
	}
}

func TestPlacesRejectsSubPaisaAmounts(t *testing.T) {
	in := validOrder()
	in.Items[0].Price = decimal.RequireFromString("10.005")
	errs := validate.Struct(in)
	if errs["order_items.0.price"] != "The price must have at most 2 decimal places." {
		t.Errorf("expected places error, got %v", errs)
	}

	in.Items[0].Price = decimal.RequireFromString("10.50")
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		t.Errorf("expected 10.50 to pass, got %v", errs)
	}
}

func TestDigits(t *testing.T) {
	type in struct {
		Code string `json:"code" validate:"required,digits=4"`
	}
	if errs := validate.Struct(in{Code: "0427"}); validate.HasErrors(errs) {
		t.Errorf("expected 0427 to pass, got %v", errs)
	}
	for _, bad := range []string{"427", "04a7", "04270"} {
		if errs := validate.Struct(in{Code: bad}); !validate.HasErrors(errs) {
			t.Errorf("expected %q to fail", bad)
		}
	}
}
