package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"gorm.io/gorm"
)

func TestFromPassesThroughWrappedError(t *testing.T) {
	base := apperr.NotFound("Order not found")
	wrapped := fmt.Errorf("order service: %w", base)

	got := apperr.From(wrapped)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "Order not found", got.Message)
}

func TestFromMapsRecordNotFound(t *testing.T) {
	err := fmt.Errorf("load restaurant: %w", gorm.ErrRecordNotFound)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

func TestFromHidesInternalCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	got := apperr.From(cause)

	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, "Internal server error", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestWrapKeepsStatus(t *testing.T) {
	cause := errors.New("timeout")
	err := apperr.BadGateway("Payment gateway error").Wrap(cause)

	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "timeout")
}

func TestNilIsOK(t *testing.T) {
	assert.Nil(t, apperr.From(nil))
	assert.Equal(t, http.StatusOK, apperr.Status(nil))
}
