package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
)

func (w *world) rating(t *testing.T) string {
	t.Helper()
	var r models.Restaurant
	require.NoError(t, w.db.First(&r, "restaurant_id = ?", w.restaurant.ID).Error)
	return r.Rating.StringFixed(2)
}

func TestRatingFollowsEveryReviewMutation(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	svc := services.NewReviewService(w.db)
	assert.Equal(t, "0.00", w.rating(t))

	mine, err := svc.Create(ctx, w.customer.ID, requests.CreateReview{RestaurantID: requests.ID(w.restaurant.ID), Rating: 4, Comments: "Great dal"})
	require.NoError(t, err)
	assert.Equal(t, "4.00", w.rating(t))

	theirs, err := svc.Create(ctx, w.stranger.ID, requests.CreateReview{RestaurantID: requests.ID(w.restaurant.ID), Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "4.50", w.rating(t))

	two := 2
	updated, err := svc.Update(ctx, w.customer.ID, requests.UpdateReview{ReviewID: requests.ID(mine.ID), Comments: "Cold today", Rating: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, "3.50", w.rating(t))

	// Comment-only edits keep the score.
	_, err = svc.Update(ctx, w.customer.ID, requests.UpdateReview{ReviewID: requests.ID(mine.ID), Comments: "Still cold"})
	require.NoError(t, err)
	assert.Equal(t, "3.50", w.rating(t))

	require.NoError(t, svc.Delete(ctx, w.stranger.ID, theirs.ID))
	assert.Equal(t, "2.00", w.rating(t))
	require.NoError(t, svc.Delete(ctx, w.customer.ID, mine.ID))
	assert.Equal(t, "0.00", w.rating(t))
}

func TestReviewsAreOwnedByTheirAuthor(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	svc := services.NewReviewService(w.db)
	mine, err := svc.Create(ctx, w.customer.ID, requests.CreateReview{RestaurantID: requests.ID(w.restaurant.ID), Rating: 3})
	require.NoError(t, err)

	err = svc.Delete(ctx, w.stranger.ID, mine.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	one := 1
	_, err = svc.Update(ctx, w.stranger.ID, requests.UpdateReview{ReviewID: requests.ID(mine.ID), Comments: "x", Rating: &one})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	assert.Equal(t, "3.00", w.rating(t))
	list, err := svc.ForRestaurant(ctx, w.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Rating)
}

func TestReviewForMissingRestaurant(t *testing.T) {
	w := newWorld(t)
	_, err := services.NewReviewService(w.db).Create(context.Background(), w.customer.ID,
		requests.CreateReview{RestaurantID: requests.ID(w.restaurant.ID + 9), Rating: 5})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestClampRating(t *testing.T) {
	cases := map[string]string{
		"-1":      "0.00",
		"0":       "0.00",
		"3.33333": "3.33",
		"4.666":   "4.67",
		"5":       "5.00",
		"7.2":     "5.00",
	}
	for in, want := range cases {
		got := services.ClampRating(decimal.RequireFromString(in))
		assert.Equal(t, want, got.StringFixed(2), in)
	}
}

func TestRatingStoredToTwoPlaces(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	svc := services.NewReviewService(w.db)
	for _, r := range []int{5, 4, 4} {
		_, err := svc.Create(ctx, w.customer.ID, requests.CreateReview{RestaurantID: requests.ID(w.restaurant.ID), Rating: r})
		require.NoError(t, err)
	}

	var stored models.Restaurant
	require.NoError(t, w.db.First(&stored, "restaurant_id = ?", w.restaurant.ID).Error)
	assert.Equal(t, "4.33", stored.Rating.String())
}
