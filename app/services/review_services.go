package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"github.com/tiffinbox/tiffin/pkg/metrics"
	"gorm.io/gorm"
)

const maxRating = 5

// ReviewService keeps restaurants.rating equal to the clamped mean of the
// restaurant's reviews. Every mutation recomputes it in the same
// transaction.
type ReviewService struct {
	db          *gorm.DB
	reviews     *repositories.ReviewRepository
	restaurants *repositories.RestaurantRepository
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		db:          db,
		reviews:     repositories.NewReviewRepository(db),
		restaurants: repositories.NewRestaurantRepository(db),
	}
}

func (s *ReviewService) Create(ctx context.Context, userID uint64, in requests.CreateReview) (models.Review, error) {
	restaurantID := in.RestaurantID.Uint64()
	if ok, err := s.restaurants.Exists(ctx, restaurantID); err != nil {
		return models.Review{}, fmt.Errorf("restaurant lookup: %w", err)
	} else if !ok {
		return models.Review{}, apperr.NotFound("Restaurant not found")
	}

	review := models.Review{RestaurantID: restaurantID, UserID: userID, Rating: in.Rating, Comments: in.Comments}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviews.WithTx(tx).Create(ctx, &review); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		return s.recompute(ctx, tx, restaurantID)
	})
	if err != nil {
		return models.Review{}, err
	}
	metrics.ReviewMutations.WithLabelValues("create").Inc()
	return review, nil
}

// Update edits the caller's own review.
func (s *ReviewService) Update(ctx context.Context, userID uint64, in requests.UpdateReview) (models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.reviews.WithTx(tx)
		var err error
		review, err = repo.FindOwned(ctx, in.ReviewID.Uint64(), userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Review not found")
		}
		if err != nil {
			return err
		}

		fields := map[string]any{"comments": in.Comments}
		review.Comments = in.Comments
		if in.Rating != nil {
			fields["rating"] = *in.Rating
			review.Rating = *in.Rating
		}
		if err := repo.Update(ctx, review.ID, fields); err != nil {
			return fmt.Errorf("update review: %w", err)
		}
		return s.recompute(ctx, tx, review.RestaurantID)
	})
	if err != nil {
		return models.Review{}, err
	}
	metrics.ReviewMutations.WithLabelValues("update").Inc()
	return review, nil
}

// Delete removes the caller's own review. Someone else's review is reported
// as missing and the rating is left alone.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.reviews.WithTx(tx)
		review, err := repo.FindOwned(ctx, reviewID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Review not found")
		}
		if err != nil {
			return err
		}
		deleted, err := repo.DeleteOwned(ctx, reviewID, userID)
		if err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		if !deleted {
			return apperr.NotFound("Review not found")
		}
		return s.recompute(ctx, tx, review.RestaurantID)
	})
	if err != nil {
		return err
	}
	metrics.ReviewMutations.WithLabelValues("delete").Inc()
	return nil
}

func (s *ReviewService) ForRestaurant(ctx context.Context, restaurantID uint64) ([]models.Review, error) {
	return s.reviews.ListByRestaurant(ctx, restaurantID)
}

// recompute stores clamp(avg, 0, 5) rounded to two places, or 0 when the
// restaurant has no reviews.
func (s *ReviewService) recompute(ctx context.Context, tx *gorm.DB, restaurantID uint64) error {
	avg, err := s.reviews.WithTx(tx).AverageRating(ctx, restaurantID)
	if err != nil {
		return fmt.Errorf("average rating: %w", err)
	}
	rating := decimal.Zero
	if avg.Valid {
		rating = ClampRating(decimal.NewFromFloat(avg.Float64))
	}
	if err := s.restaurants.WithTx(tx).SetRating(ctx, restaurantID, rating); err != nil {
		return fmt.Errorf("store rating: %w", err)
	}
	return nil
}

// ClampRating bounds r to [0, 5] and rounds it to two places.
func ClampRating(r decimal.Decimal) decimal.Decimal {
	switch {
	case r.IsNegative():
		return decimal.Zero
	case r.GreaterThan(decimal.NewFromInt(maxRating)):
		return decimal.NewFromInt(maxRating)
	}
	return r.Round(2)
}
