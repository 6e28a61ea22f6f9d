package controllers

import (
	"encoding/json"
	"strconv"

	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/ctx"
	"github.com/tiffinbox/tiffin/pkg/response"
)

type ReviewController struct {
	service *services.ReviewService
}

func NewReviewController(service *services.ReviewService) *ReviewController {
	return &ReviewController{service: service}
}

func (r *ReviewController) Create(c *ctx.Context) {
	var in requests.CreateReview
	if !c.BindJSON(&in) {
		return
	}
	if _, err := r.service.Create(c.Context(), c.UserID(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Review added successfully"})
}

func (r *ReviewController) Update(c *ctx.Context) {
	var in requests.UpdateReview
	if !c.BindJSON(&in) {
		return
	}
	if _, err := r.service.Update(c.Context(), c.UserID(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Review updated successfully"})
}

func (r *ReviewController) Delete(c *ctx.Context) {
	var in requests.DeleteReview
	if !c.BindJSON(&in) {
		return
	}
	if err := r.service.Delete(c.Context(), c.UserID(), in.ReviewRatingID.Uint64()); err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Review has been removed"})
}

// Index lists a restaurant's reviews. restaurant_id comes from the query
// string, or from the JSON body when the query has none.
func (r *ReviewController) Index(c *ctx.Context) {
	raw := c.Query("restaurant_id")
	if raw == "" && c.R.Body != nil {
		var body struct {
			RestaurantID requests.ID `json:"restaurant_id"`
		}
		if json.NewDecoder(c.R.Body).Decode(&body) == nil && body.RestaurantID != 0 {
			raw = strconv.FormatUint(body.RestaurantID.Uint64(), 10)
		}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.ValidationError(map[string]string{"restaurant_id": "The restaurant_id field is required."})
		return
	}

	reviews, err := r.service.ForRestaurant(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Reviews fetched successfully", "reviews": reviews})
}
