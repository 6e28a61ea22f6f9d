package controllers

import (
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/ctx"
	"github.com/tiffinbox/tiffin/pkg/response"
)

type RestaurantController struct {
	service *services.RestaurantService
}

func NewRestaurantController(service *services.RestaurantService) *RestaurantController {
	return &RestaurantController{service: service}
}

func (r *RestaurantController) Create(c *ctx.Context) {
	var in requests.CreateRestaurant
	if !c.BindJSON(&in) {
		return
	}
	rest, err := r.service.Create(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.Payload{"message": "Restaurant registered", "restaurant": rest})
}

func (r *RestaurantController) Show(c *ctx.Context) {
	id, ok := c.ParamID("restaurant_id")
	if !ok {
		return
	}
	rest, err := r.service.Detail(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"restaurant": rest})
}

func (r *RestaurantController) Update(c *ctx.Context) {
	id, ok := c.ParamID("restaurant_id")
	if !ok {
		return
	}
	var in requests.UpdateRestaurant
	if !c.BindJSON(&in) {
		return
	}
	rest, err := r.service.Update(c.Context(), id, c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Restaurant detail updated successfully", "restaurant": rest})
}

func (r *RestaurantController) Delete(c *ctx.Context) {
	id, ok := c.ParamID("restaurant_id")
	if !ok {
		return
	}
	rest, err := r.service.Delete(c.Context(), id, c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Restaurant deleted successfully", "restaurant": rest})
}

func (r *RestaurantController) UpdateAddress(c *ctx.Context) {
	id, ok := c.ParamID("address_id")
	if !ok {
		return
	}
	var in requests.UpdateAddress
	if !c.BindJSON(&in) {
		return
	}
	addr, err := r.service.UpdateAddress(c.Context(), id, c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Address updated successfully", "address": addr})
}

// Search is the public listing filtered by ?city= and ?name=.
func (r *RestaurantController) Search(c *ctx.Context) {
	list, err := r.service.Search(c.Context(), c.Query("city"), c.Query("name"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"restaurants": list})
}

func (r *RestaurantController) All(c *ctx.Context) {
	list, err := r.service.All(c.Context(), c.Query("state"), c.Query("city"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"restaurants": list})
}
