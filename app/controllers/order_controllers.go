package controllers

import (
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/ctx"
	"github.com/tiffinbox/tiffin/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

func (o *OrderController) Create(c *ctx.Context) {
	restaurantID, ok := c.ParamID("restaurant_id")
	if !ok {
		return
	}
	var in requests.CreateOrder
	if !c.BindJSON(&in) {
		return
	}
	order, err := o.service.Create(c.Context(), c.UserID(), restaurantID, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{
		"message":           "Order created successfully",
		"order":             order,
		"createdOrderItems": order.OrderItems,
	})
}

func (o *OrderController) UpdateStatus(c *ctx.Context) {
	id, ok := c.ParamID("order_id")
	if !ok {
		return
	}
	var in requests.UpdateOrderStatus
	if !c.BindJSON(&in) {
		return
	}
	order, err := o.service.UpdateStatus(c.Context(), id, c.UserID(), in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.Payload{"message": "Order status updated successfully", "updatedOrderStatus": order})
}

func (o *OrderController) Show(c *ctx.Context) {
	id, ok := c.ParamID("order_id")
	if !ok {
		return
	}
	order, err := o.service.Get(c.Context(), id, c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"order": order})
}

// Mine lists the caller's own orders.
func (o *OrderController) Mine(c *ctx.Context) {
	orders, err := o.service.ListForUser(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"orders": orders})
}

func (o *OrderController) ForRestaurant(c *ctx.Context) {
	restaurantID, ok := c.ParamID("restaurant_id")
	if !ok {
		return
	}
	orders, err := o.service.ListForRestaurant(c.Context(), restaurantID, c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"orders": orders})
}
