package controllers

import (
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/ctx"
	"github.com/tiffinbox/tiffin/pkg/response"
)

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

func (p *PaymentController) Create(c *ctx.Context) {
	var in requests.CreatePayment
	if !c.BindJSON(&in) {
		return
	}
	payment, err := p.service.Create(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"payment": payment})
}

func (p *PaymentController) Verify(c *ctx.Context) {
	var in requests.VerifyPayment
	if !c.BindJSON(&in) {
		return
	}
	if _, err := p.service.Verify(c.Context(), c.UserID(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Payment verified"})
}
