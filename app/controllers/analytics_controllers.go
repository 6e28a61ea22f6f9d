package controllers

import (
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/ctx"
	"github.com/tiffinbox/tiffin/pkg/response"
)

// AnalyticsController serves the twelve-month reports.
type AnalyticsController struct {
	service *services.AnalyticsService
}

func NewAnalyticsController(service *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{service: service}
}

func (a *AnalyticsController) Users(c *ctx.Context) {
	data, err := a.service.Users(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"data": data})
}

func (a *AnalyticsController) Orders(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	who, _ := c.Identity()
	data, err := a.service.Orders(c.Context(), who, id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"data": data})
}

func (a *AnalyticsController) Sales(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	who, _ := c.Identity()
	report, err := a.service.Sales(c.Context(), who, id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"data": report.Months, "totalRevenue": report.TotalRevenue})
}

func (a *AnalyticsController) Summary(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	who, _ := c.Identity()
	summary, err := a.service.Summary(c.Context(), who, id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"data": summary})
}
