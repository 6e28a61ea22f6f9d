package controllers

import (
	"strings"

	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/ctx"
	"github.com/tiffinbox/tiffin/pkg/response"
)

// MenuController serves menus and their items.
type MenuController struct {
	service *services.MenuService
}

func NewMenuController(service *services.MenuService) *MenuController {
	return &MenuController{service: service}
}

func (m *MenuController) Create(c *ctx.Context) {
	restaurantID, ok := c.ParamID("restaurant_id")
	if !ok {
		return
	}
	var in requests.Menu
	if !c.BindJSON(&in) {
		return
	}
	menu, err := m.service.Create(c.Context(), restaurantID, c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.Payload{"message": "Menu created successfully", "menu": menu})
}

func (m *MenuController) Index(c *ctx.Context) {
	restaurantID, ok := c.ParamID("restaurant_id")
	if !ok {
		return
	}
	menus, err := m.service.List(c.Context(), restaurantID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"menus": menus})
}

func (m *MenuController) Update(c *ctx.Context) {
	id, ok := c.ParamID("menu_id")
	if !ok {
		return
	}
	var in requests.UpdateMenu
	if !c.BindJSON(&in) {
		return
	}
	menu, err := m.service.Update(c.Context(), id, c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Menu updated successfully", "menu": menu})
}

func (m *MenuController) Delete(c *ctx.Context) {
	id, ok := c.ParamID("menu_id")
	if !ok {
		return
	}
	menu, err := m.service.Delete(c.Context(), id, c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Menu deleted successfully", "menu": menu})
}

// AddItem reads a multipart form with an optional "file" image.
func (m *MenuController) AddItem(c *ctx.Context) {
	menuID, ok := c.ParamID("menu_id")
	if !ok {
		return
	}
	var in requests.MenuItem
	if !bindForm(c, &in) {
		return
	}
	img, done := upload(c)
	defer done()

	item, err := m.service.AddItem(c.Context(), menuID, c.UserID(), in, img)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Menu item added successfully", "menuItem": item})
}

func (m *MenuController) ShowItem(c *ctx.Context) {
	id, ok := c.ParamID("menu_item_id")
	if !ok {
		return
	}
	item, err := m.service.Item(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"menuItem": item})
}

func (m *MenuController) UpdateItem(c *ctx.Context) {
	id, ok := c.ParamID("menu_item_id")
	if !ok {
		return
	}
	var in requests.UpdateMenuItem
	if !bindForm(c, &in) {
		return
	}
	img, done := upload(c)
	defer done()

	item, err := m.service.UpdateItem(c.Context(), id, c.UserID(), in, img)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"updatedMenuItem": item})
}

func (m *MenuController) DeleteItem(c *ctx.Context) {
	id, ok := c.ParamID("menu_item_id")
	if !ok {
		return
	}
	item, err := m.service.DeleteItem(c.Context(), id, c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Menu item deleted successfully", "menuItem": item})
}

// bindForm accepts multipart/form-data, which may carry an image, and
// falls back to JSON for text-only edits.
func bindForm(c *ctx.Context, dest any) bool {
	if strings.HasPrefix(c.Header("Content-Type"), "multipart/") {
		return c.BindMultipart(dest, config.MaxUploadBytes())
	}
	return c.BindJSON(dest)
}

// upload returns the "file" part, if any, and a func that closes it.
func upload(c *ctx.Context) (*services.Image, func()) {
	file, header, ok := c.FormFile("file")
	if !ok {
		return nil, func() {}
	}
	return &services.Image{Name: header.Filename, Body: file}, func() { _ = file.Close() }
}
