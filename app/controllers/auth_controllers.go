// Package controllers binds requests, calls a service and writes the
// response envelope. Business rules live in app/services.
package controllers

import (
	"encoding/json"
	"fmt"

	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/auth"
	"github.com/tiffinbox/tiffin/pkg/ctx"
	"github.com/tiffinbox/tiffin/pkg/middleware"
	"github.com/tiffinbox/tiffin/pkg/response"
)

// AuthController serves accounts, sessions and delivery addresses.
type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (a *AuthController) SignUp(c *ctx.Context) {
	var in requests.SignUp
	if !c.BindJSON(&in) {
		return
	}
	token, err := a.service.SignUp(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{
		"message":         fmt.Sprintf("Please check your email %s", in.Email),
		"activationToken": token,
	})
}

func (a *AuthController) Activate(c *ctx.Context) {
	var in requests.ActivateUser
	if !c.BindJSON(&in) {
		return
	}
	user, err := a.service.Activate(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "User is created", "user": user})
}

// SignIn sets both session cookies and also returns the access token for
// clients that send it as a bearer header.
func (a *AuthController) SignIn(c *ctx.Context) {
	var in requests.SignIn
	if !c.BindJSON(&in) {
		return
	}
	user, pair, err := a.service.SignIn(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	a.setSession(c, pair)
	c.Created(response.Payload{"user": user, "accessToken": pair.Access})
}

func (a *AuthController) SignOut(c *ctx.Context) {
	if err := a.service.SignOut(c.Context(), c.UserID()); err != nil {
		c.Fail(err)
		return
	}
	secure := config.IsProduction()
	c.ClearCookie(middleware.AccessCookie, secure)
	c.ClearCookie(middleware.RefreshCookie, secure)
	c.Success(response.Payload{"message": "logout succesfully"})
}

// Refresh takes the refresh token from its cookie, falling back to the JSON
// body.
func (a *AuthController) Refresh(c *ctx.Context) {
	token, _ := c.Cookie(middleware.RefreshCookie)
	if token == "" && c.R.Body != nil {
		var in requests.RefreshToken
		_ = json.NewDecoder(c.R.Body).Decode(&in)
		token = in.RefreshToken
	}
	pair, err := a.service.Refresh(c.Context(), token)
	if err != nil {
		c.Fail(err)
		return
	}
	a.setSession(c, pair)
	c.Success(response.Payload{"accessToken": pair.Access, "refreshToken": pair.Refresh})
}

func (a *AuthController) setSession(c *ctx.Context, pair auth.TokenPair) {
	secure := config.IsProduction()
	c.SetCookie(middleware.AccessCookie, pair.Access, int(config.AccessTokenTTL().Seconds()), secure)
	c.SetCookie(middleware.RefreshCookie, pair.Refresh, int(config.RefreshTokenTTL().Seconds()), secure)
}

func (a *AuthController) Me(c *ctx.Context) {
	user, err := a.service.Me(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"user": user})
}

func (a *AuthController) UpdateUser(c *ctx.Context) {
	var in requests.UpdateUser
	if !c.BindJSON(&in) {
		return
	}
	if _, err := a.service.UpdateUser(c.Context(), c.UserID(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "user updated successful"})
}

func (a *AuthController) UpdatePassword(c *ctx.Context) {
	var in requests.UpdatePassword
	if !c.BindJSON(&in) {
		return
	}
	if err := a.service.UpdatePassword(c.Context(), c.UserID(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Password updated successful"})
}

func (a *AuthController) ForgetPassword(c *ctx.Context) {
	var in requests.ForgetPassword
	if !c.BindJSON(&in) {
		return
	}
	token, err := a.service.ForgetPassword(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Check your email for reseting the password", "resetToken": token})
}

func (a *AuthController) ResetPassword(c *ctx.Context) {
	var in requests.ResetPassword
	if !c.BindJSON(&in) {
		return
	}
	if err := a.service.ResetPassword(c.Context(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"message": "Password reset successful"})
}

func (a *AuthController) AllUsers(c *ctx.Context) {
	users, err := a.service.AllUsers(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"users": users})
}

func (a *AuthController) CreateAddress(c *ctx.Context) {
	var in requests.Address
	if !c.BindJSON(&in) {
		return
	}
	addr, err := a.service.CreateAddress(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.Payload{"message": "Address created successfully", "address": addr})
}

func (a *AuthController) Addresses(c *ctx.Context) {
	addrs, err := a.service.Addresses(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(response.Payload{"addresses": addrs})
}
