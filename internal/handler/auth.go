// This file defines the admin login endpoint.  The service has a
// single operator identity configured through the environment; the
// read-only aggregation API needs no authentication at all, so there
// is no user table and no refresh-token machinery.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/twfilmdata/boxoffice/internal/config"
	"github.com/twfilmdata/boxoffice/internal/utils"
)

// AuthHandler issues admin access tokens.
type AuthHandler struct {
	Cfg config.Config
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the submitted credentials against the configured admin
// user and bcrypt password hash, and returns a signed access token on
// success.  Both failure modes answer with the same 401 so the
// endpoint does not leak which part was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username != h.Cfg.AdminUser || !utils.VerifyPassword(h.Cfg.AdminPassHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAdminToken(h.Cfg.JWTSecret, req.Username, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token signing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp,
	})
}
