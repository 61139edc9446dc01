package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// IssueToken signs a 24h token for the posted identity.
//
// @Summary      Issue an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      jwtRequest  true  "Identity claim"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /jwt [post]
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var req jwtRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.IssueToken(domain.Identity{Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// Login authenticates a user and returns a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
}
