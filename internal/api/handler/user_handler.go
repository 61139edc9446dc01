package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cyco/cyco-engine/internal/api/middleware"
	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// UserHandler serves registration, user lookups, admin checks and wishlists.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register creates an account with role "user".
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	_, err := h.users.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// List returns every user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      500  {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns a single user by email.
//
// @Summary      Get user by email
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "User email"
// @Success      200    {object}  domain.User
// @Failure      404    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /user/{email} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CheckAdmin reports whether the caller is an admin. Asking about anyone
// other than the token's own email yields {admin:false}.
//
// @Summary      Check admin role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "User email"
// @Success      200    {object}  adminResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /users/admin/{email} [get]
func (h *UserHandler) CheckAdmin(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	admin, err := h.users.IsAdmin(c.Request().Context(), *identity, c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminResponse{Admin: admin})
}

// Promote sets the role of the user with the given id to admin.
//
// @Summary      Promote user to admin
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  updateResultResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users/admin/{id} [patch]
func (h *UserHandler) Promote(c echo.Context) error {
	out, err := h.users.PromoteToAdmin(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateResultResponse{
		MatchedCount:  out.MatchedCount,
		ModifiedCount: out.ModifiedCount,
	})
}

// AddToWishlist adds a movie to the user's wishlist once.
//
// @Summary      Add movie to wishlist
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      wishlistRequest  true  "User and movie"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /wishlist [post]
func (h *UserHandler) AddToWishlist(c echo.Context) error {
	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	var email string
	if req.User != nil {
		email = req.User.Email
	}
	var movie domain.MovieRef
	if req.Movie != nil {
		movie = *req.Movie
	}

	if err := h.users.AddToWishlist(c.Request().Context(), email, movie); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Movie added to wishlist!"})
}
