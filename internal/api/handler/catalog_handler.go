package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListMovies
//
// @Summary      List movies
// @Tags         catalog
// @Produce      json
// @Success      200  {array}   object
// @Failure      500  {object}  ErrorResponse
// @Router       /movies [get]
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	movies, err := h.catalog.ListMovies(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movies)
}

// CreateMovie stores the posted document as is.
//
// @Summary      Create movie
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Movie document"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /movies [post]
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
	var doc domain.Document
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if _, err := h.catalog.CreateMovie(c.Request().Context(), doc); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "Movie saved successfully"})
}

// ListSeries
//
// @Summary      List series
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   object
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /series [get]
func (h *CatalogHandler) ListSeries(c echo.Context) error {
	series, err := h.catalog.ListSeries(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, series)
}
