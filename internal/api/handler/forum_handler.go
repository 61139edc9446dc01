package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cyco/cyco-engine/internal/core/ports"
)

type ForumHandler struct {
	forum ports.ForumService
}

func NewForumHandler(forum ports.ForumService) *ForumHandler {
	return &ForumHandler{forum: forum}
}

// Create posts a new forum query.
//
// @Summary      Post forum query
// @Tags         forum
// @Accept       json
// @Produce      json
// @Param        body  body      forumQueryRequest  true  "Query"
// @Success      201   {object}  insertedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /forumQueries [post]
func (h *ForumHandler) Create(c echo.Context) error {
	var req forumQueryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.forum.Post(c.Request().Context(), ports.PostQueryInput{
		AuthorEmail: req.AuthorEmail,
		AuthorName:  req.AuthorName,
		Title:       req.Title,
		Body:        req.Body,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, insertedResponse{InsertedID: id})
}

// List
//
// @Summary      List forum queries
// @Tags         forum
// @Produce      json
// @Success      200  {array}   domain.ForumQuery
// @Failure      500  {object}  ErrorResponse
// @Router       /forumQueries [get]
func (h *ForumHandler) List(c echo.Context) error {
	queries, err := h.forum.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, queries)
}

// SetViews overwrites the view counter of a query.
//
// @Summary      Set forum query views
// @Tags         forum
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Query id"
// @Param        body  body      viewsRequest  true  "Absolute view count"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /forumQueries/{id} [post]
func (h *ForumHandler) SetViews(c echo.Context) error {
	var req viewsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ok, err := h.forum.SetViews(c.Request().Context(), c.Param("id"), *req.Views)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: ok})
}
