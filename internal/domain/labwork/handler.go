package labwork

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dencare/dencare/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	lw := api.Group("/lab-works")
	lw.POST("", h.CreateLabWork)
	lw.GET("", h.ListLabWorks)
	lw.PATCH("/:id/delivered", h.MarkDelivered)
	lw.DELETE("/:id", h.DeleteLabWork)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func (h *Handler) CreateLabWork(c echo.Context) error {
	var input CreateLabWorkInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	w, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) ListLabWorks(c echo.Context) error {
	pendingOnly := c.QueryParam("pending") == "true"
	items, err := h.svc.List(c.Request().Context(), pendingOnly)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MarkDelivered(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	w, err := h.svc.MarkDelivered(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteLabWork(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
