package options

import (
	"net/http"

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
	g := api.Group("/options")
	for _, kind := range Kinds {
		k := kind
		g.GET("/"+string(k), func(c echo.Context) error { return h.list(c, k) })
		if !k.ReadOnly() {
			g.POST("/"+string(k), func(c echo.Context) error { return h.create(c, k) })
		}
	}
}

func (h *Handler) list(c echo.Context, kind Kind) error {
	items, err := h.svc.List(c.Request().Context(), kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, kind.renderAll(items))
}

type createOptionRequest struct {
	Label    string  `json:"label"`
	Name     string  `json:"name"`
	Category *string `json:"category"`
}

func (h *Handler) create(c echo.Context, kind Kind) error {
	var req createOptionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	label := req.Label
	if kind == KindMedicines {
		label = req.Name
	}
	opt, err := h.svc.Create(c.Request().Context(), kind, label, req.Category)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, kind.render(*opt))
}
