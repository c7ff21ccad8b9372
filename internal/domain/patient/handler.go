package patient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/dencare/dencare/internal/domain/payment"
	"github.com/dencare/dencare/internal/domain/visit"
	"github.com/dencare/dencare/internal/platform/apperr"
	"github.com/dencare/dencare/pkg/pagination"
)

// VisitLister supplies a patient's visits for the full view.
type VisitLister interface {
	ListForPatient(ctx context.Context, patientID int64) ([]*visit.Visit, error)
}

// PaymentLister supplies a patient's payments and their total.
type PaymentLister interface {
	ListByPatient(ctx context.Context, patientID int64) ([]*payment.Payment, error)
	SumByPatient(ctx context.Context, patientID int64) (int64, error)
}

type Handler struct {
	svc      *Service
	visits   VisitLister
	payments PaymentLister
}

func NewHandler(svc *Service, visits VisitLister, payments PaymentLister) *Handler {
	return &Handler{svc: svc, visits: visits, payments: payments}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients")
	g.GET("", h.ListPatients)
	g.POST("", h.CreatePatient)
	g.GET("/export", h.ExportPatients)
	g.GET("/:id", h.GetPatient)
	g.GET("/:id/full", h.GetPatientFull)
	g.DELETE("/:id", h.DeletePatient)
	g.PATCH("/:id/display", h.UpdateDisplayNumber)
	g.PATCH("/:id/history", h.UpdateHistory)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var input CreatePatientInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// FullView is the combined patient detail response.
type FullView struct {
	Patient        *Patient           `json:"patient"`
	Visits         []*visit.Visit     `json:"visits"`
	Payments       []*payment.Payment `json:"payments"`
	TotalPaid      int64              `json:"totalPaid"`
	DentalHistory  []HistoryItem      `json:"dentalHistory"`
	MedicalHistory []HistoryItem      `json:"medicalHistory"`
	Allergies      []HistoryItem      `json:"allergies"`
}

func (h *Handler) GetPatientFull(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	// The seven reads are independent, so they fan out on the pool and the
	// first failure cancels the rest.
	var (
		p         *Patient
		visits    []*visit.Visit
		payments  []*payment.Payment
		totalPaid int64
		dental    []HistoryItem
		medical   []HistoryItem
		allergies []HistoryItem
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) { p, err = h.svc.GetPatient(ctx, id); return })
	g.Go(func() (err error) { visits, err = h.visits.ListForPatient(ctx, id); return })
	g.Go(func() (err error) { payments, err = h.payments.ListByPatient(ctx, id); return })
	g.Go(func() (err error) { totalPaid, err = h.payments.SumByPatient(ctx, id); return })
	g.Go(func() (err error) { dental, err = h.svc.History(ctx, id, DentalHistory); return })
	g.Go(func() (err error) { medical, err = h.svc.History(ctx, id, MedicalHistory); return })
	g.Go(func() (err error) { allergies, err = h.svc.History(ctx, id, Allergies); return })
	if err := g.Wait(); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, FullView{
		Patient:        p,
		Visits:         visits,
		Payments:       payments,
		TotalPaid:      totalPaid,
		DentalHistory:  dental,
		MedicalHistory: medical,
		Allergies:      allergies,
	})
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type updateDisplayRequest struct {
	NewDisplay int `json:"newDisplay"`
}

func (h *Handler) UpdateDisplayNumber(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateDisplayRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, err := h.svc.UpdateDisplayNumber(c.Request().Context(), id, req.NewDisplay)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateHistory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var input UpdateHistoryInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.UpdateHistory(c.Request().Context(), id, input); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) ExportPatients(c echo.Context) error {
	f, err := h.svc.ExportXLSX(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="patients.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}
