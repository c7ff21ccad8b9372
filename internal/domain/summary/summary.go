// Package summary serves the dashboard aggregates: patient count, revenue
// and pending lab work. Values are cached in-process for a short window.
package summary

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const cacheTTL = 10 * time.Second

type Summary struct {
	TotalPatients  int   `json:"totalPatients"`
	TotalRevenue   int64 `json:"totalRevenue"`
	PendingLabWork int   `json:"pendingLabWorks"`
}

type SummaryRepository interface {
	TotalPatients(ctx context.Context) (int, error)
	TotalRevenue(ctx context.Context) (int64, error)
	PendingLabWork(ctx context.Context) (int, error)
}

type summaryRepoPG struct{ pool *pgxpool.Pool }

func NewSummaryRepoPG(pool *pgxpool.Pool) SummaryRepository {
	return &summaryRepoPG{pool: pool}
}

func (r *summaryRepoPG) TotalPatients(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&count)
	return count, err
}

func (r *summaryRepoPG) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&total)
	return total, err
}

func (r *summaryRepoPG) PendingLabWork(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lab_works WHERE delivered = FALSE`).Scan(&count)
	return count, err
}

type Service struct {
	repo SummaryRepository
	now  func() time.Time

	mu        sync.Mutex
	cached    *Summary
	expiresAt time.Time
}

func NewService(repo SummaryRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get returns the cached summary while fresh, otherwise recomputes. The
// numbers may lag writes by up to the TTL, which is acceptable for a
// dashboard read.
func (s *Service) Get(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.now().Before(s.expiresAt) {
		return s.cached, nil
	}

	patients, err := s.repo.TotalPatients(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.PendingLabWork(ctx)
	if err != nil {
		return nil, err
	}

	s.cached = &Summary{TotalPatients: patients, TotalRevenue: revenue, PendingLabWork: pending}
	s.expiresAt = s.now().Add(cacheTTL)
	return s.cached, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/summary", h.GetSummary)
}

func (h *Handler) GetSummary(c echo.Context) error {
	sum, err := h.svc.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}
