package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mbdsaraiva/academia-api/internal/dto"
	"github.com/mbdsaraiva/academia-api/internal/models"
)

const dashboardKey = dashboardCachePrefix + "summary"

// DashboardConfig tunes the dashboard payload.
type DashboardConfig struct {
	CacheTTL       time.Duration
	PopularCourses int
}

// DashboardService assembles the dashboard from independent aggregate queries.
type DashboardService struct {
	repo    reportRepository
	cache   *CacheService
	metrics *MetricsService
	cfg     DashboardConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService constructs a dashboard service.
func NewDashboardService(repo reportRepository, cache *CacheService, metrics *MetricsService, cfg DashboardConfig, logger *zap.Logger) *DashboardService {
	if cfg.PopularCourses <= 0 {
		cfg.PopularCourses = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, metrics: metrics, cfg: cfg, logger: logger, now: time.Now}
}

// Summary returns the dashboard payload. The boolean reports a cache hit.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	start := time.Now()
	var cached dto.DashboardResponse
	if hit, err := s.cache.Get(ctx, dashboardKey, &cached); err == nil && hit {
		s.metrics.ObserveReport(reportLabelDashboard, true, time.Since(start))
		return &cached, true, nil
	}

	var (
		totals  *models.EnrollmentTotals
		counts  *models.CatalogCounts
		popular []models.CourseRollup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.repo.EnrollmentTotals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.repo.CatalogCounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		popular, err = s.repo.CourseRollups(gctx, s.cfg.PopularCourses)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, internalError(err, "failed to build dashboard")
	}

	summary := totals.Summarize()
	resp := &dto.DashboardResponse{
		TotalStudents:      counts.Students,
		ActiveCourses:      counts.ActiveCourses,
		TotalEnrollments:   summary.TotalEnrollments,
		PaidEnrollments:    summary.PaidEnrollments,
		PendingEnrollments: summary.PendingEnrollments,
		TotalPaid:          summary.TotalPaid,
		TotalPending:       summary.TotalPending,
		GrandTotal:         summary.GrandTotal,
		PercentPaid:        summary.PercentPaid,
		PercentPending:     models.Percent(summary.PendingEnrollments, summary.TotalEnrollments),
		PopularCourses:     popular,
		GeneratedAt:        s.now().UTC(),
	}
	_ = s.cache.Set(ctx, dashboardKey, resp, s.cfg.CacheTTL)
	s.metrics.ObserveReport(reportLabelDashboard, false, time.Since(start))
	return resp, false, nil
}
