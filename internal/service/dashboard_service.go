package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

const dashboardStatsKey = "dash:stats"

type roleCounter interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type recordCounter interface {
	Count(ctx context.Context) (int, error)
}

type submissionStats interface {
	CountByStatus(ctx context.Context, status models.SubmissionStatus) (int, error)
	Recent(ctx context.Context, limit int) ([]models.RecentSubmission, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	RecentLimit int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Users       roleCounter
	Courses     recordCounter
	Assignments recordCounter
	Submissions submissionStats
	Cache       *CacheService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// DashboardService computes the admin overview counts.
type DashboardService struct {
	users       roleCounter
	courses     recordCounter
	assignments recordCounter
	submissions submissionStats
	cache       *CacheService
	logger      *zap.Logger
	cfg         DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = dashboardTTL
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:       params.Users,
		courses:     params.Courses,
		assignments: params.Assignments,
		submissions: params.Submissions,
		cache:       params.Cache,
		logger:      logger,
		cfg:         cfg,
	}
}

// Stats returns the dashboard counts and whether they came from cache.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, bool, error) {
	if stats, hit := s.tryCache(ctx, dashboardStatsKey); hit {
		return stats, true, nil
	}

	stats, err := s.compose(ctx)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, dashboardStatsKey, stats)
	return stats, false, nil
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardStats, error) {
	students, err := s.users.CountByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, wrapDashboardErr(err, "students")
	}
	courses, err := s.courses.Count(ctx)
	if err != nil {
		return nil, wrapDashboardErr(err, "courses")
	}
	assignments, err := s.assignments.Count(ctx)
	if err != nil {
		return nil, wrapDashboardErr(err, "assignments")
	}
	pending, err := s.submissions.CountByStatus(ctx, models.SubmissionPending)
	if err != nil {
		return nil, wrapDashboardErr(err, "pending submissions")
	}
	recent, err := s.submissions.Recent(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, wrapDashboardErr(err, "recent submissions")
	}
	if recent == nil {
		recent = []models.RecentSubmission{}
	}

	return &models.DashboardStats{
		TotalStudents:      students,
		TotalCourses:       courses,
		TotalAssignments:   assignments,
		PendingSubmissions: pending,
		RecentSubmissions:  recent,
	}, nil
}

// tryCache treats cache failures as misses; the dashboard is always computable.
func (s *DashboardService) tryCache(ctx context.Context, key string) (*models.DashboardStats, bool) {
	if !s.cache.Enabled() {
		return nil, false
	}
	var cached models.DashboardStats
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !hit {
		return nil, false
	}
	return &cached, true
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func wrapDashboardErr(err error, what string) error {
	return appErrors.Internal(err, "failed to count "+what)
}
