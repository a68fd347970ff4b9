package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type dashboardFixture struct {
	svc         *DashboardService
	users       *fakeUserRepo
	courses     *fakeCourseRepo
	assignments *fakeAssignmentRepo
	submissions *fakeSubmissionRepo
	cache       *fakeCacheRepo
}

func newDashboardFixture(t *testing.T, cacheEnabled bool) *dashboardFixture {
	t.Helper()
	fx := &dashboardFixture{
		users:       newFakeUserRepo(),
		courses:     newFakeCourseRepo(),
		assignments: newFakeAssignmentRepo(),
		submissions: newFakeSubmissionRepo(),
		cache:       newFakeCacheRepo(),
	}
	fx.svc = NewDashboardService(DashboardServiceParams{
		Users:       fx.users,
		Courses:     fx.courses,
		Assignments: fx.assignments,
		Submissions: fx.submissions,
		Cache:       NewCacheService(fx.cache, nil, time.Minute, nil, cacheEnabled),
	})
	return fx
}

func TestDashboardStatsCounts(t *testing.T) {
	fx := newDashboardFixture(t, false)
	ctx := context.Background()
	fx.users.put(newStudent("Alice", "STU001"))
	fx.users.put(newStudent("Bob", "STU002"))
	fx.users.put(models.User{Username: "ramsir", Role: models.RoleAdmin})
	fx.courses.add("Full Stack Web", 15000)
	assignment := fx.assignments.add(models.Assignment{Title: "API", DueDate: time.Now()})
	require.NoError(t, fx.submissions.Create(ctx, &models.Submission{AssignmentID: assignment.ID, StudentID: uuid.NewString(), Status: models.SubmissionPending}))
	require.NoError(t, fx.submissions.Create(ctx, &models.Submission{AssignmentID: assignment.ID, StudentID: uuid.NewString(), Status: models.SubmissionApproved}))
	title := "API"
	for i := 0; i < 7; i++ {
		fx.submissions.recent = append(fx.submissions.recent, models.RecentSubmission{ID: uuid.NewString(), Status: models.SubmissionPending, AssignmentTitle: &title})
	}

	stats, hit, err := fx.svc.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, 1, stats.TotalCourses)
	assert.Equal(t, 1, stats.TotalAssignments)
	assert.Equal(t, 1, stats.PendingSubmissions)
	assert.Len(t, stats.RecentSubmissions, 5)
}

func TestDashboardStatsCached(t *testing.T) {
	fx := newDashboardFixture(t, true)
	ctx := context.Background()
	fx.courses.add("Full Stack Web", 15000)

	first, hit, err := fx.svc.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, first.RecentSubmissions)

	fx.courses.add("Data Science", 12000)
	second, hit, err := fx.svc.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, second.TotalCourses)

	require.NoError(t, fx.svc.cache.Invalidate(ctx, dashboardCachePattern))
	third, hit, err := fx.svc.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, third.TotalCourses)
}

func TestDashboardStatsFailure(t *testing.T) {
	fx := newDashboardFixture(t, false)
	fx.submissions.err = errors.New("boom")

	_, _, err := fx.svc.Stats(context.Background())
	requireCode(t, err, appErrors.ErrInternal.Code)
}
