package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type studentFixture struct {
	svc     *StudentService
	users   *fakeUserRepo
	courses *fakeCourseRepo
	cache   *fakeCacheRepo
}

func newStudentFixture(t *testing.T) *studentFixture {
	t.Helper()
	users := newFakeUserRepo()
	courses := newFakeCourseRepo()
	cacheRepo := newFakeCacheRepo()
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	ledger := NewLedgerService(users, courses, nil, nil, nil)
	svc := NewStudentService(users, ledger, cache, nil, nil, StudentServiceConfig{})
	return &studentFixture{svc: svc, users: users, courses: courses, cache: cacheRepo}
}

func validCreateRequest() CreateStudentRequest {
	return CreateStudentRequest{
		Name:     "Alice",
		Email:    "Alice@Academy.test",
		Username: "alice",
		Password: "123456",
	}
}

func TestStudentCreateEnrollsResolvableCourses(t *testing.T) {
	fx := newStudentFixture(t)
	first := fx.courses.add("Full Stack Web", 15000)
	second := fx.courses.add("Data Science", 12000)

	req := validCreateRequest()
	req.Courses = []string{first.ID, uuid.NewString(), second.ID}
	student, err := fx.svc.Create(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, student.Enrollments, 2)
	assert.Equal(t, []string{first.ID, second.ID}, student.Enrollments.CourseIDs())
	assert.Equal(t, models.RoleStudent, student.Role)
	assert.Equal(t, "alice@academy.test", student.Email)
	require.NotNil(t, student.StudentID)
	assert.Equal(t, "STU001", *student.StudentID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("123456")))

	stored := fx.users.get(student.ID)
	assert.Len(t, stored.Enrollments, 2)
	assert.Contains(t, fx.cache.invalidated, dashboardCachePattern)
}

func TestStudentCreateSequentialIDs(t *testing.T) {
	fx := newStudentFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Username = "bob"
	req.Email = "bob@academy.test"
	bob, err := fx.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "STU002", *bob.StudentID)
	assert.Empty(t, bob.Enrollments)
}

func TestStudentCreateConflicts(t *testing.T) {
	fx := newStudentFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Email = "other@academy.test"
	_, err = fx.svc.Create(ctx, req)
	requireCode(t, err, appErrors.ErrConflict.Code)

	req = validCreateRequest()
	req.Username = "alice2"
	_, err = fx.svc.Create(ctx, req)
	requireCode(t, err, appErrors.ErrConflict.Code)
}

func TestStudentCreateValidation(t *testing.T) {
	fx := newStudentFixture(t)
	req := validCreateRequest()
	req.Password = "123"
	_, err := fx.svc.Create(context.Background(), req)
	requireCode(t, err, appErrors.ErrValidation.Code)

	req = validCreateRequest()
	req.Email = "not-an-email"
	_, err = fx.svc.Create(context.Background(), req)
	requireCode(t, err, appErrors.ErrValidation.Code)
}

func TestStudentCreateUniqueViolationMapsToConflict(t *testing.T) {
	fx := newStudentFixture(t)
	fx.users.err = &pq.Error{Code: "23505", Constraint: "users_student_id_key"}
	fx.svc.repo = &createFailingRepo{fakeUserRepo: fx.users}

	_, err := fx.svc.Create(context.Background(), validCreateRequest())
	requireCode(t, err, appErrors.ErrConflict.Code)
}

// createFailingRepo only fails the insert so earlier lookups succeed.
type createFailingRepo struct {
	*fakeUserRepo
}

func (r *createFailingRepo) CountByRole(context.Context, models.UserRole) (int, error) {
	return 0, nil
}

func (r *createFailingRepo) Create(ctx context.Context, user *models.User) error {
	return r.fakeUserRepo.err
}

func TestStudentUpdateProfile(t *testing.T) {
	fx := newStudentFixture(t)
	ctx := context.Background()
	alice, err := fx.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	fx.cache.invalidated = nil

	updated, err := fx.svc.Update(ctx, alice.ID, UpdateStudentRequest{
		Name:    "Alice B",
		Email:   "alice.b@academy.test",
		Phone:   "555",
		Socials: models.Socials{Github: "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "alice", fx.users.get(alice.ID).Socials.Github)
	assert.Equal(t, "STU001", *fx.users.get(alice.ID).StudentID)
	assert.Contains(t, fx.cache.invalidated, dashboardCachePattern)

	_, err = fx.svc.Update(ctx, uuid.NewString(), UpdateStudentRequest{Name: "x", Email: "x@academy.test"})
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestStudentUpdateEmailConflict(t *testing.T) {
	fx := newStudentFixture(t)
	ctx := context.Background()
	alice, err := fx.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	req := validCreateRequest()
	req.Username = "bob"
	req.Email = "bob@academy.test"
	_, err = fx.svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = fx.svc.Update(ctx, alice.ID, UpdateStudentRequest{Name: "Alice", Email: "bob@academy.test"})
	requireCode(t, err, appErrors.ErrConflict.Code)
}

func TestStudentGetAndDelete(t *testing.T) {
	fx := newStudentFixture(t)
	ctx := context.Background()
	alice, err := fx.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	got, err := fx.svc.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	require.NoError(t, fx.svc.Delete(ctx, alice.ID))
	_, err = fx.svc.Get(ctx, alice.ID)
	requireCode(t, err, appErrors.ErrNotFound.Code)
	requireCode(t, fx.svc.Delete(ctx, alice.ID), appErrors.ErrNotFound.Code)
	requireCode(t, fx.svc.Delete(ctx, "bad"), appErrors.ErrNotFound.Code)
}

func TestStudentListPagination(t *testing.T) {
	fx := newStudentFixture(t)
	fx.users.put(newStudent("Alice", "STU001"))
	fx.users.put(newStudent("Bob", "STU002"))
	fx.users.put(models.User{Username: "ramsir", Role: models.RoleAdmin})

	students, pagination, err := fx.svc.List(context.Background(), models.StudentFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestStudentGetRejectsAdmins(t *testing.T) {
	fx := newStudentFixture(t)
	admin := fx.users.put(models.User{Username: "ramsir", Role: models.RoleAdmin})

	_, err := fx.svc.Get(context.Background(), admin.ID)
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestStudentCountFailure(t *testing.T) {
	fx := newStudentFixture(t)
	fx.users.err = errors.New("timeout")

	_, err := fx.svc.Create(context.Background(), validCreateRequest())
	requireCode(t, err, appErrors.ErrInternal.Code)
}
