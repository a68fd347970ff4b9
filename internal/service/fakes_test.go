package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

// The fakes below keep records by value and hand out copies, mirroring how a
// real store round-trips rows.

func cloneUser(u models.User) *models.User {
	out := u
	if u.Enrollments != nil {
		out.Enrollments = append(models.Enrollments{}, u.Enrollments...)
	}
	return &out
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]models.User
	err    error
	writes int
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]models.User{}}
	for _, u := range users {
		repo.put(u)
	}
	return repo
}

func (f *fakeUserRepo) put(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	f.users[u.ID] = *cloneUser(u)
	return cloneUser(u)
}

func (f *fakeUserRepo) get(id string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *cloneUser(f.users[id])
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneUser(u), nil
}

func (f *fakeUserRepo) FindStudentByID(ctx context.Context, id string) (*models.User, error) {
	u, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleStudent {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context, role models.UserRole) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, u := range f.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserRepo) ListStudents(_ context.Context, filter models.StudentFilter) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.Role == models.RoleStudent {
			out = append(out, *cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = *cloneUser(*user)
	return nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	f.users[user.ID] = *cloneUser(*user)
	return nil
}

func (f *fakeUserRepo) UpdateEnrollments(_ context.Context, id string, enrollments models.Enrollments, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Enrollments = append(models.Enrollments{}, enrollments...)
	u.UpdatedAt = updatedAt
	f.users[id] = u
	f.writes++
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Role != models.RoleStudent {
		return sql.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[string]models.Course
	order   []string
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: map[string]models.Course{}}
	for _, c := range courses {
		c := c
		_ = repo.Create(context.Background(), &c)
	}
	return repo
}

func (f *fakeCourseRepo) add(title string, price int64) models.Course {
	c := models.Course{Title: title, Duration: "3 months", Price: price}
	_ = f.Create(context.Background(), &c)
	return c
}

func (f *fakeCourseRepo) List(context.Context) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Course, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		if c, ok := f.courses[f.order[i]]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (f *fakeCourseRepo) FindByIDs(_ context.Context, ids []string) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Course
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.courses), nil
}

func (f *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	course.ID = uuid.NewString()
	course.CreatedAt = time.Now().UTC()
	course.UpdatedAt = course.CreatedAt
	f.courses[course.ID] = *course
	f.order = append(f.order, course.ID)
	return nil
}

func (f *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.courses, id)
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []models.Payment
	err      error
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	payment.ID = uuid.NewString()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}
	payment.CreatedAt = time.Now().UTC()
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentRepo) ListByStudent(_ context.Context, studentID string) ([]models.Payment, error) {
	all, _ := f.ListAll(context.Background())
	var out []models.Payment
	for _, p := range all {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) ListAll(context.Context) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := append([]models.Payment(nil), f.payments...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]models.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[string]models.Assignment{}}
}

func (f *fakeAssignmentRepo) add(a models.Assignment) models.Assignment {
	_ = f.Create(context.Background(), &a)
	return a
}

func (f *fakeAssignmentRepo) List(context.Context) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Assignment, 0, len(f.assignments))
	for _, a := range f.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAssignmentRepo) ListForStudent(_ context.Context, studentID string) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.assignments {
		a := a
		if IsAssigned(&a, studentID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (f *fakeAssignmentRepo) FindByID(_ context.Context, id string) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (f *fakeAssignmentRepo) FindByIDs(_ context.Context, ids []string) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, id := range ids {
		if a, ok := f.assignments[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.assignments), nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment.ID = uuid.NewString()
	if assignment.AssignedStudents == nil {
		assignment.AssignedStudents = pq.StringArray{}
	}
	assignment.CreatedAt = time.Now().UTC()
	assignment.UpdatedAt = assignment.CreatedAt
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[assignment.ID]; !ok {
		return sql.ErrNoRows
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.assignments, id)
	return nil
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[string]models.Submission
	recent      []models.RecentSubmission
	err         error
	createErr   error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[string]models.Submission{}}
}

func (f *fakeSubmissionRepo) Exists(_ context.Context, assignmentID, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, s := range f.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	submission.ID = uuid.NewString()
	submission.CreatedAt = time.Now().UTC()
	submission.UpdatedAt = submission.CreatedAt
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) FindByID(_ context.Context, id string) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.submissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSubmissionRepo) ListByStudent(_ context.Context, studentID string) ([]models.Submission, error) {
	all, _ := f.ListAll(context.Background())
	var out []models.Submission
	for _, s := range all {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListAll(context.Context) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Submission, 0, len(f.submissions))
	for _, s := range f.submissions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (f *fakeSubmissionRepo) UpdateReview(_ context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.submissions[submission.ID]; !ok {
		return sql.ErrNoRows
	}
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) CountByStatus(_ context.Context, status models.SubmissionStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, s := range f.submissions {
		if s.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubmissionRepo) Recent(_ context.Context, limit int) ([]models.RecentSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

type fakeCacheRepo struct {
	mu          sync.Mutex
	entries     map[string][]byte
	ttls        map[string]time.Duration
	gets        int
	invalidated []string
	err         error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.err != nil {
		return f.err
	}
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.ttls[key] = ttl
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

func newStudent(name, code string) models.User {
	return models.User{
		ID:          uuid.NewString(),
		Username:    strings.ToLower(name),
		Role:        models.RoleStudent,
		Name:        name,
		Email:       strings.ToLower(name) + "@academy.test",
		StudentID:   &code,
		Enrollments: models.Enrollments{},
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
