package service

import (
	"context"

	"github.com/noah-isme/academy-api/internal/models"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type userBatchFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type courseBatchFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

type assignmentBatchFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Assignment, error)
}

// ExpansionService resolves stored references into response views. Each call
// issues at most one batched lookup per referenced collection. Dangling
// references resolve to nil rather than failing.
type ExpansionService struct {
	users       userBatchFinder
	courses     courseBatchFinder
	assignments assignmentBatchFinder
}

// NewExpansionService constructs an ExpansionService.
func NewExpansionService(users userBatchFinder, courses courseBatchFinder, assignments assignmentBatchFinder) *ExpansionService {
	return &ExpansionService{users: users, courses: courses, assignments: assignments}
}

// Student expands a single student's enrollments.
func (s *ExpansionService) Student(ctx context.Context, student *models.User) (*models.StudentView, error) {
	views, err := s.Students(ctx, []models.User{*student})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Students expands enrollments for a page of students.
func (s *ExpansionService) Students(ctx context.Context, students []models.User) ([]models.StudentView, error) {
	ids := newIDSet()
	for _, st := range students {
		for _, e := range st.Enrollments {
			ids.add(e.CourseID)
		}
	}
	courses, err := s.courseIndex(ctx, ids.list())
	if err != nil {
		return nil, err
	}

	views := make([]models.StudentView, 0, len(students))
	for _, st := range students {
		enrollments := make([]models.EnrollmentView, 0, len(st.Enrollments))
		for _, e := range st.Enrollments {
			enrollments = append(enrollments, models.EnrollmentView{
				CourseID:  e.CourseID,
				Course:    courses[e.CourseID],
				StartDate: e.StartDate,
				Fees:      e.Fees,
			})
		}
		views = append(views, models.StudentView{User: st, Enrollments: enrollments})
	}
	return views, nil
}

// Payments resolves the student and course of each journal entry.
func (s *ExpansionService) Payments(ctx context.Context, payments []models.Payment) ([]models.PaymentView, error) {
	studentIDs, courseIDs := newIDSet(), newIDSet()
	for _, p := range payments {
		studentIDs.add(p.StudentID)
		courseIDs.add(p.CourseID)
	}
	users, err := s.userIndex(ctx, studentIDs.list())
	if err != nil {
		return nil, err
	}
	courses, err := s.courseIndex(ctx, courseIDs.list())
	if err != nil {
		return nil, err
	}

	views := make([]models.PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, models.PaymentView{
			Payment: p,
			Student: models.RefOf(users[p.StudentID]),
			Course:  models.CourseRefOf(courses[p.CourseID]),
		})
	}
	return views, nil
}

// Assignments resolves course and audience for each assignment. Audience
// members that no longer exist are omitted.
func (s *ExpansionService) Assignments(ctx context.Context, assignments []models.Assignment) ([]models.AssignmentView, error) {
	studentIDs, courseIDs := newIDSet(), newIDSet()
	for _, a := range assignments {
		courseIDs.add(a.CourseID)
		for _, id := range a.AssignedStudents {
			studentIDs.add(id)
		}
	}
	users, err := s.userIndex(ctx, studentIDs.list())
	if err != nil {
		return nil, err
	}
	courses, err := s.courseIndex(ctx, courseIDs.list())
	if err != nil {
		return nil, err
	}

	views := make([]models.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		students := make([]models.StudentRef, 0, len(a.AssignedStudents))
		for _, id := range a.AssignedStudents {
			if ref := models.RefOf(users[id]); ref != nil {
				students = append(students, *ref)
			}
		}
		views = append(views, models.AssignmentView{
			Assignment: a,
			Course:     models.CourseRefOf(courses[a.CourseID]),
			Students:   students,
		})
	}
	return views, nil
}

// Submissions resolves assignment and student for each submission.
func (s *ExpansionService) Submissions(ctx context.Context, submissions []models.Submission) ([]models.SubmissionView, error) {
	studentIDs, assignmentIDs := newIDSet(), newIDSet()
	for _, sub := range submissions {
		studentIDs.add(sub.StudentID)
		assignmentIDs.add(sub.AssignmentID)
	}
	users, err := s.userIndex(ctx, studentIDs.list())
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentIndex(ctx, assignmentIDs.list())
	if err != nil {
		return nil, err
	}

	views := make([]models.SubmissionView, 0, len(submissions))
	for _, sub := range submissions {
		view := models.SubmissionView{Submission: sub, Student: models.RefOf(users[sub.StudentID])}
		if a, ok := assignments[sub.AssignmentID]; ok {
			view.Assignment = &models.AssignmentRef{ID: a.ID, Title: a.Title, CourseID: a.CourseID, DueDate: a.DueDate}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ExpansionService) userIndex(ctx context.Context, ids []string) (map[string]*models.User, error) {
	index := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, expansionErr(err, "students")
	}
	for i := range users {
		index[users[i].ID] = &users[i]
	}
	return index, nil
}

func (s *ExpansionService) courseIndex(ctx context.Context, ids []string) (map[string]*models.Course, error) {
	index := make(map[string]*models.Course, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	courses, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, expansionErr(err, "courses")
	}
	for i := range courses {
		index[courses[i].ID] = &courses[i]
	}
	return index, nil
}

func (s *ExpansionService) assignmentIndex(ctx context.Context, ids []string) (map[string]*models.Assignment, error) {
	index := make(map[string]*models.Assignment, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	assignments, err := s.assignments.FindByIDs(ctx, ids)
	if err != nil {
		return nil, expansionErr(err, "assignments")
	}
	for i := range assignments {
		index[assignments[i].ID] = &assignments[i]
	}
	return index, nil
}

func expansionErr(err error, what string) error {
	return appErrors.Internal(err, "failed to resolve "+what)
}

// idSet collects ids in first-seen order, skipping blanks and malformed values.
type idSet struct {
	seen map[string]struct{}
	ids  []string
}

func newIDSet() *idSet {
	return &idSet{seen: map[string]struct{}{}}
}

func (s *idSet) add(id string) {
	if !validID(id) {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *idSet) list() []string {
	return s.ids
}
