package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
)

func TestExpansionStudentResolvesCourses(t *testing.T) {
	courses := newFakeCourseRepo()
	course := courses.add("Full Stack Web", 15000)
	student := newStudent("Alice", "STU001")
	deleted := uuid.NewString()
	student.Enrollments = models.Enrollments{
		{CourseID: course.ID, Fees: models.NewFeeSnapshot(15000)},
		{CourseID: deleted, Fees: models.NewFeeSnapshot(9000)},
	}
	svc := NewExpansionService(newFakeUserRepo(), courses, newFakeAssignmentRepo())

	view, err := svc.Student(context.Background(), &student)
	require.NoError(t, err)
	require.Len(t, view.Enrollments, 2)
	require.NotNil(t, view.Enrollments[0].Course)
	assert.Equal(t, "Full Stack Web", view.Enrollments[0].Course.Title)
	assert.Nil(t, view.Enrollments[1].Course)
	assert.Equal(t, deleted, view.Enrollments[1].CourseID)
}

func TestExpansionPayments(t *testing.T) {
	users := newFakeUserRepo()
	courses := newFakeCourseRepo()
	alice := users.put(newStudent("Alice", "STU001"))
	course := courses.add("Data Science", 12000)
	svc := NewExpansionService(users, courses, newFakeAssignmentRepo())

	views, err := svc.Payments(context.Background(), []models.Payment{
		{ID: uuid.NewString(), StudentID: alice.ID, CourseID: course.ID, Amount: 100},
		{ID: uuid.NewString(), StudentID: uuid.NewString(), CourseID: course.ID, Amount: 200},
	})
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Student)
	assert.Equal(t, "Alice", views[0].Student.Name)
	assert.Equal(t, "Data Science", views[0].Course.Title)
	assert.Nil(t, views[1].Student)
}

func TestExpansionAssignmentsAndSubmissions(t *testing.T) {
	users := newFakeUserRepo()
	courses := newFakeCourseRepo()
	assignments := newFakeAssignmentRepo()
	alice := users.put(newStudent("Alice", "STU001"))
	course := courses.add("Full Stack Web", 15000)
	assignment := assignments.add(models.Assignment{
		Title:            "API",
		CourseID:         course.ID,
		AssignedStudents: pq.StringArray{alice.ID, uuid.NewString()},
		DueDate:          time.Now(),
	})
	svc := NewExpansionService(users, courses, assignments)

	views, err := svc.Assignments(context.Background(), []models.Assignment{assignment})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Full Stack Web", views[0].Course.Title)
	require.Len(t, views[0].Students, 1)
	assert.Equal(t, alice.ID, views[0].Students[0].ID)

	subs, err := svc.Submissions(context.Background(), []models.Submission{{ID: uuid.NewString(), AssignmentID: assignment.ID, StudentID: alice.ID}})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].Assignment)
	assert.Equal(t, "API", subs[0].Assignment.Title)
	assert.Equal(t, "STU001", *subs[0].Student.StudentID)
}

func TestExpansionEmptyInputs(t *testing.T) {
	svc := NewExpansionService(nil, nil, nil)

	views, err := svc.Students(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, views)

	payments, err := svc.Payments(context.Background(), []models.Payment{})
	require.NoError(t, err)
	assert.NotNil(t, payments)
}
