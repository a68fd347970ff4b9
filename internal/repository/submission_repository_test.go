package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/models"
)

func TestSubmissionExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM submissions WHERE assignment_id = $1 AND student_id = $2)")).
		WithArgs("a1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "a1", "s1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRecent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "status", "github_url", "submitted_at", "assignment_id", "assignment_title", "student_id", "student_name", "student_code"}).
		AddRow("sub1", "Pending", "https://github.com/a/b", now, "a1", "Portfolio", "s1", "Alice Johnson", "STU001").
		AddRow("sub2", "Approved", "https://github.com/c/d", now.Add(-time.Hour), "a2", nil, "s9", nil, nil)
	mock.ExpectQuery("FROM submissions s LEFT JOIN assignments a").
		WithArgs(5).
		WillReturnRows(rows)

	recent, err := repo.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Alice Johnson", *recent[0].StudentName)
	assert.Nil(t, recent[1].StudentName)
	assert.Equal(t, models.SubmissionApproved, recent[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO submissions").WillReturnResult(sqlmock.NewResult(1, 1))

	submission := &models.Submission{AssignmentID: "a1", StudentID: "s1", GithubURL: "https://github.com/a/b", Status: models.SubmissionPending}
	require.NoError(t, repo.Create(context.Background(), submission))
	assert.NotEmpty(t, submission.ID)
	assert.False(t, submission.SubmittedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
