package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-api/internal/models"
)

const submissionColumns = `id, assignment_id, student_id, github_url, status, submitted_at, reviewed_at, feedback, created_at, updated_at`

// SubmissionRepository stores assignment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Exists reports whether the student already submitted the assignment.
func (r *SubmissionRepository) Exists(ctx context.Context, assignmentID, studentID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM submissions WHERE assignment_id = $1 AND student_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, assignmentID, studentID); err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}
	return exists, nil
}

// Create inserts a submission.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = now
	}
	submission.CreatedAt = now
	submission.UpdatedAt = now
	const query = `INSERT INTO submissions (id, assignment_id, student_id, github_url, status, submitted_at, reviewed_at, feedback, created_at, updated_at) VALUES (:id, :assignment_id, :student_id, :github_url, :status, :submitted_at, :reviewed_at, :feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// FindByID returns a submission by id.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &submission, nil
}

// ListByStudent returns a student's submissions, newest first.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE student_id = $1 ORDER BY submitted_at DESC`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list student submissions: %w", err)
	}
	return submissions, nil
}

// ListAll returns every submission, newest first.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY submitted_at DESC`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// UpdateReview stores a review outcome.
func (r *SubmissionRepository) UpdateReview(ctx context.Context, submission *models.Submission) error {
	submission.UpdatedAt = time.Now().UTC()
	const query = `UPDATE submissions SET status = :status, feedback = :feedback, reviewed_at = :reviewed_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("update submission review: %w", err)
	}
	return nil
}

// CountByStatus counts submissions in the given state.
func (r *SubmissionRepository) CountByStatus(ctx context.Context, status models.SubmissionStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM submissions WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return total, nil
}

// Recent returns the latest submissions joined with student and assignment.
// Deleted students or assignments leave the joined columns null.
func (r *SubmissionRepository) Recent(ctx context.Context, limit int) ([]models.RecentSubmission, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `SELECT s.id, s.status, s.github_url, s.submitted_at, s.assignment_id, a.title AS assignment_title, s.student_id, u.name AS student_name, u.student_id AS student_code
FROM submissions s
LEFT JOIN assignments a ON a.id = s.assignment_id
LEFT JOIN users u ON u.id = s.student_id
ORDER BY s.submitted_at DESC
LIMIT $1`
	var rows []models.RecentSubmission
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	return rows, nil
}
