package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academy-api/internal/models"
)

const assignmentColumns = `id, title, description, course_id, assigned_students, due_date, created_at, updated_at`

// AssignmentRepository manages assignments and their audiences.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns all assignments, newest first.
func (r *AssignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments ORDER BY created_at DESC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListForStudent returns assignments that name the student plus those with an
// empty audience, soonest due first.
func (r *AssignmentRepository) ListForStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE $1 = ANY(assigned_students) OR cardinality(assigned_students) = 0 ORDER BY due_date ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, studentID); err != nil {
		return nil, fmt.Errorf("list assignments for student: %w", err)
	}
	return assignments, nil
}

// FindByID returns an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// FindByIDs loads assignments in bulk. Missing ids are skipped.
func (r *AssignmentRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Assignment, error) {
	if len(ids) == 0 {
		return []models.Assignment{}, nil
	}
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ANY($1)`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find assignments by ids: %w", err)
	}
	return assignments, nil
}

// Count returns the number of assignments.
func (r *AssignmentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM assignments`); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return total, nil
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedStudents == nil {
		assignment.AssignedStudents = pq.StringArray{}
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	const query = `INSERT INTO assignments (id, title, description, course_id, assigned_students, due_date, created_at, updated_at) VALUES (:id, :title, :description, :course_id, :assigned_students, :due_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update writes mutable assignment fields.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	if assignment.AssignedStudents == nil {
		assignment.AssignedStudents = pq.StringArray{}
	}
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET title = :title, description = :description, course_id = :course_id, assigned_students = :assigned_students, due_date = :due_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireAffected(res)
}
