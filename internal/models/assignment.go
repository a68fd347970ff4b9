package models

import (
	"time"

	"github.com/lib/pq"
)

// Assignment targets AssignedStudents, or every student when the list is empty.
type Assignment struct {
	ID               string         `db:"id" json:"id"`
	Title            string         `db:"title" json:"title"`
	Description      string         `db:"description" json:"description"`
	CourseID         string         `db:"course_id" json:"courseId"`
	AssignedStudents pq.StringArray `db:"assigned_students" json:"assignedStudents"`
	DueDate          time.Time      `db:"due_date" json:"dueDate"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}
