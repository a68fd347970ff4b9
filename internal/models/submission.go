package models

import "time"

// SubmissionStatus tracks the review state of a submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "Pending"
	SubmissionApproved SubmissionStatus = "Approved"
	SubmissionRejected SubmissionStatus = "Rejected"
)

// Submission is a student's link for one assignment.
type Submission struct {
	ID           string           `db:"id" json:"id"`
	AssignmentID string           `db:"assignment_id" json:"assignmentId"`
	StudentID    string           `db:"student_id" json:"studentId"`
	GithubURL    string           `db:"github_url" json:"githubUrl"`
	Status       SubmissionStatus `db:"status" json:"status"`
	SubmittedAt  time.Time        `db:"submitted_at" json:"submittedAt"`
	ReviewedAt   *time.Time       `db:"reviewed_at" json:"reviewedAt,omitempty"`
	Feedback     string           `db:"feedback" json:"feedback"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updatedAt"`
}

// RecentSubmission is the dashboard projection of a submission joined with
// its student and assignment.
type RecentSubmission struct {
	ID              string           `db:"id" json:"id"`
	Status          SubmissionStatus `db:"status" json:"status"`
	GithubURL       string           `db:"github_url" json:"githubUrl"`
	SubmittedAt     time.Time        `db:"submitted_at" json:"submittedAt"`
	AssignmentID    string           `db:"assignment_id" json:"assignmentId"`
	AssignmentTitle *string          `db:"assignment_title" json:"assignmentTitle"`
	StudentID       string           `db:"student_id" json:"studentId"`
	StudentName     *string          `db:"student_name" json:"studentName"`
	StudentCode     *string          `db:"student_code" json:"studentCode"`
}
