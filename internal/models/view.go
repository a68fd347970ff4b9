package models

import "time"

// The view types below are response shapes with references resolved. Storage
// and the ledger only ever deal in IDs.

// StudentRef is the public identity of a student embedded in other views.
type StudentRef struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	StudentID *string `json:"studentId,omitempty"`
}

// RefOf builds a StudentRef from a user record.
func RefOf(u *User) *StudentRef {
	if u == nil {
		return nil
	}
	return &StudentRef{ID: u.ID, Name: u.Name, Email: u.Email, StudentID: u.StudentID}
}

// CourseRef is the compact course shape embedded in other views.
type CourseRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Price    int64  `json:"price"`
}

// CourseRefOf builds a CourseRef from a course.
func CourseRefOf(c *Course) *CourseRef {
	if c == nil {
		return nil
	}
	return &CourseRef{ID: c.ID, Title: c.Title, Duration: c.Duration, Price: c.Price}
}

// EnrollmentView is an enrollment with its course resolved. Course is nil when
// the course has since been deleted.
type EnrollmentView struct {
	CourseID  string      `json:"courseId"`
	Course    *Course     `json:"course"`
	StartDate time.Time   `json:"startDate"`
	Fees      FeeSnapshot `json:"fees"`
}

// StudentView is a user with enrollments expanded.
type StudentView struct {
	User
	Enrollments []EnrollmentView `json:"enrollments"`
}

// PaymentView is a journal entry with student and course resolved.
type PaymentView struct {
	Payment
	Student *StudentRef `json:"student"`
	Course  *CourseRef  `json:"course"`
}

// AssignmentView is an assignment with course and audience resolved.
type AssignmentView struct {
	Assignment
	Course   *CourseRef   `json:"course"`
	Students []StudentRef `json:"students"`
}

// AssignmentRef is the compact assignment shape embedded in submissions.
type AssignmentRef struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	CourseID string    `json:"courseId"`
	DueDate  time.Time `json:"dueDate"`
}

// SubmissionView is a submission with assignment and student resolved.
type SubmissionView struct {
	Submission
	Assignment *AssignmentRef `json:"assignment"`
	Student    *StudentRef    `json:"student"`
}
