package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FeeSnapshot is the per-enrollment fee triple. Total is copied from the course
// price at enrollment time and never follows later price changes.
type FeeSnapshot struct {
	Total     int64 `json:"total"`
	Paid      int64 `json:"paid"`
	Remaining int64 `json:"remaining"`
}

// NewFeeSnapshot starts a snapshot with nothing paid.
func NewFeeSnapshot(total int64) FeeSnapshot {
	return FeeSnapshot{Total: total, Remaining: total}
}

// SetPaid overwrites the paid amount. Remaining may go negative.
func (f *FeeSnapshot) SetPaid(paid int64) {
	f.Paid = paid
	f.recompute()
}

func (f *FeeSnapshot) recompute() {
	f.Remaining = f.Total - f.Paid
}

// Enrollment links a student to one course together with its fee snapshot.
type Enrollment struct {
	CourseID  string      `json:"courseId"`
	StartDate time.Time   `json:"startDate"`
	Fees      FeeSnapshot `json:"fees"`
}

// Enrollments is the ordered enrollment list embedded in a student record.
type Enrollments []Enrollment

// Index returns the position of the course in the list or -1.
func (e Enrollments) Index(courseID string) int {
	for i := range e {
		if e[i].CourseID == courseID {
			return i
		}
	}
	return -1
}

// Has reports whether the course is already in the list.
func (e Enrollments) Has(courseID string) bool {
	return e.Index(courseID) >= 0
}

// Without returns a copy of the list with every entry for the course removed.
func (e Enrollments) Without(courseID string) Enrollments {
	out := make(Enrollments, 0, len(e))
	for _, entry := range e {
		if entry.CourseID != courseID {
			out = append(out, entry)
		}
	}
	return out
}

// TotalFees sums the snapshot totals.
func (e Enrollments) TotalFees() int64 {
	var total int64
	for _, entry := range e {
		total += entry.Fees.Total
	}
	return total
}

// CourseIDs lists the referenced courses in order.
func (e Enrollments) CourseIDs() []string {
	ids := make([]string, 0, len(e))
	for _, entry := range e {
		ids = append(ids, entry.CourseID)
	}
	return ids
}

// Value implements driver.Valuer. A nil list is stored as an empty array.
func (e Enrollments) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Enrollment(e))
}

// Scan implements sql.Scanner. Remaining is recomputed from total and paid
// rather than trusted from storage.
func (e *Enrollments) Scan(src interface{}) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan enrollments: %w", err)
	}
	list := Enrollments{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("scan enrollments: %w", err)
		}
	}
	for i := range list {
		list[i].Fees.recompute()
	}
	*e = list
	return nil
}
