package models

import "time"

// Payment is one journal entry. Student and course references are not
// checked against live records.
type Payment struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"studentId"`
	CourseID      string    `db:"course_id" json:"courseId"`
	Amount        int64     `db:"amount" json:"amount"`
	PaymentMethod string    `db:"payment_method" json:"paymentMethod"`
	TransactionID *string   `db:"transaction_id" json:"transactionId,omitempty"`
	PaymentDate   time.Time `db:"payment_date" json:"paymentDate"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// PaymentSummary reports a student's fees against the journal. TotalPaid sums
// journal amounts and can diverge from the ledger's paid fields.
type PaymentSummary struct {
	Payments      []PaymentView `json:"payments"`
	TotalFees     int64         `json:"totalFees"`
	TotalPaid     int64         `json:"totalPaid"`
	RemainingFees int64         `json:"remainingFees"`
}
