package models

import "time"

// Course is a catalog entry. Price is in whole currency units.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Duration    string    `db:"duration" json:"duration"`
	Price       int64     `db:"price" json:"price"`
	Instructor  string    `db:"instructor" json:"instructor,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
