package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStudent UserRole = "student"
)

// Socials holds optional profile links. Stored as JSONB.
type Socials struct {
	Github    string `json:"github"`
	Linkedin  string `json:"linkedin"`
	Instagram string `json:"instagram"`
}

// Value implements driver.Valuer.
func (s Socials) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *Socials) Scan(src interface{}) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan socials: %w", err)
	}
	*s = Socials{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, s)
}

// User represents an admin or student account stored in the users table.
// Students own their enrollments, which live on the same row.
type User struct {
	ID           string      `db:"id" json:"id"`
	Username     string      `db:"username" json:"username"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Role         UserRole    `db:"role" json:"role"`
	Name         string      `db:"name" json:"name"`
	Email        string      `db:"email" json:"email"`
	StudentID    *string     `db:"student_id" json:"studentId,omitempty"`
	Phone        string      `db:"phone" json:"phone"`
	Address      string      `db:"address" json:"address"`
	Socials      Socials     `db:"socials" json:"socials"`
	Enrollments  Enrollments `db:"enrollments" json:"enrollments"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// IsStudent reports whether the user carries the student role.
func (u *User) IsStudent() bool {
	return u != nil && u.Role == RoleStudent
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}
