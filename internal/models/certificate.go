package models

import "time"

// Certificate is an immutable issuance record. CourseName is a snapshot
// taken at issuance, not a live reference, and no operation mutates a
// certificate after commit.
type Certificate struct {
	ID         int64     `db:"id" json:"id"`
	Student    string    `db:"student_principal" json:"student"`
	CourseID   int64     `db:"course_id" json:"course_id"`
	CourseName string    `db:"course_name" json:"course_name"`
	ContentRef string    `db:"content_ref" json:"content_ref"`
	Valid      bool      `db:"valid" json:"valid"`
	IssuedAt   time.Time `db:"issued_at" json:"issued_at"`
}
