package models

import "time"

// Course is a catalog entry. Ids are sequential and dense, assigned by the
// registry on commit. Instructor is immutable after creation; Active is
// toggled by the admin only.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Instructor  string    `db:"instructor_principal" json:"instructor"`
	Credits     int       `db:"credits" json:"credits"`
	Fee         int64     `db:"fee" json:"fee"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CourseRosterEntry is one roster line with student context for exports.
type CourseRosterEntry struct {
	Student    string    `db:"student_principal" json:"student_principal"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	PaidAmount int64     `db:"paid_amount" json:"paid_amount"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}
