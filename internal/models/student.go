package models

import "time"

// Student is the per-principal enrollment record. A principal creates it
// exactly once via self-enrollment; the record is never overwritten and
// Enrolled is never reset.
type Student struct {
	Principal  string    `db:"principal" json:"principal"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	Enrolled   bool      `db:"enrolled" json:"enrolled"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// CourseEnrollment is one row of the append-only course/student join.
// It backs both the per-course roster and the per-student course list.
type CourseEnrollment struct {
	CourseID   int64     `db:"course_id" json:"course_id"`
	Student    string    `db:"student_principal" json:"student_principal"`
	Seq        int64     `db:"seq" json:"-"`
	PaidAmount int64     `db:"paid_amount" json:"paid_amount"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// CourseCompletion is a composite-key completion flag. Its presence means
// the flag is set; flags are append-only and never cleared.
type CourseCompletion struct {
	Student     string    `db:"student_principal" json:"student_principal"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
