package models

import (
	"encoding/json"
	"time"
)

// Event types, one per successful transition kind.
const (
	EventStudentEnrolled         = "StudentEnrolled"
	EventInstructorAuthorized    = "InstructorAuthorized"
	EventCourseCreated           = "CourseCreated"
	EventStudentEnrolledInCourse = "StudentEnrolledInCourse"
	EventCertificateIssued       = "CertificateIssued"
)

// Event is a committed notification record. Seq reflects commit order:
// rows are appended inside the same transaction as the transition they
// describe.
type Event struct {
	Seq        int64           `db:"seq" json:"seq"`
	ID         string          `db:"id" json:"id"`
	Type       string          `db:"type" json:"type"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurred_at"`
}
