package models

import "time"

// Instructor marks a principal as authorized to create courses, mark
// completions, and issue certificates. Only the admin grants the role.
type Instructor struct {
	Principal    string    `db:"principal" json:"principal"`
	AuthorizedBy string    `db:"authorized_by" json:"authorized_by"`
	AuthorizedAt time.Time `db:"authorized_at" json:"authorized_at"`
}
