package models

// RegistryStats mirrors the global counters. Values only ever grow.
type RegistryStats struct {
	TotalStudents     int64 `json:"total_students"`
	TotalCourses      int64 `json:"total_courses"`
	TotalCertificates int64 `json:"total_certificates"`
}
