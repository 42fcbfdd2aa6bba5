package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-cert-api/internal/service"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
	"github.com/noah-isme/edu-cert-api/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students     *service.StudentService
	certificates *service.CertificateService
	metrics      *service.MetricsService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, certificates *service.CertificateService, metrics *service.MetricsService) *StudentHandler {
	return &StudentHandler{students: students, certificates: certificates, metrics: metrics}
}

// Enroll godoc
// @Summary Enroll the caller as a student
// @Description Creates the caller's student record. A principal can enroll only once.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Enroll(c.Request.Context(), principalFromContext(c), req)
	h.metrics.ObserveTransition("enrollStudent", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Get godoc
// @Summary Get a student record
// @Tags Students
// @Produce json
// @Param principal path string true "Student principal"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{principal} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("principal"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Courses godoc
// @Summary List a student's course enrollments in enrollment order
// @Tags Students
// @Produce json
// @Param principal path string true "Student principal"
// @Success 200 {object} response.Envelope
// @Router /students/{principal}/courses [get]
func (h *StudentHandler) Courses(c *gin.Context) {
	enrollments, err := h.students.EnrolledCourses(c.Request.Context(), c.Param("principal"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Completion godoc
// @Summary Check whether a student completed a course
// @Tags Students
// @Produce json
// @Param principal path string true "Student principal"
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/{principal}/courses/{id}/completion [get]
func (h *StudentHandler) Completion(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return
	}
	completed, err := h.students.HasCompleted(c.Request.Context(), c.Param("principal"), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"completed": completed}, nil)
}

// Certificates godoc
// @Summary List certificate ids held by a student
// @Description Returns issuance-ordered certificate ids. Unknown students yield an empty list.
// @Tags Students
// @Produce json
// @Param principal path string true "Student principal"
// @Success 200 {object} response.Envelope
// @Router /students/{principal}/certificates [get]
func (h *StudentHandler) Certificates(c *gin.Context) {
	ids, err := h.certificates.StudentCertificates(c.Request.Context(), c.Param("principal"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"certificate_ids": ids}, nil)
}
