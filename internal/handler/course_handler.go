package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-cert-api/internal/service"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
	"github.com/noah-isme/edu-cert-api/pkg/export"
	"github.com/noah-isme/edu-cert-api/pkg/response"
)

// CourseHandler exposes course endpoints, including enrollment and
// completion transitions scoped to a course.
type CourseHandler struct {
	courses     *service.CourseService
	enrollments *service.EnrollmentService
	students    *service.StudentService
	exporter    *export.CSVExporter
	metrics     *service.MetricsService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService, enrollments *service.EnrollmentService, students *service.StudentService, exporter *export.CSVExporter, metrics *service.MetricsService) *CourseHandler {
	return &CourseHandler{courses: courses, enrollments: enrollments, students: students, exporter: exporter, metrics: metrics}
}

func courseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return 0, false
	}
	return id, true
}

// Create godoc
// @Summary Create a course
// @Description Instructor-only. The creating instructor becomes the immutable course owner.
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.CreateCourse(c.Request.Context(), principalFromContext(c), req)
	h.metrics.ObserveTransition("createCourse", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

type setCourseStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetStatus godoc
// @Summary Activate or deactivate a course
// @Description Admin-only. Setting the status of a missing course succeeds without effect.
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body setCourseStatusRequest true "Status payload"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/status [patch]
func (h *CourseHandler) SetStatus(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	var req setCourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	err := h.courses.SetCourseStatus(c.Request.Context(), principalFromContext(c), courseID, *req.Active)
	h.metrics.ObserveTransition("setCourseStatus", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// @Summary Get course details
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	course, err := h.courses.GetCourseDetails(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

type enrollInCourseRequest struct {
	PaymentAmount int64 `json:"payment_amount"`
}

// Enroll godoc
// @Summary Enroll the caller in a course
// @Description Records the caller on the course roster and transfers the payment to the course owner atomically.
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body enrollInCourseRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/enrollments [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	var req enrollInCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.EnrollInCourse(c.Request.Context(), principalFromContext(c), courseID, req.PaymentAmount)
	h.metrics.ObserveTransition("enrollInCourse", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

type markCompletedRequest struct {
	Student string `json:"student" binding:"required"`
}

// MarkCompleted godoc
// @Summary Mark a course completed for a student
// @Description Course-owner only. Idempotent; the student principal is not checked against the student registry.
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body markCompletedRequest true "Completion payload"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/completions [post]
func (h *CourseHandler) MarkCompleted(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	var req markCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	err := h.students.MarkCourseCompleted(c.Request.Context(), principalFromContext(c), req.Student, courseID)
	h.metrics.ObserveTransition("markCourseCompleted", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportRoster godoc
// @Summary Export the course roster as CSV
// @Description Rows follow enrollment order.
// @Tags Courses
// @Produce text/csv
// @Param id path int true "Course ID"
// @Success 200 {string} string "CSV payload"
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/roster/export [get]
func (h *CourseHandler) ExportRoster(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	course, roster, err := h.courses.Roster(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := export.Dataset{
		Headers: []string{"student_principal", "full_name", "email", "paid_amount", "enrolled_at"},
		Rows:    make([]map[string]string, 0, len(roster)),
	}
	for _, entry := range roster {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"student_principal": entry.Student,
			"full_name":         entry.FullName,
			"email":             entry.Email,
			"paid_amount":       strconv.FormatInt(entry.PaidAmount, 10),
			"enrolled_at":       entry.EnrolledAt.UTC().Format(time.RFC3339),
		})
	}

	payload, err := h.exporter.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster export"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"roster-course-%d.csv\"", course.ID))
	c.Data(http.StatusOK, "text/csv", payload)
}

// Roster godoc
// @Summary List the course roster in enrollment order
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/roster [get]
func (h *CourseHandler) Roster(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	_, roster, err := h.courses.Roster(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}
