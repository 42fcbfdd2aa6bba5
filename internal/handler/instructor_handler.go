package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-cert-api/internal/service"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
	"github.com/noah-isme/edu-cert-api/pkg/response"
)

// InstructorHandler exposes the instructor role registry.
type InstructorHandler struct {
	roles   *service.RoleService
	metrics *service.MetricsService
}

// NewInstructorHandler constructs InstructorHandler.
func NewInstructorHandler(roles *service.RoleService, metrics *service.MetricsService) *InstructorHandler {
	return &InstructorHandler{roles: roles, metrics: metrics}
}

type authorizeInstructorRequest struct {
	Principal string `json:"principal"`
}

// Authorize godoc
// @Summary Authorize a principal as instructor
// @Description Admin-only. Authorization is permanent and idempotent.
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body authorizeInstructorRequest true "Instructor payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /instructors [post]
func (h *InstructorHandler) Authorize(c *gin.Context) {
	var req authorizeInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	err := h.roles.AuthorizeInstructor(c.Request.Context(), principalFromContext(c), req.Principal)
	h.metrics.ObserveTransition("authorizeInstructor", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// @Summary Get an instructor record
// @Tags Instructors
// @Produce json
// @Param principal path string true "Instructor principal"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{principal} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.roles.GetInstructor(c.Request.Context(), c.Param("principal"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}
