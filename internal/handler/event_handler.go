package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-cert-api/internal/service"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
	"github.com/noah-isme/edu-cert-api/pkg/response"
)

// EventHandler exposes the notification log and registry counters.
// The log itself is admin-only; counters are public.
type EventHandler struct {
	events *service.EventService
	roles  *service.RoleService
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(events *service.EventService, roles *service.RoleService) *EventHandler {
	return &EventHandler{events: events, roles: roles}
}

// List godoc
// @Summary List emitted notifications in commit order
// @Tags Events
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	if !h.roles.IsAdmin(principalFromContext(c)) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, pagination, err := h.events.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Stats godoc
// @Summary Registry counters
// @Description Totals of students, courses and certificates ever created.
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *EventHandler) Stats(c *gin.Context) {
	stats, err := h.events.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
