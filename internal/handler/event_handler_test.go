package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/edu-cert-api/internal/middleware"
	"github.com/noah-isme/edu-cert-api/internal/service"
)

func TestEventHandlerListRequiresAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roles := service.NewRoleService(nil, "admin", nil, nil)
	handler := NewEventHandler(nil, roles)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/events", nil)
	c.Set(middleware.ContextPrincipalKey, "alice")

	handler.List(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEventHandlerListRejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roles := service.NewRoleService(nil, "admin", nil, nil)
	handler := NewEventHandler(nil, roles)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/events", nil)

	handler.List(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
