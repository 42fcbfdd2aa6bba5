package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCourseHandlerSetStatusRequiresActiveField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(nil, nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPatch, "/courses/1/status", `{}`)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.SetStatus(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseHandlerEnrollRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(nil, nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/courses/1/enrollments", `{"payment_amount":`)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseHandlerMarkCompletedRequiresStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(nil, nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/courses/1/completions", `{}`)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.MarkCompleted(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
