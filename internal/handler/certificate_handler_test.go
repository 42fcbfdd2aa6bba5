package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCertificateHandlerRejectsNonNumericID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCertificateHandler(nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/certificates/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCertificateHandlerResolveShareRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCertificateHandler(nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/verify", nil)

	handler.ResolveShare(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseHandlerRejectsNonNumericID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(nil, nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/xyz", nil)
	c.Params = gin.Params{{Key: "id", Value: "xyz"}}

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
