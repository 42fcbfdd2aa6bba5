package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/edu-cert-api/internal/service"
	"github.com/noah-isme/edu-cert-api/pkg/config"
)

func testAuthService() *service.AuthService {
	return service.NewAuthService(nil, config.JWTConfig{Secret: "test-secret", Expiration: time.Hour}, nil, nil)
}

func TestPrincipalRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", nil)

	Principal(testAuthService())(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, c.IsAborted())
}

func TestPrincipalRejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", nil)
	c.Request.Header.Set("Authorization", "Token abc")

	Principal(testAuthService())(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPrincipalRejectsGarbageToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", nil)
	c.Request.Header.Set("Authorization", "Bearer not.a.token")

	Principal(testAuthService())(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
