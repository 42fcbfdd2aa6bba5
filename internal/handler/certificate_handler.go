package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-cert-api/internal/service"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
	"github.com/noah-isme/edu-cert-api/pkg/response"
)

// CertificateHandler exposes certificate endpoints.
type CertificateHandler struct {
	certificates *service.CertificateService
	metrics      *service.MetricsService
}

// NewCertificateHandler constructs CertificateHandler.
func NewCertificateHandler(certificates *service.CertificateService, metrics *service.MetricsService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates, metrics: metrics}
}

func certificateIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid certificate id"))
		return 0, false
	}
	return id, true
}

// Issue godoc
// @Summary Issue a certificate
// @Description Course-owner only. The student must be enrolled in the course and have completed it.
// @Tags Certificates
// @Accept json
// @Produce json
// @Param payload body service.IssueCertificateRequest true "Certificate payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /certificates [post]
func (h *CertificateHandler) Issue(c *gin.Context) {
	var req service.IssueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	certificate, err := h.certificates.IssueCertificate(c.Request.Context(), principalFromContext(c), req)
	h.metrics.ObserveTransition("issueCertificate", err == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, certificate)
}

// Get godoc
// @Summary Get a certificate
// @Tags Certificates
// @Produce json
// @Param id path int true "Certificate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /certificates/{id} [get]
func (h *CertificateHandler) Get(c *gin.Context) {
	id, ok := certificateIDParam(c)
	if !ok {
		return
	}
	certificate, err := h.certificates.GetCertificate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certificate, nil)
}

// Verify godoc
// @Summary Verify a certificate id
// @Description Unknown ids verify as invalid rather than erroring.
// @Tags Certificates
// @Produce json
// @Param id path int true "Certificate ID"
// @Success 200 {object} response.Envelope
// @Router /certificates/{id}/verify [get]
func (h *CertificateHandler) Verify(c *gin.Context) {
	id, ok := certificateIDParam(c)
	if !ok {
		return
	}
	valid, err := h.certificates.VerifyCertificate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"certificate_id": id, "valid": valid}, nil)
}

// PDF godoc
// @Summary Download a certificate as PDF
// @Tags Certificates
// @Produce application/pdf
// @Param id path int true "Certificate ID"
// @Success 200 {string} string "PDF payload"
// @Failure 404 {object} response.Envelope
// @Router /certificates/{id}/pdf [get]
func (h *CertificateHandler) PDF(c *gin.Context) {
	id, ok := certificateIDParam(c)
	if !ok {
		return
	}
	payload, err := h.certificates.RenderPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"certificate-%d.pdf\"", id))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// Share godoc
// @Summary Create an expiring share link for a certificate
// @Tags Certificates
// @Produce json
// @Param id path int true "Certificate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /certificates/{id}/share [get]
func (h *CertificateHandler) Share(c *gin.Context) {
	id, ok := certificateIDParam(c)
	if !ok {
		return
	}
	token, expiresAt, err := h.certificates.ShareLink(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"certificate_id": id,
		"token":          token,
		"expires_at":     expiresAt,
	}, nil)
}

// ResolveShare godoc
// @Summary Resolve a certificate share token
// @Tags Certificates
// @Produce json
// @Param token query string true "Share token"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /verify [get]
func (h *CertificateHandler) ResolveShare(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	certificate, err := h.certificates.ResolveShareToken(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certificate, nil)
}
