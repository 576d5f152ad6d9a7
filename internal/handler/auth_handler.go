package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amptron-th/testdoc-api/internal/service"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
	"github.com/amptron-th/testdoc-api/pkg/response"
)

// AuthHandler exposes the Drive authorization flow.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Status godoc
// @Summary Report store authorization state
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth-status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	if h.auth == nil {
		response.JSON(c, http.StatusOK, gin.H{"authorized": true}, nil)
		return
	}
	if h.auth.Authorized() {
		response.JSON(c, http.StatusOK, gin.H{"authorized": true}, nil)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"authorized": false,
		"authUrl":    h.auth.AuthURL(),
	}, nil)
}

// Callback godoc
// @Summary OAuth redirect target completing authorization
// @Tags Auth
// @Produce json
// @Param code query string true "Authorization code"
// @Success 200 {object} response.Envelope
// @Router /oauth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	if h.auth == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "authorization flow not enabled"))
		return
	}
	code := c.Query("code")
	if code == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "code required"))
		return
	}
	if err := h.auth.HandleCallback(c.Request.Context(), code); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"authorized": true}, nil)
}
