// Package credentials is the HTTP surface for the Google connection: upload
// a service account bundle, disconnect, and report status.
package credentials

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/audiohub/backend/pkg/google"
	"github.com/audiohub/backend/pkg/response"
)

// Handler manages the credential resolver over HTTP.
type Handler struct {
	resolver *google.Resolver
	logger   *zap.Logger
}

// NewHandler creates a credentials handler.
func NewHandler(resolver *google.Resolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{resolver: resolver, logger: logger}
}

// Status handles GET /credentials/status. Connected means clients actually
// resolve, not merely that a credential exists.
func (h *Handler) Status(c *gin.Context) {
	tabular, _ := h.resolver.Resolve(c.Request.Context())
	response.OK(c, gin.H{
		"connected": tabular != nil,
		"source":    h.resolver.Source(),
	})
}

// Upload handles POST /credentials: the raw service account JSON body. A
// bundle missing required keys is rejected without touching prior state.
func (h *Handler) Upload(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		response.BadRequest(c, "service account JSON body required")
		return
	}
	if err := h.resolver.SetBundle(raw); err != nil {
		response.BadRequest(c, "invalid service account file: "+err.Error())
		return
	}
	tabular, _ := h.resolver.Resolve(c.Request.Context())
	response.OK(c, gin.H{
		"connected": tabular != nil,
		"source":    h.resolver.Source(),
	})
}

// Disconnect handles DELETE /credentials, dropping the uploaded bundle and
// any cached clients.
func (h *Handler) Disconnect(c *gin.Context) {
	h.resolver.ClearBundle()
	response.OK(c, gin.H{"connected": false})
}

// Refresh handles POST /credentials/refresh, forcing client rebuild on the
// next use without dropping the credential itself.
func (h *Handler) Refresh(c *gin.Context) {
	h.resolver.Invalidate()
	tabular, _ := h.resolver.Resolve(c.Request.Context())
	response.OK(c, gin.H{
		"connected": tabular != nil,
		"source":    h.resolver.Source(),
	})
}
