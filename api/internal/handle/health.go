package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediclick/api/internal/analysis"
)

type HealthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Model         string `json:"model"`
	Provider      string `json:"provider"`
	APIConfigured bool   `json:"api_configured"`
	Timestamp     string `json:"timestamp"`
}

// Health always reports the API as configured: the process refuses to start
// without a key.
func (h *Handle) Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Service:       h.opt.Info.Service,
		Model:         h.opt.Info.Model,
		Provider:      h.opt.Info.Provider,
		APIConfigured: true,
		Timestamp:     h.now().Format(analysis.TimestampLayout),
	})
}
