package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PendingCounter reports products waiting to be reconciled.
type PendingCounter interface {
	Pending() int
}

type HealthHandler struct {
	// Fallback is nil when the product store has no fallback.
	Fallback PendingCounter
}

func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.Fallback != nil {
		body["produtosPendentes"] = h.Fallback.Pending()
	}
	c.JSON(http.StatusOK, body)
}
