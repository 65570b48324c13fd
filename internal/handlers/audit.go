package handlers

import (
	"net/http"
	"strconv"

	"fleetcar/internal/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuditHandler struct {
	log *zap.Logger
}

func NewAuditHandler(log *zap.Logger) *AuditHandler {
	return &AuditHandler{log: log}
}

// List handles GET /api/audit (admin only): newest entries first.
func (h *AuditHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := database.RecentAuditLogs(limit)
	if err != nil {
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}
