package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bergenbysykkel/fleet-backend/internal/middleware"
)

type maintenanceRequest struct {
	User       string   `json:"user"`
	Complaints []string `json:"complaints"`
}

func (a *API) reportMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req maintenanceRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := a.mr.Report(c, req.User, req.Complaints)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
