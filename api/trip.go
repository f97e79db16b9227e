package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bergenbysykkel/fleet-backend/internal/middleware"
)

type tripRequest struct {
	User    string `json:"user"`
	Station string `json:"station"`
}

type tripResponse struct {
	TripID   int64  `json:"tripId"`
	BikeID   int64  `json:"bikeId"`
	BikeName string `json:"bikeName"`
	Station  string `json:"station"`
	Message  string `json:"message"`
}

func (a *API) checkoutHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req tripRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rcpt, err := a.tr.Checkout(c, req.User, req.Station)
	if err != nil {
		logger.Info("checkout rejected", "user", req.User, "station", req.Station, "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tripResponse{
		TripID:   rcpt.TripID,
		BikeID:   rcpt.BikeID,
		BikeName: rcpt.BikeName,
		Station:  rcpt.StationName,
		Message:  fmt.Sprintf("%s checked out bike %s from %s", req.User, rcpt.BikeName, rcpt.StationName),
	})
}

func (a *API) dropoffHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req tripRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rcpt, err := a.tr.Dropoff(c, req.User, req.Station)
	if err != nil {
		logger.Info("dropoff rejected", "user", req.User, "station", req.Station, "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tripResponse{
		TripID:   rcpt.TripID,
		BikeID:   rcpt.BikeID,
		BikeName: rcpt.BikeName,
		Station:  rcpt.StationName,
		Message:  fmt.Sprintf("%s returned bike %s to %s", req.User, rcpt.BikeName, rcpt.StationName),
	})
}
