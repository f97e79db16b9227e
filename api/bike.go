package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bergenbysykkel/fleet-backend/bike"
)

type bikeResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Status    bike.Status `json:"status"`
	StationID *int64      `json:"stationId,omitempty"`
}

func toBikeResponse(b bike.Bike) bikeResponse {
	return bikeResponse{
		ID:        b.ID,
		Name:      b.Name,
		Status:    b.Status,
		StationID: b.StationID,
	}
}

func (a *API) bikesHandler(c *gin.Context) {
	bikes, err := a.br.GetBikes(c)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bikeResponse, 0, len(bikes))
	for _, b := range bikes {
		resp = append(resp, toBikeResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) bikeHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "bike id must be numeric"})
		return
	}

	b, err := a.br.GetBike(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBikeResponse(b))
}

// parkedBikesHandler is the "available bikes by station" listing. Both
// filters are optional substrings.
func (a *API) parkedBikesHandler(c *gin.Context) {
	rows, err := a.br.GetParkedByStation(c, c.Query("station"), c.Query("bike"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *API) bikeMaintenanceHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "bike id must be numeric"})
		return
	}

	reports, err := a.mr.GetByBike(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}
