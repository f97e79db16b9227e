package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bergenbysykkel/fleet-backend/station"
)

type stationResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Lat            float64 `json:"latitude"`
	Lng            float64 `json:"longitude"`
	MaxSpots       int     `json:"maxSpots"`
	AvailableSpots int     `json:"availableSpots"`
}

func toStationResponse(s station.Station) stationResponse {
	return stationResponse{
		ID:             s.ID,
		Name:           s.Name,
		Lat:            s.Location.P.X,
		Lng:            s.Location.P.Y,
		MaxSpots:       s.MaxSpots,
		AvailableSpots: s.AvailableSpots,
	}
}

func (a *API) stationsHandler(c *gin.Context) {
	stations, err := a.sr.GetStations(c)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]stationResponse, 0, len(stations))
	for _, s := range stations {
		resp = append(resp, toStationResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) tripCountsHandler(c *gin.Context) {
	counts, err := a.tr.CountByEndStation(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (a *API) subscriptionCountsHandler(c *gin.Context) {
	counts, err := a.sbr.CountByType(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
