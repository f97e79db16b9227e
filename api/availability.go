package api

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

type availabilityResponse struct {
	Name           string  `json:"name"`
	Percent        int     `json:"percent"`
	MaxSpots       int     `json:"maxSpots"`
	AvailableSpots int     `json:"availableSpots"`
	Lat            float64 `json:"latitude"`
	Lng            float64 `json:"longitude"`
	MapURL         string  `json:"mapUrl"`
}

// availabilityPercent is the dashboard's station gauge. With the trip-in-
// progress toggle on it shows free docks; off, it shows occupancy. A station
// with no docks reads 0 either way.
func availabilityPercent(maxSpots, availableSpots int, inProgress bool) int {
	if maxSpots == 0 {
		return 0
	}
	var share float64
	if inProgress {
		share = float64(availableSpots) / float64(maxSpots)
	} else {
		share = float64(maxSpots-availableSpots) / float64(maxSpots)
	}
	return int(math.Round(share * 100))
}

func (a *API) availabilityHandler(c *gin.Context) {
	name := c.Query("station")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": "station query parameter is required"})
		return
	}
	inProgress := c.DefaultQuery("inProgress", "true") == "true"

	s, err := a.sr.GetStationByName(c, name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, availabilityResponse{
		Name:           s.Name,
		Percent:        availabilityPercent(s.MaxSpots, s.AvailableSpots, inProgress),
		MaxSpots:       s.MaxSpots,
		AvailableSpots: s.AvailableSpots,
		Lat:            s.Location.P.X,
		Lng:            s.Location.P.Y,
		MapURL:         fmt.Sprintf("https://www.openstreetmap.org/#map=17/%v/%v", s.Location.P.X, s.Location.P.Y),
	})
}
