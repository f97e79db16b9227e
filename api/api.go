package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bergenbysykkel/fleet-backend/bike"
	"github.com/bergenbysykkel/fleet-backend/internal/middleware"
	"github.com/bergenbysykkel/fleet-backend/internal/o11y"
	"github.com/bergenbysykkel/fleet-backend/maintenance"
	"github.com/bergenbysykkel/fleet-backend/station"
	"github.com/bergenbysykkel/fleet-backend/subscription"
	"github.com/bergenbysykkel/fleet-backend/trip"
	"github.com/bergenbysykkel/fleet-backend/user"
)

type API struct {
	r   *gin.Engine
	ur  *user.Repository
	br  *bike.Repository
	sr  *station.Repository
	tr  *trip.Repository
	mr  *maintenance.Repository
	sbr *subscription.Repository
}

func New(
	ur *user.Repository,
	br *bike.Repository,
	sr *station.Repository,
	tr *trip.Repository,
	mr *maintenance.Repository,
	sbr *subscription.Repository,
	obs *o11y.Observability,
	metricsUsername, metricsPassword string,
) *API {
	a := &API{
		r:   gin.New(),
		ur:  ur,
		br:  br,
		sr:  sr,
		tr:  tr,
		mr:  mr,
		sbr: sbr,
	}

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Logging(obs.Logger))
	a.r.Use(middleware.Metrics(obs.Registry))

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	a.r.POST("/users", a.registerHandler)
	a.r.GET("/users", a.usersHandler)

	a.r.GET("/bikes", a.bikesHandler)
	a.r.GET("/bikes/parked", a.parkedBikesHandler)
	a.r.GET("/bikes/:id", a.bikeHandler)
	a.r.GET("/bikes/:id/maintenance", a.bikeMaintenanceHandler)

	a.r.GET("/stations", a.stationsHandler)
	a.r.GET("/stations/trip-counts", a.tripCountsHandler)
	a.r.GET("/stations/availability", a.availabilityHandler)

	a.r.GET("/subscriptions/counts", a.subscriptionCountsHandler)

	a.r.POST("/trips/checkout", a.checkoutHandler)
	a.r.POST("/trips/dropoff", a.dropoffHandler)

	a.r.POST("/maintenance", a.reportMaintenanceHandler)

	metrics := a.r.Group("/metrics")
	if metricsUsername != "" {
		metrics.Use(gin.BasicAuth(gin.Accounts{metricsUsername: metricsPassword}))
	}
	metrics.GET("", gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})))

	return a
}

func (a *API) Router() *gin.Engine {
	return a.r
}

// writeError maps domain errors onto the wire taxonomy. Anything unknown is
// a store failure and deliberately opaque to the caller.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "message": err.Error()})
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "USER_NOT_FOUND", "message": err.Error()})
	case errors.Is(err, station.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "STATION_NOT_FOUND", "message": err.Error()})
	case errors.Is(err, bike.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "BIKE_NOT_FOUND", "message": err.Error()})
	case errors.Is(err, bike.ErrNoneAvailable):
		c.JSON(http.StatusConflict, gin.H{"code": "NO_BIKES_AVAILABLE", "message": err.Error()})
	case errors.Is(err, trip.ErrNoActiveTrip):
		c.JSON(http.StatusConflict, gin.H{"code": "NO_ACTIVE_TRIP", "message": err.Error()})
	case errors.Is(err, maintenance.ErrNoRecentDropoff):
		c.JSON(http.StatusConflict, gin.H{"code": "NO_RECENT_DROPOFF", "message": err.Error()})
	default:
		middleware.GetLogger(c).Error("store error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORE_ERROR", "message": "internal error"})
	}
}
