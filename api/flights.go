package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/gin-gonic/gin"
)

// FlightLookup is the flights collaborator as seen through the booking service.
type FlightLookup interface {
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
}

type FlightHandler struct {
	flights FlightLookup
}

func NewFlightHandler(flights FlightLookup) *FlightHandler {
	return &FlightHandler{flights: flights}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id", h.get)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	flight, err := h.flights.GetFlight(c.Request.Context(), id)
	if err != nil {
		c.JSON(flightStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, flight)
}

func flightStatus(err error) int {
	if rpc.KindOf(err) == rpc.KindNotFound {
		return http.StatusNotFound
	}
	return StatusFor(err)
}
