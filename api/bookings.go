package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/remote"
	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type errorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req remote.BookingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	input, err := toInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: string(domain.CodeInvalidPassengerData), Error: err.Error()})
		return
	}

	created, err := h.service.Book(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toView(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(found))
}

// StatusFor maps a saga failure onto an HTTP status.
func StatusFor(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeInvalidFlight, domain.CodeInvalidCustomer:
		return http.StatusNotFound
	case domain.CodeNotEnoughSeats, domain.CodePassengerDuplication, domain.CodeWrongPassengerData:
		return http.StatusConflict
	case domain.CodeInvalidPassengerData:
		return http.StatusUnprocessableEntity
	case domain.CodeBookingRegistration:
		return http.StatusInternalServerError
	}

	var rpcErr *rpc.Error
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &rpcErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(StatusFor(err), errorResponse{Code: string(domain.CodeOf(err)), Error: err.Error()})
}

func toInput(req remote.BookingPayload) (booking.CreateBookingInput, error) {
	input := booking.CreateBookingInput{
		FlightID:   req.FlightID,
		CustomerID: req.CustomerID,
		Passengers: make([]booking.PassengerInput, len(req.Passengers)),
	}
	for i, p := range req.Passengers {
		birthDate, err := time.Parse(remote.BirthDateLayout, p.BirthDate)
		if err != nil {
			return input, fmt.Errorf("passenger %d: birth_date must be %s", i+1, remote.BirthDateLayout)
		}
		input.Passengers[i] = booking.PassengerInput{
			Name:           p.Name,
			Surname:        p.Surname,
			MiddleName:     p.MiddleName,
			DocumentNumber: p.DocumentNumber,
			IssuingCountry: p.IssuingCountry,
			BirthDate:      birthDate,
			Gender:         p.Gender,
			Phone:          p.Phone,
			Email:          p.Email,
			CarryOnKg:      p.CarryOnKg,
			BaggageKg:      p.BaggageKg,
		}
	}
	return input, nil
}

func toView(b *domain.Booking) remote.BookingView {
	view := remote.BookingView{
		ID:         b.ID,
		Code:       b.Code,
		FlightID:   b.FlightID,
		CustomerID: b.CustomerID,
		Confirmed:  b.Confirmed,
		CreatedAt:  b.CreatedAt,
		Passengers: make([]remote.PassengerLinkView, 0, len(b.Passengers)),
	}
	for _, l := range b.Passengers {
		link := remote.PassengerLinkView{
			ID:          l.ID,
			PassengerID: l.PassengerID,
			CarryOnKg:   l.CarryOnKg,
			BaggageKg:   l.BaggageKg,
		}
		if p := l.Passenger; p != nil {
			link.Name = p.Name
			link.Surname = p.Surname
			link.MiddleName = p.MiddleName
			link.DocumentNumber = p.DocumentNumber
		}
		view.Passengers = append(view.Passengers, link)
	}
	return view
}
