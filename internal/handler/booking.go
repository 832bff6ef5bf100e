package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/model"
	"github.com/iliyamo/gamezone-floor/internal/repository"
)

// BookingHandler manages advance bookings.  Conversion into sessions
// is the scheduler's job; these endpoints only record intent.
type BookingHandler struct {
	Bookings *repository.BookingRepo
}

func NewBookingHandler(b *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

type createBookingReq struct {
	CustomerName string             `json:"customer_name"`
	BookingTime  time.Time          `json:"booking_time"`
	Devices      model.DeviceClaims `json:"devices"`
	PeopleCount  int                `json:"people_count"`
}

// Create records a booking for a future slot.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CustomerName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer name required"})
	}
	if req.BookingTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking time required"})
	}
	if req.PeopleCount < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "people count must be at least 1"})
	}
	if req.Devices == nil {
		req.Devices = model.DeviceClaims{}
	}
	for kind := range req.Devices {
		if !model.IsDeviceKind(kind) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown device kind: " + kind})
		}
	}

	b := &model.Booking{
		CustomerName: req.CustomerName,
		BookingTime:  req.BookingTime.UTC(),
		Devices:      req.Devices,
		PeopleCount:  req.PeopleCount,
		Status:       model.BookingUpcoming,
	}
	if err := h.Bookings.Create(c.Request().Context(), b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	return c.JSON(http.StatusCreated, b)
}

// List returns all bookings.
func (h *BookingHandler) List(c echo.Context) error {
	bookings, err := h.Bookings.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return c.JSON(http.StatusOK, bookings)
}

// ListUpcoming returns bookings still waiting for their slot.
func (h *BookingHandler) ListUpcoming(c echo.Context) error {
	bookings, err := h.Bookings.ListUpcoming(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return c.JSON(http.StatusOK, bookings)
}

// Get returns one booking.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Bookings.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// Delete cancels a booking.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Bookings.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
