package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/ledger"
	"github.com/iliyamo/gamezone-floor/internal/model"
	"github.com/iliyamo/gamezone-floor/internal/observability"
)

// SessionHandler exposes the session ledger over HTTP.
type SessionHandler struct {
	Ledger *ledger.Service
}

func NewSessionHandler(l *ledger.Service) *SessionHandler {
	if l == nil {
		panic("nil ledger passed to NewSessionHandler")
	}
	return &SessionHandler{Ledger: l}
}

// ----- DTOs -----

type createSessionReq struct {
	CustomerName    string             `json:"customer_name"`
	ContactNumber   string             `json:"contact_number"`
	StartTime       *time.Time         `json:"start_time"` // omitted means "now"
	DurationMinutes int                `json:"duration_minutes"`
	PeopleCount     int                `json:"people_count"`
	Devices         model.DeviceClaims `json:"devices"`
	Snacks          string             `json:"snacks"`
}

type extendReq struct {
	ExtraMinutes int `json:"extra_minutes"`
}

type memberReq struct {
	Name        string             `json:"name"`
	PeopleCount int                `json:"people_count"`
	Devices     model.DeviceClaims `json:"devices"`
}

type settleReq struct {
	HeadsPayingNow int `json:"heads_paying_now"`
}

// Create opens a walk-in session.
func (h *SessionHandler) Create(c echo.Context) error {
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	in := ledger.CreateInput{
		CustomerName:    req.CustomerName,
		ContactNumber:   req.ContactNumber,
		DurationMinutes: req.DurationMinutes,
		PeopleCount:     req.PeopleCount,
		Devices:         req.Devices,
		Snacks:          req.Snacks,
	}
	if req.StartTime != nil {
		in.StartTime = req.StartTime.UTC()
	}

	started := time.Now()
	session, err := h.Ledger.Create(c.Request().Context(), in)
	observability.ObserveSessionOp("create", err, time.Since(started))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// ListActive returns the sessions currently on the floor.
func (h *SessionHandler) ListActive(c echo.Context) error {
	sessions, err := h.Ledger.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return c.JSON(http.StatusOK, sessions)
}

// ListCompleted returns finished sessions, most recent first.
func (h *SessionHandler) ListCompleted(c echo.Context) error {
	sessions, err := h.Ledger.ListCompleted(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return c.JSON(http.StatusOK, sessions)
}

// Get returns one session with its member additions.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	session, err := h.Ledger.Get(c.Request().Context(), id)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// Extend adds minutes to a running session.
func (h *SessionHandler) Extend(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req extendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	started := time.Now()
	session, err := h.Ledger.ExtendTime(c.Request().Context(), id, req.ExtraMinutes)
	observability.ObserveSessionOp("extend", err, time.Since(started))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// AddMember joins people to a running session.
func (h *SessionHandler) AddMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req memberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	started := time.Now()
	session, err := h.Ledger.AddMember(c.Request().Context(), id, ledger.MemberInput{
		Name:        req.Name,
		PeopleCount: req.PeopleCount,
		Devices:     req.Devices,
	})
	observability.ObserveSessionOp("add_member", err, time.Since(started))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// Settle marks some heads as paid.
func (h *SessionHandler) Settle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req settleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	started := time.Now()
	session, amount, err := h.Ledger.SettlePartial(c.Request().Context(), id, req.HeadsPayingNow)
	observability.ObserveSessionOp("settle", err, time.Since(started))
	if err != nil {
		return sessionError(c, err)
	}
	observability.AddRevenueCollected(amount)
	return c.JSON(http.StatusOK, session)
}

// Complete finishes a session and frees its device units.
func (h *SessionHandler) Complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	started := time.Now()
	session, err := h.Ledger.Complete(c.Request().Context(), id)
	observability.ObserveSessionOp("complete", err, time.Since(started))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// Delete removes a session regardless of status.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	started := time.Now()
	err = h.Ledger.Delete(c.Request().Context(), id)
	observability.ObserveSessionOp("delete", err, time.Since(started))
	if err != nil {
		return sessionError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Availability reports unit limits and occupied units per device kind.
func (h *SessionHandler) Availability(c echo.Context) error {
	limits, occupied, err := h.Ledger.Availability(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability failed"})
	}
	type kindAvailability struct {
		Limit    int   `json:"limit"`
		Occupied []int `json:"occupied"`
	}
	out := make(map[string]kindAvailability, len(limits))
	for kind, limit := range limits {
		units := occupied[kind]
		if units == nil {
			units = []int{}
		}
		out[kind] = kindAvailability{Limit: limit, Occupied: units}
	}
	return c.JSON(http.StatusOK, out)
}

// sessionError maps ledger errors to HTTP responses.
func sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, ledger.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "session is not active"})
	case errors.Is(err, ledger.ErrDeviceConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrNoUnpaidHeads),
		errors.Is(err, ledger.ErrTooManyHeads),
		errors.Is(err, ledger.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
