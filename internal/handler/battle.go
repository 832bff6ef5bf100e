package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/model"
	"github.com/iliyamo/gamezone-floor/internal/observability"
	"github.com/iliyamo/gamezone-floor/internal/repository"
)

// BattleHandler manages crown battles: a standing champion defends
// against challengers and scores are bumped point by point from the
// floor tablets.
type BattleHandler struct {
	Battles *repository.BattleRepo
}

func NewBattleHandler(b *repository.BattleRepo) *BattleHandler {
	return &BattleHandler{Battles: b}
}

type createBattleReq struct {
	CrownHolder string `json:"crown_holder"`
	Challenger  string `json:"challenger"`
}

type scoreReq struct {
	Side string `json:"side"` // "crown" | "challenger"
}

// Create opens a battle.
func (h *BattleHandler) Create(c echo.Context) error {
	var req createBattleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CrownHolder == "" || req.Challenger == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "crown holder and challenger required"})
	}

	b := &model.Battle{
		CrownHolder: req.CrownHolder,
		Challenger:  req.Challenger,
		Status:      model.BattleActive,
		StartTime:   time.Now().UTC(),
	}
	if err := h.Battles.Create(c.Request().Context(), b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create battle failed"})
	}
	return c.JSON(http.StatusCreated, b)
}

// List returns all battles.
func (h *BattleHandler) List(c echo.Context) error {
	battles, err := h.Battles.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if battles == nil {
		battles = []model.Battle{}
	}
	return c.JSON(http.StatusOK, battles)
}

// ListActive returns battles currently being fought.
func (h *BattleHandler) ListActive(c echo.Context) error {
	return h.listByStatus(c, model.BattleActive)
}

// ListCompleted returns finished battles, the leaderboard source.
func (h *BattleHandler) ListCompleted(c echo.Context) error {
	return h.listByStatus(c, model.BattleCompleted)
}

func (h *BattleHandler) listByStatus(c echo.Context, status string) error {
	battles, err := h.Battles.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if battles == nil {
		battles = []model.Battle{}
	}
	return c.JSON(http.StatusOK, battles)
}

// Score bumps one side's score by a point.  The increment happens in
// the database so concurrent bumps from two tablets both land.
func (h *BattleHandler) Score(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req scoreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Side != "crown" && req.Side != "challenger" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "side must be crown or challenger"})
	}

	if err := h.Battles.IncrementScore(c.Request().Context(), id, req.Side); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "active battle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "score failed"})
	}
	observability.IncBattleScore(req.Side)
	b, err := h.Battles.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// Complete finishes a battle.
func (h *BattleHandler) Complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Battles.Complete(c.Request().Context(), id, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "battle is not active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "complete failed"})
	}
	b, err := h.Battles.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// Delete removes a battle record.
func (h *BattleHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Battles.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "battle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
