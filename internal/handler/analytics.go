package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/pricing"
	"github.com/iliyamo/gamezone-floor/internal/repository"
)

// AnalyticsHandler serves the owner's revenue dashboard.
type AnalyticsHandler struct {
	Sessions *repository.SessionRepo
}

func NewAnalyticsHandler(s *repository.SessionRepo) *AnalyticsHandler {
	return &AnalyticsHandler{Sessions: s}
}

type windowRevenue struct {
	SessionCount int   `json:"session_count"`
	Billed       int64 `json:"billed"`
	Collected    int64 `json:"collected"`
}

type deviceUsage struct {
	SessionCount int `json:"session_count"`
	UnitsClaimed int `json:"units_claimed"`
}

type revenueResp struct {
	From           time.Time                `json:"from"`
	To             time.Time                `json:"to"`
	SessionCount   int                      `json:"session_count"`
	TotalBilled    int64                    `json:"total_billed"`
	TotalCollected int64                    `json:"total_collected"`
	Outstanding    int64                    `json:"outstanding"`
	ByWindow       map[string]windowRevenue `json:"by_window"`
	ByDevice       map[string]deviceUsage   `json:"by_device"`
}

// Revenue aggregates completed sessions over ?from=&to= (RFC 3339).
// Defaults to the last 30 days.
func (h *AnalyticsHandler) Revenue(c echo.Context) error {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid 'from' timestamp"})
		}
		from = t.UTC()
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid 'to' timestamp"})
		}
		to = t.UTC()
	}
	if !to.After(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "'to' must be after 'from'"})
	}

	sum, err := h.Sessions.Revenue(c.Request().Context(), from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revenue query failed"})
	}

	sessions, err := h.Sessions.ListCompletedBetween(c.Request().Context(), from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revenue query failed"})
	}

	// A session bills one total across all its device kinds, so revenue
	// splits cleanly by tariff window but not by device; the per-device
	// breakdown reports usage instead.
	byWindow := make(map[string]windowRevenue)
	byDevice := make(map[string]deviceUsage)
	for _, s := range sessions {
		w := pricing.ClassifyWindow(s.StartTime).String()
		wr := byWindow[w]
		wr.SessionCount++
		wr.Billed += s.Price
		wr.Collected += s.PaidAmount
		byWindow[w] = wr

		for kind, units := range s.Devices {
			du := byDevice[kind]
			du.SessionCount++
			du.UnitsClaimed += len(units)
			byDevice[kind] = du
		}
	}

	return c.JSON(http.StatusOK, revenueResp{
		From:           from,
		To:             to,
		SessionCount:   sum.SessionCount,
		TotalBilled:    sum.TotalBilled,
		TotalCollected: sum.TotalCollected,
		Outstanding:    sum.TotalBilled - sum.TotalCollected,
		ByWindow:       byWindow,
		ByDevice:       byDevice,
	})
}
