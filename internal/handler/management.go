package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/model"
	"github.com/iliyamo/gamezone-floor/internal/repository"
)

// ManagementHandler covers the owner's bookkeeping: service
// subscriptions and staff salaries.  All routes are OWNER-only.
type ManagementHandler struct {
	Subscriptions *repository.SubscriptionRepo
	Salaries      *repository.SalaryRepo
}

func NewManagementHandler(subs *repository.SubscriptionRepo, sal *repository.SalaryRepo) *ManagementHandler {
	return &ManagementHandler{Subscriptions: subs, Salaries: sal}
}

type subscriptionReq struct {
	Type       string    `json:"type"`
	Provider   string    `json:"provider"`
	Cost       int64     `json:"cost"`
	StartDate  time.Time `json:"start_date"`
	ExpiryDate time.Time `json:"expiry_date"`
}

type salaryReq struct {
	EmployeeName string    `json:"employee_name"`
	RoleLabel    string    `json:"role_label"`
	Amount       int64     `json:"amount"`
	PaymentDate  time.Time `json:"payment_date"`
	Note         string    `json:"note"`
}

// CreateSubscription records a recurring cost.
func (h *ManagementHandler) CreateSubscription(c echo.Context) error {
	var req subscriptionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Type == "" || req.Provider == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type and provider required"})
	}
	if req.Cost < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cost must be non-negative"})
	}
	if !req.ExpiryDate.After(req.StartDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expiry must be after start"})
	}

	s := &model.Subscription{
		Type:       req.Type,
		Provider:   req.Provider,
		Cost:       req.Cost,
		StartDate:  req.StartDate.UTC(),
		ExpiryDate: req.ExpiryDate.UTC(),
	}
	if err := h.Subscriptions.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create subscription failed"})
	}
	return c.JSON(http.StatusCreated, s)
}

// ListSubscriptions returns all subscriptions.
func (h *ManagementHandler) ListSubscriptions(c echo.Context) error {
	subs, err := h.Subscriptions.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if subs == nil {
		subs = []model.Subscription{}
	}
	return c.JSON(http.StatusOK, subs)
}

// DeleteSubscription removes a subscription.
func (h *ManagementHandler) DeleteSubscription(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Subscriptions.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateSalary records a salary payment.
func (h *ManagementHandler) CreateSalary(c echo.Context) error {
	var req salaryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EmployeeName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee name required"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	if req.PaymentDate.IsZero() {
		req.PaymentDate = time.Now().UTC()
	}

	s := &model.Salary{
		EmployeeName: req.EmployeeName,
		RoleLabel:    req.RoleLabel,
		Amount:       req.Amount,
		PaymentDate:  req.PaymentDate.UTC(),
		Note:         req.Note,
	}
	if err := h.Salaries.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create salary failed"})
	}
	return c.JSON(http.StatusCreated, s)
}

// ListSalaries returns all salary payments.
func (h *ManagementHandler) ListSalaries(c echo.Context) error {
	salaries, err := h.Salaries.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	if salaries == nil {
		salaries = []model.Salary{}
	}
	return c.JSON(http.StatusOK, salaries)
}

// DeleteSalary removes a salary payment record.
func (h *ManagementHandler) DeleteSalary(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Salaries.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "salary not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
