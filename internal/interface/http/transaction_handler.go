package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-finance-tracker/internal/application"
	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	"github.com/oksasatya/go-finance-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-finance-tracker/pkg/response"
	"github.com/oksasatya/go-finance-tracker/pkg/validation"
)

// TransactionService is the subset of *application.TransactionService the
// handler needs.
type TransactionService interface {
	List(ctx context.Context, ownerID string) ([]entity.Transaction, error)
	ListRecurring(ctx context.Context, ownerID string) ([]entity.Transaction, error)
	Summary(ctx context.Context, ownerID string, from, to time.Time) (entity.Summary, error)
	Search(ctx context.Context, ownerID, query string, size int) ([]entity.Transaction, error)
	Get(ctx context.Context, ownerID, id string) (*entity.Transaction, error)
	Create(ctx context.Context, ownerID string, in application.TransactionInput) (*entity.Transaction, error)
	Update(ctx context.Context, ownerID, id string, in application.TransactionInput) (*entity.Transaction, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TransactionHandler serves one transaction kind. The same handler type is
// mounted twice, once for expenses and once for incomes.
type TransactionHandler struct {
	Kind   entity.Kind
	Svc    TransactionService
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewTransactionHandler(kind entity.Kind, svc TransactionService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{Kind: kind, Svc: svc, Logger: logger, Now: time.Now}
}

const dateOnly = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// parseEndDate is parseDate for an inclusive upper bound: a plain date
// covers the whole day.
func parseEndDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

// flexTime accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := parseDate(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t *flexTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// transactionRequest carries both counterparty and date spellings; only the
// pair belonging to the handler's kind is read.
type transactionRequest struct {
	Amount             *float64  `json:"amount"`
	Description        *string   `json:"description" binding:"omitempty,max=500"`
	Category           *string   `json:"category"`
	Merchant           *string   `json:"merchant" binding:"omitempty,max=200"`
	Source             *string   `json:"source" binding:"omitempty,max=200"`
	DateSpent          *flexTime `json:"dateSpent"`
	DateEarned         *flexTime `json:"dateEarned"`
	IsRecurring        *bool     `json:"isRecurring"`
	RecurringFrequency *string   `json:"recurringFrequency"`
	StartDate          *flexTime `json:"startDate"`
}

func (h *TransactionHandler) toInput(req transactionRequest) application.TransactionInput {
	in := application.TransactionInput{
		Amount:             req.Amount,
		Description:        req.Description,
		Category:           req.Category,
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: req.RecurringFrequency,
		StartDate:          req.StartDate.ptr(),
	}
	if h.Kind.CounterpartyField == entity.IncomeKind.CounterpartyField {
		in.Counterparty = req.Source
		in.Date = req.DateEarned.ptr()
	} else {
		in.Counterparty = req.Merchant
		in.Date = req.DateSpent.ptr()
	}
	return in
}

// transactionView is the outward shape of a record. Only the counterparty
// and date fields of the record's kind are filled.
type transactionView struct {
	ID                 string     `json:"_id"`
	User               string     `json:"user"`
	Amount             float64    `json:"amount"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Merchant           *string    `json:"merchant,omitempty"`
	Source             *string    `json:"source,omitempty"`
	DateSpent          *time.Time `json:"dateSpent,omitempty"`
	DateEarned         *time.Time `json:"dateEarned,omitempty"`
	IsRecurring        bool       `json:"isRecurring"`
	RecurringFrequency string     `json:"recurringFrequency,omitempty"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func (h *TransactionHandler) toView(t *entity.Transaction) transactionView {
	v := transactionView{
		ID:                 t.ID,
		User:               t.OwnerID,
		Amount:             t.Amount,
		Description:        t.Description,
		Category:           t.Category,
		IsRecurring:        t.IsRecurring,
		RecurringFrequency: t.RecurringFrequency,
		StartDate:          t.StartDate,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	counterparty, date := t.Counterparty, t.Date
	if h.Kind.CounterpartyField == entity.IncomeKind.CounterpartyField {
		v.Source, v.DateEarned = &counterparty, &date
	} else {
		v.Merchant, v.DateSpent = &counterparty, &date
	}
	return v
}

func (h *TransactionHandler) toViews(ts []entity.Transaction) []transactionView {
	out := make([]transactionView, 0, len(ts))
	for i := range ts {
		out = append(out, h.toView(&ts[i]))
	}
	return out
}

func owner(c *gin.Context) string { return c.GetString(middleware.CtxUserIDKey) }

// List GET /api/{kind}
func (h *TransactionHandler) List(c *gin.Context) {
	ts, err := h.Svc.List(c.Request.Context(), owner(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.toViews(ts), h.Kind.Name+" list", map[string]any{"count": len(ts)})
}

// Recurring GET /api/{kind}/recurring
func (h *TransactionHandler) Recurring(c *gin.Context) {
	ts, err := h.Svc.ListRecurring(c.Request.Context(), owner(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.toViews(ts), "recurring "+h.Kind.Name+" list", map[string]any{"count": len(ts)})
}

// Summary GET /api/{kind}/summary?from=&to=
// Defaults to the current calendar month up to now.
func (h *TransactionHandler) Summary(c *gin.Context) {
	now := h.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now
	if s := c.Query("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"from": "must be RFC3339 or YYYY-MM-DD"})
			return
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := parseEndDate(s)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"to": "must be RFC3339 or YYYY-MM-DD"})
			return
		}
		to = t
	}
	sum, err := h.Svc.Summary(c.Request.Context(), owner(c), from, to)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, sum, h.Kind.Name+" summary", map[string]any{"from": from, "to": to})
}

// Search GET /api/{kind}/search?q=&size=
func (h *TransactionHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	ts, err := h.Svc.Search(c.Request.Context(), owner(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.toViews(ts), h.Kind.Name+" search", map[string]any{"count": len(ts)})
}

// Get GET /api/{kind}/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.toView(t), h.Kind.Name, nil)
}

// Create POST /api/expense/addExpense, /api/income/addIncome
func (h *TransactionHandler) Create(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), owner(c), h.toInput(req))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, h.toView(t), h.Kind.Title+" created", nil)
}

// Update PUT /api/{kind}/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), owner(c), c.Param("id"), h.toInput(req))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.toView(t), h.Kind.Title+" updated", nil)
}

// Delete DELETE /api/{kind}/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Delete(c.Request.Context(), owner(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id}, h.Kind.Title+" deleted successfully", nil)
}
