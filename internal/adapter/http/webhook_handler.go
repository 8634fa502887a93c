package http

import (
	"net/http"
	"time"

	paymentUc "trustlend-backend/internal/usecase/payment"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// WebhookHandler receives transfer events from the payment provider. The
// payment usecase is idempotent, so provider retries of the same event are
// harmless.
type WebhookHandler struct {
	payments *paymentUc.Usecase
	log      *logrus.Logger
}

func NewWebhookHandler(payments *paymentUc.Usecase, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{payments: payments, log: log}
}

type transferEventReq struct {
	EventID    string  `json:"event_id" validate:"required,uuid4"`
	EventType  string  `json:"event_type" validate:"required,oneof=transfer_completed transfer_failed"`
	LoanID     string  `json:"loan_id" validate:"required,hex32"`
	BorrowerID string  `json:"borrower_id" validate:"required,hex32"`
	PaymentID  string  `json:"payment_id" validate:"required,max=64"`
	Amount     float64 `json:"amount" validate:"omitempty,gt=0,dec2"`
	DueDate    string  `json:"due_date" validate:"omitempty"`
	PaidDate   string  `json:"paid_date" validate:"omitempty"`
}

func (h *WebhookHandler) TransferEvent(c echo.Context) error {
	var req transferEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if _, err := uuid.Parse(req.EventID); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid event_id"})
	}

	log := h.log.WithFields(logrus.Fields{
		"event_id":   req.EventID,
		"event_type": req.EventType,
		"loan_id":    req.LoanID,
		"payment_id": req.PaymentID,
	})

	ctx := c.Request().Context()
	switch req.EventType {
	case "transfer_failed":
		if err := h.payments.OnPaymentFailed(ctx, req.LoanID, req.BorrowerID, req.PaymentID); err != nil {
			log.WithError(err).Error("webhook: transfer_failed handling failed")
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"received": true})

	default: // transfer_completed
		due, err := parseDate(req.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid due_date"})
		}
		paid, err := parseDate(req.PaidDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid paid_date"})
		}
		res, err := h.payments.OnPaymentCompleted(ctx, paymentUc.CompletedInput{
			LoanID:     req.LoanID,
			BorrowerID: req.BorrowerID,
			PaymentID:  req.PaymentID,
			Amount:     decimal.NewFromFloat(req.Amount),
			DueDate:    due,
			PaidDate:   paid,
		})
		if err != nil {
			log.WithError(err).Error("webhook: transfer_completed handling failed")
			return writeError(c, err)
		}
		log.WithField("duplicate", res.Duplicate).Info("webhook: transfer processed")
		return c.JSON(http.StatusOK, res)
	}
}

// parseDate accepts RFC3339 or a plain yyyy-mm-dd date.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
