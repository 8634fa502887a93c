package http

import (
	"net/http"

	loanDomain "trustlend-backend/internal/domain/loan"
	eligibilityUc "trustlend-backend/internal/usecase/eligibility"
	loanUc "trustlend-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loanUc.Usecase }

func NewLoanHandler(uc *loanUc.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	BorrowerID        string  `json:"borrower_id" validate:"required,hex32"`
	Amount            float64 `json:"amount" validate:"required,gt=0,dec2"`
	Currency          string  `json:"currency" validate:"omitempty,len=3"`
	InterestRate      float64 `json:"interest_rate" validate:"gte=0,lte=100,dec2"`
	InterestType      string  `json:"interest_type" validate:"omitempty,oneof=simple compound"`
	Frequency         string  `json:"repayment_frequency" validate:"omitempty,oneof=weekly biweekly monthly"`
	TotalInstallments int     `json:"total_installments" validate:"required,gte=1,lte=520"`
	LenderType        string  `json:"lender_type" validate:"omitempty,oneof=personal business"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if req.InterestType == "" {
		req.InterestType = string(loanDomain.InterestSimple)
	}
	if req.Frequency == "" {
		req.Frequency = string(loanDomain.FrequencyMonthly)
	}
	if req.LenderType == "" {
		req.LenderType = string(eligibilityUc.LenderPersonal)
	}

	l, err := h.uc.Create(c.Request().Context(), loanUc.CreateInput{
		BorrowerID:        req.BorrowerID,
		Amount:            decimal.NewFromFloat(req.Amount),
		Currency:          req.Currency,
		InterestRate:      decimal.NewFromFloat(req.InterestRate),
		InterestType:      loanDomain.InterestType(req.InterestType),
		Frequency:         loanDomain.Frequency(req.Frequency),
		TotalInstallments: req.TotalInstallments,
		LenderType:        eligibilityUc.LenderType(req.LenderType),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	l, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) GetSchedule(c echo.Context) error {
	l, entries, err := h.uc.Schedule(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loan_id":        l.LoanID,
		"total_amount":   l.TotalAmount,
		"total_interest": l.TotalInterest,
		"installments":   entries,
	})
}
