package http

import (
	"net/http"

	eligibilityUc "trustlend-backend/internal/usecase/eligibility"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type EligibilityHandler struct{ uc *eligibilityUc.Usecase }

func NewEligibilityHandler(uc *eligibilityUc.Usecase) *EligibilityHandler {
	return &EligibilityHandler{uc: uc}
}

// Check answers "can this borrower take a new loan, and how much".
// Query params: lender_type (personal|business, default personal) and an
// optional amount to test against the computed ceiling.
func (h *EligibilityHandler) Check(c echo.Context) error {
	borrowerID := c.Param("borrower_id")
	if !reHex32.MatchString(borrowerID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid borrower_id"})
	}

	lt := eligibilityUc.LenderType(c.QueryParam("lender_type"))
	if lt == "" {
		lt = eligibilityUc.LenderPersonal
	}

	var amount *decimal.Decimal
	if raw := c.QueryParam("amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || !d.IsPositive() {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
		}
		amount = &d
	}

	verdict, err := h.uc.CheckEligibility(c.Request().Context(), borrowerID, lt, amount)
	if err != nil {
		if err == eligibilityUc.ErrInvalidLenderType {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, verdict)
}
