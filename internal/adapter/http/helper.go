package http

import (
	"errors"
	"net/http"

	borrowerDomain "trustlend-backend/internal/domain/borrower"
	lenderDomain "trustlend-backend/internal/domain/lender"
	loanDomain "trustlend-backend/internal/domain/loan"
	matchDomain "trustlend-backend/internal/domain/match"
	voucherDomain "trustlend-backend/internal/domain/voucher"
	loanUc "trustlend-backend/internal/usecase/loan"
	matchingUc "trustlend-backend/internal/usecase/matching"
	paymentUc "trustlend-backend/internal/usecase/payment"

	"github.com/labstack/echo/v4"
)

// writeError maps domain and usecase errors onto HTTP statuses. Unknown
// errors surface as 500 without leaking internals.
func writeError(c echo.Context, err error) error {
	var notEligible *loanUc.NotEligibleError
	if errors.As(err, &notEligible) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":   "not eligible",
			"verdict": notEligible.Verdict,
		})
	}
	var resolved *matchDomain.ResolvedError
	if errors.As(err, &resolved) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: resolved.Error()})
	}

	switch {
	case errors.Is(err, loanDomain.ErrNotFound),
		errors.Is(err, matchDomain.ErrNotFound),
		errors.Is(err, borrowerDomain.ErrNotFound),
		errors.Is(err, lenderDomain.ErrNotFound),
		errors.Is(err, matchingUc.ErrNoCandidates):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loanDomain.ErrInvalidInput),
		errors.Is(err, matchingUc.ErrInvalidAction),
		errors.Is(err, voucherDomain.ErrSelfVouch),
		errors.Is(err, paymentUc.ErrInvalidPayment):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loanUc.ErrDuplicatePending),
		errors.Is(err, matchingUc.ErrLoanNotMatchable),
		errors.Is(err, matchDomain.ErrAlreadyResolved),
		errors.Is(err, voucherDomain.ErrDuplicateVouch),
		errors.Is(err, lenderDomain.ErrInsufficientCapital):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, matchDomain.ErrExpired):
		return c.JSON(http.StatusGone, ErrorResponse{Error: err.Error()})
	case errors.Is(err, matchDomain.ErrNotLender):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
