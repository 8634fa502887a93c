package http

import (
	"net/http"

	matchingUc "trustlend-backend/internal/usecase/matching"

	"github.com/labstack/echo/v4"
)

type MatchHandler struct{ uc *matchingUc.Usecase }

func NewMatchHandler(uc *matchingUc.Usecase) *MatchHandler { return &MatchHandler{uc: uc} }

// CreateOffers triggers matching for a pending loan: candidates are ranked
// and time-boxed offers are created, the top-ranked lender notified.
func (h *MatchHandler) CreateOffers(c echo.Context) error {
	offers, err := h.uc.CreateOffers(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		if err == matchingUc.ErrNoCandidates {
			return c.JSON(http.StatusOK, map[string]any{
				"matched":      false,
				"match_status": "no_match",
			})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"matched": true,
		"offers":  offers,
	})
}

type respondReq struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

// Respond applies a lender's accept or decline to an offer. The acting
// lender is identified by the Ax-User-Id header the idempotency layer
// already validated.
func (h *MatchHandler) Respond(c echo.Context) error {
	var req respondReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	res, err := h.uc.RespondToOffer(c.Request().Context(), matchingUc.RespondInput{
		MatchID: c.Param("match_id"),
		ActorID: c.Request().Header.Get("Ax-User-Id"),
		Action:  matchingUc.Action(req.Action),
		Reason:  req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
