package http

import (
	"net/http"

	trustUc "trustlend-backend/internal/usecase/trust"

	"github.com/labstack/echo/v4"
)

type TrustHandler struct{ uc *trustUc.Usecase }

func NewTrustHandler(uc *trustUc.Usecase) *TrustHandler { return &TrustHandler{uc: uc} }

func (h *TrustHandler) GetScore(c echo.Context) error {
	userID := c.Param("user_id")
	if !reHex32.MatchString(userID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}
	score, err := h.uc.GetScore(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user_id": userID, "score": score})
}

func (h *TrustHandler) GetHistory(c echo.Context) error {
	userID := c.Param("user_id")
	if !reHex32.MatchString(userID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}
	events, err := h.uc.History(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user_id": userID, "events": events})
}
