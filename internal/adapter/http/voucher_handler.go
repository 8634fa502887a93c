package http

import (
	"net/http"

	voucherUc "trustlend-backend/internal/usecase/voucher"

	"github.com/labstack/echo/v4"
)

type VoucherHandler struct{ uc *voucherUc.Usecase }

func NewVoucherHandler(uc *voucherUc.Usecase) *VoucherHandler { return &VoucherHandler{uc: uc} }

type createVouchReq struct {
	VoucherUserID string `json:"voucher_user_id" validate:"required,hex32"`
	VoucheeUserID string `json:"vouchee_user_id" validate:"required,hex32"`
}

func (h *VoucherHandler) CreateVouch(c echo.Context) error {
	var req createVouchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	rec, err := h.uc.Vouch(c.Request().Context(), req.VoucherUserID, req.VoucheeUserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}
