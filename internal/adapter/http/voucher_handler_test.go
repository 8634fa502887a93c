package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	voucherDomain "trustlend-backend/internal/domain/voucher"
	"trustlend-backend/internal/testutil/vouchermock"
	voucherUc "trustlend-backend/internal/usecase/voucher"

	"github.com/labstack/echo/v4"
)

func newVoucherHandler(repo *vouchermock.Repo) *VoucherHandler {
	return NewVoucherHandler(voucherUc.NewUsecase(repo, nil, quietLogger()))
}

func vouchBody(voucher, vouchee string) map[string]any {
	return map[string]any{"voucher_user_id": voucher, "vouchee_user_id": vouchee}
}

func TestCreateVouchSuccess(t *testing.T) {
	e := newEchoWithValidator()
	h := newVoucherHandler(&vouchermock.Repo{})

	body := vouchBody(strings.Repeat("a", 32), strings.Repeat("b", 32))
	req := httptest.NewRequest(stdhttp.MethodPost, "/vouches", mustJSON(t, body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.CreateVouch(e.NewContext(req, rec)); err != nil {
		t.Fatalf("CreateVouch: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), strings.Repeat("b", 32)) {
		t.Errorf("response must carry the vouchee: %s", rec.Body.String())
	}
}

func TestCreateVouchSelfVouch(t *testing.T) {
	e := newEchoWithValidator()
	h := newVoucherHandler(&vouchermock.Repo{})

	same := strings.Repeat("a", 32)
	req := httptest.NewRequest(stdhttp.MethodPost, "/vouches", mustJSON(t, vouchBody(same, same)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.CreateVouch(e.NewContext(req, rec)); err != nil {
		t.Fatalf("CreateVouch: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateVouchDuplicate(t *testing.T) {
	e := newEchoWithValidator()
	repo := &vouchermock.Repo{
		CreateFn: func(ctx context.Context, r *voucherDomain.Record) error {
			return voucherDomain.ErrDuplicateVouch
		},
	}
	h := newVoucherHandler(repo)

	body := vouchBody(strings.Repeat("a", 32), strings.Repeat("b", 32))
	req := httptest.NewRequest(stdhttp.MethodPost, "/vouches", mustJSON(t, body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.CreateVouch(e.NewContext(req, rec)); err != nil {
		t.Fatalf("CreateVouch: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCreateVouchValidation(t *testing.T) {
	e := newEchoWithValidator()
	h := newVoucherHandler(&vouchermock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/vouches", mustJSON(t, vouchBody("short", "")))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.CreateVouch(e.NewContext(req, rec)); err != nil {
		t.Fatalf("CreateVouch: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
