package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	testReqID  = strings.Repeat("a", 32)
	testUserID = strings.Repeat("b", 32)
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newServer(rdb *redis.Client, ttl time.Duration) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, ttl, quietLogger()))
	e.POST("/loans", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	})
	e.GET("/loans", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}

func post(e *echo.Echo, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader([]byte(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func goodHeaders() map[string]string {
	return map[string]string{
		"Ax-Request-Id": testReqID,
		"Ax-Request-At": time.Now().UTC().Format(time.RFC3339),
		"Ax-User-Id":    testUserID,
	}
}

func TestIdempotencyBypassesReads(t *testing.T) {
	e := newServer(newTestRedis(t), time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/loans", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET without headers = %d, want 200", rec.Code)
	}
}

func TestIdempotencyHeaderValidation(t *testing.T) {
	e := newServer(newTestRedis(t), time.Minute)

	cases := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, "Ax-Request-Id") }},
		{"malformed request id", func(h map[string]string) { h["Ax-Request-Id"] = "NOT-VALID" }},
		{"malformed request at", func(h map[string]string) { h["Ax-Request-At"] = "not-a-time" }},
		{"skewed request at", func(h map[string]string) {
			h["Ax-Request-At"] = time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		}},
		{"missing user id", func(h map[string]string) { delete(h, "Ax-User-Id") }},
		{"malformed user id", func(h map[string]string) { h["Ax-User-Id"] = "not32hex" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := goodHeaders()
			tc.mutate(h)
			if rec := post(e, `{"x":1}`, h); rec.Code != http.StatusBadRequest {
				t.Errorf("want 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestIdempotencyReplaysFinishedRequest(t *testing.T) {
	e := newServer(newTestRedis(t), 2*time.Minute)
	h := goodHeaders()

	rec1 := post(e, `{"amount":"100.00"}`, h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request = %d: %s", rec1.Code, rec1.Body.String())
	}
	rec2 := post(e, `{"amount":"100.00"}`, h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay = %d: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
}

func TestIdempotencyConflictWhileInProgress(t *testing.T) {
	rdb := newTestRedis(t)
	e := newServer(rdb, 2*time.Minute)
	body := `{"x":1}`

	key := buildKey(http.MethodPost, "/loans", testUserID, testReqID)
	seed := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash([]byte(body)),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, seed); err != nil || !ok {
		t.Fatalf("seed provisional: ok=%v err=%v", ok, err)
	}

	if rec := post(e, body, goodHeaders()); rec.Code != http.StatusConflict {
		t.Fatalf("in-progress replay = %d, want 409", rec.Code)
	}
}

func TestIdempotencyConflictOnBodyMismatch(t *testing.T) {
	rdb := newTestRedis(t)
	e := newServer(rdb, 2*time.Minute)

	key := buildKey(http.MethodPost, "/loans", testUserID, testReqID)
	final := idempEntry{
		Code:        http.StatusCreated,
		Body:        []byte(`{"ok":true}`),
		BodySHA256:  bodyHash([]byte(`{"x":1}`)),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final: %v", err)
	}

	if rec := post(e, `{"x":2}`, goodHeaders()); rec.Code != http.StatusConflict {
		t.Fatalf("reused id with new body = %d, want 409", rec.Code)
	}
}

func TestIdempotencyStoreUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := newServer(rdb, time.Minute)

	if rec := post(e, `{}`, goodHeaders()); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store down = %d, want 503", rec.Code)
	}
}
