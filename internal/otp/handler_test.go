package otp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-compass/campus-compass-api/internal/logging"
	"github.com/campus-compass/campus-compass-api/internal/ratelimit"
)

func newTestHandler(t *testing.T) (*Handler, *fakeRepository, *fakeMailer) {
	t.Helper()
	repo := newFakeRepository()
	mailer := &fakeMailer{}
	svc := newTestService(t, repo, mailer)
	return NewHandler(svc, nil, logging.NewLogger(true)), repo, mailer
}

func doOTPRequest(t *testing.T, h *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, "/v1/otp", &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHandleRejectsMalformedBody(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/otp", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.NotEmpty(t, resp.Error)
}

func TestHandleRequiresEmail(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doOTPRequest(t, h, Request{Action: ActionSend})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "email is required", resp.Error)
}

func TestHandleRejectsUnknownAction(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: "delete"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "invalid action", resp.Error)
}

func TestHandleSend(t *testing.T) {
	h, _, mailer := newTestHandler(t)

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionSend})
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[SendResponse](t, rec)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, mailer.lastCode(t))
}

func TestHandleSendRateLimited(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionSend})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionResend})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Greater(t, resp.RemainingSeconds, 0)
	assert.LessOrEqual(t, resp.RemainingSeconds, 60)
}

func TestHandleVerifyRequiresCode(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionVerify})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "verification code is required", resp.Error)
}

func TestHandleVerifySuccess(t *testing.T) {
	h, _, mailer := newTestHandler(t)

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionSend})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doOTPRequest(t, h, Request{
		Email:  "student@university.az",
		Action: ActionVerify,
		Code:   mailer.lastCode(t),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[VerifyResponse](t, rec)
	assert.True(t, resp.Success)
	assert.True(t, resp.Verified)
	assert.NotEmpty(t, resp.Ticket)
}

func TestHandleVerifyWrongCode(t *testing.T) {
	h, _, mailer := newTestHandler(t)

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionSend})
	require.Equal(t, http.StatusOK, rec.Code)

	wrong := "000000"
	if mailer.lastCode(t) == wrong {
		wrong = "000001"
	}

	rec = doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionVerify, Code: wrong})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	require.NotNil(t, resp.RemainingAttempts)
	assert.Equal(t, 4, *resp.RemainingAttempts)
}

func TestHandleVerifyWithoutActiveCode(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionVerify, Code: "123456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Contains(t, resp.Error, "no valid verification code")
}

func TestHandleDeliveryFailure(t *testing.T) {
	repo := newFakeRepository()
	mailer := &fakeMailer{failWith: assert.AnError}
	svc := newTestService(t, repo, mailer)
	h := NewHandler(svc, nil, logging.NewLogger(true))

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionSend})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "failed to send verification email", resp.Error)

	// A failed delivery must not start the rate-limit window
	mailer.failWith = nil
	rec = doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionSend})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleIPLimiterFailsOpen(t *testing.T) {
	repo := newFakeRepository()
	mailer := &fakeMailer{}
	svc := newTestService(t, repo, mailer)

	// Unreachable Redis: limiter errors must not block the request
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	limiter := ratelimit.NewLimiter(client, 20, time.Minute)
	h := NewHandler(svc, limiter, logging.NewLogger(true))

	rec := doOTPRequest(t, h, Request{Email: "student@university.az", Action: ActionSend})
	assert.Equal(t, http.StatusOK, rec.Code)
}
