package otp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/campus-compass/campus-compass-api/internal/httputil"
	"github.com/campus-compass/campus-compass-api/internal/logging"
	"github.com/campus-compass/campus-compass-api/internal/ratelimit"
)

const (
	ActionSend   = "send"
	ActionResend = "resend"
	ActionVerify = "verify"
)

// Handler contains the HTTP handler for the OTP endpoint
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

// NewHandler creates the handler. A nil rateLimiter disables IP limiting
// (used in tests).
func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// Request represents the OTP request body
type Request struct {
	Email  string `json:"email"`
	Action string `json:"action"` // send, resend or verify
	Code   string `json:"code,omitempty"`
}

// SendResponse represents a successful send/resend response
type SendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyResponse represents a successful verify response
type VerifyResponse struct {
	Success  bool   `json:"success"`
	Verified bool   `json:"verified"`
	Ticket   string `json:"ticket,omitempty"`
}

// ErrorResponse represents an OTP error response
type ErrorResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code,omitempty"`
	RemainingSeconds  int    `json:"remainingSeconds,omitempty"`
	RemainingAttempts *int   `json:"remainingAttempts,omitempty"`
}

// Handle dispatches an OTP action
// @Summary      Issue or verify an email passcode
// @Description  Send (or resend) a 6-digit verification code to an email address, or verify a previously issued code.
// @Tags         otp
// @Accept       json
// @Produce      json
// @Param        request body Request true "OTP action"
// @Success      200 {object} VerifyResponse
// @Failure      400 {object} ErrorResponse "Validation or state error"
// @Failure      429 {object} ErrorResponse "Rate limited"
// @Failure      500 {object} ErrorResponse "Delivery failure or internal error"
// @Router       /v1/otp [post]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := httputil.ClientIP(r)
	if h.rateLimiter != nil {
		exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "otp")
		if err != nil {
			logger.Error("failed to check IP rate limit", "error", err.Error())
		} else if exceeded {
			logger.Warn("IP rate limit exceeded for otp", "ip", ip)
			respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
			return
		}
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid otp request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if h.rateLimiter != nil {
		if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "otp"); err != nil {
			logger.Error("failed to record IP request", "error", err.Error())
		}
	}

	if strings.TrimSpace(req.Email) == "" {
		respondError(w, "email is required", httputil.CodeEmailRequired, http.StatusBadRequest)
		return
	}

	switch req.Action {
	case ActionSend, ActionResend:
		h.handleSend(w, r, req)
	case ActionVerify:
		h.handleVerify(w, r, req)
	default:
		respondError(w, "invalid action", httputil.CodeInvalidAction, http.StatusBadRequest)
	}
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request, req Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	err := h.service.Send(r.Context(), req.Email)
	if err != nil {
		var rateLimited *RateLimitedError
		if errors.As(err, &rateLimited) {
			logger.Warn("otp send rate limited", "remaining_seconds", rateLimited.RemainingSeconds)
			httputil.RespondJSON(w, ErrorResponse{
				Error:            "please wait before requesting another code",
				Code:             httputil.CodeRateLimited,
				RemainingSeconds: rateLimited.RemainingSeconds,
			}, http.StatusTooManyRequests)
			return
		}
		if errors.Is(err, ErrEmailRequired) {
			respondError(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrDeliveryFailed) {
			logger.Error("otp send failed: delivery error", "error", err.Error())
			respondError(w, "failed to send verification email", httputil.CodeDeliveryFailed, http.StatusInternalServerError)
			return
		}
		logger.Error("otp send failed: internal error", "error", err.Error())
		respondError(w, "failed to send verification code", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, SendResponse{
		Success: true,
		Message: "Verification code sent",
	}, http.StatusOK)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request, req Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if strings.TrimSpace(req.Code) == "" {
		respondError(w, "verification code is required", httputil.CodeCodeRequired, http.StatusBadRequest)
		return
	}

	result, err := h.service.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		var mismatch *CodeMismatchError
		if errors.As(err, &mismatch) {
			remaining := mismatch.RemainingAttempts
			httputil.RespondJSON(w, ErrorResponse{
				Error:             "invalid verification code",
				Code:              httputil.CodeInvalidCode,
				RemainingAttempts: &remaining,
			}, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNoValidCode) {
			respondError(w, "no valid verification code found, please request a new one", httputil.CodeNoValidCode, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrTooManyAttempts) {
			respondError(w, "too many failed attempts, please request a new code", httputil.CodeTooManyAttempts, http.StatusBadRequest)
			return
		}
		logger.Error("otp verify failed: internal error", "error", err.Error())
		respondError(w, "failed to verify code", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, VerifyResponse{
		Success:  true,
		Verified: true,
		Ticket:   result.Ticket,
	}, http.StatusOK)
}

func respondError(w http.ResponseWriter, message, code string, status int) {
	httputil.RespondJSON(w, ErrorResponse{Error: message, Code: code}, status)
}
