package moderation

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/campus-compass/campus-compass-api/internal/httputil"
	"github.com/campus-compass/campus-compass-api/internal/logging"
	"github.com/campus-compass/campus-compass-api/internal/ratelimit"
)

// Handler contains the HTTP handler for the moderation endpoint
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

// Request represents the moderation request body
type Request struct {
	Content string `json:"content"`
	// UseAI defaults to true when absent. It only adds the AI stage; the
	// keyword stage always runs.
	UseAI *bool `json:"useAI,omitempty"`
}

// Moderate classifies a piece of user-submitted text
// @Summary      Moderate user-submitted text
// @Description  Run the submission through the keyword filter and, unless disabled, the AI classifier. A blocked verdict is a normal 200 response, not an error.
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Param        request body Request true "Content to classify"
// @Success      200 {object} Result
// @Failure      400 {object} httputil.ErrorResponse "Missing content"
// @Failure      429 {object} httputil.ErrorResponse "Rate limited"
// @Router       /v1/moderation [post]
func (h *Handler) Moderate(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := httputil.ClientIP(r)
	if h.rateLimiter != nil {
		exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "moderation")
		if err != nil {
			logger.Error("failed to check IP rate limit", "error", err.Error())
		} else if exceeded {
			logger.Warn("IP rate limit exceeded for moderation", "ip", ip)
			httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
			return
		}
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid moderation request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if h.rateLimiter != nil {
		if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "moderation"); err != nil {
			logger.Error("failed to record IP request", "error", err.Error())
		}
	}

	if strings.TrimSpace(req.Content) == "" {
		httputil.RespondErrorWithCode(w, "content is required", httputil.CodeContentRequired, http.StatusBadRequest)
		return
	}

	useAI := true
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	result := h.service.Classify(r.Context(), req.Content, useAI)

	httputil.RespondJSON(w, result, http.StatusOK)
}
