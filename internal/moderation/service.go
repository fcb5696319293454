package moderation

import (
	"context"
	"errors"

	"github.com/campus-compass/campus-compass-api/internal/logging"
)

// Blocked-reason values surfaced to callers.
const (
	ReasonKeyword = "inappropriate_language"
	ReasonAI      = "ai_moderation"
)

const (
	messageClean          = "Content is clean"
	messageKeywordBlocked = "Content contains inappropriate language. Please revise and resubmit."
	messageAIBlocked      = "Content was flagged by moderation. Please revise and resubmit."
)

// Result is the classification outcome for one submission. Exactly one of
// three shapes: clean, blocked-by-keyword, or blocked-by-ai. The matched
// term is deliberately absent so the message doesn't teach evasion.
type Result struct {
	IsClean           bool     `json:"isClean"`
	Blocked           bool     `json:"blocked"`
	Reason            string   `json:"reason,omitempty"`
	Message           string   `json:"message"`
	DetectedLanguages []string `json:"detectedLanguages,omitempty"`
}

// Classifier produces an AI verdict for a piece of text.
// Implementations include OpenAIClassifier.
type Classifier interface {
	Classify(ctx context.Context, content string) (*Verdict, error)
}

// Cache stores AI verdicts between calls. Implementations include
// VerdictCache (Redis).
type Cache interface {
	Get(ctx context.Context, content string) (*Verdict, error)
	Set(ctx context.Context, content string, verdict *Verdict) error
}

// Service runs the two-stage moderation pipeline: a deterministic keyword
// filter, then an optional AI classifier. Stage 1 always runs; stage 2 is
// best-effort and fails open. The service keeps no state between calls.
type Service struct {
	matcher    *Matcher
	classifier Classifier // nil disables the AI stage
	cache      Cache      // nil disables verdict caching
	logger     *logging.Logger
}

func NewService(matcher *Matcher, classifier Classifier, cache Cache, logger *logging.Logger) *Service {
	return &Service{
		matcher:    matcher,
		classifier: classifier,
		cache:      cache,
		logger:     logger,
	}
}

// Classify runs the pipeline over one submission. useAI only controls
// whether stage 2 runs in addition to stage 1; the keyword filter can
// never be skipped by the caller.
func (s *Service) Classify(ctx context.Context, content string, useAI bool) *Result {
	if matched, locales := s.matcher.Match(content); matched {
		s.logger.Info("content blocked by keyword filter", "locales", locales)
		return &Result{
			IsClean:           false,
			Blocked:           true,
			Reason:            ReasonKeyword,
			Message:           messageKeywordBlocked,
			DetectedLanguages: locales,
		}
	}

	if !useAI || s.classifier == nil {
		return cleanResult()
	}

	verdict := s.aiVerdict(ctx, content)
	if verdict == nil {
		// Classifier unavailable or unparseable: fail open. Stage 1
		// already passed, and moderation must not become a single point
		// of failure for submissions.
		return cleanResult()
	}

	if verdict.Flagged {
		message := messageAIBlocked
		if verdict.Reason != "" {
			message = verdict.Reason + " Please revise and resubmit."
		}
		return &Result{
			IsClean: false,
			Blocked: true,
			Reason:  ReasonAI,
			Message: message,
		}
	}

	return cleanResult()
}

// aiVerdict consults the cache, then the classifier. Returns nil when no
// trustworthy verdict could be obtained; the distinction between "clean"
// and "unavailable" is collapsed only by the caller.
func (s *Service) aiVerdict(ctx context.Context, content string) *Verdict {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, content)
		if err == nil {
			return cached
		}
		if !errors.Is(err, ErrVerdictNotCached) {
			s.logger.Warn("verdict cache read failed", "error", err.Error())
		}
	}

	verdict, err := s.classifier.Classify(ctx, content)
	if err != nil {
		s.logger.Warn("moderation classifier unavailable, failing open", "error", err.Error())
		return nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, content, verdict); err != nil {
			s.logger.Warn("verdict cache write failed", "error", err.Error())
		}
	}

	return verdict
}

func cleanResult() *Result {
	return &Result{
		IsClean: true,
		Blocked: false,
		Message: messageClean,
	}
}
