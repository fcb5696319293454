package moderation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-compass/campus-compass-api/internal/logging"
)

func newTestHandler(t *testing.T, classifier Classifier) *Handler {
	t.Helper()
	svc := NewService(newMatcherForTest(t), classifier, nil, logging.NewLogger(true))
	return NewHandler(svc, nil, logging.NewLogger(true))
}

func doModerationRequest(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/moderation", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Moderate(rec, req)
	return rec
}

func TestModerateRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := doModerationRequest(t, h, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModerateRequiresContent(t *testing.T) {
	h := newTestHandler(t, nil)

	for _, body := range []string{`{}`, `{"content": ""}`, `{"content": "   "}`} {
		rec := doModerationRequest(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestModerateBlockedIsStillOK(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := doModerationRequest(t, h, `{"content": "This professor is a fucking idiot"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.False(t, result.IsClean)
	assert.True(t, result.Blocked)
	assert.Equal(t, ReasonKeyword, result.Reason)
	assert.Equal(t, []string{"en"}, result.DetectedLanguages)
}

func TestModerateCleanContent(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := doModerationRequest(t, h, `{"content": "The course was difficult but fair"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.True(t, result.IsClean)
	assert.False(t, result.Blocked)
	assert.Empty(t, result.Reason)
	assert.NotEmpty(t, result.Message)
}

func TestModerateUseAIDefaultsToTrue(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{Flagged: true, Reason: "Content contains spam."}}
	h := newTestHandler(t, classifier)

	rec := doModerationRequest(t, h, `{"content": "The course was difficult but fair"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.True(t, result.Blocked)
	assert.Equal(t, ReasonAI, result.Reason)
	assert.Equal(t, 1, classifier.calls)
}

func TestModerateUseAIFalse(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{Flagged: true, Reason: "would have blocked"}}
	h := newTestHandler(t, classifier)

	rec := doModerationRequest(t, h, `{"content": "The course was difficult but fair", "useAI": false}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.True(t, result.IsClean)
	assert.Equal(t, 0, classifier.calls)
}
