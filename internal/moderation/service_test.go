package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-compass/campus-compass-api/internal/logging"
)

type fakeClassifier struct {
	verdict *Verdict
	err     error
	calls   int
}

func (c *fakeClassifier) Classify(_ context.Context, _ string) (*Verdict, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.verdict, nil
}

type fakeCache struct {
	verdicts map[string]*Verdict
	getErr   error
	sets     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{verdicts: make(map[string]*Verdict)}
}

func (c *fakeCache) Get(_ context.Context, content string) (*Verdict, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	verdict, ok := c.verdicts[content]
	if !ok {
		return nil, ErrVerdictNotCached
	}
	return verdict, nil
}

func (c *fakeCache) Set(_ context.Context, content string, verdict *Verdict) error {
	c.sets++
	c.verdicts[content] = verdict
	return nil
}

func newMatcherForTest(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher()
	require.NoError(t, err)
	return m
}

func TestClassifyKeywordHitShortCircuits(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{}}
	svc := NewService(newMatcherForTest(t), classifier, nil, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "This professor is a fucking idiot", true)

	assert.False(t, result.IsClean)
	assert.True(t, result.Blocked)
	assert.Equal(t, ReasonKeyword, result.Reason)
	assert.Equal(t, []string{"en"}, result.DetectedLanguages)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, 0, classifier.calls, "keyword hits must not reach the AI stage")
}

func TestClassifyCleanContentPassesBothStages(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{}}
	svc := NewService(newMatcherForTest(t), classifier, nil, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "The course was difficult but fair", true)

	assert.True(t, result.IsClean)
	assert.False(t, result.Blocked)
	assert.Empty(t, result.Reason)
	assert.Empty(t, result.DetectedLanguages)
	assert.Equal(t, 1, classifier.calls)
}

func TestClassifyAIFlagged(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{Flagged: true, Reason: "Content contains harassment."}}
	svc := NewService(newMatcherForTest(t), classifier, nil, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "The course was difficult but fair", true)

	assert.False(t, result.IsClean)
	assert.True(t, result.Blocked)
	assert.Equal(t, ReasonAI, result.Reason)
	assert.Contains(t, result.Message, "harassment")
	assert.Empty(t, result.DetectedLanguages)
}

func TestClassifyFailsOpenOnClassifierError(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("upstream timeout")}
	svc := NewService(newMatcherForTest(t), classifier, nil, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "The course was difficult but fair", true)

	assert.True(t, result.IsClean)
	assert.False(t, result.Blocked)
}

func TestClassifyUseAIFalseSkipsStageTwo(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{Flagged: true, Reason: "would have blocked"}}
	svc := NewService(newMatcherForTest(t), classifier, nil, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "The course was difficult but fair", false)

	assert.True(t, result.IsClean)
	assert.Equal(t, 0, classifier.calls)
}

func TestClassifyUseAIFalseStillRunsKeywordStage(t *testing.T) {
	svc := NewService(newMatcherForTest(t), nil, nil, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "Total bullshit", false)

	assert.True(t, result.Blocked)
	assert.Equal(t, ReasonKeyword, result.Reason)
}

func TestClassifyNilClassifier(t *testing.T) {
	svc := NewService(newMatcherForTest(t), nil, nil, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "The course was difficult but fair", true)

	assert.True(t, result.IsClean)
}

func TestClassifyCacheHitBypassesClassifier(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{}}
	cache := newFakeCache()
	cache.verdicts["The course was difficult but fair"] = &Verdict{Flagged: true, Reason: "Content contains spam."}
	svc := NewService(newMatcherForTest(t), classifier, cache, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "The course was difficult but fair", true)

	assert.True(t, result.Blocked)
	assert.Equal(t, ReasonAI, result.Reason)
	assert.Equal(t, 0, classifier.calls)
}

func TestClassifyCacheMissStoresVerdict(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{}}
	cache := newFakeCache()
	svc := NewService(newMatcherForTest(t), classifier, cache, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "The course was difficult but fair", true)

	assert.True(t, result.IsClean)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, cache.sets)

	// Second call is served from the cache
	result = svc.Classify(context.Background(), "The course was difficult but fair", true)
	assert.True(t, result.IsClean)
	assert.Equal(t, 1, classifier.calls)
}

func TestClassifyCacheFailureFallsThroughToClassifier(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{}}
	cache := newFakeCache()
	cache.getErr = errors.New("redis connection refused")
	svc := NewService(newMatcherForTest(t), classifier, cache, logging.NewLogger(true))

	result := svc.Classify(context.Background(), "The course was difficult but fair", true)

	assert.True(t, result.IsClean)
	assert.Equal(t, 1, classifier.calls)
}
