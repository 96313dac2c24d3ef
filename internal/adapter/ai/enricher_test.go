package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

type mockChat struct{ mock.Mock }

func (m *mockChat) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockChat) Provider() string { return "fake" }

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string, _ int64) (bool, time.Duration, error) {
	s.keys = append(s.keys, key)
	return s.allowed, time.Second, s.err
}

const goodReply = `{"score": 90, "strengths": ["Go"], "improvements": [], "suggestions": ["Add metrics"], "actionVerbsScore": 5, "readabilityScore": 4}`

func TestEnricher_Success(t *testing.T) {
	chat := &mockChat{}
	chat.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Job Role: Backend") && strings.Contains(p, "Go, SQL")
	})).Return(goodReply, nil).Once()

	e := NewEnricher(chat)
	got, err := e.Enrich(context.Background(), "Built Go services with SQL.", "Backend", []string{"Go", "SQL"})
	require.NoError(t, err)
	assert.Equal(t, 90, got.Score)
	assert.Equal(t, []string{"Go"}, got.Strengths)
	assert.Equal(t, 5, got.ActionVerbsScore)
	chat.AssertExpectations(t)
}

func TestEnricher_TruncatesResumeText(t *testing.T) {
	long := strings.Repeat("Optimized PostgreSQL queries for reporting. ", 500)
	chat := &mockChat{}
	chat.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return len(p) < len(long)
	})).Return(goodReply, nil).Once()

	e := NewEnricher(chat, WithMaxPromptTokens(100))
	_, err := e.Enrich(context.Background(), long, "DBA", []string{"PostgreSQL"})
	require.NoError(t, err)
	chat.AssertExpectations(t)
}

func TestEnricher_ClientErrorOpensBreaker(t *testing.T) {
	chat := &mockChat{}
	chat.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("503 from upstream")).Twice()

	e := NewEnricher(chat, WithBreaker(NewCircuitBreaker("fake", 2, time.Minute)))
	for i := 0; i < 2; i++ {
		_, err := e.Enrich(context.Background(), "text", "Role", []string{"k"})
		require.Error(t, err)
	}

	_, err := e.Enrich(context.Background(), "text", "Role", []string{"k"})
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, domain.ErrUpstreamRateLimit)
	chat.AssertExpectations(t)
}

func TestEnricher_InvalidReply(t *testing.T) {
	chat := &mockChat{}
	chat.On("Complete", mock.Anything, mock.Anything).Return(`{"score": 250}`, nil).Once()

	_, err := NewEnricher(chat).Enrich(context.Background(), "text", "Role", []string{"k"})
	require.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestEnricher_Timeout(t *testing.T) {
	chat := &mockChat{}
	chat.On("Complete", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded).Once()

	_, err := NewEnricher(chat).Enrich(context.Background(), "text", "Role", []string{"k"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEnricher_RateLimited(t *testing.T) {
	chat := &mockChat{}
	lim := &stubLimiter{allowed: false}

	e := NewEnricher(chat, WithLimiter(lim))
	_, err := e.Enrich(context.Background(), "text", "Role", []string{"k"})
	require.ErrorIs(t, err, domain.ErrUpstreamRateLimit)
	assert.Equal(t, []string{"llm:fake"}, lim.keys)
	chat.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	assert.Equal(t, CircuitClosed, e.breaker.State())
}

func TestEnricher_LimiterErrorFailsOpen(t *testing.T) {
	chat := &mockChat{}
	chat.On("Complete", mock.Anything, mock.Anything).Return(goodReply, nil).Once()

	e := NewEnricher(chat, WithLimiter(&stubLimiter{allowed: true, err: errors.New("redis down")}))
	_, err := e.Enrich(context.Background(), "text", "Role", []string{"k"})
	require.NoError(t, err)
}
