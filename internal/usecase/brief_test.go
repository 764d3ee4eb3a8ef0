package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/models"
	"marketpulse/pkg/logger"
)

type stubSummarizer struct {
	out string
	err error
}

func (s *stubSummarizer) Summarize(ctx context.Context, pack string) (string, error) {
	return s.out, s.err
}

type stubTaskStore struct {
	tasks []models.Task
	err   error
}

func (s *stubTaskStore) Add(ctx context.Context, title string) (models.Task, error) {
	return models.Task{}, errors.New("not implemented")
}

func (s *stubTaskStore) Open(ctx context.Context) ([]models.Task, error) {
	return s.tasks, s.err
}

func (s *stubTaskStore) MarkDone(ctx context.Context, id uint) error {
	return errors.New("not implemented")
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestBuildPack(t *testing.T) {
	v, p := 7500.0, 1.2
	snap := &models.Snapshot{
		Quotes: []models.Quote{{Label: "ASX200", Value: &v, PercentChange: &p}},
		Headlines: []models.Headline{
			{Title: "rates held", Link: "https://example.com/a", Source: "wire"},
		},
	}
	tasks := &stubTaskStore{tasks: []models.Task{{ID: 1, Title: "rebalance"}}}

	b := NewBriefService(testLogger(t), nil, tasks)
	b.now = func() time.Time { return time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC) }

	pack := b.BuildPack(context.Background(), snap)
	require.Len(t, pack.Pulse, 1)
	require.Len(t, pack.Headlines, 1)
	require.Len(t, pack.Tasks, 1)

	text := pack.Text()
	assert.Contains(t, text, "ASX200: 7500.00 (+1.20%)")
	assert.Contains(t, text, "[wire] rates held")
	assert.Contains(t, text, "rebalance")
}

func TestBuildPackHeadlineCap(t *testing.T) {
	snap := &models.Snapshot{}
	for i := 0; i < packHeadlineLimit+5; i++ {
		snap.Headlines = append(snap.Headlines, models.Headline{
			Title: "story", Link: "https://example.com/" + string(rune('a'+i)), Source: "wire",
		})
	}

	b := NewBriefService(testLogger(t), nil, nil)
	pack := b.BuildPack(context.Background(), snap)
	assert.Len(t, pack.Headlines, packHeadlineLimit)
}

func TestBuildPackNilSnapshot(t *testing.T) {
	b := NewBriefService(testLogger(t), nil, nil)
	pack := b.BuildPack(context.Background(), nil)
	assert.NotNil(t, pack.Pulse)
	assert.NotNil(t, pack.Headlines)
	assert.NotEmpty(t, pack.Time)
}

func TestBuildPackTaskStoreFailure(t *testing.T) {
	tasks := &stubTaskStore{err: errors.New("db locked")}
	b := NewBriefService(testLogger(t), nil, tasks)

	pack := b.BuildPack(context.Background(), &models.Snapshot{})
	assert.Empty(t, pack.Tasks)
}

func TestGenerateUsesSummarizer(t *testing.T) {
	b := NewBriefService(testLogger(t), &stubSummarizer{out: "MARKET STATE: calm"}, nil)
	got := b.Generate(context.Background(), "TIME: now")
	assert.Equal(t, "MARKET STATE: calm", got)
}

func TestGenerateFallsBackOnError(t *testing.T) {
	b := NewBriefService(testLogger(t), &stubSummarizer{err: errors.New("timeout")}, nil)
	got := b.Generate(context.Background(), "TIME: now\n\nMARKET PULSE:\n- ASX200: 7500.00 (+1.20%)")

	assert.True(t, strings.HasPrefix(got, "DAILY BRIEF (offline mode)"))
	assert.Contains(t, got, "ASX200: 7500.00 (+1.20%)")
}

func TestGenerateFallsBackOnEmptyOutput(t *testing.T) {
	b := NewBriefService(testLogger(t), &stubSummarizer{out: "   "}, nil)
	got := b.Generate(context.Background(), "pack body")
	assert.Contains(t, got, "pack body")
}

func TestGenerateWithoutSummarizer(t *testing.T) {
	b := NewBriefService(testLogger(t), nil, nil)
	got := b.Generate(context.Background(), "pack body")
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "pack body")
}
