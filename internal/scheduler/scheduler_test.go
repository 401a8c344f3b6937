package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/PrassV/Propo-Staging-sub004/internal/config"
	"github.com/PrassV/Propo-Staging-sub004/internal/database"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pagedSource struct {
	properties []models.Property
	calls      []database.PropertyFilters
	err        error
}

func (s *pagedSource) ListProperties(_ context.Context, filters database.PropertyFilters) ([]models.Property, error) {
	s.calls = append(s.calls, filters)
	if s.err != nil {
		return nil, s.err
	}
	if filters.Offset >= len(s.properties) {
		return []models.Property{}, nil
	}
	end := filters.Offset + filters.Limit
	if end > len(s.properties) {
		end = len(s.properties)
	}
	return s.properties[filters.Offset:end], nil
}

type recordingIndexer struct {
	batches [][]models.Property
	err     error
}

func (i *recordingIndexer) IndexProperties(properties []models.Property) error {
	i.batches = append(i.batches, properties)
	return i.err
}

func sourceWith(n int) *pagedSource {
	s := &pagedSource{}
	for i := 0; i < n; i++ {
		s.properties = append(s.properties, models.Property{ID: fmt.Sprintf("p%d", i)})
	}
	return s
}

func TestReindex_PagesThroughAllProperties(t *testing.T) {
	source := sourceWith(database.DefaultListLimit*2 + 1)
	index := &recordingIndexer{}

	total, err := Reindex(context.Background(), source, index, nil)
	require.NoError(t, err)

	assert.Equal(t, database.DefaultListLimit*2+1, total)
	require.Len(t, index.batches, 3)
	assert.Len(t, index.batches[2], 1)
	assert.Equal(t, 0, source.calls[0].Offset)
	assert.Equal(t, database.DefaultListLimit, source.calls[1].Offset)
	assert.Equal(t, database.DefaultListLimit*2, source.calls[2].Offset)
}

func TestReindex_ExactPageBoundary(t *testing.T) {
	source := sourceWith(database.DefaultListLimit)
	index := &recordingIndexer{}

	total, err := Reindex(context.Background(), source, index, nil)
	require.NoError(t, err)

	assert.Equal(t, database.DefaultListLimit, total)
	// the trailing empty page is still sent
	require.Len(t, index.batches, 2)
	assert.Empty(t, index.batches[1])
}

func TestReindex_Errors(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		source := &pagedSource{err: errors.New("connection refused")}
		_, err := Reindex(context.Background(), source, &recordingIndexer{}, nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrIndex)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("index failure", func(t *testing.T) {
		total, err := Reindex(context.Background(), sourceWith(3), &recordingIndexer{err: errors.New("meilisearch down")}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIndex)
		assert.Equal(t, 0, total)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		source := sourceWith(3)
		_, err := Reindex(ctx, source, &recordingIndexer{}, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, source.calls)
	})
}

func TestParseDailyRunTime(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewScheduler(config.SchedulerConfig{}, sourceWith(0), &recordingIndexer{}, zap.New(core).Sugar())
	logs.TakeAll()

	tests := []struct {
		in   string
		want string
	}{
		{"02:00", "0 2 * * *"},
		{"23:45", "45 23 * * *"},
		{"7:05", "5 7 * * *"},
		{"", "0 3 * * *"},
		{"25:00", "0 3 * * *"},
		{"12:60", "0 3 * * *"},
		{"noon", "0 3 * * *"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, s.parseDailyRunTime(tt.in))
		})
	}
	assert.Equal(t, 4, logs.Len())
}

func TestScheduler_StartDisabled(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{ReindexTime: "01:30"}, sourceWith(0), &recordingIndexer{}, nil)

	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
	assert.False(t, s.Status().Enabled)
	s.Stop()
}

func TestScheduler_StartEnabled(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{ReindexEnabled: true, ReindexTime: "01:30"}, sourceWith(0), &recordingIndexer{}, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 1)
	status := s.Status()
	assert.True(t, status.Enabled)
	assert.Equal(t, "30 1 * * *", status.CronSpec)
}

func TestScheduler_RunNowRecordsStatus(t *testing.T) {
	index := &recordingIndexer{}
	s := NewScheduler(config.SchedulerConfig{}, sourceWith(5), index, nil)

	indexed, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, indexed)

	status := s.Status()
	require.NotNil(t, status.LastRunAt)
	assert.Equal(t, 5, status.LastIndexed)
	assert.Empty(t, status.LastError)
	assert.False(t, status.Running)

	index.err = errors.New("meilisearch down")
	_, err = s.RunNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, s.Status().LastError, "meilisearch down")
}

func TestScheduler_RunNowRefusesOverlap(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{}, sourceWith(1), &recordingIndexer{}, nil)
	s.inFlight = true

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrReindexRunning)
}
