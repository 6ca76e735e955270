package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	cutoff time.Time
	calls  int
	n      int64
	err    error
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.n, f.err
}

func TestRunOnce_UsesRetentionDays(t *testing.T) {
	p := &fakePruner{n: 12}
	w := NewRetentionWorker(p, 30)
	w.now = func() time.Time { return time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC) }

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), p.cutoff)
}

func TestRunOnce_Disabled(t *testing.T) {
	p := &fakePruner{}
	w := NewRetentionWorker(p, 0)

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, p.calls)

	require.NoError(t, w.Start())
	assert.Empty(t, w.cron.Entries())
	w.Stop()
}

func TestRunOnce_WrapsStoreError(t *testing.T) {
	boom := errors.New("db down")
	w := NewRetentionWorker(&fakePruner{err: boom}, 7)

	_, err := w.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStart_SchedulesJob(t *testing.T) {
	w := NewRetentionWorker(&fakePruner{}, 180)
	require.NoError(t, w.Start())
	defer w.Stop()

	assert.Len(t, w.cron.Entries(), 1)
}
