package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForTerminal(t *testing.T, m *Manager, id string) Snapshot {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.Get(id)
		require.NoError(t, err)
		snap := job.Snapshot()
		if snap.Status.Terminal() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return Snapshot{}
}

func TestManagerRunsJobToCompletion(t *testing.T) {
	entrants := fullLeague()
	matchups := decidedDivisions(entrants)
	m := NewManager(nil)

	job, err := m.Start(context.Background(), matchups, entrants,
		Options{Trials: 100, Seed: seedPtr(1)})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	snap := waitForTerminal(t, m, job.ID)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 100, snap.Result.Trials)
}

func TestManagerRejectsConcurrentRuns(t *testing.T) {
	entrants := fullLeague()
	matchups := decidedDivisions(entrants)
	m := NewManager(nil)

	// Large enough to still be running when the second start arrives.
	first, err := m.Start(context.Background(), matchups, entrants,
		Options{Trials: 2_000_000, Seed: seedPtr(1)})
	require.NoError(t, err)

	_, err = m.Start(context.Background(), matchups, entrants,
		Options{Trials: 100, Seed: seedPtr(1)})
	assert.ErrorIs(t, err, ErrRunActive)

	require.NoError(t, m.Cancel(first.ID))
	snap := waitForTerminal(t, m, first.ID)
	assert.Equal(t, StatusCancelled, snap.Status)
	// A cancelled run exposes how many trials finished, not a result.
	assert.Nil(t, snap.Result)

	// With the first run finished, a new one may start.
	second, err := m.Start(context.Background(), matchups, entrants,
		Options{Trials: 10, Seed: seedPtr(1)})
	require.NoError(t, err)
	waitForTerminal(t, m, second.ID)
}

func TestManagerGetUnknownJob(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, m.Cancel("nope"), ErrJobNotFound)
}

func TestManagerJobErrorSurfaces(t *testing.T) {
	m := NewManager(nil)
	// Zero trials makes the engine reject the run.
	job, err := m.Start(context.Background(), nil, fullLeague(), Options{Trials: 0})
	require.NoError(t, err)

	snap := waitForTerminal(t, m, job.ID)
	assert.Equal(t, StatusErrored, snap.Status)
	assert.NotEmpty(t, snap.Error)
	assert.Nil(t, snap.Result)
}

func TestManagerListNewestFirst(t *testing.T) {
	entrants := fullLeague()
	matchups := decidedDivisions(entrants)
	m := NewManager(nil)

	first, err := m.Start(context.Background(), matchups, entrants,
		Options{Trials: 10, Seed: seedPtr(1)})
	require.NoError(t, err)
	waitForTerminal(t, m, first.ID)

	second, err := m.Start(context.Background(), matchups, entrants,
		Options{Trials: 10, Seed: seedPtr(1)})
	require.NoError(t, err)
	waitForTerminal(t, m, second.ID)

	snaps := m.List()
	require.Len(t, snaps, 2)
	assert.Equal(t, second.ID, snaps[0].JobID)
	assert.Equal(t, first.ID, snaps[1].JobID)
}

func TestManagerSweepDropsFinishedJobs(t *testing.T) {
	entrants := fullLeague()
	matchups := decidedDivisions(entrants)
	m := NewManager(nil)

	job, err := m.Start(context.Background(), matchups, entrants,
		Options{Trials: 10, Seed: seedPtr(1)})
	require.NoError(t, err)
	waitForTerminal(t, m, job.ID)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, m.Sweep(time.Millisecond))
	_, err = m.Get(job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	// Active jobs are never swept.
	long, err := m.Start(context.Background(), matchups, entrants,
		Options{Trials: 2_000_000, Seed: seedPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Sweep(0))
	require.NoError(t, m.Cancel(long.ID))
	waitForTerminal(t, m, long.ID)
}
