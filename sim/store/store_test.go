package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jones-Shaun/platoon-sumo/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	// GIVEN a run with two recorded ticks
	s := openTestStore(t)
	sink, err := s.BeginRun("heavy_traffic_size5_count1")
	require.NoError(t, err)

	rows := []sim.MetricsRow{
		{Step: 1, VehicleCount: 5, MeanGap: 40.0, NorthboundFlow: 4, SouthboundFlow: 1, NorthboundSpeed: 20.1, SouthboundSpeed: 18.2, MeanSpeed: 19.5},
		{Step: 2, VehicleCount: 6, MeanGap: 38.5, NorthboundFlow: 5, SouthboundFlow: 1, NorthboundSpeed: 19.8, SouthboundSpeed: 18.0, MeanSpeed: 19.2},
	}
	for _, row := range rows {
		require.NoError(t, sink.Append(row))
	}
	require.NoError(t, sink.Close())

	// WHEN the run is read back
	got, err := s.Rows(sink.RunID)
	require.NoError(t, err)

	// THEN the rows come back in step order, unchanged
	assert.Equal(t, rows, got)
}

func TestStore_Runs_ListsRegisteredRuns(t *testing.T) {
	s := openTestStore(t)
	first, err := s.BeginRun("baseline")
	require.NoError(t, err)
	second, err := s.BeginRun("coordinated")
	require.NoError(t, err)

	runs, err := s.Runs()
	require.NoError(t, err)

	require.Len(t, runs, 2)
	ids := map[string]string{runs[0].RunID: runs[0].Scenario, runs[1].RunID: runs[1].Scenario}
	assert.Equal(t, "baseline", ids[first.RunID])
	assert.Equal(t, "coordinated", ids[second.RunID])
}

func TestStore_Rows_UnknownRun_Empty(t *testing.T) {
	s := openTestStore(t)

	rows, err := s.Rows("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_RunsAreIsolated(t *testing.T) {
	// GIVEN two runs writing interleaved rows
	s := openTestStore(t)
	a, err := s.BeginRun("a")
	require.NoError(t, err)
	b, err := s.BeginRun("b")
	require.NoError(t, err)

	require.NoError(t, a.Append(sim.MetricsRow{Step: 1, VehicleCount: 1}))
	require.NoError(t, b.Append(sim.MetricsRow{Step: 1, VehicleCount: 9}))
	require.NoError(t, a.Append(sim.MetricsRow{Step: 2, VehicleCount: 2}))

	// THEN each run reads back only its own rows
	rowsA, err := s.Rows(a.RunID)
	require.NoError(t, err)
	rowsB, err := s.Rows(b.RunID)
	require.NoError(t, err)

	assert.Len(t, rowsA, 2)
	assert.Len(t, rowsB, 1)
	assert.Equal(t, 9, rowsB[0].VehicleCount)
}
