package runlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndListRuns(t *testing.T) {
	db := newTestDB(t)

	started := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	id1, err := db.RecordSetup("polynomial", 0, 500, 5, false, 100, started)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	id2, err := db.RecordSetup("ellipse", 0, 400, 8.2, true, 48.8, started.Add(time.Minute))
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, id2, runs[0].ID)
	assert.Equal(t, "ellipse", runs[0].Mode)
	assert.True(t, runs[0].Measured)
	assert.InDelta(t, 8.2, runs[0].BaseSpeed, 1e-9)
	assert.Nil(t, runs[0].CompletedAt)

	assert.Equal(t, id1, runs[1].ID)
	assert.Equal(t, "polynomial", runs[1].Mode)
	assert.False(t, runs[1].Measured)
	assert.InDelta(t, 100.0, runs[1].TotalSeconds, 1e-9)
}

func TestListRunsLimit(t *testing.T) {
	db := newTestDB(t)

	started := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := db.RecordSetup("polynomial", 0, 500, 5, false, 100, started.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	runs, err := db.ListRuns(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	// Non-positive limit falls back to the default.
	runs, err = db.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestMarkCompleted(t *testing.T) {
	db := newTestDB(t)

	started := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	id, err := db.RecordSetup("polynomial", 0, 500, 5, false, 100, started)
	require.NoError(t, err)

	completed := started.Add(100 * time.Second)
	require.NoError(t, db.MarkCompleted(id, completed))

	runs, err := db.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].CompletedAt)
	assert.True(t, runs[0].CompletedAt.Equal(completed))

	assert.Error(t, db.MarkCompleted("no-such-run", completed))
}

func TestListRunsEmpty(t *testing.T) {
	db := newTestDB(t)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
