package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veetaha/teloxide/updates"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_EmptyPathRejected(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		body := fmt.Sprintf(`{"update_id":%d,"message":{"text":"m%d"}}`, i, i)
		upd, err := updates.Parse([]byte(body))
		require.NoError(t, err)
		require.NoError(t, j.Record(ctx, upd))
	}

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, int64(3), entries[0].UpdateID)
	assert.Equal(t, int64(1), entries[2].UpdateID)
	assert.Equal(t, "message", entries[0].Kind)
	assert.NotEmpty(t, entries[0].BodyHash)
	assert.False(t, entries[0].ReceivedAt.IsZero())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(entries[0].Body, &decoded))
	assert.Equal(t, float64(3), decoded["update_id"])
}

func TestRecent_Limit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		upd, err := updates.Parse([]byte(fmt.Sprintf(`{"update_id":%d}`, i)))
		require.NoError(t, err)
		require.NoError(t, j.Record(ctx, upd))
	}

	entries, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecent_EmptyJournal(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
