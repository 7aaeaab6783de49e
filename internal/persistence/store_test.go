package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPersistSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	summary := &types.RunSummary{
		Type:      "debate-run",
		Question:  "Should renewable energy be prioritized?",
		AnswerID:  "answer-1",
		Quality:   0.62,
		Timestamp: time.Now().UTC(),
	}

	id, err := store.PersistSummary(ctx, "local-user", "run-1", summary)
	require.NoError(t, err)
	assert.Equal(t, "summary-run-1", id)

	summaries, err := store.RecentSummaries(ctx, "local-user", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, summary.Question, summaries[0].Question)
	assert.InDelta(t, 0.62, summaries[0].Quality, 1e-9)
}

func TestPersistSummaryUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &types.RunSummary{Type: "debate-run", Question: "q", AnswerID: "a1", Quality: 0.5, Timestamp: time.Now().UTC()}
	_, err := store.PersistSummary(ctx, "local-user", "run-1", first)
	require.NoError(t, err)

	second := &types.RunSummary{Type: "debate-run", Question: "q", AnswerID: "a2", Quality: 0.7, Timestamp: time.Now().UTC()}
	_, err = store.PersistSummary(ctx, "local-user", "run-1", second)
	require.NoError(t, err)

	summaries, err := store.RecentSummaries(ctx, "local-user", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1, "re-persisting a run updates, never duplicates")
	assert.Equal(t, "a2", summaries[0].AnswerID)
}

func TestPersistSummaryValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PersistSummary(ctx, "local-user", "run-1", nil)
	assert.Error(t, err)

	_, err = store.PersistSummary(ctx, "local-user", "", &types.RunSummary{})
	assert.Error(t, err)
}

func TestRecentSummariesScopedByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, user := range []string{"alice", "bob", "alice"} {
		summary := &types.RunSummary{Type: "debate-run", Question: "q", AnswerID: "a", Quality: 0.5, Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second)}
		_, err := store.PersistSummary(ctx, user, "run-"+string(rune('0'+i)), summary)
		require.NoError(t, err)
	}

	summaries, err := store.RecentSummaries(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}
