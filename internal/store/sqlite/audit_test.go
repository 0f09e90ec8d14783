package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dishcraft/dishcraft/internal/domain"
	"github.com/dishcraft/dishcraft/internal/store/sqlite"
)

func openTestStore(t *testing.T) *sqlite.AuditStore {
	t.Helper()

	store, err := sqlite.Open(context.Background(), sqlite.Config{
		Path: filepath.Join(t.TempDir(), "audit.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestAuditStore(t *testing.T) {
	t.Run("should round-trip an audit row", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		occurred := time.Now().UTC().Truncate(time.Second)
		err := store.Insert(ctx, &domain.ModificationError{
			RecipeSnippet: "Chop the onions finely",
			Code:          422,
			Description:   "dietary preferences not found",
			Model:         "gpt-4o-mini",
			OccurredAt:    occurred,
		})
		require.NoError(t, err)

		rows, err := store.RecentFailures(ctx, 10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "Chop the onions finely", rows[0].RecipeSnippet)
		require.Equal(t, 422, rows[0].Code)
		require.Equal(t, "dietary preferences not found", rows[0].Description)
		require.Equal(t, "gpt-4o-mini", rows[0].Model)
		require.True(t, occurred.Equal(rows[0].OccurredAt.UTC()))
	})

	t.Run("should return newest rows first", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		base := time.Now().UTC().Truncate(time.Second)
		for i, code := range []int{400, 429, 503} {
			require.NoError(t, store.Insert(ctx, &domain.ModificationError{
				RecipeSnippet: "snippet",
				Code:          code,
				Description:   "failure",
				Model:         "gpt-4o-mini",
				OccurredAt:    base.Add(time.Duration(i) * time.Minute),
			}))
		}

		rows, err := store.RecentFailures(ctx, 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, 503, rows[0].Code)
		require.Equal(t, 429, rows[1].Code)
	})

	t.Run("should reject a nil record", func(t *testing.T) {
		store := openTestStore(t)
		require.Error(t, store.Insert(context.Background(), nil))
	})

	t.Run("should stamp rows missing a timestamp", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		require.NoError(t, store.Insert(ctx, &domain.ModificationError{
			RecipeSnippet: "snippet",
			Code:          500,
			Description:   "failure",
		}))

		rows, err := store.RecentFailures(ctx, 1)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.False(t, rows[0].OccurredAt.IsZero())
	})
}
