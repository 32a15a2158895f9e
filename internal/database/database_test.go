package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/internal/model"
)

func TestIsSQLiteDSN(t *testing.T) {
	assert.True(t, IsSQLiteDSN("file:test?mode=memory&cache=shared"))
	assert.True(t, IsSQLiteDSN("./data/movies.db"))
	assert.True(t, IsSQLiteDSN(":memory:"))
	assert.False(t, IsSQLiteDSN("postgres://u:p@localhost:5432/movies?sslmode=disable"))
	assert.False(t, IsSQLiteDSN("host=localhost user=u dbname=movies"))
}

func TestOpenMigrateClose(t *testing.T) {
	db, err := Open("file:"+t.Name()+"?mode=memory&cache=shared", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range model.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T table missing", m)
	}
	assert.True(t, db.Migrator().HasIndex(&model.WatchlistEntry{}, "idx_watchlist_user_movie"))
	assert.True(t, db.Migrator().HasIndex(&model.Review{}, "idx_reviews_user_movie"))

	require.NoError(t, Close(db))
}
