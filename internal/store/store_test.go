package store

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/linkdle/assets"
	"github.com/robalobadob/linkdle/internal/cache"
	"github.com/robalobadob/linkdle/internal/game"
	"github.com/robalobadob/linkdle/internal/validation"
	"github.com/robalobadob/linkdle/internal/words"
)

type noopValidator struct{}

func (noopValidator) Validate(context.Context, validation.Input) validation.Outcome {
	return validation.Outcome{Reason: validation.ReasonNoRelationship, Code: validation.CodeNoRelationship}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(10, time.Hour)
	s := game.New(words.Puzzle{Start: "ocean", End: "book", MinSteps: 4}, noopValidator{})

	_, err := st.Get(ctx, s.ID())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Save(ctx, s))
	got, err := st.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestMemoryStore_IdleSessionsExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	st := NewMemoryStore(10, time.Hour, cache.WithClock(func() time.Time { return now }))
	puzzle := words.Puzzle{Start: "ocean", End: "book", MinSteps: 4}
	active := game.New(puzzle, noopValidator{})
	idle := game.New(puzzle, noopValidator{})
	require.NoError(t, st.Save(ctx, active))
	require.NoError(t, st.Save(ctx, idle))

	// Touching a session restarts its idle clock.
	now = now.Add(45 * time.Minute)
	_, err := st.Get(ctx, active.ID())
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	_, err = st.Get(ctx, active.ID())
	assert.NoError(t, err)
	_, err = st.Get(ctx, idle.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_BoundedByCapacity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	st := NewMemoryStore(5, time.Hour, cache.WithClock(func() time.Time { return now }))
	puzzle := words.Puzzle{Start: "ocean", End: "book", MinSteps: 4}

	var ids []string
	for i := 0; i < 6; i++ {
		s := game.New(puzzle, noopValidator{})
		require.NoError(t, st.Save(ctx, s))
		ids = append(ids, s.ID())
		now = now.Add(time.Second)
	}

	_, err := st.Get(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound, "oldest session evicted")
	for _, id := range ids[1:] {
		_, err := st.Get(ctx, id)
		assert.NoError(t, err)
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	files, err := fs.Glob(assets.Migrations(), "*.sql")
	require.NoError(t, err)
	for _, f := range files {
		b, err := fs.ReadFile(assets.Migrations(), f)
		require.NoError(t, err)
		_, err = db.Exec(string(b))
		require.NoError(t, err, f)
	}
	return db
}

func exerciseStorage(t *testing.T, st cache.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := st.Load(ctx, "vectors")
	assert.ErrorIs(t, err, cache.ErrNoSnapshot)

	require.NoError(t, st.Save(ctx, "vectors", []byte(`[1]`)))
	require.NoError(t, st.Save(ctx, "vectors", []byte(`[2]`)))
	got, err := st.Load(ctx, "vectors")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[2]`), got)

	// Round trip through a real cache.
	c := cache.New[bool]("words", 10, time.Hour, cache.WithStorage(st))
	c.Set("ocean", true)
	require.NoError(t, c.Save(ctx))
	restored := cache.New[bool]("words", 10, time.Hour, cache.WithStorage(st))
	require.NoError(t, restored.Load(ctx))
	v, ok := restored.Get("ocean")
	assert.True(t, ok)
	assert.True(t, v)
}

func TestSQLiteSnapshots(t *testing.T) {
	exerciseStorage(t, NewSQLiteSnapshots(openTestDB(t)))
}

func TestBadgerSnapshots(t *testing.T) {
	db, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	exerciseStorage(t, NewBadgerSnapshots(db))
}

func TestBadgerSnapshots_OnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	db, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, NewBadgerSnapshots(db).Save(context.Background(), "defs", []byte("x")))
	require.NoError(t, db.Close())

	db, err = OpenBadger(dir)
	require.NoError(t, err)
	defer db.Close()
	got, err := NewBadgerSnapshots(db).Load(context.Background(), "defs")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}
