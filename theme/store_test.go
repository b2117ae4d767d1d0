package theme

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoltStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "folio.db")

	db, err := OpenDatabase(path)
	require.NoError(t, err)

	store := db.Store(DefaultStorageKey)
	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Save(ctx, Dark))
	require.NoError(t, db.Store("other").Save(ctx, Light))
	require.NoError(t, db.Close())

	db, err = OpenDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	store = db.Store(DefaultStorageKey)
	theme, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Dark, theme)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	theme, ok, err = db.Store("other").Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Light, theme)
}

func TestParse(t *testing.T) {
	for input, expected := range map[string]Theme{
		"dark":     Dark,
		` "light"`: Light,
		"DARK":     Dark,
	} {
		theme, err := Parse(input)
		require.NoError(t, err)
		require.Equal(t, expected, theme)
	}

	_, err := Parse("no-preference")
	require.Error(t, err)
}
