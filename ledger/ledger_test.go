package ledger

import (
	"context"
	"testing"

	"github.com/poiesic/newswire/objectstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_LoadMissingReturnsEmpty(t *testing.T) {
	l, err := New(memory.NewStore())
	require.NoError(t, err)

	seen, err := l.Load(context.Background(), "arabic")
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestLedger_LoadCorruptReturnsEmpty(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Put(context.Background(), Key("arabic"), []byte("{not json")))

	l, err := New(store)
	require.NoError(t, err)

	seen, err := l.Load(context.Background(), "arabic")
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestLedger_SaveRoundTrip(t *testing.T) {
	store := memory.NewStore()
	l, err := New(store)
	require.NoError(t, err)
	ctx := context.Background()

	seen := map[string]bool{
		"https://example.com/a": true,
		"https://example.com/b": true,
	}
	require.NoError(t, l.Save(ctx, "english", seen))

	loaded, err := l.Load(ctx, "english")
	require.NoError(t, err)
	assert.Equal(t, seen, loaded)

	// Extending and saving again overwrites the full set.
	loaded["https://example.com/c"] = true
	require.NoError(t, l.Save(ctx, "english", loaded))

	again, err := l.Load(ctx, "english")
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestLedger_NamespacesAreIsolated(t *testing.T) {
	store := memory.NewStore()
	l, err := New(store)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Save(ctx, "arabic", map[string]bool{"https://example.com/ar": true}))

	seen, err := l.Load(ctx, "english")
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestLedger_RequiresStore(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)
}
