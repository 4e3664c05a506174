package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/responsio/pkg/adapters/memory"
	"github.com/aretw0/responsio/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunMediumContract(t, store)
}

func TestMemoryStore_Fail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, "ns", []byte(`{}`)))

	quota := errors.New("quota exceeded")
	store.Fail(quota)

	assert.ErrorIs(t, store.Probe(ctx), quota)
	_, err := store.Load(ctx, "ns")
	assert.ErrorIs(t, err, quota)

	store.Fail(nil)
	doc, err := store.Load(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(doc))
}

func TestMemoryStore_CopyOnRead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, "ns", []byte(`{"a":1}`)))

	doc, err := store.Load(ctx, "ns")
	require.NoError(t, err)
	doc[0] = 'X'

	again, err := store.Load(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns"}, list)
}
