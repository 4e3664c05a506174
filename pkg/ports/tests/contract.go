package tests

import (
	"testing"

	"github.com/aretw0/responsio/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// KeyValueStoreContractTest is a reusable test suite that verifies if a store complies with ports.KeyValueStore.
// newStore must return an empty store on every call.
func KeyValueStoreContractTest(t *testing.T, newStore func(t *testing.T) ports.KeyValueStore) {
	t.Helper()

	t.Run("Get_Default", func(t *testing.T) {
		store := newStore(t)
		assert.Equal(t, "fallback", store.Get("never.set", "fallback"))
		assert.Equal(t, []any{}, store.Get("history", []any{}))
		assert.Nil(t, store.Get("missing", nil))
	})

	t.Run("Set_Get_RoundTrip", func(t *testing.T) {
		store := newStore(t)
		values := map[string]any{
			"flag":          true,
			"count":         3,
			"ratio":         0.5,
			"name":          "responsio",
			"deep.path.key": "leaf",
			"list":          []any{"a", "b"},
			"tags":          []string{"a", "b"},
			"obj":           map[string]any{"x": "y"},
		}
		for name, v := range values {
			require.NoError(t, store.Set(name, v))
		}
		for name, v := range values {
			// The default must never leak through once a value is set.
			assert.Equal(t, v, store.Get(name, "default"), name)
		}
	})

	t.Run("Set_Keeps_Go_Types", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("count", 5))
		require.NoError(t, store.Set("list", []string{"a"}))
		require.NoError(t, store.Set("labels", map[string]string{"lang": "en"}))

		assert.Equal(t, 5, store.Get("count", 0))
		assert.Equal(t, []string{"a"}, store.Get("list", nil))
		assert.Equal(t, "en", store.Get("labels.lang", nil), "string-keyed maps are descended into")
	})

	t.Run("Set_Copies_Value", func(t *testing.T) {
		store := newStore(t)
		list := []string{"a"}
		require.NoError(t, store.Set("list", list))
		list[0] = "mutated"

		assert.Equal(t, []string{"a"}, store.Get("list", nil))
	})

	t.Run("Set_Through_Typed_Map", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("labels", map[string]string{"lang": "en"}))
		require.NoError(t, store.Set("labels.region", "eu"))

		assert.Equal(t, map[string]any{"lang": "en", "region": "eu"}, store.Get("labels", nil))
	})

	t.Run("Set_Rejects_Unserializable", func(t *testing.T) {
		store := newStore(t)
		assert.Error(t, store.Set("ch", make(chan int)))
		assert.Equal(t, "d", store.Get("ch", "d"))
	})

	t.Run("Set_Creates_Intermediates", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("a.b.c", "v"))

		assert.Equal(t, map[string]any{"c": "v"}, store.Get("a.b", nil))
		assert.Equal(t, map[string]any{"b": map[string]any{"c": "v"}}, store.Get("a", nil))
	})

	t.Run("Get_Through_NonMapping", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("list", []any{"x"}))
		require.NoError(t, store.Set("scalar", "s"))

		assert.Equal(t, "d", store.Get("list.0", "d"), "arrays are not descended into")
		assert.Equal(t, "d", store.Get("scalar.child", "d"))

		// Lookups never mutate the tree.
		assert.Equal(t, []any{"x"}, store.Get("list", nil))
		assert.Equal(t, "s", store.Get("scalar", nil))
	})

	t.Run("Get_Whole_Tree", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("k", "v"))
		assert.Equal(t, map[string]any{"k": "v"}, store.Get("", nil))
	})
}
