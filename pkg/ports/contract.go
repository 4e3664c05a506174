package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/responsio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunMediumContract runs a suite of tests to verify that a Medium implementation
// adheres to the defined interface contract.
func RunMediumContract(t *testing.T, medium Medium) {
	ctx := context.Background()
	namespace := "contract.test." + time.Now().Format("20060102150405")

	t.Run("Probe", func(t *testing.T) {
		require.NoError(t, medium.Probe(ctx), "Probe should succeed on a healthy medium")

		// The probe must not leave anything behind under a real namespace.
		_, err := medium.Load(ctx, namespace)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Load missing", func(t *testing.T) {
		_, err := medium.Load(ctx, namespace+".missing")
		assert.ErrorIs(t, err, domain.ErrNotFound, "Load of a missing namespace should return ErrNotFound")
	})

	t.Run("Save and Load", func(t *testing.T) {
		doc := []byte(`{"history":["<div>a</div>"]}`)
		require.NoError(t, medium.Save(ctx, namespace, doc))

		loaded, err := medium.Load(ctx, namespace)
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(loaded))
	})

	t.Run("Save overwrites", func(t *testing.T) {
		doc := []byte(`{"history":[]}`)
		require.NoError(t, medium.Save(ctx, namespace, doc))

		loaded, err := medium.Load(ctx, namespace)
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(loaded))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, medium.Delete(ctx, namespace))

		_, err := medium.Load(ctx, namespace)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		// Deleting twice is not an error.
		assert.NoError(t, medium.Delete(ctx, namespace))
	})
}
