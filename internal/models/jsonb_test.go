package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStringArray(t *testing.T) {
	t.Run("empty array serializes as []", func(t *testing.T) {
		val, err := JSONStringArray{}.Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", val)
	})

	t.Run("round trip through Value and Scan", func(t *testing.T) {
		original := JSONStringArray{"2 eggs", "1 cup flour"}

		val, err := original.Value()
		require.NoError(t, err)

		var scanned JSONStringArray
		require.NoError(t, scanned.Scan(val))
		assert.Equal(t, original, scanned)
	})

	t.Run("scan handles nil", func(t *testing.T) {
		var a JSONStringArray
		require.NoError(t, a.Scan(nil))
		assert.Empty(t, a)
	})

	t.Run("scan handles string input", func(t *testing.T) {
		var a JSONStringArray
		require.NoError(t, a.Scan(`["salt","pepper"]`))
		assert.Equal(t, JSONStringArray{"salt", "pepper"}, a)
	})
}
