package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEmbedding(t *testing.T) {
	t.Run("deterministic for the same text", func(t *testing.T) {
		assert.Equal(t, GenerateEmbedding("Pad Thai"), GenerateEmbedding("Pad Thai"))
	})

	t.Run("differs for different text", func(t *testing.T) {
		assert.NotEqual(t, GenerateEmbedding("Pad Thai"), GenerateEmbedding("Margherita Pizza"))
	})
}
