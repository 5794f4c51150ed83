package batchvec

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/batchvec/memory"
)

func TestLogger(t *testing.T) {
	t.Run("With", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(slog.NewJSONHandler(&buf, nil))

		l.WithBatch("b-1").WithSegment("seg-001.bin").Info("segment written")

		out := buf.String()
		assert.Contains(t, out, `"batch":"b-1"`)
		assert.Contains(t, out, `"segment":"seg-001.bin"`)
		assert.Contains(t, out, "segment written")
	})

	t.Run("AllocatorWarnings", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(slog.NewJSONHandler(&buf, nil))

		alloc := memory.NewAllocator(
			memory.WithLimit(16),
			memory.WithLogger(l.Logger),
		)
		_, err := alloc.Allocate(64)
		require.Error(t, err)
		assert.Contains(t, buf.String(), "allocation failed")
	})

	t.Run("Noop", func(t *testing.T) {
		// Must not panic; output is discarded.
		NoopLogger().Info("dropped")
	})
}
