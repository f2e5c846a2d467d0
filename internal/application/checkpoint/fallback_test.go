package checkpoint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackContent(t *testing.T) {
	t.Run("long text is truncated", func(t *testing.T) {
		text := strings.Repeat("a", 500)
		got := FallbackContent(text, 400)

		assert.Equal(t, strings.Repeat("a", 400)+truncationMarker, got)
	})

	t.Run("short text kept whole", func(t *testing.T) {
		got := FallbackContent("short", 400)
		assert.Equal(t, "short"+truncationMarker, got)
	})

	t.Run("zero limit uses default", func(t *testing.T) {
		text := strings.Repeat("b", defaultFallbackRunes+100)
		got := FallbackContent(text, 0)

		assert.Equal(t, strings.Repeat("b", defaultFallbackRunes)+truncationMarker, got)
	})

	t.Run("truncates on rune boundary", func(t *testing.T) {
		text := strings.Repeat("汉", 10)
		got := FallbackContent(text, 4)

		assert.Equal(t, strings.Repeat("汉", 4)+truncationMarker, got)
	})

	t.Run("deterministic", func(t *testing.T) {
		text := strings.Repeat("c", 1000)
		assert.Equal(t, FallbackContent(text, 400), FallbackContent(text, 400))
	})
}
