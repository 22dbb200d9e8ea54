package printing

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode128Generator_Generate(t *testing.T) {
	g := NewCode128Generator()

	t.Run("encodes text as Code 128", func(t *testing.T) {
		img, err := g.Generate("ABC12345")
		require.NoError(t, err)

		assert.Equal(t, "ABC12345", img.Content)
		assert.Equal(t, "Code 128", img.Symbology)
		assert.Equal(t, DefaultBarHeight, img.Height)
		assert.Zero(t, img.Width%DefaultModuleWidth)

		decoded, err := png.Decode(bytes.NewReader(img.PNG))
		require.NoError(t, err)
		assert.Equal(t, img.Width, decoded.Bounds().Dx())
		assert.Equal(t, img.Height, decoded.Bounds().Dy())
	})

	t.Run("is deterministic", func(t *testing.T) {
		a, err := g.Generate("XYZ-987")
		require.NoError(t, err)
		b, err := g.Generate("XYZ-987")
		require.NoError(t, err)
		assert.Equal(t, a.PNG, b.PNG)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		img, err := g.Generate("")
		assert.Nil(t, img)
		require.Error(t, err)
		assert.Equal(t, ErrCodeBarcodeFailed, ErrorCode(err))
	})

	t.Run("encodes long payloads", func(t *testing.T) {
		text := strings.Repeat("1", 200)
		img, err := g.Generate(text)
		require.NoError(t, err)
		assert.Equal(t, text, img.Content)
		assert.Equal(t, DefaultBarHeight, img.Height)
	})

	t.Run("bars are 15mm tall relative to the module width", func(t *testing.T) {
		img, err := g.Generate("ABC12345")
		require.NoError(t, err)

		// at the printed width of 180pt the bars stay about 62pt tall
		printedHeight := 180 * float64(img.Height) / float64(img.Width)
		assert.InDelta(t, 62.4, printedHeight, 0.5)
		assert.InDelta(t, DefaultBarHeightMM*pointsPerMM, float64(img.Height)/DefaultModuleWidth, 0.5)
	})

	t.Run("falls back to defaults for zero sizes", func(t *testing.T) {
		img, err := (&Code128Generator{}).Generate("1")
		require.NoError(t, err)
		assert.Equal(t, DefaultBarHeight, img.Height)
	})

	t.Run("derives the bar height from a custom module width", func(t *testing.T) {
		img, err := (&Code128Generator{ModuleWidth: 2}).Generate("1")
		require.NoError(t, err)
		assert.Equal(t, 85, img.Height)
	})
}
