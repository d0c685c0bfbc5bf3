package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJsonBlock(t *testing.T) {
	t.Run("should find JSON wrapped in markdown fences", func(t *testing.T) {
		// given
		text := "Here is the result:\n```json\n{\"rawText\": \"x\", \"items\": []}\n```\nDone."

		// when
		block, found := extractJsonBlock(text)

		// then
		require.True(t, found)
		assert.Equal(t, `{"rawText": "x", "items": []}`, block)
	})

	t.Run("should span nested braces", func(t *testing.T) {
		text := `{"items": [{"description": "Burger"}]}`

		block, found := extractJsonBlock(text)

		require.True(t, found)
		assert.Equal(t, text, block)
	})

	t.Run("should report no block in plain prose", func(t *testing.T) {
		_, found := extractJsonBlock("no structured output here")

		assert.False(t, found)
	})
}

func TestExtractItemsFromText(t *testing.T) {
	t.Run("should take the last price on each line as the amount", func(t *testing.T) {
		// given
		text := "2 Burger $12.99\nFries 4.50\n\nThanks for visiting!"

		// when
		items := ExtractItemsFromText(text)

		// then
		require.Len(t, items, 2)
		assert.Equal(t, "Burger", items[0].Description)
		assert.Equal(t, 12.99, items[0].Amount)
		assert.Equal(t, 0.6, items[0].Confidence)
		assert.Equal(t, "Fries", items[1].Description)
		assert.Equal(t, 4.50, items[1].Amount)
	})

	t.Run("should skip lines without a usable price or description", func(t *testing.T) {
		// given a price-only line, a zero price and a plain text line
		text := "$5.00\nWater 0\njust words"

		// when
		items := ExtractItemsFromText(text)

		// then
		assert.Empty(t, items)
	})
}

func TestDetectMimeType(t *testing.T) {
	t.Run("should recognize common image signatures", func(t *testing.T) {
		assert.Equal(t, "image/jpeg", DetectMimeType("/9j/4AAQSkZJRg=="))
		assert.Equal(t, "image/png", DetectMimeType("iVBORw0KGgoAAAANSU"))
		assert.Equal(t, "image/gif", DetectMimeType("R0lGODlhAQABAIAAAP"))
		assert.Equal(t, "image/webp", DetectMimeType("UklGRh4AAABXRUJQ"))
	})

	t.Run("should fall back to jpeg for unknown payloads", func(t *testing.T) {
		assert.Equal(t, "image/jpeg", DetectMimeType("QUJDREVG"))
	})
}
