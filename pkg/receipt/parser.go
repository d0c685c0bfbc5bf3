package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)
	priceRe     = regexp.MustCompile(`\$?(\d+\.?\d*)`)
)

// extractJsonBlock returns the first {...} block in the model's output, which
// regularly wraps its JSON in prose or markdown fences.
func extractJsonBlock(text string) (string, bool) {
	block := jsonBlockRe.FindString(text)
	return block, block != ""
}

// ExtractItemsFromText is the fallback parser used when the model's JSON
// cannot be parsed: it scans each line for a trailing price pattern and takes
// the rest of the line as the description. Confidence is fixed low to mark
// these as heuristic matches.
func ExtractItemsFromText(text string) []ExtractedItem {
	var items []ExtractedItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		matches := priceRe.FindAllString(line, -1)
		if len(matches) == 0 {
			continue
		}
		lastPrice := matches[len(matches)-1]
		amount, err := strconv.ParseFloat(strings.TrimPrefix(lastPrice, "$"), 64)
		if err != nil || amount <= 0 {
			continue
		}
		description := strings.TrimSpace(priceRe.ReplaceAllString(line, ""))
		if description == "" {
			continue
		}
		items = append(items, ExtractedItem{
			Description: description,
			Amount:      amount,
			Confidence:  0.6,
		})
	}
	return items
}

// DetectMimeType guesses an image MIME type from the base64 payload prefix.
// Used when the caller did not provide one; jpeg is the fallback.
func DetectMimeType(base64Image string) string {
	switch {
	case strings.HasPrefix(base64Image, "/9j/"):
		return "image/jpeg"
	case strings.HasPrefix(base64Image, "iVBORw0KGgo"):
		return "image/png"
	case strings.HasPrefix(base64Image, "R0lGOD"):
		return "image/gif"
	case strings.HasPrefix(base64Image, "UklGR"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
