package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/splitledger/splitledger/internal/event_bus"
	"github.com/splitledger/splitledger/pkg/ledger"
)

const imagePrompt = `Analyze this receipt image and extract all line items with their prices. Return the data in this exact JSON format:
{
  "rawText": "the complete extracted text from the receipt",
  "items": [
    {
      "description": "item name",
      "amount": 12.99,
      "confidence": 0.95
    }
  ]
}
When readable, also include "storeName", "date", "time", "taxPaid" and "tipPaid" fields.`

const textPrompt = `Analyze this receipt text and extract all line items with their prices. Look for items, descriptions, and amounts. Return the data in this exact JSON format:
{
  "rawText": "the original text that was provided",
  "items": [
    {
      "description": "item name or description",
      "amount": 12.99,
      "confidence": 0.95
    }
  ]
}

Instructions:
- Extract individual line items with their prices
- Ignore subtotals, taxes, and totals unless they are specific items
- If a line doesn't have a clear price, skip it
- Set confidence based on how clear the item and price are
- Return an empty items array if no clear line items are found

Receipt text to analyze:
`

type Service interface {
	// ScanImage sends a base64-encoded receipt image to the model and
	// returns the extracted line items. An empty mimeType is detected from
	// the payload.
	ScanImage(ctx context.Context, base64Image string, mimeType string) (ScanResult, error)
	// ScanText extracts line items from pasted receipt text, falling back
	// to heuristic line parsing when the model's output is unusable.
	ScanText(ctx context.Context, text string) (ScanResult, error)
}

type ServiceImpl struct {
	client Client
	bus    *event_bus.EventBus
}

func NewService(client Client, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{client: client, bus: bus}
}

// parsedResult mirrors the JSON shape the prompts request from the model.
// Amounts arrive as floats; candidates with missing descriptions or
// non-positive amounts are filtered before they reach the ledger.
type parsedResult struct {
	RawText   string `json:"rawText"`
	Items     []struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Confidence  float64 `json:"confidence"`
	} `json:"items"`
	StoreName string  `json:"storeName"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	TaxPaid   float64 `json:"taxPaid"`
	TipPaid   float64 `json:"tipPaid"`
}

func (s *ServiceImpl) ScanImage(ctx context.Context, base64Image string, mimeType string) (ScanResult, error) {
	if base64Image == "" {
		return ScanResult{}, fmt.Errorf("no image provided")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = DetectMimeType(base64Image)
		log.Debugf("Detected MIME type: %s", mimeType)
	}

	log.Debugf("Sending receipt image to model, base64 length: %d", len(base64Image))
	text, err := s.client.GenerateFromImage(ctx, imagePrompt, base64Image, mimeType)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to process image: %w", err)
	}

	// Image scans have no usable source text, so a JSON failure degrades to
	// raw model output with no candidates.
	result, ok := parseModelOutput(text)
	if !ok {
		result = ScanResult{RawText: text}
	}
	s.publishScanned(ctx, "image", len(result.Items))
	return result, nil
}

func (s *ServiceImpl) ScanText(ctx context.Context, text string) (ScanResult, error) {
	if strings.TrimSpace(text) == "" {
		return ScanResult{}, fmt.Errorf("no text provided")
	}

	log.Debugf("Sending receipt text to model, length: %d", len(text))
	output, err := s.client.GenerateFromText(ctx, textPrompt+text)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to process text: %w", err)
	}

	result, ok := parseModelOutput(output)
	if !ok {
		log.Warn("Model output was not parseable JSON, falling back to line parsing")
		result = ScanResult{RawText: text, Items: ExtractItemsFromText(text)}
	}
	s.publishScanned(ctx, "text", len(result.Items))
	return result, nil
}

func parseModelOutput(output string) (ScanResult, bool) {
	block, found := extractJsonBlock(output)
	if !found {
		return ScanResult{}, false
	}
	var parsed parsedResult
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		log.Debugf("JSON parse error in model output: %v", err)
		return ScanResult{}, false
	}

	result := ScanResult{
		RawText:   parsed.RawText,
		Items:     make([]ExtractedItem, 0, len(parsed.Items)),
		StoreName: parsed.StoreName,
		Date:      parsed.Date,
		Time:      parsed.Time,
		TaxPaid:   parsed.TaxPaid,
		TipPaid:   parsed.TipPaid,
	}
	if result.RawText == "" {
		result.RawText = output
	}
	for _, item := range parsed.Items {
		if strings.TrimSpace(item.Description) == "" || item.Amount <= 0 {
			continue
		}
		result.Items = append(result.Items, ExtractedItem{
			Description: item.Description,
			Amount:      item.Amount,
			Confidence:  item.Confidence,
		})
	}
	return result, true
}

func (s *ServiceImpl) publishScanned(ctx context.Context, source string, itemCount int) {
	ledgerId, err := ledger.CurrentId(ctx)
	if err != nil {
		ledgerId = ""
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.ReceiptScannedEvent, event_bus.ReceiptScanned{
		LedgerId:  ledgerId,
		Source:    source,
		ItemCount: itemCount,
	})); err != nil {
		log.Debugf("receipt scan event handlers failed: %v", err)
	}
}
