package receipt

// ExtractedItem is one line item candidate parsed out of a receipt, with the
// model's confidence in [0,1]. Confidence is display-only pass-through; the
// ledger does not interpret it.
type ExtractedItem struct {
	Description string
	Amount      float64
	Confidence  float64
}

// ScanResult is the outcome of one receipt scan. The metadata fields are
// optional pass-through: the model returns them when it can read them off the
// receipt, and the ledger never consumes them.
type ScanResult struct {
	RawText   string
	Items     []ExtractedItem
	StoreName string
	Date      string
	Time      string
	TaxPaid   float64
	TipPaid   float64
}
