package event_bus

const (
	// LedgerChangedEvent fires after every successful ledger mutation.
	LedgerChangedEvent EventType = "ledger.changed"
	// ReceiptScannedEvent fires after a receipt scan produced candidates.
	ReceiptScannedEvent EventType = "receipt.scanned"
)

// LedgerChanged carries identifiers only, not the snapshot itself, so
// subscribers cannot mutate ledger state out of band.
type LedgerChanged struct {
	LedgerId   string
	ActionName string
}

type ReceiptScanned struct {
	LedgerId  string
	Source    string
	ItemCount int
}
