package ledger

// Action is the closed set of ledger mutations. Every case is handled
// exhaustively by the reducer; there is no dynamic payload.
type Action interface {
	isAction()
}

// LoadData replaces people, line items, and the tip percentage wholesale.
// Used when restoring a ledger from storage.
type LoadData struct {
	People        []Person
	LineItems     []LineItem
	TipPercentage float64
}

// AddPerson appends a person. Callers are responsible for id uniqueness;
// duplicates are not deduplicated here.
type AddPerson struct {
	Person Person
}

// RemovePerson removes a person and strips their id from every line item's
// assignment list. No-op when the id is absent.
type RemovePerson struct {
	PersonId string
}

type AddLineItem struct {
	Item LineItem
}

// RemoveLineItem removes a line item. No-op when the id is absent.
type RemoveLineItem struct {
	ItemId string
}

// ToggleAssignment adds the person to the item's assignment list if absent,
// otherwise removes them. No-op when the item does not exist.
type ToggleAssignment struct {
	ItemId   string
	PersonId string
}

// SetTipPercentage sets the tip percentage and forces percentage mode.
// Range validation is a caller concern.
type SetTipPercentage struct {
	Percentage float64
}

// SetTipAmount sets a flat tip and forces amount mode.
type SetTipAmount struct {
	Amount Cents
}

// SetTipMode flips the tip interpretation without changing stored values.
type SetTipMode struct {
	IsAmountMode bool
}

type SetTaxPercentage struct {
	Percentage float64
}

type SetTaxAmount struct {
	Amount Cents
}

type SetTaxMode struct {
	IsAmountMode bool
}

// ClearAllData resets to the default snapshot, preserving IsLoaded.
type ClearAllData struct{}

// SetDataLoaded marks the initial persistence read as complete. Saves are
// suppressed until this flag is set, so startup defaults never clobber a
// stored ledger.
type SetDataLoaded struct {
	IsLoaded bool
}

func (LoadData) isAction()         {}
func (AddPerson) isAction()        {}
func (RemovePerson) isAction()     {}
func (AddLineItem) isAction()      {}
func (RemoveLineItem) isAction()   {}
func (ToggleAssignment) isAction() {}
func (SetTipPercentage) isAction() {}
func (SetTipAmount) isAction()     {}
func (SetTipMode) isAction()       {}
func (SetTaxPercentage) isAction() {}
func (SetTaxAmount) isAction()     {}
func (SetTaxMode) isAction()       {}
func (ClearAllData) isAction()     {}
func (SetDataLoaded) isAction()    {}
