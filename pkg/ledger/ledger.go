package ledger

import (
	"github.com/google/uuid"
)

// Palette is the fixed ordered set of colors assigned to people round-robin.
// Colors are picked by current headcount and are not reclaimed on removal, so
// after removals a color already in use may be handed out again.
var Palette = []string{
	"blue",
	"green",
	"yellow",
	"red",
	"purple",
	"pink",
	"indigo",
	"orange",
}

// DefaultTipPercentage is applied when a stored envelope carries no tip value.
const DefaultTipPercentage float64 = 15

type Person struct {
	Id    string
	Name  string
	Color string
}

// LineItem is a single billable charge, optionally split across people.
// AssignedTo keeps assignment insertion order: the first assignee receives the
// rounding remainder when the amount does not divide evenly.
type LineItem struct {
	Id          string
	Description string
	Amount      Cents
	AssignedTo  []string
}

// ChargeConfig describes either the tip or the tax setting. Exactly one of
// Percentage/Amount is active according to IsAmountMode; the inactive value is
// retained so a mode toggle can flip interpretation without losing input.
type ChargeConfig struct {
	Percentage   float64
	Amount       Cents
	IsAmountMode bool
}

// Snapshot is the full bill-splitting state for one ledger. It is the unit
// that is persisted and restored wholesale.
type Snapshot struct {
	People    []Person
	LineItems []LineItem
	Tip       ChargeConfig
	Tax       ChargeConfig
	IsLoaded  bool
}

// DefaultSnapshot returns the state a ledger starts with before anything has
// been loaded from storage.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		People:    []Person{},
		LineItems: []LineItem{},
		Tip:       ChargeConfig{Percentage: DefaultTipPercentage},
		Tax:       ChargeConfig{},
	}
}

// NextColor returns the palette color for the next person to be added, given
// the current number of people.
func NextColor(peopleCount int) string {
	return Palette[peopleCount%len(Palette)]
}

// NewPerson creates a person with a fresh id and the palette color matching
// the given headcount.
func NewPerson(name string, peopleCount int) Person {
	return Person{
		Id:    uuid.NewString(),
		Name:  name,
		Color: NextColor(peopleCount),
	}
}

// NewLineItem creates an unassigned line item with a fresh id.
func NewLineItem(description string, amount Cents) LineItem {
	return LineItem{
		Id:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		AssignedTo:  []string{},
	}
}

// PersonById returns the person with the given id, if present.
func (s Snapshot) PersonById(id string) (Person, bool) {
	for _, p := range s.People {
		if p.Id == id {
			return p, true
		}
	}
	return Person{}, false
}

// ItemById returns the line item with the given id, if present.
func (s Snapshot) ItemById(id string) (LineItem, bool) {
	for _, item := range s.LineItems {
		if item.Id == id {
			return item, true
		}
	}
	return LineItem{}, false
}
