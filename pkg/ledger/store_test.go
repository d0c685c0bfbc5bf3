package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_People(t *testing.T) {
	t.Run("should append people in insertion order", func(t *testing.T) {
		// given
		store := NewStore()

		// when
		store.Dispatch(AddPerson{Person: Person{Id: "p1", Name: "Alice", Color: "blue"}})
		snapshot := store.Dispatch(AddPerson{Person: Person{Id: "p2", Name: "Bob", Color: "green"}})

		// then
		assert.Len(t, snapshot.People, 2)
		assert.Equal(t, "Alice", snapshot.People[0].Name)
		assert.Equal(t, "Bob", snapshot.People[1].Name)
	})

	t.Run("should strip the removed person from every assignment", func(t *testing.T) {
		// given
		store := NewStore()
		store.Dispatch(AddPerson{Person: Person{Id: "p1", Name: "Alice"}})
		store.Dispatch(AddPerson{Person: Person{Id: "p2", Name: "Bob"}})
		store.Dispatch(AddLineItem{Item: LineItem{Id: "i1", Amount: 1000, AssignedTo: []string{"p1", "p2"}}})

		// when
		snapshot := store.Dispatch(RemovePerson{PersonId: "p1"})

		// then
		assert.Len(t, snapshot.People, 1)
		assert.Equal(t, "p2", snapshot.People[0].Id)
		assert.Equal(t, []string{"p2"}, snapshot.LineItems[0].AssignedTo)
	})

	t.Run("should ignore removal of an unknown person", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(AddPerson{Person: Person{Id: "p1"}})

		snapshot := store.Dispatch(RemovePerson{PersonId: "missing"})

		assert.Len(t, snapshot.People, 1)
	})
}

func TestStore_LineItems(t *testing.T) {
	t.Run("should deduplicate assignees when adding an item", func(t *testing.T) {
		store := NewStore()

		snapshot := store.Dispatch(AddLineItem{Item: LineItem{
			Id: "i1", Amount: 500, AssignedTo: []string{"p1", "p1", "p2"},
		}})

		assert.Equal(t, []string{"p1", "p2"}, snapshot.LineItems[0].AssignedTo)
	})

	t.Run("should remove an item by id", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(AddLineItem{Item: LineItem{Id: "i1", Amount: 500}})
		store.Dispatch(AddLineItem{Item: LineItem{Id: "i2", Amount: 700}})

		snapshot := store.Dispatch(RemoveLineItem{ItemId: "i1"})

		assert.Len(t, snapshot.LineItems, 1)
		assert.Equal(t, "i2", snapshot.LineItems[0].Id)
	})
}

func TestStore_ToggleAssignment(t *testing.T) {
	t.Run("should assign and then unassign a person", func(t *testing.T) {
		// given
		store := NewStore()
		store.Dispatch(AddLineItem{Item: LineItem{Id: "i1", Amount: 500}})

		// when assigned
		snapshot := store.Dispatch(ToggleAssignment{ItemId: "i1", PersonId: "p1"})

		// then
		assert.Equal(t, []string{"p1"}, snapshot.LineItems[0].AssignedTo)

		// when toggled again
		snapshot = store.Dispatch(ToggleAssignment{ItemId: "i1", PersonId: "p1"})

		// then
		assert.Empty(t, snapshot.LineItems[0].AssignedTo)
	})

	t.Run("should leave the state untouched for an unknown item", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(AddLineItem{Item: LineItem{Id: "i1", Amount: 500}})
		before := store.Snapshot()

		after := store.Dispatch(ToggleAssignment{ItemId: "missing", PersonId: "p1"})

		assert.Equal(t, before, after)
	})

	t.Run("should not mutate a previously returned snapshot", func(t *testing.T) {
		// given
		store := NewStore()
		store.Dispatch(AddLineItem{Item: LineItem{Id: "i1", Amount: 500}})
		before := store.Snapshot()

		// when
		store.Dispatch(ToggleAssignment{ItemId: "i1", PersonId: "p1"})

		// then the earlier snapshot still has no assignees
		assert.Empty(t, before.LineItems[0].AssignedTo)
	})
}

func TestStore_ChargeModes(t *testing.T) {
	t.Run("setting an amount should switch to amount mode", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(AddLineItem{Item: LineItem{Id: "i1", Amount: 10000, AssignedTo: []string{"p1"}}})

		snapshot := store.Dispatch(SetTipAmount{Amount: 500})

		assert.True(t, snapshot.Tip.IsAmountMode)
		assert.Equal(t, Cents(500), snapshot.ChargeTotal(snapshot.Tip))
	})

	t.Run("setting a percentage should switch back to percentage mode", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(AddLineItem{Item: LineItem{Id: "i1", Amount: 10000, AssignedTo: []string{"p1"}}})
		store.Dispatch(SetTipAmount{Amount: 500})

		snapshot := store.Dispatch(SetTipPercentage{Percentage: 20})

		assert.False(t, snapshot.Tip.IsAmountMode)
		assert.Equal(t, Cents(2000), snapshot.ChargeTotal(snapshot.Tip))
		// the flat amount is retained, just inactive
		assert.Equal(t, Cents(500), snapshot.Tip.Amount)
	})

	t.Run("mode can be flipped without changing the stored values", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(SetTaxAmount{Amount: 875})

		snapshot := store.Dispatch(SetTaxMode{IsAmountMode: false})

		assert.False(t, snapshot.Tax.IsAmountMode)
		assert.Equal(t, Cents(875), snapshot.Tax.Amount)
	})
}

func TestStore_Lifecycle(t *testing.T) {
	t.Run("load should replace people, items and tip percentage wholesale", func(t *testing.T) {
		// given a store with prior state
		store := NewStore()
		store.Dispatch(AddPerson{Person: Person{Id: "old"}})

		// when
		snapshot := store.Dispatch(LoadData{
			People:        []Person{{Id: "p1", Name: "Alice"}},
			LineItems:     []LineItem{{Id: "i1", Amount: 100, AssignedTo: []string{"p1", "p1"}}},
			TipPercentage: 18,
		})

		// then
		assert.Len(t, snapshot.People, 1)
		assert.Equal(t, "Alice", snapshot.People[0].Name)
		assert.Equal(t, []string{"p1"}, snapshot.LineItems[0].AssignedTo)
		assert.Equal(t, 18.0, snapshot.Tip.Percentage)
	})

	t.Run("clear should reset to defaults but keep the loaded flag", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(SetDataLoaded{IsLoaded: true})
		store.Dispatch(AddPerson{Person: Person{Id: "p1"}})
		store.Dispatch(SetTipAmount{Amount: 500})

		snapshot := store.Dispatch(ClearAllData{})

		assert.Empty(t, snapshot.People)
		assert.Empty(t, snapshot.LineItems)
		assert.Equal(t, DefaultTipPercentage, snapshot.Tip.Percentage)
		assert.False(t, snapshot.Tip.IsAmountMode)
		assert.True(t, snapshot.IsLoaded)
	})

	t.Run("a new store should start empty with the default tip", func(t *testing.T) {
		snapshot := NewStore().Snapshot()

		assert.NotNil(t, snapshot.People)
		assert.Empty(t, snapshot.People)
		assert.NotNil(t, snapshot.LineItems)
		assert.Empty(t, snapshot.LineItems)
		assert.Equal(t, DefaultTipPercentage, snapshot.Tip.Percentage)
		assert.False(t, snapshot.IsLoaded)
	})
}
