package ledger

// Store is the only mutator of a ledger Snapshot. Dispatch applies the
// reducer and swaps in the resulting snapshot; the previous value is never
// mutated in place, so callers may hold on to earlier snapshots safely.
//
// Store itself is not safe for concurrent use; the service layer serializes
// dispatches per ledger.
type Store struct {
	snapshot Snapshot
}

func NewStore() *Store {
	return &Store{snapshot: DefaultSnapshot()}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	return s.snapshot
}

// Dispatch applies the action and returns the new snapshot. The reducer is
// total: malformed or absent-id actions degrade to identity, never an error.
func (s *Store) Dispatch(action Action) Snapshot {
	s.snapshot = reduce(s.snapshot, action)
	return s.snapshot
}

func reduce(state Snapshot, action Action) Snapshot {
	switch a := action.(type) {
	case LoadData:
		state.People = clonePeople(a.People)
		state.LineItems = normalizeItems(a.LineItems)
		state.Tip.Percentage = a.TipPercentage
		return state

	case AddPerson:
		state.People = append(clonePeople(state.People), a.Person)
		return state

	case RemovePerson:
		people := make([]Person, 0, len(state.People))
		for _, p := range state.People {
			if p.Id != a.PersonId {
				people = append(people, p)
			}
		}
		items := make([]LineItem, 0, len(state.LineItems))
		for _, item := range state.LineItems {
			item.AssignedTo = without(item.AssignedTo, a.PersonId)
			items = append(items, item)
		}
		state.People = people
		state.LineItems = items
		return state

	case AddLineItem:
		item := a.Item
		item.AssignedTo = dedupe(item.AssignedTo)
		state.LineItems = append(cloneItems(state.LineItems), item)
		return state

	case RemoveLineItem:
		items := make([]LineItem, 0, len(state.LineItems))
		for _, item := range state.LineItems {
			if item.Id != a.ItemId {
				items = append(items, item)
			}
		}
		state.LineItems = items
		return state

	case ToggleAssignment:
		items := make([]LineItem, 0, len(state.LineItems))
		for _, item := range state.LineItems {
			if item.Id == a.ItemId {
				if contains(item.AssignedTo, a.PersonId) {
					item.AssignedTo = without(item.AssignedTo, a.PersonId)
				} else {
					item.AssignedTo = append(append([]string{}, item.AssignedTo...), a.PersonId)
				}
			}
			items = append(items, item)
		}
		state.LineItems = items
		return state

	case SetTipPercentage:
		state.Tip.Percentage = a.Percentage
		state.Tip.IsAmountMode = false
		return state

	case SetTipAmount:
		state.Tip.Amount = a.Amount
		state.Tip.IsAmountMode = true
		return state

	case SetTipMode:
		state.Tip.IsAmountMode = a.IsAmountMode
		return state

	case SetTaxPercentage:
		state.Tax.Percentage = a.Percentage
		state.Tax.IsAmountMode = false
		return state

	case SetTaxAmount:
		state.Tax.Amount = a.Amount
		state.Tax.IsAmountMode = true
		return state

	case SetTaxMode:
		state.Tax.IsAmountMode = a.IsAmountMode
		return state

	case ClearAllData:
		next := DefaultSnapshot()
		next.IsLoaded = state.IsLoaded
		return next

	case SetDataLoaded:
		state.IsLoaded = a.IsLoaded
		return state
	}
	return state
}

func clonePeople(people []Person) []Person {
	return append([]Person{}, people...)
}

func cloneItems(items []LineItem) []LineItem {
	return append([]LineItem{}, items...)
}

// normalizeItems copies the items and deduplicates each assignment list while
// preserving insertion order.
func normalizeItems(items []LineItem) []LineItem {
	normalized := make([]LineItem, 0, len(items))
	for _, item := range items {
		item.AssignedTo = dedupe(item.AssignedTo)
		normalized = append(normalized, item)
	}
	return normalized
}

func dedupe(ids []string) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if !contains(result, id) {
			result = append(result, id)
		}
	}
	return result
}

func without(ids []string, id string) []string {
	result := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			result = append(result, candidate)
		}
	}
	return result
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
