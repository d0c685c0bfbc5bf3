package ledger

// Pure derivations over a Snapshot. Nothing in this file performs I/O or
// mutates state.

// Subtotal is the sum of all line item amounts, assigned or not.
func (s Snapshot) Subtotal() Cents {
	var total Cents
	for _, item := range s.LineItems {
		total += item.Amount
	}
	return total
}

// PersonShares splits the item amount evenly across its assignees. Each share
// is floored to the cent and the whole remainder goes to the first assignee,
// so the shares always sum exactly to the item amount. An unassigned item
// yields an empty map: it still counts toward the subtotal but toward nobody.
func PersonShares(item LineItem) map[string]Cents {
	shares := make(map[string]Cents, len(item.AssignedTo))
	n := Cents(len(item.AssignedTo))
	if n == 0 {
		return shares
	}
	base := item.Amount / n
	remainder := item.Amount - base*n
	for i, personId := range item.AssignedTo {
		share := base
		if i == 0 {
			share += remainder
		}
		shares[personId] = share
	}
	return shares
}

// PersonSubtotal is the sum of the person's shares across all line items.
func (s Snapshot) PersonSubtotal(personId string) Cents {
	var total Cents
	for _, item := range s.LineItems {
		total += PersonShares(item)[personId]
	}
	return total
}

// ChargeTotal is the total tip or tax: the flat amount in amount mode,
// otherwise the configured percentage of the bill subtotal.
func (s Snapshot) ChargeTotal(cfg ChargeConfig) Cents {
	if cfg.IsAmountMode {
		return cfg.Amount
	}
	return s.Subtotal().Percent(cfg.Percentage)
}

// PersonChargeShare allocates the charge total to a person in proportion to
// their share of the subtotal. Heavy spenders pay proportionally more tip and
// tax. Returns 0 when the subtotal is zero.
func (s Snapshot) PersonChargeShare(personId string, cfg ChargeConfig) Cents {
	subtotal := s.Subtotal()
	if subtotal == 0 {
		return 0
	}
	return proportionOf(s.ChargeTotal(cfg), s.PersonSubtotal(personId), subtotal)
}

// PersonTotal is the person's subtotal plus their tip and tax shares.
func (s Snapshot) PersonTotal(personId string) Cents {
	return s.PersonSubtotal(personId) +
		s.PersonChargeShare(personId, s.Tip) +
		s.PersonChargeShare(personId, s.Tax)
}

// GrandTotal is the subtotal plus total tip and total tax.
func (s Snapshot) GrandTotal() Cents {
	return s.Subtotal() + s.ChargeTotal(s.Tip) + s.ChargeTotal(s.Tax)
}

// ItemCount returns how many line items include the person.
func (s Snapshot) ItemCount(personId string) int {
	count := 0
	for _, item := range s.LineItems {
		for _, id := range item.AssignedTo {
			if id == personId {
				count++
				break
			}
		}
	}
	return count
}

// PersonSummary is the derived bill breakdown for one person.
type PersonSummary struct {
	Person    Person
	ItemCount int
	Subtotal  Cents
	Tip       Cents
	Tax       Cents
	Total     Cents
}

// BillSummary aggregates the derived figures for the whole ledger. Unassigned
// is the part of the subtotal not attributed to any person.
type BillSummary struct {
	Subtotal   Cents
	TipTotal   Cents
	TaxTotal   Cents
	GrandTotal Cents
	Unassigned Cents
	People     []PersonSummary
}

// Summary computes the full per-person breakdown in people display order.
func (s Snapshot) Summary() BillSummary {
	summary := BillSummary{
		Subtotal:   s.Subtotal(),
		TipTotal:   s.ChargeTotal(s.Tip),
		TaxTotal:   s.ChargeTotal(s.Tax),
		GrandTotal: s.GrandTotal(),
		People:     make([]PersonSummary, 0, len(s.People)),
	}
	var assigned Cents
	for _, person := range s.People {
		subtotal := s.PersonSubtotal(person.Id)
		assigned += subtotal
		summary.People = append(summary.People, PersonSummary{
			Person:    person,
			ItemCount: s.ItemCount(person.Id),
			Subtotal:  subtotal,
			Tip:       s.PersonChargeShare(person.Id, s.Tip),
			Tax:       s.PersonChargeShare(person.Id, s.Tax),
			Total:     s.PersonTotal(person.Id),
		})
	}
	summary.Unassigned = summary.Subtotal - assigned
	return summary
}
