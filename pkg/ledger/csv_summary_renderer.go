package ledger

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type SummaryRenderer interface {
	RenderSummary(summary BillSummary) (string, error)
}

type CsvSummaryRendererImpl struct {
}

func NewCsvSummaryRenderer() *CsvSummaryRendererImpl {
	return &CsvSummaryRendererImpl{}
}

// RenderSummary renders the per-person breakdown as CSV: one row per person
// in display order, then an unassigned row when part of the bill belongs to
// nobody, then a totals row.
func (t *CsvSummaryRendererImpl) RenderSummary(summary BillSummary) (string, error) {
	data := make([][]string, 0, len(summary.People)+3)
	data = append(data, []string{"Person", "Items", "Subtotal", "Tip", "Tax", "Total"})

	for _, person := range summary.People {
		data = append(data, []string{
			person.Person.Name,
			strconv.Itoa(person.ItemCount),
			person.Subtotal.String(),
			person.Tip.String(),
			person.Tax.String(),
			person.Total.String(),
		})
	}

	if summary.Unassigned != 0 {
		data = append(data, []string{"(unassigned)", "", summary.Unassigned.String(), "", "", ""})
	}

	data = append(data, []string{
		"TOTAL",
		"",
		summary.Subtotal.String(),
		summary.TipTotal.String(),
		summary.TaxTotal.String(),
		summary.GrandTotal.String(),
	})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
