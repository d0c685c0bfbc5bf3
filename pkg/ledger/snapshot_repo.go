package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/splitledger/splitledger/internal/utils"
)

// SnapshotRepo persists whole ledger snapshots by ledger id. The core only
// needs get/set/remove-by-key semantics; the SQL implementation stores one
// JSON envelope per ledger.
type SnapshotRepo interface {
	// Load returns the stored snapshot and true, or a zero snapshot and
	// false when nothing is stored for the ledger.
	Load(ctx context.Context, ledgerId string) (Snapshot, bool, error)
	Save(ctx context.Context, ledgerId string, snapshot Snapshot) error
	Clear(ctx context.Context, ledgerId string) error
}

type SnapshotRepoImpl struct {
	db     *sql.DB
	driver string
	clock  utils.Clock
}

func NewSnapshotRepo(db *sql.DB, driver string, clock utils.Clock) *SnapshotRepoImpl {
	return &SnapshotRepoImpl{db: db, driver: driver, clock: clock}
}

// bind rewrites ? placeholders to $N for the postgres driver. SQLite takes
// the query as written.
func (r *SnapshotRepoImpl) bind(query string) string {
	if r.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SnapshotRepoImpl) Load(ctx context.Context, ledgerId string) (Snapshot, bool, error) {
	query := r.bind("SELECT data FROM ledger_snapshot WHERE ledger_id = ?")
	var data []byte
	err := r.db.QueryRowContext(ctx, query, ledgerId).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not load snapshot: %w", err)
		log.Error(err)
		return Snapshot{}, false, err
	}
	snapshot, err := decodeSnapshot(data)
	if err != nil {
		err := fmt.Errorf("could not decode snapshot: %w", err)
		log.Error(err)
		return Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (r *SnapshotRepoImpl) Save(ctx context.Context, ledgerId string, snapshot Snapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		err := fmt.Errorf("could not encode snapshot: %w", err)
		log.Error(err)
		return err
	}
	query := r.bind(`INSERT INTO ledger_snapshot (ledger_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (ledger_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, ledgerId, data, r.clock.Now().UTC()); err != nil {
		err := fmt.Errorf("could not save snapshot: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *SnapshotRepoImpl) Clear(ctx context.Context, ledgerId string) error {
	query := r.bind("DELETE FROM ledger_snapshot WHERE ledger_id = ?")
	if _, err := r.db.ExecContext(ctx, query, ledgerId); err != nil {
		err := fmt.Errorf("could not clear snapshot: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

// The stored envelope keeps amounts in dollars and omits nothing a reader
// could default. The tax and tip amount/mode fields are later additions to
// the same envelope; a record written before they existed still decodes.
type storedPerson struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type storedLineItem struct {
	Id          string   `json:"id"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	AssignedTo  []string `json:"assignedTo"`
}

type storedSnapshot struct {
	People          []storedPerson   `json:"people"`
	LineItems       []storedLineItem `json:"lineItems"`
	TipPercentage   *float64         `json:"tipPercentage,omitempty"`
	TipAmount       *float64         `json:"tipAmount,omitempty"`
	IsTipAmountMode *bool            `json:"isTipAmountMode,omitempty"`
	TaxPercentage   *float64         `json:"taxPercentage,omitempty"`
	TaxAmount       *float64         `json:"taxAmount,omitempty"`
	IsTaxAmountMode *bool            `json:"isTaxAmountMode,omitempty"`
}

func encodeSnapshot(snapshot Snapshot) ([]byte, error) {
	stored := storedSnapshot{
		People:          make([]storedPerson, 0, len(snapshot.People)),
		LineItems:       make([]storedLineItem, 0, len(snapshot.LineItems)),
		TipPercentage:   &snapshot.Tip.Percentage,
		TipAmount:       floatPtr(snapshot.Tip.Amount.Float()),
		IsTipAmountMode: &snapshot.Tip.IsAmountMode,
		TaxPercentage:   &snapshot.Tax.Percentage,
		TaxAmount:       floatPtr(snapshot.Tax.Amount.Float()),
		IsTaxAmountMode: &snapshot.Tax.IsAmountMode,
	}
	for _, p := range snapshot.People {
		stored.People = append(stored.People, storedPerson{Id: p.Id, Name: p.Name, Color: p.Color})
	}
	for _, item := range snapshot.LineItems {
		assignedTo := item.AssignedTo
		if assignedTo == nil {
			assignedTo = []string{}
		}
		stored.LineItems = append(stored.LineItems, storedLineItem{
			Id:          item.Id,
			Description: item.Description,
			Amount:      item.Amount.Float(),
			AssignedTo:  assignedTo,
		})
	}
	return json.Marshal(stored)
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var stored storedSnapshot
	if err := json.Unmarshal(data, &stored); err != nil {
		return Snapshot{}, err
	}
	snapshot := DefaultSnapshot()
	for _, p := range stored.People {
		snapshot.People = append(snapshot.People, Person{Id: p.Id, Name: p.Name, Color: p.Color})
	}
	for _, item := range stored.LineItems {
		assignedTo := item.AssignedTo
		if assignedTo == nil {
			assignedTo = []string{}
		}
		snapshot.LineItems = append(snapshot.LineItems, LineItem{
			Id:          item.Id,
			Description: item.Description,
			Amount:      CentsFromFloat(item.Amount),
			AssignedTo:  assignedTo,
		})
	}
	if stored.TipPercentage != nil {
		snapshot.Tip.Percentage = *stored.TipPercentage
	}
	if stored.TipAmount != nil {
		snapshot.Tip.Amount = CentsFromFloat(*stored.TipAmount)
	}
	if stored.IsTipAmountMode != nil {
		snapshot.Tip.IsAmountMode = *stored.IsTipAmountMode
	}
	if stored.TaxPercentage != nil {
		snapshot.Tax.Percentage = *stored.TaxPercentage
	}
	if stored.TaxAmount != nil {
		snapshot.Tax.Amount = CentsFromFloat(*stored.TaxAmount)
	}
	if stored.IsTaxAmountMode != nil {
		snapshot.Tax.IsAmountMode = *stored.IsTaxAmountMode
	}
	return snapshot, nil
}

func floatPtr(f float64) *float64 {
	return &f
}
