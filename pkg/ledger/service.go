package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/splitledger/splitledger/internal/event_bus"
)

var (
	ErrEmptyName        = errors.New("person name must not be empty")
	ErrEmptyDescription = errors.New("item description must not be empty")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidPercent   = errors.New("percentage must be between 0 and 100")
	ErrItemNotFound     = errors.New("line item not found")
)

// CandidateItem is an untrusted line item candidate from a receipt scan.
type CandidateItem struct {
	Description string
	Amount      Cents
}

type Service interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Summary(ctx context.Context) (BillSummary, error)
	AddPerson(ctx context.Context, name string) (Person, error)
	RemovePerson(ctx context.Context, personId string) error
	AddLineItem(ctx context.Context, description string, amount Cents) (LineItem, error)
	RemoveLineItem(ctx context.Context, itemId string) error
	ToggleAssignment(ctx context.Context, itemId string, personId string) error
	SetTipPercentage(ctx context.Context, percentage float64) error
	SetTipAmount(ctx context.Context, amount Cents) error
	SetTipMode(ctx context.Context, isAmountMode bool) error
	SetTaxPercentage(ctx context.Context, percentage float64) error
	SetTaxAmount(ctx context.Context, amount Cents) error
	SetTaxMode(ctx context.Context, isAmountMode bool) error
	ImportItems(ctx context.Context, candidates []CandidateItem) ([]LineItem, error)
	Clear(ctx context.Context) error
}

// ServiceImpl keeps one in-memory Store per ledger id, hydrated from the
// snapshot repo on first access. All dispatches for a ledger run under a
// single mutex, so reducer updates never interleave.
type ServiceImpl struct {
	mu     sync.Mutex
	stores map[string]*Store
	repo   SnapshotRepo
	bus    *event_bus.EventBus
}

func NewService(repo SnapshotRepo, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{
		stores: make(map[string]*Store),
		repo:   repo,
		bus:    bus,
	}
}

// storeFor returns the hydrated store for the current ledger. A failed or
// empty persistence read fails open to the default snapshot; either way the
// store is marked loaded so subsequent mutations persist.
func (s *ServiceImpl) storeFor(ctx context.Context) (string, *Store, error) {
	ledgerId, err := CurrentId(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get current ledger: %w", err)
	}
	if store, ok := s.stores[ledgerId]; ok {
		return ledgerId, store, nil
	}

	store := NewStore()
	stored, found, err := s.repo.Load(ctx, ledgerId)
	if err != nil {
		log.Warnf("failed to load ledger %s, starting empty: %v", ledgerId, err)
	} else if found {
		store.Dispatch(LoadData{
			People:        stored.People,
			LineItems:     stored.LineItems,
			TipPercentage: stored.Tip.Percentage,
		})
		// Tip amount/mode and tax are later envelope extensions restored
		// through their own actions.
		store.Dispatch(SetTipAmount{Amount: stored.Tip.Amount})
		store.Dispatch(SetTipMode{IsAmountMode: stored.Tip.IsAmountMode})
		store.Dispatch(SetTaxPercentage{Percentage: stored.Tax.Percentage})
		store.Dispatch(SetTaxAmount{Amount: stored.Tax.Amount})
		store.Dispatch(SetTaxMode{IsAmountMode: stored.Tax.IsAmountMode})
	}
	store.Dispatch(SetDataLoaded{IsLoaded: true})
	s.stores[ledgerId] = store
	return ledgerId, store, nil
}

// dispatch applies the action and, once the initial load has completed,
// persists the resulting snapshot. Save failures are logged and swallowed: a
// broken store must never block a mutation.
func (s *ServiceImpl) dispatch(ctx context.Context, action Action) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledgerId, store, err := s.storeFor(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return s.applyLocked(ctx, ledgerId, store, action), nil
}

// applyLocked is the tail of dispatch for callers that already hold the mutex
// and need to read the store and dispatch in one critical section.
func (s *ServiceImpl) applyLocked(ctx context.Context, ledgerId string, store *Store, action Action) Snapshot {
	snapshot := store.Dispatch(action)
	if snapshot.IsLoaded {
		if err := s.repo.Save(ctx, ledgerId, snapshot); err != nil {
			log.Warnf("failed to persist ledger %s: %v", ledgerId, err)
		}
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.LedgerChangedEvent, event_bus.LedgerChanged{
		LedgerId:   ledgerId,
		ActionName: actionName(action),
	})); err != nil {
		log.Debugf("ledger change event handlers failed: %v", err)
	}
	return snapshot
}

func (s *ServiceImpl) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, store, err := s.storeFor(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Snapshot(), nil
}

func (s *ServiceImpl) Summary(ctx context.Context) (BillSummary, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return BillSummary{}, err
	}
	return snapshot.Summary(), nil
}

// AddPerson creates the person and appends them in one critical section, so
// concurrent adds each see the headcount their color is derived from.
func (s *ServiceImpl) AddPerson(ctx context.Context, name string) (Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Person{}, ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ledgerId, store, err := s.storeFor(ctx)
	if err != nil {
		return Person{}, err
	}
	person := NewPerson(name, len(store.Snapshot().People))
	s.applyLocked(ctx, ledgerId, store, AddPerson{Person: person})
	return person, nil
}

func (s *ServiceImpl) RemovePerson(ctx context.Context, personId string) error {
	_, err := s.dispatch(ctx, RemovePerson{PersonId: personId})
	return err
}

func (s *ServiceImpl) AddLineItem(ctx context.Context, description string, amount Cents) (LineItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return LineItem{}, ErrEmptyDescription
	}
	if amount < 0 {
		return LineItem{}, ErrNegativeAmount
	}
	item := NewLineItem(description, amount)
	if _, err := s.dispatch(ctx, AddLineItem{Item: item}); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

func (s *ServiceImpl) RemoveLineItem(ctx context.Context, itemId string) error {
	_, err := s.dispatch(ctx, RemoveLineItem{ItemId: itemId})
	return err
}

func (s *ServiceImpl) ToggleAssignment(ctx context.Context, itemId string, personId string) error {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := snapshot.ItemById(itemId); !ok {
		return ErrItemNotFound
	}
	_, err = s.dispatch(ctx, ToggleAssignment{ItemId: itemId, PersonId: personId})
	return err
}

func (s *ServiceImpl) SetTipPercentage(ctx context.Context, percentage float64) error {
	if percentage < 0 || percentage > 100 {
		return ErrInvalidPercent
	}
	_, err := s.dispatch(ctx, SetTipPercentage{Percentage: percentage})
	return err
}

func (s *ServiceImpl) SetTipAmount(ctx context.Context, amount Cents) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	_, err := s.dispatch(ctx, SetTipAmount{Amount: amount})
	return err
}

func (s *ServiceImpl) SetTipMode(ctx context.Context, isAmountMode bool) error {
	_, err := s.dispatch(ctx, SetTipMode{IsAmountMode: isAmountMode})
	return err
}

func (s *ServiceImpl) SetTaxPercentage(ctx context.Context, percentage float64) error {
	if percentage < 0 || percentage > 100 {
		return ErrInvalidPercent
	}
	_, err := s.dispatch(ctx, SetTaxPercentage{Percentage: percentage})
	return err
}

func (s *ServiceImpl) SetTaxAmount(ctx context.Context, amount Cents) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	_, err := s.dispatch(ctx, SetTaxAmount{Amount: amount})
	return err
}

func (s *ServiceImpl) SetTaxMode(ctx context.Context, isAmountMode bool) error {
	_, err := s.dispatch(ctx, SetTaxMode{IsAmountMode: isAmountMode})
	return err
}

// ImportItems appends scan candidates as fresh unassigned line items.
// Candidates with an empty description or a non-positive amount are skipped.
func (s *ServiceImpl) ImportItems(ctx context.Context, candidates []CandidateItem) ([]LineItem, error) {
	added := make([]LineItem, 0, len(candidates))
	for _, candidate := range candidates {
		description := strings.TrimSpace(candidate.Description)
		if description == "" || candidate.Amount <= 0 {
			log.Debugf("skipping import candidate %q", candidate.Description)
			continue
		}
		item := NewLineItem(description, candidate.Amount)
		if _, err := s.dispatch(ctx, AddLineItem{Item: item}); err != nil {
			return added, err
		}
		added = append(added, item)
	}
	return added, nil
}

// Clear resets the ledger to its default state and removes the persisted
// record.
func (s *ServiceImpl) Clear(ctx context.Context) error {
	ledgerId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current ledger: %w", err)
	}
	if _, err := s.dispatch(ctx, ClearAllData{}); err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, ledgerId); err != nil {
		log.Warnf("failed to clear persisted ledger %s: %v", ledgerId, err)
	}
	return nil
}

func actionName(action Action) string {
	switch action.(type) {
	case LoadData:
		return "loadData"
	case AddPerson:
		return "addPerson"
	case RemovePerson:
		return "removePerson"
	case AddLineItem:
		return "addLineItem"
	case RemoveLineItem:
		return "removeLineItem"
	case ToggleAssignment:
		return "toggleAssignment"
	case SetTipPercentage:
		return "setTipPercentage"
	case SetTipAmount:
		return "setTipAmount"
	case SetTipMode:
		return "setTipMode"
	case SetTaxPercentage:
		return "setTaxPercentage"
	case SetTaxAmount:
		return "setTaxAmount"
	case SetTaxMode:
		return "setTaxMode"
	case ClearAllData:
		return "clearAllData"
	case SetDataLoaded:
		return "setDataLoaded"
	}
	return "unknown"
}
