package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/event_bus"
)

func setupService(t *testing.T) (*ServiceImpl, *StubSnapshotRepo, context.Context) {
	repo := NewStubSnapshotRepo()
	t.Cleanup(repo.Cleanup)
	service := NewService(repo, event_bus.NewEventBus())
	ctx := WithLedgerId(context.Background(), "test-ledger")
	return service, repo, ctx
}

func TestServiceImpl_AddPerson(t *testing.T) {
	t.Run("should assign palette colors by headcount", func(t *testing.T) {
		// given
		service, _, ctx := setupService(t)

		// when
		alice, err := service.AddPerson(ctx, "Alice")
		require.NoError(t, err)
		bob, err := service.AddPerson(ctx, "Bob")
		require.NoError(t, err)

		// then
		assert.Equal(t, "blue", alice.Color)
		assert.Equal(t, "green", bob.Color)
		assert.NotEqual(t, alice.Id, bob.Id)
	})

	t.Run("concurrent adds should each advance the palette", func(t *testing.T) {
		// given
		service, _, ctx := setupService(t)

		// when eight people are added concurrently
		var wg sync.WaitGroup
		for i := 0; i < len(Palette); i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := service.AddPerson(ctx, fmt.Sprintf("Person %d", n))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		// then each person holds the palette color of their insertion slot
		snapshot, err := service.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snapshot.People, len(Palette))
		for i, person := range snapshot.People {
			assert.Equal(t, Palette[i], person.Color)
		}
	})

	t.Run("should reject an empty name", func(t *testing.T) {
		service, _, ctx := setupService(t)

		_, err := service.AddPerson(ctx, "   ")

		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("should fail without a ledger id in the context", func(t *testing.T) {
		service, _, _ := setupService(t)

		_, err := service.AddPerson(context.Background(), "Alice")

		assert.ErrorIs(t, err, ErrNoLedger)
	})
}

func TestServiceImpl_LineItems(t *testing.T) {
	t.Run("should add and remove items", func(t *testing.T) {
		// given
		service, _, ctx := setupService(t)

		// when
		item, err := service.AddLineItem(ctx, "Pizza", 2550)
		require.NoError(t, err)
		require.NoError(t, service.RemoveLineItem(ctx, item.Id))

		// then
		snapshot, err := service.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snapshot.LineItems)
	})

	t.Run("should reject empty descriptions and negative amounts", func(t *testing.T) {
		service, _, ctx := setupService(t)

		_, err := service.AddLineItem(ctx, "", 100)
		assert.ErrorIs(t, err, ErrEmptyDescription)

		_, err = service.AddLineItem(ctx, "Pizza", -1)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})

	t.Run("toggling an unknown item should report not found", func(t *testing.T) {
		service, _, ctx := setupService(t)

		err := service.ToggleAssignment(ctx, "missing", "p1")

		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("should toggle an assignment on an existing item", func(t *testing.T) {
		// given
		service, _, ctx := setupService(t)
		person, err := service.AddPerson(ctx, "Alice")
		require.NoError(t, err)
		item, err := service.AddLineItem(ctx, "Pizza", 2550)
		require.NoError(t, err)

		// when
		require.NoError(t, service.ToggleAssignment(ctx, item.Id, person.Id))

		// then
		snapshot, err := service.Snapshot(ctx)
		require.NoError(t, err)
		stored, ok := snapshot.ItemById(item.Id)
		require.True(t, ok)
		assert.Equal(t, []string{person.Id}, stored.AssignedTo)
	})
}

func TestServiceImpl_Charges(t *testing.T) {
	t.Run("should validate percentage bounds", func(t *testing.T) {
		service, _, ctx := setupService(t)

		assert.ErrorIs(t, service.SetTipPercentage(ctx, -1), ErrInvalidPercent)
		assert.ErrorIs(t, service.SetTaxPercentage(ctx, 101), ErrInvalidPercent)
		assert.NoError(t, service.SetTipPercentage(ctx, 0))
		assert.NoError(t, service.SetTaxPercentage(ctx, 100))
	})

	t.Run("should reject negative flat amounts", func(t *testing.T) {
		service, _, ctx := setupService(t)

		assert.ErrorIs(t, service.SetTipAmount(ctx, -1), ErrNegativeAmount)
		assert.ErrorIs(t, service.SetTaxAmount(ctx, -1), ErrNegativeAmount)
	})

	t.Run("setting a tax amount should enable amount mode", func(t *testing.T) {
		service, _, ctx := setupService(t)

		require.NoError(t, service.SetTaxAmount(ctx, 875))

		snapshot, err := service.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, snapshot.Tax.IsAmountMode)
		assert.Equal(t, Cents(875), snapshot.Tax.Amount)
	})
}

func TestServiceImpl_Persistence(t *testing.T) {
	t.Run("should persist every mutation", func(t *testing.T) {
		// given
		service, repo, ctx := setupService(t)

		// when
		_, err := service.AddPerson(ctx, "Alice")
		require.NoError(t, err)
		_, err = service.AddLineItem(ctx, "Pizza", 2550)
		require.NoError(t, err)

		// then
		assert.Equal(t, 2, repo.SaveCount())
	})

	t.Run("a fresh service should hydrate from the repo", func(t *testing.T) {
		// given a populated ledger persisted through one service instance
		first, repo, ctx := setupService(t)
		person, err := first.AddPerson(ctx, "Alice")
		require.NoError(t, err)
		item, err := first.AddLineItem(ctx, "Pizza", 2550)
		require.NoError(t, err)
		require.NoError(t, first.ToggleAssignment(ctx, item.Id, person.Id))
		require.NoError(t, first.SetTipAmount(ctx, 500))
		require.NoError(t, first.SetTaxPercentage(ctx, 8.25))

		// when a second service reads the same repo
		second := NewService(repo, event_bus.NewEventBus())
		snapshot, err := second.Snapshot(ctx)
		require.NoError(t, err)

		// then
		require.Len(t, snapshot.People, 1)
		assert.Equal(t, "Alice", snapshot.People[0].Name)
		require.Len(t, snapshot.LineItems, 1)
		assert.Equal(t, Cents(2550), snapshot.LineItems[0].Amount)
		assert.Equal(t, []string{person.Id}, snapshot.LineItems[0].AssignedTo)
		assert.True(t, snapshot.Tip.IsAmountMode)
		assert.Equal(t, Cents(500), snapshot.Tip.Amount)
		assert.Equal(t, 8.25, snapshot.Tax.Percentage)
		assert.True(t, snapshot.IsLoaded)
	})

	t.Run("should keep separate ledgers isolated", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		ctxA := WithLedgerId(context.Background(), "ledger-a")
		ctxB := WithLedgerId(context.Background(), "ledger-b")

		// when
		_, err := service.AddPerson(ctxA, "Alice")
		require.NoError(t, err)

		// then
		snapshotB, err := service.Snapshot(ctxB)
		require.NoError(t, err)
		assert.Empty(t, snapshotB.People)
	})

	t.Run("a failing save should not block the mutation", func(t *testing.T) {
		// given
		service, repo, ctx := setupService(t)
		repo.FailSaves(true)

		// when
		_, err := service.AddPerson(ctx, "Alice")

		// then the in-memory state still advanced
		require.NoError(t, err)
		snapshot, err := service.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snapshot.People, 1)
		assert.Equal(t, 0, repo.SaveCount())
	})
}

func TestServiceImpl_ImportItems(t *testing.T) {
	t.Run("should skip blank and non-positive candidates", func(t *testing.T) {
		// given
		service, _, ctx := setupService(t)
		candidates := []CandidateItem{
			{Description: "Burger", Amount: 1299},
			{Description: "   ", Amount: 500},
			{Description: "Freebie", Amount: 0},
			{Description: "Refund", Amount: -100},
			{Description: "Fries", Amount: 450},
		}

		// when
		added, err := service.ImportItems(ctx, candidates)

		// then
		require.NoError(t, err)
		require.Len(t, added, 2)
		assert.Equal(t, "Burger", added[0].Description)
		assert.Equal(t, "Fries", added[1].Description)
		assert.Empty(t, added[0].AssignedTo)

		snapshot, err := service.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snapshot.LineItems, 2)
	})
}

func TestServiceImpl_Clear(t *testing.T) {
	t.Run("should reset state and drop the persisted record", func(t *testing.T) {
		// given
		service, repo, ctx := setupService(t)
		_, err := service.AddPerson(ctx, "Alice")
		require.NoError(t, err)
		require.NoError(t, service.SetTipAmount(ctx, 500))

		// when
		require.NoError(t, service.Clear(ctx))

		// then
		snapshot, err := service.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snapshot.People)
		assert.Equal(t, DefaultTipPercentage, snapshot.Tip.Percentage)
		assert.False(t, snapshot.Tip.IsAmountMode)

		_, found, err := repo.Load(ctx, "test-ledger")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestServiceImpl_Events(t *testing.T) {
	t.Run("should publish a change event per mutation", func(t *testing.T) {
		// given
		repo := NewStubSnapshotRepo()
		bus := event_bus.NewEventBus()
		service := NewService(repo, bus)
		ctx := WithLedgerId(context.Background(), "test-ledger")

		var seen []string
		event_bus.SubscribeTyped(bus, event_bus.LedgerChangedEvent,
			func(e event_bus.EventT[event_bus.LedgerChanged]) error {
				seen = append(seen, e.Data.ActionName)
				return nil
			})

		// when
		_, err := service.AddPerson(ctx, "Alice")
		require.NoError(t, err)
		require.NoError(t, service.SetTipPercentage(ctx, 20))

		// then
		assert.Equal(t, []string{"addPerson", "setTipPercentage"}, seen)
	})
}
