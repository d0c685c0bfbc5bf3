package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/test_utils"
	"github.com/splitledger/splitledger/internal/utils"
)

func setupRepo(t *testing.T) *SnapshotRepoImpl {
	db := test_utils.SetupTestDB(t)
	clock := &utils.MockClock{FixedNow: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewSnapshotRepo(db, "sqlite", clock)
}

func TestSnapshotRepoImpl_SaveAndLoad(t *testing.T) {
	t.Run("should round-trip a full snapshot", func(t *testing.T) {
		// given
		repo := setupRepo(t)
		ctx := context.Background()
		snapshot := Snapshot{
			People: []Person{{Id: "p1", Name: "Alice", Color: "blue"}},
			LineItems: []LineItem{
				{Id: "i1", Description: "Pizza", Amount: 2550, AssignedTo: []string{"p1"}},
				{Id: "i2", Description: "Drinks", Amount: 1200, AssignedTo: []string{}},
			},
			Tip: ChargeConfig{Percentage: 18, Amount: 500, IsAmountMode: true},
			Tax: ChargeConfig{Percentage: 8.25},
		}

		// when
		require.NoError(t, repo.Save(ctx, "ledger-1", snapshot))
		loaded, found, err := repo.Load(ctx, "ledger-1")

		// then
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, snapshot.People, loaded.People)
		assert.Equal(t, snapshot.LineItems, loaded.LineItems)
		assert.Equal(t, snapshot.Tip, loaded.Tip)
		assert.Equal(t, snapshot.Tax, loaded.Tax)
		assert.False(t, loaded.IsLoaded)
	})

	t.Run("should report a missing ledger", func(t *testing.T) {
		repo := setupRepo(t)

		_, found, err := repo.Load(context.Background(), "missing")

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should overwrite on a second save", func(t *testing.T) {
		// given
		repo := setupRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, "ledger-1", Snapshot{
			People: []Person{{Id: "p1", Name: "Alice"}},
		}))

		// when
		require.NoError(t, repo.Save(ctx, "ledger-1", Snapshot{
			People: []Person{{Id: "p2", Name: "Bob"}},
		}))

		// then
		loaded, found, err := repo.Load(ctx, "ledger-1")
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, loaded.People, 1)
		assert.Equal(t, "Bob", loaded.People[0].Name)
	})

	t.Run("should keep ledgers separate", func(t *testing.T) {
		repo := setupRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, "ledger-a", Snapshot{People: []Person{{Id: "p1"}}}))

		_, found, err := repo.Load(ctx, "ledger-b")

		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestSnapshotRepoImpl_Clear(t *testing.T) {
	t.Run("should remove the stored record", func(t *testing.T) {
		// given
		repo := setupRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, "ledger-1", Snapshot{People: []Person{{Id: "p1"}}}))

		// when
		require.NoError(t, repo.Clear(ctx, "ledger-1"))

		// then
		_, found, err := repo.Load(ctx, "ledger-1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("clearing a missing ledger should succeed", func(t *testing.T) {
		repo := setupRepo(t)

		assert.NoError(t, repo.Clear(context.Background(), "missing"))
	})
}

func TestDecodeSnapshot(t *testing.T) {
	t.Run("should default fields absent from an older envelope", func(t *testing.T) {
		// given a record written before the tax and tip amount fields existed
		data := []byte(`{"people":[{"id":"p1","name":"Alice","color":"blue"}],` +
			`"lineItems":[{"id":"i1","description":"Pizza","amount":25.5,"assignedTo":["p1"]}]}`)

		// when
		snapshot, err := decodeSnapshot(data)

		// then
		require.NoError(t, err)
		assert.Equal(t, DefaultTipPercentage, snapshot.Tip.Percentage)
		assert.False(t, snapshot.Tip.IsAmountMode)
		assert.Equal(t, ChargeConfig{}, snapshot.Tax)
		require.Len(t, snapshot.LineItems, 1)
		assert.Equal(t, Cents(2550), snapshot.LineItems[0].Amount)
	})

	t.Run("an explicit zero tip should survive the round trip", func(t *testing.T) {
		// given
		data, err := encodeSnapshot(Snapshot{Tip: ChargeConfig{Percentage: 0}})
		require.NoError(t, err)

		// when
		snapshot, err := decodeSnapshot(data)

		// then zero means zero, not the default
		require.NoError(t, err)
		assert.Equal(t, 0.0, snapshot.Tip.Percentage)
	})

	t.Run("should reject malformed data", func(t *testing.T) {
		_, err := decodeSnapshot([]byte("not json"))

		assert.Error(t, err)
	})
}
