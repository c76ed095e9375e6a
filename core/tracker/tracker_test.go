package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/eko/gocache/v2/store"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/dao/combination"
	"github.com/picha-labs/picha/types"
)

type fakeCombinationModel struct {
	rows map[string]*combination.Combination
}

func newFakeCombinationModel() *fakeCombinationModel {
	return &fakeCombinationModel{rows: make(map[string]*combination.Combination)}
}

func (f *fakeCombinationModel) CreateCombinationTable() error { return nil }
func (f *fakeCombinationModel) DropCombinationTable() error   { return nil }
func (f *fakeCombinationModel) SeedCombinations() error       { return nil }

func (f *fakeCombinationModel) GetCombination(artist, eventType string) (*combination.Combination, error) {
	row, ok := f.rows[artist+"-"+eventType]
	if !ok {
		return nil, types.DbErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeCombinationModel) GetAllCombinations() ([]*combination.Combination, error) {
	out := make([]*combination.Combination, 0, len(f.rows))
	for _, row := range f.rows {
		copied := *row
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeCombinationModel) IncrementMinted(artist, eventType string) (*combination.Combination, error) {
	key := artist + "-" + eventType
	row, ok := f.rows[key]
	if !ok {
		row = &combination.Combination{Artist: artist, EventType: eventType, TotalLimit: combination.DefaultTotalLimit}
		f.rows[key] = row
	}
	if row.MintedCount >= row.TotalLimit {
		return nil, types.AppErrCombinationSoldOut
	}
	row.MintedCount++
	copied := *row
	return &copied, nil
}

func (f *fakeCombinationModel) DecrementMinted(artist, eventType string) error {
	if row, ok := f.rows[artist+"-"+eventType]; ok && row.MintedCount > 0 {
		row.MintedCount--
	}
	return nil
}

func newTestTracker(model *fakeCombinationModel) *Tracker {
	return New(model, store.NewGoCache(gocache.New(time.Minute, time.Minute), nil))
}

func TestGetScarcitySeeded(t *testing.T) {
	combos := newFakeCombinationModel()
	combos.rows["Dali-fantasy"] = &combination.Combination{
		Artist: "Dali", EventType: "fantasy", TotalLimit: 75, MintedCount: 10,
	}
	tr := newTestTracker(combos)

	info, err := tr.GetScarcity(context.Background(), "Dali", model.EventFantasy)
	require.NoError(t, err)
	assert.Equal(t, int64(75), info.TotalLimit)
	assert.Equal(t, int64(65), info.RemainingSlots())
	assert.True(t, info.IsLegendary())
	assert.Equal(t, model.TierLegendary, info.RarityTier())
}

func TestGetScarcityUnseededDefaults(t *testing.T) {
	tr := newTestTracker(newFakeCombinationModel())

	info, err := tr.GetScarcity(context.Background(), "Monet", model.EventCosmic)
	require.NoError(t, err)
	assert.Equal(t, int64(combination.DefaultTotalLimit), info.TotalLimit)
	assert.True(t, info.IsAvailable())
}

func TestReserveSlotUntilSoldOut(t *testing.T) {
	combos := newFakeCombinationModel()
	combos.rows["Picasso-abstract"] = &combination.Combination{
		Artist: "Picasso", EventType: "abstract", TotalLimit: 2,
	}
	tr := newTestTracker(combos)
	ctx := context.Background()

	info, err := tr.ReserveSlot(ctx, "Picasso", model.EventAbstract)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.MintedCount)

	info, err = tr.ReserveSlot(ctx, "Picasso", model.EventAbstract)
	require.NoError(t, err)
	assert.True(t, info.IsSoldOut())

	_, err = tr.ReserveSlot(ctx, "Picasso", model.EventAbstract)
	assert.ErrorIs(t, err, types.AppErrCombinationSoldOut)
}

func TestReleaseSlotReopens(t *testing.T) {
	combos := newFakeCombinationModel()
	combos.rows["Dali-cosmic"] = &combination.Combination{
		Artist: "Dali", EventType: "cosmic", TotalLimit: 1, MintedCount: 1,
	}
	tr := newTestTracker(combos)
	ctx := context.Background()

	require.NoError(t, tr.ReleaseSlot(ctx, "Dali", model.EventCosmic))

	info, err := tr.ReserveSlot(ctx, "Dali", model.EventCosmic)
	require.NoError(t, err)
	assert.True(t, info.IsSoldOut())
}

func TestReserveInvalidatesCache(t *testing.T) {
	combos := newFakeCombinationModel()
	combos.rows["Monet-nature"] = &combination.Combination{
		Artist: "Monet", EventType: "nature", TotalLimit: 250,
	}
	tr := newTestTracker(combos)
	ctx := context.Background()

	before, err := tr.GetScarcity(ctx, "Monet", model.EventNature)
	require.NoError(t, err)

	_, err = tr.ReserveSlot(ctx, "Monet", model.EventNature)
	require.NoError(t, err)

	after, err := tr.GetScarcity(ctx, "Monet", model.EventNature)
	require.NoError(t, err)
	assert.Equal(t, before.MintedCount+1, after.MintedCount)
}
