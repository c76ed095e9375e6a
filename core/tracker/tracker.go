// Package tracker exposes scarcity information for artist-event
// combinations, backed by the combination table with a short-lived
// cache in front of the reads.
package tracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/v2/cache"
	"github.com/eko/gocache/v2/store"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/dao/combination"
	"github.com/picha-labs/picha/types"
)

const cacheTtl = 10 * time.Second

type Tracker struct {
	combinationModel combination.CombinationModel
	cache            *cache.Cache
}

func New(combinationModel combination.CombinationModel, cacheStore store.StoreInterface) *Tracker {
	return &Tracker{
		combinationModel: combinationModel,
		cache:            cache.New(cacheStore),
	}
}

// GetScarcity returns scarcity info for one combination, creating the
// default-budget row lazily for unseeded pairs.
func (t *Tracker) GetScarcity(ctx context.Context, artist string, eventType model.EventType) (*model.ScarcityInfo, error) {
	key := "scarcity:" + model.CombinationKey(artist, eventType)
	if cached, err := t.cache.Get(ctx, key); err == nil {
		if raw, ok := cached.(string); ok {
			info := &model.ScarcityInfo{}
			if err := json.Unmarshal([]byte(raw), info); err == nil {
				return info, nil
			}
		}
	}

	row, err := t.combinationModel.GetCombination(artist, string(eventType))
	if err == types.DbErrNotFound {
		row = &combination.Combination{
			Artist:     artist,
			EventType:  string(eventType),
			TotalLimit: combination.DefaultTotalLimit,
		}
	} else if err != nil {
		return nil, err
	}

	info := buildInfo(row)
	t.put(ctx, key, info)
	return info, nil
}

// GetAllScarcity returns scarcity info for every known combination.
func (t *Tracker) GetAllScarcity(ctx context.Context) ([]*model.ScarcityInfo, error) {
	rows, err := t.combinationModel.GetAllCombinations()
	if err != nil {
		return nil, err
	}
	infos := make([]*model.ScarcityInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, buildInfo(row))
	}
	return infos, nil
}

// ReserveSlot atomically claims one mint slot and returns the updated
// scarcity info. AppErrCombinationSoldOut means the budget is gone.
func (t *Tracker) ReserveSlot(ctx context.Context, artist string, eventType model.EventType) (*model.ScarcityInfo, error) {
	row, err := t.combinationModel.IncrementMinted(artist, string(eventType))
	if err != nil {
		return nil, err
	}
	info := buildInfo(row)
	t.invalidate(ctx, artist, eventType)
	return info, nil
}

// ReleaseSlot gives a reserved slot back after a failed mint.
func (t *Tracker) ReleaseSlot(ctx context.Context, artist string, eventType model.EventType) error {
	if err := t.combinationModel.DecrementMinted(artist, string(eventType)); err != nil {
		return errors.Wrap(err, "release slot")
	}
	t.invalidate(ctx, artist, eventType)
	return nil
}

func (t *Tracker) put(ctx context.Context, key string, info *model.ScarcityInfo) {
	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := t.cache.Set(ctx, key, string(raw), &store.Options{Expiration: cacheTtl}); err != nil {
		logx.WithContext(ctx).Errorf("set scarcity cache: %v", err)
	}
}

func (t *Tracker) invalidate(ctx context.Context, artist string, eventType model.EventType) {
	key := "scarcity:" + model.CombinationKey(artist, eventType)
	if err := t.cache.Delete(ctx, key); err != nil {
		logx.WithContext(ctx).Errorf("invalidate scarcity cache: %v", err)
	}
}

func buildInfo(row *combination.Combination) *model.ScarcityInfo {
	info := &model.ScarcityInfo{
		Artist:      row.Artist,
		EventType:   model.EventType(row.EventType),
		Combination: model.CombinationKey(row.Artist, model.EventType(row.EventType)),
		TotalLimit:  row.TotalLimit,
		MintedCount: row.MintedCount,
	}
	if row.TotalLimit > 0 {
		info.RarityScore = 1 - float64(row.TotalLimit)/500
		if info.RarityScore < 0 {
			info.RarityScore = 0
		}
		used := float64(row.MintedCount) / float64(row.TotalLimit)
		info.PriceMultiplier = 1 + used*2
	}
	return info
}
