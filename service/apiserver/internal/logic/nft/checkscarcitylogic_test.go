package nft

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/eko/gocache/v2/store"
	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picha-labs/picha/common/events"
	"github.com/picha-labs/picha/core/prompt"
	"github.com/picha-labs/picha/core/tracker"
	"github.com/picha-labs/picha/dao/combination"
	"github.com/picha-labs/picha/dao/waitlist"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type fakeCombinationModel struct {
	rows map[string]*combination.Combination
}

func (f *fakeCombinationModel) CreateCombinationTable() error { return nil }
func (f *fakeCombinationModel) DropCombinationTable() error   { return nil }
func (f *fakeCombinationModel) SeedCombinations() error       { return nil }

func (f *fakeCombinationModel) GetCombination(artist, eventType string) (*combination.Combination, error) {
	row, ok := f.rows[artist+"-"+eventType]
	if !ok {
		return nil, types2.DbErrNotFound
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
	row, ok := f.rows[artist+"-"+eventType]
	if !ok {
		return nil, types2.DbErrNotFound
	}
	row.MintedCount++
	copied := *row
	return &copied, nil
}

func (f *fakeCombinationModel) DecrementMinted(artist, eventType string) error { return nil }

type fakeWaitlistModel struct {
	entries []*waitlist.Waitlist
}

func (f *fakeWaitlistModel) CreateWaitlistTable() error { return nil }
func (f *fakeWaitlistModel) DropWaitlistTable() error   { return nil }
func (f *fakeWaitlistModel) CreateEntry(entry *waitlist.Waitlist) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeWaitlistModel) GetEntries(artist, eventType string) ([]*waitlist.Waitlist, error) {
	out := make([]*waitlist.Waitlist, 0, len(f.entries))
	for _, entry := range f.entries {
		if entry.Artist == artist && entry.EventType == eventType {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeWaitlistModel) GetPosition(artist, eventType, principal string) (int64, error) {
	return 0, types2.DbErrNotFound
}

func (f *fakeWaitlistModel) MarkNotified(id uint) error { return nil }

// recordingHook captures every command handed to the redis client
// before it is sent, so publishes can be observed without a server.
type recordingHook struct {
	cmds []redis.Cmder
}

func (h *recordingHook) BeforeProcess(ctx context.Context, cmd redis.Cmder) (context.Context, error) {
	h.cmds = append(h.cmds, cmd)
	return ctx, nil
}

func (h *recordingHook) AfterProcess(ctx context.Context, cmd redis.Cmder) error { return nil }

func (h *recordingHook) BeforeProcessPipeline(ctx context.Context, cmds []redis.Cmder) (context.Context, error) {
	return ctx, nil
}

func (h *recordingHook) AfterProcessPipeline(ctx context.Context, cmds []redis.Cmder) error {
	return nil
}

func TestCheckScarcityPublishesUpdate(t *testing.T) {
	hook := &recordingHook{}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.AddHook(hook)

	combos := &fakeCombinationModel{rows: map[string]*combination.Combination{
		"Dali-fantasy": {Artist: "Dali", EventType: "fantasy", TotalLimit: 75, MintedCount: 10},
	}}
	svcCtx := &svc.ServiceContext{
		CombinationModel: combos,
		WaitlistModel:    &fakeWaitlistModel{},
		Tracker:          tracker.New(combos, store.NewGoCache(gocache.New(time.Minute, time.Minute), nil)),
		PromptGenerator:  prompt.NewGenerator(),
		Publisher:        events.NewPublisher(client),
	}

	resp, err := NewCheckScarcityLogic(context.Background(), svcCtx).
		CheckScarcity(&types.ReqCheckScarcity{Artist: "Dali", EventType: "fantasy"})
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, int64(65), resp.ScarcityInfo.RemainingSlots)

	require.Len(t, hook.cmds, 1)
	assert.Equal(t, "publish", hook.cmds[0].Name())
	args := hook.cmds[0].Args()
	require.Len(t, args, 3)
	assert.Equal(t, events.Channel, args[1])

	var msg events.Message
	require.NoError(t, json.Unmarshal([]byte(fmt.Sprintf("%s", args[2])), &msg))
	assert.Equal(t, events.EventScarcityUpdate, msg.Event)
	assert.Equal(t, events.ScarcityRoom("Dali", "fantasy"), msg.Room)
}

func TestCheckScarcityRejectsUnknownArtist(t *testing.T) {
	svcCtx := &svc.ServiceContext{PromptGenerator: prompt.NewGenerator()}

	_, err := NewCheckScarcityLogic(context.Background(), svcCtx).
		CheckScarcity(&types.ReqCheckScarcity{Artist: "Rothko", EventType: "fantasy"})
	assert.Equal(t, types2.AppErrInvalidArtist, err)
}
