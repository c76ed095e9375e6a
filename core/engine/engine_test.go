package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/eko/gocache/v2/store"
	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picha-labs/picha/canister"
	"github.com/picha-labs/picha/common/events"
	"github.com/picha-labs/picha/core/evolution"
	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/core/prompt"
	"github.com/picha-labs/picha/core/tracker"
	"github.com/picha-labs/picha/dao/combination"
	"github.com/picha-labs/picha/dao/mintevent"
	"github.com/picha-labs/picha/dao/nft"
	"github.com/picha-labs/picha/stability"
	"github.com/picha-labs/picha/types"
)

const testOwner = "ryjl3-tyaaa-aaaaa-aaaba-cai"

type fakeNftModel struct {
	rows map[string]*nft.Nft
}

func newFakeNftModel() *fakeNftModel {
	return &fakeNftModel{rows: make(map[string]*nft.Nft)}
}

func (f *fakeNftModel) CreateNftTable() error { return nil }
func (f *fakeNftModel) DropNftTable() error   { return nil }

func (f *fakeNftModel) CreateNft(row *nft.Nft) error {
	f.rows[row.NftId] = row
	return nil
}

func (f *fakeNftModel) GetNftById(nftId string) (*nft.Nft, error) {
	row, ok := f.rows[nftId]
	if !ok {
		return nil, types.DbErrNotFound
	}
	return row, nil
}

func (f *fakeNftModel) GetNftsByOwner(owner string, limit, offset int) ([]*nft.Nft, error) {
	return nil, types.DbErrNotFound
}

func (f *fakeNftModel) GetNfts(limit, offset int) ([]*nft.Nft, error) {
	all := make([]*nft.Nft, 0, len(f.rows))
	for _, row := range f.rows {
		all = append(all, row)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].NftId < all[j].NftId })
	if offset >= len(all) {
		return nil, types.DbErrNotFound
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeNftModel) GetNftsTotalCount() (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeNftModel) GetNftsDueForEvolution(before time.Time, limit int) ([]*nft.Nft, error) {
	var due []*nft.Nft
	for _, row := range f.rows {
		if row.LastEvolvedAt.Add(time.Duration(row.EvolutionPeriodSec) * time.Second).Before(before) {
			due = append(due, row)
		}
	}
	if len(due) == 0 {
		return nil, types.DbErrNotFound
	}
	return due, nil
}

func (f *fakeNftModel) GetNftsByCanisterStatus(status string, limit int) ([]*nft.Nft, error) {
	var matched []*nft.Nft
	for _, row := range f.rows {
		if row.CanisterStatus == status {
			matched = append(matched, row)
		}
	}
	if len(matched) == 0 {
		return nil, types.DbErrNotFound
	}
	return matched, nil
}

func (f *fakeNftModel) UpdateNftInTx(row *nft.Nft) error {
	if _, ok := f.rows[row.NftId]; !ok {
		return types.DbErrNotFound
	}
	f.rows[row.NftId] = row
	return nil
}

func (f *fakeNftModel) UpdateCanisterStatus(nftId string, status string, tokenId int64) error {
	row, ok := f.rows[nftId]
	if !ok {
		return types.DbErrNotFound
	}
	row.CanisterStatus = status
	if tokenId > 0 {
		row.CanisterTokenId = tokenId
	}
	return nil
}

func (f *fakeNftModel) GetCanisterStatusCounts() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, row := range f.rows {
		counts[row.CanisterStatus]++
	}
	return counts, nil
}

type fakeCombinationModel struct {
	rows map[string]*combination.Combination
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

type fakeMintEventModel struct {
	events []*mintevent.MintEvent
}

func (f *fakeMintEventModel) CreateMintEventTable() error { return nil }
func (f *fakeMintEventModel) DropMintEventTable() error   { return nil }

func (f *fakeMintEventModel) CreateMintEvent(event *mintevent.MintEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeMintEventModel) GetRecentMintEvents(limit int) ([]*mintevent.MintEvent, error) {
	return f.events, nil
}

func (f *fakeMintEventModel) GetMintEventByNftId(nftId string) (*mintevent.MintEvent, error) {
	for _, event := range f.events {
		if event.NftId == nftId {
			return event, nil
		}
	}
	return nil, types.DbErrNotFound
}

func (f *fakeMintEventModel) UpdateMintOutcome(nftId, canisterStatus, failureReason string) error {
	event, err := f.GetMintEventByNftId(nftId)
	if err != nil {
		return err
	}
	event.CanisterStatus = canisterStatus
	event.FailureReason = failureReason
	return nil
}

func (f *fakeMintEventModel) IncrementRetryCount(nftId string) error {
	event, err := f.GetMintEventByNftId(nftId)
	if err != nil {
		return err
	}
	event.RetryCount++
	return nil
}

type testHarness struct {
	engine     *Engine
	nfts       *fakeNftModel
	combos     *fakeCombinationModel
	mintEvents *fakeMintEventModel
	mintCalls  *int
	onChain    *[]*canister.NftPayload
}

func newHarness(t *testing.T, stabilityFails bool, canisterFails bool) *testHarness {
	t.Helper()

	mintCalls := 0
	var onChain []*canister.NftPayload
	canisterServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if canisterFails {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/call/mint"):
			mintCalls++
			var payload canister.NftPayload
			_ = json.NewDecoder(r.Body).Decode(&payload)
			onChain = append(onChain, &payload)
			json.NewEncoder(w).Encode(canister.MintResult{TokenId: int64(mintCalls)})
		case strings.HasSuffix(r.URL.Path, "/call/update_nft"):
			var payload canister.NftPayload
			_ = json.NewDecoder(r.Body).Decode(&payload)
			for i, existing := range onChain {
				if existing.NftId == payload.NftId {
					onChain[i] = &payload
				}
			}
			json.NewEncoder(w).Encode(map[string]string{})
		case strings.HasSuffix(r.URL.Path, "/call/list_all_nfts"):
			if onChain == nil {
				json.NewEncoder(w).Encode([]*canister.NftPayload{})
				return
			}
			json.NewEncoder(w).Encode(onChain)
		default:
			json.NewEncoder(w).Encode(map[string]string{})
		}
	}))
	t.Cleanup(canisterServer.Close)

	stabilityServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if stabilityFails {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"artifacts": []map[string]string{
				{"base64": base64.StdEncoding.EncodeToString([]byte("png"))},
			},
		})
	}))
	t.Cleanup(stabilityServer.Close)

	canisterClient, err := canister.NewClient(canister.Config{
		CanisterId: testOwner, Network: "local", Timeout: time.Second, MaxRetries: 1,
	})
	require.NoError(t, err)
	canisterClient = canisterClient.WithEndpoint(canisterServer.URL)

	nfts := newFakeNftModel()
	combos := &fakeCombinationModel{rows: map[string]*combination.Combination{
		"Dali-fantasy": {Artist: "Dali", EventType: "fantasy", TotalLimit: 2},
	}}
	mintEvents := &fakeMintEventModel{}

	e := New(Params{
		NftModel:       nfts,
		MintEventModel: mintEvents,
		Tracker:        tracker.New(combos, store.NewGoCache(gocache.New(time.Minute, time.Minute), nil)),
		Prompts:        prompt.NewGenerator(),
		Evolution:      evolution.NewEngine(rand.NewSource(1)),
		Canister:       canisterClient,
		Stability: stability.NewClient(stability.Config{
			ApiKey: "k", Host: stabilityServer.URL, ImageDir: t.TempDir(), Timeout: time.Second,
		}),
		// no redis behind this publisher, publish errors are logged only
		Publisher: events.NewPublisher(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})),
	})
	return &testHarness{
		engine: e, nfts: nfts, combos: combos, mintEvents: mintEvents,
		mintCalls: &mintCalls, onChain: &onChain,
	}
}

func createRequest() *CreateRequest {
	return &CreateRequest{
		Artist:    "Dali",
		EventType: model.EventFantasy,
		Mode:      model.ModeSelection,
		Factors: model.UniquenessFactors{
			LocationHash:    "abc123",
			TimestampSeed:   "1700000000",
			WalletEntropy:   "entropy",
			WalletPrincipal: testOwner,
		},
	}
}

func TestCreateNftHappyPath(t *testing.T) {
	h := newHarness(t, false, false)

	row, scarcity, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, row.NftId)
	assert.Equal(t, "Dali", row.Artist)
	assert.NotEmpty(t, row.ImageUrl)
	assert.NotEmpty(t, row.OwnerAccountId)
	assert.Equal(t, nft.CanisterStatusMinted, row.CanisterStatus)
	assert.Equal(t, int64(1), scarcity.MintedCount)
	assert.Len(t, h.mintEvents.events, 1)

	var history []model.EvolutionEntry
	require.NoError(t, json.Unmarshal([]byte(row.EvolutionHistory), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "mint", history[0].Event)
}

func TestCreateNftUnknownArtist(t *testing.T) {
	h := newHarness(t, false, false)
	req := createRequest()
	req.Artist = "Rothko"

	_, _, err := h.engine.CreateNft(context.Background(), req)
	assert.ErrorIs(t, err, types.AppErrInvalidArtist)
}

func TestCreateNftSoldOut(t *testing.T) {
	h := newHarness(t, false, false)
	h.combos.rows["Dali-fantasy"].MintedCount = 2

	_, _, err := h.engine.CreateNft(context.Background(), createRequest())
	assert.ErrorIs(t, err, types.AppErrCombinationSoldOut)
}

func TestCreateNftImageFailureReleasesSlot(t *testing.T) {
	h := newHarness(t, true, false)

	_, _, err := h.engine.CreateNft(context.Background(), createRequest())
	assert.ErrorIs(t, err, types.AppErrImageGeneration)
	assert.Equal(t, int64(0), h.combos.rows["Dali-fantasy"].MintedCount)
	assert.Empty(t, h.nfts.rows)
}

func TestCreateNftCanisterFailureMarksPendingRetry(t *testing.T) {
	h := newHarness(t, false, true)

	row, _, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)
	assert.Equal(t, nft.CanisterStatusFailedMint, row.CanisterStatus)
	// the mint itself still stands
	assert.Equal(t, int64(1), h.combos.rows["Dali-fantasy"].MintedCount)

	event, err := h.mintEvents.GetMintEventByNftId(row.NftId)
	require.NoError(t, err)
	assert.Equal(t, nft.CanisterStatusFailedMint, event.CanisterStatus)
	assert.NotEmpty(t, event.FailureReason)
}

func TestEvolveNftBumpsVersionAndHistory(t *testing.T) {
	h := newHarness(t, false, false)

	row, _, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)
	before := row.GeneticTraits

	evolved, err := h.engine.EvolveNft(context.Background(), row, &evolution.SocialMetrics{
		SentimentScore: 0.9, EngagementScore: 5000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), evolved.EvolutionVersion)
	assert.NotEqual(t, before, evolved.GeneticTraits)

	var history []model.EvolutionEntry
	require.NoError(t, json.Unmarshal([]byte(evolved.EvolutionHistory), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "evolution", history[1].Event)
	assert.NotNil(t, history[1].SocialMediaImpact)
}

func TestRetryCanister(t *testing.T) {
	h := newHarness(t, false, false)

	row, _, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)
	row.CanisterStatus = nft.CanisterStatusFailedMint

	retried, failed := h.engine.RetryCanister(context.Background(), 10)
	assert.Equal(t, int64(1), retried)
	assert.Equal(t, int64(0), failed)
	assert.Equal(t, nft.CanisterStatusMinted, h.nfts.rows[row.NftId].CanisterStatus)

	event, err := h.mintEvents.GetMintEventByNftId(row.NftId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), event.RetryCount)
	assert.Equal(t, nft.CanisterStatusMinted, event.CanisterStatus)
	assert.Empty(t, event.FailureReason)
}

func TestEvolveNftFlatSocialSignalLeavesTraits(t *testing.T) {
	h := newHarness(t, false, false)

	row, _, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)
	before := row.GeneticTraits

	evolved, err := h.engine.EvolveNft(context.Background(), row, &evolution.SocialMetrics{})
	require.NoError(t, err)

	// a social cycle with no signal must not fall through to drift
	assert.Equal(t, before, evolved.GeneticTraits)
	assert.Equal(t, int64(1), evolved.EvolutionVersion)
}

func TestEvolveNftWithoutMetricsDrifts(t *testing.T) {
	h := newHarness(t, false, false)

	row, _, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)
	before := row.GeneticTraits

	evolved, err := h.engine.EvolveNft(context.Background(), row, nil)
	require.NoError(t, err)
	assert.NotEqual(t, before, evolved.GeneticTraits)

	var history []model.EvolutionEntry
	require.NoError(t, json.Unmarshal([]byte(evolved.EvolutionHistory), &history))
	require.Len(t, history, 2)
	assert.Nil(t, history[1].SocialMediaImpact)
}

func TestSyncCheckClean(t *testing.T) {
	h := newHarness(t, false, false)

	_, _, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)

	report, err := h.engine.SyncCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, report.DiscrepanciesFound)
	assert.Equal(t, int64(1), report.TotalLocal)
	assert.Equal(t, int64(1), report.TotalCanister)
}

func TestSyncCheckFlagsDivergence(t *testing.T) {
	h := newHarness(t, false, false)

	row, _, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)

	// a version bump the canister never saw
	(*h.onChain)[0].Version = row.EvolutionVersion + 3
	orphan := &canister.NftPayload{NftId: "ghost", Owner: testOwner}
	*h.onChain = append(*h.onChain, orphan)

	report, err := h.engine.SyncCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, report.DiscrepanciesFound)
	require.Len(t, report.Mismatched, 1)
	assert.Equal(t, row.NftId, report.Mismatched[0].NftId)
	require.Len(t, report.CanisterOnly, 1)
	assert.Equal(t, "ghost", report.CanisterOnly[0].NftId)
	assert.Empty(t, report.LocalOnly)
}

func TestSyncCheckFlagsFailedMint(t *testing.T) {
	h := newHarness(t, false, true)

	row, _, err := h.engine.CreateNft(context.Background(), createRequest())
	require.NoError(t, err)
	require.Equal(t, nft.CanisterStatusFailedMint, row.CanisterStatus)

	// reconciliation must run against a reachable canister
	h2 := newHarness(t, false, false)
	h2.nfts.rows = h.nfts.rows
	report, err := h2.engine.SyncCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, report.DiscrepanciesFound)
	require.Len(t, report.LocalOnly, 1)
	assert.Equal(t, row.NftId, report.LocalOnly[0].NftId)
}
