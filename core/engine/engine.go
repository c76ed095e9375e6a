// Package engine drives the NFT lifecycle: generation at mint time and
// the evolution cycles that rewrite traits, artwork and on-chain state.
package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-openapi/swag"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/canister"
	"github.com/picha-labs/picha/common/events"
	"github.com/picha-labs/picha/common/icp"
	"github.com/picha-labs/picha/core/evolution"
	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/core/prompt"
	"github.com/picha-labs/picha/core/tracker"
	"github.com/picha-labs/picha/dao/mintevent"
	"github.com/picha-labs/picha/dao/nft"
	"github.com/picha-labs/picha/stability"
	"github.com/picha-labs/picha/types"
)

const DefaultEvolutionPeriod = 30 * 24 * time.Hour

type Engine struct {
	nftModel       nft.NftModel
	mintEventModel mintevent.MintEventModel
	tracker        *tracker.Tracker
	prompts        *prompt.Generator
	evolution      *evolution.Engine
	canister       *canister.Client
	stability      *stability.Client
	publisher      *events.Publisher

	evolutionPeriod time.Duration
	driftStrength   float64
}

type Params struct {
	NftModel        nft.NftModel
	MintEventModel  mintevent.MintEventModel
	Tracker         *tracker.Tracker
	Prompts         *prompt.Generator
	Evolution       *evolution.Engine
	Canister        *canister.Client
	Stability       *stability.Client
	Publisher       *events.Publisher
	EvolutionPeriod time.Duration
	DriftStrength   float64
}

func New(p Params) *Engine {
	if p.EvolutionPeriod <= 0 {
		p.EvolutionPeriod = DefaultEvolutionPeriod
	}
	if p.DriftStrength <= 0 {
		p.DriftStrength = evolution.DefaultDriftStrength
	}
	return &Engine{
		nftModel:        p.NftModel,
		mintEventModel:  p.MintEventModel,
		tracker:         p.Tracker,
		prompts:         p.Prompts,
		evolution:       p.Evolution,
		canister:        p.Canister,
		stability:       p.Stability,
		publisher:       p.Publisher,
		evolutionPeriod: p.EvolutionPeriod,
		driftStrength:   p.DriftStrength,
	}
}

type CreateRequest struct {
	Artist    string
	EventType model.EventType
	Mode      model.GenerationMode
	Prompt    string
	Factors   model.UniquenessFactors
}

// CreateNft runs the whole mint flow: validation, slot reservation,
// prompt and image generation, persistence and the canister mint. The
// reserved slot is released when any later step fails.
func (e *Engine) CreateNft(ctx context.Context, req *CreateRequest) (*nft.Nft, *model.ScarcityInfo, error) {
	logger := logx.WithContext(ctx)

	if !e.prompts.IsKnownArtist(req.Artist) {
		return nil, nil, types.AppErrInvalidArtist
	}
	if err := icp.ValidatePrincipal(req.Factors.WalletPrincipal); err != nil {
		return nil, nil, err
	}
	if req.Factors.WalletAccountId == "" {
		accountId, err := icp.AccountId(req.Factors.WalletPrincipal)
		if err != nil {
			return nil, nil, err
		}
		req.Factors.WalletAccountId = accountId
	}

	traits := evolution.InitialTraits(&req.Factors)
	promptText, err := e.prompts.Generate(req.Mode, req.Artist, req.EventType,
		req.Prompt, &req.Factors, &traits)
	if err != nil {
		return nil, nil, err
	}

	scarcity, err := e.tracker.ReserveSlot(ctx, req.Artist, req.EventType)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := e.tracker.ReleaseSlot(ctx, req.Artist, req.EventType); err != nil {
			logger.Errorf("fail to release slot for %s-%s: %v", req.Artist, req.EventType, err)
		}
	}

	nftId := uuid.NewString()
	seed := stability.Seed(req.Factors.CombinedSeed())
	imageUrl, err := e.stability.Generate(ctx, nftId, promptText, seed)
	if err != nil {
		release()
		return nil, nil, err
	}

	now := time.Now().UTC()
	history := []model.EvolutionEntry{{
		Version:    0,
		Timestamp:  now.Format(time.RFC3339),
		Event:      "mint",
		ImageUrl:   imageUrl,
		Traits:     traits,
		PromptUsed: promptText,
	}}
	row := &nft.Nft{
		NftId:              nftId,
		Artist:             req.Artist,
		EventType:          string(req.EventType),
		GenerationMode:     string(req.Mode),
		PromptUsed:         promptText,
		ImageUrl:           imageUrl,
		OwnerPrincipal:     req.Factors.WalletPrincipal,
		OwnerAccountId:     req.Factors.WalletAccountId,
		GeneticTraits:      mustJson(traits),
		UniquenessFactors:  mustJson(req.Factors),
		EvolutionHistory:   mustJson(history),
		RarityScore:        traits.RarityScore(),
		EvolutionPeriodSec: int64(e.evolutionPeriod / time.Second),
		LastEvolvedAt:      now,
		CanisterStatus:     nft.CanisterStatusPendingMint,
	}
	if err := e.nftModel.CreateNft(row); err != nil {
		release()
		return nil, nil, types.AppErrInternal
	}

	mintEvent := &mintevent.MintEvent{
		NftId:          nftId,
		Artist:         req.Artist,
		EventType:      string(req.EventType),
		MintNumber:     scarcity.MintedCount,
		TotalSupply:    scarcity.TotalLimit,
		RarityTier:     scarcity.RarityTier(),
		CanisterStatus: nft.CanisterStatusPendingMint,
	}
	if err := e.mintEventModel.CreateMintEvent(mintEvent); err != nil {
		logger.Errorf("fail to record mint event for %s: %v", nftId, err)
	}

	e.publishMint(ctx, row, scarcity)
	e.mintOnCanister(ctx, row, scarcity)
	return row, scarcity, nil
}

// EvolveNft runs one evolution cycle on a stored NFT. With metrics the
// traits follow the owner's social signal; without them the cycle falls
// back to random drift. The two never stack, keeping each cycle inside
// the per-trait change cap.
func (e *Engine) EvolveNft(ctx context.Context, row *nft.Nft, metrics *evolution.SocialMetrics) (*nft.Nft, error) {
	logger := logx.WithContext(ctx)

	var traits model.GeneticTraits
	if err := json.Unmarshal([]byte(row.GeneticTraits), &traits); err != nil {
		return nil, errors.Wrapf(err, "nft %s has malformed traits", row.NftId)
	}
	var factors model.UniquenessFactors
	if err := json.Unmarshal([]byte(row.UniquenessFactors), &factors); err != nil {
		return nil, errors.Wrapf(err, "nft %s has malformed factors", row.NftId)
	}
	var history []model.EvolutionEntry
	if err := json.Unmarshal([]byte(row.EvolutionHistory), &history); err != nil {
		return nil, errors.Wrapf(err, "nft %s has malformed history", row.NftId)
	}

	var changed []string
	var impact map[string]interface{}
	if metrics != nil {
		traits, changed = evolution.ApplySocial(traits, metrics)
		impact = map[string]interface{}{
			"engagement_score": metrics.EngagementScore,
			"sentiment_score":  metrics.SentimentScore,
			"mention_count":    metrics.MentionCount,
			"post_frequency":   metrics.PostFrequency,
			"keyword_matches":  metrics.KeywordMatches,
		}
	} else {
		traits = e.evolution.Drift(traits, e.driftStrength*traits.EvolutionSpeed)
	}

	eventType, err := model.ParseEventType(row.EventType)
	if err != nil {
		return nil, err
	}
	promptText, err := e.prompts.Generate(model.ModeEvolution, row.Artist, eventType,
		"", &factors, &traits)
	if err != nil {
		return nil, err
	}

	version := row.EvolutionVersion + 1
	seed := stability.Seed(factors.CombinedSeed() + ":" + mustJson(version))
	imageUrl, err := e.stability.Generate(ctx, row.NftId, promptText, seed)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	history = append(history, model.EvolutionEntry{
		Version:           version,
		Timestamp:         now.Format(time.RFC3339),
		Event:             "evolution",
		ImageUrl:          imageUrl,
		Traits:            traits,
		PromptUsed:        promptText,
		SocialMediaImpact: impact,
		TraitsChanged:     changed,
	})

	row.GeneticTraits = mustJson(traits)
	row.EvolutionHistory = mustJson(history)
	row.EvolutionVersion = version
	row.PromptUsed = promptText
	row.ImageUrl = imageUrl
	row.RarityScore = traits.RarityScore()
	row.LastEvolvedAt = now
	if err := e.nftModel.UpdateNftInTx(row); err != nil {
		return nil, types.AppErrInternal
	}

	if err := e.publisher.Publish(ctx, events.EvolutionRoom(row.NftId), events.EventEvolutionUpdate, map[string]interface{}{
		"nft_id":         row.NftId,
		"version":        version,
		"image_url":      imageUrl,
		"genetic_traits": traits,
		"traits_changed": changed,
	}); err != nil {
		logger.Errorf("fail to publish evolution update for %s: %v", row.NftId, err)
	}

	e.updateOnCanister(ctx, row)
	return row, nil
}

// DueForEvolution lists NFTs whose evolution period has elapsed.
func (e *Engine) DueForEvolution(limit int) ([]*nft.Nft, error) {
	rows, err := e.nftModel.GetNftsDueForEvolution(time.Now().UTC(), limit)
	if err == types.DbErrNotFound {
		return nil, nil
	}
	return rows, err
}

// RetryCanister re-drives NFTs stuck in a failed or pending canister
// state, returning how many succeeded and failed.
func (e *Engine) RetryCanister(ctx context.Context, limit int) (retried, failed int64) {
	logger := logx.WithContext(ctx)
	for _, status := range []string{
		nft.CanisterStatusPendingMint, nft.CanisterStatusFailedMint, nft.CanisterStatusFailedUpdate,
	} {
		rows, err := e.nftModel.GetNftsByCanisterStatus(status, limit)
		if err == types.DbErrNotFound {
			continue
		} else if err != nil {
			logger.Errorf("fail to load %s nfts: %v", status, err)
			continue
		}
		for _, row := range rows {
			if status == nft.CanisterStatusFailedUpdate {
				e.updateOnCanister(ctx, row)
			} else {
				scarcity, err := e.tracker.GetScarcity(ctx, row.Artist, model.EventType(row.EventType))
				if err != nil {
					failed++
					continue
				}
				if err := e.mintEventModel.IncrementRetryCount(row.NftId); err != nil {
					logger.Errorf("fail to bump retry count for %s: %v", row.NftId, err)
				}
				e.mintOnCanister(ctx, row, scarcity)
			}
			if row.CanisterStatus == nft.CanisterStatusMinted {
				retried++
			} else {
				failed++
			}
		}
	}
	return retried, failed
}

func (e *Engine) mintOnCanister(ctx context.Context, row *nft.Nft, scarcity *model.ScarcityInfo) {
	logger := logx.WithContext(ctx)
	payload, err := e.payload(row, scarcity)
	if err == nil {
		var result *canister.MintResult
		if result, err = e.canister.Mint(ctx, payload); err == nil {
			row.CanisterStatus = nft.CanisterStatusMinted
			row.CanisterTokenId = result.TokenId
			if err := e.nftModel.UpdateCanisterStatus(row.NftId, row.CanisterStatus, result.TokenId); err != nil {
				logger.Errorf("fail to mark %s minted: %v", row.NftId, err)
			}
			e.recordMintOutcome(ctx, row.NftId, row.CanisterStatus, "")
			return
		}
	}
	logger.Errorf("canister mint failed for %s: %v", row.NftId, err)
	row.CanisterStatus = nft.CanisterStatusFailedMint
	if err := e.nftModel.UpdateCanisterStatus(row.NftId, row.CanisterStatus, 0); err != nil {
		logger.Errorf("fail to mark %s failed_mint: %v", row.NftId, err)
	}
	e.recordMintOutcome(ctx, row.NftId, row.CanisterStatus, err.Error())
}

func (e *Engine) recordMintOutcome(ctx context.Context, nftId, canisterStatus, failureReason string) {
	if err := e.mintEventModel.UpdateMintOutcome(nftId, canisterStatus, failureReason); err != nil {
		logx.WithContext(ctx).Errorf("fail to record mint outcome for %s: %v", nftId, err)
	}
}

func (e *Engine) updateOnCanister(ctx context.Context, row *nft.Nft) {
	logger := logx.WithContext(ctx)
	payload, err := e.payload(row, nil)
	if err == nil {
		err = e.canister.UpdateNft(ctx, payload)
	}
	if err != nil {
		logger.Errorf("canister update failed for %s: %v", row.NftId, err)
		row.CanisterStatus = nft.CanisterStatusFailedUpdate
	} else if row.CanisterStatus == nft.CanisterStatusFailedUpdate {
		row.CanisterStatus = nft.CanisterStatusMinted
	}
	if err := e.nftModel.UpdateCanisterStatus(row.NftId, row.CanisterStatus, row.CanisterTokenId); err != nil {
		logger.Errorf("fail to update canister status for %s: %v", row.NftId, err)
	}
}

func (e *Engine) publishMint(ctx context.Context, row *nft.Nft, scarcity *model.ScarcityInfo) {
	logger := logx.WithContext(ctx)
	if err := e.publisher.Publish(ctx, events.ScarcityRoom(row.Artist, row.EventType),
		events.EventScarcityUpdate, scarcity.View()); err != nil {
		logger.Errorf("fail to publish scarcity update: %v", err)
	}
	if err := e.publisher.Publish(ctx, "", events.EventNewMint, map[string]interface{}{
		"nft_id":       row.NftId,
		"artist":       row.Artist,
		"event_type":   row.EventType,
		"mint_number":  scarcity.MintedCount,
		"total_supply": scarcity.TotalLimit,
		"rarity_tier":  scarcity.RarityTier(),
	}); err != nil {
		logger.Errorf("fail to publish new mint: %v", err)
	}
}

func (e *Engine) payload(row *nft.Nft, scarcity *model.ScarcityInfo) (*canister.NftPayload, error) {
	var traits model.GeneticTraits
	if err := json.Unmarshal([]byte(row.GeneticTraits), &traits); err != nil {
		return nil, errors.Wrapf(err, "nft %s has malformed traits", row.NftId)
	}
	meta, err := nftMetadata(row, traits)
	if err != nil {
		return nil, errors.Wrapf(err, "nft %s metadata", row.NftId)
	}
	payload := &canister.NftPayload{
		NftId:       row.NftId,
		Name:        meta.Name,
		Description: meta.Description,
		ImageUrl:    meta.Image,
		Owner:       row.OwnerPrincipal,
		Version:     row.EvolutionVersion,
		Attributes: map[string]string{
			"artist":     row.Artist,
			"event_type": row.EventType,
			"mode":       row.GenerationMode,
		},
		TraitAttributes: json.RawMessage(meta.Attributes),
	}
	if scarcity != nil {
		payload.ScarcityInfo = map[string]interface{}{
			"combination":      scarcity.Combination,
			"total_limit":      scarcity.TotalLimit,
			"minted_count":     scarcity.MintedCount,
			"rarity_score":     scarcity.RarityScore,
			"price_multiplier": scarcity.PriceMultiplier,
		}
	}
	return payload, nil
}

// nftMetadata builds and validates the display metadata pushed on chain.
func nftMetadata(row *nft.Nft, traits model.GeneticTraits) (*model.NftMetadata, error) {
	attributes := []interface{}{
		&model.PropertiesAttribute{Name: swag.String("artist"), Value: row.Artist},
		&model.PropertiesAttribute{Name: swag.String("event_type"), Value: row.EventType},
		&model.PropertiesAttribute{Name: swag.String("generation_mode"), Value: row.GenerationMode},
		statAttribute("luminosity", traits.Luminosity),
		statAttribute("architectural_complexity", traits.ArchitecturalComplexity),
		statAttribute("ethereal_quality", traits.EtherealQuality),
		statAttribute("evolution_speed", traits.EvolutionSpeed),
		statAttribute("style_intensity", traits.StyleIntensity),
		statAttribute("temporal_resonance", traits.TemporalResonance),
	}
	raw, err := json.Marshal(attributes)
	if err != nil {
		return nil, errors.Wrap(err, "marshal attributes")
	}
	meta := &model.NftMetadata{
		Image:       row.ImageUrl,
		Name:        row.Artist + " / " + row.EventType + " #" + row.NftId[:8],
		Description: row.PromptUsed,
		Attributes:  string(raw),
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

func statAttribute(name string, value float64) *model.Attribute {
	return &model.Attribute{
		DisplayType: swag.String(model.AttributesStats),
		Name:        swag.String(name),
		Value:       swag.Int64(int64(value * 100)),
		MaxValue:    swag.Int64(100),
	}
}

func mustJson(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
