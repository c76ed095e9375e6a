package nft

import (
	"encoding/json"
	"time"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/dao/nft"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
)

func nftResp(row *nft.Nft, scarcity *model.ScarcityInfo) types.NftResp {
	var traits model.GeneticTraits
	_ = json.Unmarshal([]byte(row.GeneticTraits), &traits)

	resp := types.NftResp{
		NftId:            row.NftId,
		Artist:           row.Artist,
		EventType:        row.EventType,
		Mode:             row.GenerationMode,
		PromptUsed:       row.PromptUsed,
		ImageUrl:         row.ImageUrl,
		Owner:            row.OwnerPrincipal,
		OwnerAccountId:   row.OwnerAccountId,
		GeneticTraits:    traits,
		EvolutionVersion: row.EvolutionVersion,
		RarityScore:      row.RarityScore,
		CanisterStatus:   row.CanisterStatus,
		CanisterTokenId:  row.CanisterTokenId,
		CreatedAt:        row.CreatedAt.UTC().Format(time.RFC3339),
		LastEvolvedAt:    row.LastEvolvedAt.UTC().Format(time.RFC3339),
	}
	if scarcity != nil {
		view := scarcity.View()
		resp.ScarcityInfo = &view
	}
	return resp
}
