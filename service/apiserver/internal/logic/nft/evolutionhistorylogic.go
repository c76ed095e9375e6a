package nft

import (
	"context"
	"encoding/json"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type EvolutionHistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewEvolutionHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EvolutionHistoryLogic {
	return &EvolutionHistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *EvolutionHistoryLogic) EvolutionHistory(req *types.ReqNftId) (*types.EvolutionHistoryResp, error) {
	row, err := l.svcCtx.NftModel.GetNftById(req.NftId)
	if err != nil {
		if err == types2.DbErrNotFound {
			return nil, types2.AppErrNftNotFound
		}
		return nil, types2.AppErrInternal
	}

	var history []model.EvolutionEntry
	if err := json.Unmarshal([]byte(row.EvolutionHistory), &history); err != nil {
		l.Errorf("nft %s has malformed history: %v", row.NftId, err)
		return nil, types2.AppErrInternal
	}
	totalEvolutions := int64(len(history)) - 1
	if totalEvolutions < 0 {
		totalEvolutions = 0
	}
	return &types.EvolutionHistoryResp{
		NftId:              row.NftId,
		Version:            row.EvolutionVersion,
		TotalEvolutions:    totalEvolutions,
		History:            history,
		TraitChangeSummary: traitChangeSummary(history),
	}, nil
}

// traitChangeSummary counts how often each trait moved across the
// recorded evolution entries. The mint entry carries no changes and
// contributes nothing.
func traitChangeSummary(history []model.EvolutionEntry) map[string]int64 {
	summary := make(map[string]int64)
	for _, entry := range history {
		for _, name := range entry.TraitsChanged {
			summary[name]++
		}
	}
	return summary
}
