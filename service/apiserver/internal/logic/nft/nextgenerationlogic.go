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

type NextGenerationLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewNextGenerationLogic(ctx context.Context, svcCtx *svc.ServiceContext) *NextGenerationLogic {
	return &NextGenerationLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// NextGeneration breeds offspring traits from the named parent NFTs.
func (l *NextGenerationLogic) NextGeneration(req *types.ReqNextGeneration) (*types.NextGenerationResp, error) {
	if len(req.ParentIds) < 2 {
		return nil, types2.AppErrNotEnoughParents
	}

	parents := make([]model.GeneticTraits, 0, len(req.ParentIds))
	for _, parentId := range req.ParentIds {
		row, err := l.svcCtx.NftModel.GetNftById(parentId)
		if err != nil {
			if err == types2.DbErrNotFound {
				return nil, types2.AppErrNftNotFound
			}
			return nil, types2.AppErrInternal
		}
		var traits model.GeneticTraits
		if err := json.Unmarshal([]byte(row.GeneticTraits), &traits); err != nil {
			l.Errorf("nft %s has malformed traits: %v", parentId, err)
			return nil, types2.AppErrInternal
		}
		parents = append(parents, traits)
	}

	child, err := l.svcCtx.Evolution.Breed(parents)
	if err != nil {
		return nil, err
	}
	return &types.NextGenerationResp{
		Traits:      child,
		RarityScore: child.RarityScore(),
		ParentIds:   req.ParentIds,
	}, nil
}
