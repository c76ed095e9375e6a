package mint

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

const recentMintLimit = 20

type RecentMintsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRecentMintsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RecentMintsLogic {
	return &RecentMintsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RecentMintsLogic) RecentMints() (*types.RecentMintsResp, error) {
	rows, err := l.svcCtx.MintEventModel.GetRecentMintEvents(recentMintLimit)
	if err != nil {
		return nil, types2.AppErrInternal
	}

	resp := &types.RecentMintsResp{Mints: make([]types.RecentMint, 0, len(rows))}
	for _, row := range rows {
		resp.Mints = append(resp.Mints, types.RecentMint{
			NftId:       row.NftId,
			Artist:      row.Artist,
			EventType:   row.EventType,
			MintNumber:  row.MintNumber,
			TotalSupply: row.TotalSupply,
			RarityTier:  row.RarityTier,
			MintedAt:    row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}
