package nft

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type GetNftLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetNftLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetNftLogic {
	return &GetNftLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetNftLogic) GetNft(req *types.ReqNftId) (*types.NftResp, error) {
	row, err := l.svcCtx.NftModel.GetNftById(req.NftId)
	if err != nil {
		if err == types2.DbErrNotFound {
			return nil, types2.AppErrNftNotFound
		}
		return nil, types2.AppErrInternal
	}

	scarcity, err := l.svcCtx.Tracker.GetScarcity(l.ctx, row.Artist, model.EventType(row.EventType))
	if err != nil {
		l.Errorf("fail to load scarcity for %s: %v", row.NftId, err)
		scarcity = nil
	}

	resp := nftResp(row, scarcity)
	return &resp, nil
}
