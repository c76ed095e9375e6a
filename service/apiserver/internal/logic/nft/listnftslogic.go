package nft

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type ListNftsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListNftsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListNftsLogic {
	return &ListNftsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListNftsLogic) ListNfts(req *types.ReqListNfts) (*types.NftsResp, error) {
	total, err := l.svcCtx.NftModel.GetNftsTotalCount()
	if err != nil {
		return nil, types2.AppErrInternal
	}
	resp := &types.NftsResp{Total: total, Nfts: make([]types.NftResp, 0)}
	if total == 0 {
		return resp, nil
	}

	if req.Owner != "" {
		daoRows, err := l.svcCtx.NftModel.GetNftsByOwner(req.Owner, req.Limit, req.Offset)
		if err != nil && err != types2.DbErrNotFound {
			return nil, types2.AppErrInternal
		}
		for _, row := range daoRows {
			resp.Nfts = append(resp.Nfts, nftResp(row, nil))
		}
		return resp, nil
	}

	daoRows, err := l.svcCtx.NftModel.GetNfts(req.Limit, req.Offset)
	if err != nil && err != types2.DbErrNotFound {
		return nil, types2.AppErrInternal
	}
	for _, row := range daoRows {
		resp.Nfts = append(resp.Nfts, nftResp(row, nil))
	}
	return resp, nil
}
