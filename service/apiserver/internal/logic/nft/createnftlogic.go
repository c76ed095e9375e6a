package nft

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/engine"
	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/service/apiserver/internal/metrics"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type CreateNftLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateNftLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateNftLogic {
	return &CreateNftLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateNftLogic) CreateNft(req *types.ReqCreateNft) (*types.NftResp, error) {
	eventType, err := model.ParseEventType(req.EventType)
	if err != nil {
		return nil, err
	}
	mode := model.ModeSelection
	if req.Mode != "" {
		if mode, err = model.ParseGenerationMode(req.Mode); err != nil {
			return nil, err
		}
	}
	if mode == model.ModeEvolution {
		return nil, types2.AppErrInvalidMode
	}

	row, scarcity, err := l.svcCtx.Engine.CreateNft(l.ctx, &engine.CreateRequest{
		Artist:    req.Artist,
		EventType: eventType,
		Mode:      mode,
		Prompt:    req.Prompt,
		Factors:   req.UniquenessFactors,
	})
	if err != nil {
		return nil, err
	}

	metrics.CreateNftMetricsInc()
	resp := nftResp(row, scarcity)
	return &resp, nil
}
