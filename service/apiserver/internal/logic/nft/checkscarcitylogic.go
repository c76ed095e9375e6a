package nft

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/common/events"
	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type CheckScarcityLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCheckScarcityLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CheckScarcityLogic {
	return &CheckScarcityLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CheckScarcityLogic) CheckScarcity(req *types.ReqCheckScarcity) (*types.CheckScarcityResp, error) {
	if !l.svcCtx.PromptGenerator.IsKnownArtist(req.Artist) {
		return nil, types2.AppErrInvalidArtist
	}
	eventType, err := model.ParseEventType(req.EventType)
	if err != nil {
		return nil, err
	}

	info, err := l.svcCtx.Tracker.GetScarcity(l.ctx, req.Artist, eventType)
	if err != nil {
		return nil, types2.AppErrInternal
	}
	entries, err := l.svcCtx.WaitlistModel.GetEntries(req.Artist, req.EventType)
	if err != nil {
		return nil, types2.AppErrInternal
	}

	// keep clients watching this combination current even when nobody
	// is minting
	if err := l.svcCtx.Publisher.Publish(l.ctx, events.ScarcityRoom(req.Artist, req.EventType),
		events.EventScarcityUpdate, info.View()); err != nil {
		l.Errorf("fail to publish scarcity update for %s-%s: %v", req.Artist, req.EventType, err)
	}

	return &types.CheckScarcityResp{
		Available:     info.IsAvailable(),
		ScarcityInfo:  info.View(),
		WaitlistCount: int64(len(entries)),
	}, nil
}
