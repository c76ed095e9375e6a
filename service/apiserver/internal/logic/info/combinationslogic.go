package info

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type CombinationsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCombinationsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CombinationsLogic {
	return &CombinationsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CombinationsLogic) Combinations() (*types.CombinationsResp, error) {
	infos, err := l.svcCtx.Tracker.GetAllScarcity(l.ctx)
	if err != nil {
		l.Errorf("fail to load combinations: %v", err)
		return nil, types2.AppErrInternal
	}

	resp := &types.CombinationsResp{Combinations: make([]types.CombinationInfo, 0, len(infos))}
	for _, info := range infos {
		waitlisted, err := l.svcCtx.WaitlistModel.GetEntries(info.Artist, string(info.EventType))
		if err != nil {
			return nil, types2.AppErrInternal
		}
		availability := "immediate"
		if info.IsSoldOut() {
			availability = "waitlist"
		}
		resp.Combinations = append(resp.Combinations, types.CombinationInfo{
			ScarcityView:          info.View(),
			IsAvailable:           info.IsAvailable(),
			WaitlistCount:         int64(len(waitlisted)),
			EstimatedAvailability: availability,
		})
	}
	return resp, nil
}
