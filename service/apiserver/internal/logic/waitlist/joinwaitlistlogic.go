package waitlist

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/common/icp"
	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/dao/waitlist"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type JoinWaitlistLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewJoinWaitlistLogic(ctx context.Context, svcCtx *svc.ServiceContext) *JoinWaitlistLogic {
	return &JoinWaitlistLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *JoinWaitlistLogic) JoinWaitlist(req *types.ReqJoinWaitlist) (*types.JoinWaitlistResp, error) {
	if !l.svcCtx.PromptGenerator.IsKnownArtist(req.Artist) {
		return nil, types2.AppErrInvalidArtist
	}
	if _, err := model.ParseEventType(req.EventType); err != nil {
		return nil, err
	}
	if err := icp.ValidatePrincipal(req.WalletPrincipal); err != nil {
		return nil, err
	}

	entry := &waitlist.Waitlist{
		Artist:          req.Artist,
		EventType:       req.EventType,
		WalletPrincipal: req.WalletPrincipal,
		Email:           req.Email,
	}
	if err := l.svcCtx.WaitlistModel.CreateEntry(entry); err != nil {
		if err == types2.AppErrAlreadyOnWaitlist {
			return nil, err
		}
		return nil, types2.AppErrInternal
	}

	position, err := l.svcCtx.WaitlistModel.GetPosition(req.Artist, req.EventType, req.WalletPrincipal)
	if err != nil {
		l.Errorf("fail to read waitlist position: %v", err)
		return nil, types2.AppErrInternal
	}
	return &types.JoinWaitlistResp{Position: position}, nil
}
