package waitlist

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type ListWaitlistLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListWaitlistLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListWaitlistLogic {
	return &ListWaitlistLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListWaitlistLogic) ListWaitlist(req *types.ReqListWaitlist) (*types.WaitlistResp, error) {
	if _, err := model.ParseEventType(req.EventType); err != nil {
		return nil, err
	}

	entries, err := l.svcCtx.WaitlistModel.GetEntries(req.Artist, req.EventType)
	if err != nil {
		return nil, types2.AppErrInternal
	}

	resp := &types.WaitlistResp{
		Count:   int64(len(entries)),
		Entries: make([]types.WaitlistEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, types.WaitlistEntry{
			WalletPrincipal:  entry.WalletPrincipal,
			JoinedAt:         entry.CreatedAt.UTC().Format(time.RFC3339),
			NotificationSent: entry.NotificationSent,
		})
	}
	return resp, nil
}
