package auth

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/common/icp"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

// pendingAuthTtl bounds how long a started oauth flow may sit before
// the callback arrives.
const pendingAuthTtl = 15 * time.Minute

type pendingAuth struct {
	WalletPrincipal string
	RequestSecret   string
}

type XInitiateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewXInitiateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *XInitiateLogic {
	return &XInitiateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// XInitiate starts the OAuth flow for connecting a wallet to an X
// account, parking the request secret until the callback.
func (l *XInitiateLogic) XInitiate(req *types.ReqAuthInitiate) (*types.AuthInitiateResp, error) {
	if err := icp.ValidatePrincipal(req.WalletPrincipal); err != nil {
		return nil, err
	}

	token, err := l.svcCtx.SocialClient.InitiateAuth(l.ctx)
	if err != nil {
		l.Errorf("fail to initiate x auth: %v", err)
		return nil, types2.AppErrInternal
	}

	l.svcCtx.MemCache.Set("xauth:"+token.Token, &pendingAuth{
		WalletPrincipal: req.WalletPrincipal,
		RequestSecret:   token.Secret,
	}, pendingAuthTtl)

	return &types.AuthInitiateResp{
		AuthorizeUrl: token.AuthorizeUrl,
		RequestToken: token.Token,
	}, nil
}
