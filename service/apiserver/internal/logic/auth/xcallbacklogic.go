package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/dao/socialauth"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type XCallbackLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewXCallbackLogic(ctx context.Context, svcCtx *svc.ServiceContext) *XCallbackLogic {
	return &XCallbackLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// XCallback finishes the OAuth flow and stores the sealed token pair
// against the wallet.
func (l *XCallbackLogic) XCallback(req *types.ReqAuthCallback) (*types.AuthCallbackResp, error) {
	cached, ok := l.svcCtx.MemCache.Get("xauth:" + req.OauthToken)
	if !ok {
		return nil, types2.AppErrUnauthorized
	}
	pending := cached.(*pendingAuth)
	l.svcCtx.MemCache.Delete("xauth:" + req.OauthToken)

	access, err := l.svcCtx.SocialClient.CompleteAuth(l.ctx, req.OauthToken, pending.RequestSecret, req.OauthVerifier)
	if err != nil {
		l.Errorf("fail to complete x auth: %v", err)
		return nil, types2.AppErrUnauthorized
	}
	if access.UserId == "" || access.ScreenName == "" {
		verified, err := l.svcCtx.SocialClient.VerifyCredentials(l.ctx, access)
		if err != nil {
			l.Errorf("fail to verify x credentials: %v", err)
			return nil, types2.AppErrUnauthorized
		}
		access = verified
	}

	tokenSealed, err := l.svcCtx.Cipher.Encrypt(access.Token)
	if err != nil {
		return nil, types2.AppErrInternal
	}
	secretSealed, err := l.svcCtx.Cipher.Encrypt(access.Secret)
	if err != nil {
		return nil, types2.AppErrInternal
	}

	if err := l.svcCtx.SocialAuthModel.UpsertAuth(&socialauth.SocialAuth{
		WalletPrincipal:    pending.WalletPrincipal,
		Platform:           socialauth.PlatformX,
		SocialUserId:       access.UserId,
		SocialUsername:     access.ScreenName,
		AccessTokenSealed:  tokenSealed,
		AccessSecretSealed: secretSealed,
	}); err != nil {
		return nil, types2.AppErrInternal
	}

	return &types.AuthCallbackResp{
		WalletPrincipal: pending.WalletPrincipal,
		Platform:        socialauth.PlatformX,
		Username:        access.ScreenName,
		Connected:       true,
	}, nil
}
