package nft

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/evolution"
	"github.com/picha-labs/picha/dao/socialauth"
	"github.com/picha-labs/picha/service/apiserver/internal/metrics"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	types2 "github.com/picha-labs/picha/types"
)

type EvolveNftLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewEvolveNftLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EvolveNftLogic {
	return &EvolveNftLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// EvolveNft triggers one evolution cycle on demand, feeding in the
// owner's freshest social signal when an X account is connected.
func (l *EvolveNftLogic) EvolveNft(req *types.ReqEvolveNft) (*types.NftResp, error) {
	row, err := l.svcCtx.NftModel.GetNftById(req.NftId)
	if err != nil {
		if err == types2.DbErrNotFound {
			return nil, types2.AppErrNftNotFound
		}
		return nil, types2.AppErrInternal
	}

	metricsData := l.socialMetrics(row.OwnerPrincipal)
	updated, err := l.svcCtx.Engine.EvolveNft(l.ctx, row, metricsData)
	if err != nil {
		l.Errorf("fail to evolve nft %s: %v", req.NftId, err)
		return nil, err
	}

	metrics.EvolveNftMetricsInc()
	resp := nftResp(updated, nil)
	return &resp, nil
}

func (l *EvolveNftLogic) socialMetrics(owner string) *evolution.SocialMetrics {
	if _, err := l.svcCtx.SocialAuthModel.GetAuth(owner, socialauth.PlatformX); err != nil {
		return nil
	}
	stored, err := l.svcCtx.SocialMetricModel.GetLatestMetric(owner)
	if err != nil || time.Since(stored.CreatedAt) > l.svcCtx.Config.Evolution.SocialWindow {
		return nil
	}
	return &evolution.SocialMetrics{
		EngagementScore: stored.EngagementScore,
		SentimentScore:  stored.SentimentScore,
		MentionCount:    stored.MentionCount,
		PostFrequency:   stored.PostFrequency,
		KeywordMatches:  stored.KeywordMatches,
	}
}
