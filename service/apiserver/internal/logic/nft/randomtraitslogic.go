package nft

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/evolution"
	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
)

type RandomTraitsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRandomTraitsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RandomTraitsLogic {
	return &RandomTraitsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// RandomTraits samples a fresh trait set, used by the frontend preview.
func (l *RandomTraitsLogic) RandomTraits() (*types.TraitsResp, error) {
	factors := model.UniquenessFactors{
		LocationHash:  uuid.NewString(),
		TimestampSeed: strconv.FormatInt(time.Now().UnixNano(), 10),
		WalletEntropy: strconv.FormatInt(rand.Int63(), 10),
	}
	traits := evolution.InitialTraits(&factors)
	return &types.TraitsResp{
		Traits:      traits,
		RarityScore: traits.RarityScore(),
	}, nil
}
