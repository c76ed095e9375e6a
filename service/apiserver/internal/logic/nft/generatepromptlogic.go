package nft

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/evolution"
	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
	"github.com/picha-labs/picha/stability"
	types2 "github.com/picha-labs/picha/types"
)

type GeneratePromptLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGeneratePromptLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GeneratePromptLogic {
	return &GeneratePromptLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GeneratePrompt previews the prompt and seed a mint with these inputs
// would produce, without reserving a slot or rendering an image.
func (l *GeneratePromptLogic) GeneratePrompt(req *types.ReqGeneratePrompt) (*types.PromptResp, error) {
	if !l.svcCtx.PromptGenerator.IsKnownArtist(req.Artist) {
		return nil, types2.AppErrInvalidArtist
	}
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

	traits := evolution.InitialTraits(&req.UniquenessFactors)
	promptText, err := l.svcCtx.PromptGenerator.Generate(mode, req.Artist, eventType,
		req.Prompt, &req.UniquenessFactors, &traits)
	if err != nil {
		return nil, err
	}

	return &types.PromptResp{
		Prompt: promptText,
		Seed:   stability.Seed(req.UniquenessFactors.CombinedSeed()),
		Traits: traits,
	}, nil
}
