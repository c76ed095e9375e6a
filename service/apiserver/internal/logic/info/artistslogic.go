package info

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
)

type ArtistsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewArtistsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ArtistsLogic {
	return &ArtistsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ArtistsLogic) Artists() (*types.ArtistsResp, error) {
	return &types.ArtistsResp{Artists: l.svcCtx.PromptGenerator.Artists()}, nil
}

func (l *ArtistsLogic) EventTypes() (*types.EventTypesResp, error) {
	eventTypes := make([]string, 0, len(model.EventTypes))
	for _, eventType := range model.EventTypes {
		eventTypes = append(eventTypes, string(eventType))
	}
	return &types.EventTypesResp{EventTypes: eventTypes}, nil
}
