package info

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
)

type HealthLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthLogic {
	return &HealthLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthLogic) Health() (*types.HealthResp, error) {
	services := map[string]string{
		"database": "up",
		"redis":    "up",
		"canister": "up",
	}

	if sqlDB, err := l.svcCtx.DB.DB(); err != nil || sqlDB.PingContext(l.ctx) != nil {
		services["database"] = "down"
	}
	if err := l.svcCtx.RedisClient.Ping(l.ctx).Err(); err != nil {
		services["redis"] = "down"
	}
	if _, err := l.svcCtx.CanisterClient.CheckStatus(l.ctx); err != nil {
		services["canister"] = "down"
	}

	status := "healthy"
	for _, state := range services {
		if state != "up" {
			status = "degraded"
			break
		}
	}
	return &types.HealthResp{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}, nil
}
