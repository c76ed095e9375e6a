package apiserver

import (
	"context"
	"net/http"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/proc"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/picha-labs/picha/service/apiserver/internal/config"
	"github.com/picha-labs/picha/service/apiserver/internal/flowctrl"
	"github.com/picha-labs/picha/service/apiserver/internal/handler"
	"github.com/picha-labs/picha/service/apiserver/internal/metrics"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/ws"
	"github.com/picha-labs/picha/types"
)

func Run(configFile string) error {
	var c config.Config
	conf.MustLoad(configFile, &c)
	logx.MustSetup(c.LogConf)
	logx.DisableStat()

	if err := c.FlowControl.Validate(); err != nil {
		return err
	}

	metrics.InitMetricsContext()
	svcCtx := svc.NewServiceContext(c)
	if err := migrate(svcCtx); err != nil {
		return err
	}

	server := rest.MustNewServer(c.RestConf, rest.WithCors(c.CorsAllowOrigins...))
	server.Use(metrics.MetricsHandler)
	server.Use(flowctrl.FlowControlHandler(c.FlowControl))

	hub := ws.NewHub()
	bridgeCtx, cancelBridge := context.WithCancel(context.Background())
	go hub.RunRedisBridge(bridgeCtx, svcCtx.RedisClient)

	handler.RegisterHandlers(server, svcCtx, hub)
	httpx.SetErrorHandler(errorHandler)

	proc.AddShutdownListener(func() {
		logx.Info("start to shutdown apiserver......")
		cancelBridge()
		_ = logx.Close()
	})

	logx.Infof("apiserver is starting at %s:%d......", c.Host, c.Port)
	server.Start()
	return nil
}

func errorHandler(err error) (int, interface{}) {
	appErr, ok := err.(*types.Error)
	if !ok {
		return http.StatusInternalServerError, types.AppErrInternal
	}
	switch appErr {
	case types.AppErrUnauthorized:
		return http.StatusUnauthorized, appErr
	case types.AppErrNftNotFound, types.DbErrNotFound:
		return http.StatusNotFound, appErr
	case types.AppErrCombinationSoldOut, types.AppErrAlreadyOnWaitlist:
		return http.StatusConflict, appErr
	case types.AppErrTooManyRequests:
		return http.StatusTooManyRequests, appErr
	case types.AppErrInternal, types.DbErrSqlOperation, types.AppErrCanisterUnavailable,
		types.AppErrImageGeneration:
		return http.StatusInternalServerError, appErr
	}
	return http.StatusBadRequest, appErr
}

func migrate(svcCtx *svc.ServiceContext) error {
	if err := svcCtx.NftModel.CreateNftTable(); err != nil {
		return err
	}
	if err := svcCtx.CombinationModel.CreateCombinationTable(); err != nil {
		return err
	}
	if err := svcCtx.CombinationModel.SeedCombinations(); err != nil {
		return err
	}
	if err := svcCtx.WaitlistModel.CreateWaitlistTable(); err != nil {
		return err
	}
	if err := svcCtx.SocialAuthModel.CreateSocialAuthTable(); err != nil {
		return err
	}
	if err := svcCtx.SocialMetricModel.CreateSocialMetricTable(); err != nil {
		return err
	}
	return svcCtx.MintEventModel.CreateMintEventTable()
}
