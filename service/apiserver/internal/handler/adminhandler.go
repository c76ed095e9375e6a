package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/picha-labs/picha/service/apiserver/internal/logic/admin"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	types2 "github.com/picha-labs/picha/types"
)

// requireApiKey guards admin endpoints with the X-API-KEY header.
func requireApiKey(svcCtx *svc.ServiceContext, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svcCtx.Config.Admin.ApiKey == "" || r.Header.Get("X-API-KEY") != svcCtx.Config.Admin.ApiKey {
			httpx.Error(w, types2.AppErrUnauthorized)
			return
		}
		next(w, r)
	}
}

func CanisterStatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return requireApiKey(svcCtx, func(w http.ResponseWriter, r *http.Request) {
		resp, err := admin.NewCanisterLogic(r.Context(), svcCtx).Status()
		respond(w, resp, err)
	})
}

func CanisterInfoHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return requireApiKey(svcCtx, func(w http.ResponseWriter, r *http.Request) {
		resp, err := admin.NewCanisterLogic(r.Context(), svcCtx).Info()
		respond(w, resp, err)
	})
}

func CanisterNftsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return requireApiKey(svcCtx, func(w http.ResponseWriter, r *http.Request) {
		resp, err := admin.NewCanisterLogic(r.Context(), svcCtx).ListNfts()
		respond(w, resp, err)
	})
}

func CanisterRetryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return requireApiKey(svcCtx, func(w http.ResponseWriter, r *http.Request) {
		resp, err := admin.NewCanisterLogic(r.Context(), svcCtx).Retry()
		respond(w, resp, err)
	})
}

func CanisterStatsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return requireApiKey(svcCtx, func(w http.ResponseWriter, r *http.Request) {
		resp, err := admin.NewCanisterLogic(r.Context(), svcCtx).Stats()
		respond(w, resp, err)
	})
}

func SyncCheckHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return requireApiKey(svcCtx, func(w http.ResponseWriter, r *http.Request) {
		resp, err := admin.NewCanisterLogic(r.Context(), svcCtx).SyncCheck()
		respond(w, resp, err)
	})
}
