package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/picha-labs/picha/service/apiserver/internal/logic/info"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
)

func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := info.NewHealthLogic(r.Context(), svcCtx).Health()
		respond(w, resp, err)
	}
}

func ArtistsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := info.NewArtistsLogic(r.Context(), svcCtx).Artists()
		respond(w, resp, err)
	}
}

func EventTypesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := info.NewArtistsLogic(r.Context(), svcCtx).EventTypes()
		respond(w, resp, err)
	}
}

func CombinationsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := info.NewCombinationsLogic(r.Context(), svcCtx).Combinations()
		respond(w, resp, err)
	}
}

func respond(w http.ResponseWriter, resp interface{}, err error) {
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OkJson(w, resp)
}
