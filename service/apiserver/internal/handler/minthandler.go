package handler

import (
	"net/http"

	"github.com/picha-labs/picha/service/apiserver/internal/logic/mint"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
)

func RecentMintsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := mint.NewRecentMintsLogic(r.Context(), svcCtx).RecentMints()
		respond(w, resp, err)
	}
}
