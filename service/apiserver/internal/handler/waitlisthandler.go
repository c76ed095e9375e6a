package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/picha-labs/picha/service/apiserver/internal/logic/waitlist"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
)

func JoinWaitlistHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqJoinWaitlist
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := waitlist.NewJoinWaitlistLogic(r.Context(), svcCtx).JoinWaitlist(&req)
		respond(w, resp, err)
	}
}

func ListWaitlistHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqListWaitlist
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := waitlist.NewListWaitlistLogic(r.Context(), svcCtx).ListWaitlist(&req)
		respond(w, resp, err)
	}
}

// WaitlistComboHandler serves the same listing with the combination
// addressed in the path instead of the query string.
func WaitlistComboHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqWaitlistCombo
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := waitlist.NewListWaitlistLogic(r.Context(), svcCtx).ListWaitlist(&types.ReqListWaitlist{
			Artist:    req.Artist,
			EventType: req.EventType,
		})
		respond(w, resp, err)
	}
}
