package handler

import (
	"net/http"
	"net/url"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/picha-labs/picha/service/apiserver/internal/logic/auth"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
)

// XInitiateHandler starts the oauth flow for clients driving the dance
// themselves and wanting the authorize url as json.
func XInitiateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqAuthInitiate
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := auth.NewXInitiateLogic(r.Context(), svcCtx).XInitiate(&req)
		respond(w, resp, err)
	}
}

// XInitiateRedirectHandler starts the oauth flow for browsers: a 302
// straight to the provider's authorize page, so the frontend can link
// the connect button directly at this route.
func XInitiateRedirectHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqAuthInitiateRedirect
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := auth.NewXInitiateLogic(r.Context(), svcCtx).
			XInitiate(&types.ReqAuthInitiate{WalletPrincipal: req.WalletPrincipal})
		if err != nil {
			redirectOrError(w, r, svcCtx.Config.FrontendBase(), map[string]string{
				"auth_status": "error",
				"message":     "failed_to_initiate_oauth",
			}, err)
			return
		}
		http.Redirect(w, r, resp.AuthorizeUrl, http.StatusFound)
	}
}

// XCallbackHandler finishes the oauth flow and sends the browser back
// to the frontend with the outcome in the query string. Without a
// configured frontend the outcome comes back as json.
func XCallbackHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqAuthCallback
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		base := svcCtx.Config.FrontendBase()
		resp, err := auth.NewXCallbackLogic(r.Context(), svcCtx).XCallback(&req)
		if err != nil {
			redirectOrError(w, r, base, map[string]string{
				"auth_status": "error",
				"message":     "failed_to_complete_oauth",
			}, err)
			return
		}
		if base == "" {
			httpx.OkJson(w, resp)
			return
		}
		http.Redirect(w, r, frontendRedirectUrl(base, map[string]string{
			"auth_status":      "success",
			"platform":         resp.Platform,
			"username":         resp.Username,
			"wallet_principal": resp.WalletPrincipal,
		}), http.StatusFound)
	}
}

func redirectOrError(w http.ResponseWriter, r *http.Request, base string, params map[string]string, err error) {
	if base == "" {
		httpx.Error(w, err)
		return
	}
	http.Redirect(w, r, frontendRedirectUrl(base, params), http.StatusFound)
}

// frontendRedirectUrl builds the url the browser lands on after the
// oauth dance, carrying the outcome as query parameters.
func frontendRedirectUrl(base string, params map[string]string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
