package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	dao "github.com/picha-labs/picha/dao/nft"
	"github.com/picha-labs/picha/service/apiserver/internal/logic/nft"
	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/types"
)

func CreateNftHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqCreateNft
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := nft.NewCreateNftLogic(r.Context(), svcCtx).CreateNft(&req)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.WriteJson(w, mintStatusCode(resp.CanisterStatus), resp)
	}
}

// mintStatusCode separates a fully dual-stored mint from one whose
// canister write is still outstanding: 201 when the NFT landed on
// chain, 202 when it only exists locally for now.
func mintStatusCode(canisterStatus string) int {
	if canisterStatus == dao.CanisterStatusMinted {
		return http.StatusCreated
	}
	return http.StatusAccepted
}

func GetNftHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqNftId
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := nft.NewGetNftLogic(r.Context(), svcCtx).GetNft(&req)
		respond(w, resp, err)
	}
}

func ListNftsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqListNfts
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := nft.NewListNftsLogic(r.Context(), svcCtx).ListNfts(&req)
		respond(w, resp, err)
	}
}

func EvolutionHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqNftId
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := nft.NewEvolutionHistoryLogic(r.Context(), svcCtx).EvolutionHistory(&req)
		respond(w, resp, err)
	}
}

func EvolveNftHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqEvolveNft
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := nft.NewEvolveNftLogic(r.Context(), svcCtx).EvolveNft(&req)
		respond(w, resp, err)
	}
}

func CheckScarcityHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqCheckScarcity
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := nft.NewCheckScarcityLogic(r.Context(), svcCtx).CheckScarcity(&req)
		respond(w, resp, err)
	}
}

func GeneratePromptHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqGeneratePrompt
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := nft.NewGeneratePromptLogic(r.Context(), svcCtx).GeneratePrompt(&req)
		respond(w, resp, err)
	}
}

func RandomTraitsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := nft.NewRandomTraitsLogic(r.Context(), svcCtx).RandomTraits()
		respond(w, resp, err)
	}
}

func NextGenerationHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReqNextGeneration
		if err := httpx.Parse(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
		resp, err := nft.NewNextGenerationLogic(r.Context(), svcCtx).NextGeneration(&req)
		respond(w, resp, err)
	}
}
