package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/picha-labs/picha/service/apiserver/internal/svc"
	"github.com/picha-labs/picha/service/apiserver/internal/ws"
)

func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext, hub *ws.Hub) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/api/health",
				Handler: HealthHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/artists",
				Handler: ArtistsHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/events",
				Handler: EventTypesHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/event-types",
				Handler: EventTypesHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/combinations",
				Handler: CombinationsHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/check-scarcity",
				Handler: CheckScarcityHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/create-nft",
				Handler: CreateNftHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/nfts",
				Handler: ListNftsHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/nft/:id",
				Handler: GetNftHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/nft/:id/evolution",
				Handler: EvolutionHistoryHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/evolve-nft",
				Handler: EvolveNftHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/generate-prompt",
				Handler: GeneratePromptHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/random-traits",
				Handler: RandomTraitsHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/genetic-algorithm/next-generation",
				Handler: NextGenerationHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/waitlist",
				Handler: JoinWaitlistHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/waitlist",
				Handler: ListWaitlistHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/waitlist/:artist/:event_type",
				Handler: WaitlistComboHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/mints/recent",
				Handler: RecentMintsHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/auth/x-initiate",
				Handler: XInitiateHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/auth/x-initiate",
				Handler: XInitiateRedirectHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/auth/x-callback",
				Handler: XCallbackHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/canister-status",
				Handler: CanisterStatusHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/retry-canister-mints",
				Handler: CanisterRetryHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/sync-check",
				Handler: SyncCheckHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/admin/canister-stats",
				Handler: CanisterStatsHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/admin/canister/status",
				Handler: CanisterStatusHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/admin/canister/info",
				Handler: CanisterInfoHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/admin/canister/nfts",
				Handler: CanisterNftsHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/admin/canister/retry",
				Handler: CanisterRetryHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/images/:file",
				Handler: ImageHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/static/images/:file",
				Handler: ImageHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/ws",
				Handler: WsHandler(svcCtx, hub),
			},
		},
	)
}

func WsHandler(svcCtx *svc.ServiceContext, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, svcCtx.Config.Websocket.RateLimitMessages,
			svcCtx.Config.Websocket.RateLimitWindow, w, r)
	}
}

func ImageHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, svcCtx.StabilityClient.ImagePath(r.URL.Path))
	}
}
