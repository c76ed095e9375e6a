package types

import "github.com/picha-labs/picha/core/model"

type (
	HealthResp struct {
		Status    string            `json:"status"`
		Timestamp string            `json:"timestamp"`
		Services  map[string]string `json:"services"`
	}

	ArtistsResp struct {
		Artists []string `json:"artists"`
	}

	EventTypesResp struct {
		EventTypes []string `json:"event_types"`
	}

	CombinationInfo struct {
		model.ScarcityView
		IsAvailable           bool   `json:"is_available"`
		WaitlistCount         int64  `json:"waitlist_count"`
		EstimatedAvailability string `json:"estimated_availability"`
	}

	CombinationsResp struct {
		Combinations []CombinationInfo `json:"combinations"`
	}

	ReqCheckScarcity struct {
		Artist    string `json:"artist"`
		EventType string `json:"event_type"`
	}

	CheckScarcityResp struct {
		Available     bool               `json:"available"`
		ScarcityInfo  model.ScarcityView `json:"scarcity_info"`
		WaitlistCount int64              `json:"waitlist_count"`
	}

	ReqCreateNft struct {
		Artist            string                  `json:"artist"`
		EventType         string                  `json:"event_type"`
		Mode              string                  `json:"mode,optional"`
		Prompt            string                  `json:"prompt,optional"`
		UniquenessFactors model.UniquenessFactors `json:"uniqueness_factors"`
	}

	NftResp struct {
		NftId            string                 `json:"nft_id"`
		Artist           string                 `json:"artist"`
		EventType        string                 `json:"event_type"`
		Mode             string                 `json:"mode"`
		PromptUsed       string                 `json:"prompt_used"`
		ImageUrl         string                 `json:"image_url"`
		Owner            string                 `json:"owner"`
		OwnerAccountId   string                 `json:"owner_account_id"`
		GeneticTraits    model.GeneticTraits    `json:"genetic_traits"`
		EvolutionVersion int64                  `json:"evolution_version"`
		RarityScore      float64                `json:"rarity_score"`
		CanisterStatus   string                 `json:"canister_status"`
		CanisterTokenId  int64                  `json:"canister_token_id,omitempty"`
		ScarcityInfo     *model.ScarcityView    `json:"scarcity_info,omitempty"`
		CreatedAt        string                 `json:"created_at"`
		LastEvolvedAt    string                 `json:"last_evolved_at"`
	}

	ReqListNfts struct {
		Owner  string `form:"owner,optional"`
		Limit  int    `form:"limit,default=20,range=[1:100]"`
		Offset int    `form:"offset,default=0"`
	}

	NftsResp struct {
		Total int64     `json:"total"`
		Nfts  []NftResp `json:"nfts"`
	}

	ReqNftId struct {
		NftId string `path:"id"`
	}

	EvolutionHistoryResp struct {
		NftId              string                 `json:"nft_id"`
		Version            int64                  `json:"current_version"`
		TotalEvolutions    int64                  `json:"total_evolutions"`
		History            []model.EvolutionEntry `json:"history"`
		TraitChangeSummary map[string]int64       `json:"trait_change_summary"`
	}

	ReqEvolveNft struct {
		NftId string `json:"nft_id"`
	}

	ReqGeneratePrompt struct {
		Artist            string                  `json:"artist"`
		EventType         string                  `json:"event_type"`
		Mode              string                  `json:"mode,optional"`
		Prompt            string                  `json:"prompt,optional"`
		UniquenessFactors model.UniquenessFactors `json:"uniqueness_factors"`
	}

	PromptResp struct {
		Prompt string              `json:"prompt"`
		Seed   int64               `json:"seed"`
		Traits model.GeneticTraits `json:"genetic_traits"`
	}

	TraitsResp struct {
		Traits      model.GeneticTraits `json:"genetic_traits"`
		RarityScore float64             `json:"rarity_score"`
	}

	ReqNextGeneration struct {
		ParentIds []string `json:"parent_ids"`
	}

	NextGenerationResp struct {
		Traits      model.GeneticTraits `json:"genetic_traits"`
		RarityScore float64             `json:"rarity_score"`
		ParentIds   []string            `json:"parent_ids"`
	}

	ReqJoinWaitlist struct {
		Artist          string `json:"artist"`
		EventType       string `json:"event_type"`
		WalletPrincipal string `json:"wallet_principal"`
		Email           string `json:"email,optional"`
	}

	JoinWaitlistResp struct {
		Position int64 `json:"position"`
	}

	ReqListWaitlist struct {
		Artist    string `form:"artist"`
		EventType string `form:"event_type"`
	}

	ReqWaitlistCombo struct {
		Artist    string `path:"artist"`
		EventType string `path:"event_type"`
	}

	WaitlistEntry struct {
		WalletPrincipal  string `json:"wallet_principal"`
		JoinedAt         string `json:"joined_at"`
		NotificationSent bool   `json:"notification_sent"`
	}

	WaitlistResp struct {
		Count   int64           `json:"count"`
		Entries []WaitlistEntry `json:"entries"`
	}

	RecentMint struct {
		NftId       string `json:"nft_id"`
		Artist      string `json:"artist"`
		EventType   string `json:"event_type"`
		MintNumber  int64  `json:"mint_number"`
		TotalSupply int64  `json:"total_supply"`
		RarityTier  string `json:"rarity_tier"`
		MintedAt    string `json:"minted_at"`
	}

	RecentMintsResp struct {
		Mints []RecentMint `json:"mints"`
	}

	ReqAuthInitiate struct {
		WalletPrincipal string `json:"wallet_principal"`
	}

	ReqAuthInitiateRedirect struct {
		WalletPrincipal string `form:"wallet_principal"`
	}

	AuthInitiateResp struct {
		AuthorizeUrl string `json:"authorize_url"`
		RequestToken string `json:"request_token"`
	}

	ReqAuthCallback struct {
		OauthToken    string `form:"oauth_token"`
		OauthVerifier string `form:"oauth_verifier"`
	}

	AuthCallbackResp struct {
		WalletPrincipal string `json:"wallet_principal"`
		Platform        string `json:"platform"`
		Username        string `json:"username"`
		Connected       bool   `json:"connected"`
	}

	CanisterStatusResp struct {
		Healthy    bool   `json:"healthy"`
		CanisterId string `json:"canister_id"`
		Network    string `json:"network"`
		Cycles     int64  `json:"cycles"`
		Error      string `json:"error,omitempty"`
	}

	CanisterInfoResp struct {
		CanisterId string `json:"canister_id"`
		Network    string `json:"network"`
		Endpoint   string `json:"endpoint"`
		Timeout    string `json:"timeout"`
		MaxRetries int    `json:"max_retries"`
	}

	CanisterNftsResp struct {
		Count int64                    `json:"count"`
		Nfts  []map[string]interface{} `json:"nfts"`
	}

	CanisterRetryResp struct {
		Retried int64 `json:"retried"`
		Failed  int64 `json:"failed"`
	}

	CanisterStatsResp struct {
		CanisterInfo   CanisterInfoResp `json:"canister_info"`
		TotalLocal     int64            `json:"total_local"`
		StatusCounts   map[string]int64 `json:"status_counts"`
		SyncPercentage float64          `json:"sync_percentage"`
		Timestamp      string           `json:"timestamp"`
	}

	SyncIssue struct {
		NftId  string `json:"nft_id"`
		Reason string `json:"reason"`
	}

	SyncMismatch struct {
		NftId            string `json:"nft_id"`
		LocalVersion     int64  `json:"local_version"`
		CanisterVersion  int64  `json:"canister_version"`
		LocalImageUrl    string `json:"local_image_url"`
		CanisterImageUrl string `json:"canister_image_url"`
	}

	SyncCheckResp struct {
		Status             string         `json:"status"`
		DiscrepanciesFound bool           `json:"discrepancies_found"`
		LocalOnlyNfts      []SyncIssue    `json:"local_only_nfts"`
		CanisterOnlyNfts   []SyncIssue    `json:"canister_only_nfts"`
		MismatchedNfts     []SyncMismatch `json:"mismatched_nfts"`
		TotalLocalNfts     int64          `json:"total_local_nfts"`
		TotalCanisterNfts  int64          `json:"total_canister_nfts"`
		CanisterLatencyMs  int64          `json:"canister_latency_ms"`
	}
)
