package model

// EvolutionEntry is one row of an NFT's evolution history, stored as a
// JSON array on the nft record. Version 0 is the mint itself.
type EvolutionEntry struct {
	Version           int64                  `json:"version"`
	Timestamp         string                 `json:"timestamp"`
	Event             string                 `json:"event"`
	ImageUrl          string                 `json:"image_url"`
	Traits            GeneticTraits          `json:"genetic_traits_at_evolution"`
	PromptUsed        string                 `json:"prompt_used"`
	SocialMediaImpact map[string]interface{} `json:"social_media_impact,omitempty"`
	TraitsChanged     []string               `json:"traits_changed,omitempty"`
}
