package model

import "fmt"

const (
	TierCommon    = "Common"
	TierUncommon  = "Uncommon"
	TierRare      = "Rare"
	TierEpic      = "Epic"
	TierLegendary = "Legendary"
)

// ScarcityInfo describes the mint budget of one artist-event combination.
type ScarcityInfo struct {
	Artist          string    `json:"artist"`
	EventType       EventType `json:"event_type"`
	Combination     string    `json:"combination"`
	TotalLimit      int64     `json:"total_limit"`
	MintedCount     int64     `json:"minted_count"`
	RarityScore     float64   `json:"rarity_score"`
	PriceMultiplier float64   `json:"price_multiplier"`
}

// CombinationKey builds the canonical "<artist>-<event>" key.
func CombinationKey(artist string, eventType EventType) string {
	return fmt.Sprintf("%s-%s", artist, eventType)
}

func (s *ScarcityInfo) RemainingSlots() int64 {
	return s.TotalLimit - s.MintedCount
}

func (s *ScarcityInfo) IsAvailable() bool {
	return s.MintedCount < s.TotalLimit
}

func (s *ScarcityInfo) IsSoldOut() bool {
	return s.MintedCount >= s.TotalLimit
}

func (s *ScarcityInfo) IsLegendary() bool {
	return s.RarityScore >= 0.8
}

func (s *ScarcityInfo) RarityTier() string {
	switch {
	case s.RarityScore >= 0.8:
		return TierLegendary
	case s.RarityScore >= 0.6:
		return TierEpic
	case s.RarityScore >= 0.4:
		return TierRare
	case s.RarityScore >= 0.2:
		return TierUncommon
	default:
		return TierCommon
	}
}

// ScarcityView is the wire representation, with the derived fields the
// frontend consumes flattened in.
type ScarcityView struct {
	ScarcityInfo
	TotalSupply    int64  `json:"total_supply"`
	CurrentMint    int64  `json:"current_mint"`
	RemainingSlots int64  `json:"remaining_slots"`
	RarityTier     string `json:"rarity_tier"`
	IsLegendary    bool   `json:"is_legendary"`
	IsSoldOut      bool   `json:"is_sold_out"`
}

func (s *ScarcityInfo) View() ScarcityView {
	return ScarcityView{
		ScarcityInfo:   *s,
		TotalSupply:    s.TotalLimit,
		CurrentMint:    s.MintedCount,
		RemainingSlots: s.RemainingSlots(),
		RarityTier:     s.RarityTier(),
		IsLegendary:    s.IsLegendary(),
		IsSoldOut:      s.IsSoldOut(),
	}
}
