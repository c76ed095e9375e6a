package model

import "math"

// GeneticTraits are the six evolvable visual parameters of an NFT. All
// values live in [0,1] except EvolutionSpeed which is bounded [0.1,0.9].
type GeneticTraits struct {
	Luminosity              float64 `json:"luminosity"`
	ArchitecturalComplexity float64 `json:"architectural_complexity"`
	EtherealQuality         float64 `json:"ethereal_quality"`
	EvolutionSpeed          float64 `json:"evolution_speed"`
	StyleIntensity          float64 `json:"style_intensity"`
	TemporalResonance       float64 `json:"temporal_resonance"`
}

// RarityScore measures how far the visual traits sit from the distribution
// center. EvolutionSpeed is a pacing parameter and does not contribute.
func (t *GeneticTraits) RarityScore() float64 {
	rarity := 0.0
	for _, v := range []float64{
		t.Luminosity, t.ArchitecturalComplexity, t.EtherealQuality,
		t.StyleIntensity, t.TemporalResonance,
	} {
		rarity += math.Abs(v-0.5) * 2
	}
	return math.Min(1.0, rarity/5.0)
}
