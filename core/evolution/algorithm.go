// Package evolution implements the genetic trait engine: deterministic
// trait derivation at mint, random drift, social-signal driven trait
// shifts, and breeding of a next generation from parents.
package evolution

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/types"
)

const (
	// DefaultDriftStrength bounds a random drift step per trait.
	DefaultDriftStrength = 0.1
	// MaxSocialChange caps how far a single social cycle can move a trait.
	MaxSocialChange = 0.1
	// breedingMutation is the mutation range applied on top of the
	// parent average during breeding.
	breedingMutation = 0.05

	hexSegmentMax = float64(1<<32 - 1)
)

// EvolutionKeywords are the terms counted against tweet text when
// measuring community relevance.
var EvolutionKeywords = []string{
	"nft", "art", "digital", "collectible", "crypto",
	"evolution", "ai", "future", "metaverse",
}

// SocialMetrics is the aggregated social media signal for one cycle.
type SocialMetrics struct {
	EngagementScore float64 `json:"engagement_score"`
	SentimentScore  float64 `json:"sentiment_score"`
	MentionCount    int64   `json:"mention_count"`
	PostFrequency   float64 `json:"post_frequency"`
	KeywordMatches  int64   `json:"keyword_matches"`
}

type Engine struct {
	rng *rand.Rand
}

// NewEngine builds an engine seeded from the source. Pass rand.NewSource
// with a fixed seed in tests for reproducible drift.
func NewEngine(src rand.Source) *Engine {
	return &Engine{rng: rand.New(src)}
}

// InitialTraits derives the six genetic traits deterministically from
// the minter's uniqueness factors. Each trait reads a distinct 8-char
// segment of the sha256 hex digest, normalized into its bounds.
func InitialTraits(factors *model.UniquenessFactors) model.GeneticTraits {
	sum := sha256.Sum256([]byte(factors.CombinedSeed()))
	digest := hex.EncodeToString(sum[:])

	segment := func(i int) float64 {
		v, _ := strconv.ParseUint(digest[i*8:(i+1)*8], 16, 64)
		return float64(v) / hexSegmentMax
	}

	return model.GeneticTraits{
		Luminosity:              segment(0),
		ArchitecturalComplexity: segment(1),
		EtherealQuality:         segment(2),
		EvolutionSpeed:          0.1 + segment(3)*0.8,
		StyleIntensity:          segment(4),
		TemporalResonance:       segment(5),
	}
}

// Drift applies one random evolution step to every trait. Each trait
// moves by at most strength in either direction.
func (e *Engine) Drift(traits model.GeneticTraits, strength float64) model.GeneticTraits {
	if strength <= 0 {
		strength = DefaultDriftStrength
	}
	step := func(v float64) float64 {
		return v + (e.rng.Float64()-0.5)*strength*2
	}
	return model.GeneticTraits{
		Luminosity:              clamp(step(traits.Luminosity)),
		ArchitecturalComplexity: clamp(step(traits.ArchitecturalComplexity)),
		EtherealQuality:         clamp(step(traits.EtherealQuality)),
		EvolutionSpeed:          clampSpeed(step(traits.EvolutionSpeed)),
		StyleIntensity:          clamp(step(traits.StyleIntensity)),
		TemporalResonance:       clamp(step(traits.TemporalResonance)),
	}
}

// ApplySocial shifts traits according to the cycle's social metrics and
// reports which traits changed. Sentiment moves ethereal quality and
// luminosity in its own direction, engagement raises complexity, post
// frequency accelerates evolution, and keyword matches intensify style.
// Every delta is capped at MaxSocialChange.
func ApplySocial(traits model.GeneticTraits, metrics *SocialMetrics) (model.GeneticTraits, []string) {
	out := traits
	var changed []string

	apply := func(name string, target *float64, delta float64, speed bool) {
		if delta == 0 {
			return
		}
		if delta > MaxSocialChange {
			delta = MaxSocialChange
		} else if delta < -MaxSocialChange {
			delta = -MaxSocialChange
		}
		before := *target
		if speed {
			*target = clampSpeed(*target + delta)
		} else {
			*target = clamp(*target + delta)
		}
		if *target != before {
			changed = append(changed, name)
		}
	}

	if metrics.SentimentScore > SentimentNeutralBand || metrics.SentimentScore < -SentimentNeutralBand {
		apply("ethereal_quality", &out.EtherealQuality, 0.05*metrics.SentimentScore, false)
		apply("luminosity", &out.Luminosity, 0.03*metrics.SentimentScore, false)
	}
	apply("architectural_complexity", &out.ArchitecturalComplexity,
		0.04*(metrics.EngagementScore/10000), false)
	apply("evolution_speed", &out.EvolutionSpeed,
		0.02*(metrics.PostFrequency/50), true)
	apply("style_intensity", &out.StyleIntensity,
		0.03*(float64(metrics.KeywordMatches)/20), false)

	return out, changed
}

// Breed produces offspring traits by averaging the parents and applying
// a small random mutation. At least two parents are required.
func (e *Engine) Breed(parents []model.GeneticTraits) (model.GeneticTraits, error) {
	if len(parents) < 2 {
		return model.GeneticTraits{}, types.AppErrNotEnoughParents
	}
	n := float64(len(parents))
	var sum model.GeneticTraits
	for _, p := range parents {
		sum.Luminosity += p.Luminosity
		sum.ArchitecturalComplexity += p.ArchitecturalComplexity
		sum.EtherealQuality += p.EtherealQuality
		sum.EvolutionSpeed += p.EvolutionSpeed
		sum.StyleIntensity += p.StyleIntensity
		sum.TemporalResonance += p.TemporalResonance
	}
	mutate := func(v float64) float64 {
		return v/n + (e.rng.Float64()-0.5)*breedingMutation
	}
	return model.GeneticTraits{
		Luminosity:              clamp(mutate(sum.Luminosity)),
		ArchitecturalComplexity: clamp(mutate(sum.ArchitecturalComplexity)),
		EtherealQuality:         clamp(mutate(sum.EtherealQuality)),
		EvolutionSpeed:          clampSpeed(mutate(sum.EvolutionSpeed)),
		StyleIntensity:          clamp(mutate(sum.StyleIntensity)),
		TemporalResonance:       clamp(mutate(sum.TemporalResonance)),
	}, nil
}

// CountKeywordMatches counts evolution keyword hits in the given texts.
func CountKeywordMatches(texts []string) int64 {
	var count int64
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, kw := range EvolutionKeywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
	}
	return count
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clampSpeed(v float64) float64 {
	return math.Max(0.1, math.Min(0.9, v))
}
