package evolution

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/types"
)

func testFactors() *model.UniquenessFactors {
	return &model.UniquenessFactors{
		LocationHash:    "deadbeefcafe",
		TimestampSeed:   "1700000000",
		WalletEntropy:   "entropy-123",
		WalletPrincipal: "aaaaa-aa",
	}
}

func assertInBounds(t *testing.T, traits model.GeneticTraits) {
	t.Helper()
	for _, v := range []float64{
		traits.Luminosity, traits.ArchitecturalComplexity, traits.EtherealQuality,
		traits.StyleIntensity, traits.TemporalResonance,
	} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.GreaterOrEqual(t, traits.EvolutionSpeed, 0.1)
	assert.LessOrEqual(t, traits.EvolutionSpeed, 0.9)
}

func TestInitialTraitsDeterministic(t *testing.T) {
	a := InitialTraits(testFactors())
	b := InitialTraits(testFactors())
	assert.Equal(t, a, b)
	assertInBounds(t, a)

	other := testFactors()
	other.WalletEntropy = "entropy-456"
	c := InitialTraits(other)
	assert.NotEqual(t, a, c)
}

func TestInitialTraitsSpeedMapsIntoBounds(t *testing.T) {
	factors := testFactors()
	sum := sha256.Sum256([]byte(factors.CombinedSeed()))
	digest := hex.EncodeToString(sum[:])
	v, err := strconv.ParseUint(digest[24:32], 16, 64)
	require.NoError(t, err)
	frac := float64(v) / float64(1<<32-1)

	traits := InitialTraits(factors)
	assert.InDelta(t, 0.1+frac*0.8, traits.EvolutionSpeed, 1e-12)
}

func TestDriftStaysBounded(t *testing.T) {
	engine := NewEngine(rand.NewSource(42))
	traits := model.GeneticTraits{
		Luminosity: 0.99, ArchitecturalComplexity: 0.01, EtherealQuality: 0.5,
		EvolutionSpeed: 0.89, StyleIntensity: 0.5, TemporalResonance: 0.5,
	}
	for i := 0; i < 200; i++ {
		traits = engine.Drift(traits, DefaultDriftStrength)
		assertInBounds(t, traits)
	}
}

func TestDriftStepSize(t *testing.T) {
	engine := NewEngine(rand.NewSource(7))
	traits := model.GeneticTraits{
		Luminosity: 0.5, ArchitecturalComplexity: 0.5, EtherealQuality: 0.5,
		EvolutionSpeed: 0.5, StyleIntensity: 0.5, TemporalResonance: 0.5,
	}
	next := engine.Drift(traits, 0.1)
	assert.InDelta(t, traits.Luminosity, next.Luminosity, 0.1)
	assert.InDelta(t, traits.EvolutionSpeed, next.EvolutionSpeed, 0.1)
}

func TestApplySocialPositiveSentiment(t *testing.T) {
	traits := model.GeneticTraits{Luminosity: 0.5, EtherealQuality: 0.5, EvolutionSpeed: 0.5}
	next, changed := ApplySocial(traits, &SocialMetrics{SentimentScore: 0.8})
	assert.InDelta(t, 0.54, next.EtherealQuality, 1e-9)
	assert.InDelta(t, 0.524, next.Luminosity, 1e-9)
	assert.Contains(t, changed, "ethereal_quality")
	assert.Contains(t, changed, "luminosity")
}

func TestApplySocialNegativeSentiment(t *testing.T) {
	traits := model.GeneticTraits{Luminosity: 0.5, EtherealQuality: 0.5}
	next, changed := ApplySocial(traits, &SocialMetrics{SentimentScore: -0.5})
	assert.InDelta(t, 0.485, next.Luminosity, 1e-9)
	assert.InDelta(t, 0.475, next.EtherealQuality, 1e-9)
	assert.Contains(t, changed, "luminosity")
	assert.Contains(t, changed, "ethereal_quality")
}

func TestApplySocialCapsChange(t *testing.T) {
	traits := model.GeneticTraits{ArchitecturalComplexity: 0.5}
	next, changed := ApplySocial(traits, &SocialMetrics{EngagementScore: 1e9})
	assert.InDelta(t, 0.6, next.ArchitecturalComplexity, 1e-9)
	assert.Contains(t, changed, "architectural_complexity")
}

func TestApplySocialNeutralBand(t *testing.T) {
	traits := model.GeneticTraits{Luminosity: 0.5, EtherealQuality: 0.5}
	next, changed := ApplySocial(traits, &SocialMetrics{SentimentScore: 0.03})
	assert.Equal(t, traits, next)
	assert.Empty(t, changed)
}

func TestBreed(t *testing.T) {
	engine := NewEngine(rand.NewSource(1))
	parents := []model.GeneticTraits{
		{Luminosity: 0.2, ArchitecturalComplexity: 0.4, EtherealQuality: 0.6,
			EvolutionSpeed: 0.3, StyleIntensity: 0.8, TemporalResonance: 0.1},
		{Luminosity: 0.8, ArchitecturalComplexity: 0.6, EtherealQuality: 0.4,
			EvolutionSpeed: 0.7, StyleIntensity: 0.2, TemporalResonance: 0.9},
	}
	child, err := engine.Breed(parents)
	require.NoError(t, err)
	assertInBounds(t, child)
	assert.InDelta(t, 0.5, child.Luminosity, 0.025+1e-9)
	assert.InDelta(t, 0.5, child.TemporalResonance, 0.025+1e-9)
}

func TestBreedRequiresTwoParents(t *testing.T) {
	engine := NewEngine(rand.NewSource(1))
	_, err := engine.Breed([]model.GeneticTraits{{Luminosity: 0.5}})
	assert.ErrorIs(t, err, types.AppErrNotEnoughParents)
}

func TestCountKeywordMatches(t *testing.T) {
	texts := []string{
		"This NFT art is the future",
		"just a random post",
		"AI and crypto collectible drop",
	}
	assert.Equal(t, int64(6), CountKeywordMatches(texts))
}
