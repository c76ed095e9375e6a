package evolution

import (
	"math"
	"strings"
)

// SentimentNeutralBand is the half-width of the neutral zone. Compound
// scores inside [-band, band] do not move traits.
const SentimentNeutralBand = 0.05

// sentimentLexicon maps tokens to valence. Weights loosely follow the
// VADER scale normalized into [-1, 1].
var sentimentLexicon = map[string]float64{
	"amazing":     0.6, "awesome": 0.6, "beautiful": 0.6, "best": 0.65,
	"brilliant":   0.6, "cool": 0.35, "excellent": 0.6, "fantastic": 0.65,
	"good":        0.45, "great": 0.55, "incredible": 0.6, "love": 0.65,
	"loved":       0.6, "nice": 0.4, "perfect": 0.65, "stunning": 0.6,
	"wonderful":   0.6, "wow": 0.55, "bullish": 0.5, "moon": 0.35,
	"gem":         0.45, "fire": 0.45, "win": 0.45, "winning": 0.5,
	"awful":       -0.55, "bad": -0.45, "boring": -0.35, "disappointing": -0.5,
	"dump":        -0.4, "fail": -0.5, "garbage": -0.55, "hate": -0.65,
	"horrible":    -0.6, "rug": -0.5, "scam": -0.65, "terrible": -0.6,
	"trash":       -0.55, "ugly": -0.5, "worst": -0.65, "worthless": -0.6,
	"bearish":     -0.45, "overpriced": -0.4,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "isnt": true, "isn't": true,
	"dont": true, "don't": true, "cant": true, "can't": true, "wont": true,
	"won't": true, "without": true,
}

var boosters = map[string]float64{
	"very": 0.293, "really": 0.293, "extremely": 0.293, "so": 0.293,
	"absolutely": 0.293, "totally": 0.293, "super": 0.293,
	"slightly": -0.293, "somewhat": -0.293, "barely": -0.293,
}

// ScoreSentiment computes a compound sentiment score in [-1, 1] for one
// piece of text, handling simple negation and intensity boosters.
func ScoreSentiment(text string) float64 {
	tokens := tokenize(text)
	var total float64
	for i, tok := range tokens {
		valence, ok := sentimentLexicon[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if boost, ok := boosters[tokens[i-1]]; ok {
				if valence > 0 {
					valence += boost
				} else {
					valence -= boost
				}
			}
		}
		for back := 1; back <= 3 && i-back >= 0; back++ {
			if negations[tokens[i-back]] {
				valence *= -0.74
				break
			}
		}
		total += valence
	}
	// alpha 15 normalization, same shape as the VADER compound score
	return total / math.Sqrt(total*total+15)
}

// ScoreTexts averages the compound scores of all texts, returning zero
// for an empty slice.
func ScoreTexts(texts []string) float64 {
	if len(texts) == 0 {
		return 0
	}
	var sum float64
	for _, t := range texts {
		sum += ScoreSentiment(t)
	}
	return sum / float64(len(texts))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			return false
		}
		return true
	})
}
