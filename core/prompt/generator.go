// Package prompt assembles deterministic text-to-image prompts from the
// artist style tables, the event context tables and the minter's
// uniqueness factors. The same factors always produce the same prompt.
package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/picha-labs/picha/core/model"
	"github.com/picha-labs/picha/types"
)

type artistStyle struct {
	StyleModifiers    []string
	SignatureElements []string
}

type eventContext struct {
	BasePrompts []string
	Modifiers   []string
}

type Generator struct {
	artists map[string]artistStyle
	events  map[model.EventType]eventContext
}

func NewGenerator() *Generator {
	return &Generator{
		artists: map[string]artistStyle{
			"Da Vinci": {
				StyleModifiers:    []string{"Renaissance precision", "anatomical detail", "sfumato technique"},
				SignatureElements: []string{"flying machines", "architectural sketches", "human studies"},
			},
			"Van Gogh": {
				StyleModifiers:    []string{"swirling brushstrokes", "vibrant colors", "emotional intensity"},
				SignatureElements: []string{"starry skies", "cypress trees", "wheat fields"},
			},
			"Picasso": {
				StyleModifiers:    []string{"cubist fragmentation", "geometric forms", "multiple perspectives"},
				SignatureElements: []string{"abstract faces", "bull imagery", "guitar motifs"},
			},
			"Monet": {
				StyleModifiers:    []string{"impressionist light", "color harmony", "atmospheric effects"},
				SignatureElements: []string{"water lilies", "cathedral series", "garden scenes"},
			},
			"Dali": {
				StyleModifiers:    []string{"surrealist imagery", "melting forms", "dream-like quality"},
				SignatureElements: []string{"melting clocks", "elephants on stilts", "desert landscapes"},
			},
		},
		events: map[model.EventType]eventContext{
			model.EventArchitecture: {
				BasePrompts: []string{"floating city", "crystal palace", "organic building", "sky fortress"},
				Modifiers:   []string{"with impossible geometry", "defying gravity", "made of light"},
			},
			model.EventNature: {
				BasePrompts: []string{"enchanted forest", "mountain peak", "ocean depths", "desert oasis"},
				Modifiers:   []string{"with bioluminescent elements", "in perpetual twilight", "with crystalline formations"},
			},
			model.EventPortrait: {
				BasePrompts: []string{"ethereal figure", "cosmic being", "time traveler", "dimensional guardian"},
				Modifiers:   []string{"with glowing eyes", "surrounded by energy", "partially transparent"},
			},
			model.EventAbstract: {
				BasePrompts: []string{"geometric harmony", "color symphony", "form in motion", "dimensional rift"},
				Modifiers:   []string{"with flowing particles", "in quantum flux", "with temporal distortions"},
			},
			model.EventCosmic: {
				BasePrompts: []string{"nebula formation", "galactic center", "black hole", "stellar nursery"},
				Modifiers:   []string{"with impossible colors", "bending spacetime", "with cosmic consciousness"},
			},
			model.EventUrban: {
				BasePrompts: []string{"neon cityscape", "industrial complex", "street art", "urban jungle"},
				Modifiers:   []string{"with cyberpunk elements", "in rain-soaked streets", "with holographic displays"},
			},
			model.EventFantasy: {
				BasePrompts: []string{"magical realm", "dragon's lair", "enchanted castle", "fairy kingdom"},
				Modifiers:   []string{"with mystical creatures", "glowing with magic", "in eternal twilight"},
			},
			model.EventHistorical: {
				BasePrompts: []string{"ancient temple", "medieval castle", "renaissance palace", "baroque cathedral"},
				Modifiers:   []string{"with historical accuracy", "in golden lighting", "with period details"},
			},
		},
	}
}

// Artists returns the known artist names in sorted order.
func (g *Generator) Artists() []string {
	names := make([]string, 0, len(g.artists))
	for name := range g.artists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Generator) IsKnownArtist(artist string) bool {
	_, ok := g.artists[artist]
	return ok
}

// Generate builds the image prompt for the given mode. In selection mode
// the prompt is assembled entirely from the tables; in prompt mode the
// user prompt is enriched with personal and genetic context.
func (g *Generator) Generate(mode model.GenerationMode, artist string, eventType model.EventType,
	userPrompt string, factors *model.UniquenessFactors, traits *model.GeneticTraits) (string, error) {
	switch mode {
	case model.ModeSelection, model.ModeEvolution:
		return g.selectionPrompt(artist, eventType, factors, traits), nil
	case model.ModePrompt:
		if userPrompt == "" {
			return "", types.AppErrPromptRequired
		}
		return fmt.Sprintf("%s, %s, %s", userPrompt,
			g.personalContext(factors, artist), traitContext(traits)), nil
	}
	return "", types.AppErrInvalidMode
}

func (g *Generator) selectionPrompt(artist string, eventType model.EventType,
	factors *model.UniquenessFactors, traits *model.GeneticTraits) string {
	event := g.events[eventType]
	base := pick(event.BasePrompts, hashIndex(factors.LocationHash))

	style, ok := g.artists[artist]
	if !ok {
		style = artistStyle{StyleModifiers: []string{"artistic style"}}
	}
	modifier := pick(style.StyleModifiers, hashIndex(factors.WalletEntropy))

	return fmt.Sprintf("%s in %s style with %s, %s, %s",
		base, artist, modifier, g.uniqueContext(factors), traitContext(traits))
}

func (g *Generator) uniqueContext(factors *model.UniquenessFactors) string {
	locationContexts := []string{
		"at the intersection of dimensions",
		"where time flows differently",
		"in a pocket of altered reality",
		"at the convergence of energies",
		"in a place of ancient power",
	}
	location := pick(locationContexts, hexPrefixIndex(factors.LocationHash))

	timestamp, _ := strconv.ParseInt(factors.TimestampSeed, 10, 64)
	hour := (timestamp % 86400) / 3600
	var timeContext string
	switch {
	case hour >= 5 && hour < 12:
		timeContext = "bathed in dawn light"
	case hour >= 12 && hour < 17:
		timeContext = "under the midday sun"
	case hour >= 17 && hour < 20:
		timeContext = "in golden hour glow"
	case hour >= 20 && hour < 24:
		timeContext = "under twilight skies"
	default:
		timeContext = "in the depth of night"
	}

	signatureContexts := []string{
		"marked by cosmic signature",
		"sealed with dimensional energy",
		"infused with personal essence",
		"bonded to creator's spirit",
		"attuned to owner's frequency",
	}
	signature := pick(signatureContexts, hashIndex(factors.WalletEntropy))

	return fmt.Sprintf("%s, %s, %s", location, timeContext, signature)
}

func (g *Generator) personalContext(factors *model.UniquenessFactors, artist string) string {
	style, ok := g.artists[artist]
	if !ok {
		style = artistStyle{SignatureElements: []string{"artistic elements"}}
	}
	element := pick(style.SignatureElements, hashIndex(factors.WalletEntropy))

	return strings.Join([]string{
		"infused with geographical essence",
		"anchored in this moment of creation",
		"featuring " + element,
	}, ", ")
}

func traitContext(traits *model.GeneticTraits) string {
	var phrases []string
	add := func(value float64, high, low string) {
		if value > 0.75 {
			phrases = append(phrases, high)
		} else if value < 0.25 {
			phrases = append(phrases, low)
		}
	}
	add(traits.Luminosity, "vibrantly luminous", "subtly shadowed")
	add(traits.ArchitecturalComplexity, "with intricate architectural forms", "with minimalist structures")
	add(traits.EtherealQuality, "possessing an otherworldly aura", "grounded and tangible")
	add(traits.EvolutionSpeed, "dynamic and evolving rapidly", "stable and unchanging")
	add(traits.StyleIntensity, "with intense artistic expression", "with gentle and soft styling")
	add(traits.TemporalResonance, "echoing through time", "rooted in the present moment")
	return strings.Join(phrases, " and ")
}

// hashIndex hashes the input and folds the first eight hex chars into an
// index seed, so any string can drive a table pick.
func hashIndex(data string) uint64 {
	sum := sha256.Sum256([]byte(data))
	v, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}

// hexPrefixIndex reads the first eight chars of an already-hex string,
// falling back to hashing when the input is not hex.
func hexPrefixIndex(data string) uint64 {
	if len(data) >= 8 {
		if v, err := strconv.ParseUint(data[:8], 16, 64); err == nil {
			return v
		}
	}
	return hashIndex(data)
}

func pick(options []string, index uint64) string {
	return options[index%uint64(len(options))]
}
