package patterns

import "strings"

// PatternType names a recurring behavioral signal detected in conversation text.
type PatternType string

const (
	PatternAvoidance            PatternType = "avoidance"
	PatternSelfCriticism        PatternType = "self_criticism"
	PatternPeoplePleasing       PatternType = "people_pleasing"
	PatternPerfectionism        PatternType = "perfectionism"
	PatternRumination           PatternType = "rumination"
	PatternSomaticDisconnect    PatternType = "somatic_disconnect"
	PatternEmotionalSuppression PatternType = "emotional_suppression"
	PatternCatastrophizing      PatternType = "catastrophizing"
)

// MaxIntegrationLevel is the saturation point of the per-pattern counter.
const MaxIntegrationLevel = 5

// snippetLimit bounds the stored context excerpt for a detection.
const snippetLimit = 200

// Detector scans assistant output for pattern signals. The keyword
// implementation below is a cheap heuristic; paraphrase produces false
// negatives. The ledger contract (upsert + saturating increment) lives in the
// pattern service, so a classifier-backed Detector can be swapped in without
// touching it.
type Detector interface {
	Detect(text string) []PatternType
}

// triggerTable maps each pattern type to its trigger phrases. English and
// Spanish phrases share one list; matching is lower-cased substring.
var triggerTable = map[PatternType][]string{
	PatternAvoidance: {
		"avoiding", "putting it off", "keep postponing", "rather not think about",
		"changing the subject", "evitando", "lo pospongo",
	},
	PatternSelfCriticism: {
		"hard on yourself", "harsh inner critic", "beating yourself up",
		"not good enough", "critical of yourself", "duro contigo", "no soy suficiente",
	},
	PatternPeoplePleasing: {
		"saying yes when", "afraid to disappoint", "others' approval",
		"putting everyone else first", "hard time saying no", "complacer a los dem",
	},
	PatternPerfectionism: {
		"has to be perfect", "never feels finished", "impossibly high standard",
		"all or nothing", "perfeccionismo", "tiene que ser perfecto",
	},
	PatternRumination: {
		"going in circles", "replaying the conversation", "can't stop thinking",
		"over and over in your mind", "dando vueltas", "no dejo de pensar",
	},
	PatternSomaticDisconnect: {
		"disconnected from your body", "ignoring the signals", "numb from the neck down",
		"out of touch with your body", "desconectado de tu cuerpo",
	},
	PatternEmotionalSuppression: {
		"pushing the feeling down", "swallowing your feelings", "not allowed to feel",
		"keeping it all in", "bottling it up", "reprimiendo", "guardarlo todo",
	},
	PatternCatastrophizing: {
		"worst-case", "worst case scenario", "assuming the worst", "spiraling into",
		"catastrophe", "catastrofiz", "lo peor que podr",
	},
}

// KeywordDetector is the stock substring-based Detector.
type KeywordDetector struct{}

func NewKeywordDetector() *KeywordDetector { return &KeywordDetector{} }

// Detect reports each pattern type with at least one trigger-phrase hit in
// text, case-insensitively. Each type is reported at most once, in a stable
// order.
func (d *KeywordDetector) Detect(text string) []PatternType {
	lowered := strings.ToLower(text)
	if strings.TrimSpace(lowered) == "" {
		return nil
	}
	var out []PatternType
	for _, pt := range orderedTypes {
		for _, trigger := range triggerTable[pt] {
			if strings.Contains(lowered, trigger) {
				out = append(out, pt)
				break
			}
		}
	}
	return out
}

var orderedTypes = []PatternType{
	PatternAvoidance,
	PatternSelfCriticism,
	PatternPeoplePleasing,
	PatternPerfectionism,
	PatternRumination,
	PatternSomaticDisconnect,
	PatternEmotionalSuppression,
	PatternCatastrophizing,
}

// AllTypes returns the catalog of pattern types in detection order.
func AllTypes() []PatternType {
	out := make([]PatternType, len(orderedTypes))
	copy(out, orderedTypes)
	return out
}

// Snippet truncates text to the stored-excerpt limit, marking truncation with
// an ellipsis.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit]) + "…"
}
