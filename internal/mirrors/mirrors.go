package mirrors

// Phase is the journey-wide progression stage. Each mirror anchors one phase;
// the journey advances through them in curriculum order.
type Phase string

const (
	PhaseFoundation  Phase = "foundation"
	PhaseRegulation  Phase = "regulation"
	PhaseExpansion   Phase = "expansion"
	PhaseIntegration Phase = "integration"
	PhaseComplete    Phase = "complete"
)

// SessionsPerMirror is the length of each mirror's guided session ladder.
const SessionsPerMirror = 7

type Mirror struct {
	Slug  string
	Name  string
	Phase Phase

	// SystemPrompt is the fixed persona prompt; cross-mirror context is
	// prepended to it at request time.
	SystemPrompt string

	// CompletionThreshold is the number of conversations with this mirror
	// that marks its phase complete.
	CompletionThreshold int
}

var catalog = []Mirror{
	{
		Slug:  "soma",
		Name:  "Soma",
		Phase: PhaseFoundation,
		SystemPrompt: "You are Soma, a mirror for embodied awareness. You help the person " +
			"notice what their body is telling them: tension, breath, posture, fatigue, " +
			"appetite, restlessness. Speak warmly and concretely. Ask one question at a " +
			"time. Never diagnose, never prescribe; when something sounds clinical, " +
			"gently suggest professional support. Keep responses under 200 words.",
		CompletionThreshold: 8,
	},
	{
		Slug:  "pulse",
		Name:  "Pulse",
		Phase: PhaseRegulation,
		SystemPrompt: "You are Pulse, a mirror for emotional regulation. You help the person " +
			"name emotions precisely, trace what triggered them, and find the space between " +
			"feeling and reaction. Validate before exploring. Ask one question at a time. " +
			"Never diagnose, never prescribe. Keep responses under 200 words.",
		CompletionThreshold: 10,
	},
	{
		Slug:  "horizon",
		Name:  "Horizon",
		Phase: PhaseExpansion,
		SystemPrompt: "You are Horizon, a mirror for expansion. You help the person question " +
			"the stories they tell about what is possible for them, surface avoided desires, " +
			"and take small experiments seriously. Be curious, not cheerleading. Ask one " +
			"question at a time. Keep responses under 200 words.",
		CompletionThreshold: 12,
	},
	{
		Slug:  "atlas",
		Name:  "Atlas",
		Phase: PhaseIntegration,
		SystemPrompt: "You are Atlas, a mirror for integration. You help the person weave what " +
			"they have learned about their body, emotions, and possibilities into how they " +
			"actually live: routines, relationships, commitments. Reference their earlier " +
			"discoveries when offered. Ask one question at a time. Keep responses under 200 words.",
		CompletionThreshold: 15,
	},
}

// All returns the mirrors in curriculum order.
func All() []Mirror {
	out := make([]Mirror, len(catalog))
	copy(out, catalog)
	return out
}

func First() Mirror { return catalog[0] }

func BySlug(slug string) (Mirror, bool) {
	for _, m := range catalog {
		if m.Slug == slug {
			return m, true
		}
	}
	return Mirror{}, false
}

func ByPhase(phase Phase) (Mirror, bool) {
	for _, m := range catalog {
		if m.Phase == phase {
			return m, true
		}
	}
	return Mirror{}, false
}

// Next returns the mirror after slug in curriculum order.
func Next(slug string) (Mirror, bool) {
	for i, m := range catalog {
		if m.Slug == slug && i+1 < len(catalog) {
			return catalog[i+1], true
		}
	}
	return Mirror{}, false
}

// NextPhase returns the phase that follows p in curriculum order.
func NextPhase(p Phase) Phase {
	switch p {
	case PhaseFoundation:
		return PhaseRegulation
	case PhaseRegulation:
		return PhaseExpansion
	case PhaseExpansion:
		return PhaseIntegration
	case PhaseIntegration:
		return PhaseComplete
	default:
		return PhaseComplete
	}
}

// DefaultPhase is the phase assumed for a user without a journey row yet.
func DefaultPhase() Phase { return PhaseFoundation }

// CurriculumSessionCount is the total number of session slots across all mirrors.
func CurriculumSessionCount() int { return len(catalog) * SessionsPerMirror }
