package mirrors

import "strings"

// Tier is the subscription level controlling mirror access and quota.
type Tier string

const (
	TierFree     Tier = "free"
	TierExplorer Tier = "explorer"
	TierVoyager  Tier = "voyager"
	TierLuminary Tier = "luminary"
)

type tierPolicy struct {
	// mirrorAllowList is explicit: access checks route through this table,
	// never through ad-hoc tier comparisons.
	mirrorAllowList []string

	// monthlyLimit is nil for unlimited.
	monthlyLimit *int

	// totalSessions sizes curriculum-completion checks for the tier.
	totalSessions int

	crossMirrorContext bool
}

func limit(n int) *int { return &n }

var tierTable = map[Tier]tierPolicy{
	TierFree: {
		mirrorAllowList:    []string{"soma"},
		monthlyLimit:       limit(10),
		totalSessions:      SessionsPerMirror,
		crossMirrorContext: false,
	},
	TierExplorer: {
		mirrorAllowList:    []string{"soma", "pulse"},
		monthlyLimit:       limit(150),
		totalSessions:      2 * SessionsPerMirror,
		crossMirrorContext: true,
	},
	TierVoyager: {
		mirrorAllowList:    []string{"soma", "pulse", "horizon", "atlas"},
		monthlyLimit:       limit(500),
		totalSessions:      4 * SessionsPerMirror,
		crossMirrorContext: true,
	},
	TierLuminary: {
		mirrorAllowList:    []string{"soma", "pulse", "horizon", "atlas"},
		monthlyLimit:       nil,
		totalSessions:      4 * SessionsPerMirror,
		crossMirrorContext: true,
	},
}

// NormalizeTier resolves the stored tier string to a known tier, defaulting
// to free. This is the single defaulting point; callers never fall back inline.
func NormalizeTier(raw string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := tierTable[t]; ok {
		return t
	}
	return TierFree
}

func CanAccessMirror(tier Tier, slug string) bool {
	policy, ok := tierTable[tier]
	if !ok {
		policy = tierTable[TierFree]
	}
	for _, allowed := range policy.mirrorAllowList {
		if allowed == slug {
			return true
		}
	}
	return false
}

// MonthlyLimit returns the tier's monthly message quota. limited is false for
// unlimited tiers, in which case n is meaningless.
func MonthlyLimit(tier Tier) (n int, limited bool) {
	policy, ok := tierTable[tier]
	if !ok {
		policy = tierTable[TierFree]
	}
	if policy.monthlyLimit == nil {
		return 0, false
	}
	return *policy.monthlyLimit, true
}

func TotalSessions(tier Tier) int {
	policy, ok := tierTable[tier]
	if !ok {
		policy = tierTable[TierFree]
	}
	return policy.totalSessions
}

// HasCrossMirrorContext reports whether the tier's prompts get the
// cross-mirror context block.
func HasCrossMirrorContext(tier Tier) bool {
	policy, ok := tierTable[tier]
	if !ok {
		policy = tierTable[TierFree]
	}
	return policy.crossMirrorContext
}

// AllowedMirrors returns a copy of the tier's allow-list in curriculum order.
func AllowedMirrors(tier Tier) []string {
	policy, ok := tierTable[tier]
	if !ok {
		policy = tierTable[TierFree]
	}
	out := make([]string, len(policy.mirrorAllowList))
	copy(out, policy.mirrorAllowList)
	return out
}

func AllTiers() []Tier {
	return []Tier{TierFree, TierExplorer, TierVoyager, TierLuminary}
}
