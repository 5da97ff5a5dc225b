package mirrors

import "testing"

func TestCanAccessMirrorMatchesAllowLists(t *testing.T) {
	// The policy table is the single source of truth: for every (tier, mirror)
	// pair, access must hold exactly when the mirror is in the allow-list.
	for _, tier := range AllTiers() {
		allowed := map[string]bool{}
		for _, slug := range AllowedMirrors(tier) {
			allowed[slug] = true
		}
		for _, m := range All() {
			got := CanAccessMirror(tier, m.Slug)
			if got != allowed[m.Slug] {
				t.Fatalf("CanAccessMirror(%s, %s) = %v, want %v", tier, m.Slug, got, allowed[m.Slug])
			}
		}
	}
}

func TestFreeTierSingleMirror(t *testing.T) {
	got := AllowedMirrors(TierFree)
	if len(got) != 1 || got[0] != "soma" {
		t.Fatalf("free tier allow-list = %v, want [soma]", got)
	}
	if CanAccessMirror(TierFree, "pulse") {
		t.Fatal("free tier must not access pulse")
	}
}

func TestMonthlyLimit(t *testing.T) {
	if n, limited := MonthlyLimit(TierFree); !limited || n != 10 {
		t.Fatalf("free limit = (%d, %v), want (10, true)", n, limited)
	}
	if _, limited := MonthlyLimit(TierLuminary); limited {
		t.Fatal("luminary must be unlimited")
	}
	// Unknown tiers fall back to the free policy.
	if n, limited := MonthlyLimit(Tier("galactic")); !limited || n != 10 {
		t.Fatalf("unknown tier limit = (%d, %v), want free policy", n, limited)
	}
}

func TestNormalizeTier(t *testing.T) {
	cases := map[string]Tier{
		"":          TierFree,
		"free":      TierFree,
		"  Voyager": TierVoyager,
		"LUMINARY":  TierLuminary,
		"premium":   TierFree,
	}
	for raw, want := range cases {
		if got := NormalizeTier(raw); got != want {
			t.Fatalf("NormalizeTier(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestCurriculumOrder(t *testing.T) {
	all := All()
	if len(all) != 4 {
		t.Fatalf("mirror count = %d, want 4", len(all))
	}
	if all[0].Slug != "soma" || all[0].Phase != PhaseFoundation {
		t.Fatalf("first mirror = %+v, want soma/foundation", all[0])
	}
	next, ok := Next("soma")
	if !ok || next.Slug != "pulse" {
		t.Fatalf("Next(soma) = %v, %v", next.Slug, ok)
	}
	if _, ok := Next("atlas"); ok {
		t.Fatal("Next(atlas) must not exist")
	}
	if CurriculumSessionCount() != 28 {
		t.Fatalf("CurriculumSessionCount = %d, want 28", CurriculumSessionCount())
	}
	if NextPhase(PhaseIntegration) != PhaseComplete {
		t.Fatal("integration must advance to complete")
	}
}
