package progression

import "fmt"

// BlockerReady is the sentinel returned when every gate for the next rank is
// already satisfied.
const BlockerReady = "Ready to advance"

// Readiness is the percentage progress toward the given rank: the mean of
// per-gate current/required ratios, each capped at 100, equally weighted. A
// rank without gates is always 100.
func Readiness(s Snapshot, next Rank) int {
	if len(next.Gates) == 0 {
		return 100
	}

	total := 0
	for _, g := range next.Gates {
		total += gateProgress(g, s)
	}
	return total / len(next.Gates)
}

// Blocker names the single most limiting gate for the next rank, rendered as
// "label (current/required)". Ties go to the earliest-declared gate so the
// advisory text is reproducible between evaluations.
func Blocker(s Snapshot, next Rank) string {
	if len(next.Gates) == 0 {
		return BlockerReady
	}

	worst := -1
	worstProgress := 101
	for i, g := range next.Gates {
		p := gateProgress(g, s)
		if p < worstProgress {
			worst = i
			worstProgress = p
		}
	}

	if worstProgress >= 100 {
		return BlockerReady
	}

	g := next.Gates[worst]
	return fmt.Sprintf("%s (%d/%d)", g.Label, g.Current(s), g.Required)
}

func gateProgress(g Gate, s Snapshot) int {
	if g.Required <= 0 {
		return 100
	}
	p := g.Current(s) * 100 / g.Required
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}
