package progression

import (
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
)

const (
	// AtRiskGracePeriod is how long a user may sit below their held rank
	// before a demotion can execute. Activity metrics are noisy day to day;
	// a bad weekend should not cost a rank.
	AtRiskGracePeriod = 72 * time.Hour

	// SoftDemotionWeeks is the number of consecutive failed weekly
	// evaluations required before the soft demotion fires.
	SoftDemotionWeeks = 2
)

// CoinRank is the purely economic rank: the highest rank whose LCE threshold
// is covered by lifetime earned coins. No hysteresis.
func CoinRank(lifetimeEarned int64) int {
	rank := 0
	for _, r := range Ladder {
		if lifetimeEarned >= r.MinLCE {
			rank = r.Index
		} else {
			break
		}
	}
	return rank
}

// EligibleRank is the highest rank whose gates (and, since gates are
// monotonic, all lower ranks' gates) pass for the snapshot. It is
// intentionally volatile: one regressed metric lowers it on the very next
// evaluation. ResolveHeld smooths it for the held rank.
func EligibleRank(s Snapshot) int {
	eligible := 0
	for _, r := range Ladder[1:] {
		if !GatesPass(r, s) {
			break
		}
		eligible = r.Index
	}
	return eligible
}

// Resolution is the outcome of a single held-rank evaluation. It carries the
// full hysteresis state to be memoized in the rank cache.
type Resolution struct {
	HeldRank      int
	AtRisk        bool
	AtRiskSince   time.Time
	FailedWeeks   int
	LastPromotion time.Time
	Promoted      bool
	Demoted       bool
}

// ResolveHeld applies hysteresis between the instantaneous target rank
// (min of coin and eligible) and the previously held rank.
//
// Promotions apply immediately. A shortfall only marks the user at-risk; the
// demotion executes when the 72h grace window has elapsed AND the weekly
// soft-demotion rule has independently fired, in which case the user drops
// exactly one rank. Debt above debtThreshold bypasses the grace entirely and
// drops the user straight to the target: debt is a deliberate act, not noise.
//
// prev is nil on a user's first evaluation, which resolves directly to the
// target with no hysteresis state.
func ResolveHeld(prev *models.RankCache, coinRank, eligibleRank int, debt, debtThreshold int64, now time.Time) Resolution {
	target := TargetRank(coinRank, eligibleRank)

	if prev == nil {
		return Resolution{HeldRank: target}
	}

	res := Resolution{
		HeldRank:      prev.HeldRank,
		FailedWeeks:   prev.FailedWeeks,
		LastPromotion: prev.LastPromotion,
	}

	if target >= prev.HeldRank {
		res.HeldRank = target
		if target > prev.HeldRank {
			res.Promoted = true
			res.LastPromotion = now
		}
		return res
	}

	// Below held rank: debt forces the demotion through immediately.
	if debt > debtThreshold {
		res.HeldRank = target
		res.Demoted = true
		res.FailedWeeks = 0
		return res
	}

	res.AtRisk = true
	res.AtRiskSince = now
	if prev.AtRisk && !prev.AtRiskSince.IsZero() {
		res.AtRiskSince = prev.AtRiskSince
	}

	graceElapsed := now.Sub(res.AtRiskSince) >= AtRiskGracePeriod
	if graceElapsed && res.FailedWeeks >= SoftDemotionWeeks {
		res.HeldRank = prev.HeldRank - 1
		res.Demoted = true
		res.FailedWeeks = 0
		res.AtRisk = false
		res.AtRiskSince = time.Time{}
	}

	return res
}

// TargetRank is the resolver's invariant target: the held rank converges on
// it once hysteresis runs out.
func TargetRank(coinRank, eligibleRank int) int {
	if coinRank < eligibleRank {
		return coinRank
	}
	return eligibleRank
}

// EvaluateWeek advances the consecutive-failed-weeks counter from one weekly
// evaluation: a week failing the current held rank's gates increments it, a
// passing week resets it to zero. No partial credit carries across
// non-consecutive failures.
func EvaluateWeek(failedWeeks int, heldRank int, s Snapshot) int {
	if heldRank <= 0 {
		return 0
	}
	if GatesPass(Ladder[heldRank], s) {
		return 0
	}
	return failedWeeks + 1
}
