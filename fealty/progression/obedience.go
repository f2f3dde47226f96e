package progression

import (
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
)

const (
	obedienceWindowDays = 14
	neutralScore        = 50
	maxStreakBonus      = 10

	doneWeight   = 100
	lateWeight   = 50
	failedWeight = 25
)

// ObedienceResult is the scored outcome of a user's trailing 14-day order
// history.
type ObedienceResult struct {
	Score      int
	StreakDays int
	Done       int
	Late       int
	Failed     int
}

// ObedienceWindowStart returns the inclusive start of the scoring window.
func ObedienceWindowStart(asOf time.Time) time.Time {
	return startOfDay(asOf).AddDate(0, 0, -(obedienceWindowDays - 1))
}

// ScoreOrders computes the 0-100 compliance score over runs accepted in the
// trailing 14 days. An empty window yields the neutral default of 50 so new
// users are not locked out of progression. The whole computation is a pure
// recompute, so the daily decay cannot compound across repeated calls.
func ScoreOrders(runs []*models.OrderRun, asOf time.Time) ObedienceResult {
	windowStart := ObedienceWindowStart(asOf)

	var windowed []*models.OrderRun
	result := ObedienceResult{}
	for _, run := range runs {
		if run.AcceptedAt.Before(windowStart) || run.AcceptedAt.After(asOf) {
			continue
		}
		windowed = append(windowed, run)

		switch run.Status {
		case models.OrderStatusCompleted:
			if run.Late {
				result.Late++
			} else {
				result.Done++
			}
		case models.OrderStatusFailed:
			result.Failed++
		}
	}

	total := result.Done + result.Late + result.Failed
	if total == 0 {
		// Missing history is strictly neutral: no streak, no decay.
		result.Score = neutralScore
		return result
	}
	base := (result.Done*doneWeight + result.Late*lateWeight - result.Failed*failedWeight) / total
	result.Score = clamp(base, 0, 100)

	// Streak: walk newest to oldest, counting consecutive completions (late
	// still counts) until the first failure. Open orders are skipped.
	for i := len(windowed) - 1; i >= 0; i-- {
		run := windowed[i]
		if run.Status == models.OrderStatusFailed {
			break
		}
		if run.Status == models.OrderStatusCompleted {
			result.StreakDays++
		}
	}
	bonus := result.StreakDays
	if bonus > maxStreakBonus {
		bonus = maxStreakBonus
	}
	result.Score = clamp(result.Score+bonus, 0, 100)

	// Daily decay: one point off when nothing was completed today.
	if !completedToday(windowed, asOf) && result.Score > 0 {
		result.Score--
	}

	return result
}

func completedToday(runs []*models.OrderRun, asOf time.Time) bool {
	today := startOfDay(asOf)
	for _, run := range runs {
		if run.Status != models.OrderStatusCompleted || run.CompletedAt == nil {
			continue
		}
		if !run.CompletedAt.Before(today) && !run.CompletedAt.After(asOf) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
