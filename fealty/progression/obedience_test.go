package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
)

var asOf = time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

func run(daysAgo int, status models.OrderStatus, late bool) *models.OrderRun {
	accepted := asOf.AddDate(0, 0, -daysAgo).Add(-2 * time.Hour)
	r := &models.OrderRun{
		AcceptedAt: accepted,
		DueAt:      accepted.Add(24 * time.Hour),
		Status:     status,
		Late:       late,
	}
	if status == models.OrderStatusCompleted {
		completed := accepted.Add(time.Hour)
		r.CompletedAt = &completed
	}
	return r
}

func Test_ScoreOrders_emptyWindowIsNeutral(t *testing.T) {
	result := ScoreOrders(nil, asOf)

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, 0, result.StreakDays)
}

func Test_ScoreOrders_outsideWindowIsNeutral(t *testing.T) {
	runs := []*models.OrderRun{
		run(20, models.OrderStatusFailed, false),
		run(15, models.OrderStatusFailed, false),
	}

	result := ScoreOrders(runs, asOf)
	assert.Equal(t, 50, result.Score)
}

func Test_ScoreOrders_baseScore(t *testing.T) {
	// 3 done, 1 late, 1 failed: base = (300 + 50 - 25) / 5 = 65. Oldest run
	// is the failure so no streak bonus survives... the streak counts the 4
	// newer completions, so pin the failure newest instead.
	runs := []*models.OrderRun{
		run(10, models.OrderStatusCompleted, false),
		run(8, models.OrderStatusCompleted, false),
		run(6, models.OrderStatusCompleted, false),
		run(4, models.OrderStatusCompleted, true),
		run(2, models.OrderStatusFailed, false),
	}

	result := ScoreOrders(runs, asOf)

	assert.Equal(t, 3, result.Done)
	assert.Equal(t, 1, result.Late)
	assert.Equal(t, 1, result.Failed)
	// Base 65, streak broken by the newest run being a failure, then -1
	// decay because nothing was completed today.
	assert.Equal(t, 64, result.Score)
	assert.Equal(t, 0, result.StreakDays)
}

func Test_ScoreOrders_streakBonus(t *testing.T) {
	runs := []*models.OrderRun{
		run(6, models.OrderStatusFailed, false),
		run(4, models.OrderStatusCompleted, false),
		run(2, models.OrderStatusCompleted, true),
		run(0, models.OrderStatusCompleted, false),
	}

	result := ScoreOrders(runs, asOf)

	// Base = (200 + 50 - 25) / 4 = 56; streak of 3 completions adds 3; a
	// completion today means no decay.
	assert.Equal(t, 59, result.Score)
	assert.Equal(t, 3, result.StreakDays)
}

func Test_ScoreOrders_streakBonusCappedAtTen(t *testing.T) {
	var runs []*models.OrderRun
	for i := 13; i >= 1; i-- {
		runs = append(runs, run(i, models.OrderStatusCompleted, true))
	}

	result := ScoreOrders(runs, asOf)

	// Base = 50 from 13 late completions; streak is 13 but the bonus caps
	// at 10; decay applies since nothing completed today.
	assert.Equal(t, 13, result.StreakDays)
	assert.Equal(t, 59, result.Score)
}

func Test_ScoreOrders_scoreNeverExceedsBounds(t *testing.T) {
	perfect := []*models.OrderRun{
		run(2, models.OrderStatusCompleted, false),
		run(1, models.OrderStatusCompleted, false),
		run(0, models.OrderStatusCompleted, false),
	}
	result := ScoreOrders(perfect, asOf)
	assert.Equal(t, 100, result.Score)

	awful := []*models.OrderRun{
		run(2, models.OrderStatusFailed, false),
		run(1, models.OrderStatusFailed, false),
	}
	result = ScoreOrders(awful, asOf)
	assert.Equal(t, 0, result.Score)
}

func Test_ScoreOrders_pureRecomputeIsIdempotent(t *testing.T) {
	runs := []*models.OrderRun{
		run(3, models.OrderStatusCompleted, false),
		run(1, models.OrderStatusFailed, false),
	}

	first := ScoreOrders(runs, asOf)
	second := ScoreOrders(runs, asOf)

	assert.Equal(t, first, second)
}

func Test_ScoreOrders_openOrdersDoNotScore(t *testing.T) {
	runs := []*models.OrderRun{
		run(3, models.OrderStatusCompleted, false),
		run(1, models.OrderStatusAccepted, false),
	}

	result := ScoreOrders(runs, asOf)

	assert.Equal(t, 1, result.Done)
	assert.Equal(t, 0, result.Failed)
	// Accepted runs are skipped by the streak walk, not treated as breaks.
	assert.Equal(t, 1, result.StreakDays)
}
