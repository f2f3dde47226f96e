package progression

import "time"

// Snapshot is the explicit metrics input to every rank calculation. All
// resolver, readiness and eligibility functions are pure over a snapshot, so
// the batch path and the interactive path cannot diverge.
type Snapshot struct {
	GuildID string
	UserID  string
	AsOf    time.Time

	WeeklyActivity int
	Messages7d     int
	Obedience      ObedienceResult

	LifetimeEarned int64
	Balance        int64
	Debt           int64
}
