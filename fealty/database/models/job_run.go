package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// JobRun is the persisted at-most-once marker for a periodic batch job.
// PeriodKey is the calendar day ("2006-01-02") for the daily job and the ISO
// week ("2006-W02") for the weekly job. The unique index on
// (guild_id, job_name, period_key) makes marker insertion the mutual
// exclusion point: whoever inserts the row runs the job for that period,
// restarts included.
type JobRun struct {
	bun.BaseModel `bun:"table:job_runs,alias:jr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	GuildID   string    `bun:"guild_id,notnull"`
	JobName   string    `bun:"job_name,notnull"`
	PeriodKey string    `bun:"period_key,notnull"`
	RanAt     time.Time `bun:"ran_at,notnull"`
}

const (
	JobDaily  = "daily"
	JobWeekly = "weekly"
)

// DailyPeriodKey formats t as the daily job's period key.
func DailyPeriodKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeeklyPeriodKey formats t as the weekly job's ISO-week period key.
func WeeklyPeriodKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
