package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ActivityDay holds one user's raw behavioral counters for a single calendar
// day. Rows are mutated incrementally while the day is current and become
// immutable history once it has passed.
type ActivityDay struct {
	bun.BaseModel `bun:"table:activity_days,alias:ad"`

	ID      int64     `bun:"id,pk,autoincrement"`
	GuildID string    `bun:"guild_id,notnull"`
	UserID  string    `bun:"user_id,notnull"`
	Day     time.Time `bun:"day,notnull,type:date"`

	Messages      int `bun:"messages,notnull,default:0"`
	VoiceMinutes  int `bun:"voice_minutes,notnull,default:0"`
	Events        int `bun:"events,notnull,default:0"`
	PresenceTicks int `bun:"presence_ticks,notnull,default:0"`
	Reactions     int `bun:"reactions,notnull,default:0"`
	Commands      int `bun:"commands,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// HasQualifyingActivity reports whether the day counts as "active" for the
// inactivity tax. Presence ticks alone do not qualify.
func (a *ActivityDay) HasQualifyingActivity() bool {
	return a.Messages > 0 || a.VoiceMinutes > 0 || a.Events > 0 || a.Reactions > 0 || a.Commands > 0
}
