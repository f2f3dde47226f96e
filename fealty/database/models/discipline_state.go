package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DisciplineState tracks a user's outstanding debt and inactivity record.
// Only the economic batch jobs and explicit admin adjustments write here.
type DisciplineState struct {
	bun.BaseModel `bun:"table:discipline_states,alias:ds"`

	ID      int64  `bun:"id,pk,autoincrement"`
	GuildID string `bun:"guild_id,notnull"`
	UserID  string `bun:"user_id,notnull"`

	Debt         int64     `bun:"debt,notnull,default:0"`
	InactiveDays int       `bun:"inactive_days,notnull,default:0"`
	LastTaxedAt  time.Time `bun:"last_taxed_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
