package models

import (
	"time"

	"github.com/uptrace/bun"
)

// WeeklyClaim records when a user last drew their weekly stipend. The weekly
// job prunes stale rows so the user becomes claim-eligible again.
type WeeklyClaim struct {
	bun.BaseModel `bun:"table:weekly_claims,alias:wc"`

	ID      int64  `bun:"id,pk,autoincrement"`
	GuildID string `bun:"guild_id,notnull"`
	UserID  string `bun:"user_id,notnull"`

	LastClaimedAt time.Time `bun:"last_claimed_at,notnull"`
}
