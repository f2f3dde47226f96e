package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Wallet is a user's coin balance. LifetimeEarned is monotonically
// non-decreasing and is the sole input to coin rank.
type Wallet struct {
	bun.BaseModel `bun:"table:wallets,alias:w"`

	ID      int64  `bun:"id,pk,autoincrement"`
	GuildID string `bun:"guild_id,notnull"`
	UserID  string `bun:"user_id,notnull"`

	Balance        int64 `bun:"balance,notnull,default:0"`
	LifetimeEarned int64 `bun:"lifetime_earned,notnull,default:0"`
	LifetimeBurned int64 `bun:"lifetime_burned,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
