package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RankCache is the memoized result of a full rank evaluation. It is derived
// state: safe to recompute from the other entities at any time and written
// only through atomic upserts, never partial edits.
//
// HeldRank may temporarily exceed min(CoinRank, EligibleRank) while the user
// is inside the at-risk grace window. That divergence is the hysteresis
// mechanism working as intended.
type RankCache struct {
	bun.BaseModel `bun:"table:rank_caches,alias:rc"`

	ID      int64  `bun:"id,pk,autoincrement"`
	GuildID string `bun:"guild_id,notnull"`
	UserID  string `bun:"user_id,notnull"`

	CoinRank     int `bun:"coin_rank,notnull,default:0"`
	EligibleRank int `bun:"eligible_rank,notnull,default:0"`
	HeldRank     int `bun:"held_rank,notnull,default:0"`

	AtRisk      bool      `bun:"at_risk,notnull,default:false"`
	AtRiskSince time.Time `bun:"at_risk_since"`
	FailedWeeks int       `bun:"failed_weeks,notnull,default:0"`

	Readiness int    `bun:"readiness,notnull,default:0"`
	Blocker   string `bun:"blocker"`

	LastPromotion time.Time `bun:"last_promotion"`
	ComputedAt    time.Time `bun:"computed_at,notnull"`
}
