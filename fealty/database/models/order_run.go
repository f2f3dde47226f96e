package models

import (
	"time"

	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// OrderRun is one accepted order and its outcome. A run transitions exactly
// once from accepted to completed or failed and is history afterwards.
type OrderRun struct {
	bun.BaseModel `bun:"table:order_runs,alias:orr"`

	ID      int64  `bun:"id,pk,autoincrement"`
	GuildID string `bun:"guild_id,notnull"`
	UserID  string `bun:"user_id,notnull"`

	Description string      `bun:"description"`
	AcceptedAt  time.Time   `bun:"accepted_at,notnull"`
	DueAt       time.Time   `bun:"due_at,notnull"`
	CompletedAt *time.Time  `bun:"completed_at"`
	Status      OrderStatus `bun:"status,notnull,default:'accepted'"`
	Late        bool        `bun:"late,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
