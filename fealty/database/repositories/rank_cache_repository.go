package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/uptrace/bun"
)

type RankCacheRepository interface {
	Get(ctx context.Context, guildID, userID string) (*models.RankCache, error)
	Upsert(ctx context.Context, cache *models.RankCache) error
}

type rankCacheRepository struct {
	db *bun.DB
}

func NewRankCacheRepository(db *bun.DB) RankCacheRepository {
	return &rankCacheRepository{db: db}
}

// Get returns the cached rank row, or nil when the user has never been
// evaluated. Callers treat nil as a first evaluation.
func (r *rankCacheRepository) Get(ctx context.Context, guildID, userID string) (*models.RankCache, error) {
	cache := new(models.RankCache)
	err := r.db.NewSelect().
		Model(cache).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Error("Failed to get rank cache",
			slog.String("type", "db"),
			slog.String("operation", "Get"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, err
	}
	return cache, nil
}

// Upsert replaces the whole cache row atomically. The row is a memo of a full
// recompute; partial updates are never performed.
func (r *rankCacheRepository) Upsert(ctx context.Context, cache *models.RankCache) error {
	cache.ComputedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(cache).
		On("CONFLICT (guild_id, user_id) DO UPDATE").
		Set("coin_rank = EXCLUDED.coin_rank").
		Set("eligible_rank = EXCLUDED.eligible_rank").
		Set("held_rank = EXCLUDED.held_rank").
		Set("at_risk = EXCLUDED.at_risk").
		Set("at_risk_since = EXCLUDED.at_risk_since").
		Set("failed_weeks = EXCLUDED.failed_weeks").
		Set("readiness = EXCLUDED.readiness").
		Set("blocker = EXCLUDED.blocker").
		Set("last_promotion = EXCLUDED.last_promotion").
		Set("computed_at = EXCLUDED.computed_at").
		Exec(ctx)

	if err != nil {
		slog.Error("Failed to upsert rank cache",
			slog.String("type", "db"),
			slog.String("operation", "Upsert"),
			slog.String("guild_id", cache.GuildID),
			slog.String("user_id", cache.UserID),
			slog.Any("error", err))
	}
	return err
}
