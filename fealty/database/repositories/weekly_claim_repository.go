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

type WeeklyClaimRepository interface {
	Get(ctx context.Context, guildID, userID string) (*models.WeeklyClaim, error)
	Upsert(ctx context.Context, guildID, userID string, claimedAt time.Time) error
	PruneStale(ctx context.Context, guildID string, olderThan time.Time) (int64, error)
	ListStaleUserIDs(ctx context.Context, guildID string, olderThan time.Time) ([]string, error)
}

type weeklyClaimRepository struct {
	db *bun.DB
}

func NewWeeklyClaimRepository(db *bun.DB) WeeklyClaimRepository {
	return &weeklyClaimRepository{db: db}
}

// Get returns the claim record, or nil when the user has never claimed.
func (r *weeklyClaimRepository) Get(ctx context.Context, guildID, userID string) (*models.WeeklyClaim, error) {
	claim := new(models.WeeklyClaim)
	err := r.db.NewSelect().
		Model(claim).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return claim, nil
}

func (r *weeklyClaimRepository) Upsert(ctx context.Context, guildID, userID string, claimedAt time.Time) error {
	row := &models.WeeklyClaim{
		GuildID:       guildID,
		UserID:        userID,
		LastClaimedAt: claimedAt,
	}

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, user_id) DO UPDATE").
		Set("last_claimed_at = EXCLUDED.last_claimed_at").
		Exec(ctx)
	return err
}

func (r *weeklyClaimRepository) PruneStale(ctx context.Context, guildID string, olderThan time.Time) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*models.WeeklyClaim)(nil)).
		Where("guild_id = ?", guildID).
		Where("last_claimed_at < ?", olderThan).
		Exec(ctx)
	if err != nil {
		slog.Error("Failed to prune stale weekly claims",
			slog.String("type", "db"),
			slog.String("operation", "PruneStale"),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return 0, err
	}
	return result.RowsAffected()
}

func (r *weeklyClaimRepository) ListStaleUserIDs(ctx context.Context, guildID string, olderThan time.Time) ([]string, error) {
	var userIDs []string
	err := r.db.NewSelect().
		Model((*models.WeeklyClaim)(nil)).
		Column("user_id").
		Where("guild_id = ?", guildID).
		Where("last_claimed_at < ?", olderThan).
		Scan(ctx, &userIDs)
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
