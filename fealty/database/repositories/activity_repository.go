package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/uptrace/bun"
)

// ActivityDelta is one incremental bump to a user's counters for a day.
// Zero fields leave the matching column untouched.
type ActivityDelta struct {
	Messages      int
	VoiceMinutes  int
	Events        int
	PresenceTicks int
	Reactions     int
	Commands      int
}

type ActivityRepository interface {
	Increment(ctx context.Context, guildID, userID string, day time.Time, delta ActivityDelta) error
	GetRange(ctx context.Context, guildID, userID string, from, to time.Time) ([]*models.ActivityDay, error)
	GetActiveUserIDs(ctx context.Context, guildID string, since time.Time) ([]string, error)
}

type activityRepository struct {
	db *bun.DB
}

func NewActivityRepository(db *bun.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Increment(ctx context.Context, guildID, userID string, day time.Time, delta ActivityDelta) error {
	now := time.Now()
	row := &models.ActivityDay{
		GuildID:       guildID,
		UserID:        userID,
		Day:           truncateToDay(day),
		Messages:      delta.Messages,
		VoiceMinutes:  delta.VoiceMinutes,
		Events:        delta.Events,
		PresenceTicks: delta.PresenceTicks,
		Reactions:     delta.Reactions,
		Commands:      delta.Commands,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, user_id, day) DO UPDATE").
		Set("messages = ad.messages + EXCLUDED.messages").
		Set("voice_minutes = ad.voice_minutes + EXCLUDED.voice_minutes").
		Set("events = ad.events + EXCLUDED.events").
		Set("presence_ticks = ad.presence_ticks + EXCLUDED.presence_ticks").
		Set("reactions = ad.reactions + EXCLUDED.reactions").
		Set("commands = ad.commands + EXCLUDED.commands").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		slog.Error("Failed to increment activity counters",
			slog.String("type", "db"),
			slog.String("operation", "Increment"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
	return err
}

func (r *activityRepository) GetRange(ctx context.Context, guildID, userID string, from, to time.Time) ([]*models.ActivityDay, error) {
	var days []*models.ActivityDay
	err := r.db.NewSelect().
		Model(&days).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Where("day >= ?", truncateToDay(from)).
		Where("day <= ?", truncateToDay(to)).
		Order("day ASC").
		Scan(ctx)

	if err != nil {
		slog.Error("Failed to query activity range",
			slog.String("type", "db"),
			slog.String("operation", "GetRange"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, err
	}
	return days, nil
}

func (r *activityRepository) GetActiveUserIDs(ctx context.Context, guildID string, since time.Time) ([]string, error) {
	var userIDs []string
	err := r.db.NewSelect().
		Model((*models.ActivityDay)(nil)).
		ColumnExpr("DISTINCT user_id").
		Where("guild_id = ?", guildID).
		Where("day >= ?", truncateToDay(since)).
		Scan(ctx, &userIDs)

	if err != nil {
		slog.Error("Failed to query active users",
			slog.String("type", "db"),
			slog.String("operation", "GetActiveUserIDs"),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return nil, err
	}
	return userIDs, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
