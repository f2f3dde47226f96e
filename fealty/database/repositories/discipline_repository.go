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

type DisciplineRepository interface {
	Get(ctx context.Context, guildID, userID string) (*models.DisciplineState, error)
	AddDebt(ctx context.Context, guildID, userID string, delta int64) (int64, error)
	AddInterest(ctx context.Context, guildID, userID string, percent int64) (int64, error)
	MarkTaxed(ctx context.Context, guildID, userID string, at time.Time) error
	ResetInactiveDays(ctx context.Context, guildID, userID string) error
	ListDebtors(ctx context.Context, guildID string) ([]*models.DisciplineState, error)
}

type disciplineRepository struct {
	db *bun.DB
}

func NewDisciplineRepository(db *bun.DB) DisciplineRepository {
	return &disciplineRepository{db: db}
}

// Get returns the user's discipline state, or a zero-valued state when the
// user has no row yet. Missing state is not an error on read paths.
func (r *disciplineRepository) Get(ctx context.Context, guildID, userID string) (*models.DisciplineState, error) {
	state := new(models.DisciplineState)
	err := r.db.NewSelect().
		Model(state).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.DisciplineState{GuildID: guildID, UserID: userID}, nil
		}
		slog.Error("Failed to get discipline state",
			slog.String("type", "db"),
			slog.String("operation", "Get"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, err
	}
	return state, nil
}

// AddDebt atomically applies a debt delta, clamping the result at zero, and
// returns the new debt.
func (r *disciplineRepository) AddDebt(ctx context.Context, guildID, userID string, delta int64) (int64, error) {
	now := time.Now()
	row := &models.DisciplineState{
		GuildID:   guildID,
		UserID:    userID,
		Debt:      max64(0, delta),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var newDebt int64
	err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, user_id) DO UPDATE").
		Set("debt = GREATEST(0, ds.debt + ?)", delta).
		Set("updated_at = EXCLUDED.updated_at").
		Returning("debt").
		Scan(ctx, &newDebt)

	if err != nil {
		slog.Error("Failed to adjust debt",
			slog.String("type", "db"),
			slog.String("operation", "AddDebt"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Int64("delta", delta),
			slog.Any("error", err))
		return 0, err
	}
	return newDebt, nil
}

// AddInterest grows an existing debt by percent (integer math, rounded down)
// and returns the new debt. Users without debt are untouched.
func (r *disciplineRepository) AddInterest(ctx context.Context, guildID, userID string, percent int64) (int64, error) {
	var newDebt int64
	err := r.db.NewUpdate().
		Model((*models.DisciplineState)(nil)).
		Set("debt = debt + debt * ? / 100", percent).
		Set("updated_at = ?", time.Now()).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Where("debt > 0").
		Returning("debt").
		Scan(ctx, &newDebt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return newDebt, nil
}

func (r *disciplineRepository) MarkTaxed(ctx context.Context, guildID, userID string, at time.Time) error {
	row := &models.DisciplineState{
		GuildID:      guildID,
		UserID:       userID,
		InactiveDays: 1,
		LastTaxedAt:  at,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, user_id) DO UPDATE").
		Set("inactive_days = ds.inactive_days + 1").
		Set("last_taxed_at = EXCLUDED.last_taxed_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *disciplineRepository) ResetInactiveDays(ctx context.Context, guildID, userID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.DisciplineState)(nil)).
		Set("inactive_days = 0").
		Set("updated_at = ?", time.Now()).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Where("inactive_days > 0").
		Exec(ctx)
	return err
}

func (r *disciplineRepository) ListDebtors(ctx context.Context, guildID string) ([]*models.DisciplineState, error) {
	var states []*models.DisciplineState
	err := r.db.NewSelect().
		Model(&states).
		Where("guild_id = ?", guildID).
		Where("debt > 0").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return states, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
