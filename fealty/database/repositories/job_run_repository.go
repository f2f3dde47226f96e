package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/uptrace/bun"
)

type JobRunRepository interface {
	TryBegin(ctx context.Context, guildID, jobName, periodKey string, now time.Time) (bool, error)
}

type jobRunRepository struct {
	db *bun.DB
}

func NewJobRunRepository(db *bun.DB) JobRunRepository {
	return &jobRunRepository{db: db}
}

// TryBegin claims the (guild, job, period) marker. It returns true exactly
// once per period across all processes: the conflict target is the unique
// index, so a restart or a concurrent tick loses the insert and skips the
// run.
func (r *jobRunRepository) TryBegin(ctx context.Context, guildID, jobName, periodKey string, now time.Time) (bool, error) {
	row := &models.JobRun{
		GuildID:   guildID,
		JobName:   jobName,
		PeriodKey: periodKey,
		RanAt:     now,
	}

	result, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, job_name, period_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		slog.Error("Failed to claim job marker",
			slog.String("type", "db"),
			slog.String("operation", "TryBegin"),
			slog.String("guild_id", guildID),
			slog.String("job", jobName),
			slog.String("period", periodKey),
			slog.Any("error", err))
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
