package economy

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/fealty/fealty/config"
	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/ellavondegurechaff/fealty/fealty/database/repositories"
	"github.com/ellavondegurechaff/fealty/fealty/progression"
)

// JobConfig are the batch job tunables.
type JobConfig struct {
	InactivityTaxFloor  int64
	InactivityTaxRate   float64
	DebtInterestPercent int64
}

// JobRunner executes the periodic economic jobs. Every job is guarded by a
// persisted period marker, so each runs at most once per period even across
// restarts, and each per-user unit of work is an idempotent recompute plus
// atomic writes, so an interrupted run leaves no corrupted state.
type JobRunner struct {
	ranks       *progression.Service
	activities  repositories.ActivityRepository
	discipline  repositories.DisciplineRepository
	wallets     repositories.WalletRepository
	weeklyClaim repositories.WeeklyClaimRepository
	jobRuns     repositories.JobRunRepository
	cfg         JobConfig
	now         func() time.Time
}

func NewJobRunner(
	ranks *progression.Service,
	activities repositories.ActivityRepository,
	discipline repositories.DisciplineRepository,
	wallets repositories.WalletRepository,
	weeklyClaim repositories.WeeklyClaimRepository,
	jobRuns repositories.JobRunRepository,
	cfg JobConfig,
) *JobRunner {
	return &JobRunner{
		ranks:       ranks,
		activities:  activities,
		discipline:  discipline,
		wallets:     wallets,
		weeklyClaim: weeklyClaim,
		jobRuns:     jobRuns,
		cfg:         cfg,
		now:         time.Now,
	}
}

// RunDailyIfDue runs the daily sweep for one guild unless it already ran for
// today's calendar day. For every user active in the trailing 30 days it
// applies the inactivity tax when today shows no qualifying activity, then
// recomputes and persists the full rank cache.
func (r *JobRunner) RunDailyIfDue(ctx context.Context, guildID string) error {
	now := r.now()
	period := models.DailyPeriodKey(now)

	due, err := r.jobRuns.TryBegin(ctx, guildID, models.JobDaily, period, now)
	if err != nil {
		return err
	}
	if !due {
		return nil
	}

	start := time.Now()
	slog.Info("Daily job starting",
		slog.String("type", "job"),
		slog.String("name", models.JobDaily),
		slog.String("guild_id", guildID),
		slog.String("period", period))

	userIDs, err := r.activities.GetActiveUserIDs(ctx, guildID, now.Add(-config.ActiveUserWindow))
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(config.BatchUserConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			// A single user's failure never aborts the guild sweep.
			if err := r.dailyUser(ctx, guildID, userID, now); err != nil {
				slog.Error("Daily job failed for user",
					slog.String("type", "job"),
					slog.String("name", models.JobDaily),
					slog.String("guild_id", guildID),
					slog.String("user_id", userID),
					slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("Daily job completed",
		slog.String("type", "job"),
		slog.String("name", models.JobDaily),
		slog.String("guild_id", guildID),
		slog.Int("users", len(userIDs)),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (r *JobRunner) dailyUser(ctx context.Context, guildID, userID string, now time.Time) error {
	days, err := r.activities.GetRange(ctx, guildID, userID, now, now)
	if err != nil {
		return err
	}

	activeToday := false
	for _, day := range days {
		if day.HasQualifyingActivity() {
			activeToday = true
			break
		}
	}

	if activeToday {
		if err := r.discipline.ResetInactiveDays(ctx, guildID, userID); err != nil {
			return err
		}
	} else {
		wallet, err := r.wallets.Get(ctx, guildID, userID)
		if err != nil {
			return err
		}

		tax := r.InactivityTax(wallet.Balance)
		if _, err := r.wallets.Burn(ctx, guildID, userID, tax); err != nil {
			return err
		}
		if err := r.discipline.MarkTaxed(ctx, guildID, userID, now); err != nil {
			return err
		}

		slog.Debug("Inactivity tax applied",
			slog.String("type", "job"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Int64("tax", tax))
	}

	_, err = r.ranks.Refresh(ctx, guildID, userID, now)
	return err
}

// InactivityTax is the daily levy for a day without qualifying activity.
func (r *JobRunner) InactivityTax(balance int64) int64 {
	tax := int64(r.cfg.InactivityTaxRate * float64(balance))
	if tax < r.cfg.InactivityTaxFloor {
		tax = r.cfg.InactivityTaxFloor
	}
	return tax
}

// RunWeeklyIfDue runs the weekly sweep for one guild unless it already ran
// for this ISO week: debt interest, the soft-demotion evaluation, and pruning
// of stale claim records so users become claim-eligible again.
func (r *JobRunner) RunWeeklyIfDue(ctx context.Context, guildID string) error {
	now := r.now()
	period := models.WeeklyPeriodKey(now)

	due, err := r.jobRuns.TryBegin(ctx, guildID, models.JobWeekly, period, now)
	if err != nil {
		return err
	}
	if !due {
		return nil
	}

	start := time.Now()
	slog.Info("Weekly job starting",
		slog.String("type", "job"),
		slog.String("name", models.JobWeekly),
		slog.String("guild_id", guildID),
		slog.String("period", period))

	userIDs, err := r.weeklyScope(ctx, guildID, now)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		if err := r.weeklyUser(ctx, guildID, userID, now); err != nil {
			slog.Error("Weekly job failed for user",
				slog.String("type", "job"),
				slog.String("name", models.JobWeekly),
				slog.String("guild_id", guildID),
				slog.String("user_id", userID),
				slog.Any("error", err))
		}
	}

	pruned, err := r.weeklyClaim.PruneStale(ctx, guildID, now.Add(-claimStalePeriod))
	if err != nil {
		return err
	}

	slog.Info("Weekly job completed",
		slog.String("type", "job"),
		slog.String("name", models.JobWeekly),
		slog.String("guild_id", guildID),
		slog.Int("users", len(userIDs)),
		slog.Int64("claims_pruned", pruned),
		slog.Duration("took", time.Since(start)))
	return nil
}

// weeklyScope is every user with nonzero debt or a stale claim record.
func (r *JobRunner) weeklyScope(ctx context.Context, guildID string, now time.Time) ([]string, error) {
	seen := make(map[string]struct{})
	var userIDs []string

	debtors, err := r.discipline.ListDebtors(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, d := range debtors {
		if _, ok := seen[d.UserID]; !ok {
			seen[d.UserID] = struct{}{}
			userIDs = append(userIDs, d.UserID)
		}
	}

	stale, err := r.weeklyClaim.ListStaleUserIDs(ctx, guildID, now.Add(-claimStalePeriod))
	if err != nil {
		return nil, err
	}
	for _, id := range stale {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}
	return userIDs, nil
}

func (r *JobRunner) weeklyUser(ctx context.Context, guildID, userID string, now time.Time) error {
	if _, err := r.discipline.AddInterest(ctx, guildID, userID, r.cfg.DebtInterestPercent); err != nil {
		return err
	}

	_, err := r.ranks.RefreshWeekly(ctx, guildID, userID, now)
	return err
}
