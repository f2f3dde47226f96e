package economy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/repositories"
	"github.com/ellavondegurechaff/fealty/fealty/progression"
)

// ErrAlreadyClaimed is surfaced verbatim to the user when a non-stale weekly
// claim record exists.
var ErrAlreadyClaimed = errors.New("weekly stipend already claimed")

const claimStalePeriod = 7 * 24 * time.Hour

// StipendConfig are the weekly stipend tunables.
type StipendConfig struct {
	ClaimMin       int64
	ClaimMax       int64
	GarnishPercent int64
}

// ClaimResult reports a successful stipend claim.
type ClaimResult struct {
	Amount    int64 // paid out after garnishment
	Garnished int64 // diverted against debt
}

// StipendService pays out the weekly stipend. The amount is earned from the
// week's behavior, and outstanding debt is garnished before payout.
type StipendService struct {
	ranks       *progression.Service
	wallets     repositories.WalletRepository
	discipline  repositories.DisciplineRepository
	weeklyClaim repositories.WeeklyClaimRepository
	cfg         StipendConfig
	now         func() time.Time
}

func NewStipendService(
	ranks *progression.Service,
	wallets repositories.WalletRepository,
	discipline repositories.DisciplineRepository,
	weeklyClaim repositories.WeeklyClaimRepository,
	cfg StipendConfig,
) *StipendService {
	return &StipendService{
		ranks:       ranks,
		wallets:     wallets,
		discipline:  discipline,
		weeklyClaim: weeklyClaim,
		cfg:         cfg,
		now:         time.Now,
	}
}

// StipendAmount computes the clamped weekly stipend for a snapshot:
// WAS/10 + obedience/10 + 5 per streak day, clamped to the configured bounds.
func (s *StipendService) StipendAmount(snap progression.Snapshot) int64 {
	amount := int64(snap.WeeklyActivity/10) +
		int64(snap.Obedience.Score/10) +
		int64(snap.Obedience.StreakDays*5)

	if amount < s.cfg.ClaimMin {
		amount = s.cfg.ClaimMin
	}
	if amount > s.cfg.ClaimMax {
		amount = s.cfg.ClaimMax
	}
	return amount
}

// ClaimWeekly pays out the stipend once per 7-day period. With outstanding
// debt, a fixed share of the clamped amount is garnished against the debt
// first and only the remainder reaches the balance.
func (s *StipendService) ClaimWeekly(ctx context.Context, guildID, userID string) (ClaimResult, error) {
	now := s.now()

	record, err := s.weeklyClaim.Get(ctx, guildID, userID)
	if err != nil {
		return ClaimResult{}, err
	}
	if record != nil && now.Sub(record.LastClaimedAt) < claimStalePeriod {
		return ClaimResult{}, ErrAlreadyClaimed
	}

	snap, err := s.ranks.BuildSnapshot(ctx, guildID, userID, now)
	if err != nil {
		return ClaimResult{}, err
	}

	amount := s.StipendAmount(snap)

	var garnished int64
	if snap.Debt > 0 {
		garnished = amount * s.cfg.GarnishPercent / 100
		if garnished > snap.Debt {
			garnished = snap.Debt
		}
		if garnished > 0 {
			if _, err := s.discipline.AddDebt(ctx, guildID, userID, -garnished); err != nil {
				return ClaimResult{}, err
			}
		}
	}

	payout := amount - garnished
	if err := s.wallets.Deposit(ctx, guildID, userID, payout); err != nil {
		return ClaimResult{}, err
	}

	if err := s.weeklyClaim.Upsert(ctx, guildID, userID, now); err != nil {
		return ClaimResult{}, err
	}

	s.ranks.Invalidate(guildID, userID)

	slog.Info("Weekly stipend claimed",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID),
		slog.String("user_id", userID),
		slog.Int64("amount", payout),
		slog.Int64("garnished", garnished))

	return ClaimResult{Amount: payout, Garnished: garnished}, nil
}
