package progression

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/ellavondegurechaff/fealty/fealty/database/repositories"
)

const (
	viewCacheSize = 4096
	viewCacheTTL  = 5 * time.Minute
)

// RankView is the read-only rank summary exposed to command handlers.
type RankView struct {
	CoinRank     Rank
	EligibleRank Rank
	HeldRank     Rank
	NextRank     *Rank
	Readiness    int
	Blocker      string
	AtRisk       bool
	Obedience    ObedienceResult
	WAS          int
	Balance      int64
	Debt         int64
}

type cachedView struct {
	view      RankView
	timestamp time.Time
}

// Service runs the full rank evaluation pipeline: snapshot assembly, coin and
// eligible rank, held-rank hysteresis, readiness and blocker. The batch jobs
// and the interactive commands share it so both paths compute identically.
type Service struct {
	activities repositories.ActivityRepository
	orders     repositories.OrderRepository
	discipline repositories.DisciplineRepository
	wallets    repositories.WalletRepository
	rankCaches repositories.RankCacheRepository

	debtThreshold int64

	viewCache *lru.Cache
	now       func() time.Time
}

func NewService(
	activities repositories.ActivityRepository,
	orders repositories.OrderRepository,
	discipline repositories.DisciplineRepository,
	wallets repositories.WalletRepository,
	rankCaches repositories.RankCacheRepository,
	debtThreshold int64,
) *Service {
	cache, _ := lru.New(viewCacheSize)
	return &Service{
		activities:    activities,
		orders:        orders,
		discipline:    discipline,
		wallets:       wallets,
		rankCaches:    rankCaches,
		debtThreshold: debtThreshold,
		viewCache:     cache,
		now:           time.Now,
	}
}

// BuildSnapshot assembles the explicit metrics snapshot every calculation
// consumes. Missing records contribute zero values, never errors.
func (s *Service) BuildSnapshot(ctx context.Context, guildID, userID string, asOf time.Time) (Snapshot, error) {
	from := startOfDay(asOf).AddDate(0, 0, -(weeklyWindowDays - 1))
	days, err := s.activities.GetRange(ctx, guildID, userID, from, asOf)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load activity window: %w", err)
	}

	runs, err := s.orders.GetSince(ctx, guildID, userID, ObedienceWindowStart(asOf))
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load order history: %w", err)
	}

	wallet, err := s.wallets.Get(ctx, guildID, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load wallet: %w", err)
	}

	state, err := s.discipline.Get(ctx, guildID, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load discipline state: %w", err)
	}

	return Snapshot{
		GuildID:        guildID,
		UserID:         userID,
		AsOf:           asOf,
		WeeklyActivity: WeeklyActivityScore(days, asOf),
		Messages7d:     MessagesLast7Days(days, asOf),
		Obedience:      ScoreOrders(runs, asOf),
		LifetimeEarned: wallet.LifetimeEarned,
		Balance:        wallet.Balance,
		Debt:           state.Debt,
	}, nil
}

// GetRankView computes the current rank summary for a single user. It never
// writes: hysteresis state is taken from the cache row as-is, so the call is
// idempotent and safe at arbitrary frequency. A short-lived memo absorbs
// bursts of reads.
func (s *Service) GetRankView(ctx context.Context, guildID, userID string) (RankView, error) {
	key := guildID + ":" + userID
	now := s.now()
	if entry, ok := s.viewCache.Get(key); ok {
		cached := entry.(cachedView)
		if now.Sub(cached.timestamp) < viewCacheTTL {
			return cached.view, nil
		}
	}
	snap, err := s.BuildSnapshot(ctx, guildID, userID, now)
	if err != nil {
		return RankView{}, err
	}

	prev, err := s.rankCaches.Get(ctx, guildID, userID)
	if err != nil {
		return RankView{}, err
	}

	view := s.buildView(snap, prev, now)
	s.viewCache.Add(key, cachedView{view: view, timestamp: now})
	return view, nil
}

func (s *Service) buildView(snap Snapshot, prev *models.RankCache, now time.Time) RankView {
	coin := CoinRank(snap.LifetimeEarned)
	eligible := EligibleRank(snap)
	res := ResolveHeld(prev, coin, eligible, snap.Debt, s.debtThreshold, now)

	view := RankView{
		CoinRank:     Ladder[coin],
		EligibleRank: Ladder[eligible],
		HeldRank:     Ladder[res.HeldRank],
		AtRisk:       res.AtRisk,
		Obedience:    snap.Obedience,
		WAS:          snap.WeeklyActivity,
		Balance:      snap.Balance,
		Debt:         snap.Debt,
	}

	if res.HeldRank < TopRank {
		next := Ladder[res.HeldRank+1]
		view.NextRank = &next
		view.Readiness = Readiness(snap, next)
		view.Blocker = Blocker(snap, next)
	} else {
		view.Readiness = 100
		view.Blocker = BlockerReady
	}
	return view
}

// Refresh performs the full idempotent recompute and memoizes it in the rank
// cache. The daily batch job calls this per user; commands that mutate
// economy state call it to keep the memo warm.
func (s *Service) Refresh(ctx context.Context, guildID, userID string, asOf time.Time) (*models.RankCache, error) {
	return s.refresh(ctx, guildID, userID, asOf, false)
}

// RefreshWeekly is Refresh plus the weekly soft-demotion evaluation: the
// consecutive-failed-weeks counter advances before the held rank resolves.
func (s *Service) RefreshWeekly(ctx context.Context, guildID, userID string, asOf time.Time) (*models.RankCache, error) {
	return s.refresh(ctx, guildID, userID, asOf, true)
}

func (s *Service) refresh(ctx context.Context, guildID, userID string, asOf time.Time, weekly bool) (*models.RankCache, error) {
	snap, err := s.BuildSnapshot(ctx, guildID, userID, asOf)
	if err != nil {
		return nil, err
	}

	prev, err := s.rankCaches.Get(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	if weekly && prev != nil {
		prev.FailedWeeks = EvaluateWeek(prev.FailedWeeks, prev.HeldRank, snap)
	}

	coin := CoinRank(snap.LifetimeEarned)
	eligible := EligibleRank(snap)
	res := ResolveHeld(prev, coin, eligible, snap.Debt, s.debtThreshold, asOf)

	cache := &models.RankCache{
		GuildID:       guildID,
		UserID:        userID,
		CoinRank:      coin,
		EligibleRank:  eligible,
		HeldRank:      res.HeldRank,
		AtRisk:        res.AtRisk,
		AtRiskSince:   res.AtRiskSince,
		FailedWeeks:   res.FailedWeeks,
		LastPromotion: res.LastPromotion,
	}
	if prev != nil {
		cache.ID = prev.ID
	}

	if res.HeldRank < TopRank {
		next := Ladder[res.HeldRank+1]
		cache.Readiness = Readiness(snap, next)
		cache.Blocker = Blocker(snap, next)
	} else {
		cache.Readiness = 100
		cache.Blocker = BlockerReady
	}

	if err := s.rankCaches.Upsert(ctx, cache); err != nil {
		return nil, err
	}

	if res.Promoted || res.Demoted {
		slog.Info("Rank changed",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Int("held_rank", res.HeldRank),
			slog.Bool("promoted", res.Promoted),
			slog.Bool("demoted", res.Demoted))
	}

	s.Invalidate(guildID, userID)
	return cache, nil
}

// AdjustDebt applies an admin debt delta. A delta that would push debt
// negative clamps to zero rather than erroring.
func (s *Service) AdjustDebt(ctx context.Context, guildID, userID string, delta int64) (int64, error) {
	newDebt, err := s.discipline.AddDebt(ctx, guildID, userID, delta)
	if err != nil {
		return 0, err
	}
	s.Invalidate(guildID, userID)
	return newDebt, nil
}

// Invalidate drops the memoized view for one user.
func (s *Service) Invalidate(guildID, userID string) {
	s.viewCache.Remove(guildID + ":" + userID)
}
