package progression

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/ellavondegurechaff/fealty/fealty/database/repositories"
)

type fakeActivityRepo struct {
	days   []*models.ActivityDay
	active []string
	ranges int
}

func (f *fakeActivityRepo) Increment(context.Context, string, string, time.Time, repositories.ActivityDelta) error {
	return nil
}

func (f *fakeActivityRepo) GetRange(context.Context, string, string, time.Time, time.Time) ([]*models.ActivityDay, error) {
	f.ranges++
	return f.days, nil
}

func (f *fakeActivityRepo) GetActiveUserIDs(context.Context, string, time.Time) ([]string, error) {
	return f.active, nil
}

type fakeOrderRepo struct {
	runs []*models.OrderRun
}

func (f *fakeOrderRepo) Create(context.Context, *models.OrderRun) error { return nil }

func (f *fakeOrderRepo) GetSince(context.Context, string, string, time.Time) ([]*models.OrderRun, error) {
	return f.runs, nil
}

func (f *fakeOrderRepo) GetOpenOrder(context.Context, string, string) (*models.OrderRun, error) {
	return nil, nil
}

func (f *fakeOrderRepo) Complete(context.Context, int64, time.Time) error { return nil }
func (f *fakeOrderRepo) Fail(context.Context, int64, time.Time) error     { return nil }

type fakeDisciplineRepo struct {
	state *models.DisciplineState
}

func (f *fakeDisciplineRepo) Get(context.Context, string, string) (*models.DisciplineState, error) {
	if f.state == nil {
		return &models.DisciplineState{}, nil
	}
	return f.state, nil
}

func (f *fakeDisciplineRepo) AddDebt(_ context.Context, _, _ string, delta int64) (int64, error) {
	if f.state == nil {
		f.state = &models.DisciplineState{}
	}
	f.state.Debt += delta
	if f.state.Debt < 0 {
		f.state.Debt = 0
	}
	return f.state.Debt, nil
}

func (f *fakeDisciplineRepo) AddInterest(context.Context, string, string, int64) (int64, error) {
	return 0, nil
}

func (f *fakeDisciplineRepo) MarkTaxed(context.Context, string, string, time.Time) error { return nil }
func (f *fakeDisciplineRepo) ResetInactiveDays(context.Context, string, string) error    { return nil }

func (f *fakeDisciplineRepo) ListDebtors(context.Context, string) ([]*models.DisciplineState, error) {
	return nil, nil
}

type fakeWalletRepo struct {
	wallet *models.Wallet
}

func (f *fakeWalletRepo) Get(context.Context, string, string) (*models.Wallet, error) {
	if f.wallet == nil {
		return &models.Wallet{}, nil
	}
	return f.wallet, nil
}

func (f *fakeWalletRepo) Deposit(context.Context, string, string, int64) error { return nil }

func (f *fakeWalletRepo) Burn(context.Context, string, string, int64) (int64, error) {
	return 0, nil
}

type fakeRankCacheRepo struct {
	cache   *models.RankCache
	upserts int
}

func (f *fakeRankCacheRepo) Get(context.Context, string, string) (*models.RankCache, error) {
	return f.cache, nil
}

func (f *fakeRankCacheRepo) Upsert(_ context.Context, cache *models.RankCache) error {
	f.upserts++
	f.cache = cache
	return nil
}

func newTestService(activities *fakeActivityRepo, orders *fakeOrderRepo, discipline *fakeDisciplineRepo, wallets *fakeWalletRepo, caches *fakeRankCacheRepo) *Service {
	svc := NewService(activities, orders, discipline, wallets, caches, 1000)
	svc.now = func() time.Time { return evalTime }
	return svc
}

func Test_GetRankView_isIdempotent(t *testing.T) {
	activities := &fakeActivityRepo{days: []*models.ActivityDay{
		{Day: evalTime.Add(-24 * time.Hour), Messages: 80, VoiceMinutes: 120},
	}}
	wallets := &fakeWalletRepo{wallet: &models.Wallet{Balance: 300, LifetimeEarned: 2500}}
	caches := &fakeRankCacheRepo{}

	svc := newTestService(activities, &fakeOrderRepo{}, &fakeDisciplineRepo{}, wallets, caches)

	first, err := svc.GetRankView(context.Background(), "g1", "u1")
	require.NoError(t, err)
	second, err := svc.GetRankView(context.Background(), "g1", "u1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func Test_GetRankView_neverWrites(t *testing.T) {
	caches := &fakeRankCacheRepo{cache: &models.RankCache{HeldRank: 3}}
	svc := newTestService(&fakeActivityRepo{}, &fakeOrderRepo{}, &fakeDisciplineRepo{}, &fakeWalletRepo{}, caches)

	_, err := svc.GetRankView(context.Background(), "g1", "u1")
	require.NoError(t, err)

	assert.Equal(t, 0, caches.upserts)
}

func Test_GetRankView_memoizesReads(t *testing.T) {
	activities := &fakeActivityRepo{}
	svc := newTestService(activities, &fakeOrderRepo{}, &fakeDisciplineRepo{}, &fakeWalletRepo{}, &fakeRankCacheRepo{})

	_, err := svc.GetRankView(context.Background(), "g1", "u1")
	require.NoError(t, err)
	_, err = svc.GetRankView(context.Background(), "g1", "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, activities.ranges, "second read must come from the memo")
}

func Test_Refresh_persistsRankCache(t *testing.T) {
	wallets := &fakeWalletRepo{wallet: &models.Wallet{LifetimeEarned: 600}}
	caches := &fakeRankCacheRepo{}
	svc := newTestService(&fakeActivityRepo{}, &fakeOrderRepo{}, &fakeDisciplineRepo{}, wallets, caches)

	cache, err := svc.Refresh(context.Background(), "g1", "u1", evalTime)
	require.NoError(t, err)

	assert.Equal(t, 1, caches.upserts)
	assert.Equal(t, 1, cache.CoinRank)
	assert.Equal(t, 0, cache.EligibleRank)
	assert.Equal(t, 0, cache.HeldRank, "held rank is min of coin and eligible on first evaluation")
	assert.NotEmpty(t, cache.Blocker)
}

func Test_RefreshWeekly_softDemotionAfterTwoFailedWeeksAndGrace(t *testing.T) {
	wallets := &fakeWalletRepo{wallet: &models.Wallet{LifetimeEarned: 50_000}}
	caches := &fakeRankCacheRepo{cache: &models.RankCache{
		HeldRank:    4,
		AtRisk:      true,
		AtRiskSince: evalTime.Add(-AtRiskGracePeriod),
		FailedWeeks: 1,
	}}
	// The snapshot fails rank 4's gates, so this weekly evaluation advances
	// failed weeks to 2 and the elapsed grace lets the demotion execute.
	svc := newTestService(&fakeActivityRepo{}, &fakeOrderRepo{}, &fakeDisciplineRepo{}, wallets, caches)

	cache, err := svc.RefreshWeekly(context.Background(), "g1", "u1", evalTime)
	require.NoError(t, err)

	assert.Equal(t, 3, cache.HeldRank, "soft demotion steps exactly one rank")
	assert.Equal(t, 0, cache.FailedWeeks)
	assert.False(t, cache.AtRisk)
}

func Test_AdjustDebt_clampsAtZero(t *testing.T) {
	discipline := &fakeDisciplineRepo{state: &models.DisciplineState{Debt: 100}}
	svc := newTestService(&fakeActivityRepo{}, &fakeOrderRepo{}, discipline, &fakeWalletRepo{}, &fakeRankCacheRepo{})

	newDebt, err := svc.AdjustDebt(context.Background(), "g1", "u1", -500)
	require.NoError(t, err)

	assert.Equal(t, int64(0), newDebt)
}
