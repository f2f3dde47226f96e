package economy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/ellavondegurechaff/fealty/fealty/database/repositories"
)

type fakeActivityRepo struct {
	mu     sync.Mutex
	days   map[string][]*models.ActivityDay // keyed by user ID
	active []string
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{days: make(map[string][]*models.ActivityDay)}
}

func (f *fakeActivityRepo) Increment(context.Context, string, string, time.Time, repositories.ActivityDelta) error {
	return nil
}

func (f *fakeActivityRepo) GetRange(_ context.Context, _, userID string, from, to time.Time) ([]*models.ActivityDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ActivityDay
	for _, d := range f.days[userID] {
		if d.Day.Before(from.Truncate(24*time.Hour)) || d.Day.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
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
	mu        sync.Mutex
	debt      map[string]int64
	taxMarks  map[string]int
	resets    map[string]int
	interests map[string]int
}

func newFakeDisciplineRepo() *fakeDisciplineRepo {
	return &fakeDisciplineRepo{
		debt:      make(map[string]int64),
		taxMarks:  make(map[string]int),
		resets:    make(map[string]int),
		interests: make(map[string]int),
	}
}

func (f *fakeDisciplineRepo) Get(_ context.Context, _, userID string) (*models.DisciplineState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.DisciplineState{UserID: userID, Debt: f.debt[userID]}, nil
}

func (f *fakeDisciplineRepo) AddDebt(_ context.Context, _, userID string, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debt[userID] += delta
	if f.debt[userID] < 0 {
		f.debt[userID] = 0
	}
	return f.debt[userID], nil
}

func (f *fakeDisciplineRepo) AddInterest(_ context.Context, _, userID string, percent int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interests[userID]++
	f.debt[userID] += f.debt[userID] * percent / 100
	return f.debt[userID], nil
}

func (f *fakeDisciplineRepo) MarkTaxed(_ context.Context, _, userID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taxMarks[userID]++
	return nil
}

func (f *fakeDisciplineRepo) ResetInactiveDays(_ context.Context, _, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets[userID]++
	return nil
}

func (f *fakeDisciplineRepo) ListDebtors(context.Context, string) ([]*models.DisciplineState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DisciplineState
	for userID, debt := range f.debt {
		if debt > 0 {
			out = append(out, &models.DisciplineState{UserID: userID, Debt: debt})
		}
	}
	return out, nil
}

type fakeWalletRepo struct {
	mu       sync.Mutex
	balances map[string]int64
	earned   map[string]int64
	deposits map[string][]int64
	burns    map[string][]int64
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		balances: make(map[string]int64),
		earned:   make(map[string]int64),
		deposits: make(map[string][]int64),
		burns:    make(map[string][]int64),
	}
}

func (f *fakeWalletRepo) Get(_ context.Context, _, userID string) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.Wallet{
		UserID:         userID,
		Balance:        f.balances[userID],
		LifetimeEarned: f.earned[userID],
	}, nil
}

func (f *fakeWalletRepo) Deposit(_ context.Context, _, userID string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deposits[userID] = append(f.deposits[userID], amount)
	f.balances[userID] += amount
	f.earned[userID] += amount
	return nil
}

func (f *fakeWalletRepo) Burn(_ context.Context, _, userID string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.burns[userID] = append(f.burns[userID], amount)
	f.balances[userID] -= amount
	if f.balances[userID] < 0 {
		f.balances[userID] = 0
	}
	return f.balances[userID], nil
}

type fakeRankCacheRepo struct {
	mu     sync.Mutex
	caches map[string]*models.RankCache
}

func newFakeRankCacheRepo() *fakeRankCacheRepo {
	return &fakeRankCacheRepo{caches: make(map[string]*models.RankCache)}
}

func (f *fakeRankCacheRepo) Get(_ context.Context, _, userID string) (*models.RankCache, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caches[userID], nil
}

func (f *fakeRankCacheRepo) Upsert(_ context.Context, cache *models.RankCache) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caches[cache.UserID] = cache
	return nil
}

func (f *fakeRankCacheRepo) MustGet(t *testing.T, userID string) *models.RankCache {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	cache, ok := f.caches[userID]
	if !ok {
		t.Fatalf("no rank cache persisted for %s", userID)
	}
	return cache
}

type fakeWeeklyClaimRepo struct {
	mu     sync.Mutex
	claims map[string]time.Time
	pruned int64
}

func newFakeWeeklyClaimRepo() *fakeWeeklyClaimRepo {
	return &fakeWeeklyClaimRepo{claims: make(map[string]time.Time)}
}

func (f *fakeWeeklyClaimRepo) Get(_ context.Context, _, userID string) (*models.WeeklyClaim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claimedAt, ok := f.claims[userID]
	if !ok {
		return nil, nil
	}
	return &models.WeeklyClaim{UserID: userID, LastClaimedAt: claimedAt}, nil
}

func (f *fakeWeeklyClaimRepo) Upsert(_ context.Context, _, userID string, claimedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims[userID] = claimedAt
	return nil
}

func (f *fakeWeeklyClaimRepo) PruneStale(_ context.Context, _ string, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for userID, claimedAt := range f.claims {
		if claimedAt.Before(olderThan) {
			delete(f.claims, userID)
			f.pruned++
		}
	}
	return f.pruned, nil
}

func (f *fakeWeeklyClaimRepo) ListStaleUserIDs(_ context.Context, _ string, olderThan time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for userID, claimedAt := range f.claims {
		if claimedAt.Before(olderThan) {
			out = append(out, userID)
		}
	}
	return out, nil
}

type fakeJobRunRepo struct {
	mu      sync.Mutex
	markers map[string]bool
}

func newFakeJobRunRepo() *fakeJobRunRepo {
	return &fakeJobRunRepo{markers: make(map[string]bool)}
}

func (f *fakeJobRunRepo) TryBegin(_ context.Context, guildID, jobName, periodKey string, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := guildID + "/" + jobName + "/" + periodKey
	if f.markers[key] {
		return false, nil
	}
	f.markers[key] = true
	return true, nil
}
