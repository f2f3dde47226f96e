package economy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/ellavondegurechaff/fealty/fealty/progression"
)

var claimTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testStipendConfig() StipendConfig {
	return StipendConfig{ClaimMin: 50, ClaimMax: 5000, GarnishPercent: 10}
}

func newStipendFixture(activities *fakeActivityRepo, orders *fakeOrderRepo, discipline *fakeDisciplineRepo, wallets *fakeWalletRepo, claims *fakeWeeklyClaimRepo) *StipendService {
	ranks := progression.NewService(activities, orders, discipline, wallets, newFakeRankCacheRepo(), 1000)
	svc := NewStipendService(ranks, wallets, discipline, claims, testStipendConfig())
	svc.now = func() time.Time { return claimTime }
	return svc
}

func Test_StipendAmount(t *testing.T) {
	svc := newStipendFixture(newFakeActivityRepo(), &fakeOrderRepo{}, newFakeDisciplineRepo(), newFakeWalletRepo(), newFakeWeeklyClaimRepo())

	tests := []struct {
		name string
		snap progression.Snapshot
		want int64
	}{
		{
			name: "reference week",
			snap: progression.Snapshot{
				WeeklyActivity: 500,
				Obedience:      progression.ObedienceResult{Score: 80, StreakDays: 2},
			},
			want: 68, // 50 + 8 + 10
		},
		{
			name: "floor applies to dead weeks",
			snap: progression.Snapshot{},
			want: 50,
		},
		{
			name: "ceiling applies to absurd weeks",
			snap: progression.Snapshot{
				WeeklyActivity: 1_000_000,
				Obedience:      progression.ObedienceResult{Score: 100, StreakDays: 14},
			},
			want: 5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.StipendAmount(tt.snap))
		})
	}
}

// orders engineered so the obedience score lands exactly on 80 with a streak
// of 2: 17 on-time, 6 late and 2 failed runs give base 78, the two newest
// completions add the streak bonus, and a completion today skips the decay.
func referenceOrders() *fakeOrderRepo {
	at := func(daysAgo int, hours int) time.Time {
		return claimTime.AddDate(0, 0, -daysAgo).Add(time.Duration(hours) * time.Hour)
	}
	completed := func(daysAgo int, hours int, late bool) *models.OrderRun {
		doneAt := at(daysAgo, hours)
		return &models.OrderRun{
			AcceptedAt:  at(daysAgo, hours-1),
			DueAt:       at(daysAgo, hours+1),
			CompletedAt: &doneAt,
			Status:      models.OrderStatusCompleted,
			Late:        late,
		}
	}

	repo := &fakeOrderRepo{}
	for i := 0; i < 15; i++ {
		repo.runs = append(repo.runs, completed(12, -10+i, false))
	}
	for i := 0; i < 6; i++ {
		repo.runs = append(repo.runs, completed(8, -8+i, true))
	}
	repo.runs = append(repo.runs,
		&models.OrderRun{AcceptedAt: at(6, 0), DueAt: at(6, 2), Status: models.OrderStatusFailed},
		&models.OrderRun{AcceptedAt: at(4, 0), DueAt: at(4, 2), Status: models.OrderStatusFailed},
		completed(2, 0, false),
		completed(0, -2, false),
	)
	return repo
}

func Test_ClaimWeekly_referenceVector(t *testing.T) {
	activities := newFakeActivityRepo()
	for i := 0; i < 5; i++ {
		activities.days["u1"] = append(activities.days["u1"], &models.ActivityDay{
			Day:      claimTime.AddDate(0, 0, -i).Truncate(24 * time.Hour),
			Messages: 100,
		})
	}
	discipline := newFakeDisciplineRepo()
	discipline.debt["u1"] = 1000
	wallets := newFakeWalletRepo()
	claims := newFakeWeeklyClaimRepo()

	svc := newStipendFixture(activities, referenceOrders(), discipline, wallets, claims)

	result, err := svc.ClaimWeekly(context.Background(), "g1", "u1")
	require.NoError(t, err)

	// WAS 500, obedience 80, streak 2: amount 68, 10% garnished.
	assert.Equal(t, int64(6), result.Garnished)
	assert.Equal(t, int64(62), result.Amount)
	assert.Equal(t, int64(994), discipline.debt["u1"])
	assert.Equal(t, []int64{62}, wallets.deposits["u1"])
}

func Test_ClaimWeekly_noDebtMeansNoGarnish(t *testing.T) {
	wallets := newFakeWalletRepo()
	svc := newStipendFixture(newFakeActivityRepo(), &fakeOrderRepo{}, newFakeDisciplineRepo(), wallets, newFakeWeeklyClaimRepo())

	result, err := svc.ClaimWeekly(context.Background(), "g1", "u1")
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Garnished)
	assert.Equal(t, int64(50), result.Amount, "an empty week pays the clamp floor")
}

func Test_ClaimWeekly_secondClaimRejected(t *testing.T) {
	claims := newFakeWeeklyClaimRepo()
	svc := newStipendFixture(newFakeActivityRepo(), &fakeOrderRepo{}, newFakeDisciplineRepo(), newFakeWalletRepo(), claims)

	_, err := svc.ClaimWeekly(context.Background(), "g1", "u1")
	require.NoError(t, err)

	_, err = svc.ClaimWeekly(context.Background(), "g1", "u1")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func Test_ClaimWeekly_staleRecordAllowsReclaim(t *testing.T) {
	claims := newFakeWeeklyClaimRepo()
	claims.claims["u1"] = claimTime.Add(-8 * 24 * time.Hour)

	svc := newStipendFixture(newFakeActivityRepo(), &fakeOrderRepo{}, newFakeDisciplineRepo(), newFakeWalletRepo(), claims)

	_, err := svc.ClaimWeekly(context.Background(), "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, claimTime, claims.claims["u1"])
}

func Test_ClaimWeekly_garnishCappedAtDebt(t *testing.T) {
	discipline := newFakeDisciplineRepo()
	discipline.debt["u1"] = 3

	svc := newStipendFixture(newFakeActivityRepo(), &fakeOrderRepo{}, discipline, newFakeWalletRepo(), newFakeWeeklyClaimRepo())

	result, err := svc.ClaimWeekly(context.Background(), "g1", "u1")
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Garnished)
	assert.Equal(t, int64(0), discipline.debt["u1"])
}
