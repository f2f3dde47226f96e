package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Readiness(t *testing.T) {
	next := Ladder[1] // was 50, messages 20, obedience 30

	tests := []struct {
		name string
		snap Snapshot
		want int
	}{
		{
			name: "zero snapshot",
			snap: Snapshot{},
			want: 0,
		},
		{
			name: "halfway on every gate",
			snap: Snapshot{WeeklyActivity: 25, Messages7d: 10, Obedience: ObedienceResult{Score: 15}},
			want: 50,
		},
		{
			name: "per-gate ratios are capped before averaging",
			snap: Snapshot{WeeklyActivity: 5000, Messages7d: 0, Obedience: ObedienceResult{Score: 0}},
			want: 33,
		},
		{
			name: "all gates met",
			snap: Snapshot{WeeklyActivity: 50, Messages7d: 20, Obedience: ObedienceResult{Score: 30}},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Readiness(tt.snap, next))
		})
	}
}

func Test_Readiness_ungatedRankIsAlwaysReady(t *testing.T) {
	assert.Equal(t, 100, Readiness(Snapshot{}, Ladder[0]))
}

func Test_Blocker(t *testing.T) {
	next := Ladder[1]

	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{
			name: "worst gate wins",
			snap: Snapshot{WeeklyActivity: 45, Messages7d: 2, Obedience: ObedienceResult{Score: 25}},
			want: "messages (7d) (2/20)",
		},
		{
			name: "tie goes to the earliest declared gate",
			snap: Snapshot{},
			want: "weekly activity (0/50)",
		},
		{
			name: "all gates met yields the ready sentinel",
			snap: Snapshot{WeeklyActivity: 50, Messages7d: 20, Obedience: ObedienceResult{Score: 30}},
			want: BlockerReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Blocker(tt.snap, next))
		})
	}
}

func Test_Blocker_ungatedRank(t *testing.T) {
	assert.Equal(t, BlockerReady, Blocker(Snapshot{}, Ladder[0]))
}
