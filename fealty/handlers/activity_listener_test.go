package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/ellavondegurechaff/fealty/fealty/database/repositories"
)

type fakeActivityRepo struct {
	mu     sync.Mutex
	deltas []repositories.ActivityDelta
}

func (f *fakeActivityRepo) Increment(ctx context.Context, guildID, userID string, day time.Time, delta repositories.ActivityDelta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deltas = append(f.deltas, delta)
	return nil
}

func (f *fakeActivityRepo) GetRange(ctx context.Context, guildID, userID string, from, to time.Time) ([]*models.ActivityDay, error) {
	return nil, nil
}

func (f *fakeActivityRepo) GetActiveUserIDs(ctx context.Context, guildID string, since time.Time) ([]string, error) {
	return nil, nil
}

func (f *fakeActivityRepo) recorded() []repositories.ActivityDelta {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repositories.ActivityDelta(nil), f.deltas...)
}

func TestFlushFinalCreditsSessionsAfterShutdown(t *testing.T) {
	repo := &fakeActivityRepo{}
	l := NewActivityListener(repo)

	key := voiceKey{guildID: snowflake.ID(100), userID: snowflake.ID(200)}
	l.mu.Lock()
	l.voiceSessions[key] = time.Now().Add(-3 * time.Minute)
	l.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	cancel()

	// The run context is dead; the terminal flush must still land.
	l.flushFinal()

	deltas := repo.recorded()
	require.Len(t, deltas, 1)
	assert.Equal(t, 3, deltas[0].VoiceMinutes)
	assert.Equal(t, 1, deltas[0].PresenceTicks)

	// Sanity: the same flush through the canceled run context records nothing.
	repo2 := &fakeActivityRepo{}
	l2 := NewActivityListener(repo2)
	l2.mu.Lock()
	l2.voiceSessions[key] = time.Now().Add(-3 * time.Minute)
	l2.mu.Unlock()
	l2.flushAll(runCtx)
	assert.Empty(t, repo2.recorded())
}
