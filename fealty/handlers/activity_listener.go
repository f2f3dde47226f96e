package handlers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/fealty/fealty/config"
	"github.com/ellavondegurechaff/fealty/fealty/database/repositories"
)

// ActivityListener translates gateway events into daily activity counter
// increments. Voice time is tracked in memory per session and flushed as
// whole minutes when the user leaves or on the periodic tick, so a crash
// loses at most one tick's worth of credit.
type ActivityListener struct {
	activities repositories.ActivityRepository

	mu            sync.Mutex
	voiceSessions map[voiceKey]time.Time
}

type voiceKey struct {
	guildID snowflake.ID
	userID  snowflake.ID
}

func NewActivityListener(activities repositories.ActivityRepository) *ActivityListener {
	return &ActivityListener{
		activities:    activities,
		voiceSessions: make(map[voiceKey]time.Time),
	}
}

// Listeners returns the gateway listeners to register with the client.
func (l *ActivityListener) Listeners() []bot.EventListener {
	return []bot.EventListener{
		bot.NewListenerFunc(l.onMessageCreate),
		bot.NewListenerFunc(l.onReactionAdd),
		bot.NewListenerFunc(l.onVoiceStateUpdate),
		bot.NewListenerFunc(l.onScheduledEventUserAdd),
	}
}

// StartPresenceTicker flushes in-progress voice sessions and credits presence
// ticks on a fixed interval until ctx ends.
func (l *ActivityListener) StartPresenceTicker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(config.PresenceTick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				l.flushFinal()
				return
			case <-ticker.C:
				l.flushAll(ctx)
			}
		}
	}()
}

// flushFinal runs the shutdown flush on its own deadline; the run context is
// already canceled by the time it fires.
func (l *ActivityListener) flushFinal() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	l.flushAll(ctx)
}

func (l *ActivityListener) onMessageCreate(e *events.GuildMessageCreate) {
	if e.Message.Author.Bot {
		return
	}
	l.increment(e.GuildID, e.Message.Author.ID, repositories.ActivityDelta{Messages: 1})
}

func (l *ActivityListener) onReactionAdd(e *events.GuildMessageReactionAdd) {
	if e.Member.User.Bot {
		return
	}
	l.increment(e.GuildID, e.UserID, repositories.ActivityDelta{Reactions: 1})
}

func (l *ActivityListener) onScheduledEventUserAdd(e *events.GuildScheduledEventUserAdd) {
	l.increment(e.GuildID, e.UserID, repositories.ActivityDelta{Events: 1})
}

func (l *ActivityListener) onVoiceStateUpdate(e *events.GuildVoiceStateUpdate) {
	key := voiceKey{guildID: e.VoiceState.GuildID, userID: e.VoiceState.UserID}
	now := time.Now()

	l.mu.Lock()
	started, inSession := l.voiceSessions[key]
	if e.VoiceState.ChannelID == nil {
		delete(l.voiceSessions, key)
	} else if !inSession {
		l.voiceSessions[key] = now
	}
	l.mu.Unlock()

	if e.VoiceState.ChannelID == nil && inSession {
		l.creditVoice(key, started, now)
	}
}

// flushAll converts every in-progress session into voice minutes and a
// presence tick, restarting the session clocks.
func (l *ActivityListener) flushAll(ctx context.Context) {
	now := time.Now()

	l.mu.Lock()
	flushed := make(map[voiceKey]time.Time, len(l.voiceSessions))
	for key, started := range l.voiceSessions {
		flushed[key] = started
		l.voiceSessions[key] = now
	}
	l.mu.Unlock()

	for key, started := range flushed {
		minutes := int(now.Sub(started) / time.Minute)
		err := l.activities.Increment(ctx, key.guildID.String(), key.userID.String(), now,
			repositories.ActivityDelta{VoiceMinutes: minutes, PresenceTicks: 1})
		if err != nil {
			slog.Error("Failed to flush voice session",
				slog.String("type", "sys"),
				slog.String("guild_id", key.guildID.String()),
				slog.String("user_id", key.userID.String()),
				slog.Any("error", err))
		}
	}
}

func (l *ActivityListener) creditVoice(key voiceKey, started, ended time.Time) {
	minutes := int(ended.Sub(started) / time.Minute)
	if minutes <= 0 {
		return
	}
	l.increment(key.guildID, key.userID, repositories.ActivityDelta{VoiceMinutes: minutes})
}

// TrackCommand wraps a command handler so successful invocations also bump
// the command counter.
func (l *ActivityListener) TrackCommand(h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if guildID := e.GuildID(); guildID != nil {
			l.increment(*guildID, e.User().ID, repositories.ActivityDelta{Commands: 1})
		}
		return h(e)
	}
}

func (l *ActivityListener) increment(guildID, userID snowflake.ID, delta repositories.ActivityDelta) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.activities.Increment(ctx, guildID.String(), userID.String(), time.Now(), delta); err != nil {
		slog.Error("Failed to record activity",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
	}
}
