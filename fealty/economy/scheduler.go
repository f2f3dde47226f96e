package economy

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/config"
	"github.com/ellavondegurechaff/fealty/fealty/logger"
)

// GuildLister supplies the guilds the scheduler sweeps. In production this is
// backed by the gateway cache, tests inject a static list.
type GuildLister func() []string

// Scheduler fires the periodic jobs on a coarse tick. The jobs themselves
// decide whether they are due via their period markers, so the tick interval
// only bounds how late a job can start, never how often it runs.
type Scheduler struct {
	runner *JobRunner
	guilds GuildLister
	tick   time.Duration
}

func NewScheduler(runner *JobRunner, guilds GuildLister) *Scheduler {
	return &Scheduler{
		runner: runner,
		guilds: guilds,
		tick:   config.SchedulerTick,
	}
}

// Start launches the scheduling loop. It sweeps once immediately so jobs
// missed during downtime run at startup, then on every tick until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Scheduler) sweep(ctx context.Context) {
	for _, guildID := range s.guilds() {
		start := time.Now()
		if err := s.runner.RunDailyIfDue(ctx, guildID); err != nil {
			logger.LogJob("daily", guildID, time.Since(start), err)
		}
		start = time.Now()
		if err := s.runner.RunWeeklyIfDue(ctx, guildID); err != nil {
			logger.LogJob("weekly", guildID, time.Since(start), err)
		}
	}
}
