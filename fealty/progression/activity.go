package progression

import (
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
)

// Per-day caps keep any single behavior from dominating the score or being
// farmed by spam.
const (
	maxMessagesPerDay     = 100
	maxVoiceMinutesPerDay = 480
	maxEventsPerDay       = 10

	voiceMinuteDivisor = 2
	eventPoints        = 10
	presencePoints     = 2

	weeklyWindowDays = 7
)

// DailyActivityPoints converts one day's raw counters into a capped DAP
// figure.
func DailyActivityPoints(day *models.ActivityDay) int {
	if day == nil {
		return 0
	}

	messages := min(day.Messages, maxMessagesPerDay)
	voice := min(day.VoiceMinutes, maxVoiceMinutesPerDay)
	events := min(day.Events, maxEventsPerDay)

	return messages + voice/voiceMinuteDivisor + events*eventPoints + day.PresenceTicks*presencePoints
}

// WeeklyActivityScore sums DAP over the trailing 7 calendar days inclusive of
// asOf. It recomputes from raw counters every call: the caps are per-day, so
// no running total can be maintained incrementally. Absent days contribute 0.
func WeeklyActivityScore(days []*models.ActivityDay, asOf time.Time) int {
	cutoff := startOfDay(asOf).AddDate(0, 0, -(weeklyWindowDays - 1))

	score := 0
	for _, day := range days {
		if day.Day.Before(cutoff) || day.Day.After(asOf) {
			continue
		}
		score += DailyActivityPoints(day)
	}
	return score
}

// MessagesLast7Days sums raw (uncapped) message counts over the trailing 7
// calendar days. This feeds the message gates, which have their own
// thresholds.
func MessagesLast7Days(days []*models.ActivityDay, asOf time.Time) int {
	cutoff := startOfDay(asOf).AddDate(0, 0, -(weeklyWindowDays - 1))

	total := 0
	for _, day := range days {
		if day.Day.Before(cutoff) || day.Day.After(asOf) {
			continue
		}
		total += day.Messages
	}
	return total
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
