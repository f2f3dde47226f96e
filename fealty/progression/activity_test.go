package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
)

var testDay = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func day(offset int, messages, voice, events, presence int) *models.ActivityDay {
	return &models.ActivityDay{
		Day:           testDay.AddDate(0, 0, offset),
		Messages:      messages,
		VoiceMinutes:  voice,
		Events:        events,
		PresenceTicks: presence,
	}
}

func Test_DailyActivityPoints(t *testing.T) {
	tests := []struct {
		name string
		day  *models.ActivityDay
		want int
	}{
		{
			name: "nil day",
			day:  nil,
			want: 0,
		},
		{
			name: "zero counters",
			day:  day(0, 0, 0, 0, 0),
			want: 0,
		},
		{
			name: "typical day",
			day:  day(0, 40, 60, 1, 3),
			want: 40 + 30 + 10 + 6,
		},
		{
			name: "messages capped at 100",
			day:  day(0, 500, 0, 0, 0),
			want: 100,
		},
		{
			name: "voice capped at 480 minutes",
			day:  day(0, 0, 2000, 0, 0),
			want: 240,
		},
		{
			name: "events capped at 10",
			day:  day(0, 0, 0, 25, 0),
			want: 100,
		},
		{
			name: "presence is uncapped",
			day:  day(0, 0, 0, 0, 12),
			want: 24,
		},
		{
			name: "all caps at once",
			day:  day(0, 100, 480, 10, 0),
			want: 100 + 240 + 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyActivityPoints(tt.day)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_WeeklyActivityScore(t *testing.T) {
	tests := []struct {
		name string
		days []*models.ActivityDay
		want int
	}{
		{
			name: "no days",
			days: nil,
			want: 0,
		},
		{
			name: "single day inside window",
			days: []*models.ActivityDay{day(0, 50, 0, 0, 0)},
			want: 50,
		},
		{
			name: "day caps apply per day not per window",
			days: []*models.ActivityDay{
				day(0, 100, 0, 0, 0),
				day(-1, 100, 0, 0, 0),
			},
			want: 200,
		},
		{
			name: "days outside window ignored",
			days: []*models.ActivityDay{
				day(-7, 100, 0, 0, 0),
				day(-6, 30, 0, 0, 0),
				day(0, 20, 0, 0, 0),
			},
			want: 50,
		},
		{
			name: "future days ignored",
			days: []*models.ActivityDay{
				day(1, 100, 0, 0, 0),
				day(0, 10, 0, 0, 0),
			},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeeklyActivityScore(tt.days, testDay)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_MessagesLast7Days_uncapped(t *testing.T) {
	days := []*models.ActivityDay{
		day(0, 500, 0, 0, 0),
		day(-3, 250, 0, 0, 0),
		day(-8, 1000, 0, 0, 0),
	}

	assert.Equal(t, 750, MessagesLast7Days(days, testDay))
}
