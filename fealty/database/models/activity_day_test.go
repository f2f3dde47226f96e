package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_HasQualifyingActivity(t *testing.T) {
	tests := []struct {
		name string
		day  ActivityDay
		want bool
	}{
		{name: "empty day", day: ActivityDay{}, want: false},
		{name: "presence alone does not qualify", day: ActivityDay{PresenceTicks: 20}, want: false},
		{name: "one message qualifies", day: ActivityDay{Messages: 1}, want: true},
		{name: "voice qualifies", day: ActivityDay{VoiceMinutes: 3}, want: true},
		{name: "reaction qualifies", day: ActivityDay{Reactions: 1}, want: true},
		{name: "command qualifies", day: ActivityDay{Commands: 1}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.day.HasQualifyingActivity())
		})
	}
}
