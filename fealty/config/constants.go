package config

import "time"

// UI and Display Constants
const (
	DefaultPageSize = 10

	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31

	// Rank tier colors, lowest to highest band
	RankLowColor  = 0x808080
	RankMidColor  = 0x0000FF
	RankHighColor = 0x800080
	RankTopColor  = 0xFFD700
)

// Database and Performance Constants
const (
	DefaultQueryTimeout     = 30 * time.Second
	StatsQueryTimeout       = 10 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	NetworkDialTimeout      = 5 * time.Second

	BatchUserConcurrency = 4
)

// Scheduling Constants
const (
	SchedulerTick    = 1 * time.Hour
	PresenceTick     = 5 * time.Minute
	ActiveUserWindow = 30 * 24 * time.Hour
)
