package migration

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LegacyUser is one document from the legacy bot's users collection. The old
// bot kept wallet, debt and streak state denormalized on the user document.
type LegacyUser struct {
	ID        primitive.ObjectID `bson:"_id"`
	DiscordID string             `bson:"discordid"`
	GuildID   string             `bson:"guildid"`
	Coins     float64            `bson:"coins"`
	Earned    float64            `bson:"earned"`
	Spent     float64            `bson:"spent"`
	Debt      float64            `bson:"debt"`
	LastDaily time.Time          `bson:"lastdaily"`
}

// LegacyOrder is one document from the orders collection.
type LegacyOrder struct {
	ID          primitive.ObjectID `bson:"_id"`
	GuildID     string             `bson:"guildid"`
	UserID      string             `bson:"userid"`
	Description string             `bson:"desc"`
	AcceptedAt  time.Time          `bson:"accepted"`
	DueAt       time.Time          `bson:"due"`
	CompletedAt *time.Time         `bson:"completed,omitempty"`
	Status      string             `bson:"status"`
}

// LegacyActivity is one per-day activity rollup document.
type LegacyActivity struct {
	ID       primitive.ObjectID `bson:"_id"`
	GuildID  string             `bson:"guildid"`
	UserID   string             `bson:"userid"`
	Day      time.Time          `bson:"day"`
	Messages int32              `bson:"messages"`
	Voice    int32              `bson:"voice"`
	Events   int32              `bson:"events"`
}

// ImportStats accumulates per-collection counters for the final report.
type ImportStats struct {
	Users      int
	Orders     int
	Activity   int
	Skipped    int
	StartTime  time.Time
	FinishTime time.Time
}
