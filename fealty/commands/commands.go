package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	Rank,
	Stipend,
	Debt,
	Ladder,
	Order,
}
