package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/fealty/fealty"
	"github.com/ellavondegurechaff/fealty/fealty/config"
	"github.com/ellavondegurechaff/fealty/fealty/economy"
	"github.com/ellavondegurechaff/fealty/fealty/utils"
)

var Stipend = discord.SlashCommandCreate{
	Name:        "stipend",
	Description: "💰 Claim your weekly stipend",
}

func StipendHandler(b *fealty.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		result, err := b.StipendService.ClaimWeekly(ctx, guildID.String(), e.User().ID.String())
		if errors.Is(err, economy.ErrAlreadyClaimed) {
			return utils.EH.CreateInfoEmbed(e, "⏰ You already claimed your stipend this week. Come back once it resets.")
		}
		if err != nil {
			return utils.EH.CreateError(e, "Claim Failed", "Could not process your stipend claim. Please try again later.")
		}

		description := fmt.Sprintf("You received **%s** coins.", utils.FormatNumber(result.Amount))
		if result.Garnished > 0 {
			description += fmt.Sprintf("\n💸 **%s** was garnished against your outstanding debt.", utils.FormatNumber(result.Garnished))
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "💰 Weekly Stipend",
				Description: description,
				Color:       config.SuccessColor,
			}},
		})
	}
}
