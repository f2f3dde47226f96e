package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/fealty/fealty"
	"github.com/ellavondegurechaff/fealty/fealty/config"
	"github.com/ellavondegurechaff/fealty/fealty/utils"
)

var Debt = discord.SlashCommandCreate{
	Name:        "debt",
	Description: "⚖️ Manage member debt",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "adjust",
			Description: "Add to or forgive a member's debt",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member whose debt to adjust",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "Positive to add debt, negative to forgive",
					Required:    true,
				},
			},
		},
	},
}

func DebtHandler(b *fealty.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if member := e.Member(); member == nil || !member.Permissions.Has(discord.PermissionManageGuild) {
			return utils.EH.CreateEphemeralError(e, "🚫 You need the Manage Server permission to adjust debt.")
		}

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		amount := int64(data.Int("amount"))

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		newDebt, err := b.RankService.AdjustDebt(ctx, guildID.String(), target.ID.String(), amount)
		if err != nil {
			return utils.EH.CreateError(e, "Adjustment Failed", "Could not adjust the member's debt. Please try again later.")
		}

		verb := "increased"
		if amount < 0 {
			verb = "forgiven"
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"Debt for %s %s by **%s**. New debt: **%s**.",
			target.Mention(), verb, utils.FormatNumber(abs64(amount)), utils.FormatNumber(newDebt)))
	}
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
