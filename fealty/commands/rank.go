package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/fealty/fealty"
	"github.com/ellavondegurechaff/fealty/fealty/config"
	"github.com/ellavondegurechaff/fealty/fealty/progression"
	"github.com/ellavondegurechaff/fealty/fealty/utils"
)

var Rank = discord.SlashCommandCreate{
	Name:        "rank",
	Description: "🏅 View your current rank, readiness and what blocks your next promotion",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "View another member's rank",
			Required:    false,
		},
	},
}

func RankHandler(b *fealty.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = user
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		view, err := b.RankService.GetRankView(ctx, guildID.String(), target.ID.String())
		if err != nil {
			return utils.EH.CreateError(e, "Rank Lookup Failed", "Could not compute the rank view. Please try again later.")
		}

		var description strings.Builder
		description.WriteString(fmt.Sprintf("```ansi\n"+
			"\x1b[1;36mHeld Rank:\x1b[0m %s\n"+
			"\x1b[1;35mCoin Rank:\x1b[0m %s (%s lifetime coin)\n"+
			"\x1b[1;33mEligible:\x1b[0m  %s\n"+
			"```\n",
			view.HeldRank.Name,
			view.CoinRank.Name,
			utils.FormatNumber(view.CoinRank.MinLCE),
			view.EligibleRank.Name,
		))

		if view.NextRank != nil {
			description.WriteString(fmt.Sprintf("**Progress to %s**\n%s\n**%s**\n\n",
				view.NextRank.Name,
				utils.ProgressBar(float64(view.Readiness)),
				view.Blocker,
			))
		} else {
			description.WriteString("**You hold the highest rank on the ladder.**\n\n")
		}

		description.WriteString(fmt.Sprintf(
			"Weekly activity: **%d** • Obedience: **%d** (streak %d)\n"+
				"Balance: **%s** • Debt: **%s**",
			view.WAS,
			view.Obedience.Score,
			view.Obedience.StreakDays,
			utils.FormatNumber(view.Balance),
			utils.FormatNumber(view.Debt),
		))

		embed := discord.Embed{
			Title:       fmt.Sprintf("🏅 %s — %s", target.Username, view.HeldRank.Name),
			Description: description.String(),
			Color:       rankColor(view.HeldRank.Index),
			Footer: &discord.EmbedFooter{
				Text: fmt.Sprintf("Requested by %s", e.User().Username),
			},
		}

		if view.AtRisk {
			embed.Fields = append(embed.Fields, discord.EmbedField{
				Name:  "⚠️ At Risk",
				Value: "Requirements for your held rank are not met. Recover before the grace period ends or you will be demoted.",
			})
		}

		now := time.Now()
		embed.Timestamp = &now

		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}

func rankColor(index int) int {
	switch {
	case index >= progression.TopRank-1:
		return config.RankTopColor
	case index >= 6:
		return config.RankHighColor
	case index >= 3:
		return config.RankMidColor
	default:
		return config.RankLowColor
	}
}
