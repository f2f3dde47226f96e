package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/sahilm/fuzzy"

	"github.com/ellavondegurechaff/fealty/fealty"
	"github.com/ellavondegurechaff/fealty/fealty/progression"
	"github.com/ellavondegurechaff/fealty/fealty/utils"
)

var Ladder = discord.SlashCommandCreate{
	Name:        "ladder",
	Description: "📜 Browse the rank ladder and its requirements",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "rank",
			Description:  "Jump straight to one rank",
			Required:     false,
			Autocomplete: true,
		},
	},
}

const ranksPerPage = 3

func LadderHandler(b *fealty.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if name, ok := e.SlashCommandInteractionData().OptString("rank"); ok && name != "" {
			rank, found := progression.RankByName(name)
			if !found {
				return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No rank named `%s` on the ladder.", name))
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       fmt.Sprintf("📜 %s", rank.Name),
					Description: formatRank(rank),
					Color:       rankColor(rank.Index),
				}},
			})
		}

		totalPages := (len(progression.Ladder) + ranksPerPage - 1) / ranksPerPage

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * ranksPerPage
				endIdx := min(startIdx+ranksPerPage, len(progression.Ladder))

				var description strings.Builder
				for _, rank := range progression.Ladder[startIdx:endIdx] {
					description.WriteString(formatRank(rank))
					description.WriteString("\n")
				}

				embed.
					SetTitle("📜 The Rank Ladder").
					SetDescription(description.String()).
					SetColor(rankColor(endIdx - 1)).
					SetFooter(fmt.Sprintf("Page %d/%d • %d ranks", page+1, totalPages, len(progression.Ladder)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func formatRank(rank progression.Rank) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%d. %s** — %s lifetime coin\n", rank.Index, rank.Name, utils.FormatNumber(rank.MinLCE)))
	if len(rank.Gates) == 0 {
		sb.WriteString("> No further requirements\n")
		return sb.String()
	}
	for _, gate := range rank.Gates {
		sb.WriteString(fmt.Sprintf("> %s ≥ %d\n", gate.Label, gate.Required))
	}
	return sb.String()
}

// rankNames implements fuzzy.Source over the ladder.
type rankNames struct{}

func (rankNames) Len() int { return len(progression.Ladder) }

func (rankNames) String(i int) string { return progression.Ladder[i].Name }

func LadderAutocompleteHandler(e *handler.AutocompleteEvent) error {
	query := e.Data.String("rank")

	var choices []discord.AutocompleteChoice
	if query == "" {
		for _, rank := range progression.Ladder {
			choices = append(choices, discord.AutocompleteChoiceString{Name: rank.Name, Value: rank.Name})
		}
	} else {
		for _, match := range fuzzy.FindFrom(query, rankNames{}) {
			name := progression.Ladder[match.Index].Name
			choices = append(choices, discord.AutocompleteChoiceString{Name: name, Value: name})
		}
	}

	if len(choices) > 25 {
		choices = choices[:25]
	}
	return e.AutocompleteResult(choices)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
