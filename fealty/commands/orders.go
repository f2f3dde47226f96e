package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/fealty/fealty"
	"github.com/ellavondegurechaff/fealty/fealty/config"
	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/ellavondegurechaff/fealty/fealty/utils"
)

var Order = discord.SlashCommandCreate{
	Name:        "order",
	Description: "📋 Give and resolve orders",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "give",
			Description: "Give a member a new order",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member receiving the order",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "description",
					Description: "What must be done",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "due_hours",
					Description: "Hours until the order is due (default 24)",
					Required:    false,
					MinValue:    &[]int{1}[0],
					MaxValue:    &[]int{336}[0],
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "complete",
			Description: "Mark a member's open order as completed",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member whose order is done",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "fail",
			Description: "Mark a member's open order as failed",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member whose order failed",
					Required:    true,
				},
			},
		},
	},
}

func OrderHandler(b *fealty.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if member := e.Member(); member == nil || !member.Permissions.Has(discord.PermissionManageGuild) {
			return utils.EH.CreateEphemeralError(e, "🚫 You need the Manage Server permission to manage orders.")
		}

		data := e.SlashCommandInteractionData()
		target := data.User("user")

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		switch *data.SubCommandName {
		case "give":
			return orderGive(ctx, b, e, guildID.String(), target)
		case "complete":
			return orderResolve(ctx, b, e, guildID.String(), target, true)
		case "fail":
			return orderResolve(ctx, b, e, guildID.String(), target, false)
		}
		return utils.EH.CreateErrorEmbed(e, "Unknown subcommand.")
	}
}

func orderGive(ctx context.Context, b *fealty.Bot, e *handler.CommandEvent, guildID string, target discord.User) error {
	data := e.SlashCommandInteractionData()

	open, err := b.OrderRepository.GetOpenOrder(ctx, guildID, target.ID.String())
	if err != nil {
		return utils.EH.CreateError(e, "Order Failed", "Could not check for open orders. Please try again later.")
	}
	if open != nil {
		return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("%s already has an open order. Resolve it first.", target.Mention()))
	}

	dueHours := 24
	if hours, ok := data.OptInt("due_hours"); ok {
		dueHours = hours
	}

	now := time.Now()
	order := &models.OrderRun{
		GuildID:     guildID,
		UserID:      target.ID.String(),
		Description: data.String("description"),
		AcceptedAt:  now,
		DueAt:       now.Add(time.Duration(dueHours) * time.Hour),
	}
	if err := b.OrderRepository.Create(ctx, order); err != nil {
		return utils.EH.CreateError(e, "Order Failed", "Could not record the order. Please try again later.")
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "📋 New Order",
			Description: fmt.Sprintf("%s has been given an order:\n> %s\n\nDue <t:%d:R>.",
				target.Mention(), order.Description, order.DueAt.Unix()),
			Color: config.InfoColor,
		}},
	})
}

func orderResolve(ctx context.Context, b *fealty.Bot, e *handler.CommandEvent, guildID string, target discord.User, completed bool) error {
	open, err := b.OrderRepository.GetOpenOrder(ctx, guildID, target.ID.String())
	if err != nil {
		return utils.EH.CreateError(e, "Order Failed", "Could not look up the open order. Please try again later.")
	}
	if open == nil {
		return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("%s has no open order.", target.Mention()))
	}

	now := time.Now()
	if completed {
		err = b.OrderRepository.Complete(ctx, open.ID, now)
	} else {
		err = b.OrderRepository.Fail(ctx, open.ID, now)
	}
	if err != nil {
		return utils.EH.CreateError(e, "Order Failed", "Could not resolve the order. Please try again later.")
	}

	// Obedience changed, so any memoized rank view is stale.
	b.RankService.Invalidate(guildID, target.ID.String())

	if completed {
		late := now.After(open.DueAt)
		message := fmt.Sprintf("✅ Order completed by %s.", target.Mention())
		if late {
			message = fmt.Sprintf("⏰ Order completed late by %s.", target.Mention())
		}
		return utils.EH.CreateSuccessEmbed(e, message)
	}
	return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("❌ Order failed by %s.", target.Mention()))
}
