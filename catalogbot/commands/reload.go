package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/gohye/catalogbot/catalogbot"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/manager"
	"github.com/gohye/catalogbot/catalogbot/utils"
)

var reloadCommand = discord.SlashCommandCreate{
	Name:        "reload",
	Description: "Reload master data (admin only)",
}

// ReloadSummary lists the entity counts of each kind per server.
func ReloadSummary(c *manager.Catalog) string {
	var b strings.Builder
	for _, r := range c.All() {
		counts := make([]string, len(c.Servers))
		for i, server := range c.Servers {
			counts[i] = fmt.Sprintf("%s %d", strings.ToUpper(string(server)), r.Len(server))
		}
		fmt.Fprintf(&b, "**%s**: %s\n", r.Kind(), strings.Join(counts, " / "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func ReloadHandler(b *catalogbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.Cfg.IsAdmin(e.User().ID) {
			return utils.EH.HandleError(e, fmt.Errorf("%w: only bot admins can reload the catalog", utils.ErrForbidden))
		}
		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.ReloadTimeout)
		defer cancel()

		c, err := b.Catalog.Reload(ctx)
		if err != nil {
			_, uerr := e.UpdateInteractionResponse(discord.MessageUpdate{
				Embeds: &[]discord.Embed{utils.ErrorEmbed(utils.SystemError, "Reload failed, the previous catalog stays live: "+err.Error())},
			})
			return uerr
		}
		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Embeds: &[]discord.Embed{{
				Title:       "Catalog reloaded",
				Description: ReloadSummary(c),
				Color:       config.SuccessColor,
				Timestamp:   &c.LoadedAt,
			}},
		})
		return err
	}
}
