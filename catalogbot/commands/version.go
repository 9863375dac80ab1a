package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/gohye/catalogbot/catalogbot"
	"github.com/gohye/catalogbot/catalogbot/utils"
)

var versionCommand = discord.SlashCommandCreate{
	Name:        "version",
	Description: "version command",
}

func VersionHandler(b *catalogbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}
		content := fmt.Sprintf("Version: %s\nCommit: %s", b.Version, b.Commit)
		if c, err := b.Catalog.Current(); err == nil {
			content += fmt.Sprintf("\nCatalog loaded: <t:%d:R>", c.LoadedAt.Unix())
		}
		_, err := e.UpdateInteractionResponse(discord.MessageUpdate{Content: utils.Ptr(content)})
		return err
	}
}
