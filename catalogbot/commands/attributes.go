package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/gohye/catalogbot/catalogbot"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/utils"
)

const attributesPerPage = 8

var attributesCommand = discord.SlashCommandCreate{
	Name:        "attributes",
	Description: "List the filters and sort keys a catalog command understands",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "kind",
			Description: "Catalog to describe",
			Required:    true,
			Choices:     kindChoices(),
		},
	},
}

// AttributeField renders one attribute as an embed field.
func AttributeField(info catalog.AttributeInfo) discord.EmbedField {
	var value strings.Builder
	if info.Description != "" {
		value.WriteString(info.Description + "\n")
	}
	if len(info.Aliases) > 0 {
		fmt.Fprintf(&value, "Aliases: `%s`\n", strings.Join(info.Aliases, "`, `"))
	}
	if len(info.Roles) > 0 {
		fmt.Fprintf(&value, "Use: %s\n", strings.Join(info.Roles, ", "))
	}
	if len(info.Values) > 0 {
		fmt.Fprintf(&value, "Values: %s\n", utils.Truncate(strings.Join(info.Values, ", "), 600))
	}
	if info.Pattern != "" {
		fmt.Fprintf(&value, "Pattern: `%s`\n", info.Pattern)
	}
	text := strings.TrimSpace(value.String())
	if text == "" {
		text = "-"
	}
	return discord.EmbedField{Name: info.Name, Value: text}
}

func AttributesHandler(b *catalogbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		kind := e.SlashCommandInteractionData().String("kind")
		current, err := b.Catalog.Current()
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		c, ok := current.ByKind(kind)
		if !ok {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("Unknown catalog `%s`", kind))
		}

		infos := c.Describe()
		totalPages := (len(infos) + attributesPerPage - 1) / attributesPerPage

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * attributesPerPage
				endIdx := min(startIdx+attributesPerPage, len(infos))

				embed.SetTitle(fmt.Sprintf("%s attributes", kind))
				embed.SetDescription("Filter with `name=value`, `name>value` or `$value`, sort with `sort=name`.")
				embed.SetColor(config.InfoColor)
				for _, info := range infos[startIdx:endIdx] {
					field := AttributeField(info)
					embed.AddField(field.Name, field.Value, false)
				}
				embed.SetFooterText(fmt.Sprintf("Page %d/%d • %d attributes", page+1, totalPages, len(infos)))
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
