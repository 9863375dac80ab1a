package commands

import (
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/registries"
)

// QueryCommand is a slash command that searches one catalog kind.
type QueryCommand struct {
	Name        string
	Kind        string
	Source      int
	Description string
}

var QueryCommands = []QueryCommand{
	{Name: "song", Kind: registries.KindSong, Description: "Look up songs"},
	{Name: "chart", Kind: registries.KindChart, Description: "Look up song charts"},
	{Name: "card", Kind: registries.KindCard, Description: "Look up cards"},
	{Name: "art", Kind: registries.KindCard, Source: 1, Description: "Show card art"},
	{Name: "event", Kind: registries.KindEvent, Description: "Look up events"},
	{Name: "gacha", Kind: registries.KindGacha, Description: "Look up gacha banners"},
	{Name: "stamp", Kind: registries.KindStamp, Description: "Look up stamps"},
	{Name: "loginbonus", Kind: registries.KindLoginBonus, Description: "Look up login bonuses"},
	{Name: "comic", Kind: registries.KindComic, Description: "Look up comics"},
}

func serverChoices() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(catalog.KnownServers))
	for _, s := range catalog.KnownServers {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{Name: strings.ToUpper(string(s)), Value: string(s)})
	}
	return choices
}

func kindChoices() []discord.ApplicationCommandOptionChoiceString {
	kinds := []string{
		registries.KindSong, registries.KindChart, registries.KindCard, registries.KindEvent,
		registries.KindGacha, registries.KindStamp, registries.KindLoginBonus, registries.KindComic,
	}
	choices := make([]discord.ApplicationCommandOptionChoiceString, len(kinds))
	for i, k := range kinds {
		choices[i] = discord.ApplicationCommandOptionChoiceString{Name: k, Value: k}
	}
	return choices
}

func (q QueryCommand) Create() discord.SlashCommandCreate {
	return discord.SlashCommandCreate{
		Name:        q.Name,
		Description: q.Description,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:         "query",
				Description:  "Search text and filters, e.g. $pm sort=power",
				Required:     false,
				Autocomplete: true,
			},
			discord.ApplicationCommandOptionString{
				Name:        "server",
				Description: "Server to search",
				Required:    false,
				Choices:     serverChoices(),
			},
		},
	}
}

var Commands = []discord.ApplicationCommandCreate{
	attributesCommand,
	preferencesCommand,
	reloadCommand,
	versionCommand,
}

func init() {
	for _, q := range QueryCommands {
		Commands = append(Commands, q.Create())
	}
}
