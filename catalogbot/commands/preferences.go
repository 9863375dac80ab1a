package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/gohye/catalogbot/catalogbot"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/database/models"
	"github.com/gohye/catalogbot/catalogbot/preferences"
	"github.com/gohye/catalogbot/catalogbot/utils"
)

var errScopePermission = fmt.Errorf("%w: you need the Manage Server permission to change channel or server preferences", utils.ErrForbidden)

var scopeOption = discord.ApplicationCommandOptionString{
	Name:        "scope",
	Description: "Whose preferences (default: yours)",
	Required:    false,
	Choices: []discord.ApplicationCommandOptionChoiceString{
		{Name: "me", Value: string(models.ScopeUser)},
		{Name: "this channel", Value: string(models.ScopeChannel)},
		{Name: "this server", Value: string(models.ScopeGuild)},
	},
}

func fieldChoices() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, len(preferences.Fields))
	for i, f := range preferences.Fields {
		choices[i] = discord.ApplicationCommandOptionChoiceString{Name: f, Value: f}
	}
	return choices
}

var preferencesCommand = discord.SlashCommandCreate{
	Name:        "preferences",
	Description: "Default server, timezone and visibility for catalog queries",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "show",
			Description: "Show stored preferences",
			Options:     []discord.ApplicationCommandOption{scopeOption},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set",
			Description: "Set a preference; an empty value resets it",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "field",
					Description: "Preference to change",
					Required:    true,
					Choices:     fieldChoices(),
				},
				discord.ApplicationCommandOptionString{
					Name:        "value",
					Description: "New value, e.g. en, Asia/Tokyo or true",
					Required:    false,
				},
				scopeOption,
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "clear",
			Description: "Remove every stored preference",
			Options:     []discord.ApplicationCommandOption{scopeOption},
		},
	},
}

// scopeID picks the id a scope is stored under for this interaction.
func scopeID(e *handler.CommandEvent, scope models.Scope, write bool) (snowflake.ID, error) {
	switch scope {
	case models.ScopeUser:
		return e.User().ID, nil
	case models.ScopeChannel, models.ScopeGuild:
		guild := e.GuildID()
		if guild == nil {
			return 0, fmt.Errorf("%w: %s preferences only exist in servers", preferences.ErrInvalidValue, scope)
		}
		if write {
			member := e.Member()
			if member == nil || !member.Permissions.Has(discord.PermissionManageGuild) {
				return 0, errScopePermission
			}
		}
		if scope == models.ScopeChannel {
			return e.ChannelID(), nil
		}
		return *guild, nil
	}
	return 0, fmt.Errorf("%w: scope %s", preferences.ErrInvalidValue, scope)
}

func scopeOf(data discord.SlashCommandInteractionData) models.Scope {
	if s, ok := data.OptString("scope"); ok {
		return models.Scope(s)
	}
	return models.ScopeUser
}

// DescribePreference lists the fields a preference row sets.
func DescribePreference(p *models.Preference) string {
	var lines []string
	if p.Server != nil {
		lines = append(lines, fmt.Sprintf("**server**: %s", strings.ToUpper(*p.Server)))
	}
	if p.Timezone != nil {
		lines = append(lines, fmt.Sprintf("**timezone**: %s", *p.Timezone))
	}
	if p.Language != nil {
		lines = append(lines, fmt.Sprintf("**language**: %s", *p.Language))
	}
	if p.AllowUnreleased != nil {
		lines = append(lines, fmt.Sprintf("**unreleased**: %t", *p.AllowUnreleased))
	}
	if len(lines) == 0 {
		return "Nothing set, defaults apply."
	}
	return strings.Join(lines, "\n")
}

func respondPreference(e *handler.CommandEvent, title string, p *models.Preference) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       title,
			Description: DescribePreference(p),
			Color:       config.InfoColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

func PreferencesShowHandler(b *catalogbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		scope := scopeOf(e.SlashCommandInteractionData())
		id, err := scopeID(e, scope, false)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		pref, err := b.Preferences.Get(ctx, scope, id)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		return respondPreference(e, fmt.Sprintf("Preferences (%s)", scope), pref)
	}
}

func PreferencesSetHandler(b *catalogbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		scope := scopeOf(data)
		id, err := scopeID(e, scope, true)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		pref, err := b.Preferences.Set(ctx, scope, id, data.String("field"), data.String("value"))
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		return respondPreference(e, fmt.Sprintf("Preferences updated (%s)", scope), pref)
	}
}

func PreferencesClearHandler(b *catalogbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		scope := scopeOf(e.SlashCommandInteractionData())
		id, err := scopeID(e, scope, true)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Preferences.Clear(ctx, scope, id); err != nil {
			return utils.EH.HandleError(e, err)
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Cleared %s preferences.", scope))
	}
}
