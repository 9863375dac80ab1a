package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/gohye/catalogbot/catalogbot"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/utils"
)

// Suggestions turns name matches into autocomplete choices whose value is the entity id,
// which a query resolves back to the same entity.
func Suggestions(c catalog.Catalog, ctx *catalog.Context, text string) []discord.AutocompleteChoice {
	matches := c.Suggest(ctx, text, config.AutocompleteLimit)
	choices := make([]discord.AutocompleteChoice, 0, len(matches))
	for _, m := range matches {
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  utils.Truncate(fmt.Sprintf("%s (#%d)", m.Name, m.ID), 100),
			Value: strconv.Itoa(m.ID),
		})
	}
	return choices
}

// QueryAutocomplete suggests entity names for the query option of a catalog command.
func QueryAutocomplete(b *catalogbot.Bot, q QueryCommand) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic in autocomplete handler",
					slog.Any("panic", r),
					slog.String("stack_trace", string(debug.Stack())),
				)
			}
		}()

		focused := e.Data.Focused()
		if focused.Name != "query" {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		text := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				slog.Error("Failed to unmarshal focused.Value",
					slog.String("error", err.Error()))
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			text = strings.TrimSpace(s)
		}
		if text == "" {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.AutocompleteTimeout)
		defer cancel()

		qctx, err := queryContext(ctx, b, target(e.User().ID, e.ChannelID(), e.GuildID()), e.Data.String("server"))
		if err != nil {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}
		current, err := b.Catalog.Current()
		if err != nil {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}
		c, ok := current.ByKind(q.Kind)
		if !ok {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}
		return e.AutocompleteResult(Suggestions(c, qctx, text))
	}
}
