package commands

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/gohye/catalogbot/catalogbot"
	"github.com/gohye/catalogbot/catalogbot/arguments"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/logger"
	"github.com/gohye/catalogbot/catalogbot/metrics"
	"github.com/gohye/catalogbot/catalogbot/preferences"
	"github.com/gohye/catalogbot/catalogbot/utils"
	"github.com/gohye/catalogbot/catalogbot/views"
)

// Query outcomes recorded in metrics and logs.
const (
	OutcomeOK        = "ok"
	OutcomeEmpty     = "empty"
	OutcomeUserError = "user_error"
	OutcomeError     = "error"
)

func outcome(n int, err error) string {
	if err != nil {
		if _, ok := arguments.AsArgumentError(err); ok {
			return OutcomeUserError
		}
		return OutcomeError
	}
	if n == 0 {
		return OutcomeEmpty
	}
	return OutcomeOK
}

func target(user snowflake.ID, channel snowflake.ID, guild *snowflake.ID) preferences.Target {
	t := preferences.Target{User: user, Channel: channel}
	if guild != nil {
		t.Guild = *guild
	}
	return t
}

// queryContext resolves the caller's preferences and applies an explicit server choice.
func queryContext(ctx context.Context, b *catalogbot.Bot, t preferences.Target, server string) (*catalog.Context, error) {
	qctx, err := b.Preferences.Context(ctx, t)
	if err != nil {
		return nil, err
	}
	if server == "" {
		return qctx, nil
	}
	s, err := catalog.ParseServer(server)
	if err != nil || !slices.Contains(qctx.Servers, s) {
		return nil, arguments.UnknownValue("server", server)
	}
	return qctx.WithServer(s), nil
}

// expireMessage freezes the original response once its session goes idle.
func expireMessage(client bot.Client, applicationID snowflake.ID, token string) views.ExpireFunc {
	return func(s *views.Session) {
		components := s.View().Components(s.ID)
		if _, err := client.Rest().UpdateInteractionResponse(applicationID, token, discord.MessageUpdate{
			Components: &components,
		}); err != nil {
			slog.Debug("Failed to freeze expired view",
				slog.String("type", "cmd"),
				slog.String("session", s.ID),
				slog.Any("error", err))
		}
	}
}

// QueryHandler answers a catalog query command with an interactive view.
func QueryHandler(b *catalogbot.Bot, q QueryCommand) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		query := data.String("query")

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		qctx, err := queryContext(ctx, b, target(e.User().ID, e.ChannelID(), e.GuildID()), data.String("server"))
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		current, err := b.Catalog.Current()
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		start := time.Now()
		view, n, err := Open(current.Set, q.Kind, qctx, arguments.Parse(query), q.Source, b.Cfg.Views.ListPageSize)
		took := time.Since(start)
		result := outcome(n, err)
		metrics.ObserveQuery(q.Kind, result, took)
		logger.LogQuery(q.Kind, query, result, n, took, err)

		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if n == 0 {
			return utils.EH.HandleError(e, arguments.NoResults())
		}

		session := b.Sessions.Start(e.User().ID, view, expireMessage(e.Client(), e.ApplicationID(), e.Token()))
		return e.CreateMessage(discord.MessageCreate{
			Embeds:     []discord.Embed{view.Render()},
			Components: view.Components(session.ID),
		})
	}
}

// ViewComponentHandler routes /view/{session}/{action} interactions to their session.
func ViewComponentHandler(b *catalogbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		sessionID, action, ok := views.ParseCustomID(e.Data.CustomID())
		if !ok {
			return utils.EH.HandleError(e, views.ErrSessionNotFound)
		}
		var values []string
		if menu, ok := e.Data.(discord.StringSelectMenuInteractionData); ok {
			values = menu.Values
		}

		var update discord.MessageUpdate
		err := b.Sessions.Do(sessionID, e.User().ID, func(s *views.Session) error {
			view := s.View()
			nav, err := view.Apply(action, values)
			if err != nil {
				return err
			}
			if nav != nil {
				current, err := b.Catalog.Current()
				if err != nil {
					return err
				}
				next, err := Navigate(current.Set, view.Context(), *nav, b.Cfg.Views.ListPageSize)
				if err != nil {
					return err
				}
				s.Replace(next)
				view = next
			}
			components := view.Components(s.ID)
			update = discord.MessageUpdate{
				Embeds:     &[]discord.Embed{view.Render()},
				Components: &components,
			}
			return nil
		})
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		return e.UpdateMessage(update)
	}
}
