package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/logger"
	"github.com/gohye/catalogbot/catalogbot/metrics"
)

// interaction is the part of command and component events the logging wrapper reads.
type interaction interface {
	User() discord.User
}

// run executes h with a deadline and logs its start, outcome and duration.
func run(kind, name string, e interaction, timeout time.Duration, startAttrs []any, h func() error) error {
	start := time.Now()
	user := e.User()
	userAttrs := []any{
		slog.String("user_id", user.ID.String()),
		slog.String("user_name", user.Username),
	}
	slog.Info(kind+" started", append([]any{
		slog.String("type", "cmd"),
		slog.String("name", name),
	}, append(userAttrs, startAttrs...)...)...)

	done := make(chan error, 1)
	go func() {
		done <- h()
	}()

	select {
	case err := <-done:
		duration := time.Since(start)
		status := "success"
		switch {
		case err != nil:
			status = "failed"
		case duration > config.SlowCommandThreshold:
			status = "slow"
		}
		metrics.Commands.WithLabelValues(name, status).Inc()
		logger.LogCommand(kind, name, status, duration, err, userAttrs...)
		return err

	case <-time.After(timeout):
		err := fmt.Errorf("%s timed out after %s", name, timeout)
		metrics.Commands.WithLabelValues(name, "timeout").Inc()
		logger.LogCommand(kind, name, "timeout", time.Since(start), err, userAttrs...)
		return err
	}
}

// WrapWithLogging wraps a command handler with logging functionality
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return WrapWithLoggingTimeout(name, config.CommandExecutionTimeout, h)
}

// WrapWithLoggingTimeout is WrapWithLogging for commands that may outlive the default deadline.
func WrapWithLoggingTimeout(name string, timeout time.Duration, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return run("Command", name, e, timeout, []any{
			slog.String("guild_id", fmt.Sprint(e.GuildID())),
			slog.String("channel_id", e.ChannelID().String()),
		}, func() error { return h(e) })
	}
}

// WrapComponentWithLogging wraps a component handler with logging functionality
func WrapComponentWithLogging(name string, h handler.ComponentHandler) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		return run("Component interaction", name, e, config.CommandExecutionTimeout, []any{
			slog.String("custom_id", e.Data.CustomID()),
		}, func() error { return h(e) })
	}
}
