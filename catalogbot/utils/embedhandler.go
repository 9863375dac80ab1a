package utils

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/gohye/catalogbot/catalogbot/arguments"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/logger"
	"github.com/gohye/catalogbot/catalogbot/manager"
	"github.com/gohye/catalogbot/catalogbot/preferences"
	"github.com/gohye/catalogbot/catalogbot/views"
)

// ResponseHandler provides standardized response methods for commands and components
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// ErrForbidden marks errors whose message explains a missing permission.
var ErrForbidden = errors.New("not allowed")

// ErrorType represents different categories of errors for consistent handling
type ErrorType int

const (
	// UserError - query syntax and argument problems
	UserError ErrorType = iota
	// SystemError - load failures and unexpected errors
	SystemError
	// NotFoundError - empty results, expired views, unset preferences
	NotFoundError
	// PermissionError - foreign views and admin-only commands
	PermissionError
)

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError:
		return config.WarningColor
	case NotFoundError:
		return config.InfoColor
	default:
		return config.ErrorColor
	}
}

// Classify maps err to an error category and the message shown to the user. Unexpected
// errors get a generic message; their details only go to the log.
func Classify(err error) (ErrorType, string) {
	if argErr, ok := arguments.AsArgumentError(err); ok {
		if argErr.Kind == arguments.KindNoResults {
			return NotFoundError, argErr.Message
		}
		return UserError, argErr.Message
	}
	switch {
	case errors.Is(err, manager.ErrNotLoaded):
		return SystemError, "The catalog is still loading, try again in a moment."
	case errors.Is(err, ErrForbidden):
		return PermissionError, err.Error()
	case errors.Is(err, views.ErrNotOwner):
		return PermissionError, views.ErrNotOwner.Error()
	case errors.Is(err, views.ErrSessionNotFound):
		return NotFoundError, "This view has expired. Run the command again."
	case errors.Is(err, preferences.ErrNotFound):
		return NotFoundError, "No preferences are set here."
	case errors.Is(err, preferences.ErrUnknownField), errors.Is(err, preferences.ErrInvalidValue):
		return UserError, err.Error()
	case errors.Is(err, preferences.ErrUnavailable):
		return SystemError, "Preferences are disabled on this bot."
	case errors.Is(err, views.ErrShortcutTarget):
		return NotFoundError, "The linked entry is not available on this server."
	default:
		return SystemError, "Something went wrong while handling this command."
	}
}

// ErrorEmbed renders a classified error.
func ErrorEmbed(errorType ErrorType, message string) discord.Embed {
	return discord.Embed{
		Description: getErrorPrefix(errorType) + " " + message,
		Color:       getErrorColor(errorType),
	}
}

// CreateErrorEmbed creates a standard error embed for command events
func (h *ResponseHandler) CreateErrorEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.ErrorColor,
		}},
	})
}

// CreateSuccessEmbed creates a standard success embed for command events
func (h *ResponseHandler) CreateSuccessEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.SuccessColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

// CreateInfoEmbed creates a standard info embed for command events
func (h *ResponseHandler) CreateInfoEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.InfoColor,
		}},
	})
}

// CreateEphemeralError creates an ephemeral error message for component events
func (h *ResponseHandler) CreateEphemeralError(event *handler.ComponentEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: message,
		Flags:   discord.MessageFlagEphemeral,
	})
}

// UpdateWithError replaces a deferred command response with a classified error.
func (h *ResponseHandler) UpdateWithError(event *handler.CommandEvent, err error) error {
	errorType, message := Classify(err)
	_, uerr := event.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds:     &[]discord.Embed{ErrorEmbed(errorType, message)},
		Components: &[]discord.ContainerComponent{},
	})
	return uerr
}

// CreateClassifiedError answers a command with the classified form of err.
func (h *ResponseHandler) CreateClassifiedError(event *handler.CommandEvent, err error) error {
	errorType, message := Classify(err)
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{ErrorEmbed(errorType, message)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

// HandleError provides centralized error handling for different event types. Unexpected
// errors are logged before the generic reply.
func (h *ResponseHandler) HandleError(event any, err error) error {
	errorType, message := Classify(err)
	if errorType == SystemError && !errors.Is(err, manager.ErrNotLoaded) {
		logger.LogError("Unexpected command error", err)
	}
	switch e := event.(type) {
	case *handler.CommandEvent:
		return h.CreateClassifiedError(e, err)
	case *handler.ComponentEvent:
		return h.CreateEphemeralError(e, getErrorPrefix(errorType)+" "+message)
	default:
		return fmt.Errorf("unsupported event type for error handling")
	}
}
