package commands

import (
	"github.com/disgoorg/disgo/handler"

	"github.com/gohye/catalogbot/catalogbot"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/handlers"
)

// Register routes every command, autocomplete and view component.
func Register(h handler.Router, b *catalogbot.Bot) {
	for _, q := range QueryCommands {
		h.Command("/"+q.Name, handlers.WrapWithLogging(q.Name, QueryHandler(b, q)))
		h.Autocomplete("/"+q.Name, QueryAutocomplete(b, q))
	}
	h.Component("/view/{session}/{action}", handlers.WrapComponentWithLogging("view", ViewComponentHandler(b)))

	h.Command("/attributes", handlers.WrapWithLogging("attributes", AttributesHandler(b)))
	h.Command("/preferences/show", handlers.WrapWithLogging("preferences show", PreferencesShowHandler(b)))
	h.Command("/preferences/set", handlers.WrapWithLogging("preferences set", PreferencesSetHandler(b)))
	h.Command("/preferences/clear", handlers.WrapWithLogging("preferences clear", PreferencesClearHandler(b)))
	h.Command("/reload", handlers.WrapWithLoggingTimeout("reload", config.ReloadTimeout, ReloadHandler(b)))
	h.Command("/version", VersionHandler(b))
}
