// Package preferences resolves the query context of an interaction from per user, channel and
// guild settings.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/spf13/cast"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/database/models"
)

var (
	ErrNotFound     = errors.New("preference not found")
	ErrUnknownField = errors.New("unknown preference field")
	ErrInvalidValue = errors.New("invalid preference value")
	ErrUnavailable  = errors.New("preferences are not available without a database")
)

// Fields that can be set per scope.
const (
	FieldServer     = "server"
	FieldTimezone   = "timezone"
	FieldLanguage   = "language"
	FieldUnreleased = "unreleased"
)

var Fields = []string{FieldServer, FieldTimezone, FieldLanguage, FieldUnreleased}

// Store persists preference rows. Get and Delete return ErrNotFound for missing rows.
type Store interface {
	Get(ctx context.Context, scope models.Scope, id string) (*models.Preference, error)
	Upsert(ctx context.Context, pref *models.Preference) error
	Delete(ctx context.Context, scope models.Scope, id string) error
}

// Defaults apply when no scope sets a field.
type Defaults struct {
	Server          catalog.Server
	Servers         []catalog.Server
	Location        *time.Location
	Language        string
	AllowUnreleased bool
}

// Target identifies where an interaction happened. Zero ids are skipped.
type Target struct {
	User    snowflake.ID
	Channel snowflake.ID
	Guild   snowflake.ID
}

func (t Target) scopes() []struct {
	scope models.Scope
	id    snowflake.ID
} {
	return []struct {
		scope models.Scope
		id    snowflake.ID
	}{
		{models.ScopeUser, t.User},
		{models.ScopeChannel, t.Channel},
		{models.ScopeGuild, t.Guild},
	}
}

type Resolver struct {
	store    Store
	defaults Defaults
	now      func() time.Time
}

// NewResolver builds a resolver. A nil store resolves every interaction to the defaults.
func NewResolver(store Store, defaults Defaults) *Resolver {
	if defaults.Location == nil {
		defaults.Location = time.UTC
	}
	return &Resolver{store: store, defaults: defaults, now: time.Now}
}

// Context resolves each field from the first of user, channel and guild that sets it.
func (r *Resolver) Context(ctx context.Context, target Target) (*catalog.Context, error) {
	qctx := &catalog.Context{
		Server:          r.defaults.Server,
		Servers:         slices.Clone(r.defaults.Servers),
		Now:             r.now(),
		Location:        r.defaults.Location,
		Language:        r.defaults.Language,
		AllowUnreleased: r.defaults.AllowUnreleased,
	}
	if r.store == nil {
		return qctx, nil
	}

	var server, timezone, language *string
	var unreleased *bool
	for _, s := range target.scopes() {
		if s.id == 0 {
			continue
		}
		pref, err := r.store.Get(ctx, s.scope, s.id.String())
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		server = firstSet(server, pref.Server)
		timezone = firstSet(timezone, pref.Timezone)
		language = firstSet(language, pref.Language)
		unreleased = firstSet(unreleased, pref.AllowUnreleased)
	}

	if server != nil {
		if s, err := catalog.ParseServer(*server); err == nil && slices.Contains(qctx.Servers, s) {
			qctx.Server = s
		}
	}
	if timezone != nil {
		if loc, err := time.LoadLocation(*timezone); err == nil {
			qctx.Location = loc
		}
	}
	if language != nil {
		qctx.Language = *language
	}
	if unreleased != nil {
		qctx.AllowUnreleased = *unreleased
	}
	return qctx, nil
}

func firstSet[T any](current, candidate *T) *T {
	if current != nil {
		return current
	}
	return candidate
}

// Get returns the stored preference of one scope.
func (r *Resolver) Get(ctx context.Context, scope models.Scope, id snowflake.ID) (*models.Preference, error) {
	if r.store == nil {
		return nil, ErrNotFound
	}
	return r.store.Get(ctx, scope, id.String())
}

// Set validates value and stores it for field. An empty value clears the field.
func (r *Resolver) Set(ctx context.Context, scope models.Scope, id snowflake.ID, field, value string) (*models.Preference, error) {
	if r.store == nil {
		return nil, ErrUnavailable
	}
	pref, err := r.store.Get(ctx, scope, id.String())
	if errors.Is(err, ErrNotFound) {
		pref = &models.Preference{Scope: scope, ScopeID: id.String()}
	} else if err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	unset := value == ""
	switch field {
	case FieldServer:
		if unset {
			pref.Server = nil
			break
		}
		server, err := catalog.ParseServer(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		if !slices.Contains(r.defaults.Servers, server) {
			return nil, fmt.Errorf("%w: server %s is not loaded", ErrInvalidValue, server)
		}
		s := string(server)
		pref.Server = &s
	case FieldTimezone:
		if unset {
			pref.Timezone = nil
			break
		}
		if _, err := time.LoadLocation(value); err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidValue, value)
		}
		pref.Timezone = &value
	case FieldLanguage:
		if unset {
			pref.Language = nil
			break
		}
		language := strings.ToLower(value)
		pref.Language = &language
	case FieldUnreleased:
		if unset {
			pref.AllowUnreleased = nil
			break
		}
		allow, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, value)
		}
		pref.AllowUnreleased = &allow
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	if pref.Empty() {
		if err := r.store.Delete(ctx, scope, id.String()); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return pref, nil
	}
	if err := r.store.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// Clear removes every preference of one scope.
func (r *Resolver) Clear(ctx context.Context, scope models.Scope, id snowflake.ID) error {
	if r.store == nil {
		return ErrNotFound
	}
	return r.store.Delete(ctx, scope, id.String())
}
