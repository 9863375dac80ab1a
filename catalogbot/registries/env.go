// Package registries declares the queryable attributes and presentations of every entity kind.
package registries

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/assets"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

// Entity kinds, also used as command names and shortcut targets.
const (
	KindSong       = "song"
	KindChart      = "chart"
	KindCard       = "card"
	KindEvent      = "event"
	KindGacha      = "gacha"
	KindStamp      = "stamp"
	KindLoginBonus = "loginbonus"
	KindComic      = "comic"
)

// Env is what declarations need beyond the entity itself.
type Env struct {
	Snapshots map[catalog.Server]*masters.Snapshot
	Aliases   *aliases.Tables
	URLs      *assets.URLResolver
}

func (e *Env) snapshot(server catalog.Server) *masters.Snapshot {
	if s, ok := e.Snapshots[server]; ok {
		return s
	}
	return masters.NewSnapshot()
}

func (e *Env) url(server catalog.Server, kind, file string) string {
	lookup, cancel := context.WithTimeout(context.Background(), config.AssetLookupTimeout)
	defer cancel()
	return e.URLs.URL(lookup, server, kind, file)
}

func (e *Env) unitName(id int) string {
	return e.Aliases.UnitName(id)
}

func (e *Env) characterName(id int) string {
	return e.Aliases.CharacterName(id)
}

func (e *Env) characterNames(ids []int) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = e.characterName(id)
	}
	return strings.Join(names, ", ")
}

// mapping returns an Init hook that fills the value mapping from an alias table.
func mapping[T catalog.Entity](table func(*aliases.Tables) map[string]any) func(*catalog.DataAttribute[T], *catalog.Registry[T]) {
	return func(a *catalog.DataAttribute[T], r *catalog.Registry[T]) {
		a.ValueMapping = table(r.Aliases())
	}
}

func released(ctx *catalog.Context, start time.Time) bool {
	return !start.After(ctx.Now)
}

var dateLayouts = []string{"06/01/02", "2006/01/02", "2006-01-02", "06/1/2", "2006/1/2"}

// parseDate accepts yy/mm/dd and yyyy/mm/dd dates in the context's timezone.
func parseDate(ctx *catalog.Context, s string) (any, error) {
	loc := ctx.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("expected a date like 21/04/30, got %q", s)
}

// parseLevel reads chart levels where a trailing + means half a level up.
func parseLevel(_ *catalog.Context, s string) (any, error) {
	base, plus := strings.CutSuffix(s, "+")
	v, err := strconv.ParseFloat(base, 64)
	if err != nil {
		return nil, err
	}
	if plus {
		v += 0.5
	}
	return v, nil
}

func formatLevel(level float64) string {
	whole := math.Floor(level)
	if level-whole >= 0.5 {
		return fmt.Sprintf("%2d+", int(whole))
	}
	return fmt.Sprintf("%2d ", int(whole))
}

func formatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func parseNumber(_ *catalog.Context, s string) (any, error) {
	return strconv.ParseFloat(s, 64)
}

func idAttribute[T catalog.Entity]() catalog.DataAttribute[T] {
	return catalog.DataAttribute[T]{
		Name:        "id",
		Description: "Master id",
		Accessor:    func(_ *catalog.Context, v T) any { return v.EntityID() },
		Formatter:   func(_ *catalog.Context, v T) string { return fmt.Sprintf("%5d", v.EntityID()) },
		Comparable:  true,
		Sortable:    true,
	}
}

func dateAttribute[T catalog.Entity](name string, aliases []string, get func(T) time.Time) catalog.DataAttribute[T] {
	return catalog.DataAttribute[T]{
		Name:             name,
		Aliases:          aliases,
		Description:      "Date in yy/mm/dd form",
		Accessor:         func(ctx *catalog.Context, v T) any { return ctx.Date(get(v)) },
		Formatter:        func(ctx *catalog.Context, v T) string { return ctx.FormatDate(get(v)) },
		CompareConverter: parseDate,
		Comparable:       true,
		Sortable:         true,
		ReverseSort:      true,
	}
}

func footerText(ctx *catalog.Context, kind string, id int) string {
	return fmt.Sprintf("%s %d • %s", kind, id, strings.ToUpper(string(ctx.Server)))
}

func timeRange(ctx *catalog.Context, start, end time.Time) string {
	if end.IsZero() {
		return ctx.FormatDate(start) + " ~"
	}
	return ctx.FormatDate(start) + " ~ " + ctx.FormatDate(end)
}

func intsToAny(values []int) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
