package commands

import (
	"fmt"
	"slices"

	"github.com/gohye/catalogbot/catalogbot/arguments"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/registries"
	"github.com/gohye/catalogbot/catalogbot/views"
)

// Open evaluates args against the registry of kind and wraps the result in a view. The
// returned count is the number of matches; a zero count comes with a nil view.
func Open(set *registries.Set, kind string, ctx *catalog.Context, args *arguments.ParsedArguments, source, pageSize int) (views.Navigator, int, error) {
	switch kind {
	case registries.KindSong:
		return open(set.Songs, ctx, args, source, pageSize)
	case registries.KindChart:
		return open(set.Charts, ctx, args, source, pageSize)
	case registries.KindCard:
		return open(set.Cards, ctx, args, source, pageSize)
	case registries.KindEvent:
		return open(set.Events, ctx, args, source, pageSize)
	case registries.KindGacha:
		return open(set.Gachas, ctx, args, source, pageSize)
	case registries.KindStamp:
		return open(set.Stamps, ctx, args, source, pageSize)
	case registries.KindLoginBonus:
		return open(set.LoginBonuses, ctx, args, source, pageSize)
	case registries.KindComic:
		return open(set.Comics, ctx, args, source, pageSize)
	}
	return nil, 0, fmt.Errorf("unknown catalog kind %q", kind)
}

func open[T catalog.Entity](r *catalog.Registry[T], ctx *catalog.Context, args *arguments.ParsedArguments, source, pageSize int) (views.Navigator, int, error) {
	result, err := r.Evaluate(ctx, args, source)
	if err != nil {
		return nil, 0, err
	}
	if result.Empty() {
		return nil, 0, nil
	}
	return views.New(r, ctx, result, pageSize), len(result.Values), nil
}

// Navigate opens the view a shortcut points at. The view lists every visible entity of the
// target kind starting at the target; an entity hidden by the context is shown alone.
func Navigate(set *registries.Set, ctx *catalog.Context, nav catalog.Navigation, pageSize int) (views.Navigator, error) {
	switch nav.Kind {
	case registries.KindSong:
		return navigate(set.Songs, ctx, nav, pageSize)
	case registries.KindChart:
		return navigate(set.Charts, ctx, nav, pageSize)
	case registries.KindCard:
		return navigate(set.Cards, ctx, nav, pageSize)
	case registries.KindEvent:
		return navigate(set.Events, ctx, nav, pageSize)
	case registries.KindGacha:
		return navigate(set.Gachas, ctx, nav, pageSize)
	case registries.KindStamp:
		return navigate(set.Stamps, ctx, nav, pageSize)
	case registries.KindLoginBonus:
		return navigate(set.LoginBonuses, ctx, nav, pageSize)
	case registries.KindComic:
		return navigate(set.Comics, ctx, nav, pageSize)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", views.ErrShortcutTarget, nav.Kind)
}

func navigate[T catalog.Entity](r *catalog.Registry[T], ctx *catalog.Context, nav catalog.Navigation, pageSize int) (views.Navigator, error) {
	for _, server := range []catalog.Server{nav.Server, ctx.Server} {
		if server == "" {
			continue
		}
		target, ok := r.Get(server, nav.ID)
		if !ok {
			continue
		}

		sctx := ctx.WithServer(server)
		values := r.Values(sctx)
		start := slices.IndexFunc(values, func(v T) bool { return v.EntityID() == nav.ID })
		if start < 0 {
			values, start = []T{target}, 0
		}
		result := &catalog.FilterResult[T]{Values: values, Server: server, StartIndex: start}
		if d := r.DefaultDisplay(); d != nil && d.Formatter != nil {
			result.Display = func(v T) string { return d.Formatter(sctx, v) }
		}
		return views.New(r, sctx, result, pageSize), nil
	}
	return nil, fmt.Errorf("%w: %s %d", views.ErrShortcutTarget, nav.Kind, nav.ID)
}
