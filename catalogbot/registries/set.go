package registries

import (
	"fmt"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

// Set holds one registry per entity kind, all built from the same snapshots.
type Set struct {
	Songs        *catalog.Registry[*masters.Song]
	Charts       *catalog.Registry[*masters.Chart]
	Cards        *catalog.Registry[*masters.Card]
	Events       *catalog.Registry[*masters.Event]
	Gachas       *catalog.Registry[*masters.Gacha]
	Stamps       *catalog.Registry[*masters.Stamp]
	LoginBonuses *catalog.Registry[*masters.LoginBonus]
	Comics       *catalog.Registry[*masters.Comic]
}

func collect[T catalog.Entity](snapshots map[catalog.Server]*masters.Snapshot, pick func(*masters.Snapshot) map[int]T) map[catalog.Server]map[int]T {
	data := make(map[catalog.Server]map[int]T, len(snapshots))
	for server, s := range snapshots {
		data[server] = pick(s)
	}
	return data
}

func build[T catalog.Entity](env *Env, decl catalog.Declaration[T], pick func(*masters.Snapshot) map[int]T) (*catalog.Registry[T], error) {
	r, err := catalog.NewRegistry(decl, env.Aliases, collect(env.Snapshots, pick))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s registry: %w", decl.Kind, err)
	}
	return r, nil
}

// Build creates every registry over env's snapshots.
func Build(env *Env) (*Set, error) {
	var (
		set Set
		err error
	)
	if set.Songs, err = build(env, env.Songs(), func(s *masters.Snapshot) map[int]*masters.Song { return s.Songs }); err != nil {
		return nil, err
	}
	if set.Charts, err = build(env, env.Charts(), func(s *masters.Snapshot) map[int]*masters.Chart { return s.Charts }); err != nil {
		return nil, err
	}
	if set.Cards, err = build(env, env.Cards(), func(s *masters.Snapshot) map[int]*masters.Card { return s.Cards }); err != nil {
		return nil, err
	}
	if set.Events, err = build(env, env.Events(), func(s *masters.Snapshot) map[int]*masters.Event { return s.Events }); err != nil {
		return nil, err
	}
	if set.Gachas, err = build(env, env.Gachas(), func(s *masters.Snapshot) map[int]*masters.Gacha { return s.Gachas }); err != nil {
		return nil, err
	}
	if set.Stamps, err = build(env, env.Stamps(), func(s *masters.Snapshot) map[int]*masters.Stamp { return s.Stamps }); err != nil {
		return nil, err
	}
	if set.LoginBonuses, err = build(env, env.LoginBonuses(), func(s *masters.Snapshot) map[int]*masters.LoginBonus { return s.LoginBonuses }); err != nil {
		return nil, err
	}
	if set.Comics, err = build(env, env.Comics(), func(s *masters.Snapshot) map[int]*masters.Comic { return s.Comics }); err != nil {
		return nil, err
	}
	return &set, nil
}

// All lists the registries in command order.
func (s *Set) All() []catalog.Catalog {
	return []catalog.Catalog{s.Songs, s.Charts, s.Cards, s.Events, s.Gachas, s.Stamps, s.LoginBonuses, s.Comics}
}

// ByKind returns the kind-agnostic registry named kind.
func (s *Set) ByKind(kind string) (catalog.Catalog, bool) {
	for _, c := range s.All() {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}
