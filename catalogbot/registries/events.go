package registries

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

func running(ctx *catalog.Context, start, end time.Time) bool {
	return released(ctx, start) && (end.IsZero() || ctx.Now.Before(end))
}

// onlyCurrent replaces the candidates by the current entity, if it is among them.
func onlyCurrent[T catalog.Entity](ctx *catalog.Context, r *catalog.Registry[T], values []T) []T {
	kept := []T{}
	current, ok := r.Current(ctx)
	if !ok {
		return kept
	}
	for _, v := range values {
		if v.EntityID() == current.EntityID() {
			kept = append(kept, v)
		}
	}
	return kept
}

func (e *Env) Events() catalog.Declaration[*masters.Event] {
	date := dateAttribute("date", []string{"begin"}, func(ev *masters.Event) time.Time { return ev.StartAt })
	date.DefaultSort = true
	date.DefaultDisplay = true

	return catalog.Declaration[*masters.Event]{
		Kind:     KindEvent,
		Name:     func(ev *masters.Event) string { return ev.Name },
		Released: func(ctx *catalog.Context, ev *masters.Event) bool { return released(ctx, ev.StartAt) },
		Current: func(ctx *catalog.Context, _ *catalog.Registry[*masters.Event]) (*masters.Event, bool) {
			return e.snapshot(ctx.Server).CurrentEvent(ctx.Now)
		},
		Attributes: []catalog.DataAttribute[*masters.Event]{
			idAttribute[*masters.Event](),
			{
				Name:      "type",
				Accessor:  func(_ *catalog.Context, ev *masters.Event) any { return ev.Type },
				Formatter: func(_ *catalog.Context, ev *masters.Event) string { return ev.Type },
				Init:      mapping[*masters.Event]((*aliases.Tables).EventTypeMapping),
				Tag:       true,
				Eq:        true,
			},
			date,
			dateAttribute("end", nil, func(ev *masters.Event) time.Time { return ev.EndAt }),
			{
				Name:        "character",
				Aliases:     []string{"char", "bonus"},
				Description: "Bonus characters",
				Accessor:    func(_ *catalog.Context, ev *masters.Event) any { return intsToAny(ev.BonusCharacters) },
				Formatter: func(_ *catalog.Context, ev *masters.Event) string {
					return e.characterNames(ev.BonusCharacters)
				},
				Init:   mapping[*masters.Event]((*aliases.Tables).CharacterMapping),
				Tag:    true,
				Eq:     true,
				Plural: true,
			},
			{
				Name:      "attribute",
				Aliases:   []string{"attr"},
				Accessor:  func(_ *catalog.Context, ev *masters.Event) any { return ev.BonusAttribute },
				Formatter: func(_ *catalog.Context, ev *masters.Event) string { return ev.BonusAttribute },
				Init:      mapping[*masters.Event]((*aliases.Tables).AttributeMapping),
				Tag:       true,
				Eq:        true,
			},
			{
				Name:         "current",
				Aliases:      []string{"now"},
				Description:  "Only the event running now, or the latest one",
				Accessor:     func(ctx *catalog.Context, ev *masters.Event) any { return running(ctx, ev.StartAt, ev.EndAt) },
				FlagCallback: onlyCurrent[*masters.Event],
				Flag:         true,
			},
			{
				Name:     "ongoing",
				Accessor: func(ctx *catalog.Context, ev *masters.Event) any { return running(ctx, ev.StartAt, ev.EndAt) },
				Flag:     true,
			},
		},
		Sources: []catalog.CommandSource[*masters.Event]{
			{
				Name:        KindEvent,
				EmbedSource: e.eventEmbed,
				Shortcuts: []catalog.Shortcut[*masters.Event]{
					{
						Emoji: "🎰",
						Label: "Gacha",
						Check: func(_ *catalog.Context, ev *masters.Event) bool { return len(ev.Gachas) > 0 },
						Action: func(_ *catalog.Context, ev *masters.Event, server catalog.Server) (catalog.Navigation, bool) {
							if len(ev.Gachas) == 0 {
								return catalog.Navigation{}, false
							}
							return catalog.Navigation{Kind: KindGacha, ID: ev.Gachas[0].ID, Server: server}, true
						},
					},
					{
						Emoji: "🃏",
						Label: "Card",
						Check: func(_ *catalog.Context, ev *masters.Event) bool { return len(ev.Cards) > 0 },
						Action: func(_ *catalog.Context, ev *masters.Event, server catalog.Server) (catalog.Navigation, bool) {
							if len(ev.Cards) == 0 {
								return catalog.Navigation{}, false
							}
							return catalog.Navigation{Kind: KindCard, ID: ev.Cards[0].ID, Server: server}, true
						},
					},
				},
			},
		},
	}
}

func (e *Env) eventEmbed(ctx *catalog.Context, ev *masters.Event, _ int, server catalog.Server) discord.Embed {
	local := ctx.WithServer(server)
	color := config.EmbedDefaultColor
	if len(ev.BonusCharacters) > 0 {
		color = config.UnitColor(ev.BonusCharacters[0] / 10)
	}

	b := discord.NewEmbedBuilder().
		SetTitle(ev.Name).
		SetColor(color).
		SetImage(e.url(server, "events", ev.BannerFile)).
		AddField("Type", ev.Type, true).
		AddField("Period", timeRange(local, ev.StartAt, ev.EndAt), true)
	if len(ev.BonusCharacters) > 0 || ev.BonusAttribute != "" {
		bonus := e.characterNames(ev.BonusCharacters)
		if ev.BonusAttribute != "" {
			bonus = strings.TrimPrefix(bonus+", "+ev.BonusAttribute, ", ")
		}
		b.AddField("Bonus", bonus, false)
	}
	if len(ev.Cards) > 0 {
		lines := make([]string, len(ev.Cards))
		for i, c := range ev.Cards {
			lines[i] = fmt.Sprintf("`%d` %s", c.ID, c.Name)
		}
		b.AddField("Cards", strings.Join(lines, "\n"), false)
	}
	return b.SetFooter(footerText(local, KindEvent, ev.ID), "").Build()
}
