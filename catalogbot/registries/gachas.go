package registries

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

func pickUpCharacters(g *masters.Gacha) []int {
	var ids []int
	for _, c := range g.PickUps {
		if !slices.Contains(ids, c.CharacterID) {
			ids = append(ids, c.CharacterID)
		}
	}
	return ids
}

func (e *Env) Gachas() catalog.Declaration[*masters.Gacha] {
	date := dateAttribute("date", []string{"begin"}, func(g *masters.Gacha) time.Time { return g.StartAt })
	date.DefaultSort = true
	date.DefaultDisplay = true

	return catalog.Declaration[*masters.Gacha]{
		Kind:     KindGacha,
		Name:     func(g *masters.Gacha) string { return g.Name },
		Released: func(ctx *catalog.Context, g *masters.Gacha) bool { return released(ctx, g.StartAt) },
		Attributes: []catalog.DataAttribute[*masters.Gacha]{
			idAttribute[*masters.Gacha](),
			{
				Name:      "type",
				Accessor:  func(_ *catalog.Context, g *masters.Gacha) any { return g.Type },
				Formatter: func(_ *catalog.Context, g *masters.Gacha) string { return g.Type },
				Init:      mapping[*masters.Gacha]((*aliases.Tables).GachaTypeMapping),
				Tag:       true,
				Eq:        true,
			},
			date,
			dateAttribute("end", nil, func(g *masters.Gacha) time.Time { return g.EndAt }),
			{
				Name:             "event",
				Description:      "Id of the linked event",
				Accessor:         func(_ *catalog.Context, g *masters.Gacha) any { return g.EventID },
				CompareConverter: parseNumber,
				Comparable:       true,
			},
			{
				Name:        "character",
				Aliases:     []string{"char", "pickup"},
				Description: "Characters of the pick up cards",
				Accessor:    func(_ *catalog.Context, g *masters.Gacha) any { return intsToAny(pickUpCharacters(g)) },
				Formatter: func(_ *catalog.Context, g *masters.Gacha) string {
					return e.characterNames(pickUpCharacters(g))
				},
				Init:   mapping[*masters.Gacha]((*aliases.Tables).CharacterMapping),
				Tag:    true,
				Eq:     true,
				Plural: true,
			},
			{
				Name:     "active",
				Aliases:  []string{"ongoing"},
				Accessor: func(ctx *catalog.Context, g *masters.Gacha) any { return running(ctx, g.StartAt, g.EndAt) },
				Flag:     true,
			},
		},
		Sources: []catalog.CommandSource[*masters.Gacha]{
			{
				Name:        KindGacha,
				EmbedSource: e.gachaEmbed,
				Shortcuts: []catalog.Shortcut[*masters.Gacha]{
					{
						Emoji: "🎉",
						Label: "Event",
						Check: func(_ *catalog.Context, g *masters.Gacha) bool { return g.Event != nil },
						Action: func(_ *catalog.Context, g *masters.Gacha, server catalog.Server) (catalog.Navigation, bool) {
							if g.Event == nil {
								return catalog.Navigation{}, false
							}
							return catalog.Navigation{Kind: KindEvent, ID: g.Event.ID, Server: server}, true
						},
					},
					{
						Emoji: "🃏",
						Label: "Card",
						Check: func(_ *catalog.Context, g *masters.Gacha) bool { return len(g.PickUps) > 0 },
						Action: func(_ *catalog.Context, g *masters.Gacha, server catalog.Server) (catalog.Navigation, bool) {
							if len(g.PickUps) == 0 {
								return catalog.Navigation{}, false
							}
							return catalog.Navigation{Kind: KindCard, ID: g.PickUps[0].ID, Server: server}, true
						},
					},
				},
			},
		},
	}
}

func (e *Env) gachaEmbed(ctx *catalog.Context, g *masters.Gacha, _ int, server catalog.Server) discord.Embed {
	local := ctx.WithServer(server)
	color := config.EmbedDefaultColor
	if len(g.PickUps) > 0 {
		color = config.UnitColor(g.PickUps[0].UnitID())
	}

	b := discord.NewEmbedBuilder().
		SetTitle(g.Name).
		SetColor(color).
		SetImage(e.url(server, "gachas", g.BannerFile)).
		AddField("Type", g.Type, true).
		AddField("Period", timeRange(local, g.StartAt, g.EndAt), true)
	if len(g.PickUps) > 0 {
		lines := make([]string, len(g.PickUps))
		for i, c := range g.PickUps {
			lines[i] = fmt.Sprintf("`%d` %s %s", c.ID, strings.Repeat("★", c.Rarity), c.Name)
		}
		b.AddField("Pick Up", strings.Join(lines, "\n"), false)
	}
	if g.Event != nil {
		b.AddField("Event", g.Event.Name, false)
	}
	return b.SetFooter(footerText(local, KindGacha, g.ID), "").Build()
}
