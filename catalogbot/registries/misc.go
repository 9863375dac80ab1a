package registries

import (
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

func (e *Env) Stamps() catalog.Declaration[*masters.Stamp] {
	return catalog.Declaration[*masters.Stamp]{
		Kind: KindStamp,
		Name: func(s *masters.Stamp) string { return s.Name },
		Attributes: []catalog.DataAttribute[*masters.Stamp]{
			idAttribute[*masters.Stamp](),
			{
				Name:           "character",
				Aliases:        []string{"char"},
				Accessor:       func(_ *catalog.Context, s *masters.Stamp) any { return s.CharacterID },
				Formatter:      func(_ *catalog.Context, s *masters.Stamp) string { return e.characterName(s.CharacterID) },
				Init:           mapping[*masters.Stamp]((*aliases.Tables).CharacterMapping),
				Tag:            true,
				Eq:             true,
				DefaultDisplay: true,
			},
		},
		Sources: []catalog.CommandSource[*masters.Stamp]{
			{
				Name: KindStamp,
				EmbedSource: func(ctx *catalog.Context, s *masters.Stamp, _ int, server catalog.Server) discord.Embed {
					return discord.NewEmbedBuilder().
						SetTitle(s.Name).
						SetDescription(s.Description).
						SetColor(config.UnitColor(s.CharacterID / 10)).
						SetImage(e.url(server, "stamps", s.AssetFile)).
						SetFooter(footerText(ctx.WithServer(server), KindStamp, s.ID), "").
						Build()
				},
			},
		},
	}
}

func (e *Env) LoginBonuses() catalog.Declaration[*masters.LoginBonus] {
	date := dateAttribute("date", []string{"begin"}, func(l *masters.LoginBonus) time.Time { return l.StartAt })
	date.DefaultSort = true
	date.DefaultDisplay = true

	return catalog.Declaration[*masters.LoginBonus]{
		Kind:     KindLoginBonus,
		Name:     func(l *masters.LoginBonus) string { return l.Title },
		Released: func(ctx *catalog.Context, l *masters.LoginBonus) bool { return released(ctx, l.StartAt) },
		Attributes: []catalog.DataAttribute[*masters.LoginBonus]{
			idAttribute[*masters.LoginBonus](),
			date,
			dateAttribute("end", nil, func(l *masters.LoginBonus) time.Time { return l.EndAt }),
			{
				Name:     "active",
				Aliases:  []string{"ongoing"},
				Accessor: func(ctx *catalog.Context, l *masters.LoginBonus) any { return running(ctx, l.StartAt, l.EndAt) },
				Flag:     true,
			},
		},
		Sources: []catalog.CommandSource[*masters.LoginBonus]{
			{
				Name: KindLoginBonus,
				EmbedSource: func(ctx *catalog.Context, l *masters.LoginBonus, _ int, server catalog.Server) discord.Embed {
					local := ctx.WithServer(server)
					b := discord.NewEmbedBuilder().
						SetTitle(l.Title).
						SetColor(config.EmbedDefaultColor).
						SetImage(e.url(server, "login_bonuses", l.AssetFile)).
						AddField("Period", timeRange(local, l.StartAt, l.EndAt), false)
					if len(l.Rewards) > 0 {
						b.AddField("Rewards", strings.Join(l.Rewards, "\n"), false)
					}
					return b.SetFooter(footerText(local, KindLoginBonus, l.ID), "").Build()
				},
			},
		},
	}
}

func (e *Env) Comics() catalog.Declaration[*masters.Comic] {
	date := dateAttribute("date", []string{"release"}, func(c *masters.Comic) time.Time { return c.StartAt })
	date.DefaultSort = true
	date.DefaultDisplay = true

	return catalog.Declaration[*masters.Comic]{
		Kind:     KindComic,
		Name:     func(c *masters.Comic) string { return c.Title },
		Released: func(ctx *catalog.Context, c *masters.Comic) bool { return released(ctx, c.StartAt) },
		Attributes: []catalog.DataAttribute[*masters.Comic]{
			idAttribute[*masters.Comic](),
			date,
			{
				Name:      "character",
				Aliases:   []string{"char"},
				Accessor:  func(_ *catalog.Context, c *masters.Comic) any { return intsToAny(c.CharacterIDs) },
				Formatter: func(_ *catalog.Context, c *masters.Comic) string { return e.characterNames(c.CharacterIDs) },
				Init:      mapping[*masters.Comic]((*aliases.Tables).CharacterMapping),
				Tag:       true,
				Eq:        true,
				Plural:    true,
			},
		},
		Sources: []catalog.CommandSource[*masters.Comic]{
			{
				Name: KindComic,
				EmbedSource: func(ctx *catalog.Context, c *masters.Comic, _ int, server catalog.Server) discord.Embed {
					return discord.NewEmbedBuilder().
						SetTitle(c.Title).
						SetColor(config.EmbedDefaultColor).
						SetImage(e.url(server, "comics", c.AssetFile)).
						AddField("Characters", e.characterNames(c.CharacterIDs), false).
						SetFooter(footerText(ctx.WithServer(server), KindComic, c.ID), "").
						Build()
				},
			},
		},
	}
}
