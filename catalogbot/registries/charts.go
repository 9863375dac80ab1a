package registries

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

func (e *Env) chartName(c *masters.Chart) string {
	return c.Song.Name + " " + e.Aliases.DifficultyName(c.Difficulty)
}

func (e *Env) Charts() catalog.Declaration[*masters.Chart] {
	return catalog.Declaration[*masters.Chart]{
		Kind: KindChart,
		Name: e.chartName,
		Released: func(ctx *catalog.Context, c *masters.Chart) bool {
			return !c.Song.Hidden && released(ctx, c.Song.StartAt)
		},
		Attributes: []catalog.DataAttribute[*masters.Chart]{
			idAttribute[*masters.Chart](),
			{
				Name:        "difficulty",
				Aliases:     []string{"diff"},
				Description: "Chart difficulty",
				Accessor:    func(_ *catalog.Context, c *masters.Chart) any { return c.Difficulty },
				Formatter: func(_ *catalog.Context, c *masters.Chart) string {
					return e.Aliases.DifficultyName(c.Difficulty)
				},
				Init:       mapping[*masters.Chart]((*aliases.Tables).DifficultyMapping),
				Keyword:    true,
				Tag:        true,
				Comparable: true,
				Sortable:   true,
			},
			{
				Name:             "level",
				Aliases:          []string{"lv"},
				Description:      "Chart level, 14+ means 14.5",
				Accessor:         func(_ *catalog.Context, c *masters.Chart) any { return c.Level },
				Formatter:        func(_ *catalog.Context, c *masters.Chart) string { return formatLevel(c.Level) },
				CompareConverter: parseLevel,
				Comparable:       true,
				Sortable:         true,
				ReverseSort:      true,
				DefaultDisplay:   true,
			},
			{
				Name:             "notes",
				Aliases:          []string{"combo"},
				Accessor:         func(_ *catalog.Context, c *masters.Chart) any { return c.Notes },
				Formatter:        func(_ *catalog.Context, c *masters.Chart) string { return fmt.Sprintf("%4d", c.Notes) },
				CompareConverter: parseNumber,
				Comparable:       true,
				Sortable:         true,
				ReverseSort:      true,
			},
			{
				Name:      "unit",
				Accessor:  func(_ *catalog.Context, c *masters.Chart) any { return c.Song.UnitID },
				Formatter: func(_ *catalog.Context, c *masters.Chart) string { return e.unitName(c.Song.UnitID) },
				Init:      mapping[*masters.Chart]((*aliases.Tables).UnitMapping),
				Tag:       true,
				Eq:        true,
			},
			{
				Name:             "bpm",
				Accessor:         func(_ *catalog.Context, c *masters.Chart) any { return c.Song.BPM },
				Formatter:        func(_ *catalog.Context, c *masters.Chart) string { return fmt.Sprintf("%3.0f", c.Song.BPM) },
				CompareConverter: parseNumber,
				Comparable:       true,
				Sortable:         true,
				ReverseSort:      true,
			},
			stringAttribute("designer", func(c *masters.Chart) string { return c.Designer }),
		},
		Sources: []catalog.CommandSource[*masters.Chart]{
			{
				Name:        KindChart,
				EmbedSource: e.chartEmbed,
				Shortcuts: []catalog.Shortcut[*masters.Chart]{
					{
						Emoji: "🎵",
						Label: "Song",
						Action: func(_ *catalog.Context, c *masters.Chart, server catalog.Server) (catalog.Navigation, bool) {
							return catalog.Navigation{Kind: KindSong, ID: c.SongID, Server: server}, true
						},
					},
				},
			},
		},
	}
}

func (e *Env) chartEmbed(ctx *catalog.Context, c *masters.Chart, _ int, server catalog.Server) discord.Embed {
	b := discord.NewEmbedBuilder().
		SetTitle(e.chartName(c)).
		SetColor(config.UnitColor(c.Song.UnitID)).
		SetThumbnail(e.url(server, "jackets", c.Song.JacketFile)).
		AddField("Level", strings.TrimSpace(formatLevel(c.Level)), true).
		AddField("Notes", fmt.Sprintf("%d", c.Notes), true).
		AddField("BPM", fmt.Sprintf("%.0f", c.Song.BPM), true)
	if c.Designer != "" {
		b.AddField("Designer", c.Designer, true)
	}
	return b.SetFooter(footerText(ctx.WithServer(server), KindChart, c.ID), "").Build()
}
