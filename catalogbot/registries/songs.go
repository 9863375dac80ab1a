package registries

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

var songCategories = map[string]any{
	"original":     "original",
	"orig":         "original",
	"cover":        "cover",
	"game":         "game",
	"instrumental": "instrumental",
	"inst":         "instrumental",
}

func expertChart(s *masters.Song) *masters.Chart {
	return s.Charts[masters.DifficultyExpert]
}

// parseDuration accepts m:ss or plain seconds.
func parseDuration(_ *catalog.Context, s string) (any, error) {
	if minutes, seconds, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(minutes)
		if err != nil {
			return nil, err
		}
		sec, err := strconv.Atoi(seconds)
		if err != nil {
			return nil, err
		}
		return float64(m*60 + sec), nil
	}
	return strconv.ParseFloat(s, 64)
}

func stringAttribute[T catalog.Entity](name string, get func(T) string) catalog.DataAttribute[T] {
	return catalog.DataAttribute[T]{
		Name:      name,
		Accessor:  func(_ *catalog.Context, v T) any { return get(v) },
		Formatter: func(_ *catalog.Context, v T) string { return get(v) },
		Eq:        true,
	}
}

func (e *Env) Songs() catalog.Declaration[*masters.Song] {
	return catalog.Declaration[*masters.Song]{
		Kind: KindSong,
		Name: func(s *masters.Song) string { return s.Name },
		Released: func(ctx *catalog.Context, s *masters.Song) bool {
			return !s.Hidden && released(ctx, s.StartAt)
		},
		Attributes: []catalog.DataAttribute[*masters.Song]{
			idAttribute[*masters.Song](),
			{
				Name:        "unit",
				Description: "Performing unit",
				Accessor:    func(_ *catalog.Context, s *masters.Song) any { return s.UnitID },
				Formatter:   func(_ *catalog.Context, s *masters.Song) string { return e.unitName(s.UnitID) },
				Init:        mapping[*masters.Song]((*aliases.Tables).UnitMapping),
				Tag:         true,
				Eq:          true,
			},
			{
				Name:         "category",
				Aliases:      []string{"cat"},
				Accessor:     func(_ *catalog.Context, s *masters.Song) any { return s.Category },
				Formatter:    func(_ *catalog.Context, s *masters.Song) string { return s.Category },
				ValueMapping: songCategories,
				Tag:          true,
				Eq:           true,
			},
			{
				Name:        "bpm",
				Description: "Beats per minute",
				Accessor:    func(_ *catalog.Context, s *masters.Song) any { return s.BPM },
				Formatter:   func(_ *catalog.Context, s *masters.Song) string { return fmt.Sprintf("%3.0f", s.BPM) },
				Comparable:  true,
				Sortable:    true,
				ReverseSort: true,
			},
			{
				Name:             "duration",
				Aliases:          []string{"length", "len"},
				Description:      "Length in m:ss or seconds",
				Accessor:         func(_ *catalog.Context, s *masters.Song) any { return s.Duration },
				Formatter:        func(_ *catalog.Context, s *masters.Song) string { return formatDuration(s.Duration) },
				CompareConverter: parseDuration,
				Comparable:       true,
				Sortable:         true,
			},
			func() catalog.DataAttribute[*masters.Song] {
				a := dateAttribute("date", []string{"release"}, func(s *masters.Song) time.Time { return s.StartAt })
				a.DefaultDisplay = true
				return a
			}(),
			{
				Name:        "level",
				Aliases:     []string{"lv"},
				Description: "Expert chart level, 14+ means 14.5",
				Accessor: func(_ *catalog.Context, s *masters.Song) any {
					if c := expertChart(s); c != nil {
						return c.Level
					}
					return nil
				},
				Formatter: func(_ *catalog.Context, s *masters.Song) string {
					if c := expertChart(s); c != nil {
						return formatLevel(c.Level)
					}
					return " ? "
				},
				CompareConverter: parseLevel,
				Comparable:       true,
				Sortable:         true,
				ReverseSort:      true,
			},
			{
				Name:    "notes",
				Aliases: []string{"combo"},
				Accessor: func(_ *catalog.Context, s *masters.Song) any {
					if c := expertChart(s); c != nil {
						return c.Notes
					}
					return nil
				},
				Formatter: func(_ *catalog.Context, s *masters.Song) string {
					if c := expertChart(s); c != nil {
						return fmt.Sprintf("%4d", c.Notes)
					}
					return "   ?"
				},
				CompareConverter: parseNumber,
				Comparable:       true,
				Sortable:         true,
				ReverseSort:      true,
			},
			{
				Name:     "hidden",
				Accessor: func(_ *catalog.Context, s *masters.Song) any { return s.Hidden },
				Flag:     true,
			},
			stringAttribute("artist", func(s *masters.Song) string { return s.Artist }),
			stringAttribute("composer", func(s *masters.Song) string { return s.Composer }),
			stringAttribute("lyricist", func(s *masters.Song) string { return s.Lyricist }),
			stringAttribute("arranger", func(s *masters.Song) string { return s.Arranger }),
		},
		Sources: []catalog.CommandSource[*masters.Song]{
			{
				Name:        KindSong,
				EmbedSource: e.songEmbed,
				Shortcuts: []catalog.Shortcut[*masters.Song]{
					{
						Emoji: "📈",
						Label: "Chart",
						Check: func(_ *catalog.Context, s *masters.Song) bool { return expertChart(s) != nil },
						Action: func(_ *catalog.Context, s *masters.Song, server catalog.Server) (catalog.Navigation, bool) {
							c := expertChart(s)
							if c == nil {
								return catalog.Navigation{}, false
							}
							return catalog.Navigation{Kind: KindChart, ID: c.ID, Server: server}, true
						},
					},
				},
			},
		},
	}
}

func (e *Env) songEmbed(ctx *catalog.Context, s *masters.Song, _ int, server catalog.Server) discord.Embed {
	var levels []string
	for d := masters.DifficultyEasy; d <= masters.DifficultyExpert; d++ {
		if c, ok := s.Charts[d]; ok {
			levels = append(levels, strings.TrimSpace(formatLevel(c.Level)))
		}
	}

	b := discord.NewEmbedBuilder().
		SetTitle(s.Name).
		SetColor(config.UnitColor(s.UnitID)).
		SetThumbnail(e.url(server, "jackets", s.JacketFile)).
		AddField("Unit", e.unitName(s.UnitID), true).
		AddField("Category", s.Category, true).
		AddField("BPM", fmt.Sprintf("%.0f", s.BPM), true).
		AddField("Length", formatDuration(s.Duration), true).
		AddField("Released", ctx.FormatDate(s.StartAt), true).
		AddField("Levels", strings.Join(levels, " / "), true)
	if s.Composer != "" {
		b.AddField("Credits", fmt.Sprintf("Lyrics: %s\nMusic: %s\nArrangement: %s", s.Lyricist, s.Composer, s.Arranger), false)
	}
	return b.SetFooter(footerText(ctx.WithServer(server), KindSong, s.ID), "").Build()
}
