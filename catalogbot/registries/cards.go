package registries

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

// Card art tabs.
const (
	TabUntrained = iota
	TabTrained
)

// MaxCardLevel bounds the power<level> family.
const MaxCardLevel = 80

// PowerAt scales the base power by one percent per level above the first.
func PowerAt(c *masters.Card, level int) int {
	level = min(max(level, 1), MaxCardLevel)
	return c.Power() * (100 + level - 1) / 100
}

func powerLevel(match []string) int {
	level, _ := strconv.Atoi(match[1])
	return level
}

func cardArt(c *masters.Card, tab int) string {
	if c.AssetFile == "" {
		return ""
	}
	return fmt.Sprintf("%s_%d.png", c.AssetFile, tab)
}

func statAttribute(name string, aliases []string, get func(*masters.Card) int) catalog.DataAttribute[*masters.Card] {
	return catalog.DataAttribute[*masters.Card]{
		Name:             name,
		Aliases:          aliases,
		Accessor:         func(_ *catalog.Context, c *masters.Card) any { return get(c) },
		Formatter:        func(_ *catalog.Context, c *masters.Card) string { return fmt.Sprintf("%5d", get(c)) },
		CompareConverter: parseNumber,
		Comparable:       true,
		Sortable:         true,
		ReverseSort:      true,
	}
}

func (e *Env) Cards() catalog.Declaration[*masters.Card] {
	power := statAttribute("power", []string{"pow", "total"}, (*masters.Card).Power)
	power.DefaultDisplay = true

	date := dateAttribute("date", []string{"release"}, func(c *masters.Card) time.Time { return c.StartAt })
	date.DefaultSort = true

	return catalog.Declaration[*masters.Card]{
		Kind:     KindCard,
		Name:     func(c *masters.Card) string { return c.Name },
		Released: func(ctx *catalog.Context, c *masters.Card) bool { return released(ctx, c.StartAt) },
		Attributes: []catalog.DataAttribute[*masters.Card]{
			idAttribute[*masters.Card](),
			{
				Name:      "character",
				Aliases:   []string{"char", "chara"},
				Accessor:  func(_ *catalog.Context, c *masters.Card) any { return c.CharacterID },
				Formatter: func(_ *catalog.Context, c *masters.Card) string { return e.characterName(c.CharacterID) },
				Init:      mapping[*masters.Card]((*aliases.Tables).CharacterMapping),
				Tag:       true,
				Eq:        true,
			},
			{
				Name:      "unit",
				Accessor:  func(_ *catalog.Context, c *masters.Card) any { return c.UnitID() },
				Formatter: func(_ *catalog.Context, c *masters.Card) string { return e.unitName(c.UnitID()) },
				Init:      mapping[*masters.Card]((*aliases.Tables).UnitMapping),
				Tag:       true,
				Eq:        true,
			},
			{
				Name:      "attribute",
				Aliases:   []string{"attr"},
				Accessor:  func(_ *catalog.Context, c *masters.Card) any { return c.Attribute },
				Formatter: func(_ *catalog.Context, c *masters.Card) string { return c.Attribute },
				Init:      mapping[*masters.Card]((*aliases.Tables).AttributeMapping),
				Tag:       true,
				Eq:        true,
			},
			{
				Name:             "rarity",
				Aliases:          []string{"stars", "r"},
				Accessor:         func(_ *catalog.Context, c *masters.Card) any { return c.Rarity },
				Formatter:        func(_ *catalog.Context, c *masters.Card) string { return strings.Repeat("★", c.Rarity) },
				CompareConverter: parseNumber,
				Comparable:       true,
				Sortable:         true,
				ReverseSort:      true,
			},
			power,
			statAttribute("heart", nil, func(c *masters.Card) int { return c.Heart }),
			statAttribute("technique", []string{"tech"}, func(c *masters.Card) int { return c.Technique }),
			statAttribute("physical", []string{"phys"}, func(c *masters.Card) int { return c.Physical }),
			{
				Name:             "skill",
				Description:      "Skill score up in percent",
				Accessor:         func(_ *catalog.Context, c *masters.Card) any { return c.SkillScore },
				Formatter:        func(_ *catalog.Context, c *masters.Card) string { return fmt.Sprintf("%3.0f%%", c.SkillScore) },
				CompareConverter: parseNumber,
				Comparable:       true,
				Sortable:         true,
				ReverseSort:      true,
			},
			date,
			{
				Name:     "limited",
				Aliases:  []string{"lim"},
				Accessor: func(_ *catalog.Context, c *masters.Card) any { return c.Limited },
				Flag:     true,
			},
			{
				Name:     "event",
				Accessor: func(_ *catalog.Context, c *masters.Card) any { return c.Event != nil },
				Flag:     true,
			},
			{
				Name:        "power<level>",
				Description: "Power at a given level, e.g. sort=power50",
				Regex:       regexp.MustCompile(`power(\d+)`),
				RegexAccessor: func(_ *catalog.Context, c *masters.Card, match []string) any {
					return PowerAt(c, powerLevel(match))
				},
				RegexFormatter: func(_ *catalog.Context, c *masters.Card, match []string) string {
					return fmt.Sprintf("%5d", PowerAt(c, powerLevel(match)))
				},
				Sortable:    true,
				ReverseSort: true,
			},
		},
		Sources: []catalog.CommandSource[*masters.Card]{
			{
				Name:        KindCard,
				EmbedSource: e.cardEmbed,
				Tabs:        []string{"Untrained", "Trained"},
				DefaultTab:  TabTrained,
				SuffixTabAliases: map[string]int{
					"untrained": TabUntrained,
					"base":      TabUntrained,
					"trained":   TabTrained,
					"awakened":  TabTrained,
				},
				Shortcuts: e.cardShortcuts(),
			},
			{
				Name:        "art",
				EmbedSource: e.cardArtEmbed,
				Tabs:        []string{"Untrained", "Trained"},
				DefaultTab:  TabTrained,
				SuffixTabAliases: map[string]int{
					"untrained": TabUntrained,
					"trained":   TabTrained,
				},
				DefaultDisplay: "date",
				Shortcuts:      e.cardShortcuts(),
			},
		},
	}
}

func (e *Env) cardShortcuts() []catalog.Shortcut[*masters.Card] {
	return []catalog.Shortcut[*masters.Card]{
		{
			Emoji: "🎉",
			Label: "Event",
			Check: func(_ *catalog.Context, c *masters.Card) bool { return c.Event != nil },
			Action: func(_ *catalog.Context, c *masters.Card, server catalog.Server) (catalog.Navigation, bool) {
				if c.Event == nil {
					return catalog.Navigation{}, false
				}
				return catalog.Navigation{Kind: KindEvent, ID: c.Event.ID, Server: server}, true
			},
		},
		{
			Emoji: "🎰",
			Label: "Gacha",
			Check: func(_ *catalog.Context, c *masters.Card) bool { return len(c.Gachas) > 0 },
			Action: func(_ *catalog.Context, c *masters.Card, server catalog.Server) (catalog.Navigation, bool) {
				if len(c.Gachas) == 0 {
					return catalog.Navigation{}, false
				}
				return catalog.Navigation{Kind: KindGacha, ID: c.Gachas[0].ID, Server: server}, true
			},
		},
	}
}

func (e *Env) cardEmbed(ctx *catalog.Context, c *masters.Card, tab int, server catalog.Server) discord.Embed {
	stats := fmt.Sprintf("Heart: %d\nTechnique: %d\nPhysical: %d\n**Total: %d**",
		c.Heart, c.Technique, c.Physical, c.Power())
	b := discord.NewEmbedBuilder().
		SetTitle(c.Name).
		SetColor(config.UnitColor(c.UnitID())).
		SetThumbnail(e.url(server, "cards", cardArt(c, tab))).
		AddField("Character", e.characterName(c.CharacterID), true).
		AddField("Rarity", strings.Repeat("★", c.Rarity), true).
		AddField("Attribute", c.Attribute, true).
		AddField("Stats", stats, true)
	if c.SkillName != "" {
		b.AddField("Skill", fmt.Sprintf("%s\nScore up %.0f%%", c.SkillName, c.SkillScore), true)
	}
	release := ctx.FormatDate(c.StartAt)
	if c.Limited {
		release += " (limited)"
	}
	b.AddField("Released", release, true)
	if c.Event != nil {
		b.AddField("Event", c.Event.Name, false)
	}
	return b.SetFooter(footerText(ctx.WithServer(server), KindCard, c.ID), "").Build()
}

func (e *Env) cardArtEmbed(ctx *catalog.Context, c *masters.Card, tab int, server catalog.Server) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle(c.Name).
		SetColor(config.UnitColor(c.UnitID())).
		SetImage(e.url(server, "cards", cardArt(c, tab))).
		SetFooter(footerText(ctx.WithServer(server), KindCard, c.ID), "").
		Build()
}
