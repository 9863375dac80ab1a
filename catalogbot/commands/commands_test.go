package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/arguments"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/database/models"
	"github.com/gohye/catalogbot/catalogbot/manager"
	"github.com/gohye/catalogbot/catalogbot/masters"
	"github.com/gohye/catalogbot/catalogbot/masters/mastertest"
	"github.com/gohye/catalogbot/catalogbot/registries"
	"github.com/gohye/catalogbot/catalogbot/utils"
	"github.com/gohye/catalogbot/catalogbot/views"
)

func testSet(t *testing.T) (*registries.Set, *catalog.Context) {
	t.Helper()
	tables, err := aliases.Default()
	require.NoError(t, err)

	set, err := registries.Build(&registries.Env{
		Snapshots: map[catalog.Server]*masters.Snapshot{catalog.ServerJP: mastertest.Snapshot()},
		Aliases:   tables,
	})
	require.NoError(t, err)
	return set, &catalog.Context{Server: catalog.ServerJP, Servers: []catalog.Server{catalog.ServerJP}, Now: mastertest.Epoch, Location: time.UTC}
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range Commands {
		names = append(names, c.CommandName())
	}
	assert.ElementsMatch(t, []string{
		"attributes", "preferences", "reload", "version",
		"song", "chart", "card", "art", "event", "gacha", "stamp", "loginbonus", "comic",
	}, names)

	card := QueryCommands[2].Create()
	require.Len(t, card.Options, 2)
	query := card.Options[0].(discord.ApplicationCommandOptionString)
	assert.True(t, query.Autocomplete)
	server := card.Options[1].(discord.ApplicationCommandOptionString)
	assert.Len(t, server.Choices, len(catalog.KnownServers))
}

func TestOpen(t *testing.T) {
	set, ctx := testSet(t)

	view, n, err := Open(set, registries.KindSong, ctx, arguments.Parse(""), 0, 15)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, registries.KindSong, view.Kind())

	view, n, err = Open(set, registries.KindSong, ctx, arguments.Parse("bpm>500"), 0, 15)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, view)

	view, _, err = Open(set, registries.KindCard, ctx, arguments.Parse(""), 1, 15)
	require.NoError(t, err)
	art, ok := view.(*views.View[*masters.Card])
	require.True(t, ok)
	assert.Equal(t, 1, art.SourceIndex())

	_, _, err = Open(set, registries.KindCard, ctx, arguments.Parse("attr=spicy"), 0, 15)
	assert.ErrorIs(t, err, arguments.ErrUnknownArgument)

	_, _, err = Open(set, "auction", ctx, arguments.Parse(""), 0, 15)
	assert.Error(t, err)
}

func TestNavigate(t *testing.T) {
	set, ctx := testSet(t)

	t.Run("falls back to the view's server", func(t *testing.T) {
		view, err := Navigate(set, ctx, catalog.Navigation{Kind: registries.KindChart, ID: 14, Server: catalog.ServerEN}, 15)
		require.NoError(t, err)
		charts, ok := view.(*views.View[*masters.Chart])
		require.True(t, ok)
		current, ok := charts.Current()
		require.True(t, ok)
		assert.Equal(t, 14, current.ID)
		assert.Equal(t, catalog.ServerJP, charts.Context().Server)
		assert.Greater(t, charts.Len(), 1)
	})

	t.Run("hidden target is shown alone", func(t *testing.T) {
		view, err := Navigate(set, ctx, catalog.Navigation{Kind: registries.KindSong, ID: 4, Server: catalog.ServerJP}, 15)
		require.NoError(t, err)
		songs := view.(*views.View[*masters.Song])
		assert.Equal(t, 1, songs.Len())
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := Navigate(set, ctx, catalog.Navigation{Kind: registries.KindSong, ID: 999, Server: catalog.ServerJP}, 15)
		assert.ErrorIs(t, err, views.ErrShortcutTarget)
		_, err = Navigate(set, ctx, catalog.Navigation{Kind: "auction", ID: 1}, 15)
		assert.ErrorIs(t, err, views.ErrShortcutTarget)
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, outcome(3, nil))
	assert.Equal(t, OutcomeEmpty, outcome(0, nil))
	assert.Equal(t, OutcomeUserError, outcome(0, arguments.RepeatedSingle("sort")))
	assert.Equal(t, OutcomeError, outcome(0, errors.New("accessor panicked")))
}

func TestSuggestions(t *testing.T) {
	set, ctx := testSet(t)

	choices := Suggestions(set.Songs, ctx, "cyber")
	require.NotEmpty(t, choices)
	first := choices[0].(discord.AutocompleteChoiceString)
	assert.Equal(t, "Cyber Cyber (#1)", first.Name)
	assert.Equal(t, "1", first.Value)

	for _, c := range Suggestions(set.Songs, ctx, "groove") {
		assert.NotEqual(t, "4", c.(discord.AutocompleteChoiceString).Value, "unreleased songs stay hidden")
	}
}

func TestAttributeField(t *testing.T) {
	field := AttributeField(catalog.AttributeInfo{
		Name:        "rarity",
		Aliases:     []string{"r", "stars"},
		Roles:       []string{"sort", "compare"},
		Description: "Card rarity",
		Values:      []string{"1", "2"},
	})
	assert.Equal(t, "rarity", field.Name)
	assert.Equal(t, "Card rarity\nAliases: `r`, `stars`\nUse: sort, compare\nValues: 1, 2", field.Value)

	assert.Equal(t, "-", AttributeField(catalog.AttributeInfo{Name: "id"}).Value)
}

func TestDescribePreference(t *testing.T) {
	assert.Equal(t, "Nothing set, defaults apply.", DescribePreference(&models.Preference{}))
	assert.Equal(t, "**server**: EN\n**unreleased**: true", DescribePreference(&models.Preference{
		Server:          utils.Ptr("en"),
		AllowUnreleased: utils.Ptr(true),
	}))
}

func TestReloadSummary(t *testing.T) {
	set, _ := testSet(t)
	summary := ReloadSummary(&manager.Catalog{Set: set, Servers: []catalog.Server{catalog.ServerJP}})
	assert.Contains(t, summary, "**song**: JP 4")
	assert.Contains(t, summary, "**chart**: JP 16")
}
