package registries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/arguments"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/masters"
	"github.com/gohye/catalogbot/catalogbot/masters/mastertest"
)

func testSet(t *testing.T) (*Set, *catalog.Context) {
	t.Helper()
	tables, err := aliases.Default()
	require.NoError(t, err)

	env := &Env{
		Snapshots: map[catalog.Server]*masters.Snapshot{catalog.ServerJP: mastertest.Snapshot()},
		Aliases:   tables,
	}
	set, err := Build(env)
	require.NoError(t, err)
	return set, &catalog.Context{Server: catalog.ServerJP, Now: mastertest.Epoch}
}

func ids[T catalog.Entity](values []T) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = v.EntityID()
	}
	return out
}

func evaluate[T catalog.Entity](t *testing.T, r *catalog.Registry[T], ctx *catalog.Context, query string) *catalog.FilterResult[T] {
	t.Helper()
	result, err := r.Evaluate(ctx, arguments.Parse(query), 0)
	require.NoError(t, err, query)
	return result
}

func TestBuildRegistersEveryKind(t *testing.T) {
	set, _ := testSet(t)

	var kinds []string
	for _, c := range set.All() {
		kinds = append(kinds, c.Kind())
		assert.Equal(t, []catalog.Server{catalog.ServerJP}, c.Servers())
	}
	assert.Equal(t, []string{KindSong, KindChart, KindCard, KindEvent, KindGacha, KindStamp, KindLoginBonus, KindComic}, kinds)

	c, ok := set.ByKind(KindChart)
	require.True(t, ok)
	assert.Equal(t, 16, c.Len(catalog.ServerJP))

	_, ok = set.ByKind("auction")
	assert.False(t, ok)
}

func TestSongQueries(t *testing.T) {
	set, ctx := testSet(t)

	assert.Equal(t, []int{1, 2, 3}, ids(evaluate(t, set.Songs, ctx, "").Values))
	assert.Equal(t, []int{2}, ids(evaluate(t, set.Songs, ctx, "$pm").Values))
	assert.Equal(t, []int{2, 3}, ids(evaluate(t, set.Songs, ctx, "lv>=14+").Values))
	assert.Equal(t, []int{1, 3}, ids(evaluate(t, set.Songs, ctx, "bpm>160").Values))
	assert.Equal(t, []int{3}, ids(evaluate(t, set.Songs, ctx, "duration>2:05").Values))

	sorted := evaluate(t, set.Songs, ctx, "sort=level")
	assert.Equal(t, []int{3, 2, 1}, ids(sorted.Values))
	assert.Equal(t, "14+", sorted.Display(set.Songs.Values(ctx)[1]))

	hidden := *ctx
	hidden.AllowUnreleased = true
	assert.Equal(t, []int{1, 2, 3, 4}, ids(evaluate(t, set.Songs, &hidden, "").Values))
}

func TestSongEmbedAndShortcut(t *testing.T) {
	set, ctx := testSet(t)
	song, ok := set.Songs.Get(catalog.ServerJP, 1)
	require.True(t, ok)

	source := set.Songs.Source(0)
	embed := source.EmbedSource(ctx, song, 0, catalog.ServerJP)
	assert.Equal(t, "Cyber Cyber", embed.Title)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "song 1 • JP", embed.Footer.Text)

	var levels string
	for _, f := range embed.Fields {
		if f.Name == "Levels" {
			levels = f.Value
		}
	}
	assert.Equal(t, "5 / 9 / 12 / 14", levels)

	require.Len(t, source.Shortcuts, 1)
	nav, ok := source.Shortcuts[0].Action(ctx, song, catalog.ServerEN)
	require.True(t, ok)
	assert.Equal(t, catalog.Navigation{Kind: KindChart, ID: 14, Server: catalog.ServerEN}, nav)
}

func TestChartQueries(t *testing.T) {
	set, ctx := testSet(t)

	expert := evaluate(t, set.Charts, ctx, "expert")
	assert.Equal(t, []int{14, 24, 34}, ids(expert.Values))
	assert.Equal(t, "14 ", expert.Display(expert.Values[0]))

	byName := evaluate(t, set.Charts, ctx, "cyber ex")
	require.NotEmpty(t, byName.Values)
	assert.Equal(t, 14, byName.Values[0].ID)
	assert.Equal(t, "Cyber Cyber expert", set.Charts.DisplayName(byName.Values[0]))

	assert.Equal(t, []int{24, 34}, ids(evaluate(t, set.Charts, ctx, "level>=14+").Values))
	assert.Equal(t, []int{13, 14, 23, 24, 33, 34}, ids(evaluate(t, set.Charts, ctx, "difficulty>=hard").Values))
}

func TestCardQueries(t *testing.T) {
	set, ctx := testSet(t)

	assert.Equal(t, []int{103, 104, 102, 101}, ids(evaluate(t, set.Cards, ctx, "").Values), "newest first")
	assert.Equal(t, []int{103}, ids(evaluate(t, set.Cards, ctx, "$pm").Values))
	assert.Equal(t, []int{101}, ids(evaluate(t, set.Cards, ctx, "$rinku").Values))
	assert.Equal(t, []int{103}, ids(evaluate(t, set.Cards, ctx, "$limited").Values))
	assert.Equal(t, []int{104, 102, 101}, ids(evaluate(t, set.Cards, ctx, "$!limited").Values))
	assert.Equal(t, []int{103, 104}, ids(evaluate(t, set.Cards, ctx, "date>=24/06/01").Values))
	assert.Equal(t, []int{104, 103}, ids(evaluate(t, set.Cards, ctx, "attr=cool,elegant sort=power").Values))

	_, err := set.Cards.Evaluate(ctx, arguments.Parse("attr=spicy"), 0)
	assert.ErrorIs(t, err, arguments.ErrUnknownArgument)
}

func TestCardPowerFamily(t *testing.T) {
	set, ctx := testSet(t)

	result := evaluate(t, set.Cards, ctx, "sort=power50")
	assert.Equal(t, []int{104, 103, 101, 102}, ids(result.Values))
	assert.Equal(t, "12218", result.Display(result.Values[0]))

	card, _ := set.Cards.Get(catalog.ServerJP, 101)
	assert.Equal(t, 7500, PowerAt(card, 1))
	assert.Equal(t, PowerAt(card, MaxCardLevel), PowerAt(card, 500))

	_, err := set.Cards.Evaluate(ctx, arguments.Parse("sort=powerful"), 0)
	assert.ErrorIs(t, err, arguments.ErrInvalidSortField)
}

func TestCardTabs(t *testing.T) {
	set, ctx := testSet(t)

	result := evaluate(t, set.Cards, ctx, "rinku untrained")
	assert.Equal(t, TabUntrained, result.StartTab)
	assert.Equal(t, 101, result.Values[0].ID)

	assert.Equal(t, TabTrained, evaluate(t, set.Cards, ctx, "rinku").StartTab)

	art, err := set.Cards.Evaluate(ctx, arguments.Parse("$ha"), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, art.Source)
	assert.Equal(t, ctx.FormatDate(art.Values[0].StartAt), art.Display(art.Values[0]))
}

func TestEventQueries(t *testing.T) {
	set, ctx := testSet(t)

	assert.Equal(t, []int{2, 1}, ids(evaluate(t, set.Events, ctx, "").Values))
	assert.Equal(t, []int{2}, ids(evaluate(t, set.Events, ctx, "$current").Values))
	assert.Equal(t, []int{1}, ids(evaluate(t, set.Events, ctx, "$poker").Values))
	assert.Equal(t, []int{2}, ids(evaluate(t, set.Events, ctx, "$saki").Values))
	assert.Equal(t, []int{1}, ids(evaluate(t, set.Events, ctx, "char==rinku,maho").Values))
	assert.Empty(t, evaluate(t, set.Events, ctx, "$ongoing").Values)

	assert.Equal(t, 0, evaluate(t, set.Events, ctx, "+1").StartIndex)
	assert.Equal(t, 1, evaluate(t, set.Events, ctx, "-1").StartIndex)

	current, ok := set.Events.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, "Photon Night", current.Name)

	embed := set.Events.Source(0).EmbedSource(ctx, current, 0, catalog.ServerJP)
	assert.Equal(t, "Photon Night", embed.Title)
}

func TestGachaQueries(t *testing.T) {
	set, ctx := testSet(t)

	assert.Equal(t, []int{1}, ids(evaluate(t, set.Gachas, ctx, "$active").Values))
	assert.Equal(t, []int{1}, ids(evaluate(t, set.Gachas, ctx, "$perm").Values))
	assert.Equal(t, []int{2}, ids(evaluate(t, set.Gachas, ctx, "event=2").Values))
	assert.Equal(t, []int{2}, ids(evaluate(t, set.Gachas, ctx, "$limited").Values))
	assert.Equal(t, []int{2}, ids(evaluate(t, set.Gachas, ctx, "$saki").Values))

	gacha, _ := set.Gachas.Get(catalog.ServerJP, 2)
	shortcuts := set.Gachas.Source(0).Shortcuts
	nav, ok := shortcuts[0].Action(ctx, gacha, catalog.ServerJP)
	require.True(t, ok)
	assert.Equal(t, catalog.Navigation{Kind: KindEvent, ID: 2, Server: catalog.ServerJP}, nav)

	welcome, _ := set.Gachas.Get(catalog.ServerJP, 1)
	assert.False(t, shortcuts[0].Check(ctx, welcome))
}

func TestMiscQueries(t *testing.T) {
	set, ctx := testSet(t)

	assert.Equal(t, []int{2}, ids(evaluate(t, set.Stamps, ctx, "$saki").Values))
	assert.Equal(t, []int{1}, ids(evaluate(t, set.LoginBonuses, ctx, "$active").Values))
	assert.Equal(t, []int{1}, ids(evaluate(t, set.Comics, ctx, "$maho").Values))
	assert.Empty(t, evaluate(t, set.Comics, ctx, "$saki").Values)
}

func TestLevelAndDurationFormats(t *testing.T) {
	v, err := parseLevel(nil, "14+")
	require.NoError(t, err)
	assert.Equal(t, 14.5, v)
	_, err = parseLevel(nil, "hard")
	assert.Error(t, err)

	assert.Equal(t, "14+", formatLevel(14.5))
	assert.Equal(t, " 9 ", formatLevel(9))
	assert.Equal(t, "2:05", formatDuration(125))

	d, err := parseDuration(nil, "2:05")
	require.NoError(t, err)
	assert.Equal(t, 125.0, d)
}

func TestParseDateUsesContextLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	ctx := &catalog.Context{Location: tokyo}

	v, err := parseDate(ctx, "24/06/15")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 6, 15, 0, 0, 0, 0, tokyo).Equal(v.(time.Time)))

	v, err = parseDate(ctx, "2024-06-15")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 6, 15, 0, 0, 0, 0, tokyo).Equal(v.(time.Time)))

	_, err = parseDate(ctx, "yesterday")
	assert.Error(t, err)
}
