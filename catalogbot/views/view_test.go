package views

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/metrics"
)

type item struct {
	id   int
	name string
}

func (i *item) EntityID() int { return i.id }

func testRegistry(t *testing.T) *catalog.Registry[*item] {
	t.Helper()
	jp := make(map[int]*item)
	for id := 1; id <= 30; id++ {
		jp[id] = &item{id: id, name: fmt.Sprintf("jp item %d", id)}
	}
	en := make(map[int]*item)
	for id := 1; id <= 10; id++ {
		en[id] = &item{id: id, name: fmt.Sprintf("en item %d", id)}
	}

	embed := func(_ *catalog.Context, v *item, tab int, server catalog.Server) discord.Embed {
		return discord.NewEmbedBuilder().
			SetTitle(fmt.Sprintf("%s@%s", v.name, server)).
			SetDescription(fmt.Sprintf("tab %d", tab)).
			Build()
	}
	decl := catalog.Declaration[*item]{
		Kind: "item",
		Name: func(v *item) string { return v.name },
		Attributes: []catalog.DataAttribute[*item]{
			{Name: "id", Accessor: func(_ *catalog.Context, v *item) any { return v.id }, Comparable: true},
		},
		Sources: []catalog.CommandSource[*item]{
			{
				Name:             "item",
				EmbedSource:      embed,
				Tabs:             []string{"Front", "Back"},
				SuffixTabAliases: map[string]int{"front": 0, "back": 1},
				Shortcuts: []catalog.Shortcut[*item]{
					{
						Emoji: "➡",
						Label: "Next",
						Check: func(_ *catalog.Context, v *item) bool { return v.id%2 == 0 },
						Action: func(_ *catalog.Context, v *item, server catalog.Server) (catalog.Navigation, bool) {
							return catalog.Navigation{Kind: "item", ID: v.id + 1, Server: server}, true
						},
					},
				},
			},
			{
				Name:             "art",
				EmbedSource:      embed,
				Tabs:             []string{"Small", "Back", "Large"},
				SuffixTabAliases: map[string]int{"small": 0, "back": 1, "large": 2},
				DefaultTab:       2,
			},
			{
				Name:        "plain",
				EmbedSource: embed,
			},
		},
	}
	r, err := catalog.NewRegistry(decl, nil, map[catalog.Server]map[int]*item{
		catalog.ServerJP: jp,
		catalog.ServerEN: en,
	})
	require.NoError(t, err)
	return r
}

func testView(t *testing.T, start int) *View[*item] {
	t.Helper()
	r := testRegistry(t)
	ctx := &catalog.Context{Server: catalog.ServerJP}
	result := &catalog.FilterResult[*item]{
		Values:     r.Values(ctx),
		Server:     catalog.ServerJP,
		StartIndex: start,
		Display:    func(v *item) string { return fmt.Sprintf("%3d", v.id) },
	}
	return New(r, ctx, result, 0)
}

func row(t *testing.T, rows []discord.ContainerComponent, i int) []discord.InteractiveComponent {
	t.Helper()
	require.Greater(t, len(rows), i)
	actionRow, ok := rows[i].(discord.ActionRowComponent)
	require.True(t, ok)
	return actionRow.Components()
}

func button(t *testing.T, c discord.InteractiveComponent) discord.ButtonComponent {
	t.Helper()
	b, ok := c.(discord.ButtonComponent)
	require.True(t, ok)
	return b
}

func TestPagingClampsAndTracksSelectWindow(t *testing.T) {
	v := testView(t, 99)
	assert.Equal(t, 29, v.Page())
	assert.Equal(t, 1, v.SelectPage())

	v.SetPage(-4)
	assert.Equal(t, 0, v.Page())
	assert.Equal(t, 0, v.SelectPage())

	v.StepPage(-1)
	assert.Equal(t, 0, v.Page())
	v.StepPage(3)
	assert.Equal(t, 3, v.Page())
}

func TestStepButtonsDisabledAtBoundaries(t *testing.T) {
	v := testView(t, 0)
	first := row(t, v.Components("s"), 0)
	assert.True(t, button(t, first[0]).Disabled)
	assert.True(t, button(t, first[1]).Disabled)
	assert.False(t, button(t, first[2]).Disabled)
	assert.Equal(t, "/view/s/prev", button(t, first[1]).CustomID)

	v.SetPage(v.Len() - 1)
	last := row(t, v.Components("s"), 0)
	assert.False(t, button(t, last[1]).Disabled)
	assert.True(t, button(t, last[2]).Disabled)
	assert.True(t, button(t, last[3]).Disabled)
}

func TestSetTab(t *testing.T) {
	v := testView(t, 0)
	v.SetTab(5)
	assert.Equal(t, 1, v.Tab())
	assert.Contains(t, v.RenderDetail().Description, "tab 1")

	v.SwitchSource(2)
	assert.Equal(t, "plain", v.registry.Source(v.SourceIndex()).Name)
	v.SetTab(1)
	assert.Equal(t, 0, v.Tab(), "no tabs")
}

func TestSwitchSourceCarriesTab(t *testing.T) {
	v := testView(t, 0)
	v.SetTab(1)

	v.SwitchSource(1)
	assert.Equal(t, 1, v.SourceIndex())
	assert.Equal(t, 1, v.Tab(), "Back exists in both sources")

	v.SetTab(0)
	v.SwitchSource(-1)
	assert.Equal(t, 0, v.SourceIndex())
	assert.Equal(t, 0, v.Tab(), "small is unknown to the first source")

	v.SwitchSource(1)
	assert.Equal(t, 2, v.Tab(), "front falls back to the default tab")
}

func TestCycleTargetServerFallsBack(t *testing.T) {
	v := testView(t, 19)
	assert.Equal(t, "jp item 20@jp", v.RenderDetail().Title)

	v.CycleTargetServer()
	assert.Equal(t, catalog.ServerEN, v.TargetServer())
	assert.Equal(t, "jp item 20@jp", v.RenderDetail().Title, "id 20 is missing on en")

	v.SetPage(4)
	assert.Equal(t, "en item 5@en", v.RenderDetail().Title)

	v.CycleTargetServer()
	assert.Equal(t, catalog.ServerJP, v.TargetServer())
}

func TestRenderDetailFooter(t *testing.T) {
	v := testView(t, 2)
	embed := v.RenderDetail()
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "3/30", embed.Footer.Text)
}

func TestListMode(t *testing.T) {
	v := testView(t, 16)
	v.ToggleList()
	require.True(t, v.ListMode())

	lines := v.ListLines()
	require.Len(t, lines, 15)
	assert.Equal(t, "` 16` jp item 16", lines[0])
	assert.Equal(t, "**` 17` jp item 17**", lines[1])

	embed := v.Render()
	assert.Equal(t, "Item results", embed.Title)
	assert.Equal(t, "Page 2/2 • Total: 30", embed.Footer.Text)

	v.StepPage(-1)
	assert.Equal(t, 0, v.Page())
	assert.True(t, button(t, row(t, v.Components("s"), 0)[1]).Disabled)
	v.StepPage(1)
	assert.Equal(t, 15, v.Page())
	assert.True(t, button(t, row(t, v.Components("s"), 0)[2]).Disabled)
}

func TestShortcutsFollowCurrentEntity(t *testing.T) {
	v := testView(t, 0)
	require.Len(t, v.Shortcuts(), 1)
	assert.False(t, v.Shortcuts()[0].Enabled)
	_, ok := v.Shortcut(0)
	assert.False(t, ok)

	v.StepPage(1)
	assert.True(t, v.Shortcuts()[0].Enabled)
	nav, ok := v.Shortcut(0)
	require.True(t, ok)
	assert.Equal(t, catalog.Navigation{Kind: "item", ID: 3, Server: catalog.ServerJP}, nav)

	_, ok = v.Shortcut(7)
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	v := testView(t, 0)

	_, err := v.Apply(ActionLast, nil)
	require.NoError(t, err)
	assert.Equal(t, 29, v.Page())

	_, err = v.Apply(ActionSelect, []string{"4"})
	require.NoError(t, err)
	assert.Equal(t, 4, v.Page())

	_, err = v.Apply("tab:1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Tab())

	_, err = v.Apply(ActionSelectNext, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v.SelectPage())
	assert.Equal(t, []int{25, 26, 27, 28, 29}, v.SelectOptions())

	v.SetPage(1)
	nav, err := v.Apply("shortcut:0", nil)
	require.NoError(t, err)
	require.NotNil(t, nav)
	assert.Equal(t, 3, nav.ID)

	_, err = v.Apply("explode", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = v.Apply("tab:x", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = v.Apply(ActionSelect, nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestFreezeDisablesEverything(t *testing.T) {
	v := testView(t, 1)
	v.Freeze()

	for i, rowComponents := range v.Components("s") {
		for _, c := range rowComponents.(discord.ActionRowComponent).Components() {
			switch c := c.(type) {
			case discord.ButtonComponent:
				assert.True(t, c.Disabled, "row %d %s", i, c.CustomID)
			case discord.StringSelectMenuComponent:
				assert.True(t, c.Disabled)
			}
		}
	}

	_, err := v.Apply(ActionNext, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Page())
}

func TestEmptyResult(t *testing.T) {
	r := testRegistry(t)
	v := New(r, &catalog.Context{Server: catalog.ServerJP}, &catalog.FilterResult[*item]{Server: catalog.ServerJP}, 0)
	assert.Equal(t, "No results", v.Render().Title)
	assert.Nil(t, v.Components("s"))
	assert.Equal(t, 0, v.Page())
	v.StepPage(1)
	assert.Equal(t, 0, v.Page())
}

func TestParseCustomID(t *testing.T) {
	session, action, ok := ParseCustomID(CustomID("abc", "tab:1"))
	require.True(t, ok)
	assert.Equal(t, "abc", session)
	assert.Equal(t, "tab:1", action)

	_, _, ok = ParseCustomID("/claim/abc")
	assert.False(t, ok)
	_, _, ok = ParseCustomID("/view/abc")
	assert.False(t, ok)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute)
	owner := snowflake.ID(42)

	var expired atomic.Int32
	v := testView(t, 0)
	s := store.Start(owner, v, func(*Session) { expired.Add(1) })
	assert.Equal(t, 1, store.Len())

	err := store.Do(s.ID, owner, func(s *Session) error {
		_, err := s.View().Apply(ActionNext, nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Page())

	assert.ErrorIs(t, store.Do(s.ID, snowflake.ID(7), func(*Session) error { return nil }), ErrNotOwner)
	assert.ErrorIs(t, store.Do("missing", owner, func(*Session) error { return nil }), ErrSessionNotFound)

	store.Close()
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int32(1), expired.Load())
	assert.True(t, v.Frozen())
}

func TestSessionIdleExpiry(t *testing.T) {
	store := NewSessionStore(20*time.Millisecond, 5*time.Millisecond)
	v := testView(t, 0)
	done := make(chan struct{})
	store.Start(0, v, func(*Session) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}
	assert.True(t, v.Frozen())
}

func TestEvictedSessionIsNotRestored(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute)
	v := testView(t, 0)
	s := store.Start(7, v, nil)

	before := testutil.ToFloat64(metrics.Sessions)
	store.cache.Delete(s.ID)
	assert.Equal(t, before-1, testutil.ToFloat64(metrics.Sessions))
	assert.True(t, v.Frozen())

	assert.ErrorIs(t, store.touch(s), ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
	store.Close()
	assert.Equal(t, before-1, testutil.ToFloat64(metrics.Sessions))
}
