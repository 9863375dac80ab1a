// Package views navigates query results interactively: paging, tabs, servers, sources and
// shortcuts, rendered as Discord embeds and components.
package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
)

// View is the state of one interactive result. It is not safe for concurrent use; sessions
// serialize access.
type View[T catalog.Entity] struct {
	registry *catalog.Registry[T]
	ctx      *catalog.Context
	result   *catalog.FilterResult[T]
	servers  []catalog.Server
	pageSize int

	page       int
	selectPage int
	tab        int
	target     int
	source     int
	list       bool
	frozen     bool
}

// New starts a view at the result's start index and tab.
func New[T catalog.Entity](r *catalog.Registry[T], ctx *catalog.Context, result *catalog.FilterResult[T], pageSize int) *View[T] {
	if pageSize <= 0 {
		pageSize = config.ListPageSize
	}
	servers := r.Servers()
	target := slices.Index(servers, result.Server)
	if target < 0 {
		servers = slices.Insert(servers, 0, result.Server)
		target = 0
	}

	v := &View[T]{
		registry: r,
		ctx:      ctx,
		result:   result,
		servers:  servers,
		pageSize: pageSize,
		target:   target,
		source:   result.Source,
	}
	v.tab = v.clampTab(result.StartTab)
	v.SetPage(result.StartIndex)
	return v
}

func (v *View[T]) Kind() string { return v.registry.Kind() }

func (v *View[T]) Context() *catalog.Context { return v.ctx }

func (v *View[T]) Len() int { return len(v.result.Values) }

func (v *View[T]) Page() int { return v.page }

func (v *View[T]) SelectPage() int { return v.selectPage }

func (v *View[T]) Tab() int { return v.tab }

func (v *View[T]) ListMode() bool { return v.list }

func (v *View[T]) Frozen() bool { return v.frozen }

func (v *View[T]) SourceIndex() int { return v.source }

// TargetServer is the server the user asked to mirror to, which may lack the current entity.
func (v *View[T]) TargetServer() catalog.Server { return v.servers[v.target] }

// Current returns the entity at the page index.
func (v *View[T]) Current() (T, bool) {
	if len(v.result.Values) == 0 {
		var zero T
		return zero, false
	}
	return v.result.Values[v.page], true
}

func (v *View[T]) activeSource() catalog.CommandSource[T] {
	return v.registry.Source(v.source)
}

func (v *View[T]) maxPage() int {
	return max(len(v.result.Values)-1, 0)
}

func (v *View[T]) listPage() int { return v.page / v.pageSize }

func (v *View[T]) lastListPage() int { return v.maxPage() / v.pageSize }

// SetPage moves to entity i, clamped to the result.
func (v *View[T]) SetPage(i int) *View[T] {
	v.page = min(max(i, 0), v.maxPage())
	v.selectPage = v.page / config.SelectWindowSize
	return v
}

// StepPage moves by delta entities, or by delta list pages in list mode.
func (v *View[T]) StepPage(delta int) *View[T] {
	if v.list {
		return v.SetPage((v.listPage() + delta) * v.pageSize)
	}
	return v.SetPage(v.page + delta)
}

// StepSelectWindow shows the previous or next window of the entity select menu.
func (v *View[T]) StepSelectWindow(delta int) *View[T] {
	last := v.maxPage() / config.SelectWindowSize
	v.selectPage = min(max(v.selectPage+delta, 0), last)
	return v
}

func (v *View[T]) clampTab(i int) int {
	tabs := v.activeSource().Tabs
	if len(tabs) == 0 {
		return 0
	}
	return min(max(i, 0), len(tabs)-1)
}

// SetTab selects a tab of the active source. It does nothing when the source has no tabs.
func (v *View[T]) SetTab(i int) *View[T] {
	if len(v.activeSource().Tabs) == 0 {
		return v
	}
	v.tab = v.clampTab(i)
	return v
}

// CycleTargetServer advances the mirrored server. The pointer moves even when the current
// entity is missing there; rendering then falls back to the result's server.
func (v *View[T]) CycleTargetServer() *View[T] {
	v.target = (v.target + 1) % len(v.servers)
	return v
}

// SwitchSource rotates through the command sources by delta, carrying the tab over by name.
func (v *View[T]) SwitchSource(delta int) *View[T] {
	previous := v.activeSource()
	tabName := ""
	if v.tab < len(previous.Tabs) {
		tabName = strings.ToLower(previous.Tabs[v.tab])
	}

	n := len(v.registry.Sources())
	v.source = ((v.source+delta)%n + n) % n
	next := v.activeSource()
	if tab, ok := next.SuffixTabAliases[tabName]; ok && tabName != "" {
		v.tab = v.clampTab(tab)
	} else {
		v.tab = v.clampTab(next.DefaultTab)
	}
	return v
}

// ToggleList switches between the detail and the list presentation.
func (v *View[T]) ToggleList() *View[T] {
	v.list = !v.list
	return v
}

// Freeze disables every further interaction.
func (v *View[T]) Freeze() {
	v.frozen = true
}

// effectiveServer is the target server when it has the current entity, else the result's.
func (v *View[T]) effectiveServer(current T) (catalog.Server, T) {
	server := v.servers[v.target]
	if mirrored, ok := v.registry.Get(server, current.EntityID()); ok {
		return server, mirrored
	}
	return v.result.Server, current
}

// RenderDetail renders the current entity with the active source.
func (v *View[T]) RenderDetail() discord.Embed {
	current, ok := v.Current()
	if !ok {
		return noResults(v.registry.Kind())
	}
	server, entity := v.effectiveServer(current)
	source := v.activeSource()

	var embed discord.Embed
	if source.EmbedSource != nil {
		embed = source.EmbedSource(v.ctx, entity, v.tab, server)
	} else {
		embed = discord.NewEmbedBuilder().
			SetTitle(v.registry.DisplayName(entity)).
			SetColor(config.EmbedDefaultColor).
			Build()
	}

	position := fmt.Sprintf("%d/%d", v.page+1, len(v.result.Values))
	if embed.Footer == nil {
		embed.Footer = &discord.EmbedFooter{Text: position}
	} else {
		embed.Footer.Text = embed.Footer.Text + " • " + position
	}
	return embed
}

// ListLines formats the entities of the current list page. The current entity is bold.
func (v *View[T]) ListLines() []string {
	start := v.listPage() * v.pageSize
	end := min(start+v.pageSize, len(v.result.Values))
	source := v.activeSource()

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		entity := v.result.Values[i]
		name := v.registry.DisplayName(entity)
		if source.ListFormatter != nil {
			name = source.ListFormatter(v.ctx, entity)
		}
		line := name
		if v.result.Display != nil {
			line = fmt.Sprintf("`%s` %s", v.result.Display(entity), name)
		}
		if i == v.page {
			line = "**" + line + "**"
		}
		lines = append(lines, line)
	}
	return lines
}

// RenderList renders the current list page.
func (v *View[T]) RenderList() discord.Embed {
	if len(v.result.Values) == 0 {
		return noResults(v.registry.Kind())
	}
	return discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("%s results", strings.ToUpper(v.registry.Kind()[:1])+v.registry.Kind()[1:])).
		SetDescription(strings.Join(v.ListLines(), "\n")).
		SetColor(config.EmbedDefaultColor).
		SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", v.listPage()+1, v.lastListPage()+1, len(v.result.Values)), "").
		Build()
}

// Render renders the presentation the view is in.
func (v *View[T]) Render() discord.Embed {
	if v.list {
		return v.RenderList()
	}
	return v.RenderDetail()
}

func noResults(kind string) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("No results").
		SetDescription(fmt.Sprintf("No %s matched the query.", kind)).
		SetColor(config.InfoColor).
		Build()
}

// ShortcutState is a shortcut of the active source and whether it applies to the current
// entity.
type ShortcutState struct {
	Index   int
	Emoji   string
	Label   string
	Enabled bool
}

// Shortcuts evaluates the active source's shortcuts against the current entity.
func (v *View[T]) Shortcuts() []ShortcutState {
	current, ok := v.Current()
	shortcuts := v.activeSource().Shortcuts
	states := make([]ShortcutState, len(shortcuts))
	for i, s := range shortcuts {
		enabled := ok && !v.frozen && s.Action != nil
		if enabled && s.Check != nil {
			enabled = s.Check(v.ctx, current)
		}
		states[i] = ShortcutState{Index: i, Emoji: s.Emoji, Label: s.Label, Enabled: enabled}
	}
	return states
}

// Shortcut runs shortcut i against the current entity and target server.
func (v *View[T]) Shortcut(i int) (catalog.Navigation, bool) {
	states := v.Shortcuts()
	if i < 0 || i >= len(states) || !states[i].Enabled {
		return catalog.Navigation{}, false
	}
	current, _ := v.Current()
	return v.activeSource().Shortcuts[i].Action(v.ctx, current, v.servers[v.target])
}
