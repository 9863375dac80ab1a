package views

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
)

// Component actions, the last segment of a /view/{session}/{action} custom id.
const (
	ActionFirst      = "first"
	ActionPrev       = "prev"
	ActionNext       = "next"
	ActionLast       = "last"
	ActionList       = "list"
	ActionServer     = "server"
	ActionSource     = "source"
	ActionSelect     = "select"
	ActionSelectPrev = "selprev"
	ActionSelectNext = "selnext"
	// ActionTab and ActionShortcut carry an index: "tab:1", "shortcut:0".
	ActionTab      = "tab"
	ActionShortcut = "shortcut"
)

var (
	ErrUnknownAction = errors.New("unknown view action")
	// ErrShortcutTarget is returned when a shortcut points at an entry no loaded server has.
	ErrShortcutTarget = errors.New("shortcut target not found")
)

// Navigator is the kind-agnostic side of a View, used by sessions and component handlers.
type Navigator interface {
	Kind() string
	// Context is the query context the view was opened with.
	Context() *catalog.Context
	// Apply performs a component action. values holds the select menu choice, if any.
	// A shortcut action returns the navigation target instead of changing the view.
	Apply(action string, values []string) (*catalog.Navigation, error)
	Render() discord.Embed
	Components(session string) []discord.ContainerComponent
	Freeze()
}

var _ Navigator = (*View[catalog.Entity])(nil)

// CustomID builds the component id of action within session.
func CustomID(session, action string) string {
	return fmt.Sprintf("/view/%s/%s", session, action)
}

// ParseCustomID splits a /view/{session}/{action} id.
func ParseCustomID(id string) (session, action string, ok bool) {
	rest, found := strings.CutPrefix(id, "/view/")
	if !found {
		return "", "", false
	}
	session, action, ok = strings.Cut(rest, "/")
	return session, action, ok && session != "" && action != ""
}

func indexed(action string, i int) string {
	return action + ":" + strconv.Itoa(i)
}

func (v *View[T]) Apply(action string, values []string) (*catalog.Navigation, error) {
	if v.frozen {
		return nil, nil
	}
	name, arg, hasArg := strings.Cut(action, ":")
	index := 0
	if hasArg {
		var err error
		if index, err = strconv.Atoi(arg); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
		}
	}

	switch name {
	case ActionFirst:
		v.SetPage(0)
	case ActionPrev:
		v.StepPage(-1)
	case ActionNext:
		v.StepPage(1)
	case ActionLast:
		v.SetPage(v.maxPage())
	case ActionList:
		v.ToggleList()
	case ActionServer:
		v.CycleTargetServer()
	case ActionSource:
		v.SwitchSource(1)
	case ActionTab:
		v.SetTab(index)
	case ActionSelectPrev:
		v.StepSelectWindow(-1)
	case ActionSelectNext:
		v.StepSelectWindow(1)
	case ActionSelect:
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: empty selection", ErrUnknownAction)
		}
		i, err := strconv.Atoi(values[0])
		if err != nil {
			return nil, fmt.Errorf("%w: selection %q", ErrUnknownAction, values[0])
		}
		v.SetPage(i)
		v.list = false
	case ActionShortcut:
		if nav, ok := v.Shortcut(index); ok {
			return &nav, nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return nil, nil
}

func (v *View[T]) atFirst() bool {
	if v.list {
		return v.listPage() == 0
	}
	return v.page == 0
}

func (v *View[T]) atLast() bool {
	if v.list {
		return v.listPage() == v.lastListPage()
	}
	return v.page == v.maxPage()
}

// Components renders the navigation rows. Page-step buttons are disabled at the boundaries and
// everything is disabled once the view is frozen.
func (v *View[T]) Components(session string) []discord.ContainerComponent {
	if len(v.result.Values) == 0 {
		return nil
	}
	id := func(action string) string { return CustomID(session, action) }
	disabled := func(b bool) bool { return v.frozen || b }

	listLabel := "📋 List"
	if v.list {
		listLabel = "🔎 Detail"
	}
	rows := []discord.ContainerComponent{
		discord.NewActionRow(
			discord.NewSecondaryButton("⏮", id(ActionFirst)).WithDisabled(disabled(v.atFirst())),
			discord.NewSecondaryButton("◀", id(ActionPrev)).WithDisabled(disabled(v.atFirst())),
			discord.NewSecondaryButton("▶", id(ActionNext)).WithDisabled(disabled(v.atLast())),
			discord.NewSecondaryButton("⏭", id(ActionLast)).WithDisabled(disabled(v.atLast())),
			discord.NewPrimaryButton(listLabel, id(ActionList)).WithDisabled(disabled(false)),
		),
	}

	var extra []discord.InteractiveComponent
	if !v.list {
		for i, tab := range v.activeSource().Tabs {
			button := discord.NewSecondaryButton(tab, id(indexed(ActionTab, i)))
			if i == v.tab {
				button = discord.NewPrimaryButton(tab, id(indexed(ActionTab, i)))
			}
			extra = append(extra, button.WithDisabled(disabled(i == v.tab)))
		}
	}
	if len(v.servers) > 1 {
		label := "🌐 " + strings.ToUpper(string(v.servers[v.target]))
		extra = append(extra, discord.NewSecondaryButton(label, id(ActionServer)).WithDisabled(disabled(false)))
	}
	if len(v.registry.Sources()) > 1 {
		next := v.registry.Source(v.source + 1)
		extra = append(extra, discord.NewSecondaryButton("🔁 "+next.Name, id(ActionSource)).WithDisabled(disabled(false)))
	}
	if len(extra) > 0 {
		rows = append(rows, discord.NewActionRow(extra[:min(len(extra), 5)]...))
	}

	if shortcuts := v.Shortcuts(); len(shortcuts) > 0 && !v.list {
		buttons := make([]discord.InteractiveComponent, 0, len(shortcuts))
		for _, s := range shortcuts[:min(len(shortcuts), 5)] {
			buttons = append(buttons, discord.NewSecondaryButton(s.Emoji+" "+s.Label, id(indexed(ActionShortcut, s.Index))).
				WithDisabled(!s.Enabled))
		}
		rows = append(rows, discord.NewActionRow(buttons...))
	}

	rows = append(rows, discord.NewActionRow(v.selectMenu(id(ActionSelect)).WithDisabled(v.frozen)))
	if len(v.result.Values) > config.SelectWindowSize {
		last := v.maxPage() / config.SelectWindowSize
		rows = append(rows, discord.NewActionRow(
			discord.NewSecondaryButton("◀ Options", id(ActionSelectPrev)).WithDisabled(disabled(v.selectPage == 0)),
			discord.NewSecondaryButton("Options ▶", id(ActionSelectNext)).WithDisabled(disabled(v.selectPage == last)),
		))
	}
	return rows
}

// SelectOptions returns the indices offered by the select menu window.
func (v *View[T]) SelectOptions() []int {
	start := v.selectPage * config.SelectWindowSize
	end := min(start+config.SelectWindowSize, len(v.result.Values))
	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}
	return indices
}

func (v *View[T]) selectMenu(customID string) discord.StringSelectMenuComponent {
	indices := v.SelectOptions()
	options := make([]discord.StringSelectMenuOption, len(indices))
	for i, index := range indices {
		entity := v.result.Values[index]
		label := truncate(fmt.Sprintf("%d. %s", index+1, v.registry.DisplayName(entity)), 100)
		option := discord.StringSelectMenuOption{
			Label:   label,
			Value:   strconv.Itoa(index),
			Default: index == v.page,
		}
		if v.result.Display != nil {
			option.Description = truncate(strings.TrimSpace(v.result.Display(entity)), 100)
		}
		options[i] = option
	}
	placeholder := fmt.Sprintf("Jump to %d-%d of %d", indices[0]+1, indices[len(indices)-1]+1, len(v.result.Values))
	return discord.NewStringSelectMenu(customID, placeholder, options...).
		WithMinValues(1).
		WithMaxValues(1)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
