package toolbox

// Panel identifies a toolbox panel for the open-panel hook.
type Panel string

const (
	PanelHighlight Panel = "highlight"
	PanelHide      Panel = "hide"
)

// Hooks are the external collaborators the dispatcher calls back into. The
// toolbox's own filter application and panel plumbing are not implemented
// here; the surrounding application injects them.
type Hooks struct {
	// ApplyHighlights re-applies the highlight-filter list to the page.
	ApplyHighlights func()
	// ApplyHides re-applies the hide-filter list to the page.
	ApplyHides func()
	// OpenPanel opens the named toolbox panel, optionally focusing it.
	OpenPanel func(panel Panel, focus bool)
	// Confirm blocks for a yes/no answer before a destructive overwrite.
	Confirm func(prompt string) bool
}

// Dispatcher performs the two popover follow-on actions against the shared
// toolbox state.
type Dispatcher struct {
	State *State
	Hooks Hooks
}

// NewDispatcher wires a dispatcher to state and hooks. Missing hooks become
// no-ops (Confirm defaults to accepting) so headless callers stay terse.
func NewDispatcher(state *State, hooks Hooks) *Dispatcher {
	if hooks.ApplyHighlights == nil {
		hooks.ApplyHighlights = func() {}
	}
	if hooks.ApplyHides == nil {
		hooks.ApplyHides = func() {}
	}
	if hooks.OpenPanel == nil {
		hooks.OpenPanel = func(Panel, bool) {}
	}
	if hooks.Confirm == nil {
		hooks.Confirm = func(string) bool { return true }
	}
	return &Dispatcher{State: state, Hooks: hooks}
}

// Highlight appends one highlight entry per sample, all carrying the current
// rotation color, re-applies the highlight filters, opens the highlight panel,
// and only then advances the rotation (which also syncs the picker control).
func (d *Dispatcher) Highlight(samples []string) {
	for _, name := range samples {
		d.State.AppendHighlight(name)
	}
	d.Hooks.ApplyHighlights()
	d.Hooks.OpenPanel(PanelHighlight, true)
	d.State.NextColor()
}

// ShowOnly restricts the report to the given samples. Pre-existing hide
// entries would be destroyed, so a non-empty list demands confirmation first;
// declining aborts with no state mutated and ShowOnly returns false. On
// proceed it clears the hide list, forces show-only mode, forces regex off,
// appends one exact entry per sample, re-applies, and opens the hide panel.
func (d *Dispatcher) ShowOnly(samples []string) bool {
	if len(d.State.Hides) > 0 {
		if !d.Hooks.Confirm("This will overwrite the current hide filters. Continue?") {
			return false
		}
	}

	d.State.ClearHides()
	d.State.ShowOnlyMatching = true
	d.State.Regex = false
	for _, name := range samples {
		d.State.AppendHide(name)
	}
	d.Hooks.ApplyHides()
	d.Hooks.OpenPanel(PanelHide, true)
	return true
}
