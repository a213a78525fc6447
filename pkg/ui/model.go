package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/qcview/pkg/analysis"
	"github.com/vanderheijden86/qcview/pkg/config"
	"github.com/vanderheijden86/qcview/pkg/model"
	"github.com/vanderheijden86/qcview/pkg/toolbox"
	"github.com/vanderheijden86/qcview/pkg/watcher"
)

// FileChangedMsg is sent when the report file changes on disk
type FileChangedMsg struct{}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// uiBridge receives the dispatcher's hook calls. It lives on the heap so the
// closures stay valid across Bubble Tea's model copies; Update drains it
// after every dispatch.
type uiBridge struct {
	openRequested    bool
	panel            toolbox.Panel
	focus            bool
	highlightApplies int
	hideApplies      int
}

const toolboxWidth = 34

// Model is the main Bubble Tea model for qcv
type Model struct {
	// Data
	report *model.Report
	reload func() (*model.Report, error)
	w      *watcher.Watcher

	insights analysis.Insights

	// Shared toolbox state and popovers
	tb       *toolbox.State
	bridge   *uiBridge
	popovers *PopoverController
	pinned   map[SegmentKey]bool

	// Navigation
	cursor  int
	segment model.Status // "" = no segment focused
	scroll  int

	// Panels and overlays
	toolboxOpen bool
	panel       ToolboxPanel
	showHelp    bool
	helpText    string

	// Show-only confirm modal
	confirmForm *huh.Form
	confirmVal  *bool
	showConfirm bool
	pendingShow []string

	// Status line
	statusMsg     string
	statusIsError bool

	theme  Theme
	width  int
	height int
	ready  bool
}

// NewModel builds the TUI model over a loaded report.
func NewModel(report *model.Report, cfg config.Config) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	tb := toolbox.NewState(cfg.Palette)

	m := Model{
		report:      report,
		insights:    analysis.Analyze(report),
		tb:          tb,
		bridge:      &uiBridge{},
		popovers:    NewPopoverController(),
		pinned:      make(map[SegmentKey]bool),
		toolboxOpen: cfg.UI.ToolboxOpen,
		panel:       NewToolboxPanel(tb, theme),
		theme:       theme,

		// Initialize ready with defaults so the UI never hangs waiting for a
		// WindowSizeMsg (slow under tmux and some SSH setups).
		width:  120,
		height: 40,
		ready:  true,
	}
	m.panel.SetWidth(toolboxWidth - 4)
	return m
}

// SetWatcher attaches a file watcher for live reload.
func (m *Model) SetWatcher(w *watcher.Watcher) {
	m.w = w
}

// SetReload sets the function used to reload the report after a file change.
func (m *Model) SetReload(fn func() (*model.Report, error)) {
	m.reload = fn
}

// Toolbox exposes the shared filter state (for robot output and tests).
func (m Model) Toolbox() *toolbox.State {
	return m.tb
}

func (m Model) Init() tea.Cmd {
	if m.w != nil {
		return WatchFileCmd(m.w)
	}
	return nil
}

// newDispatcher wires a dispatcher whose hooks write into the bridge.
func (m Model) newDispatcher(confirm func(string) bool) *toolbox.Dispatcher {
	br := m.bridge
	return toolbox.NewDispatcher(m.tb, toolbox.Hooks{
		ApplyHighlights: func() { br.highlightApplies++ },
		ApplyHides:      func() { br.hideApplies++ },
		OpenPanel: func(p toolbox.Panel, focus bool) {
			br.openRequested = true
			br.panel = p
			br.focus = focus
		},
		Confirm: confirm,
	})
}

// drainBridge applies panel-open requests accumulated during a dispatch.
func (m Model) drainBridge() Model {
	if m.bridge.openRequested {
		m.toolboxOpen = true
		m.panel.Focus(m.bridge.panel)
		m.bridge.openRequested = false
	}
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Handle the confirm modal before the type switch: huh.Form needs to
	// receive ALL message types for its internal navigation to work.
	if m.showConfirm && m.confirmForm != nil {
		f, cmd := m.confirmForm.Update(msg)
		if form, ok := f.(*huh.Form); ok {
			m.confirmForm = form
		}
		cmds = append(cmds, cmd)

		switch m.confirmForm.State {
		case huh.StateCompleted:
			m.showConfirm = false
			m = m.finishShowOnly(m.confirmVal != nil && *m.confirmVal)
		case huh.StateAborted:
			m.showConfirm = false
			m.pendingShow = nil
			m.statusMsg = "kept existing hide filters"
		}
		return m, tea.Batch(cmds...)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case FileChangedMsg:
		m = m.handleFileChanged()
		if m.w != nil {
			cmds = append(cmds, WatchFileCmd(m.w))
		}

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleFileChanged() Model {
	if m.reload == nil {
		return m
	}
	report, err := m.reload()
	if err != nil {
		m.statusMsg = fmt.Sprintf("reload failed: %v", err)
		m.statusIsError = true
		return m
	}

	m.report = report
	m.insights = analysis.Analyze(report)
	// The underlying maps changed, so every memoized popover is stale.
	m.popovers.Reset()
	m.pinned = make(map[SegmentKey]bool)
	m.segment = ""
	if m.cursor >= len(report.Modules) {
		m.cursor = len(report.Modules) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.statusMsg = "report reloaded"
	m.statusIsError = false
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()

	if m.showHelp {
		switch key {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	// The pattern input swallows everything while typing.
	if m.toolboxOpen && m.panel.Typing() {
		cmd, _ := m.panel.Update(msg)
		return m, cmd
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		if m.helpText == "" {
			m.helpText = renderHelp(m.width - 4)
		}
		m.showHelp = true
		return m, nil
	case "t":
		m.toolboxOpen = !m.toolboxOpen
		return m, nil
	}

	if m.toolboxOpen {
		if cmd, consumed := m.panel.Update(msg); consumed {
			return m, cmd
		}
	}

	switch key {
	case "j", "down":
		m = m.moveCursor(1)
	case "k", "up":
		m = m.moveCursor(-1)
	case "g", "home":
		m.cursor = 0
		m = m.moveCursor(0)
	case "G", "end":
		m.cursor = len(m.report.Modules) - 1
		m = m.moveCursor(0)

	case "h", "left":
		m = m.focusSegment(model.StatusPass)
	case "l", "right":
		m = m.focusSegment(model.StatusFail)

	case "enter":
		if key, ok := m.focusedSegmentKey(); ok {
			m.pinned[key] = true
			m.statusMsg = "popover pinned"
			m.statusIsError = false
		}

	case "esc":
		// Hides every open popover for this family of bars.
		m.pinned = make(map[SegmentKey]bool)
		m.segment = ""

	case "H":
		m = m.actionHighlight()
	case "O":
		var cmd tea.Cmd
		m, cmd = m.actionShowOnly()
		return m, cmd
	case "y":
		m = m.actionYank()
	}

	return m, nil
}

func (m Model) moveCursor(delta int) Model {
	if len(m.report.Modules) == 0 {
		return m
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.report.Modules) {
		m.cursor = len(m.report.Modules) - 1
	}

	// Hover follows the cursor: keep the popover for the focused segment
	// kind built on the module now under the cursor.
	if m.segment != "" {
		m.popovers.Ensure(&m.report.Modules[m.cursor], m.segment)
	}

	maxVisible := m.maxVisibleModules()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+maxVisible {
		m.scroll = m.cursor - maxVisible + 1
	}
	return m
}

func (m Model) focusSegment(kind model.Status) Model {
	if len(m.report.Modules) == 0 {
		return m
	}
	m.segment = kind
	// First hover builds the popover; repeats are no-ops.
	m.popovers.Ensure(&m.report.Modules[m.cursor], kind)
	return m
}

func (m Model) focusedSegmentKey() (SegmentKey, bool) {
	if m.segment == "" || len(m.report.Modules) == 0 {
		return SegmentKey{}, false
	}
	return SegmentKey{ModuleKey: m.report.Modules[m.cursor].Key, Kind: m.segment}, true
}

// focusedPopover returns the already-built popover under the segment focus.
func (m Model) focusedPopover() (*Popover, bool) {
	key, ok := m.focusedSegmentKey()
	if !ok {
		return nil, false
	}
	return m.popovers.Get(key)
}

func (m Model) actionHighlight() Model {
	p, ok := m.focusedPopover()
	if !ok {
		m.statusMsg = "no popover focused (h/l first)"
		m.statusIsError = true
		return m
	}
	if len(p.Samples) == 0 {
		m.statusMsg = "segment has no samples"
		m.statusIsError = true
		return m
	}

	color := m.tb.CurrentColor()
	d := m.newDispatcher(nil)
	d.Highlight(p.Samples)
	m = m.drainBridge()

	// Close the originating popover.
	if key, ok := m.focusedSegmentKey(); ok {
		delete(m.pinned, key)
	}
	m.segment = ""

	m.statusMsg = fmt.Sprintf("highlighted %d samples in %s", len(p.Samples), color)
	m.statusIsError = false
	return m
}

func (m Model) actionShowOnly() (Model, tea.Cmd) {
	p, ok := m.focusedPopover()
	if !ok {
		m.statusMsg = "no popover focused (h/l first)"
		m.statusIsError = true
		return m, nil
	}
	if len(p.Samples) == 0 {
		m.statusMsg = "segment has no samples"
		m.statusIsError = true
		return m, nil
	}

	m.pendingShow = p.Samples

	// Overwriting a non-empty hide list needs explicit consent.
	if len(m.tb.Hides) > 0 {
		val := false
		m.confirmVal = &val
		m.confirmForm = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Overwrite existing hide filters?").
				Description(fmt.Sprintf("%d existing entries will be discarded.", len(m.tb.Hides))).
				Value(m.confirmVal).
				Affirmative("Overwrite").
				Negative("Keep"),
		)).WithTheme(huh.ThemeDracula())
		m.showConfirm = true
		return m, m.confirmForm.Init()
	}

	m = m.finishShowOnly(true)
	return m, nil
}

// finishShowOnly runs the show-only dispatch with the confirm answer already
// collected (or not needed).
func (m Model) finishShowOnly(confirmed bool) Model {
	samples := m.pendingShow
	m.pendingShow = nil
	if samples == nil {
		return m
	}

	d := m.newDispatcher(func(string) bool { return confirmed })
	if !d.ShowOnly(samples) {
		m.statusMsg = "kept existing hide filters"
		m.statusIsError = false
		return m
	}
	m = m.drainBridge()

	if key, ok := m.focusedSegmentKey(); ok {
		delete(m.pinned, key)
	}
	m.segment = ""

	m.statusMsg = fmt.Sprintf("showing only %d samples", len(samples))
	m.statusIsError = false
	return m
}

func (m Model) actionYank() Model {
	p, ok := m.focusedPopover()
	if !ok {
		m.statusMsg = "no popover focused (h/l first)"
		m.statusIsError = true
		return m
	}
	if err := clipboard.WriteAll(p.Display); err != nil {
		m.statusMsg = fmt.Sprintf("clipboard error: %v", err)
		m.statusIsError = true
		return m
	}
	m.statusMsg = fmt.Sprintf("copied %d samples", len(p.Samples))
	m.statusIsError = false
	return m
}

// --- view ------------------------------------------------------------------

func (m Model) maxVisibleModules() int {
	// Header takes 3 lines, status line 2; each module renders 2 lines.
	rows := (m.height - 5) / 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return m.helpText + "\n" + m.theme.MutedText.Render("? to close")
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	body := m.viewModules()
	if m.toolboxOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.panel.View())
	}
	b.WriteString(body)

	if m.showConfirm && m.confirmForm != nil {
		b.WriteString("\n")
		b.WriteString(m.confirmForm.View())
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatusLine())
	return b.String()
}

func (m Model) viewHeader() string {
	title := m.report.Title
	if title == "" {
		title = "QC Report"
	}

	var info []string
	info = append(info, fmt.Sprintf("%d modules", m.insights.ModuleCount))
	info = append(info, fmt.Sprintf("%d samples", m.insights.SampleCount))
	info = append(info, fmt.Sprintf("mean pass %.0f%%", m.insights.MeanPassRate*100))
	if m.insights.WarningCount > 0 {
		info = append(info, m.theme.WarnBanner.Render(fmt.Sprintf("%d warnings", m.insights.WarningCount)))
	}
	if !m.report.LoadedAt.IsZero() {
		info = append(info, "loaded "+FormatTimeRel(m.report.LoadedAt))
	}
	if m.w != nil {
		mode := "watching"
		if m.w.IsPolling() {
			mode = "polling"
		}
		info = append(info, mode)
	}

	return m.theme.Header.Render(title) + "\n" +
		m.theme.MutedText.Render(strings.Join(info, " · "))
}

func (m Model) viewModules() string {
	if len(m.report.Modules) == 0 {
		return m.theme.MutedText.Render("no modules in report")
	}

	labelWidth := 28
	barWidth := m.width - labelWidth - 8
	if m.toolboxOpen {
		barWidth -= toolboxWidth
	}
	if barWidth < 10 {
		barWidth = 10
	}

	maxVisible := m.maxVisibleModules()
	end := m.scroll + maxVisible
	if end > len(m.report.Modules) {
		end = len(m.report.Modules)
	}

	var b strings.Builder
	for i := m.scroll; i < end; i++ {
		mod := &m.report.Modules[i]

		marker := "  "
		label := truncate(mod.Title(), labelWidth)
		if i == m.cursor {
			marker = m.theme.PrimaryBold.Render("▸ ")
			label = m.theme.PrimaryBold.Render(padRight(label, labelWidth))
		} else {
			label = m.theme.Base.Render(padRight(label, labelWidth))
		}

		b.WriteString(marker)
		b.WriteString(label)
		b.WriteString(" ")
		b.WriteString(RenderBar(m.theme, mod, barWidth))
		b.WriteString("\n")

		if banner := RenderWarningBanner(m.theme, mod); banner != "" {
			b.WriteString("    " + banner + "\n")
		}

		// Popover under the cursor's focused segment, plus any pinned ones
		// belonging to this module.
		if i == m.cursor && m.segment != "" {
			if p, ok := m.popovers.Get(SegmentKey{ModuleKey: mod.Key, Kind: m.segment}); ok {
				b.WriteString(m.viewPopover(p))
			}
		}
		for key := range m.pinned {
			if key.ModuleKey != mod.Key {
				continue
			}
			if i == m.cursor && key.Kind == m.segment {
				continue // already shown above
			}
			if p, ok := m.popovers.Get(key); ok {
				b.WriteString(m.viewPopover(p))
			}
		}
	}

	if end < len(m.report.Modules) || m.scroll > 0 {
		b.WriteString(m.theme.MutedText.Render(
			fmt.Sprintf("  %d-%d of %d", m.scroll+1, end, len(m.report.Modules))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewPopover(p *Popover) string {
	head := m.theme.PassSegment
	if p.Tag == model.StatusFail {
		head = m.theme.FailSegment
	}

	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf(" %s (%d) ", p.Tag, len(p.Samples))))
	b.WriteString("\n")
	for _, name := range p.Samples {
		line := name
		if color, ok := m.tb.HighlightColorFor(name); ok {
			line = m.theme.Renderer.NewStyle().Foreground(lipgloss.Color(color)).Render(name)
		}
		if !m.tb.Visible(name) {
			line = m.theme.MutedText.Strikethrough(true).Render(name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return "    " + strings.ReplaceAll(
		m.theme.PanelBorder.Render(strings.TrimRight(b.String(), "\n")),
		"\n", "\n    ") + "\n"
}

func (m Model) viewStatusLine() string {
	status := m.statusMsg
	if m.statusIsError {
		status = m.theme.Renderer.NewStyle().Foreground(m.theme.Fail).Render(status)
	} else if status != "" {
		status = m.theme.InfoText.Render(status)
	}

	hints := m.theme.MutedText.Render("j/k modules · h/l segments · enter pin · H highlight · O show-only · t toolbox · ? help")
	if status == "" {
		return hints
	}
	return status + "\n" + hints
}
