package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/potluck/internal/cache"
	"github.com/five82/potluck/internal/guest"
	"github.com/five82/potluck/internal/logtail"
	"github.com/five82/potluck/internal/prefs"
	"github.com/five82/potluck/internal/reconcile"
	"github.com/five82/potluck/internal/view"
)

// Engine is what the UI needs from a reconcile.Engine.
type Engine interface {
	Snapshot() cache.Snapshot
	Pending() []reconcile.Mutation
	IsPending(id guest.ID) bool
	Refresh(ctx context.Context) error
	CreateRecord(ctx context.Context, draft guest.Draft) (guest.ID, error)
	UpdateRecord(ctx context.Context, id guest.ID, patch guest.Patch) error
	RemoveRecord(ctx context.Context, id guest.ID) error
}

// mode is what the keyboard currently drives.
type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirm
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Engine    Engine
	PollTick  time.Duration // how often the model re-reads the cache
	ThemeName string
	PrefsPath string // empty uses the prefs default location
	Query     string // initial search
	Locale    string // name collation
	LogPath   string // shown by the activity view; empty disables it
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	engine    Engine
	prefsPath string
	pollTick  time.Duration

	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	mode     mode
	showHelp bool
	showLogs bool

	snapshot cache.Snapshot
	pending  int
	memo     *view.Memo

	search   textinput.Model
	query    string
	selected int

	form    guestForm
	confirm guest.Guest

	status      string
	statusIsErr bool

	logPath    string
	logEntries []logtail.Entry
	logErr     error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 500 * time.Millisecond
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "name, dish, category or rsvp"
	search.CharLimit = 64
	search.SetValue(opts.Query)

	return Model{
		ctx:       ctx,
		engine:    opts.Engine,
		prefsPath: opts.PrefsPath,
		pollTick:  pollTick,
		theme:     GetTheme(opts.ThemeName),
		keys:      defaultKeyMap(),
		memo:      view.NewMemo(opts.Locale),
		search:    search,
		query:     opts.Query,
		logPath:   opts.LogPath,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchSnapshotCmd(m.engine), tickCmd(m.pollTick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(10, msg.Width/3)
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{fetchSnapshotCmd(m.engine), tickCmd(m.pollTick)}
		if m.showLogs {
			cmds = append(cmds, logTailCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case logTailMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		return m, nil

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.pending = msg.pending
		m.clampSelection()
		return m, nil

	case mutationDoneMsg:
		m.setStatus(mutationStatus(msg))
		return m, fetchSnapshotCmd(m.engine)

	case refreshDoneMsg:
		if msg.err != nil {
			m.setStatus(describeError(msg.err), true)
		} else {
			m.setStatus("Refreshed", false)
		}
		return m, fetchSnapshotCmd(m.engine)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeForm:
		return m.handleFormKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showLogs {
		switch {
		case key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Clear):
			m.showLogs = false
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Logs):
		if m.logPath == "" {
			return m, nil
		}
		m.showLogs = true
		return m, logTailCmd(m.logPath)

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()

	case key.Matches(msg, m.keys.Refresh):
		m.setStatus("Refreshing...", false)
		return m, refreshCmd(m.ctx, m.engine)

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Clear):
		if m.query != "" {
			m.setQuery("")
			m.savePrefs()
		}

	case key.Matches(msg, m.keys.Add):
		var cmd tea.Cmd
		m.form, cmd = newGuestForm(nil)
		m.mode = modeForm
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		g, ok := m.editableSelection()
		if !ok {
			return m, nil
		}
		var cmd tea.Cmd
		m.form, cmd = newGuestForm(&g)
		m.mode = modeForm
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		g, ok := m.editableSelection()
		if !ok {
			return m, nil
		}
		m.confirm = g
		m.mode = modeConfirm

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.currentView().Filtered)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(0, len(m.currentView().Filtered)-1)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = modeList
		m.savePrefs()
		return m, nil
	case "esc":
		m.search.Blur()
		m.mode = modeList
		m.setQuery("")
		m.savePrefs()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.query {
		m.query = v
		m.selected = 0
	}
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	target := m.confirm
	m.confirm = guest.Guest{}

	switch msg.String() {
	case "y", "Y":
		m.setStatus("Removing "+target.Name+"...", false)
		return m, removeCmd(m.ctx, m.engine, target)
	default:
		m.setStatus("Remove cancelled", false)
		return m, nil
	}
}

// editableSelection returns the selected guest if it may be edited or
// removed. Records still waiting for their insert to land may not.
func (m *Model) editableSelection() (guest.Guest, bool) {
	g, ok := m.selectedGuest()
	if !ok {
		return guest.Guest{}, false
	}
	if g.ID.IsTemporary() {
		m.setStatus(g.Name+" is still being saved", true)
		return guest.Guest{}, false
	}
	return g, true
}

func (m Model) selectedGuest() (guest.Guest, bool) {
	rows := m.currentView().Filtered
	if m.selected < 0 || m.selected >= len(rows) {
		return guest.Guest{}, false
	}
	return rows[m.selected], true
}

func (m Model) currentView() view.View {
	return m.memo.View(m.snapshot, m.query)
}

func (m *Model) clampSelection() {
	n := len(m.currentView().Filtered)
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) setQuery(q string) {
	m.query = q
	m.search.SetValue(q)
	m.selected = 0
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusIsErr = isErr
}

func (m Model) savePrefs() {
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Query: m.query})
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot cache.Snapshot
	pending  int
}

type mutationDoneMsg struct {
	kind reconcile.Kind
	name string
	err  error
}

type refreshDoneMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(e Engine) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg{snapshot: e.Snapshot(), pending: len(e.Pending())}
	}
}

func refreshCmd(ctx context.Context, e Engine) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: e.Refresh(ctx)}
	}
}

func createCmd(ctx context.Context, e Engine, d guest.Draft) tea.Cmd {
	return func() tea.Msg {
		_, err := e.CreateRecord(ctx, d)
		return mutationDoneMsg{kind: reconcile.KindCreate, name: d.Name, err: err}
	}
}

func updateCmd(ctx context.Context, e Engine, g guest.Guest, p guest.Patch) tea.Cmd {
	name := g.Name
	if p.Name != nil {
		name = *p.Name
	}
	return func() tea.Msg {
		err := e.UpdateRecord(ctx, g.ID, p)
		return mutationDoneMsg{kind: reconcile.KindUpdate, name: name, err: err}
	}
}

func removeCmd(ctx context.Context, e Engine, g guest.Guest) tea.Cmd {
	return func() tea.Msg {
		err := e.RemoveRecord(ctx, g.ID)
		return mutationDoneMsg{kind: reconcile.KindRemove, name: g.Name, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil && opts.Context != nil && opts.Context.Err() != nil {
		// Killed by signal: not a failure.
		return nil
	}
	return err
}
