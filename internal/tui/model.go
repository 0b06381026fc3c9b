// Package tui walks the wizard pages in a terminal. Every page is read and
// saved through wizard.Pages, so the TUI and the CLI commands share one set
// of rules.
package tui

import (
	"context"
	"errors"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/avwizard/internal/agents"
	"github.com/roach88/avwizard/internal/presets"
	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
	"github.com/roach88/avwizard/internal/wizard"
)

// Model is the bubbletea model for the wizard.
type Model struct {
	ctx    context.Context
	pages  *wizard.Pages
	router *wizard.Router
	nav    *wizard.Navigator

	view   wizard.View
	status string
	err    error
	cursor int

	// Welcome
	mode    record.Mode
	project textinput.Model

	integrations record.IntegrationsConfig

	// Agents
	enabled map[string]bool

	// Optimization
	kpis     map[string]bool
	strategy record.Strategy
	notes    string

	library []record.Recipe
	added   map[string]bool

	// Launch
	launched bool
	workers  []string

	dash *wizard.DashboardData

	quitting bool
}

// NewModel returns a model positioned at fragment start.
func NewModel(ctx context.Context, pages *wizard.Pages, start string) Model {
	project := textinput.New()
	project.Placeholder = record.DefaultProject
	project.CharLimit = 120
	project.Width = 40

	return Model{
		ctx:      ctx,
		pages:    pages,
		router:   pages.Router(),
		nav:      wizard.NewNavigator(start),
		mode:     record.ModeMock,
		project:  project,
		enabled:  map[string]bool{},
		kpis:     map[string]bool{},
		strategy: record.StrategyEpsilonGreedy,
		added:    map[string]bool{},
	}
}

// Run runs the wizard until the user quits or ctx ends. Workers started from
// the Launch page are stopped on exit.
func Run(ctx context.Context, pages *wizard.Pages, start string) error {
	defer pages.StopWorkers()
	_, err := tea.NewProgram(NewModel(ctx, pages, start), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Current is the page being shown.
func (m Model) Current() wizard.Fragment {
	return m.nav.Current()
}

// Message types
type pageMsg struct {
	view wizard.View
	form formState
	dash *wizard.DashboardData
}

type savedMsg wizard.Result

type launchedMsg struct {
	result wizard.Result
	ch     <-chan agents.Message
}

type workerMsg struct {
	msg agents.Message
	ch  <-chan agents.Message
}

type workersDoneMsg struct{}

type errMsg struct{ err error }

// formState is what a page's editable fields start from.
type formState struct {
	global       record.GlobalConfig
	integrations record.IntegrationsConfig
	enabled      []string
	optimization record.OptimizationConfig
	library      []record.Recipe
	added        []string
}

// Init loads the starting page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load(m.nav.Current()))
}

// load renders f and reads the saved values its form starts from.
func (m Model) load(f wizard.Fragment) tea.Cmd {
	ctx, pages, router := m.ctx, m.pages, m.router
	return func() tea.Msg {
		msg := pageMsg{view: router.Render(ctx, f)}
		if f == wizard.Dashboard {
			// The sparklines read the series again; a diagnostic view has none.
			msg.dash = &wizard.DashboardData{}
			if !wizard.IsRenderError(msg.view.Err) {
				*msg.dash, _ = pages.DashboardData(ctx)
			}
			return msg
		}

		review, _ := pages.ReviewData(ctx)
		decode := func(doc store.Document, v any) {
			if len(doc) > 0 {
				_ = doc.Decode(v)
			}
		}
		decode(review.Global, &msg.form.global)
		msg.form.integrations = record.DefaultIntegrations()
		decode(review.Integrations, &msg.form.integrations)
		decode(review.Optimization, &msg.form.optimization)
		for _, doc := range review.Recipes {
			msg.form.added = append(msg.form.added, doc.ID())
		}
		msg.form.enabled, _ = pages.EnabledAgents(ctx)
		msg.form.optimization.KPIs, _ = pages.SelectedKPIs(ctx)
		msg.form.library, _ = presets.Load()
		return msg
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageMsg:
		m.view = msg.view
		m.dash = msg.dash
		if msg.dash == nil {
			m.applyForm(msg.form)
		}
		return m, nil

	case savedMsg:
		m.status = msg.Message
		m.err = nil
		prev := m.nav.Current()
		next := m.nav.Apply(wizard.Result(msg))
		if next != prev {
			m.cursor = 0
			m.focusProject()
		}
		return m, m.load(next)

	case launchedMsg:
		m.status = msg.result.Message
		m.err = nil
		m.launched = true
		m.workers = nil
		return m, waitForWorker(msg.ch)

	case workerMsg:
		m.workers = append(m.workers, msg.msg.String())
		if len(m.workers) > maxWorkerLines {
			m.workers = m.workers[len(m.workers)-maxWorkerLines:]
		}
		return m, waitForWorker(msg.ch)

	case workersDoneMsg:
		m.launched = false
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	if m.editingProject() {
		var cmd tea.Cmd
		m.project, cmd = m.project.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyForm(f formState) {
	if f.global.Mode.Valid() {
		m.mode = f.global.Mode
	}
	if f.global.Project != "" && m.project.Value() == "" {
		m.project.SetValue(f.global.Project)
	}
	m.integrations = f.integrations

	m.enabled = make(map[string]bool, len(f.enabled))
	for _, name := range f.enabled {
		m.enabled[name] = true
	}

	m.kpis = make(map[string]bool, len(f.optimization.KPIs))
	for _, k := range f.optimization.KPIs {
		m.kpis[k] = true
	}
	if f.optimization.Strategy.Valid() {
		m.strategy = f.optimization.Strategy
	}
	m.notes = f.optimization.Notes

	m.library = f.library
	m.added = make(map[string]bool, len(f.added))
	for _, id := range f.added {
		m.added[id] = true
	}
	m.cursor = min(m.cursor, max(m.rows()-1, 0))
	m.focusProject()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.editingProject() {
		switch key {
		case "esc":
			m.cursor = 0
			m.focusProject()
			return m, nil
		case "ctrl+c", "tab", "shift+tab", "up", "down", "enter":
		default:
			var cmd tea.Cmd
			m.project, cmd = m.project.Update(msg)
			return m, cmd
		}
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.pages.StopWorkers()
		return m, tea.Quit
	case "tab", "right", "l":
		return m.goTo(m.nav.Next())
	case "shift+tab", "left", "h":
		return m.goTo(m.nav.Prev())
	case "1", "2", "3", "4", "5", "6", "7", "8":
		return m.goTo(wizard.Fragments()[int(key[0]-'1')])
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.focusProject()
	case "down", "j":
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
		m.focusProject()
	case " ":
		m.toggle()
	case "m":
		if m.nav.Current() == wizard.Welcome {
			m.toggleMode()
		}
	case "r":
		m.err = nil
		return m, m.load(m.nav.Current())
	case "enter":
		return m, m.save()
	}
	return m, nil
}

func (m Model) goTo(f wizard.Fragment) (tea.Model, tea.Cmd) {
	m.nav.GoTo(f)
	m.cursor = 0
	m.status = ""
	m.err = nil
	m.focusProject()
	return m, m.load(m.nav.Current())
}

// rows is how many cursor positions the current page has.
func (m Model) rows() int {
	switch m.nav.Current() {
	case wizard.Welcome:
		return 2
	case wizard.Agents:
		return len(record.Agents())
	case wizard.Optimization:
		return len(record.KPIs()) + 1
	case wizard.Recipes:
		return len(m.library)
	}
	return 0
}

// editingProject reports whether keys go to the project text input.
func (m Model) editingProject() bool {
	return m.nav.Current() == wizard.Welcome && m.cursor == 1
}

func (m *Model) focusProject() {
	if m.editingProject() {
		m.project.Focus()
		return
	}
	m.project.Blur()
}

func (m *Model) toggleMode() {
	if m.mode == record.ModeReal {
		m.mode = record.ModeMock
		return
	}
	m.mode = record.ModeReal
}

func (m *Model) toggle() {
	switch m.nav.Current() {
	case wizard.Welcome:
		if m.cursor == 0 {
			m.toggleMode()
		}
	case wizard.Agents:
		name := record.AgentNames()[m.cursor]
		m.enabled[name] = !m.enabled[name]
	case wizard.Optimization:
		kpis := record.KPIs()
		if m.cursor < len(kpis) {
			m.kpis[kpis[m.cursor]] = !m.kpis[kpis[m.cursor]]
			return
		}
		strategies := record.Strategies()
		i := slices.Index(strategies, m.strategy)
		m.strategy = strategies[(i+1)%len(strategies)]
	}
}

// save submits the current page's form.
func (m Model) save() tea.Cmd {
	ctx, pages := m.ctx, m.pages
	submit := func(fn func() (wizard.Result, error)) tea.Cmd {
		return func() tea.Msg {
			res, err := fn()
			if err != nil {
				return errMsg{err}
			}
			return savedMsg(res)
		}
	}

	switch m.nav.Current() {
	case wizard.Welcome:
		form := wizard.WelcomeForm{Mode: string(m.mode), Project: m.project.Value()}
		return submit(func() (wizard.Result, error) { return pages.SaveWelcome(ctx, form) })

	case wizard.Integrations:
		form := m.integrations
		return submit(func() (wizard.Result, error) { return pages.SaveIntegrations(ctx, form) })

	case wizard.Agents:
		var names []string
		for _, name := range record.AgentNames() {
			if m.enabled[name] {
				names = append(names, name)
			}
		}
		return submit(func() (wizard.Result, error) { return pages.SaveAgents(ctx, names) })

	case wizard.Optimization:
		var kpis []string
		for _, k := range record.KPIs() {
			if m.kpis[k] {
				kpis = append(kpis, k)
			}
		}
		form := wizard.OptimizationForm{KPIs: kpis, Strategy: string(m.strategy), Notes: m.notes}
		return submit(func() (wizard.Result, error) { return pages.SaveOptimization(ctx, form) })

	case wizard.Recipes:
		if m.cursor >= len(m.library) {
			return nil
		}
		id := m.library[m.cursor].ID
		return func() tea.Msg {
			res, err := pages.AddRecipe(ctx, id)
			if err != nil {
				return errMsg{err}
			}
			// Stay on the page so several presets can be added in a row.
			return savedMsg{Message: res.Message, Next: wizard.Recipes}
		}

	case wizard.Launch:
		if m.launched {
			return nil
		}
		return launch(ctx, pages)
	}
	return nil
}

// launch starts the workers and relays what they post. Messages are
// persisted by Drain whether or not the screen keeps up.
func launch(ctx context.Context, pages *wizard.Pages) tea.Cmd {
	return func() tea.Msg {
		res, err := pages.Launch(ctx)
		if err != nil {
			return errMsg{err}
		}
		ch := make(chan agents.Message, 64)
		go func() {
			defer close(ch)
			pages.Drain(context.WithoutCancel(ctx), res.Messages, func(msg agents.Message) {
				select {
				case ch <- msg:
				default:
				}
			})
		}()
		return launchedMsg{result: res.Result, ch: ch}
	}
}

func waitForWorker(ch <-chan agents.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return workersDoneMsg{}
		}
		return workerMsg{msg: msg, ch: ch}
	}
}
