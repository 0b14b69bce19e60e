// Package ui renders the agent playback dashboard in the terminal: a
// timeline of investigations on the left, telemetry and the selected case's
// reasoning trail on the right. All state changes run on the Bubble Tea
// update loop; fetches and the approve call are the only off-loop work.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/unneeks/stewardagent/internal/derive"
	"github.com/unneeks/stewardagent/internal/model"
	"github.com/unneeks/stewardagent/internal/playback"
	"github.com/unneeks/stewardagent/internal/poll"
)

// Service is everything the dashboard needs from the remote playback
// service: the four polled reads plus the approve call.
type Service interface {
	poll.Fetcher
	ApprovePR(ctx context.Context, prID string) error
}

// Options configures the dashboard.
type Options struct {
	Service       Service
	Log           *zap.Logger
	PollInterval  time.Duration
	PlaybackSpeed time.Duration
	Theme         string
}

const (
	minSpeed = 250 * time.Millisecond
	maxSpeed = 30 * time.Second
)

type pollTickMsg struct {
	generation int
}

type pollResultMsg struct {
	generation int
	res        poll.Result
}

type playTickMsg struct {
	generation int
}

type approveDoneMsg struct {
	prID string
	err  error
}

// Model is the dashboard's Bubble Tea model.
type Model struct {
	opts Options
	log  *zap.Logger
	th   theme

	rec  *poll.Reconciler
	ctrl *playback.Controller

	// pollGen identifies the live poll chain, mirroring the playback
	// controller's generation: a manual refresh bumps it, orphaning the
	// previous tick→fetch→result chain so exactly one stays armed.
	pollGen int

	filtering   bool
	filterInput textinput.Model

	status string
	width  int
	height int
}

func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func NewModel(opts Options) Model {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	ti := textinput.New()
	ti.Placeholder = "filter investigations"
	ti.CharLimit = 64
	ti.Width = 32
	return Model{
		opts:        opts,
		log:         opts.Log,
		th:          themeByName(opts.Theme),
		rec:         poll.New(opts.Service, opts.Log),
		ctrl:        playback.New(opts.PlaybackSpeed),
		filterInput: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return m.fetchCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case pollTickMsg:
		if m.rec.Closed() || msg.generation != m.pollGen {
			return m, nil
		}
		return m, m.fetchCmd()

	case pollResultMsg:
		if m.rec.Closed() || msg.generation != m.pollGen {
			return m, nil
		}
		m.rec.Apply(msg.res)
		var cmds []tea.Cmd
		if order := m.rec.Order(); orderChanged(m.ctrl, order) {
			m.ctrl.SetOrder(order)
			if m.ctrl.Playing() {
				cmds = append(cmds, m.playTickCmd())
			}
		}
		// The reconciler auto-selects the newest investigation on first
		// data; mirror that into the playback machine.
		if m.ctrl.Selected() == "" && m.rec.SelectedID() != "" {
			m.ctrl.Select(m.rec.SelectedID())
		}
		generation := m.pollGen
		cmds = append(cmds, tea.Tick(m.opts.PollInterval, func(time.Time) tea.Msg {
			return pollTickMsg{generation: generation}
		}))
		return m, tea.Batch(cmds...)

	case playTickMsg:
		if m.ctrl.Advance(msg.generation) {
			m.rec.Select(m.ctrl.Selected())
			return m, m.playTickCmd()
		}
		m.rec.Select(m.ctrl.Selected())
		return m, nil

	case approveDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Approve %s failed: %v", msg.prID, msg.err)
			m.log.Warn("approve failed", zap.String("pr_id", msg.prID), zap.Error(msg.err))
		} else {
			m.status = fmt.Sprintf("Approved %s", msg.prID)
			m.log.Info("approve succeeded", zap.String("pr_id", msg.prID))
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "esc", "enter":
			m.filtering = false
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.rec.Close()
		return m, tea.Quit
	case " ":
		if m.ctrl.Toggle() {
			return m, m.playTickCmd()
		}
		return m, nil
	case "up", "k":
		m.moveSelection(-1)
		return m, nil
	case "down", "j":
		m.moveSelection(1)
		return m, nil
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case "r":
		// Manual refresh replaces the poll chain rather than adding one:
		// the pending tick and any in-flight result of the old chain are
		// orphaned by the bump.
		m.pollGen++
		return m, m.fetchCmd()
	case "a":
		return m.approveSelected()
	case "+", "=":
		if m.setSpeed(m.ctrl.Speed()/2) && m.ctrl.Playing() {
			return m, m.playTickCmd()
		}
		return m, nil
	case "-":
		if m.setSpeed(m.ctrl.Speed()*2) && m.ctrl.Playing() {
			return m, m.playTickCmd()
		}
		return m, nil
	}
	return m, nil
}

// setSpeed clamps and applies a new playback speed. The caller arms a fresh
// timer only when this reports a change; arming on a clamped no-op would put
// a second live tick under the current generation.
func (m *Model) setSpeed(speed time.Duration) bool {
	if speed < minSpeed {
		speed = minSpeed
	}
	if speed > maxSpeed {
		speed = maxSpeed
	}
	return m.ctrl.SetSpeed(speed)
}

func (m *Model) moveSelection(delta int) {
	invs := m.visibleInvestigations()
	if len(invs) == 0 {
		return
	}
	idx := -1
	for i, inv := range invs {
		if inv.ID == m.ctrl.Selected() {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx > len(invs)-1 {
		idx = len(invs) - 1
	}
	m.ctrl.Select(invs[idx].ID)
	m.rec.Select(invs[idx].ID)
	m.status = ""
}

func (m Model) approveSelected() (tea.Model, tea.Cmd) {
	inv, ok := m.rec.Selected()
	if !ok || inv.Recommendation == nil {
		m.status = "No recommendation to approve."
		return m, nil
	}
	prID := inv.Recommendation.ContextString("pr_id")
	if prID == "" {
		m.status = "Recommendation has no PR to approve."
		return m, nil
	}
	svc := m.opts.Service
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return approveDoneMsg{prID: prID, err: svc.ApprovePR(ctx, prID)}
	}
}

func (m Model) fetchCmd() tea.Cmd {
	rec := m.rec
	interval := m.opts.PollInterval
	generation := m.pollGen
	// The lazy-config decision is read here, on the update loop, so the
	// fetch itself never touches reconciler state.
	withConfig := !rec.ConfigLoaded()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), interval*3)
		defer cancel()
		return pollResultMsg{generation: generation, res: rec.Fetch(ctx, withConfig)}
	}
}

func (m Model) playTickCmd() tea.Cmd {
	generation := m.ctrl.Generation()
	return tea.Tick(m.ctrl.Speed(), func(time.Time) tea.Msg {
		return playTickMsg{generation: generation}
	})
}

func orderChanged(c *playback.Controller, order []string) bool {
	current := c.Order()
	if len(current) != len(order) {
		return true
	}
	for i := range order {
		if current[i] != order[i] {
			return true
		}
	}
	return false
}

func (m Model) visibleInvestigations() []model.Investigation {
	invs := m.rec.Investigations()
	needle := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if needle == "" {
		return invs
	}
	out := make([]model.Investigation, 0, len(invs))
	for _, inv := range invs {
		s := derive.Summarize(inv)
		key := strings.ToLower(inv.FocusTerm + " " + s.RuleBreached)
		if strings.Contains(key, needle) {
			out = append(out, inv)
		}
	}
	return out
}
