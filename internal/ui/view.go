package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unneeks/stewardagent/internal/derive"
	"github.com/unneeks/stewardagent/internal/model"
)

const (
	emptyTimeline  = "No investigations yet."
	emptyHeatmap   = "Awaiting telemetry..."
	emptyLearning  = "No learning iterations yet."
	emptyLineage   = "No lineage graph available."
	emptyCaseView  = "Select an investigation from the timeline."
	maxLearningBar = 24
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	left := m.timelineView()
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.heatmapView(),
		m.learningView(),
		m.caseView(),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.th.dimStyle().Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) headerView() string {
	mode := "paused"
	if m.ctrl.Playing() {
		mode = "playing"
	}
	header := fmt.Sprintf("stewardagent  •  %s @ %s  •  space play/pause  •  ↑/↓ select  •  / filter  •  a approve  •  +/- speed  •  r refresh  •  q quit",
		mode, m.ctrl.Speed())
	line := m.th.titleStyle().Render(header)
	if m.filtering {
		line += "\n" + "Filter: " + m.filterInput.View()
	}
	return line
}

func (m Model) timelineView() string {
	invs := m.visibleInvestigations()
	title := m.th.titleStyle().Render("Investigation Timeline")
	if len(invs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			m.th.panelStyle().Render(m.th.dimStyle().Render(emptyTimeline)))
	}

	cards := make([]string, 0, len(invs)+1)
	cards = append(cards, title)
	for _, inv := range invs {
		cards = append(cards, m.cardView(inv))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) cardView(inv model.Investigation) string {
	s := derive.Summarize(inv)

	when := inv.StartTime
	if ts, ok := inv.StartedAt(); ok {
		when = ts.Format("Jan 02 15:04:05")
	}
	badge := "Scanning"
	badgeColor := m.th.warn
	if inv.Recommendation != nil {
		badge = "Actioned"
		badgeColor = m.th.good
	}
	lines := []string{
		fmt.Sprintf("%s  %s", when, inv.FocusTerm),
		"Rule: " + s.RuleBreached,
		fmt.Sprintf("Risk: %.2f  %s", s.RiskScore,
			lipgloss.NewStyle().Foreground(badgeColor).Render(badge)),
	}
	body := strings.Join(lines, "\n")
	if inv.ID == m.ctrl.Selected() {
		return m.th.selectedCardStyle().Render(body)
	}
	return m.th.panelStyle().Render(body)
}

func (m Model) heatmapView() string {
	title := m.th.titleStyle().Render("Business Term Health")
	cells := derive.ReduceHeatmap(m.rec.LatestState())
	if cells == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			m.th.panelStyle().Render(m.th.dimStyle().Render(emptyHeatmap)))
	}
	rows := make([]string, 0, len(cells))
	for _, c := range cells {
		swatch := lipgloss.NewStyle().Foreground(m.th.statusColor(c.Status)).Render("■")
		rows = append(rows, fmt.Sprintf("%s %-28s %s", swatch, c.Term, c.Status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title,
		m.th.panelStyle().Render(strings.Join(rows, "\n")))
}

func (m Model) learningView() string {
	title := m.th.titleStyle().Render("Learning Curve")
	points := derive.ReduceLearning(m.rec.Learning().Improvements)
	if len(points) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			m.th.panelStyle().Render(m.th.dimStyle().Render(emptyLearning)))
	}
	rows := make([]string, 0, len(points))
	for _, p := range points {
		width := int(p.Score / 100 * maxLearningBar)
		if width < 1 {
			width = 1
		}
		if width > maxLearningBar {
			width = maxLearningBar
		}
		bar := lipgloss.NewStyle().Foreground(m.th.accent).Render(strings.Repeat("█", width))
		rows = append(rows, fmt.Sprintf("%-24s %s %.1f", p.DisplayName, bar, p.Score))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title,
		m.th.panelStyle().Render(strings.Join(rows, "\n")))
}

func (m Model) caseView() string {
	title := m.th.titleStyle().Render("Case File")
	inv, ok := m.rec.Selected()
	if !ok {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			m.th.panelStyle().Render(m.th.dimStyle().Render(emptyCaseView)))
	}

	view := derive.ProjectCase(inv)
	var lines []string
	appendSlot := func(label string, ev *model.Event) {
		if ev == nil {
			return
		}
		text := ev.Explanation
		if text == "" {
			text = ev.EntityName
		}
		lines = append(lines, m.th.titleStyle().Render(label), "  "+text)
	}
	appendSlot("Problem", view.Problem)
	appendSlot("Analysis", view.Analysis)
	appendSlot("Policy Gaps", view.Gaps)
	appendSlot("Decision", view.Decision)
	if len(lines) == 0 {
		lines = append(lines, m.th.dimStyle().Render("No reasoning events recorded yet."))
	}

	lines = append(lines, "", m.th.titleStyle().Render("Lineage"))
	if chain, ok := derive.LineageChain(view.Lineage, inv.FocusTerm); ok {
		for i, node := range chain.Nodes {
			lines = append(lines, fmt.Sprintf("  [%s] %s", node.ID, node.Label))
			if i < len(chain.Nodes)-1 {
				lines = append(lines, "     │")
			}
		}
	} else {
		lines = append(lines, "  "+m.th.dimStyle().Render(emptyLineage))
	}

	if inv.Recommendation != nil {
		if prID := inv.Recommendation.ContextString("pr_id"); prID != "" {
			lines = append(lines, "",
				m.th.dimStyle().Render(fmt.Sprintf("Fix PR %s at %s (press a to approve)", prID, m.rec.RepoURL())))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title,
		m.th.panelStyle().Render(strings.Join(lines, "\n")))
}
