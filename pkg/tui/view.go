package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/andrew/ragchat/pkg/locale"
	"github.com/andrew/ragchat/pkg/models"
)

type styles struct {
	title   lipgloss.Style
	user    lipgloss.Style
	bot     lipgloss.Style
	body    lipgloss.Style
	pending lipgloss.Style
	status  lipgloss.Style
	help    lipgloss.Style
	dialog  lipgloss.Style
	hint    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1),
		user:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		bot:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		body:    lipgloss.NewStyle().PaddingLeft(2),
		pending: lipgloss.NewStyle().Faint(true).Italic(true).PaddingLeft(2),
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		help:    lipgloss.NewStyle().Faint(true),
		dialog:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214")).Padding(1, 2),
		hint:    lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}

func (m model) View() string {
	if !m.ready {
		return "\n  ..."
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.host.text.Text(locale.Title)))
	b.WriteString("\n")

	if m.dialog != nil {
		b.WriteString(m.renderDialog())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	b.WriteString(m.styles.status.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render(m.host.text.Text(locale.Help)))
	return b.String()
}

func (m model) renderDialog() string {
	hint := locale.NoticeHint
	if m.dialog.confirm != nil {
		hint = locale.ConfirmHint
	}

	width := m.width - 8
	if width > 60 {
		width = 60
	}
	if width < 10 {
		width = 10
	}

	box := m.styles.dialog.Width(width).Render(
		m.dialog.text + "\n" + m.styles.hint.Render(m.host.text.Text(hint)),
	)
	return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

func (m model) renderTranscript() string {
	bodyWidth := m.width - 2
	if bodyWidth < 10 {
		bodyWidth = 10
	}

	var b strings.Builder
	for i, msg := range m.host.tr.Messages() {
		if i > 0 {
			b.WriteString("\n\n")
		}

		switch {
		case msg.Pending:
			b.WriteString(m.styles.pending.Render(m.spinner.View() + " " + msg.Text))
		case msg.IsUser():
			b.WriteString(m.styles.user.Render(m.host.text.Text(locale.You) + ":"))
			b.WriteString("\n")
			b.WriteString(m.styles.body.Width(bodyWidth).Render(msg.Text))
		default:
			b.WriteString(m.styles.bot.Render(m.host.text.Text(locale.Bot) + ":"))
			b.WriteString("\n")
			b.WriteString(m.renderBot(msg, bodyWidth))
		}
	}
	return b.String()
}

// renderBot renders a bot reply as markdown when enabled. Output is cached
// per message since settled messages never change.
func (m model) renderBot(msg models.Message, width int) string {
	if m.renderer == nil {
		return m.styles.body.Width(width).Render(msg.Text)
	}
	if out, ok := m.rendered[msg.ID]; ok {
		return out
	}

	out, err := m.renderer.Render(msg.Text)
	if err != nil {
		out = m.styles.body.Width(width).Render(msg.Text)
	} else {
		out = strings.Trim(out, "\n")
	}
	m.rendered[msg.ID] = out
	return out
}
