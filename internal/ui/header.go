package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: logo, mode badge, link size and the
// current notice.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	mode := m.store.Read().Mode
	parts := []string{
		bg.Render("sharemd", styles.Logo),
		styles.ModeBadge(mode).Render(strings.ToUpper(mode.String())),
	}
	if !m.store.Ready() {
		parts = append(parts, bg.Render("Loading...", styles.WarningText.Bold(true)))
	}
	if size := m.linkSize(); size > 0 {
		style := styles.MutedText
		if m.maxURLLength > 0 && size > m.maxURLLength {
			style = styles.WarningText.Bold(true)
		}
		parts = append(parts, bg.Render(fmt.Sprintf("link %d chars", size), style))
	}
	left := bg.Join(parts, sep)

	right := ""
	if m.notice.text != "" {
		right = bg.Render(m.notice.text, m.noticeStyle(styles))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 2 {
		// Narrow terminals drop the notice before the badge.
		right = ""
		gap = 0
	}

	return styles.Header.Width(m.width).Render(left + bg.Spaces(gap) + right)
}

// renderFooter renders the short help line.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) noticeStyle(styles Styles) lipgloss.Style {
	switch m.notice.kind {
	case noticeSuccess:
		return styles.SuccessText
	case noticeWarning:
		return styles.WarningText
	case noticeError:
		return styles.DangerText
	default:
		return styles.InfoText
	}
}

func (m Model) linkSize() int {
	if m.lastLink.IsZero() {
		return 0
	}
	return len(m.lastLink.String())
}
