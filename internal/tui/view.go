package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openletters/carta/internal/browse"
	"github.com/openletters/carta/internal/model"
	"github.com/openletters/carta/internal/query"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeDetail:
		content = m.renderDetail()
	case ModeHelp:
		content = m.renderHelp()
	default:
		content = m.renderList()
	}

	if m.mode == ModeSearch {
		content = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderSearchModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
}

func (m Model) renderList() string {
	var s string

	s += HeaderStyle.Render("Carta — open letters") + "\n"
	s += HelpStyle.Render(m.filterSummary()) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", min(m.width-4, 72))) + "\n"

	switch m.browse.State() {
	case browse.StateIdle, browse.StateLoading:
		s += HelpStyle.Render("Loading letters...") + "\n"

	case browse.StateFailure:
		s += ErrorStyle.Render(m.browse.ErrMsg()) + "\n"
		s += HelpStyle.Render("Press R to retry.") + "\n"

	case browse.StateSuccess:
		if m.browse.Empty() {
			s += HelpStyle.Render("No letters match the current filters.") + "\n"
			break
		}
		for i, l := range m.browse.Letters() {
			s += m.renderLetterRow(i, l) + "\n"
		}
	}

	return ListStyle.Width(m.width).Height(m.height - 2).Render(s)
}

func (m Model) renderLetterRow(i int, l model.Letter) string {
	style := LetterItemStyle
	cursor := "  "
	if i == m.cursor {
		style = LetterItemSelectedStyle
		cursor = "❯ "
	}

	signed := "  "
	if l.IsSigned {
		signed = SignedStyle.Render("✒ ")
	}

	count := CountStyle.Render(fmt.Sprintf("%4d ✍", l.SignatureCount))
	line := fmt.Sprintf("%s%s %-44s %s  %s",
		cursor, signed, truncate(l.Subject, 44), l.FormatDate(), count)
	return style.Render(line)
}

func (m Model) renderDetail() string {
	if m.detail == nil {
		return DetailStyle.Render("No letter selected.")
	}
	l := m.detail

	var s string
	s += HeaderStyle.Render(l.Subject) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", min(m.width-4, 72))) + "\n"
	s += fmt.Sprintf("From:       %s\n", l.SenderEmail)
	s += fmt.Sprintf("To:         %s\n", l.RecipientEmail)
	s += fmt.Sprintf("Date:       %s\n", l.FormatDate())

	sig := fmt.Sprintf("Signatures: %d", l.SignatureCount)
	if l.IsSigned {
		sig += SignedStyle.Render("  ✒ you signed this letter")
	}
	s += sig + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", min(m.width-4, 72))) + "\n\n"
	s += l.Body + "\n"

	return DetailStyle.Width(m.width).Height(m.height - 2).Render(s)
}

func (m Model) renderSearchModal() string {
	var s string
	s += HeaderStyle.Render("Search letters") + "\n\n"
	s += m.input.View() + "\n\n"
	s += HelpStyle.Render(fmt.Sprintf("field: %s (cycle with f before opening search)", fieldLabel(m.searchField))) + "\n"
	s += HelpStyle.Render("enter search · esc cancel")
	return ModalStyle.Render(s)
}

func (m Model) renderHelp() string {
	rows := []string{
		"↑/k ↓/j   move",
		"enter     read letter",
		"x         sign / withdraw signature",
		"/         search",
		"f         cycle search field (subject, from, to)",
		"s         toggle sort by signatures",
		"t w m y a time range: today, week, month, year, all",
		"R         refresh",
		"L         logout",
		"esc       back / clear search",
		"q         quit",
	}
	s := HeaderStyle.Render("Help") + "\n\n" + strings.Join(rows, "\n") + "\n\n"
	s += HelpStyle.Render("press any key to close")
	return DetailStyle.Width(m.width).Height(m.height - 2).Render(s)
}

func (m Model) renderStatusBar() string {
	left := "anonymous · log in to sign letters"
	if current, ok := m.sessions.Current(); ok {
		left = "👤 " + current.Email
	}

	middle := ""
	if m.message != "" {
		middle = "  " + m.message
	}

	return StatusBarStyle.Width(m.width).Render(left + middle + "  ·  ? help")
}

func (m Model) filterSummary() string {
	f := m.browse.Filters()

	parts := []string{"range: " + rangeLabel(f.Range)}
	if f.Text != "" {
		parts = append(parts, fmt.Sprintf("%s: %q", fieldLabel(f.Field), f.Text))
	}
	sortLabel := "most signed"
	if f.Sort == query.SortAsc {
		sortLabel = "least signed"
	}
	parts = append(parts, "sort: "+sortLabel)

	return strings.Join(parts, " · ")
}

func fieldLabel(f query.Field) string {
	switch f {
	case query.FieldSender:
		return "from"
	case query.FieldRecipient:
		return "to"
	default:
		return "subject"
	}
}

func rangeLabel(r query.Range) string {
	switch r {
	case query.RangeToday:
		return "today"
	case query.RangeWeek:
		return "past week"
	case query.RangeMonth:
		return "past month"
	case query.RangeYear:
		return "past year"
	default:
		return "all time"
	}
}

// truncate shortens a string to max runes with ellipsis. Slicing runes, not
// bytes, keeps accented subjects from being cut mid-character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
