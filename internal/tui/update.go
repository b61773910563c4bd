package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openletters/carta/internal/api"
	"github.com/openletters/carta/internal/browse"
	"github.com/openletters/carta/internal/logger"
	"github.com/openletters/carta/internal/model"
	"github.com/openletters/carta/internal/query"
)

// lettersMsg carries a completed letter fetch back into the update loop. The
// embedded request id lets browse.Apply drop responses that were superseded
// by a newer fetch.
type lettersMsg browse.Result

// detailMsg carries a completed single-letter fetch. req pairs it with the
// detail view that asked for it.
type detailMsg struct {
	req    int
	letter model.Letter
	err    error
}

// toggleMsg carries the result of a signature toggle. letterID pairs it with
// the letter it was issued for, the rest of the letter is the updated copy.
type toggleMsg struct {
	letterID string
	letter   model.Letter
	err      error
}

// Init kicks off the initial letter fetch
func (m Model) Init() tea.Cmd {
	return m.fetchLetters()
}

// fetchLetters snapshots the current filters and fires the request
func (m Model) fetchLetters() tea.Cmd {
	run := m.browse.Fetch(context.Background())
	return func() tea.Msg {
		return lettersMsg(run())
	}
}

func (m Model) fetchDetail(id string, req int) tea.Cmd {
	return func() tea.Msg {
		letter, err := m.client.GetLetter(context.Background(), id)
		return detailMsg{req: req, letter: letter, err: err}
	}
}

func (m Model) toggleSignature(letter model.Letter) tea.Cmd {
	ctrl := m.signCtrl
	return func() tea.Msg {
		err := ctrl.Toggle(context.Background(), &letter)
		return toggleMsg{letterID: letter.ID, letter: letter, err: err}
	}
}

func (m Model) saveToCache(letters []model.Letter) tea.Cmd {
	store := m.store
	if store == nil || len(letters) == 0 {
		return nil
	}
	return func() tea.Msg {
		if err := store.SaveLetters(context.Background(), letters); err != nil {
			logger.Warn("Failed to cache letters", logger.F("error", err))
		}
		return nil
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case lettersMsg:
		if !m.browse.Apply(browse.Result(msg)) {
			// Superseded by a newer fetch, drop it
			return m, nil
		}
		m.clampCursor()
		if m.browse.State() == browse.StateSuccess {
			return m, m.saveToCache(m.browse.Letters())
		}
		return m, nil

	case detailMsg:
		if msg.req != m.detailReq || m.mode != ModeDetail {
			return m, nil
		}
		if msg.err != nil {
			// Keep showing the list copy, just note the failure
			m.message = "Could not refresh letter."
			return m, nil
		}
		letter := msg.letter
		m.detail = &letter
		return m, nil

	case toggleMsg:
		return m.applyToggle(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeDetail:
			return m.handleDetailKeys(msg)
		case ModeHelp:
			m.mode = ModeBrowse
			return m, nil
		}
		return m.handleBrowseKeys(msg)
	}

	return m, nil
}

// applyToggle folds a toggle response into whichever view still shows the
// letter it belongs to. A response for a letter the user has moved away from
// is dropped wholesale.
func (m Model) applyToggle(msg toggleMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeDetail {
		if m.detail == nil || m.detail.ID != msg.letterID {
			return m, nil
		}
	}

	if msg.err != nil {
		var verr *api.ValidationError
		switch {
		case errors.Is(msg.err, api.ErrUnauthenticated):
			m.message = "Log in to sign letters: carta auth login"
		case errors.Is(msg.err, api.ErrSessionExpired):
			m.message = "Session expired. Log in again: carta auth login"
		case errors.As(msg.err, &verr):
			m.message = verr.Message
		default:
			m.message = "Could not update signature. Try again."
		}
		return m, nil
	}

	if m.mode == ModeDetail {
		letter := msg.letter
		m.detail = &letter
	}

	// Patch the list row too so the browse view agrees when the user goes
	// back
	letters := m.browse.Letters()
	for i := range letters {
		if letters[i].ID == msg.letterID {
			letters[i].IsSigned = msg.letter.IsSigned
			letters[i].SignatureCount = msg.letter.SignatureCount
			break
		}
	}

	if msg.letter.IsSigned {
		m.message = "Letter signed."
	} else {
		m.message = "Signature withdrawn."
	}
	return m, nil
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.browse.Letters())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Enter):
		if letter := m.currentLetter(); letter != nil {
			l := *letter
			m.detail = &l
			m.detailReq++
			m.mode = ModeDetail
			m.message = ""
			return m, m.fetchDetail(l.ID, m.detailReq)
		}

	case key.Matches(msg, keys.Search):
		m.mode = ModeSearch
		m.input.SetValue(m.browse.Filters().Text)
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Field):
		m.searchField = nextField(m.searchField)

	case key.Matches(msg, keys.Sign):
		if letter := m.currentLetter(); letter != nil {
			return m, m.toggleSignature(*letter)
		}

	case key.Matches(msg, keys.Sort):
		// Local reorder only, the server is not consulted
		if m.browse.Filters().Sort == query.SortAsc {
			m.browse.SetSort(query.SortDesc)
		} else {
			m.browse.SetSort(query.SortAsc)
		}
		m.clampCursor()

	case key.Matches(msg, keys.Today):
		return m.setRange(query.RangeToday)
	case key.Matches(msg, keys.Week):
		return m.setRange(query.RangeWeek)
	case key.Matches(msg, keys.Month):
		return m.setRange(query.RangeMonth)
	case key.Matches(msg, keys.Year):
		return m.setRange(query.RangeYear)
	case key.Matches(msg, keys.All):
		return m.setRange(query.RangeAll)

	case key.Matches(msg, keys.Refresh):
		m.message = ""
		return m, m.fetchLetters()

	case key.Matches(msg, keys.Logout):
		if m.sessions.IsAuthenticated() {
			_ = m.sessions.Clear()
			m.message = "Logged out."
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Escape):
		// Drop any active search text
		f := m.browse.Filters()
		if f.Text != "" {
			f.Field = ""
			f.Text = ""
			m.browse.SetFilters(f)
			m.cursor = 0
			return m, m.fetchLetters()
		}
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeBrowse
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeBrowse
		m.input.Blur()

		f := m.browse.Filters()
		f.Text = m.input.Value()
		if f.Text == "" {
			f.Field = ""
		} else {
			f.Field = m.searchField
		}
		m.browse.SetFilters(f)
		m.cursor = 0
		m.message = ""
		return m, m.fetchLetters()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Escape):
		m.mode = ModeBrowse
		m.detail = nil
		m.detailReq++ // orphan any in-flight detail fetch
		m.message = ""
		return m, nil

	case key.Matches(msg, keys.Sign), key.Matches(msg, keys.Enter):
		if m.detail != nil {
			return m, m.toggleSignature(*m.detail)
		}
	}

	return m, nil
}

func (m Model) setRange(r query.Range) (tea.Model, tea.Cmd) {
	m.browse.SetRange(r)
	m.cursor = 0
	m.message = ""
	return m, m.fetchLetters()
}

func nextField(f query.Field) query.Field {
	switch f {
	case query.FieldSubject:
		return query.FieldSender
	case query.FieldSender:
		return query.FieldRecipient
	default:
		return query.FieldSubject
	}
}
