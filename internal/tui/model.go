package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/openletters/carta/internal/api"
	"github.com/openletters/carta/internal/browse"
	"github.com/openletters/carta/internal/cache"
	"github.com/openletters/carta/internal/logger"
	"github.com/openletters/carta/internal/model"
	"github.com/openletters/carta/internal/query"
	"github.com/openletters/carta/internal/session"
	"github.com/openletters/carta/internal/sign"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeDetail
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	client   *api.Client
	sessions *session.Manager
	store    *cache.Cache
	browse   *browse.Controller
	signCtrl *sign.Controller

	// UI state
	width  int
	height int
	mode   Mode
	cursor int

	// Search input
	input       textinput.Model
	searchField query.Field

	// Detail view. detailReq identifies the in-flight detail fetch so a
	// response for a letter the user already left gets dropped.
	detail    *model.Letter
	detailReq int

	message string
}

// NewModel creates a new TUI model
func NewModel(client *api.Client, sessions *session.Manager, store *cache.Cache) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Search letters..."
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		client:      client,
		sessions:    sessions,
		store:       store,
		browse:      browse.New(client, query.Filters{Sort: query.SortDesc, Range: query.RangeAll}),
		signCtrl:    sign.New(client, sessions),
		mode:        ModeBrowse,
		input:       ti,
		searchField: query.FieldSubject,
	}

	logger.Debug("TUI model initialized",
		logger.F("authenticated", sessions.IsAuthenticated()))
	return m
}

func (m *Model) currentLetter() *model.Letter {
	letters := m.browse.Letters()
	if m.cursor < len(letters) {
		return &letters[m.cursor]
	}
	return nil
}

func (m *Model) clampCursor() {
	if n := len(m.browse.Letters()); m.cursor >= n {
		m.cursor = 0
	}
}
