package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sharemd/internal/document"
	"github.com/five82/sharemd/internal/location"
	"github.com/five82/sharemd/internal/prefs"
	"github.com/five82/sharemd/internal/publish"
	"github.com/five82/sharemd/internal/session"
)

const noticeTTL = 4 * time.Second

// Sharer is the part of a session the UI drives.
type Sharer interface {
	Store() *document.Store
	Share() (location.Link, error)
}

// Options configures the UI.
type Options struct {
	Session      Sharer
	Initial      session.Outcome
	ThemeName    string
	LineNumbers  bool
	PrefsPath    string
	GlamourStyle string
	MaxURLLength int
	Logger       *slog.Logger
}

// Messages delivered from outside the program.

// ExternalChangeMsg reports that the share link changed underneath the editor.
type ExternalChangeMsg struct{ Outcome session.Outcome }

// PublishedMsg reports a debounced or explicit link write.
type PublishedMsg struct {
	Link location.Link
	Err  error
}

type sharedMsg struct {
	link location.Link
	err  error
}

type noticeExpiredMsg struct{ id int }

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeWarning
	noticeError
)

type notice struct {
	id   int
	kind noticeKind
	text string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	sess      Sharer
	store     *document.Store
	prefsPath string
	logger    *slog.Logger

	theme        Theme
	keys         keyMap
	help         help.Model
	editor       textarea.Model
	preview      viewport.Model
	renderer     *markdownRenderer
	maxURLLength int

	width    int
	height   int
	ready    bool
	showHelp bool

	lastLink location.Link
	notice   notice
}

// New creates a new Bubble Tea model around the session's store.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(themeName)
	m := Model{
		sess:         opts.Session,
		store:        opts.Session.Store(),
		prefsPath:    prefsPath,
		logger:       logger.With("component", "ui"),
		theme:        theme,
		keys:         DefaultKeyMap(),
		help:         newHelp(theme),
		editor:       newEditor(theme, opts.LineNumbers),
		preview:      viewport.New(0, 0),
		renderer:     newMarkdownRenderer(opts.GlamourStyle),
		maxURLLength: opts.MaxURLLength,
	}
	normalised := m.load(m.store.Read().Content)
	m.editor.Focus()

	switch {
	case opts.Initial.Err != nil:
		m.notice = notice{kind: noticeWarning, text: "Link could not be read, showing defaults"}
	case normalised:
		m.notice = notice{kind: noticeWarning, text: normaliseNotice}
	}
	return m
}

// normaliseNotice warns that the editor cannot hold the document verbatim.
// The store keeps the original until a key changes the text.
const normaliseNotice = "Editing will normalise tabs and line endings"

// load puts content into the editor and reports whether the editor altered it.
func (m *Model) load(content string) bool {
	m.editor.SetValue(content)
	return m.editor.Value() != content
}

func newEditor(t Theme, lineNumbers bool) textarea.Model {
	ed := textarea.New()
	ed.CharLimit = 0
	ed.MaxHeight = 0
	ed.MaxWidth = 0
	ed.ShowLineNumbers = lineNumbers
	ed.Prompt = ""
	ed.Placeholder = "Start typing your markdown here..."
	// ctrl+p belongs to the mode toggle.
	ed.KeyMap.LinePrevious = key.NewBinding(key.WithKeys("up"))
	// ctrl+t belongs to the theme cycle.
	ed.KeyMap.TransposeCharacterBackward = key.NewBinding(key.WithDisabled())
	applyEditorTheme(&ed, t)
	return ed
}

func applyEditorTheme(ed *textarea.Model, t Theme) {
	text := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
	ed.FocusedStyle.Text = text
	ed.FocusedStyle.CursorLine = text.Background(lipgloss.Color(t.SurfaceAlt))
	ed.FocusedStyle.LineNumber = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	ed.FocusedStyle.CursorLineNumber = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	ed.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	ed.BlurredStyle = ed.FocusedStyle
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.notice.text != "" {
		cmds = append(cmds, expireNotice(m.notice.id))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case ExternalChangeMsg:
		return m.handleExternalChange(msg.Outcome)

	case PublishedMsg:
		if msg.Err != nil {
			return m.setNotice(noticeError, "Link not saved: "+msg.Err.Error())
		}
		m.lastLink = msg.Link
		return m, nil

	case sharedMsg:
		return m.handleShared(msg)

	case noticeExpiredMsg:
		if msg.id == m.notice.id {
			m.notice = notice{id: m.notice.id}
		}
		return m, nil
	}

	return m.forward(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	)
}

func (m Model) renderBody() string {
	if m.store.Read().Mode == document.ModePreview {
		return m.preview.View()
	}
	return m.editor.View()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Share):
		return m, shareCmd(m.sess)

	case key.Matches(msg, m.keys.ToggleMode):
		if m.store.ToggleMode() == document.ModePreview {
			m.editor.Blur()
			m.renderPreview()
		} else {
			m.editor.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		applyEditorTheme(&m.editor, m.theme)
		applyHelpTheme(&m.help, m.theme)
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleNumbers):
		m.editor.ShowLineNumbers = !m.editor.ShowLineNumbers
		m.resize()
		m.savePrefs()
		return m, nil
	}

	return m.forward(msg)
}

// forward hands msg to the active pane and records edits in the store.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.store.Read().Mode == document.ModePreview {
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	before := m.editor.Value()
	m.editor, cmd = m.editor.Update(msg)
	// The store may already hold an incoming link the editor has not shown
	// yet, so only a real edit is written back.
	if v := m.editor.Value(); v != before {
		m.store.SetContent(v)
	}
	return m, cmd
}

func (m Model) handleExternalChange(out session.Outcome) (tea.Model, tea.Cmd) {
	if out.Err != nil {
		return m.setNotice(noticeWarning, "Ignored unreadable link")
	}
	if !out.Applied {
		return m, nil
	}
	normalised := m.load(out.State.Content)
	if out.State.Mode == document.ModePreview {
		m.editor.Blur()
		m.renderPreview()
	} else {
		m.editor.Focus()
	}
	if normalised {
		return m.setNotice(noticeWarning, "Link changed. "+normaliseNotice)
	}
	return m.setNotice(noticeInfo, "Link changed, document reloaded")
}

func (m Model) handleShared(msg sharedMsg) (tea.Model, tea.Cmd) {
	if !msg.link.IsZero() {
		m.lastLink = msg.link
	}
	switch {
	case errors.Is(msg.err, publish.ErrNotReady):
		return m.setNotice(noticeWarning, "Still loading, try again")
	case msg.err != nil && !msg.link.IsZero():
		m.logger.Warn("share link", "error", msg.err)
		return m.setNotice(noticeWarning, "Link saved, clipboard unavailable")
	case msg.err != nil:
		m.logger.Error("share link", "error", msg.err)
		return m.setNotice(noticeError, "Share failed: "+msg.err.Error())
	}
	text := fmt.Sprintf("Link copied (%d chars)", len(msg.link.String()))
	if m.maxURLLength > 0 && len(msg.link.String()) > m.maxURLLength {
		return m.setNotice(noticeWarning, text+", may be too long for some browsers")
	}
	return m.setNotice(noticeSuccess, text)
}

func (m Model) setNotice(kind noticeKind, text string) (tea.Model, tea.Cmd) {
	m.notice = notice{id: m.notice.id + 1, kind: kind, text: text}
	return m, expireNotice(m.notice.id)
}

func (m *Model) resize() {
	bodyHeight := m.height - 2 // header + footer
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.editor.SetWidth(m.width)
	m.editor.SetHeight(bodyHeight)
	m.preview.Width = m.width
	m.preview.Height = bodyHeight
	m.help.Width = m.width
	if m.store.Read().Mode == document.ModePreview {
		m.renderPreview()
	}
}

func (m *Model) renderPreview() {
	out, err := m.renderer.Render(m.store.Read().Content, m.width)
	if err != nil {
		m.logger.Warn("render preview", "error", err)
	}
	m.preview.SetContent(out)
	m.preview.GotoTop()
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, LineNumbers: m.editor.ShowLineNumbers}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs", "error", err)
	}
}

// Commands

func shareCmd(s Sharer) tea.Cmd {
	return func() tea.Msg {
		link, err := s.Share()
		return sharedMsg{link: link, err: err}
	}
}

func expireNotice(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// NewProgram builds the full-screen program for m. It stops when ctx is done.
func NewProgram(ctx context.Context, m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
}
