package ui

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sharemd/internal/clipboard"
	"github.com/five82/sharemd/internal/clock"
	"github.com/five82/sharemd/internal/codec"
	"github.com/five82/sharemd/internal/document"
	"github.com/five82/sharemd/internal/location"
	"github.com/five82/sharemd/internal/prefs"
	"github.com/five82/sharemd/internal/session"
)

const testBase = "https://sharemd.app/"

type fixture struct {
	res       *location.Memory
	clk       *clock.Fake
	sess      *session.Session
	copied    []string
	outcomes  []session.Outcome
	prefsPath string
}

func newFixture(t *testing.T, rawURL string) (*fixture, Model) {
	t.Helper()
	f := &fixture{
		res:       location.NewMemory(rawURL),
		clk:       clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.sess = session.New(f.res, session.Options{
		Base:      testBase,
		Scheduler: f.clk,
		Clipboard: clipboard.Func(func(text string) error {
			f.copied = append(f.copied, text)
			return nil
		}),
		Logger: logger,
	})
	t.Cleanup(f.sess.Close)
	out := f.sess.Start(func(o session.Outcome) { f.outcomes = append(f.outcomes, o) })

	m := New(Options{
		Session:      f.sess,
		Initial:      out,
		PrefsPath:    f.prefsPath,
		GlamourStyle: "notty",
		MaxURLLength: 8000,
		Logger:       logger,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return f, m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want ui.Model", next)
	}
	return got
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestTyping_UpdatesStoreAndPublishesAfterDebounce(t *testing.T) {
	f, m := newFixture(t, testBase)

	m = typeText(t, m, "!!")

	if got := m.store.Read().Content; got != document.DefaultContent+"!!" {
		t.Fatalf("store content = %q, want typed text appended", got)
	}
	if n := len(f.res.Writes()); n != 0 {
		t.Fatalf("writes before debounce = %d, want 0", n)
	}

	f.clk.Advance(500 * time.Millisecond)
	writes := f.res.Writes()
	if len(writes) != 1 {
		t.Fatalf("writes after debounce = %d, want 1", len(writes))
	}
	content, err := codec.Decode(writes[0].Content)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if content != document.DefaultContent+"!!" {
		t.Fatalf("published content = %q", content)
	}
}

func TestToggleMode_RendersPreview(t *testing.T) {
	_, m := newFixture(t, testBase)

	m, _ = press(t, m, tea.KeyCtrlP)

	if mode := m.store.Read().Mode; mode != document.ModePreview {
		t.Fatalf("mode = %v, want preview", mode)
	}
	if view := m.View(); !strings.Contains(view, "Hello, world!") {
		t.Fatalf("preview view missing rendered heading:\n%s", view)
	}

	m, _ = press(t, m, tea.KeyCtrlP)
	if mode := m.store.Read().Mode; mode != document.ModeEdit {
		t.Fatalf("mode = %v, want edit", mode)
	}
}

func TestPreview_IgnoresTyping(t *testing.T) {
	_, m := newFixture(t, testBase)
	m, _ = press(t, m, tea.KeyCtrlP)

	m = typeText(t, m, "xyz")

	if got := m.store.Read().Content; got != document.DefaultContent {
		t.Fatalf("store content = %q, want unchanged in preview", got)
	}
}

func TestShare_CopiesLinkAndShowsNotice(t *testing.T) {
	f, m := newFixture(t, testBase)
	m = typeText(t, m, "?")

	m, cmd := press(t, m, tea.KeyCtrlS)
	if cmd == nil {
		t.Fatalf("share returned nil command")
	}
	m = update(t, m, cmd())

	if len(f.copied) != 1 {
		t.Fatalf("copied %d links, want 1", len(f.copied))
	}
	if f.copied[0] != f.res.URL() {
		t.Fatalf("copied %q, want written URL %q", f.copied[0], f.res.URL())
	}
	if !strings.HasPrefix(m.notice.text, "Link copied") {
		t.Fatalf("notice = %q, want copy confirmation", m.notice.text)
	}
	if m.linkSize() != len(f.copied[0]) {
		t.Fatalf("linkSize = %d, want %d", m.linkSize(), len(f.copied[0]))
	}
}

func TestShare_ClipboardFailureStillReportsLink(t *testing.T) {
	_, m := newFixture(t, testBase)

	m = update(t, m, sharedMsg{
		link: location.Link{Base: testBase, Mode: "edit", Content: codec.Encode("x")},
		err:  errors.New("no clipboard"),
	})

	if m.notice.kind != noticeWarning || !strings.Contains(m.notice.text, "clipboard") {
		t.Fatalf("notice = %+v, want clipboard warning", m.notice)
	}
	if m.linkSize() == 0 {
		t.Fatalf("linkSize = 0, want the saved link to be recorded")
	}
}

func TestExternalChange_ReloadsEditor(t *testing.T) {
	f, m := newFixture(t, testBase)

	f.res.Navigate(location.Link{Base: testBase, Mode: "preview", Content: codec.Encode("from another tab")}.String())
	if len(f.outcomes) != 1 || !f.outcomes[0].Applied {
		t.Fatalf("outcomes = %+v, want one applied change", f.outcomes)
	}

	m = update(t, m, ExternalChangeMsg{Outcome: f.outcomes[0]})

	if v := m.editor.Value(); v != "from another tab" {
		t.Fatalf("editor value = %q, want reloaded content", v)
	}
	if !strings.Contains(m.View(), "from another tab") {
		t.Fatalf("preview does not show reloaded content")
	}
	if m.notice.kind != noticeInfo {
		t.Fatalf("notice kind = %v, want info", m.notice.kind)
	}
	f.clk.Advance(time.Second)
	if n := len(f.res.Writes()); n != 0 {
		t.Fatalf("writes = %d, want reload not to publish", n)
	}
}

func TestNonEditingKeys_KeepLoadedDocumentVerbatim(t *testing.T) {
	doc := "```go\nfunc main() {\n\tfmt.Println(\"hi\")\r\n}\n```\r\nline\r\n"
	f, m := newFixture(t, location.Link{Base: testBase, Mode: "edit", Content: codec.Encode(doc)}.String())

	if m.notice.text != normaliseNotice {
		t.Fatalf("notice = %q, want normalisation warning", m.notice.text)
	}

	for _, k := range []tea.KeyType{tea.KeyDown, tea.KeyRight, tea.KeyUp, tea.KeyCtrlP, tea.KeyCtrlP, tea.KeyLeft} {
		m, _ = press(t, m, k)
	}
	f.clk.Advance(time.Second)

	if got := m.store.Read().Content; got != doc {
		t.Fatalf("store content = %q, want %q", got, doc)
	}
	if n := len(f.res.Writes()); n != 0 {
		t.Fatalf("writes = %d, want none without an edit", n)
	}

	m = typeText(t, m, "x")
	f.clk.Advance(time.Second)
	if got := m.store.Read().Content; got != m.editor.Value() {
		t.Fatalf("store content = %q, want editor value after a real edit", got)
	}
	if n := len(f.res.Writes()); n != 1 {
		t.Fatalf("writes = %d, want 1 after a real edit", n)
	}
}

func TestCursorKeyBeforeExternalChangeMsg_KeepsIncomingLink(t *testing.T) {
	f, m := newFixture(t, testBase)

	f.res.Navigate(location.Link{Base: testBase, Mode: "edit", Content: codec.Encode("incoming")}.String())
	m, _ = press(t, m, tea.KeyRight)
	f.clk.Advance(time.Second)

	if got := m.store.Read().Content; got != "incoming" {
		t.Fatalf("store content = %q, want incoming link kept", got)
	}
	if n := len(f.res.Writes()); n != 0 {
		t.Fatalf("writes = %d, want none", n)
	}

	m = update(t, m, ExternalChangeMsg{Outcome: f.outcomes[0]})
	if v := m.editor.Value(); v != "incoming" {
		t.Fatalf("editor value = %q, want incoming", v)
	}
}

func TestExternalChange_WarnsWhenEditorNormalises(t *testing.T) {
	f, m := newFixture(t, testBase)

	f.res.Navigate(location.Link{Base: testBase, Mode: "edit", Content: codec.Encode("a\tb")}.String())
	m = update(t, m, ExternalChangeMsg{Outcome: f.outcomes[0]})

	if m.notice.kind != noticeWarning || !strings.Contains(m.notice.text, normaliseNotice) {
		t.Fatalf("notice = %+v, want normalisation warning", m.notice)
	}
	if got := m.store.Read().Content; got != "a\tb" {
		t.Fatalf("store content = %q, want tab kept", got)
	}
}

func TestExternalChange_ErrorKeepsEditor(t *testing.T) {
	_, m := newFixture(t, testBase)
	m = typeText(t, m, "#")
	before := m.editor.Value()

	m = update(t, m, ExternalChangeMsg{Outcome: session.Outcome{Err: codec.ErrMalformed}})

	if m.editor.Value() != before {
		t.Fatalf("editor value changed on malformed link")
	}
	if m.notice.kind != noticeWarning {
		t.Fatalf("notice kind = %v, want warning", m.notice.kind)
	}
}

func TestInitialMalformedLinkShowsNotice(t *testing.T) {
	_, m := newFixture(t, testBase+"?mode=edit&content=%%%invalid%%%")

	if m.notice.kind != noticeWarning || m.notice.text == "" {
		t.Fatalf("notice = %+v, want warning about the link", m.notice)
	}
	if v := m.editor.Value(); v != document.DefaultContent {
		t.Fatalf("editor value = %q, want default content", v)
	}
}

func TestNoticeExpires(t *testing.T) {
	_, m := newFixture(t, testBase)
	m = update(t, m, PublishedMsg{Err: errors.New("disk full")})
	if m.notice.kind != noticeError {
		t.Fatalf("notice kind = %v, want error", m.notice.kind)
	}

	stale := noticeExpiredMsg{id: m.notice.id - 1}
	m = update(t, m, stale)
	if m.notice.text == "" {
		t.Fatalf("stale expiry cleared the current notice")
	}

	m = update(t, m, noticeExpiredMsg{id: m.notice.id})
	if m.notice.text != "" {
		t.Fatalf("notice = %q, want cleared", m.notice.text)
	}
}

func TestCycleTheme_SavesPrefs(t *testing.T) {
	f, m := newFixture(t, testBase)

	m, _ = press(t, m, tea.KeyCtrlT)
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
	p, err := prefs.Load(f.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("saved theme = %q, want Slate", p.Theme)
	}
	if got := m.store.Read().Content; got != document.DefaultContent {
		t.Fatalf("theme key edited the document: %q", got)
	}
}

func TestToggleLineNumbers_SavesPrefs(t *testing.T) {
	f, m := newFixture(t, testBase)

	m, _ = press(t, m, tea.KeyCtrlL)
	if !m.editor.ShowLineNumbers {
		t.Fatalf("line numbers not enabled")
	}
	p, err := prefs.Load(f.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if !p.LineNumbers {
		t.Fatalf("saved prefs = %+v, want line numbers on", p)
	}
}

func TestHelp_AnyKeyCloses(t *testing.T) {
	_, m := newFixture(t, testBase)

	m, _ = press(t, m, tea.KeyCtrlG)
	if !m.showHelp {
		t.Fatalf("help not shown")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help view missing title")
	}

	m = typeText(t, m, "x")
	if m.showHelp {
		t.Fatalf("help still shown after key press")
	}
	if got := m.store.Read().Content; got != document.DefaultContent {
		t.Fatalf("closing key reached the editor: %q", got)
	}
}

func TestQuit(t *testing.T) {
	_, m := newFixture(t, testBase)

	_, cmd := press(t, m, tea.KeyCtrlC)
	if cmd == nil {
		t.Fatalf("quit returned nil command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("quit command did not produce tea.QuitMsg")
	}
}

func TestView_BeforeWindowSize(t *testing.T) {
	f := &fixture{res: location.NewMemory(testBase), clk: clock.NewFake(time.Time{})}
	f.sess = session.New(f.res, session.Options{Scheduler: f.clk})
	t.Cleanup(f.sess.Close)

	m := New(Options{Session: f.sess})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View = %q, want Loading...", got)
	}
	if !strings.Contains(update(t, m, tea.WindowSizeMsg{Width: 60, Height: 10}).View(), "Loading...") {
		t.Fatalf("header should show loading before hydration")
	}
}
