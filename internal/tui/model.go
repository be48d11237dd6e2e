// ABOUTME: Bubbletea model for the single-screen markdown editor.
// ABOUTME: File list, editor, and live preview wired to the current selection.

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/mdpad/internal/app"
	"github.com/harper/mdpad/internal/editor"
	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/render"
	"github.com/harper/mdpad/internal/selection"
	"github.com/harper/mdpad/internal/store"
)

type focus int

const (
	focusList focus = iota
	focusEditor
	focusPreview
)

type mode int

const (
	modeEdit mode = iota
	modeRename
	modeConfirmDelete
)

// Messages delivered from session timers and the selection publisher.
type (
	currentMsg struct{ file *models.MarkdownFile }
	changeMsg  struct{ content string }
	savedMsg   struct{ file *models.MarkdownFile }
	errMsg     struct{ err error }
	saveErrMsg struct{ err error }
	filesMsg   []*models.MarkdownFile
	previewMsg struct {
		seq     int
		content string
	}
	statusMsg string
)

type fileItem struct {
	file *models.MarkdownFile
}

func (i fileItem) Title() string { return i.file.Name }

func (i fileItem) Description() string {
	return fmt.Sprintf("#%d • %s", i.file.ID, i.file.UpdatedAt.Local().Format("2006-01-02 15:04"))
}

func (i fileItem) FilterValue() string { return i.file.Name }

// Model is the interactive editor. Use New, then run it with tea.NewProgram.
type Model struct {
	app     *app.App
	session *editor.Session
	sub     *selection.Subscription
	events  chan tea.Msg
	keys    keyMap

	list          list.Model
	editor        textarea.Model
	preview       viewport.Model
	prompt        textinput.Model
	help          help.Model
	focus         focus
	mode          mode
	status        string
	isError       bool
	width         int
	height        int
	style         string
	wrap          int
	renderID      int
	pendingDelete int64
}

// New builds the editor on a. Timer and selection callbacks are delivered
// to the bubbletea loop through an internal channel.
func New(a *app.App) *Model {
	m := &Model{
		app:    a,
		events: make(chan tea.Msg, 64),
		keys:   defaultKeys(),
		style:  a.Config.GlamourStyle,
		wrap:   a.Config.WrapWidth,
		help:   help.New(),
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Files"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	m.list = l

	ta := textarea.New()
	ta.Placeholder = "Start writing markdown..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Focus()
	m.editor = ta
	m.focus = focusEditor

	m.preview = viewport.New(0, 0)

	ti := textinput.New()
	ti.Placeholder = "file name"
	ti.CharLimit = 200
	m.prompt = ti

	m.session = editor.NewSession(a.Persist, a.Current.Current(),
		editor.WithDebounce(a.Config.Debounce),
		editor.WithAutosave(a.Config.Autosave),
		editor.OnChange(func(content string) { m.send(changeMsg{content}) }),
		editor.OnSaved(func(f *models.MarkdownFile) {
			a.Current.Set(f)
			m.send(savedMsg{f})
		}),
		editor.OnSaveError(func(err error) { m.send(saveErrMsg{err}) }),
	)
	m.sub = a.Current.Subscribe(func(f *models.MarkdownFile) { m.send(currentMsg{f}) })

	return m
}

func (m *Model) send(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.events),
		m.refreshFiles(),
		textarea.Blink,
	)
}

func (m *Model) refreshFiles() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		list, err := a.List(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return filesMsg(list)
	}
}

func (m *Model) renderPreview(content string) tea.Cmd {
	m.renderID++
	seq, width, style := m.renderID, m.preview.Width, m.style
	if m.wrap > 0 && (width <= 0 || width > m.wrap) {
		width = m.wrap
	}
	return func() tea.Msg {
		return previewMsg{seq: seq, content: render.Terminal(content, width, style)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		cmds = append(cmds, m.renderPreview(m.editor.Value()))

	case currentMsg:
		cmds = append(cmds, waitForEvent(m.events), m.showCurrent(msg.file))

	case changeMsg:
		cmds = append(cmds, waitForEvent(m.events), m.renderPreview(msg.content))

	case savedMsg:
		m.setStatus(fmt.Sprintf("Saved %q", msg.file.Name), false)
		cmds = append(cmds, waitForEvent(m.events), m.refreshFiles())

	case saveErrMsg:
		m.showError(msg.err)
		cmds = append(cmds, waitForEvent(m.events))

	case errMsg:
		m.showError(msg.err)

	case statusMsg:
		m.setStatus(string(msg), false)
		cmds = append(cmds, m.refreshFiles())

	case filesMsg:
		items := make([]list.Item, 0, len(msg))
		for _, f := range msg {
			items = append(items, fileItem{file: f})
		}
		cmds = append(cmds, m.list.SetItems(items))

	case previewMsg:
		if msg.seq == m.renderID {
			m.preview.SetContent(msg.content)
		}

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

// showCurrent reacts to a new current file. The same file coming back from
// a save or rename only refreshes metadata so in-progress typing survives.
func (m *Model) showCurrent(f *models.MarkdownFile) tea.Cmd {
	working := m.session.File()
	if f.HasID() && f.ID == working.ID {
		m.session.Adopt(f)
		return m.refreshFiles()
	}

	m.session.Load(f)
	m.editor.SetValue(f.Content)
	return tea.Batch(m.renderPreview(f.Content), m.refreshFiles())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case modeRename:
		return m.handleRenameKey(msg)
	case modeConfirmDelete:
		return m.handleDeleteKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit()
		return tea.Quit
	case key.Matches(msg, m.keys.New):
		return m.newDraft()
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Delete):
		return m.askDelete()
	case key.Matches(msg, m.keys.Rename):
		m.mode = modeRename
		m.prompt.SetValue(m.session.File().Name)
		m.prompt.CursorEnd()
		return m.prompt.Focus()
	case key.Matches(msg, m.keys.Focus):
		m.cycleFocus()
		return nil
	}

	switch m.focus {
	case focusList:
		if key.Matches(msg, m.keys.Open) {
			if item, ok := m.list.SelectedItem().(fileItem); ok {
				return m.open(item.file.ID)
			}
			return nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return cmd

	case focusPreview:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Bold):
		m.insertFormat(editor.Bold)
		return nil
	case key.Matches(msg, m.keys.Italic):
		m.insertFormat(editor.Italic)
		return nil
	case key.Matches(msg, m.keys.Link):
		m.insertFormat(editor.Link)
		return nil
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.session.Input(after)
	}
	return cmd
}

// insertFormat inserts the format's prefix and suffix at the caret, leaving
// the caret after the suffix.
func (m *Model) insertFormat(f editor.Format) {
	m.editor.InsertString(f.Prefix + f.Suffix)
	m.session.Input(m.editor.Value())
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeEdit
		m.prompt.Blur()
		return nil
	case tea.KeyEnter:
		m.mode = modeEdit
		m.prompt.Blur()
		return m.rename(m.prompt.Value())
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	m.mode = modeEdit
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		return m.delete(m.pendingDelete)
	}
	m.setStatus("Delete cancelled", false)
	return nil
}

// flushBeforeSwitch saves pending edits before leaving the working file. A
// file deleted elsewhere cannot be saved, so its edits are dropped and the
// switch goes ahead; the returned dropped error reports that.
func flushBeforeSwitch(session *editor.Session) (dropped, err error) {
	err = session.Flush(context.Background())
	if errors.Is(err, store.ErrRecordNotFound) {
		return err, nil
	}
	return nil, err
}

func (m *Model) newDraft() tea.Cmd {
	session, a := m.session, m.app
	return func() tea.Msg {
		dropped, err := flushBeforeSwitch(session)
		if err != nil {
			return errMsg{err}
		}
		a.NewDraft()
		if dropped != nil {
			return errMsg{dropped}
		}
		return statusMsg("New file")
	}
}

func (m *Model) save() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if !session.Dirty() {
			return statusMsg("Nothing to save")
		}
		if err := session.Flush(context.Background()); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *Model) open(id int64) tea.Cmd {
	session, a := m.session, m.app
	if session.File().ID == id {
		m.focus = focusEditor
		m.editor.Focus()
		return nil
	}
	return func() tea.Msg {
		dropped, err := flushBeforeSwitch(session)
		if err != nil {
			return errMsg{err}
		}
		if _, err := a.Open(context.Background(), id); err != nil {
			return errMsg{err}
		}
		if dropped != nil {
			return errMsg{dropped}
		}
		return nil
	}
}

func (m *Model) askDelete() tea.Cmd {
	target := m.session.File()
	if m.focus == focusList {
		if item, ok := m.list.SelectedItem().(fileItem); ok {
			target = item.file
		}
	}
	if !target.HasID() {
		m.setStatus("This file has not been saved yet", false)
		return nil
	}
	m.pendingDelete = target.ID
	m.mode = modeConfirmDelete
	m.setStatus(fmt.Sprintf("Delete %q? (y/n)", target.Name), false)
	return nil
}

func (m *Model) delete(id int64) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		if err := a.Delete(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return statusMsg("Deleted")
	}
}

func (m *Model) rename(name string) tea.Cmd {
	working := m.session.File()
	if !working.HasID() {
		m.session.SetName(name)
		m.setStatus(fmt.Sprintf("Renamed to %q", models.NormalizeName(name)), false)
		return nil
	}
	session, a := m.session, m.app
	return func() tea.Msg {
		// Pending edits carry the old name; writing them after the rename
		// would put it back.
		if err := session.Flush(context.Background()); err != nil {
			return errMsg{err}
		}
		ok, err := a.Rename(context.Background(), working.ID, name)
		if err != nil {
			return errMsg{err}
		}
		if !ok {
			return errMsg{fmt.Errorf("file %d: %w", working.ID, store.ErrRecordNotFound)}
		}
		return statusMsg(fmt.Sprintf("Renamed to %q", models.NormalizeName(name)))
	}
}

func (m *Model) quit() {
	if err := m.session.Flush(context.Background()); err != nil {
		m.setStatus(err.Error(), true)
	}
	m.session.Close()
	m.sub.Cancel()
}

func (m *Model) cycleFocus() {
	m.focus = (m.focus + 1) % 3
	if m.focus == focusEditor {
		m.editor.Focus()
	} else {
		m.editor.Blur()
	}
}

func (m *Model) showError(err error) {
	text := err.Error()
	if errors.Is(err, store.ErrRecordNotFound) {
		text = "File was deleted; changes were not saved"
	}
	m.setStatus(text, true)
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.isError = isError
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	frameW, frameH := paneStyle.GetFrameSize()
	bodyHeight := height - frameH - 2 // status and help lines
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	listWidth := width / 4
	rest := width - listWidth
	editorWidth := rest / 2
	previewWidth := rest - editorWidth

	m.list.SetSize(max(listWidth-frameW, 1), bodyHeight)
	m.editor.SetWidth(max(editorWidth-frameW, 1))
	m.editor.SetHeight(max(bodyHeight-1, 1)) // title line
	m.preview.Width = max(previewWidth-frameW, 1)
	m.preview.Height = bodyHeight
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == modeRename {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			promptStyle.Render(fmt.Sprintf("Rename\n\n%s", m.prompt.View())),
		)
	}

	working := m.session.File()
	title := working.Name
	if m.session.Dirty() {
		title += " •"
	}

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		pane(m.focus == focusList).Render(m.list.View()),
		pane(m.focus == focusEditor).Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), m.editor.View())),
		pane(m.focus == focusPreview).Render(m.preview.View()),
	)

	status := statusStyle.Render(m.status)
	if m.isError {
		status = errorStyle.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, status, m.help.View(m.keys))
}

// Run starts the interactive editor on the alternate screen. Pending edits
// are flushed on exit, including when ctx is cancelled.
func Run(ctx context.Context, a *app.App) error {
	m := New(a)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	m.quit()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
