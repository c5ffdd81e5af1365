package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatpop/pkg/anim"
	"chatpop/pkg/bubble"
	"chatpop/pkg/bus"
	"chatpop/pkg/grouping"
	"chatpop/pkg/message"
	"chatpop/pkg/preview"
	"chatpop/pkg/respond"
	"chatpop/pkg/store"
)

// tickInterval drives every animation while a conversation is open. The
// sequencer itself owns no timers: when the tick gate closes, everything
// stops with it.
const tickInterval = 33 * time.Millisecond

// slideRows is how far the transcript eases down while a reply lands.
const slideRows = 3.0

// entrySlideCols is the horizontal travel of a bubble sliding in.
const entrySlideCols = 6

type screen int

const (
	screenInbox screen = iota
	screenConversation
)

type tickMsg time.Time

type busEventMsg bus.Event

type previewResolvedMsg struct {
	chatID    string
	messageID string
	resolved  preview.Preview
}

type model struct {
	ctx       context.Context
	store     *store.Store
	events    *bus.Bus
	responder *respond.Orchestrator
	registry  *bubble.Registry
	previews  *preview.Fetcher

	theme  theme
	screen screen

	chats  []store.ChatSummary
	cursor int

	activeChat string
	messages   []message.Message
	seq        *anim.Sequencer
	input      textinput.Model
	viewport   viewport.Model
	ticking    bool
	replying   bool

	eventCh     <-chan bus.Event
	unsubscribe func()
	openChat    string

	width   int
	height  int
	isReady bool
}

func newModel(ctx context.Context, deps Deps) *model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "iMessage"
	in.CharLimit = 0

	vp := viewport.New(80, 20)

	eventCh, unsubscribe := deps.Events.Subscribe(ctx, 64)

	m := &model{
		ctx:         ctx,
		store:       deps.Store,
		events:      deps.Events,
		responder:   deps.Responder,
		registry:    deps.Registry,
		previews:    deps.Previews,
		theme:       defaultTheme(),
		screen:      screenInbox,
		seq:         anim.NewSequencer(),
		input:       in,
		viewport:    vp,
		eventCh:     eventCh,
		unsubscribe: unsubscribe,
		openChat:    deps.OpenChat,
		width:       100,
		height:      30,
	}
	m.chats = m.store.Chats()

	return m
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, waitForEvent(m.eventCh)}

	if m.openChat != "" {
		for i, chat := range m.chats {
			if strings.EqualFold(chat.Name, m.openChat) {
				m.cursor = i
				cmds = append(cmds, m.openConversation(chat.ID))
				break
			}
		}
	}

	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		m.refreshViewport()
		m.isReady = true
		return m, nil

	case tickMsg:
		if !m.ticking {
			return m, nil
		}
		m.seq.Step(tickInterval)
		m.refreshViewport()
		return m, tickCmd()

	case busEventMsg:
		cmd := m.handleBusEvent(bus.Event(typed))
		return m, tea.Batch(cmd, waitForEvent(m.eventCh))

	case previewResolvedMsg:
		m.applyPreview(typed)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(typed)
	}

	if m.screen == screenConversation {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "ctrl+c" {
		m.unsubscribe()
		return m, tea.Quit
	}

	if m.screen == screenInbox {
		switch key.String() {
		case "q", "esc":
			m.unsubscribe()
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.chats)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.chats) == 0 {
				return m, nil
			}
			return m, m.openConversation(m.chats[m.cursor].ID)
		}
		return m, nil
	}

	switch key.String() {
	case "esc":
		m.closeConversation()
		return m, nil
	case "pgup":
		m.viewport.PageUp()
		return m, nil
	case "pgdown":
		m.viewport.PageDown()
		return m, nil
	case "enter":
		return m, m.send()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// openConversation mounts the conversation screen and opens the tick gate.
func (m *model) openConversation(chatID string) tea.Cmd {
	m.screen = screenConversation
	m.activeChat = chatID
	m.seq.Reset()
	m.syncMessages()
	m.resizeComponents()
	m.refreshViewport()
	m.viewport.GotoBottom()
	m.input.Focus()
	m.ticking = true

	return tea.Batch(tickCmd(), textinput.Blink)
}

// closeConversation unmounts the screen. The sequencer reset plus the tick
// gate means nothing keeps animating a view that is gone.
func (m *model) closeConversation() {
	m.ticking = false
	m.seq.Reset()
	m.screen = screenInbox
	m.activeChat = ""
	m.input.Blur()
	m.input.SetValue("")
	m.chats = m.store.Chats()
}

func (m *model) send() tea.Cmd {
	body := strings.TrimSpace(m.input.Value())
	if body == "" {
		return nil
	}

	msg := message.NewText(body, true)
	if err := m.store.Append(m.activeChat, msg); err != nil {
		return nil
	}
	m.input.SetValue("")

	var cmds []tea.Cmd
	if m.responder != nil {
		if err := m.responder.Trigger(m.ctx, m.activeChat); err == nil {
			m.replying = true
		} else if !errors.Is(err, respond.ErrBusy) {
			m.replying = false
		}
	}

	if m.previews != nil {
		if url, ok := preview.DetectURL(body); ok {
			cmds = append(cmds, resolvePreviewCmd(m.ctx, m.previews, m.activeChat, msg.ID, url))
		}
	}

	m.syncMessages()
	m.refreshViewport()
	m.viewport.GotoBottom()

	return tea.Batch(cmds...)
}

func (m *model) handleBusEvent(event bus.Event) tea.Cmd {
	if event.ChatID != "" && event.ChatID != m.activeChat {
		// Background chats still update their inbox rows.
		m.chats = m.store.Chats()
		return nil
	}

	switch event.Type {
	case bus.EventMessageAppended:
		m.syncMessages()
		if msg, ok := m.find(event.MessageID); ok && msg.Sender {
			m.seq.StartEntry(msg.ID)
		}
		m.refreshViewport()
		m.viewport.GotoBottom()
	case bus.EventMessageUpdated:
		m.syncMessages()
		if msg, ok := m.find(event.MessageID); ok && msg.Sender && msg.ShowDelivered {
			m.seq.Receipts.Show(msg.ID)
		}
		m.refreshViewport()
	case bus.EventChatReset:
		m.seq.Reset()
		m.syncMessages()
		m.refreshViewport()
		m.viewport.GotoBottom()
	case bus.EventTypingShown:
		m.seq.Typing.Show()
		m.refreshViewport()
		m.viewport.GotoBottom()
	case bus.EventTypingHidden:
		m.seq.Typing.Hide()
		m.refreshViewport()
	case bus.EventViewportDown:
		m.seq.Slide.SetTarget(slideRows)
	case bus.EventViewportUp:
		m.seq.Slide.SetTarget(0)
	case bus.EventSequenceDone:
		m.replying = false
	case bus.EventSequenceAborted:
		m.replying = false
		m.seq.Typing.Hide()
		m.seq.Slide.SetTarget(0)
		m.refreshViewport()
	}

	return nil
}

// applyPreview folds resolved link metadata into the message body. A
// preview with no title means the fetch degraded; the bare URL stays.
func (m *model) applyPreview(resolved previewResolvedMsg) {
	if resolved.resolved.Title == "" || resolved.chatID != m.activeChat {
		return
	}

	msg, ok := m.find(resolved.messageID)
	if !ok {
		return
	}

	enriched := msg.Text + "\n↳ " + resolved.resolved.Title
	_ = m.store.Update(resolved.chatID, resolved.messageID, message.Patch{Text: &enriched})
}

func (m *model) find(messageID string) (message.Message, bool) {
	for _, msg := range m.messages {
		if msg.ID == messageID {
			return msg, true
		}
	}
	return message.Message{}, false
}

func (m *model) syncMessages() {
	if m.activeChat == "" {
		return
	}
	m.messages = m.store.List(m.activeChat)
}

func (m *model) View() string {
	if !m.isReady {
		m.resizeComponents()
		m.refreshViewport()
	}

	if m.screen == screenInbox {
		return m.inboxView()
	}
	return m.conversationView()
}

func (m *model) inboxView() string {
	header := m.theme.header.Width(m.width - 2).Render("Messages")
	divider := m.theme.divider.Render(strings.Repeat("─", maxInt(8, m.width-2)))

	rows := make([]string, 0, len(m.chats)+3)
	rows = append(rows, header, divider)
	for i, chat := range m.chats {
		name := m.theme.inboxName.Render(chat.Name)
		lastLine := m.theme.inboxPreview.Render(truncate(chat.Preview, maxInt(10, m.width-24)))
		stamp := m.theme.inboxStamp.Render(chat.Stamp)

		line := lipgloss.JoinVertical(lipgloss.Left, name+"  "+stamp, lastLine)
		rowStyle := m.theme.inboxRow
		if i == m.cursor {
			rowStyle = m.theme.inboxActive
		}
		rows = append(rows, rowStyle.Width(m.width-2).Render(line))
	}
	rows = append(rows, m.theme.hint.Render("↑/↓ select · Enter open · q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *model) conversationView() string {
	name := m.store.Name(m.activeChat)
	header := m.theme.header.Width(m.width - 2).Render("‹ " + name)
	divider := m.theme.divider.Render(strings.Repeat("─", maxInt(8, m.width-2)))

	status := m.theme.status.Render("Esc back · Enter send")
	if m.replying {
		status = m.theme.statusBusy.Render(name + " is typing" + typingEllipsis(m.seq.Typing))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		divider,
		m.theme.viewport.Render(m.viewport.View()),
		status,
		m.theme.input.Width(m.width-4).Render(m.input.View()),
	)
}

// refreshViewport rebuilds the transcript. Everything visual about a
// message is decided here from the grouping predicates, the registry and
// the sequencer; the records themselves stay untouched.
func (m *model) refreshViewport() {
	if m.activeChat == "" {
		m.viewport.SetContent("")
		return
	}

	atBottom := m.viewport.AtBottom()
	contentWidth := m.viewport.Width
	bubbleWidth := maxInt(24, contentWidth*3/4)

	lastSentID := ""
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Sender {
			lastSentID = m.messages[i].ID
			break
		}
	}

	var sections []string
	for i, msg := range m.messages {
		decision := grouping.Decide(m.messages, i)

		if decision.GroupSpacing && !decision.ShowTimestamp {
			sections = append(sections, "")
		}
		if decision.ShowTimestamp {
			sections = append(sections, "", m.theme.timestamp.Width(contentWidth).Render(msg.Timestamp))
		}

		props := bubble.CommonProps(msg, decision.LastInGroup, bubbleWidth)
		progress := m.seq.EntryProgress(msg.ID)
		props[bubble.PropEntry] = progress

		rendered := m.registry.Dispatch(msg, props)
		if progress < 1 && msg.Sender {
			// A sent bubble eases in from left of its resting right edge.
			indent := int((1 - progress) * entrySlideCols)
			if indent > 0 {
				rendered = lipgloss.NewStyle().MarginRight(indent).Render(rendered)
			}
		}

		align := lipgloss.Left
		if msg.Sender {
			align = lipgloss.Right
		}
		sections = append(sections, lipgloss.PlaceHorizontal(contentWidth, align, rendered))

		if msg.Sender && msg.ID == lastSentID && msg.ShowDelivered {
			sections = append(sections, m.deliveredRow(msg.ID, contentWidth))
		}
	}

	if m.seq.Typing.Visible() {
		sections = append(sections, "", m.typingRow())
	}

	// The slide offset eases the transcript down while a reply lands.
	for i := 0; i < int(m.seq.Slide.Offset()+0.5); i++ {
		sections = append(sections, "")
	}

	m.viewport.SetContent(strings.Join(sections, "\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *model) deliveredRow(messageID string, width int) string {
	style := m.theme.delivered
	if m.seq.Receipts.ActiveFor(messageID) {
		if receipt, ok := m.seq.Receipts.Current(); ok && receipt.Opacity < 0.5 {
			style = m.theme.deliveredDim
		}
	}
	return style.Width(width).Render("Delivered")
}

func (m *model) typingRow() string {
	opacities := m.seq.Typing.DotOpacities()
	dots := make([]string, 0, len(opacities))
	for _, opacity := range opacities {
		if opacity > 0.75 {
			dots = append(dots, m.theme.typingDotHi.Render("●"))
		} else {
			dots = append(dots, m.theme.typingDotLo.Render("●"))
		}
	}
	return m.theme.typingBubble.Render(strings.Join(dots, " "))
}

func typingEllipsis(typing anim.Typing) string {
	count := 1
	for _, opacity := range typing.DotOpacities() {
		if opacity > 0.75 {
			count++
		}
	}
	return strings.Repeat(".", count)
}

func (m *model) resizeComponents() {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	h := m.height - 8
	if h < 8 {
		h = 8
	}

	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 2
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForEvent(ch <-chan bus.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return busEventMsg(event)
	}
}

func resolvePreviewCmd(ctx context.Context, fetcher *preview.Fetcher, chatID string, messageID string, url string) tea.Cmd {
	return func() tea.Msg {
		return previewResolvedMsg{
			chatID:    chatID,
			messageID: messageID,
			resolved:  fetcher.Resolve(ctx, url),
		}
	}
}

func truncate(text string, limit int) string {
	if limit <= 1 || len(text) <= limit {
		return text
	}
	return fmt.Sprintf("%s…", strings.TrimSpace(text[:limit-1]))
}

func maxInt(a int, b int) int {
	if a > b {
		return a
	}
	return b
}
