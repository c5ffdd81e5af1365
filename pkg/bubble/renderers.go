package bubble

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"chatpop/pkg/message"
)

// bubbleStyles groups the lipgloss styles shared by the built-in renderers.
type bubbleStyles struct {
	sent       lipgloss.Style
	received   lipgloss.Style
	songTitle  lipgloss.Style
	songArtist lipgloss.Style
	songMeta   lipgloss.Style
	reaction   lipgloss.Style
}

func defaultBubbleStyles() bubbleStyles {
	return bubbleStyles{
		sent: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Background(lipgloss.Color("27")).
			Foreground(lipgloss.Color("231")).
			Padding(0, 1),
		received: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		songTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")),
		songArtist: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
		songMeta: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		reaction: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")),
	}
}

var styles = defaultBubbleStyles()

func renderText(props Props) string {
	body := propString(props, PropBody)
	if strings.TrimSpace(body) == "" {
		body = " "
	}

	return finishBubble(props, body)
}

func renderAppleMusic(props Props) string {
	title := styles.songTitle.Render("♫ " + propString(props, PropTitle))
	artist := styles.songArtist.Render(propString(props, PropArtist))
	meta := styles.songMeta.Render("Apple Music · " + formatDuration(propDuration(props)))

	return finishBubble(props, lipgloss.JoinVertical(lipgloss.Left, title, artist, meta))
}

func renderVinylRecord(props Props) string {
	label := styles.songTitle.Render("◉ " + propString(props, PropTitle))
	artist := styles.songArtist.Render(propString(props, PropArtist))
	meta := styles.songMeta.Render("Vinyl · " + formatDuration(propDuration(props)))

	return finishBubble(props, lipgloss.JoinVertical(lipgloss.Left, label, artist, meta))
}

// finishBubble applies the sender/received box, the group tail and the
// reaction overlay that every built-in bubble shares.
func finishBubble(props Props, body string) string {
	sender := propBool(props, PropSender)

	box := styles.received
	tail := "◟"
	if sender {
		box = styles.sent
		tail = "◞"
	}

	if width := propInt(props, PropWidth); width > 0 {
		box = box.MaxWidth(width)
	}

	rendered := box.Render(body)

	if propBool(props, PropHasReaction) {
		rendered = lipgloss.JoinVertical(lipgloss.Left,
			styles.reaction.Render(reactionGlyph(props)), rendered)
	}

	if propBool(props, PropLastInGroup) {
		rendered = lipgloss.JoinVertical(alignFor(sender), rendered, tail)
	}

	return rendered
}

func alignFor(sender bool) lipgloss.Position {
	if sender {
		return lipgloss.Right
	}
	return lipgloss.Left
}

func reactionGlyph(props Props) string {
	reaction, _ := props[PropReaction].(message.Reaction)
	switch reaction {
	case message.ReactionHeart:
		return "❤"
	case message.ReactionThumbsUp:
		return "👍"
	case message.ReactionHaha:
		return "HA"
	case message.ReactionDoubleExclamation:
		return "‼"
	default:
		return "❤"
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		d = 30 * time.Second
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func propString(props Props, key string) string {
	value, _ := props[key].(string)
	return value
}

func propBool(props Props, key string) bool {
	value, _ := props[key].(bool)
	return value
}

func propInt(props Props, key string) int {
	value, _ := props[key].(int)
	return value
}

func propDuration(props Props) time.Duration {
	value, _ := props[PropDuration].(time.Duration)
	return value
}
