// Package mock is the zero-configuration responder backend. It answers
// from a canned pool so the app is fully usable with no API key.
package mock

import (
	"context"
	"math/rand"
	"strings"
	"time"

	providertypes "chatpop/pkg/provider/types"
)

var textReplies = []string{
	"haha yes",
	"omg wait really?",
	"okay I'm intrigued",
	"same honestly",
	"that's so good",
	"wait I was just thinking about that",
	"no way!! tell me more",
	"lol I can't with you",
	"okay okay I'm listening",
	"you always do this to me",
}

var musicReplies = []providertypes.Reply{
	{Kind: providertypes.ReplyMusic, Body: "this has been on repeat all week", Query: "Dreams Fleetwood Mac"},
	{Kind: providertypes.ReplyMusic, Body: "you HAVE to hear this one", Query: "Tame Impala The Less I Know The Better"},
	{Kind: providertypes.ReplyMusic, Body: "found your new favorite song", Query: "Steely Dan Peg"},
	{Kind: providertypes.ReplyMusic, Body: "trust me on this", Query: "Khruangbin Texas Sun"},
}

// musicTriggers makes the mock feel responsive: mention music and it
// recommends a song instead of rolling the dice.
var musicTriggers = []string{"song", "music", "listen", "playlist", "album", "band"}

const musicChance = 0.2

type Client struct {
	rng *rand.Rand
}

func New() *Client {
	return &Client{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithSeed pins the random stream.
func NewWithSeed(seed int64) *Client {
	return &Client{rng: rand.New(rand.NewSource(seed))}
}

func (c *Client) Health(ctx context.Context) error {
	return ctx.Err()
}

func (c *Client) Generate(ctx context.Context, persona string, history []providertypes.Turn) (providertypes.Reply, error) {
	_ = persona
	if err := ctx.Err(); err != nil {
		return providertypes.Reply{}, err
	}

	if wantsMusic(history) || c.rng.Float64() < musicChance {
		return musicReplies[c.rng.Intn(len(musicReplies))], nil
	}

	return providertypes.Reply{
		Kind: providertypes.ReplyText,
		Body: textReplies[c.rng.Intn(len(textReplies))],
	}, nil
}

func wantsMusic(history []providertypes.Turn) bool {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != providertypes.RoleUser {
			continue
		}
		content := strings.ToLower(history[i].Content)
		for _, trigger := range musicTriggers {
			if strings.Contains(content, trigger) {
				return true
			}
		}
		return false
	}
	return false
}
