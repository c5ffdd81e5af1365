// Package preview detects a link in outgoing text and resolves it to an
// inline link preview before send. Everything degrades: any failure on the
// network or in the markup leaves the bare URL, never an error bubble.
package preview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// Preview is the resolved link card attached to an outgoing message.
type Preview struct {
	URL         string
	Title       string
	Description string
	ImageURL    string
}

// DetectURL returns the first http(s) URL in text, if any.
func DetectURL(text string) (string, bool) {
	match := urlPattern.FindString(text)
	if match == "" {
		return "", false
	}
	// Trailing sentence punctuation is not part of the link.
	match = strings.TrimRight(match, ".,;:!?)")
	return match, match != ""
}

// Fetcher resolves a URL to preview metadata.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher builds a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

// Resolve fetches the page and extracts title/og metadata. On any failure
// it returns a preview holding only the URL, with a nil error; the caller
// never needs to branch.
func (f *Fetcher) Resolve(ctx context.Context, rawURL string) Preview {
	fallback := Preview{URL: rawURL}
	log := slog.Default().With("component", "preview.fetcher")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fallback
	}

	startedAt := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Debug("preview fetch failed", "url", rawURL, "error", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug("preview fetch failed", "url", rawURL, "status", resp.StatusCode)
		return fallback
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return fallback
	}

	parsed, err := parseMetadata(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		log.Debug("preview parse failed", "url", rawURL, "error", err)
		return fallback
	}

	log.Debug("preview fetch completed", "url", rawURL, "duration_ms", time.Since(startedAt).Milliseconds())

	parsed.URL = rawURL
	return parsed
}

// parseMetadata walks the document head collecting og:* tags and the
// <title> element. og:title wins over <title> when both are present.
func parseMetadata(r io.Reader) (Preview, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Preview{}, fmt.Errorf("parse html: %w", err)
	}

	var p Preview
	var pageTitle string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && pageTitle == "" {
					pageTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				property, content := metaAttrs(n)
				if content == "" {
					break
				}
				switch property {
				case "og:title":
					p.Title = content
				case "og:description":
					p.Description = content
				case "og:image":
					p.ImageURL = content
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if p.Title == "" {
		p.Title = pageTitle
	}
	return p, nil
}

func metaAttrs(n *html.Node) (property, content string) {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "property", "name":
			if property == "" {
				property = attr.Val
			}
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}
	return property, content
}
