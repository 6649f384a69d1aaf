// Package fff links Factorio Friday Facts posts by number.
package fff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/julianshen/rhobot/internal/integrations"
	"github.com/julianshen/rhobot/internal/output"
)

const (
	// DefaultBase is the blog root. Posts live at {base}/post/fff-{n}.
	DefaultBase = "https://www.factorio.com/blog"
	// IndexThumbnail decorates the blog index response.
	IndexThumbnail = "https://factorio.com/static/img/factorio-wheel.png"
	// DescriptionLimit bounds the post teaser.
	DescriptionLimit = 1000
)

// PageNotFoundError reports an FFF number the blog does not have.
type PageNotFoundError struct{ Number int }

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("Page for FFF %d not found.", e.Number)
}

// BadStatusError reports any other non-200 answer.
type BadStatusError struct{ StatusCode int }

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("Received HTTP status code %d %s while accessing FFF website.",
		e.StatusCode, http.StatusText(e.StatusCode))
}

// ErrRetrieve wraps transport failures.
var ErrRetrieve = errors.New("retrieving FFF page")

// Scrape errors for pages missing their metadata.
var (
	ErrHeadNotFound  = errors.New("reading FFF page: html `head` not found")
	ErrTitleNotFound = errors.New("reading FFF page: could not find title")
	ErrImageNotFound = errors.New("reading FFF page: could not find thumbnail")
	ErrBodyNotFound  = errors.New("reading FFF page: could not find body text")
)

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Post is the metadata of one FFF.
type Post struct {
	Number      int
	URL         string
	Title       string
	Image       string
	Description string
}

// Response renders the post card.
func (p *Post) Response() *output.Response {
	return &output.Response{
		Title:       p.Title,
		URL:         p.URL,
		Description: p.Description,
		Thumbnail:   p.Image,
		Color:       output.ColorOrange,
	}
}

// Client scrapes FFF posts.
type Client struct {
	fetcher Fetcher
	base    string
}

// NewClient creates a client rooted at base; empty means DefaultBase.
func NewClient(f Fetcher, base string) *Client {
	if base == "" {
		base = DefaultBase
	}
	return &Client{fetcher: f, base: strings.TrimRight(base, "/")}
}

// IndexResponse points at the blog index.
func (c *Client) IndexResponse() *output.Response {
	return &output.Response{
		Title:     "Factorio Friday Facts",
		URL:       c.base,
		Thumbnail: IndexThumbnail,
		Color:     output.ColorOrange,
	}
}

// Post fetches FFF number n and reads its og: metadata.
func (c *Client) Post(ctx context.Context, n int) (*Post, error) {
	url := fmt.Sprintf("%s/post/fff-%d", c.base, n)
	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		var statusErr *integrations.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusNotFound {
				return nil, &PageNotFoundError{Number: n}
			}
			return nil, &BadStatusError{StatusCode: statusErr.StatusCode}
		}
		return nil, fmt.Errorf("%w: %w", ErrRetrieve, err)
	}

	meta, err := headMeta(body)
	if err != nil {
		return nil, err
	}
	post := &Post{Number: n, URL: url}
	var ok bool
	if post.Title, ok = meta["og:title"]; !ok {
		return nil, ErrTitleNotFound
	}
	if post.Image, ok = meta["og:image"]; !ok {
		return nil, ErrImageNotFound
	}
	if post.Description, ok = meta["og:description"]; !ok {
		return nil, ErrBodyNotFound
	}
	post.Title = output.Truncate(strings.TrimSpace(strings.TrimSuffix(post.Title, "| Factorio")), output.TitleLimit)
	post.Description = output.Truncate(post.Description, DescriptionLimit)
	return post, nil
}

// headMeta collects <meta property=... content=...> pairs from <head>. The
// first occurrence of a property wins.
func headMeta(body []byte) (map[string]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse FFF page: %w", err)
	}
	head := findElement(doc, "head")
	if head == nil {
		return nil, ErrHeadNotFound
	}

	meta := make(map[string]string)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			prop := getAttr(n, "property")
			if _, seen := meta[prop]; prop != "" && !seen {
				meta[prop] = getAttr(n, "content")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(head)
	return meta, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
