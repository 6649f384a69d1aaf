// Package modportal searches the Factorio mod portal.
package modportal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/julianshen/rhobot/internal/integrations"
	"github.com/julianshen/rhobot/internal/output"
)

const (
	// DefaultSearchURL is the portal's search endpoint.
	DefaultSearchURL = "https://mods.factorio.com/api/search"
	// ModBase prefixes a mod name to form its page URL.
	ModBase = "https://mods.factorio.com/mod/"
	// AssetBase prefixes the thumbnail path returned by the search API.
	AssetBase = "https://assets-mod.factorio.com"
	// QueryLimit bounds the query sent to the portal, in runes.
	QueryLimit = 50
	// GameVersion restricts results to mods for this game version.
	GameVersion = "1.1"
)

// ErrNoCredentials is returned when the portal username or token is
// missing.
var ErrNoCredentials = errors.New("mod portal credentials are not configured")

// ErrRetrieve wraps transport and decoding failures.
var ErrRetrieve = errors.New("retrieving mod search results")

// NoResultsError reports a query the portal found nothing for.
type NoResultsError struct{ Query string }

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("Did not find any mods named %s", e.Query)
}

// BadStatusError reports a non-200 answer from the search API.
type BadStatusError struct{ StatusCode int }

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("Received HTTP status code %d %s while accessing mod search API.",
		e.StatusCode, http.StatusText(e.StatusCode))
}

// Credentials authenticate search requests.
type Credentials struct {
	Username string
	Token    string
}

// Poster sends a JSON request and decodes the JSON answer.
// *integrations.HTTPFetcher satisfies it.
type Poster interface {
	PostJSON(ctx context.Context, url string, payload, v any) error
}

// Mod is the top search result.
type Mod struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Owner     string `json:"owner"`
	Summary   string `json:"summary"`
	Thumbnail string `json:"thumbnail"`
	Downloads int64  `json:"downloads_count"`
}

// URL is the mod's portal page.
func (m *Mod) URL() string {
	return ModBase + strings.ReplaceAll(m.Name, " ", "%20")
}

// Response renders the result card.
func (m *Mod) Response() *output.Response {
	r := &output.Response{
		Title:       output.EscapeFormatting(output.Truncate(m.Title, output.TitleLimit)),
		URL:         m.URL(),
		Description: output.EscapeFormatting(output.Truncate(m.Summary, output.DescriptionLimit)),
		Thumbnail:   m.Thumbnail,
		Color:       output.ColorGreen,
	}
	r.AddField("Author", output.EscapeFormatting(m.Owner), true)
	r.AddField("Downloads", strconv.FormatInt(m.Downloads, 10), true)
	return r
}

type searchRequest struct {
	Username         string `json:"username"`
	Token            string `json:"token"`
	Query            string `json:"query"`
	Version          string `json:"version"`
	SortAttribute    string `json:"sort_attribute"`
	OnlyBookmarks    string `json:"only_bookmarks"`
	ShowDeprecated   string `json:"show_deprecated"`
	Page             string `json:"page"`
	PageSize         string `json:"page_size"`
	HighlightPreTag  string `json:"highlight_pre_tag"`
	HighlightPostTag string `json:"highlight_post_tag"`
}

type searchResponse struct {
	Results []Mod `json:"results"`
}

// Client queries the search API.
type Client struct {
	poster Poster
	url    string
	creds  *Credentials
}

// NewClient creates a client posting to url; empty means DefaultSearchURL.
// A nil creds makes every search fail with ErrNoCredentials.
func NewClient(p Poster, url string, creds *Credentials) *Client {
	if url == "" {
		url = DefaultSearchURL
	}
	return &Client{poster: p, url: url, creds: creds}
}

// Search returns the most relevant mod for query.
func (c *Client) Search(ctx context.Context, query string) (*Mod, error) {
	if c.creds == nil || c.creds.Username == "" || c.creds.Token == "" {
		return nil, ErrNoCredentials
	}
	if r := []rune(query); len(r) > QueryLimit {
		query = string(r[:QueryLimit])
	}

	req := searchRequest{
		Username:       c.creds.Username,
		Token:          c.creds.Token,
		Query:          query,
		Version:        GameVersion,
		SortAttribute:  "relevancy",
		OnlyBookmarks:  "false",
		ShowDeprecated: "false",
		Page:           "1",
		PageSize:       "1",
	}
	var resp searchResponse
	if err := c.poster.PostJSON(ctx, c.url, req, &resp); err != nil {
		var statusErr *integrations.StatusError
		if errors.As(err, &statusErr) {
			return nil, &BadStatusError{StatusCode: statusErr.StatusCode}
		}
		return nil, fmt.Errorf("%w: %w", ErrRetrieve, err)
	}
	if len(resp.Results) == 0 {
		return nil, &NoResultsError{Query: query}
	}
	m := resp.Results[0]
	m.Thumbnail = AssetBase + m.Thumbnail
	return &m, nil
}
