package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/julianshen/rhobot/internal/logging"
	"github.com/julianshen/rhobot/internal/output"
	"github.com/julianshen/rhobot/internal/wikitext"
)

// DefaultAPIURL is the MediaWiki API endpoint of wiki.factorio.com.
const DefaultAPIURL = "https://wiki.factorio.com/api.php"

// MainPage is looked up when no page name is given.
const MainPage = "Main Page"

// SummaryLimit bounds the article summary, in runes.
const SummaryLimit = 2048

// Article is a wiki page reduced to its lead section.
type Article struct {
	Title   string
	URL     string
	Summary string
}

// Response renders a as an orange card.
func (a Article) Response() *output.Response {
	return &output.Response{
		Title:       output.Truncate(a.Title, output.TitleLimit),
		URL:         a.URL,
		Description: a.Summary,
		Color:       output.ColorOrange,
	}
}

// NoSearchResultsError reports a search that matched no page.
type NoSearchResultsError struct{ Query string }

func (e *NoSearchResultsError) Error() string {
	return fmt.Sprintf("No search results found for `%s`", e.Query)
}

// PageNotFoundError reports a page name the wiki does not know.
type PageNotFoundError struct{ Name string }

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("Could not find wiki page `%s`", e.Name)
}

// ErrRetrieve wraps every transport or decoding failure.
var ErrRetrieve = errors.New("retrieving wiki page")

// Fetcher is the subset of integrations.HTTPFetcher the client needs.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
}

// Client queries the MediaWiki API.
type Client struct {
	fetcher     Fetcher
	apiURL      string
	transformer Transformer
	parser      *wikitext.Parser
	pages       *expirable.LRU[string, Article]
	minLead     int
	logger      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides DefaultAPIURL.
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = u }
}

// WithPageBase sets the root of article and link URLs.
func WithPageBase(base string) Option {
	return func(c *Client) { c.transformer.Base = base }
}

// WithPageCache caches up to size rendered articles for ttl. size <= 0
// disables caching.
func WithPageCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		if size <= 0 {
			c.pages = nil
			return
		}
		c.pages = expirable.NewLRU[string, Article](size, nil, ttl)
	}
}

// WithMinLeadLength overrides DefaultMinLeadLength.
func WithMinLeadLength(n int) Option {
	return func(c *Client) { c.minLead = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(l) }
}

// NewClient creates a Client. Pages are cached for ten minutes by default.
func NewClient(f Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:     f,
		apiURL:      DefaultAPIURL,
		transformer: Transformer{Base: DefaultBase},
		parser:      wikitext.NewParser(wikitext.FactorioWiki()),
		pages:       expirable.NewLRU[string, Article](128, nil, 10*time.Minute),
		minLead:     DefaultMinLeadLength,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type parseResponse struct {
	Parse *struct {
		Title    string `json:"title"`
		Wikitext string `json:"wikitext"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Page fetches and renders the page called name, following redirects.
func (c *Client) Page(ctx context.Context, name string) (Article, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = MainPage
	}
	if c.pages != nil {
		if a, ok := c.pages.Get(name); ok {
			return a, nil
		}
	}

	q := url.Values{}
	q.Set("action", "parse")
	q.Set("format", "json")
	q.Set("page", name)
	q.Set("redirects", "1")
	q.Set("prop", "wikitext")
	q.Set("formatversion", "2")

	var resp parseResponse
	if err := c.fetcher.FetchJSON(ctx, c.apiURL+"?"+q.Encode(), &resp); err != nil {
		return Article{}, fmt.Errorf("%w: %w", ErrRetrieve, err)
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" {
			return Article{}, &PageNotFoundError{Name: name}
		}
		return Article{}, fmt.Errorf("%w: %s", ErrRetrieve, resp.Error.Info)
	}
	if resp.Parse == nil {
		return Article{}, fmt.Errorf("%w: response has no parse result", ErrRetrieve)
	}

	a := c.Render(resp.Parse.Title, resp.Parse.Wikitext)
	if c.pages != nil {
		c.pages.Add(name, a)
	}
	return a, nil
}

// Render converts raw page markup into an Article.
func (c *Client) Render(title, markup string) Article {
	text := c.transformer.Transform(c.parser.Parse(markup))
	return Article{
		Title:   title,
		URL:     PageURL(c.transformer.Base, title),
		Summary: output.Truncate(SummarizeWithMin(text, c.minLead), SummaryLimit),
	}
}

// Search returns page titles matching query, without translated pages.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("action", "opensearch")
	q.Set("format", "json")
	q.Set("search", query)
	q.Set("namespace", "0|3000")
	q.Set("limit", "100")
	q.Set("formatversion", "2")

	var raw []json.RawMessage
	if err := c.fetcher.FetchJSON(ctx, c.apiURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieve, err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: malformed search response", ErrRetrieve)
	}
	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("%w: decode search titles: %w", ErrRetrieve, err)
	}

	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if !IsTranslation(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Lookup searches for query and renders the best hit.
func (c *Client) Lookup(ctx context.Context, query string) (Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = MainPage
	}
	titles, err := c.Search(ctx, query)
	if err != nil {
		return Article{}, err
	}
	if len(titles) == 0 {
		return Article{}, &NoSearchResultsError{Query: query}
	}
	return c.Page(ctx, titles[0])
}

// Complete suggests page titles for partial input. Search failures are
// logged and produce no suggestions.
func (c *Client) Complete(ctx context.Context, partial string) []string {
	if strings.TrimSpace(partial) == "" {
		return []string{MainPage}
	}
	titles, err := c.Search(ctx, partial)
	if err != nil {
		c.logger.Error("searching wiki", zap.String("query", partial), zap.Error(err))
		return nil
	}
	return titles
}
