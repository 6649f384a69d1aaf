// Package faq answers, edits and archives the per-server FAQ tags.
//
// Lookups try the exact (capitalized) title first and fall back to the
// closest cached title. Entries that link to another entry are followed to
// their target.
package faq

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/corpus"
	"github.com/julianshen/rhobot/internal/fuzzy"
	"github.com/julianshen/rhobot/internal/logging"
	"github.com/julianshen/rhobot/internal/output"
	"github.com/julianshen/rhobot/internal/store"
)

// DefaultRefreshInterval is how often the title cache is rebuilt.
const DefaultRefreshInterval = 5 * time.Minute

// Store is the persistence the service needs.
type Store interface {
	Titles(ctx context.Context) ([]store.TitleRef, error)
	ServerLinks(ctx context.Context, serverID int64) (map[string][]string, error)
	Find(ctx context.Context, serverID int64, title string) (*store.Entry, error)
	Add(ctx context.Context, e store.Entry) error
	Upsert(ctx context.Context, e store.Entry) error
	Delete(ctx context.Context, serverID int64, title string) (int64, error)
	Clear(ctx context.Context, serverID int64) error
	Dump(ctx context.Context, serverID int64) ([]store.Entry, error)
}

// TitleIndex is a snapshot of every title, grouped by server.
type TitleIndex struct {
	servers map[int64][]string
}

// NewTitleIndex groups refs by server, keeping their order.
func NewTitleIndex(refs []store.TitleRef) *TitleIndex {
	ix := &TitleIndex{servers: make(map[int64][]string)}
	for _, r := range refs {
		ix.servers[r.ServerID] = append(ix.servers[r.ServerID], r.Title)
	}
	return ix
}

// Server returns the titles on one server.
func (ix *TitleIndex) Server(id int64) []string { return ix.servers[id] }

// Service implements the FAQ commands on top of a Store.
type Service struct {
	store     Store
	titles    *corpus.Cache[TitleIndex]
	threshold float64
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithThreshold overrides fuzzy.DefaultThreshold for close matches.
func WithThreshold(t float64) Option {
	return func(s *Service) { s.threshold = t }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

// WithClock replaces time.Now for edit times and dump names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service. The title cache starts empty; prime it with
// Refresher before serving lookups.
func NewService(st Store, opts ...Option) *Service {
	s := &Service{
		store:     st,
		titles:    corpus.NewCache[TitleIndex]("faq titles"),
		threshold: fuzzy.DefaultThreshold,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresher rebuilds the title cache from the store every interval.
func (s *Service) Refresher(interval time.Duration) *corpus.Refresher[TitleIndex] {
	return corpus.NewRefresher(s.titles, s.loadTitles, interval, s.logger)
}

func (s *Service) loadTitles(ctx context.Context) (*TitleIndex, error) {
	refs, err := s.store.Titles(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return NewTitleIndex(refs), nil
}

// reindex refreshes the title cache after a write. Failures only log; the
// periodic refresh will catch up.
func (s *Service) reindex(ctx context.Context) {
	ix, err := s.loadTitles(ctx)
	if err != nil {
		s.logger.Warn("faq title reindex failed", zap.Error(err))
		return
	}
	s.titles.Store(ix)
}

// Answer is the result of a lookup.
type Answer struct {
	// Name is the capitalized query.
	Name string
	// Entry is the resolved entry, after following any link.
	Entry store.Entry
	// CloseMatch is set when Name itself was not found.
	CloseMatch bool
}

// Response renders the answer card.
func (a *Answer) Response() *output.Response {
	title := a.Entry.Title
	if a.CloseMatch {
		title = fmt.Sprintf(`Could not find "%s" in FAQ tags. Did you mean "%s"?`,
			output.EscapeFormatting(a.Name), output.EscapeFormatting(a.Entry.Title))
	}
	return &output.Response{
		Title:       title,
		Description: a.Entry.Contents,
		Image:       a.Entry.Image,
		Color:       output.ColorGold,
	}
}

// Get resolves query on a server. Text after "|" is ignored and the rest is
// capitalized before lookup.
func (s *Service) Get(ctx context.Context, serverID int64, query string) (*Answer, error) {
	name := output.Capitalize(apidocs.StripComment(query))

	entry, err := s.store.Find(ctx, serverID, name)
	if err != nil {
		return nil, dbError(err)
	}
	closeMatch := false
	if entry == nil {
		match, err := s.closest(serverID, name)
		if err != nil {
			return nil, err
		}
		if match == "" {
			return nil, &NotFoundError{Name: name}
		}
		if entry, err = s.find(ctx, serverID, match); err != nil {
			return nil, err
		}
		closeMatch = true
	}
	if entry.Link != "" {
		if entry, err = s.find(ctx, serverID, entry.Link); err != nil {
			return nil, err
		}
	}
	return &Answer{Name: name, Entry: *entry, CloseMatch: closeMatch}, nil
}

func (s *Service) find(ctx context.Context, serverID int64, title string) (*store.Entry, error) {
	e, err := s.store.Find(ctx, serverID, title)
	if err != nil {
		return nil, dbError(err)
	}
	if e == nil {
		return nil, &NotInDatabaseError{Name: title}
	}
	return e, nil
}

func (s *Service) closest(serverID int64, name string) (string, error) {
	ix, err := s.titles.Load()
	if err != nil {
		return "", err
	}
	m, ok := fuzzy.ClosestWithThreshold(name, ix.Server(serverID), s.threshold)
	if !ok {
		return "", nil
	}
	return m.Candidate, nil
}

// Complete returns the cached titles on a server containing partial,
// case-insensitively, sorted.
func (s *Service) Complete(serverID int64, partial string) []string {
	ix, err := s.titles.Load()
	if err != nil {
		s.logger.Error("faq autocomplete", zap.Error(err))
		return nil
	}
	needle := strings.ToLower(partial)
	var out []string
	for _, t := range ix.Server(serverID) {
		if strings.Contains(strings.ToLower(t), needle) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// List returns the server's base entries as "Title (link, link)", sorted.
func (s *Service) List(ctx context.Context, serverID int64) ([]string, error) {
	links, err := s.store.ServerLinks(ctx, serverID)
	if err != nil {
		return nil, dbError(err)
	}
	names := make([]string, 0, len(links))
	for title, aliases := range links {
		if len(aliases) == 0 {
			names = append(names, title)
			continue
		}
		names = append(names, fmt.Sprintf("%s (%s)", title, strings.Join(aliases, ", ")))
	}
	sort.Strings(names)
	return names, nil
}

// ListResponse renders the output of List.
func ListResponse(names []string) *output.Response {
	return &output.Response{
		Title:       "List of FAQ tags",
		Description: strings.Join(names, ", "),
		Color:       output.ColorGold,
	}
}

// Draft is a new or replacement entry.
type Draft struct {
	Name     string
	Contents string
	Image    string
	Author   string
}

// Saved reports the outcome of Add.
type Saved struct {
	Title    string
	Edited   bool
	Contents string
	Image    string
}

// Response renders the confirmation card.
func (r *Saved) Response() *output.Response {
	title := fmt.Sprintf(`Successfully added "%s" to database`, r.Title)
	if r.Edited {
		title = fmt.Sprintf(`Successfully edited "%s"`, r.Title)
	}
	return &output.Response{
		Title:       title,
		Description: r.Contents,
		Image:       r.Image,
		Color:       output.ColorDarkGreen,
	}
}

// Add creates an entry, replacing any entry with the same capitalized title.
func (s *Service) Add(ctx context.Context, serverID int64, d Draft) (*Saved, error) {
	if utf8.RuneCountInString(d.Name) > output.TitleLimit {
		return nil, ErrTitleTooLong
	}
	if utf8.RuneCountInString(d.Contents) > output.DescriptionLimit {
		return nil, ErrBodyTooLong
	}
	title := output.Capitalize(d.Name)

	existing, err := s.store.Find(ctx, serverID, title)
	if err != nil {
		return nil, dbError(err)
	}
	err = s.store.Upsert(ctx, store.Entry{
		ServerID: serverID,
		Title:    title,
		Contents: d.Contents,
		Image:    d.Image,
		EditTime: s.now(),
		Author:   d.Author,
	})
	if err != nil {
		return nil, dbError(err)
	}
	s.reindex(ctx)
	s.logger.Info("faq entry saved",
		zap.Int64("server", serverID), zap.String("title", title), zap.Bool("edited", existing != nil))
	return &Saved{Title: title, Edited: existing != nil, Contents: d.Contents, Image: d.Image}, nil
}

// Remove deletes an entry and returns the confirmation message. A missing
// entry is not an error.
func (s *Service) Remove(ctx context.Context, serverID int64, name string) (string, error) {
	title := output.Capitalize(name)
	n, err := s.store.Delete(ctx, serverID, title)
	if err != nil {
		return "", dbError(err)
	}
	if n == 0 {
		return fmt.Sprintf("FAQ entry %s does not exist in database", title), nil
	}
	s.reindex(ctx)
	return fmt.Sprintf("FAQ entry %s removed from database", title), nil
}

// Link adds name as an alias for target and returns the confirmation
// message. When target is itself a link, the alias points at target's
// destination so links never chain.
func (s *Service) Link(ctx context.Context, serverID int64, name, target, author string) (string, error) {
	title := output.Capitalize(name)
	dest := output.Capitalize(target)

	existing, err := s.store.Find(ctx, serverID, title)
	if err != nil {
		return "", dbError(err)
	}
	if existing != nil {
		return "", &AlreadyExistsError{Name: title}
	}
	linked, err := s.find(ctx, serverID, dest)
	if err != nil {
		return "", err
	}
	if linked.Link != "" {
		dest = linked.Link
	}
	err = s.store.Add(ctx, store.Entry{
		ServerID: serverID,
		Title:    title,
		EditTime: s.now(),
		Author:   author,
		Link:     dest,
	})
	if err != nil {
		return "", dbError(err)
	}
	s.reindex(ctx)
	return fmt.Sprintf("FAQ link %s added to database, linking to %s", title, dest), nil
}
