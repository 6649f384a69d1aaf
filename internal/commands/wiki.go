package commands

import (
	"context"
	"strings"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/wiki"
)

// WikiClient searches the wiki and renders articles. *wiki.Client
// satisfies it.
type WikiClient interface {
	Lookup(ctx context.Context, query string) (wiki.Article, error)
	Complete(ctx context.Context, partial string) []string
}

type wikiCommand struct {
	client WikiClient
}

// NewWikiCommand creates the wiki command.
func NewWikiCommand(client WikiClient) SlashCommand {
	return &wikiCommand{client: client}
}

func (c *wikiCommand) Name() string        { return "wiki" }
func (c *wikiCommand) Description() string { return "Search the Factorio wiki" }
func (c *wikiCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{{Name: "query", Description: "Search term; empty links the main page"}}
}

func (c *wikiCommand) Complete(ctx context.Context, args []string) []Candidate {
	return names(limit(c.client.Complete(ctx, strings.Join(args, " "))))
}

func (c *wikiCommand) Execute(ctx context.Context, args []string) (Result, error) {
	query := apidocs.StripComment(strings.Join(args, " "))
	article, err := c.client.Lookup(ctx, query)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: article.Response()}, nil
}
