package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/julianshen/rhobot/internal/fff"
	"github.com/julianshen/rhobot/internal/output"
)

// FFFClient looks up Friday Facts posts. *fff.Client satisfies it.
type FFFClient interface {
	Post(ctx context.Context, n int) (*fff.Post, error)
	IndexResponse() *output.Response
}

type fffCommand struct {
	client FFFClient
}

// NewFFFCommand creates the fff command.
func NewFFFCommand(client FFFClient) SlashCommand {
	return &fffCommand{client: client}
}

func (c *fffCommand) Name() string        { return "fff" }
func (c *fffCommand) Description() string { return "Link a Friday Facts post" }
func (c *fffCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{{Name: "number", Description: "FFF number; empty links the blog"}}
}

func (c *fffCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *fffCommand) Execute(ctx context.Context, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{Response: c.client.IndexResponse()}, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || n < 0 {
		return Result{}, &UsageError{Command: "fff", Usage: "[number]"}
	}
	post, err := c.client.Post(ctx, n)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: post.Response()}, nil
}
