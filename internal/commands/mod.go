package commands

import (
	"context"
	"strings"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/modportal"
)

// ModSearcher finds a mod on the portal. *modportal.Client satisfies it.
type ModSearcher interface {
	Search(ctx context.Context, query string) (*modportal.Mod, error)
}

type modCommand struct {
	client ModSearcher
}

// NewModCommand creates the mod command.
func NewModCommand(client ModSearcher) SlashCommand {
	return &modCommand{client: client}
}

func (c *modCommand) Name() string        { return "mod" }
func (c *modCommand) Description() string { return "Find a mod on the mod portal" }
func (c *modCommand) Aliases() []string   { return []string{"find-mod", "find_mod"} }
func (c *modCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{{Name: "name", Description: "Mod to search for", Required: true}}
}

func (c *modCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *modCommand) Execute(ctx context.Context, args []string) (Result, error) {
	query := strings.TrimSpace(apidocs.StripComment(strings.Join(args, " ")))
	if query == "" {
		return Result{}, &UsageError{Command: "mod", Usage: "<name>"}
	}
	m, err := c.client.Search(ctx, query)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: m.Response()}, nil
}
