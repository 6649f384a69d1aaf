package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianshen/rhobot/internal/output"
)

// --- quit ---

type quitCommand struct{}

// NewQuitCommand creates a command that requests the host to terminate.
// It also answers to "exit".
func NewQuitCommand() SlashCommand {
	return &quitCommand{}
}

func (c *quitCommand) Name() string        { return "quit" }
func (c *quitCommand) Description() string { return "Quit the console" }
func (c *quitCommand) Aliases() []string   { return []string{"exit"} }
func (c *quitCommand) Arguments() []ArgumentDef {
	return nil
}

func (c *quitCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *quitCommand) Execute(_ context.Context, _ []string) (Result, error) {
	return Result{Action: ActionQuit}, nil
}

// --- help ---

type helpCommand struct {
	registry *Registry
}

// NewHelpCommand creates a command that lists all registered commands
// with their descriptions, or the arguments of one command.
func NewHelpCommand(registry *Registry) SlashCommand {
	return &helpCommand{registry: registry}
}

func (c *helpCommand) Name() string        { return "help" }
func (c *helpCommand) Description() string { return "Show available commands" }
func (c *helpCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{{Name: "command", Description: "Command to describe"}}
}

func (c *helpCommand) Complete(_ context.Context, args []string) []Candidate {
	if len(args) != 1 {
		return nil
	}
	return c.registry.Match(args[0])
}

func (c *helpCommand) Execute(_ context.Context, args []string) (Result, error) {
	if len(args) > 0 {
		cmd, ok := c.registry.Get(args[0])
		if !ok {
			return Result{}, &UnknownCommandError{Name: args[0]}
		}
		return Result{Response: describe(cmd)}, nil
	}

	cmds := c.registry.All()
	if len(cmds) == 0 {
		return Message("No commands available."), nil
	}
	var b strings.Builder
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "`%s` %s\n", cmd.Name(), cmd.Description())
	}
	return Result{Response: &output.Response{
		Title:       "Available commands",
		Description: strings.TrimRight(b.String(), "\n"),
		Color:       output.ColorGold,
	}}, nil
}

func describe(cmd SlashCommand) *output.Response {
	r := &output.Response{
		Title:       cmd.Name(),
		Description: cmd.Description(),
		Color:       output.ColorGold,
	}
	if a, ok := cmd.(Aliased); ok && len(a.Aliases()) > 0 {
		r.Footer = "Aliases: " + strings.Join(a.Aliases(), ", ")
	}
	for _, arg := range cmd.Arguments() {
		name := arg.Name
		if !arg.Required {
			name += " (optional)"
		}
		value := arg.Description
		if len(arg.Static) > 0 {
			value += "\nOne of: " + strings.Join(arg.Static, ", ")
		}
		r.AddField(name, value, false)
	}
	return r
}
