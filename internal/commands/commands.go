// Package commands holds the bot's command registry and every command it
// answers: api, wiki, faq, fff, mod, help and quit.
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/julianshen/rhobot/internal/output"
)

// Action represents the side-effect a command requests from the host.
type Action int

const (
	// ActionNone indicates no special action is needed.
	ActionNone Action = iota
	// ActionQuit requests the host to terminate.
	ActionQuit
	// ActionOpenFAQForm requests the host to collect a new FAQ entry
	// interactively.
	ActionOpenFAQForm
)

// Candidate represents a completion suggestion.
type Candidate struct {
	Value       string
	Description string
}

// ArgumentDef describes a single argument accepted by a command.
type ArgumentDef struct {
	Name        string
	Description string
	Required    bool
	Static      []string
}

// Attachment is a file handed back to the user alongside a response.
type Attachment struct {
	Name string
	Data []byte
}

// Result is the outcome of executing a command.
type Result struct {
	Response   *output.Response
	Attachment *Attachment
	Action     Action
}

// Message wraps plain text as a result.
func Message(text string) Result {
	return Result{Response: &output.Response{Description: text}}
}

// SlashCommand defines the interface for a user-invokable command.
type SlashCommand interface {
	Name() string
	Description() string
	Arguments() []ArgumentDef
	Complete(ctx context.Context, args []string) []Candidate
	Execute(ctx context.Context, args []string) (Result, error)
}

// Aliased is implemented by commands reachable under extra names.
type Aliased interface {
	Aliases() []string
}

// Registry manages a collection of commands. All methods are safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	cmds    map[string]SlashCommand
	aliases map[string]string
}

// NewRegistry creates a new empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds:    make(map[string]SlashCommand),
		aliases: make(map[string]string),
	}
}

// Register adds a command and its aliases. Returns an error if cmd is nil
// or any of its names is taken.
func (r *Registry) Register(cmd SlashCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd == nil {
		return fmt.Errorf("cannot register nil command")
	}
	names := []string{cmd.Name()}
	if a, ok := cmd.(Aliased); ok {
		names = append(names, a.Aliases()...)
	}
	for _, n := range names {
		if r.taken(n) {
			return fmt.Errorf("command already registered: %s", n)
		}
	}
	r.cmds[cmd.Name()] = cmd
	for _, n := range names[1:] {
		r.aliases[n] = cmd.Name()
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	_, cmd := r.cmds[name]
	_, alias := r.aliases[name]
	return cmd || alias
}

// Unregister removes a command and its aliases. Returns an error if the
// command is not registered.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cmds[name]; !exists {
		return fmt.Errorf("command not registered: %s", name)
	}
	delete(r.cmds, name)
	for alias, target := range r.aliases {
		if target == name {
			delete(r.aliases, alias)
		}
	}
	return nil
}

// Get retrieves a command by name or alias, ignoring case.
func (r *Registry) Get(name string) (SlashCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(name)
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []SlashCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]SlashCommand, 0, len(r.cmds))
	for _, cmd := range r.cmds {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name() < cmds[j].Name()
	})
	return cmds
}

// Match returns completion candidates for commands whose names match the
// given prefix (case-insensitive). Aliases are not offered. Results are
// sorted by name.
func (r *Registry) Match(prefix string) []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(prefix)
	var candidates []Candidate
	for _, cmd := range r.cmds {
		if strings.HasPrefix(strings.ToLower(cmd.Name()), lower) {
			candidates = append(candidates, Candidate{
				Value:       cmd.Name(),
				Description: cmd.Description(),
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Value < candidates[j].Value
	})
	return candidates
}

// names turns plain strings into candidates.
func names(values []string) []Candidate {
	if len(values) == 0 {
		return nil
	}
	out := make([]Candidate, len(values))
	for i, v := range values {
		out[i] = Candidate{Value: v}
	}
	return out
}
