// Package parser recognizes Lua snippets in documentation examples using
// tree-sitter, so they can be shown as highlighted code blocks.
package parser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// Parser wraps a tree-sitter parser configured for Lua. It is safe for
// concurrent use.
type Parser struct {
	mu    sync.Mutex
	inner *sitter.Parser
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	inner := sitter.NewParser()
	inner.SetLanguage(lua.GetLanguage())
	return &Parser{inner: inner}
}

// Parse parses source as Lua.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sitterTree, err := p.inner.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse lua: %w", err)
	}
	return &Tree{tree: sitterTree, source: source}, nil
}

// Tree is a parsed Lua chunk.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

// RootNode returns the root node of the parsed syntax tree.
func (t *Tree) RootNode() *sitter.Node {
	return t.tree.RootNode()
}

// HasErrors reports whether tree-sitter had to recover from syntax errors.
func (t *Tree) HasErrors() bool {
	root := t.RootNode()
	return root == nil || root.HasError()
}

// Statements counts the top-level statements of the chunk.
func (t *Tree) Statements() int {
	root := t.RootNode()
	if root == nil {
		return 0
	}
	n := 0
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if child := root.NamedChild(i); child != nil && child.Type() != "comment" {
			n++
		}
	}
	return n
}

// IsLua reports whether src parses as Lua with at least one statement.
func (p *Parser) IsLua(ctx context.Context, src string) bool {
	if strings.TrimSpace(src) == "" {
		return false
	}
	tree, err := p.Parse(ctx, []byte(src))
	if err != nil {
		return false
	}
	return !tree.HasErrors() && tree.Statements() > 0
}

// FormatExample fences an example as a Lua code block when it is Lua. Text
// that already contains a fence, or is not Lua, is returned unchanged.
func (p *Parser) FormatExample(ctx context.Context, src string) string {
	src = strings.TrimSpace(src)
	if strings.Contains(src, "```") || !p.IsLua(ctx, src) {
		return src
	}
	return "```lua\n" + src + "\n```"
}
