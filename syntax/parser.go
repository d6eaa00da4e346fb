package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Parser wraps a tree-sitter parser configured for either C or C++.
// Mirrors inspector/golang's TreeSitterInspector: one parser per language,
// constructed once and reused across files.
type Parser struct {
	lang   Language
	sitter *sitter.Parser
}

// NewParser creates a Parser for the given language.
func NewParser(lang Language) (*Parser, error) {
	p := sitter.NewParser()
	switch lang {
	case C:
		p.SetLanguage(c.GetLanguage())
	case Cpp:
		p.SetLanguage(cpp.GetLanguage())
	default:
		return nil, fmt.Errorf("syntax: unsupported language %q", lang)
	}
	return &Parser{lang: lang, sitter: p}, nil
}

// Parse parses source bytes and returns the root node. A non-nil error is
// returned only when the parser itself fails to produce a tree; a tree
// whose root reports syntax errors is still returned (the caller decides,
// via HasError, whether to treat it as a parse failure per spec.md §7).
func (p *Parser) Parse(ctx context.Context, src []byte) (*Node, error) {
	tree, err := p.sitter.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: parsing %s source: %w", p.lang, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("syntax: parsing %s source: parser returned no tree", p.lang)
	}
	return Wrap(tree.RootNode(), src, p.lang), nil
}

// HasError reports whether the subtree rooted at n contains a parser ERROR
// node, the signal spec.md §7 uses to trigger "Parse failure" disposition.
func HasError(n *Node) bool {
	if n.IsNil() {
		return false
	}
	if n.Kind() == "ERROR" {
		return true
	}
	for i := 0; i < n.ChildCount(); i++ {
		if HasError(n.Child(i)) {
			return true
		}
	}
	return false
}
