// Package syntax adapts the external concrete-syntax-tree parser
// (smacker/go-tree-sitter over the C and C++ grammars) to the read-only
// node shape the rest of the pipeline consumes: kind tags, source points,
// named children, field accessors and a stable identity per node.
package syntax

import (
	"fmt"

	"github.com/minio/highwayhash"
	sitter "github.com/smacker/go-tree-sitter"
)

// Language identifies which grammar a tree was parsed with.
type Language string

const (
	C   Language = "c"
	Cpp Language = "cpp"
)

// Point is a zero-based (line, column) source position.
type Point struct {
	Row    int
	Column int
}

// NodeId is the integer identity described in spec.md §3. Real parser
// nodes hash to an id derived from (start, end, kind); synthetic ids
// (implicit returns, implicit constructors and destructors) are allocated
// above SyntheticBase so they never collide with a hashed id. The start and
// end dummies use the fixed ids 1 and 2.
type NodeId uint64

// SyntheticBase separates parser-derived ids from synthetic ones. Hashed ids
// are reduced modulo this value so the two spaces never overlap.
const SyntheticBase NodeId = 1 << 40

var hashKey = []byte("CODEVIEWS-NODEID-KEY-0123456789A")

// HashNodeId derives a NodeId from the node's identity triple, per spec.md §3
// ("Uniquely identified by (start_point, end_point, kind)").
func HashNodeId(start, end Point, kind string) NodeId {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// hashKey is a fixed 32-byte literal; New64 only fails on bad key length.
		panic(fmt.Sprintf("syntax: invalid highwayhash key: %v", err))
	}
	fmt.Fprintf(h, "%d:%d-%d:%d:%s", start.Row, start.Column, end.Row, end.Column, kind)
	return NodeId(h.Sum64() % uint64(SyntheticBase))
}

// Node is a read-only view over a parsed syntax-tree node.
type Node struct {
	raw  *sitter.Node
	src  []byte
	lang Language
}

// Wrap adapts a raw tree-sitter node. Returns nil (IsNil() true) when raw
// is nil, so callers can chain field lookups without nil-checking
// every step.
func Wrap(raw *sitter.Node, src []byte, lang Language) *Node {
	if raw == nil {
		return nil
	}
	return &Node{raw: raw, src: src, lang: lang}
}

func (n *Node) IsNil() bool { return n == nil || n.raw == nil }

// Kind is the parser's grammar tag for this node (e.g. "if_statement").
func (n *Node) Kind() string {
	if n.IsNil() {
		return ""
	}
	return n.raw.Type()
}

func (n *Node) Language() Language { return n.lang }

func (n *Node) Start() Point {
	if n.IsNil() {
		return Point{}
	}
	p := n.raw.StartPoint()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

func (n *Node) End() Point {
	if n.IsNil() {
		return Point{}
	}
	p := n.raw.EndPoint()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

// Line is the 1-based source line of the node's start, matching
// spec.md's GraphNode.line convention.
func (n *Node) Line() int {
	if n.IsNil() {
		return 0
	}
	return n.Start().Row + 1
}

// Id returns the node's stable NodeId, computed lazily from its identity
// triple.
func (n *Node) Id() NodeId {
	if n.IsNil() {
		return 0
	}
	return HashNodeId(n.Start(), n.End(), n.Kind())
}

// Text is the raw source text spanned by this node.
func (n *Node) Text() string {
	if n.IsNil() {
		return ""
	}
	return n.raw.Content(n.src)
}

func (n *Node) ChildCount() int {
	if n.IsNil() {
		return 0
	}
	return int(n.raw.ChildCount())
}

func (n *Node) NamedChildCount() int {
	if n.IsNil() {
		return 0
	}
	return int(n.raw.NamedChildCount())
}

func (n *Node) Child(i int) *Node {
	if n.IsNil() || i < 0 || i >= n.ChildCount() {
		return nil
	}
	return Wrap(n.raw.Child(i), n.src, n.lang)
}

func (n *Node) NamedChild(i int) *Node {
	if n.IsNil() || i < 0 || i >= n.NamedChildCount() {
		return nil
	}
	return Wrap(n.raw.NamedChild(i), n.src, n.lang)
}

// Field looks up a named field (e.g. "condition", "body", "declarator").
func (n *Node) Field(name string) *Node {
	if n.IsNil() {
		return nil
	}
	return Wrap(n.raw.ChildByFieldName(name), n.src, n.lang)
}

func (n *Node) Parent() *Node {
	if n.IsNil() {
		return nil
	}
	return Wrap(n.raw.Parent(), n.src, n.lang)
}

// Children returns every direct child, named or not.
func (n *Node) Children() []*Node {
	if n.IsNil() {
		return nil
	}
	out := make([]*Node, 0, n.ChildCount())
	for i := 0; i < n.ChildCount(); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// NamedChildren returns only the grammar's named children (skips anonymous
// tokens like punctuation and keywords).
func (n *Node) NamedChildren() []*Node {
	if n.IsNil() {
		return nil
	}
	out := make([]*Node, 0, n.NamedChildCount())
	for i := 0; i < n.NamedChildCount(); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// NextSibling returns the next named sibling in source order, or nil at the
// end of the parent's child list. Used by cfg Phase A's "next executable
// statement" search.
func (n *Node) NextSibling() *Node {
	if n.IsNil() {
		return nil
	}
	parent := n.Parent()
	if parent.IsNil() {
		return nil
	}
	for i := 0; i < parent.NamedChildCount(); i++ {
		sib := parent.NamedChild(i)
		if sib.raw == n.raw {
			if i+1 < parent.NamedChildCount() {
				return parent.NamedChild(i + 1)
			}
			return nil
		}
	}
	return nil
}
