package grammar

import (
	"fmt"
	"strings"

	"github.com/eaburns/peggy/peg"
)

// A Node is a node of a parse tree.
type Node struct {
	// Rule is the name of the rule that produced the Node.
	Rule string
	// Range is the byte offsets of the Node's text.
	Range [2]int
	// Text is the matched text.
	Text string
	// Kids are the Nodes of sub-rules, in order.
	// Token Nodes have no Kids.
	Kids []*Node
}

// Kid returns the first kid with the given rule name, or nil.
func (n *Node) Kid(rule string) *Node {
	for _, k := range n.Kids {
		if k.Rule == rule {
			return k
		}
	}
	return nil
}

// Peg returns the tree as a peggy parse tree.
func (n *Node) Peg() *peg.Node {
	pn := &peg.Node{Name: n.Rule, Text: n.Text}
	for _, k := range n.Kids {
		pn.Kids = append(pn.Kids, k.Peg())
	}
	return pn
}

// String returns an s-expression of the tree, with token text quoted.
func (n *Node) String() string {
	var s strings.Builder
	n.buildString(&s)
	return s.String()
}

func (n *Node) buildString(s *strings.Builder) {
	if len(n.Kids) == 0 {
		fmt.Fprintf(s, "%s:%q", n.Rule, n.Text)
		return
	}
	s.WriteString("(")
	s.WriteString(n.Rule)
	for _, k := range n.Kids {
		s.WriteString(" ")
		k.buildString(s)
	}
	s.WriteString(")")
}

// A Mismatch is a failure to parse.
type Mismatch struct {
	// Start is the start rule of the parse.
	Start string
	// Pos is the farthest byte offset reached by the parse.
	Pos int
	// Positives are the expectations at Pos, in the order they were attempted.
	// Each is either a rule name or literal text quoted with '.
	Positives []string
	// Negatives are the rules that matched at Pos
	// where they were forbidden by a negative lookahead.
	Negatives []string
	// Fail is the failure tree.
	Fail *peg.Fail
}

func (m *Mismatch) Error() string {
	var s strings.Builder
	fmt.Fprintf(&s, "syntax error at offset %d", m.Pos)
	if len(m.Positives) > 0 {
		s.WriteString(": expected ")
		s.WriteString(strings.Join(m.Positives, ", "))
	}
	if len(m.Negatives) > 0 {
		s.WriteString(": unexpected ")
		s.WriteString(strings.Join(m.Negatives, ", "))
	}
	return s.String()
}

// Tree returns the failure tree.
func (m *Mismatch) Tree() *peg.Fail { return m.Fail }
