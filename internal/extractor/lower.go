package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

// lower copies a tree-sitter subtree into syntax nodes and lifts comments
// into the trivia of their neighbours.
func lower(n *sitter.Node, source []byte, field string) *syntax.Node {
	out := &syntax.Node{
		Kind:    syntax.Kind(n.Type()),
		Field:   field,
		Named:   n.IsNamed(),
		Text:    n.Content(source),
		Start:   int(n.StartByte()),
		End:     int(n.EndByte()),
		Line:    int(n.StartPoint().Row) + 1,
		EndLine: int(n.EndPoint().Row) + 1,
		Missing: n.IsMissing(),
	}

	count := int(n.ChildCount())
	if count == 0 {
		return out
	}
	children := make([]*syntax.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		children = append(children, lower(child, source, n.FieldNameForChild(i)))
	}
	out.Children = attachTrivia(children)
	return out
}

// attachTrivia removes comment children. A comment that starts on the line
// where the previous sibling ends is trailing trivia of that sibling; any
// other comment leads the next sibling.
func attachTrivia(children []*syntax.Node) []*syntax.Node {
	out := make([]*syntax.Node, 0, len(children))
	var pending []string
	var prev *syntax.Node

	for _, c := range children {
		if c.Kind == syntax.KindComment {
			if prev != nil && len(pending) == 0 && c.Line == prev.EndLine {
				prev.Trailing.Comments = append(prev.Trailing.Comments, c.Text)
				continue
			}
			pending = append(pending, c.Text)
			continue
		}
		if len(pending) > 0 {
			c.Leading.Comments = append(pending, c.Leading.Comments...)
			pending = nil
		}
		out = append(out, c)
		prev = c
	}

	// Comments after the last sibling have nothing to lead; keep them on
	// the previous sibling so the text is not lost.
	if len(pending) > 0 && prev != nil {
		prev.Trailing.Comments = append(prev.Trailing.Comments, pending...)
	}
	return out
}
