package extractor

import (
	"strings"

	"github.com/robert-at-pretension-io/notifygen/internal/model"
	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

// IsNotifyRecord reports whether decl triggers generation: a struct named
// marker whose direct parent is a class.
func IsNotifyRecord(decl, parent *syntax.Node, marker string) bool {
	if !decl.Is(syntax.KindStruct) || !parent.Is(syntax.KindClass) {
		return false
	}
	d, _ := syntax.AsTypeDecl(decl)
	return d.Name() == marker
}

type walker struct {
	marker string
	facts  *FileFacts
}

// scope is the nesting context while walking; containers are outermost
// first here and reversed when a candidate is recorded.
type scope struct {
	namespace  []string
	fileScoped bool
	containers []model.Container
	parent     *syntax.Node
}

func (s scope) withNamespace(name string, fileScoped bool) scope {
	ns := append(append([]string(nil), s.namespace...), name)
	return scope{namespace: ns, fileScoped: s.fileScoped || fileScoped}
}

func (s scope) withContainer(c model.Container, decl *syntax.Node) scope {
	next := s
	next.containers = append(append([]model.Container(nil), s.containers...), c)
	next.parent = decl
	return next
}

func (s scope) chain() model.Chain {
	n := len(s.containers)
	inner := make([]model.Container, n)
	for i, c := range s.containers {
		inner[n-1-i] = c
	}
	return model.Chain{
		Containers: inner,
		Namespace:  strings.Join(s.namespace, "."),
		FileScoped: s.fileScoped,
	}
}

func (w *walker) walkUnit(root *syntax.Node) {
	w.walkMembers(root.Children, scope{})
}

// walkMembers handles a sequence of sibling declarations. A file-scoped
// namespace applies to every sibling after it; depending on grammar version
// the following declarations are either siblings or its children.
func (w *walker) walkMembers(members []*syntax.Node, s scope) {
	for _, n := range members {
		switch n.Kind {
		case syntax.KindUsing:
			if u, ok := syntax.UsingOf(n); ok && len(s.containers) == 0 {
				w.facts.Usings = append(w.facts.Usings, u)
			}
		case syntax.KindNamespace:
			inner := s.withNamespace(namespaceName(n), false)
			body := n.ChildByField("body")
			if body == nil {
				body = n.FirstChildOfKind(syntax.KindDeclarationList)
			}
			if body != nil {
				w.walkMembers(body.Children, inner)
			}
		case syntax.KindFileNamespace:
			s = s.withNamespace(namespaceName(n), true)
			w.walkMembers(n.Children, s)
		case syntax.KindClass, syntax.KindStruct, syntax.KindRecord, syntax.KindRecordStruct:
			w.walkType(n, s)
		}
	}
}

func (w *walker) walkType(n *syntax.Node, s scope) {
	decl, _ := syntax.AsTypeDecl(n)

	if IsNotifyRecord(n, s.parent, w.marker) {
		w.addCandidate(n, decl, s)
		return
	}

	c := model.Container{
		Name:         decl.Name(),
		Keyword:      decl.Keyword(),
		TypeParams:   decl.TypeParams(),
		Partial:      decl.IsPartial(),
		Line:         n.Line,
		KeywordStart: decl.KeywordStart(),
	}
	inner := s.withContainer(c, n)
	w.facts.Containers = append(w.facts.Containers, ContainerDecl{Chain: inner.chain(), Line: n.Line})

	for _, member := range decl.Members() {
		if member.Is(syntax.KindClass, syntax.KindStruct, syntax.KindRecord, syntax.KindRecordStruct) {
			w.walkType(member, inner)
		}
	}
}

func (w *walker) addCandidate(n *syntax.Node, decl syntax.TypeDecl, s scope) {
	chain := s.chain()
	// A container holds at most one record; later duplicates do not compile
	// anyway.
	for _, existing := range w.facts.Candidates {
		if existing.Chain.QualifiedName() == chain.QualifiedName() {
			return
		}
	}
	w.facts.Candidates = append(w.facts.Candidates, Candidate{
		Record: n,
		Name:   decl.Name(),
		Chain:  chain,
		Line:   n.Line,
	})
}

func namespaceName(n *syntax.Node) string {
	if name := n.ChildByField("name"); name != nil {
		return syntax.StripSpace(name.Text)
	}
	for _, c := range n.NamedChildren() {
		if c.Is(syntax.KindIdentifier, syntax.KindQualifiedName) {
			return syntax.StripSpace(c.Text)
		}
	}
	return ""
}
