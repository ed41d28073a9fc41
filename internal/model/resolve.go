package model

import "github.com/robert-at-pretension-io/notifygen/internal/syntax"

// Graph records which derived members read which fields. Both directions are
// indexed by position in RecordDefinition.Fields and Derived.
type Graph struct {
	dependsOn  [][]int
	dependents [][]int
}

// Edge is a single occurrence of a field read inside a derived member.
type Edge struct {
	Field   int
	Derived int
}

// DependsOn returns the fields read by derived member d, one entry per
// occurrence.
func (g Graph) DependsOn(d int) []int {
	if d < 0 || d >= len(g.dependsOn) {
		return nil
	}
	return g.dependsOn[d]
}

// Dependents returns the derived members reading field f, in the order they
// were discovered: derived members in declaration order, occurrences in
// body order.
func (g Graph) Dependents(f int) []int {
	if f < 0 || f >= len(g.dependents) {
		return nil
	}
	return g.dependents[f]
}

// Edges lists every occurrence in discovery order.
func (g Graph) Edges() []Edge {
	var edges []Edge
	for d, fields := range g.dependsOn {
		for _, f := range fields {
			edges = append(edges, Edge{Field: f, Derived: d})
		}
	}
	return edges
}

// Resolve scans every derived member body for bare identifiers naming a
// field. Identifiers that match no field are ignored.
func Resolve(fields []SimpleProperty, derived []DependentProperty) Graph {
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := byName[f.Name]; !dup {
			byName[f.Name] = i
		}
	}
	g := Graph{
		dependsOn:  make([][]int, len(derived)),
		dependents: make([][]int, len(fields)),
	}
	for d, member := range derived {
		for _, name := range References(member.Body) {
			f, ok := byName[name]
			if !ok {
				continue
			}
			g.dependsOn[d] = append(g.dependsOn[d], f)
			g.dependents[f] = append(g.dependents[f], d)
		}
	}
	return g
}

// References returns the bare identifiers read by the given subtrees, in
// source order. Qualified and generic names are not descended into, and only
// the left side of a member access counts, except that this.X reads X.
// Names introduced by locals, loop variables, out vars, patterns, catch
// clauses and parameters are declarations, not reads; their initializers
// still count.
func References(body []*syntax.Node) []string {
	var names []string
	for _, n := range body {
		collectReferences(n, &names)
	}
	return names
}

func collectReferences(n *syntax.Node, names *[]string) {
	switch n.Kind {
	case syntax.KindIdentifier:
		*names = append(*names, n.Text)
		return
	case syntax.KindQualifiedName, syntax.KindGenericName, syntax.KindAliasQualifiedName,
		syntax.KindMemberBinding, syntax.KindNameColon, syntax.KindNameEquals,
		syntax.KindDeclarationExpr, syntax.KindVariableDesignator, syntax.KindCatchDeclaration,
		syntax.KindDeclarationPattern, syntax.KindVarPattern:
		return
	case syntax.KindVariableDeclarator, syntax.KindParameter:
		collectAfter(n, "=", names)
		return
	case syntax.KindForeach:
		collectAfter(n, "in", names)
		return
	case syntax.KindLambda:
		collectAfter(n, "=>", names)
		return
	}
	for _, c := range n.Children {
		if c.Named {
			collectReferences(c, names)
		}
	}
}

// collectAfter walks only the named children that follow the separator
// token, skipping the declaration part before it. An equals_value_clause is
// always an initializer.
func collectAfter(n *syntax.Node, separator syntax.Kind, names *[]string) {
	seen := false
	for _, c := range n.Children {
		if !c.Named && c.Kind == separator {
			seen = true
			continue
		}
		if (seen && c.Named) || c.Is(syntax.KindEqualsValue) {
			collectReferences(c, names)
		}
	}
}

func memberAccessParts(n *syntax.Node) (target, member *syntax.Node) {
	target = n.ChildByField("expression")
	member = n.ChildByField("name")
	if target != nil && member != nil {
		return target, member
	}
	var named []*syntax.Node
	for _, c := range n.Children {
		if c.Named || c.Is(syntax.KindThis) {
			named = append(named, c)
		}
	}
	if len(named) == 0 {
		return nil, nil
	}
	if target == nil {
		target = named[0]
	}
	if member == nil && len(named) > 1 {
		member = named[len(named)-1]
	}
	return target, member
}
