// Package syntax is the language-neutral tree the generator works on.
//
// The C# frontend (internal/extractor) lowers tree-sitter output into Node
// values. Comments never appear as children: they are lifted into the
// Leading/Trailing trivia of the sibling they document. A tree is never
// modified after lowering.
package syntax

import "strings"

// Kind is the grammar type of a node. Kinds mirror the tree-sitter C#
// grammar names so lowered trees can be read next to parser dumps.
type Kind string

const (
	KindCompilationUnit    Kind = "compilation_unit"
	KindUsing              Kind = "using_directive"
	KindNamespace          Kind = "namespace_declaration"
	KindFileNamespace      Kind = "file_scoped_namespace_declaration"
	KindClass              Kind = "class_declaration"
	KindStruct             Kind = "struct_declaration"
	KindRecord             Kind = "record_declaration"
	KindRecordStruct       Kind = "record_struct_declaration"
	KindDeclarationList    Kind = "declaration_list"
	KindField              Kind = "field_declaration"
	KindVariableDecl       Kind = "variable_declaration"
	KindVariableDeclarator Kind = "variable_declarator"
	KindProperty           Kind = "property_declaration"
	KindAccessorList       Kind = "accessor_list"
	KindArrowClause        Kind = "arrow_expression_clause"
	KindIdentifier         Kind = "identifier"
	KindQualifiedName      Kind = "qualified_name"
	KindGenericName        Kind = "generic_name"
	KindAliasQualifiedName Kind = "alias_qualified_name"
	KindMemberAccess       Kind = "member_access_expression"
	KindMemberBinding      Kind = "member_binding_expression"
	KindNameColon          Kind = "name_colon"
	KindNameEquals         Kind = "name_equals"
	KindThisExpression     Kind = "this_expression"
	KindForeach            Kind = "foreach_statement"
	KindDeclarationExpr    Kind = "declaration_expression"
	KindVariableDesignator Kind = "single_variable_designation"
	KindDeclarationPattern Kind = "declaration_pattern"
	KindVarPattern         Kind = "var_pattern"
	KindEqualsValue        Kind = "equals_value_clause"
	KindCatchDeclaration   Kind = "catch_declaration"
	KindParameter          Kind = "parameter"
	KindLambda             Kind = "lambda_expression"
	KindThis               Kind = "this"
	KindTypeParameterList  Kind = "type_parameter_list"
	KindTypeParameter      Kind = "type_parameter"
	KindModifier           Kind = "modifier"
	KindAttributeList      Kind = "attribute_list"
	KindComment            Kind = "comment"
	KindError              Kind = "ERROR"
)

// Trivia is documentation text relocated from the source. Comments are kept
// verbatim, one entry per comment token.
type Trivia struct {
	Comments []string `json:"comments,omitempty"`
}

// IsEmpty reports whether the trivia carries nothing.
func (t Trivia) IsEmpty() bool {
	return len(t.Comments) == 0
}

// Node is one element of the lowered tree.
type Node struct {
	Kind  Kind
	Field string // field name inside the parent, "" when unnamed
	Named bool   // false for punctuation and keywords
	Text  string // verbatim source text
	Start int    // byte offsets into the source
	End   int
	Line  int // 1-based
	// EndLine is the 1-based line of the last byte.
	EndLine  int
	Missing  bool
	Children []*Node
	Leading  Trivia
	Trailing Trivia
}

// Is reports whether the node has one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// ChildByField returns the first child stored under the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// FirstChildOfKind returns the first direct child with one of the kinds.
func (n *Node) FirstChildOfKind(kinds ...Kind) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Is(kinds...) {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns the direct children with one of the kinds.
func (n *Node) ChildrenOfKind(kinds ...Kind) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Is(kinds...) {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the direct children that are grammar nodes rather
// than punctuation or keywords.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// HasError reports whether the subtree contains ERROR or MISSING nodes.
func (n *Node) HasError() bool {
	found := false
	Walk(n, func(c *Node) bool {
		if c.Kind == KindError || c.Missing {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits the subtree in pre-order. Returning false from visit skips the
// children of the visited node.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// CompactText collapses every whitespace run in s to a single space.
func CompactText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripSpace removes all whitespace from s. Dotted names compare equal
// regardless of how they were laid out.
func StripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
