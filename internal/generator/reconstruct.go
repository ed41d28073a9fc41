package generator

import (
	"strings"

	"github.com/robert-at-pretension-io/notifygen/internal/model"
	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

// DeclKind tags a declaration of the output tree.
type DeclKind int

const (
	NamespaceDecl DeclKind = iota
	TypeDecl
)

// Decl is a namespace or partial type of the companion unit. Ancestors
// carry exactly one Nested declaration; only the innermost type carries
// Members.
type Decl struct {
	Kind       DeclKind
	Keyword    string
	Name       string
	TypeParams []string
	Members    []Member
	Nested     *Decl
}

// Header renders the declaration line.
func (d *Decl) Header() string {
	if d.Kind == NamespaceDecl {
		return "namespace " + d.Name
	}
	header := "partial " + d.Keyword + " " + d.Name
	if len(d.TypeParams) > 0 {
		header += "<" + strings.Join(d.TypeParams, ", ") + ">"
	}
	return header
}

// Unit is a complete companion source unit.
type Unit struct {
	Usings []syntax.Using
	Root   *Decl
}

// Reconstruct wraps members in partial declarations mirroring the
// container chain, innermost first, and finally in the namespace. A
// file-scoped namespace becomes a block namespace.
func Reconstruct(members []Member, chain model.Chain) (*Decl, error) {
	if len(chain.Containers) == 0 {
		return nil, ErrNotApplicable
	}

	var decl *Decl
	for i, c := range chain.Containers {
		next := &Decl{
			Kind:       TypeDecl,
			Keyword:    c.Keyword,
			Name:       c.Name,
			TypeParams: c.TypeParams,
		}
		if next.Keyword == "" {
			next.Keyword = "class"
		}
		if i == 0 {
			next.Members = members
		} else {
			next.Nested = decl
		}
		decl = next
	}

	if chain.Namespace != "" {
		decl = &Decl{Kind: NamespaceDecl, Name: chain.Namespace, Nested: decl}
	}
	return decl, nil
}
