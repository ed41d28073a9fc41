package model

import (
	"fmt"
	"strings"
)

// Container is one enclosing type declaration of a record.
type Container struct {
	Name       string   `json:"name"`
	Keyword    string   `json:"keyword"`
	TypeParams []string `json:"typeParams,omitempty"`
	Partial    bool     `json:"partial"`
	Line       int      `json:"line"`
	// KeywordStart is the byte offset of the declaration keyword.
	KeywordStart int `json:"-"`
}

// DisplayName renders the name with its generic parameter list.
func (c Container) DisplayName() string {
	if len(c.TypeParams) == 0 {
		return c.Name
	}
	return c.Name + "<" + strings.Join(c.TypeParams, ", ") + ">"
}

// Chain is the nesting context of a record: its containers and the
// namespace they live in.
type Chain struct {
	// Containers runs from the innermost (the record's direct parent) out.
	Containers []Container `json:"containers"`
	Namespace  string      `json:"namespace,omitempty"`
	FileScoped bool        `json:"fileScoped,omitempty"`
}

// Innermost returns the record's direct container.
func (c Chain) Innermost() Container {
	if len(c.Containers) == 0 {
		return Container{}
	}
	return c.Containers[0]
}

// Outermost returns the top-level container.
func (c Chain) Outermost() Container {
	if len(c.Containers) == 0 {
		return Container{}
	}
	return c.Containers[len(c.Containers)-1]
}

// QualifiedName renders namespace and containers, outermost first, with
// generic parameter lists.
func (c Chain) QualifiedName() string {
	parts := make([]string, 0, len(c.Containers)+1)
	if c.Namespace != "" {
		parts = append(parts, c.Namespace)
	}
	for i := len(c.Containers) - 1; i >= 0; i-- {
		parts = append(parts, c.Containers[i].DisplayName())
	}
	return strings.Join(parts, ".")
}

// HintName is the unique per-container name of the companion unit:
// namespace, then every container outermost first with its generic arity.
func (c Chain) HintName() string {
	parts := make([]string, 0, len(c.Containers)+1)
	if c.Namespace != "" {
		parts = append(parts, c.Namespace)
	}
	for i := len(c.Containers) - 1; i >= 0; i-- {
		ct := c.Containers[i]
		name := ct.Name
		if n := len(ct.TypeParams); n > 0 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ".")
}
