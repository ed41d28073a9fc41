package generator

import (
	"strings"

	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

// NormalizeImports returns the import list of the companion: the source
// unit's usings in order, then the support namespace if no plain using of
// it exists. Global usings already apply to the companion and are only
// consulted, never repeated.
func NormalizeImports(usings []syntax.Using, support string) []syntax.Using {
	out := make([]syntax.Using, 0, len(usings)+1)
	want := importKey(support)
	found := want == ""
	for _, u := range usings {
		if !u.Static && u.Alias == "" && importKey(u.Name) == want {
			found = true
		}
		if u.Global {
			continue
		}
		u.Line = 0
		out = append(out, u)
	}
	if !found {
		out = append(out, syntax.Using{Name: support})
	}
	return out
}

func importKey(name string) string {
	return strings.TrimPrefix(syntax.StripSpace(name), "global::")
}
