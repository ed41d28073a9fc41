package generator

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/robert-at-pretension-io/notifygen/internal/model"
	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var memberTemplates = template.Must(
	template.New("members").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"),
)

// MemberKind tags a synthesized declaration.
type MemberKind int

const (
	BackingField MemberKind = iota
	WrapperProperty
	ChangeToken
	DerivedProperty
)

func (k MemberKind) String() string {
	switch k {
	case BackingField:
		return "backing-field"
	case WrapperProperty:
		return "wrapper"
	case ChangeToken:
		return "token"
	case DerivedProperty:
		return "derived"
	default:
		return fmt.Sprintf("MemberKind(%d)", int(k))
	}
}

// Member is one generated declaration. Members of the same Group came from
// the same source member and are printed without a blank line between them.
type Member struct {
	Kind     MemberKind
	Name     string
	Text     string
	Group    int
	Leading  syntax.Trivia
	Trailing syntax.Trivia
}

type memberData struct {
	Record    string
	Backing   string
	Name      string
	Type      string
	Token     string
	TokenType string
	SetMethod string
	Calls     []string
}

// Synthesize produces the backing field, then one wrapper property and
// change token per field, then one delegating property and token per
// derived member.
func Synthesize(def *model.RecordDefinition, opts Options) ([]Member, error) {
	fieldTemplate := "field." + string(opts.SetterStyle)
	if memberTemplates.Lookup(fieldTemplate) == nil {
		return nil, fmt.Errorf("unknown setter style %q", opts.SetterStyle)
	}

	base := memberData{
		Record:    def.Name,
		Backing:   opts.BackingField,
		TokenType: opts.TokenType,
		SetMethod: opts.SetMethod,
	}

	backing, err := render("backing", base)
	if err != nil {
		return nil, err
	}
	members := []Member{{Kind: BackingField, Name: opts.BackingField, Text: backing}}
	group := 1

	for i, f := range def.Fields {
		data := base
		data.Name = f.Name
		data.Type = f.Type
		data.Token = f.Name + opts.TokenSuffix

		var calls []string
		if opts.SetterStyle == SetterInline {
			calls = append(calls, notifyCall(opts, f.Name))
		}
		for _, dep := range notifications(def, i, opts.KeepDuplicateNotifications) {
			calls = append(calls, notifyCall(opts, dep))
		}
		data.Calls = calls

		prop, err := render(fieldTemplate, data)
		if err != nil {
			return nil, err
		}
		token, err := render("token", data)
		if err != nil {
			return nil, err
		}
		members = append(members, attachTrivia([]Member{
			{Kind: WrapperProperty, Name: f.Name, Text: prop, Group: group},
			{Kind: ChangeToken, Name: data.Token, Text: token, Group: group},
		}, f.Leading, f.Trailing)...)
		group++
	}

	for _, d := range def.Derived {
		data := base
		data.Name = d.Name
		data.Type = d.Type
		data.Token = d.Name + opts.TokenSuffix

		prop, err := render("derived", data)
		if err != nil {
			return nil, err
		}
		token, err := render("token", data)
		if err != nil {
			return nil, err
		}
		members = append(members, attachTrivia([]Member{
			{Kind: DerivedProperty, Name: d.Name, Text: prop, Group: group},
			{Kind: ChangeToken, Name: data.Token, Text: token, Group: group},
		}, d.Leading, d.Trailing)...)
		group++
	}

	return members, nil
}

// notifications lists the derived members to notify when field f changes.
func notifications(def *model.RecordDefinition, f int, keepDuplicates bool) []string {
	names := def.Dependents(f)
	if keepDuplicates {
		return names
	}
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func notifyCall(opts Options, name string) string {
	return opts.NotifyMethod + "(" + name + opts.TokenSuffix + ");"
}

// attachTrivia puts the source member's leading trivia on the first
// generated declaration and its trailing trivia on the last.
func attachTrivia(group []Member, leading, trailing syntax.Trivia) []Member {
	if len(group) == 0 {
		return group
	}
	group[0].Leading = leading
	group[len(group)-1].Trailing = trailing
	return group
}

func render(name string, data memberData) (string, error) {
	var buf bytes.Buffer
	if err := memberTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s for %s: %w", name, data.Name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
