package syntax

import "strings"

// TypeDecl is a view over a class, struct or record declaration.
type TypeDecl struct{ *Node }

// AsTypeDecl returns the type-declaration view of n.
func AsTypeDecl(n *Node) (TypeDecl, bool) {
	if !n.Is(KindClass, KindStruct, KindRecord, KindRecordStruct) {
		return TypeDecl{}, false
	}
	return TypeDecl{n}, true
}

// Name returns the declared identifier.
func (d TypeDecl) Name() string {
	if name := d.ChildByField("name"); name != nil {
		return name.Text
	}
	if id := d.FirstChildOfKind(KindIdentifier); id != nil {
		return id.Text
	}
	return ""
}

// Keyword returns the declaration keyword as it must be repeated on a
// partial companion.
func (d TypeDecl) Keyword() string {
	switch d.Kind {
	case KindStruct:
		return "struct"
	case KindRecordStruct:
		return "record struct"
	case KindRecord:
		for _, c := range d.Children {
			if !c.Named && c.Text == "struct" {
				return "record struct"
			}
		}
		return "record"
	default:
		return "class"
	}
}

// KeywordStart returns the byte offset of the declaration keyword. A
// "partial" modifier is inserted there.
func (d TypeDecl) KeywordStart() int {
	for _, c := range d.Children {
		if c.Named {
			continue
		}
		switch c.Text {
		case "class", "struct", "record":
			return c.Start
		}
	}
	if name := d.ChildByField("name"); name != nil {
		return name.Start
	}
	return d.Start
}

// TypeParams returns the declared generic parameter names in order.
func (d TypeDecl) TypeParams() []string {
	list := d.ChildByField("type_parameters")
	if list == nil {
		list = d.FirstChildOfKind(KindTypeParameterList)
	}
	if list == nil {
		return nil
	}
	var params []string
	for _, p := range list.ChildrenOfKind(KindTypeParameter) {
		if name := p.ChildByField("name"); name != nil {
			params = append(params, name.Text)
			continue
		}
		if id := p.FirstChildOfKind(KindIdentifier); id != nil {
			params = append(params, id.Text)
			continue
		}
		params = append(params, StripSpace(p.Text))
	}
	return params
}

// HasModifier reports whether the declaration carries the given modifier.
func (d TypeDecl) HasModifier(word string) bool {
	return hasModifier(d.Node, word)
}

// IsPartial reports whether the declaration is marked partial.
func (d TypeDecl) IsPartial() bool {
	return d.HasModifier("partial")
}

// Body returns the member list, nil for declarations without one.
func (d TypeDecl) Body() *Node {
	if body := d.ChildByField("body"); body != nil {
		return body
	}
	return d.FirstChildOfKind(KindDeclarationList)
}

// Members returns the member declarations in source order.
func (d TypeDecl) Members() []*Node {
	return d.Body().NamedChildren()
}

// FieldDecl is a view over a field declaration.
type FieldDecl struct{ *Node }

// AsField returns the field view of n.
func AsField(n *Node) (FieldDecl, bool) {
	if !n.Is(KindField) {
		return FieldDecl{}, false
	}
	return FieldDecl{n}, true
}

func (f FieldDecl) declaration() *Node {
	return f.FirstChildOfKind(KindVariableDecl)
}

// Type returns the declared type with whitespace collapsed.
func (f FieldDecl) Type() string {
	decl := f.declaration()
	if t := decl.ChildByField("type"); t != nil {
		return CompactText(t.Text)
	}
	for _, c := range decl.NamedChildren() {
		if c.Kind != KindVariableDeclarator {
			return CompactText(c.Text)
		}
	}
	return ""
}

// Names returns every variable the declaration introduces.
func (f FieldDecl) Names() []string {
	var names []string
	for _, v := range f.declaration().ChildrenOfKind(KindVariableDeclarator) {
		if name := v.ChildByField("name"); name != nil {
			names = append(names, name.Text)
			continue
		}
		if id := v.FirstChildOfKind(KindIdentifier); id != nil {
			names = append(names, id.Text)
		}
	}
	return names
}

// HasModifier reports whether the field carries the given modifier.
func (f FieldDecl) HasModifier(word string) bool {
	return hasModifier(f.Node, word)
}

// PropertyDecl is a view over a property declaration.
type PropertyDecl struct{ *Node }

// AsProperty returns the property view of n.
func AsProperty(n *Node) (PropertyDecl, bool) {
	if !n.Is(KindProperty) {
		return PropertyDecl{}, false
	}
	return PropertyDecl{n}, true
}

// Name returns the property identifier.
func (p PropertyDecl) Name() string {
	if name := p.ChildByField("name"); name != nil {
		return name.Text
	}
	var last string
	for _, c := range p.Children {
		if c.Is(KindAccessorList, KindArrowClause) {
			break
		}
		if c.Kind == KindIdentifier {
			last = c.Text
		}
	}
	return last
}

// Type returns the property type with whitespace collapsed.
func (p PropertyDecl) Type() string {
	if t := p.ChildByField("type"); t != nil {
		return CompactText(t.Text)
	}
	for _, c := range p.NamedChildren() {
		if c.Is(KindModifier, KindAttributeList) {
			continue
		}
		return CompactText(c.Text)
	}
	return ""
}

// Body returns the accessor list, expression body and initializer, the
// parts of a property that can read other members.
func (p PropertyDecl) Body() []*Node {
	var body []*Node
	for _, c := range p.Children {
		if c.Is(KindAccessorList, KindArrowClause) || c.Field == "accessors" || c.Field == "value" {
			body = append(body, c)
		}
	}
	return body
}

// HasModifier reports whether the property carries the given modifier.
func (p PropertyDecl) HasModifier(word string) bool {
	return hasModifier(p.Node, word)
}

func hasModifier(n *Node, word string) bool {
	for _, c := range n.Children {
		if c.Kind == KindModifier && strings.TrimSpace(c.Text) == word {
			return true
		}
		if !c.Named && c.Text == word {
			return true
		}
	}
	return false
}

// Using is one import directive.
type Using struct {
	Global bool   `json:"global,omitempty"`
	Static bool   `json:"static,omitempty"`
	Alias  string `json:"alias,omitempty"`
	Name   string `json:"name"`
	Line   int    `json:"line,omitempty"`
}

// UsingOf decodes a using directive node.
func UsingOf(n *Node) (Using, bool) {
	if !n.Is(KindUsing) {
		return Using{}, false
	}
	u := Using{Line: n.Line}
	var names []*Node
	for _, c := range n.Children {
		switch {
		case !c.Named && c.Text == "global":
			u.Global = true
		case !c.Named && c.Text == "static":
			u.Static = true
		case c.Kind == KindNameEquals:
			if id := c.FirstChildOfKind(KindIdentifier); id != nil {
				u.Alias = id.Text
			}
		case c.Field == "alias":
			u.Alias = c.Text
		case c.Named && c.Kind != KindComment:
			names = append(names, c)
		}
	}
	if len(names) > 0 {
		u.Name = StripSpace(names[len(names)-1].Text)
	}
	if u.Alias == "" && len(names) > 1 {
		// Older grammars expose "using A = B;" as two bare names.
		u.Alias = names[0].Text
	}
	return u, true
}

// String renders the directive in canonical form.
func (u Using) String() string {
	var b strings.Builder
	if u.Global {
		b.WriteString("global ")
	}
	b.WriteString("using ")
	if u.Static {
		b.WriteString("static ")
	}
	if u.Alias != "" {
		b.WriteString(u.Alias)
		b.WriteString(" = ")
	}
	b.WriteString(u.Name)
	b.WriteString(";")
	return b.String()
}
