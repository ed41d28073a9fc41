package generator

import (
	"bytes"
	"strings"
)

type printer struct {
	buf     bytes.Buffer
	indent  string
	newline string
}

// Render prints a unit: usings, a blank line, then the declaration tree.
// Members of different groups are separated by exactly one blank line.
func Render(u *Unit, opts Options) []byte {
	p := &printer{indent: opts.Indent, newline: opts.Newline}
	if p.indent == "" {
		p.indent = "    "
	}
	if p.newline == "" {
		p.newline = "\n"
	}

	for _, us := range u.Usings {
		p.line(0, us.String())
	}
	if len(u.Usings) > 0 && u.Root != nil {
		p.blank()
	}
	if u.Root != nil {
		p.decl(u.Root, 0)
	}
	return p.buf.Bytes()
}

func (p *printer) decl(d *Decl, depth int) {
	p.line(depth, d.Header())
	p.line(depth, "{")
	if d.Nested != nil {
		p.decl(d.Nested, depth+1)
	}
	for i, m := range d.Members {
		if i > 0 && m.Group != d.Members[i-1].Group {
			p.blank()
		}
		for _, c := range m.Leading.Comments {
			p.comment(depth+1, c)
		}
		text := m.Text
		if len(m.Trailing.Comments) > 0 {
			text += " " + strings.Join(m.Trailing.Comments, " ")
		}
		p.line(depth+1, text)
	}
	p.line(depth, "}")
}

// comment prints a leading comment. Continuation lines of block comments
// are kept as written.
func (p *printer) comment(depth int, text string) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	p.line(depth, strings.TrimSpace(lines[0]))
	for _, l := range lines[1:] {
		p.buf.WriteString(strings.TrimRight(l, " \t"))
		p.buf.WriteString(p.newline)
	}
}

func (p *printer) line(depth int, text string) {
	p.buf.WriteString(strings.Repeat(p.indent, depth))
	p.buf.WriteString(text)
	p.buf.WriteString(p.newline)
}

func (p *printer) blank() {
	p.buf.WriteString(p.newline)
}
