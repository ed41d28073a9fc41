package extractor

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/robert-at-pretension-io/notifygen/internal/model"
	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

// DefaultMarker is the struct name that triggers generation.
const DefaultMarker = "NotifyRecord"

// ErrParse is returned when tree-sitter yields no tree at all.
var ErrParse = errors.New("parse failed")

// Extractor uses Tree-sitter to parse C# files and find NotifyRecord
// declarations.
type Extractor struct {
	lang   *sitter.Language
	marker string
}

// FileFacts contains everything extracted from a single C# file
type FileFacts struct {
	File       string
	Root       *syntax.Node `json:"-"`
	Usings     []syntax.Using
	Containers []ContainerDecl
	Candidates []Candidate
	HasErrors  bool
	// Skipped is set when the quick scan found no marker and the file was
	// not parsed.
	Skipped bool
}

// ContainerDecl is any type declaration that encloses other types.
type ContainerDecl struct {
	Chain model.Chain
	Line  int
}

// Candidate is one record declaration eligible for generation.
type Candidate struct {
	Record *syntax.Node `json:"-"`
	Name   string
	Chain  model.Chain
	Line   int
}

// New creates an Extractor for C# with the default marker.
func New() *Extractor {
	return &Extractor{
		lang:   csharp.GetLanguage(),
		marker: DefaultMarker,
	}
}

// SetMarker changes the struct name that triggers generation.
func (e *Extractor) SetMarker(name string) {
	if name != "" {
		e.marker = name
	}
}

// Marker returns the trigger struct name.
func (e *Extractor) Marker() string {
	return e.marker
}

// Language exposes the grammar for tools that dump raw trees.
func (e *Extractor) Language() *sitter.Language {
	return e.lang
}

// Parse lowers source into a syntax tree. A tree is returned even when the
// source has syntax errors; callers check HasError.
func (e *Extractor) Parse(ctx context.Context, source []byte) (*syntax.Node, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.lang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if tree == nil {
		return nil, ErrParse
	}
	defer tree.Close()

	return lower(tree.RootNode(), source, ""), nil
}

// Extract parses one file and collects its usings, containers and records.
func (e *Extractor) Extract(ctx context.Context, filePath string, source []byte) (FileFacts, error) {
	facts := FileFacts{File: filePath}

	if !mayDeclareRecord(source, e.marker) {
		facts.Skipped = true
		facts.Usings = scanUsings(source)
		return facts, nil
	}

	root, err := e.Parse(ctx, source)
	if err != nil {
		return facts, fmt.Errorf("%s: %w", filePath, err)
	}
	facts.Root = root
	facts.HasErrors = root.HasError()

	w := walker{marker: e.marker, facts: &facts}
	w.walkUnit(root)

	return facts, nil
}
