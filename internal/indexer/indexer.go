package indexer

// The indexer drives a generation run: discover sources, extract records,
// generate companions in parallel, then write outputs in a single
// sequential pass so collisions and write order are deterministic.
//
// It should NOT work around extraction bugs. If a record is read wrongly,
// fix the lowering in internal/extractor or the model builder; the CUE
// schemas in internal/validator catch fact rows that drift from what the
// lint policy expects.

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/robert-at-pretension-io/notifygen/internal/config"
	"github.com/robert-at-pretension-io/notifygen/internal/extractor"
	"github.com/robert-at-pretension-io/notifygen/internal/facts"
	"github.com/robert-at-pretension-io/notifygen/internal/generator"
	"github.com/robert-at-pretension-io/notifygen/internal/logger"
	"github.com/robert-at-pretension-io/notifygen/internal/model"
)

// ErrCollision is reported when two containers map to the same output file.
var ErrCollision = errors.New("output path collision")

const memoSize = 1024

// Unit statuses reported per generated companion.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusStale     = "stale"
	StatusMissing   = "missing"
	StatusFailed    = "failed"
)

// Indexer generates companions for every record under a root.
type Indexer struct {
	// Configuration loaded from notifygen.json / notifygen.yaml
	Config *config.Config

	// FS is where sources are read and outputs written
	FS afero.Fs

	// Log receives progress and per-file diagnostics
	Log logger.Logger

	// Verbose logs every unit and its dependency map
	Verbose bool

	// Check reports stale outputs without writing anything
	Check bool

	// FixPartial inserts missing partial modifiers into sources
	FixPartial bool

	// NoCache bypasses the on-disk and in-memory generation caches
	NoCache bool

	// PolicyDirs holds extra .rego modules for Lint
	PolicyDirs []string

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	// Optional extractor factory (for tests)
	extractorFactory func() SourceExtractor

	// Optional cache version override (for tests)
	cacheVersionOverride *cacheVersions

	memo *lru.Cache[string, []cachedUnit]
}

// SourceExtractor abstracts extraction for caching tests
type SourceExtractor interface {
	Extract(ctx context.Context, path string, source []byte) (extractor.FileFacts, error)
}

// Result is the outcome of a generation run
type Result struct {
	Files   []FileResult `json:"files"`
	Summary Summary      `json:"summary"`
	Errors  []FileError  `json:"errors,omitempty"`

	sources []facts.Source
}

// FileResult lists the companions produced for one source file
type FileResult struct {
	Path     string       `json:"path"`
	Units    []UnitResult `json:"units"`
	CacheHit bool         `json:"cache_hit,omitempty"`
	Fixed    []string     `json:"fixed_partial,omitempty"`
}

// UnitResult is one companion file
type UnitResult struct {
	Container string `json:"container"`
	Output    string `json:"output"`
	Status    string `json:"status"`
}

// Summary provides aggregate counts
type Summary struct {
	Files     int `json:"files"`
	Records   int `json:"records"`
	Written   int `json:"written"`
	Unchanged int `json:"unchanged"`
	Stale     int `json:"stale"`
	Failed    int `json:"failed"`
	Fixed     int `json:"fixed"`
}

// FileError is a failure confined to one file or container
type FileError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// New creates an Indexer with default configuration on the real filesystem
func New() *Indexer {
	memo, _ := lru.New[string, []cachedUnit](memoSize)
	return &Indexer{
		Config: config.DefaultConfig(),
		FS:     afero.NewOsFs(),
		Log:    logger.Default(),
		memo:   memo,
	}
}

// NewWithConfig creates a new Indexer with the given configuration
func NewWithConfig(cfg *config.Config) *Indexer {
	idx := New()
	idx.Config = cfg
	return idx
}

func (idx *Indexer) newExtractor() SourceExtractor {
	if idx.extractorFactory != nil {
		return idx.extractorFactory()
	}
	ext := extractor.New()
	ext.SetMarker(idx.Config.Generator.Marker)
	return ext
}

// GeneratorOptions converts configuration into generator options.
func GeneratorOptions(cfg *config.Config) generator.Options {
	opts := generator.DefaultOptions()
	gen := cfg.Generator
	if gen.BackingField != "" {
		opts.BackingField = gen.BackingField
	}
	if gen.NotifyMethod != "" {
		opts.NotifyMethod = gen.NotifyMethod
	}
	if gen.SetMethod != "" {
		opts.SetMethod = gen.SetMethod
	}
	if gen.SupportNamespace != "" {
		opts.SupportNamespace = gen.SupportNamespace
	}
	if gen.SetterStyle != "" {
		opts.SetterStyle = generator.SetterStyle(gen.SetterStyle)
	}
	opts.KeepDuplicateNotifications = gen.KeepDuplicateNotifications
	if cfg.Output.LineEnding == "crlf" {
		opts.Newline = "\r\n"
	}
	return opts
}

// Discover returns the source files under rootPath. A file path is returned
// as is.
func (idx *Indexer) Discover(rootPath string) ([]string, error) {
	info, err := idx.FS.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", rootPath, err)
	}
	if !info.IsDir() {
		return []string{rootPath}, nil
	}
	if !filepath.IsAbs(rootPath) {
		if abs, err := filepath.Abs(rootPath); err == nil {
			rootPath = abs
		}
	}

	rel, err := idx.Config.ResolveSources(afero.NewIOFS(afero.NewBasePathFs(idx.FS, rootPath)))
	if err != nil {
		return nil, fmt.Errorf("resolve sources: %w", err)
	}
	files := make([]string, len(rel))
	for i, f := range rel {
		files[i] = filepath.Join(rootPath, filepath.FromSlash(f))
	}
	return files, nil
}

// Run generates companions for every source under rootPath.
func (idx *Indexer) Run(ctx context.Context, rootPath string) (*Result, error) {
	files, err := idx.Discover(rootPath)
	if err != nil {
		return nil, err
	}
	return idx.RunFiles(ctx, rootPath, files)
}

// RunFiles generates companions for the given files only.
func (idx *Indexer) RunFiles(ctx context.Context, rootPath string, files []string) (*Result, error) {
	return idx.run(ctx, rootPath, files, runMode{write: !idx.Check, useCache: !idx.NoCache && !idx.FixPartial})
}

// Analyze runs extraction and generation without writing or caching. The
// result carries the facts needed by Tables and Lint.
func (idx *Indexer) Analyze(ctx context.Context, rootPath string) (*Result, error) {
	files, err := idx.Discover(rootPath)
	if err != nil {
		return nil, err
	}
	return idx.run(ctx, rootPath, files, runMode{})
}

type runMode struct {
	write    bool
	useCache bool
}

// pendingUnit is a generated companion waiting for the write pass.
type pendingUnit struct {
	candidate  extractor.Candidate
	definition *model.RecordDefinition
	container  string
	outputPath string
	source     []byte
}

type fileOutcome struct {
	path     string
	facts    extractor.FileFacts
	units    []pendingUnit
	errs     []error
	cacheHit bool
	fixed    []string
}

func (idx *Indexer) run(ctx context.Context, rootPath string, files []string, mode runMode) (*Result, error) {
	runStart := time.Now()
	if idx.Config == nil {
		cfg, err := config.Load(rootPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		idx.Config = cfg
	}
	if idx.FS == nil {
		idx.FS = afero.NewOsFs()
	}
	if idx.Log == nil {
		idx.Log = logger.FromContext(ctx)
	}
	if idx.memo == nil {
		idx.memo, _ = lru.New[string, []cachedUnit](memoSize)
	}

	timing := newRunTimer(idx.FS, runStart, idx.resolveTimingPath(rootPath))
	if err := timing.Err(); err != nil {
		idx.Log.Warn("timing output disabled", "error", err)
	}
	defer timing.Close()

	opts := GeneratorOptions(idx.Config)
	versions := idx.cacheVersions(opts)

	var cache *unitCache
	if mode.useCache && idx.Config.Analysis.Cache.Enabled {
		cache = newUnitCache(idx.FS, idx.resolveCacheDir(rootPath), versions.key())
		if err := cache.Load(); err != nil {
			idx.Log.Warn("cache disabled", "error", err)
			cache = nil
		}
	}

	// 1. Parallel extraction and generation
	stepStart := time.Now()
	ext := idx.newExtractor()
	outcomes := make([]fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.parallelism())
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileStart := time.Now()
			outcomes[i] = idx.processFile(gctx, ext, cache, opts, versions, rootPath, file, mode)
			timing.FileDone(&outcomes[i], fileStart)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	timing.StageDone("generate", len(files), nil, stepStart)

	// 2. Sequential write pass
	stepStart = time.Now()
	result := idx.writeOutputs(outcomes, mode)
	timing.StageDone("write", len(files), &result.Summary, stepStart)

	if cache != nil {
		if err := cache.Save(); err != nil {
			idx.Log.Warn("cache save failed", "error", err)
		}
	}

	timing.StageDone("total", len(files), &result.Summary, runStart)
	return result, nil
}

func (idx *Indexer) processFile(
	ctx context.Context,
	ext SourceExtractor,
	cache *unitCache,
	opts generator.Options,
	versions cacheVersions,
	rootPath, file string,
	mode runMode,
) fileOutcome {
	out := fileOutcome{path: file}

	source, err := afero.ReadFile(idx.FS, file)
	if err != nil {
		out.errs = append(out.errs, fmt.Errorf("reading file: %w", err))
		return out
	}
	contentHash := hashBytes(source)
	memoKey := file + "\x00" + contentHash + "\x00" + versions.key()

	if mode.useCache {
		if units, ok := idx.memo.Get(memoKey); ok {
			out.units = fromCached(units)
			out.cacheHit = true
			return out
		}
		if cache != nil {
			units, ok, err := cache.Get(file, contentHash)
			if err != nil {
				idx.Log.Debug("cache read failed", "file", file, "error", err)
			}
			if ok {
				idx.memo.Add(memoKey, units)
				out.units = fromCached(units)
				out.cacheHit = true
				return out
			}
		}
	}

	fileFacts, err := ext.Extract(ctx, file, source)
	if err != nil {
		out.errs = append(out.errs, err)
		return out
	}
	out.facts = fileFacts
	if fileFacts.HasErrors {
		idx.Log.Warn("syntax errors in source", "file", file)
	}

	for _, cand := range fileFacts.Candidates {
		res, err := generator.Generate(generator.Input{
			Record: cand.Record,
			Chain:  cand.Chain,
			Usings: fileFacts.Usings,
		}, opts)
		if err != nil {
			out.errs = append(out.errs, err)
			continue
		}
		out.units = append(out.units, pendingUnit{
			candidate:  cand,
			definition: res.Definition,
			container:  cand.Chain.QualifiedName(),
			outputPath: idx.outputPath(rootPath, file, cand.Chain),
			source:     res.Source,
		})
		if idx.Verbose {
			idx.Log.Debug("dependency map", "container", cand.Chain.QualifiedName(), "report", formatDependencyReport(res.Definition))
		}
	}

	if idx.FixPartial && len(fileFacts.Candidates) > 0 {
		fixedSource, fixed := extractor.AddPartialModifiers(source, fileFacts.Candidates)
		if len(fixed) > 0 {
			for _, c := range fixed {
				out.fixed = append(out.fixed, c.DisplayName())
			}
			if mode.write {
				if err := afero.WriteFile(idx.FS, file, fixedSource, 0o644); err != nil {
					out.errs = append(out.errs, fmt.Errorf("adding partial modifiers: %w", err))
				}
			}
		}
	}

	if mode.useCache && len(out.errs) == 0 {
		units := toCached(out.units)
		idx.memo.Add(memoKey, units)
		if cache != nil {
			if err := cache.Put(file, contentHash, units); err != nil {
				idx.Log.Debug("cache write failed", "file", file, "error", err)
			}
		}
	}
	return out
}

func (idx *Indexer) writeOutputs(outcomes []fileOutcome, mode runMode) *Result {
	result := &Result{Files: []FileResult{}}
	claimed := make(map[string]string)

	for _, o := range outcomes {
		fr := FileResult{Path: o.path, Units: []UnitResult{}, CacheHit: o.cacheHit, Fixed: o.fixed}
		src := facts.Source{Facts: o.facts}
		if src.Facts.File == "" {
			src.Facts.File = o.path
			src.Facts.Skipped = o.cacheHit
		}

		for _, err := range o.errs {
			result.Errors = append(result.Errors, FileError{File: o.path, Message: err.Error()})
			result.Summary.Failed++
		}

		for _, u := range o.units {
			result.Summary.Records++
			ur := UnitResult{Container: u.container, Output: u.outputPath}

			if owner, taken := claimed[u.outputPath]; taken {
				err := fmt.Errorf("%w: %s and %s both generate %s", ErrCollision, owner, u.container, u.outputPath)
				result.Errors = append(result.Errors, FileError{File: o.path, Message: err.Error()})
				result.Summary.Failed++
				ur.Status = StatusFailed
				fr.Units = append(fr.Units, ur)
				continue
			}
			claimed[u.outputPath] = u.container

			existing, readErr := afero.ReadFile(idx.FS, u.outputPath)
			exists := readErr == nil
			upToDate := exists && bytes.Equal(existing, u.source)

			switch {
			case upToDate:
				ur.Status = StatusUnchanged
				result.Summary.Unchanged++
			case !mode.write && exists:
				ur.Status = StatusStale
				result.Summary.Stale++
			case !mode.write:
				ur.Status = StatusMissing
				result.Summary.Stale++
			default:
				if err := idx.writeFile(u.outputPath, u.source); err != nil {
					result.Errors = append(result.Errors, FileError{File: o.path, Message: err.Error()})
					result.Summary.Failed++
					ur.Status = StatusFailed
					break
				}
				ur.Status = StatusWritten
				result.Summary.Written++
				exists, upToDate = true, true
			}

			if idx.Verbose {
				idx.Log.Info("companion", "container", u.container, "output", u.outputPath, "status", ur.Status)
			}
			fr.Units = append(fr.Units, ur)
			src.Units = append(src.Units, facts.Unit{
				Candidate:  u.candidate,
				Definition: u.definition,
				OutputPath: u.outputPath,
				Exists:     exists,
				UpToDate:   upToDate,
			})
		}

		result.Summary.Fixed += len(o.fixed)
		result.Files = append(result.Files, fr)
		result.sources = append(result.sources, src)
	}

	result.Summary.Files = len(outcomes)
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].File < result.Errors[j].File })
	return result
}

func (idx *Indexer) writeFile(path string, data []byte) error {
	if err := idx.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := afero.WriteFile(idx.FS, path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// outputPath names the companion of a container.
func (idx *Indexer) outputPath(rootPath, sourceFile string, chain model.Chain) string {
	var name string
	switch idx.Config.Output.Naming {
	case "hint":
		name = chain.HintName() + ".g.cs"
	default:
		name = chain.Innermost().Name + idx.Config.Output.Suffix
	}

	dir := filepath.Dir(sourceFile)
	if outDir := idx.Config.Output.Dir; outDir != "" {
		dir = outDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(idx.baseDir(rootPath), dir)
		}
	}
	return filepath.Join(dir, name)
}

func (idx *Indexer) baseDir(rootPath string) string {
	if info, err := idx.FS.Stat(rootPath); err == nil && !info.IsDir() {
		return filepath.Dir(rootPath)
	}
	return rootPath
}

func (idx *Indexer) parallelism() int {
	if n := idx.Config.Analysis.MaxParallelFiles; n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Sources exposes the analysed files of a result for fact building.
func (r *Result) Sources() []facts.Source {
	return r.sources
}

// Tables flattens the result into fact relations.
func (r *Result) Tables() facts.Tables {
	return facts.BuildTables(r.sources)
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func envBool(key string) bool {
	v := os.Getenv(key)
	return v == "1" || v == "true" || v == "yes"
}

// isNotExist reports missing files on any afero backend.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err)
}
