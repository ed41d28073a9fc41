package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/robert-at-pretension-io/notifygen/internal/extractor"
	"github.com/robert-at-pretension-io/notifygen/internal/model"
)

const cacheIndexVersion = 1

// cachedUnit is the persisted form of a generated companion.
type cachedUnit struct {
	Name       string      `json:"name"`
	Chain      model.Chain `json:"chain"`
	Line       int         `json:"line"`
	OutputPath string      `json:"output_path"`
	Source     string      `json:"source"`
}

type cacheEntry struct {
	ContentHash string `json:"content_hash"`
	UnitsPath   string `json:"units_path"`
	Version     string `json:"version"`
}

type cacheIndex struct {
	Version int                   `json:"version"`
	Entries map[string]cacheEntry `json:"entries"`
}

type unitCache struct {
	fs      afero.Fs
	dir     string
	version string
	mu      sync.Mutex
	index   cacheIndex
	dirty   bool
}

func newUnitCache(fs afero.Fs, dir, version string) *unitCache {
	return &unitCache{
		fs:      fs,
		dir:     dir,
		version: version,
		index: cacheIndex{
			Version: cacheIndexVersion,
			Entries: make(map[string]cacheEntry),
		},
	}
}

func (c *unitCache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *unitCache) unitsDir() string {
	return filepath.Join(c.dir, "units")
}

func (c *unitCache) unitsPathForFile(filePath string) string {
	h := sha256.Sum256([]byte(filePath))
	return filepath.Join(c.unitsDir(), hex.EncodeToString(h[:])+".json")
}

func (c *unitCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache mkdir: %w", err)
	}
	data, err := afero.ReadFile(c.fs, c.indexPath())
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache index: %w", err)
	}
	var idx cacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("parse cache index: %w", err)
	}
	if idx.Version != cacheIndexVersion {
		return nil
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]cacheEntry)
	}
	c.index = idx
	return nil
}

func (c *unitCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	if err := writeJSONAtomic(c.fs, c.indexPath(), c.index); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

func (c *unitCache) Get(filePath, contentHash string) ([]cachedUnit, bool, error) {
	c.mu.Lock()
	entry, ok := c.index.Entries[filePath]
	c.mu.Unlock()
	if !ok || entry.ContentHash != contentHash || entry.Version != c.version {
		return nil, false, nil
	}
	data, err := afero.ReadFile(c.fs, entry.UnitsPath)
	if err != nil {
		if isNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cached units: %w", err)
	}
	var units []cachedUnit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, false, fmt.Errorf("parse cached units: %w", err)
	}
	return units, true, nil
}

func (c *unitCache) Put(filePath, contentHash string, units []cachedUnit) error {
	path := c.unitsPathForFile(filePath)
	if err := writeJSONAtomic(c.fs, path, units); err != nil {
		return err
	}
	c.mu.Lock()
	c.index.Entries[filePath] = cacheEntry{
		ContentHash: contentHash,
		UnitsPath:   path,
		Version:     c.version,
	}
	c.dirty = true
	c.mu.Unlock()
	return nil
}

func toCached(units []pendingUnit) []cachedUnit {
	out := make([]cachedUnit, len(units))
	for i, u := range units {
		out[i] = cachedUnit{
			Name:       u.candidate.Name,
			Chain:      u.candidate.Chain,
			Line:       u.candidate.Line,
			OutputPath: u.outputPath,
			Source:     string(u.source),
		}
	}
	return out
}

func fromCached(units []cachedUnit) []pendingUnit {
	out := make([]pendingUnit, len(units))
	for i, u := range units {
		out[i] = pendingUnit{
			candidate:  extractor.Candidate{Name: u.Name, Chain: u.Chain, Line: u.Line},
			container:  u.Chain.QualifiedName(),
			outputPath: u.OutputPath,
			source:     []byte(u.Source),
		}
	}
	return out
}

func writeJSONAtomic(fs afero.Fs, path string, v any) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	tmp, err := afero.TempFile(fs, dir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
