package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/robert-at-pretension-io/notifygen/internal/generator"
)

// parserVersion changes whenever the lowering or record model changes shape.
const parserVersion = "csharp-1"

type cacheVersions struct {
	parser    string
	generator string
	output    string
}

func (v cacheVersions) key() string {
	return v.parser + "/" + v.generator + "/" + v.output
}

func (idx *Indexer) cacheVersions(opts generator.Options) cacheVersions {
	if idx.cacheVersionOverride != nil {
		return *idx.cacheVersionOverride
	}
	out := idx.Config.Output
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s", out.Naming, out.Suffix, out.Dir, idx.Config.Generator.Marker, out.LineEnding)))
	return cacheVersions{
		parser:    parserVersion,
		generator: generator.Fingerprint(opts),
		output:    hex.EncodeToString(h[:8]),
	}
}

func (idx *Indexer) resolveCacheDir(rootPath string) string {
	cacheDir := idx.Config.Analysis.Cache.Dir
	if cacheDir == "" {
		cacheDir = ".notifygen_cache"
	}
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(idx.baseDir(rootPath), cacheDir)
	}
	return cacheDir
}
