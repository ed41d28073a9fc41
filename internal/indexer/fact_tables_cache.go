package indexer

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/robert-at-pretension-io/notifygen/internal/facts"
)

const factTablesCacheVersion = 1

const factTablesFile = "fact_tables.json"

type factTablesCache struct {
	Version int          `json:"version"`
	Tables  facts.Tables `json:"tables"`
}

// LoadSnapshot returns the fact tables stored by the previous SaveSnapshot.
func (idx *Indexer) LoadSnapshot(rootPath string) (facts.Tables, bool, error) {
	return loadFactTablesCache(idx.FS, idx.resolveCacheDir(rootPath))
}

// SaveSnapshot stores tables as the baseline for the next delta.
func (idx *Indexer) SaveSnapshot(rootPath string, tables facts.Tables) error {
	return saveFactTablesCache(idx.FS, idx.resolveCacheDir(rootPath), tables)
}

func loadFactTablesCache(fs afero.Fs, dir string) (facts.Tables, bool, error) {
	path := filepath.Join(dir, factTablesFile)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if isNotExist(err) {
			return facts.Tables{}, false, nil
		}
		return facts.Tables{}, false, fmt.Errorf("read fact tables cache: %w", err)
	}
	var cache factTablesCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return facts.Tables{}, false, fmt.Errorf("parse fact tables cache: %w", err)
	}
	if cache.Version != factTablesCacheVersion {
		return facts.Tables{}, false, nil
	}
	return cache.Tables, true, nil
}

func saveFactTablesCache(fs afero.Fs, dir string, tables facts.Tables) error {
	cache := factTablesCache{
		Version: factTablesCacheVersion,
		Tables:  tables,
	}
	if err := writeJSONAtomic(fs, filepath.Join(dir, factTablesFile), cache); err != nil {
		return fmt.Errorf("write fact tables cache: %w", err)
	}
	return nil
}
