package indexer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Environment switches for timing output.
const (
	TimingPathEnv = "NOTIFYGEN_TIMING_JSONL"
	TimingEnv     = "NOTIFYGEN_TIMING"
)

// fileTiming is one JSONL line per processed source.
type fileTiming struct {
	Event      string   `json:"event"`
	File       string   `json:"file"`
	Records    int      `json:"records"`
	Containers []string `json:"containers,omitempty"`
	CacheHit   bool     `json:"cache_hit"`
	Errors     int      `json:"errors"`
	Fixed      int      `json:"fixed,omitempty"`
	AtMS       float64  `json:"at_ms"`
	TookMS     float64  `json:"took_ms"`
}

// stageTiming closes a pipeline stage; the write and total stages carry the
// run summary.
type stageTiming struct {
	Event   string   `json:"event"`
	Stage   string   `json:"stage"`
	Files   int      `json:"files"`
	Summary *Summary `json:"summary,omitempty"`
	AtMS    float64  `json:"at_ms"`
	TookMS  float64  `json:"took_ms"`
}

// runTimer appends timing lines for one batch run. A nil or disabled timer
// drops everything.
type runTimer struct {
	start time.Time
	mu    sync.Mutex
	file  afero.File
	enc   *json.Encoder
	err   error
}

func newRunTimer(fs afero.Fs, start time.Time, path string) *runTimer {
	rt := &runTimer{start: start}
	if path == "" {
		return rt
	}
	if dir := filepath.Dir(path); dir != "" {
		_ = fs.MkdirAll(dir, 0o755)
	}
	f, err := fs.Create(path)
	if err != nil {
		rt.err = err
		return rt
	}
	rt.file = f
	rt.enc = json.NewEncoder(f)
	return rt
}

func (rt *runTimer) Err() error {
	if rt == nil {
		return nil
	}
	return rt.err
}

func (rt *runTimer) Close() {
	if rt == nil || rt.file == nil {
		return
	}
	_ = rt.file.Close()
}

// FileDone records the outcome of extracting and generating one source.
func (rt *runTimer) FileDone(out *fileOutcome, began time.Time) {
	if rt == nil || rt.enc == nil {
		return
	}
	ev := fileTiming{
		Event:    "file",
		File:     out.path,
		Records:  len(out.units),
		CacheHit: out.cacheHit,
		Errors:   len(out.errs),
		Fixed:    len(out.fixed),
		AtMS:     millis(began.Sub(rt.start)),
		TookMS:   millis(time.Since(began)),
	}
	for _, u := range out.units {
		ev.Containers = append(ev.Containers, u.container)
	}
	rt.emit(ev)
}

// StageDone records a finished stage over files sources.
func (rt *runTimer) StageDone(stage string, files int, summary *Summary, began time.Time) {
	if rt == nil || rt.enc == nil {
		return
	}
	rt.emit(stageTiming{
		Event:   "stage",
		Stage:   stage,
		Files:   files,
		Summary: summary,
		AtMS:    millis(began.Sub(rt.start)),
		TookMS:  millis(time.Since(began)),
	})
}

func (rt *runTimer) emit(v any) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	_ = rt.enc.Encode(v)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// resolveTimingPath picks the JSONL destination: env path, then the flag,
// then analysis.timingPath from config.
func (idx *Indexer) resolveTimingPath(rootPath string) string {
	if idx == nil {
		return ""
	}
	if envPath := os.Getenv(TimingPathEnv); envPath != "" {
		return envPath
	}
	base := idx.baseDir(rootPath)
	if idx.Timing || envBool(TimingEnv) {
		if idx.TimingPath != "" {
			return idx.TimingPath
		}
		return filepath.Join(base, "timing.jsonl")
	}
	if p := idx.Config.Analysis.TimingPath; p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		return p
	}
	return ""
}
