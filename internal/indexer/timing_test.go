package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
)

func TestTimingJSONLWritten(t *testing.T) {
	t.Setenv(TimingPathEnv, "")
	fs := afero.NewMemMapFs()
	writeSource(t, fs, "/proj/Point.cs", pointSource)

	idx := newTestIndexer(fs, false)
	idx.Timing = true
	idx.TimingPath = "/proj/timing.jsonl"
	if _, err := idx.Run(context.Background(), "/proj"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	raw, err := afero.ReadFile(fs, "/proj/timing.jsonl")
	if err != nil {
		t.Fatalf("read timing file: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	if len(lines) == 0 {
		t.Fatalf("expected timing events, found none")
	}

	var file fileTiming
	var total stageTiming
	for _, line := range lines {
		var head struct {
			Event string `json:"event"`
			Stage string `json:"stage"`
		}
		if err := json.Unmarshal(line, &head); err != nil {
			t.Fatalf("parse timing line: %v", err)
		}
		switch {
		case head.Event == "file":
			if err := json.Unmarshal(line, &file); err != nil {
				t.Fatalf("parse file event: %v", err)
			}
		case head.Event == "stage" && head.Stage == "total":
			if err := json.Unmarshal(line, &total); err != nil {
				t.Fatalf("parse stage event: %v", err)
			}
		}
	}

	if file.File != "/proj/Point.cs" || file.Records != 1 || file.Errors != 0 || file.CacheHit {
		t.Fatalf("unexpected file event: %+v", file)
	}
	if len(file.Containers) != 1 || file.Containers[0] != "Demo.Point" {
		t.Fatalf("file event should name the container: %+v", file.Containers)
	}
	if total.Files != 1 || total.Summary == nil || total.Summary.Written != 1 {
		t.Fatalf("total stage should carry the run summary: %+v", total)
	}
	if total.TookMS < 0 || total.AtMS < 0 {
		t.Fatalf("negative timings: %+v", total)
	}
}

func TestTimingPathResolution(t *testing.T) {
	t.Setenv(TimingPathEnv, "")
	t.Setenv(TimingEnv, "")
	idx := newTestIndexer(afero.NewMemMapFs(), false)
	if got := idx.resolveTimingPath("/proj"); got != "" {
		t.Fatalf("expected timing disabled, got %q", got)
	}

	idx.Config.Analysis.TimingPath = "out/t.jsonl"
	if got := idx.resolveTimingPath("/proj"); got != "/proj/out/t.jsonl" {
		t.Fatalf("config path not resolved: %q", got)
	}

	t.Setenv(TimingPathEnv, "/tmp/env.jsonl")
	if got := idx.resolveTimingPath("/proj"); got != "/tmp/env.jsonl" {
		t.Fatalf("env path should win: %q", got)
	}
}
