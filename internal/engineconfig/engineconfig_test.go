package engineconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("store_path: /tmp/vocab.db\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != "/tmp/vocab.db" {
		t.Fatalf("StorePath = %q, want /tmp/vocab.db", cfg.StorePath)
	}
	if cfg.MinConfidence != 0.6 || cfg.MaxPerSystem != 5 || cfg.BatchChunkSize != 5 || cfg.FuzzyThreshold != 0.7 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	body := `
store_path: /tmp/vocab.db
synonyms_path: /tmp/synonyms.json
min_confidence: 0.75
max_per_system: 3
batch_chunk_size: 10
batch_chunk_delay: 250ms
snomed_adapter:
  base_url: https://snomed.example.org
  timeout: 2s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinConfidence != 0.75 || cfg.MaxPerSystem != 3 || cfg.BatchChunkSize != 10 {
		t.Fatalf("explicit values overridden: %+v", cfg)
	}
	if cfg.BatchChunkDelay != Duration(250*time.Millisecond) {
		t.Fatalf("BatchChunkDelay = %v, want 250ms", cfg.BatchChunkDelay)
	}
	if cfg.SNOMEDAdapter.BaseURL != "https://snomed.example.org" || cfg.SNOMEDAdapter.Timeout != Duration(2*time.Second) {
		t.Fatalf("SNOMEDAdapter = %+v", cfg.SNOMEDAdapter)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.MinConfidence != 0.6 || d.MaxPerSystem != 5 || d.BatchChunkSize != 5 || d.FuzzyThreshold != 0.7 || d.BatchChunkDelay != Duration(500*time.Millisecond) {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}
