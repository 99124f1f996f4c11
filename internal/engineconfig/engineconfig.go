// Package engineconfig loads the YAML engine configuration: store
// location, synonyms file path, external adapter settings, and default
// thresholds. The KnowledgeTables of the variation generator are
// deliberately NOT part of this config — they stay Go constants, while
// the store path, synonyms file, adapter endpoints, and thresholds
// remain operator-tunable.
package engineconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML duration strings ("250ms", "2s") into a
// time.Duration. yaml.v3 has no built-in support for time.Duration, so
// this wraps it with UnmarshalYAML the same way a custom scalar type is
// handled when the raw library type can't decode a plain string.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("engineconfig: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// AdapterConfig configures one external lookup adapter's base URL and
// per-call timeout.
type AdapterConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// EngineConfig is the top-level YAML document consumed by cmd/termmatch
// to stand up an Engine.
type EngineConfig struct {
	// StorePath is the SQLite database path holding the three concept
	// tables.
	StorePath string `yaml:"store_path"`

	// SynonymsPath is the JSON synonyms file, distinct from any YAML
	// bootstrap seed below.
	SynonymsPath string `yaml:"synonyms_path"`

	// SynonymSeedPath is parsed from the config file but nothing reads
	// it: cmd/termmatch loads synonyms only from SynonymsPath, and no
	// seed file is loaded at startup.
	SynonymSeedPath string `yaml:"synonym_seed_path,omitempty"`

	SNOMEDAdapter  AdapterConfig `yaml:"snomed_adapter"`
	ClinicalTables AdapterConfig `yaml:"clinical_tables_adapter"`
	RxNormAdapter  AdapterConfig `yaml:"rxnorm_adapter"`

	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	MinConfidence  float64 `yaml:"min_confidence"`
	MaxPerSystem   int     `yaml:"max_per_system"`

	BatchChunkSize  int      `yaml:"batch_chunk_size"`
	BatchChunkDelay Duration `yaml:"batch_chunk_delay"`
}

// Defaults returns the baseline operating parameters: fuzzy matcher
// thresholds are per-scorer (match package), but the engine-level floor,
// batch chunk size, inter-chunk delay, and min_confidence filter default
// as below.
func Defaults() EngineConfig {
	return EngineConfig{
		FuzzyThreshold:  0.7,
		MinConfidence:   0.6,
		MaxPerSystem:    5,
		BatchChunkSize:  5,
		BatchChunkDelay: Duration(500 * time.Millisecond),
	}
}

// Load reads and parses path, applying Defaults() for any zero-valued
// field the file omits.
func Load(path string) (EngineConfig, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("engineconfig: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("engineconfig: parse %s: %w", path, err)
	}

	if cfg.BatchChunkSize <= 0 {
		cfg.BatchChunkSize = 5
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.MaxPerSystem <= 0 {
		cfg.MaxPerSystem = 5
	}
	if cfg.FuzzyThreshold == 0 {
		cfg.FuzzyThreshold = 0.7
	}

	return cfg, nil
}
