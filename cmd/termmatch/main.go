// Command termmatch is a single-binary, many-verbs CLI front end over the
// medical-term fuzzy matching engine: map, batch, add-synonym, systems.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cognicore/termmatch/internal/engineconfig"
	"github.com/cognicore/termmatch/internal/lookup"
	"github.com/cognicore/termmatch/internal/variation"
	"github.com/cognicore/termmatch/internal/vocab"
	"github.com/cognicore/termmatch/internal/vocab/sqlite"
	"github.com/cognicore/termmatch/pkg/termmatch"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: termmatch <map|batch|add-synonym|systems> [flags]")
	}

	switch os.Args[1] {
	case "map":
		runMap(os.Args[2:])
	case "batch":
		runBatch(os.Args[2:])
	case "add-synonym":
		runAddSynonym(os.Args[2:])
	case "systems":
		runSystems(os.Args[2:])
	default:
		log.Fatalf("unknown subcommand %q: want map, batch, add-synonym, or systems", os.Args[1])
	}
}

func runMap(args []string) {
	fs := newFlagSet("map")
	cfgPath := fs.String("config", "", "Path to engine config YAML (required)")
	term := fs.String("term", "", "Term to map (required)")
	vocabs := fs.String("vocabularies", "", "Comma-separated vocabularies (default: all)")
	callerContext := fs.String("context", "", "Optional caller-supplied clinical context")
	maxPerSystem := fs.Int("max-per-system", 5, "Maximum rows per vocabulary")
	fuzzyThreshold := fs.Float64("fuzzy-threshold", 0, "Minimum local-match score, 0-1 scale (default from config)")
	fs.Parse(args)

	requireFlag(*cfgPath, "--config")
	requireFlag(*term, "--term")

	ctx := context.Background()
	engine, cfg, cleanup := mustBuildEngine(ctx, *cfgPath)
	defer cleanup()

	threshold := *fuzzyThreshold
	if threshold <= 0 {
		threshold = cfg.FuzzyThreshold
	}

	results, err := engine.MapTerm(ctx, termmatch.MapTermRequest{
		Term:           *term,
		Vocabularies:   parseVocabularies(*vocabs),
		FuzzyThreshold: threshold,
		Context:        *callerContext,
		MaxPerSystem:   *maxPerSystem,
	})
	if err != nil {
		log.Fatalf("map_term: %v", err)
	}
	printJSON(results)
}

func runBatch(args []string) {
	fs := newFlagSet("batch")
	cfgPath := fs.String("config", "", "Path to engine config YAML (required)")
	termsFlag := fs.String("terms", "", "Comma-separated terms (required)")
	vocabs := fs.String("vocabularies", "", "Comma-separated vocabularies (default: all)")
	minConfidence := fs.Float64("min-confidence", 0, "Minimum confidence to keep a result row (default from config)")
	fuzzyThreshold := fs.Float64("fuzzy-threshold", 0, "Minimum local-match score, 0-1 scale (default from config)")
	fs.Parse(args)

	requireFlag(*cfgPath, "--config")
	requireFlag(*termsFlag, "--terms")

	ctx := context.Background()
	engine, cfg, cleanup := mustBuildEngine(ctx, *cfgPath)
	defer cleanup()

	terms := strings.Split(*termsFlag, ",")
	for i := range terms {
		terms[i] = strings.TrimSpace(terms[i])
	}

	minConf := *minConfidence
	if minConf <= 0 {
		minConf = cfg.MinConfidence
	}
	threshold := *fuzzyThreshold
	if threshold <= 0 {
		threshold = cfg.FuzzyThreshold
	}

	results, err := engine.BatchMapTerms(ctx, terms, termmatch.BatchOptions{
		Vocabularies:   parseVocabularies(*vocabs),
		FuzzyThreshold: threshold,
		MinConfidence:  minConf,
		ChunkSize:      cfg.BatchChunkSize,
		ChunkDelay:     time.Duration(cfg.BatchChunkDelay),
	})
	if err != nil {
		log.Fatalf("batch_map_terms: %v", err)
	}
	printJSON(results)
}

func runAddSynonym(args []string) {
	fs := newFlagSet("add-synonym")
	cfgPath := fs.String("config", "", "Path to engine config YAML (required)")
	term := fs.String("term", "", "Term to cluster (required)")
	synonymsFlag := fs.String("synonyms", "", "Comma-separated synonym strings (required)")
	fs.Parse(args)

	requireFlag(*cfgPath, "--config")
	requireFlag(*term, "--term")
	requireFlag(*synonymsFlag, "--synonyms")

	ctx := context.Background()
	engine, _, cleanup := mustBuildEngine(ctx, *cfgPath)
	defer cleanup()

	synonyms := strings.Split(*synonymsFlag, ",")
	for i := range synonyms {
		synonyms[i] = strings.TrimSpace(synonyms[i])
	}

	ok := engine.AddSynonym(ctx, *term, synonyms)
	printJSON(map[string]bool{"added": ok})
}

func runSystems(args []string) {
	fs := newFlagSet("systems")
	cfgPath := fs.String("config", "", "Path to engine config YAML (required)")
	fs.Parse(args)

	requireFlag(*cfgPath, "--config")

	ctx := context.Background()
	engine, _, cleanup := mustBuildEngine(ctx, *cfgPath)
	defer cleanup()

	printJSON(engine.GetSystemsInfo())
}

func mustBuildEngine(ctx context.Context, cfgPath string) (*termmatch.Engine, engineconfig.EngineConfig, func()) {
	cfg, err := engineconfig.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := sqlite.Open(ctx, cfg.StorePath)
	if err != nil {
		log.Fatalf("open vocabulary store: %v", err)
	}

	synonyms, err := variation.LoadSynonymStore(cfg.SynonymsPath)
	if err != nil {
		log.Fatalf("load synonyms: %v", err)
	}

	indexes := termmatch.BuildIndexes(ctx, store, synonyms, nil)
	adapters := buildAdapters(cfg)
	engine := termmatch.New(indexes, adapters, synonyms, nil)

	return engine, cfg, func() { store.Close() }
}

func buildAdapters(cfg engineconfig.EngineConfig) map[vocab.System]lookup.Adapter {
	adapters := make(map[vocab.System]lookup.Adapter)

	if cfg.SNOMEDAdapter.BaseURL != "" {
		adapters[vocab.SNOMED] = &lookup.SNOMEDAdapter{
			BaseURL: cfg.SNOMEDAdapter.BaseURL,
			Timeout: orDefault(time.Duration(cfg.SNOMEDAdapter.Timeout), 5*time.Second),
		}
	}

	var loincFallback *lookup.ClinicalTablesAdapter
	if cfg.ClinicalTables.BaseURL != "" {
		loincFallback = &lookup.ClinicalTablesAdapter{
			BaseURL: cfg.ClinicalTables.BaseURL,
			Table:   "loinc_items",
			Timeout: orDefault(time.Duration(cfg.ClinicalTables.Timeout), 5*time.Second),
		}
		adapters[vocab.LOINC] = loincFallback
	}

	if cfg.RxNormAdapter.BaseURL != "" || cfg.ClinicalTables.BaseURL != "" {
		var rxFallback *lookup.ClinicalTablesAdapter
		if cfg.ClinicalTables.BaseURL != "" {
			rxFallback = &lookup.ClinicalTablesAdapter{
				BaseURL: cfg.ClinicalTables.BaseURL,
				Table:   "rxterms",
				Timeout: orDefault(time.Duration(cfg.ClinicalTables.Timeout), 5*time.Second),
			}
		}
		adapters[vocab.RxNorm] = &lookup.RxNormAdapter{
			BaseURL:  cfg.RxNormAdapter.BaseURL,
			Timeout:  orDefault(time.Duration(cfg.RxNormAdapter.Timeout), 5*time.Second),
			Fallback: rxFallback,
		}
	}

	return adapters
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func parseVocabularies(s string) []vocab.System {
	if s == "" {
		return nil
	}
	var out []vocab.System
	for _, part := range strings.Split(s, ",") {
		out = append(out, vocab.System(strings.TrimSpace(part)))
	}
	return out
}

func requireFlag(v, name string) {
	if v == "" {
		log.Fatalf("%s required", name)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal output: %v", err)
	}
	fmt.Println(string(out))
}
