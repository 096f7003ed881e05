// Command mealadmin maintains the meal directory: it rebuilds the
// embedding index, surfaces likely duplicates, searches the index and
// merges duplicates into canonical records.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/crwntec/mensaLog/config"
	"github.com/crwntec/mensaLog/emb"
	"github.com/crwntec/mensaLog/ingest"
	"github.com/crwntec/mensaLog/intelligence"
	"github.com/crwntec/mensaLog/store"
)

type cliOptions struct {
	configPath string
	command    string
	args       []string

	threshold float64
	apply     bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("mealadmin: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("mealadmin: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "config.yaml", "Path to the YAML config file")
	flag.Float64Var(&opts.threshold, "threshold", float64(intelligence.AdminSweepThreshold), "Similarity threshold for find-dupes and merge")
	flag.BoolVar(&opts.apply, "apply", false, "Apply merges instead of printing the dry run")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s [options] COMMAND [args]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  index              embed every meal missing from the cache")
		fmt.Fprintln(out, "  find-dupes         list meal pairs above the threshold")
		fmt.Fprintln(out, "  search QUERY       rank meals against a free-text query")
		fmt.Fprintln(out, "  merge              collapse duplicates (dry run unless --apply)")
		fmt.Fprintln(out, "  import DIR         ingest an archive directory")
		fmt.Fprintln(out, "\nOptions:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return opts, errors.New("missing command")
	}
	opts.command = flag.Arg(0)
	opts.args = flag.Args()[1:]
	return opts, nil
}

func run(opts cliOptions) error {
	logger := log.New(os.Stderr, "[mealadmin] ", log.LstdFlags)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	encoder := &emb.Encoder{}
	if err := encoder.Init(emb.Config{
		OrtDLL:        cfg.Embedder.OrtDLL,
		ModelPath:     cfg.Embedder.ModelPath,
		TokenizerPath: cfg.Embedder.TokenizerPath,
		MaxSeqLen:     cfg.Embedder.MaxSeqLen,
	}); err != nil {
		return fmt.Errorf("init encoder: %w", err)
	}
	defer encoder.Close()

	vectors := intelligence.NewEmbeddingStore(cfg.CacheFile)
	if err := vectors.Restore(); err != nil {
		return fmt.Errorf("restore embedding cache: %w", err)
	}
	resolver := intelligence.NewResolver(encoder, vectors, st, logger)

	switch opts.command {
	case "index":
		return runIndex(resolver)
	case "find-dupes":
		return runFindDupes(resolver, st, float32(opts.threshold))
	case "search":
		if len(opts.args) != 1 {
			return errors.New("search needs exactly one QUERY argument")
		}
		return runSearch(resolver, st, opts.args[0])
	case "merge":
		return runMerge(resolver, float32(opts.threshold), opts.apply)
	case "import":
		if len(opts.args) != 1 {
			return errors.New("import needs exactly one DIR argument")
		}
		return runImport(st, resolver, logger, opts.args[0])
	}
	flag.Usage()
	return fmt.Errorf("unknown command %q", opts.command)
}

func runIndex(resolver *intelligence.Resolver) error {
	indexed, err := resolver.IndexAll()
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d meals, %d vectors cached\n", indexed, resolver.Store().Len())
	return nil
}

func runFindDupes(resolver *intelligence.Resolver, st *store.Store, threshold float32) error {
	if _, err := resolver.IndexAll(); err != nil {
		return err
	}
	pairs := resolver.FindDuplicates(threshold)
	for _, pair := range pairs {
		nameA, _ := st.MealName(pair.A)
		nameB, _ := st.MealName(pair.B)
		fmt.Printf("%.4f  %d %-50s  %d %s\n", pair.Score, pair.A, nameA, pair.B, nameB)
	}
	fmt.Printf("%d pairs above %.3f\n", len(pairs), threshold)
	return nil
}

func runSearch(resolver *intelligence.Resolver, st *store.Store, query string) error {
	if _, err := resolver.IndexAll(); err != nil {
		return err
	}
	matches, err := resolver.Rank(query, intelligence.SearchTopK, intelligence.SearchMinScore)
	if err != nil {
		return err
	}
	for _, m := range matches {
		name, err := st.MealName(m.ID)
		if err != nil {
			continue
		}
		fmt.Printf("%.4f  %d  %s\n", m.Score, m.ID, name)
	}
	return nil
}

func runMerge(resolver *intelligence.Resolver, threshold float32, apply bool) error {
	if _, err := resolver.IndexAll(); err != nil {
		return err
	}
	merged, err := resolver.MergeDuplicates(threshold, apply)
	if err != nil {
		return err
	}
	if apply {
		fmt.Printf("merged %d duplicates\n", merged)
	} else {
		fmt.Printf("dry run: %d duplicates would be merged, rerun with --apply\n", merged)
	}
	return nil
}

func runImport(st *store.Store, resolver *intelligence.Resolver, logger *log.Logger, dir string) error {
	importer := ingest.NewImporter(st, resolver, logger)
	stats := importer.ImportArchive(dir)
	fmt.Printf("%d files: %d imported, %d skipped, %d errors\n",
		stats.Files, stats.Imported, stats.Skipped, stats.Errors)
	if stats.Errors > 0 {
		return fmt.Errorf("%d documents failed", stats.Errors)
	}
	return nil
}
