// Command mensalog runs the mealplan service: it indexes the meal
// directory, keeps the archive ingested and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/crwntec/mensaLog/config"
	"github.com/crwntec/mensaLog/emb"
	"github.com/crwntec/mensaLog/ingest"
	"github.com/crwntec/mensaLog/intelligence"
	"github.com/crwntec/mensaLog/server"
	"github.com/crwntec/mensaLog/store"
)

type cliOptions struct {
	configPath string
	skipImport bool
}

func main() {
	opts := parseFlags()
	if err := run(opts); err != nil {
		log.Fatalf("mensalog: %v", err)
	}
}

func parseFlags() cliOptions {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "config.yaml", "Path to the YAML config file")
	flag.BoolVar(&opts.skipImport, "no-import", false, "Serve only, do not scan the archive")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	return opts
}

func run(opts cliOptions) error {
	logger := log.New(os.Stderr, "[mensalog] ", log.LstdFlags)

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

	indexed, err := resolver.IndexAll()
	if err != nil {
		return fmt.Errorf("index meals: %w", err)
	}
	if indexed > 0 {
		logger.Printf("indexed %d meals missing from the cache", indexed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	importer := ingest.NewImporter(st, resolver, logger)
	var refresher *ingest.Refresher
	if !opts.skipImport {
		refresher = ingest.NewRefresher(importer, cfg.ArchiveDir, cfg.RefreshInterval.Std(), logger)
		go refresher.Run(ctx)
	}

	var status server.RefreshStatus
	if refresher != nil {
		status = refresher
	}
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(st, resolver, status, logger).Router(),
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Printf("listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
