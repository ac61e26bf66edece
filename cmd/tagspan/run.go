package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cognicore/tagspan/internal/input"
	"github.com/cognicore/tagspan/internal/logger"
	"github.com/cognicore/tagspan/pkg/tagspan"
	"github.com/cognicore/tagspan/pkg/tagspan/batch"
	"github.com/cognicore/tagspan/pkg/tagspan/config"
	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
	"github.com/cognicore/tagspan/pkg/tagspan/store"
	"github.com/cognicore/tagspan/pkg/tagspan/store/sqlite"
)

type runFlags struct {
	configPath  string
	inputs      []string
	outDir      string
	dbPath      string
	perFile     int
	resumeBatch int
	metricsAddr string
}

func runCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process classified documents into batched annotation files",
		Example: `  tagspan run --input 'classified/**/*.jsonl' --out annotated
  tagspan run --config tagspan.yaml --input day1.jsonl --resume-batch 12`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeRun(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fl.StringSliceVar(&f.inputs, "input", nil, "JSONL input files or glob patterns (required)")
	fl.StringVar(&f.outDir, "out", "", "Output directory (overrides config)")
	fl.StringVar(&f.dbPath, "db", "", "SQLite database for annotations (overrides config)")
	fl.IntVar(&f.perFile, "per-file", 0, "Documents per output file (overrides config)")
	fl.IntVar(&f.resumeBatch, "resume-batch", -1, "Batch index to resume numbering from (overrides config)")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func loadRunConfig(f *runFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.outDir != "" {
		cfg.Output.Dir = f.outDir
	}
	if f.dbPath != "" {
		cfg.Store.Path = f.dbPath
	}
	if f.perFile > 0 {
		cfg.Output.DocumentsPerFile = f.perFile
	}
	if f.resumeBatch >= 0 {
		cfg.Output.ResumeBatch = f.resumeBatch
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Addr = f.metricsAddr
	}
	return cfg, cfg.Validate()
}

func executeRun(cmd *cobra.Command, f *runFlags) error {
	cfg, err := loadRunConfig(f)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log, err := newLogger(cmd, cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := input.Expand(f.inputs)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := batch.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, reg, log)
		defer shutdownMetrics(srv)
	}

	comp, err := cfg.Build(metrics)
	if err != nil {
		return err
	}

	var st store.Store
	if cfg.Store.Path != "" {
		st, err = sqlite.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			_ = comp.Writer.Complete()
			return fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
		}
	}

	p := tagspan.New(tagspan.Options{
		Aggregator: comp.Aggregator,
		Sink:       comp.Sink,
		Writer:     comp.Writer,
		Store:      st,
		Logger:     log,
	})

	log.Info("Run started", "files", len(files), "out", cfg.Output.Dir, "per_file", cfg.Output.DocumentsPerFile)

	runErr := processFiles(ctx, p, files, log)
	if cerr := p.Close(); cerr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("complete output: %w", cerr))
	}

	sum := p.Summary()
	log.Info("Run finished",
		"processed", sum.Processed,
		"rejected", sum.Rejected,
		"documents_written", sum.Writer.DocumentsWritten,
		"files", sum.Writer.FilesOpened,
	)
	return runErr
}

// processFiles feeds every input document to the pipeline. Invalid documents
// are skipped; any other error stops the run so no document is silently lost.
func processFiles(ctx context.Context, p *tagspan.Pipeline, files []string, log logger.Logger) error {
	for _, path := range files {
		log.Debug("Reading input", "file", path)
		err := input.Each(ctx, path, log, func(item input.Item) error {
			_, err := p.Process(ctx, tagspan.Input{Document: item.Document(), Tokens: item.Tokens})
			if errors.Is(err, internalerr.ErrInvalidInput) {
				log.Warn("Skipping invalid document", "file", path, "id", item.ID, "err", err)
				return nil
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("process %s: %w", path, err)
		}
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "err", err)
		}
	}()
	return srv
}

func shutdownMetrics(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
