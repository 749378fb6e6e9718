// Command summarise classifies every episode in a clients document and writes
// one report row per episode.
//
// Usage:
//
//	summarise [flags] <clients.json> [output]
//
// The input may be "-" for stdin. Without an output path the report goes to
// stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/screening-outcome-classifier/internal/config"
	"github.com/screening-outcome-classifier/internal/domain"
	"github.com/screening-outcome-classifier/internal/report"
	"github.com/screening-outcome-classifier/internal/service"
	"github.com/screening-outcome-classifier/internal/store"
)

type options struct {
	configFile  string
	format      string
	clientsFile string
	logFile     string
	logLevel    string
	workers     int
	save        bool

	ciPrior        int
	cancerPrior    int
	normalFollowUp int
	benignFollowUp int
	set            map[string]bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "summarise: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, []string, error) {
	opts := &options{set: map[string]bool{}}

	fs := flag.NewFlagSet("summarise", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "path to config file")
	fs.StringVar(&opts.format, "format", "", "report format: csv, json or yaml (default from config)")
	fs.StringVar(&opts.clientsFile, "clients", "", "file listing client IDs to include, one per line")
	fs.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (default from config)")
	fs.IntVar(&opts.workers, "workers", 0, "clients processed concurrently (default from config)")
	fs.BoolVar(&opts.save, "save", false, "persist the run in the configured result store")
	fs.IntVar(&opts.ciPrior, "num-months-ci-prior", 0, "months for an episode to be the prior of an interval cancer")
	fs.IntVar(&opts.cancerPrior, "num-months-cancer-prior", 0, "months for an episode to be the prior of a malignant episode")
	fs.IntVar(&opts.normalFollowUp, "num-months-normal-follow-up", 0, "months after which a normal episode needs a follow-up")
	fs.IntVar(&opts.benignFollowUp, "num-months-benign-follow-up", 0, "months after which a benign episode needs a follow-up")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		fs.Usage()
		return nil, nil, fmt.Errorf("expected <clients.json> [output], got %d arguments", len(rest))
	}
	return opts, rest, nil
}

// windows applies the window flags that were given on top of the configured
// windows. An unset flag leaves the configured value, including nil.
func (o *options) windows(base domain.WindowConfig) domain.WindowConfig {
	w := base
	override := func(name string, value int, dst **int) {
		if o.set[name] {
			v := value
			*dst = &v
		}
	}
	override("num-months-ci-prior", o.ciPrior, &w.CIPrior)
	override("num-months-cancer-prior", o.cancerPrior, &w.CancerPrior)
	override("num-months-normal-follow-up", o.normalFollowUp, &w.NormalFollowUp)
	override("num-months-benign-follow-up", o.benignFollowUp, &w.BenignFollowUp)
	return w
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, paths, err := parseFlags(args)
	if err != nil {
		return err
	}

	configManager, err := config.NewManagerFromFile(opts.configFile)
	if err != nil {
		return err
	}
	cfg := configManager.GetConfig()
	if opts.logFile != "" {
		cfg.Logging.Output = "file"
		cfg.Logging.Filename = opts.logFile
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.format != "" {
		cfg.Summary.Format = opts.format
	}
	if opts.set["workers"] {
		cfg.Summary.Workers = opts.workers
	}
	cfg.Classification = opts.windows(cfg.Classification)

	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	format, err := report.ParseFormat(cfg.Summary.Format)
	if err != nil {
		return err
	}

	clients, err := readClients(paths[0], stdin)
	if err != nil {
		return err
	}

	var clientIDs []string
	if opts.clientsFile != "" {
		if clientIDs, err = readClientIDs(opts.clientsFile); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := service.NewOutcomeEngine(logger)
	summary := service.NewSummaryService(logger, engine, cfg.Summary.Workers)

	result, err := summary.Summarise(ctx, clients, service.SummariseOptions{
		Windows:   cfg.Classification,
		ClientIDs: clientIDs,
	})
	if err != nil {
		return err
	}

	if opts.save {
		if err := saveRun(ctx, cfg.Store, logger, result); err != nil {
			return err
		}
	}

	out := stdout
	if len(paths) == 2 && paths[1] != "-" {
		f, err := os.Create(paths[1])
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.Write(out, format, result); err != nil {
		return err
	}
	if f, ok := out.(*os.File); ok && f != os.Stdout {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("failed to flush output file: %w", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"run_id": result.ID,
		"rows":   len(result.Rows),
		"errors": result.ErrorCount(),
		"format": format,
	}).Info("Report written")
	return nil
}

func readClients(path string, stdin io.Reader) ([]*domain.Client, error) {
	if path == "-" {
		return domain.DecodeClients(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open clients document: %w", err)
	}
	defer f.Close()
	return domain.DecodeClients(f)
}

func readClientIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open client list: %w", err)
	}
	defer f.Close()
	return service.ReadClientList(f)
}

func saveRun(ctx context.Context, cfg domain.StoreConfig, logger *logrus.Logger, run *domain.SummaryRun) error {
	resultStore, err := store.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if resultStore == nil {
		return fmt.Errorf("--save requires a result store, but store.driver is %q", cfg.Driver)
	}
	defer resultStore.Close()

	if err := resultStore.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.WithField("run_id", run.ID).Info("Run saved")
	return nil
}
