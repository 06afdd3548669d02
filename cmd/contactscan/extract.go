package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/contactscan/internal/config"
	"github.com/nao1215/contactscan/internal/database"
	seclog "github.com/nao1215/contactscan/internal/log"
	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pipeline"
	"github.com/nao1215/contactscan/internal/report"
	"github.com/nao1215/contactscan/internal/validate"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [path...]",
		Short: "Extract contacts from crawled pages",
		Long: `Extract reads crawled pages and reports the contacts found in them.

Inputs may be files or directories (walked recursively):
- .html / .htm files are parsed; mailto, tel and profile links are kept
- .txt files are read as page text
- .jsonl files hold one page per line:
  {"source_url": "...", "raw_text": "...", "mailto": ["..."], "content_kind": "html_text"}

Each run is saved to the history database unless --no-db is given.
Press Ctrl+C to stop early; contacts found so far are still reported.

Examples:
  # Extract from a directory of saved pages
  contactscan extract ./dump

  # Label the run and resolve relative links against the live site
  contactscan extract --site example.com --base-url https://example.com ./dump

  # Keep only confident contacts and write JSON to a file
  contactscan extract --min-confidence 0.8 --json -o contacts.json ./dump

  # Reject syntactically impossible addresses
  contactscan extract --validate syntax pages.jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtractCmd,
	}

	cmd.Flags().StringP("site", "s", "",
		"Site label stored with the run and used for domain matching")
	cmd.Flags().StringP("base-url", "b", "",
		"URL that input paths are relative to (default: file:// URLs)")

	cmd.Flags().Float64("min-confidence", 0,
		"Leave out contacts below this confidence (0.0-1.0)")
	cmd.Flags().Int("window", config.DefaultWindow,
		"Characters around an address searched for attributes")
	cmd.Flags().IntP("workers", "w", 0,
		"Concurrent page pipelines (default: number of CPUs)")
	cmd.Flags().Int("queue", config.DefaultQueueSize,
		"Records buffered between pipelines and the aggregator")
	cmd.Flags().String("validate", config.DefaultValidator,
		fmt.Sprintf("Email validator %v", validate.Names))
	cmd.Flags().Bool("heading-names", false,
		"Take a missing name from the closest heading above an address")
	cmd.Flags().Bool("infer-names", false,
		"Guess names from addresses such as jane.doe@")
	cmd.Flags().Bool("infer-company", false,
		"Guess company names from address domains")
	cmd.Flags().Bool("strict", false,
		"Panic on aggregation invariant violations")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-db", false,
		"Do not save the run to the history database")
	cmd.Flags().Bool("show-pii", false,
		"Show addresses and phone numbers in log output")

	return cmd
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing with the pages read so far")
			cancel()
		case <-ctx.Done():
		}
	}()

	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return err
	}
	return runExtract(ctx, cfg, args, baseURL, cmd.OutOrStdout(), logger)
}

// buildConfig layers defaults, the configuration file, the environment and
// the flags that were set, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("site") {
		if cfg.Site, err = flags.GetString("site"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("min-confidence") {
		if cfg.MinConfidence, err = flags.GetFloat64("min-confidence"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("window") {
		if cfg.Window, err = flags.GetInt("window"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("queue") {
		if cfg.QueueSize, err = flags.GetInt("queue"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("validate") {
		if cfg.Validator, err = flags.GetString("validate"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("heading-names") {
		if cfg.HeadingNames, err = flags.GetBool("heading-names"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("infer-names") {
		if cfg.InferNames, err = flags.GetBool("infer-names"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("infer-company") {
		if cfg.InferCompany, err = flags.GetBool("infer-company"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("strict") {
		if cfg.Strict, err = flags.GetBool("strict"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	if cfg.RevealPII, err = flags.GetBool("show-pii"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfig builds the configuration shared by every command: defaults,
// the configuration file, the environment, and the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	// An explicitly named file must exist; otherwise a missing file is fine.
	if path := config.FindConfigFile(configPath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply config file %s: %w", path, err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if err := config.ApplyEnv(cfg, cfg.EnvFile); err != nil {
		return nil, err
	}

	if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return nil, err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}
	return cfg, nil
}

// setupLogger creates the secure logger used for the whole command.
func setupLogger(cfg *config.Config) *slog.Logger {
	return seclog.NewSecureLogger(os.Stderr, cfg.Verbose, seclog.WithRevealPII(cfg.RevealPII))
}

// runExtract runs the engine over the inputs and writes the report to stdout
// or cfg.ReportFile.
func runExtract(ctx context.Context, cfg *config.Config, paths []string, baseURL string, stdout io.Writer, logger *slog.Logger) error {
	inputs, err := collectInputs(paths)
	if err != nil {
		return err
	}

	site := cfg.Site
	if site == "" && baseURL != "" {
		site = baseURL
	}

	engine, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("starting extraction",
		"inputs", len(inputs),
		"workers", cfg.Workers,
		"rules", engine.Rules(),
		"validator", cfg.Validator,
	)

	loader := &pageLoader{baseURL: baseURL, site: site, logger: logger}
	pages := make(chan model.Page)
	go streamPages(ctx, loader, inputs, pages)

	result := engine.Run(ctx, pages)
	if result.Interrupted {
		logger.Warn("extraction interrupted, reporting partial results",
			"pages", result.PagesProcessed,
		)
	}

	if cfg.SaveToDB {
		// The history is a convenience; a failed save still reports the run.
		if err := saveRun(context.WithoutCancel(ctx), cfg.DBDir, result, logger); err != nil {
			logger.Warn("failed to save run", "error", err)
		}
	}

	return outputReport(cfg, result, stdout)
}

// saveRun stores the run in the history database under dbDir.
func saveRun(ctx context.Context, dbDir string, run *model.RunResult, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveRun(ctx, run); err != nil {
		return err
	}
	logger.Info("run saved to database", "run_id", run.RunID, "path", db.Path())
	return nil
}

// outputReport writes the run in the requested format.
func outputReport(cfg *config.Config, run *model.RunResult, stdout io.Writer) error {
	out, closeOut, err := reportOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	_, err = newReportWriter(cfg, out).Write(run)
	return err
}

func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// reportOutput opens path for writing, or returns stdout when path is empty.
// Reports hold contact details, so files are created readable by the owner only.
func reportOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// isNotFound reports whether err means the history database does not exist yet.
func isNotFound(err error) bool {
	return errors.Is(err, database.ErrDatabaseNotFound)
}
