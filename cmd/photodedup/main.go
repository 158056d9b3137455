package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mmcdole/photodedup/internal/config"
	"github.com/mmcdole/photodedup/internal/domain"
	"github.com/mmcdole/photodedup/internal/journal"
	"github.com/mmcdole/photodedup/internal/log"
	"github.com/mmcdole/photodedup/internal/mediaserver"
	"github.com/mmcdole/photodedup/internal/service"
	"github.com/mmcdole/photodedup/internal/ui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// stderr receives console logs and startup errors
var stderr io.Writer = os.Stderr

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "photodedup",
		Short: "Resolve duplicate assets on an Immich server",
		Long: `Fetch the duplicate groups detected by an Immich server and resolve them.

Groups whose assets share a checksum, or share a file name (ignoring case)
and image dimensions, are deduplicated: the largest file is kept and the
others are deleted. Raw/processed pairs (CR2, ORF or PSD next to a JPG) are
stacked instead.

The server URL and API key are read from base_url.txt and api_key.txt in
the current directory unless configured otherwise.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.LoadConfig(v, configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return run(cmd.Context(), cfg, ui.NewConsole())
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default $HOME/.config/photodedup/config.yaml)")
	cmd.AddCommand(newHistoryCmd(v, &configFile))

	flags := cmd.Flags()
	flags.BoolP("yes", "y", false, "do not ask for confirmation")
	flags.Bool("dry-run", false, "print the plan without changing anything")
	flags.Bool("skip-dedupe", false, "do not deduplicate")
	flags.Bool("skip-stack", false, "do not stack raw pairs")
	flags.String("url-file", "", "file containing the server base URL")
	flags.String("api-key-file", "", "file containing the API key")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write JSON logs to this file instead of the console")
	flags.String("journal", "", "record every change in this journal database")

	return cmd
}

// flagBindings maps config keys to the flags that override them
var flagBindings = map[string]string{
	"run.assume_yes":      "yes",
	"run.dry_run":         "dry-run",
	"run.skip_dedupe":     "skip-dedupe",
	"run.skip_stack":      "skip-stack",
	"server.url_file":     "url-file",
	"server.api_key_file": "api-key-file",
	"logging.level":       "log-level",
	"logging.file":        "log-file",
	"journal.file":        "journal",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagBindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, console *ui.Console) error {
	logger, err := log.SetupLogger(&cfg.Logging, stderr)
	if err != nil {
		// Fall back to console logging if file logging fails
		logger = log.ConsoleLogger(stderr, slog.LevelWarn)
		logger.Warn("failed to set up log file", "error", err)
	}
	slog.SetDefault(logger)

	logger.Info("starting photodedup", "version", Version)

	creds, err := cfg.LoadCredentials()
	if err != nil {
		return err
	}

	client, err := mediaserver.NewClient(cfg, creds, logger)
	if err != nil {
		return fmt.Errorf("failed to create server client: %w", err)
	}

	duplicates := service.NewDuplicateService(client, logger)
	plan, err := duplicates.Plan(ctx, service.PlanOptions{
		SkipDedupe: cfg.Run.SkipDedupe,
		SkipStack:  cfg.Run.SkipStack,
	})
	if err != nil {
		return fmt.Errorf("failed to get duplicates: %w", err)
	}

	console.Printf("Will deduplicate %d duplicates and stack %d raw pairs.\n", len(plan.Dedup), len(plan.Stack))

	if cfg.Run.DryRun {
		for _, line := range service.Describe(plan) {
			console.Dim(line)
		}
		return nil
	}

	if len(plan.Dedup) == 0 && len(plan.Stack) == 0 {
		return nil
	}

	if !cfg.Run.AssumeYes {
		ok, err := console.Confirm("Continue? (y/n) ")
		if err != nil {
			return err
		}
		if !ok {
			console.Printf("Aborted.\n")
			return nil
		}
	}

	var journalSink domain.Journal = journal.Discard{}
	if cfg.Journal.File != "" {
		j, err := journal.Open(cfg.Journal.File)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()

		runID, err := j.Begin(len(plan.Dedup), len(plan.Stack))
		if err != nil {
			return fmt.Errorf("failed to start journal run: %w", err)
		}
		logger.Info("journal run started", "runId", runID, "file", cfg.Journal.File)
		journalSink = j
	}

	executor := service.NewExecutor(client, journalSink, func(o service.Outcome) {
		console.Failure("%s", o.Message())
	}, logger)

	deduped := executor.DeduplicateAll(ctx, plan.Dedup, console.Progress("Deduplicating"))
	console.EndProgress()

	stacked := executor.StackAll(ctx, plan.Stack, console.Progress("Stacking"))
	console.EndProgress()

	console.Summary("Deduplicated", service.CountOK(deduped), len(deduped))
	console.Summary("Stacked", service.CountOK(stacked), len(stacked))

	logger.Info("finished",
		"deduplicated", service.CountOK(deduped),
		"stacked", service.CountOK(stacked),
	)
	return nil
}
