// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/dataset"
	"github.com/pdiddy/citation-engine/internal/enrich"
	"github.com/pdiddy/citation-engine/internal/provider"
	"github.com/pdiddy/citation-engine/internal/runlog"
	"github.com/pdiddy/citation-engine/internal/secrets"
	"github.com/pdiddy/citation-engine/internal/venues"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const (
	defaultHTTPTimeout     = 20 * time.Second
	defaultInterBatchDelay = 1 * time.Second
	defaultUserAgent       = "citation-engine/0.1"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich record tables with citation data from a bibliographic API",
	Long: `Enrich resolves every pending title in the data directory's CSV tables
against a bibliographic provider, aggregates the citing works into per-year
and top-venue counts, and checkpoints results back into the source file
after every batch. Titles the provider authoritatively cannot match are
written to a per-table ledger in the unresolved directory; transient
failures stay pending for the next run.

Per-record failures never fail the run: rerun the command (optionally with
a different --provider) to take another pass at whatever is still pending.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().String("data-dir", "", "directory holding the CSV record tables (default data)")
	enrichCmd.Flags().String("unresolved-dir", "", "directory for not-found ledgers (default data-false)")
	enrichCmd.Flags().String("venue-config", "", "YAML file listing top venues (default config/venues.yaml)")
	enrichCmd.Flags().String("provider", "", "bibliographic provider: semantic_scholar or openalex")
	enrichCmd.Flags().Int("concurrency", 0, "worker pool width per batch (default 3)")
	enrichCmd.Flags().Int("batch-size", 0, "records per checkpointed batch (default 10)")
	enrichCmd.Flags().Int("search-limit", 0, "search candidates per title (default 5)")
	enrichCmd.Flags().Int("max-attempts", 0, "retry attempts per HTTP request (default 5)")
	enrichCmd.Flags().Duration("delay", 0, "pause between batches (default 1s)")
	enrichCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 20s)")
	enrichCmd.Flags().String("api-key", "", "Semantic Scholar API key (default from .secrets/)")
	enrichCmd.Flags().String("email", "", "OpenAlex polite-pool email (default from .secrets/)")
	enrichCmd.Flags().String("run-log", "", "SQLite run journal path (empty disables)")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg := enrichConfigFromFlags(cmd)
	out := cmd.OutOrStdout()

	p, err := provider.New(cfg)
	if err != nil {
		return err
	}

	venueCfg, err := venues.LoadConfig(cfg.VenueConfigPath)
	if err != nil {
		return fmt.Errorf("loading venue config: %w", err)
	}
	cls := venues.NewClassifier(venueCfg)

	var journal *runlog.Store
	if cfg.RunLogPath != "" {
		journal, err = runlog.Open(cfg.RunLogPath)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	paths, err := filepath.Glob(filepath.Join(cfg.DataDir, "*.csv"))
	if err != nil {
		return fmt.Errorf("listing tables in %s: %w", cfg.DataDir, err)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		fmt.Fprintf(out, "No CSV tables found under %s\n", cfg.DataDir)
		return nil
	}

	ctx := cmd.Context()
	for _, path := range paths {
		fmt.Fprintf(out, "\n=== %s (provider: %s) ===\n", filepath.Base(path), p.Name())

		table, err := dataset.Load(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipping %s: %v\n", path, err)
			continue
		}
		ledger, err := dataset.LoadLedger(dataset.LedgerPathFor(path, cfg.UnresolvedDir))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipping %s: %v\n", path, err)
			continue
		}

		started := time.Now()
		summary, err := enrich.Run(ctx, p, table, ledger, cls, cfg, out)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Done: %d processed, %d resolved, %d not found, %d still pending\n",
			summary.Processed, summary.Resolved, summary.NotFound, summary.Pending)

		if journal != nil {
			_, err := journal.Record(ctx, runlog.Entry{
				Command:    "enrich",
				Provider:   p.Name(),
				Table:      filepath.Base(path),
				StartedAt:  started,
				FinishedAt: time.Now(),
				Processed:  summary.Processed,
				Resolved:   summary.Resolved,
				NotFound:   summary.NotFound,
				Pending:    summary.Pending,
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: run journal write failed: %v\n", err)
			}
		}
	}

	return nil
}

// enrichConfigFromFlags resolves the enrichment configuration: explicit flag,
// then config file / environment via viper, then the built-in default.
func enrichConfigFromFlags(cmd *cobra.Command) types.EnrichConfig {
	apiKey, _ := cmd.Flags().GetString("api-key")
	email, _ := cmd.Flags().GetString("email")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = viper.GetDuration("enrich.inter_batch_delay")
	}
	if delay == 0 {
		delay = defaultInterBatchDelay
	}

	return types.EnrichConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DataDir:               stringSetting(cmd, "data-dir", "enrich.data_dir", "data"),
		UnresolvedDir:         stringSetting(cmd, "unresolved-dir", "enrich.unresolved_dir", "data-false"),
		VenueConfigPath:       stringSetting(cmd, "venue-config", "enrich.venue_config", filepath.Join("config", "venues.yaml")),
		Provider:              stringSetting(cmd, "provider", "enrich.provider", ""),
		Concurrency:           intSetting(cmd, "concurrency", "enrich.concurrency"),
		BatchSize:             intSetting(cmd, "batch-size", "enrich.batch_size"),
		SearchLimit:           intSetting(cmd, "search-limit", "enrich.search_limit"),
		MaxAttempts:           intSetting(cmd, "max-attempts", "enrich.max_attempts"),
		InterBatchDelay:       delay,
		SemanticScholarAPIKey: secretDefault(secrets.KeySemanticScholar, apiKey),
		OpenAlexEmail:         secretDefault(secrets.KeyOpenAlexEmail, email),
		RunLogPath:            stringSetting(cmd, "run-log", "enrich.run_log", ""),
	}
}

// stringSetting reads a string from the flag if set, otherwise from viper,
// otherwise the fallback.
func stringSetting(cmd *cobra.Command, flag, viperKey, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	return fallback
}

// intSetting reads an int from the flag if set, otherwise from viper. Zero
// means "use the stage default".
func intSetting(cmd *cobra.Command, flag, viperKey string) int {
	if v, _ := cmd.Flags().GetInt(flag); v != 0 {
		return v
	}
	return viper.GetInt(viperKey)
}
