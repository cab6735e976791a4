// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/classify"
	"github.com/pdiddy/citation-engine/internal/secrets"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const defaultModel = "claude-sonnet-4-5-20250929"

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Assign research-area categories to paper titles",
	Long: `Classify sends batches of titles from the data directory's CSV tables
to a generative AI backend and writes the assigned category into each
record's ai_category column. Records that already carry a category are
skipped, so interrupted runs resume where they stopped.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("data-dir", "", "directory holding the CSV record tables (default data)")
	classifyCmd.Flags().String("model", "", "AI model identifier")
	classifyCmd.Flags().String("api-key", "", "Anthropic API key (default from .secrets/)")
	classifyCmd.Flags().Int("batch-size", 0, "titles per prompt (default 5)")
	classifyCmd.Flags().Int("save-interval", 0, "batches between checkpoints (default 10)")
	classifyCmd.Flags().Int("max-retries", 0, "retry attempts per batch (default 3)")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	apiKey, _ := cmd.Flags().GetString("api-key")
	cfg := types.ClassifyConfig{
		AIConfig: types.AIConfig{
			Model:      stringSetting(cmd, "model", "classify.model", defaultModel),
			APIKey:     secretDefault(secrets.KeyAnthropic, apiKey),
			MaxRetries: intSetting(cmd, "max-retries", "classify.max_retries"),
		},
		DataDir:      stringSetting(cmd, "data-dir", "classify.data_dir", "data"),
		BatchSize:    intSetting(cmd, "batch-size", "classify.batch_size"),
		SaveInterval: intSetting(cmd, "save-interval", "classify.save_interval"),
	}

	if cfg.APIKey == "" {
		return fmt.Errorf("no Anthropic API key: pass --api-key or create .secrets/%s", secrets.KeyAnthropic)
	}

	backend := &classify.AnthropicBackend{APIKey: cfg.APIKey, Model: cfg.Model}

	summary, err := classify.ClassifyAll(cmd.Context(), backend, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nDone: %d file(s), %d classified, %d already classified\n",
		summary.Files, summary.Classified, summary.Skipped)
	return nil
}
