package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/wikiword/internal/app"
	"github.com/chriscorrea/wikiword/internal/counter"
)

// newTestCommand mirrors the flags the real subcommands see
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	flags := cmd.Flags()
	flags.String("config", "", "")
	flags.Int("token-limit", 0, "")
	flags.Int("word-limit", 0, "")
	flags.Int("character-limit", 0, "")
	flags.Bool("md", false, "")
	flags.Bool("text", false, "")
	flags.Bool("quiet", false, "")
	flags.Int("max-tries", 0, "")

	if err := flags.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

func TestBuildConfig(t *testing.T) {
	t.Setenv("WIKIWORD_CONFIG", "")

	tests := []struct {
		name           string
		args           []string
		expectFormat   app.OutputFormat
		expectMethod   counter.Method
		expectMaxUnits int
		expectMaxTries int
		expectQuiet    bool
	}{
		{
			name:           "defaults",
			expectFormat:   app.HTML,
			expectMaxTries: 5,
		},
		{
			name:           "markdown with word limit",
			args:           []string{"--md", "--word-limit", "40"},
			expectFormat:   app.Markdown,
			expectMethod:   counter.Words,
			expectMaxUnits: 40,
			expectMaxTries: 5,
		},
		{
			name:           "text with character limit",
			args:           []string{"--text", "--character-limit", "200", "--quiet"},
			expectFormat:   app.Text,
			expectMethod:   counter.Characters,
			expectMaxUnits: 200,
			expectMaxTries: 5,
			expectQuiet:    true,
		},
		{
			name:           "token limit and max tries override",
			args:           []string{"--text", "--token-limit", "100", "--max-tries", "9"},
			expectFormat:   app.Text,
			expectMethod:   counter.Tokens,
			expectMaxUnits: 100,
			expectMaxTries: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := buildConfig(newTestCommand(t, tt.args...))
			if err != nil {
				t.Fatalf("buildConfig() unexpected error: %v", err)
			}

			if cfg.OutputFormat != tt.expectFormat {
				t.Errorf("OutputFormat = %v, want %v", cfg.OutputFormat, tt.expectFormat)
			}
			if cfg.CountingMethod != tt.expectMethod {
				t.Errorf("CountingMethod = %v, want %v", cfg.CountingMethod, tt.expectMethod)
			}
			if cfg.MaxUnits != tt.expectMaxUnits {
				t.Errorf("MaxUnits = %d, want %d", cfg.MaxUnits, tt.expectMaxUnits)
			}
			if cfg.Settings.Random.MaxTries != tt.expectMaxTries {
				t.Errorf("MaxTries = %d, want %d", cfg.Settings.Random.MaxTries, tt.expectMaxTries)
			}
			if cfg.Quiet != tt.expectQuiet {
				t.Errorf("Quiet = %v, want %v", cfg.Quiet, tt.expectQuiet)
			}
		})
	}
}

func TestBuildConfigInvalidMaxTries(t *testing.T) {
	t.Setenv("WIKIWORD_CONFIG", "")

	if _, err := buildConfig(newTestCommand(t, "--max-tries", "0")); err == nil {
		t.Error("buildConfig() expected error for zero max tries, got nil")
	}
}

func TestBuildConfigMissingFile(t *testing.T) {
	if _, err := buildConfig(newTestCommand(t, "--config", "does-not-exist.yaml")); err == nil {
		t.Error("buildConfig() expected error for missing config file, got nil")
	}
}
