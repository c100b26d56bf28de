package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/chriscorrea/wikiword/internal/app"
	"github.com/chriscorrea/wikiword/internal/config"
	"github.com/chriscorrea/wikiword/internal/counter"

	"github.com/spf13/cobra"
)

// buildConfig constructs an app.Config from command flags and the loaded settings
func buildConfig(cmd *cobra.Command) (app.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	tokenLimit, _ := cmd.Flags().GetInt("token-limit")
	wordLimit, _ := cmd.Flags().GetInt("word-limit")
	charLimit, _ := cmd.Flags().GetInt("character-limit")
	mdFlag, _ := cmd.Flags().GetBool("md")
	textFlag, _ := cmd.Flags().GetBool("text")
	quiet, _ := cmd.Flags().GetBool("quiet")

	settings, err := config.Load(configPath)
	if err != nil {
		return app.Config{}, err
	}

	// flags win over file and environment settings
	if cmd.Flags().Changed("max-tries") {
		settings.Random.MaxTries, _ = cmd.Flags().GetInt("max-tries")
		if err := settings.Validate(); err != nil {
			return app.Config{}, err
		}
	}

	// determine counting method and max units
	var countingMethod counter.Method
	var maxUnits int
	switch {
	case tokenLimit > 0:
		countingMethod = counter.Tokens
		maxUnits = tokenLimit
	case wordLimit > 0:
		countingMethod = counter.Words
		maxUnits = wordLimit
	case charLimit > 0:
		countingMethod = counter.Characters
		maxUnits = charLimit
	}

	// determine output format
	var outputFormat app.OutputFormat
	switch {
	case mdFlag:
		outputFormat = app.Markdown
	case textFlag:
		outputFormat = app.Text
	default:
		outputFormat = app.HTML // default if no format flag
	}

	return app.Config{
		Settings:       settings,
		OutputFormat:   outputFormat,
		MaxUnits:       maxUnits,
		CountingMethod: countingMethod,
		Quiet:          quiet,
	}, nil
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "wikiword",
	Short: "Look up words and words of the day on Wiktionary",
	Long: `Wikiword fetches Wiktionary entries and renders their part-of-speech sections as HTML, Markdown, or plain text.

Examples:
  wikiword define serendipity
  wikiword define --text wiktionary://lookup/run
  wikiword random --count 3
  wikiword today --md`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogger(debug)
	},
}

var defineCmd = &cobra.Command{
	Use:   "define <word|lookup-uri>...",
	Short: "Show the definition of one or more words",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return defineAll(ctx, cfg, args)
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Pick random words from the word of the day archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		count, _ := cmd.Flags().GetInt("count")
		define, _ := cmd.Flags().GetBool("define")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		words, err := app.Random(ctx, cfg, count)
		if err != nil {
			return fmt.Errorf("random failed: %w", err)
		}

		if define {
			return defineAll(ctx, cfg, words)
		}
		fmt.Println(strings.Join(words, "\n"))
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's word of the day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Today(ctx, cfg)
		if err != nil {
			return fmt.Errorf("today failed: %w", err)
		}

		fmt.Println(result)
		return nil
	},
}

// defineAll prints the definition of each term, separated by blank lines
func defineAll(ctx context.Context, cfg app.Config, terms []string) error {
	for i, term := range terms {
		result, err := app.Define(ctx, cfg, term)
		if err != nil {
			return fmt.Errorf("define failed: %w", err)
		}
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(result)
	}
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.String("config", "", "Path to a YAML config file (default: $"+config.EnvPath+" or ./wikiword.yaml)")

	// limit flags
	flags.IntP("token-limit", "t", 0, "Limit output to number of tokens")
	flags.IntP("word-limit", "w", 0, "Limit output to number of words")
	flags.IntP("character-limit", "c", 0, "Limit output to number of characters")

	// output format flags
	flags.Bool("html", false, "Output in HTML format (default)")
	flags.Bool("md", false, "Output in Markdown format")
	flags.Bool("text", false, "Output in plain text format")

	// other flags
	flags.BoolP("quiet", "q", false, "Suppress progress messages")
	flags.BoolP("debug", "D", false, "Enable debug logging")
	_ = flags.MarkHidden("debug")

	randomCmd.Flags().IntP("count", "n", 1, "Number of words to pick")
	randomCmd.Flags().Int("max-tries", 0, "Archive pages to try per word (overrides config)")
	randomCmd.Flags().BoolP("define", "d", false, "Show the definition of each picked word")

	rootCmd.AddCommand(defineCmd, randomCmd, todayCmd)

	// configure mutually exclusive flag groups
	for _, cmd := range rootCmd.Commands() {
		cmd.MarkFlagsMutuallyExclusive("token-limit", "word-limit", "character-limit")
		cmd.MarkFlagsMutuallyExclusive("html", "md", "text")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
