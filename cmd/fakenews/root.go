package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/fakenews/internal/ai"
	"github.com/thinkscotty/fakenews/internal/config"
	"github.com/thinkscotty/fakenews/internal/database"
	"github.com/thinkscotty/fakenews/internal/pipeline"
	"github.com/thinkscotty/fakenews/internal/scraper"
)

var (
	flagConfig     string
	flagEnvFile    string
	flagURL        string
	flagConcurrent bool
)

var rootCmd = &cobra.Command{
	Use:   "fakenews",
	Short: "Summarize a news page and write a fake article contradicting it",
	Long: `fakenews fetches a web page, reduces it to plain text and asks an LLM for
a free-text summary, a structured JSON summary and a short fake news article
contradicting the page.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fakenews %s (built %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", config.DefaultEnvFile, "dotenv file holding "+config.EnvAPIKey)
	rootCmd.Flags().StringVar(&flagURL, "url", "", "page to process (defaults to pipeline.url)")
	rootCmd.Flags().BoolVar(&flagConcurrent, "concurrent", false, "issue the three model calls in parallel")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig resolves the config file, credentials and logger.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if err := config.LoadEnvFile(flagEnvFile); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))
	return cfg, nil
}

// app holds the wired components shared by the commands.
type app struct {
	cfg       config.Config
	db        *database.DB
	extractor *scraper.Extractor
	client    *ai.Client
	pipeline  *pipeline.Pipeline
}

func newApp(cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.Database.Path != "" {
		db, err := database.New(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open run ledger: %w", err)
		}
		a.db = db
		slog.Info("Run ledger enabled", "path", cfg.Database.Path)
	}

	a.extractor = scraper.New(scraper.Options{
		UserAgent:      cfg.Scraper.UserAgent,
		RequestTimeout: cfg.ScraperTimeout(),
		Mode:           cfg.Scraper.Mode,
	})

	provider := ai.NewOpenRouterProvider(ai.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLMTimeout(),
	})
	a.client = ai.NewClient(provider, cfg.LLM.Model)

	opts := pipeline.Options{
		Model:           cfg.LLM.Model,
		StructuredModel: cfg.StructuredModelOrSmall(),
		Concurrent:      cfg.Pipeline.Concurrent,
	}
	if a.db != nil {
		a.client.SetRecorder(a.db)
		opts.Ledger = a.db
	}
	a.pipeline = pipeline.New(a.extractor, a.client, opts)

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagURL != "" {
		cfg.Pipeline.URL = flagURL
	}
	if cmd.Flags().Changed("concurrent") {
		cfg.Pipeline.Concurrent = flagConcurrent
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.pipeline.Run(ctx, cfg.Pipeline.URL)
	if err != nil {
		return err
	}
	return pipeline.Print(cmd.OutOrStdout(), res)
}
