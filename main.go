package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drpaneas/devgrowth/internal/analyzer"
	"github.com/drpaneas/devgrowth/internal/config"
	"github.com/drpaneas/devgrowth/internal/export"
	"github.com/drpaneas/devgrowth/internal/ghsource"
	"github.com/drpaneas/devgrowth/internal/llm"
	"github.com/drpaneas/devgrowth/internal/notify"
	"github.com/drpaneas/devgrowth/internal/orchestrator"
	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/report"
	"github.com/drpaneas/devgrowth/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// pipeline is built once per process and shared by every request.
type pipeline struct {
	cfg          *config.Config
	profiles     *profile.Aggregator
	orchestrator *orchestrator.Orchestrator
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var envFile string
	var verbose bool

	root := &cobra.Command{
		Use:          "devgrowth",
		Short:        "AI-generated developer growth reports from GitHub profiles",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				v.Set("logging.level", "debug")
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&envFile, "env-file", config.DefaultEnvFile, "Optional .env file to load")
	flags.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flags.String("provider", "openai", "LLM provider: openai, anthropic, ollama")
	flags.String("model", "", "LLM model (default: per-provider)")
	flags.Int("max-repos", profile.DefaultMaxRepos, "Maximum repositories to analyze")
	flags.Bool("include-forks", true, "Include forked repositories")
	flags.String("overrides", "", "YAML file with fixed reports for reserved handles")
	bindFlags(v, flags.Lookup, map[string]string{
		"llm.provider":          "provider",
		"llm.model":             "model",
		"profile.max_repos":     "max-repos",
		"profile.include_forks": "include-forks",
		"overrides.file":        "overrides",
	})

	load := func() (*pipeline, error) { return setup(v, envFile) }
	root.AddCommand(newServeCmd(v, load), newAnalyzeCmd(load))
	return root
}

func newServeCmd(v *viper.Viper, load func() (*pipeline, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the profile and analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), p)
		},
	}
	cmd.Flags().String("host", "0.0.0.0", "Listen host")
	cmd.Flags().Int("port", 8080, "Listen port")
	bindFlags(v, cmd.Flags().Lookup, map[string]string{
		"server.host": "host",
		"server.port": "port",
	})
	return cmd
}

func newAnalyzeCmd(load func() (*pipeline, error)) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "analyze <username>",
		Short: "Analyze one GitHub user and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if !profile.ValidHandle(username) {
				return fmt.Errorf("invalid github username %q", username)
			}
			p, err := load()
			if err != nil {
				return err
			}
			return analyze(cmd.Context(), p, username, outputDir, cmd.ErrOrStderr(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&outputDir, "output", "", "Also write REPORT.md and report.json under this directory")
	return cmd
}

func bindFlags(v *viper.Viper, lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func setup(v *viper.Viper, envFile string) (*pipeline, error) {
	cfg, err := config.Load(v, envFile)
	if err != nil {
		return nil, err
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("starting devgrowth", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model, "max_repos", cfg.Profile.MaxRepos)
	if cfg.GitHub.Token == "" {
		slog.Warn("GITHUB_TOKEN not set, using the anonymous GitHub rate limit")
	}

	source, err := ghsource.New(cfg.GitHub.Token, cfg.GitHub.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating github client: %w", err)
	}
	provider, err := llm.NewProvider(llm.ProviderConfig{
		Name:       cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		OllamaHost: cfg.LLM.OllamaHost,
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	overrides, err := report.LoadOverrides(cfg.Overrides.File)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded report overrides", "entries", overrides.Len())

	return &pipeline{
		cfg: cfg,
		profiles: profile.NewAggregator(source, profile.Options{
			MaxRepos:     cfg.Profile.MaxRepos,
			IncludeForks: cfg.Profile.IncludeForks,
		}),
		orchestrator: orchestrator.New(analyzer.New(provider), overrides),
	}, nil
}

func serve(ctx context.Context, p *pipeline) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Deps{
		Profiles: p.profiles,
		Analysis: p.orchestrator,
		Tracker:  notify.NewLogTracker(slog.Default()),
		Mailer:   notify.NewLogMailer(slog.Default()),
	}, p.cfg.HTTP.RequestTimeout)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Listen(p.cfg.ServerAddr())
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}
	stop()

	slog.Info("shutting down", "timeout", p.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), p.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}
	return nil
}

func analyze(ctx context.Context, p *pipeline, username, outputDir string, progress, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, p.cfg.HTTP.RequestTimeout)
	defer cancel()

	dp, err := p.profiles.Build(ctx, username)
	if err != nil {
		return fmt.Errorf("building profile: %w", err)
	}
	slog.Info("profile built", "repositories", len(dp.Repositories), "languages", len(dp.LanguageStats))

	start := time.Now()
	rep, err := p.orchestrator.Run(ctx, dp, func(u report.Update) {
		fmt.Fprintf(progress, "  %-22s done (%s)\n", u.Section, time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return fmt.Errorf("analyzing profile: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("analyzing profile: %w", err)
	}

	if outputDir != "" {
		if _, err := export.NewWriter(outputDir).Write(username, dp, rep); err != nil {
			return fmt.Errorf("exporting report: %w", err)
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
