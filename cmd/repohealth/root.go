package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jmgilman/go/repohealth"
	"github.com/jmgilman/go/repohealth/config"
	"github.com/jmgilman/go/repohealth/internal/ghauth"
	"github.com/jmgilman/go/repohealth/internal/logging"
)

var (
	// Global flags
	configPath string
	token      string
	logLevel   string
	logFormat  string
	ghAuth     bool

	// Shared state loaded before every command
	cfg    *config.Config
	logger = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "repohealth",
	Short: "Analyze the health of GitHub repositories",
	Long: `repohealth fetches repository metadata, contributors, commit statistics
and issues from the GitHub REST API and derives health metrics from them.

Responses are cached and failed requests are retried, so repeated analyses
of the same repository cost no additional quota.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default ./config.yaml or ~/.repohealth/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "GitHub token (overrides GITHUB_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().BoolVar(&ghAuth, "gh-auth", false, "Use the gh CLI session token when no token is configured")

	rootCmd.AddCommand(newQuotaCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newServeCmd())
}

// loadSettings reads the configuration, applies flag overrides and builds
// the logger.
func loadSettings(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
		return nil
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("token") {
		loaded.GitHub.Token = token
	}
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		loaded.Log.Format = logFormat
	}
	if flags.Changed("gh-auth") {
		loaded.GitHub.GHAuth = ghAuth
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(os.Stderr, loaded.Log.Level, loaded.Log.Format)
	if err != nil {
		return err
	}

	if loaded.GitHub.Token == "" && loaded.GitHub.GHAuth {
		loaded.GitHub.Token = ghToken(cmd.Context(), loaded.GitHub.BaseURL, l)
	}

	cfg = loaded
	logger = l
	return nil
}

// ghToken reads the gh CLI session token for the host behind baseURL.
// Failures are logged and leave the client anonymous.
func ghToken(ctx context.Context, baseURL string, l zerolog.Logger) string {
	var opts []ghauth.Option
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "api.github.com" {
		opts = append(opts, ghauth.WithHostname(u.Hostname()))
	}

	t, err := ghauth.New(opts...).Token(ctx)
	if err != nil {
		l.Warn().Err(err).Msg("gh CLI token unavailable, continuing anonymously")
		return ""
	}

	l.Debug().Str("token", logging.MaskToken(t)).Msg("using gh CLI token")
	return t
}

// newClient builds a client from the loaded configuration.
func newClient() (*repohealth.Client, error) {
	return repohealth.New(cfg.ClientOptions(logger)...)
}
