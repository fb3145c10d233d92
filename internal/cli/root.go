package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "agame",
		Short: "CLI tool for the agame points API",
		Long: `agame is a CLI tool for the anonymous session and points API.

It keeps the session and CSRF cookies in a cookie file between runs, so
successive commands act as the same anonymous user.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cookies, err := cfg.LoadCookies()
			if err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cookies, cfg.CSRFCookieName, cfg.CSRFHeaderName)
			if cfg.Verbose {
				client.Trace = cmd.ErrOrStderr()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.SaveCookies(client.Cookies())
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: AGAME_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.CookieFile, "cookie-file", cfg.CookieFile, "Cookie file path (env: AGAME_COOKIE_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.CSRFCookieName, "csrf-cookie", cfg.CSRFCookieName, "Name of the CSRF cookie")
	rootCmd.PersistentFlags().StringVar(&cfg.CSRFHeaderName, "csrf-header", cfg.CSRFHeaderName, "Header used to echo the CSRF token")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newMeCmd())
	rootCmd.AddCommand(newPointsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
