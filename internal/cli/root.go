package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var cfgErr error
	cfg, cfgErr = DefaultConfig()
	if cfgErr != nil {
		cfg = &Config{ServerURL: "http://localhost:8080", Output: FormatText, TokenFile: defaultTokenFile()}
	}

	rootCmd := &cobra.Command{
		Use:   "auctionctl",
		Short: "CLI tool for the APL auction API",
		Long: `auctionctl drives the APL player auction through its JSON API.

It covers league setup (players and teams), the live auction cursor,
and streaming the events the display screens receive.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return fmt.Errorf("invalid %s_* environment: %w", EnvPrefix, cfgErr)
			}
			if cfg.Output != FormatText && cfg.Output != FormatJSON {
				return fmt.Errorf("unknown output format %q", cfg.Output)
			}

			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: AUCTIONCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: AUCTIONCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: AUCTIONCTL_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: AUCTIONCTL_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newTeamCmd())
	rootCmd.AddCommand(newAuctionCmd())
	rootCmd.AddCommand(newEventsCmd())

	return rootCmd
}

// output returns the formatter for cmd
func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// Execute runs the root command until it finishes or is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
