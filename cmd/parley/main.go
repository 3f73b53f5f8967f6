// Package main is the entry point for the parley CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flemzord/parley/internal/config"
	"github.com/flemzord/parley/pkg/app"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parley",
		Short:         "Chat with Claude from the browser or the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().String("env-file", ".env", "Path to a .env file")
	root.AddCommand(versionCmd(), serveCmd(), chatCmd(), initCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "parley %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func params(cmd *cobra.Command) app.Params {
	cfgPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	return app.Params{ConfigPath: cfgPath, EnvFile: envFile, Version: version}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface and JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := params(cmd)
			cfg, err := app.LoadConfig(p)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, p, os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

			fmt.Fprintf(cmd.OutOrStdout(), "parley listening on http://%s\n", cfg.Addr())
			return a.Serve(ctx)
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive terminal session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := params(cmd)
			p.LogLevel = slog.LevelWarn
			cfg, err := app.LoadConfig(p)
			if err != nil {
				return err
			}

			// SIGINT is left to the session: it interrupts a pending reply.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, p, os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

			return a.Interactive(ctx, os.Stdin, cmd.OutOrStdout())
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate configuration and print the effective values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := params(cmd)
			cfg, err := app.LoadConfig(p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path := config.ResolvePath(p.ConfigPath); path != "" {
				fmt.Fprintf(out, "Configuration OK (%s)\n", path)
			} else {
				fmt.Fprintln(out, "Configuration OK (environment only)")
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg.Redacted())
		},
	})
	return cmd
}
