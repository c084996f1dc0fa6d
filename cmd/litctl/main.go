// Package main provides litctl, a command line companion to the analysis
// API. It runs the URL gate, the fetch pipeline and the analyzers locally,
// without a database, and issues API tokens.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"literary-analysis/internal/observability/logging"
)

const appName = "litctl"

// Version is set at build time.
var Version = "dev"

type globalOptions struct {
	logLevel string
	timeout  time.Duration
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Local tooling for the literary analysis service",
		Long: `litctl runs the analysis building blocks from the command line.

It provides:
- check-url: run a URL through the private network gate
- extract:   fetch a URL and print its readable text
- analyze:   sentiment and keyword analysis of a file or stdin
- literary:  literary insights for a file or stdin
- token:     issue a bearer token for the API`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall command timeout")

	cmd.AddCommand(
		checkURLCmd(opts),
		extractCmd(opts),
		analyzeCmd(opts),
		literaryCmd(opts),
		tokenCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// newLogger logs to stderr so stdout carries only command output.
func (o *globalOptions) newLogger(w io.Writer) *slog.Logger {
	return logging.New(w, "text", logging.ParseLevel(o.logLevel))
}
