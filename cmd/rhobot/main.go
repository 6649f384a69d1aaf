// cmd/rhobot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/julianshen/rhobot/internal/config"
	"github.com/julianshen/rhobot/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errCommandFailed reports a command whose error response was already
// printed.
var errCommandFailed = errors.New("command failed")

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	output     string
}

func versionString() string {
	return fmt.Sprintf("rhobot %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "rhobot",
		Short: "Factorio documentation bot",
		Long: `rhobot answers questions about Factorio from the modding API docs,
the wiki, the Friday Facts blog and a curated FAQ.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.output, "output", "auto", "output format: auto, terminal, markdown, json")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(configCmd(opts))
	rootCmd.AddCommand(runCmd(opts))
	for _, name := range []string{"api", "wiki", "faq", "fff", "mod"} {
		rootCmd.AddCommand(lookupCmd(opts, name))
	}
	return rootCmd
}

// path returns the config file in use.
func (o *rootOptions) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultPath()
}

// loadConfig reads .env and the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.path())
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// newLogger builds the logger for cfg, writing to paths when given.
func newLogger(cfg *config.Config, paths ...string) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, paths...)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger.With(zap.String("version", version)), nil
}
