package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/julianshen/rhobot/internal/tui"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var attachmentDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive console",
		Long: `Prime every documentation cache, keep them refreshed in the
background and answer commands typed at the console. The console does not
start when the first fetch fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			// The console owns the terminal, so logs go to a file.
			logFile := cfg.Log.File
			if logFile == "" {
				logFile = filepath.Join(filepath.Dir(opts.path()), "rhobot.log")
			}
			if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
				return fmt.Errorf("creating log directory: %w", err)
			}
			logger, err := newLogger(cfg, logFile)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.ErrOrStderr(), "Loading documentation...")
			if err := a.prime(ctx, ""); err != nil {
				logger.Error("initial fetch failed", zap.Error(err))
				return err
			}
			a.refreshAll(ctx)

			return tui.Run(ctx, a.dispatcher, tui.Options{
				AppName:       "rhobot",
				SaveDraft:     a.saveDraft,
				AttachmentDir: attachmentDir,
				Commands:      len(a.dispatcher.Registry().All()),
			})
		},
	}

	cmd.Flags().StringVar(&attachmentDir, "attachments", ".", "directory exported FAQ dumps are saved to")
	return cmd
}
