package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/julianshen/rhobot/internal/commands"
	"github.com/julianshen/rhobot/internal/output"
)

// lookupCmd runs one bot command, e.g. `rhobot api class LuaEntity`.
func lookupCmd(opts *rootOptions, name string) *cobra.Command {
	short := map[string]string{
		"api":  "Look up the modding API documentation",
		"wiki": "Search the Factorio wiki",
		"faq":  "Show a FAQ entry",
		"fff":  "Show a Friday Facts post",
		"mod":  "Search the mod portal",
	}[name]

	cmd := &cobra.Command{
		Use:   name + " [args...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLine(cmd.Context(), opts, cmd.OutOrStdout(), name, append([]string{name}, args...))
		},
	}
	// Everything after the first argument belongs to the bot command.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// runCmd runs any bot command line, e.g. `rhobot run faqedit link a b`.
func runCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run a bot command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLine(cmd.Context(), opts, cmd.OutOrStdout(), strings.ToLower(args[0]), args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runLine(ctx context.Context, opts *rootOptions, w io.Writer, command string, args []string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	formatter, err := formatterFor(opts.output, w)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.prime(ctx, command); err != nil {
		return err
	}
	return printResult(w, formatter, a.dispatcher.Run(ctx, commands.JoinArgs(args)), ".")
}

// printResult writes res and saves any attachment under dir. An error
// response yields errCommandFailed after printing.
func printResult(w io.Writer, f output.Formatter, res commands.Result, dir string) error {
	if res.Response != nil {
		out, err := f.Format(res.Response)
		if err != nil {
			return fmt.Errorf("formatting response: %w", err)
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	if res.Attachment != nil {
		path := filepath.Join(dir, filepath.Base(res.Attachment.Name))
		if err := os.WriteFile(path, res.Attachment.Data, 0o600); err != nil {
			return fmt.Errorf("saving attachment: %w", err)
		}
		fmt.Fprintf(w, "Saved %s\n", path)
	}
	if res.Response != nil && res.Response.Error != "" {
		return errCommandFailed
	}
	return nil
}

// formatterFor resolves the --output flag. "auto" renders with glamour on
// a terminal and plain markdown otherwise.
func formatterFor(name string, w io.Writer) (output.Formatter, error) {
	width := 100
	if name == "auto" {
		name = "markdown"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			name = "terminal"
			if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
				width = cols
			}
		}
	}
	return output.ForName(name, width)
}
