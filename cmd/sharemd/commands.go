package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/sharemd/internal/app"
	"github.com/five82/sharemd/internal/codec"
	"github.com/five82/sharemd/internal/config"
	"github.com/five82/sharemd/internal/document"
	"github.com/five82/sharemd/internal/location"
	"github.com/five82/sharemd/internal/logging"
	"github.com/five82/sharemd/internal/logtail"
)

var warnColor = color.New(color.FgYellow)

type globalFlags struct {
	configPath string
	prefsPath  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:     "sharemd [url]",
		Version: version,
		Short:   "Markdown editor whose document lives in a shareable link",
		Long: `sharemd edits a markdown document that is stored entirely in a share link.

Every edit is written back to the link file after a short pause; ctrl+s copies
the current link to the clipboard. Opening a copied link restores the document.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, flags, args)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/sharemd/config.toml)")
	root.PersistentFlags().StringVar(&flags.prefsPath, "prefs", "", "prefs file (default ~/.config/sharemd/prefs.toml)")

	root.AddCommand(
		newOpenCmd(flags),
		newEncodeCmd(flags),
		newDecodeCmd(),
		newLogsCmd(flags),
	)
	return root
}

func newOpenCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "open [url]",
		Short: "Open the editor, optionally on a share link",
		Long: `Open the editor. With a url, the link file is replaced by it first;
otherwise the editor resumes the link file as it is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, flags, args)
		},
	}
}

func runOpen(cmd *cobra.Command, flags *globalFlags, args []string) error {
	opts := app.Options{ConfigPath: flags.configPath, PrefsPath: flags.prefsPath}
	if len(args) == 1 {
		opts.Link = strings.TrimSpace(args[0])
	}
	return app.Run(cmd.Context(), opts)
}

func newEncodeCmd(flags *globalFlags) *cobra.Command {
	var (
		modeName string
		base     string
	)
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Print a share link for a markdown file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := document.ParseMode(modeName)
			if !ok {
				return fmt.Errorf("unknown mode %q (want edit or preview)", modeName)
			}
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if base == "" {
				base = cfg.BaseURL
			}

			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			link := location.Link{Base: base, Mode: mode.String(), Content: codec.Encode(content)}
			raw := link.String()
			fmt.Fprintln(cmd.OutOrStdout(), raw)

			if cfg.MaxURLLength > 0 && len(raw) > cfg.MaxURLLength {
				warnColor.Fprintf(cmd.ErrOrStderr(), "warning: link is %d characters, some browsers stop at %d\n", len(raw), cfg.MaxURLLength)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", "edit", "mode stored in the link: edit or preview")
	cmd.Flags().StringVar(&base, "base", "", "base URL (default from config)")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func newDecodeCmd() *cobra.Command {
	var printMode bool
	cmd := &cobra.Command{
		Use:   "decode <url|token>",
		Short: "Print the document stored in a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link := parseInput(args[0])
			if printMode {
				mode, _ := document.ParseMode(link.Mode)
				fmt.Fprintln(cmd.OutOrStdout(), mode.String())
				return nil
			}
			if link.Content == "" {
				return errors.New("link has no content")
			}
			content, err := codec.Decode(link.Content)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&printMode, "mode", false, "print the link's mode instead of its content")
	return cmd
}

// parseInput accepts a full link or a bare content token.
func parseInput(arg string) location.Link {
	arg = strings.TrimSpace(arg)
	if strings.ContainsAny(arg, "?#") || strings.Contains(arg, location.ParamContent+"=") {
		return location.Parse(arg)
	}
	return location.Link{Content: codec.Token(arg)}
}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.Faint),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed, color.Bold),
}

func newLogsCmd(flags *globalFlags) *cobra.Command {
	var (
		lines    int
		minLevel string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the end of the sharemd log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			entries, err := logtail.Read(cfg.LogFile, lines, logging.ParseLevel(minLevel))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				if c, ok := levelColors[e.Level]; ok {
					c.Fprintln(out, e.Line)
					continue
				}
				fmt.Fprintln(out, e.Line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of entries to show")
	cmd.Flags().StringVar(&minLevel, "level", "debug", "lowest level shown: debug, info, warn or error")
	return cmd
}
