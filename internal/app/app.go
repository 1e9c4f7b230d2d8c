package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sharemd/internal/clipboard"
	"github.com/five82/sharemd/internal/clock"
	"github.com/five82/sharemd/internal/config"
	"github.com/five82/sharemd/internal/location"
	"github.com/five82/sharemd/internal/logging"
	"github.com/five82/sharemd/internal/prefs"
	"github.com/five82/sharemd/internal/session"
	"github.com/five82/sharemd/internal/ui"
)

// Options configure the sharemd application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/sharemd/prefs.toml
	// Link, when set, replaces the link file before the editor opens.
	Link string
}

// Run boots the sharemd TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	res, err := openLinkFile(cfg, opts.Link, logger)
	if err != nil {
		return err
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs", "error", err)
	}

	// The program is created after the session hydrates; callbacks that fire
	// before then have nothing to update.
	var prog atomic.Pointer[tea.Program]
	send := func(msg tea.Msg) {
		if p := prog.Load(); p != nil {
			p.Send(msg)
		}
	}

	sess := session.New(res, session.Options{
		Base:         cfg.BaseURL,
		Delay:        cfg.Debounce,
		MaxURLLength: cfg.MaxURLLength,
		Scheduler:    clock.Real{},
		Clipboard:    clipboard.NewSystem(os.Stderr),
		OnPublish: func(link location.Link, err error) {
			send(ui.PublishedMsg{Link: link, Err: err})
		},
		Logger: logger,
	})
	defer sess.Close()

	initial := sess.Start(func(out session.Outcome) {
		send(ui.ExternalChangeMsg{Outcome: out})
	})
	logger.Info("session started",
		"link_file", res.Path(),
		"mode", initial.State.Mode.String(),
		"applied", initial.Applied,
	)

	model := ui.New(ui.Options{
		Session:      sess,
		Initial:      initial,
		ThemeName:    userPrefs.Theme,
		LineNumbers:  userPrefs.LineNumbers,
		PrefsPath:    opts.PrefsPath,
		GlamourStyle: cfg.GlamourStyle,
		MaxURLLength: cfg.MaxURLLength,
		Logger:       logger,
	})
	p := ui.NewProgram(ctx, model)
	prog.Store(p)

	watchLink(ctx, res, logger)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// openLinkFile opens the configured link file, seeding it with link when one
// was given on the command line.
func openLinkFile(cfg config.Config, link string, logger *slog.Logger) (*location.File, error) {
	res, err := location.OpenFile(cfg.LinkFile, location.FileOptions{
		Base:   cfg.BaseURL,
		Logger: logger.With("component", "link-file"),
	})
	if err != nil {
		return nil, fmt.Errorf("open link file: %w", err)
	}
	if link != "" {
		if err := res.Write(location.Parse(link)); err != nil {
			return nil, fmt.Errorf("store link: %w", err)
		}
	}
	return res, nil
}

// watchLink follows external edits of the link file, polling when fsnotify is
// unavailable.
func watchLink(ctx context.Context, res *location.File, logger *slog.Logger) {
	if err := res.Watch(ctx); err != nil {
		logger.Warn("link file watch unavailable, polling instead", "error", err)
		StartPoller(ctx, res, defaultPollInterval, logger)
	}
}
