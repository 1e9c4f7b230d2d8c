package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/five82/sharemd/internal/clock"
)

// settleDelay lets an editor finish writing before the file is read.
const settleDelay = 50 * time.Millisecond

// File keeps the current link in a one-line text file. Every sharemd process
// pointed at the same file sees the others' writes as external changes, which
// is how several terminals share one document.
type File struct {
	path   string
	base   string
	logger *slog.Logger
	sched  clock.Scheduler

	mu       sync.Mutex
	seen     string
	settle   clock.Timer
	watcher  *fsnotify.Watcher
	watching bool

	subs subscribers
}

// FileOptions configure OpenFile.
type FileOptions struct {
	// Base is used when a written Link has no base URL.
	Base      string
	Logger    *slog.Logger
	Scheduler clock.Scheduler
}

// OpenFile prepares path for use as the link resource, creating its directory.
// The file itself is created on the first Write.
func OpenFile(path string, opts FileOptions) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("link file path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve link file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create link dir: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = clock.Real{}
	}

	f := &File{path: abs, base: opts.Base, logger: logger, sched: sched}
	if raw, err := f.readRaw(); err == nil {
		f.seen = raw
	}
	return f, nil
}

// Path returns the absolute path of the link file.
func (f *File) Path() string { return f.path }

// Read implements Reader. A missing file reads as an empty link.
func (f *File) Read() (Link, error) {
	raw, err := f.readRaw()
	if err != nil {
		return Link{}, err
	}
	return Parse(raw), nil
}

func (f *File) readRaw() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read link file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write implements Writer. The file is replaced atomically so readers never
// observe a mode without its content.
func (f *File) Write(link Link) error {
	if link.Base == "" {
		link.Base = f.base
	}
	raw := link.String()

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp link file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(raw + "\n"); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp link file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp link file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace link file: %w", err)
	}

	f.seen = raw
	return nil
}

// Subscribe implements Resource. Changes are only delivered while Watch runs.
func (f *File) Subscribe(fn func(Link)) func() {
	return f.subs.add(fn)
}

// Watch starts delivering external changes of the link file to subscribers
// until ctx is cancelled. It returns immediately.
func (f *File) Watch(ctx context.Context) error {
	f.mu.Lock()
	if f.watching {
		f.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		f.mu.Unlock()
		return fmt.Errorf("watch link dir: %w", err)
	}
	f.watcher = watcher
	f.watching = true
	f.mu.Unlock()

	go f.watchLoop(ctx, watcher)
	return nil
}

func (f *File) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() { _ = watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			f.mu.Lock()
			if f.settle != nil {
				f.settle.Stop()
				f.settle = nil
			}
			f.mu.Unlock()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			f.mu.Lock()
			if f.settle != nil {
				f.settle.Stop()
			}
			f.settle = f.sched.AfterFunc(settleDelay, f.reloadSettled)
			f.mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("link file watch error", "path", f.path, "error", err)
		}
	}
}

func (f *File) reloadSettled() {
	f.mu.Lock()
	f.settle = nil
	f.mu.Unlock()
	if err := f.Reload(); err != nil {
		f.logger.Warn("reload link file", "path", f.path, "error", err)
	}
}

// Reload reads the file and notifies subscribers unless the content is the
// last link this process wrote or delivered. Watch calls it after each
// settled change; pollers may call it directly.
func (f *File) Reload() error {
	raw, err := f.readRaw()
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}

	f.mu.Lock()
	if raw == f.seen {
		f.mu.Unlock()
		return nil
	}
	f.seen = raw
	f.mu.Unlock()

	f.logger.Debug("link file changed externally", "path", f.path)
	f.subs.publish(Parse(raw))
	return nil
}
