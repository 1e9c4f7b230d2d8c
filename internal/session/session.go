// Package session wires the document store, the debounced publisher and the
// external-change listener around one share link.
package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/sharemd/internal/clipboard"
	"github.com/five82/sharemd/internal/clock"
	"github.com/five82/sharemd/internal/codec"
	"github.com/five82/sharemd/internal/document"
	"github.com/five82/sharemd/internal/location"
	"github.com/five82/sharemd/internal/publish"
)

// Options configure a Session.
type Options struct {
	// Seed is the document shown when the link carries none. Zero value uses
	// document.Default().
	Seed         *document.State
	Base         string
	Delay        time.Duration
	MaxURLLength int
	Scheduler    clock.Scheduler
	Clipboard    clipboard.Copier
	OnPublish    func(location.Link, error)
	Logger       *slog.Logger
}

// Session is one editing session bound to a share link.
type Session struct {
	store     *document.Store
	publisher *publish.Publisher
	listener  *Listener
	clip      clipboard.Copier
	logger    *slog.Logger

	unsubscribe func()
}

// New builds a Session around res. Nothing is read or written until Start.
func New(res location.Resource, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seed := document.Default()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	c := codec.New()

	s := &Session{clip: opts.Clipboard, logger: logger}
	s.publisher = publish.New(res, opts.Scheduler, publish.Options{
		Delay:        opts.Delay,
		Ready:        func() bool { return s.store.Ready() },
		Base:         opts.Base,
		MaxURLLength: opts.MaxURLLength,
		OnPublish:    opts.OnPublish,
		Codec:        c,
		Logger:       logger.With("component", "publisher"),
	})
	s.store = document.NewStore(seed, s.publisher)
	s.listener = NewListener(s.store, res, c, logger.With("component", "listener"))
	s.listener.cancelPending = s.publisher.Cancel
	return s
}

// Start subscribes to external link changes and then hydrates the store from
// the current link. handler, which may be nil, sees every external change.
func (s *Session) Start(handler func(Outcome)) Outcome {
	if s.unsubscribe == nil {
		s.unsubscribe = s.listener.OnExternalChange(handler)
	}
	return s.listener.HydrateOnce()
}

// Store returns the document store.
func (s *Session) Store() *document.Store { return s.store }

// Share publishes the current state immediately and copies the resulting URL
// to the clipboard. The copied URL always matches the written link.
func (s *Session) Share() (location.Link, error) {
	link, err := s.publisher.FlushNow(s.store.Read())
	if err != nil {
		return link, err
	}
	if s.clip == nil {
		return link, nil
	}
	if err := s.clip.Copy(link.String()); err != nil {
		s.logger.Warn("copy share link", "error", err)
		return link, fmt.Errorf("copy link: %w", err)
	}
	s.logger.Info("share link copied", "length", len(link.String()))
	return link, nil
}

// Close stops listening and drops any pending write.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.publisher.Cancel()
}
