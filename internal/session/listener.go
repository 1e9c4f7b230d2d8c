package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/five82/sharemd/internal/codec"
	"github.com/five82/sharemd/internal/document"
	"github.com/five82/sharemd/internal/location"
)

// Outcome describes one hydration attempt.
type Outcome struct {
	// State is the store state after the attempt.
	State document.State
	// Applied reports whether the link changed the store.
	Applied bool
	// Err is the decode or read failure, if any. The store keeps its
	// previous (or seed) state when Err is set.
	Err error
}

// Listener hydrates the store from the link at startup and whenever the link
// changes from outside this process.
type Listener struct {
	store  *document.Store
	res    location.Resource
	codec  *codec.Codec
	logger *slog.Logger

	// cancelPending drops a debounced local write that an external change
	// has made stale.
	cancelPending func()

	once    sync.Once
	initial Outcome
}

// NewListener returns a Listener. codec and logger may be nil.
func NewListener(store *document.Store, res location.Resource, c *codec.Codec, logger *slog.Logger) *Listener {
	if c == nil {
		c = codec.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{store: store, res: res, codec: c, logger: logger}
}

// HydrateOnce reads the link into the store and then marks the store ready.
// Only the first call does any work; later calls return the first outcome.
func (l *Listener) HydrateOnce() Outcome {
	l.once.Do(func() {
		l.initial = l.hydrateInitial()
		l.store.MarkReady()
	})
	return l.initial
}

func (l *Listener) hydrateInitial() Outcome {
	st := l.store.Read()

	link, err := l.res.Read()
	if err != nil {
		l.logger.Warn("read share link", "error", err)
		return Outcome{State: st, Err: err}
	}

	var out Outcome
	if mode, ok := l.parseMode(link.Mode); ok {
		st.Mode = mode
	}

	content, err := l.codec.Decode(link.Content)
	switch {
	case err == nil:
		st.Content = content
	case errors.Is(err, codec.ErrEmpty):
	default:
		l.logger.Warn("decode share link, keeping default document",
			"scheme", l.codec.SchemeOf(link.Content), "error", err)
		out.Err = err
	}

	l.store.Hydrate(st)
	out.State = st
	out.Applied = !link.IsZero()
	return out
}

// OnExternalChange calls handler after each external change of the link has
// been applied to the store. A link whose content fails to decode leaves the
// store untouched. The returned function unsubscribes.
func (l *Listener) OnExternalChange(handler func(Outcome)) func() {
	return l.res.Subscribe(func(link location.Link) {
		out := l.applyExternal(link)
		if handler != nil {
			handler(out)
		}
	})
}

func (l *Listener) applyExternal(link location.Link) Outcome {
	prev := l.store.Read()
	st := prev

	content, err := l.codec.Decode(link.Content)
	switch {
	case err == nil:
		st.Content = content
	case errors.Is(err, codec.ErrEmpty):
		// A link without content keeps the document the user is looking at.
	default:
		l.logger.Warn("decode external link change, document unchanged",
			"scheme", l.codec.SchemeOf(link.Content), "error", err)
		return Outcome{State: st, Err: err}
	}
	if mode, ok := l.parseMode(link.Mode); ok {
		st.Mode = mode
	}

	if l.cancelPending != nil {
		l.cancelPending()
	}
	l.store.Hydrate(st)
	l.logger.Info("hydrated from external link change", "mode", st.Mode.String())
	return Outcome{State: st, Applied: st != prev}
}

func (l *Listener) parseMode(raw string) (document.Mode, bool) {
	if raw == "" {
		return document.ModeEdit, false
	}
	mode, ok := document.ParseMode(raw)
	if !ok {
		l.logger.Warn("ignoring unknown mode in share link", "mode", raw)
	}
	return mode, ok
}
