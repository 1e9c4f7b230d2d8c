// Package publish writes the document state to the share link, coalescing
// bursts of edits into a single write.
package publish

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/sharemd/internal/clock"
	"github.com/five82/sharemd/internal/codec"
	"github.com/five82/sharemd/internal/document"
	"github.com/five82/sharemd/internal/location"
)

// Defaults applied by New.
const (
	DefaultDelay        = 500 * time.Millisecond
	DefaultMaxURLLength = 8000
)

// ErrNotReady is returned by FlushNow before startup hydration has finished.
var ErrNotReady = errors.New("document is still loading")

// Options configure a Publisher.
type Options struct {
	// Delay is the quiescence window before a notified state is written.
	Delay time.Duration
	// Ready gates every write. Nil means always ready.
	Ready func() bool
	// Base is the base URL stamped on written links.
	Base string
	// MaxURLLength triggers a warning when exceeded. Zero uses the default,
	// negative disables the check.
	MaxURLLength int
	// OnPublish is called after every write attempt, outside the lock.
	OnPublish func(location.Link, error)
	Codec     *codec.Codec
	Logger    *slog.Logger
}

// Publisher is the only writer of the share link.
type Publisher struct {
	w     location.Writer
	sched clock.Scheduler
	opts  Options

	mu        sync.Mutex
	timer     clock.Timer
	gen       uint64
	pending   document.State
	published int
}

// New returns a Publisher writing to w. sched may be nil to use real timers.
func New(w location.Writer, sched clock.Scheduler, opts Options) *Publisher {
	if sched == nil {
		sched = clock.Real{}
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.MaxURLLength == 0 {
		opts.MaxURLLength = DefaultMaxURLLength
	}
	if opts.Codec == nil {
		opts.Codec = codec.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Publisher{w: w, sched: sched, opts: opts}
}

// Notify schedules a write of st after the quiescence delay, replacing any
// write still pending. Only the last state of a burst is ever written.
func (p *Publisher) Notify(st document.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked()
	p.gen++
	gen := p.gen
	p.pending = st
	p.timer = p.sched.AfterFunc(p.opts.Delay, func() { p.fire(gen) })
}

// FlushNow cancels any pending write and writes st immediately.
func (p *Publisher) FlushNow(st document.State) (location.Link, error) {
	p.mu.Lock()
	p.cancelLocked()
	p.gen++
	link, err := p.publishLocked(st)
	p.mu.Unlock()

	p.report(link, err)
	return link, err
}

// Pending reports whether a debounced write is scheduled.
func (p *Publisher) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer != nil
}

// Published returns the number of successful writes.
func (p *Publisher) Published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}

// Cancel drops any pending write without writing.
func (p *Publisher) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
	p.gen++
}

func (p *Publisher) cancelLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Publisher) fire(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.timer == nil {
		// Superseded by a later Notify, FlushNow or Cancel.
		p.mu.Unlock()
		return
	}
	p.timer = nil
	link, err := p.publishLocked(p.pending)
	p.mu.Unlock()

	if errors.Is(err, ErrNotReady) {
		return
	}
	p.report(link, err)
}

func (p *Publisher) publishLocked(st document.State) (location.Link, error) {
	if p.opts.Ready != nil && !p.opts.Ready() {
		p.opts.Logger.Debug("publish skipped while loading")
		return location.Link{}, ErrNotReady
	}

	link := location.Link{
		Base:    p.opts.Base,
		Mode:    st.Mode.String(),
		Content: p.opts.Codec.Encode(st.Content),
	}
	if limit := p.opts.MaxURLLength; limit > 0 {
		if n := len(link.String()); n > limit {
			p.opts.Logger.Warn("share link exceeds recommended length",
				"length", n, "limit", limit)
		}
	}

	if err := p.w.Write(link); err != nil {
		p.opts.Logger.Error("publish link", "error", err)
		return link, fmt.Errorf("publish link: %w", err)
	}
	p.published++
	p.opts.Logger.Debug("published link", "mode", link.Mode, "token_len", len(link.Content))
	return link, nil
}

func (p *Publisher) report(link location.Link, err error) {
	if p.opts.OnPublish != nil {
		p.opts.OnPublish(link, err)
	}
}
