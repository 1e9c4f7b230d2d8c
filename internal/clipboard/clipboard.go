// Package clipboard copies share links to the user's clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"io"

	sysclip "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// Copier copies text somewhere the user can paste it from.
type Copier interface {
	Copy(text string) error
}

// Func adapts a function to Copier.
type Func func(text string) error

// Copy calls f(text).
func (f Func) Copy(text string) error { return f(text) }

// System writes to the OS clipboard and falls back to an OSC52 escape
// sequence, which most terminals (including over SSH) turn into a clipboard
// write.
type System struct {
	// Terminal receives the OSC52 sequence. Nil disables the fallback.
	Terminal io.Writer

	// writeAll is swapped in tests.
	writeAll func(string) error
}

// NewSystem returns a System copier with the given terminal fallback.
func NewSystem(terminal io.Writer) *System {
	return &System{Terminal: terminal}
}

// Copy implements Copier.
func (s *System) Copy(text string) error {
	writeAll := s.writeAll
	if writeAll == nil {
		writeAll = sysclip.WriteAll
	}

	var sysErr error
	if s.writeAll != nil || !sysclip.Unsupported {
		if sysErr = writeAll(text); sysErr == nil {
			return nil
		}
	} else {
		sysErr = errors.New("no system clipboard available")
	}

	if s.Terminal == nil {
		return fmt.Errorf("copy to clipboard: %w", sysErr)
	}
	if _, err := osc52.New(text).WriteTo(s.Terminal); err != nil {
		return fmt.Errorf("copy to clipboard: %w", errors.Join(sysErr, err))
	}
	return nil
}
