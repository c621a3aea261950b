// Package audio plays the cue that accompanies critical alerts. Every cue is
// best effort: callers log a failure and move on.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync/atomic"
	"time"
)

// DefaultCommandTimeout bounds an external player so a hung process cannot
// pile up behind repeated alerts.
const DefaultCommandTimeout = 10 * time.Second

// Cue plays a sound.
type Cue interface {
	Play(ctx context.Context) error
}

// Nop is a Cue that does nothing.
type Nop struct{}

// Play implements Cue.
func (Nop) Play(context.Context) error { return nil }

// Bell rings the terminal bell by writing BEL to W.
type Bell struct {
	W io.Writer
}

// Play implements Cue.
func (b Bell) Play(context.Context) error {
	if b.W == nil {
		return nil
	}
	if _, err := io.WriteString(b.W, "\a"); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	return nil
}

// Command runs an external player, for example {"mpg123", "-q", "incoming.mp3"}.
type Command struct {
	Args    []string
	Timeout time.Duration
}

// Play implements Cue.
func (c Command) Play(ctx context.Context) error {
	if len(c.Args) == 0 {
		return nil
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("run %s: %w: %s", c.Args[0], err, out)
		}
		return fmt.Errorf("run %s: %w", c.Args[0], err)
	}
	return nil
}

// Multi plays every cue in order and joins their errors.
type Multi []Cue

// Play implements Cue.
func (m Multi) Play(ctx context.Context) error {
	var errs []error
	for _, cue := range m {
		if cue == nil {
			continue
		}
		if err := cue.Play(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Mutable wraps a Cue with a mute switch that can flip while alerts play.
type Mutable struct {
	cue   Cue
	muted atomic.Bool
}

// NewMutable wraps cue.
func NewMutable(cue Cue, muted bool) *Mutable {
	m := &Mutable{cue: cue}
	m.muted.Store(muted)
	return m
}

// SetMuted turns the cue off or on.
func (m *Mutable) SetMuted(muted bool) { m.muted.Store(muted) }

// Muted reports whether the cue is off.
func (m *Mutable) Muted() bool { return m.muted.Load() }

// Play implements Cue.
func (m *Mutable) Play(ctx context.Context) error {
	if m.muted.Load() || m.cue == nil {
		return nil
	}
	return m.cue.Play(ctx)
}
