// Package reopen implements the "reopen" prefix: it wraps an inner
// channel and, whenever the inner channel reports Error, retries Open
// on it with exponential backoff instead of letting the failure
// propagate to the outer channel. It is the framework's answer to
// "keep a TCP client alive across transient disconnects" without
// baking retry policy into the transport impl itself.
package reopen

import (
	"math/rand"
	"time"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/prefix"

	"github.com/Diego2la/tll/pkg/retry"
)

// Impl is the reopen prefix. Its Process is driven by the outer
// channel's own Process dcap (set for the lifetime of the channel,
// independent of the inner channel's state) and does nothing until the
// current backoff delay has elapsed.
type Impl struct {
	*prefix.Base

	cfg     retry.Config
	openURL curl.URL
	attempt int
	nextTry time.Time
	giveUp  bool
}

// New constructs a reopen prefix. factory constructs the inner channel
// (see prefix.New); cfg describes the backoff schedule applied between
// reopen attempts, computed by backoff() on every Process call rather
// than a blocking sleep loop.
func New(factory channel.ChannelFactory, cfg retry.Config) *Impl {
	r := &Impl{cfg: normalize(cfg)}
	r.Base = prefix.New(factory, "reopen", channel.Policies{
		Open:    channel.OpenManual,
		Close:   channel.CloseLong,
		Process: channel.ProcessAlways,
	}, prefix.Hooks{
		OnError: r.onChildError,
	})
	return r
}

// Clone returns a fresh reopen Impl for the same factory and backoff
// config, with its own attempt counter and no child bound yet. Shadows
// the Base.Clone Base would otherwise promote, since that one knows
// nothing of the attempt/nextTry/giveUp fields declared here.
func (r *Impl) Clone() channel.Impl {
	return New(r.Base.Factory(), r.cfg)
}

func normalize(cfg retry.Config) retry.Config {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return cfg
}

// Open records the open-time URL (reused on every subsequent reopen
// attempt) and delegates to Base. A failed first attempt is swallowed
// here rather than propagated: onChildError has already armed the
// backoff (via the STATE=Error callback fired synchronously inside
// Base.Open), so Process takes over retrying, unless the attempt budget
// is already exhausted.
//
// The wrapper activates here, independent of whether the child actually
// connected: against an unreachable peer the child keeps cycling
// Opening->Error->Closed->Opening under backoff, but callers only care
// that the reopening channel itself is usable, so the outer channel goes
// Active on open rather than waiting on a child STATE=Active that may
// never come.
func (r *Impl) Open(ch *channel.Channel, u curl.URL) error {
	r.openURL = u
	r.attempt = 0
	r.giveUp = false
	err := r.Base.Open(ch, u)
	if err != nil && r.giveUp {
		return err
	}
	ch.SetState(channel.StateActive)
	return nil
}

// onChildError suppresses Base's default Error propagation and arms the
// backoff timer, unless the configured attempt budget is exhausted.
func (r *Impl) onChildError(outer, child *channel.Channel) bool {
	r.attempt++
	if r.attempt >= r.cfg.MaxAttempts {
		r.giveUp = true
		return false // let Base's default propagate Error to outer
	}
	r.nextTry = time.Now().Add(r.backoff())
	return true
}

func (r *Impl) backoff() time.Duration {
	delay := r.cfg.InitialDelay
	for i := 1; i < r.attempt; i++ {
		next := time.Duration(float64(delay) * r.cfg.Multiplier)
		if next > r.cfg.MaxDelay || next <= 0 {
			next = r.cfg.MaxDelay
		}
		delay = next
	}
	if r.cfg.AddJitter && delay > 0 {
		delay += time.Duration(rand.Int63n(int64(delay)/4 + 1))
	}
	return delay
}

// Process is a no-op until the current backoff has elapsed, at which
// point it retries Open on the child. A successful reopen resets the
// attempt counter; a failure re-arms the backoff via onChildError,
// which the child's own Open drives through its STATE callback.
func (r *Impl) Process(ch *channel.Channel) error {
	if r.giveUp || r.nextTry.IsZero() || time.Now().Before(r.nextTry) {
		return tllerrors.ErrAgain
	}
	r.nextTry = time.Time{}

	child := r.Base.Child()
	if child.State() != channel.StateError && child.State() != channel.StateClosed {
		return tllerrors.ErrAgain
	}
	if err := child.Open(r.openURL); err != nil {
		return tllerrors.ErrAgain
	}
	r.attempt = 0
	return nil
}
