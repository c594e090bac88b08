// Package channel implements the shared channel life-cycle state machine,
// its dynamic capability bitset, and the callback fan-out plane every
// channel kind (Impl) plugs into.
package channel

import (
	"log/slog"
	"reflect"

	"github.com/Diego2la/tll/config"
	"github.com/Diego2la/tll/logging"
	"github.com/Diego2la/tll/message"
	"github.com/Diego2la/tll/metric"
)

// ContextRef is the minimal surface Channel needs from its owning
// registry.Context: enough to hold a strong reference without importing
// the registry package (which itself imports channel to construct
// channels — the dependency only goes one way).
type ContextRef interface {
	Retain()
	Release()
}

// CallbackFunc receives a message fanned out to a channel's subscribers.
// user is whatever opaque value was passed to CallbackAdd.
type CallbackFunc func(ch *Channel, msg *message.Message, user any)

type callbackKey struct {
	fn   uintptr
	user any
}

func keyFor(fn CallbackFunc, user any) callbackKey {
	return callbackKey{fn: reflect.ValueOf(fn).Pointer(), user: user}
}

// entry is the canonical record for one (fn, user) registration. inData/
// inGeneral track whether it currently occupies a slot in the
// corresponding array, so re-adding a bit that was previously compacted
// away re-inserts it instead of leaving it missing from the scan.
type entry struct {
	fn        CallbackFunc
	user      any
	mask      uint32
	inData    bool
	inGeneral bool
}

var dataBit = message.TypeData.Mask()

type childEntry struct {
	Channel *Channel
	Tag     string
}

// Channel is the shared internal block every Impl operates through: state,
// caps, dcaps, fd, config subtree, children, and the two callback arrays.
// It is produced only by registry.Context.Init.
type Channel struct {
	name     string
	impl     Impl
	ctxRef   ContextRef
	policies Policies

	state State
	caps  Caps
	dcaps DCaps
	fd    int

	config *config.Tree
	stats  *metric.ChannelStats

	parent   *Channel
	children []childEntry

	entries          map[callbackKey]*entry
	dataCallbacks    []*entry
	generalCallbacks []*entry
	dataEmitDepth    int
	generalEmitDepth int
}

// New constructs a bare Channel wrapping impl, not yet initialized. It is
// exported for package registry to call; other callers should go through
// registry.Context.Channel.
func New(impl Impl, ctxRef ContextRef) *Channel {
	c := &Channel{
		impl:     impl,
		ctxRef:   ctxRef,
		policies: impl.Policies(),
		state:    StateClosed,
		fd:       -1,
		config:   config.New(),
		entries:  make(map[callbackKey]*entry),
	}
	if ctxRef != nil {
		ctxRef.Retain()
	}
	return c
}

func (c *Channel) Name() string                { return c.name }
func (c *Channel) Impl() Impl                  { return c.impl }
func (c *Channel) State() State                { return c.state }
func (c *Channel) Caps() Caps                  { return c.caps }
func (c *Channel) DCaps() DCaps                { return c.dcaps }
func (c *Channel) Fd() int                     { return c.fd }
func (c *Channel) Config() *config.Tree        { return c.config }
func (c *Channel) Parent() *Channel            { return c.parent }
func (c *Channel) Stats() *metric.ChannelStats { return c.stats }
func (c *Channel) Policies() Policies          { return c.policies }

// SetName is called once by the registry during construction.
func (c *Channel) SetName(name string) { c.name = name }

// SetCaps is called by an Impl's Init to declare its static capabilities.
func (c *Channel) SetCaps(caps Caps) { c.caps = caps }

// SetStats attaches a stats record; called by the registry when a
// channel's URL requests stat=yes.
func (c *Channel) SetStats(s *metric.ChannelStats) { c.stats = s }

// SetImpl swaps the channel's Impl and refreshes its policies. Used by
// registry.Context.Init to adopt a Retry impl mid-construction.
func (c *Channel) SetImpl(impl Impl) {
	c.impl = impl
	c.policies = impl.Policies()
}

// Logger returns a component-scoped logger for this channel, labeled with
// its name once assigned.
func (c *Channel) Logger() *slog.Logger {
	name := c.name
	if name == "" {
		name = c.impl.Protocol()
	}
	return logging.Get(name)
}
