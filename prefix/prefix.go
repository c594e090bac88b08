// Package prefix supplies Base, an embeddable Impl that wraps exactly one
// inner channel: "name+inner://..." splits into a local outer protocol and
// an inner one, the inner channel is constructed as a child, and by
// default every message it emits is re-emitted on the outer channel
// unchanged. Concrete prefix kinds (encoders, resource-limited reopen
// wrappers, ...) embed Base and override only the hooks that differ.
package prefix

import (
	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/message"
)

// Hooks lets an embedding impl observe and override Base's default
// pass-through behavior. Every field is optional; nil means "use Base's
// default". Outer is the prefix channel itself, Child the inner one.
type Hooks struct {
	// OnInit runs after the child channel has been constructed but before
	// Init returns, e.g. to stash a typed reference to the child or tweak
	// the outer channel's caps.
	OnInit func(outer, child *channel.Channel, u curl.URL) error

	// OnData intercepts a DATA message from the child before the default
	// re-emit. Returning handled=true suppresses the default re-emit.
	OnData func(outer, child *channel.Channel, msg *message.Message) (handled bool)

	// OnActive, OnError, OnClosing, OnClosed intercept the child's STATE
	// transitions. Returning handled=true suppresses Base's default
	// reaction (mirroring the state onto outer).
	OnActive  func(outer, child *channel.Channel) (handled bool)
	OnError   func(outer, child *channel.Channel) (handled bool)
	OnClosing func(outer, child *channel.Channel) (handled bool)
	OnClosed  func(outer, child *channel.Channel) (handled bool)

	// OnOther intercepts any message not covered above (CONTROL, CHANNEL
	// sub-events from the child's own descendants).
	OnOther func(outer, child *channel.Channel, msg *message.Message) (handled bool)
}

// Base implements channel.Impl for any "local+inner" protocol. Embed it
// and set Hooks (directly, or via New) to customize behavior; with empty
// Hooks it is a transparent pass-through prefix. Construct it with New:
// Init builds the child through the factory, which the zero value lacks.
type Base struct {
	channel.NopImpl

	factory  channel.ChannelFactory
	protocol string
	policies channel.Policies
	hooks    Hooks

	child *channel.Channel
	outer *channel.Channel
}

// New constructs a Base. factory is the registry the prefix uses to
// construct its inner child (typically the *registry.Context the prefix
// impl itself was registered against). protocol is the name Base reports
// from Protocol(); policies governs the prefix channel's own life-cycle
// and is used as given (with CloseLong the prefix waits for its child to
// finish closing before finalizing).
func New(factory channel.ChannelFactory, protocol string, policies channel.Policies, hooks Hooks) *Base {
	return &Base{factory: factory, protocol: protocol, policies: policies, hooks: hooks}
}

func (b *Base) Protocol() string                { return b.protocol }
func (b *Base) Policies() channel.Policies      { return b.policies }
func (b *Base) Child() *channel.Channel         { return b.child }
func (b *Base) Factory() channel.ChannelFactory { return b.factory }

// Clone returns a fresh Base sharing the same factory, protocol name,
// policies and hooks, but with no child/outer bound yet. A prefix kind
// that embeds Base and adds its own per-channel state (reopen's backoff
// counters) must shadow Clone with its own, since this one knows nothing
// of the embedder's fields.
func (b *Base) Clone() channel.Impl {
	return New(b.factory, b.protocol, b.policies, b.hooks)
}

// Init splits u's "local+inner" protocol, rewrites it into a concrete
// inner URL (inner protocol, tll.internal=yes, name = outer-name/local),
// and constructs the child through the factory. The child is linked as
// the outer channel's only child and subscribed to on every message type.
func (b *Base) Init(ch *channel.Channel, u curl.URL, master *channel.Channel) channel.InitResult {
	b.outer = ch

	local, inner, ok := curl.SplitPrefix(u.Proto)
	if !ok {
		return channel.InitErr(tllerrors.New(tllerrors.InvalidArgument, b.protocol, "Init", "protocol %q is not a prefix (no +)", u.Proto))
	}

	childURL := u.Clone()
	childURL.Proto = inner
	childURL = childURL.Set("tll.internal", "yes")

	outerName := ch.Name()
	if outerName == "" {
		outerName, _ = u.Get("name")
	}
	if outerName == "" {
		outerName = b.protocol
	}
	childURL = childURL.Set("name", outerName+"/"+local)

	child, err := b.factory.Init(childURL, master, nil)
	if err != nil {
		return channel.InitErr(tllerrors.Wrap(tllerrors.InitFailed, b.protocol, "Init", err, "constructing inner channel %q", inner))
	}
	b.child = child
	ch.AddChild(child, local)
	child.CallbackAdd(b.onChildEvent, nil, message.MaskAll)

	if sc, err := child.Impl().Scheme(child); err == nil && sc != nil {
		// Scheme defaults to the child's; nothing else to do, exposed via
		// Scheme() below.
		_ = sc
	}

	if b.hooks.OnInit != nil {
		if err := b.hooks.OnInit(ch, child, u); err != nil {
			return channel.InitErr(err)
		}
	}

	return channel.InitOK()
}

// Free unlinks and destroys the child channel.
func (b *Base) Free(ch *channel.Channel) {
	if b.child == nil {
		return
	}
	_ = b.child.CallbackDel(b.onChildEvent, nil, message.MaskAll)
	ch.RemoveChild(b.child)
	b.child.Destroy()
}

// Open opens the child. The prefix itself reaches Active (or stays in
// Opening, for ManualPolicy kinds) based on the child's own STATE
// callbacks routed through onChildEvent.
func (b *Base) Open(ch *channel.Channel, u curl.URL) error {
	return b.child.Open(u)
}

// Close closes the child. Under CloseLong (Base's recommended policy)
// the outer channel only finalizes once onChildEvent observes the
// child reach Closed.
func (b *Base) Close(ch *channel.Channel, force bool) error {
	return b.child.Close(force)
}

// Post forwards an outbound message to the child.
func (b *Base) Post(ch *channel.Channel, msg *message.Message) error {
	return b.child.Post(msg)
}

// Scheme defers to the child's scheme.
func (b *Base) Scheme(ch *channel.Channel) (any, error) {
	return b.child.Impl().Scheme(b.child)
}

// onChildEvent is Base's own callback on the child channel, dispatching
// to the Hooks or falling back to the documented default behavior: DATA
// and CONTROL/CHANNEL-from-grandchild messages re-emit unchanged on the
// outer channel; STATE mirrors onto the outer channel's own state.
func (b *Base) onChildEvent(child *channel.Channel, msg *message.Message, _ any) {
	switch msg.Type {
	case message.TypeData:
		handled := false
		if b.hooks.OnData != nil {
			handled = b.hooks.OnData(b.outer, child, msg)
		}
		if !handled {
			b.outer.Emit(msg)
		}

	case message.TypeState:
		switch channel.State(msg.MsgID) {
		case channel.StateActive:
			if b.hooks.OnActive == nil || !b.hooks.OnActive(b.outer, child) {
				if b.outer.Policies().Open == channel.OpenManual {
					b.outer.SetState(channel.StateActive)
				}
			}
		case channel.StateError:
			if b.hooks.OnError == nil || !b.hooks.OnError(b.outer, child) {
				b.outer.SetState(channel.StateError)
			}
		case channel.StateClosing:
			if b.hooks.OnClosing == nil || !b.hooks.OnClosing(b.outer, child) {
				if s := b.outer.State(); s == channel.StateOpening || s == channel.StateActive {
					b.outer.SetState(channel.StateClosing)
				}
			}
		case channel.StateClosed:
			if b.hooks.OnClosed == nil || !b.hooks.OnClosed(b.outer, child) {
				b.outer.FinalizeClose()
			}
		}

	default:
		handled := false
		if b.hooks.OnOther != nil {
			handled = b.hooks.OnOther(b.outer, child, msg)
		}
		if !handled {
			b.outer.Emit(msg)
		}
	}
}
