package channel

import (
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/message"
)

// SetState transitions the channel to s, publishing it to the config
// subtree and emitting a STATE callback. A no-op if s equals the current
// state. An Error transition is one-shot: the next Open call implicitly
// resets to Closed before proceeding, per the framework's documented
// Error→Closed behavior.
func (c *Channel) SetState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.config != nil {
		_ = c.config.Set("state", s.String())
	}
	c.emit(message.TypeState, &message.Message{Type: message.TypeState, MsgID: int32(s)})
}

// SetDCaps replaces the dynamic capability bitset, emitting a
// CHANNEL/Update message carrying the previous value so the event loop
// can reconcile its poll set. A no-op if new equals the current value.
func (c *Channel) SetDCaps(new DCaps) {
	old := c.dcaps
	if old == new {
		return
	}
	c.dcaps = new
	c.emit(message.TypeChannel, &message.Message{Type: message.TypeChannel, MsgID: message.ChannelUpdate, Data: int64(old)})
}

// SetFd replaces the channel's file descriptor, emitting a
// CHANNEL/UpdateFd message carrying the previous fd. -1 means no fd.
func (c *Channel) SetFd(new int) {
	old := c.fd
	if old == new {
		return
	}
	c.fd = new
	c.emit(message.TypeChannel, &message.Message{Type: message.TypeChannel, MsgID: message.ChannelUpdateFd, Data: int64(old)})
}

// Open begins the transition out of Closed (or, via the implicit reset,
// out of Error). Calling Open from any other state is InvalidArgument.
func (c *Channel) Open(u curl.URL) error {
	if c.state != StateClosed && c.state != StateError {
		return tllerrors.New(tllerrors.InvalidArgument, c.name, "Open", "cannot open from state %s", c.state)
	}
	if c.state == StateError {
		c.SetState(StateClosed)
	}

	c.SetState(StateOpening)
	if err := c.impl.Open(c, u); err != nil {
		c.SetState(StateError)
		return tllerrors.Wrap(tllerrors.OpenFailed, c.name, "Open", err, "impl open failed")
	}

	switch c.policies.Process {
	case ProcessNormal, ProcessAlways:
		c.SetDCaps(c.dcaps | DCapProcess)
	}

	if c.policies.Open == OpenAuto {
		c.SetState(StateActive)
	}
	return nil
}

// Close begins the transition out of Active/Opening/Closing. force=true
// closes immediately even under CloseLong policy, skipping graceful drain.
func (c *Channel) Close(force bool) error {
	if c.state == StateClosed || c.state == StateDestroy {
		return nil
	}
	c.SetState(StateClosing)
	err := c.impl.Close(c, force)

	if c.policies.Close == CloseNormal || force {
		c.finalizeClose()
	}
	// CloseLong without force: the impl finalises later via FinalizeClose,
	// e.g. once a prefix observes its child reach Closed.
	if err != nil {
		return tllerrors.Wrap(tllerrors.CloseFailed, c.name, "Close", err, "impl close failed")
	}
	return nil
}

// finalizeClose transitions Closing → Closed and clears the poll/process
// dcaps, except ProcessAlways channels which keep Process set regardless
// of state.
func (c *Channel) finalizeClose() {
	clear := DCapPollIn | DCapPollOut
	if c.policies.Process != ProcessAlways {
		clear |= DCapProcess
	}
	c.SetDCaps(c.dcaps &^ clear)
	c.SetState(StateClosed)
}

// FinalizeClose is called by CloseLong impls (directly, or via prefix.Base's
// default OnClosed hook) once their own graceful shutdown has completed.
// A no-op unless the channel is currently Closing.
func (c *Channel) FinalizeClose() {
	if c.state != StateClosing {
		return
	}
	c.finalizeClose()
}

// Process drives one step of impl work. Returns ErrAgain without calling
// the impl if DCapProcess is not set.
func (c *Channel) Process() error {
	if c.dcaps&DCapProcess == 0 {
		return tllerrors.ErrAgain
	}
	return c.impl.Process(c)
}

// Post delivers msg to the impl. Successful DATA posts increment the
// channel's tx/tx-bytes stats, if a stats record is attached.
func (c *Channel) Post(msg *message.Message) error {
	err := c.impl.Post(c, msg)
	if err == nil && msg.Type == message.TypeData && c.stats != nil {
		c.stats.RecordTx(len(msg.Body))
	}
	return err
}

// RecordRx is called by an impl after delivering inbound DATA through its
// own emit path, to keep the channel's rx/rx-bytes stats current.
func (c *Channel) RecordRx(n int) {
	if c.stats != nil {
		c.stats.RecordRx(n)
	}
}

// Emit lets an Impl deliver a message through this channel's callback
// plane, e.g. a DATA message carrying inbound bytes, or a CONTROL message.
func (c *Channel) Emit(msg *message.Message) {
	c.emit(msg.Type, msg)
}

// AddChild links child under c, tagged with tag (e.g. a prefix's local
// protocol name), and emits CHANNEL/Add.
func (c *Channel) AddChild(child *Channel, tag string) {
	c.children = append(c.children, childEntry{Channel: child, Tag: tag})
	child.parent = c
	c.emit(message.TypeChannel, &message.Message{Type: message.TypeChannel, MsgID: message.ChannelAdd, Child: child})
}

// RemoveChild unlinks child, emitting CHANNEL/Delete. A no-op if child is
// not currently a child of c.
func (c *Channel) RemoveChild(child *Channel) {
	for i, ce := range c.children {
		if ce.Channel == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			c.emit(message.TypeChannel, &message.Message{Type: message.TypeChannel, MsgID: message.ChannelDelete, Child: child})
			return
		}
	}
}

// Children returns the channel's current children in order.
func (c *Channel) Children() []*Channel {
	out := make([]*Channel, len(c.children))
	for i, ce := range c.children {
		out[i] = ce.Channel
	}
	return out
}

// Suspend sets SuspendPermanent on c and Suspend on every descendant,
// recursively. The event loop removes suspended channels from its poll
// set without destroying their state.
func (c *Channel) Suspend() {
	c.SetDCaps(c.dcaps | DCapSuspendPermanent)
	for _, ce := range c.children {
		ce.Channel.suspendChild()
	}
}

func (c *Channel) suspendChild() {
	c.SetDCaps(c.dcaps | DCapSuspend)
	for _, ce := range c.children {
		ce.Channel.suspendChild()
	}
}

// Resume clears SuspendPermanent on c and Suspend on every descendant that
// does not hold its own SuspendPermanent bit (one set by an independent
// call to that descendant's own Suspend).
func (c *Channel) Resume() {
	c.SetDCaps(c.dcaps &^ DCapSuspendPermanent)
	for _, ce := range c.children {
		ce.Channel.resumeChild()
	}
}

func (c *Channel) resumeChild() {
	if c.dcaps&DCapSuspendPermanent != 0 {
		return
	}
	c.SetDCaps(c.dcaps &^ DCapSuspend)
	for _, ce := range c.children {
		ce.Channel.resumeChild()
	}
}

// Destroy calls the impl's Free, emits a terminal STATE=Destroy, and
// releases the channel's reference to its owning context. Idempotent.
func (c *Channel) Destroy() {
	if c.state == StateDestroy {
		return
	}
	c.impl.Free(c)
	c.state = StateDestroy
	c.emit(message.TypeState, &message.Message{Type: message.TypeState, MsgID: int32(StateDestroy)})
	if c.ctxRef != nil {
		c.ctxRef.Release()
	}
}
