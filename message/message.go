// Package message defines the in-process message shape passed between a
// channel and its callbacks: a small fixed header plus an opaque body.
package message

import "github.com/Diego2la/tll/pkg/timestamp"

// Type distinguishes the four kinds of message a channel can emit.
type Type int16

const (
	// TypeData carries application payload; optionally addressed and timestamped.
	TypeData Type = iota
	// TypeControl carries impl-specific out-of-band signaling.
	TypeControl
	// TypeState carries a channel state transition; MsgID is the new state.
	TypeState
	// TypeChannel carries a channel-tree event; MsgID is one of the Channel* sub-ids.
	TypeChannel
)

func (t Type) String() string {
	switch t {
	case TypeData:
		return "DATA"
	case TypeControl:
		return "CONTROL"
	case TypeState:
		return "STATE"
	case TypeChannel:
		return "CHANNEL"
	default:
		return "UNKNOWN"
	}
}

// Mask returns the single bit this type occupies in a callback mask.
func (t Type) Mask() uint32 {
	return 1 << uint(t)
}

// MaskAll matches every message type; used by prefix.Base and the event
// loop, which both need to observe everything flowing through a channel.
const MaskAll = ^uint32(0)

// Channel sub-ids, valid when Type == TypeChannel. MsgID carries one of these.
const (
	// ChannelUpdate means dcaps changed; Data holds the previous dcaps.
	ChannelUpdate int32 = iota
	// ChannelAdd means a new child was linked; Addr is left at 0, Child carries it.
	ChannelAdd
	// ChannelDelete means a child was unlinked.
	ChannelDelete
	// ChannelUpdateFd means the fd changed; Data holds the previous fd.
	ChannelUpdateFd
)

// Message is the header + opaque payload every callback receives.
// Body stands in for the original's payload pointer: in a single Go
// process there is no cross-image ABI to preserve, so a slice is exact
// enough and a good deal safer.
type Message struct {
	Type  Type
	MsgID int32
	Seq   int64
	Flags int16
	Addr  int64
	Body  []byte

	// Data carries the CHANNEL sub-event's "previous value" payload: the
	// old dcaps for ChannelUpdate, the old fd for ChannelUpdateFd. Unused
	// for other message types.
	Data int64

	// Timestamp is a DATA-only convenience; 0 means unset. Core logic
	// never reads it, but impls are encouraged to stamp it via Stamp.
	Timestamp int64

	// Child carries the linked channel for CHANNEL/Add and CHANNEL/Delete
	// messages. Declared as `any` to avoid an import cycle with package
	// channel; callers type-assert to *channel.Channel.
	Child any
}

// Stamp sets Timestamp to the current time in the framework's canonical
// millisecond-since-epoch representation.
func (m *Message) Stamp() {
	m.Timestamp = timestamp.Now()
}

// Clone returns a shallow copy of m with its own Body backing array, so a
// callback may retain it beyond the fan-out call without racing the next
// Post into the same buffer.
func (m *Message) Clone() *Message {
	c := *m
	if m.Body != nil {
		c.Body = make([]byte, len(m.Body))
		copy(c.Body, m.Body)
	}
	return &c
}
