// Package echo implements the "echo" protocol: every posted DATA message
// is immediately re-delivered as inbound DATA on the same channel. It is
// the framework's minimal loopback, used for exercising the callback
// plane and the event loop without any real transport.
//
// A "null=yes" parameter hands construction off to impl/null instead,
// demonstrating the Init-time Retry extension point.
package echo

import (
	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/impl/null"
	"github.com/Diego2la/tll/message"
)

// Impl is the echo channel. The zero value is ready to use.
type Impl struct {
	channel.NopImpl
}

func (Impl) Protocol() string { return "echo" }

// Policies are Manual/Long/Normal: Open leaves the channel in Opening and
// Close leaves it in Closing, both finalized from the next Process call
// rather than immediately, so echo exercises the same Opening/Closing
// observability any real transport does.
func (Impl) Policies() channel.Policies {
	return channel.Policies{Open: channel.OpenManual, Close: channel.CloseLong, Process: channel.ProcessNormal}
}

// Init reports InitRetry(&null.Impl{}) when the URL carries "null=yes",
// so the registry re-runs construction with the null channel's Impl
// instead of this one.
func (Impl) Init(ch *channel.Channel, u curl.URL, master *channel.Channel) channel.InitResult {
	if u.GetBool("null", false) {
		return channel.InitRetry(&null.Impl{})
	}
	ch.SetCaps(channel.CapInput | channel.CapOutput)
	return channel.InitOK()
}

func (Impl) Open(ch *channel.Channel, u curl.URL) error { return nil }

// Process drives the transitions Open/Close leave pending: Opening
// becomes Active on the first call after open, Closing is finalized to
// Closed on the first call after close. Any other state has no work and
// returns Again.
func (Impl) Process(ch *channel.Channel) error {
	switch ch.State() {
	case channel.StateOpening:
		ch.SetState(channel.StateActive)
		return nil
	case channel.StateClosing:
		ch.FinalizeClose()
		return nil
	default:
		return tllerrors.ErrAgain
	}
}

// Post re-emits msg as inbound DATA and records it against the
// channel's rx stats, mirroring what a real transport would do after
// successfully writing then immediately reading its own bytes back.
func (Impl) Post(ch *channel.Channel, msg *message.Message) error {
	echoed := msg.Clone()
	ch.Emit(echoed)
	ch.RecordRx(len(echoed.Body))
	return nil
}
