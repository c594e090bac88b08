// Package null implements the "null" protocol: a channel that discards
// every posted message and never reports inbound data. It exists for
// testing the framework's state machine and callback plane in isolation
// from any real transport, and as the fallback Echo hands off to when
// asked to behave as a sink.
package null

import (
	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	"github.com/Diego2la/tll/message"
)

// Impl is the null channel. The zero value is ready to use.
type Impl struct {
	channel.NopImpl
}

func (Impl) Protocol() string { return "null" }

func (Impl) Policies() channel.Policies {
	return channel.Policies{Open: channel.OpenAuto, Close: channel.CloseNormal, Process: channel.ProcessNever}
}

func (Impl) Init(ch *channel.Channel, u curl.URL, master *channel.Channel) channel.InitResult {
	ch.SetCaps(channel.CapInput | channel.CapOutput)
	return channel.InitOK()
}

func (Impl) Open(ch *channel.Channel, u curl.URL) error { return nil }

// Post discards msg and reports success, matching the protocol's name.
func (Impl) Post(ch *channel.Channel, msg *message.Message) error { return nil }
