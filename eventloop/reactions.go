package eventloop

import (
	"golang.org/x/sys/unix"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/message"
)

// onEvent is the callback the Loop registers on every channel it owns,
// reacting to the STATE and CHANNEL messages the framework promises to
// deliver whenever a channel's life-cycle or dcaps change.
func (l *Loop) onEvent(ch *channel.Channel, msg *message.Message, _ any) {
	switch msg.Type {
	case message.TypeState:
		switch channel.State(msg.MsgID) {
		case channel.StateActive:
			if fd := ch.Fd(); fd >= 0 {
				l.registerFd(ch, fd)
			}
		case channel.StateClosing:
			if fd := ch.Fd(); fd >= 0 {
				l.unregisterFdNum(fd)
			}
		case channel.StateDestroy:
			l.Del(ch)
		}

	case message.TypeChannel:
		switch msg.MsgID {
		case message.ChannelAdd:
			if child, ok := msg.Child.(*channel.Channel); ok {
				l.Add(child)
			}
		case message.ChannelDelete:
			if child, ok := msg.Child.(*channel.Channel); ok {
				l.Del(child)
			}
		case message.ChannelUpdate:
			l.reconcileDCaps(ch, channel.DCaps(msg.Data))
		case message.ChannelUpdateFd:
			l.reconcileFd(ch, int(msg.Data))
		}
	}
}

// reconcileDCaps compares ch's current dcaps against old, updating the
// process/pending lists and the poller's registered events accordingly.
func (l *Loop) reconcileDCaps(ch *channel.Channel, old channel.DCaps) {
	cur := ch.DCaps()

	if cur.Has(channel.DCapProcess) && !containsChannel(l.processable, ch) {
		l.processable = append(l.processable, ch)
	} else if !cur.Has(channel.DCapProcess) {
		l.processable = removeChannel(l.processable, ch)
	}

	pendingNow := cur.Has(channel.DCapPending)
	pendingBefore := old.Has(channel.DCapPending)
	if pendingNow && !containsChannel(l.pending, ch) {
		l.pending = append(l.pending, ch)
		if !pendingBefore {
			_ = l.poller.wake()
		}
	} else if !pendingNow {
		l.pending = removeChannel(l.pending, ch)
	}

	pollChanged := (old&(channel.DCapPollIn|channel.DCapPollOut|channel.DCapSuspend|channel.DCapSuspendPermanent)) !=
		(cur & (channel.DCapPollIn | channel.DCapPollOut | channel.DCapSuspend | channel.DCapSuspendPermanent))
	if pollChanged {
		if fd := ch.Fd(); fd >= 0 {
			if _, ok := l.fdOwner[fd]; ok {
				_ = l.poller.modify(fd, pollEventsFor(ch))
			}
		}
	}
}

// reconcileFd unregisters oldFd (if it had been registered) and registers
// the channel's current fd (if any).
func (l *Loop) reconcileFd(ch *channel.Channel, oldFd int) {
	if oldFd >= 0 {
		l.unregisterFdNum(oldFd)
	}
	if fd := ch.Fd(); fd >= 0 {
		l.registerFd(ch, fd)
	}
}

func (l *Loop) registerFd(ch *channel.Channel, fd int) {
	if _, already := l.fdOwner[fd]; already {
		return
	}
	if err := l.poller.register(fd, pollEventsFor(ch)); err != nil {
		l.log.Error("register fd failed", "fd", fd, "channel", ch.Name(), "error", err)
		return
	}
	l.fdOwner[fd] = ch
}

func (l *Loop) unregisterFdNum(fd int) {
	if _, ok := l.fdOwner[fd]; !ok {
		return
	}
	_ = l.poller.unregister(fd)
	delete(l.fdOwner, fd)
}

// pollEventsFor derives the epoll event mask from a channel's dcaps.
// A suspended channel (either flavor) is masked out entirely.
func pollEventsFor(ch *channel.Channel) uint32 {
	dcaps := ch.DCaps()
	if dcaps.Has(channel.DCapSuspend) || dcaps.Has(channel.DCapSuspendPermanent) {
		return 0
	}
	var ev uint32
	if dcaps.Has(channel.DCapPollIn) {
		ev |= unix.EPOLLIN
	}
	if dcaps.Has(channel.DCapPollOut) {
		ev |= unix.EPOLLOUT
	}
	return ev
}
