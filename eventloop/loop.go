package eventloop

import (
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Diego2la/tll/channel"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/logging"
	"github.com/Diego2la/tll/message"
)

var subscribeMask = message.TypeChannel.Mask() | message.TypeState.Mask()

// Loop is the single-threaded, cooperative scheduler. All Impl methods of
// channels it owns run on whichever goroutine calls Poll/Process — the
// Loop itself is not safe for concurrent use from multiple goroutines.
type Loop struct {
	poller *poller
	log    *slog.Logger

	all         []*channel.Channel
	processable []*channel.Channel
	pending     []*channel.Channel
	fdOwner     map[int]*channel.Channel
}

// New constructs a Loop with its own epoll instance and wake eventfd.
func New() (*Loop, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	return &Loop{
		poller:  p,
		log:     logging.Get("eventloop"),
		fdOwner: make(map[int]*channel.Channel),
	}, nil
}

// Close releases the loop's epoll instance and eventfd. It does not
// touch any channel it still owns.
func (l *Loop) Close() error { return l.poller.Close() }

// Add subscribes to ch's CHANNEL and STATE callbacks, tracks it in the
// process/pending lists per its current dcaps, and registers its fd (if
// any) in the poller.
func (l *Loop) Add(ch *channel.Channel) {
	ch.CallbackAdd(l.onEvent, nil, subscribeMask)
	l.all = append(l.all, ch)
	l.reconcileDCaps(ch, 0)
	if fd := ch.Fd(); fd >= 0 {
		l.registerFd(ch, fd)
	}
}

// Del unsubscribes ch and removes it from every internal list and the
// poller.
func (l *Loop) Del(ch *channel.Channel) {
	_ = ch.CallbackDel(l.onEvent, nil, subscribeMask)
	l.all = removeChannel(l.all, ch)
	l.processable = removeChannel(l.processable, ch)
	l.pending = removeChannel(l.pending, ch)
	if fd := ch.Fd(); fd >= 0 {
		l.unregisterFdNum(fd)
	}
}

// Poll blocks up to timeout for readiness. If the internal wake event
// fires, every pending channel is advanced and Poll returns (nil, nil).
// If a channel fd becomes ready, that channel is returned. A plain
// timeout also returns (nil, nil).
func (l *Loop) Poll(timeout time.Duration) (*channel.Channel, error) {
	timeoutMs := -1
	if timeout >= 0 {
		timeoutMs = int(timeout / time.Millisecond)
	}

	events := make([]unix.EpollEvent, 32)
	n, err := l.poller.wait(timeoutMs, events)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		if int(events[i].Fd) == l.poller.wakeFd {
			l.poller.drainWake()
			l.advancePending()
			return nil, nil
		}
	}

	for i := 0; i < n; i++ {
		if ch, ok := l.fdOwner[int(events[i].Fd)]; ok {
			return ch, nil
		}
	}
	return nil, nil
}

// Process advances every channel with the Process dcap set, plus every
// Pending channel, once each. It returns ErrAgain only if every
// invocation this tick returned ErrAgain (or there was nothing to do),
// telling the caller it's safe to block in Poll.
func (l *Loop) Process() error {
	invoked := make(map[*channel.Channel]bool, len(l.processable)+len(l.pending))
	ran := false
	allAgain := true

	step := func(ch *channel.Channel) {
		if invoked[ch] {
			return
		}
		invoked[ch] = true
		ran = true
		if err := ch.Process(); !tllerrors.IsAgain(err) {
			allAgain = false
		}
	}
	for _, ch := range l.processable {
		step(ch)
	}
	for _, ch := range l.pending {
		step(ch)
	}

	if !ran || allAgain {
		return tllerrors.ErrAgain
	}
	return nil
}

func (l *Loop) advancePending() {
	for _, ch := range l.pending {
		_ = ch.Process()
	}
}

func removeChannel(list []*channel.Channel, ch *channel.Channel) []*channel.Channel {
	for i, c := range list {
		if c == ch {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func containsChannel(list []*channel.Channel, ch *channel.Channel) bool {
	for _, c := range list {
		if c == ch {
			return true
		}
	}
	return false
}
