// Package eventloop implements the single-threaded, cooperative scheduler
// that drives every registered channel's Process and dcap-derived
// readiness. It multiplexes channel file descriptors with epoll and uses
// an internal eventfd to force a wake-up independent of fd readiness.
package eventloop

import (
	"golang.org/x/sys/unix"

	tllerrors "github.com/Diego2la/tll/errors"
)

// poller wraps a Linux epoll instance plus an always-registered eventfd
// used to force Wait to return without any channel fd being ready.
type poller struct {
	epfd   int
	wakeFd int
}

func newPoller() (*poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, tllerrors.Wrap(tllerrors.Transport, "eventloop", "newPoller", err, "epoll_create1")
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, tllerrors.Wrap(tllerrors.Transport, "eventloop", "newPoller", err, "eventfd")
	}

	p := &poller{epfd: epfd, wakeFd: wakeFd}
	if err := p.register(wakeFd, unix.EPOLLIN); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *poller) register(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return tllerrors.Wrap(tllerrors.Transport, "eventloop", "register", err, "epoll_ctl add fd %d", fd)
	}
	return nil
}

func (p *poller) modify(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return tllerrors.Wrap(tllerrors.Transport, "eventloop", "modify", err, "epoll_ctl mod fd %d", fd)
	}
	return nil
}

func (p *poller) unregister(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return tllerrors.Wrap(tllerrors.Transport, "eventloop", "unregister", err, "epoll_ctl del fd %d", fd)
	}
	return nil
}

// wake forces the next Wait call to return immediately.
func (p *poller) wake() error {
	buf := make([]byte, 8)
	buf[0] = 1
	_, err := unix.Write(p.wakeFd, buf)
	if err != nil && err != unix.EAGAIN {
		return tllerrors.Wrap(tllerrors.Transport, "eventloop", "wake", err, "eventfd write")
	}
	return nil
}

// drainWake consumes the eventfd counter after a wake-triggered Wait.
func (p *poller) drainWake() {
	buf := make([]byte, 8)
	_, _ = unix.Read(p.wakeFd, buf)
}

// wait blocks up to timeoutMs (-1 = forever) and returns the ready epoll
// events, which may include the wake fd.
func (p *poller) wait(timeoutMs int, events []unix.EpollEvent) (int, error) {
	n, err := unix.EpollWait(p.epfd, events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, tllerrors.Wrap(tllerrors.Transport, "eventloop", "wait", err, "epoll_wait")
	}
	return n, nil
}

func (p *poller) Close() error {
	unix.Close(p.wakeFd)
	return unix.Close(p.epfd)
}
