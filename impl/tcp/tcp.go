// Package tcp implements the "tcp" protocol: a client channel that
// connects to host:port and a "tcp+server" channel that listens and
// spawns one child channel per accepted connection. Both drive their
// sockets directly through golang.org/x/sys/unix in non-blocking mode
// so they plug straight into eventloop's epoll-based poll set instead
// of going through net.Conn's blocking-goroutine model.
package tcp

import (
	"net"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/message"
)

const readChunk = 64 * 1024

func resolveTCP(u curl.URL) (*unix.SockaddrInet4, error) {
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		// Host may be bare "host" with the port carried as a parameter.
		host = u.Host
		portStr, _ = u.Get("port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, tllerrors.New(tllerrors.InvalidArgument, "tcp", "resolveTCP", "invalid or missing port in %q", u.Host)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil, tllerrors.Wrap(tllerrors.InvalidArgument, "tcp", "resolveTCP", err, "cannot resolve host %q", host)
		}
		ip = ips[0]
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, tllerrors.New(tllerrors.InvalidArgument, "tcp", "resolveTCP", "only IPv4 is supported, got %q", host)
	}
	addr := &unix.SockaddrInet4{Port: port}
	copy(addr.Addr[:], ip4)
	return addr, nil
}

func newNonblockingSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, tllerrors.Wrap(tllerrors.Transport, "tcp", "socket", err, "socket(2)")
	}
	return fd, nil
}

// Client is the "tcp" protocol: an outbound connection. Open initiates a
// non-blocking connect; Process observes its completion via SO_ERROR and
// otherwise reads and posts inbound bytes.
type Client struct {
	channel.NopImpl

	connected bool
}

// Clone returns a fresh, unconnected Client, letting one registered
// instance serve as the template for every "tcp://" channel constructed.
func (c *Client) Clone() channel.Impl { return &Client{} }

func (c *Client) Protocol() string { return "tcp" }

func (c *Client) Policies() channel.Policies {
	return channel.Policies{Open: channel.OpenManual, Close: channel.CloseNormal, Process: channel.ProcessNormal}
}

func (c *Client) Init(ch *channel.Channel, u curl.URL, master *channel.Channel) channel.InitResult {
	ch.SetCaps(channel.CapInput | channel.CapOutput)
	return channel.InitOK()
}

func (c *Client) Open(ch *channel.Channel, u curl.URL) error {
	addr, err := resolveTCP(u)
	if err != nil {
		return err
	}
	fd, err := newNonblockingSocket()
	if err != nil {
		return err
	}

	c.connected = false
	if err := unix.Connect(fd, addr); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return tllerrors.Wrap(tllerrors.Transport, "tcp", "Open", err, "connect(2) to %s", u.Host)
	}

	ch.SetFd(fd)
	ch.SetDCaps(ch.DCaps() | channel.DCapPollOut)
	return nil
}

func (c *Client) Close(ch *channel.Channel, force bool) error {
	if fd := ch.Fd(); fd >= 0 {
		unix.Close(fd)
		ch.SetFd(-1)
	}
	c.connected = false
	return nil
}

// Process checks for connect completion while Opening, otherwise drains
// one chunk of inbound bytes and posts it as DATA.
func (c *Client) Process(ch *channel.Channel) error {
	fd := ch.Fd()
	if fd < 0 {
		return tllerrors.ErrAgain
	}

	if !c.connected {
		errno, gerr := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if gerr != nil {
			ch.SetState(channel.StateError)
			return tllerrors.Wrap(tllerrors.Transport, "tcp", "Process", gerr, "getsockopt(SO_ERROR)")
		}
		if errno != 0 {
			ch.SetState(channel.StateError)
			return tllerrors.New(tllerrors.Transport, "tcp", "Process", "connect failed: errno %d", errno)
		}
		c.connected = true
		ch.SetDCaps((ch.DCaps() &^ channel.DCapPollOut) | channel.DCapPollIn)
		if ch.State() == channel.StateOpening {
			ch.SetState(channel.StateActive)
		}
		return nil
	}

	buf := make([]byte, readChunk)
	n, err := unix.Read(fd, buf)
	switch {
	case err == unix.EAGAIN:
		return tllerrors.ErrAgain
	case err != nil:
		ch.SetState(channel.StateError)
		return tllerrors.Wrap(tllerrors.Transport, "tcp", "Process", err, "read(2)")
	case n == 0:
		_ = ch.Close(false)
		return tllerrors.ErrAgain
	}

	msg := &message.Message{Type: message.TypeData, Body: buf[:n]}
	msg.Stamp()
	ch.Emit(msg)
	ch.RecordRx(n)
	return nil
}

// Post writes msg.Body to the socket. An EAGAIN write is reported as
// backpressure (ErrAgain); a short write is reported as a Transport
// error. There is no partial-post tracking.
func (c *Client) Post(ch *channel.Channel, msg *message.Message) error {
	fd := ch.Fd()
	if fd < 0 || !c.connected {
		return tllerrors.New(tllerrors.InvalidArgument, "tcp", "Post", "channel is not connected")
	}
	n, err := unix.Write(fd, msg.Body)
	if err == unix.EAGAIN {
		return tllerrors.ErrAgain
	}
	if err != nil {
		return tllerrors.Wrap(tllerrors.Transport, "tcp", "Post", err, "write(2)")
	}
	if n != len(msg.Body) {
		return tllerrors.New(tllerrors.Transport, "tcp", "Post", "short write: %d of %d bytes", n, len(msg.Body))
	}
	return nil
}
