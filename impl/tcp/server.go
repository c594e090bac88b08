package tcp

import (
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/message"
)

// Server is the "tcp+server" protocol: a listening socket that spawns
// one child Conn channel per accepted connection. ChildPolicy Many
// reflects that an unbounded number of connections may be live at once.
type Server struct {
	channel.NopImpl

	factory channel.ChannelFactory
}

// NewServer constructs a Server that builds accepted-connection children
// through factory (typically the *registry.Context the server itself was
// registered against).
func NewServer(factory channel.ChannelFactory) *Server {
	return &Server{factory: factory}
}

// Clone returns a fresh Server sharing the same child factory, letting
// one registered instance serve as the template for every
// "tcp+server://" channel constructed.
func (s *Server) Clone() channel.Impl { return &Server{factory: s.factory} }

func (s *Server) Protocol() string { return "tcp+server" }

func (s *Server) Policies() channel.Policies {
	return channel.Policies{Open: channel.OpenAuto, Close: channel.CloseNormal, Process: channel.ProcessNormal, Child: channel.ChildMany}
}

func (s *Server) Init(ch *channel.Channel, u curl.URL, master *channel.Channel) channel.InitResult {
	ch.SetCaps(channel.CapInput)
	return channel.InitOK()
}

func (s *Server) Open(ch *channel.Channel, u curl.URL) error {
	addr, err := resolveTCP(u)
	if err != nil {
		return err
	}
	fd, err := newNonblockingSocket()
	if err != nil {
		return err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return tllerrors.Wrap(tllerrors.Transport, "tcp", "Open", err, "setsockopt(SO_REUSEADDR)")
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return tllerrors.Wrap(tllerrors.Transport, "tcp", "Open", err, "bind(2) to %s", u.Host)
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return tllerrors.Wrap(tllerrors.Transport, "tcp", "Open", err, "listen(2)")
	}

	ch.SetFd(fd)
	ch.SetDCaps(ch.DCaps() | channel.DCapPollIn)
	return nil
}

func (s *Server) Close(ch *channel.Channel, force bool) error {
	if fd := ch.Fd(); fd >= 0 {
		unix.Close(fd)
		ch.SetFd(-1)
	}
	return nil
}

// Process accepts every currently-pending connection, wrapping each in a
// Conn channel constructed through the factory and linked as a child.
func (s *Server) Process(ch *channel.Channel) error {
	fd := ch.Fd()
	if fd < 0 {
		return tllerrors.ErrAgain
	}

	accepted := false
	for {
		connFd, _, err := unix.Accept4(fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err == unix.EAGAIN {
			break
		}
		if err != nil {
			return tllerrors.Wrap(tllerrors.Transport, "tcp", "Process", err, "accept4(2)")
		}
		accepted = true

		// A random suffix (rather than a sequence counter) keeps child
		// names unique across a server restart, matters when a restart
		// happens fast enough that a dangling old name could collide.
		childName := ch.Name() + "/" + uuid.NewString()

		conn := &Conn{fd: connFd}
		childCh, err := s.factory.Init(curl.URL{Proto: "tcp-conn", Params: []curl.Param{{Key: "name", Value: childName}}}, nil, conn)
		if err != nil {
			unix.Close(connFd)
			continue
		}
		if err := childCh.Open(curl.URL{}); err != nil {
			unix.Close(connFd)
			continue
		}
		ch.AddChild(childCh, "conn")
	}

	if !accepted {
		return tllerrors.ErrAgain
	}
	return nil
}

// Conn wraps one already-connected, already-accepted socket. It shares
// Client's Process/Post read-write logic but skips connect entirely: the
// server opens it right after construction and it reaches Active at once.
type Conn struct {
	channel.NopImpl

	fd int
}

func (c *Conn) Protocol() string { return "tcp-conn" }

func (c *Conn) Policies() channel.Policies {
	return channel.Policies{Open: channel.OpenAuto, Close: channel.CloseNormal, Process: channel.ProcessNormal}
}

func (c *Conn) Init(ch *channel.Channel, u curl.URL, master *channel.Channel) channel.InitResult {
	ch.SetCaps(channel.CapInput | channel.CapOutput | channel.CapCustom)
	return channel.InitOK()
}

func (c *Conn) Open(ch *channel.Channel, u curl.URL) error {
	ch.SetFd(c.fd)
	ch.SetDCaps(ch.DCaps() | channel.DCapPollIn)
	return nil
}

func (c *Conn) Close(ch *channel.Channel, force bool) error {
	if c.fd >= 0 {
		unix.Close(c.fd)
		c.fd = -1
		ch.SetFd(-1)
	}
	return nil
}

func (c *Conn) Process(ch *channel.Channel) error {
	buf := make([]byte, readChunk)
	n, err := unix.Read(c.fd, buf)
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

func (c *Conn) Post(ch *channel.Channel, msg *message.Message) error {
	n, err := unix.Write(c.fd, msg.Body)
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
