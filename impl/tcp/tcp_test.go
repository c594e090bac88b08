package tcp

import (
	"testing"
	"time"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	"github.com/Diego2la/tll/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRef struct{}

func (fakeRef) Retain()  {}
func (fakeRef) Release() {}

func TestClone_ClientAndServerReturnIndependentInstances(t *testing.T) {
	c1 := &Client{connected: true}
	c2 := c1.Clone().(*Client)
	assert.NotSame(t, c1, c2)
	assert.False(t, c2.connected)

	factory := &registryStub{}
	s1 := NewServer(factory)
	s2 := s1.Clone().(*Server)
	assert.NotSame(t, s1, s2)
}

func TestResolveTCP_HostPortSyntax(t *testing.T) {
	u, err := curl.Parse("tcp://127.0.0.1:9100")
	require.NoError(t, err)
	addr, err := resolveTCP(u)
	require.NoError(t, err)
	assert.Equal(t, 9100, addr.Port)
	assert.Equal(t, [4]byte{127, 0, 0, 1}, addr.Addr)
}

func TestResolveTCP_MissingPortIsInvalidArgument(t *testing.T) {
	u, err := curl.Parse("tcp://127.0.0.1")
	require.NoError(t, err)
	_, err = resolveTCP(u)
	assert.Error(t, err)
}

func TestClientServer_RoundTripsData(t *testing.T) {
	factory := &registryStub{}

	server := NewServer(factory)
	serverCh := channel.New(server, fakeRef{})
	serverCh.SetName("srv")
	// A fixed high port avoids needing getsockname() to recover an
	// ephemeral one back out for the client to dial.
	su, err := curl.Parse("tcp+server://127.0.0.1:18923")
	require.NoError(t, err)
	require.NoError(t, serverCh.Open(su))
	defer serverCh.Close(true)

	client := &Client{}
	clientCh := channel.New(client, fakeRef{})
	clientCh.SetName("cli")
	cu, err := curl.Parse("tcp://127.0.0.1:18923")
	require.NoError(t, err)
	require.NoError(t, clientCh.Open(cu))
	defer clientCh.Close(true)

	// Drive both channels' Process until the client reports Active.
	deadline := time.Now().Add(2 * time.Second)
	for clientCh.State() != channel.StateActive && time.Now().Before(deadline) {
		_ = clientCh.Process()
		_ = serverCh.Process()
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, channel.StateActive, clientCh.State())
	require.Len(t, serverCh.Children(), 1)

	conn := serverCh.Children()[0]
	var received []byte
	conn.CallbackAdd(func(c *channel.Channel, msg *message.Message, _ any) {
		received = msg.Body
	}, nil, message.TypeData.Mask())

	require.NoError(t, clientCh.Post(&message.Message{Type: message.TypeData, Body: []byte("hello")}))

	deadline = time.Now().Add(2 * time.Second)
	for len(received) == 0 && time.Now().Before(deadline) {
		_ = conn.Process()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, []byte("hello"), received)
}

type registryStub struct{}

func (registryStub) Init(u curl.URL, master *channel.Channel, impl channel.Impl) (*channel.Channel, error) {
	ch := channel.New(impl, fakeRef{})
	res := impl.Init(ch, u, master)
	if res.Err != nil {
		return nil, res.Err
	}
	name, _ := u.Get("name")
	ch.SetName(name)
	return ch, nil
}
