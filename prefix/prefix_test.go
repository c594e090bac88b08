package prefix

import (
	"testing"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	"github.com/Diego2la/tll/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRef struct{}

func (fakeRef) Retain()  {}
func (fakeRef) Release() {}

// innerImpl is a trivial Auto-open, CloseNormal channel used as the inner
// half of a prefix, standing in for a real protocol (e.g. "null").
type innerImpl struct {
	channel.NopImpl
}

func (innerImpl) Protocol() string { return "inner" }
func (innerImpl) Policies() channel.Policies {
	return channel.Policies{Open: channel.OpenAuto, Close: channel.CloseNormal}
}
func (innerImpl) Init(ch *channel.Channel, u curl.URL, master *channel.Channel) channel.InitResult {
	return channel.InitOK()
}
func (innerImpl) Open(ch *channel.Channel, u curl.URL) error { return nil }

// stubFactory implements channel.ChannelFactory by directly constructing
// an innerImpl-backed channel, bypassing real alias resolution.
type stubFactory struct {
	built []curl.URL
}

func (f *stubFactory) Init(u curl.URL, master *channel.Channel, impl channel.Impl) (*channel.Channel, error) {
	f.built = append(f.built, u)
	if impl == nil {
		impl = &innerImpl{}
	}
	ch := channel.New(impl, fakeRef{})
	res := impl.Init(ch, u, master)
	if res.Err != nil {
		return nil, res.Err
	}
	name, _ := u.Get("name")
	ch.SetName(name)
	return ch, nil
}

func newPrefixChannel(t *testing.T, factory channel.ChannelFactory, policies channel.Policies, hooks Hooks) (*channel.Channel, *Base) {
	t.Helper()
	base := New(factory, "wrap", policies, hooks)
	ch := channel.New(base, fakeRef{})
	ch.SetName("outer")

	u, err := curl.Parse("wrap+inner://host")
	require.NoError(t, err)

	res := base.Init(ch, u, nil)
	require.NoError(t, res.Err)
	require.Nil(t, res.Retry)
	return ch, base
}

func TestInit_SplitsPrefixAndBuildsChild(t *testing.T) {
	factory := &stubFactory{}
	ch, base := newPrefixChannel(t, factory, channel.Policies{Open: channel.OpenAuto, Close: channel.CloseLong}, Hooks{})

	require.Len(t, factory.built, 1)
	assert.Equal(t, "inner", factory.built[0].Proto)
	assert.Equal(t, "yes", mustGet(t, factory.built[0], "tll.internal"))
	assert.Equal(t, "outer/wrap", mustGet(t, factory.built[0], "name"))

	require.NotNil(t, base.Child())
	assert.Equal(t, []*channel.Channel{base.Child()}, ch.Children())
}

func mustGet(t *testing.T, u curl.URL, key string) string {
	t.Helper()
	v, ok := u.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestOpen_PropagatesToChildAndActivatesOuter(t *testing.T) {
	factory := &stubFactory{}
	ch, base := newPrefixChannel(t, factory, channel.Policies{Open: channel.OpenManual, Close: channel.CloseLong}, Hooks{})

	require.NoError(t, ch.Open(curl.URL{}))
	// ManualPolicy: Channel.Open itself does not force Active; the prefix
	// only reaches Active once the child's own STATE=Active is observed.
	assert.Equal(t, channel.StateActive, ch.State())
	assert.Equal(t, channel.StateActive, base.Child().State())
}

func TestClose_LongPolicyWaitsForChildClosed(t *testing.T) {
	factory := &stubFactory{}
	ch, base := newPrefixChannel(t, factory, channel.Policies{Open: channel.OpenAuto, Close: channel.CloseLong}, Hooks{})
	require.NoError(t, ch.Open(curl.URL{}))

	require.NoError(t, ch.Close(false))
	assert.Equal(t, channel.StateClosed, ch.State())
	assert.Equal(t, channel.StateClosed, base.Child().State())
	// CloseNormal child finalizes synchronously inside Channel.Close, whose
	// STATE=Closed callback drives Base's onChildEvent -> FinalizeClose.
	assert.Equal(t, channel.StateClosed, ch.State())
}

func TestOnChildEvent_ChildClosingPropagatesToActiveOuter(t *testing.T) {
	factory := &stubFactory{}
	ch, base := newPrefixChannel(t, factory, channel.Policies{Open: channel.OpenAuto, Close: channel.CloseLong}, Hooks{})
	require.NoError(t, ch.Open(curl.URL{}))
	require.Equal(t, channel.StateActive, ch.State())

	// Peer-initiated close: the child moves to Closing on its own, without
	// the outer channel's Close ever being called.
	base.Child().SetState(channel.StateClosing)
	assert.Equal(t, channel.StateClosing, ch.State())
}

func TestOnData_DefaultReEmitsOnOuter(t *testing.T) {
	factory := &stubFactory{}
	ch, base := newPrefixChannel(t, factory, channel.Policies{Open: channel.OpenAuto}, Hooks{})
	require.NoError(t, ch.Open(curl.URL{}))

	var got []byte
	ch.CallbackAdd(func(c *channel.Channel, msg *message.Message, _ any) {
		got = msg.Body
	}, nil, message.TypeData.Mask())

	base.Child().Emit(&message.Message{Type: message.TypeData, Body: []byte("hello")})
	assert.Equal(t, []byte("hello"), got)
}

func TestOnData_HookCanSuppressDefault(t *testing.T) {
	factory := &stubFactory{}
	var seen []byte
	hooks := Hooks{
		OnData: func(outer, child *channel.Channel, msg *message.Message) bool {
			seen = msg.Body
			return true
		},
	}
	ch, base := newPrefixChannel(t, factory, channel.Policies{Open: channel.OpenAuto}, hooks)
	require.NoError(t, ch.Open(curl.URL{}))

	called := false
	ch.CallbackAdd(func(c *channel.Channel, msg *message.Message, _ any) {
		called = true
	}, nil, message.TypeData.Mask())

	base.Child().Emit(&message.Message{Type: message.TypeData, Body: []byte("x")})
	assert.Equal(t, []byte("x"), seen)
	assert.False(t, called)
}

func TestClone_ReturnsIndependentBaseSharingConfig(t *testing.T) {
	factory := &stubFactory{}
	base := New(factory, "wrap", channel.Policies{Open: channel.OpenAuto}, Hooks{})

	clone, ok := base.Clone().(*Base)
	require.True(t, ok)
	assert.NotSame(t, base, clone)
	assert.Equal(t, base.Protocol(), clone.Protocol())
	assert.Nil(t, clone.Child())
}

func TestFree_DestroysChild(t *testing.T) {
	factory := &stubFactory{}
	ch, base := newPrefixChannel(t, factory, channel.Policies{Open: channel.OpenAuto}, Hooks{})
	require.NoError(t, ch.Open(curl.URL{}))

	ch.Destroy()
	assert.Equal(t, channel.StateDestroy, base.Child().State())
}
