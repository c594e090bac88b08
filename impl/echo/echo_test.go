package echo

import (
	"testing"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/impl/null"
	"github.com/Diego2la/tll/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRef struct{}

func (fakeRef) Retain()  {}
func (fakeRef) Release() {}

func TestPost_ReEmitsAsInboundData(t *testing.T) {
	ch := channel.New(&Impl{}, fakeRef{})
	require.NoError(t, ch.Open(curl.URL{}))

	var got []byte
	ch.CallbackAdd(func(c *channel.Channel, msg *message.Message, _ any) {
		got = msg.Body
	}, nil, message.TypeData.Mask())

	require.NoError(t, ch.Post(&message.Message{Type: message.TypeData, Body: []byte("ping")}))
	assert.Equal(t, []byte("ping"), got)
}

func TestPost_ClonesRatherThanAliasingCaller(t *testing.T) {
	ch := channel.New(&Impl{}, fakeRef{})
	require.NoError(t, ch.Open(curl.URL{}))

	var got []byte
	ch.CallbackAdd(func(c *channel.Channel, msg *message.Message, _ any) {
		got = msg.Body
	}, nil, message.TypeData.Mask())

	body := []byte("mutate-me")
	require.NoError(t, ch.Post(&message.Message{Type: message.TypeData, Body: body}))
	body[0] = 'X'
	assert.Equal(t, []byte("mutate-me"), got)
}

func TestLifecycle_OpenProcessPostCloseProcess(t *testing.T) {
	ch := channel.New(&Impl{}, fakeRef{})
	assert.Equal(t, channel.StateClosed, ch.State())

	require.NoError(t, ch.Open(curl.URL{}))
	assert.Equal(t, channel.StateOpening, ch.State())

	require.NoError(t, ch.Process())
	assert.Equal(t, channel.StateActive, ch.State())

	err := ch.Process()
	assert.ErrorIs(t, err, tllerrors.ErrAgain)

	var got int64
	ch.CallbackAdd(func(c *channel.Channel, msg *message.Message, _ any) {
		got = msg.Seq
	}, nil, message.TypeData.Mask())
	require.NoError(t, ch.Post(&message.Message{Type: message.TypeData, Seq: 100}))
	assert.Equal(t, int64(100), got)

	require.NoError(t, ch.Close(false))
	assert.Equal(t, channel.StateClosing, ch.State())

	require.NoError(t, ch.Process())
	assert.Equal(t, channel.StateClosed, ch.State())
}

func TestInit_NullParamRetriesWithNullImpl(t *testing.T) {
	impl := Impl{}
	ch := channel.New(impl, fakeRef{})
	u, err := curl.Parse("echo://;null=yes")
	require.NoError(t, err)

	res := impl.Init(ch, u, nil)
	require.Nil(t, res.Err)
	require.NotNil(t, res.Retry)
	_, ok := res.Retry.(*null.Impl)
	assert.True(t, ok)
}
