package eventloop

import (
	"os"
	"testing"
	"time"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImpl struct {
	channel.NopImpl
	processCalls int
	processErr   error
}

func (s *stubImpl) Protocol() string { return "stub" }
func (s *stubImpl) Policies() channel.Policies {
	return channel.Policies{Open: channel.OpenAuto, Process: channel.ProcessNormal}
}
func (s *stubImpl) Init(ch *channel.Channel, u curl.URL, master *channel.Channel) channel.InitResult {
	return channel.InitOK()
}
func (s *stubImpl) Open(ch *channel.Channel, u curl.URL) error { return nil }
func (s *stubImpl) Process(ch *channel.Channel) error {
	s.processCalls++
	return s.processErr
}

type fakeRef struct{}

func (fakeRef) Retain()  {}
func (fakeRef) Release() {}

func newActiveChannel(t *testing.T) (*channel.Channel, *stubImpl) {
	t.Helper()
	impl := &stubImpl{}
	ch := channel.New(impl, fakeRef{})
	ch.SetName("stub")
	require.NoError(t, ch.Open(curl.URL{}))
	require.Equal(t, channel.StateActive, ch.State())
	return ch, impl
}

func TestNew_ClosesCleanly(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	assert.NoError(t, l.Close())
}

func TestAdd_TracksProcessable(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	defer l.Close()

	ch, impl := newActiveChannel(t)
	l.Add(ch)

	assert.NoError(t, l.Process())
	assert.Equal(t, 1, impl.processCalls)
}

func TestProcess_ReturnsAgainWhenAllAgain(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	defer l.Close()

	ch, impl := newActiveChannel(t)
	impl.processErr = errAgainStub{}
	l.Add(ch)

	err = l.Process()
	assert.Error(t, err)
}

type errAgainStub struct{}

func (errAgainStub) Error() string { return "again" }

func (errAgainStub) Is(target error) bool { return target == tllerrors.ErrAgain }

func TestDel_StopsProcessing(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	defer l.Close()

	ch, impl := newActiveChannel(t)
	l.Add(ch)
	l.Del(ch)

	_ = l.Process() // nothing registered, no panic
	assert.Equal(t, 0, impl.processCalls)
}

func TestDestroy_RemovesFromLoop(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	defer l.Close()

	ch, _ := newActiveChannel(t)
	l.Add(ch)
	assert.True(t, containsChannel(l.all, ch))

	ch.Destroy()
	assert.False(t, containsChannel(l.all, ch))
}

func TestPoll_ReturnsChannelOnFdReadiness(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	defer l.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	ch, _ := newActiveChannel(t)
	ch.SetFd(int(r.Fd()))
	ch.SetDCaps(ch.DCaps() | channel.DCapPollIn)
	l.Add(ch)

	_, werr := w.Write([]byte("x"))
	require.NoError(t, werr)

	ready, err := l.Poll(time.Second)
	require.NoError(t, err)
	assert.Same(t, ch, ready)
}

func TestPoll_TimesOutWithoutReadiness(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	defer l.Close()

	ready, err := l.Poll(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, ready)
}

func TestPoll_WakeAdvancesPending(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	defer l.Close()

	ch, impl := newActiveChannel(t)
	l.Add(ch)
	ch.SetDCaps(ch.DCaps() | channel.DCapPending)

	ready, err := l.Poll(time.Second)
	require.NoError(t, err)
	assert.Nil(t, ready)
	assert.GreaterOrEqual(t, impl.processCalls, 1)
}
