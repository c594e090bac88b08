package channel

import (
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/message"
)

// InitResult is the sum type an Impl's Init returns: success, a request to
// retry construction with a different Impl (the dynamic-re-init extension
// point), or a terminal error.
type InitResult struct {
	Retry Impl
	Err   error
}

// InitOK reports successful initialization.
func InitOK() InitResult { return InitResult{} }

// InitRetry asks the Context to re-run Init with a different Impl, e.g.
// Echo observing a "null=yes" parameter and handing off to Null.
func InitRetry(impl Impl) InitResult { return InitResult{Retry: impl} }

// InitErr reports a terminal construction failure.
func InitErr(err error) InitResult { return InitResult{Err: err} }

// Impl is the per-protocol behavior table a channel kind implements. It is
// a plain interface, never a base class: composition (prefix wrapping
// another channel) happens by one Impl owning another Channel, not through
// inheritance.
type Impl interface {
	// Protocol returns the name this impl is normally registered under.
	Protocol() string

	// Policies returns the four life-cycle policy axes for this kind.
	Policies() Policies

	// Init prepares ch from u and an optional master peer. Called in a
	// bounded loop by the registry until it returns a result with a nil
	// Retry; the Context guards against InitLoop cycles.
	Init(ch *Channel, u curl.URL, master *Channel) InitResult

	// Free releases any resources Init acquired. Called exactly once,
	// immediately before the channel's Destroy callback fires.
	Free(ch *Channel)

	// Open begins the transition out of Closed. Returning an error moves
	// the channel to Error; the caller is expected to observe it via the
	// STATE callback.
	Open(ch *Channel, u curl.URL) error

	// Close begins the transition out of Active/Opening. force=true means
	// abort immediately without graceful drain.
	Close(ch *Channel, force bool) error

	// Process is invoked by the event loop whenever DCapProcess is set.
	// Returning ErrAgain is normal and means "no work this tick".
	Process(ch *Channel) error

	// Post delivers an outbound DATA (or CONTROL) message. Returning
	// ErrAgain signals backpressure; the caller should retry later.
	Post(ch *Channel, msg *message.Message) error

	// Scheme returns this channel's DATA scheme, or nil if it has none.
	Scheme(ch *Channel) (any, error)
}

// Cloner is implemented by an Impl that carries per-channel state (a
// socket fd, a retry counter, a child channel pointer, ...). The registry
// calls Clone to obtain a fresh instance for every channel it constructs
// from a registered protocol, instead of reusing the single instance
// passed to Register across every channel of that protocol. Stateless
// impls (echo, null) don't need to implement it: the same value is safe
// to share since it has nothing worth cloning.
type Cloner interface {
	Clone() Impl
}

// ChannelFactory is the minimal capability an Impl needs back from its
// owning registry to construct a child channel during its own Init, e.g.
// a prefix wrapping an inner protocol. *registry.Context satisfies this
// structurally; it is declared here to avoid channel importing registry.
type ChannelFactory interface {
	Init(u curl.URL, master *Channel, impl Impl) (*Channel, error)
}

// NopImpl supplies default, no-op bodies for the methods most channel
// kinds don't need to customize. Concrete impls embed it and override
// only what their protocol actually does.
type NopImpl struct{}

func (NopImpl) Free(*Channel) {}

func (NopImpl) Open(*Channel, curl.URL) error { return nil }

func (NopImpl) Close(*Channel, bool) error { return nil }

func (NopImpl) Process(*Channel) error { return tllerrors.ErrAgain }

func (NopImpl) Post(ch *Channel, _ *message.Message) error {
	return tllerrors.New(tllerrors.InvalidArgument, ch.Name(), "Post", "protocol does not accept posted data")
}

func (NopImpl) Scheme(*Channel) (any, error) { return nil, nil }
