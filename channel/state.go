package channel

// State is a channel's life-cycle stage.
type State int32

const (
	StateClosed State = iota
	StateOpening
	StateActive
	StateClosing
	StateError
	StateDestroy
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpening:
		return "Opening"
	case StateActive:
		return "Active"
	case StateClosing:
		return "Closing"
	case StateError:
		return "Error"
	case StateDestroy:
		return "Destroy"
	default:
		return "Unknown"
	}
}

// Caps are the static, init-time capability flags of a channel.
type Caps uint32

const (
	CapInput Caps = 1 << iota
	CapOutput
	CapProxy
	CapCustom
)

func (c Caps) Has(flag Caps) bool { return c&flag != 0 }

// DCaps are the dynamic capability flags, changeable at any time and
// observed by the event loop via CHANNEL/Update callbacks.
type DCaps uint32

const (
	DCapPollIn DCaps = 1 << iota
	DCapPollOut
	DCapProcess
	DCapPending
	DCapSuspend
	DCapSuspendPermanent
)

func (d DCaps) Has(flag DCaps) bool { return d&flag != 0 }

// OpenPolicy selects how a channel reaches Active after Open succeeds.
type OpenPolicy int

const (
	// OpenAuto transitions Opening to Active automatically once Impl.Open returns.
	OpenAuto OpenPolicy = iota
	// OpenManual leaves the channel in Opening; the impl calls SetState(StateActive) itself.
	OpenManual
)

// ClosePolicy selects how a channel reaches Closed after Close is invoked.
type ClosePolicy int

const (
	// CloseNormal transitions to Closed immediately after Impl.Close returns.
	CloseNormal ClosePolicy = iota
	// CloseLong leaves the channel in Closing; the impl finalises via FinalizeClose,
	// except when force=true, which closes immediately regardless.
	CloseLong
)

// ProcessPolicy selects how the Process dcap is managed.
type ProcessPolicy int

const (
	// ProcessNormal sets the Process dcap on open, clears it on close.
	ProcessNormal ProcessPolicy = iota
	// ProcessNever means Process is never called; children do all the work.
	ProcessNever
	// ProcessAlways keeps the Process dcap set regardless of state.
	ProcessAlways
	// ProcessCustom means the impl manages the Process dcap bit itself.
	ProcessCustom
)

// ChildPolicy bounds how many children a channel kind may own.
type ChildPolicy int

const (
	ChildNever ChildPolicy = iota
	// ChildSingle means exactly one child; registry.Context.Init sets
	// CapProxy on such a channel so callers can't distinguish it from its
	// child.
	ChildSingle
	ChildMany
)

// Policies groups the four policy axes an Impl selects for its channel kind.
type Policies struct {
	Open    OpenPolicy
	Close   ClosePolicy
	Process ProcessPolicy
	Child   ChildPolicy
}
