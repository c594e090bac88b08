// Package tll provides a pluggable messaging and I/O framework built around
// channels, contexts, and a cooperative event loop.
//
// # Philosophy
//
// tll separates three concerns that are usually tangled together in
// ad hoc I/O code:
//
//   - Protocol identity: what a channel does (echo, null, tcp, ...),
//     registered under a name in a Context and looked up from a URL.
//   - Composition: channels can stack ("name+inner") so cross-cutting
//     behavior (retry, framing, encryption) wraps an inner channel
//     without either side knowing about the other's implementation.
//   - Scheduling: a single-threaded event loop polls readiness and
//     drives Process on whichever channels declared they have work,
//     so user code never has to reason about which thread touches
//     which channel.
//
// None of this requires channel authors to implement more than a small
// vtable-shaped interface (channel.Impl); the framework handles state
// tracking, callback fan-out, and poll-set reconciliation.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│           eventloop.Loop             │  poll/process scheduling
//	│   (epoll readiness, process list)    │
//	└─────────────────────────────────────┘
//	           ↓ drives
//	┌─────────────────────────────────────┐
//	│           channel.Channel            │  state machine, dcaps,
//	│   (wraps a channel.Impl)             │  callback fan-out
//	└─────────────────────────────────────┘
//	           ↓ looked up via
//	┌─────────────────────────────────────┐
//	│          registry.Context            │  protocol registry,
//	│  (protocols, aliases, scheme cache)  │  named channel directory
//	└─────────────────────────────────────┘
//
// # Stacking Pattern
//
// A prefix channel owns an inner channel of a different protocol and
// forwards or transforms its callbacks. "name+inner" in a URL protocol
// means: open an inner channel for protocol inner with the same URL
// (tll.internal=yes set on its copy), then wrap it with the impl
// registered as name.
//
//	reopen+tcp://host:9000
//	   │     │
//	   │     └── inner protocol, opened first
//	   └── prefix protocol, wraps the inner channel
//
// The prefix package provides prefix.Base, an embeddable Impl that
// implements this lifecycle once so individual prefixes only override
// the hooks they care about (OnData, OnActive/OnError/OnClosing/OnClosed,
// OnOther).
//
// # Event Loop
//
// eventloop.Loop tracks three sets of channels: all registered
// channels, the subset with ProcessPolicy requesting Process calls,
// and the subset a channel has marked Pending (skip poll wait, call
// Process again immediately). Poll() blocks on the OS readiness
// multiplexer (epoll on Linux) for at most the caller-supplied timeout,
// Process() walks the processable set once.
// CHANNEL callbacks (Add/Delete/UpdateFd) and STATE callbacks keep the
// poll set and caps bookkeeping in sync as channels open and close.
//
//	loop, _ := eventloop.New()
//	u, _ := curl.Parse("tcp://host:9000")
//	ch, _ := ctx.Init(u, nil, nil)
//	loop.Add(ch)
//	ch.Open(u)
//	for {
//	    loop.Poll(time.Second)
//	    loop.Process()
//	}
//
// # Framework Packages
//
// Core:
//   - message: wire message header, Type and channel sub-ids
//   - curl: URL grammar (proto://host;k=v;k=v) parser and builder
//   - errors: Kind vocabulary and call-site-context wrapping
//   - channel: Channel state machine, Caps/DCaps, Impl interface
//   - registry: Context (protocol registry, aliases, scheme cache)
//   - prefix: embeddable Base for "name+inner" stacking channels
//   - eventloop: epoll-backed cooperative scheduler
//   - scheme: Scheme type and Loader interface for structured payloads
//
// Built-in channel implementations:
//   - impl/null: discards Post, never reports readiness
//   - impl/echo: loops Post back out as on_data
//   - impl/tcp: client and server TCP channels on the event loop
//   - impl/reopen: prefix wrapper retrying inner Open with backoff
//
// Ambient:
//   - logging: per-component leveled slog loggers
//   - config: dotted-path configuration tree
//   - metric: Prometheus-backed channel statistics registry
//   - cmd/tllctl: demo CLI wiring a Context and Loop from a config file
//
// # Usage
//
//	ctx := registry.Default()
//	_ = ctx.Register(&echo.Impl{}, "")
//	ch, err := ctx.Channel("echo://;name=probe")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ch.CallbackAdd(func(c *channel.Channel, m *message.Message, _ any) {
//	    fmt.Println(string(m.Body))
//	}, nil, message.TypeData.Mask())
//	ch.Open(curl.URL{})
//	ch.Post(&message.Message{Type: message.TypeData, Body: []byte("hi")})
//
// # Extension Points
//
// New protocols register an Impl with a Context:
//
//	func init() {
//	    _ = registry.Default().Register(&myproto.Impl{}, "")
//	}
//
// A custom channel implements channel.Impl (Init/Free/Open/Close and,
// if it declares Caps with Input or Output, Process and/or Post) and
// is registered the same way the built-in impls are.
//
// # Design Principles
//
// Small vtable, no inheritance:
//   - channel.Impl is a plain interface; composition happens by one
//     channel owning another, never by embedding behavior through a
//     class hierarchy.
//
// Explicit state, observable from outside:
//   - Every channel's state transition fires a STATE callback, so a
//     caller never has to poll a field to learn a channel closed.
//
// Cooperative scheduling:
//   - Exactly one goroutine calls into the event loop's Process; channel
//     implementations are written without internal locking against
//     their own callbacks.
package tll
