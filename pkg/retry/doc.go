// Package retry describes exponential backoff schedules shared across the
// framework's channel implementations.
//
// Unlike a typical retry helper, this package does not run the retry loop
// itself: channel Process methods are called from a cooperative,
// non-blocking event loop, so sleeping inside a Do-style helper is not an
// option. Instead Config is a plain description of a backoff schedule
// (initial delay, multiplier, cap, jitter) that a channel implementation
// consults on every Process call to decide whether enough time has passed
// to attempt the next action.
//
// impl/reopen is the reference consumer: it stores a Config, tracks its
// own attempt count and next-attempt deadline, and computes each
// successive delay itself, capped at MaxDelay and jittered when AddJitter
// is set.
package retry
