package registry

import "sync"

var (
	defaultOnce sync.Once
	defaultCtx  *Context
)

// Default returns the process-wide Context, constructing it on first use.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultCtx = New()
	})
	return defaultCtx
}
