package registry

// Module is the self-registration surface a built-in or external impl
// package exposes, mirroring the C library's dlopen'd module descriptor.
// Register is called at most once per handle.
type Module interface {
	Register(c *Context) error
}

// LoadModule loads mod under handle (conventionally "path#symbol", or
// just a package path for in-process modules). Idempotent: a handle
// already loaded is a no-op returning nil.
func (c *Context) LoadModule(handle string, mod Module) error {
	c.mu.Lock()
	if c.modules[handle] {
		c.mu.Unlock()
		return nil
	}
	c.modules[handle] = true
	c.mu.Unlock()
	return mod.Register(c)
}
