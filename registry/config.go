package registry

import "github.com/Diego2la/tll/config"

// DefaultConfig returns the context-wide configuration tree, independent
// of any individual channel's own subtree.
func (c *Context) DefaultConfig() *config.Tree { return c.defaultConfig }

// ChannelConfig returns the published config subtree for a named channel,
// as inserted by Init and removed by Free.
func (c *Context) ChannelConfig(name string) (*config.Tree, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.configs[name]
	return t, ok
}

// Names returns every currently registered channel name.
func (c *Context) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.named))
	for name := range c.named {
		out = append(out, name)
	}
	return out
}
