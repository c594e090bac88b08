package registry

import (
	"reflect"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/metric"
)

// Channel is the convenience entry point: parse url and construct through
// Init with no explicit impl or master.
func (c *Context) Channel(rawurl string) (*channel.Channel, error) {
	u, err := curl.Parse(rawurl)
	if err != nil {
		return nil, tllerrors.Wrap(tllerrors.InvalidArgument, "registry", "Channel", err, "invalid channel URL %q", rawurl)
	}
	return c.Init(u, nil, nil)
}

// Init constructs a channel from u. If impl is nil it is resolved via the
// alias-resolution lookup, which may rewrite u. master may be supplied
// directly or looked up by the URL's "master" parameter.
func (c *Context) Init(u curl.URL, master *channel.Channel, impl channel.Impl) (*channel.Channel, error) {
	if impl == nil {
		var err error
		impl, u, err = c.resolve(u)
		if err != nil {
			return nil, err
		}
		if cl, ok := impl.(channel.Cloner); ok {
			impl = cl.Clone()
		}
	}

	internal := u.GetBool("tll.internal", false)

	if master == nil {
		if name, ok := u.Get("master"); ok {
			m, ok := c.Get(name)
			if !ok {
				return nil, tllerrors.New(tllerrors.NotFound, "registry", "Init", "master channel %q not found", name)
			}
			master = m
		}
	}

	ch := channel.New(impl, c)
	ok := false
	defer func() {
		if !ok {
			c.Release()
		}
	}()

	seen := map[uintptr]bool{}
	for {
		p := reflect.ValueOf(impl).Pointer()
		if seen[p] {
			return nil, tllerrors.New(tllerrors.InitLoop, "registry", "Init", "impl init loop detected")
		}
		seen[p] = true

		res := impl.Init(ch, u, master)
		if res.Err != nil {
			return nil, tllerrors.Wrap(tllerrors.InitFailed, "registry", "Init", res.Err, "impl init failed")
		}
		if res.Retry == nil {
			break
		}
		impl = res.Retry
		ch.SetImpl(impl)
	}

	if internal {
		ch.SetCaps(ch.Caps() | channel.CapCustom)
	}
	if impl.Policies().Child == channel.ChildSingle {
		ch.SetCaps(ch.Caps() | channel.CapProxy)
	}

	name, _ := u.Get("name")
	if name == "" {
		name = impl.Protocol()
	}
	ch.SetName(name)

	if !ch.Caps().Has(channel.CapCustom) {
		c.mu.Lock()
		if _, dup := c.named[name]; dup {
			c.mu.Unlock()
			return nil, tllerrors.New(tllerrors.Duplicate, "registry", "Init", "channel name %q already in use", name)
		}
		c.named[name] = ch
		c.configs[name] = ch.Config()
		c.mu.Unlock()
	}

	if ch.Stats() == nil && (u.GetBool("stat", false) || u.GetBool("tll.stat", false)) {
		if st, err := metric.NewChannelStats(c.metrics, name); err == nil {
			ch.SetStats(st)
		}
	}

	ok = true
	return ch, nil
}

// Free tears down ch: unlinks it from the named directory (unless
// Custom), calls through to Channel.Destroy (which frees the impl and
// releases this context's reference).
func (c *Context) Free(ch *channel.Channel) {
	if !ch.Caps().Has(channel.CapCustom) {
		c.mu.Lock()
		delete(c.named, ch.Name())
		delete(c.configs, ch.Name())
		c.mu.Unlock()
	}
	ch.Destroy()
}

// Get looks up a channel by name in the named directory.
func (c *Context) Get(name string) (*channel.Channel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch, ok := c.named[name]
	return ch, ok
}
