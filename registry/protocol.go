package registry

import (
	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
)

// Register inserts impl under name, defaulting to impl.Protocol(). Fails
// with Duplicate if an entry (impl or alias) already occupies the key.
func (c *Context) Register(impl channel.Impl, name string) error {
	if name == "" {
		name = impl.Protocol()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.protocols[name]; ok {
		return tllerrors.New(tllerrors.Duplicate, "registry", "Register", "protocol %q already registered", name)
	}
	c.protocols[name] = protoEntry{impl: impl}
	return nil
}

// Unregister removes impl from name. NotFound if absent, TypeMismatch if
// the entry is an alias, InvalidArgument if a different impl occupies it.
func (c *Context) Unregister(impl channel.Impl, name string) error {
	if name == "" {
		name = impl.Protocol()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.protocols[name]
	if !ok {
		return tllerrors.New(tllerrors.NotFound, "registry", "Unregister", "protocol %q not registered", name)
	}
	if e.isAlias {
		return tllerrors.New(tllerrors.TypeMismatch, "registry", "Unregister", "%q is an alias, not an impl", name)
	}
	if e.impl != impl {
		return tllerrors.New(tllerrors.InvalidArgument, "registry", "Unregister", "impl pointer mismatch for %q", name)
	}
	delete(c.protocols, name)
	return nil
}

// RegisterAlias installs name as an alias resolving through u. u must not
// define tll.host or name, and its own protocol must already resolve.
func (c *Context) RegisterAlias(name string, u curl.URL) error {
	if u.Has("tll.host") || u.Has("name") {
		return tllerrors.New(tllerrors.InvalidArgument, "registry", "RegisterAlias", "alias URL must not define tll.host or name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.protocols[name]; ok {
		return tllerrors.New(tllerrors.Duplicate, "registry", "RegisterAlias", "protocol %q already registered", name)
	}
	if _, ok := c.lookupLocked(u.Proto); !ok {
		return tllerrors.New(tllerrors.Unresolvable, "registry", "RegisterAlias", "alias target protocol %q does not resolve", u.Proto)
	}
	c.protocols[name] = protoEntry{alias: u, isAlias: true}
	return nil
}

// UnregisterAlias removes an alias previously installed by RegisterAlias.
func (c *Context) UnregisterAlias(name string, u curl.URL) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.protocols[name]
	if !ok {
		return tllerrors.New(tllerrors.NotFound, "registry", "UnregisterAlias", "alias %q not registered", name)
	}
	if !e.isAlias {
		return tllerrors.New(tllerrors.TypeMismatch, "registry", "UnregisterAlias", "%q is an impl, not an alias", name)
	}
	delete(c.protocols, name)
	return nil
}

// Lookup returns the registry entry whose key exactly matches proto, or
// (if proto contains "+") the entry keyed by the "local+" prefix form.
func (c *Context) Lookup(proto string) (channel.Impl, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.lookupLocked(proto)
	if !ok || e.isAlias {
		return nil, false
	}
	return e.impl, true
}

func (c *Context) lookupLocked(proto string) (protoEntry, bool) {
	if e, ok := c.protocols[proto]; ok {
		return e, true
	}
	if local, _, ok := curl.SplitPrefix(proto); ok {
		if e, ok2 := c.protocols[local+"+"]; ok2 {
			return e, true
		}
	}
	return protoEntry{}, false
}

// resolve runs the alias-resolution loop against u, returning the impl to
// construct and the (possibly rewritten) URL to construct it with.
func (c *Context) resolve(u curl.URL) (channel.Impl, curl.URL, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := map[string]bool{}
	for {
		if seen[u.Proto] {
			return nil, curl.URL{}, tllerrors.New(tllerrors.AliasLoop, "registry", "resolve", "alias cycle at protocol %q", u.Proto)
		}
		seen[u.Proto] = true

		e, ok := c.lookupLocked(u.Proto)
		if !ok {
			return nil, curl.URL{}, tllerrors.New(tllerrors.Unresolvable, "registry", "resolve", "protocol %q does not resolve", u.Proto)
		}
		if !e.isAlias {
			return e.impl, u, nil
		}

		aliasProto := e.alias.Proto
		newProto := aliasProto
		if curl.IsPrefixProto(u.Proto) && curl.IsPrefixProto(aliasProto) {
			_, rest, _ := curl.SplitPrefix(u.Proto)
			newProto = aliasProto + rest
		}

		merged, err := u.Merge(e.alias)
		if err != nil {
			return nil, curl.URL{}, tllerrors.Wrap(tllerrors.DuplicateField, "registry", "resolve", err, "alias parameter collides with URL parameter")
		}
		merged.Proto = newProto
		u = merged
	}
}

// lookupURL is the lookup(url) → impl form: resolve plus the rewritten
// URL, for callers in this package that need both.
func (c *Context) lookupURL(u curl.URL) (channel.Impl, curl.URL, error) {
	return c.resolve(u)
}
