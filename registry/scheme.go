package registry

import (
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/scheme"
)

// SchemeLoad resolves u to a Scheme. A "channel://<name>" URL returns the
// DATA scheme of that named channel directly; everything else is handed
// to the configured Loader. useCache memoizes the result by URL string
// under the registry's read-mostly cache.
func (c *Context) SchemeLoad(u curl.URL, useCache bool) (scheme.Scheme, error) {
	if u.Proto == "channel" {
		name := u.Host
		ch, ok := c.Get(name)
		if !ok {
			return nil, tllerrors.New(tllerrors.NotFound, "registry", "SchemeLoad", "channel %q not found", name)
		}
		return ch.Impl().Scheme(ch)
	}

	key := u.String()
	if useCache {
		if v, ok := c.schemeCache.Get(key); ok {
			return v, nil
		}
	}

	c.mu.RLock()
	loader := c.schemeLoader
	c.mu.RUnlock()

	s, err := loader.Load(u)
	if err != nil {
		return nil, tllerrors.Wrap(tllerrors.NotFound, "registry", "SchemeLoad", err, "loading scheme %q", key)
	}

	if useCache {
		_, _ = c.schemeCache.Set(key, s)
	}
	return s, nil
}
