// Package scheme defines the pluggable DATA-scheme loading surface used by
// registry.Context.SchemeLoad.
package scheme

import (
	"github.com/Diego2la/tll/curl"
	tllerrors "github.com/Diego2la/tll/errors"
)

// Scheme is an opaque, protocol-specific description of a channel's DATA
// message layout (e.g. a decoded IDL document). The framework core never
// interprets it; it only caches and hands it back.
type Scheme any

// Loader resolves a scheme URL (e.g. "yaml://path/to/scheme.yaml") into a
// Scheme value.
type Loader interface {
	Load(u curl.URL) (Scheme, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(u curl.URL) (Scheme, error)

func (f LoaderFunc) Load(u curl.URL) (Scheme, error) { return f(u) }

// NullLoader rejects every URL with NotFound. It is the default loader for
// a Context that hasn't been given one.
var NullLoader Loader = LoaderFunc(func(u curl.URL) (Scheme, error) {
	return nil, tllerrors.New(tllerrors.NotFound, "scheme", "Load", "no scheme loader configured for %q", u.String())
})
