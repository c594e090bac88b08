// Package curl parses and serialises the framework's channel URLs:
// proto://host;k1=v1;k2=v2. The grammar has no stdlib or pack-library
// equivalent (net/url rejects the semicolon-delimited parameter list and
// has no notion of preserved-duplicate keys), so it is implemented
// directly against strings/strconv.
package curl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tllerrors "github.com/Diego2la/tll/errors"
)

// Param is one key=value pair. Order matters: URL preserves insertion
// order for iteration and duplicate keys are never collapsed.
type Param struct {
	Key   string
	Value string
}

// URL is a parsed proto://host;k=v;k=v string.
type URL struct {
	Proto  string
	Host   string
	Params []Param
}

// Parse splits s into its proto, host and parameter list. A string with
// no "://" is parsed as bare parameters only (used for open-time
// parameter strings layered on top of an already-resolved channel).
func Parse(s string) (URL, error) {
	var u URL

	rest := s
	if idx := strings.Index(s, "://"); idx >= 0 {
		u.Proto = s[:idx]
		rest = s[idx+3:]
		if u.Proto == "" {
			return URL{}, tllerrors.New(tllerrors.InvalidArgument, "curl", "Parse", "empty protocol in %q", s)
		}
	}

	parts := strings.Split(rest, ";")
	var tail []string
	if u.Proto != "" {
		// proto://host;k=v;... — first segment is the host.
		u.Host = parts[0]
		tail = parts[1:]
	} else {
		// Bare parameter string (no "://"): every segment is a param.
		tail = parts
	}

	for _, p := range tail {
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		key := kv[0]
		val := ""
		if len(kv) == 2 {
			val = kv[1]
		}
		if key == "" {
			return URL{}, tllerrors.New(tllerrors.InvalidArgument, "curl", "Parse", "empty parameter key in %q", s)
		}
		u.Params = append(u.Params, Param{Key: key, Value: val})
	}

	return u, nil
}

// MustParse is Parse but panics on error; useful for literal URLs in tests
// and init()-time alias registration.
func MustParse(s string) URL {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// String renders the canonical form: proto://host;k=v;... with parameters
// sorted by key (a stable sort, so duplicate keys keep their relative
// order — this is the round-trip law's "duplicates preserved by
// multiplicity" clause).
func (u URL) String() string {
	var b strings.Builder
	if u.Proto != "" {
		b.WriteString(u.Proto)
		b.WriteString("://")
		b.WriteString(u.Host)
	}

	params := make([]Param, len(u.Params))
	copy(params, u.Params)
	sort.SliceStable(params, func(i, j int) bool { return params[i].Key < params[j].Key })

	for _, p := range params {
		b.WriteByte(';')
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Get returns the first value for key and whether it was present.
func (u URL) Get(key string) (string, bool) {
	for _, p := range u.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// GetAll returns every value for key, in insertion order.
func (u URL) GetAll(key string) []string {
	var vals []string
	for _, p := range u.Params {
		if p.Key == key {
			vals = append(vals, p.Value)
		}
	}
	return vals
}

// GetBool parses key as a boolean (yes/true/1 and no/false/0, case
// insensitive), returning def if absent or unparseable.
func (u URL) GetBool(key string, def bool) bool {
	v, ok := u.Get(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	case "no", "false", "0":
		return false
	default:
		return def
	}
}

// GetInt parses key as an integer, returning def if absent or unparseable.
func (u URL) GetInt(key string, def int64) int64 {
	v, ok := u.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// Has reports whether key is present at all.
func (u URL) Has(key string) bool {
	_, ok := u.Get(key)
	return ok
}

// Set replaces every existing occurrence of key with a single value,
// appending it if absent. Returns a new URL; the receiver is unchanged.
func (u URL) Set(key, value string) URL {
	out := u.Clone()
	found := false
	dst := out.Params[:0]
	for _, p := range out.Params {
		if p.Key == key {
			if !found {
				dst = append(dst, Param{Key: key, Value: value})
				found = true
			}
			continue
		}
		dst = append(dst, p)
	}
	out.Params = dst
	if !found {
		out.Params = append(out.Params, Param{Key: key, Value: value})
	}
	return out
}

// Del removes every occurrence of key. Returns a new URL.
func (u URL) Del(key string) URL {
	out := u.Clone()
	dst := out.Params[:0]
	for _, p := range out.Params {
		if p.Key != key {
			dst = append(dst, p)
		}
	}
	out.Params = dst
	return out
}

// Clone deep-copies the parameter slice so mutation through Set/Del never
// aliases the original's backing array.
func (u URL) Clone() URL {
	out := URL{Proto: u.Proto, Host: u.Host}
	if u.Params != nil {
		out.Params = make([]Param, len(u.Params))
		copy(out.Params, u.Params)
	}
	return out
}

// Merge copies every parameter from other into u, reporting DuplicateField
// if a key exists in both with different values (a key present in both
// with the same value is not a conflict — idempotent alias application).
func (u URL) Merge(other URL) (URL, error) {
	out := u.Clone()
	for _, p := range other.Params {
		if existing, ok := out.Get(p.Key); ok {
			if existing != p.Value {
				return URL{}, tllerrors.New(tllerrors.DuplicateField, "curl", "Merge", "key %q defined by both alias and URL", p.Key)
			}
			continue
		}
		out.Params = append(out.Params, p)
	}
	return out, nil
}

// SplitPrefix splits a "+"-joined protocol into its outer (local) and
// inner halves at the first "+". ok is false if proto has no "+".
func SplitPrefix(proto string) (local, inner string, ok bool) {
	idx := strings.Index(proto, "+")
	if idx < 0 {
		return "", "", false
	}
	return proto[:idx], proto[idx+1:], true
}

// IsPrefixProto reports whether proto ends in "+" (a prefix-alias key, as
// opposed to a "local+inner" concrete protocol).
func IsPrefixProto(proto string) bool {
	return strings.HasSuffix(proto, "+")
}

// ParamsString is a debugging helper rendering params as "k=v,k=v".
func (u URL) ParamsString() string {
	parts := make([]string, len(u.Params))
	for i, p := range u.Params {
		parts[i] = fmt.Sprintf("%s=%s", p.Key, p.Value)
	}
	return strings.Join(parts, ",")
}
