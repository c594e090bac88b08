// Package config implements the hierarchical, dotted-path key/value tree
// the core reads channel URLs' parameter sub-trees from and writes each
// channel's live state into. It is the Go rendition of spec.md's external
// "config store" collaborator: a real, usable component, built the way the
// teacher's config.Manager wraps shared mutex-protected state, even though
// the core itself only ever touches a narrow slice of its surface.
package config

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	tllerrors "github.com/Diego2la/tll/errors"
)

// Tree is a dotted-path key/value store: "udp.0.bind" addresses a value
// nested three levels deep. Safe for concurrent use.
type Tree struct {
	mu   sync.RWMutex
	data map[string]any
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{data: make(map[string]any)}
}

func splitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, ".")
}

// Get returns the value at the dotted path and whether it was present.
func (t *Tree) Get(p string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lookup(t.data, splitPath(p))
}

// GetString is a convenience wrapper returning def if the path is absent
// or not a string.
func (t *Tree) GetString(p, def string) string {
	v, ok := t.Get(p)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func lookup(node any, segs []string) (any, bool) {
	if len(segs) == 0 {
		return node, node != nil
	}
	m, ok := node.(map[string]any)
	if !ok {
		return nil, false
	}
	child, ok := m[segs[0]]
	if !ok {
		return nil, false
	}
	return lookup(child, segs[1:])
}

// Set writes value at the dotted path, creating intermediate maps as
// needed. Returns InvalidArgument if an intermediate segment already
// holds a non-map value.
func (t *Tree) Set(p string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	segs := splitPath(p)
	if len(segs) == 0 {
		return tllerrors.New(tllerrors.InvalidArgument, "config", "Set", "empty path")
	}
	return set(t.data, segs, value)
}

func set(m map[string]any, segs []string, value any) error {
	if len(segs) == 1 {
		m[segs[0]] = value
		return nil
	}
	next, ok := m[segs[0]]
	if !ok {
		next = make(map[string]any)
		m[segs[0]] = next
	}
	child, ok := next.(map[string]any)
	if !ok {
		return tllerrors.New(tllerrors.InvalidArgument, "config", "Set", "segment %q is not a map", segs[0])
	}
	return set(child, segs[1:], value)
}

// Sub returns a detached copy of the sub-tree rooted at p. Mutating the
// result never affects t. Returns an empty Tree if p is absent.
func (t *Tree) Sub(p string) *Tree {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := lookup(t.data, splitPath(p))
	out := New()
	if !ok {
		return out
	}
	m, ok := v.(map[string]any)
	if !ok {
		return out
	}
	out.data = deepCopy(m).(map[string]any)
	return out
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		cp := make(map[string]any, len(x))
		for k, vv := range x {
			cp[k] = deepCopy(vv)
		}
		return cp
	case []any:
		cp := make([]any, len(x))
		for i, vv := range x {
			cp[i] = deepCopy(vv)
		}
		return cp
	default:
		return x
	}
}

// Merge deep-merges other into t, last-writer-wins per leaf. Import uses
// it to fold a parsed YAML document into the tree.
func (t *Tree) Merge(other *Tree) {
	other.mu.RLock()
	defer other.mu.RUnlock()
	t.mu.Lock()
	defer t.mu.Unlock()

	mergeInto(t.data, other.data)
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		if !srcIsMap {
			dst[k] = deepCopy(v)
			continue
		}
		existing, ok := dst[k]
		dstMap, dstIsMap := existing.(map[string]any)
		if ok && dstIsMap {
			mergeInto(dstMap, srcMap)
		} else {
			dst[k] = deepCopy(srcMap)
		}
	}
}

// Browse returns the dotted leaf keys matching a path.Match-style glob
// ("udp.*.bind"), sorted for deterministic iteration.
func (t *Tree) Browse(glob string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var keys []string
	collectLeaves(t.data, nil, &keys)

	var matched []string
	for _, k := range keys {
		if ok, _ := path.Match(glob, k); ok {
			matched = append(matched, k)
		}
	}
	sort.Strings(matched)
	return matched
}

func collectLeaves(node any, prefix []string, out *[]string) {
	m, ok := node.(map[string]any)
	if !ok {
		*out = append(*out, strings.Join(prefix, "."))
		return
	}
	for k, v := range m {
		collectLeaves(v, append(prefix, k), out)
	}
}

// Load parses YAML bytes into a fresh Tree.
func Load(raw []byte) (*Tree, error) {
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, tllerrors.Wrap(tllerrors.InvalidArgument, "config", "Load", err, "parse yaml")
	}
	if data == nil {
		data = make(map[string]any)
	}
	return &Tree{data: normalizeYAML(data).(map[string]any)}, nil
}

// normalizeYAML converts yaml.v3's map[string]interface{} (already string
// keyed for mapping nodes, but nested maps may come back as
// map[string]interface{} too) into the map[string]any shape Tree expects,
// recursively, so Get/Set see a uniform representation.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = normalizeYAML(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = normalizeYAML(vv)
		}
		return out
	default:
		return x
	}
}

// Import deep-merges the YAML document in raw into t via Merge
// (last-writer-wins per leaf), returning an error if raw fails to parse.
func (t *Tree) Import(raw []byte) error {
	other, err := Load(raw)
	if err != nil {
		return err
	}
	t.Merge(other)
	return nil
}

// String renders the tree as YAML, mainly for debugging/dump support.
func (t *Tree) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, err := yaml.Marshal(t.data)
	if err != nil {
		return fmt.Sprintf("<config: marshal error: %v>", err)
	}
	return string(b)
}
