package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Key addresses one cache entry.
type Key struct {
	Tool string // tool name, also the filename prefix
	Hash string // 16 lowercase hex characters
}

// Filename returns <tool>_<hash>.json.
func (k Key) Filename() string {
	return k.Tool + "_" + k.Hash + EntryExt
}

// Path returns the entry location under root.
func (k Key) Path(root string) string {
	return filepath.Join(root, k.Filename())
}

func (k Key) String() string {
	return k.Tool + ":" + k.Hash
}

// Keyer derives cache keys from tool call parameters.
//
// Contract:
// - Determinism: same inputs must produce same key, regardless of map iteration order.
// - Separation: different tool names must never produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(tool string, args any) (Key, error)
}

// DefaultKeyer hashes canonical JSON with 64-bit xxHash.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key hashes tool || 0x00 || canonical(args). Struct fields hash in
// declaration order; map keys are sorted. Args implementing Fingerprinter
// are replaced by their fingerprint first.
func (k *DefaultKeyer) Key(tool string, args any) (Key, error) {
	if err := ValidateToolName(tool); err != nil {
		return Key{}, err
	}

	if fp, ok := args.(Fingerprinter); ok {
		args = fp.CacheFingerprint()
	}

	canonical, err := canonicalize(args)
	if err != nil {
		return Key{}, fmt.Errorf("cache: failed to canonicalize args: %w", err)
	}

	d := xxhash.New()
	_, _ = d.WriteString(tool)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(canonical)

	return Key{Tool: tool, Hash: fmt.Sprintf("%016x", d.Sum64())}, nil
}

// canonicalize produces a deterministic JSON representation of v.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// encoding/json keeps struct declaration order and sorts map keys
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, ':')

		vb, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	out := []byte{'['}
	for i, v := range s {
		if i > 0 {
			out = append(out, ',')
		}
		vb, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, ']'), nil
}

var _ Keyer = (*DefaultKeyer)(nil)
