package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandStrict replaces ${VAR} references in s using lookup. A reference to
// an unset variable is an error. $$ emits a literal $.
func expandStrict(s string, lookup func(string) (string, bool)) (string, error) {
	const dollar = "\x00DOCSCACHE_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	var missing []string
	s = envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		key := ref[2 : len(ref)-1]
		v, ok := lookup(key)
		if !ok {
			if !slices.Contains(missing, key) {
				missing = append(missing, key)
			}
			return ref
		}
		return v
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(s, dollar, "$"), nil
}
