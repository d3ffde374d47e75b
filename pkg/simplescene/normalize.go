package simplescene

import (
	"fmt"
	"strings"
)

// NormalizeKind canonicalizes a node kind tag to lower case.
func NormalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

// ValidateName checks a scene, node, or attribute name. Names are
// identifier-shaped so they survive attribute paths and name-based
// resolution unambiguously.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for i, r := range name {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			continue
		}
		if i > 0 && '0' <= r && r <= '9' {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
