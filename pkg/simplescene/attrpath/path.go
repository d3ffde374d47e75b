// Package attrpath parses dotted sub-attribute paths such as
// "sequence[0].data" into their segments.
//
// A path addresses structured data hanging off a node: the root segment
// names the node attribute, and the root index plus any later segments
// address values inside that attribute's document.
package attrpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one dotted component of a path. Index is -1 when the segment
// carries no [n] suffix.
type Segment struct {
	Name  string
	Index int
}

// HasIndex reports whether the segment carries an [n] suffix.
func (s Segment) HasIndex() bool { return s.Index >= 0 }

func (s Segment) String() string {
	if s.HasIndex() {
		return fmt.Sprintf("%s[%d]", s.Name, s.Index)
	}
	return s.Name
}

// Path is a parsed attribute path. A Path returned by Parse has at least one
// segment.
type Path []Segment

// Root returns the first segment, which names the node attribute the path
// addresses.
func (p Path) Root() Segment { return p[0] }

// Leaf returns the last segment.
func (p Path) Leaf() Segment { return p[len(p)-1] }

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// JSONPath converts everything after the root name into a gjson/sjson style
// path: "sequence[0].data" becomes "0.data". The empty string means the path
// addresses the root attribute itself.
func (p Path) JSONPath() string {
	var parts []string
	if p[0].HasIndex() {
		parts = append(parts, strconv.Itoa(p[0].Index))
	}
	for _, s := range p[1:] {
		parts = append(parts, s.Name)
		if s.HasIndex() {
			parts = append(parts, strconv.Itoa(s.Index))
		}
	}
	return strings.Join(parts, ".")
}

// Parse splits a dotted path into segments. Each segment is an identifier
// optionally followed by one [n] index with n >= 0.
func Parse(path string) (Path, error) {
	if path == "" {
		return nil, fmt.Errorf("attrpath: empty path")
	}

	var p Path
	for _, part := range strings.Split(path, ".") {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("attrpath: %q: %w", path, err)
		}
		p = append(p, seg)
	}
	return p, nil
}

func parseSegment(part string) (Segment, error) {
	seg := Segment{Index: -1}

	name := part
	if i := strings.IndexByte(part, '['); i >= 0 {
		if !strings.HasSuffix(part, "]") {
			return seg, fmt.Errorf("unterminated index in %q", part)
		}
		idx, err := strconv.Atoi(part[i+1 : len(part)-1])
		if err != nil || idx < 0 {
			return seg, fmt.Errorf("bad index in %q", part)
		}
		seg.Index = idx
		name = part[:i]
	}

	if !validIdent(name) {
		return seg, fmt.Errorf("bad segment name %q", name)
	}
	seg.Name = name
	return seg, nil
}

// validIdent applies the same identifier shape attribute names use.
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			continue
		}
		if i > 0 && '0' <= r && r <= '9' {
			continue
		}
		return false
	}
	return true
}
