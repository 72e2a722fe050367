// Package path locates values inside a JSON document.
//
// A Path is a sequence of steps, each an object key or an array index. Paths
// render as dot-separated keys with bracketed indices, for example
// "users[0].email". The root path is empty and renders as "".
package path

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one hop into a container.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object-key step.
func Key(key string) Step {
	return Step{Key: key}
}

// Index returns an array-index step.
func Index(i int) Step {
	return Step{Index: i, IsIndex: true}
}

func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Path is an immutable sequence of steps. Methods never modify the receiver.
type Path []Step

// Root returns the empty path.
func Root() Path {
	return Path{}
}

// Append returns a new path with step added at the end.
func (p Path) Append(step Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

// AppendKey is shorthand for p.Append(Key(key)).
func (p Path) AppendKey(key string) Path {
	return p.Append(Key(key))
}

// AppendIndex is shorthand for p.Append(Index(i)).
func (p Path) AppendIndex(i int) Path {
	return p.Append(Index(i))
}

// IsRoot reports whether p is the empty path.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns p without its last step. The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	out := make(Path, len(p)-1)
	copy(out, p[:len(p)-1])
	return out
}

// Last returns the final step and false when p is the root.
func (p Path) Last() (Step, bool) {
	if len(p) == 0 {
		return Step{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether both paths have the same steps.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the path. Keys are joined with "." and indices are written
// as "[i]" with no dot in front. A top-level empty key renders as "", the
// same as the root.
func (p Path) String() string {
	var b strings.Builder
	for i, step := range p {
		if step.IsIndex {
			b.WriteString(step.String())
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(step.Key)
	}
	return b.String()
}

// Parse reads a rendered path back into steps. Keys that contain '.', '['
// or ']' do not survive a render/parse round trip.
func Parse(s string) (Path, error) {
	p := Root()
	var key strings.Builder
	flush := func() {
		if key.Len() > 0 {
			p = append(p, Key(key.String()))
			key.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.':
			if key.Len() == 0 && (i == 0 || s[i-1] != ']') {
				return nil, fmt.Errorf("empty key at offset %d in path %q", i, s)
			}
			flush()
		case '[':
			flush()
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index at offset %d in path %q", i, s)
			}
			idx, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("invalid index %q in path %q", s[i+1:i+end], s)
			}
			p = append(p, Index(idx))
			i += end
		default:
			key.WriteByte(s[i])
		}
	}
	if strings.HasSuffix(s, ".") {
		return nil, fmt.Errorf("trailing '.' in path %q", s)
	}
	flush()
	return p, nil
}

// MustParse is like Parse but panics on error. It is meant for literals in
// tests and tables.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
