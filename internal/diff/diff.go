// Package diff compares two JSON documents and reports where they differ.
package diff

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"github.com/mcncl/jsonmerge/internal/compare"
	"github.com/mcncl/jsonmerge/internal/models"
	"github.com/mcncl/jsonmerge/internal/path"
)

// Kind says what happened at a path.
type Kind int

const (
	Added Kind = iota + 1
	Removed
	Modified
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Difference is one change between the left and the right document. Added
// and Removed carry Value; Modified carries OldValue and NewValue.
type Difference struct {
	Path     path.Path
	Kind     Kind
	Value    models.Value
	OldValue models.Value
	NewValue models.Value
}

type differenceJSON struct {
	Path     string       `json:"path"`
	Kind     Kind         `json:"kind"`
	Value    models.Value `json:"value,omitempty"`
	OldValue models.Value `json:"oldValue,omitempty"`
	NewValue models.Value `json:"newValue,omitempty"`
}

func (d Difference) MarshalJSON() ([]byte, error) {
	return json.Marshal(differenceJSON{
		Path:     d.Path.String(),
		Kind:     d.Kind,
		Value:    d.Value,
		OldValue: d.OldValue,
		NewValue: d.NewValue,
	})
}

// Conflict is a Modified difference the merge engine cannot settle on its
// own: the two sides are not both objects, so there is nothing to recurse
// into.
type Conflict struct {
	Path     path.Path
	OldValue models.Value
	NewValue models.Value
}

func (c Conflict) MarshalJSON() ([]byte, error) {
	return json.Marshal(differenceJSON{
		Path:     c.Path.String(),
		Kind:     Modified,
		OldValue: c.OldValue,
		NewValue: c.NewValue,
	})
}

// Result holds the differences in traversal order and the subset that are
// conflicts.
type Result struct {
	Differences []Difference `json:"differences"`
	Conflicts   []Conflict   `json:"conflicts"`
	// Incomparable is set when the roots are unequal and not both objects or
	// both arrays. The whole document is then one root-level conflict.
	Incomparable bool `json:"incomparable,omitempty"`
}

// Counts tallies a Result.
type Counts struct {
	Added     int
	Removed   int
	Modified  int
	Conflicts int
}

// Empty reports whether the documents were equal.
func (r Result) Empty() bool {
	return len(r.Differences) == 0
}

// Counts returns how many differences of each kind there are.
func (r Result) Counts() Counts {
	c := Counts{Conflicts: len(r.Conflicts)}
	for _, d := range r.Differences {
		switch d.Kind {
		case Added:
			c.Added++
		case Removed:
			c.Removed++
		case Modified:
			c.Modified++
		}
	}
	return c
}

// ByKind returns the differences of one kind, in traversal order.
func (r Result) ByKind(kind Kind) []Difference {
	return lo.Filter(r.Differences, func(d Difference, _ int) bool {
		return d.Kind == kind
	})
}

// ConflictAt looks up the conflict whose rendered path is p.
func (r Result) ConflictAt(p string) (Conflict, bool) {
	return lo.Find(r.Conflicts, func(c Conflict) bool {
		return c.Path.String() == p
	})
}

// ConflictPaths returns the rendered paths of all conflicts.
func (r Result) ConflictPaths() []string {
	return lo.Map(r.Conflicts, func(c Conflict, _ int) string {
		return c.Path.String()
	})
}

// Diff compares left against right. Objects are compared over the union of
// their keys and arrays index by index; the engine descends only where both
// sides are objects. Equal subtrees never produce a difference.
func Diff(left, right models.Value) Result {
	d := &differ{}
	switch {
	case compare.Equal(left, right):
	case compare.SameShape(left, right):
		d.containers(path.Root(), left, right)
	default:
		d.result.Incomparable = true
		d.modified(path.Root(), left, right)
	}
	return d.result
}

type differ struct {
	result Result
}

func (d *differ) containers(p path.Path, left, right models.Value) {
	switch l := left.(type) {
	case *models.Object:
		d.objects(p, l, right.(*models.Object))
	case models.Array:
		d.arrays(p, l, right.(models.Array))
	}
}

func (d *differ) objects(p path.Path, left, right *models.Object) {
	rightOnly := lo.Filter(right.Keys(), func(key string, _ int) bool {
		return !left.Has(key)
	})

	for _, key := range append(left.Keys(), rightOnly...) {
		lv, inLeft := left.Get(key)
		rv, inRight := right.Get(key)
		d.pair(p.AppendKey(key), lv, inLeft, rv, inRight)
	}
}

func (d *differ) arrays(p path.Path, left, right models.Array) {
	for i := 0; i < max(len(left), len(right)); i++ {
		var lv, rv models.Value
		if i < len(left) {
			lv = left[i]
		}
		if i < len(right) {
			rv = right[i]
		}
		d.pair(p.AppendIndex(i), lv, i < len(left), rv, i < len(right))
	}
}

func (d *differ) pair(p path.Path, lv models.Value, inLeft bool, rv models.Value, inRight bool) {
	switch {
	case !inLeft:
		d.add(Difference{Path: p, Kind: Added, Value: rv})
	case !inRight:
		d.add(Difference{Path: p, Kind: Removed, Value: lv})
	case compare.Equal(lv, rv):
	case models.IsObject(lv) && models.IsObject(rv):
		d.objects(p, lv.(*models.Object), rv.(*models.Object))
	default:
		d.modified(p, lv, rv)
	}
}

func (d *differ) modified(p path.Path, oldValue, newValue models.Value) {
	d.add(Difference{Path: p, Kind: Modified, OldValue: oldValue, NewValue: newValue})
	d.result.Conflicts = append(d.result.Conflicts, Conflict{Path: p, OldValue: oldValue, NewValue: newValue})
}

func (d *differ) add(diff Difference) {
	d.result.Differences = append(d.result.Differences, diff)
}
