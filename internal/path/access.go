package path

import (
	"errors"
	"fmt"

	"github.com/mcncl/jsonmerge/internal/models"
)

// SkipChildren can be returned by a WalkFunc to stop descending into the
// current container.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node visited by Walk.
type WalkFunc func(p Path, v models.Value) error

// Walk visits v and every value below it depth-first, parents before
// children, object keys in insertion order.
func Walk(v models.Value, fn WalkFunc) error {
	return walk(Root(), v, fn)
}

func walk(p Path, v models.Value, fn WalkFunc) error {
	if err := fn(p, v); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}

	switch t := v.(type) {
	case *models.Object:
		for _, key := range t.Keys() {
			child, _ := t.Get(key)
			if err := walk(p.AppendKey(key), child, fn); err != nil {
				return err
			}
		}
	case models.Array:
		for i, child := range t {
			if err := walk(p.AppendIndex(i), child, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the value at p inside v.
func Get(v models.Value, p Path) (models.Value, bool) {
	current := v
	for _, step := range p {
		switch t := current.(type) {
		case *models.Object:
			if step.IsIndex {
				return nil, false
			}
			next, ok := t.Get(step.Key)
			if !ok {
				return nil, false
			}
			current = next
		case models.Array:
			if !step.IsIndex || step.Index < 0 || step.Index >= len(t) {
				return nil, false
			}
			current = t[step.Index]
		default:
			return nil, false
		}
	}
	return current, current != nil
}

// Set returns a copy of v with x stored at p. Containers along p are copied,
// everything else is shared with v. An index equal to the array length
// appends. Setting the root returns x.
func Set(v models.Value, p Path, x models.Value) (models.Value, error) {
	if len(p) == 0 {
		return x, nil
	}
	step := p[0]

	switch t := v.(type) {
	case *models.Object:
		if step.IsIndex {
			return nil, fmt.Errorf("cannot index object with %s", step)
		}
		child, _ := t.Get(step.Key)
		if len(p) > 1 && child == nil {
			return nil, fmt.Errorf("key %q not found", step.Key)
		}
		updated, err := Set(child, p[1:], x)
		if err != nil {
			return nil, err
		}
		return t.Copy().Set(step.Key, updated), nil
	case models.Array:
		if !step.IsIndex {
			return nil, fmt.Errorf("cannot read key %q from array", step.Key)
		}
		if step.Index < 0 || step.Index > len(t) || (step.Index == len(t) && len(p) > 1) {
			return nil, fmt.Errorf("index %d out of bounds (length %d)", step.Index, len(t))
		}
		var child models.Value
		if step.Index < len(t) {
			child = t[step.Index]
		}
		updated, err := Set(child, p[1:], x)
		if err != nil {
			return nil, err
		}
		out := make(models.Array, len(t), len(t)+1)
		copy(out, t)
		if step.Index == len(t) {
			return append(out, updated), nil
		}
		out[step.Index] = updated
		return out, nil
	default:
		return nil, fmt.Errorf("cannot descend into %s at %s", kindOf(v), step)
	}
}

// Delete returns a copy of v without the value at p. Array elements after
// the removed one shift down by one.
func Delete(v models.Value, p Path) (models.Value, error) {
	if len(p) == 0 {
		return nil, errors.New("cannot delete the root")
	}
	step := p[0]

	switch t := v.(type) {
	case *models.Object:
		if step.IsIndex {
			return nil, fmt.Errorf("cannot index object with %s", step)
		}
		child, ok := t.Get(step.Key)
		if !ok {
			return nil, fmt.Errorf("key %q not found", step.Key)
		}
		out := t.Copy()
		if len(p) == 1 {
			out.Delete(step.Key)
			return out, nil
		}
		updated, err := Delete(child, p[1:])
		if err != nil {
			return nil, err
		}
		return out.Set(step.Key, updated), nil
	case models.Array:
		if !step.IsIndex {
			return nil, fmt.Errorf("cannot read key %q from array", step.Key)
		}
		if step.Index < 0 || step.Index >= len(t) {
			return nil, fmt.Errorf("index %d out of bounds (length %d)", step.Index, len(t))
		}
		if len(p) == 1 {
			out := make(models.Array, 0, len(t)-1)
			out = append(out, t[:step.Index]...)
			return append(out, t[step.Index+1:]...), nil
		}
		updated, err := Delete(t[step.Index], p[1:])
		if err != nil {
			return nil, err
		}
		out := make(models.Array, len(t))
		copy(out, t)
		out[step.Index] = updated
		return out, nil
	default:
		return nil, fmt.Errorf("cannot descend into %s at %s", kindOf(v), step)
	}
}

func kindOf(v models.Value) string {
	if v == nil {
		return "absent value"
	}
	return v.Kind().String()
}
