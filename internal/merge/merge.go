// Package merge combines two JSON documents under a strategy, settling
// conflicts with caller-supplied resolutions.
package merge

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/mcncl/jsonmerge/internal/compare"
	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/models"
	"github.com/mcncl/jsonmerge/internal/path"
)

// Options tune a Merger.
type Options struct {
	// DedupeArrays drops structurally equal elements after concatenation,
	// keeping the first occurrence.
	DedupeArrays bool
	Logger       *slog.Logger
}

// Merger merges documents. The zero value is not usable, call NewMerger.
type Merger struct {
	dedupeArrays bool
	logger       *slog.Logger
}

// NewMerger returns a Merger with default options.
func NewMerger() *Merger {
	return NewMergerWithOptions(Options{})
}

// NewMergerWithOptions returns a Merger configured by opts.
func NewMergerWithOptions(opts Options) *Merger {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		dedupeArrays: opts.DedupeArrays,
		logger:       logger,
	}
}

// Result is the outcome of a merge.
type Result struct {
	Value models.Value
	// Resolved lists the paths settled by a caller resolution, in the order
	// they were reached.
	Resolved []string
	// Warnings are non-fatal problems, such as a custom value that was not
	// valid JSON or top-level values of different shapes.
	Warnings []error
}

// Merge is a deep merge with no resolutions.
func Merge(left, right models.Value) (models.Value, error) {
	result, err := NewMerger().Merge(left, right, Deep, nil)
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

// Merge combines left and right under strategy. Neither input is modified
// and the result shares no containers with them. Resolutions for paths that
// are not conflicts are ignored.
func (m *Merger) Merge(left, right models.Value, strategy Strategy, resolutions Resolutions) (Result, error) {
	r := &run{merger: m, resolutions: resolutions}

	if strategy != Replace && !compare.Equal(left, right) && !compare.SameShape(left, right) {
		r.warn(errors.NewComparisonError(
			fmt.Sprintf("cannot %s merge %s into %s, using the right document", strategy, kindOf(right), kindOf(left)),
			errors.ErrIncomparableTopLevelTypes,
		))
	}

	var value models.Value
	switch strategy {
	case Replace:
		value = models.Clone(right)
	case Shallow:
		value = r.shallow(left, right)
	case Deep:
		value = r.deep(path.Root(), left, right)
	default:
		return Result{}, errors.NewMergeError(fmt.Sprintf("unsupported strategy %s", strategy), errors.ErrInvalidStrategy)
	}

	if models.IsEmpty(value) && !(models.IsEmpty(left) || models.IsEmpty(right)) {
		return Result{}, errors.NewMergeError(
			fmt.Sprintf("%s merge of two non-null documents produced null", strategy),
			errors.ErrMergeProducedEmptyResult,
		)
	}
	if value == nil {
		value = models.Null{}
	}

	m.logger.Debug("merge complete",
		"strategy", strategy.String(),
		"resolved", len(r.resolved),
		"warnings", len(r.warnings))

	return Result{Value: value, Resolved: r.resolved, Warnings: r.warnings}, nil
}

// run carries the state of one Merge call.
type run struct {
	merger      *Merger
	resolutions Resolutions
	resolved    []string
	warnings    []error
}

func (r *run) warn(err error) {
	r.merger.logger.Warn("merge warning", "error", err)
	r.warnings = append(r.warnings, err)
}

func (r *run) shallow(left, right models.Value) models.Value {
	switch l := left.(type) {
	case *models.Object:
		rr, ok := right.(*models.Object)
		if !ok {
			return models.Clone(right)
		}
		out := models.Clone(l).(*models.Object)
		for _, key := range rr.Keys() {
			v, _ := rr.Get(key)
			out.Set(key, models.Clone(v))
		}
		return out
	case models.Array:
		if rr, ok := right.(models.Array); ok {
			return r.concat(l, rr)
		}
	}
	return models.Clone(right)
}

// deep merges a pair that is known to differ or sits at the root.
func (r *run) deep(p path.Path, left, right models.Value) models.Value {
	switch l := left.(type) {
	case *models.Object:
		if rr, ok := right.(*models.Object); ok {
			return r.objects(p, l, rr)
		}
	case models.Array:
		if rr, ok := right.(models.Array); ok {
			if v, ok := r.resolve(p, left, right); ok {
				return v
			}
			return r.concat(l, rr)
		}
	}
	return r.conflict(p, left, right)
}

func (r *run) objects(p path.Path, left, right *models.Object) *models.Object {
	out := models.NewObject()
	for _, key := range left.Keys() {
		lv, _ := left.Get(key)
		rv, inRight := right.Get(key)
		switch {
		case !inRight, compare.Equal(lv, rv):
			out.Set(key, models.Clone(lv))
		default:
			out.Set(key, r.deep(p.AppendKey(key), lv, rv))
		}
	}
	for _, key := range right.Keys() {
		if left.Has(key) {
			continue
		}
		rv, _ := right.Get(key)
		out.Set(key, models.Clone(rv))
	}
	return out
}

func (r *run) conflict(p path.Path, left, right models.Value) models.Value {
	if compare.Equal(left, right) {
		return models.Clone(left)
	}
	if v, ok := r.resolve(p, left, right); ok {
		return v
	}
	r.merger.logger.Debug("conflict defaulted to right", "path", p.String())
	return models.Clone(right)
}

// resolve applies the caller's resolution for p, if there is one.
func (r *run) resolve(p path.Path, left, right models.Value) (models.Value, bool) {
	key := p.String()
	res, ok := r.resolutions[key]
	if !ok {
		return nil, false
	}

	var value models.Value
	switch res.Choice {
	case UseLeft:
		value = models.Clone(left)
	case UseRight:
		value = models.Clone(right)
	case Custom:
		v, warning := customValue(key, res.Literal)
		if warning != nil {
			r.warn(warning)
		}
		value = v
	default:
		return nil, false
	}

	r.merger.logger.Debug("conflict resolved", "path", key, "resolution", res.String())
	r.resolved = append(r.resolved, key)
	return value, true
}

func (r *run) concat(left, right models.Array) models.Array {
	out := make(models.Array, 0, len(left)+len(right))
	for _, v := range left {
		out = append(out, models.Clone(v))
	}
	for _, v := range right {
		out = append(out, models.Clone(v))
	}
	if r.merger.dedupeArrays {
		out = lo.UniqBy(out, canonicalKey)
	}
	return out
}

// canonicalKey renders v so that structurally equal values share a key:
// object keys are sorted and numbers are reduced to exact fractions.
func canonicalKey(v models.Value) string {
	data, err := json.Marshal(canonical(v))
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}

func canonical(v models.Value) any {
	switch t := v.(type) {
	case *models.Object:
		m := make(map[string]any, t.Len())
		for _, key := range t.Keys() {
			child, _ := t.Get(key)
			m[key] = canonical(child)
		}
		return m
	case models.Array:
		return lo.Map(t, func(child models.Value, _ int) any {
			return canonical(child)
		})
	case models.Number:
		return "n:" + compare.NumberKey(t)
	case models.String:
		return "s:" + string(t)
	case models.Bool:
		return bool(t)
	default:
		return nil
	}
}

func kindOf(v models.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}
