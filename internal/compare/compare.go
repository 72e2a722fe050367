// Package compare decides whether two JSON values are the same.
//
// Equal is the one equality predicate used by the diff and merge engines so
// both always agree on what "different" means.
package compare

import (
	"math/big"
	"strings"

	"github.com/mcncl/jsonmerge/internal/models"
)

// Equal reports whether a and b are structurally equal.
//
// Values of different kinds are never equal, so 1 and "1" differ. Numbers
// compare by numeric value, so 1 and 1.0 are equal. Arrays must have the same
// length and equal elements in order. Objects must have the same key set with
// equal values per key; key order is ignored. An absent value (nil) is only
// equal to another absent value, never to null.
func Equal(a, b models.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case models.Null:
		_, ok := b.(models.Null)
		return ok
	case models.Bool:
		y, ok := b.(models.Bool)
		return ok && x == y
	case models.Number:
		y, ok := b.(models.Number)
		return ok && numbersEqual(x, y)
	case models.String:
		y, ok := b.(models.String)
		return ok && x == y
	case models.Array:
		y, ok := b.(models.Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *models.Object:
		y, ok := b.(*models.Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, key := range x.Keys() {
			xv, _ := x.Get(key)
			yv, present := y.Get(key)
			if !present || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numbersEqual compares exact decimal values so large integers that share a
// float64 approximation still differ. Literals whose exponent is too large
// for big.Rat are compared in normalized decimal form.
func numbersEqual(a, b models.Number) bool {
	if a == b {
		return true
	}
	ra, okA := new(big.Rat).SetString(string(a))
	rb, okB := new(big.Rat).SetString(string(b))
	if okA && okB {
		return ra.Cmp(rb) == 0
	}
	da, okA := normalizeDecimal(string(a))
	db, okB := normalizeDecimal(string(b))
	return okA && okB && da.neg == db.neg && da.digits == db.digits && da.exp.Cmp(db.exp) == 0
}

// decimal is digits × 10^exp with no leading or trailing zeros in digits.
// Zero has empty digits and is never negative.
type decimal struct {
	neg    bool
	digits string
	exp    *big.Int
}

// NumberKey returns a string that is the same for two numbers exactly when
// Equal reports them equal. Literals that are not valid numbers key on their
// own text.
func NumberKey(n models.Number) string {
	d, ok := normalizeDecimal(string(n))
	if !ok {
		return string(n)
	}
	sign := ""
	if d.neg {
		sign = "-"
	}
	return sign + d.digits + "e" + d.exp.String()
}

func normalizeDecimal(s string) (decimal, bool) {
	d := decimal{exp: new(big.Int)}
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		d.neg, s = true, rest
	}
	mant := s
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant = s[:i]
		if _, ok := d.exp.SetString(s[i+1:], 10); !ok {
			return decimal{}, false
		}
	}
	intPart, frac, _ := strings.Cut(mant, ".")
	digits := intPart + frac
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return decimal{}, false
	}
	d.exp.Sub(d.exp, big.NewInt(int64(len(frac))))

	digits = strings.TrimLeft(digits, "0")
	trimmed := strings.TrimRight(digits, "0")
	d.exp.Add(d.exp, big.NewInt(int64(len(digits)-len(trimmed))))
	d.digits = trimmed
	if d.digits == "" {
		return decimal{exp: new(big.Int)}, true
	}
	return d, true
}

// SameShape reports whether a and b are both objects or both arrays, the
// only pairs the diff engine descends into.
func SameShape(a, b models.Value) bool {
	switch a.(type) {
	case *models.Object:
		return models.IsObject(b)
	case models.Array:
		return models.IsArray(b)
	default:
		return false
	}
}
