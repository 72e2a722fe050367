package merge

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/models"
	"github.com/mcncl/jsonmerge/internal/parser"
)

// Strategy selects how two documents are combined.
type Strategy int

const (
	// Deep merges nested objects key by key, concatenates arrays and settles
	// scalar conflicts with resolutions, defaulting to the right value.
	Deep Strategy = iota
	// Shallow overlays the right object's keys on the left one level deep.
	Shallow
	// Replace returns the right document.
	Replace
)

func (s Strategy) String() string {
	switch s {
	case Deep:
		return "deep"
	case Shallow:
		return "shallow"
	case Replace:
		return "replace"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts deep, shallow or replace in any case.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deep", "":
		return Deep, nil
	case "shallow":
		return Shallow, nil
	case "replace":
		return Replace, nil
	default:
		return Deep, errors.NewInputError(
			fmt.Sprintf("unknown merge strategy %q (expected deep, shallow or replace)", s),
			errors.ErrInvalidStrategy,
		)
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Choice is the kind of decision a Resolution records.
type Choice int

const (
	UseLeft Choice = iota + 1
	UseRight
	Custom
)

// Resolution settles the conflict at one path.
type Resolution struct {
	Choice Choice
	// Literal is the raw text of a Custom resolution. It is parsed as JSON
	// when applied and used as a plain string if that fails.
	Literal string
}

// Left keeps the left value.
func Left() Resolution { return Resolution{Choice: UseLeft} }

// Right takes the right value.
func Right() Resolution { return Resolution{Choice: UseRight} }

// CustomValue uses text as the merged value.
func CustomValue(text string) Resolution { return Resolution{Choice: Custom, Literal: text} }

// Resolutions maps rendered paths to the caller's decisions.
type Resolutions map[string]Resolution

const customPrefix = "custom:"

// ParseResolution reads "left", "right" or "custom:<text>".
func ParseResolution(s string) (Resolution, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "left", "l":
		return Left(), nil
	case "right", "r":
		return Right(), nil
	}
	if len(trimmed) >= len(customPrefix) && strings.EqualFold(trimmed[:len(customPrefix)], customPrefix) {
		return CustomValue(trimmed[len(customPrefix):]), nil
	}
	return Resolution{}, errors.NewInputError(
		fmt.Sprintf("invalid resolution %q (expected left, right or custom:<json>)", s),
		errors.ErrInvalidResolution,
	)
}

func (r Resolution) String() string {
	switch r.Choice {
	case UseLeft:
		return "left"
	case UseRight:
		return "right"
	case Custom:
		return customPrefix + r.Literal
	default:
		return "unresolved"
	}
}

func (r Resolution) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Resolution) UnmarshalText(text []byte) error {
	parsed, err := ParseResolution(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// customValue parses the literal as JSON and falls back to a plain string.
// The returned error is a warning, never a failure.
func customValue(p, literal string) (models.Value, error) {
	v, err := parser.ParseString(literal)
	if err == nil {
		return v, nil
	}
	return models.String(literal), errors.NewMergeError(
		fmt.Sprintf("custom value for %q is not valid JSON, using it as a string", p),
		errors.ErrInvalidCustomResolution,
	)
}
