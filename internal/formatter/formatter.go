package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mcncl/jsonmerge/internal/config"
	"github.com/mcncl/jsonmerge/internal/diff"
	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/models"
	"github.com/mcncl/jsonmerge/internal/parser"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

// Formatter renders documents and difference listings as text
type Formatter struct {
	indent   string
	minify   bool
	sortKeys bool
	color    bool
}

// NewFormatter creates a Formatter with two-space indentation
func NewFormatter() *Formatter {
	return &Formatter{indent: "  "}
}

// NewFormatterWithConfig creates a Formatter from the output section of cfg
func NewFormatterWithConfig(cfg *config.Config) *Formatter {
	f := NewFormatter()
	if cfg == nil {
		return f
	}
	if cfg.Output.Indent != "" {
		f.indent = cfg.Output.Indent
	}
	f.minify = cfg.Output.Minify
	f.sortKeys = cfg.Output.SortKeys
	f.color = cfg.Output.Color
	return f
}

// Format renders v as JSON followed by a newline
func (f *Formatter) Format(v models.Value) (string, error) {
	if f.sortKeys {
		v = SortKeys(v)
	}

	compact, err := models.Marshal(v)
	if err != nil {
		return "", errors.NewOutputError("failed to encode JSON", err)
	}
	if f.minify {
		return string(compact) + "\n", nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", f.indent); err != nil {
		return "", errors.NewOutputError("failed to indent JSON", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// FormatText parses JSON text and renders it with Format
func (f *Formatter) FormatText(text string) (string, error) {
	v, err := parser.ParseString(text)
	if err != nil {
		return "", err
	}
	return f.Format(v)
}

// SortKeys returns a copy of v with object keys sorted at every depth
func SortKeys(v models.Value) models.Value {
	switch t := v.(type) {
	case *models.Object:
		keys := t.Keys()
		sort.Strings(keys)
		out := models.NewObject()
		for _, key := range keys {
			child, _ := t.Get(key)
			out.Set(key, SortKeys(child))
		}
		return out
	case models.Array:
		return models.Array(lo.Map(t, func(child models.Value, _ int) models.Value {
			return SortKeys(child)
		}))
	default:
		return v
	}
}

var kindOrder = []diff.Kind{diff.Added, diff.Removed, diff.Modified}

// FormatDifferences lists differences grouped by kind. Modified strings show
// an inline diff where deletions are wrapped in [-...-] and insertions in
// {+...+}.
func (f *Formatter) FormatDifferences(result diff.Result) string {
	if result.Empty() {
		return "No differences.\n"
	}

	groups := lo.GroupBy(result.Differences, func(d diff.Difference) diff.Kind {
		return d.Kind
	})

	var sb strings.Builder
	for _, kind := range kindOrder {
		entries := groups[kind]
		if len(entries) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s (%d):\n", title(kind), len(entries)))
		for _, d := range entries {
			switch d.Kind {
			case diff.Added:
				sb.WriteString(f.paint(colorGreen, fmt.Sprintf("  + %s: %s", displayPath(d), render(d.Value))))
			case diff.Removed:
				sb.WriteString(f.paint(colorRed, fmt.Sprintf("  - %s: %s", displayPath(d), render(d.Value))))
			case diff.Modified:
				sb.WriteString(f.paint(colorYellow, fmt.Sprintf("  ~ %s: %s", displayPath(d), describeChange(d.OldValue, d.NewValue))))
			}
			sb.WriteString("\n")
		}
	}

	counts := result.Counts()
	sb.WriteString(fmt.Sprintf("\n%d added, %d removed, %d modified, %d conflict(s)\n",
		counts.Added, counts.Removed, counts.Modified, counts.Conflicts))
	return sb.String()
}

// FormatUnified renders each difference as -/+ lines keyed by path
func (f *Formatter) FormatUnified(result diff.Result) string {
	var sb strings.Builder
	for _, d := range result.Differences {
		p := displayPath(d)
		switch d.Kind {
		case diff.Added:
			sb.WriteString(f.paint(colorGreen, fmt.Sprintf("+ %s: %s", p, render(d.Value))) + "\n")
		case diff.Removed:
			sb.WriteString(f.paint(colorRed, fmt.Sprintf("- %s: %s", p, render(d.Value))) + "\n")
		case diff.Modified:
			sb.WriteString(f.paint(colorRed, fmt.Sprintf("- %s: %s", p, render(d.OldValue))) + "\n")
			sb.WriteString(f.paint(colorGreen, fmt.Sprintf("+ %s: %s", p, render(d.NewValue))) + "\n")
		}
	}
	return sb.String()
}

// FormatJSON renders the result as a JSON object with differences and
// conflicts arrays
func (f *Formatter) FormatJSON(result diff.Result) (string, error) {
	if result.Differences == nil {
		result.Differences = []diff.Difference{}
	}
	if result.Conflicts == nil {
		result.Conflicts = []diff.Conflict{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !f.minify {
		enc.SetIndent("", f.indent)
	}
	if err := enc.Encode(result); err != nil {
		return "", errors.NewOutputError("failed to encode differences", err)
	}
	return buf.String(), nil
}

// FormatConflict describes one conflict for an interactive prompt
func (f *Formatter) FormatConflict(c diff.Conflict) string {
	p := c.Path.String()
	if p == "" {
		p = "(root)"
	}
	return fmt.Sprintf("conflict at %s\n  left:  %s\n  right: %s\n", p, render(c.OldValue), render(c.NewValue))
}

// TextDiff returns a line-based unified diff between two texts
func TextDiff(fromName, toName, from, to string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", errors.NewOutputError("failed to build text diff", err)
	}
	return out, nil
}

func (f *Formatter) paint(color, line string) string {
	if !f.color {
		return line
	}
	return color + line + colorReset
}

func title(kind diff.Kind) string {
	switch kind {
	case diff.Added:
		return "Added"
	case diff.Removed:
		return "Removed"
	default:
		return "Modified"
	}
}

func displayPath(d diff.Difference) string {
	if d.Path.IsRoot() {
		return "(root)"
	}
	return d.Path.String()
}

func render(v models.Value) string {
	data, err := models.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

func describeChange(oldValue, newValue models.Value) string {
	oldStr, oldIsString := oldValue.(models.String)
	newStr, newIsString := newValue.(models.String)
	if oldIsString && newIsString {
		return fmt.Sprintf("%q (%s)", string(newStr), inlineDiff(string(oldStr), string(newStr)))
	}
	return fmt.Sprintf("%s -> %s", render(oldValue), render(newValue))
}

func inlineDiff(from, to string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
