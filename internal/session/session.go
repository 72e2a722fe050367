// Package session drives the compare, resolve, preview and apply workflow
// over a pair of JSON documents.
//
// A Session is owned by a single caller and is not safe for concurrent use.
package session

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"github.com/mcncl/jsonmerge/internal/config"
	"github.com/mcncl/jsonmerge/internal/diff"
	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/merge"
	"github.com/mcncl/jsonmerge/internal/models"
	"github.com/mcncl/jsonmerge/internal/parser"
	"github.com/mcncl/jsonmerge/internal/path"
)

// State is a step of the workflow.
type State int

const (
	Empty State = iota
	Parsed
	Compared
	Previewing
	Applied
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Parsed:
		return "parsed"
	case Compared:
		return "compared"
	case Previewing:
		return "previewing"
	case Applied:
		return "applied"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Side names one of the two input documents.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// ParseError reports which input failed to parse.
type ParseError struct {
	Side Side
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s document: %v", e.Side, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Session holds the documents and everything derived from them.
type Session struct {
	id       string
	logger   *slog.Logger
	notifier Notifier
	merger   *merge.Merger
	prepare  func(models.Value) models.Value

	state       State
	left        models.Value
	right       models.Value
	strategy    merge.Strategy
	result      diff.Result
	resolutions merge.Resolutions
	preview     models.Value
	warnings    []error
	committed   models.Value
}

// NewSession creates a session with the default configuration.
func NewSession() *Session {
	s, _ := NewSessionWithConfig(config.NewConfig(), nil, nil)
	return s
}

// NewSessionWithConfig creates a session whose strategy, resolutions and
// document preparation come from cfg. A nil notifier discards notifications
// and a nil logger uses slog.Default.
func NewSessionWithConfig(cfg *config.Config, notifier Notifier, logger *slog.Logger) (*Session, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	resolutions, err := cfg.Resolutions()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger = logger.With("session_id", id)

	return &Session{
		id:       id,
		logger:   logger,
		notifier: notifier,
		merger: merge.NewMergerWithOptions(merge.Options{
			DedupeArrays: cfg.Merge.DedupeArrays,
			Logger:       logger,
		}),
		prepare:     preparer(cfg),
		strategy:    cfg.MergeStrategy(),
		resolutions: resolutions,
	}, nil
}

// preparer builds the transform applied to both documents on Load. Ignore
// patterns match the normalized keys.
func preparer(cfg *config.Config) func(models.Value) models.Value {
	normalize := cfg.KeyNormalizer()
	ignore := len(cfg.Compare.IgnoreKeys) > 0
	return func(v models.Value) models.Value {
		if normalize != nil {
			v = models.RenameKeys(v, normalize)
		}
		if ignore {
			v = models.DropKeys(v, cfg.ShouldIgnoreKey)
		}
		return v
	}
}

func (s *Session) ID() string                     { return s.id }
func (s *Session) State() State                   { return s.state }
func (s *Session) Strategy() merge.Strategy       { return s.strategy }
func (s *Session) Left() models.Value             { return s.left }
func (s *Session) Right() models.Value            { return s.right }
func (s *Session) Differences() []diff.Difference { return s.result.Differences }
func (s *Session) Conflicts() []diff.Conflict     { return s.result.Conflicts }
func (s *Session) Result() diff.Result            { return s.result }
func (s *Session) PreviewValue() models.Value     { return s.preview }
func (s *Session) Committed() models.Value        { return s.committed }

// Warnings returns the non-fatal problems reported by the last preview.
func (s *Session) Warnings() []error { return s.warnings }

// Resolutions returns a copy of the current resolutions.
func (s *Session) Resolutions() merge.Resolutions {
	out := make(merge.Resolutions, len(s.resolutions))
	for k, v := range s.resolutions {
		out[k] = v
	}
	return out
}

// Load parses both texts and replaces the documents. On failure nothing
// changes. Differences, conflicts and the preview are discarded; resolutions
// and the committed document are kept.
func (s *Session) Load(leftText, rightText string) error {
	left, err := parser.ParseString(leftText)
	if err != nil {
		return s.parseFailed(Left, err)
	}
	right, err := parser.ParseString(rightText)
	if err != nil {
		return s.parseFailed(Right, err)
	}
	s.LoadValues(left, right)
	return nil
}

// LoadValues is Load for documents that are already parsed.
func (s *Session) LoadValues(left, right models.Value) {
	s.left = s.prepare(left)
	s.right = s.prepare(right)
	s.result = diff.Result{}
	s.preview = nil
	s.warnings = nil
	s.transition(Parsed)
}

func (s *Session) parseFailed(side Side, err error) error {
	perr := &ParseError{Side: side, Err: err}
	s.logger.Debug("parse failed", "side", string(side), "error", err)
	s.notifier.Notify(LevelError, fmt.Sprintf("The %s document could not be parsed. %s", side, errors.UserFriendlyError(err)))
	return perr
}

// Compare recomputes differences and conflicts and discards any preview.
func (s *Session) Compare() (diff.Result, error) {
	if err := s.require("compare", Parsed, Compared, Previewing, Applied); err != nil {
		return diff.Result{}, err
	}

	s.result = diff.Diff(s.left, s.right)
	s.preview = nil
	s.warnings = nil
	s.transition(Compared)

	counts := s.result.Counts()
	s.logger.Debug("compared documents",
		"added", counts.Added,
		"removed", counts.Removed,
		"modified", counts.Modified,
		"conflicts", counts.Conflicts)

	switch {
	case s.result.Empty():
		s.notifier.Notify(LevelSuccess, "The documents are identical.")
	case s.result.Incomparable:
		s.notifier.Notify(LevelWarning, errors.UserFriendlyError(
			errors.NewComparisonError("top-level values differ in shape", errors.ErrIncomparableTopLevelTypes)))
	default:
		s.notifier.Notify(LevelSuccess, fmt.Sprintf("Found %d difference(s), %d conflict(s).",
			len(s.result.Differences), len(s.result.Conflicts)))
	}

	if stale := s.StaleResolutions(); len(stale) > 0 {
		s.logger.Debug("resolutions no longer match a conflict", "paths", stale)
	}

	return s.result, nil
}

// SetStrategy changes the strategy used by the next Preview.
func (s *Session) SetStrategy(strategy merge.Strategy) error {
	if err := s.require("set strategy", Parsed, Compared, Previewing, Applied); err != nil {
		return err
	}
	s.strategy = strategy
	s.logger.Debug("strategy changed", "strategy", strategy.String())
	return nil
}

// Resolve records the decision for the conflict at p, where p is a path as
// rendered by the diff. Rendered paths are not always parseable (a key may
// be empty or hold '.' or '['), so p is stored as given. It does not refresh
// the preview.
func (s *Session) Resolve(p string, r merge.Resolution) error {
	if err := s.require("resolve", Compared, Previewing, Applied); err != nil {
		return err
	}
	if s.resolutions == nil {
		s.resolutions = make(merge.Resolutions)
	}
	s.resolutions[p] = r
	s.logger.Debug("resolution recorded", "path", p, "resolution", r.String())
	return nil
}

// Unresolve removes the decision for p, if any.
func (s *Session) Unresolve(p string) error {
	if err := s.require("unresolve", Compared, Previewing, Applied); err != nil {
		return err
	}
	delete(s.resolutions, p)
	return nil
}

// StaleResolutions lists resolution paths that match no current conflict,
// sorted. They are kept so that work survives edits to the documents, and
// the merge engine ignores them.
func (s *Session) StaleResolutions() []string {
	var stale []string
	for p := range s.resolutions {
		if _, ok := s.result.ConflictAt(p); !ok && !s.isArrayPath(p) {
			stale = append(stale, p)
		}
	}
	sort.Strings(stale)
	return stale
}

// isArrayPath reports whether p names an array present in both documents,
// where a resolution replaces concatenation.
func (s *Session) isArrayPath(p string) bool {
	parsed, err := path.Parse(p)
	if err != nil {
		return false
	}
	l, okL := path.Get(s.left, parsed)
	r, okR := path.Get(s.right, parsed)
	return okL && okR && models.IsArray(l) && models.IsArray(r)
}

// Preview merges the documents with the current strategy and resolutions
// and stores the result as the preview. On error the state is unchanged.
func (s *Session) Preview() (models.Value, error) {
	if err := s.require("preview", Compared, Previewing, Applied); err != nil {
		return nil, err
	}

	result, err := s.merger.Merge(s.left, s.right, s.strategy, s.resolutions)
	if err != nil {
		s.notifier.Notify(LevelError, errors.UserFriendlyError(err))
		return nil, err
	}

	s.preview = result.Value
	s.warnings = result.Warnings
	s.transition(Previewing)

	for _, w := range result.Warnings {
		s.notifier.Notify(LevelWarning, errors.UserFriendlyError(w))
	}
	return s.preview, nil
}

// Apply commits the preview. It is the only operation that changes the
// committed document.
func (s *Session) Apply() (models.Value, error) {
	if err := s.require("apply", Previewing); err != nil {
		return nil, err
	}
	s.committed = models.Clone(s.preview)
	s.transition(Applied)
	s.notifier.Notify(LevelSuccess, "Merge applied.")
	return s.committed, nil
}

// Reset discards everything and returns the session to Empty.
func (s *Session) Reset() {
	s.left, s.right = nil, nil
	s.result = diff.Result{}
	s.resolutions = make(merge.Resolutions)
	s.preview, s.committed = nil, nil
	s.warnings = nil
	s.transition(Empty)
}

// Dump renders the session state for debugging.
func (s *Session) Dump() string {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	return cfg.Sdump(map[string]any{
		"id":          s.id,
		"state":       s.state.String(),
		"strategy":    s.strategy.String(),
		"differences": len(s.result.Differences),
		"conflicts":   s.result.ConflictPaths(),
		"resolutions": s.resolutions,
		"stale":       s.StaleResolutions(),
		"previewing":  s.preview != nil,
		"committed":   s.committed != nil,
	})
}

func (s *Session) require(op string, allowed ...State) error {
	for _, state := range allowed {
		if s.state == state {
			return nil
		}
	}
	return errors.NewSessionError(
		fmt.Sprintf("cannot %s while the session is %s", op, s.state),
		errors.ErrInvalidTransition,
	)
}

func (s *Session) transition(to State) {
	if s.state != to {
		s.logger.Debug("session state changed", "from", s.state.String(), "to", to.String())
	}
	s.state = to
}

// IsParseError reports whether err came from parsing one of the inputs and,
// if so, which one.
func IsParseError(err error) (Side, bool) {
	var perr *ParseError
	if stderrors.As(err, &perr) {
		return perr.Side, true
	}
	return "", false
}
