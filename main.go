package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsonmerge/internal/config"
	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/formatter"
	"github.com/mcncl/jsonmerge/internal/merge"
	"github.com/mcncl/jsonmerge/internal/models"
	"github.com/mcncl/jsonmerge/internal/parser"
	"github.com/mcncl/jsonmerge/internal/scope"
	"github.com/mcncl/jsonmerge/internal/session"
)

// CLI defines the command-line interface
var CLI struct {
	Config   string           `help:"Path to a .jsonmerge.yml config file. Searched for in parent directories when omitted." short:"c" type:"path"`
	Debug    bool             `help:"Enable debug logging and print the session state." short:"d"`
	LogLevel string           `help:"Log level: debug, info, warn or error." name:"log-level"`
	Version  kong.VersionFlag `help:"Show version information." short:"v"`

	Diff  DiffCmd  `cmd:"" help:"Show the differences between two JSON documents."`
	Merge MergeCmd `cmd:"" help:"Merge the right JSON document into the left one."`
	Fmt   FmtCmd   `cmd:"" help:"Beautify or minify a JSON document."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

// errDocumentsDiffer makes `diff --exit-code` exit with status 1 without
// printing an error.
var errDocumentsDiffer = stderrors.New("documents differ")

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("jsonmerge"),
		kong.Description("Compare and merge JSON documents"),
		kong.UsageOnError(),
		kong.Vars{"version": "jsonmerge version " + Version},
	)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// The usage has already been shown by kong.UsageOnError()
		parser.FatalIfErrorf(err)
	}

	ctx, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if err := kctx.Run(ctx); err != nil {
		if stderrors.Is(err, errDocumentsDiffer) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "%s\n", userMessage(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonmerge --help\n")
		os.Exit(1)
	}
}

// newContext loads the config file and builds the logger
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.Overrides{LogLevel: CLI.LogLevel, Debug: flagOverride(CLI.Debug)}
	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	ctx.Logger = newLogger(ctx.Stderr, cfg.Dev)
	if configPath != "" {
		ctx.Logger.Debug("loaded config", "path", configPath)
	}
	return ctx, nil
}

func newLogger(w io.Writer, dev config.DevConfig) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(dev.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if dev.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newNotifier prints session warnings to w. Errors are returned to the
// caller and printed once by main, successes only in debug mode.
func newNotifier(w io.Writer, verbose bool) session.Notifier {
	out := &session.WriterNotifier{W: w, Quiet: !verbose}
	return session.NotifierFunc(func(level session.Level, message string) {
		if level == session.LevelError {
			return
		}
		out.Notify(level, message)
	})
}

// userMessage names the failing document for parse errors
func userMessage(err error) string {
	if side, ok := session.IsParseError(err); ok {
		return fmt.Sprintf("Error in the %s document. %s", side, errors.UserFriendlyError(err))
	}
	return errors.UserFriendlyError(err)
}

func flagOverride(set bool) *bool {
	if !set {
		return nil
	}
	return &set
}

// DiffCmd compares two documents
type DiffCmd struct {
	Left          string `arg:"" help:"Left JSON file, or - for stdin."`
	Right         string `arg:"" help:"Right JSON file, or - for stdin."`
	Format        string `help:"Output format: text, unified or json." short:"f"`
	Scope         string `help:"Only compare the sub-document at this path, e.g. data.items[0]." short:"s"`
	NormalizeKeys string `help:"Normalize object keys before comparing: none, snake, camel, lower_camel or kebab." name:"normalize-keys"`
	ExitCode      bool   `help:"Exit with status 1 when the documents differ." name:"exit-code"`
}

// Run executes the diff command
func (c *DiffCmd) Run(ctx *Context) error {
	if err := ctx.Config.ApplyOverrides(config.Overrides{
		Format:        c.Format,
		Scope:         c.Scope,
		NormalizeKeys: c.NormalizeKeys,
	}); err != nil {
		return err
	}

	s, docs, err := openSession(ctx, c.Left, c.Right)
	if err != nil {
		return err
	}
	if err := s.Load(string(docs.left), string(docs.right)); err != nil {
		return err
	}
	result, err := s.Compare()
	if err != nil {
		return err
	}

	f := formatter.NewFormatterWithConfig(ctx.Config)
	var out string
	switch ctx.Config.Output.Format {
	case config.FormatUnified:
		out = f.FormatUnified(result)
	case config.FormatJSON:
		if out, err = f.FormatJSON(result); err != nil {
			return err
		}
	default:
		out = f.FormatDifferences(result)
	}
	if err := writeOutput(ctx, "", out); err != nil {
		return err
	}

	if ctx.Debug {
		fmt.Fprint(ctx.Stderr, s.Dump())
	}
	if c.ExitCode && !result.Empty() {
		return errDocumentsDiffer
	}
	return nil
}

// MergeCmd merges two documents
type MergeCmd struct {
	Left          string            `arg:"" help:"Left JSON file, or - for stdin."`
	Right         string            `arg:"" help:"Right JSON file, or - for stdin."`
	Strategy      string            `help:"Merge strategy: deep, shallow or replace." short:"S"`
	Resolve       map[string]string `help:"Resolve a conflict: PATH=left, PATH=right or PATH=custom:JSON. Repeatable." short:"r" mapsep:"none"`
	Interactive   bool              `help:"Ask how to resolve each conflict." short:"i"`
	Preview       bool              `help:"Print a diff between the left document and the merge result instead of the result." short:"p"`
	DedupeArrays  bool              `help:"Drop duplicate elements after concatenating arrays." name:"dedupe-arrays"`
	Scope         string            `help:"Only merge the sub-document at this path and splice it back into the left document." short:"s"`
	NormalizeKeys string            `help:"Normalize object keys before merging: none, snake, camel, lower_camel or kebab." name:"normalize-keys"`
	Output        string            `help:"Write the result to this file instead of stdout." short:"o" type:"path"`
	Indent        string            `help:"Indentation for the result."`
	Minify        bool              `help:"Write the result without whitespace." short:"m"`
	SortKeys      bool              `help:"Sort object keys in the result." name:"sort-keys"`
}

// Run executes the merge command
func (c *MergeCmd) Run(ctx *Context) error {
	if err := ctx.Config.ApplyOverrides(config.Overrides{
		Strategy:      c.Strategy,
		DedupeArrays:  flagOverride(c.DedupeArrays),
		Resolutions:   c.Resolve,
		NormalizeKeys: c.NormalizeKeys,
		Scope:         c.Scope,
		Indent:        c.Indent,
		Minify:        flagOverride(c.Minify),
		SortKeys:      flagOverride(c.SortKeys),
	}); err != nil {
		return err
	}
	if c.Interactive && (c.Left == "-" || c.Right == "-") {
		return errors.NewInputError("interactive mode reads answers from stdin, so neither document can be '-'", errors.ErrInvalidFilePath)
	}

	s, docs, err := openSession(ctx, c.Left, c.Right)
	if err != nil {
		return err
	}
	if err := s.Load(string(docs.left), string(docs.right)); err != nil {
		return err
	}
	if _, err := s.Compare(); err != nil {
		return err
	}

	f := formatter.NewFormatterWithConfig(ctx.Config)
	if c.Interactive {
		if err := resolveInteractively(ctx, s, f); err != nil {
			return err
		}
	}

	preview, err := s.Preview()
	if err != nil {
		return err
	}

	if c.Preview {
		leftText, err := f.Format(s.Left())
		if err != nil {
			return err
		}
		previewText, err := f.Format(preview)
		if err != nil {
			return err
		}
		textDiff, err := formatter.TextDiff("left", "merged", leftText, previewText)
		if err != nil {
			return err
		}
		return writeOutput(ctx, "", textDiff)
	}

	committed, err := s.Apply()
	if err != nil {
		return err
	}
	if ctx.Debug {
		fmt.Fprint(ctx.Stderr, s.Dump())
	}

	var out string
	if ctx.Config.Compare.Scope == "" {
		out, err = f.Format(committed)
	} else {
		out, err = spliceScope(f, ctx.Config.Compare.Scope, committed, docs.fullLeft)
	}
	if err != nil {
		return err
	}
	return writeOutput(ctx, c.Output, out)
}

// FmtCmd reformats a single document
type FmtCmd struct {
	File     string `arg:"" help:"JSON file to format, or - for stdin." default:"-"`
	Indent   string `help:"Indentation string."`
	Minify   bool   `help:"Remove all whitespace." short:"m"`
	SortKeys bool   `help:"Sort object keys." name:"sort-keys"`
	Output   string `help:"Write the result to this file instead of stdout." short:"o" type:"path"`
}

// Run executes the fmt command
func (c *FmtCmd) Run(ctx *Context) error {
	if err := ctx.Config.ApplyOverrides(config.Overrides{
		Indent:   c.Indent,
		Minify:   flagOverride(c.Minify),
		SortKeys: flagOverride(c.SortKeys),
	}); err != nil {
		return err
	}

	raw, err := readDocument(ctx, c.File)
	if err != nil {
		return err
	}
	out, err := formatter.NewFormatterWithConfig(ctx.Config).FormatText(string(raw))
	if err != nil {
		return err
	}
	return writeOutput(ctx, c.Output, out)
}

// documents holds the raw input texts. left and right are narrowed to the
// configured scope, fullLeft is the whole left document.
type documents struct {
	fullLeft []byte
	left     []byte
	right    []byte
}

// openSession reads both documents, narrows them to the configured scope
// and creates a session for them
func openSession(ctx *Context, leftName, rightName string) (*session.Session, documents, error) {
	var docs documents
	if leftName == "-" && rightName == "-" {
		return nil, docs, errors.NewInputError("only one document can be read from stdin", errors.ErrInvalidFilePath)
	}

	leftRaw, err := readDocument(ctx, leftName)
	if err != nil {
		return nil, docs, &session.ParseError{Side: session.Left, Err: err}
	}
	rightRaw, err := readDocument(ctx, rightName)
	if err != nil {
		return nil, docs, &session.ParseError{Side: session.Right, Err: err}
	}

	docs = documents{fullLeft: leftRaw, left: leftRaw, right: rightRaw}
	if sc := ctx.Config.Compare.Scope; sc != "" {
		if docs.left, err = scope.Extract(leftRaw, sc); err != nil {
			return nil, docs, err
		}
		if docs.right, err = scope.Extract(rightRaw, sc); err != nil {
			return nil, docs, err
		}
	}

	s, err := session.NewSessionWithConfig(ctx.Config, newNotifier(ctx.Stderr, ctx.Debug), ctx.Logger)
	if err != nil {
		return nil, docs, err
	}
	return s, docs, nil
}

// readDocument reads a file, or stdin for "-"
func readDocument(ctx *Context, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	if name != "-" {
		return parser.ReadFile(name)
	}

	data, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return data, nil
}

// spliceScope writes the merged sub-document back into the full left
// document and formats the whole
func spliceScope(f *formatter.Formatter, sc string, committed models.Value, leftRaw []byte) (string, error) {
	sub, err := models.Marshal(committed)
	if err != nil {
		return "", errors.NewOutputError("failed to encode JSON", err)
	}
	full, err := scope.Splice(leftRaw, sub, sc)
	if err != nil {
		return "", err
	}
	return f.FormatText(string(full))
}

// writeOutput writes text to a file, or to stdout when path is empty
func writeOutput(ctx *Context, path, text string) error {
	if path != "" {
		err := os.WriteFile(path, []byte(text), 0o644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(ctx.Stderr, "Result written to %s\n", path)
		return nil
	}

	if _, err := io.WriteString(ctx.Stdout, text); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// resolveInteractively asks for a decision on each conflict, reading answers
// line by line from stdin
func resolveInteractively(ctx *Context, s *session.Session, f *formatter.Formatter) error {
	conflicts := s.Conflicts()
	if len(conflicts) == 0 {
		return nil
	}

	fmt.Fprintf(ctx.Stderr, "%d conflict(s) to resolve.\n", len(conflicts))
	reader := bufio.NewReader(ctx.Stdin)

	for _, c := range conflicts {
		fmt.Fprint(ctx.Stderr, "\n"+f.FormatConflict(c))
		for {
			fmt.Fprint(ctx.Stderr, "use [l]eft, [r]ight, [c]ustom <json> or [s]kip: ")
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				if stderrors.Is(err, io.EOF) {
					// Remaining conflicts keep the strategy default
					fmt.Fprintln(ctx.Stderr)
					return nil
				}
				return errors.NewInputError("error reading input", err)
			}

			resolution, skip, perr := parseAnswer(line)
			if perr != nil {
				fmt.Fprintf(ctx.Stderr, "%s\n", perr)
				continue
			}
			if !skip {
				if err := s.Resolve(c.Path.String(), resolution); err != nil {
					return err
				}
			}
			break
		}
	}
	return nil
}

// parseAnswer reads one interactive answer. An empty answer skips.
func parseAnswer(line string) (merge.Resolution, bool, error) {
	answer := strings.TrimSpace(line)
	command, rest, _ := strings.Cut(answer, " ")
	switch strings.ToLower(command) {
	case "", "s", "skip":
		return merge.Resolution{}, true, nil
	case "l", "left":
		return merge.Left(), false, nil
	case "r", "right":
		return merge.Right(), false, nil
	case "c", "custom":
		if strings.TrimSpace(rest) == "" {
			return merge.Resolution{}, false, fmt.Errorf("custom needs a value, e.g. c {\"a\":1}")
		}
		return merge.CustomValue(strings.TrimSpace(rest)), false, nil
	default:
		return merge.Resolution{}, false, fmt.Errorf("unknown answer %q", answer)
	}
}
