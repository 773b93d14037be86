// Command transfuse extracts translatable blocks from a structured
// document and reinjects translated blocks back into it, driving the
// staging directory layout spec.md §6 describes end to end.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	transfuse "github.com/apertium/transfuse-go"
	"github.com/apertium/transfuse-go/format/docx"
	"github.com/apertium/transfuse-go/format/html"
	"github.com/apertium/transfuse-go/state"
	"github.com/apertium/transfuse-go/stream"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: transfuse <extract|inject> [flags] [file]")
	}
	switch sub, rest := args[0], args[1:]; sub {
	case "extract":
		return runExtract(rest, stdout, stderr)
	case "inject":
		return runInject(rest, stdout, stderr)
	default:
		return fmt.Errorf("unknown subcommand %q (want extract or inject)", sub)
	}
}

// documentDriver is the format-driver contract cmd/transfuse needs:
// locate the body a Document works over, and render the (possibly
// mutated) tree back to its native container. format/html.Body/Render
// are adapted to this shape by htmlDoc; *docx.Package already satisfies
// it directly.
type documentDriver interface {
	Body() *transfuse.Node
	Render(w io.Writer) error
}

type htmlDoc struct{ root *transfuse.Node }

func (d htmlDoc) Body() *transfuse.Node    { return html.Body(d.root) }
func (d htmlDoc) Render(w io.Writer) error { return html.Render(w, d.root) }

func openDriver(format string, data []byte) (documentDriver, error) {
	switch strings.ToLower(format) {
	case "html", "htm":
		root, err := html.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing html: %w", err)
		}
		return htmlDoc{root: root}, nil
	case "docx":
		pkg, err := docx.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing docx: %w", err)
		}
		return pkg, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want html or docx)", format)
	}
}

func tagsFor(format string) *transfuse.TagClassification {
	if strings.EqualFold(format, "docx") {
		return transfuse.DOCX
	}
	return transfuse.HTML
}

func pickDialect(name string) (stream.Dialect, error) {
	switch strings.ToLower(name) {
	case "apertium", "":
		return stream.Apertium{}, nil
	case "visl":
		return stream.VISL{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q (want apertium or visl)", name)
	}
}

func stagingPath(flagValue, inputPath string) string {
	if flagValue != "" {
		return flagValue
	}
	return inputPath + ".transfuse"
}

// openStateStore picks a state.RedisStore when redisURL is set, otherwise
// a state.MemoryStore restored from (and, via the returned save func,
// persisted back to) the staging directory — the two "opaque to the
// core" backings spec.md §6 permits, per DESIGN.md's Domain stack wiring.
// load is true on the inject side, where a prior extract call's style
// table must already be populated before Reconstruction runs.
//
// A Redis-backed store crosses a real network boundary shared by
// however many documents a batch run processes concurrently, so it is
// wrapped in a RateLimitedStore (bound how hard the shared Redis gets
// hit) and a RetryingStore (absorb transient failures) before use;
// every retry attempt still passes back through the rate limiter.
func openStateStore(redisURL string, staging transfuse.Staging, load bool) (transfuse.StateStore, func() error, error) {
	if redisURL != "" {
		raw, err := state.NewRedisStore(state.RedisConfig{URL: redisURL})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		var st transfuse.StateStore = raw
		st = transfuse.NewRateLimitedStore(st, transfuse.RateLimitConfig{})
		st = transfuse.NewRetryingStore(st, transfuse.DefaultRetryConfig())
		return st, func() error { return nil }, nil
	}

	mem := state.NewMemoryStore()
	if load {
		if err := mem.Load(staging.State()); err != nil {
			return nil, nil, fmt.Errorf("loading state: %w", err)
		}
	}
	return mem, func() error { return mem.Save(staging.State()) }, nil
}

// extractStats is the --json report shape for the extract subcommand,
// mirroring cmd/gotlai/main.go's JSONOutput.
type extractStats struct {
	Staging       string     `json:"staging"`
	BlocksEmitted int        `json:"blocks_emitted"`
	StylesMinted  int        `json:"styles_minted"`
	Warnings      int        `json:"warnings"`
	Diff          *diffStats `json:"diff,omitempty"`
}

// diffStats is the --json report shape for --diff, mirroring
// cmd/gotlai/main.go's runDiff JSON output.
type diffStats struct {
	PreviousFile     string   `json:"previous_file"`
	Added            int      `json:"added"`
	Removed          int      `json:"removed"`
	Modified         int      `json:"modified"`
	Unchanged        int      `json:"unchanged"`
	NeedsTranslation []string `json:"needs_translation,omitempty"`
}

// diffAgainstPrevious re-extracts blocks from a previous revision of the
// same source document and diffs them against newBlocks, mirroring
// cmd/gotlai/main.go's runDiff: re-running extraction over both
// revisions, rather than diffing wire output, lets the comparison use
// ExtractedBlock's content hash directly. The diff uses a scratch state
// store so the comparison never mints styles into the real run's table.
func diffAgainstPrevious(diffFile, fmtName string, newBlocks []transfuse.ExtractedBlock) (*transfuse.BlockDiffResult, error) {
	oldData, err := os.ReadFile(diffFile) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading previous version: %w", err)
	}
	driver, err := openDriver(fmtName, oldData)
	if err != nil {
		return nil, fmt.Errorf("parsing previous version: %w", err)
	}
	body := driver.Body()
	if body == nil {
		return nil, fmt.Errorf("previous version has no recognizable body element")
	}

	scratch := state.NewMemoryStore()
	scratch.SetFormat(fmtName)
	doc := transfuse.NewDocument(tagsFor(fmtName), scratch, transfuse.WithStreamDialect(stream.Apertium{}))
	pd, err := doc.ExtractDocument(body)
	if err != nil {
		return nil, fmt.Errorf("extracting previous version: %w", err)
	}

	return transfuse.DiffBlocksWithOrdinal(pd.Blocks, newBlocks), nil
}

func runExtract(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("transfuse extract", flag.ContinueOnError)
	fs.SetOutput(stderr)

	format := fs.String("format", "", "document format: html or docx (default: inferred from the input file's extension)")
	stagingDir := fs.String("staging", "", "staging directory (default: <input>.transfuse)")
	dialectName := fs.String("dialect", "apertium", "stream dialect: apertium or visl")
	redisURL := fs.String("redis", "", "redis URL for a shared state store (default: local, persisted into the staging directory)")
	output := fs.String("output", "", "wire stream output file (default: stdout)")
	outputShort := fs.String("o", "", "output file (short for --output)")
	jsonOutput := fs.Bool("json", false, "also report extraction counts as JSON on stderr")
	quiet := fs.Bool("quiet", false, "suppress progress output")
	diffFile := fs.String("diff", "", "compare against a previous revision of the same source document and report added/removed/modified/unchanged blocks")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("input file required")
	}
	inputPath := fs.Arg(0)

	data, err := os.ReadFile(inputPath) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmtName := *format
	if fmtName == "" {
		fmtName = strings.TrimPrefix(filepath.Ext(inputPath), ".")
	}

	staging := transfuse.NewStaging(stagingPath(*stagingDir, inputPath))
	if err := os.MkdirAll(staging.Dir, 0o755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	if err := os.WriteFile(staging.Original(), data, 0o644); err != nil {
		return fmt.Errorf("writing staging original: %w", err)
	}

	driver, err := openDriver(fmtName, data)
	if err != nil {
		return err
	}
	body := driver.Body()
	if body == nil {
		return fmt.Errorf("document has no recognizable body element")
	}

	dialect, err := pickDialect(*dialectName)
	if err != nil {
		return err
	}

	st, saveState, err := openStateStore(*redisURL, staging, false)
	if err != nil {
		return err
	}
	st.SetFormat(fmtName)

	var diagBuf strings.Builder
	doc := transfuse.NewDocument(tagsFor(fmtName), st, transfuse.WithStreamDialect(dialect), transfuse.WithDiagnostics(&diagBuf))

	pd, err := doc.ExtractDocument(body)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	if err := os.WriteFile(staging.Content(), []byte(pd.ContentXML), 0o644); err != nil {
		return fmt.Errorf("writing content.xml: %w", err)
	}
	if err := saveState(); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	fmt.Fprintln(out, dialect.Header(staging.Dir))
	for _, b := range pd.Blocks {
		fmt.Fprint(out, dialect.BlockOpen(b.ID))
		fmt.Fprint(out, dialect.BlockBody(b.Body))
		fmt.Fprint(out, dialect.BlockClose(b.ID))
	}

	var diff *transfuse.BlockDiffResult
	if *diffFile != "" {
		diff, err = diffAgainstPrevious(*diffFile, fmtName, pd.Blocks)
		if err != nil {
			return err
		}
	}

	if !*quiet {
		fmt.Fprintf(stderr, "staging:  %s\n", staging.Dir)
		fmt.Fprintf(stderr, "blocks:   %d\n", pd.BlocksEmitted)
		fmt.Fprintf(stderr, "styles:   %d\n", pd.StylesMinted)
		fmt.Fprintf(stderr, "warnings: %d\n", pd.Warnings)
		if diagBuf.Len() > 0 {
			fmt.Fprint(stderr, diagBuf.String())
		}
		if diff != nil {
			printDiffReport(stderr, *diffFile, diff)
		}
	}
	if *jsonOutput {
		stats := extractStats{
			Staging:       staging.Dir,
			BlocksEmitted: pd.BlocksEmitted,
			StylesMinted:  pd.StylesMinted,
			Warnings:      pd.Warnings,
		}
		if diff != nil {
			ds := diff.Stats()
			needs := diff.NeedsTranslation()
			texts := make([]string, len(needs))
			for i, b := range needs {
				texts[i] = b.Body
			}
			stats.Diff = &diffStats{
				PreviousFile:     filepath.Base(*diffFile),
				Added:            ds.Added,
				Removed:          ds.Removed,
				Modified:         ds.Modified,
				Unchanged:        ds.Unchanged,
				NeedsTranslation: texts,
			}
		}
		enc := json.NewEncoder(stderr)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return err
		}
	}

	return nil
}

// printDiffReport writes a --diff text summary, mirroring
// cmd/gotlai/main.go's runDiff text-mode output.
func printDiffReport(stderr io.Writer, diffFile string, diff *transfuse.BlockDiffResult) {
	stats := diff.Stats()
	fmt.Fprintf(stderr, "diff vs %s:\n", filepath.Base(diffFile))
	fmt.Fprintf(stderr, "  unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(stderr, "  added:     %d\n", stats.Added)
	fmt.Fprintf(stderr, "  removed:   %d\n", stats.Removed)
	fmt.Fprintf(stderr, "  modified:  %d\n", stats.Modified)
	if !diff.HasChanges() {
		fmt.Fprintln(stderr, "  no changes detected")
		return
	}
	fmt.Fprintf(stderr, "  needs translation: %d blocks\n", len(diff.NeedsTranslation()))
}

func runInject(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("transfuse inject", flag.ContinueOnError)
	fs.SetOutput(stderr)

	format := fs.String("format", "", "document format: html or docx (default: recovered from the matching extract call's state)")
	stagingDir := fs.String("staging", "", "staging directory (default: recovered from the wire stream's header line)")
	redisURL := fs.String("redis", "", "redis URL the matching extract call used, if any")
	output := fs.String("output", "", "restored document output file (default: stdout)")
	outputShort := fs.String("o", "", "output file (short for --output)")
	quiet := fs.Bool("quiet", false, "suppress progress output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	var wireIn io.Reader = os.Stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0)) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return fmt.Errorf("opening wire stream: %w", err)
		}
		defer f.Close()
		wireIn = f
	}

	r := bufio.NewReader(wireIn)
	header, err := stream.ReadHeader(r)
	if err != nil {
		return fmt.Errorf("reading wire stream header: %w", err)
	}
	dialect, err := stream.Detect(header)
	if err != nil {
		return err
	}

	dir := *stagingDir
	if dir == "" {
		dir = dialect.GetTmpdir(header)
	}
	if dir == "" {
		return fmt.Errorf("could not recover the staging directory from the wire stream header; pass --staging explicitly")
	}
	staging := transfuse.NewStaging(dir)

	var blocks []transfuse.ExtractedBlock
	for {
		id, body, ok, err := dialect.GetBlock(r)
		if err != nil {
			return fmt.Errorf("reading wire stream: %w", err)
		}
		if !ok {
			break
		}
		blocks = append(blocks, transfuse.ExtractedBlock{ID: id, Body: body})
	}

	contentXML, err := os.ReadFile(staging.Content()) // #nosec G304 - path derived from the staging directory
	if err != nil {
		return fmt.Errorf("reading content.xml: %w", err)
	}
	original, err := os.ReadFile(staging.Original()) // #nosec G304 - path derived from the staging directory
	if err != nil {
		return fmt.Errorf("reading staged original: %w", err)
	}

	st, saveState, err := openStateStore(*redisURL, staging, true)
	if err != nil {
		return err
	}

	fmtName := *format
	if fmtName == "" {
		fmtName = st.Format()
	}
	if fmtName == "" {
		return fmt.Errorf("could not recover the document format; pass --format explicitly")
	}

	driver, err := openDriver(fmtName, original)
	if err != nil {
		return err
	}
	body := driver.Body()
	if body == nil {
		return fmt.Errorf("staged original has no recognizable body element")
	}

	var diagBuf strings.Builder
	doc := transfuse.NewDocument(tagsFor(fmtName), st, transfuse.WithDiagnostics(&diagBuf))

	roots, pd, err := doc.InjectDocument(string(contentXML), blocks)
	if err != nil {
		return fmt.Errorf("injecting: %w", err)
	}
	body.Children = nil
	for _, root := range roots {
		body.AppendChild(root)
	}

	if err := os.WriteFile(staging.Injected(), []byte(transfuse.SerializeXML(body)), 0o644); err != nil {
		return fmt.Errorf("writing injected.xml: %w", err)
	}
	if err := saveState(); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	formattedPath := staging.InjectedFormatted(fmtName)
	formatted, err := os.Create(formattedPath) // #nosec G304 - path derived from the staging directory
	if err != nil {
		return fmt.Errorf("creating %s: %w", formattedPath, err)
	}
	renderErr := driver.Render(formatted)
	closeErr := formatted.Close()
	if renderErr != nil {
		return fmt.Errorf("rendering restored document: %w", renderErr)
	}
	if closeErr != nil {
		return fmt.Errorf("writing %s: %w", formattedPath, closeErr)
	}

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	staged, err := os.Open(formattedPath) // #nosec G304 - path derived from the staging directory
	if err != nil {
		return fmt.Errorf("reopening %s: %w", formattedPath, err)
	}
	defer staged.Close()
	if _, err := io.Copy(out, staged); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !*quiet {
		fmt.Fprintf(stderr, "staging:  %s\n", staging.Dir)
		fmt.Fprintf(stderr, "blocks:   %d\n", pd.BlocksEmitted)
		fmt.Fprintf(stderr, "warnings: %d\n", pd.Warnings)
		if diagBuf.Len() > 0 {
			fmt.Fprint(stderr, diagBuf.String())
		}
	}

	return nil
}
