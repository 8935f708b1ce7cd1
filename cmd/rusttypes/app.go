package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rusttypes/internal/cache"
	"rusttypes/internal/diag"
	"rusttypes/internal/diagfmt"
	"rusttypes/internal/fixture"
	"rusttypes/internal/observ"
	"rusttypes/internal/prof"
	"rusttypes/internal/source"
	"rusttypes/internal/trace"
	"rusttypes/internal/types"
	"rusttypes/internal/ui"
)

// settings are the effective options after merging rusttypes.toml with the
// command line; flags win.
type settings struct {
	ConfigPath     string
	PointerSize    uint64
	TagPrefix      string
	Color          bool
	Quiet          bool
	Timings        bool
	Jobs           int
	MaxDiagnostics int
	CacheEnabled   bool
	CacheDir       string
	DiagFormat     diagfmt.Format
}

// app is the state shared by one command invocation.
type app struct {
	settings
	files   *source.FileSet
	bag     *diag.Bag
	timer   *observ.Timer
	cleanup func()
	profile *prof.Session
}

func (a *app) setup(cmd *cobra.Command) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	a.settings = s
	color.NoColor = !s.Color
	a.files = source.NewFileSet()
	a.bag = diag.NewBag(s.MaxDiagnostics)
	a.timer = observ.NewTimer()

	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	if a.cleanup, err = setupTracing(cmd); err != nil {
		return err
	}
	pcfg, err := profileConfig(cmd)
	if err != nil {
		return err
	}
	if pcfg.Enabled() {
		if a.profile, err = prof.Start(pcfg); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) teardown() {
	if a.profile != nil {
		if err := a.profile.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		}
		a.profile = nil
	}
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

func profileConfig(cmd *cobra.Command) (prof.Config, error) {
	pf := cmd.Root().PersistentFlags()
	var cfg prof.Config
	var err error
	if cfg.CPUPath, err = pf.GetString("cpu-profile"); err != nil {
		return cfg, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.MemPath, err = pf.GetString("mem-profile"); err != nil {
		return cfg, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.TracePath, err = pf.GetString("exec-trace"); err != nil {
		return cfg, fmt.Errorf("failed to get exec-trace flag: %w", err)
	}
	return cfg, nil
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	pf := cmd.Root().PersistentFlags()
	var s settings

	configPath, err := pf.GetString("config")
	if err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath == "" {
		found, ok, err := findConfig("")
		if err != nil {
			return s, err
		}
		if ok {
			configPath = found
		}
	}
	var cfg projectConfig
	if configPath != "" {
		if cfg, err = loadConfig(configPath); err != nil {
			return s, err
		}
		s.ConfigPath = configPath
	}

	s.PointerSize = cfg.Target.PointerSize
	s.TagPrefix = cfg.CABI.TagPrefix
	s.Jobs = cfg.Run.Jobs
	s.CacheEnabled = cfg.Cache.Enabled
	s.CacheDir = cfg.Cache.Dir
	colorStr := cfg.Output.Color

	if pf.Changed("pointer-size") {
		if s.PointerSize, err = pf.GetUint64("pointer-size"); err != nil {
			return s, fmt.Errorf("failed to get pointer-size flag: %w", err)
		}
	}
	if pf.Changed("jobs") || s.Jobs == 0 {
		if s.Jobs, err = pf.GetInt("jobs"); err != nil {
			return s, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if pf.Changed("cache") {
		if s.CacheEnabled, err = pf.GetBool("cache"); err != nil {
			return s, fmt.Errorf("failed to get cache flag: %w", err)
		}
	}
	if pf.Changed("color") || colorStr == "" {
		if colorStr, err = pf.GetString("color"); err != nil {
			return s, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if s.Quiet, err = pf.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.Timings, err = pf.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.MaxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	diagFormat, err := pf.GetString("diag-format")
	if err != nil {
		return s, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	if s.DiagFormat, err = diagfmt.ParseFormat(diagFormat); err != nil {
		return s, err
	}

	mode, err := parseColorMode(colorStr)
	if err != nil {
		return s, err
	}
	switch mode {
	case colorOn:
		s.Color = true
	case colorOff:
		s.Color = false
	default:
		f, ok := cmd.OutOrStdout().(*os.File)
		s.Color = ok && isTerminal(f) && os.Getenv("NO_COLOR") == ""
	}

	switch s.PointerSize {
	case 0, 2, 4, 8:
	default:
		return s, fmt.Errorf("--pointer-size must be 2, 4 or 8, got %d", s.PointerSize)
	}
	if s.Jobs <= 0 {
		s.Jobs = runtime.GOMAXPROCS(0)
	}
	return s, nil
}

func (a *app) reporter() diag.Reporter {
	return diag.NewBagReporter(a.bag)
}

func (a *app) snapshotCache() (fixture.Cache, error) {
	if !a.CacheEnabled {
		return nil, nil
	}
	disk, err := cache.OpenDisk(a.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cache.Tiered{Front: cache.NewMemory(8), Back: disk}, nil
}

// loaded is one fixture argument after loading. fix may be a partial fixture
// when err wraps fixture.ErrInvalidFixture.
type loaded struct {
	path string
	fix  *fixture.Fixture
	err  error
}

// loadAll expands directories and builds every fixture concurrently. Results
// keep the order of the expanded paths. sink, when non-nil, receives a load
// event per fixture.
func (a *app) loadAll(ctx context.Context, args []string, sink ui.Sink) ([]loaded, error) {
	phase := a.timer.Begin("load")
	sp, ctx := trace.BeginCtx(ctx, trace.ScopePhase, "load")
	defer sp.End("")

	paths, err := fixture.Discover(args)
	if err != nil {
		a.timer.End(phase, "")
		return nil, err
	}
	cacheImpl, err := a.snapshotCache()
	if err != nil {
		diag.ReportAbout(a.reporter(), diag.SevWarning, diag.IOCacheError, a.CacheDir, err.Error()).Emit()
	}

	loader := fixture.NewLoader(a.files, a.reporter())
	loader.PointerSize = a.PointerSize
	loader.Cache = cacheImpl

	results := make([]loaded, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(a.Jobs, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ui.Emit(sink, ui.Event{File: path, Stage: ui.StageLoad, Status: ui.StatusWorking})
			f, err := loader.LoadFile(gctx, path)
			if err != nil {
				ui.Emit(sink, ui.Event{File: path, Stage: ui.StageLoad, Status: ui.StatusError, Err: err})
			}
			results[i] = loaded{path: path, fix: f, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.timer.End(phase, "")
		return nil, err
	}
	a.timer.End(phase, fmt.Sprintf("%d file(s)", len(paths)))
	return results, nil
}

// loadOne loads a single fixture and insists it built cleanly.
func (a *app) loadOne(ctx context.Context, path string) (*fixture.Fixture, bool) {
	results, err := a.loadAll(ctx, []string{path}, nil)
	if err != nil {
		diag.ReportAbout(a.reporter(), diag.SevError, diag.IOLoadFileError, path, err.Error()).Emit()
		return nil, false
	}
	if len(results) != 1 {
		diag.ReportAbout(a.reporter(), diag.SevError, diag.FixUnsupportedFile, path, "expected exactly one fixture file").Emit()
		return nil, false
	}
	r := results[0]
	return r.fix, r.err == nil && r.fix != nil
}

// lookup resolves a type key, reporting unknown keys.
func (a *app) lookup(f *fixture.Fixture, key string) (types.TypeID, bool) {
	id, ok := f.Type(key)
	if !ok {
		diag.ReportAbout(a.reporter(), diag.SevError, diag.FixUnknownType, key,
			fmt.Sprintf("no type with key %q in %s", key, f.Path)).Emit()
	}
	return id, ok
}

// finish prints diagnostics and timings and decides the exit status.
func (a *app) finish(cmd *cobra.Command) error {
	a.bag.Sort()
	a.bag.Dedup()
	shown := a.bag
	if a.Quiet {
		shown = diag.NewBag(0)
		for _, d := range a.bag.Items() {
			if d.Severity >= diag.SevError {
				shown.Add(d)
			}
		}
	}
	if err := a.printDiagnostics(cmd.ErrOrStderr(), shown); err != nil {
		return err
	}
	if a.Timings && !a.Quiet && !a.structured() {
		writeString(cmd.ErrOrStderr(), a.timer.Summary())
	}
	if a.bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func (a *app) structured() bool {
	return a.DiagFormat == diagfmt.FormatJSON || a.DiagFormat == diagfmt.FormatYAML
}

// printDiagnostics renders bag. The structured formats always print a
// document, carrying the timings when --timings is set.
func (a *app) printDiagnostics(w io.Writer, bag *diag.Bag) error {
	if bag.Len() == 0 && !a.structured() {
		return nil
	}
	opts := diagfmt.StructuredOpts{IncludePositions: true, IncludeNotes: true}
	if a.Timings && !a.Quiet {
		report := a.timer.Report()
		opts.Timings = &report
	}
	switch a.DiagFormat {
	case diagfmt.FormatPretty:
		return diagfmt.Pretty(w, bag, a.files, diagfmt.PrettyOpts{Color: a.Color, ShowNotes: true})
	case diagfmt.FormatJSON:
		return diagfmt.JSON(w, bag, a.files, opts)
	case diagfmt.FormatYAML:
		return diagfmt.YAML(w, bag, a.files, opts)
	default:
		writeString(w, colorize(diag.FormatShort(bag.Items(), a.files, true))+"\n")
		return nil
	}
}

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	noteLabel    = color.New(color.FgCyan)
)

func colorize(text string) string {
	if color.NoColor {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		label, rest, _ := strings.Cut(line, " ")
		switch label {
		case "error":
			lines[i] = errorLabel.Sprint(label) + " " + rest
		case "warning":
			lines[i] = warningLabel.Sprint(label) + " " + rest
		case "note", "info":
			lines[i] = noteLabel.Sprint(label) + " " + rest
		}
	}
	return strings.Join(lines, "\n")
}

func writeString(w io.Writer, s string) {
	if _, err := io.WriteString(w, s); err != nil {
		panic(err)
	}
}
