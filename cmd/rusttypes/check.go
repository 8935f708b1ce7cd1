package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rusttypes/internal/cabi"
	"rusttypes/internal/diag"
	"rusttypes/internal/fixture"
	"rusttypes/internal/layout"
	"rusttypes/internal/trace"
	"rusttypes/internal/ui"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <fixture|directory>...",
		Short: "Validate fixtures: build, layout and optionally C emission",
		Long: `Build every fixture and check each type's layout: value recursion, fields and
discriminants past the end of their aggregate, pointer sizes and dangling references`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args)
		},
	}
	cmd.Flags().Bool("emit", false, "also emit a C declaration for every type")
	cmd.Flags().String("ui", "auto", "live progress view (auto|on|off)")
	return cmd
}

type checkResult struct {
	path  string
	types int
	bad   bool
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	emit, err := cmd.Flags().GetBool("emit")
	if err != nil {
		return fmt.Errorf("failed to get emit flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	paths, err := fixture.Discover(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var run checkRun
	if !a.Quiet && len(paths) > 0 && shouldUseTUI(mode, out) {
		run, err = runWithProgress(cmd.Context(), out, "check", paths, func(ctx context.Context, sink ui.Sink) checkRun {
			return a.checkAll(ctx, paths, emit, sink)
		})
		if err != nil {
			return err
		}
	} else {
		run = a.checkAll(cmd.Context(), paths, emit, nil)
	}
	if run.err != nil {
		return run.err
	}

	if !a.Quiet {
		for _, c := range run.results {
			status := "ok"
			if c.bad {
				status = "FAIL"
			}
			writeString(out, fmt.Sprintf("%-4s %s (%d types)\n", status, c.path, c.types))
		}
	}
	return a.finish(cmd)
}

type checkRun struct {
	results []checkResult
	err     error
}

func (a *app) checkAll(ctx context.Context, paths []string, emit bool, sink ui.Sink) checkRun {
	loadedFixtures, err := a.loadAll(ctx, paths, sink)
	if err != nil {
		return checkRun{err: err}
	}

	phase := a.timer.Begin("check")
	sp, ctx := trace.BeginCtx(ctx, trace.ScopePhase, "check")
	checked := make([]checkResult, len(loadedFixtures))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(a.Jobs, len(loadedFixtures))))
	for i, res := range loadedFixtures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			checked[i] = a.checkFixture(gctx, res, emit, sink)
			status := ui.StatusDone
			if checked[i].bad {
				status = ui.StatusError
			}
			ui.Emit(sink, ui.Event{File: res.path, Stage: ui.StageLayout, Status: status})
			return nil
		})
	}
	err = g.Wait()
	sp.End("")
	a.timer.End(phase, fmt.Sprintf("%d file(s)", len(loadedFixtures)))
	return checkRun{results: checked, err: err}
}

func (a *app) checkFixture(ctx context.Context, res loaded, emit bool, sink ui.Sink) checkResult {
	out := checkResult{path: res.path, bad: res.err != nil}
	if res.fix == nil {
		return out
	}
	sp, _ := trace.BeginCtx(ctx, trace.ScopeFile, "check:"+res.path)
	defer sp.End("")

	reg := res.fix.Registry
	out.types = reg.Len()
	ui.Emit(sink, ui.Event{File: res.path, Stage: ui.StageLayout, Status: ui.StatusWorking})
	engine := layout.New(layout.TargetForPointerSize(reg.PointerByteSize()), reg)
	for _, lerr := range engine.Validate() {
		out.bad = true
		a.reportLayout(res.fix, lerr)
	}

	if emit {
		ui.Emit(sink, ui.Event{File: res.path, Stage: ui.StageEmit, Status: ui.StatusWorking})
		session := cabi.NewSession(reg, cabi.Options{TagPrefix: a.TagPrefix})
		for _, id := range reg.All() {
			if _, err := session.Declare(id, "v"); err != nil {
				out.bad = true
				name := lerrName(reg.Name(id))
				if key, ok := res.fix.KeyOf(id); ok {
					name = key
				}
				reportEmitError(a, subjectOf(res.fix, name), err)
			}
		}
	}
	return out
}

func (a *app) reportLayout(f *fixture.Fixture, lerr *layout.LayoutError) {
	code := diag.TypeBuild
	switch lerr.Kind {
	case layout.LayoutErrRecursiveUnsized:
		code = diag.TypeRecursiveContainment
	case layout.LayoutErrFieldOverflow:
		code = diag.TypeFieldOverflow
	case layout.LayoutErrDiscriminantOverflow:
		code = diag.TypeDiscriminantOverflow
	case layout.LayoutErrIncomplete:
		code = diag.TypeIncomplete
	case layout.LayoutErrPointerSize:
		code = diag.TypePointerSize
	case layout.LayoutErrSizeOverflow:
		code = diag.TypeSizeOverflow
	}
	subject := lerrName(lerr.Name)
	if key, ok := f.KeyOf(lerr.Type); ok {
		subject = key
	}
	diag.ReportAbout(a.reporter(), diag.SevError, code, subjectOf(f, subject), lerr.Error()).Emit()
}

func subjectOf(f *fixture.Fixture, name string) string {
	return f.Path + ": " + name
}

func lerrName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}
