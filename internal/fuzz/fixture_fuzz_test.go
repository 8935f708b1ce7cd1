package fuzztests

import (
	"context"
	"testing"
	"time"

	"rusttypes/internal/cabi"
	"rusttypes/internal/diag"
	"rusttypes/internal/fixture"
	"rusttypes/internal/format"
	"rusttypes/internal/layout"
	"rusttypes/internal/source"
)

const (
	maxFuzzInput = 1 << 16
	// buildTimeout bounds one input; exceeding it means a loop that never
	// settles, usually around cyclic type references.
	buildTimeout = 5 * time.Second
)

func FuzzLoadTOML(f *testing.F) {
	addFixtureSeeds(f, ".toml")
	f.Fuzz(func(t *testing.T, input []byte) {
		exercise(t, "fuzz.toml", input)
	})
}

func FuzzLoadYAML(f *testing.F) {
	addFixtureSeeds(f, ".yaml")
	f.Fuzz(func(t *testing.T, input []byte) {
		exercise(t, "fuzz.yaml", input)
	})
}

// exercise loads input and, when it builds cleanly, drives every consumer of
// the registry over every type.
func exercise(t *testing.T, name string, input []byte) {
	t.Helper()
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	input = append([]byte(nil), input...)

	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)

		bag := diag.NewBag(128)
		loader := fixture.NewLoader(source.NewFileSet(), diag.NewBagReporter(bag))
		fix, err := loader.LoadBytes(ctx, name, input)
		if err != nil || fix == nil {
			return
		}
		reg := fix.Registry
		engine := layout.New(layout.TargetForPointerSize(reg.PointerByteSize()), reg)
		if len(engine.Validate()) != 0 {
			return
		}
		session := cabi.NewSession(reg, cabi.Options{})
		zero := make([]byte, 64)
		for _, id := range reg.All() {
			_ = format.Describe(reg, id)
			_, _ = session.Declare(id, "v")
			_, _ = format.Render(reg, id, zero, format.ValueOptions{})
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("fixture pipeline hang: took longer than %v\ninput (%d bytes): %q",
			buildTimeout, len(input), truncateForLog(input, 200))
	}
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], "..."...)
}
