package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestBannerPlain(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version, GitCommit, BuildDate = "1.2.3", "", ""
	if got := Banner(false); got != "rusttypes 1.2.3" {
		t.Fatalf("Banner = %q", got)
	}

	GitCommit, BuildDate = "abc123", "2024-01-15"
	if got := Banner(false); got != "rusttypes 1.2.3 (abc123) built 2024-01-15" {
		t.Fatalf("Banner = %q", got)
	}
}

func TestColoredWithoutColor(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = origVersion, origNoColor })

	color.NoColor = true
	Version = "0.4.1-rc1"
	if got := Colored(); got != "0.4.1-rc1" {
		t.Fatalf("Colored = %q", got)
	}
	Version = "dev"
	if got := Colored(); got != "dev" {
		t.Fatalf("non-semver Colored = %q", got)
	}
}
