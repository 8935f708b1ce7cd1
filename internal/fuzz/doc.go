// Package fuzztests houses Go fuzz harnesses for the fixture pipeline:
// arbitrary bytes are decoded as a TOML or YAML fixture, built into a
// registry and, when the build is clean, laid out, described and emitted as
// C. The harnesses guard against panics and hangs, not wrong answers.
package fuzztests
