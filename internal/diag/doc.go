// Package diag carries findings produced while loading fixtures, checking a
// type registry and rendering values.
//
// A Diagnostic has a Severity, a stable Code (rendered as FIX1001, TYP2002
// and so on), a message and either a primary source.Span inside a fixture
// file or a Subject naming the type or declaration involved. Registries built
// in code have no files, so most type-model findings are unlocated.
//
// Producers talk to a Reporter; BagReporter collects into a Bag that can be
// sorted, deduplicated and rendered with FormatShort.
package diag
