// Package format renders types and raw values the way a debugger shows them:
// type descriptions, scalar values, enum variants and child tables.
package format
