// Package shared holds helpers used by more than one package.
//
// The testutil subpackage captures slog output so tests can assert on the
// structured log lines a step emits.
package shared
