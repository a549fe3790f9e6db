// Package operations runs a cleaning job as a sequence of steps.
//
// Core Components:
//
// Runner: executes steps in order against one RunState, opening a span per
// step, recording step metrics and stopping at the first failure.
//
// Step: a single unit of work. The built-in steps are load, deduplicate,
// sanitize and export, optionally followed by report, workbook, sqlite and
// postgres.
//
// RunState: the table and statistics handed from one step to the next.
//
// RunManifest: a JSON record of a finished run with BLAKE2b-256 digests of
// every input and output file.
//
// Errors: step failures are wrapped in OperationError, which unwraps to the
// underlying errors.AppError.
package operations
