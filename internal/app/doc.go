// Package app wires a cleaning run together.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, YAML file, environment and flags
//	2. Resolve file locations and initialize logging
//	3. Initialize OpenTelemetry tracing and metrics
//	4. Register the cleaning steps and every configured output
//
// Run executes the steps once under a fresh run id, then writes the
// Prometheus textfile and the run manifest when they are configured. Close
// releases database sinks and flushes telemetry.
package app
