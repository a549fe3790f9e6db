// Package config loads and validates the configuration of a cleaning run.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Overrides such as command line flags (highest priority)
//	2. Environment variables with the MOVREC_ prefix
//	3. A YAML file: the given path, config.yaml or configs/config.yaml
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// Nested fields are joined with underscores:
//
//	MOVREC_PIPELINE_OUTPUT_FILE=data/movie_data.tsv
//	MOVREC_PIPELINE_INPUT_FILES=a.tsv,b.tsv
//	MOVREC_LOGGING_LEVEL=debug
//	MOVREC_STORAGE_POSTGRES_ENABLED=true
//	MOVREC_STORAGE_SQLITE_PATH=data/movrec.db  (SQLITE_PATH is accepted too)
//
// # Validation
//
// Struct tags are checked with go-playground/validator. Errors name the YAML
// path of the offending field, for example "pipeline.output_file is required".
//
// # Paths
//
// Paths resolves every configured file against a base directory so a run
// behaves the same regardless of where relative paths were written.
package config
