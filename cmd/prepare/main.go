// Command prepare merges movie-review TSV files, removes duplicate rows,
// strips non-ASCII characters from the review text and writes one indexed TSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"movrec/internal/app"
	"movrec/internal/config"
	"movrec/pkg/contracts"
)

// fileList collects a repeatable, comma-separated flag
type fileList []string

func (f *fileList) String() string {
	return strings.Join(*f, ",")
}

func (f *fileList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*f = append(*f, part)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes one cleaning run and returns the exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var inputs fileList
	configPath := fs.String("config", "", "YAML config file (defaults to config.yaml or configs/config.yaml)")
	fs.Var(&inputs, "in", "input TSV file, repeatable or comma-separated")
	inDir := fs.String("dir", "", "directory to search for input files")
	pattern := fs.String("pattern", "", "glob pattern for files in -dir")
	out := fs.String("out", "", "output TSV file")
	column := fs.String("column", "", "column to sanitize to ASCII")
	key := fs.String("key", "", "column used to group duplicate counts")
	summary := fs.String("summary", "", "write a JSON run report to this file")
	xlsx := fs.String("xlsx", "", "write an XLSX workbook to this file")
	sqlitePath := fs.String("sqlite", "", "store the table in this SQLite database")
	manifest := fs.String("manifest", "", "write a run manifest to this file")
	showVersion := fs.Bool("version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	override := func(c *config.Config) {
		if len(inputs) > 0 {
			c.Pipeline.InputFiles = inputs
		}
		if *inDir != "" {
			c.Pipeline.InputDir = *inDir
			// a directory given on the command line replaces the configured files
			if len(inputs) == 0 {
				c.Pipeline.InputFiles = nil
			}
		}
		setIf(&c.Pipeline.InputPattern, *pattern)
		setIf(&c.Pipeline.OutputFile, *out)
		setIf(&c.Pipeline.SanitizeColumn, *column)
		setIf(&c.Pipeline.DuplicateKey, *key)
		setIf(&c.Pipeline.ReportFile, *summary)
		setIf(&c.Pipeline.WorkbookFile, *xlsx)
		setIf(&c.Pipeline.ManifestFile, *manifest)
		setIf(&c.Storage.SQLitePath, *sqlitePath)
	}

	application, err := app.NewApplication(ctx, app.Options{
		ConfigPath: *configPath,
		Console:    stderr,
		Overrides:  []config.Override{override},
	})
	if err != nil {
		fmt.Fprintf(stderr, "prepare: %v\n", err)
		return 1
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			fmt.Fprintf(stderr, "prepare: %v\n", err)
		}
	}()

	if err := application.Run(ctx); err != nil {
		application.Logger.ErrorContext(ctx, "Run failed", slog.String("error", err.Error()))
		return 1
	}

	return 0
}

func setIf(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
