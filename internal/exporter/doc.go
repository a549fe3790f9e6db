// Package exporter writes the cleaned review table and its run statistics.
//
// TableWriter produces the main output: a delimited file (tab by default)
// whose first row holds the column names and whose first column holds the
// 0-based row index. WorkbookExporter writes the same table plus duplicate
// and summary sheets to XLSX. ReportWriter writes the run report as JSON.
//
// All writers go through files.Manager, so an existing output is only
// replaced once the new content is complete.
package exporter
