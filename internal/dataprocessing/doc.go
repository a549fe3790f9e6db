// Package dataprocessing holds the three table transformations of a review
// cleaning run.
//
// # Components
//
//  1. Loader: reads headerless tab-separated review files, in order, into one
//     domain.Table and drops rows that hold a missing value
//  2. Deduplicator: removes rows fully equal to an earlier row and reports how
//     many were removed per user
//  3. Sanitizer: strips every non-ASCII rune from one text column
//
// # Usage
//
//	loader := dataprocessing.NewLoader(domain.ReviewSchema(), logger)
//	table, _, err := loader.LoadAll(ctx, []string{"data/movrec_mtan.tsv", "data/movrec_emre.tsv"})
//	if err != nil {
//	    return err
//	}
//
//	table, report, err := dataprocessing.NewDeduplicator(domain.ColumnUserName, logger).Resolve(table)
//	table, stats, err := dataprocessing.NewSanitizer(logger).Sanitize(table, domain.ColumnUserReview)
//
// Every transformation returns a new table and leaves its input untouched.
// Failures are *errors.AppError values typed FILE_NOT_FOUND, SCHEMA_MISMATCH,
// TYPE_MISMATCH or PARSING.
package dataprocessing
