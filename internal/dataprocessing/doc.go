// Package dataprocessing turns a flat sales sheet into analysis-ready data.
//
// # Pipeline
//
// Data flows one way through the package:
//
//	Load → Clean → Filter → Aggregate / Describe
//
// Load reads delimited text or an .xlsx workbook into a domain.Dataset. Empty
// cells and the usual NA spellings become null Values, and columns whose
// cells are all plain numbers are read as numbers.
//
// Clean trims header names, coerces the currency columns with CoerceCurrency
// and drops rows that are entirely null. Cells that cannot be coerced become
// null and are listed in the CleanReport; they never abort the run.
//
// Filter applies a domain.Selection. The aggregation helpers (CountBy,
// SumBy, CrossTab, BoxBy and friends) group records by a key column, with
// null keys collected under domain.MissingLabel.
//
// # Caching
//
// Pipeline runs load and clean with tracing and metrics. DatasetCache puts a
// read-through cache keyed by path and cleaning version in front of it:
//
//	p := dataprocessing.NewPipeline(opts, logger, tracer, metrics)
//	cache := dataprocessing.NewPipelineCache(p, config.CleaningVersion, logger, metrics)
//	res, err := cache.Get(ctx, "data/Base.txt")
//
// # Errors
//
// A missing or unreadable file is an ErrTypeDataAccess error. Broken row
// structure and unknown currency columns are ErrTypeParsing. Unknown
// columns in filters and aggregations are ErrTypeValidation.
package dataprocessing
