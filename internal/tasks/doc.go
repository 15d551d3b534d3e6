// Package tasks resolves custom lists against the movie metadata service.
//
// # Enrichment
//
// [Enricher.Enrich] looks up every distinct movie id in a list concurrently and merges the
// results back by position. Lookup failures are isolated to their item: the item stays in the
// list with Movie unset, and no retry is attempted. An empty list makes no calls.
//
// [Engine.FetchEnriched] fetches a single list from the remote store and enriches it. Only a
// failed list fetch is reported as an error.
//
// # Bulk Export
//
// [Engine.BulkExport] fetches and enriches many lists at a limited rate, writes each with the
// formatter through a small worker pool, and records a manifest.
//
// # Progress Reporting
//
// Long operations send [ProgressUpdate] values on an optional channel. Sends use select with
// default so a slow reader never blocks the operation.
package tasks
