// Package pipeline implements one incremental sync run: select the catalog
// entries changed since the watermark, download and normalize each one on a
// bounded worker pool, and advance the watermark once the batch is done.
//
// Per-dataset problems never abort a run; they are reported as Skipped or
// Failed outcomes. Only a missing listing or an unreadable watermark is
// fatal.
package pipeline
