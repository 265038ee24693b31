// Package analytics computes the derived dashboard views over the long
// sales table: top-K and bottom-K rankings, per-region summary statistics,
// and year-over-year growth series. All functions are pure; they own no
// state and never mutate the table.
package analytics
