// Package dataset loads the wide-format petroleum sales spreadsheet and
// reshapes it into the long (region, year, sales) table consumed by the
// analytics and service layers. Parsing is permissive at cell granularity
// (bad cells become missing records) and strict at structural level (a
// missing region column or malformed year label is fatal).
package dataset
