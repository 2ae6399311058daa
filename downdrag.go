// Package downdrag extracts structured records from listing pages and the
// detail pages they link to, and derives typed detail fields from the
// extracted text with configurable pattern rules.
//
// This package contains domain types, interfaces and the pure parts of the
// extraction pipeline (time parsing, formulas). Implementations live in
// subdirectories named after their primary dependency (e.g., htmlquery/,
// goquery/, rod/, sqlite/). The pipeline itself lives in extract/.
package downdrag
