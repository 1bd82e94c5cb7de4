// Package zipdeid deidentifies United States ZIP codes embedded in
// delimited text files per the HIPAA Safe Harbor rules.
//
// The engine locates ZIP-bearing columns by name or zero-based index,
// truncates each value to 2- or 3-digit precision, and handles the 14
// sparsely populated 3-digit prefixes (aggregate population below 20,000
// per 2010 Census data) by either reducing them to 2-digit precision
// (smart mode) or replacing the value with a redaction marker (3-digit
// mode). Every field outside the selected columns passes through
// byte-for-byte; output row order equals input row order.
//
// # Layout
//
//   - cmd/zipdeid: cobra CLI (run, prefixes, version)
//   - internal/pipeline: streaming reader → transform → writer stages
//   - pkg/zipcode: the pure ZIP transformation engine and sparse table
//   - pkg/columns: column selector resolution against a header row
//   - pkg/delimited: delimiter-aware record I/O with gzip transparency
//   - pkg/config, pkg/logger, pkg/errors, pkg/metrics: run configuration,
//     zap logging, structured errors and Prometheus instrumentation
//
// # Quick start
//
//	zipdeid run patients.csv -c home_zip -c work_zip -p smart -f X
package zipdeid
