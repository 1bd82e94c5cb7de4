// Package delimited reads and writes single-character delimited record
// files. It wraps encoding/csv with a configurable delimiter, allows
// variable field counts, and transparently handles gzip-compressed files
// by extension.
package delimited

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"

	"github.com/safeharbor-io/zipdeid/pkg/errors"
)

// DefaultDelimiter is used when no delimiter is configured.
const DefaultDelimiter = ','

// ParseDelimiter parses a user-supplied delimiter string. It accepts any
// single character plus the escape spellings "\t", "\n" and "\r" so shells
// that do not expand escapes can still select a tab delimiter. An empty
// string selects the default comma.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return DefaultDelimiter, nil
	case `\t`:
		return '\t', nil
	case `\n`:
		return '\n', nil
	case `\r`:
		return '\r', nil
	}

	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, errors.New(errors.ErrorTypeValidation, "delimiter must be a single character").
			WithDetail("delimiter", s)
	}
	return r, nil
}

// DeriveOutputPath derives the default output file name for an input
// path: the stem gains a _deidentified suffix while extensions (and a
// trailing .gz) are preserved. For example data.csv becomes
// data_deidentified.csv and data.csv.gz becomes data_deidentified.csv.gz.
func DeriveOutputPath(input string) string {
	if strings.HasSuffix(strings.ToLower(input), ".gz") {
		return DeriveOutputPath(input[:len(input)-len(".gz")]) + input[len(input)-len(".gz"):]
	}

	ext := filepath.Ext(input)
	stem := input[:len(input)-len(ext)]
	return stem + "_deidentified" + ext
}

// Reader streams rows from a delimited file. Rows may have variable
// field counts; field content is preserved byte-for-byte.
type Reader struct {
	file *os.File
	gz   *gzip.Reader
	csv  *csv.Reader
}

// OpenReader opens path for reading with the given delimiter. Files
// ending in .gz are decompressed on the fly.
func OpenReader(path string, delimiter rune) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input file").
			WithDetail("path", path)
	}

	r := &Reader{file: file}
	var src io.Reader = file

	if isGzipPath(path) {
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open gzip input").
				WithDetail("path", path)
		}
		r.gz = gz
		src = gz
	}

	r.csv = csv.NewReader(src)
	r.csv.Comma = delimiter
	r.csv.FieldsPerRecord = -1 // rows may vary in width
	r.csv.LazyQuotes = true

	return r, nil
}

// Read returns the next row, or io.EOF when the file is exhausted.
func (r *Reader) Read() ([]string, error) {
	row, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read row")
	}
	return row, nil
}

// Close releases the underlying file handles.
func (r *Reader) Close() error {
	var firstErr error
	if r.gz != nil {
		if err := r.gz.Close(); err != nil {
			firstErr = err
		}
	}
	if err := r.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return errors.Wrap(firstErr, errors.ErrorTypeFile, "failed to close reader")
	}
	return nil
}

// Writer streams rows to a delimited file, compressing when the path
// ends in .gz.
type Writer struct {
	file *os.File
	gz   *gzip.Writer
	csv  *csv.Writer
}

// CreateWriter creates (or truncates) path for writing with the given
// delimiter.
func CreateWriter(path string, delimiter rune) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}

	w := &Writer{file: file}
	var dst io.Writer = file

	if isGzipPath(path) {
		w.gz = gzip.NewWriter(file)
		dst = w.gz
	}

	w.csv = csv.NewWriter(dst)
	w.csv.Comma = delimiter

	return w, nil
}

// Write appends one row to the output.
func (w *Writer) Write(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to write row")
	}
	return nil
}

// Close flushes buffered rows and releases the file handles.
func (w *Writer) Close() error {
	w.csv.Flush()
	firstErr := w.csv.Error()

	if w.gz != nil {
		if err := w.gz.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := w.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return errors.Wrap(firstErr, errors.ErrorTypeFile, "failed to close writer")
	}
	return nil
}

func isGzipPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}
