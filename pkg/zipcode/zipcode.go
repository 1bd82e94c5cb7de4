// Package zipcode implements HIPAA Safe Harbor truncation of United States
// ZIP codes. A Transformer is configured once with a precision mode, a fill
// policy and a redaction marker, then applied as a pure function to raw
// field values. Transform never fails: malformed input degrades to a
// deterministic output string.
//
// Precision modes:
//   - PrecisionTwo keeps the first 2 digits and fills the rest.
//   - PrecisionThree keeps the first 3 digits unless the prefix is in the
//     sparse-population table, in which case the whole value is replaced
//     by the redaction marker.
//   - PrecisionSmart keeps 3 digits for normal prefixes and falls back to
//     2 digits for sparse ones. Smart mode never redacts.
//
// Output length always equals the parsed digit-run length (at most 5);
// fill characters replace truncated digits but never extend the value.
package zipcode

import (
	"strings"

	"github.com/safeharbor-io/zipdeid/pkg/errors"
)

// PrecisionMode selects how many leading ZIP digits survive truncation.
type PrecisionMode string

const (
	// PrecisionTwo always truncates to 2-digit precision.
	PrecisionTwo PrecisionMode = "2"
	// PrecisionThree truncates to 3-digit precision and redacts values
	// whose 3-digit prefix is sparsely populated.
	PrecisionThree PrecisionMode = "3"
	// PrecisionSmart truncates to 3-digit precision for normal prefixes
	// and 2-digit precision for sparse ones.
	PrecisionSmart PrecisionMode = "smart"
)

// FillPolicy selects the character substituted for truncated digits.
type FillPolicy string

const (
	// FillZero replaces truncated digits with '0'.
	FillZero FillPolicy = "0"
	// FillX replaces truncated digits with 'X'.
	FillX FillPolicy = "X"
)

// DefaultRedaction is the marker substituted for values that cannot be
// released at 3-digit precision under PrecisionThree.
const DefaultRedaction = "REDACTED_HIPAA"

// ParsePrecision parses a user-supplied precision string.
func ParsePrecision(s string) (PrecisionMode, error) {
	switch PrecisionMode(strings.ToLower(strings.TrimSpace(s))) {
	case PrecisionTwo:
		return PrecisionTwo, nil
	case PrecisionThree:
		return PrecisionThree, nil
	case PrecisionSmart, "":
		return PrecisionSmart, nil
	}
	return "", errors.New(errors.ErrorTypeValidation, "precision must be one of: 2, 3, smart").
		WithDetail("precision", s)
}

// ParseFill parses a user-supplied fill policy string.
func ParseFill(s string) (FillPolicy, error) {
	switch strings.TrimSpace(s) {
	case "0", "":
		return FillZero, nil
	case "X", "x":
		return FillX, nil
	}
	return "", errors.New(errors.ErrorTypeValidation, "fill must be one of: 0, X").
		WithDetail("fill", s)
}

// Transformer deidentifies ZIP code values under a fixed policy. It holds
// no mutable state; a single Transformer is safe for concurrent use.
type Transformer struct {
	precision PrecisionMode
	fill      byte
	redaction string
}

// NewTransformer creates a Transformer for the given policy. An empty
// redaction string falls back to DefaultRedaction.
func NewTransformer(precision PrecisionMode, fill FillPolicy, redaction string) *Transformer {
	if redaction == "" {
		redaction = DefaultRedaction
	}
	return &Transformer{
		precision: precision,
		fill:      fill[0],
		redaction: redaction,
	}
}

// Precision returns the configured precision mode.
func (t *Transformer) Precision() PrecisionMode {
	return t.precision
}

// Redaction returns the configured redaction marker.
func (t *Transformer) Redaction() string {
	return t.redaction
}

// Transform deidentifies a single raw field value. Empty and
// whitespace-only values pass through unchanged, as do values containing
// no leading digit run. All other inputs yield either a truncated ZIP of
// the same digit-run length or the redaction marker.
func (t *Transformer) Transform(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}

	digits := leadingDigits(trimmed)
	if len(digits) == 0 {
		// No digit run means no ZIP to truncate; the value is left alone
		// rather than destroyed.
		return raw
	}

	// Only the first 5 digits carry meaning; a ZIP+4 extension was
	// already cut off at the separator by leadingDigits.
	if len(digits) > 5 {
		digits = digits[:5]
	}

	keep := t.decidePrecision(digits)
	if keep < 0 {
		return t.redaction
	}
	return truncate(digits, keep, t.fill)
}

// decidePrecision returns the number of digits to keep for the parsed
// digit run, or -1 when the value must be redacted. Redaction only
// happens under PrecisionThree; smart mode degrades to 2 digits instead,
// using the same prefix lookup.
func (t *Transformer) decidePrecision(digits string) int {
	switch t.precision {
	case PrecisionTwo:
		return 2
	case PrecisionThree:
		if len(digits) < 2 {
			return -1
		}
		if len(digits) < 3 {
			// Cannot determine a 3-digit prefix but the 2-digit minimum
			// holds, so degrade instead of redacting.
			return 2
		}
		if IsSparsePrefix(digits[:3]) {
			return -1
		}
		return 3
	default: // PrecisionSmart
		if len(digits) < 3 || IsSparsePrefix(digits[:3]) {
			return 2
		}
		return 3
	}
}

// leadingDigits extracts the digit run at the start of a trimmed value.
// Anything from the first non-digit on (the ZIP+4 separator and its
// extension included) is discarded.
func leadingDigits(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return s[:i]
		}
	}
	return s
}

// truncate keeps the first keep digits verbatim and fills the remaining
// positions up to the original digit-run length.
func truncate(digits string, keep int, fill byte) string {
	if keep >= len(digits) {
		return digits
	}

	var b strings.Builder
	b.Grow(len(digits))
	b.WriteString(digits[:keep])
	for i := keep; i < len(digits); i++ {
		b.WriteByte(fill)
	}
	return b.String()
}
