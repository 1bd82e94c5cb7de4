// Package columns resolves user-supplied column selectors against the
// header of a delimited file. A selector is either a zero-based field
// index or an exact column name; resolution happens once per input file
// and the resulting positions are reused for every row.
package columns

import (
	"strconv"
	"strings"
)

// Spec identifies a target column as supplied by the user: a non-negative
// integer selects a field by position, anything else is matched against
// header names. Specs are immutable after parsing.
type Spec struct {
	raw     string
	index   int
	byIndex bool
}

// ParseSpec parses a single selector string. A value that parses as a
// non-negative integer becomes an index spec; everything else is a name
// spec matched case-sensitively.
func ParseSpec(raw string) Spec {
	trimmed := strings.TrimSpace(raw)
	if idx, err := strconv.Atoi(trimmed); err == nil && idx >= 0 {
		return Spec{raw: trimmed, index: idx, byIndex: true}
	}
	return Spec{raw: trimmed, index: -1}
}

// ParseSpecs parses a list of selector strings, preserving order.
func ParseSpecs(raw []string) []Spec {
	specs := make([]Spec, 0, len(raw))
	for _, r := range raw {
		specs = append(specs, ParseSpec(r))
	}
	return specs
}

// IsIndex reports whether the spec selects by position.
func (s Spec) IsIndex() bool {
	return s.byIndex
}

// String returns the selector as the user supplied it.
func (s Spec) String() string {
	return s.raw
}

// Resolution maps a set of specs onto concrete field positions within one
// input file. Positions are ordered, deduplicated and valid for any row
// matching the header width. Unresolved holds the specs that matched
// nothing; they are warnings, not errors.
type Resolution struct {
	Positions  []int
	Unresolved []Spec
}

// Resolve maps specs onto positions within the given header. Index specs
// resolve iff they are within the header width; name specs match the
// first header entry with that exact name. Duplicate specs collapse to a
// single position.
func Resolve(header []string, specs []Spec) Resolution {
	var res Resolution
	seen := make(map[int]struct{}, len(specs))

	for _, spec := range specs {
		pos, ok := resolveOne(header, spec)
		if !ok {
			res.Unresolved = append(res.Unresolved, spec)
			continue
		}
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		res.Positions = append(res.Positions, pos)
	}

	return res
}

// ResolveWidth resolves specs against a header-less file whose rows have
// the given width. Only index specs are usable; name specs cannot match
// and land in Unresolved.
func ResolveWidth(width int, specs []Spec) Resolution {
	var res Resolution
	seen := make(map[int]struct{}, len(specs))

	for _, spec := range specs {
		if !spec.byIndex || spec.index >= width {
			res.Unresolved = append(res.Unresolved, spec)
			continue
		}
		if _, dup := seen[spec.index]; dup {
			continue
		}
		seen[spec.index] = struct{}{}
		res.Positions = append(res.Positions, spec.index)
	}

	return res
}

func resolveOne(header []string, spec Spec) (int, bool) {
	if spec.byIndex {
		if spec.index < len(header) {
			return spec.index, true
		}
		return 0, false
	}

	// First match wins when header names repeat.
	for i, name := range header {
		if name == spec.raw {
			return i, true
		}
	}
	return 0, false
}
