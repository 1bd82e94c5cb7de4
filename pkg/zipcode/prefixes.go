package zipcode

import "sort"

// sparsePrefixes holds the 3-digit ZIP prefixes whose combined population
// falls below 20,000 in the 2010 Census. Under Safe Harbor these prefixes
// cannot be released at 3-digit precision.
var sparsePrefixes = map[string]struct{}{
	"036": {},
	"059": {},
	"102": {},
	"203": {},
	"205": {},
	"369": {},
	"556": {},
	"692": {},
	"821": {},
	"823": {},
	"878": {},
	"879": {},
	"884": {},
	"893": {},
}

// IsSparsePrefix reports whether the given 3-digit prefix is in the
// sparse-population table.
func IsSparsePrefix(prefix string) bool {
	_, ok := sparsePrefixes[prefix]
	return ok
}

// SparsePrefixes returns the sparse-population prefixes in ascending
// order. The returned slice is a copy.
func SparsePrefixes() []string {
	out := make([]string, 0, len(sparsePrefixes))
	for p := range sparsePrefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
