package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		input   string
		isIndex bool
	}{
		{"zipcode", false},
		{"0", true},
		{"12", true},
		{"-1", false},  // negative integers are names, not indices
		{"3.5", false}, // not an integer
		{" 2 ", true},  // whitespace is trimmed
		{"zip_4", false},
		{"", false},
	}

	for _, tt := range tests {
		spec := ParseSpec(tt.input)
		assert.Equal(t, tt.isIndex, spec.IsIndex(), "input %q", tt.input)
	}
}

func TestResolveByName(t *testing.T) {
	header := []string{"id", "name", "zipcode", "work_zip"}

	res := Resolve(header, ParseSpecs([]string{"zipcode", "work_zip"}))
	assert.Equal(t, []int{2, 3}, res.Positions)
	assert.Empty(t, res.Unresolved)
}

func TestResolveByIndex(t *testing.T) {
	header := []string{"id", "name", "zipcode"}

	res := Resolve(header, ParseSpecs([]string{"2", "0"}))
	assert.Equal(t, []int{2, 0}, res.Positions)
	assert.Empty(t, res.Unresolved)
}

func TestResolveMixedAndDuplicates(t *testing.T) {
	header := []string{"id", "zipcode", "city"}

	// "zipcode" and "1" both point at position 1; duplicates collapse
	res := Resolve(header, ParseSpecs([]string{"zipcode", "1", "zipcode"}))
	assert.Equal(t, []int{1}, res.Positions)
	assert.Empty(t, res.Unresolved)
}

func TestResolveCaseSensitive(t *testing.T) {
	header := []string{"ZipCode"}

	res := Resolve(header, ParseSpecs([]string{"zipcode"}))
	assert.Empty(t, res.Positions)
	assert.Len(t, res.Unresolved, 1)
}

func TestResolveDuplicateHeaderNamesFirstWins(t *testing.T) {
	header := []string{"zip", "name", "zip"}

	res := Resolve(header, ParseSpecs([]string{"zip"}))
	assert.Equal(t, []int{0}, res.Positions)
}

func TestResolveUnresolved(t *testing.T) {
	header := []string{"id", "zipcode"}

	res := Resolve(header, ParseSpecs([]string{"zipcode", "missing", "7"}))
	assert.Equal(t, []int{1}, res.Positions)
	assert.Len(t, res.Unresolved, 2)
	assert.Equal(t, "missing", res.Unresolved[0].String())
	assert.Equal(t, "7", res.Unresolved[1].String())
}

func TestResolveNothing(t *testing.T) {
	header := []string{"id", "name"}

	res := Resolve(header, ParseSpecs([]string{"zipcode"}))
	assert.Empty(t, res.Positions)
	assert.Len(t, res.Unresolved, 1)
}

func TestResolveWidth(t *testing.T) {
	specs := ParseSpecs([]string{"2", "0", "zipcode", "9", "2"})

	res := ResolveWidth(4, specs)
	assert.Equal(t, []int{2, 0}, res.Positions)
	// Name specs and out-of-range indices cannot resolve without a header
	assert.Len(t, res.Unresolved, 2)
}
