package zipcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecision(t *testing.T) {
	tests := []struct {
		input    string
		expected PrecisionMode
		wantErr  bool
	}{
		{"2", PrecisionTwo, false},
		{"3", PrecisionThree, false},
		{"smart", PrecisionSmart, false},
		{"SMART", PrecisionSmart, false},
		{" 3 ", PrecisionThree, false},
		{"", PrecisionSmart, false},
		{"4", "", true},
		{"full", "", true},
	}

	for _, tt := range tests {
		mode, err := ParsePrecision(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, mode, "input %q", tt.input)
	}
}

func TestParseFill(t *testing.T) {
	tests := []struct {
		input    string
		expected FillPolicy
		wantErr  bool
	}{
		{"0", FillZero, false},
		{"X", FillX, false},
		{"x", FillX, false},
		{"", FillZero, false},
		{"Z", "", true},
		{"00", "", true},
	}

	for _, tt := range tests {
		policy, err := ParseFill(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, policy, "input %q", tt.input)
	}
}

func TestTransformThreeDigitPrecision(t *testing.T) {
	zeros := NewTransformer(PrecisionThree, FillZero, "")
	xs := NewTransformer(PrecisionThree, FillX, "")

	assert.Equal(t, "12300", zeros.Transform("12345"))
	assert.Equal(t, "90200", zeros.Transform("90210"))
	assert.Equal(t, "00500", zeros.Transform("00501"))

	assert.Equal(t, "123XX", xs.Transform("12345"))
	assert.Equal(t, "902XX", xs.Transform("90210"))
	assert.Equal(t, "005XX", xs.Transform("00501"))
}

func TestTransformTwoDigitPrecision(t *testing.T) {
	zeros := NewTransformer(PrecisionTwo, FillZero, "")
	xs := NewTransformer(PrecisionTwo, FillX, "")

	assert.Equal(t, "12000", zeros.Transform("12345"))
	assert.Equal(t, "90000", zeros.Transform("90210"))
	assert.Equal(t, "00000", zeros.Transform("00501"))

	assert.Equal(t, "12XXX", xs.Transform("12345"))
	assert.Equal(t, "90XXX", xs.Transform("90210"))

	// Sparse prefixes are no different under fixed 2-digit precision
	assert.Equal(t, "03000", zeros.Transform("03601"))
}

func TestTransformThreeDigitRedactsSparsePrefixes(t *testing.T) {
	def := NewTransformer(PrecisionThree, FillX, "")
	custom := NewTransformer(PrecisionThree, FillZero, "[removed]")

	// Each redaction is triggered purely by the 3-digit prefix
	for _, zip := range []string{"03601", "05901", "10234", "20301", "20501", "36901", "55601", "69201", "82101", "82301", "87801", "87901", "88401", "89301"} {
		assert.Equal(t, DefaultRedaction, def.Transform(zip), "zip %s", zip)
		assert.Equal(t, "[removed]", custom.Transform(zip), "zip %s", zip)
	}

	// Neighboring non-sparse prefixes truncate normally
	assert.Equal(t, "037XX", def.Transform("03701"))
	assert.Equal(t, "82000", custom.Transform("82001"))
}

func TestTransformSmartMode(t *testing.T) {
	zeros := NewTransformer(PrecisionSmart, FillZero, "")
	xs := NewTransformer(PrecisionSmart, FillX, "")

	// Normal prefixes keep 3 digits
	assert.Equal(t, "12300", zeros.Transform("12345"))
	assert.Equal(t, "90200", zeros.Transform("90210"))
	assert.Equal(t, "94100", zeros.Transform("94102"))
	assert.Equal(t, "123XX", xs.Transform("12345"))

	// Sparse prefixes degrade to 2 digits
	assert.Equal(t, "03000", zeros.Transform("03601"))
	assert.Equal(t, "05000", zeros.Transform("05901"))
	assert.Equal(t, "10000", zeros.Transform("10234"))
	assert.Equal(t, "82XXX", xs.Transform("82101"))
	assert.Equal(t, "89XXX", xs.Transform("89301"))
}

func TestTransformSmartNeverRedacts(t *testing.T) {
	tr := NewTransformer(PrecisionSmart, FillZero, "")

	inputs := []string{"03601", "89301", "12345", "1", "12", "123", "1234", "03601-9999", "abc", ""}
	for _, in := range inputs {
		assert.NotEqual(t, DefaultRedaction, tr.Transform(in), "input %q", in)
	}
}

func TestTransformZipPlus4(t *testing.T) {
	three := NewTransformer(PrecisionThree, FillZero, "")
	threeX := NewTransformer(PrecisionThree, FillX, "")
	two := NewTransformer(PrecisionTwo, FillZero, "")
	smart := NewTransformer(PrecisionSmart, FillZero, "")

	// The extension never contributes to the result
	assert.Equal(t, "12300", three.Transform("12345-6789"))
	assert.Equal(t, "123XX", threeX.Transform("12345-6789"))
	assert.Equal(t, "12000", two.Transform("12345-6789"))
	assert.Equal(t, "03000", smart.Transform("03601-1234"))
	assert.Equal(t, DefaultRedaction, three.Transform("03601-1234"))

	// Result depends only on the base
	assert.Equal(t, three.Transform("94102"), three.Transform("94102-5678"))
}

func TestTransformEmptyAndWhitespace(t *testing.T) {
	for _, mode := range []PrecisionMode{PrecisionTwo, PrecisionThree, PrecisionSmart} {
		tr := NewTransformer(mode, FillZero, "")
		assert.Equal(t, "", tr.Transform(""), "mode %s", mode)
		assert.Equal(t, "   ", tr.Transform("   "), "mode %s", mode)
		assert.Equal(t, "\t", tr.Transform("\t"), "mode %s", mode)
	}
}

func TestTransformWhitespacePadding(t *testing.T) {
	tr := NewTransformer(PrecisionThree, FillZero, "")
	trX := NewTransformer(PrecisionThree, FillX, "")

	assert.Equal(t, "12300", tr.Transform(" 12345 "))
	assert.Equal(t, "123XX", trX.Transform("12345 "))
}

func TestTransformShortValues(t *testing.T) {
	two := NewTransformer(PrecisionTwo, FillZero, "")
	three := NewTransformer(PrecisionThree, FillZero, "")
	smart := NewTransformer(PrecisionSmart, FillZero, "")

	// Fill never extends: output length equals the digit-run length
	assert.Equal(t, "12", two.Transform("12"))
	assert.Equal(t, "1", two.Transform("1"))
	assert.Equal(t, "120", two.Transform("123"))
	assert.Equal(t, "1200", two.Transform("1234"))

	// Three-digit mode degrades to 2 digits when only 2 exist, and
	// redacts below the 2-digit minimum
	assert.Equal(t, "12", three.Transform("12"))
	assert.Equal(t, "123", three.Transform("123"))
	assert.Equal(t, "1230", three.Transform("1234"))
	assert.Equal(t, DefaultRedaction, three.Transform("1"))

	// Smart applies the 2-digit rule when no prefix can be determined
	assert.Equal(t, "1", smart.Transform("1"))
	assert.Equal(t, "12", smart.Transform("12"))
	assert.Equal(t, "123", smart.Transform("123"))
	assert.Equal(t, "1230", smart.Transform("1234"))
	assert.Equal(t, "0300", smart.Transform("0360")) // sparse prefix, 4 digits
}

func TestTransformNonNumericContent(t *testing.T) {
	for _, mode := range []PrecisionMode{PrecisionTwo, PrecisionThree, PrecisionSmart} {
		tr := NewTransformer(mode, FillZero, "")
		// Values without a leading digit run pass through unchanged
		assert.Equal(t, "abc", tr.Transform("abc"), "mode %s", mode)
		assert.Equal(t, "n/a", tr.Transform("n/a"), "mode %s", mode)
	}
}

func TestTransformLongDigitRuns(t *testing.T) {
	three := NewTransformer(PrecisionThree, FillZero, "")
	two := NewTransformer(PrecisionTwo, FillX, "")

	// Digits beyond 5 are ignored
	assert.Equal(t, "12300", three.Transform("123456789"))
	assert.Equal(t, "12XXX", two.Transform("1234567"))
}

func TestSparsePrefixTable(t *testing.T) {
	expected := []string{"036", "059", "102", "203", "205", "369", "556", "692", "821", "823", "878", "879", "884", "893"}
	assert.Equal(t, expected, SparsePrefixes())

	for _, p := range expected {
		assert.True(t, IsSparsePrefix(p), "prefix %s", p)
	}
	assert.False(t, IsSparsePrefix("123"))
	assert.False(t, IsSparsePrefix("036x"))
	assert.False(t, IsSparsePrefix(""))
}

func TestTransformerAccessors(t *testing.T) {
	tr := NewTransformer(PrecisionThree, FillX, "")
	assert.Equal(t, PrecisionThree, tr.Precision())
	assert.Equal(t, DefaultRedaction, tr.Redaction())

	custom := NewTransformer(PrecisionSmart, FillZero, "GONE")
	assert.Equal(t, "GONE", custom.Redaction())
}
