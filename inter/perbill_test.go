package inter

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPerbill_Constructors(t *testing.T) {
	require := require.New(t)

	require.Equal(Perbill(0), FromParts(0))
	require.Equal(Perbill(PerbillAccuracy), FromParts(PerbillAccuracy+1), "parts saturate at one")
	require.Equal(Perbill(500_000_000), FromPercent(50))
	require.Equal(One(), FromPercent(250), "percent saturates at 100")
	require.Equal(uint32(PerbillAccuracy), One().Parts())
	require.True(Perbill(0).IsZero())
}

// TestPerbill_MulFloor verifies rounding down and exactness at the top of
// the uint64 range.
func TestPerbill_MulFloor(t *testing.T) {
	tests := []struct {
		p    Perbill
		x    uint64
		want uint64
	}{
		{0, 1000, 0},
		{One(), 1000, 1000},
		{FromPercent(50), 1001, 500},
		{FromPercent(33), 100, 33},
		{FromParts(1), 999_999_999, 0},
		{FromParts(1), 1_000_000_000, 1},
		{One(), math.MaxUint64, math.MaxUint64},
		{FromPercent(50), math.MaxUint64, math.MaxUint64 / 2},
		{Perbill(2 * PerbillAccuracy), 10, 10}, // out of range values act as one
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.p.MulFloor(tt.x), "%v * %d", tt.p, tt.x)
	}
}

func TestPerbill_String(t *testing.T) {
	require.Equal(t, "0%", Perbill(0).String())
	require.Equal(t, "100%", One().String())
	require.Equal(t, "12.5%", FromParts(125_000_000).String())
	require.Equal(t, "0.0000001%", FromParts(1).String())
}

func TestParsePerbill(t *testing.T) {
	valid := map[string]Perbill{
		"0":            0,
		"1":            One(),
		"1.0":          One(),
		"0.5":          FromPercent(50),
		".25":          FromPercent(25),
		"0.125":        FromParts(125_000_000),
		"0.0000000019": FromParts(1), // digits past the ninth are truncated
		"50%":          FromPercent(50),
		" 12.5 % ":     FromParts(125_000_000),
		"100%":         One(),
		"0%":           0,
	}
	for in, want := range valid {
		got, err := ParsePerbill(in)
		require.NoError(t, err, "input %q", in)
		require.Equal(t, want, got, "input %q", in)
	}

	for _, in := range []string{"", "%", "-0.5", "+1", "1.5", "101%", "abc", "0.5x", "1e-3"} {
		_, err := ParsePerbill(in)
		require.Error(t, err, "input %q", in)
		require.True(t, errors.Is(err, ErrInvalidFraction), "input %q: %v", in, err)
	}
}

// TestParsePerbill_RoundTrip verifies that String output parses back.
func TestParsePerbill_RoundTrip(t *testing.T) {
	for _, p := range []Perbill{0, 1, 7, FromPercent(1), FromParts(123_456_789), One()} {
		got, err := ParsePerbill(p.String())
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
}
