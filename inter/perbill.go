package inter

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// PerbillAccuracy is the number of parts that make up one whole.
const PerbillAccuracy = 1_000_000_000

// ErrInvalidFraction is returned when a fraction string can not be parsed or
// lies outside of [0, 1].
var ErrInvalidFraction = errors.New("invalid fraction: want a value in [0, 1] such as 0.25 or 25%")

// Perbill is a fixed-point fraction in [0, 1] with a resolution of one part
// per billion. The zero value means "nothing".
type Perbill uint32

// FromParts builds a Perbill from raw parts, saturating at one.
func FromParts(parts uint32) Perbill {
	if parts > PerbillAccuracy {
		return PerbillAccuracy
	}
	return Perbill(parts)
}

// FromPercent builds a Perbill from a whole percentage, saturating at 100%.
func FromPercent(percent uint32) Perbill {
	if percent > 100 {
		percent = 100
	}
	return Perbill(percent * (PerbillAccuracy / 100))
}

// One is the fraction 1.
func One() Perbill {
	return PerbillAccuracy
}

// Parts returns the raw parts-per-billion.
func (p Perbill) Parts() uint32 {
	return uint32(p)
}

// IsZero reports whether the fraction is nothing.
func (p Perbill) IsZero() bool {
	return p == 0
}

// MulFloor returns floor(x * p). The product is computed in 128 bits so it is
// exact for every x.
func (p Perbill) MulFloor(x uint64) uint64 {
	parts := uint64(FromParts(uint32(p)))
	hi, lo := bits.Mul64(x, parts)
	// hi < parts <= PerbillAccuracy, so the quotient fits into 64 bits.
	q, _ := bits.Div64(hi, lo, PerbillAccuracy)
	return q
}

// String renders the fraction as a percentage, trimming trailing zeroes.
func (p Perbill) String() string {
	whole := uint32(p) / (PerbillAccuracy / 100)
	frac := uint32(p) % (PerbillAccuracy / 100)
	if frac == 0 {
		return fmt.Sprintf("%d%%", whole)
	}
	return fmt.Sprintf("%d.%s%%", whole, strings.TrimRight(fmt.Sprintf("%07d", frac), "0"))
}

// ParsePerbill parses "25%", "12.5%" or a decimal fraction like "0.125".
// At most nine fractional digits of the whole are kept, extra digits are
// truncated.
func ParsePerbill(s string) (Perbill, error) {
	s = strings.TrimSpace(s)
	scale := uint64(PerbillAccuracy)
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		scale = PerbillAccuracy / 100
	}
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidFraction
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	whole, err := strconv.ParseUint(intPart, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFraction, s)
	}

	var parts uint64
	digitScale := scale
	for _, c := range fracPart {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFraction, s)
		}
		digitScale /= 10
		parts += uint64(c-'0') * digitScale
	}
	parts += whole * scale
	if parts > PerbillAccuracy {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFraction, s)
	}
	return Perbill(parts), nil
}
