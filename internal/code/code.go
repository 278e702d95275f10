// internal/code/code.go
//
// Code is the value probed and hidden by the game: exactly three digits,
// each in 1..5. A Code is immutable once parsed; equality is structural so
// two Codes compare with ==.
//
// Wire format: three ASCII characters '1'..'5' ("241"). Anything else is
// rejected with ErrInvalidFormat.

package code

import (
	"errors"
	"fmt"
)

const (
	// Length is the number of digits in a code.
	Length = 3
	// MinDigit and MaxDigit bound every digit.
	MinDigit = 1
	MaxDigit = 5
)

// ErrInvalidFormat is returned for any string that is not three digits 1..5.
var ErrInvalidFormat = errors.New("code must be 3 digits, each between 1 and 5")

// Code is a validated three-digit code. The zero value is not a valid code.
type Code struct {
	digits [Length]int
}

// Parse validates s and returns the corresponding Code.
func Parse(s string) (Code, error) {
	var c Code
	if len(s) != Length {
		return Code{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	for i := 0; i < Length; i++ {
		ch := s[i]
		if ch < '0'+MinDigit || ch > '0'+MaxDigit {
			return Code{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		c.digits[i] = int(ch - '0')
	}
	return c, nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) Code {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Digits returns a copy of the three digits in order.
func (c Code) Digits() [Length]int { return c.digits }

// IsZero reports whether c is the zero value (no code).
func (c Code) IsZero() bool { return c.digits[0] == 0 }

// Equal reports structural equality.
func (c Code) Equal(o Code) bool { return c == o }

// String renders the wire format.
func (c Code) String() string {
	if c.IsZero() {
		return ""
	}
	b := make([]byte, Length)
	for i, d := range c.digits {
		b[i] = byte('0' + d)
	}
	return string(b)
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler with the same validation as Parse.
func (c *Code) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// All enumerates every valid code in ascending order (125 codes).
func All() []Code {
	out := make([]Code, 0, 125)
	for a := MinDigit; a <= MaxDigit; a++ {
		for b := MinDigit; b <= MaxDigit; b++ {
			for d := MinDigit; d <= MaxDigit; d++ {
				out = append(out, Code{digits: [Length]int{a, b, d}})
			}
		}
	}
	return out
}
