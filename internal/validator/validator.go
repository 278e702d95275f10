// internal/validator/validator.go
//
// The validator library: 22 rules that compare a candidate code with the
// secret without revealing the secret.
//
// Every rule is a closed Kind plus its parameters (position, second position,
// constant) carried as data. Evaluation classifies each code independently
// into a small category and reports whether the two categories match, so
// every rule is pure, O(1) and symmetric in its arguments.
//
// The library is built once at package init and is read-only; it is safe to
// share across sessions without locking.

package validator

import (
	"errors"
	"fmt"

	"github.com/robalobadob/turing/internal/code"
)

// Count is the number of rules in the library; ids run 1..Count.
const Count = 22

// ErrUnknownValidator is returned by Lookup for ids outside 1..Count.
var ErrUnknownValidator = errors.New("unknown validator")

// Kind enumerates the rule families.
type Kind int

const (
	// KindDigitVsConstant: digit at Pos is <, = or > Value.
	KindDigitVsConstant Kind = iota + 1
	// KindParityAt: digit at Pos is even or odd.
	KindParityAt
	// KindCountOf: number of digits equal to Value.
	KindCountOf
	// KindComparePositions: digit at Pos is <, = or > digit at Pos2.
	KindComparePositions
	// KindMinPosition: position of the smallest digit, first occurrence wins.
	KindMinPosition
	// KindMaxPosition: position of the largest digit, first occurrence wins.
	KindMaxPosition
	// KindMajorityParity: parity held by at least two digits.
	KindMajorityParity
	// KindEvenCount: number of even digits.
	KindEvenCount
	// KindSumParity: parity of the digit sum.
	KindSumParity
	// KindFirstTwoSumVsConstant: digits[0]+digits[1] is <, = or > Value.
	KindFirstTwoSumVsConstant
	// KindMaxRepeat: highest multiplicity of any digit value (1..3).
	KindMaxRepeat
	// KindSinglePair: exactly one value appears exactly twice.
	KindSinglePair
	// KindOrder: strictly ascending, strictly descending, or neither.
	KindOrder
)

var kindNames = map[Kind]string{
	KindDigitVsConstant:       "digit_vs_constant",
	KindParityAt:              "parity_at",
	KindCountOf:               "count_of",
	KindComparePositions:      "compare_positions",
	KindMinPosition:           "min_position",
	KindMaxPosition:           "max_position",
	KindMajorityParity:        "majority_parity",
	KindEvenCount:             "even_count",
	KindSumParity:             "sum_parity",
	KindFirstTwoSumVsConstant: "first_two_sum_vs_constant",
	KindMaxRepeat:             "max_repeat",
	KindSinglePair:            "single_pair",
	KindOrder:                 "order",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Comparison categories shared by the three-way rules.
const (
	Less    = -1
	Equal   = 0
	Greater = 1
)

// Order categories for KindOrder.
const (
	OrderNone = iota
	OrderAscending
	OrderDescending
)

// Rule is one entry of the library.
type Rule struct {
	ID          int    `json:"id"`
	Kind        Kind   `json:"-"`
	Pos         int    `json:"-"`
	Pos2        int    `json:"-"`
	Value       int    `json:"-"`
	Description string `json:"description"`
}

// library is indexed by id-1.
var library = [Count]Rule{
	{ID: 1, Kind: KindDigitVsConstant, Pos: 0, Value: 1, Description: "Compare the first digit with 1"},
	{ID: 2, Kind: KindDigitVsConstant, Pos: 0, Value: 3, Description: "Compare the first digit with 3"},
	{ID: 3, Kind: KindDigitVsConstant, Pos: 1, Value: 3, Description: "Compare the second digit with 3"},
	{ID: 4, Kind: KindDigitVsConstant, Pos: 1, Value: 4, Description: "Compare the second digit with 4"},
	{ID: 5, Kind: KindParityAt, Pos: 0, Description: "Check the parity of the first digit"},
	{ID: 6, Kind: KindParityAt, Pos: 1, Description: "Check the parity of the second digit"},
	{ID: 7, Kind: KindParityAt, Pos: 2, Description: "Check the parity of the third digit"},
	{ID: 8, Kind: KindCountOf, Value: 1, Description: "Count how many times the value 1 appears"},
	{ID: 9, Kind: KindCountOf, Value: 3, Description: "Count how many times the value 3 appears"},
	{ID: 10, Kind: KindCountOf, Value: 4, Description: "Count how many times the value 4 appears"},
	{ID: 11, Kind: KindComparePositions, Pos: 0, Pos2: 1, Description: "Compare the digits in positions 1 and 2"},
	{ID: 12, Kind: KindComparePositions, Pos: 0, Pos2: 2, Description: "Compare the digits in positions 1 and 3"},
	{ID: 13, Kind: KindComparePositions, Pos: 1, Pos2: 2, Description: "Compare the digits in positions 2 and 3"},
	{ID: 14, Kind: KindMinPosition, Description: "Determine which digit is the smallest"},
	{ID: 15, Kind: KindMaxPosition, Description: "Determine which digit is the largest"},
	{ID: 16, Kind: KindMajorityParity, Description: "Determine the most common parity"},
	{ID: 17, Kind: KindEvenCount, Description: "Count how many digits in the code are even"},
	{ID: 18, Kind: KindSumParity, Description: "Determine if the sum of the digits is even or odd"},
	{ID: 19, Kind: KindFirstTwoSumVsConstant, Value: 6, Description: "Compare the sum of the first two digits with 6"},
	{ID: 20, Kind: KindMaxRepeat, Description: "Determine if a digit in the code repeats, and if so, how many times"},
	{ID: 21, Kind: KindSinglePair, Description: "Determine if a digit appears exactly twice in the code"},
	{ID: 22, Kind: KindOrder, Description: "Determine if the three digits are in ascending or descending order"},
}

// Library returns every rule in id order. The slice is a copy.
func Library() []Rule {
	out := make([]Rule, Count)
	copy(out, library[:])
	return out
}

// Lookup returns the rule with the given id.
func Lookup(id int) (Rule, error) {
	if id < 1 || id > Count {
		return Rule{}, fmt.Errorf("%w: %d", ErrUnknownValidator, id)
	}
	return library[id-1], nil
}

// Check reports whether candidate and secret fall into the same category
// for this rule.
func (r Rule) Check(candidate, secret code.Code) bool {
	return r.Classify(candidate) == r.Classify(secret)
}

// Symmetric reports whether Check(a, b) == Check(b, a) for every pair of
// codes. All library rules classify each side independently, so this holds
// for every kind.
func (r Rule) Symmetric() bool {
	_, ok := kindNames[r.Kind]
	return ok
}

// Classify maps c to the category this rule compares.
func (r Rule) Classify(c code.Code) int {
	d := c.Digits()
	switch r.Kind {
	case KindDigitVsConstant:
		return compare(d[r.Pos], r.Value)
	case KindParityAt:
		return d[r.Pos] % 2
	case KindCountOf:
		return countOf(d, r.Value)
	case KindComparePositions:
		return compare(d[r.Pos], d[r.Pos2])
	case KindMinPosition:
		return extremumPosition(d, true)
	case KindMaxPosition:
		return extremumPosition(d, false)
	case KindMajorityParity:
		// odd count of 3 digits cannot tie
		if evenCount(d) >= 2 {
			return 0
		}
		return 1
	case KindEvenCount:
		return evenCount(d)
	case KindSumParity:
		return (d[0] + d[1] + d[2]) % 2
	case KindFirstTwoSumVsConstant:
		return compare(d[0]+d[1], r.Value)
	case KindMaxRepeat:
		return maxRepeat(d)
	case KindSinglePair:
		if hasSinglePair(d) {
			return 1
		}
		return 0
	case KindOrder:
		return order(d)
	}
	panic(fmt.Sprintf("validator: unhandled kind %v", r.Kind))
}

// ---------------------------------------------------------------------------

func compare(a, b int) int {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	}
	return Equal
}

func countOf(d [code.Length]int, v int) int {
	n := 0
	for _, x := range d {
		if x == v {
			n++
		}
	}
	return n
}

func evenCount(d [code.Length]int) int {
	n := 0
	for _, x := range d {
		if x%2 == 0 {
			n++
		}
	}
	return n
}

// extremumPosition scans left to right and only moves on a strict improvement,
// so ties resolve to the first occurrence.
func extremumPosition(d [code.Length]int, smallest bool) int {
	pos := 0
	for i := 1; i < len(d); i++ {
		if (smallest && d[i] < d[pos]) || (!smallest && d[i] > d[pos]) {
			pos = i
		}
	}
	return pos
}

func multiplicities(d [code.Length]int) [code.MaxDigit + 1]int {
	var counts [code.MaxDigit + 1]int
	for _, x := range d {
		counts[x]++
	}
	return counts
}

func maxRepeat(d [code.Length]int) int {
	best := 1
	for _, n := range multiplicities(d) {
		if n > best {
			best = n
		}
	}
	return best
}

func hasSinglePair(d [code.Length]int) bool {
	pair := false
	for _, n := range multiplicities(d) {
		switch {
		case n == 2:
			pair = true
		case n > 2:
			return false
		}
	}
	return pair
}

func order(d [code.Length]int) int {
	switch {
	case d[0] < d[1] && d[1] < d[2]:
		return OrderAscending
	case d[0] > d[1] && d[1] > d[2]:
		return OrderDescending
	}
	return OrderNone
}
