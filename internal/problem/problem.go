// internal/problem/problem.go
//
// A Problem is one playable puzzle: a secret code, the ordered validators a
// player may probe it with, and the difficulty/luck metadata from the source.
//
// Problems are immutable. They are built from Definitions (the raw records
// a Repository yields) by Resolve, which fails fast on the first bad record
// and names it so a malformed source never silently shrinks the play set.

package problem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robalobadob/turing/internal/code"
	"github.com/robalobadob/turing/internal/validator"
)

var (
	ErrNoValidators       = errors.New("problem has no validators")
	ErrDuplicateValidator = errors.New("validator assigned twice")
	ErrValidatorNotInSet  = errors.New("validator not assigned to this problem")
)

// Definition is the repository record for one problem.
type Definition struct {
	Number       int    // problem number from the source
	Line         int    // source line, 0 when the source has no lines
	Secret       string // wire format, e.g. "241"
	Difficulty   int
	Luck         int
	ValidatorIDs []int
}

// Problem is a resolved, validated Definition.
type Problem struct {
	number     int
	secret     code.Code
	rules      []validator.Rule
	difficulty int
	luck       int
}

// New validates the secret and resolves ids against the validator library.
func New(number int, secret code.Code, ids []int, difficulty, luck int) (Problem, error) {
	if secret.IsZero() {
		return Problem{}, code.ErrInvalidFormat
	}
	if len(ids) == 0 {
		return Problem{}, ErrNoValidators
	}
	seen := make(map[int]bool, len(ids))
	rules := make([]validator.Rule, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return Problem{}, fmt.Errorf("%w: %d", ErrDuplicateValidator, id)
		}
		seen[id] = true
		r, err := validator.Lookup(id)
		if err != nil {
			return Problem{}, err
		}
		rules = append(rules, r)
	}
	return Problem{
		number:     number,
		secret:     secret,
		rules:      rules,
		difficulty: difficulty,
		luck:       luck,
	}, nil
}

// FromDefinition parses and resolves a single record.
func FromDefinition(d Definition) (Problem, error) {
	secret, err := code.Parse(strings.TrimSpace(d.Secret))
	if err != nil {
		return Problem{}, err
	}
	return New(d.Number, secret, d.ValidatorIDs, d.Difficulty, d.Luck)
}

// Resolve turns every Definition into a Problem, stopping at the first
// failure.
func Resolve(defs []Definition) ([]Problem, error) {
	out := make([]Problem, 0, len(defs))
	for _, d := range defs {
		p, err := FromDefinition(d)
		if err != nil {
			if d.Line > 0 {
				return nil, fmt.Errorf("problem %d (line %d): %w", d.Number, d.Line, err)
			}
			return nil, fmt.Errorf("problem %d: %w", d.Number, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (p Problem) Number() int       { return p.number }
func (p Problem) Secret() code.Code { return p.secret }
func (p Problem) Difficulty() int   { return p.difficulty }
func (p Problem) Luck() int         { return p.luck }

// Rules returns the assigned validators in problem order.
func (p Problem) Rules() []validator.Rule {
	out := make([]validator.Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// ValidatorIDs returns the assigned validator ids in problem order.
func (p Problem) ValidatorIDs() []int {
	out := make([]int, len(p.rules))
	for i, r := range p.rules {
		out[i] = r.ID
	}
	return out
}

// Rule finds an assigned validator and its slot in problem order.
func (p Problem) Rule(id int) (validator.Rule, int, bool) {
	for i, r := range p.rules {
		if r.ID == id {
			return r, i, true
		}
	}
	return validator.Rule{}, -1, false
}

// Validate evaluates an assigned validator against the secret.
func (p Problem) Validate(id int, candidate code.Code) (bool, error) {
	r, _, ok := p.Rule(id)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrValidatorNotInSet, id)
	}
	return r.Check(candidate, p.secret), nil
}

// IsCorrectGuess reports whether guess is the secret.
func (p Problem) IsCorrectGuess(guess code.Code) bool {
	return guess.Equal(p.secret)
}

// Definition converts back to the repository record.
func (p Problem) Definition() Definition {
	return Definition{
		Number:       p.number,
		Secret:       p.secret.String(),
		Difficulty:   p.difficulty,
		Luck:         p.luck,
		ValidatorIDs: p.ValidatorIDs(),
	}
}

func (p Problem) String() string {
	desc := make([]string, len(p.rules))
	for i, r := range p.rules {
		desc[i] = r.Description
	}
	return fmt.Sprintf("Problem { difficulty=%d, luck=%d, validators=[%s] }",
		p.difficulty, p.luck, strings.Join(desc, ", "))
}
