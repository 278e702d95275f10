package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/turing/internal/code"
	"github.com/robalobadob/turing/internal/validator"
)

func TestNew(t *testing.T) {
	t.Run("resolves validators in order", func(t *testing.T) {
		p, err := New(1, code.MustParse("241"), []int{4, 9, 11, 14}, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 9, 11, 14}, p.ValidatorIDs())
		assert.Equal(t, "241", p.Secret().String())
		assert.Equal(t, 1, p.Difficulty())
		assert.Equal(t, 2, p.Luck())
		assert.Len(t, p.Rules(), 4)
	})

	t.Run("rejects unknown ids", func(t *testing.T) {
		_, err := New(1, code.MustParse("241"), []int{4, 23}, 1, 1)
		assert.ErrorIs(t, err, validator.ErrUnknownValidator)
	})

	t.Run("rejects empty validator list", func(t *testing.T) {
		_, err := New(1, code.MustParse("241"), nil, 1, 1)
		assert.ErrorIs(t, err, ErrNoValidators)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := New(1, code.MustParse("241"), []int{4, 4}, 1, 1)
		assert.ErrorIs(t, err, ErrDuplicateValidator)
	})

	t.Run("rejects zero secret", func(t *testing.T) {
		_, err := New(1, code.Code{}, []int{4}, 1, 1)
		assert.ErrorIs(t, err, code.ErrInvalidFormat)
	})
}

func TestRuleSlot(t *testing.T) {
	p, err := New(1, code.MustParse("123"), []int{7, 1, 22}, 1, 1)
	require.NoError(t, err)

	r, slot, ok := p.Rule(22)
	require.True(t, ok)
	assert.Equal(t, 22, r.ID)
	assert.Equal(t, 2, slot)

	_, slot, ok = p.Rule(5)
	assert.False(t, ok)
	assert.Equal(t, -1, slot)
}

func TestValidate(t *testing.T) {
	p, err := New(1, code.MustParse("123"), []int{1}, 1, 1)
	require.NoError(t, err)

	ok, err := p.Validate(1, code.MustParse("114"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = p.Validate(2, code.MustParse("114"))
	assert.ErrorIs(t, err, ErrValidatorNotInSet)
}

func TestIsCorrectGuess(t *testing.T) {
	p, err := New(1, code.MustParse("555"), []int{1}, 1, 1)
	require.NoError(t, err)
	assert.True(t, p.IsCorrectGuess(code.MustParse("555")))
	assert.False(t, p.IsCorrectGuess(code.MustParse("554")))
}

func TestString(t *testing.T) {
	p, err := New(1, code.MustParse("123"), []int{1, 5}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t,
		"Problem { difficulty=3, luck=2, validators=[Compare the first digit with 1, Check the parity of the first digit] }",
		p.String())
}

func TestResolve(t *testing.T) {
	t.Run("all good", func(t *testing.T) {
		ps, err := Resolve([]Definition{
			{Number: 1, Secret: "241", Difficulty: 1, Luck: 1, ValidatorIDs: []int{4, 9}},
			{Number: 2, Secret: "314", Difficulty: 2, Luck: 1, ValidatorIDs: []int{2}},
		})
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, 2, ps[1].Number())
	})

	t.Run("bad secret names the problem and line", func(t *testing.T) {
		_, err := Resolve([]Definition{
			{Number: 1, Secret: "241", ValidatorIDs: []int{4}},
			{Number: 7, Line: 8, Secret: "941", ValidatorIDs: []int{4}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, code.ErrInvalidFormat)
		assert.Contains(t, err.Error(), "problem 7 (line 8)")
	})

	t.Run("unknown validator without a line", func(t *testing.T) {
		_, err := Resolve([]Definition{{Number: 3, Secret: "241", ValidatorIDs: []int{40}}})
		assert.ErrorIs(t, err, validator.ErrUnknownValidator)
		assert.Contains(t, err.Error(), "problem 3:")
	})
}

func TestDefinitionRoundTrip(t *testing.T) {
	d := Definition{Number: 4, Secret: "132", Difficulty: 2, Luck: 1, ValidatorIDs: []int{3, 7, 10}}
	p, err := FromDefinition(d)
	require.NoError(t, err)
	assert.Equal(t, d, p.Definition())
}
