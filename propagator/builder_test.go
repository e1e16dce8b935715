package propagator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (b *Builder) numClauses() int {
	n := len(b.unaries) + len(b.longer)
	for _, partners := range b.binaries {
		n += len(partners)
	}
	return n
}

func TestBuilderAddVariable(t *testing.T) {
	b := &Builder{}
	x := b.AddVariable()
	y := b.AddVariable()
	require.Equal(t, Lit(0), x)
	require.Equal(t, Lit(2), y)
	require.EqualValues(t, 2, b.NumVars())
	b.ReserveVariables(5)
	require.EqualValues(t, 5, b.NumVars())
	b.ReserveVariables(3) // monotone: cannot shrink
	require.EqualValues(t, 5, b.NumVars())
}

func TestBuilderBumpsVariableCount(t *testing.T) {
	b := &Builder{}
	require.NoError(t, b.AddClause(IntToLit(5)))
	require.EqualValues(t, 5, b.NumVars())
	require.NoError(t, b.AddClause(IntToLit(-2), IntToLit(3)))
	require.EqualValues(t, 5, b.NumVars())
}

func TestBuilderTautologyDropped(t *testing.T) {
	b := &Builder{}
	x := b.AddVariable()
	y := b.AddVariable()
	before := b.numClauses()
	require.NoError(t, b.AddClause(x, x.Negation(), y))
	require.Equal(t, before, b.numClauses())
}

func TestBuilderSortsAndDeduplicates(t *testing.T) {
	b := &Builder{}
	x := b.AddVariable()
	y := b.AddVariable()
	z := b.AddVariable()
	require.NoError(t, b.AddClause(z, x, z, y, x))
	require.Len(t, b.longer, 1)
	require.Equal(t, []Lit{x, y, z}, b.longer[0])

	require.NoError(t, b.AddClause(y, x, y))
	require.Equal(t, []Lit{y}, b.binaries[x])
	require.Equal(t, []Lit{x}, b.binaries[y])

	require.NoError(t, b.AddClause(z, z))
	require.Equal(t, []Lit{z}, b.unaries)
}

func TestBuilderEmptyClauseIsUnsat(t *testing.T) {
	b := &Builder{}
	require.ErrorIs(t, b.AddClause(), ErrUnsat)
	require.ErrorIs(t, b.FinalizeClause(), ErrUnsat)
}

func TestBuilderStreaming(t *testing.T) {
	b := &Builder{}
	x := b.AddVariable()
	y := b.AddVariable()
	z := b.AddVariable()
	b.AddLiteral(x)
	b.AddLiterals(y, z)
	require.NoError(t, b.FinalizeClause())
	require.Len(t, b.longer, 1)
	require.Equal(t, []Lit{x, y, z}, b.longer[0])
}

func TestVerifyAssignment(t *testing.T) {
	_, model := waerden33(8)
	good := []bool{true, true, false, false, true, true, false, false}
	require.NoError(t, model.VerifyAssignment(good))

	bad := append([]bool(nil), good...)
	bad[0] = false
	err := model.VerifyAssignment(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not satisfied")

	require.Error(t, model.VerifyAssignment(good[:4]))
}

func TestVerifyTrail(t *testing.T) {
	vars, model := waerden33(8)
	good := []Lit{
		vars[1], vars[2], vars[3].Negation(), vars[4].Negation(),
		vars[5], vars[6], vars[7].Negation(), vars[8].Negation(),
	}
	require.NoError(t, model.VerifyTrail(good))

	require.Error(t, model.VerifyTrail(good[:5]))

	duplicated := append([]Lit(nil), good...)
	duplicated[7] = vars[1].Negation()
	err := model.VerifyTrail(duplicated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple times")

	foreign := append([]Lit(nil), good...)
	foreign[7] = IntToLit(9)
	err = model.VerifyTrail(foreign)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the model")
}

func TestVerifyTrailRejectsBadAssignment(t *testing.T) {
	vars, model := waerden33(8)
	bad := []Lit{
		vars[1], vars[2], vars[3], vars[4].Negation(),
		vars[5], vars[6], vars[7].Negation(), vars[8].Negation(),
	}
	require.Error(t, model.VerifyTrail(bad))
}
