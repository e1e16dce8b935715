package propagator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLitArithmetic(t *testing.T) {
	v := Var(3)
	pos := v.Lit()
	neg := v.NegLit()
	require.Equal(t, Lit(6), pos)
	require.Equal(t, Lit(7), neg)
	require.Equal(t, neg, pos.Negation())
	require.Equal(t, pos, neg.Negation())
	require.Equal(t, v, pos.Var())
	require.Equal(t, v, neg.Var())
	require.True(t, pos.IsPositive())
	require.False(t, pos.IsNegative())
	require.True(t, neg.IsNegative())
	require.False(t, neg.IsPositive())
	require.Equal(t, pos, pos.Abs())
	require.Equal(t, pos, neg.Abs())
}

func TestIntToLitRoundtrip(t *testing.T) {
	for i := 1; i <= 5; i++ {
		require.Equal(t, i, IntToLit(i).Int())
		require.Equal(t, -i, IntToLit(-i).Int())
		require.Equal(t, IntToLit(i).Negation(), IntToLit(-i))
	}
	require.Equal(t, Lit(0), IntToLit(1))
	require.Equal(t, Lit(1), IntToLit(-1))
	require.Equal(t, Lit(4), IntToLit(3))
	require.Equal(t, Lit(5), IntToLit(-3))
}

func TestIsTrueIn(t *testing.T) {
	assignment := []bool{true, false}
	require.True(t, Lit(0).IsTrueIn(assignment))
	require.False(t, Lit(1).IsTrueIn(assignment))
	require.False(t, Lit(2).IsTrueIn(assignment))
	require.True(t, Lit(3).IsTrueIn(assignment))
	require.True(t, Lit(1).IsFalseIn(assignment))
	require.False(t, Lit(3).IsFalseIn(assignment))
}

func TestVariableStateEncoding(t *testing.T) {
	var vs variableState
	vs.makeOpen()
	require.True(t, vs.isOpen())
	require.EqualValues(t, -1, vs.state(Lit(4)))
	require.True(t, vs.isOpenOrTrue(Lit(4)))
	require.False(t, vs.isTrue(Lit(4)))
	require.False(t, vs.isFalse(Lit(4)))

	vs.assign(7, Lit(4), 3) // variable 2 set true at level 3
	require.False(t, vs.isOpen())
	require.EqualValues(t, 3, vs.level())
	require.EqualValues(t, 7, vs.trailPos)
	require.EqualValues(t, 1, vs.state(Lit(4)))
	require.EqualValues(t, 0, vs.state(Lit(5)))
	require.True(t, vs.isTrue(Lit(4)))
	require.True(t, vs.isFalse(Lit(5)))
	require.True(t, vs.isOpenOrTrue(Lit(4)))
	require.False(t, vs.isOpenOrTrue(Lit(5)))

	vs.assign(2, Lit(5), 1) // variable 2 set false at level 1
	require.EqualValues(t, 1, vs.level())
	require.EqualValues(t, 0, vs.state(Lit(4)))
	require.EqualValues(t, 1, vs.state(Lit(5)))
}
