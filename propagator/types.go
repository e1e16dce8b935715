package propagator

// Basic types and literal arithmetic used throughout the package.

// A Var is a 0-based variable index.
type Var uint32

// A Lit is an internal literal. The least significant bit is the polarity:
// even values are positive literals, odd values are negative ones.
// Variable v thus owns the two literals 2*v and 2*v+1.
type Lit uint32

// A ClauseRef identifies a clause of length >= 3 in the clause arena.
// It is the arena index of the clause's first literal; the length header
// sits immediately before it, at index ref-1.
type ClauseRef uint32

// A ClauseLen holds the length of a clause, in literals.
type ClauseLen uint32

// NIL denotes "no literal". It is also used for unset variable/trail indices.
const NIL Lit = ^Lit(0)

// nilRef denotes "no clause" for short reasons that embed their literals.
const nilRef ClauseRef = ^ClauseRef(0)

// IntToLit converts a DIMACS literal to a Lit.
// The DIMACS literal -3 is encoded as 2*(3-1)+1 = 5.
func IntToLit(i int) Lit {
	if i < 0 {
		return Lit(2*(-i-1) + 1)
	}
	return Lit(2 * (i - 1))
}

// Int returns the DIMACS literal equivalent to l.
func (l Lit) Int() int {
	res := int(l>>1) + 1
	if l.IsNegative() {
		return -res
	}
	return res
}

// Negation returns the literal with the opposite polarity.
func (l Lit) Negation() Lit {
	return l ^ 1
}

// Var returns the variable of l.
func (l Lit) Var() Var {
	return Var(l >> 1)
}

// IsPositive reports whether l is a positive literal.
func (l Lit) IsPositive() bool {
	return l&1 == 0
}

// IsNegative reports whether l is a negative literal.
func (l Lit) IsNegative() bool {
	return l&1 == 1
}

// Abs returns the positive literal of l's variable.
func (l Lit) Abs() Lit {
	return l &^ 1
}

// Lit returns the positive literal of v.
func (v Var) Lit() Lit {
	return Lit(v << 1)
}

// NegLit returns the negative literal of v.
func (v Var) NegLit() Lit {
	return Lit(v<<1) | 1
}

// IsTrueIn reports whether l is true under the given assignment bit-vector.
func (l Lit) IsTrueIn(assignment []bool) bool {
	return assignment[l.Var()] == l.IsPositive()
}

// IsFalseIn reports whether l is false under the given assignment bit-vector.
func (l Lit) IsFalseIn(assignment []bool) bool {
	return !l.IsTrueIn(assignment)
}
