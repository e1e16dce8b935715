package propagator

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrUnsat signals a trivially unsatisfiable model: an empty clause was added
// to a Builder, or a conflict was met at decision level 0.
var ErrUnsat = errors.New("model is unsatisfiable")

// A Builder accumulates the clauses of a SAT formula and is used to
// initialize a Propagator. The zero value is an empty model.
//
// Clauses are normalized on finalization: literals are sorted and
// deduplicated, tautological clauses are dropped, and the variable count is
// bumped past the largest variable mentioned. Clauses are then routed into
// one of three buckets by length (unary, binary, longer).
type Builder struct {
	currentLit Lit // next fresh positive literal, i.e. 2 * number of vars
	unaries    []Lit
	binaries   [][]Lit
	longer     [][]Lit
	buf        []Lit
}

// AddVariable allocates a fresh variable and returns its positive literal.
// Manually adding variables is not necessary; adding a clause automatically
// raises the variable count past the largest variable used.
func (b *Builder) AddVariable() Lit {
	result := b.currentLit
	b.currentLit += 2
	return result
}

// ReserveVariables ensures that the model has at least n variables.
func (b *Builder) ReserveVariables(n Var) {
	if nl := Lit(2 * n); nl > b.currentLit {
		b.currentLit = nl
	}
}

// NumVars returns the number of variables in the model.
func (b *Builder) NumVars() Var {
	return b.currentLit.Var()
}

// AddClause adds the given literals to the current clause and finalizes it.
// Finalizing an empty clause returns ErrUnsat: the model cannot be satisfied.
func (b *Builder) AddClause(lits ...Lit) error {
	b.buf = append(b.buf, lits...)
	return b.finalize()
}

// AddLiteral adds a single literal to the current clause.
func (b *Builder) AddLiteral(l Lit) {
	b.buf = append(b.buf, l)
}

// AddLiterals adds several literals to the current clause.
func (b *Builder) AddLiterals(lits ...Lit) {
	b.buf = append(b.buf, lits...)
}

// FinalizeClause finalizes the current clause and adds it to the model.
// Finalizing an empty clause returns ErrUnsat.
func (b *Builder) FinalizeClause() error {
	return b.finalize()
}

// finalize normalizes the buffered clause and routes it into a bucket.
func (b *Builder) finalize() error {
	if len(b.buf) == 0 {
		return ErrUnsat
	}
	sort.Slice(b.buf, func(i, j int) bool { return b.buf[i] < b.buf[j] })
	out := 1
	for i := 1; i < len(b.buf); i++ {
		if b.buf[i] != b.buf[out-1] {
			b.buf[out] = b.buf[i]
			out++
		}
	}
	b.buf = b.buf[:out]
	for i := 1; i < len(b.buf); i++ {
		if b.buf[i-1].Negation() == b.buf[i] {
			b.buf = b.buf[:0]
			return nil // clause is a tautology
		}
	}
	if last := b.buf[len(b.buf)-1]; last >= b.currentLit {
		b.currentLit = last.Abs() + 2
	}
	switch len(b.buf) {
	case 1:
		b.unaries = append(b.unaries, b.buf[0])
	case 2:
		b.addBinary(b.buf[0], b.buf[1])
	default:
		b.longer = append(b.longer, append([]Lit(nil), b.buf...))
	}
	b.buf = b.buf[:0]
	return nil
}

func (b *Builder) addBinary(l1, l2 Lit) {
	// grown by appending to keep the exponential growth of the slice
	for Lit(len(b.binaries)) < b.currentLit {
		b.binaries = append(b.binaries, nil)
	}
	b.binaries[l1] = append(b.binaries[l1], l2)
	b.binaries[l2] = append(b.binaries[l2], l1)
}

// VerifyTrail checks that the given full trail is a valid assignment for the
// model. It returns nil if the trail satisfies every clause, or an error
// identifying the malformed part or unsatisfied clause.
func (b *Builder) VerifyTrail(fullTrail []Lit) error {
	n := b.NumVars()
	if Var(len(fullTrail)) != n {
		return errors.Errorf("trail has wrong length: expected %d, got %d", n, len(fullTrail))
	}
	seen := make([]bool, n)
	assignment := make([]bool, n)
	for _, l := range fullTrail {
		if l.Var() >= n {
			return errors.Errorf("trail contains variable %d which is not in the model", l.Var())
		}
		if seen[l.Var()] {
			return errors.Errorf("trail contains variable %d multiple times", l.Var())
		}
		seen[l.Var()] = true
		if l.IsPositive() {
			assignment[l.Var()] = true
		}
	}
	return b.VerifyAssignment(assignment)
}

// VerifyAssignment checks that the given assignment bit-vector satisfies
// every clause of the model. It returns nil on success, or an error
// identifying an unsatisfied clause.
func (b *Builder) VerifyAssignment(assignment []bool) error {
	n := b.NumVars()
	if Var(len(assignment)) != n {
		return errors.Errorf("assignment has wrong length: expected %d, got %d", n, len(assignment))
	}
	for _, l := range b.unaries {
		if l.IsFalseIn(assignment) {
			return errors.Errorf("unary clause {%d} is not satisfied in assignment", l)
		}
	}
	for i := range b.binaries {
		l1 := Lit(i)
		if l1.IsTrueIn(assignment) {
			continue
		}
		for _, l2 := range b.binaries[l1] {
			if l2.IsFalseIn(assignment) {
				return errors.Errorf("binary clause {%d %d} is not satisfied in assignment", l1, l2)
			}
		}
	}
	for _, clause := range b.longer {
		satisfied := false
		for _, l := range clause {
			if l.IsTrueIn(assignment) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return errors.Errorf("longer clause %v is not satisfied in assignment", clause)
		}
	}
	return nil
}
