package propagator

// Sentinels returned by TranslateToNew for literals fixed by the partial
// assignment.
const (
	FixedTrue  Lit = NIL - 1
	FixedFalse Lit = NIL - 2
)

// An Extractor builds a reduced formula from a propagator holding a
// non-conflicting partial assignment. The reduced formula represents the
// problem of finding a satisfying assignment of the original formula that
// extends the partial assignment: satisfied clauses are dropped, false
// literals are removed from the remaining clauses, and the open variables
// are densely renumbered. Subsumed clauses are eliminated from the result.
//
// The zero value is ready for use; Extract may be called repeatedly,
// reusing the extractor's storage.
type Extractor struct {
	// truth of the pre-reduction literals under the trail
	oldLitTrue  []bool
	oldLitFalse []bool

	// literal maps between the pre- and post-reduction numbering
	newToOld []Lit
	oldToNew []Lit

	reduced [][]Lit
	buf     []Lit
}

// Extract computes the reduced formula of the given propagator.
func (e *Extractor) Extract(p *Propagator) {
	e.initExtraction(p)
	e.makeLiteralMaps()
	e.translateClauses(p)
	e.reduced = EliminateSubsumed(e.reduced, e.ReducedNumVars())
}

// ReducedClauses returns the clauses of the reduced formula.
func (e *Extractor) ReducedClauses() [][]Lit {
	return e.reduced
}

// ReducedNumVars returns the number of variables, post-reduction.
func (e *Extractor) ReducedNumVars() Var {
	return Var(len(e.newToOld) / 2)
}

// ReducedNumClauses returns the number of clauses, post-reduction.
func (e *Extractor) ReducedNumClauses() int {
	return len(e.reduced)
}

// TranslateToOld returns the pre-reduction literal corresponding to the
// given post-reduction literal.
func (e *Extractor) TranslateToOld(lnew Lit) Lit {
	return e.newToOld[lnew]
}

// TranslateToNew returns the post-reduction literal corresponding to the
// given pre-reduction literal, or FixedTrue/FixedFalse if the literal is
// fixed by the partial assignment.
func (e *Extractor) TranslateToNew(old Lit) Lit {
	return e.oldToNew[old]
}

func (e *Extractor) initExtraction(p *Propagator) {
	nl := 2 * int(p.NumVars())
	e.oldLitTrue = make([]bool, nl)
	e.oldLitFalse = make([]bool, nl)
	for _, l := range p.Trail() {
		e.oldLitTrue[l] = true
		e.oldLitFalse[l.Negation()] = true
	}
	e.newToOld = e.newToOld[:0]
	e.oldToNew = e.oldToNew[:0]
	e.reduced = e.reduced[:0]
}

func (e *Extractor) makeLiteralMaps() {
	lnew := Lit(0)
	for l := 0; l < len(e.oldLitTrue); l += 2 {
		switch {
		case e.oldLitTrue[l]:
			e.oldToNew = append(e.oldToNew, FixedTrue, FixedFalse)
		case e.oldLitFalse[l]:
			e.oldToNew = append(e.oldToNew, FixedFalse, FixedTrue)
		default:
			e.oldToNew = append(e.oldToNew, lnew, lnew+1)
			e.newToOld = append(e.newToOld, Lit(l), Lit(l+1))
			lnew += 2
		}
	}
}

func (e *Extractor) translateBinaries(p *Propagator) {
	for l1 := Lit(0); l1 < Lit(len(e.oldToNew)); l1++ {
		if e.oldLitFalse[l1] {
			// the partner literal is already assigned true
			continue
		}
		if e.oldLitTrue[l1] {
			// the clause is satisfied
			continue
		}
		for _, l2 := range p.BinaryPartnersOf(l1) {
			if e.oldLitTrue[l2] {
				continue
			}
			if l1 < l2 {
				e.reduced = append(e.reduced, []Lit{e.oldToNew[l1], e.oldToNew[l2]})
			}
		}
	}
}

func (e *Extractor) translateClause(lits []Lit) {
	e.buf = e.buf[:0]
	for _, l := range lits {
		if e.oldLitTrue[l] {
			return
		}
		if e.oldLitFalse[l] {
			continue
		}
		e.buf = append(e.buf, e.oldToNew[l])
	}
	e.reduced = append(e.reduced, append([]Lit(nil), e.buf...))
}

func (e *Extractor) translateClauses(p *Propagator) {
	// no need to translate unaries: they are fixed by the trail
	e.translateBinaries(p)
	for ref := p.FirstLongClause(); ref < p.LongClauseEnd(); ref = p.NextClause(ref) {
		e.translateClause(p.LitsOf(ref))
	}
}
