package propagator

// Subsumption elimination over a clause list, using an adaptive 1-watch
// scheme: every clause is watched under a single literal, and whenever it
// fails to subsume the clause under inspection it is re-watched under a
// literal witnessing that failure. If it subsumes a later clause, at least
// one of its literals occurs there, and the rotation eventually lands its
// watch on such a literal.

type subsumptionChecker struct {
	clauses  [][]Lit
	inClause *StampSet
	watching [][]ClauseRef
}

// EliminateSubsumed removes, in place, every clause that is subsumed by
// another clause of the list. Clauses are sequences of distinct literals
// over numVars variables; empty clauses act as deletion tombstones and are
// removed as well. The relative order of surviving clauses is preserved.
// The shortened list is returned; it shares the input's backing array.
func EliminateSubsumed(clauses [][]Lit, numVars Var) [][]Lit {
	sc := subsumptionChecker{
		clauses:  clauses,
		inClause: NewStampSet(2 * Lit(numVars)),
		watching: make([][]ClauseRef, 2*numVars),
	}
	sc.initWatches()
	return sc.removeSubsumed()
}

func (sc *subsumptionChecker) initWatches() {
	for i, clause := range sc.clauses {
		if len(clause) == 0 {
			continue
		}
		sc.watching[clause[0]] = append(sc.watching[clause[0]], ClauseRef(i))
	}
}

// walkWatchList checks the clauses watched under l against the stamped
// literals of the clause at index. It reports true if one of them subsumes
// the clause.
func (sc *subsumptionChecker) walkWatchList(index ClauseRef, l Lit) bool {
	watchList := sc.watching[l]
	out := 0
	subsumed := false
	for in := 0; in < len(watchList); in++ {
		cother := watchList[in]
		// we cannot subsume ourself. stay in the watch list.
		if cother == index {
			watchList[out] = cother
			out++
			continue
		}
		otherLits := sc.clauses[cother]
		// subsumed clauses do not participate in subsumption anymore; they
		// are dropped from watch lists without replacement when we encounter
		// them here.
		if len(otherLits) == 0 {
			continue
		}
		// find a replacement watch (must not be in the current clause)
		replacement := NIL
		for _, ol := range otherLits {
			if !sc.inClause.Contains(ol) {
				replacement = ol
				break
			}
		}
		if replacement == NIL {
			// cother subsumes us; keep the remaining watchers intact
			subsumed = true
			out += copy(watchList[out:], watchList[in:])
			break
		}
		// cother does not subsume us; re-watch it under the witness
		sc.watching[replacement] = append(sc.watching[replacement], cother)
	}
	sc.watching[l] = watchList[:out]
	return subsumed
}

func (sc *subsumptionChecker) emptyIfSubsumed(index ClauseRef) {
	clause := sc.clauses[index]
	sc.inClause.Assign(clause)
	for _, l := range clause {
		if sc.walkWatchList(index, l) {
			sc.clauses[index] = nil
			return
		}
	}
}

func (sc *subsumptionChecker) removeSubsumed() [][]Lit {
	for i := range sc.clauses {
		sc.emptyIfSubsumed(ClauseRef(i))
	}
	out := sc.clauses[:0]
	for _, clause := range sc.clauses {
		if len(clause) != 0 {
			out = append(out, clause)
		}
	}
	return out
}
