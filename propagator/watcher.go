package propagator

// A watcher pairs a clause reference with a blocker literal from that clause.
// If the blocker is already true the clause is known satisfied and the arena
// access is skipped entirely. Each clause of length >= 3 watches two
// literals; these are kept at positions 0 and 1 of the clause.
type watcher struct {
	blocker Lit
	clause  ClauseRef
}

// Propagate drains the propagation queue against the tail of the trail until
// quiescence. It should not be necessary to call this manually.
// It reports false iff a conflict was found.
func (p *Propagator) Propagate() bool {
	if p.conflicting {
		return false
	}
	for p.queueHead < len(p.trail) {
		prop := p.trail[p.queueHead]
		p.queueHead++
		if !p.propagateLit(prop) {
			return false
		}
	}
	return true
}

// propagateLit propagates one newly true literal, binary clauses first.
// Both phases share the trail queue, so consequences found by the binary
// phase are picked up in queue order.
func (p *Propagator) propagateLit(ltrue Lit) bool {
	if !p.propagateBinaries(ltrue) {
		return false
	}
	return p.propagateLonger(ltrue)
}

// propagateBinary handles a single binary clause {lfalse, other} where lfalse
// was just falsified. It reports false on conflict.
func (p *Propagator) propagateBinary(lfalse, other Lit, level int32) bool {
	vs := &p.vars[other.Var()]
	if vs.isOpen() {
		p.assignAt(vs, level, other, binaryReason(lfalse, other))
	} else if vs.isFalse(other) {
		p.conflicting = true
		p.conflictReason = binaryReason(lfalse, other)
		p.conflictLit = other
		return false
	}
	return true
}

func (p *Propagator) propagateBinaries(ltrue Lit) bool {
	lfalse := ltrue.Negation()
	level := int32(len(p.levels) - 1)
	for _, other := range p.binaries[lfalse] {
		if !p.propagateBinary(lfalse, other, level) {
			return false
		}
	}
	return true
}

// propagateLonger walks the watch list of the literal falsified by ltrue.
// Every watched clause must either turn out satisfied, find a replacement
// watch among its remaining literals, become unit (forcing its other watched
// literal), or raise a conflict. The list is compacted in place; surviving
// watchers keep their relative order.
func (p *Propagator) propagateLonger(ltrue Lit) bool {
	lfalse := ltrue.Negation()
	level := int32(len(p.levels) - 1)
	ws := p.watchers[lfalse]
	out := 0
	for in := 0; in < len(ws); in++ {
		w := ws[in]
		if p.IsTrue(w.blocker) {
			ws[out] = w
			out++
			continue
		}
		lits := p.LitsOf(w.clause)
		if lits[0] == lfalse {
			// make it so lfalse is in lits[1]
			lits[0], lits[1] = lits[1], lits[0]
		}
		// check the other watched literal (if it is not the blocker) as new
		// blocker
		first := lits[0]
		newWatcher := watcher{blocker: first, clause: w.clause}
		firstState := &p.vars[first.Var()]
		if first != w.blocker && firstState.isTrue(first) {
			ws[out] = newWatcher
			out++
			continue
		}
		// search the rest of the clause for an open or true literal
		replacement := -1
		for i := 2; i < len(lits); i++ {
			if p.vars[lits[i].Var()].isOpenOrTrue(lits[i]) {
				replacement = i
				break
			}
		}
		if replacement >= 0 {
			// found a replacement; move it to lits[1], watch it there and
			// drop the watcher from this list
			repl := lits[replacement]
			lits[1] = repl
			lits[replacement] = lfalse
			p.watchers[repl] = append(p.watchers[repl], newWatcher)
			continue
		}
		// clause is unit on first
		ws[out] = newWatcher
		out++
		reason := clauseReason(ClauseLen(len(lits)), w.clause)
		if firstState.isFalse(first) {
			p.conflicting = true
			p.conflictLit = first
			p.conflictReason = reason
			out += copy(ws[out:], ws[in+1:])
			break
		}
		p.assignAt(firstState, level, first, reason)
	}
	p.watchers[lfalse] = ws[:out]
	return !p.conflicting
}
