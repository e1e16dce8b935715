package propagator

import "github.com/pkg/errors"

// Conflict analysis: first-UIP clause learning with recursive minimization,
// clause installation and backjumping, plus the reason-graph queries that
// explain which decisions support a literal or the current conflict.
//
// The per-variable and per-level stamps partition marks into three classes
// per analysis epoch: stampCounter marks "seen", stampCounter+1 marks
// "known redundant" (for variables) or "used at least twice" (for levels),
// and stampCounter+2 marks "known irredundant". The counter therefore
// advances by 3 per epoch.

// increaseStamp starts a new analysis epoch. On wrap-around all stamps are
// zeroed first.
func (p *Propagator) increaseStamp() uint32 {
	if p.stampCounter >= ^uint32(0)-6 {
		for i := range p.vars {
			p.vars[i].stamp = 0
		}
		for i := range p.levels {
			p.levels[i].stamp = 0
		}
		p.stampCounter = 0
	}
	p.stampCounter += 3
	return p.stampCounter
}

func (p *Propagator) stampLevel(level int32) {
	li := &p.levels[level]
	if li.stamp < p.stampCounter {
		li.stamp = p.stampCounter
	} else {
		li.stamp = p.stampCounter + 1
	}
}

// stampAndCount stamps the literals of one reason clause. Literals at the
// current level are counted; literals at lower non-zero levels stamp their
// level and enter the learn buffer.
func (p *Propagator) stampAndCount(level int32, lits []Lit) uint32 {
	var count uint32
	for _, l := range lits {
		vs := &p.vars[l.Var()]
		vlvl := vs.level()
		if vlvl >= level {
			if vs.stamp >= p.stampCounter {
				continue
			}
			count++
			vs.stamp = p.stampCounter
		} else {
			if vlvl <= 0 {
				continue
			}
			if vs.stamp < p.stampCounter {
				p.stampLevel(vlvl)
				p.learnBuf = append(p.learnBuf, l)
				vs.stamp = p.stampCounter
			}
		}
	}
	return count
}

// isRedundant checks whether the given variable is redundant in the learnt
// clause, i.e. whether its reason tree bottoms out in other learnt-clause
// literals and level-0 facts. Results are cached in the variable stamps.
func (p *Propagator) isRedundant(v Var) bool {
	vs := &p.vars[v]
	switch vs.stamp {
	case p.stampCounter + 1:
		return true
	case p.stampCounter + 2:
		return false
	}
	reason := p.reasons[vs.trailPos]
	if reason.length == 0 {
		vs.stamp = p.stampCounter + 2
		return false
	}
	for _, rl := range p.ReasonLits(reason) {
		rv := rl.Var()
		if rv == v {
			continue
		}
		rlvl := p.vars[rv].level()
		if rlvl == 0 {
			continue
		}
		rs := p.vars[rv].stamp
		if rs == p.stampCounter+2 {
			return false
		}
		if rs < p.stampCounter {
			if p.levels[rlvl].stamp < p.stampCounter || !p.isRedundant(rv) {
				return false
			}
		}
	}
	vs.stamp = p.stampCounter + 1
	return true
}

// filterRedundancies strengthens the learnt clause by removing redundant
// literals. The UIP is moved to the front first.
func (p *Propagator) filterRedundancies() {
	lb := p.learnBuf
	lb[0], lb[len(lb)-1] = lb[len(lb)-1], lb[0]
	out := 1
	for i := 1; i < len(lb); i++ {
		l := lb[i]
		vlvl := p.vars[l.Var()].level()
		redundant := vlvl == 0 ||
			(p.levels[vlvl].stamp == p.stampCounter+1 && p.isRedundant(l.Var()))
		if !redundant {
			lb[out] = l
			out++
		}
	}
	p.learnBuf = lb[:out]
}

// computeConflictClause computes the first-UIP conflict clause and leaves it
// in the learn buffer, UIP first.
func (p *Propagator) computeConflictClause() {
	p.increaseStamp()
	level := int32(len(p.levels) - 1)
	onCurrentLevel := p.stampAndCount(level, p.ReasonLits(p.conflictReason))
	ti := len(p.trail) - 1
	for onCurrentLevel > 1 {
		if p.vars[p.trail[ti].Var()].stamp >= p.stampCounter {
			onCurrentLevel += p.stampAndCount(level, p.ReasonLits(p.reasons[ti]))
			onCurrentLevel--
		}
		ti--
	}
	for p.vars[p.trail[ti].Var()].stamp < p.stampCounter {
		ti--
	}
	p.learnBuf = append(p.learnBuf, p.trail[ti].Negation())
	p.filterRedundancies()
}

// targetLevel computes the backjump level: the maximum level among the
// non-UIP literals of the learnt clause, or 0 for a unit clause.
func (p *Propagator) targetLevel() (int32, Lit) {
	targetLevel := int32(0)
	targetLit := p.learnBuf[0]
	for _, l := range p.learnBuf[1:] {
		if lvl := p.vars[l.Var()].level(); lvl > targetLevel {
			targetLevel = lvl
			targetLit = l
		}
	}
	return targetLevel, targetLit
}

// jumpbackToTarget rolls back to the target level. The conflicting level is
// undone silently; all further levels are reported to the handler.
func (p *Propagator) jumpbackToTarget(handler AssignmentHandler) (int32, Lit) {
	tlvl, tlit := p.targetLevel()
	p.rollbackLevel(handler, false)
	for int32(len(p.levels)) > tlvl+1 {
		p.rollbackLevel(handler, true)
	}
	p.queueHead = len(p.trail)
	return tlvl, tlit
}

// insertConflictClause installs the learnt clause into the clause database
// and returns its reference if it went into the arena.
func (p *Propagator) insertConflictClause() ClauseRef {
	switch len(p.learnBuf) {
	case 1:
		p.unaries = append(p.unaries, p.learnBuf[0])
		return nilRef
	case 2:
		l1, l2 := p.learnBuf[0], p.learnBuf[1]
		p.binaries[l1] = append(p.binaries[l1], l2)
		p.binaries[l2] = append(p.binaries[l2], l1)
		return nilRef
	default:
		ref := ClauseRef(len(p.arena) + 1)
		p.arena = append(p.arena, Lit(len(p.learnBuf)))
		p.arena = append(p.arena, p.learnBuf...)
		return ref
	}
}

// newWatch installs watches on a freshly learnt long clause: the UIP stays at
// position 0 and the target literal is swapped into position 1.
func (p *Propagator) newWatch(learnt, targetLit Lit, ref ClauseRef) {
	lits := p.LitsOf(ref)
	for i := 1; i < len(lits); i++ {
		if lits[i] == targetLit {
			lits[1], lits[i] = lits[i], lits[1]
			break
		}
	}
	p.watchers[learnt] = append(p.watchers[learnt], watcher{blocker: targetLit, clause: ref})
	p.watchers[targetLit] = append(p.watchers[targetLit], watcher{blocker: learnt, clause: ref})
}

// handleConflictClause installs the learnt clause, backjumps and asserts the
// UIP at the target level with the learnt clause as its reason.
func (p *Propagator) handleConflictClause(handler AssignmentHandler) {
	crefIfLong := p.insertConflictClause()
	tlvl, tlit := p.jumpbackToTarget(handler)
	learnt := p.learnBuf[0]
	vs := &p.vars[learnt.Var()]
	switch len(p.learnBuf) {
	case 1:
		p.assignAt(vs, tlvl, learnt, unaryReason(learnt))
	case 2:
		p.assignAt(vs, tlvl, learnt, binaryReason(learnt, p.learnBuf[1]))
	default:
		p.assignAt(vs, tlvl, learnt, clauseReason(ClauseLen(len(p.learnBuf)), crefIfLong))
		p.newWatch(learnt, tlit, crefIfLong)
	}
	p.learnBuf = p.learnBuf[:0]
}

// ResolveConflicts resolves the current conflict by learning a clause and
// jumping back to the appropriate decision level, then repeats if propagating
// the learnt clause conflicts again. It reports true once a non-conflicting
// state is reached, and false on a conflict at level 0 (the formula is
// unsatisfiable). Without a conflict it is a no-op reporting true.
func (p *Propagator) ResolveConflicts() bool {
	return p.ResolveConflictsHandled(noopHandler{})
}

// ResolveConflictsHandled is ResolveConflicts with change notifications.
//
// All assignments on the conflicting level are undone because its decision
// led to the conflict; this is NOT reported to the handler. Assignments on
// lower levels that are undone by the backjump, and assignments forced at or
// below the target level, ARE reported. If propagation after the backjump
// conflicts again, the assignments of the target level that precede the
// learnt assertion are reported as undone and the new conflict is resolved
// recursively; the learnt assertion and its consequences are not reported.
func (p *Propagator) ResolveConflictsHandled(handler AssignmentHandler) bool {
	if !p.conflicting {
		return true
	}
	if len(p.levels) == 1 {
		return false
	}
	p.computeConflictClause()
	p.handleConflictClause(handler)
	p.resetConflict()
	tsize := p.queueHead
	lbegin := int(p.levels[len(p.levels)-1].begin)
	if !p.Propagate() {
		for cpos := tsize - 1; cpos >= lbegin; cpos-- {
			handler.AssignmentUndone(p.trail[cpos])
		}
		return p.ResolveConflictsHandled(handler)
	}
	for _, l := range p.trail[tsize:] {
		handler.AssignmentForced(l)
	}
	return true
}

// ResolveOrError is ResolveConflicts returning ErrUnsat instead of false.
func (p *Propagator) ResolveOrError() error {
	if !p.ResolveConflicts() {
		return errors.Wrap(ErrUnsat, "conflict at level 0")
	}
	return nil
}

// DecisionsLeadingTo returns the (level, literal) pairs of the decisions
// whose consequences include l. For a decision literal the result is the
// literal itself. The returned slice is reused by subsequent calls.
// Calling it on a conflicting propagator or with an open literal panics.
func (p *Propagator) DecisionsLeadingTo(l Lit) []LevelLit {
	if p.conflicting {
		panic("DecisionsLeadingTo called on a conflicting propagator")
	}
	if p.IsOpen(l) {
		panic("DecisionsLeadingTo called with an open literal")
	}
	p.decisionsBuf = p.decisionsBuf[:0]
	reason := p.reasons[p.TrailIndex(l)]
	if reason.length == 0 {
		p.decisionsBuf = append(p.decisionsBuf, LevelLit{p.DecisionLevel(l), l})
		return p.decisionsBuf
	}
	current := p.increaseStamp()
	for _, lr := range p.ReasonLits(reason) {
		if lr != l {
			p.vars[lr.Var()].stamp = current
			p.learnBuf = append(p.learnBuf, lr.Negation())
		}
	}
	p.bfsReasons(current)
	p.learnBuf = p.learnBuf[:0]
	return p.decisionsBuf
}

// DecisionsLeadingToConflict returns the (level, literal) pairs of the
// decisions that led to the current conflict. The returned slice is reused
// by subsequent calls. Calling it without a conflict panics.
func (p *Propagator) DecisionsLeadingToConflict() []LevelLit {
	if !p.conflicting {
		panic("DecisionsLeadingToConflict called on a non-conflicting propagator")
	}
	p.decisionsBuf = p.decisionsBuf[:0]
	current := p.increaseStamp()
	for _, lr := range p.ReasonLits(p.conflictReason) {
		if lr != p.conflictLit {
			p.vars[lr.Var()].stamp = current
			p.learnBuf = append(p.learnBuf, lr.Negation())
		}
	}
	p.vars[p.conflictLit.Var()].stamp = current
	lc := p.conflictLit.Negation()
	for _, lr := range p.ReasonLits(p.GetReason(lc)) {
		if p.vars[lr.Var()].stamp != current {
			p.vars[lr.Var()].stamp = current
			p.learnBuf = append(p.learnBuf, lr.Negation())
		}
	}
	p.bfsReasons(current)
	p.learnBuf = p.learnBuf[:0]
	return p.decisionsBuf
}

// bfsReasons performs a breadth-first reverse walk through the reasons of the
// literals queued in the learn buffer, collecting supporting decisions.
func (p *Propagator) bfsReasons(currentStamp uint32) {
	for pos := 0; pos < len(p.learnBuf); pos++ {
		next := p.learnBuf[pos]
		tindex := p.TrailIndex(next)
		if p.reasons[tindex].length == 0 {
			p.decisionsBuf = append(p.decisionsBuf, LevelLit{p.DecisionLevel(next), next})
			continue
		}
		for _, lr := range p.ReasonLits(p.reasons[tindex]) {
			if lr == next {
				continue
			}
			if vs := &p.vars[lr.Var()]; vs.stamp != currentStamp {
				vs.stamp = currentStamp
				p.learnBuf = append(p.learnBuf, lr.Negation())
			}
		}
	}
}
