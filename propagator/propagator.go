package propagator

import "sort"

// A Propagator owns a clause database, a backtrackable trail with decision
// levels, and per-literal watch lists. It performs unit propagation after
// every decision and resolves conflicts by learning a first-UIP clause and
// backjumping. It has no search heuristic of its own: callers drive it with
// PushLevel, ResolveConflicts and PopLevel.
type Propagator struct {
	// clause database
	unaries  []Lit
	binaries [][]Lit // for each literal, its partners in binary clauses
	arena    []Lit   // longer clauses: a length header followed by the literals
	numVars  Var

	// variable and watch state
	vars     []variableState
	watchers [][]watcher

	// trail
	trail     []Lit
	reasons   []Reason
	levels    []levelInfo
	queueHead int // index of the next trail literal to propagate on

	// conflict information
	conflictReason Reason
	conflictLit    Lit
	stampCounter   uint32
	conflicting    bool

	// scratch buffers
	learnBuf     []Lit
	decisionsBuf []LevelLit
}

// A LevelLit pairs a decision literal with the level at which it was decided.
type LevelLit struct {
	Level int32
	Lit   Lit
}

// An AssignmentHandler is notified of assignments undone and forced while a
// conflict is resolved. Handlers must not re-enter the Propagator.
type AssignmentHandler interface {
	AssignmentUndone(Lit)
	AssignmentForced(Lit)
}

type noopHandler struct{}

func (noopHandler) AssignmentUndone(Lit) {}
func (noopHandler) AssignmentForced(Lit) {}

// NewPropagator creates a propagator from the given model. The builder is
// left intact and can still be used for verification. All unary clauses and
// their consequences are asserted at level 0 before the call returns; if that
// already produces a conflict the model is unsatisfiable and IsConflicting
// reports true.
func NewPropagator(model *Builder) *Propagator {
	p := &Propagator{
		unaries:        append([]Lit(nil), model.unaries...),
		numVars:        model.NumVars(),
		levels:         []levelInfo{{}},
		conflictReason: decisionReason(),
		conflictLit:    NIL,
	}
	p.vars = make([]variableState, p.numVars)
	for i := range p.vars {
		p.vars[i].valueCode = -1
		p.vars[i].trailPos = ^uint32(0)
	}
	p.processShortClauses(model.binaries)
	p.importLargeClauses(model.longer)
	p.initWatches()
	if !p.conflicting {
		p.Propagate()
	}
	return p
}

// processShortClauses copies, sorts and deduplicates the binary partner
// lists, one per literal.
func (p *Propagator) processShortClauses(src [][]Lit) {
	p.binaries = make([][]Lit, 2*p.numVars)
	for l, partners := range src {
		if len(partners) == 0 {
			continue
		}
		list := append([]Lit(nil), partners...)
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		out := 1
		for i := 1; i < len(list); i++ {
			if list[i] != list[out-1] {
				list[out] = list[i]
				out++
			}
		}
		p.binaries[l] = list[:out]
	}
}

// importLargeClauses writes the longer clauses into the arena.
func (p *Propagator) importLargeClauses(clauses [][]Lit) {
	total := 0
	for _, clause := range clauses {
		total += len(clause) + 1
	}
	p.arena = make([]Lit, 0, total+total/2)
	for _, clause := range clauses {
		p.arena = append(p.arena, Lit(len(clause)))
		p.arena = append(p.arena, clause...)
	}
}

// assignAtZero asserts the given literal at decision level 0.
// It reports false if this produces a conflict.
func (p *Propagator) assignAtZero(forcedTrue Lit) bool {
	vs := &p.vars[forcedTrue.Var()]
	if vs.isOpen() {
		vs.assign(uint32(len(p.trail)), forcedTrue, 0)
		p.trail = append(p.trail, forcedTrue)
		p.reasons = append(p.reasons, unaryReason(forcedTrue))
	} else if vs.isFalse(forcedTrue) {
		p.conflicting = true
		return false
	}
	return true
}

// assignAt asserts the given literal at the given level with the given reason.
func (p *Propagator) assignAt(vs *variableState, level int32, literal Lit, reason Reason) {
	vs.assign(uint32(len(p.trail)), literal, level)
	p.trail = append(p.trail, literal)
	p.reasons = append(p.reasons, reason)
}

func (p *Propagator) initUnaries() {
	for _, forcedTrue := range p.unaries {
		if !p.assignAtZero(forcedTrue) {
			p.conflicting = true
			return
		}
	}
}

// initBinaryWatches asserts the partners of literals already false at level 0.
// Binary clauses are not watched; propagation walks the partner lists instead.
func (p *Propagator) initBinaryWatches() {
	for l := Lit(0); l < 2*Lit(p.numVars); l++ {
		if p.vars[l.Var()].isFalse(l) {
			for _, partner := range p.binaries[l] {
				p.unaries = append(p.unaries, partner)
				if !p.assignAtZero(partner) {
					return
				}
			}
		}
	}
}

// watchLongClauseOnConstruction classifies a long clause under the level-0
// assignment: satisfied clauses are retained but not watched, violated ones
// set the conflict flag, forcing ones become unaries, and all others get
// their two open literals swapped to the front and mutually watched.
func (p *Propagator) watchLongClauseOnConstruction(ref ClauseRef) {
	lits := p.LitsOf(ref)
	var open [2]int
	nws := 0
	for i, l := range lits {
		s := p.vars[l.Var()].state(l)
		if s == 1 {
			// satisfied at level 0 - ignored, not watched
			return
		}
		if s == -1 && nws < 2 {
			open[nws] = i
			nws++
		}
	}
	if nws == 0 {
		// violated at level 0 - conflict, UNSAT
		p.conflicting = true
		p.conflictReason = clauseReason(ClauseLen(len(lits)), ref)
		return
	}
	if nws == 1 {
		// forcing at level 0 - add unary, do not watch
		forcedTrue := lits[open[0]]
		p.unaries = append(p.unaries, forcedTrue)
		p.assignAtZero(forcedTrue)
		return
	}
	lits[0], lits[open[0]] = lits[open[0]], lits[0]
	lits[1], lits[open[1]] = lits[open[1]], lits[1]
	w1, w2 := lits[0], lits[1]
	p.watchers[w1] = append(p.watchers[w1], watcher{blocker: w2, clause: ref})
	p.watchers[w2] = append(p.watchers[w2], watcher{blocker: w1, clause: ref})
}

func (p *Propagator) initWatches() {
	p.initUnaries()
	if p.conflicting {
		return
	}
	p.watchers = make([][]watcher, 2*p.numVars)
	for ref := p.FirstLongClause(); ref < p.LongClauseEnd(); ref = p.NextClause(ref) {
		p.watchLongClauseOnConstruction(ref)
		if p.conflicting {
			return
		}
	}
	p.initBinaryWatches()
}

// -------- CLAUSE AND LITERAL ACCESS --------

// LitsOf returns the literals of a clause of length >= 3. The returned slice
// is a view into the clause arena; the first two entries are the watched
// literals and are repositioned as watches move.
func (p *Propagator) LitsOf(ref ClauseRef) []Lit {
	return p.arena[ref : ref+ClauseRef(p.arena[ref-1])]
}

// ClauseLength returns the length of the given clause, in literals.
func (p *Propagator) ClauseLength(ref ClauseRef) ClauseLen {
	return ClauseLen(p.arena[ref-1])
}

// NextClause returns the reference of the clause following ref in the arena.
func (p *Propagator) NextClause(ref ClauseRef) ClauseRef {
	return ref + ClauseRef(p.arena[ref-1]) + 1
}

// FirstLongClause returns the reference of the first clause of length >= 3.
func (p *Propagator) FirstLongClause() ClauseRef {
	return 1
}

// LongClauseEnd returns the reference one past the last clause, i.e. what
// NextClause returns for the last clause in the arena.
func (p *Propagator) LongClauseEnd() ClauseRef {
	return ClauseRef(len(p.arena)) + 1
}

// UnaryClauses returns the literals of all unary clauses, including those
// discovered during construction and learned unit clauses.
func (p *Propagator) UnaryClauses() []Lit {
	return p.unaries
}

// BinaryPartnersOf returns all literals that occur together with l in a
// binary clause.
func (p *Propagator) BinaryPartnersOf(l Lit) []Lit {
	return p.binaries[l]
}

// NumVars returns the number of variables in the formula.
func (p *Propagator) NumVars() Var {
	return p.numVars
}

// -------- STATE QUERY --------

// State returns +1 if l is true under the current trail, 0 if it is false,
// and -1 if it is open.
func (p *Propagator) State(l Lit) int32 {
	return p.vars[l.Var()].state(l)
}

// IsTrue reports whether l is assigned true in the current trail.
func (p *Propagator) IsTrue(l Lit) bool {
	return p.vars[l.Var()].isTrue(l)
}

// IsFalse reports whether l is assigned false in the current trail.
func (p *Propagator) IsFalse(l Lit) bool {
	return p.vars[l.Var()].isFalse(l)
}

// IsOpen reports whether l is unassigned in the current trail.
func (p *Propagator) IsOpen(l Lit) bool {
	return p.vars[l.Var()].isOpen()
}

// IsOpenOrTrue reports whether l is unassigned or assigned true.
func (p *Propagator) IsOpenOrTrue(l Lit) bool {
	return p.vars[l.Var()].isOpenOrTrue(l)
}

// Trail returns the literals currently assigned true, in assignment order.
// The returned slice is shared with the propagator and must not be modified.
func (p *Propagator) Trail() []Lit {
	return p.trail
}

// Reasons returns the reason for every trail entry, parallel to Trail.
func (p *Propagator) Reasons() []Reason {
	return p.reasons
}

// IsConflicting reports whether there is a current conflict. If this holds
// after construction or otherwise at level 0, the formula is unsatisfiable.
func (p *Propagator) IsConflicting() bool {
	return p.conflicting
}

// Conflict returns the conflict literal and the conflicting reason clause.
// The literal is NIL for a conflict detected during construction.
func (p *Propagator) Conflict() (Lit, Reason) {
	return p.conflictLit, p.conflictReason
}

// IsDecision reports whether the given non-open literal was asserted as a
// decision.
func (p *Propagator) IsDecision(l Lit) bool {
	return p.reasons[p.vars[l.Var()].trailPos].length == 0
}

// DecisionLevel returns the decision level of an assigned literal.
// For an open literal the result is negative.
func (p *Propagator) DecisionLevel(l Lit) int32 {
	return p.vars[l.Var()].level()
}

// GetReason returns the reason for a literal on the trail.
func (p *Propagator) GetReason(l Lit) Reason {
	return p.reasons[p.vars[l.Var()].trailPos]
}

// TrailIndex returns the index in the trail of an assigned literal.
func (p *Propagator) TrailIndex(l Lit) int {
	return int(p.vars[l.Var()].trailPos)
}

// Decisions returns all decision literals on the trail, in level order.
// Unlike Trail, it returns a freshly allocated slice.
func (p *Propagator) Decisions() []Lit {
	result := make([]Lit, 0, len(p.levels)-1)
	for _, lvl := range p.levels[1:] {
		result = append(result, p.trail[lvl.begin])
	}
	return result
}

// CurrentLevel returns the current decision level; 0 is the root level.
func (p *Propagator) CurrentLevel() int32 {
	return int32(len(p.levels) - 1)
}

// CurrentLevelBegin returns the trail index at which the current level begins.
func (p *Propagator) CurrentLevelBegin() int {
	return int(p.levels[len(p.levels)-1].begin)
}

// LevelBegin returns the trail index at which the given level begins.
func (p *Propagator) LevelBegin(level int32) int {
	return int(p.levels[level].begin)
}

// LevelEnd returns the trail index one past the last literal of the given
// level.
func (p *Propagator) LevelEnd(level int32) int {
	if int(level) >= len(p.levels)-1 {
		return len(p.trail)
	}
	return int(p.levels[level+1].begin)
}

// -------- MAKING AND UNDOING DECISIONS --------

// PushLevel opens a new decision level, asserts the given decision literal
// and propagates it together with all consequences. It reports true iff no
// conflict arose. Calling it on a conflicting propagator or with an already
// assigned literal is caller misuse and panics.
func (p *Propagator) PushLevel(decision Lit) bool {
	if p.conflicting {
		panic("PushLevel called on a conflicting propagator")
	}
	vs := &p.vars[decision.Var()]
	if !vs.isOpen() {
		panic("PushLevel called with an already assigned decision literal")
	}
	p.levels = append(p.levels, levelInfo{begin: uint32(len(p.trail))})
	p.assignAt(vs, int32(len(p.levels)-1), decision, decisionReason())
	return p.Propagate()
}

// PopLevel rolls back exactly the top decision level without learning and
// clears any conflict. Calling it at level 0 panics.
func (p *Propagator) PopLevel() {
	if len(p.levels) == 1 {
		panic("PopLevel called on a propagator at level 0")
	}
	p.rollbackLevel(noopHandler{}, false)
	p.queueHead = len(p.trail)
	if p.conflicting {
		p.resetConflict()
	}
}

// ResetToZero pops levels until only the root level remains.
func (p *Propagator) ResetToZero() {
	for p.CurrentLevel() > 0 {
		p.PopLevel()
	}
}

// rollbackLevel unassigns all variables of the top level in reverse trail
// order. If report is set, each undone assignment is passed to the handler.
func (p *Propagator) rollbackLevel(handler AssignmentHandler, report bool) {
	begin := int(p.levels[len(p.levels)-1].begin)
	for i := len(p.trail) - 1; i >= begin; i-- {
		l := p.trail[i]
		if report {
			handler.AssignmentUndone(l)
		}
		p.vars[l.Var()].makeOpen()
	}
	p.trail = p.trail[:begin]
	p.reasons = p.reasons[:begin]
	p.levels = p.levels[:len(p.levels)-1]
}

func (p *Propagator) resetConflict() {
	p.conflicting = false
	p.conflictLit = NIL
	p.conflictReason = decisionReason()
}

// -------- RESULT EXTRACTION --------

// ExtractAssignment returns the current assignment as a bit-vector, where
// result[v] reports whether variable v is set to true. Calling it with an
// incomplete trail panics.
func (p *Propagator) ExtractAssignment() []bool {
	if Var(len(p.trail)) != p.numVars {
		panic("ExtractAssignment called with an incomplete trail")
	}
	result := make([]bool, p.numVars)
	for _, l := range p.trail {
		if l.IsPositive() {
			result[l.Var()] = true
		}
	}
	return result
}

// Clone returns a fully independent copy of the propagator. Copying is linear
// in the total state size; callers rely on this to branch speculative search.
func (p *Propagator) Clone() *Propagator {
	q := *p
	q.unaries = append([]Lit(nil), p.unaries...)
	q.binaries = make([][]Lit, len(p.binaries))
	for i, list := range p.binaries {
		q.binaries[i] = append([]Lit(nil), list...)
	}
	q.arena = append([]Lit(nil), p.arena...)
	q.vars = append([]variableState(nil), p.vars...)
	q.watchers = make([][]watcher, len(p.watchers))
	for i, list := range p.watchers {
		q.watchers[i] = append([]watcher(nil), list...)
	}
	q.trail = append([]Lit(nil), p.trail...)
	q.reasons = append([]Reason(nil), p.reasons...)
	q.levels = append([]levelInfo(nil), p.levels...)
	q.learnBuf = append([]Lit(nil), p.learnBuf...)
	q.decisionsBuf = append([]LevelLit(nil), p.decisionsBuf...)
	return &q
}
