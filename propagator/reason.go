package propagator

// A Reason explains why a literal sits on the trail. It is either a decision
// (length 0), a unary clause (length 1), a binary clause (length 2), or a
// reference to a clause of length >= 3 in the arena. Reasons never own clause
// storage: short reasons embed their literals, long reasons borrow from the
// arena for as long as the owning Propagator lives.
type Reason struct {
	length ClauseLen
	clause ClauseRef
	lits   [2]Lit
}

func decisionReason() Reason {
	return Reason{clause: nilRef}
}

func unaryReason(l Lit) Reason {
	return Reason{length: 1, clause: nilRef, lits: [2]Lit{l, NIL}}
}

func binaryReason(l1, l2 Lit) Reason {
	return Reason{length: 2, clause: nilRef, lits: [2]Lit{l1, l2}}
}

func clauseReason(length ClauseLen, ref ClauseRef) Reason {
	return Reason{length: length, clause: ref}
}

// Length returns the number of literals in the reason clause; 0 for decisions.
func (r Reason) Length() ClauseLen {
	return r.length
}

// IsDecision reports whether the reason is a decision.
func (r Reason) IsDecision() bool {
	return r.length == 0
}

// ReasonLits returns the literals of r, no matter its shape. For long reasons
// the returned slice is a view into the clause arena and must not be modified.
func (p *Propagator) ReasonLits(r Reason) []Lit {
	switch r.length {
	case 0:
		return nil
	case 1:
		return r.lits[:1]
	case 2:
		return r.lits[:2]
	default:
		return p.arena[r.clause : r.clause+ClauseRef(r.length)]
	}
}
