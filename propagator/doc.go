/*
Package propagator implements a standalone Boolean constraint propagator with
conflict-driven clause learning. It maintains a CNF clause database, a
backtrackable trail of assignments and two-watched-literal watch lists,
detects conflicts, learns first-UIP conflict clauses and backjumps. It is
meant to be embedded inside search algorithms: it has no variable-selection
heuristic, no restarts and no clause-database reduction, and is driven
entirely by its caller.

A formula is described through a Builder:

	var b propagator.Builder
	x := b.AddVariable()
	y := b.AddVariable()
	z := b.AddVariable()
	err := b.AddClause(x, y, z)
	err = b.AddClause(x.Negation(), y.Negation())

and handed to a propagator, which immediately asserts all level-0 facts:

	p := propagator.NewPropagator(&b)
	if p.IsConflicting() {
		// the formula is unsatisfiable
	}

The caller then drives the search, pushing decisions onto the trail and
resolving the conflicts they cause:

	if !p.PushLevel(x) {
		if !p.ResolveConflicts() {
			// conflict at level 0: unsatisfiable
		}
	}

Once the trail is complete, ExtractAssignment returns a model that can be
checked against the builder with VerifyAssignment.

The package also provides subsumption elimination over clause lists
(EliminateSubsumed) and extraction of a reduced formula under a partial
assignment (Extractor), the typical companion steps when a partially solved
formula is handed off to another solver.
*/
package propagator
