package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/phillip-keldenich/standalone-unit-propagator/propagator"
)

var (
	verbose   bool
	decisions []int
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standalone-unit-propagator [flags] file.cnf",
		Short: "Reduce a DIMACS CNF formula by unit propagation and subsumption",
		Long: `Reads a DIMACS CNF file, asserts all its unit clauses and their
consequences, optionally pushes further decisions, and prints the reduced
formula under the resulting partial assignment: satisfied clauses are
dropped, false literals are removed, subsumed clauses are eliminated and
the remaining variables are densely renumbered.

Prints "s UNSATISFIABLE" if the formula is found unsatisfiable.`,
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output on stderr")
	cmd.Flags().IntSliceVar(&decisions, "decide", nil, "DIMACS literals to push as decisions before reducing")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	model, err := propagator.ParseCNF(f)
	if err != nil {
		if errors.Is(err, propagator.ErrUnsat) {
			fmt.Println("s UNSATISFIABLE")
			return nil
		}
		return err
	}
	log.WithField("vars", model.NumVars()).Debug("parsed problem")
	p := propagator.NewPropagator(model)
	if p.IsConflicting() {
		fmt.Println("s UNSATISFIABLE")
		return nil
	}
	for _, d := range decisions {
		l := propagator.IntToLit(d)
		if !p.IsOpen(l) {
			log.WithField("literal", d).Debug("decision already assigned, skipping")
			continue
		}
		if !p.PushLevel(l) {
			log.WithField("literal", d).Debug("decision led to a conflict, resolving")
			if !p.ResolveConflicts() {
				fmt.Println("s UNSATISFIABLE")
				return nil
			}
		}
	}
	var ex propagator.Extractor
	ex.Extract(p)
	log.WithFields(logrus.Fields{
		"trail":   len(p.Trail()),
		"level":   p.CurrentLevel(),
		"vars":    ex.ReducedNumVars(),
		"clauses": ex.ReducedNumClauses(),
	}).Debug("extracted reduced formula")
	fmt.Printf("p cnf %d %d\n", ex.ReducedNumVars(), ex.ReducedNumClauses())
	for _, clause := range ex.ReducedClauses() {
		for _, l := range clause {
			fmt.Printf("%d ", l.Int())
		}
		fmt.Println("0")
	}
	return nil
}
