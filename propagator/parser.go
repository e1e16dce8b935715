package propagator

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseCNF parses a DIMACS CNF problem and returns the corresponding Builder.
// Comment lines are skipped; the problem line is used to reserve variables.
// An empty clause in the input makes the model unsatisfiable and is reported
// as ErrUnsat.
func ParseCNF(r io.Reader) (*Builder, error) {
	b := &Builder{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, errors.Errorf("invalid problem line %q", line)
			}
			nbVars, err := strconv.Atoi(fields[2])
			if err != nil || nbVars < 0 {
				return nil, errors.Errorf("invalid number of variables in problem line %q", line)
			}
			b.ReserveVariables(Var(nbVars))
			continue
		}
		for _, field := range strings.Fields(line) {
			val, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid literal %q", field)
			}
			if val == 0 {
				if err := b.FinalizeClause(); err != nil {
					return nil, err
				}
				continue
			}
			b.AddLiteral(IntToLit(val))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read CNF input")
	}
	if len(b.buf) != 0 {
		// final clause not terminated by 0
		if err := b.FinalizeClause(); err != nil {
			return nil, err
		}
	}
	return b, nil
}
