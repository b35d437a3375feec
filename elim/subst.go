package elim

import (
	"context"

	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/meta"
	"github.com/skarn-lang/skarn/skerr"
)

// substitute retires decl by eliminating a variable side. reverse false
// eliminates the left side, reverse true the right; the dispatcher picks
// the direction that removes the later-declared variable.
//
// The speculative attempt is observed before anything commits: contexts
// are persistent, so a failed attempt leaves goal untouched. When the
// attempt does not apply, definitionally equal sides still let the
// hypothesis go with a plain clear. After that the acyclicity hook gets
// its look, and only then is the equation unsolvable: fatal at the top
// level, left behind (counting one new equation) inside an injection pass.
func (s *Simplifier) substitute(ctx context.Context, goal *meta.Goal, decl meta.Decl, cls Classification, subst meta.VarSubst, reverse bool, depth int) (*Result, error) {
	attempted, step, err := goal.SubstituteEq(decl.ID, reverse)
	if err == nil {
		for id, value := range step.All() {
			subst = subst.Insert(id, value)
		}
		logger.Debug("substituted", "hyp", decl.Name, "reverse", reverse, "step", step)
		return &Result{Goal: attempted, Subst: subst}, nil
	}
	logger.Debug("substitution not applicable", "hyp", decl.Name, "reverse", reverse, "reason", err.Error())

	defeq, err := s.Oracle.IsDefEq(ctx, cls.Lhs, cls.Rhs)
	if err != nil {
		return nil, err
	}
	if defeq {
		cleared, err := goal.Clear(decl.ID)
		if err != nil {
			return nil, skerr.New(skerr.NewOracleFailure{Op: "clear", Term: decl.Type, Cause: err})
		}
		logger.Debug("cleared definitionally trivial hypothesis", "hyp", decl.Name)
		return &Result{Goal: cleared, Subst: subst}, nil
	}

	if s.Acyclic != nil {
		closed, err := s.Acyclic(ctx, goal, &kernel.Var{ID: decl.ID})
		if err != nil {
			return nil, err
		}
		if closed {
			logger.Debug("goal discharged as cyclic", "hyp", decl.Name)
			return &Result{Subst: subst, Closed: true}, nil
		}
	}

	if depth > 0 {
		// a field equation this pass cannot retire stays for the caller
		return &Result{Goal: goal, Subst: subst, NumNewEqs: 1}, nil
	}
	return nil, skerr.New(skerr.NewUnsolvableEquation{Type: decl.Type, Case: s.CaseName})
}
