package elim

import (
	"context"
	"fmt"

	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/meta"
	"github.com/skarn-lang/skarn/skerr"
)

// inject decomposes `lhs = rhs`, both saturated applications of the same
// constructor, into per-field equalities and dispatches each in order.
// Earlier field substitutions rewrite the pending field hypotheses, which
// is what lets dependent fields turn convertible within the same pass.
// NumNewEqs accumulates over the fields: each one the dispatch could not
// retire contributes 1.
func (s *Simplifier) inject(ctx context.Context, goal *meta.Goal, decl meta.Decl, lhs, rhs kernel.Expr, subst meta.VarSubst, depth int) (*Result, error) {
	if kernel.Equal(lhs, rhs) {
		cleared, err := goal.Clear(decl.ID)
		if err != nil {
			return nil, skerr.New(skerr.NewOracleFailure{Op: "clear", Term: decl.Type, Cause: err})
		}
		logger.Debug("identical constructor applications", "hyp", decl.Name)
		return &Result{Goal: cleared, Subst: subst}, nil
	}

	fields, err := s.Ctors.Decompose(ctx, goal.Lctx, decl.Name, lhs, rhs)
	if err != nil {
		logger.Error("constructor decomposition failed", "hyp", decl.Name, "type", decl.Type, "err", err)
		return nil, err
	}

	current := goal
	fieldIDs := make([]kernel.VarID, 0, len(fields))
	for _, field := range fields {
		var fresh meta.Decl
		current, fresh = current.Assert(field.Name, field.Type, &kernel.Var{ID: decl.ID})
		fieldIDs = append(fieldIDs, fresh.ID)
	}
	current, err = current.Clear(decl.ID)
	if err != nil {
		return nil, skerr.New(skerr.NewOracleFailure{Op: "clear", Term: decl.Type, Cause: err})
	}

	aStr := kernel.ExprStringIn(current.Lctx, lhs)
	bStr := kernel.ExprStringIn(current.Lctx, rhs)

	total := 0
	for _, id := range fieldIDs {
		// earlier substitutions may have moved this hypothesis under a
		// fresh id; the composed substitution knows its successor
		if value, ok := subst.Get(id); ok {
			moved, isVar := value.(*kernel.Var)
			if !isVar {
				return nil, skerr.New(skerr.NewInternal{
					Reason: fmt.Sprintf("field hypothesis %d substituted by a non-variable", id),
				})
			}
			id = moved.ID
		}
		if s.Trace.Enabled(meta.TraceElimDebug) {
			if fieldDecl, ok := current.Lctx.Lookup(id); ok {
				s.Trace.Emit(meta.TraceElimDebug, fmt.Sprintf("a: %s b: %s ==> %s : %s",
					aStr, bStr, fieldDecl.Name, kernel.ExprStringIn(current.Lctx, fieldDecl.Type)))
			}
		}
		child, err := s.unifyEq(ctx, current, id, subst, depth+1)
		if err != nil {
			logger.Error("field simplification failed", "hyp", decl.Name, "type", decl.Type, "err", err)
			return nil, err
		}
		if child.Closed {
			return child, nil
		}
		current, subst = child.Goal, child.Subst
		total += child.NumNewEqs
	}
	logger.Debug("injected", "hyp", decl.Name, "fields", len(fields), "newEqs", total)
	return &Result{Goal: current, Subst: subst, NumNewEqs: total}, nil
}
