package elim

import (
	"context"
	"fmt"

	"github.com/skarn-lang/skarn/internal/log"
	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/meta"
	"github.com/skarn-lang/skarn/skerr"
)

var logger = log.DefaultLogger.With("section", "elim")

// defaultDepthLimit bounds injection recursion. Constructor arities are
// small, so reaching it means the field hypotheses themselves keep
// producing injectable equalities without ever resolving.
const defaultDepthLimit = 250

// Simplifier ties the elimination core to its collaborators. The zero
// value is unusable; Oracle and Ctors must be set.
type Simplifier struct {
	Oracle meta.Oracle
	Ctors  meta.ConstructorOracle

	// Trace is a read-only snapshot of enabled trace streams.
	Trace meta.TraceConfig

	// Acyclic, when set, gets a last look at an equation that neither
	// substitution nor definitional equality could retire. Returning true
	// means it refuted the equation and discharged the goal outright.
	Acyclic func(ctx context.Context, goal *meta.Goal, eqProof kernel.Expr) (bool, error)

	// CaseName, when non-empty, labels unsolvable-equation errors with
	// the match arm being compiled.
	CaseName string
}

// Result of one UnifyEq call.
//
// NumNewEqs counts the freshly introduced equality hypotheses this pass
// did not resolve; the caller re-invokes while equalities remain. Closed
// reports that the Acyclic hook discharged the goal, in which case Goal
// is nil.
type Result struct {
	Goal      *meta.Goal
	Subst     meta.VarSubst
	NumNewEqs int
	Closed    bool
}

// UnifyEq retires the equality hypothesis hypID from goal: heterogeneous
// equalities over agreeing types turn homogeneous first, then the sides
// decide between variable substitution, constructor injection, and a
// defeq-guarded clear. subst is the substitution accumulated by earlier
// steps; the result carries its extension.
func (s *Simplifier) UnifyEq(ctx context.Context, goal *meta.Goal, hypID kernel.VarID, subst meta.VarSubst) (*Result, error) {
	return s.unifyEq(ctx, goal, hypID, subst, 0)
}

func (s *Simplifier) unifyEq(ctx context.Context, goal *meta.Goal, hypID kernel.VarID, subst meta.VarSubst, depth int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, skerr.New(skerr.NewOracleFailure{Op: "unify", Cause: err})
	}
	if depth > defaultDepthLimit {
		return nil, skerr.New(skerr.NewInternal{Reason: "injection recursion exceeded the depth limit"})
	}
	decl, ok := goal.Lctx.Lookup(hypID)
	if !ok {
		return nil, skerr.New(skerr.NewInternal{Reason: fmt.Sprintf("hypothesis id %d not in context", hypID)})
	}

	ty := s.Oracle.InstantiateMetas(decl.Type)
	if !kernel.Equal(ty, decl.Type) {
		// materialise the instantiated type so context edits below see
		// the same shape the dispatch decisions were made on
		refreshed, fresh := goal.Assert(decl.Name, ty, &kernel.Var{ID: decl.ID})
		cleared, err := refreshed.Clear(decl.ID)
		if err != nil {
			return nil, skerr.New(skerr.NewOracleFailure{Op: "instantiate", Term: ty, Cause: err})
		}
		goal = cleared
		decl, ok = goal.Lctx.Lookup(fresh.ID)
		if !ok {
			return nil, skerr.New(skerr.NewInternal{Reason: "refreshed hypothesis vanished"})
		}
	}

	cls := Classify(decl.Type)
	logger.Debug("unifying",
		"goal", uint64(goal.ID),
		"hyp", decl.Name,
		"kind", cls.Kind.String(),
		"type", decl.Type,
		"depth", depth,
	)

	switch cls.Kind {
	case NotEquality:
		return nil, skerr.New(skerr.NewNotAnEquality{Hyp: decl.Name, Type: decl.Type})
	case Heterogeneous:
		defeq, err := s.Oracle.IsDefEq(ctx, cls.LTy, cls.RTy)
		if err != nil {
			return nil, err
		}
		if !defeq {
			// injection never applies across differing types, so the
			// substituter in reverse direction is the only option left
			return s.substitute(ctx, goal, decl, cls, subst, true, depth)
		}
		goal, decl, err = s.toHomogeneous(ctx, goal, decl, cls)
		if err != nil {
			return nil, err
		}
		cls = Classify(decl.Type)
		if cls.Kind != Homogeneous {
			return nil, skerr.New(skerr.NewInternal{
				Reason: fmt.Sprintf("hypothesis %s stays %s after conversion", decl.Name, cls.Kind),
			})
		}
	}

	lhs, err := s.Oracle.WHNF(ctx, cls.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := s.Oracle.WHNF(ctx, cls.Rhs)
	if err != nil {
		return nil, err
	}

	lv, lhsIsVar := lhs.(*kernel.Var)
	rv, rhsIsVar := rhs.(*kernel.Var)
	switch {
	case lhsIsVar && rhsIsVar:
		lDecl, ok := goal.Lctx.Lookup(lv.ID)
		if !ok {
			return nil, skerr.New(skerr.NewInternal{Reason: fmt.Sprintf("variable id %d not in context", lv.ID)})
		}
		rDecl, ok := goal.Lctx.Lookup(rv.ID)
		if !ok {
			return nil, skerr.New(skerr.NewInternal{Reason: fmt.Sprintf("variable id %d not in context", rv.ID)})
		}
		// eliminate the later-declared variable so every replacement
		// refers backwards
		reverse := lDecl.Index < rDecl.Index
		return s.substitute(ctx, goal, decl, cls, subst, reverse, depth)
	case bothSameConstructor(s.Ctors, lhs, rhs):
		return s.inject(ctx, goal, decl, lhs, rhs, subst, depth)
	case rhsIsVar:
		return s.substitute(ctx, goal, decl, cls, subst, true, depth)
	default:
		return s.substitute(ctx, goal, decl, cls, subst, false, depth)
	}
}

func bothSameConstructor(ctors meta.ConstructorOracle, lhs, rhs kernel.Expr) bool {
	lName, ok := ctors.IsConstructorApp(lhs)
	if !ok {
		return false
	}
	rName, ok := ctors.IsConstructorApp(rhs)
	return ok && lName == rName
}
