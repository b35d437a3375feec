// Package skarn is the front door of the equality simplifier: YAML goal
// files, the prefix term reader, and the loop that drives the elimination
// core to a fixed point.
package skarn

import (
	"context"
	"fmt"
	"strings"

	set "github.com/hashicorp/go-set/v3"

	"github.com/skarn-lang/skarn/elim"
	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/meta"
)

// Report is the outcome of a SimplifyAll run. Goal is nil when Closed.
// Remaining counts equality hypotheses the run attempted but could not
// retire without the goal changing; any other stuck equality surfaces as
// an error instead.
type Report struct {
	Goal      *meta.Goal
	Subst     meta.VarSubst
	Steps     int
	Remaining int
	Closed    bool
}

// SimplifyAll retires equality hypotheses until none are left: pick the
// first equality-typed hypothesis not yet attempted, run one simplifier
// pass, thread the goal and substitution through, and re-arm the attempt
// set whenever the context changed, since substitutions rewrite the
// remaining hypotheses.
func SimplifyAll(ctx context.Context, sim *elim.Simplifier, goal *meta.Goal) (*Report, error) {
	subst := meta.NewVarSubst()
	attempted := set.New[kernel.VarID](0)
	steps := 0
	for {
		hyp, ok := nextEquality(sim.Oracle, goal, attempted)
		if !ok {
			logger.Debug("simplification finished", "steps", steps, "ctx", goal.Lctx)
			return &Report{
				Goal:      goal,
				Subst:     subst,
				Steps:     steps,
				Remaining: countEqualities(sim.Oracle, goal),
			}, nil
		}
		res, err := sim.UnifyEq(ctx, goal, hyp.ID, subst)
		if err != nil {
			return nil, err
		}
		steps++
		if res.Closed {
			logger.Debug("goal discharged", "steps", steps)
			return &Report{Subst: res.Subst, Steps: steps, Closed: true}, nil
		}
		if res.Goal.ID != goal.ID {
			attempted = set.New[kernel.VarID](0)
		} else {
			attempted.Insert(hyp.ID)
		}
		logger.Debug("simplified one hypothesis",
			"hyp", hyp.Name,
			"newEqs", res.NumNewEqs,
			"steps", steps,
		)
		goal, subst = res.Goal, res.Subst
	}
}

// nextEquality classifies instantiated types so hypotheses whose type is an
// assigned metavariable still get picked up.
func nextEquality(oracle meta.Oracle, goal *meta.Goal, attempted *set.Set[kernel.VarID]) (meta.Decl, bool) {
	for decl := range goal.Lctx.Decls() {
		if attempted.Contains(decl.ID) {
			continue
		}
		if elim.Classify(oracle.InstantiateMetas(decl.Type)).Kind != elim.NotEquality {
			return decl, true
		}
	}
	return meta.Decl{}, false
}

func countEqualities(oracle meta.Oracle, goal *meta.Goal) int {
	n := 0
	for decl := range goal.Lctx.Decls() {
		if elim.Classify(oracle.InstantiateMetas(decl.Type)).Kind != elim.NotEquality {
			n++
		}
	}
	return n
}

// RenderGoal prints a goal the way tactic states are usually shown: one
// declaration per line, then the target behind a turnstile.
func RenderGoal(goal *meta.Goal) string {
	sb := &strings.Builder{}
	for decl := range goal.Lctx.Decls() {
		fmt.Fprintf(sb, "%s : %s\n", decl.Name, kernel.ExprStringIn(goal.Lctx, decl.Type))
	}
	fmt.Fprintf(sb, "⊢ %s\n", kernel.ExprStringIn(goal.Lctx, goal.Target))
	return sb.String()
}

// RenderReport summarises a run for the CLI.
func RenderReport(r *Report) string {
	if r.Closed {
		return fmt.Sprintf("goal discharged after %d steps\n", r.Steps)
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "simplified %d hypotheses, %d equalities left\n\n", r.Steps, r.Remaining)
	sb.WriteString(RenderGoal(r.Goal))
	return sb.String()
}
