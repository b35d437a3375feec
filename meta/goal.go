package meta

import (
	"fmt"
	"sync/atomic"

	"github.com/skarn-lang/skarn/internal/log"
	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/util"
)

var logger = log.DefaultLogger.With("section", "meta")

type GoalID uint64

var goalIDCounter atomic.Uint64

func newGoalID() GoalID {
	return GoalID(goalIDCounter.Add(1))
}

// Goal is a target statement under a local context. Transformations return
// fresh goals with fresh ids; the receiver is never modified, so a failed
// speculative edit leaves the caller holding the untouched original.
type Goal struct {
	ID     GoalID
	Target kernel.Expr
	Lctx   LocalContext
}

func NewGoal(target kernel.Expr, lctx LocalContext) *Goal {
	return &Goal{ID: newGoalID(), Target: target, Lctx: lctx}
}

func (g *Goal) nextGoal(target kernel.Expr, lctx LocalContext) *Goal {
	return &Goal{ID: newGoalID(), Target: target, Lctx: lctx}
}

// Assert introduces a hypothesis `name : ty` at the end of the context.
// The proof justifies the assertion to the caller; goals do not retain it
// since proof checking lives outside this layer.
func (g *Goal) Assert(name string, ty kernel.Expr, proof kernel.Expr) (*Goal, Decl) {
	lctx, decl := g.Lctx.push(name, ty)
	logger.Debug("assert", "goal", uint64(g.ID), "name", name, "type", ty, "proof", proof)
	return g.nextGoal(g.Target, lctx), decl
}

// Clear removes the declaration id. It fails when the target or a later
// declaration still references id.
func (g *Goal) Clear(id kernel.VarID) (*Goal, error) {
	decl, ok := g.Lctx.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("clear: unknown declaration id %d", id)
	}
	if kernel.HasFreeVar(g.Target, id) {
		return nil, fmt.Errorf("clear: target depends on %s", decl.Name)
	}
	for other := range g.Lctx.Decls() {
		if other.Index > decl.Index && kernel.HasFreeVar(other.Type, id) {
			return nil, fmt.Errorf("clear: %s depends on %s", other.Name, decl.Name)
		}
	}
	return g.nextGoal(g.Target, g.Lctx.without(id)), nil
}

// SubstituteEq eliminates a variable using the homogeneous equality
// hypothesis eqID. With reverse false the left side must be the variable to
// retire in favour of the right side; with reverse true the sides swap
// roles. The equality hypothesis itself is dropped.
//
// Declarations depending on the retired variable move to the end of the
// context under fresh ids with rewritten types; the returned VarSubst maps
// the retired variable to its replacement and each moved declaration to its
// successor.
func (g *Goal) SubstituteEq(eqID kernel.VarID, reverse bool) (*Goal, VarSubst, error) {
	none := NewVarSubst()
	eqDecl, ok := g.Lctx.Lookup(eqID)
	if !ok {
		return nil, none, fmt.Errorf("subst: unknown hypothesis id %d", eqID)
	}
	_, lhs, rhs, isEq := kernel.AsEq(eqDecl.Type)
	if !isEq {
		return nil, none, fmt.Errorf("subst: %s is not a homogeneous equality", eqDecl.Name)
	}
	eliminated, value := lhs, rhs
	if reverse {
		eliminated, value = rhs, lhs
	}
	v, isVar := eliminated.(*kernel.Var)
	if !isVar {
		return nil, none, fmt.Errorf("subst: eliminated side of %s is not a variable", eqDecl.Name)
	}
	varDecl, ok := g.Lctx.Lookup(v.ID)
	if !ok {
		return nil, none, fmt.Errorf("subst: unknown variable id %d", v.ID)
	}
	if kernel.HasFreeVar(value, v.ID) {
		return nil, none, fmt.Errorf("subst: %s occurs in its own replacement", varDecl.Name)
	}

	if kernel.HasFreeVar(g.Target, eqID) {
		return nil, none, fmt.Errorf("subst: target depends on hypothesis %s", eqDecl.Name)
	}

	// forward dependency closure of the retired variable
	closure := util.NewSetOf([]kernel.VarID{v.ID})
	var moved []Decl
	for decl := range g.Lctx.Decls() {
		if decl.ID != eqID && kernel.HasFreeVar(decl.Type, eqID) {
			return nil, none, fmt.Errorf("subst: %s depends on hypothesis %s", decl.Name, eqDecl.Name)
		}
		if decl.Index <= varDecl.Index || decl.ID == eqID {
			continue
		}
		depends := false
		for dep := range kernel.FreeVars(decl.Type).Items() {
			if closure.Contains(dep) {
				depends = true
				break
			}
		}
		if depends {
			closure.Add(decl.ID)
			moved = append(moved, decl)
		}
	}
	for dep := range kernel.FreeVars(value).Items() {
		if dep != v.ID && closure.Contains(dep) {
			return nil, none, fmt.Errorf("subst: replacement for %s depends on %s, which depends on it", varDecl.Name, mustName(g.Lctx, dep))
		}
	}

	logger.Debug("substituting",
		"goal", uint64(g.ID),
		"hypothesis", eqDecl.Name,
		"eliminating", varDecl.Name,
		"replacement", value,
		"moved", len(moved),
	)

	lctx := g.Lctx.without(append([]kernel.VarID{v.ID, eqID}, declIDs(moved)...)...)
	mapping := map[kernel.VarID]kernel.Expr{v.ID: value}
	subst := none.Insert(v.ID, value)
	for _, decl := range moved {
		rewritten := kernel.ReplaceVars(decl.Type, func(id kernel.VarID) (kernel.Expr, bool) {
			e, ok := mapping[id]
			return e, ok
		})
		var fresh Decl
		lctx, fresh = lctx.push(decl.Name, rewritten)
		mapping[decl.ID] = &kernel.Var{ID: fresh.ID}
		subst = subst.Insert(decl.ID, &kernel.Var{ID: fresh.ID})
	}
	target := kernel.ReplaceVars(g.Target, func(id kernel.VarID) (kernel.Expr, bool) {
		e, ok := mapping[id]
		return e, ok
	})
	return g.nextGoal(target, lctx), subst, nil
}

func declIDs(decls []Decl) []kernel.VarID {
	ids := make([]kernel.VarID, 0, len(decls))
	for _, d := range decls {
		ids = append(ids, d.ID)
	}
	return ids
}

func mustName(lctx LocalContext, id kernel.VarID) string {
	if decl, ok := lctx.Lookup(id); ok {
		return decl.Name
	}
	return fmt.Sprintf("#%d", id)
}
