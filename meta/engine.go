package meta

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/benbjohnson/immutable"
	set "github.com/hashicorp/go-set/v3"

	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/skerr"
)

type exprHasher struct{}

func (exprHasher) Hash(e kernel.Expr) uint32 {
	h := e.Hash()
	return uint32(h) ^ uint32(h>>32)
}
func (exprHasher) Equal(a, b kernel.Expr) bool { return kernel.Equal(a, b) }

var _ immutable.Hasher[kernel.Expr] = exprHasher{}

type metaIDHasher struct{}

func (metaIDHasher) Hash(id kernel.MetaID) uint32  { return uint32(id) ^ uint32(id>>32) }
func (metaIDHasher) Equal(a, b kernel.MetaID) bool { return a == b }

var _ immutable.Hasher[kernel.MetaID] = metaIDHasher{}

// defeqPair keys the positive defeq cache.
type defeqPair struct {
	lhs, rhs kernel.Expr
	hash     uint64
}

func newDefeqPair(lhs, rhs kernel.Expr) *defeqPair {
	h := fnv.New64a()
	arr := make([]byte, 0, 16)
	arr = binary.LittleEndian.AppendUint64(arr, lhs.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, rhs.Hash())
	_, _ = h.Write(arr)
	return &defeqPair{lhs: lhs, rhs: rhs, hash: h.Sum64()}
}

func (p *defeqPair) Hash() uint64 { return p.hash }

const defaultStartingFuel = 10000

// Engine is the reference Oracle and ConstructorOracle over an Env: weak
// head reduction by unfolding nullary definitions, structural definitional
// equality, structural type inference, and metavariable assignment.
//
// An Engine is stateful (assignments, caches) and not safe for concurrent
// use; elimination runs are sequential anyway.
type Engine struct {
	env   *Env
	metas *immutable.Map[kernel.MetaID, kernel.Expr]

	whnfCache *immutable.Map[kernel.Expr, kernel.Expr]
	defeqSeen *set.HashSet[*defeqPair, uint64]
	fuel      int
}

func NewEngine(env *Env) *Engine {
	return &Engine{
		env:       env,
		metas:     immutable.NewMap[kernel.MetaID, kernel.Expr](metaIDHasher{}),
		whnfCache: immutable.NewMap[kernel.Expr, kernel.Expr](exprHasher{}),
		defeqSeen: set.NewHashSet[*defeqPair, uint64](0),
		fuel:      defaultStartingFuel,
	}
}

func (e *Engine) Env() *Env { return e.env }

// AssignMeta binds a metavariable. Assignments are final.
func (e *Engine) AssignMeta(id kernel.MetaID, value kernel.Expr) error {
	if _, taken := e.metas.Get(id); taken {
		return fmt.Errorf("metavariable ?%d assigned twice", id)
	}
	resolved := e.InstantiateMetas(value)
	if hasMetaID(resolved, id) {
		return fmt.Errorf("metavariable ?%d occurs in its own assignment", id)
	}
	e.metas = e.metas.Set(id, resolved)
	// instantiation changes term identity, so cached shapes are stale
	e.whnfCache = immutable.NewMap[kernel.Expr, kernel.Expr](exprHasher{})
	e.defeqSeen = set.NewHashSet[*defeqPair, uint64](0)
	return nil
}

func hasMetaID(e kernel.Expr, id kernel.MetaID) bool {
	switch e := e.(type) {
	case *kernel.Meta:
		return e.ID == id
	case *kernel.App:
		return hasMetaID(e.Fn, id) || hasMetaID(e.Arg, id)
	default:
		return false
	}
}

func (e *Engine) InstantiateMetas(expr kernel.Expr) kernel.Expr {
	if e.metas.Len() == 0 {
		return expr
	}
	return kernel.ReplaceMetas(expr, e.metas.Get)
}

// WHNF reduces to weak head normal form: instantiate assigned head
// metavariables, then unfold nullary definitions at the head until the head
// is a variable, an unassigned metavariable, a sort, or a constant with no
// body. Results are memoized per engine.
func (e *Engine) WHNF(ctx context.Context, expr kernel.Expr) (kernel.Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, skerr.New(skerr.NewOracleFailure{Op: "whnf", Term: expr, Cause: err})
	}
	expr = e.InstantiateMetas(expr)
	if cached, ok := e.whnfCache.Get(expr); ok {
		return cached, nil
	}
	out := expr
	for fuel := e.fuel; ; fuel-- {
		if fuel <= 0 {
			return nil, skerr.New(skerr.NewInternal{
				Reason: fmt.Sprintf("whnf ran out of fuel reducing %s", kernel.ExprString(expr)),
			})
		}
		head, args := kernel.Spine(out)
		c, ok := head.(*kernel.Const)
		if !ok {
			break
		}
		info, ok := e.env.Lookup(c.Name)
		if !ok || info.Kind != KindDef || info.Body == nil {
			break
		}
		out = kernel.MkApp(info.Body, args...)
	}
	e.whnfCache = e.whnfCache.Set(expr, out)
	return out, nil
}

// IsDefEq reduces both sides and compares them structurally, recursing into
// application arguments. Positive answers are cached.
func (e *Engine) IsDefEq(ctx context.Context, a, b kernel.Expr) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, skerr.New(skerr.NewOracleFailure{Op: "defeq", Term: a, Cause: err})
	}
	a, b = e.InstantiateMetas(a), e.InstantiateMetas(b)
	if kernel.Equal(a, b) {
		return true, nil
	}
	pair := newDefeqPair(a, b)
	if e.defeqSeen.Contains(pair) {
		return true, nil
	}
	wa, err := e.WHNF(ctx, a)
	if err != nil {
		return false, err
	}
	wb, err := e.WHNF(ctx, b)
	if err != nil {
		return false, err
	}
	ok, err := e.defeqSpine(ctx, wa, wb)
	if err != nil {
		return false, err
	}
	if ok {
		e.defeqSeen.Insert(pair)
	}
	return ok, nil
}

// defeqSpine compares two weak-head-normal terms: heads must coincide
// exactly, arguments recurse through IsDefEq so they get reduced in turn.
func (e *Engine) defeqSpine(ctx context.Context, a, b kernel.Expr) (bool, error) {
	if kernel.Equal(a, b) {
		return true, nil
	}
	ha, argsA := kernel.Spine(a)
	hb, argsB := kernel.Spine(b)
	if len(argsA) != len(argsB) || !sameHead(ha, hb) {
		return false, nil
	}
	for i := range argsA {
		ok, err := e.IsDefEq(ctx, argsA[i], argsB[i])
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func sameHead(a, b kernel.Expr) bool {
	switch a := a.(type) {
	case *kernel.Const:
		b, ok := b.(*kernel.Const)
		return ok && a.Name == b.Name
	case *kernel.Var:
		b, ok := b.(*kernel.Var)
		return ok && a.ID == b.ID
	case *kernel.Meta:
		b, ok := b.(*kernel.Meta)
		return ok && a.ID == b.ID
	case *kernel.Sort:
		b, ok := b.(*kernel.Sort)
		return ok && a.Level == b.Level
	default:
		return false
	}
}

// InferType is structural: variables from their declarations, saturated
// constant applications from their declared result types, sorts from the
// next universe. Anything else is a stuck shape the oracle refuses.
func (e *Engine) InferType(ctx context.Context, lctx LocalContext, expr kernel.Expr) (kernel.Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, skerr.New(skerr.NewOracleFailure{Op: "infer", Term: expr, Cause: err})
	}
	expr = e.InstantiateMetas(expr)
	switch t := expr.(type) {
	case *kernel.Var:
		decl, ok := lctx.Lookup(t.ID)
		if !ok {
			return nil, skerr.New(skerr.NewOracleFailure{
				Op: "infer", Term: expr, Cause: fmt.Errorf("variable not in context"),
			})
		}
		return decl.Type, nil
	case *kernel.Meta:
		return nil, skerr.New(skerr.NewOracleFailure{
			Op: "infer", Term: expr, Cause: fmt.Errorf("unassigned metavariable"),
		})
	case *kernel.Sort:
		return &kernel.Sort{Level: t.Level + 1}, nil
	}

	head, args := kernel.Spine(expr)
	c, ok := head.(*kernel.Const)
	if !ok {
		return nil, skerr.New(skerr.NewOracleFailure{
			Op: "infer", Term: expr, Cause: fmt.Errorf("application head is not a constant"),
		})
	}
	info, ok := e.env.Lookup(c.Name)
	if !ok {
		return nil, skerr.New(skerr.NewOracleFailure{
			Op: "infer", Term: expr, Cause: fmt.Errorf("unknown constant %q", c.Name),
		})
	}
	if len(args) != info.Arity {
		return nil, skerr.New(skerr.NewOracleFailure{
			Op: "infer", Term: expr,
			Cause: fmt.Errorf("%s %q applied to %d arguments, wants %d", info.Kind, c.Name, len(args), info.Arity),
		})
	}
	if info.Kind == KindConstructor {
		return info.InstantiateResult(args), nil
	}
	if info.ResultTy == nil {
		return nil, skerr.New(skerr.NewOracleFailure{
			Op: "infer", Term: expr, Cause: fmt.Errorf("%s %q has no declared type", info.Kind, c.Name),
		})
	}
	return info.ResultTy, nil
}

// IsConstructorApp reports the head constructor of a saturated constructor
// application.
func (e *Engine) IsConstructorApp(expr kernel.Expr) (string, bool) {
	info, _, ok := e.env.ConstructorApp(e.InstantiateMetas(expr))
	if !ok {
		return "", false
	}
	return info.Name, true
}

// Decompose zips the argument lists of two applications of the same
// constructor into per-field equations, skipping the shared parameters.
// Each field compares inferred side types to decide between a homogeneous
// and a heterogeneous equation.
func (e *Engine) Decompose(ctx context.Context, lctx LocalContext, hypName string, lhs, rhs kernel.Expr) ([]FieldEq, error) {
	linfo, largs, ok := e.env.ConstructorApp(e.InstantiateMetas(lhs))
	if !ok {
		return nil, skerr.New(skerr.NewOracleFailure{
			Op: "decompose", Term: lhs, Cause: fmt.Errorf("not a saturated constructor application"),
		})
	}
	rinfo, rargs, ok := e.env.ConstructorApp(e.InstantiateMetas(rhs))
	if !ok {
		return nil, skerr.New(skerr.NewOracleFailure{
			Op: "decompose", Term: rhs, Cause: fmt.Errorf("not a saturated constructor application"),
		})
	}
	if linfo.Name != rinfo.Name {
		return nil, skerr.New(skerr.NewOracleFailure{
			Op: "decompose", Term: lhs,
			Cause: fmt.Errorf("constructor heads differ: %s vs %s", linfo.Name, rinfo.Name),
		})
	}
	fields := make([]FieldEq, 0, linfo.Arity-linfo.NumParams)
	for i := linfo.NumParams; i < linfo.Arity; i++ {
		la, ra := largs[i], rargs[i]
		lty, err := e.InferType(ctx, lctx, la)
		if err != nil {
			return nil, err
		}
		rty, err := e.InferType(ctx, lctx, ra)
		if err != nil {
			return nil, err
		}
		var stmt kernel.Expr
		if kernel.Equal(lty, rty) {
			stmt = kernel.MkEq(lty, la, ra)
		} else {
			stmt = kernel.MkHEq(lty, la, rty, ra)
		}
		fields = append(fields, FieldEq{
			Name: fmt.Sprintf("%s.%d", hypName, i),
			Type: stmt,
		})
	}
	return fields, nil
}

var (
	_ Oracle            = (*Engine)(nil)
	_ ConstructorOracle = (*Engine)(nil)
)
