// Package kernel holds skarn's term representation: a small immutable tree
// of variable references, metavariables, constants, applications, and sorts.
//
// Terms carry no binders. Everything the elimination engine inspects is an
// application spine, and constant signatures live in the environment rather
// than in Pi types, which keeps the tree closed under the operations here.
package kernel

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"

	set "github.com/hashicorp/go-set/v3"
)

// VarID identifies a declaration in a local context.
type VarID uint64

// MetaID identifies a metavariable in the engine's assignment store.
type MetaID uint64

type Expr interface {
	ShowIn(ctx ShowCtx, outerPrecedence uint16) string
	Hash() uint64
	exprNode()
}

var (
	_ Expr = (*Var)(nil)
	_ Expr = (*Meta)(nil)
	_ Expr = (*Const)(nil)
	_ Expr = (*App)(nil)
	_ Expr = (*Sort)(nil)
)

// Var is a reference to a local declaration. Its display name is not stored
// here: rendering resolves it through a ShowCtx so substitution never has to
// chase name fields.
type Var struct {
	ID VarID
}

func (*Var) exprNode() {}

func (v *Var) ShowIn(ctx ShowCtx, _ uint16) string {
	return ctx.NameOf(v)
}

func (v *Var) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Var"))
	arr := make([]byte, 0, 8)
	arr = binary.LittleEndian.AppendUint64(arr, uint64(v.ID))
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Meta is a metavariable reference.
// NameHint may be ""
type Meta struct {
	ID       MetaID
	NameHint string
}

func (*Meta) exprNode() {}

func (m *Meta) ShowIn(ShowCtx, uint16) string {
	if m.NameHint != "" {
		return "?" + m.NameHint
	}
	return "?" + strconv.FormatUint(uint64(m.ID), 10)
}

func (m *Meta) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Meta"))
	arr := make([]byte, 0, 8)
	arr = binary.LittleEndian.AppendUint64(arr, uint64(m.ID))
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Const is a reference to an environment constant: an inductive, one of its
// constructors, or a definition.
type Const struct {
	Name string
}

func (*Const) exprNode() {}

func (c *Const) ShowIn(ShowCtx, uint16) string { return c.Name }

func (c *Const) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Const"))
	_, _ = h.Write([]byte(c.Name))
	return h.Sum64()
}

// App is a curried application node; `f a b` is App{App{f, a}, b}.
type App struct {
	Fn  Expr
	Arg Expr
}

func (*App) exprNode() {}

func (a *App) ShowIn(ctx ShowCtx, outerPrecedence uint16) string {
	const thisPrecedence uint16 = 10
	s := a.Fn.ShowIn(ctx, thisPrecedence) + " " + a.Arg.ShowIn(ctx, thisPrecedence+1)
	return withParensIf(outerPrecedence > thisPrecedence, s)
}

func (a *App) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("App"))
	arr := make([]byte, 0, 16)
	arr = binary.LittleEndian.AppendUint64(arr, a.Fn.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, a.Arg.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Sort is a universe: Sort 0 classifies propositions, Sort 1 ordinary data
// types, and so on up.
type Sort struct {
	Level uint32
}

func (*Sort) exprNode() {}

func (s *Sort) ShowIn(ShowCtx, uint16) string {
	return "Sort " + strconv.FormatUint(uint64(s.Level), 10)
}

func (s *Sort) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Sort"))
	arr := make([]byte, 0, 4)
	arr = binary.LittleEndian.AppendUint32(arr, s.Level)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// MkApp applies head to args left to right.
func MkApp(head Expr, args ...Expr) Expr {
	e := head
	for _, arg := range args {
		e = &App{Fn: e, Arg: arg}
	}
	return e
}

// Spine unrolls an application chain into its head and argument list.
// A non-application returns itself with no args.
func Spine(e Expr) (head Expr, args []Expr) {
	for {
		app, ok := e.(*App)
		if !ok {
			return e, args
		}
		args = append([]Expr{app.Arg}, args...)
		e = app.Fn
	}
}

// AppOfArity returns the arguments of e when e is exactly the constant name
// applied to arity arguments.
func AppOfArity(e Expr, name string, arity int) ([]Expr, bool) {
	head, args := Spine(e)
	c, ok := head.(*Const)
	if !ok || c.Name != name || len(args) != arity {
		return nil, false
	}
	return args, true
}

// Equal reports structural equality. Hashes are compared first since in this
// tree unequal hashes imply unequal terms far more often than collisions.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.Hash() != b.Hash() {
		return false
	}
	switch a := a.(type) {
	case *Var:
		b, ok := b.(*Var)
		return ok && a.ID == b.ID
	case *Meta:
		b, ok := b.(*Meta)
		return ok && a.ID == b.ID
	case *Const:
		b, ok := b.(*Const)
		return ok && a.Name == b.Name
	case *Sort:
		b, ok := b.(*Sort)
		return ok && a.Level == b.Level
	case *App:
		b, ok := b.(*App)
		return ok && Equal(a.Fn, b.Fn) && Equal(a.Arg, b.Arg)
	default:
		return false
	}
}

// FreeVars collects every VarID referenced anywhere in e.
func FreeVars(e Expr) *set.Set[VarID] {
	vars := set.New[VarID](4)
	walkVars(e, func(id VarID) bool {
		vars.Insert(id)
		return true
	})
	return vars
}

// HasFreeVar reports whether id occurs in e, stopping at the first hit.
func HasFreeVar(e Expr, id VarID) bool {
	found := false
	walkVars(e, func(seen VarID) bool {
		if seen == id {
			found = true
			return false
		}
		return true
	})
	return found
}

func walkVars(e Expr, visit func(VarID) bool) bool {
	switch e := e.(type) {
	case *Var:
		return visit(e.ID)
	case *App:
		return walkVars(e.Fn, visit) && walkVars(e.Arg, visit)
	default:
		return true
	}
}

// ReplaceVars rewrites every Var the mapping covers, sharing untouched
// subtrees with the input.
func ReplaceVars(e Expr, mapping func(VarID) (Expr, bool)) Expr {
	switch e := e.(type) {
	case *Var:
		if replacement, ok := mapping(e.ID); ok {
			return replacement
		}
		return e
	case *App:
		fn := ReplaceVars(e.Fn, mapping)
		arg := ReplaceVars(e.Arg, mapping)
		if fn == e.Fn && arg == e.Arg {
			return e
		}
		return &App{Fn: fn, Arg: arg}
	default:
		return e
	}
}

// ReplaceMetas rewrites every assigned Meta, sharing untouched subtrees.
// Replacement terms are themselves rewritten, so chained assignments resolve
// in one call.
func ReplaceMetas(e Expr, mapping func(MetaID) (Expr, bool)) Expr {
	switch e := e.(type) {
	case *Meta:
		if replacement, ok := mapping(e.ID); ok {
			return ReplaceMetas(replacement, mapping)
		}
		return e
	case *App:
		fn := ReplaceMetas(e.Fn, mapping)
		arg := ReplaceMetas(e.Arg, mapping)
		if fn == e.Fn && arg == e.Arg {
			return e
		}
		return &App{Fn: fn, Arg: arg}
	default:
		return e
	}
}

// HasMeta reports whether any metavariable occurs in e.
func HasMeta(e Expr) bool {
	switch e := e.(type) {
	case *Meta:
		return true
	case *App:
		return HasMeta(e.Fn) || HasMeta(e.Arg)
	default:
		return false
	}
}
