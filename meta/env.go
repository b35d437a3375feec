// Package meta is skarn's metaprogram layer: environments of declared
// constants, goals with their ordered local contexts, running variable
// substitutions, and the reduction/defeq engine the tactic code consults.
package meta

import (
	"fmt"

	"github.com/skarn-lang/skarn/kernel"
)

type ConstKind uint8

const (
	_ ConstKind = iota
	KindInductive
	KindConstructor
	KindDef
	KindOpaque
)

func (k ConstKind) String() string {
	switch k {
	case KindInductive:
		return "inductive"
	case KindConstructor:
		return "constructor"
	case KindDef:
		return "def"
	case KindOpaque:
		return "opaque"
	default:
		return "invalid"
	}
}

// ConstInfo describes one environment constant.
//
// Result types avoid binders. For constructors, ResultTy is a template in
// which the placeholder ?i stands for the i-th argument of the saturated
// application: `vcons` for length-indexed vectors declares
// `Vec (succ ?0)` so `vcons n x xs` has type `Vec (succ n)`.
type ConstInfo struct {
	Name  string
	Kind  ConstKind
	Arity int

	// ResultTy is the type of the saturated constant. Closed except for
	// constructor placeholders. May be nil when nothing ever infers it.
	ResultTy kernel.Expr

	// constructor shape
	Of        string
	NumParams int

	// Body unfolds nullary definitions during weak-head reduction.
	Body kernel.Expr
}

// InstantiateResult builds the type of a saturated application of this
// constructor by filling the ?i placeholders of ResultTy with args.
func (info ConstInfo) InstantiateResult(args []kernel.Expr) kernel.Expr {
	return fillPlaceholders(info.ResultTy, args)
}

// fillPlaceholders is a single non-recursive pass: placeholders inside the
// substituted arguments are real metavariables and must survive untouched.
func fillPlaceholders(e kernel.Expr, args []kernel.Expr) kernel.Expr {
	switch e := e.(type) {
	case *kernel.Meta:
		if i := int(e.ID); i < len(args) {
			return args[i]
		}
		return e
	case *kernel.App:
		fn := fillPlaceholders(e.Fn, args)
		arg := fillPlaceholders(e.Arg, args)
		if fn == e.Fn && arg == e.Arg {
			return e
		}
		return &kernel.App{Fn: fn, Arg: arg}
	default:
		return e
	}
}

func placeholdersInRange(e kernel.Expr, arity int) bool {
	switch e := e.(type) {
	case *kernel.Meta:
		return int(e.ID) < arity
	case *kernel.App:
		return placeholdersInRange(e.Fn, arity) && placeholdersInRange(e.Arg, arity)
	default:
		return true
	}
}

// Env is the set of declared constants. It is built once by a loader or a
// test and is read-only while elimination runs.
type Env struct {
	consts map[string]ConstInfo
}

func NewEnv() *Env {
	return &Env{consts: make(map[string]ConstInfo)}
}

func (e *Env) Declare(info ConstInfo) error {
	if info.Name == "" {
		return fmt.Errorf("constant with empty name")
	}
	if _, ok := e.consts[info.Name]; ok {
		return fmt.Errorf("constant %q declared twice", info.Name)
	}
	if info.Kind == KindConstructor {
		if info.Of == "" {
			return fmt.Errorf("constructor %q has no inductive", info.Name)
		}
		if info.NumParams > info.Arity {
			return fmt.Errorf("constructor %q has more parameters than arguments", info.Name)
		}
		if info.ResultTy == nil {
			return fmt.Errorf("constructor %q has no result type", info.Name)
		}
		if !placeholdersInRange(info.ResultTy, info.Arity) {
			return fmt.Errorf("constructor %q result type references an argument it does not take", info.Name)
		}
	}
	if info.Kind == KindDef && info.Body != nil && info.Arity != 0 {
		return fmt.Errorf("definition %q has a body but is not nullary", info.Name)
	}
	e.consts[info.Name] = info
	return nil
}

func (e *Env) Lookup(name string) (ConstInfo, bool) {
	info, ok := e.consts[name]
	return info, ok
}

// ConstructorApp matches a saturated constructor application, returning the
// constructor and its full argument list.
func (e *Env) ConstructorApp(expr kernel.Expr) (ConstInfo, []kernel.Expr, bool) {
	head, args := kernel.Spine(expr)
	c, ok := head.(*kernel.Const)
	if !ok {
		return ConstInfo{}, nil, false
	}
	info, ok := e.consts[c.Name]
	if !ok || info.Kind != KindConstructor || len(args) != info.Arity {
		return ConstInfo{}, nil, false
	}
	return info, args, true
}
