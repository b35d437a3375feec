package kernel

import "strconv"

// ShowCtx resolves display names when rendering terms. The local context
// implements it so hypotheses print under their user-facing names.
type ShowCtx interface {
	NameOf(v *Var) string
}

type dumbShowCtx struct{}

// DumbShowCtx renders variables as #id, for terms detached from any context.
var DumbShowCtx ShowCtx = (*dumbShowCtx)(nil)

func (*dumbShowCtx) NameOf(v *Var) string { return "#" + strconv.FormatUint(uint64(v.ID), 10) }

// ExprString renders e without a context.
func ExprString(e Expr) string {
	if e == nil {
		return "nil"
	}
	return e.ShowIn(DumbShowCtx, 0)
}

// ExprStringIn renders e resolving variable names through ctx.
func ExprStringIn(ctx ShowCtx, e Expr) string {
	if e == nil {
		return "nil"
	}
	return e.ShowIn(ctx, 0)
}

func withParensIf(when bool, str string) string {
	if when {
		return "(" + str + ")"
	}
	return str
}
