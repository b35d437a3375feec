// Package elim simplifies the equality hypotheses that dependent
// elimination produces. One call retires one hypothesis: by substituting a
// variable away, by splitting a same-constructor equality into per-field
// equalities, or by turning a heterogeneous equality homogeneous once the
// side types are known to agree. The caller learns from NumNewEqs whether
// the pass left fresh equations behind and decides about further rounds.
package elim

import (
	"github.com/skarn-lang/skarn/kernel"
)

// Kind classifies the shape of a hypothesis type.
type Kind uint8

const (
	NotEquality Kind = iota
	Homogeneous
	Heterogeneous
)

func (k Kind) String() string {
	switch k {
	case Homogeneous:
		return "homogeneous"
	case Heterogeneous:
		return "heterogeneous"
	default:
		return "not-an-equality"
	}
}

// Classification is the structural view of one equality hypothesis. Ty is
// set for homogeneous equalities, LTy and RTy for heterogeneous ones.
type Classification struct {
	Kind     Kind
	Ty       kernel.Expr
	LTy, RTy kernel.Expr
	Lhs, Rhs kernel.Expr
}

// Classify matches ty against the two equality shapes by exact arity.
// Under- or over-applied equality heads are NotEquality; no reduction
// happens here, callers reduce first if they want reduction.
func Classify(ty kernel.Expr) Classification {
	if t, lhs, rhs, ok := kernel.AsEq(ty); ok {
		return Classification{Kind: Homogeneous, Ty: t, Lhs: lhs, Rhs: rhs}
	}
	if lty, lhs, rty, rhs, ok := kernel.AsHEq(ty); ok {
		return Classification{Kind: Heterogeneous, LTy: lty, RTy: rty, Lhs: lhs, Rhs: rhs}
	}
	return Classification{Kind: NotEquality}
}
