package kernel

// Built-in constant names the elimination engine recognises structurally.
const (
	ConstEq      = "Eq"
	ConstHEq     = "HEq"
	ConstEqOfHEq = "eqOfHEq"
)

// MkEq builds the homogeneous proposition `Eq ty lhs rhs`.
func MkEq(ty, lhs, rhs Expr) Expr {
	return MkApp(&Const{Name: ConstEq}, ty, lhs, rhs)
}

// MkHEq builds the heterogeneous proposition `HEq lty lhs rty rhs`.
func MkHEq(lty, lhs, rty, rhs Expr) Expr {
	return MkApp(&Const{Name: ConstHEq}, lty, lhs, rty, rhs)
}

// MkEqOfHEq builds the canonical conversion proof term turning a proof of a
// heterogeneous equality into a proof of the homogeneous one. The engine
// never inspects proof terms, so the application is all there is to build.
func MkEqOfHEq(heqProof Expr) Expr {
	return MkApp(&Const{Name: ConstEqOfHEq}, heqProof)
}

// AsEq matches `Eq ty lhs rhs` exactly; under- or over-applied equality
// heads do not classify.
func AsEq(e Expr) (ty, lhs, rhs Expr, ok bool) {
	args, ok := AppOfArity(e, ConstEq, 3)
	if !ok {
		return nil, nil, nil, false
	}
	return args[0], args[1], args[2], true
}

// AsHEq matches `HEq lty lhs rty rhs` exactly.
func AsHEq(e Expr) (lty, lhs, rty, rhs Expr, ok bool) {
	args, ok := AppOfArity(e, ConstHEq, 4)
	if !ok {
		return nil, nil, nil, nil, false
	}
	return args[0], args[1], args[2], args[3], true
}
