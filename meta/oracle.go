package meta

import (
	"context"

	"github.com/skarn-lang/skarn/kernel"
)

// Oracle is the reduction and typing surface the elimination core consults.
// It is deliberately small: the core never type-checks, it only asks the
// questions below and trusts the answers.
type Oracle interface {
	// IsDefEq reports whether a and b are definitionally equal.
	IsDefEq(ctx context.Context, a, b kernel.Expr) (bool, error)

	// WHNF reduces e to weak head normal form.
	WHNF(ctx context.Context, e kernel.Expr) (kernel.Expr, error)

	// InferType returns the type of e under lctx.
	InferType(ctx context.Context, lctx LocalContext, e kernel.Expr) (kernel.Expr, error)

	// InstantiateMetas substitutes assigned metavariables in e. Unassigned
	// metavariables stay in place.
	InstantiateMetas(e kernel.Expr) kernel.Expr
}

// FieldEq is one equation produced by decomposing an equality between two
// applications of the same constructor.
type FieldEq struct {
	Name string
	Type kernel.Expr
}

// ConstructorOracle answers the structural questions about constructor
// applications that drive injection.
type ConstructorOracle interface {
	// IsConstructorApp reports the constructor name when e is a saturated
	// constructor application.
	IsConstructorApp(e kernel.Expr) (string, bool)

	// Decompose splits `lhs = rhs`, both saturated applications of the same
	// constructor, into one equation per argument after the shared
	// parameters. Fields are named `<hypName>.<argIndex>`; a field whose
	// inferred side types differ syntactically comes back heterogeneous.
	Decompose(ctx context.Context, lctx LocalContext, hypName string, lhs, rhs kernel.Expr) ([]FieldEq, error)
}
