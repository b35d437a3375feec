package elim

import (
	"context"

	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/meta"
	"github.com/skarn-lang/skarn/skerr"
)

// toHomogeneous replaces decl, a heterogeneous equality whose side types
// are defeq, with the homogeneous proposition over the left side's type,
// asserted under the original name and proved by the canonical conversion
// of the old hypothesis. The original is cleared, so the context keeps its
// size. Returns the refreshed goal and the new declaration.
func (s *Simplifier) toHomogeneous(ctx context.Context, goal *meta.Goal, decl meta.Decl, cls Classification) (*meta.Goal, meta.Decl, error) {
	prop := kernel.MkEq(cls.LTy, cls.Lhs, cls.Rhs)
	prop, err := s.Oracle.WHNF(ctx, prop)
	if err != nil {
		return nil, meta.Decl{}, err
	}
	proof := kernel.MkEqOfHEq(&kernel.Var{ID: decl.ID})
	asserted, fresh := goal.Assert(decl.Name, prop, proof)
	cleared, err := asserted.Clear(decl.ID)
	if err != nil {
		return nil, meta.Decl{}, skerr.New(skerr.NewOracleFailure{Op: "clear", Term: prop, Cause: err})
	}
	logger.Debug("converted heterogeneous hypothesis", "hyp", decl.Name, "type", prop)
	out, ok := cleared.Lctx.Lookup(fresh.ID)
	if !ok {
		return nil, meta.Decl{}, skerr.New(skerr.NewInternal{Reason: "converted hypothesis vanished"})
	}
	return cleared, out, nil
}
