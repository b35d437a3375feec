package elim

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/meta"
	"github.com/skarn-lang/skarn/skerr"
)

func natC() kernel.Expr  { return &kernel.Const{Name: "Nat"} }
func zeroC() kernel.Expr { return &kernel.Const{Name: "zero"} }

func succC(e kernel.Expr) kernel.Expr {
	return kernel.MkApp(&kernel.Const{Name: "succ"}, e)
}

func vecC(n kernel.Expr) kernel.Expr {
	return kernel.MkApp(&kernel.Const{Name: "Vec"}, n)
}

func appC(name string, args ...kernel.Expr) kernel.Expr {
	return kernel.MkApp(&kernel.Const{Name: name}, args...)
}

// testSimplifier declares naturals, length-indexed vectors, a two-field
// pair, an unfoldable definition, two opaque naturals that are not defeq,
// and two definitionally equal type aliases with one opaque inhabitant
// each.
func testSimplifier(t *testing.T) (*meta.Engine, *Simplifier) {
	t.Helper()
	env := meta.NewEnv()
	sort1 := &kernel.Sort{Level: 1}
	for _, info := range []meta.ConstInfo{
		{Name: "Nat", Kind: meta.KindInductive, Arity: 0, ResultTy: sort1},
		{Name: "zero", Kind: meta.KindConstructor, Arity: 0, Of: "Nat", ResultTy: natC()},
		{Name: "succ", Kind: meta.KindConstructor, Arity: 1, Of: "Nat", ResultTy: natC()},
		{Name: "Vec", Kind: meta.KindInductive, Arity: 1, ResultTy: sort1},
		{Name: "vnil", Kind: meta.KindConstructor, Arity: 0, Of: "Vec", ResultTy: vecC(zeroC())},
		{Name: "vcons", Kind: meta.KindConstructor, Arity: 3, Of: "Vec",
			ResultTy: vecC(succC(&kernel.Meta{ID: 0}))},
		{Name: "Pair", Kind: meta.KindInductive, Arity: 0, ResultTy: sort1},
		{Name: "pair", Kind: meta.KindConstructor, Arity: 2, Of: "Pair", ResultTy: appC("Pair")},
		{Name: "one", Kind: meta.KindDef, Arity: 0, ResultTy: natC(), Body: succC(zeroC())},
		{Name: "three", Kind: meta.KindOpaque, Arity: 0, ResultTy: natC()},
		{Name: "four", Kind: meta.KindOpaque, Arity: 0, ResultTy: natC()},
		{Name: "T1", Kind: meta.KindDef, Arity: 0, ResultTy: sort1, Body: appC("Pair")},
		{Name: "T2", Kind: meta.KindDef, Arity: 0, ResultTy: sort1, Body: appC("Pair")},
		{Name: "cu", Kind: meta.KindOpaque, Arity: 0, ResultTy: appC("T1")},
		{Name: "cw", Kind: meta.KindOpaque, Arity: 0, ResultTy: appC("T2")},
	} {
		require.NoError(t, env.Declare(info))
	}
	engine := meta.NewEngine(env)
	return engine, &Simplifier{Oracle: engine, Ctors: engine}
}

func TestUnifyEqReflexiveHypotheses(t *testing.T) {
	testCases := []struct {
		name string
		ty   func(x meta.Decl) kernel.Expr
	}{
		{
			name: "identical constructor applications",
			ty:   func(meta.Decl) kernel.Expr { return kernel.MkEq(natC(), succC(zeroC()), succC(zeroC())) },
		},
		{
			name: "identical variables",
			ty: func(x meta.Decl) kernel.Expr {
				return kernel.MkEq(natC(), &kernel.Var{ID: x.ID}, &kernel.Var{ID: x.ID})
			},
		},
		{
			name: "identical opaque constants",
			ty:   func(meta.Decl) kernel.Expr { return kernel.MkEq(natC(), appC("three"), appC("three")) },
		},
		{
			name: "definitionally equal sides",
			ty:   func(meta.Decl) kernel.Expr { return kernel.MkEq(natC(), appC("one"), succC(zeroC())) },
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, s := testSimplifier(t)
			g := meta.NewGoal(appC("True"), meta.NewLocalContext())
			g, x := g.Assert("x", natC(), nil)
			sizeBefore := g.Lctx.Len()

			g, h := g.Assert("h", testCase.ty(x), nil)
			res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
			require.NoError(t, err)

			assert.Equal(t, 0, res.NumNewEqs)
			assert.False(t, res.Closed)
			assert.Equal(t, sizeBefore, res.Goal.Lctx.Len(), "net-zero context growth")
			_, ok := res.Goal.Lctx.Lookup(h.ID)
			assert.False(t, ok, "hypothesis retired")
		})
	}
}

func TestUnifyEqBothVariables(t *testing.T) {
	t.Run("later variable on the right", func(t *testing.T) {
		_, s := testSimplifier(t)
		g := meta.NewGoal(nil, meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g, y := g.Assert("y", natC(), nil)
		g.Target = appC("P", &kernel.Var{ID: y.ID})
		g, h := g.Assert("h", kernel.MkEq(natC(), &kernel.Var{ID: x.ID}, &kernel.Var{ID: y.ID}), nil)

		res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.NoError(t, err)

		assert.Equal(t, 0, res.NumNewEqs)
		_, ok := res.Goal.Lctx.Lookup(y.ID)
		assert.False(t, ok, "the later-declared variable goes away")
		_, ok = res.Goal.Lctx.Lookup(x.ID)
		assert.True(t, ok)

		replaced, ok := res.Subst.Get(y.ID)
		require.True(t, ok)
		assert.True(t, kernel.Equal(&kernel.Var{ID: x.ID}, replaced))
		assert.True(t, kernel.Equal(appC("P", &kernel.Var{ID: x.ID}), res.Goal.Target))
	})

	t.Run("later variable on the left", func(t *testing.T) {
		_, s := testSimplifier(t)
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g, y := g.Assert("y", natC(), nil)
		g, h := g.Assert("h", kernel.MkEq(natC(), &kernel.Var{ID: y.ID}, &kernel.Var{ID: x.ID}), nil)

		res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.NoError(t, err)

		_, ok := res.Goal.Lctx.Lookup(y.ID)
		assert.False(t, ok, "direction flips so the later variable still goes away")
		_, ok = res.Goal.Lctx.Lookup(x.ID)
		assert.True(t, ok)
	})
}

func TestUnifyEqSingleVariableSide(t *testing.T) {
	t.Run("variable on the left", func(t *testing.T) {
		_, s := testSimplifier(t)
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g.Target = appC("P", &kernel.Var{ID: x.ID})
		g, h := g.Assert("h", kernel.MkEq(natC(), &kernel.Var{ID: x.ID}, succC(zeroC())), nil)

		res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.NoError(t, err)

		assert.Equal(t, 0, res.NumNewEqs)
		_, ok := res.Goal.Lctx.Lookup(x.ID)
		assert.False(t, ok)
		assert.True(t, kernel.Equal(appC("P", succC(zeroC())), res.Goal.Target))
	})

	t.Run("variable on the right", func(t *testing.T) {
		_, s := testSimplifier(t)
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g, h := g.Assert("h", kernel.MkEq(natC(), succC(zeroC()), &kernel.Var{ID: x.ID}), nil)

		res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.NoError(t, err)

		_, ok := res.Goal.Lctx.Lookup(x.ID)
		assert.False(t, ok)
		replaced, ok := res.Subst.Get(x.ID)
		require.True(t, ok)
		assert.True(t, kernel.Equal(succC(zeroC()), replaced))
	})
}

func TestUnifyEqHeterogeneousConversion(t *testing.T) {
	_, s := testSimplifier(t)
	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, x := g.Assert("x", appC("T1"), nil)
	g, y := g.Assert("y", appC("T2"), nil)
	g, h := g.Assert("h", kernel.MkHEq(appC("T1"), &kernel.Var{ID: x.ID}, appC("T2"), &kernel.Var{ID: y.ID}), nil)

	res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.NoError(t, err)

	// conversion made the hypothesis homogeneous and the same pass then
	// substituted it away entirely
	assert.Equal(t, 0, res.NumNewEqs)
	assert.Equal(t, 1, res.Goal.Lctx.Len())
	_, ok := res.Goal.Lctx.Lookup(x.ID)
	assert.True(t, ok)
	_, ok = res.Goal.Lctx.Lookup(y.ID)
	assert.False(t, ok)
	_, ok = res.Goal.Lctx.Lookup(h.ID)
	assert.False(t, ok, "original heterogeneous id gone")

	replaced, ok := res.Subst.Get(y.ID)
	require.True(t, ok)
	assert.True(t, kernel.Equal(&kernel.Var{ID: x.ID}, replaced))
}

func TestUnifyEqConvertedFieldSurvivesUnderOriginalName(t *testing.T) {
	_, s := testSimplifier(t)
	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, q := g.Assert("q", natC(), nil)
	lhs := appC("pair", appC("cu"), &kernel.Var{ID: q.ID})
	rhs := appC("pair", appC("cw"), &kernel.Var{ID: q.ID})
	g, h := g.Assert("h", kernel.MkEq(appC("Pair"), lhs, rhs), nil)

	res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.NoError(t, err)

	// field 0 relates cu and cw across the two aliases: its heterogeneous
	// form converts, then nothing can retire `cu = cw`, so the
	// homogeneous hypothesis stays behind under the field's name
	assert.Equal(t, 1, res.NumNewEqs)
	assert.Equal(t, 2, res.Goal.Lctx.Len())
	_, ok := res.Goal.Lctx.Lookup(h.ID)
	assert.False(t, ok)

	var leftover *meta.Decl
	for decl := range res.Goal.Lctx.Decls() {
		if decl.Name == "h.0" {
			d := decl
			leftover = &d
		}
		assert.NotEqual(t, Heterogeneous, Classify(decl.Type).Kind, "no heterogeneous hypothesis remains")
	}
	require.NotNil(t, leftover, "field hypothesis kept under its name")
	cls := Classify(leftover.Type)
	assert.Equal(t, Homogeneous, cls.Kind)
	assert.True(t, kernel.Equal(appC("cu"), cls.Lhs))
	assert.True(t, kernel.Equal(appC("cw"), cls.Rhs))
}

func TestUnifyEqInjectionCountsUnresolvedFields(t *testing.T) {
	testCases := []struct {
		name          string
		lhs, rhs      kernel.Expr
		expectedCount int
		expectedSize  int
	}{
		{
			name:          "no field resolvable",
			lhs:           appC("pair", appC("three"), appC("three")),
			rhs:           appC("pair", appC("four"), appC("four")),
			expectedCount: 2,
			expectedSize:  2,
		},
		{
			name:          "one field resolvable by reflexivity",
			lhs:           appC("pair", appC("three"), appC("three")),
			rhs:           appC("pair", appC("three"), appC("four")),
			expectedCount: 1,
			expectedSize:  1,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, s := testSimplifier(t)
			g := meta.NewGoal(appC("True"), meta.NewLocalContext())
			g, h := g.Assert("h", kernel.MkEq(appC("Pair"), testCase.lhs, testCase.rhs), nil)

			res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
			require.NoError(t, err)

			assert.Equal(t, testCase.expectedCount, res.NumNewEqs)
			assert.Equal(t, testCase.expectedSize, res.Goal.Lctx.Len())
			_, ok := res.Goal.Lctx.Lookup(h.ID)
			assert.False(t, ok)
		})
	}
}

func TestUnifyEqInjectionResolvesVariableFields(t *testing.T) {
	_, s := testSimplifier(t)
	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, x := g.Assert("x", natC(), nil)
	g, y := g.Assert("y", natC(), nil)
	lhs := appC("pair", &kernel.Var{ID: x.ID}, &kernel.Var{ID: x.ID})
	rhs := appC("pair", &kernel.Var{ID: y.ID}, &kernel.Var{ID: y.ID})
	g, h := g.Assert("h", kernel.MkEq(appC("Pair"), lhs, rhs), nil)

	res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.NoError(t, err)

	// field 0 substitutes y := x, rewriting field 1 to `x = x`, which then
	// clears by reflexivity: the whole equality resolves in one pass
	assert.Equal(t, 0, res.NumNewEqs)
	assert.Equal(t, 1, res.Goal.Lctx.Len())
	_, ok := res.Goal.Lctx.Lookup(x.ID)
	assert.True(t, ok)
	_, ok = res.Goal.Lctx.Lookup(y.ID)
	assert.False(t, ok)
}

func TestUnifyEqDependentFieldsConverge(t *testing.T) {
	_, s := testSimplifier(t)
	g := meta.NewGoal(nil, meta.NewLocalContext())
	g, n := g.Assert("n", natC(), nil)
	g, m := g.Assert("m", natC(), nil)
	g, x := g.Assert("x", natC(), nil)
	g, y := g.Assert("y", natC(), nil)
	g, xs := g.Assert("xs", vecC(&kernel.Var{ID: n.ID}), nil)
	g, ys := g.Assert("ys", vecC(&kernel.Var{ID: m.ID}), nil)
	g.Target = appC("P", &kernel.Var{ID: ys.ID})

	lhs := appC("vcons", &kernel.Var{ID: n.ID}, &kernel.Var{ID: x.ID}, &kernel.Var{ID: xs.ID})
	rhs := appC("vcons", &kernel.Var{ID: m.ID}, &kernel.Var{ID: y.ID}, &kernel.Var{ID: ys.ID})
	g, h := g.Assert("h", kernel.MkEq(vecC(succC(&kernel.Var{ID: n.ID})), lhs, rhs), nil)

	res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.NoError(t, err)

	// the length field substitutes m := n, which rewrites the tail
	// equality to relate two `Vec n`; its heterogeneous form converts and
	// substitutes away like the others — one pass, nothing left over
	assert.Equal(t, 0, res.NumNewEqs)
	assert.Equal(t, 3, res.Goal.Lctx.Len())
	for _, gone := range []meta.Decl{m, y, ys, h} {
		_, ok := res.Goal.Lctx.Lookup(gone.ID)
		assert.False(t, ok, "%s retired", gone.Name)
	}
	for _, kept := range []meta.Decl{n, x, xs} {
		_, ok := res.Goal.Lctx.Lookup(kept.ID)
		assert.True(t, ok, "%s survives", kept.Name)
	}

	assert.True(t, kernel.Equal(appC("P", &kernel.Var{ID: xs.ID}), res.Goal.Target),
		"target follows the composed substitution, got %s", kernel.ExprString(res.Goal.Target))

	replaced, ok := res.Subst.Get(ys.ID)
	require.True(t, ok)
	assert.True(t, kernel.Equal(&kernel.Var{ID: xs.ID}, replaced),
		"ys chains through its moved successor to xs, got %s", kernel.ExprString(replaced))
	replaced, ok = res.Subst.Get(m.ID)
	require.True(t, ok)
	assert.True(t, kernel.Equal(&kernel.Var{ID: n.ID}, replaced))
}

func TestUnifyEqUnsolvable(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		_, s := testSimplifier(t)
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g, h := g.Assert("h", kernel.MkEq(natC(), appC("three"), appC("four")), nil)

		_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.Error(t, err)
		assert.Equal(t, skerr.UnsolvableEquation, skerr.CodeOf(err))
		assert.ErrorContains(t, err, "dependent elimination failed, failed to solve equation")
		assert.ErrorContains(t, err, "Eq Nat three four")
		assert.NotContains(t, err.Error(), "at case")

		// the failed call leaves the goal exactly as it was
		assert.Equal(t, 2, g.Lctx.Len())
		_, ok := g.Lctx.Lookup(h.ID)
		assert.True(t, ok)
		_, ok = g.Lctx.Lookup(x.ID)
		assert.True(t, ok)
	})

	t.Run("with case label", func(t *testing.T) {
		_, s := testSimplifier(t)
		s.CaseName = "cons.cons"
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, h := g.Assert("h", kernel.MkEq(natC(), appC("three"), appC("four")), nil)

		_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.Error(t, err)
		assert.ErrorContains(t, err, "at case cons.cons")
	})
}

func TestUnifyEqNotAnEquality(t *testing.T) {
	_, s := testSimplifier(t)
	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, x := g.Assert("x", natC(), nil)
	g, h := g.Assert("h", appC("P", &kernel.Var{ID: x.ID}), nil)

	_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.Error(t, err)
	assert.Equal(t, skerr.NotAnEquality, skerr.CodeOf(err))
	assert.ErrorContains(t, err, "equality expected")
}

func TestUnifyEqHeterogeneousTypesNotDefeq(t *testing.T) {
	_, s := testSimplifier(t)
	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, x := g.Assert("x", natC(), nil)
	g, v := g.Assert("v", vecC(zeroC()), nil)
	g, h := g.Assert("h", kernel.MkHEq(natC(), &kernel.Var{ID: x.ID}, vecC(zeroC()), &kernel.Var{ID: v.ID}), nil)

	_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.Error(t, err)
	assert.Equal(t, skerr.UnsolvableEquation, skerr.CodeOf(err))
	assert.Equal(t, 3, g.Lctx.Len(), "goal untouched")
}

func TestUnifyEqAcyclicHook(t *testing.T) {
	cyclic := func(x meta.Decl) kernel.Expr {
		return kernel.MkEq(natC(), &kernel.Var{ID: x.ID}, succC(&kernel.Var{ID: x.ID}))
	}

	t.Run("no hook means unsolvable", func(t *testing.T) {
		_, s := testSimplifier(t)
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g, h := g.Assert("h", cyclic(x), nil)

		_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.Error(t, err)
		assert.Equal(t, skerr.UnsolvableEquation, skerr.CodeOf(err))
	})

	t.Run("hook discharges the goal", func(t *testing.T) {
		_, s := testSimplifier(t)
		var sawProof kernel.Expr
		s.Acyclic = func(_ context.Context, goal *meta.Goal, eqProof kernel.Expr) (bool, error) {
			sawProof = eqProof
			return true, nil
		}
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g, h := g.Assert("h", cyclic(x), nil)

		res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.NoError(t, err)
		assert.True(t, res.Closed)
		assert.Nil(t, res.Goal)
		assert.True(t, kernel.Equal(&kernel.Var{ID: h.ID}, sawProof), "hook sees the hypothesis as proof")
	})

	t.Run("hook declines", func(t *testing.T) {
		_, s := testSimplifier(t)
		s.Acyclic = func(context.Context, *meta.Goal, kernel.Expr) (bool, error) { return false, nil }
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g, h := g.Assert("h", cyclic(x), nil)

		_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		require.Error(t, err)
		assert.Equal(t, skerr.UnsolvableEquation, skerr.CodeOf(err))
	})

	t.Run("hook failure propagates verbatim", func(t *testing.T) {
		_, s := testSimplifier(t)
		sentinel := errors.New("external refuter unavailable")
		s.Acyclic = func(context.Context, *meta.Goal, kernel.Expr) (bool, error) { return false, sentinel }
		g := meta.NewGoal(appC("True"), meta.NewLocalContext())
		g, x := g.Assert("x", natC(), nil)
		g, h := g.Assert("h", cyclic(x), nil)

		_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
		assert.ErrorIs(t, err, sentinel)
	})
}

func TestUnifyEqInstantiatesHypothesisType(t *testing.T) {
	engine, s := testSimplifier(t)
	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, x := g.Assert("x", natC(), nil)
	g, y := g.Assert("y", natC(), nil)
	g, h := g.Assert("h", &kernel.Meta{ID: 7}, nil)

	require.NoError(t, engine.AssignMeta(7,
		kernel.MkEq(natC(), &kernel.Var{ID: x.ID}, &kernel.Var{ID: y.ID})))

	res, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.NoError(t, err)

	assert.Equal(t, 0, res.NumNewEqs)
	_, ok := res.Goal.Lctx.Lookup(y.ID)
	assert.False(t, ok)
	for decl := range res.Goal.Lctx.Decls() {
		assert.False(t, kernel.HasMeta(decl.Type), "no metavariable-typed declaration survives")
	}
}

func TestUnifyEqTraceEmission(t *testing.T) {
	_, s := testSimplifier(t)
	buf := &bytes.Buffer{}
	s.Trace = meta.NewTraceConfig(meta.TraceElimDebug).
		WithLogger(slog.New(slog.NewTextHandler(buf, nil)))

	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, x := g.Assert("x", natC(), nil)
	g, y := g.Assert("y", natC(), nil)
	lhs := appC("pair", &kernel.Var{ID: x.ID}, &kernel.Var{ID: x.ID})
	rhs := appC("pair", &kernel.Var{ID: y.ID}, &kernel.Var{ID: y.ID})
	g, h := g.Assert("h", kernel.MkEq(appC("Pair"), lhs, rhs), nil)

	_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "a: pair x x b: pair y y ==> h.0 : Eq Nat x y")
	assert.Contains(t, out, "a: pair x x b: pair y y ==> h.1 : Eq Nat x x",
		"second field traced after the first substitution rewrote it")
	assert.Contains(t, out, s.Trace.Run())
}

func TestUnifyEqTraceDisabledEmitsNothing(t *testing.T) {
	_, s := testSimplifier(t)
	buf := &bytes.Buffer{}
	s.Trace = meta.NewTraceConfig().
		WithLogger(slog.New(slog.NewTextHandler(buf, nil)))

	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, h := g.Assert("h", kernel.MkEq(natC(), succC(zeroC()), succC(zeroC())), nil)

	_, err := s.UnifyEq(context.Background(), g, h.ID, meta.NewVarSubst())
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestUnifyEqCancelledContext(t *testing.T) {
	_, s := testSimplifier(t)
	g := meta.NewGoal(appC("True"), meta.NewLocalContext())
	g, h := g.Assert("h", kernel.MkEq(natC(), zeroC(), zeroC()), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.UnifyEq(ctx, g, h.ID, meta.NewVarSubst())
	require.Error(t, err)
	assert.Equal(t, skerr.OracleFailure, skerr.CodeOf(err))
}

func TestUnifyEqUnknownHypothesis(t *testing.T) {
	_, s := testSimplifier(t)
	g := meta.NewGoal(appC("True"), meta.NewLocalContext())

	_, err := s.UnifyEq(context.Background(), g, kernel.VarID(424242), meta.NewVarSubst())
	require.Error(t, err)
	assert.Equal(t, skerr.Internal, skerr.CodeOf(err))
}
