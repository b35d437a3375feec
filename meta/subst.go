package meta

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/skarn-lang/skarn/kernel"
)

// VarSubst is the running substitution accumulated while equalities get
// eliminated. It maps a retired variable to the term that replaced it.
//
// Invariant: no id in the domain occurs in any range term, so Apply needs a
// single pass. Insert maintains this by normalising both directions.
type VarSubst struct {
	m *immutable.Map[kernel.VarID, kernel.Expr]
}

func NewVarSubst() VarSubst {
	return VarSubst{m: immutable.NewMap[kernel.VarID, kernel.Expr](varIDHasher{})}
}

func (s VarSubst) Len() int {
	if s.m == nil {
		return 0
	}
	return s.m.Len()
}

func (s VarSubst) Get(id kernel.VarID) (kernel.Expr, bool) {
	if s.m == nil {
		return nil, false
	}
	return s.m.Get(id)
}

// Apply rewrites every substituted variable in e.
func (s VarSubst) Apply(e kernel.Expr) kernel.Expr {
	if s.m == nil || s.m.Len() == 0 {
		return e
	}
	return kernel.ReplaceVars(e, s.Get)
}

// Insert binds id to value. The existing substitution is applied to value
// first, and existing range terms are rewritten under the new binding, so
// the fully-applied invariant survives composition in either order.
func (s VarSubst) Insert(id kernel.VarID, value kernel.Expr) VarSubst {
	if s.m == nil {
		s = NewVarSubst()
	}
	value = s.Apply(value)
	single := func(seen kernel.VarID) (kernel.Expr, bool) {
		if seen == id {
			return value, true
		}
		return nil, false
	}
	out := immutable.NewMap[kernel.VarID, kernel.Expr](varIDHasher{})
	itr := s.m.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		out = out.Set(k, kernel.ReplaceVars(v, single))
	}
	return VarSubst{m: out.Set(id, value)}
}

// All iterates the bindings in unspecified order.
func (s VarSubst) All() iter.Seq2[kernel.VarID, kernel.Expr] {
	return func(yield func(kernel.VarID, kernel.Expr) bool) {
		if s.m == nil {
			return
		}
		itr := s.m.Iterator()
		for !itr.Done() {
			k, v, _ := itr.Next()
			if !yield(k, v) {
				return
			}
		}
	}
}

func (s VarSubst) LogValue() slog.Value {
	if s.m == nil || s.m.Len() == 0 {
		return slog.StringValue("{}")
	}
	sb := &strings.Builder{}
	sb.WriteString("{")
	itr := s.m.Iterator()
	first := true
	for !itr.Done() {
		k, v, _ := itr.Next()
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(kernel.ExprString(&kernel.Var{ID: k}))
		sb.WriteString(" := ")
		sb.WriteString(kernel.ExprString(v))
	}
	sb.WriteString("}")
	return slog.StringValue(sb.String())
}
