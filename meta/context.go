package meta

import (
	"iter"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/skarn-lang/skarn/kernel"
)

// Decl is one local hypothesis or variable.
// Index is its position in the context; a declaration's type may only
// reference declarations with a strictly smaller index.
type Decl struct {
	ID    kernel.VarID
	Name  string
	Type  kernel.Expr
	Index int
}

type varIDHasher struct{}

func (varIDHasher) Hash(id kernel.VarID) uint32  { return uint32(id) ^ uint32(id>>32) }
func (varIDHasher) Equal(a, b kernel.VarID) bool { return a == b }

var _ immutable.Hasher[kernel.VarID] = varIDHasher{}

// LocalContext is a persistent ordered sequence of declarations. Every
// transformation returns a fresh context and leaves the receiver intact,
// which is what lets callers observe speculative edits before committing.
type LocalContext struct {
	decls  *immutable.List[Decl]
	byID   *immutable.Map[kernel.VarID, int]
	nextID kernel.VarID
}

func NewLocalContext() LocalContext {
	return LocalContext{
		decls:  immutable.NewList[Decl](),
		byID:   immutable.NewMap[kernel.VarID, int](varIDHasher{}),
		nextID: 1,
	}
}

func (lctx LocalContext) Len() int {
	return lctx.decls.Len()
}

func (lctx LocalContext) Lookup(id kernel.VarID) (Decl, bool) {
	i, ok := lctx.byID.Get(id)
	if !ok {
		return Decl{}, false
	}
	return lctx.decls.Get(i), true
}

func (lctx LocalContext) At(index int) (Decl, bool) {
	if index < 0 || index >= lctx.decls.Len() {
		return Decl{}, false
	}
	return lctx.decls.Get(index), true
}

// Decls iterates declarations in introduction order.
func (lctx LocalContext) Decls() iter.Seq[Decl] {
	return func(yield func(Decl) bool) {
		itr := lctx.decls.Iterator()
		for !itr.Done() {
			_, decl := itr.Next()
			if !yield(decl) {
				return
			}
		}
	}
}

// push appends a declaration under a fresh id.
func (lctx LocalContext) push(name string, ty kernel.Expr) (LocalContext, Decl) {
	decl := Decl{
		ID:    lctx.nextID,
		Name:  name,
		Type:  ty,
		Index: lctx.decls.Len(),
	}
	return LocalContext{
		decls:  lctx.decls.Append(decl),
		byID:   lctx.byID.Set(decl.ID, decl.Index),
		nextID: lctx.nextID + 1,
	}, decl
}

// without rebuilds the context with the given ids removed, recomputing
// indexes. Ids not present are ignored.
func (lctx LocalContext) without(ids ...kernel.VarID) LocalContext {
	drop := make(map[kernel.VarID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := LocalContext{
		decls:  immutable.NewList[Decl](),
		byID:   immutable.NewMap[kernel.VarID, int](varIDHasher{}),
		nextID: lctx.nextID,
	}
	itr := lctx.decls.Iterator()
	for !itr.Done() {
		_, decl := itr.Next()
		if _, gone := drop[decl.ID]; gone {
			continue
		}
		decl.Index = out.decls.Len()
		out.byID = out.byID.Set(decl.ID, decl.Index)
		out.decls = out.decls.Append(decl)
	}
	return out
}

// NameOf implements kernel.ShowCtx so terms print with hypothesis names.
func (lctx LocalContext) NameOf(v *kernel.Var) string {
	if decl, ok := lctx.Lookup(v.ID); ok {
		return decl.Name
	}
	return kernel.DumbShowCtx.NameOf(v)
}

var _ kernel.ShowCtx = LocalContext{}

func (lctx LocalContext) String() string {
	sb := &strings.Builder{}
	first := true
	for decl := range lctx.Decls() {
		if !first {
			sb.WriteString("\n")
		}
		first = false
		sb.WriteString(decl.Name)
		sb.WriteString(" : ")
		sb.WriteString(kernel.ExprStringIn(lctx, decl.Type))
	}
	return sb.String()
}
