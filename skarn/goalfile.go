package skarn

import (
	"fmt"
	"os"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"github.com/xtgo/set"
	"gopkg.in/yaml.v3"

	"github.com/skarn-lang/skarn/elim"
	"github.com/skarn-lang/skarn/internal/log"
	"github.com/skarn-lang/skarn/kernel"
	"github.com/skarn-lang/skarn/meta"
	"github.com/skarn-lang/skarn/skerr"
)

var logger = log.DefaultLogger.With("section", "skarn")

// GoalFile is the YAML description of one simplification problem: an
// environment of constants, a local context, optional metavariable
// assignments, and a target.
type GoalFile struct {
	Name   string      `yaml:"name"`
	Consts []ConstSpec `yaml:"consts"`
	Decls  []DeclSpec  `yaml:"decls"`
	Metas  []MetaSpec  `yaml:"metas"`
	Target string      `yaml:"target"`
	Case   string      `yaml:"case"`
	Trace  []string    `yaml:"trace"`
}

// ConstSpec declares one environment constant. Type is the type of the
// saturated constant; for constructors it may use `?i` for the i-th
// argument. Body is only legal on nullary defs.
type ConstSpec struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Of     string `yaml:"of"`
	Arity  int    `yaml:"arity"`
	Params int    `yaml:"params"`
	Type   string `yaml:"type"`
	Body   string `yaml:"body"`
}

// DeclSpec introduces one local declaration. Types may reference earlier
// declarations and any constant; declarations shadow constants.
type DeclSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// MetaSpec assigns a metavariable before simplification starts.
type MetaSpec struct {
	Meta  uint64 `yaml:"meta"`
	Value string `yaml:"value"`
}

// LoadedGoal is a goal file made concrete: an engine over the declared
// environment, the initial goal, and the simplifier options the file asked
// for. Validation problems accumulate in Errors rather than aborting the
// load, so callers see every problem at once.
type LoadedGoal struct {
	Name   string
	Engine *meta.Engine
	Goal   *meta.Goal
	Decls  map[string]meta.Decl
	Case   string
	Trace  meta.TraceConfig

	errs *skerr.Errors
}

func (lg *LoadedGoal) Errors() *skerr.Errors { return lg.errs }

// Simplifier assembles the elimination core over this goal's engine.
func (lg *LoadedGoal) Simplifier() *elim.Simplifier {
	return &elim.Simplifier{
		Oracle:   lg.Engine,
		Ctors:    lg.Engine,
		Trace:    lg.Trace,
		CaseName: lg.Case,
	}
}

// LoadGoalFile reads a goal file from disk.
func LoadGoalFile(path string) (*LoadedGoal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read goal file %s", path)
	}
	return ParseGoalFile(data, path)
}

// ParseGoalFile loads a YAML goal description. The returned error is only
// non-nil for input that is not YAML at all; everything else lands in the
// result's Errors.
func ParseGoalFile(data []byte, fileName string) (*LoadedGoal, error) {
	var file GoalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, skerr.New(skerr.NewMalformedGoalFile{File: fileName, Detail: err.Error()})
	}
	l := &goalLoader{
		file: file,
		name: fileName,
		env:  meta.NewEnv(),
		vars: make(map[string]kernel.VarID),
	}
	return l.load(), nil
}

type goalLoader struct {
	file GoalFile
	name string
	env  *meta.Env
	vars map[string]kernel.VarID
	errs *skerr.Errors
}

func (l *goalLoader) problem(format string, args ...any) {
	l.errs = l.errs.With(skerr.New(skerr.NewMalformedGoalFile{
		File:   l.name,
		Detail: fmt.Sprintf(format, args...),
	}))
}

// reservedNames cannot be declared: the simplifier recognises the equality
// heads structurally, and Sort is term syntax.
var reservedNames = map[string]struct{}{
	kernel.ConstEq:      {},
	kernel.ConstHEq:     {},
	kernel.ConstEqOfHEq: {},
	"Sort":              {},
}

var constKinds = map[string]meta.ConstKind{
	meta.KindInductive.String():   meta.KindInductive,
	meta.KindConstructor.String(): meta.KindConstructor,
	meta.KindDef.String():         meta.KindDef,
	meta.KindOpaque.String():      meta.KindOpaque,
}

func (l *goalLoader) load() *LoadedGoal {
	l.loadConsts()
	goal, decls := l.loadDecls()
	engine := meta.NewEngine(l.env)
	l.loadMetas(engine)

	if l.file.Target == "" {
		l.problem("missing target")
	} else if target, err := ReadTerm(l.file.Target, l.resolveTerm); err != nil {
		l.problem("target: %s", err)
	} else {
		l.checkArities("target", target)
		goal.Target = target
	}

	name := l.file.Name
	if name == "" {
		name = l.name
	}
	lg := &LoadedGoal{
		Name:   name,
		Engine: engine,
		Goal:   goal,
		Decls:  decls,
		Case:   l.file.Case,
		Trace:  meta.NewTraceConfig(l.traceOptions()...),
		errs:   l.errs,
	}
	logger.Debug("loaded goal file",
		"file", l.name,
		"consts", len(l.file.Consts),
		"decls", len(decls),
		"ok", !l.errs.HasError(),
	)
	return lg
}

func (l *goalLoader) loadConsts() {
	for i, c := range l.file.Consts {
		where := fmt.Sprintf("consts[%d]", i)
		if c.Name != "" {
			where = fmt.Sprintf("%s (%s)", where, c.Name)
		}
		if c.Name == "" {
			l.problem("%s: missing name", where)
			continue
		}
		if _, ok := reservedNames[c.Name]; ok {
			l.problem("%s: the name %q is reserved", where, c.Name)
			continue
		}
		kind, ok := constKinds[c.Kind]
		if !ok {
			l.problem("%s: unknown kind %q", where, c.Kind)
			continue
		}
		if c.Arity < 0 || c.Params < 0 {
			l.problem("%s: negative arity or params", where)
			continue
		}
		if c.Type == "" {
			l.problem("%s: missing type", where)
			continue
		}
		ty, err := ReadTerm(c.Type, l.resolveConst)
		if err != nil {
			l.problem("%s: type: %s", where, err)
			continue
		}
		l.checkArities(where, ty)

		info := meta.ConstInfo{
			Name:      c.Name,
			Kind:      kind,
			Arity:     c.Arity,
			ResultTy:  ty,
			Of:        c.Of,
			NumParams: c.Params,
		}
		switch {
		case c.Body != "" && kind != meta.KindDef:
			l.problem("%s: only defs take a body", where)
		case c.Body == "" && kind == meta.KindDef:
			l.problem("%s: def without a body", where)
		case c.Body != "":
			body, err := ReadTerm(c.Body, l.resolveConst)
			if err != nil {
				l.problem("%s: body: %s", where, err)
			} else {
				l.checkArities(where, body)
				info.Body = body
			}
		}
		if kind == meta.KindConstructor && c.Of != "" {
			if of, ok := l.env.Lookup(c.Of); !ok || of.Kind != meta.KindInductive {
				l.problem("%s: %q is not a declared inductive", where, c.Of)
			}
		}
		if err := l.env.Declare(info); err != nil {
			l.problem("%s: %s", where, err)
		}
	}
}

func (l *goalLoader) loadDecls() (*meta.Goal, map[string]meta.Decl) {
	goal := meta.NewGoal(nil, meta.NewLocalContext())
	decls := make(map[string]meta.Decl, len(l.file.Decls))
	for i, d := range l.file.Decls {
		where := fmt.Sprintf("decls[%d]", i)
		if d.Name != "" {
			where = fmt.Sprintf("%s (%s)", where, d.Name)
		}
		if d.Name == "" {
			l.problem("%s: missing name", where)
			continue
		}
		if _, ok := reservedNames[d.Name]; ok {
			l.problem("%s: the name %q is reserved", where, d.Name)
			continue
		}
		if _, dup := l.vars[d.Name]; dup {
			l.problem("%s: declared twice", where)
			continue
		}
		if d.Type == "" {
			l.problem("%s: missing type", where)
			continue
		}
		ty, err := ReadTerm(d.Type, l.resolveTerm)
		if err != nil {
			l.problem("%s: type: %s", where, err)
			continue
		}
		l.checkArities(where, ty)
		var decl meta.Decl
		goal, decl = goal.Assert(d.Name, ty, nil)
		l.vars[d.Name] = decl.ID
		decls[d.Name] = decl
	}
	return goal, decls
}

func (l *goalLoader) loadMetas(engine *meta.Engine) {
	for i, m := range l.file.Metas {
		where := fmt.Sprintf("metas[%d] (?%d)", i, m.Meta)
		if m.Value == "" {
			l.problem("%s: missing value", where)
			continue
		}
		value, err := ReadTerm(m.Value, l.resolveTerm)
		if err != nil {
			l.problem("%s: value: %s", where, err)
			continue
		}
		l.checkArities(where, value)
		if err := engine.AssignMeta(kernel.MetaID(m.Meta), value); err != nil {
			l.problem("%s: %s", where, err)
		}
	}
}

// resolveConst resolves names in constant types and bodies: previously
// declared constants and the built-in equality heads.
func (l *goalLoader) resolveConst(name string) (kernel.Expr, bool) {
	if _, ok := l.env.Lookup(name); ok {
		return &kernel.Const{Name: name}, true
	}
	if name == kernel.ConstEq || name == kernel.ConstHEq {
		return &kernel.Const{Name: name}, true
	}
	return nil, false
}

// resolveTerm additionally sees local declarations, which shadow constants.
func (l *goalLoader) resolveTerm(name string) (kernel.Expr, bool) {
	if id, ok := l.vars[name]; ok {
		return &kernel.Var{ID: id}, true
	}
	return l.resolveConst(name)
}

// checkArities flags over-applied constants; partial application is legal.
func (l *goalLoader) checkArities(where string, e kernel.Expr) {
	app, ok := e.(*kernel.App)
	if !ok {
		return
	}
	head, args := kernel.Spine(app)
	if c, ok := head.(*kernel.Const); ok {
		limit := -1
		switch {
		case c.Name == kernel.ConstEq:
			limit = 3
		case c.Name == kernel.ConstHEq:
			limit = 4
		default:
			if info, ok := l.env.Lookup(c.Name); ok {
				limit = info.Arity
			}
		}
		if limit >= 0 && len(args) > limit {
			l.problem("%s: %s applied to %d arguments but takes %d", where, c.Name, len(args), limit)
		}
	}
	for _, arg := range args {
		l.checkArities(where, arg)
	}
}

var knownTraceOptions = []string{string(meta.TraceElimDebug)}

func (l *goalLoader) traceOptions() []meta.TraceOption {
	if len(l.file.Trace) == 0 {
		return nil
	}
	given := append([]string(nil), l.file.Trace...)
	sort.Strings(given)
	given = given[:set.Uniq(sort.StringSlice(given))]

	joint := append(append([]string(nil), given...), knownTraceOptions...)
	if n := set.Diff(sort.StringSlice(joint), len(given)); n > 0 {
		l.problem("unknown trace options %v, known options are %v", joint[:n], knownTraceOptions)
	}

	out := make([]meta.TraceOption, 0, len(given))
	for _, opt := range given {
		for _, k := range knownTraceOptions {
			if opt == k {
				out = append(out, meta.TraceOption(opt))
			}
		}
	}
	return out
}
