package skarn

import (
	"fmt"
	"strconv"

	"github.com/skarn-lang/skarn/kernel"
)

// Resolver maps an identifier in goal-file term syntax to its expression.
type Resolver func(name string) (kernel.Expr, bool)

// ReadTerm parses the prefix term syntax used in goal files: juxtaposition
// applies left to right, parentheses group, `?N` is the metavariable with
// numeric id N, and `Sort N` is a universe. Every other identifier goes
// through resolve.
func ReadTerm(src string, resolve Resolver) (kernel.Expr, error) {
	r := &termReader{src: src, resolve: resolve}
	e, err := r.readSeq()
	if err != nil {
		return nil, err
	}
	r.skipSpace()
	if r.pos != len(r.src) {
		return nil, fmt.Errorf("unexpected %q after term in %q", r.src[r.pos], r.src)
	}
	return e, nil
}

type termReader struct {
	src     string
	pos     int
	resolve Resolver
}

func (r *termReader) skipSpace() {
	for r.pos < len(r.src) && (r.src[r.pos] == ' ' || r.src[r.pos] == '\t' || r.src[r.pos] == '\n') {
		r.pos++
	}
}

func (r *termReader) readWhile(pred func(byte) bool) string {
	start := r.pos
	for r.pos < len(r.src) && pred(r.src[r.pos]) {
		r.pos++
	}
	return r.src[start:r.pos]
}

// readSeq reads one or more atoms and folds them into an application spine.
func (r *termReader) readSeq() (kernel.Expr, error) {
	head, err := r.readAtom()
	if err != nil {
		return nil, err
	}
	var args []kernel.Expr
	for {
		r.skipSpace()
		if r.pos >= len(r.src) || r.src[r.pos] == ')' {
			return kernel.MkApp(head, args...), nil
		}
		arg, err := r.readAtom()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
}

func (r *termReader) readAtom() (kernel.Expr, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return nil, fmt.Errorf("term ends unexpectedly in %q", r.src)
	}
	switch c := r.src[r.pos]; {
	case c == '(':
		r.pos++
		e, err := r.readSeq()
		if err != nil {
			return nil, err
		}
		r.skipSpace()
		if r.pos >= len(r.src) || r.src[r.pos] != ')' {
			return nil, fmt.Errorf("unclosed parenthesis in %q", r.src)
		}
		r.pos++
		return e, nil
	case c == '?':
		r.pos++
		digits := r.readWhile(isDigit)
		if digits == "" {
			return nil, fmt.Errorf("metavariables are written ?N with numeric N, in %q", r.src)
		}
		id, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("metavariable id ?%s out of range in %q", digits, r.src)
		}
		return &kernel.Meta{ID: kernel.MetaID(id)}, nil
	case isIdentStart(c):
		name := r.readWhile(isIdentPart)
		if name == "Sort" {
			r.skipSpace()
			digits := r.readWhile(isDigit)
			if digits == "" {
				return nil, fmt.Errorf("Sort needs a numeric level in %q", r.src)
			}
			level, err := strconv.ParseUint(digits, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("Sort level %s out of range in %q", digits, r.src)
			}
			return &kernel.Sort{Level: uint32(level)}, nil
		}
		e, ok := r.resolve(name)
		if !ok {
			return nil, fmt.Errorf("unknown identifier %q in %q", name, r.src)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", c, r.pos, r.src)
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.' || c == '\''
}
