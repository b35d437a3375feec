package skerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/skarn-lang/skarn/kernel"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = true
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	NotAnEquality
	UnsolvableEquation
	OracleFailure
	MalformedGoalFile
	Internal
)

type SkarnError interface {
	Error() string
	Code() ErrCode

	withStack([]byte) SkarnError
	getStack() []byte
}

func FormatWithCode(e SkarnError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E SkarnError](err E) SkarnError {
	return err.withStack(debug.Stack())
}

// CodeOf reports the ErrCode of err when it is a SkarnError, and None otherwise.
func CodeOf(err error) ErrCode {
	if e, ok := err.(SkarnError); ok {
		return e.Code()
	}
	return None
}

type Unclassified struct {
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) SkarnError {
	e.stack = stack
	return e
}

// NewNotAnEquality reports a hypothesis whose type is neither a homogeneous
// nor a heterogeneous equality proposition.
type NewNotAnEquality struct {
	Hyp   string
	Type  kernel.Expr
	stack []byte
}

func (e NewNotAnEquality) Error() string {
	return fmt.Sprintf("equality expected\n  %s", kernel.ExprString(e.Type))
}
func (e NewNotAnEquality) Code() ErrCode    { return NotAnEquality }
func (e NewNotAnEquality) getStack() []byte { return e.stack }
func (e NewNotAnEquality) withStack(stack []byte) SkarnError {
	e.stack = stack
	return e
}

// NewUnsolvableEquation reports an equality hypothesis that neither
// substitution nor injection nor definitional equality could retire.
type NewUnsolvableEquation struct {
	Type  kernel.Expr
	Case  string
	stack []byte
}

func (e NewUnsolvableEquation) Error() string {
	msg := fmt.Sprintf("dependent elimination failed, failed to solve equation\n  %s", kernel.ExprString(e.Type))
	if e.Case != "" {
		msg += fmt.Sprintf("\nat case %s", e.Case)
	}
	return msg
}
func (e NewUnsolvableEquation) Code() ErrCode    { return UnsolvableEquation }
func (e NewUnsolvableEquation) getStack() []byte { return e.stack }
func (e NewUnsolvableEquation) withStack(stack []byte) SkarnError {
	e.stack = stack
	return e
}

// NewOracleFailure wraps a failure from the reduction/defeq/typing engine or
// from a context operation. The cause is preserved verbatim.
type NewOracleFailure struct {
	Op    string
	Term  kernel.Expr
	Cause error
	stack []byte
}

func (e NewOracleFailure) Error() string {
	if e.Term != nil {
		return fmt.Sprintf("%s failed on %s: %v", e.Op, kernel.ExprString(e.Term), e.Cause)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
}
func (e NewOracleFailure) Unwrap() error    { return e.Cause }
func (e NewOracleFailure) Code() ErrCode    { return OracleFailure }
func (e NewOracleFailure) getStack() []byte { return e.stack }
func (e NewOracleFailure) withStack(stack []byte) SkarnError {
	e.stack = stack
	return e
}

type NewMalformedGoalFile struct {
	File   string
	Detail string
	stack  []byte
}

func (e NewMalformedGoalFile) Error() string {
	return fmt.Sprintf("malformed goal file %s: %s", e.File, e.Detail)
}
func (e NewMalformedGoalFile) Code() ErrCode    { return MalformedGoalFile }
func (e NewMalformedGoalFile) getStack() []byte { return e.stack }
func (e NewMalformedGoalFile) withStack(stack []byte) SkarnError {
	e.stack = stack
	return e
}

// NewInternal flags a broken invariant, like fuel exhaustion in the engine or
// a hypothesis that stays heterogeneous after conversion.
type NewInternal struct {
	Reason string
	stack  []byte
}

func (e NewInternal) Error() string {
	return fmt.Sprintf("internal invariant broken: %s", e.Reason)
}
func (e NewInternal) Code() ErrCode    { return Internal }
func (e NewInternal) getStack() []byte { return e.stack }
func (e NewInternal) withStack(stack []byte) SkarnError {
	e.stack = stack
	return e
}
