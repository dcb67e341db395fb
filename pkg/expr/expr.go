package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Env maps variable names to values for a single evaluation.
type Env map[string]float64

type UnboundVariableError struct {
	Name string
}

func (err *UnboundVariableError) Error() string {
	return fmt.Sprintf("expr: unbound variable: %s", err.Name)
}

// Expr is an immutable arithmetic expression. String returns the canonical
// textual form; it is injective over the variants below, so two expressions
// with equal canonical strings have identical structure.
type Expr interface {
	String() string
	Eval(env Env) (float64, error)
	Size() int
	isExpr()
}

type BinaryOp int

const (
	AddOp BinaryOp = iota
	SubOp
	MaxOp
	MinOp
)

var (
	binaryOpNames = []string{
		AddOp: "+",
		SubOp: "-",
		MaxOp: "max",
		MinOp: "min",
	}
)

func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryOpNames) {
		panic(fmt.Sprintf("expr: unexpected binary op; got %#v", op))
	}
	return binaryOpNames[op]
}

func (op BinaryOp) Commutative() bool {
	return op == AddOp || op == MaxOp || op == MinOp
}

type ScaleOp int

const (
	MulOp ScaleOp = iota
	DivOp
)

func (op ScaleOp) String() string {
	switch op {
	case MulOp:
		return "*"
	case DivOp:
		return "/"
	}
	panic(fmt.Sprintf("expr: unexpected scale op; got %#v", op))
}

type Const struct {
	Value float64
}

type Var struct {
	Name string
}

type Binary struct {
	Op          BinaryOp
	Left, Right Expr
}

// Scale multiplies or divides an expression by a factor drawn from a fixed
// pool; the pool never contains zero, so DivOp never divides by zero.
type Scale struct {
	Op      ScaleOp
	Operand Expr
	Factor  float64
}

// Round rounds to Digits decimal places, half away from zero.
type Round struct {
	Operand Expr
	Digits  int
}

func (_ *Const) isExpr()  {}
func (_ *Var) isExpr()    {}
func (_ *Binary) isExpr() {}
func (_ *Scale) isExpr()  {}
func (_ *Round) isExpr()  {}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (c *Const) String() string {
	return formatNumber(c.Value)
}

func (v *Var) String() string {
	return v.Name
}

func (b *Binary) String() string {
	switch b.Op {
	case AddOp, SubOp:
		return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
	case MaxOp, MinOp:
		return fmt.Sprintf("%s(%s, %s)", b.Op, b.Left, b.Right)
	}
	panic(fmt.Sprintf("expr: unexpected binary op; got %#v", b.Op))
}

func (s *Scale) String() string {
	return fmt.Sprintf("(%s %s %s)", s.Operand, s.Op, formatNumber(s.Factor))
}

func (r *Round) String() string {
	return fmt.Sprintf("round(%s, %d)", r.Operand, r.Digits)
}

func (c *Const) Eval(_ Env) (float64, error) {
	return c.Value, nil
}

func (v *Var) Eval(env Env) (float64, error) {
	val, ok := env[v.Name]
	if !ok {
		return 0, &UnboundVariableError{Name: v.Name}
	}
	return val, nil
}

func (b *Binary) Eval(env Env) (float64, error) {
	l, err := b.Left.Eval(env)
	if err != nil {
		return 0, err
	}
	r, err := b.Right.Eval(env)
	if err != nil {
		return 0, err
	}

	switch b.Op {
	case AddOp:
		return l + r, nil
	case SubOp:
		return l - r, nil
	case MaxOp:
		return math.Max(l, r), nil
	case MinOp:
		return math.Min(l, r), nil
	}
	panic(fmt.Sprintf("expr: unexpected binary op; got %#v", b.Op))
}

func (s *Scale) Eval(env Env) (float64, error) {
	val, err := s.Operand.Eval(env)
	if err != nil {
		return 0, err
	}

	switch s.Op {
	case MulOp:
		return val * s.Factor, nil
	case DivOp:
		return val / s.Factor, nil
	}
	panic(fmt.Sprintf("expr: unexpected scale op; got %#v", s.Op))
}

// RoundHalfAway rounds v to digits decimal places, halves away from zero.
func RoundHalfAway(v float64, digits int) float64 {
	shift := math.Pow(10, float64(digits))
	return math.Round(v*shift) / shift
}

func (r *Round) Eval(env Env) (float64, error) {
	val, err := r.Operand.Eval(env)
	if err != nil {
		return 0, err
	}
	return RoundHalfAway(val, r.Digits), nil
}

func (_ *Const) Size() int {
	return 1
}

func (_ *Var) Size() int {
	return 1
}

func (b *Binary) Size() int {
	return 1 + b.Left.Size() + b.Right.Size()
}

func (s *Scale) Size() int {
	return 1 + s.Operand.Size()
}

func (r *Round) Size() int {
	return 1 + r.Operand.Size()
}

func kindRank(e Expr) int {
	switch e.(type) {
	case *Var:
		return 0
	case *Const:
		return 1
	case *Binary:
		return 2
	case *Scale:
		return 3
	case *Round:
		return 4
	}
	panic(fmt.Sprintf("expr: unexpected expression; got %#v", e))
}

func compareFloats(a, b float64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// Compare is a deterministic total order over expressions: variables sort
// before constants, then composites by kind, operator, and children.
// Compare(a, b) == 0 exactly when a and b have equal canonical strings.
func Compare(a, b Expr) int {
	if ra, rb := kindRank(a), kindRank(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch a := a.(type) {
	case *Var:
		return strings.Compare(a.Name, b.(*Var).Name)
	case *Const:
		return compareFloats(a.Value, b.(*Const).Value)
	case *Binary:
		b := b.(*Binary)
		if a.Op != b.Op {
			if a.Op < b.Op {
				return -1
			}
			return 1
		}
		if cmp := Compare(a.Left, b.Left); cmp != 0 {
			return cmp
		}
		return Compare(a.Right, b.Right)
	case *Scale:
		b := b.(*Scale)
		if a.Op != b.Op {
			if a.Op < b.Op {
				return -1
			}
			return 1
		}
		if cmp := compareFloats(a.Factor, b.Factor); cmp != 0 {
			return cmp
		}
		return Compare(a.Operand, b.Operand)
	case *Round:
		b := b.(*Round)
		if a.Digits != b.Digits {
			if a.Digits < b.Digits {
				return -1
			}
			return 1
		}
		return Compare(a.Operand, b.Operand)
	}
	panic(fmt.Sprintf("expr: unexpected expression; got %#v", a))
}
