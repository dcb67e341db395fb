package expr

import (
	"fmt"
)

type CmpOp int

const (
	LessThanOp CmpOp = iota
	LessEqualOp
	GreaterThanOp
	GreaterEqualOp
	EqualOp
)

var (
	cmpOpNames = []string{
		LessThanOp:     "<",
		LessEqualOp:    "<=",
		GreaterThanOp:  ">",
		GreaterEqualOp: ">=",
		EqualOp:        "==",
	}
)

func (op CmpOp) String() string {
	if op < 0 || int(op) >= len(cmpOpNames) {
		panic(fmt.Sprintf("expr: unexpected comparison op; got %#v", op))
	}
	return cmpOpNames[op]
}

// Pred compares two expressions; it evaluates to a boolean.
type Pred struct {
	Left  Expr
	Op    CmpOp
	Right Expr
}

func (p *Pred) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Left, p.Op, p.Right)
}

func (p *Pred) Size() int {
	return 1 + p.Left.Size() + p.Right.Size()
}

func (p *Pred) Eval(env Env) (bool, error) {
	l, err := p.Left.Eval(env)
	if err != nil {
		return false, err
	}
	r, err := p.Right.Eval(env)
	if err != nil {
		return false, err
	}

	switch p.Op {
	case LessThanOp:
		return l < r, nil
	case LessEqualOp:
		return l <= r, nil
	case GreaterThanOp:
		return l > r, nil
	case GreaterEqualOp:
		return l >= r, nil
	case EqualOp:
		return l == r, nil
	}
	panic(fmt.Sprintf("expr: unexpected comparison op; got %#v", p.Op))
}
