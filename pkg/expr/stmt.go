package expr

import (
	"fmt"
)

// Stmt is a complete candidate program: a bare return or a finite tree of
// conditionals ending in returns.
type Stmt interface {
	String() string
	Eval(env Env) (float64, error)
	Size() int
	isStmt()
}

type Return struct {
	Expr Expr
}

type If struct {
	Cond       *Pred
	Then, Else Stmt
}

func (_ *Return) isStmt() {}
func (_ *If) isStmt()     {}

func (r *Return) String() string {
	return fmt.Sprintf("return %s", r.Expr)
}

func (r *Return) Size() int {
	return 1 + r.Expr.Size()
}

func (r *Return) Eval(env Env) (float64, error) {
	return r.Expr.Eval(env)
}

func (i *If) String() string {
	return fmt.Sprintf("if %s: %s else: %s", i.Cond, i.Then, i.Else)
}

func (i *If) Size() int {
	return 1 + i.Cond.Size() + i.Then.Size() + i.Else.Size()
}

func (i *If) Eval(env Env) (float64, error) {
	b, err := i.Cond.Eval(env)
	if err != nil {
		return 0, err
	}
	if b {
		return i.Then.Eval(env)
	}
	return i.Else.Eval(env)
}
