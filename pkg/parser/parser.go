// Package parser parses the canonical textual form of expressions,
// predicates, and programs back into their tree representations.
package parser

import (
	"fmt"
	"runtime"

	"github.com/ruizmr/8090-top-coder/pkg/expr"
)

type parser struct {
	scanner   scanner
	sctx      scanCtx
	unscanned bool
}

func newParser(src string) *parser {
	return &parser{scanner: scanner{src: src}}
}

// ParseExpr parses the canonical form of a single expression, such as
// "round(((d * 100) + 75), 2)".
func ParseExpr(src string) (e expr.Expr, err error) {
	p := newParser(src)
	defer p.recoverError(&err)

	e = p.parseExpr()
	p.expectEOF()
	return e, nil
}

// ParsePred parses a comparison such as "(d == 5)".
func ParsePred(src string) (pred *expr.Pred, err error) {
	p := newParser(src)
	defer p.recoverError(&err)

	pred = p.parsePred()
	p.expectEOF()
	return pred, nil
}

// ParseStmt parses a program: "return e" or "if pred: stmt else: stmt".
func ParseStmt(src string) (stmt expr.Stmt, err error) {
	p := newParser(src)
	defer p.recoverError(&err)

	stmt = p.parseStmt()
	p.expectEOF()
	return stmt, nil
}

func (p *parser) recoverError(err *error) {
	if r := recover(); r != nil {
		if _, ok := r.(runtime.Error); ok {
			panic(r)
		}
		*err = r.(error)
	}
}

func (p *parser) error(msg string) {
	panic(fmt.Errorf("parser: %d: %s", p.sctx.pos, msg))
}

func (p *parser) scan() token {
	if p.unscanned {
		p.unscanned = false
		return p.sctx.token
	}

	err := p.scanner.scan(&p.sctx)
	if err != nil {
		p.error(err.Error())
	}
	return p.sctx.token
}

func (p *parser) unscan() {
	p.unscanned = true
}

func (p *parser) got() string {
	switch p.sctx.token {
	case tokNumber:
		return fmt.Sprintf("number %s", p.sctx.text)
	case tokIdent:
		return fmt.Sprintf("identifier %s", p.sctx.text)
	}
	return p.sctx.token.String()
}

func (p *parser) expectToken(t token) {
	if p.scan() != t {
		p.error(fmt.Sprintf("expected %s, got %s", t, p.got()))
	}
}

func (p *parser) expectEOF() {
	p.expectToken(tokEOF)
}

func (p *parser) expectIdentifier(id string) {
	if p.scan() != tokIdent || p.sctx.text != id {
		p.error(fmt.Sprintf("expected %s, got %s", id, p.got()))
	}
}

func (p *parser) expectNumber() float64 {
	t := p.scan()
	if t == tokMinus {
		if p.scan() != tokNumber {
			p.error(fmt.Sprintf("expected number, got %s", p.got()))
		}
		return -p.sctx.number
	}
	if t != tokNumber {
		p.error(fmt.Sprintf("expected number, got %s", p.got()))
	}
	return p.sctx.number
}

func (p *parser) parseExpr() expr.Expr {
	t := p.scan()
	switch t {
	case tokNumber:
		return &expr.Const{Value: p.sctx.number}
	case tokMinus:
		p.unscan()
		return &expr.Const{Value: p.expectNumber()}
	case tokIdent:
		switch p.sctx.text {
		case "max":
			return p.parseCall(expr.MaxOp)
		case "min":
			return p.parseCall(expr.MinOp)
		case "round":
			return p.parseRound()
		case "return", "if", "else":
			p.error(fmt.Sprintf("unexpected keyword %s", p.sctx.text))
		}
		return &expr.Var{Name: p.sctx.text}
	case tokLParen:
		return p.parseParenExpr()
	}

	p.error(fmt.Sprintf("expected expression, got %s", p.got()))
	return nil
}

// parseParenExpr parses the parenthesized forms: (l + r), (l - r), and the
// scale forms (e * k) and (e / k) whose right operand must be a number.
func (p *parser) parseParenExpr() expr.Expr {
	left := p.parseExpr()

	var e expr.Expr
	switch p.scan() {
	case tokPlus:
		e = &expr.Binary{Op: expr.AddOp, Left: left, Right: p.parseExpr()}
	case tokMinus:
		e = &expr.Binary{Op: expr.SubOp, Left: left, Right: p.parseExpr()}
	case tokStar:
		e = &expr.Scale{Op: expr.MulOp, Operand: left, Factor: p.expectNumber()}
	case tokSlash:
		e = &expr.Scale{Op: expr.DivOp, Operand: left, Factor: p.expectNumber()}
	default:
		p.error(fmt.Sprintf("expected operator, got %s", p.got()))
	}

	p.expectToken(tokRParen)
	return e
}

func (p *parser) parseCall(op expr.BinaryOp) expr.Expr {
	p.expectToken(tokLParen)
	left := p.parseExpr()
	p.expectToken(tokComma)
	right := p.parseExpr()
	p.expectToken(tokRParen)
	return &expr.Binary{Op: op, Left: left, Right: right}
}

func (p *parser) parseRound() expr.Expr {
	p.expectToken(tokLParen)
	operand := p.parseExpr()
	p.expectToken(tokComma)
	digits := p.expectNumber()
	if digits != float64(int(digits)) || digits < 0 {
		p.error(fmt.Sprintf("bad round precision %v", digits))
	}
	p.expectToken(tokRParen)
	return &expr.Round{Operand: operand, Digits: int(digits)}
}

func (p *parser) parsePred() *expr.Pred {
	p.expectToken(tokLParen)
	left := p.parseExpr()

	var op expr.CmpOp
	switch p.scan() {
	case tokLess:
		op = expr.LessThanOp
	case tokLessEqual:
		op = expr.LessEqualOp
	case tokGreater:
		op = expr.GreaterThanOp
	case tokGreaterEqual:
		op = expr.GreaterEqualOp
	case tokEqualEqual:
		op = expr.EqualOp
	default:
		p.error(fmt.Sprintf("expected comparison, got %s", p.got()))
	}

	right := p.parseExpr()
	p.expectToken(tokRParen)
	return &expr.Pred{Left: left, Op: op, Right: right}
}

func (p *parser) parseStmt() expr.Stmt {
	if p.scan() != tokIdent {
		p.error(fmt.Sprintf("expected return or if, got %s", p.got()))
	}

	switch p.sctx.text {
	case "return":
		return &expr.Return{Expr: p.parseExpr()}
	case "if":
		pred := p.parsePred()
		p.expectToken(tokColon)
		then := p.parseStmt()
		p.expectIdentifier("else")
		p.expectToken(tokColon)
		els := p.parseStmt()
		return &expr.If{Cond: pred, Then: then, Else: els}
	}

	p.error(fmt.Sprintf("expected return or if, got %s", p.got()))
	return nil
}
