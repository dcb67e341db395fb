package parser

import (
	"fmt"
	"strconv"
	"unicode"
)

type token int

const (
	tokEOF token = iota
	tokNumber
	tokIdent
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLess
	tokLessEqual
	tokGreater
	tokGreaterEqual
	tokEqualEqual
)

var (
	tokenNames = []string{
		tokEOF:          "end of input",
		tokNumber:       "number",
		tokIdent:        "identifier",
		tokLParen:       "(",
		tokRParen:       ")",
		tokComma:        ",",
		tokColon:        ":",
		tokPlus:         "+",
		tokMinus:        "-",
		tokStar:         "*",
		tokSlash:        "/",
		tokLess:         "<",
		tokLessEqual:    "<=",
		tokGreater:      ">",
		tokGreaterEqual: ">=",
		tokEqualEqual:   "==",
	}
)

func (t token) String() string {
	return tokenNames[t]
}

type scanCtx struct {
	token  token
	text   string
	number float64
	pos    int
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) scan(sctx *scanCtx) error {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos += 1
	}
	sctx.pos = s.pos
	sctx.text = ""
	sctx.number = 0

	if s.pos >= len(s.src) {
		sctx.token = tokEOF
		return nil
	}

	c := s.src[s.pos]
	switch c {
	case '(':
		s.pos += 1
		sctx.token = tokLParen
		return nil
	case ')':
		s.pos += 1
		sctx.token = tokRParen
		return nil
	case ',':
		s.pos += 1
		sctx.token = tokComma
		return nil
	case ':':
		s.pos += 1
		sctx.token = tokColon
		return nil
	case '+':
		s.pos += 1
		sctx.token = tokPlus
		return nil
	case '-':
		s.pos += 1
		sctx.token = tokMinus
		return nil
	case '*':
		s.pos += 1
		sctx.token = tokStar
		return nil
	case '/':
		s.pos += 1
		sctx.token = tokSlash
		return nil
	case '<':
		s.pos += 1
		sctx.token = tokLess
		if s.pos < len(s.src) && s.src[s.pos] == '=' {
			s.pos += 1
			sctx.token = tokLessEqual
		}
		return nil
	case '>':
		s.pos += 1
		sctx.token = tokGreater
		if s.pos < len(s.src) && s.src[s.pos] == '=' {
			s.pos += 1
			sctx.token = tokGreaterEqual
		}
		return nil
	case '=':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == '=' {
			s.pos += 2
			sctx.token = tokEqualEqual
			return nil
		}
		return fmt.Errorf("unexpected character '='")
	}

	if c >= '0' && c <= '9' || c == '.' {
		return s.scanNumber(sctx)
	}
	if unicode.IsLetter(rune(c)) || c == '_' {
		start := s.pos
		for s.pos < len(s.src) &&
			(unicode.IsLetter(rune(s.src[s.pos])) || unicode.IsDigit(rune(s.src[s.pos])) ||
				s.src[s.pos] == '_') {
			s.pos += 1
		}
		sctx.token = tokIdent
		sctx.text = s.src[start:s.pos]
		return nil
	}

	return fmt.Errorf("unexpected character %q", rune(c))
}

func (s *scanner) scanNumber(sctx *scanCtx) error {
	start := s.pos
	for s.pos < len(s.src) && (s.src[s.pos] >= '0' && s.src[s.pos] <= '9' || s.src[s.pos] == '.') {
		s.pos += 1
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		s.pos += 1
		if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos += 1
		}
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos += 1
		}
	}

	text := s.src[start:s.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("bad number %s", text)
	}
	sctx.token = tokNumber
	sctx.text = text
	sctx.number = v
	return nil
}
