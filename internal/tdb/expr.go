package tdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dimascad/ellingham/internal/gibbs"
)

// resolver looks up a referenced FUNCTION by name.
type resolver func(name string) (*gibbs.Piecewise, error)

// parseExpr parses one range body of a FUNCTION or PARAMETER, e.g.
//
//	-193230+360.057*T-66.26*T*LN(T)-.00796*T**2+374000*T**(-1)
//
// into the standard CALPHAD coefficient form. The grammar is the additive
// series of products actually used by assessments; arbitrary nesting is not
// a thing in TDB files and is rejected.
func parseExpr(src string, resolve resolver) (gibbs.Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return gibbs.Expr{}, err
	}

	p := &exprParser{toks: toks, resolve: resolve}
	expr, err := p.parse()
	if err != nil {
		return gibbs.Expr{}, fmt.Errorf("%w in %q", err, src)
	}
	return expr, nil
}

type tokKind int

const (
	tokNumber tokKind = iota
	tokIdent
	tokOp // + - * / ( ) and **
)

type token struct {
	kind tokKind
	text string
	num  float64
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+' || c == '-' || c == '(' || c == ')' || c == '/':
			toks = append(toks, token{kind: tokOp, text: string(c)})
			i++
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				toks = append(toks, token{kind: tokOp, text: "**"})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "*"})
				i++
			}
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
				k := j + 1
				if k < len(src) && (src[k] == '+' || src[k] == '-') {
					k++
				}
				if k < len(src) && src[k] >= '0' && src[k] <= '9' {
					for k < len(src) && src[k] >= '0' && src[k] <= '9' {
						k++
					}
					j = k
				}
			}
			num, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", src[i:j])
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:j], num: num})
			i = j
		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			// Trailing # marks a reference to another phase's function.
			if j < len(src) && src[j] == '#' {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: strings.TrimSuffix(strings.ToUpper(src[i:j]), "#")})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", string(c))
		}
	}
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

type exprParser struct {
	toks    []token
	pos     int
	resolve resolver
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *exprParser) acceptOp(text string) bool {
	if t, ok := p.peek(); ok && t.kind == tokOp && t.text == text {
		p.pos++
		return true
	}
	return false
}

// term is one additive product, accumulated factor by factor.
type term struct {
	coeff float64
	tpow  float64
	logT  bool
	ref   string
}

func (p *exprParser) parse() (gibbs.Expr, error) {
	var expr gibbs.Expr

	sign := 1.0
	if p.acceptOp("-") {
		sign = -1
	} else {
		p.acceptOp("+")
	}

	for {
		t, err := p.parseTerm(sign)
		if err != nil {
			return gibbs.Expr{}, err
		}
		if err := foldTerm(&expr, t, p.resolve); err != nil {
			return gibbs.Expr{}, err
		}

		if p.acceptOp("+") {
			sign = 1
		} else if p.acceptOp("-") {
			sign = -1
		} else {
			break
		}
	}

	if tok, ok := p.peek(); ok {
		return gibbs.Expr{}, fmt.Errorf("unexpected token %q", tok.text)
	}
	return expr, nil
}

func (p *exprParser) parseTerm(sign float64) (term, error) {
	t := term{coeff: sign, tpow: 0}

	div := false
	for {
		if err := p.parseFactor(&t, div); err != nil {
			return term{}, err
		}
		if p.acceptOp("*") {
			div = false
			continue
		}
		if p.acceptOp("/") {
			div = true
			continue
		}
		return t, nil
	}
}

func (p *exprParser) parseFactor(t *term, div bool) error {
	tok, ok := p.next()
	if !ok {
		return fmt.Errorf("unexpected end of expression")
	}

	// A factor may carry its own sign, e.g. after "**(" or "*-1".
	factorSign := 1.0
	for tok.kind == tokOp && (tok.text == "+" || tok.text == "-") {
		if tok.text == "-" {
			factorSign = -factorSign
		}
		tok, ok = p.next()
		if !ok {
			return fmt.Errorf("dangling sign")
		}
	}

	switch {
	case tok.kind == tokNumber:
		v := factorSign * tok.num
		if _, has, err := p.parseExponent(); err != nil {
			return err
		} else if has {
			return fmt.Errorf("exponent on plain number not supported")
		}
		if div {
			t.coeff /= v
		} else {
			t.coeff *= v
		}
	case tok.kind == tokIdent && tok.text == "T":
		t.coeff *= factorSign
		pow := 1.0
		if exp, has, err := p.parseExponent(); err != nil {
			return err
		} else if has {
			pow = exp
		}
		if div {
			t.tpow -= pow
		} else {
			t.tpow += pow
		}
	case tok.kind == tokIdent && tok.text == "LN":
		t.coeff *= factorSign
		if !p.acceptOp("(") {
			return fmt.Errorf("LN without argument")
		}
		arg, ok := p.next()
		if !ok || arg.kind != tokIdent || arg.text != "T" {
			return fmt.Errorf("only LN(T) is supported")
		}
		if !p.acceptOp(")") {
			return fmt.Errorf("unclosed LN(")
		}
		if div {
			return fmt.Errorf("division by LN(T) not supported")
		}
		t.logT = true
	case tok.kind == tokIdent:
		if t.ref != "" {
			return fmt.Errorf("product of functions %s and %s not supported", t.ref, tok.text)
		}
		if div {
			return fmt.Errorf("division by function %s not supported", tok.text)
		}
		t.coeff *= factorSign
		t.ref = tok.text
	default:
		return fmt.Errorf("unexpected token %q", tok.text)
	}
	return nil
}

// parseExponent handles "**n" and "**(±n)".
func (p *exprParser) parseExponent() (float64, bool, error) {
	if !p.acceptOp("**") {
		return 0, false, nil
	}

	paren := p.acceptOp("(")
	sign := 1.0
	if p.acceptOp("-") {
		sign = -1
	} else {
		p.acceptOp("+")
	}
	tok, ok := p.next()
	if !ok || tok.kind != tokNumber {
		return 0, false, fmt.Errorf("bad exponent")
	}
	if paren && !p.acceptOp(")") {
		return 0, false, fmt.Errorf("unclosed exponent")
	}
	return sign * tok.num, true, nil
}

// foldTerm adds a parsed term into the coefficient slots of the standard
// CALPHAD form, spilling unusual powers into Extra.
func foldTerm(expr *gibbs.Expr, t term, resolve resolver) error {
	if t.ref != "" {
		if t.tpow != 0 || t.logT {
			return fmt.Errorf("function %s multiplied by a T factor not supported", t.ref)
		}
		fn, err := resolve(t.ref)
		if err != nil {
			return err
		}
		expr.Refs = append(expr.Refs, gibbs.Ref{Coeff: t.coeff, Fn: fn})
		return nil
	}

	if t.logT {
		if t.tpow == 1 {
			expr.C += t.coeff
		} else {
			expr.Extra = append(expr.Extra, gibbs.PowerTerm{Coeff: t.coeff, Power: t.tpow, LogT: true})
		}
		return nil
	}

	switch t.tpow {
	case 0:
		expr.A += t.coeff
	case 1:
		expr.B += t.coeff
	case 2:
		expr.D += t.coeff
	case -1:
		expr.E += t.coeff
	case 3:
		expr.F += t.coeff
	default:
		expr.Extra = append(expr.Extra, gibbs.PowerTerm{Coeff: t.coeff, Power: t.tpow})
	}
	return nil
}
