package expr

import "math"

// Parse reads src into an expression tree. Numeric sub-expressions are
// folded as they are built.
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, invalid(0, "empty expression")
	}

	p := &parser{toks: toks}
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, invalid(t.pos, "unexpected %q", t.text)
	}
	return n, nil
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

// sum := product (('+'|'-') product)*
func (p *parser) sum() (Node, error) {
	l, err := p.product()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		r, err := p.product()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			l = add(l, r)
		} else {
			l = sub(l, r)
		}
	}
	return l, nil
}

// product := unary (('*'|'/') unary)*
func (p *parser) product() (Node, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/") {
		op := p.next().text
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "*" {
			l = mul(l, r)
		} else {
			l = div(l, r)
		}
	}
	return l, nil
}

// unary := ('+'|'-') unary | power
func (p *parser) unary() (Node, error) {
	if p.isOp("+", "-") {
		op := p.next().text
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return neg(x), nil
		}
		return x, nil
	}
	return p.power()
}

// power := atom ('^' unary)?
func (p *parser) power() (Node, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) atom() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return Num{t.num}, nil

	case tokLParen:
		n, err := p.sum()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, invalid(c.pos, "expected ')' to close '(' at offset %d", t.pos)
		}
		return n, nil

	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		switch t.text {
		case "z":
			return Var{}, nil
		case "I":
			return Num{complex(0, 1)}, nil
		case "E":
			return Num{complex(math.E, 0)}, nil
		case "pi":
			return Num{complex(math.Pi, 0)}, nil
		}
		if _, ok := functions[t.text]; ok {
			return nil, invalid(t.pos, "function %s used without arguments", t.text)
		}
		return nil, invalid(t.pos, "undefined symbol %q, the only variable is z", t.text)

	case tokEOF:
		return nil, invalid(t.pos, "unexpected end of expression")
	}
	return nil, invalid(t.pos, "unexpected %q", t.text)
}

func (p *parser) call(name token) (Node, error) {
	_, known := functions[name.text]
	switch {
	case nonAnalytic[name.text]:
		return nil, unsupported(name.pos, "%s is not complex differentiable", name.text)
	case !known:
		return nil, unsupported(name.pos, "unknown function %s", name.text)
	}
	p.next() // (
	var args []Node
	if p.peek().kind != tokRParen {
		for {
			a, err := p.sum()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if c := p.next(); c.kind != tokRParen {
		return nil, invalid(c.pos, "expected ')' after arguments of %s", name.text)
	}
	if len(args) != 1 {
		return nil, unsupported(name.pos, "%s takes 1 argument, got %d", name.text, len(args))
	}
	return call(name.text, args[0]), nil
}
