package expr

import (
	"math"
	"math/cmplx"
	"strconv"
)

// Node is a parsed expression tree in the single variable z.
type Node interface {
	String() string
	prec() int
}

const (
	precAdd = iota + 1
	precMul
	precNeg
	precPow
	precAtom
)

// Num is a complex constant.
type Num struct{ V complex128 }

// Var is the free variable z.
type Var struct{}

// Neg is unary minus.
type Neg struct{ X Node }

// Binary is one of + - * / ^.
type Binary struct {
	Op   byte
	L, R Node
}

// Call applies a named elementary function to one argument.
type Call struct {
	Name string
	Arg  Node
}

func (Num) prec() int { return precAtom }
func (Var) prec() int { return precAtom }
func (Neg) prec() int { return precNeg }
func (Call) prec() int { return precAtom }
func (b Binary) prec() int {
	switch b.Op {
	case '+', '-':
		return precAdd
	case '*', '/':
		return precMul
	}
	return precPow
}

func (n Num) String() string {
	re, im := real(n.V), imag(n.V)
	switch {
	case im == 0:
		return formatFloat(re)
	case re == 0:
		return formatFloat(im) + "*I"
	}
	sign := " + "
	if im < 0 {
		sign = " - "
		im = -im
	}
	return "(" + formatFloat(re) + sign + formatFloat(im) + "*I)"
}

func (Var) String() string { return "z" }

func (n Neg) String() string { return "-" + wrap(n.X, precNeg+1) }

func (c Call) String() string { return c.Name + "(" + c.Arg.String() + ")" }

func (b Binary) String() string {
	p := b.prec()
	op := string(b.Op)
	switch b.Op {
	case '^':
		// right associative: a**b**c groups as a**(b**c)
		return wrap(b.L, p+1) + "**" + wrap(b.R, p)
	case '-', '/':
		return wrap(b.L, p) + pad(op) + wrap(b.R, p+1)
	}
	return wrap(b.L, p) + pad(op) + wrap(b.R, p)
}

func pad(op string) string {
	if op == "+" || op == "-" {
		return " " + op + " "
	}
	return op
}

func wrap(n Node, least int) string {
	if n.prec() < least {
		return "(" + n.String() + ")"
	}
	if num, ok := n.(Num); ok && least > precAdd && (real(num.V) < 0 || (imag(num.V) < 0 && real(num.V) == 0)) {
		return "(" + n.String() + ")"
	}
	return n.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// constructors with light simplification

func isNum(n Node, v complex128) bool {
	c, ok := n.(Num)
	return ok && c.V == v
}

func add(a, b Node) Node {
	x, xok := a.(Num)
	y, yok := b.(Num)
	switch {
	case xok && yok:
		return Num{x.V + y.V}
	case isNum(a, 0):
		return b
	case isNum(b, 0):
		return a
	}
	return Binary{'+', a, b}
}

func sub(a, b Node) Node {
	x, xok := a.(Num)
	y, yok := b.(Num)
	switch {
	case xok && yok:
		return Num{x.V - y.V}
	case isNum(b, 0):
		return a
	case isNum(a, 0):
		return neg(b)
	}
	return Binary{'-', a, b}
}

func mul(a, b Node) Node {
	x, xok := a.(Num)
	y, yok := b.(Num)
	switch {
	case xok && yok:
		return Num{x.V * y.V}
	case isNum(a, 0), isNum(b, 0):
		return Num{0}
	case isNum(a, 1):
		return b
	case isNum(b, 1):
		return a
	case isNum(a, -1):
		return neg(b)
	case isNum(b, -1):
		return neg(a)
	}
	return Binary{'*', a, b}
}

func div(a, b Node) Node {
	x, xok := a.(Num)
	y, yok := b.(Num)
	switch {
	case xok && yok && y.V != 0:
		return Num{x.V / y.V}
	case isNum(a, 0):
		return Num{0}
	case isNum(b, 1):
		return a
	}
	return Binary{'/', a, b}
}

func pow(a, b Node) Node {
	x, xok := a.(Num)
	if k, ok := intExponent(b); ok {
		switch {
		case k == 0:
			return Num{1}
		case k == 1:
			return a
		case xok && !(x.V == 0 && k < 0):
			return Num{powInt(x.V, k)}
		}
	}
	return Binary{'^', a, b}
}

func neg(a Node) Node {
	switch n := a.(type) {
	case Num:
		return Num{-n.V}
	case Neg:
		return n.X
	}
	return Neg{a}
}

func call(name string, arg Node) Node {
	if c, ok := arg.(Num); ok {
		return Num{functions[name].eval(c.V)}
	}
	return Call{name, arg}
}

// maxIntExponent bounds exponents evaluated by repeated squaring
const maxIntExponent = 1 << 20

func intExponent(n Node) (int, bool) {
	c, ok := n.(Num)
	if !ok || imag(c.V) != 0 {
		return 0, false
	}
	r := real(c.V)
	if r != math.Trunc(r) || math.Abs(r) > maxIntExponent {
		return 0, false
	}
	return int(r), true
}

func powInt(z complex128, k int) complex128 {
	if k < 0 {
		return 1 / powInt(z, -k)
	}
	result := complex(1, 0)
	for k > 0 {
		if k&1 == 1 {
			result *= z
		}
		z *= z
		k >>= 1
	}
	return result
}

// Diff returns the derivative of n with respect to z.
func Diff(n Node) Node {
	switch n := n.(type) {
	case Num:
		return Num{0}
	case Var:
		return Num{1}
	case Neg:
		return neg(Diff(n.X))
	case Binary:
		dl, dr := Diff(n.L), Diff(n.R)
		switch n.Op {
		case '+':
			return add(dl, dr)
		case '-':
			return sub(dl, dr)
		case '*':
			return add(mul(dl, n.R), mul(n.L, dr))
		case '/':
			return div(sub(mul(dl, n.R), mul(n.L, dr)), pow(n.R, Num{2}))
		case '^':
			if _, ok := n.R.(Num); ok {
				// d(u**c) = c*u**(c-1)*u'
				return mul(mul(n.R, pow(n.L, sub(n.R, Num{1}))), dl)
			}
			// d(u**v) = u**v * (v'*log(u) + v*u'/u)
			return mul(n, add(mul(dr, call("log", n.L)), div(mul(n.R, dl), n.L)))
		}
	case Call:
		return mul(functions[n.Name].diff(n.Arg), Diff(n.Arg))
	}
	panic("expr: unknown node type")
}

type function struct {
	eval func(complex128) complex128
	diff func(u Node) Node // derivative of f at u, without the chain factor
}

var functions map[string]function

func init() {
	one := Num{1}
	two := Num{2}
	functions = map[string]function{
		"sin":  {cmplx.Sin, func(u Node) Node { return call("cos", u) }},
		"cos":  {cmplx.Cos, func(u Node) Node { return neg(call("sin", u)) }},
		"tan":  {cmplx.Tan, func(u Node) Node { return div(one, pow(call("cos", u), two)) }},
		"sinh": {cmplx.Sinh, func(u Node) Node { return call("cosh", u) }},
		"cosh": {cmplx.Cosh, func(u Node) Node { return call("sinh", u) }},
		"tanh": {cmplx.Tanh, func(u Node) Node { return div(one, pow(call("cosh", u), two)) }},
		"asin": {cmplx.Asin, func(u Node) Node { return div(one, call("sqrt", sub(one, pow(u, two)))) }},
		"acos": {cmplx.Acos, func(u Node) Node { return neg(div(one, call("sqrt", sub(one, pow(u, two))))) }},
		"atan": {cmplx.Atan, func(u Node) Node { return div(one, add(one, pow(u, two))) }},
		"exp":  {cmplx.Exp, func(u Node) Node { return call("exp", u) }},
		"log":  {cmplx.Log, func(u Node) Node { return div(one, u) }},
		"sqrt": {cmplx.Sqrt, func(u Node) Node { return div(one, mul(two, call("sqrt", u))) }},
	}
	functions["ln"] = functions["log"]
}

// nonAnalytic names parse as calls but have no complex derivative
var nonAnalytic = map[string]bool{
	"abs": true, "Abs": true, "conjugate": true, "re": true, "im": true,
	"arg": true, "floor": true, "ceiling": true, "sign": true, "Max": true, "Min": true,
}
