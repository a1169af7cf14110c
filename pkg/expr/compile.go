package expr

import (
	"fmt"
	"math/cmplx"
)

// Evaluator writes one output per input: dst[i] = g(z[i]). dst and z must
// have the same length and may alias.
type Evaluator func(dst, z []complex128)

// Function is a compiled expression and its derivative. It is immutable and
// safe for concurrent use.
type Function struct {
	src   string
	f, df Node
	fp    program
	dfp   program
}

// Compile parses src, differentiates it once with respect to z and lowers
// both trees to evaluators.
func Compile(src string) (*Function, error) {
	f, err := Parse(src)
	if err != nil {
		return nil, err
	}
	df := Diff(f)

	fn := &Function{src: src, f: f, df: df}
	if fn.fp, err = lower(f); err != nil {
		return nil, err
	}
	if fn.dfp, err = lower(df); err != nil {
		return nil, err
	}
	return fn, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Function {
	fn, err := Compile(src)
	if err != nil {
		panic(fmt.Sprintf("expr: Compile(%q): %v", src, err))
	}
	return fn
}

// F evaluates the function over z.
func (fn *Function) F(dst, z []complex128) { fn.fp.run(dst, z) }

// DF evaluates the derivative over z.
func (fn *Function) DF(dst, z []complex128) { fn.dfp.run(dst, z) }

// Evaluators returns F and DF as standalone values.
func (fn *Function) Evaluators() (f, df Evaluator) { return fn.F, fn.DF }

// String returns the source text the function was compiled from.
func (fn *Function) String() string { return fn.src }

// Expr returns the simplified expression tree of f.
func (fn *Function) Expr() Node { return fn.f }

// Derivative returns the printed derivative, e.g. "3*z**2".
func (fn *Function) Derivative() string { return fn.df.String() }

type opcode uint8

const (
	opConst opcode = iota
	opVar
	opNeg
	opAdd
	opSub
	opMul
	opDiv
	opPowInt
	opPow
	opCall
)

type instr struct {
	op opcode
	c  complex128
	k  int
	fn func(complex128) complex128
}

// program is a postfix instruction list run once per element.
type program struct {
	code  []instr
	depth int
}

func lower(n Node) (program, error) {
	var p program
	depth := 0
	var emit func(n Node) error
	push := func(in instr, delta int) {
		p.code = append(p.code, in)
		depth += delta
		if depth > p.depth {
			p.depth = depth
		}
	}

	emit = func(n Node) error {
		switch n := n.(type) {
		case Num:
			push(instr{op: opConst, c: n.V}, 1)
		case Var:
			push(instr{op: opVar}, 1)
		case Neg:
			if err := emit(n.X); err != nil {
				return err
			}
			push(instr{op: opNeg}, 0)
		case Call:
			if err := emit(n.Arg); err != nil {
				return err
			}
			push(instr{op: opCall, fn: functions[n.Name].eval}, 0)
		case Binary:
			if err := emit(n.L); err != nil {
				return err
			}
			if n.Op == '^' {
				if k, ok := intExponent(n.R); ok {
					push(instr{op: opPowInt, k: k}, 0)
					return nil
				}
			}
			if err := emit(n.R); err != nil {
				return err
			}
			switch n.Op {
			case '+':
				push(instr{op: opAdd}, -1)
			case '-':
				push(instr{op: opSub}, -1)
			case '*':
				push(instr{op: opMul}, -1)
			case '/':
				push(instr{op: opDiv}, -1)
			case '^':
				push(instr{op: opPow}, -1)
			default:
				return unsupported(0, "operator %q", n.Op)
			}
		default:
			return unsupported(0, "node %T", n)
		}
		return nil
	}

	if err := emit(n); err != nil {
		return program{}, err
	}
	return p, nil
}

func (p *program) run(dst, z []complex128) {
	if len(dst) != len(z) {
		panic(fmt.Sprintf("expr: evaluator length mismatch %d != %d", len(dst), len(z)))
	}
	stack := make([]complex128, p.depth)
	for i, v := range z {
		dst[i] = p.eval(v, stack)
	}
}

func (p *program) eval(z complex128, stack []complex128) complex128 {
	sp := 0
	for _, in := range p.code {
		switch in.op {
		case opConst:
			stack[sp] = in.c
			sp++
		case opVar:
			stack[sp] = z
			sp++
		case opNeg:
			stack[sp-1] = -stack[sp-1]
		case opCall:
			stack[sp-1] = in.fn(stack[sp-1])
		case opPowInt:
			stack[sp-1] = powInt(stack[sp-1], in.k)
		default:
			sp--
			a, b := stack[sp-1], stack[sp]
			switch in.op {
			case opAdd:
				stack[sp-1] = a + b
			case opSub:
				stack[sp-1] = a - b
			case opMul:
				stack[sp-1] = a * b
			case opDiv:
				stack[sp-1] = a / b
			case opPow:
				stack[sp-1] = cmplx.Pow(a, b)
			}
		}
	}
	return stack[0]
}
