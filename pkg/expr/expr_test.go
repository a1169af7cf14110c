package expr

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval1(t *testing.T, e Evaluator, z complex128) complex128 {
	t.Helper()
	out := make([]complex128, 1)
	e(out, []complex128{z})
	return out[0]
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"z**3 - 1", "z**3 - 1"},
		{"z^3 - 1", "z**3 - 1"},
		{"-z**2", "-z**2"},
		{"(-z)**2", "(-z)**2"},
		{"2**3**2", "512"},
		{"z**2**3", "z**8"},
		{"1 - (z - 2)", "1 - (z - 2)"},
		{"z/(z+1)", "z/(z + 1)"},
		{"2*3 + z", "6 + z"},
		{"sin(z) * exp(z)", "sin(z)*exp(z)"},
		{"z + 0", "z"},
		{"1*z**1", "z"},
		{"2j", "2*I"},
		{"3*I", "3*I"},
		{"pi", "3.141592653589793"},
		{"  z\t", "z"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind error
	}{
		{"", ErrInvalidExpression},
		{"   ", ErrInvalidExpression},
		{"z +", ErrInvalidExpression},
		{"(z + 1", ErrInvalidExpression},
		{"z + 1)", ErrInvalidExpression},
		{"z + j", ErrInvalidExpression},
		{"x**2 - 1", ErrInvalidExpression},
		{"z*w", ErrInvalidExpression},
		{"2z", ErrInvalidExpression},
		{"z $ 2", ErrInvalidExpression},
		{"sin + z", ErrInvalidExpression},
		{"1.2.3", ErrInvalidExpression},
		{"z % 2", ErrUnsupportedOperator},
		{"z // 2", ErrUnsupportedOperator},
		{"z < 1", ErrUnsupportedOperator},
		{"z == 1", ErrUnsupportedOperator},
		{"z & 1", ErrUnsupportedOperator},
		{"abs(z)", ErrUnsupportedOperator},
		{"conjugate(z)", ErrUnsupportedOperator},
		{"gamma(z)", ErrUnsupportedOperator},
		{"sin(z, 2)", ErrUnsupportedOperator},
		{"exp()", ErrUnsupportedOperator},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Compile(tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)

			var serr *SyntaxError
			require.True(t, errors.As(err, &serr))
			assert.GreaterOrEqual(t, serr.Pos, 0)
			assert.LessOrEqual(t, serr.Pos, len(tt.src))
		})
	}
}

func TestDerivative(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"z**3 - 1", "3*z**2"},
		{"z", "1"},
		{"5", "0"},
		{"z**2 + 3*z", "2*z + 3"},
		{"sin(z)", "cos(z)"},
		{"exp(2*z)", "exp(2*z)*2"},
		{"log(z)", "1/z"},
		{"-z", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			fn, err := Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn.Derivative())
			assert.Equal(t, tt.src, fn.String())
		})
	}
}

// derivatives are checked against a central difference at a few points
func TestDerivativeNumeric(t *testing.T) {
	srcs := []string{
		"z**3 - 1",
		"z**5 - 3*z + 2",
		"z**-2 + z",
		"sin(z) - 1",
		"cos(z)*z",
		"tan(z)",
		"sinh(z) + cosh(z)",
		"tanh(z)",
		"exp(z) - z",
		"log(z)",
		"ln(z + 2)",
		"sqrt(z)",
		"asin(z/3)",
		"acos(z/3)",
		"atan(z)",
		"z**2.5",
		"z**z",
		"2**z",
		"(z - 1)/(z + 1)",
		"z**3 - 2*z + 2",
		"z**(1 + I)",
	}
	points := []complex128{0.7 + 0.3i, -1.1 + 0.9i, 1.5 - 0.4i}
	const h = 1e-6

	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			fn := MustCompile(src)
			f, df := fn.Evaluators()
			for _, z := range points {
				want := (eval1(t, f, z+h) - eval1(t, f, z-h)) / (2 * h)
				got := eval1(t, df, z)
				assert.InDelta(t, 0, cmplx.Abs(got-want), 1e-5*(1+cmplx.Abs(want)), "z=%v got=%v want=%v", z, got, want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	fn := MustCompile("z**3 - 1")
	z := []complex128{0, 1, 2, 1i, -0.5 + complex(0, math.Sqrt(3)/2)}
	out := make([]complex128, len(z))

	fn.F(out, z)
	assert.Equal(t, complex128(-1), out[0])
	assert.Equal(t, complex128(0), out[1])
	assert.Equal(t, complex128(7), out[2])
	assert.Equal(t, complex(-1, -1), out[3])
	assert.InDelta(t, 0, cmplx.Abs(out[4]), 1e-12)

	fn.DF(out, z)
	assert.Equal(t, complex128(0), out[0])
	assert.Equal(t, complex128(3), out[1])
	assert.Equal(t, complex128(12), out[2])
	assert.Equal(t, complex128(-3), out[3])
}

func TestEvaluateInPlace(t *testing.T) {
	fn := MustCompile("2*z + 1")
	z := []complex128{1, 2, 3}
	fn.F(z, z)
	assert.Equal(t, []complex128{3, 5, 7}, z)
}

func TestEvaluateLengthMismatch(t *testing.T) {
	fn := MustCompile("z")
	assert.Panics(t, func() { fn.F(make([]complex128, 2), make([]complex128, 3)) })
}

func TestConstantExpression(t *testing.T) {
	fn, err := Compile("E**2")
	require.NoError(t, err)
	assert.Equal(t, "0", fn.Derivative())

	got := make([]complex128, 2)
	fn.F(got, []complex128{0, 5})
	assert.InDelta(t, math.E*math.E, real(got[0]), 1e-12)
	assert.Equal(t, got[0], got[1])
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("z +") })
}

func TestPowInt(t *testing.T) {
	z := complex(1.25, -0.5)
	for k := -4; k <= 9; k++ {
		want := cmplx.Pow(z, complex(float64(k), 0))
		assert.InDelta(t, 0, cmplx.Abs(powInt(z, k)-want), 1e-12, "k=%d", k)
	}
	assert.Equal(t, complex128(0), powInt(0, 3))
	assert.Equal(t, complex128(1), powInt(0, 0))
}
