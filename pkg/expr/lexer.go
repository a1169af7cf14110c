package expr

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	pos  int
	text string
	num  complex128
}

// operators recognised by the lexer but rejected by the parser
var unsupportedOps = []string{"//", "==", "!=", "<=", ">=", "<", ">", "%", "=", "!", "&", "|", "~", "@"}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			tok, n, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n

		case c == '_' || unicode.IsLetter(rune(c)):
			start := i
			for i < len(src) && (src[i] == '_' || isDigit(src[i]) || unicode.IsLetter(rune(src[i]))) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, pos: start, text: src[start:i]})

		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i, text: ")"})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, pos: i, text: ","})
			i++

		case strings.HasPrefix(src[i:], "**"):
			toks = append(toks, token{kind: tokOp, pos: i, text: "^"})
			i += 2
		case strings.HasPrefix(src[i:], "//"):
			return nil, unsupported(i, "floor division %q", "//")
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			toks = append(toks, token{kind: tokOp, pos: i, text: string(c)})
			i++

		default:
			for _, op := range unsupportedOps {
				if strings.HasPrefix(src[i:], op) {
					return nil, unsupported(i, "operator %q", op)
				}
			}
			return nil, invalid(i, "unexpected character %q", rune(c))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

// lexNumber reads a decimal literal with optional fraction, exponent and a
// trailing j marking an imaginary literal.
func lexNumber(src string, start int) (token, int, error) {
	i := start
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}

	text := src[start:i]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, 0, invalid(start, "malformed number %q", text)
	}

	tok := token{kind: tokNum, pos: start, text: text, num: complex(v, 0)}
	if i < len(src) && (src[i] == 'j' || src[i] == 'J') {
		tok.num = complex(0, v)
		i++
		tok.text = src[start:i]
	}

	// a literal running straight into a name, e.g. 2z, is not an implicit product
	if i < len(src) && (src[i] == '_' || unicode.IsLetter(rune(src[i]))) {
		return token{}, 0, invalid(i, "unexpected %q after number %q", src[i], text)
	}

	return tok, i - start, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
