package lang

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lexer converts source text into tokens with a single left-to-right scan
// and one rune of lookahead.
type lexer struct {
	src       string
	pos       int // byte offset of the current rune
	line      int
	lineStart int // byte offset of the first rune on the current line
	tokens    []Token
}

// Tokenize converts source into a token sequence ending with an EOF token.
// It fails with a SyntaxError on an unterminated string or an unknown
// character, returning the tokens read before the error along with it.
func Tokenize(source string) ([]Token, error) {
	lx := &lexer{src: source, line: 1}

	if err := lx.run(); err != nil {
		return lx.tokens, err
	}

	return lx.tokens, nil
}

func (lx *lexer) run() error {
	for {
		r, size := lx.peek(0)
		if size == 0 {
			lx.emit(EOF, "", nil, lx.position())

			return nil
		}

		switch {
		case r == ' ' || r == '\t' || r == '\r':
			lx.pos += size

		case r == '#':
			for r, size = lx.peek(0); size > 0 && r != '\n'; r, size = lx.peek(0) {
				lx.pos += size
			}

		case r == '\n':
			lx.emit(NEWLINE, "\n", nil, lx.position())
			lx.pos += size
			lx.line++
			lx.lineStart = lx.pos

		case r == '"' || r == '\'':
			if err := lx.lexString(r); err != nil {
				return err
			}

		case isDigit(r):
			lx.lexNumber()

		case r == '_' || unicode.IsLetter(r):
			lx.lexWord()

		default:
			if err := lx.lexOperator(r); err != nil {
				return err
			}
		}
	}
}

func (lx *lexer) peek(ahead int) (rune, int) {
	off := lx.pos

	for range ahead {
		_, size := utf8.DecodeRuneInString(lx.src[off:])
		if size == 0 {
			return 0, 0
		}

		off += size
	}

	if off >= len(lx.src) {
		return 0, 0
	}

	return utf8.DecodeRuneInString(lx.src[off:])
}

// position returns the location of the current rune. Columns count runes
// from the start of the line.
func (lx *lexer) position() Position {
	return Position{
		Line:   lx.line,
		Column: utf8.RuneCountInString(lx.src[lx.lineStart:lx.pos]) + 1,
	}
}

func (lx *lexer) emit(kind Kind, text string, value Value, pos Position) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Text: text, Value: value, Pos: pos})
}

func (lx *lexer) fail(base *Error, pos Position, format string, args ...any) error {
	return base.Describe(format, args...).At(pos).inSource(lx.src)
}

func (lx *lexer) lexString(quote rune) error {
	start := lx.position()
	begin := lx.pos

	lx.pos++ // opening quote

	var sb strings.Builder

	for {
		r, size := lx.peek(0)

		switch {
		case size == 0:
			return lx.fail(ErrUnterminatedString, start,
				"Unterminated string (reached end of file)")

		case r == '\n':
			return lx.fail(ErrUnterminatedString, start,
				"Unterminated string starting at column %d", start.Column)

		case r == quote:
			lx.pos += size
			lx.emit(STRING, lx.src[begin:lx.pos], Str(sb.String()), start)

			return nil

		case r == '\\':
			lx.pos += size

			esc, n := lx.peek(0)
			if n == 0 || esc == '\n' {
				continue // reported as unterminated on the next pass
			}

			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteRune(esc)
			}

			lx.pos += n

		default:
			sb.WriteRune(r)
			lx.pos += size
		}
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// lexNumber scans digits with at most one fractional part. A dot not
// followed by a digit is left for the operator scanner.
func (lx *lexer) lexNumber() {
	start := lx.position()
	begin := lx.pos

	for r, size := lx.peek(0); size > 0 && isDigit(r); r, size = lx.peek(0) {
		lx.pos += size
	}

	isFloat := false

	if r, _ := lx.peek(0); r == '.' {
		if next, _ := lx.peek(1); isDigit(next) {
			isFloat = true
			lx.pos++

			for r, size := lx.peek(0); size > 0 && isDigit(r); r, size = lx.peek(0) {
				lx.pos += size
			}
		}
	}

	text := lx.src[begin:lx.pos]

	var v Value

	if isFloat {
		f, _ := strconv.ParseFloat(text, 64)
		v = Float(f)
	} else {
		n, _ := new(big.Int).SetString(text, 10)
		v = Int{n}
	}

	lx.emit(NUMBER, text, v, start)
}

func (lx *lexer) lexWord() {
	start := lx.position()
	begin := lx.pos

	for r, size := lx.peek(0); size > 0 && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)); r, size = lx.peek(0) {
		lx.pos += size
	}

	text := lx.src[begin:lx.pos]
	lx.emit(LookupKeyword(text), text, nil, start)
}

// twoRune lists operators spelled with two runes, keyed by their first rune.
var twoRune = map[rune]struct {
	second rune
	kind   Kind
}{
	'*': {'*', POWER},
	'=': {'=', EQ},
	'!': {'=', NE},
	'>': {'=', GE},
	'<': {'=', LE},
}

var oneRune = map[rune]Kind{
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'%': PERCENT,
	'=': ASSIGN,
	'>': GT,
	'<': LT,
	':': COLON,
	',': COMMA,
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	'.': DOT,
}

func (lx *lexer) lexOperator(r rune) error {
	start := lx.position()

	if two, ok := twoRune[r]; ok {
		if next, _ := lx.peek(1); next == two.second {
			lx.emit(two.kind, lx.src[lx.pos:lx.pos+2], nil, start)
			lx.pos += 2

			return nil
		}
	}

	if kind, ok := oneRune[r]; ok {
		lx.emit(kind, string(r), nil, start)
		lx.pos++

		return nil
	}

	return lx.fail(ErrUnknownCharacter, start, "Unknown character '%c'", r)
}
