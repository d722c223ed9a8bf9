package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/quill/log"
)

// ParseOption configures [ParseString] and [ParseReader].
type ParseOption func(*parser)

// Named sets the program name reported in logs and dumps, usually the
// source file path.
func Named(name string) ParseOption {
	return func(p *parser) { p.name = name }
}

// ParseLogger sets the logger used to trace parsing.
func ParseLogger(logger log.Logger) ParseOption {
	return func(p *parser) { p.logger = logger }
}

// ParseReader reads all of r and parses it as a program.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...ParseOption,
) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapError(err)
	}

	return ParseString(ctx, string(data), opts...)
}

// ParseString tokenizes and parses source. Any lexical or syntax error
// aborts the parse; no partial program is returned.
func ParseString(
	ctx context.Context,
	source string,
	opts ...ParseOption,
) (*Program, error) {
	p := &parser{src: source}

	for _, opt := range opts {
		opt(p)
	}

	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	p.tokens = toks

	p.logger.TraceContext(ctx, "tokenized",
		slog.String("program", p.name),
		slog.Int("tokens", len(toks)))

	stmts, err := p.parseProgram()
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("program", p.name),
		slog.Int("statements", len(stmts)))

	return &Program{Name: p.name, Source: source, Stmts: stmts}, nil
}

// parser is a recursive-descent parser over a token slice. The depth
// counters enforce where return, break, continue, label and goto may
// appear.
type parser struct {
	name   string
	src    string
	tokens []Token
	pos    int
	logger log.Logger

	funcDepth  int
	loopDepth  int
	blockDepth int
}

func (p *parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.pos]
}

func (p *parser) peek(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.pos+offset]
}

func (p *parser) at(kinds ...Kind) bool {
	k := p.cur().Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}

	return false
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}

	return t
}

func (p *parser) skipNewlines() {
	for p.at(NEWLINE) {
		p.advance()
	}
}

func (p *parser) fail(base *Error, t Token, format string, args ...any) *Error {
	return base.Describe(format, args...).At(t.Pos).inSource(p.src)
}

func (p *parser) expect(k Kind) (Token, error) {
	t := p.cur()
	if t.Kind != k {
		err := p.fail(ErrUnexpectedToken, t, "Expected %s, got %s", k, t.Kind)
		if hint := expectHint(k); hint != "" {
			err = err.WithHint(hint)
		}

		return t, err.With(
			slog.String("expected", k.String()),
			slog.String("got", t.Kind.String()))
	}

	return p.advance(), nil
}

// ident consumes an identifier.
func (p *parser) ident() (string, error) {
	t, err := p.expect(IDENT)

	return t.Text, err
}

// word consumes an identifier or a keyword used as a name, as label names
// may be ordinary words such as "start" or "end".
func (p *parser) word() (string, error) {
	if t := p.cur(); t.Kind.IsKeyword() {
		p.advance()

		return t.Text, nil
	}

	return p.ident()
}

func (p *parser) parseProgram() ([]Stmt, error) {
	var stmts []Stmt

	p.skipNewlines()

	for !p.at(EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, s)

		p.skipNewlines()
	}

	return stmts, nil
}

// parseBlock parses statements until one of the terminators or EOF. The
// terminator is not consumed.
func (p *parser) parseBlock(terminators ...Kind) ([]Stmt, error) {
	var stmts []Stmt

	p.blockDepth++
	defer func() { p.blockDepth-- }()

	p.skipNewlines()

	for !p.at(EOF) && !p.at(terminators...) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, s)

		p.skipNewlines()
	}

	return stmts, nil
}

func (p *parser) parseStatement() (Stmt, error) {
	t := p.cur()

	switch t.Kind {
	case SAY:
		p.advance()

		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		return &SayStmt{At: t.Pos, Value: v}, nil

	case ASK:
		return p.parseAsk()

	case SET:
		p.advance()

		return p.parseAssign(t.Pos, false)

	case IF:
		p.advance()

		return p.parseIf(t.Pos, false)

	case WHILE:
		return p.parseWhile()

	case FOR:
		return p.parseFor()

	case FUNCTION:
		return p.parseFunction()

	case RETURN:
		return p.parseReturn()

	case BREAK, CONTINUE:
		if p.loopDepth == 0 {
			return nil, p.fail(ErrLoopControlOutsideLoop, t,
				"'%s' outside of a loop", t.Text)
		}

		p.advance()

		if t.Kind == BREAK {
			return &BreakStmt{At: t.Pos}, nil
		}

		return &ContinueStmt{At: t.Pos}, nil

	case LABEL:
		return p.parseLabel()

	case GOTO:
		return p.parseGoto()

	case CHOICE:
		return p.parseChoice()

	case IMPORT, FROM:
		return p.parseImport()

	case IDENT:
		switch p.peek(1).Kind {
		case LPAREN, DOT:
			c, err := p.parseCall(p.advance())
			if err != nil {
				return nil, err
			}

			return &CallStmt{At: t.Pos, Call: c}, nil

		case ASSIGN, LBRACKET:
			return p.parseAssign(t.Pos, true)
		}

		return nil, p.fail(ErrInvalidStatement, t,
			"Unexpected identifier '%s'", t.Text)

	case EOF:
		return nil, p.fail(ErrUnexpectedToken, t, "Unexpected end of input")
	}

	return nil, p.fail(ErrUnexpectedToken, t, "Unexpected token %s", t.Kind)
}

func (p *parser) parseAsk() (Stmt, error) {
	t := p.advance()

	prompt, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(INTO); err != nil {
		return nil, err
	}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	return &AskStmt{At: t.Pos, Prompt: prompt, Name: name}, nil
}

// parseAssign parses "NAME[i]... (to|=|is) EXPR". With bare set, only "="
// separates the target from the value.
func (p *parser) parseAssign(at Position, bare bool) (Stmt, error) {
	t := p.cur()

	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	var target Expr = &Ident{At: t.Pos, Name: name}

	for p.at(LBRACKET) {
		lb := p.advance()

		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}

		target = &IndexExpr{At: lb.Pos, X: target, Index: idx}
	}

	switch {
	case p.at(ASSIGN), !bare && p.at(TO, IS):
		p.advance()
	case bare:
		if _, err := p.expect(ASSIGN); err != nil {
			return nil, err
		}
	default:
		return nil, p.fail(ErrUnexpectedToken, p.cur(),
			"Expected 'to' or '=' after variable name, got %s", p.cur().Kind)
	}

	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &SetStmt{At: at, Target: target, Value: v, Bare: bare}, nil
}

// parseIf parses the remainder of an if statement after its leading
// keyword. An elsif clause becomes a chained if in the else branch; only
// the outermost if consumes the closing end.
func (p *parser) parseIf(at Position, chained bool) (Stmt, error) {
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(THEN); err != nil {
		return nil, err
	}

	then, err := p.parseBlock(ELSE, ELSIF, END)
	if err != nil {
		return nil, err
	}

	s := &IfStmt{At: at, Cond: cond, Then: then, Chained: chained}

	switch t := p.cur(); t.Kind {
	case ELSIF:
		p.advance()

		next, err := p.parseIf(t.Pos, true)
		if err != nil {
			return nil, err
		}

		s.Else = []Stmt{next}

	case ELSE:
		p.advance()

		if s.Else, err = p.parseBlock(END); err != nil {
			return nil, err
		}
	}

	if !chained {
		if _, err := p.expect(END); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (p *parser) parseLoopBody() ([]Stmt, error) {
	if _, err := p.expect(DO); err != nil {
		return nil, err
	}

	p.loopDepth++
	body, err := p.parseBlock(END)
	p.loopDepth--

	if err != nil {
		return nil, err
	}

	if _, err := p.expect(END); err != nil {
		return nil, err
	}

	return body, nil
}

func (p *parser) parseWhile() (Stmt, error) {
	t := p.advance()

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}

	return &WhileStmt{At: t.Pos, Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	t := p.advance()

	// "for each x in xs": each is a synonym of for
	if p.at(FOR) {
		p.advance()
	}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(IN); err != nil {
		return nil, err
	}

	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}

	return &ForStmt{At: t.Pos, Var: name, Iter: iter, Body: body}, nil
}

func (p *parser) parseFunction() (Stmt, error) {
	t := p.advance()

	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	var params []string

	seen := map[string]bool{}

	for !p.at(RPAREN) {
		if len(params) > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}

		pt := p.cur()

		param, err := p.ident()
		if err != nil {
			return nil, err
		}

		if seen[param] {
			return nil, p.fail(ErrUnexpectedToken, pt,
				"Duplicate parameter '%s' in function '%s'", param, name)
		}

		seen[param] = true
		params = append(params, param)
	}

	p.advance() // )

	loops := p.loopDepth
	p.funcDepth++
	p.loopDepth = 0

	body, err := p.parseBlock(END)

	p.funcDepth--
	p.loopDepth = loops

	if err != nil {
		return nil, err
	}

	if _, err := p.expect(END); err != nil {
		return nil, err
	}

	return &FuncStmt{At: t.Pos, Name: name, Params: params, Body: body}, nil
}

func (p *parser) parseReturn() (Stmt, error) {
	t := p.cur()
	if p.funcDepth == 0 {
		return nil, p.fail(ErrReturnOutsideFunction, t,
			"'%s' outside of a function", t.Text)
	}

	p.advance()

	if p.at(NEWLINE, EOF, END, ELSE, ELSIF) {
		return &ReturnStmt{At: t.Pos}, nil
	}

	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ReturnStmt{At: t.Pos, Value: v}, nil
}

func (p *parser) parseLabel() (Stmt, error) {
	t := p.cur()
	if p.blockDepth > 0 {
		return nil, p.fail(ErrMisplacedLabel, t,
			"Labels can only be declared at the top level of the program")
	}

	p.advance()

	if p.at(COLON) {
		p.advance()
	}

	name, err := p.word()
	if err != nil {
		return nil, err
	}

	return &LabelStmt{At: t.Pos, Name: name}, nil
}

func (p *parser) parseGoto() (Stmt, error) {
	t := p.cur()
	if p.funcDepth > 0 {
		return nil, p.fail(ErrMisplacedLabel, t,
			"'%s' cannot be used inside a function", t.Text)
	}

	p.advance()

	// "go to start"
	if p.at(TO) {
		p.advance()
	}

	name, err := p.word()
	if err != nil {
		return nil, err
	}

	return &GotoStmt{At: t.Pos, Label: name}, nil
}

// parseChoice parses options separated by "or". Each option is parsed
// below the logical operators so that "or" is always a separator.
func (p *parser) parseChoice() (Stmt, error) {
	t := p.advance()

	var opts []Expr

	for {
		o, err := p.parseComparison()
		if err != nil {
			return nil, err
		}

		opts = append(opts, o)

		if !p.at(OR) {
			break
		}

		p.advance()
	}

	return &ChoiceStmt{At: t.Pos, Options: opts}, nil
}

func (p *parser) parseImport() (Stmt, error) {
	t := p.advance()

	if t.Kind == IMPORT {
		mod, err := p.ident()
		if err != nil {
			return nil, err
		}

		return &ImportStmt{At: t.Pos, Module: mod}, nil
	}

	mod, err := p.ident()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(IMPORT); err != nil {
		return nil, err
	}

	s := &ImportStmt{At: t.Pos, Module: mod, From: true}

	if p.at(STAR) {
		p.advance()
		s.All = true

		return s, nil
	}

	for {
		n, err := p.ident()
		if err != nil {
			return nil, err
		}

		s.Names = append(s.Names, n)

		if !p.at(COMMA) {
			return s, nil
		}

		p.advance()
	}
}

// parseCall parses the argument list of a call whose name token has been
// consumed, with an optional module qualifier.
func (p *parser) parseCall(name Token) (*CallExpr, error) {
	c := &CallExpr{At: name.Pos, Name: name.Text}

	if p.at(DOT) {
		p.advance()

		fn, err := p.ident()
		if err != nil {
			return nil, err
		}

		c.Module, c.Name = name.Text, fn
	}

	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	args, err := p.parseList(RPAREN)
	if err != nil {
		return nil, err
	}

	c.Args = args

	return c, nil
}

// parseList parses comma-separated expressions up to and including the
// closing token. Newlines between elements are ignored and a trailing comma
// is allowed.
func (p *parser) parseList(closing Kind) ([]Expr, error) {
	var elems []Expr

	p.skipNewlines()

	for !p.at(closing) {
		if len(elems) > 0 {
			if !p.at(COMMA) {
				_, err := p.expect(closing)

				return nil, err
			}

			p.advance()
			p.skipNewlines()

			// trailing comma
			if p.at(closing) {
				break
			}
		}

		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		elems = append(elems, e)

		p.skipNewlines()
	}

	p.advance()

	return elems, nil
}

func (p *parser) parseExpr() (Expr, error) { return p.parseOr() }

// binaryLevel parses a left-associative chain of the given operators over
// operands produced by next.
func (p *parser) binaryLevel(next func() (Expr, error), ops ...Kind) (Expr, error) {
	x, err := next()
	if err != nil {
		return nil, err
	}

	for p.at(ops...) {
		op := p.advance()

		y, err := next()
		if err != nil {
			return nil, err
		}

		k := op.Kind
		if k == IS {
			k = EQ
		}

		x = &BinaryExpr{At: op.Pos, Op: k, X: x, Y: y}
	}

	return x, nil
}

func (p *parser) parseOr() (Expr, error) {
	return p.binaryLevel(p.parseAnd, OR)
}

func (p *parser) parseAnd() (Expr, error) {
	return p.binaryLevel(p.parseComparison, AND)
}

func (p *parser) parseComparison() (Expr, error) {
	return p.binaryLevel(p.parseAdditive, EQ, NE, GT, LT, GE, LE, IS)
}

func (p *parser) parseAdditive() (Expr, error) {
	return p.binaryLevel(p.parseMultiplicative, PLUS, MINUS)
}

func (p *parser) parseMultiplicative() (Expr, error) {
	return p.binaryLevel(p.parsePower, STAR, SLASH, PERCENT)
}

// parsePower is right-associative: 2 ** 3 ** 2 is 2 ** 9.
func (p *parser) parsePower() (Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	if !p.at(POWER) {
		return x, nil
	}

	op := p.advance()

	y, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	return &BinaryExpr{At: op.Pos, Op: POWER, X: x, Y: y}, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if !p.at(NOT, MINUS) {
		return p.parsePostfix()
	}

	op := p.advance()

	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnaryExpr{At: op.Pos, Op: op.Kind, X: x}, nil
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch t := p.cur(); t.Kind {
		case LBRACKET:
			p.advance()

			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}

			x = &IndexExpr{At: t.Pos, X: x, Index: idx}

		case LPAREN:
			return nil, p.fail(ErrUnexpectedToken, t,
				"Only functions can be called; this value is not a function name")

		default:
			return x, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.cur()

	switch t.Kind {
	case NUMBER, STRING:
		p.advance()

		return &Literal{At: t.Pos, Value: t.Value}, nil

	case TRUE, FALSE:
		p.advance()

		return &Literal{At: t.Pos, Value: Bool(t.Kind == TRUE)}, nil

	case NULL:
		p.advance()

		return &Literal{At: t.Pos, Value: Nil}, nil

	case LBRACKET:
		p.advance()

		elems, err := p.parseList(RBRACKET)
		if err != nil {
			return nil, err
		}

		return &ListExpr{At: t.Pos, Elems: elems}, nil

	case LPAREN:
		p.advance()

		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}

		return x, nil

	case IDENT:
		p.advance()

		if p.at(LPAREN, DOT) {
			return p.parseCall(t)
		}

		return &Ident{At: t.Pos, Name: t.Text}, nil

	case EOF, NEWLINE:
		return nil, p.fail(ErrUnexpectedToken, t,
			"Expected an expression, got %s", t.Kind)
	}

	return nil, p.fail(ErrUnexpectedToken, t, "Unexpected token %s", t.Kind)
}
