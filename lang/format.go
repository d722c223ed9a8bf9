package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultIndent is the indentation width used by [Program.Format].
const DefaultIndent = 2

// Format writes the program in canonical Quill syntax: primary keyword
// spellings, one statement per line, and nested blocks indented by indent
// spaces. Comments and blank lines are not preserved.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	f := &formatter{indent: indent}
	f.block(p.Stmts, 0)

	_, err := io.WriteString(w, f.String())

	return err
}

// FormatJSON writes the syntax tree as JSON.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the syntax tree as YAML.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

type formatter struct {
	strings.Builder
	indent int
}

func (f *formatter) line(depth int, parts ...string) {
	f.WriteString(strings.Repeat(" ", depth*f.indent))

	for _, s := range parts {
		f.WriteString(s)
	}

	f.WriteByte('\n')
}

func (f *formatter) block(stmts []Stmt, depth int) {
	for _, s := range stmts {
		f.stmt(s, depth)
	}
}

func (f *formatter) stmt(s Stmt, depth int) {
	switch s := s.(type) {
	case *SayStmt:
		f.line(depth, "say ", formatExpr(s.Value))

	case *AskStmt:
		f.line(depth, "ask ", formatExpr(s.Prompt), " into ", s.Name)

	case *SetStmt:
		if s.Bare {
			f.line(depth, formatExpr(s.Target), " = ", formatExpr(s.Value))
		} else {
			f.line(depth, "set ", formatExpr(s.Target), " to ", formatExpr(s.Value))
		}

	case *IfStmt:
		f.line(depth, "if ", formatExpr(s.Cond), " then")
		f.ifTail(s, depth)
		f.line(depth, "end")

	case *WhileStmt:
		f.line(depth, "while ", formatExpr(s.Cond), " do")
		f.block(s.Body, depth+1)
		f.line(depth, "end")

	case *ForStmt:
		f.line(depth, "for ", s.Var, " in ", formatExpr(s.Iter), " do")
		f.block(s.Body, depth+1)
		f.line(depth, "end")

	case *FuncStmt:
		f.line(depth, "function ", s.Name, "(", strings.Join(s.Params, ", "), ")")
		f.block(s.Body, depth+1)
		f.line(depth, "end")

	case *ReturnStmt:
		if s.Value == nil {
			f.line(depth, "return")
		} else {
			f.line(depth, "return ", formatExpr(s.Value))
		}

	case *BreakStmt:
		f.line(depth, "break")

	case *ContinueStmt:
		f.line(depth, "continue")

	case *LabelStmt:
		f.line(depth, "label: ", s.Name)

	case *GotoStmt:
		f.line(depth, "goto ", s.Label)

	case *ChoiceStmt:
		opts := make([]string, len(s.Options))
		for i, o := range s.Options {
			opts[i] = exprAt(o, precComparison)
		}

		f.line(depth, "choice ", strings.Join(opts, " or "))

	case *ImportStmt:
		switch {
		case !s.From:
			f.line(depth, "import ", s.Module)
		case s.All:
			f.line(depth, "from ", s.Module, " import *")
		default:
			f.line(depth, "from ", s.Module, " import ", strings.Join(s.Names, ", "))
		}

	case *CallStmt:
		f.line(depth, formatExpr(s.Call))
	}
}

// ifTail writes the blocks of an if, folding chained ifs into elsif
// clauses.
func (f *formatter) ifTail(s *IfStmt, depth int) {
	f.block(s.Then, depth+1)

	if len(s.Else) == 0 {
		return
	}

	if next, ok := s.Else[0].(*IfStmt); ok && next.Chained && len(s.Else) == 1 {
		f.line(depth, "elsif ", formatExpr(next.Cond), " then")
		f.ifTail(next, depth)

		return
	}

	f.line(depth, "else")
	f.block(s.Else, depth+1)
}

// Binding strength of each expression form, loosest first.
const (
	precOr = iota + 1
	precAnd
	precComparison
	precAdditive
	precMultiplicative
	precPower
	precUnary
	precPostfix
)

func precedence(e Expr) int {
	switch e := e.(type) {
	case *BinaryExpr:
		switch e.Op {
		case OR:
			return precOr
		case AND:
			return precAnd
		case PLUS, MINUS:
			return precAdditive
		case STAR, SLASH, PERCENT:
			return precMultiplicative
		case POWER:
			return precPower
		default:
			return precComparison
		}
	case *UnaryExpr:
		return precUnary
	default:
		return precPostfix
	}
}

func formatExpr(e Expr) string { return exprAt(e, precOr) }

// exprAt formats e for a position that requires at least precedence min,
// adding parentheses when e binds more loosely.
func exprAt(e Expr, min int) string {
	s := exprString(e)
	if precedence(e) < min {
		return "(" + s + ")"
	}

	return s
}

func exprString(e Expr) string {
	switch e := e.(type) {
	case *Literal:
		return formatLiteral(e.Value)

	case *Ident:
		return e.Name

	case *ListExpr:
		elems := make([]string, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = formatExpr(el)
		}

		return "[" + strings.Join(elems, ", ") + "]"

	case *IndexExpr:
		return exprAt(e.X, precPostfix) + "[" + formatExpr(e.Index) + "]"

	case *CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = formatExpr(a)
		}

		return e.QualifiedName() + "(" + strings.Join(args, ", ") + ")"

	case *UnaryExpr:
		if e.Op == NOT {
			return "not " + exprAt(e.X, precUnary)
		}

		return "-" + exprAt(e.X, precUnary)

	case *BinaryExpr:
		p := precedence(e)
		left, right := p, p+1 // left-associative

		if e.Op == POWER {
			left, right = p+1, p
		}

		return exprAt(e.X, left) + " " + operatorWord(e.Op) + " " + exprAt(e.Y, right)
	}

	return ""
}

func operatorWord(k Kind) string {
	if s, ok := operatorText[k]; ok {
		return s
	}

	return canonical[k]
}

// formatLiteral writes v as Quill source. Floats are always written in
// positional notation, which is the only form the lexer reads.
func formatLiteral(v Value) string {
	switch v := v.(type) {
	case Str:
		var b strings.Builder

		b.WriteByte('"')

		for _, r := range string(v) {
			switch r {
			case '"', '\\':
				b.WriteByte('\\')
				b.WriteRune(r)
			case '\n':
				b.WriteString(`\n`)
			case '\t':
				b.WriteString(`\t`)
			default:
				b.WriteRune(r)
			}
		}

		b.WriteByte('"')

		return b.String()

	case Float:
		f := float64(v)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return formatFloat(f)
		}

		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}

		return s

	case Bool:
		if v {
			return "true"
		}

		return "false"

	case Null:
		return "null"
	}

	return Repr(v)
}
