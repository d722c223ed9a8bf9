package lang

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

// signal is the control transfer requested by an executed statement.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
	sigJump
)

// outcome is the result of executing a statement. Loops consume break and
// continue, calls consume return, and the top-level loop consumes jump.
type outcome struct {
	sig    signal
	value  Value // sigReturn
	target int   // sigJump: index of the label statement
}

var completed = outcome{}

func (in *Interpreter) execBlock(ctx context.Context, stmts []Stmt) (outcome, error) {
	for _, s := range stmts {
		out, err := in.exec(ctx, s)
		if err != nil || out.sig != sigNone {
			return out, err
		}
	}

	return completed, nil
}

func (in *Interpreter) exec(ctx context.Context, s Stmt) (outcome, error) {
	switch s := s.(type) {
	case *SayStmt:
		v, err := in.eval(ctx, s.Value)
		if err != nil {
			return completed, err
		}

		in.println(paint(in.palette.say, Display(v)))

		return completed, nil

	case *AskStmt:
		return completed, in.execAsk(ctx, s)

	case *SetStmt:
		return completed, in.execSet(ctx, s)

	case *IfStmt:
		c, err := in.eval(ctx, s.Cond)
		if err != nil {
			return completed, err
		}

		if Truthy(c) {
			return in.execBlock(ctx, s.Then)
		}

		return in.execBlock(ctx, s.Else)

	case *WhileStmt:
		return in.execWhile(ctx, s)

	case *ForStmt:
		return in.execFor(ctx, s)

	case *FuncStmt:
		in.funcs[s.Name] = &function{
			name:    s.Name,
			params:  s.Params,
			body:    s.Body,
			closure: maps.Clone(in.vars),
		}

		return completed, nil

	case *ReturnStmt:
		out := outcome{sig: sigReturn, value: Nil}

		if s.Value != nil {
			v, err := in.eval(ctx, s.Value)
			if err != nil {
				return completed, err
			}

			out.value = v
		}

		return out, nil

	case *BreakStmt:
		return outcome{sig: sigBreak}, nil

	case *ContinueStmt:
		return outcome{sig: sigContinue}, nil

	case *LabelStmt:
		return completed, nil

	case *GotoStmt:
		idx, ok := in.labels[s.Label]
		if !ok {
			e := in.fail(ErrLabelNotFound, s, "Label '%s' not found", s.Label)
			if hint := suggest(s.Label, mapKeys(in.labels)); hint != "" {
				e = e.WithHint(hint)
			}

			return completed, e
		}

		return outcome{sig: sigJump, target: idx}, nil

	case *ChoiceStmt:
		return completed, in.execChoice(ctx, s)

	case *ImportStmt:
		return completed, in.execImport(ctx, s)

	case *CallStmt:
		_, err := in.call(ctx, s.Call)

		return completed, err
	}

	panic(fmt.Sprintf("lang: unhandled statement %T", s))
}

func (in *Interpreter) execAsk(ctx context.Context, s *AskStmt) error {
	p, err := in.eval(ctx, s.Prompt)
	if err != nil {
		return err
	}

	in.print(paint(in.palette.prompt, "❓ "+Display(p)) + paint(in.palette.arrow, " ➤ "))

	line, err := in.readLine()
	if err != nil {
		return in.inputEnded(err)
	}

	in.vars[s.Name] = Str(line)

	return nil
}

func (in *Interpreter) execSet(ctx context.Context, s *SetStmt) error {
	v, err := in.eval(ctx, s.Value)
	if err != nil {
		return err
	}

	switch t := s.Target.(type) {
	case *Ident:
		in.vars[t.Name] = v

		return nil

	case *IndexExpr:
		x, err := in.eval(ctx, t.X)
		if err != nil {
			return err
		}

		i, err := in.eval(ctx, t.Index)
		if err != nil {
			return err
		}

		l, ok := x.(*List)
		if !ok {
			return in.fail(ErrInvalidAssignment, t,
				"Cannot assign to an index of %s", x.TypeName())
		}

		n, err := in.index(t, i, len(l.Elems), l)
		if err != nil {
			return err
		}

		l.Elems[n] = v

		return nil
	}

	return in.fail(ErrInvalidAssignment, s, "Invalid assignment target")
}

func (in *Interpreter) execWhile(ctx context.Context, s *WhileStmt) (outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return completed, context.Cause(ctx)
		}

		c, err := in.eval(ctx, s.Cond)
		if err != nil {
			return completed, err
		}

		if !Truthy(c) {
			return completed, nil
		}

		out, err := in.execBlock(ctx, s.Body)
		if err != nil {
			return completed, err
		}

		switch out.sig {
		case sigBreak:
			return completed, nil
		case sigReturn, sigJump:
			return out, nil
		}
	}
}

func (in *Interpreter) execFor(ctx context.Context, s *ForStmt) (outcome, error) {
	x, err := in.eval(ctx, s.Iter)
	if err != nil {
		return completed, err
	}

	var item func(i int) (Value, bool)

	switch x := x.(type) {
	case *List:
		// the length is read each iteration, so elements appended by the
		// body are visited too
		item = func(i int) (Value, bool) {
			if i >= len(x.Elems) {
				return nil, false
			}

			return x.Elems[i], true
		}

	case Str:
		chars := []rune(string(x))
		item = func(i int) (Value, bool) {
			if i >= len(chars) {
				return nil, false
			}

			return Str(chars[i]), true
		}

	default:
		return completed, in.fail(ErrNotIterable, s.Iter,
			"Cannot iterate over %s", x.TypeName())
	}

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return completed, context.Cause(ctx)
		}

		v, ok := item(i)
		if !ok {
			return completed, nil
		}

		in.vars[s.Var] = v

		out, err := in.execBlock(ctx, s.Body)
		if err != nil {
			return completed, err
		}

		switch out.sig {
		case sigBreak:
			return completed, nil
		case sigReturn, sigJump:
			return out, nil
		}
	}
}

// execChoice shows a numbered menu and reads until a valid option number
// is entered.
func (in *Interpreter) execChoice(ctx context.Context, s *ChoiceStmt) error {
	opts := make([]string, len(s.Options))

	for i, o := range s.Options {
		v, err := in.eval(ctx, o)
		if err != nil {
			return err
		}

		opts[i] = Display(v)
	}

	in.println("")
	in.println(in.palette.menu.Render("Choose an option:"))

	for i, o := range opts {
		in.println("  " + paint(in.palette.number, strconv.Itoa(i+1)+".") +
			" " + paint(in.palette.option, o))
	}

	for {
		in.print("\n" + paint(in.palette.arrow, "➤ Enter your choice (number): "))

		line, err := in.readLine()
		if err != nil {
			return in.inputEnded(err)
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))

		switch {
		case err != nil:
			in.println(paint(in.palette.fail, "✗ Please enter a valid number"))

		case n < 1 || n > len(opts):
			in.println(paint(in.palette.warn,
				fmt.Sprintf("⚠ Please enter a number between 1 and %d", len(opts))))

		default:
			in.vars[AnswerVariable] = Str(opts[n-1])
			in.println(paint(in.palette.success, "✓ You chose: "+opts[n-1]))

			in.logger.TraceContext(ctx, "choice",
				slog.Int("option", n), slog.String("text", opts[n-1]))

			return nil
		}
	}
}

func (in *Interpreter) execImport(ctx context.Context, s *ImportStmt) error {
	m, err := in.load(ctx, s.Module)
	if err != nil {
		return in.locate(err, s)
	}

	switch {
	case !s.From:
		in.namespaces[m.Name] = m

	case s.All:
		maps.Copy(in.builtins, m.Funcs)

	default:
		for _, name := range s.Names {
			fn, ok := m.Funcs[name]
			if !ok {
				e := in.fail(ErrModuleFunction, s,
					"Function '%s' not found in module '%s'", name, m.Name)
				if hint := suggest(name, mapKeys(m.Funcs)); hint != "" {
					e = e.WithHint(hint)
				}

				return e
			}

			in.builtins[name] = fn
		}
	}

	in.logger.DebugContext(ctx, "module imported",
		slog.String("module", m.Name),
		slog.Bool("namespaced", !s.From),
		slog.Any("names", s.Names))

	return nil
}
