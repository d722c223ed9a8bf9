package lang

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the program to nested maps and slices suitable for JSON or
// YAML encoding. Every node becomes a map with a "node" key naming its kind
// and a "pos" key holding its line:column.
func (p *Program) ToMap() map[string]any {
	return map[string]any{
		"program":    p.Name,
		"statements": stmtsToNative(p.Stmts),
	}
}

func stmtsToNative(stmts []Stmt) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = nodeToNative(s)
	}

	return out
}

func exprsToNative(exprs []Expr) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = nodeToNative(e)
	}

	return out
}

func stringsToNative(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}

	return out
}

func nodeToNative(n Node) map[string]any {
	m := map[string]any{"pos": n.Pos().String()}

	switch n := n.(type) {
	case *SayStmt:
		m["node"] = "say"
		m["value"] = nodeToNative(n.Value)

	case *AskStmt:
		m["node"] = "ask"
		m["prompt"] = nodeToNative(n.Prompt)
		m["into"] = n.Name

	case *SetStmt:
		m["node"] = "set"
		m["target"] = nodeToNative(n.Target)
		m["value"] = nodeToNative(n.Value)

	case *IfStmt:
		m["node"] = "if"
		m["cond"] = nodeToNative(n.Cond)
		m["then"] = stmtsToNative(n.Then)

		if len(n.Else) > 0 {
			m["else"] = stmtsToNative(n.Else)
		}

	case *WhileStmt:
		m["node"] = "while"
		m["cond"] = nodeToNative(n.Cond)
		m["body"] = stmtsToNative(n.Body)

	case *ForStmt:
		m["node"] = "for"
		m["var"] = n.Var
		m["iter"] = nodeToNative(n.Iter)
		m["body"] = stmtsToNative(n.Body)

	case *FuncStmt:
		m["node"] = "function"
		m["name"] = n.Name
		m["params"] = stringsToNative(n.Params)
		m["body"] = stmtsToNative(n.Body)

	case *ReturnStmt:
		m["node"] = "return"

		if n.Value != nil {
			m["value"] = nodeToNative(n.Value)
		}

	case *BreakStmt:
		m["node"] = "break"

	case *ContinueStmt:
		m["node"] = "continue"

	case *LabelStmt:
		m["node"] = "label"
		m["name"] = n.Name

	case *GotoStmt:
		m["node"] = "goto"
		m["label"] = n.Label

	case *ChoiceStmt:
		m["node"] = "choice"
		m["options"] = exprsToNative(n.Options)

	case *ImportStmt:
		m["node"] = "import"
		m["module"] = n.Module

		switch {
		case n.All:
			m["names"] = "*"
		case n.From:
			m["names"] = stringsToNative(n.Names)
		}

	case *CallStmt:
		m["node"] = "call"
		m["call"] = nodeToNative(n.Call)

	case *Literal:
		m["node"] = "literal"
		m["type"] = n.Value.TypeName()
		m["value"] = Repr(n.Value)

	case *Ident:
		m["node"] = "ident"
		m["name"] = n.Name

	case *ListExpr:
		m["node"] = "list"
		m["elems"] = exprsToNative(n.Elems)

	case *IndexExpr:
		m["node"] = "index"
		m["x"] = nodeToNative(n.X)
		m["index"] = nodeToNative(n.Index)

	case *CallExpr:
		m["node"] = "callexpr"
		m["name"] = n.QualifiedName()
		m["args"] = exprsToNative(n.Args)

	case *BinaryExpr:
		m["node"] = "binary"
		m["op"] = operatorWord(n.Op)
		m["x"] = nodeToNative(n.X)
		m["y"] = nodeToNative(n.Y)

	case *UnaryExpr:
		m["node"] = "unary"
		m["op"] = operatorWord(n.Op)
		m["x"] = nodeToNative(n.X)
	}

	return m
}

// Print writes an indented outline of the syntax tree to w.
func (p *Program) Print(w io.Writer) error {
	return p.PrintIndent(w, 0)
}

// PrintIndent writes the outline with every line indented by indent levels.
func (p *Program) PrintIndent(w io.Writer, indent int) error {
	var b strings.Builder

	for _, s := range stmtsToNative(p.Stmts) {
		printNative(&b, s.(map[string]any), indent)
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// printNative writes one node as "kind @pos key=value..." followed by its
// child nodes, each under a "key:" heading.
func printNative(b *strings.Builder, m map[string]any, indent int) {
	prefix := strings.Repeat("  ", indent)

	fmt.Fprintf(b, "%s%s @%s", prefix, m["node"], m["pos"])

	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "node" && k != "pos" {
			keys = append(keys, k)
		}
	}

	slices.Sort(keys)

	var children []string

	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]any:
			children = append(children, k)
		case []any:
			if len(v) > 0 {
				if _, ok := v[0].(map[string]any); ok {
					children = append(children, k)

					continue
				}
			}

			parts := make([]string, len(v))
			for i, s := range v {
				parts[i] = fmt.Sprint(s)
			}

			fmt.Fprintf(b, " %s=(%s)", k, strings.Join(parts, ", "))
		default:
			fmt.Fprintf(b, " %s=%v", k, v)
		}
	}

	b.WriteByte('\n')

	for _, k := range children {
		fmt.Fprintf(b, "%s  %s:\n", prefix, k)

		switch v := m[k].(type) {
		case map[string]any:
			printNative(b, v, indent+2)
		case []any:
			for _, c := range v {
				printNative(b, c.(map[string]any), indent+2)
			}
		}
	}
}
