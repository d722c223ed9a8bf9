package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/quill/lang"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string // qualified function name, as in "io.read_text"
	argIndex int    // 0-based index of the argument under the cursor
	inCall   bool
}

// detectFunctionCall reports the innermost call whose open parenthesis
// precedes cursor and is not yet closed.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	depth := 0
	open := -1

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && isWordBoundary(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" || strings.HasPrefix(name, ".") {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// userFunctions returns the parameter lists of the functions defined in
// source, keyed by name. A later definition replaces an earlier one.
func userFunctions(source string) map[string][]string {
	tokens, _ := lang.Tokenize(source)
	funcs := map[string][]string{}

	for i := 0; i+2 < len(tokens); i++ {
		if tokens[i].Kind != lang.FUNCTION || tokens[i+1].Kind != lang.IDENT ||
			tokens[i+2].Kind != lang.LPAREN {
			continue
		}

		var params []string

		for j := i + 3; j < len(tokens) && tokens[j].Kind != lang.RPAREN; j++ {
			if tokens[j].Kind == lang.IDENT {
				params = append(params, tokens[j].Text)
			}
		}

		funcs[tokens[i+1].Text] = params
	}

	return funcs
}

// getSignature returns the display signature of name and its parameter
// names. User functions defined in source take precedence over built-ins,
// whose parameters are described by arity only.
func getSignature(source, name string) (signature string, params []string) {
	if p, ok := userFunctions(source)[name]; ok {
		return name + "(" + strings.Join(p, ", ") + ")", p
	}

	b, ok := lang.LookupBuiltin(name)
	if !ok {
		return "", nil
	}

	switch {
	case b.MaxArgs < 0:
		params = make([]string, b.MinArgs, b.MinArgs+1)
		for i := range params {
			params[i] = "arg"
		}

		params = append(params, "...args")

	default:
		params = make([]string, b.MaxArgs)
		for i := range params {
			params[i] = "arg"
			if i >= b.MinArgs {
				params[i] = "[arg]"
			}
		}
	}

	return name + "(" + strings.Join(params, ", ") + ")", params
}

// renderSignatureHint renders signature with the parameter at currentArgIdx
// highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 || !strings.HasSuffix(signature, ")") {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		isVariadic := strings.HasPrefix(param, "...")

		if (isVariadic && currentArgIdx >= i) ||
			(!isVariadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
