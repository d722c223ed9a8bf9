package lang

import (
	"strconv"
	"strings"
)

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	EOF Kind = iota
	NEWLINE
	NUMBER
	STRING
	IDENT

	// keywords
	SAY
	ASK
	INTO
	IN
	FROM
	SET
	TO
	IS
	IF
	THEN
	ELSE
	ELSIF
	END
	CHOICE
	OR
	GOTO
	LABEL
	WHILE
	DO
	FOR
	FUNCTION
	RETURN
	AND
	NOT
	TRUE
	FALSE
	NULL
	BREAK
	CONTINUE
	IMPORT

	// operators and punctuation
	PLUS
	MINUS
	STAR
	POWER
	SLASH
	PERCENT
	EQ
	ASSIGN
	NE
	GT
	GE
	LT
	LE
	COLON
	COMMA
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	DOT
)

var kindName = [...]string{
	EOF:      "EOF",
	NEWLINE:  "NEWLINE",
	NUMBER:   "NUMBER",
	STRING:   "STRING",
	IDENT:    "IDENTIFIER",
	SAY:      "SAY",
	ASK:      "ASK",
	INTO:     "INTO",
	IN:       "IN",
	FROM:     "FROM",
	SET:      "SET",
	TO:       "TO",
	IS:       "IS",
	IF:       "IF",
	THEN:     "THEN",
	ELSE:     "ELSE",
	ELSIF:    "ELSIF",
	END:      "END",
	CHOICE:   "CHOICE",
	OR:       "OR",
	GOTO:     "GOTO",
	LABEL:    "LABEL",
	WHILE:    "WHILE",
	DO:       "DO",
	FOR:      "FOR",
	FUNCTION: "FUNCTION",
	RETURN:   "RETURN",
	AND:      "AND",
	NOT:      "NOT",
	TRUE:     "TRUE",
	FALSE:    "FALSE",
	NULL:     "NULL",
	BREAK:    "BREAK",
	CONTINUE: "CONTINUE",
	IMPORT:   "IMPORT",
	PLUS:     "PLUS",
	MINUS:    "MINUS",
	STAR:     "MULTIPLY",
	POWER:    "POWER",
	SLASH:    "DIVIDE",
	PERCENT:  "MODULO",
	EQ:       "EQUALS",
	ASSIGN:   "ASSIGN",
	NE:       "NOT_EQUALS",
	GT:       "GREATER",
	GE:       "GREATER_EQUAL",
	LT:       "LESS",
	LE:       "LESS_EQUAL",
	COLON:    "COLON",
	COMMA:    "COMMA",
	LPAREN:   "LPAREN",
	RPAREN:   "RPAREN",
	LBRACKET: "LBRACKET",
	RBRACKET: "RBRACKET",
	DOT:      "DOT",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindName) && kindName[k] != "" {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsKeyword reports whether k is produced from a word in the keyword table.
func (k Kind) IsKeyword() bool { return k >= SAY && k <= IMPORT }

// operatorText is the canonical spelling of each operator kind.
var operatorText = map[Kind]string{
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	POWER:    "**",
	SLASH:    "/",
	PERCENT:  "%",
	EQ:       "==",
	ASSIGN:   "=",
	NE:       "!=",
	GT:       ">",
	GE:       ">=",
	LT:       "<",
	LE:       "<=",
	COLON:    ":",
	COMMA:    ",",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	DOT:      ".",
}

// keywords maps every lowercase spelling accepted by the lexer to its kind.
// Several spellings share a kind so scripts can read like prose.
var keywords = map[string]Kind{
	"say": SAY, "print": SAY, "speak": SAY, "tell": SAY, "write": SAY,
	"ask": ASK, "prompt": ASK,
	"into": INTO,
	"in":   IN,
	"from": FROM,
	"set":  SET, "let": SET, "make": SET, "create": SET,
	"to":     TO,
	"equals": IS,
	"is":     IS,
	"if":     IF, "when": IF,
	"then": THEN,
	"else": ELSE, "otherwise": ELSE,
	"elsif": ELSIF, "elif": ELSIF, "elseif": ELSIF,
	"end": END, "done": END, "finish": END,
	"choice": CHOICE,
	"or":     OR,
	"goto":   GOTO, "jump": GOTO, "go": GOTO,
	"label": LABEL,
	"while": WHILE, "repeat": WHILE,
	"do":  DO,
	"for": FOR, "each": FOR,
	"function": FUNCTION, "func": FUNCTION, "def": FUNCTION, "define": FUNCTION,
	"return": RETURN, "give": RETURN,
	"and":   AND,
	"not":   NOT,
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL, "none": NULL,
	"break":    BREAK,
	"continue": CONTINUE,
	"import":   IMPORT,
}

// canonical is the spelling the formatter uses for each keyword kind.
var canonical = map[Kind]string{
	SAY: "say", ASK: "ask", INTO: "into", IN: "in", FROM: "from",
	SET: "set", TO: "to", IS: "is", IF: "if", THEN: "then", ELSE: "else",
	ELSIF: "elsif", END: "end", CHOICE: "choice", OR: "or", GOTO: "goto",
	LABEL: "label", WHILE: "while", DO: "do", FOR: "for",
	FUNCTION: "function", RETURN: "return", AND: "and", NOT: "not",
	TRUE: "true", FALSE: "false", NULL: "null", BREAK: "break",
	CONTINUE: "continue", IMPORT: "import",
}

// Keywords returns the canonical spelling of every keyword.
func Keywords() []string {
	out := make([]string, 0, len(canonical))
	for k := SAY; k <= IMPORT; k++ {
		out = append(out, canonical[k])
	}

	return out
}

// LookupKeyword returns the keyword kind of word, matched case-insensitively,
// or IDENT if word is not a keyword.
func LookupKeyword(word string) Kind {
	if k, ok := keywords[strings.ToLower(word)]; ok {
		return k
	}

	return IDENT
}

// Position is a 1-based line and column in a source text.
type Position struct {
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether p refers to a location in source.
func (p Position) IsValid() bool { return p.Line > 0 }

// Token is a single lexeme.
//
// Text holds the lexeme as written (keywords keep the spelling the author
// used). Value holds the literal for NUMBER and STRING tokens.
type Token struct {
	Kind  Kind
	Text  string
	Value Value
	Pos   Position
}

func (t Token) String() string {
	switch t.Kind {
	case NUMBER:
		return t.Kind.String() + "(" + Display(t.Value) + ")"
	case STRING:
		return t.Kind.String() + "(" + strconv.Quote(Display(t.Value)) + ")"
	case IDENT:
		return t.Kind.String() + "(" + t.Text + ")"
	default:
		return t.Kind.String()
	}
}
