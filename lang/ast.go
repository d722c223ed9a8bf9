package lang

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos returns the location of the token that starts the node.
	Pos() Position
}

// Stmt is a statement node. The set of implementations is closed.
type Stmt interface {
	Node
	stmt()
}

// Expr is an expression node. The set of implementations is closed.
type Expr interface {
	Node
	expr()
}

// Program is a parsed source file.
type Program struct {
	Name   string
	Source string
	Stmts  []Stmt
}

type (
	// SayStmt writes the display string of Value followed by a newline.
	SayStmt struct {
		At    Position
		Value Expr
	}

	// AskStmt prints Prompt and stores one line of input in Name.
	AskStmt struct {
		At     Position
		Prompt Expr
		Name   string
	}

	// SetStmt assigns Value to Target, which is an *Ident or an *IndexExpr.
	SetStmt struct {
		At     Position
		Target Expr
		Value  Expr
		// Bare is set when the statement was written without the set
		// keyword ("x = 1").
		Bare bool
	}

	// IfStmt runs Then when Cond is truthy and Else otherwise.
	IfStmt struct {
		At   Position
		Cond Expr
		Then []Stmt
		Else []Stmt
		// Chained marks an if that was written as an elsif clause of the
		// enclosing if; it is then the only statement of that if's Else.
		Chained bool
	}

	// WhileStmt runs Body while Cond is truthy.
	WhileStmt struct {
		At   Position
		Cond Expr
		Body []Stmt
	}

	// ForStmt runs Body once for each element of a list or character of a
	// string, binding it to Var.
	ForStmt struct {
		At   Position
		Var  string
		Iter Expr
		Body []Stmt
	}

	// FuncStmt defines a function when executed.
	FuncStmt struct {
		At     Position
		Name   string
		Params []string
		Body   []Stmt
	}

	// ReturnStmt leaves the current function. Value may be nil.
	ReturnStmt struct {
		At    Position
		Value Expr
	}

	// BreakStmt leaves the innermost loop.
	BreakStmt struct{ At Position }

	// ContinueStmt starts the next iteration of the innermost loop.
	ContinueStmt struct{ At Position }

	// LabelStmt marks a goto target.
	LabelStmt struct {
		At   Position
		Name string
	}

	// GotoStmt transfers control to the statement after a label.
	GotoStmt struct {
		At    Position
		Label string
	}

	// ChoiceStmt presents a numbered menu and stores the selection.
	ChoiceStmt struct {
		At      Position
		Options []Expr
	}

	// ImportStmt loads a module. With From unset the module is bound as a
	// namespace; otherwise the listed Names, or every function when All is
	// set, become built-ins.
	ImportStmt struct {
		At     Position
		Module string
		From   bool
		All    bool
		Names  []string
	}

	// CallStmt evaluates a call for its side effects.
	CallStmt struct {
		At   Position
		Call *CallExpr
	}
)

type (
	// Literal is a constant value.
	Literal struct {
		At    Position
		Value Value
	}

	// Ident reads a variable.
	Ident struct {
		At   Position
		Name string
	}

	// ListExpr builds a new list.
	ListExpr struct {
		At    Position
		Elems []Expr
	}

	// IndexExpr reads element Index of X.
	IndexExpr struct {
		At    Position
		X     Expr
		Index Expr
	}

	// CallExpr calls a function by name, optionally qualified by an
	// imported module.
	CallExpr struct {
		At     Position
		Module string
		Name   string
		Args   []Expr
	}

	// BinaryExpr applies an arithmetic, comparison, or logical operator.
	BinaryExpr struct {
		At Position
		Op Kind
		X  Expr
		Y  Expr
	}

	// UnaryExpr applies not or unary minus.
	UnaryExpr struct {
		At Position
		Op Kind
		X  Expr
	}
)

func (s *SayStmt) Pos() Position      { return s.At }
func (s *AskStmt) Pos() Position      { return s.At }
func (s *SetStmt) Pos() Position      { return s.At }
func (s *IfStmt) Pos() Position       { return s.At }
func (s *WhileStmt) Pos() Position    { return s.At }
func (s *ForStmt) Pos() Position      { return s.At }
func (s *FuncStmt) Pos() Position     { return s.At }
func (s *ReturnStmt) Pos() Position   { return s.At }
func (s *BreakStmt) Pos() Position    { return s.At }
func (s *ContinueStmt) Pos() Position { return s.At }
func (s *LabelStmt) Pos() Position    { return s.At }
func (s *GotoStmt) Pos() Position     { return s.At }
func (s *ChoiceStmt) Pos() Position   { return s.At }
func (s *ImportStmt) Pos() Position   { return s.At }
func (s *CallStmt) Pos() Position     { return s.At }

func (*SayStmt) stmt()      {}
func (*AskStmt) stmt()      {}
func (*SetStmt) stmt()      {}
func (*IfStmt) stmt()       {}
func (*WhileStmt) stmt()    {}
func (*ForStmt) stmt()      {}
func (*FuncStmt) stmt()     {}
func (*ReturnStmt) stmt()   {}
func (*BreakStmt) stmt()    {}
func (*ContinueStmt) stmt() {}
func (*LabelStmt) stmt()    {}
func (*GotoStmt) stmt()     {}
func (*ChoiceStmt) stmt()   {}
func (*ImportStmt) stmt()   {}
func (*CallStmt) stmt()     {}

func (e *Literal) Pos() Position    { return e.At }
func (e *Ident) Pos() Position      { return e.At }
func (e *ListExpr) Pos() Position   { return e.At }
func (e *IndexExpr) Pos() Position  { return e.At }
func (e *CallExpr) Pos() Position   { return e.At }
func (e *BinaryExpr) Pos() Position { return e.At }
func (e *UnaryExpr) Pos() Position  { return e.At }

func (*Literal) expr()    {}
func (*Ident) expr()      {}
func (*ListExpr) expr()   {}
func (*IndexExpr) expr()  {}
func (*CallExpr) expr()   {}
func (*BinaryExpr) expr() {}
func (*UnaryExpr) expr()  {}

// QualifiedName returns the call target as written, for messages.
func (c *CallExpr) QualifiedName() string {
	if c.Module == "" {
		return c.Name
	}

	return c.Module + "." + c.Name
}
