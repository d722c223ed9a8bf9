// Package lang implements Quill, a small scripting language for beginners
// and text adventures. Source text is tokenized by a hand-written lexer,
// parsed by a recursive descent parser into a [Program], and executed by a
// tree-walking [Interpreter].
//
// # Syntax
//
// Statements are line oriented and keywords are case-insensitive. Most
// keywords have prose synonyms ("print" for say, "let" for set, "done" for
// end, and so on); [Program.Format] rewrites them to their primary spelling.
//
//	# comments run to the end of the line
//	set name to "world"
//	say "Hello, " + name
//
//	function greet(who)
//	  return "Hi " + who
//	end
//
//	for item in [1, 2, 3] do
//	  if item % 2 == 0 then
//	    say greet(str(item))
//	  else
//	    continue
//	  end
//	end
//
//	choice "left" or "right"
//	say "You went " + answer
//
// # Values
//
// Values are integers of unbounded size, floats, strings, booleans, null,
// and lists. Lists are shared by reference; every other value is
// immutable. Adding a string to anything concatenates display text.
//
// # Control flow
//
// while and for loops honor break and continue. Labels may appear only at
// the top level of a program, and goto resumes execution after the named
// label, leaving any enclosing loops.
//
// # Functions and modules
//
// A function captures a snapshot of the variables visible when it is
// defined. Calls evaluate arguments left to right; built-ins shadow user
// functions of the same name. The io and game modules are loaded with
// "import io", "from game import *", or "from io import read_text".
//
// # Errors
//
// Every failure is an [*Error] deriving from one of the package sentinels
// (see [ErrUndefinedVariable] and friends), carrying the source position,
// the offending line, and a hint. [Error.Format] renders the diagnostic.
package lang
