package debugconsole

// Kind tells how a fragment must be executed.
type Kind int

const (
	Expression Kind = iota // produces a value
	Statement              // runs for its side effects
)

func (k Kind) String() string {
	if k == Expression {
		return "expression"
	}
	return "statement"
}

// Fragment is a classified line of input. Code is always the text exactly
// as typed.
type Fragment struct {
	Code string
	Kind Kind
}

// Classify decides whether text is an expression or a statement by
// compiling it both ways. Nothing is executed.
//
// When neither compiles, the error from the statement attempt is returned.
// Invalid fragments usually read as malformed statements, so that
// diagnostic is the one worth showing.
func Classify(in Interpreter, text string) (Fragment, error) {
	if _, err := in.LoadExpression(classifyChunk, text); err == nil {
		return Fragment{Code: text, Kind: Expression}, nil
	}
	if _, err := in.LoadStatement(classifyChunk, text); err != nil {
		return Fragment{}, err
	}
	return Fragment{Code: text, Kind: Statement}, nil
}

// load compiles a classified fragment for execution under name.
func (f Fragment) load(in Interpreter, name string) (Chunk, error) {
	if f.Kind == Expression {
		return in.LoadExpression(name, f.Code)
	}
	return in.LoadStatement(name, f.Code)
}
