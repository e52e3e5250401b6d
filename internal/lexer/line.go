package lexer

// Line is one non-blank physical source line reduced to its trimmed
// text plus measured indentation depth and source position. Lines are
// produced flat by Tokenize and nested by BuildTree; they only live
// until the parser has classified them into AST nodes.
type Line struct {
	// Text is the line's content with leading and trailing
	// whitespace removed
	Text string

	// Depth is the nesting depth measured in indentation units
	Depth int

	// Number is the 1-based physical line number in the source
	Number int

	// Offset is the column at which Text starts within the original
	// physical line
	Offset int

	// Filename is the source file, when known
	Filename string

	// Children holds the lines nested one level beneath this one;
	// empty until BuildTree attaches them
	Children []*Line
}
