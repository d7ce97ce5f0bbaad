package parser

import "fmt"

// StructuralError reports a violated structural guarantee, such as a table
// row that still has the wrong cell count after normalization. It signals a
// defective grammar rule rather than malformed input; malformed input is
// always absorbed into the tree as plain content.
type StructuralError struct {
	Rule string
	Line int
	Msg  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s rule: line %d: %s", e.Rule, e.Line, e.Msg)
}

// structuralf aborts the current parse with a StructuralError. The panic is
// recovered at the Parse entry points and returned as an error.
func structuralf(rule string, line int, format string, v ...any) {
	panic(&StructuralError{Rule: rule, Line: line, Msg: fmt.Sprintf(format, v...)})
}
