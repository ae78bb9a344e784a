package parser

import "fmt"

// ParseState is the result of applying a TokenRule: OK on success, one of
// the named failure kinds otherwise. Every TokenRule carries its own
// FailState so the combinator library reports a specific diagnostic
// instead of a generic failure (spec §7).
type ParseState uint8

const (
	OK ParseState = iota
	Fail
	ErrUnexpectedToken
	ErrDefinitionUnknownToken
	ErrDefinitionMissingAssignmentOperator
	ErrTypeOfMissingTypeName
	ErrTypeOfMissingBracketOpen
	ErrTypeOfMissingBracketClose
	ErrGeneric
)

func (s ParseState) String() string {
	switch s {
	case OK:
		return "OK"
	case Fail:
		return "Fail"
	case ErrUnexpectedToken:
		return "UnexpectedToken"
	case ErrDefinitionUnknownToken:
		return "Definition_UnknownToken"
	case ErrDefinitionMissingAssignmentOperator:
		return "Definition_MissingAssignmentOperator"
	case ErrTypeOfMissingTypeName:
		return "TypeOf_MissingTypeName"
	case ErrTypeOfMissingBracketOpen:
		return "TypeOf_MissingBracketOpen"
	case ErrTypeOfMissingBracketClose:
		return "TypeOf_MissingBracketClose"
	default:
		return "Error"
	}
}

// Error is the diagnostic surfaced to a caller on parse failure: the
// (line, column) of the offending token plus the textual error name,
// exactly the shape spec §7 requires user-visible errors to carry.
type Error struct {
	State  ParseState
	Line   uint32
	Column uint32
	Token  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s (near %q)", e.Line, e.Column, e.State, e.Token)
}
