package diag

import (
	"fmt"
)

// Code identifies a diagnostic kind. The numeric value groups codes by the
// stage that produces them; the string form is the stable kind name consumed
// by reporters.
type Code uint16

const (
	UnknownCode Code = 0

	// Symbol collection (stage 1).
	MissingVisibilityModifier Code = 1001
	DuplicateDeclaration      Code = 1002

	// Visibility resolution (stage 2).
	SymbolNotVisible   Code = 2001
	AmbiguousReference Code = 2002

	// Builtin elimination (stage 3).
	ReservedIdentifierUsed Code = 3001
	InvalidBuiltinUsage    Code = 3002

	// Enum checking (stage 4).
	InvalidEnumValue        Code = 4001
	NonExhaustiveEnumSwitch Code = 4002
	DuplicateEnumCase       Code = 4003

	// Error propagation (stage 5).
	PropagationOutsideErrorFunction Code = 5001

	// Promise lowering (stage 6).
	PromiseResultDiscardedUnsafely Code = 6001
	LaunchOutsideFunction          Code = 6002

	// Driver I/O.
	IOLoadFileError Code = 9001
	IOBadTreeFile   Code = 9002
)

var codeNames = map[Code]string{
	UnknownCode:                     "Unknown",
	MissingVisibilityModifier:       "MissingVisibilityModifier",
	DuplicateDeclaration:            "DuplicateDeclaration",
	SymbolNotVisible:                "SymbolNotVisible",
	AmbiguousReference:              "AmbiguousReference",
	ReservedIdentifierUsed:          "ReservedIdentifierUsed",
	InvalidBuiltinUsage:             "InvalidBuiltinUsage",
	InvalidEnumValue:                "InvalidEnumValue",
	NonExhaustiveEnumSwitch:         "NonExhaustiveEnumSwitch",
	DuplicateEnumCase:               "DuplicateEnumCase",
	PropagationOutsideErrorFunction: "PropagationOutsideErrorFunction",
	PromiseResultDiscardedUnsafely:  "PromiseResultDiscardedUnsafely",
	LaunchOutsideFunction:           "LaunchOutsideFunction",
	IOLoadFileError:                 "IOLoadFileError",
	IOBadTreeFile:                   "IOBadTreeFile",
}

// String returns the stable kind name for the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}

// ID returns the numeric form used in compact renderings, e.g. "GOAT4002".
func (c Code) ID() string {
	return fmt.Sprintf("GOAT%04d", uint16(c))
}
