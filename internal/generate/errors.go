package generate

import (
	"fmt"
	"strings"

	"keystone/internal/diag"
	"keystone/internal/source"
)

// DefinitionError is a generation-time configuration error. It never aborts
// the run; it only drops the offending declaration's contracts.
type DefinitionError struct {
	Code diag.Code
	Kind string // constraint kind being generated, "" for tree-level errors
	At   source.Ref
	Msg  string
}

func (e DefinitionError) Error() string {
	if e.At.IsZero() {
		return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.At, e.Code.ID(), e.Msg)
}

// Diagnostic converts the error for rendering alongside check results.
func (e DefinitionError) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.At, e.Msg)
}

func unknownKind(kind string, known []string, at source.Ref) DefinitionError {
	msg := fmt.Sprintf("unknown constraint kind %q", kind)
	if len(known) > 0 {
		msg += " (known: " + strings.Join(known, ", ") + ")"
	}
	return DefinitionError{
		Code: diag.DefUnknownKind,
		Kind: kind,
		At:   at,
		Msg:  msg,
	}
}

func unresolved(kind, member, scope string, at source.Ref) DefinitionError {
	return DefinitionError{
		Code: diag.DefUnresolvedMember,
		Kind: kind,
		At:   at,
		Msg:  fmt.Sprintf("%s: member %q not found in %s", kind, member, scope),
	}
}

func malformed(kind string, at source.Ref, format string, args ...any) DefinitionError {
	return DefinitionError{
		Code: diag.DefMalformedValue,
		Kind: kind,
		At:   at,
		Msg:  kind + ": " + fmt.Sprintf(format, args...),
	}
}
