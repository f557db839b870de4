package diag

import (
	"keystone/internal/contract"
	"keystone/internal/source"
)

func New(sev Severity, code Code, primary source.Ref, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Ref, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// Violation builds the diagnostic for a broken contract.
func Violation(c *contract.Contract, primary source.Ref, msg string) Diagnostic {
	d := NewError(ForContract(c.Type), primary, msg)
	d.Contract = c
	return d
}

func (d Diagnostic) WithNote(ref source.Ref, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Ref: ref, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(name, description string) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Name: name, Description: description})
	return d
}
