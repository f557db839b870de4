package diag

import (
	"keystone/internal/contract"
	"keystone/internal/source"
)

type Note struct {
	Ref source.Ref
	Msg string
}

// Fix describes a suggested remedy. Fixes are never applied by the engine.
type Fix struct {
	Name        string
	Description string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Ref
	Notes    []Note
	Fixes    []Fix
	Contract *contract.Contract // nil for definition errors and I/O warnings
}

// ContractID returns the violated contract's ID or "".
func (d *Diagnostic) ContractID() string {
	if d.Contract == nil {
		return ""
	}
	return d.Contract.ID
}
