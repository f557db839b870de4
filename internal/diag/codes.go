package diag

import (
	"fmt"

	"keystone/internal/contract"
)

// Code is a stable numeric diagnostic identifier in the KS7xxxx namespace.
type Code uint32

const (
	UnknownCode Code = 0

	// Нарушения контрактов: ровно один код на тип контракта
	NoDependencyViolation  Code = 70001
	MustImplementViolation Code = 70002
	PurityViolation        Code = 70003
	CycleViolation         Code = 70004
	FilesystemViolation    Code = 70005 // exists и mirrors делят код

	// Ошибки определения архитектуры
	DefUnknownKind      Code = 70101
	DefUnresolvedMember Code = 70102
	DefMalformedValue   Code = 70103
	DefOverlap          Code = 70104

	// I/O во время проверки
	IOSkippedFiles Code = 70201

	engineRangeStart Code = 70000
	engineRangeEnd   Code = 70999
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	NoDependencyViolation:  "forbidden dependency",
	MustImplementViolation: "missing implementation",
	PurityViolation:        "impure import",
	CycleViolation:         "dependency cycle",
	FilesystemViolation:    "filesystem structure",
	DefUnknownKind:         "unregistered constraint kind",
	DefUnresolvedMember:    "member not found",
	DefMalformedValue:      "malformed constraint value",
	DefOverlap:             "overlapping member locations",
	IOSkippedFiles:         "files skipped",
}

// ForContract returns the violation code for a contract type.
func ForContract(t contract.Type) Code {
	switch t {
	case contract.NoDependency:
		return NoDependencyViolation
	case contract.MustImplement:
		return MustImplementViolation
	case contract.Purity:
		return PurityViolation
	case contract.NoCycles:
		return CycleViolation
	case contract.Exists, contract.Mirrors:
		return FilesystemViolation
	}
	panic(fmt.Sprintf("diag: unhandled contract type %d", t))
}

// IsEngineCode reports whether c belongs to this engine's reserved range.
func IsEngineCode(c Code) bool {
	return c >= engineRangeStart && c <= engineRangeEnd
}

// IsViolation reports whether c is a check-time contract violation.
func (c Code) IsViolation() bool {
	return c >= NoDependencyViolation && c <= FilesystemViolation
}

// IsDefinition reports whether c is a definition (generation-time) error.
func (c Code) IsDefinition() bool {
	return c >= DefUnknownKind && c < IOSkippedFiles
}

// ID returns the stable textual form, e.g. "KS70001".
func (c Code) ID() string {
	if IsEngineCode(c) {
		return fmt.Sprintf("KS%05d", int(c))
	}
	return "KS00000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
