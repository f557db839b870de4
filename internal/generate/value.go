package generate

import (
	"keystone/internal/source"
)

// ValueKind is the shape of a raw constraint value.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueString
	ValueList
	ValueMap
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "boolean"
	case ValueString:
		return "string"
	case ValueList:
		return "list"
	case ValueMap:
		return "mapping"
	default:
		return "null"
	}
}

// Field is one ordered mapping entry.
type Field struct {
	Key   string
	Value Value
}

// Value is a raw constraint value as written in the declaration, with the
// position of every node kept for definition errors.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Str    string
	List   []Value
	Fields []Field
	At     source.Ref
}

func Bool(b bool, at source.Ref) Value {
	return Value{Kind: ValueBool, Bool: b, At: at}
}

func String(s string, at source.Ref) Value {
	return Value{Kind: ValueString, Str: s, At: at}
}

func List(at source.Ref, items ...Value) Value {
	return Value{Kind: ValueList, List: items, At: at}
}

func Map(at source.Ref, fields ...Field) Value {
	return Value{Kind: ValueMap, Fields: fields, At: at}
}

// Strings builds a list of strings sharing one position; handy in tests.
func Strings(at source.Ref, items ...string) Value {
	v := Value{Kind: ValueList, At: at}
	for _, s := range items {
		v.List = append(v.List, String(s, at))
	}
	return v
}

// Get returns the mapping field named key.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// isStringList reports whether v is a non-empty list of strings.
func (v Value) isStringList() bool {
	if v.Kind != ValueList || len(v.List) == 0 {
		return false
	}
	for _, item := range v.List {
		if item.Kind != ValueString {
			return false
		}
	}
	return true
}
