// Package apidocs models the runtime and data-stage API documentation
// corpora: the recursive Type schema, the documented entities that carry it,
// and the one-line presentation used in bot responses.
package apidocs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Type describes the shape of a documented value. Values are decoded once
// and never mutated. Use DecodeType or TypeRef to build them from JSON.
type Type interface {
	// Kind returns the JSON tag of the variant ("simple" for bare names).
	Kind() string
	isType()
}

// Simple is a bare type name such as "LuaEntity" or "uint".
type Simple struct {
	Name string
}

func (Simple) isType()      {}
func (Simple) Kind() string { return "simple" }

// TypeAlias wraps another type with its own description.
type TypeAlias struct {
	Value       Type
	Description string
}

func (TypeAlias) isType()      {}
func (TypeAlias) Kind() string { return "type" }

// Builtin marks a type provided by the engine itself.
type Builtin struct{}

func (Builtin) isType()      {}
func (Builtin) Kind() string { return "builtin" }

// Union is one of several options.
type Union struct {
	Options    []Type
	FullFormat bool
}

func (Union) isType()      {}
func (Union) Kind() string { return "union" }

// Array is a list of Value.
type Array struct {
	Value Type
}

func (Array) isType()      {}
func (Array) Kind() string { return "array" }

// Dictionary maps Key to Value.
type Dictionary struct {
	Key   Type
	Value Type
}

func (Dictionary) isType()      {}
func (Dictionary) Kind() string { return "dictionary" }

// CustomTable is an engine-backed dictionary (LuaCustomTable).
type CustomTable struct {
	Key   Type
	Value Type
}

func (CustomTable) isType()      {}
func (CustomTable) Kind() string { return "LuaCustomTable" }

// Function is a callback taking the given parameter types.
type Function struct {
	Parameters []Type
}

func (Function) isType()      {}
func (Function) Kind() string { return "function" }

// Literal is a single JSON scalar. Value holds the raw JSON text.
type Literal struct {
	Value       json.RawMessage
	Description string
}

func (Literal) isType()      {}
func (Literal) Kind() string { return "literal" }

// LazyValue is a value loaded on first access (LuaLazyLoadedValue).
type LazyValue struct {
	Value Type
}

func (LazyValue) isType()      {}
func (LazyValue) Kind() string { return "LuaLazyLoadedValue" }

// LuaStruct is a runtime struct described by its attributes.
type LuaStruct struct {
	Attributes []Attribute
}

func (LuaStruct) isType()      {}
func (LuaStruct) Kind() string { return "LuaStruct" }

// Struct is the data-stage struct marker; its properties live on the owning
// DataType.
type Struct struct{}

func (Struct) isType()      {}
func (Struct) Kind() string { return "struct" }

// Table is a table with named parameters.
type Table struct {
	Parameters                  []Parameter
	VariantParameterGroups      []ParameterGroup
	VariantParameterDescription string
}

func (Table) isType()      {}
func (Table) Kind() string { return "table" }

// Tuple is a fixed-length sequence of values.
type Tuple struct {
	Values []Type
}

func (Tuple) isType()      {}
func (Tuple) Kind() string { return "tuple" }

// TypeRef carries a Type inside a JSON-decoded struct.
type TypeRef struct {
	Type
}

// Kind reports the wrapped variant, or "" when the reference is empty.
func (r TypeRef) Kind() string {
	if r.Type == nil {
		return ""
	}
	return r.Type.Kind()
}

// UnmarshalJSON decodes either a bare name or a complex type object.
func (r *TypeRef) UnmarshalJSON(data []byte) error {
	t, err := DecodeType(data)
	if err != nil {
		return err
	}
	r.Type = t
	return nil
}

// ErrMissingField is returned when a complex type lacks a required payload.
var ErrMissingField = errors.New("missing field")

// DecodeType decodes a JSON type expression. Strings become Simple; objects
// are dispatched on their "complex_type" tag.
func DecodeType(data []byte) (Type, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode type: empty input")
	}
	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return nil, fmt.Errorf("decode type name: %w", err)
		}
		return Simple{Name: name}, nil
	case '{':
		return decodeComplex(data)
	default:
		return nil, fmt.Errorf("decode type: unexpected JSON starting with %q", data[0])
	}
}

func decodeComplex(data []byte) (Type, error) {
	var head struct {
		ComplexType string `json:"complex_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode complex type: %w", err)
	}

	switch head.ComplexType {
	case "type":
		var v struct {
			Value       TypeRef `json:"value"`
			Description string  `json:"description"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		if err := requireField(head.ComplexType, "value", v.Value); err != nil {
			return nil, err
		}
		return TypeAlias{Value: v.Value.Type, Description: v.Description}, nil

	case "builtin":
		return Builtin{}, nil

	case "union":
		var v struct {
			Options    []TypeRef `json:"options"`
			FullFormat bool      `json:"full_format"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		return Union{Options: unwrap(v.Options), FullFormat: v.FullFormat}, nil

	case "array":
		var v struct {
			Value TypeRef `json:"value"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		if err := requireField(head.ComplexType, "value", v.Value); err != nil {
			return nil, err
		}
		return Array{Value: v.Value.Type}, nil

	case "dictionary", "LuaCustomTable":
		var v struct {
			Key   TypeRef `json:"key"`
			Value TypeRef `json:"value"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		if err := requireField(head.ComplexType, "key", v.Key); err != nil {
			return nil, err
		}
		if err := requireField(head.ComplexType, "value", v.Value); err != nil {
			return nil, err
		}
		if head.ComplexType == "LuaCustomTable" {
			return CustomTable{Key: v.Key.Type, Value: v.Value.Type}, nil
		}
		return Dictionary{Key: v.Key.Type, Value: v.Value.Type}, nil

	case "function":
		var v struct {
			Parameters []TypeRef `json:"parameters"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		return Function{Parameters: unwrap(v.Parameters)}, nil

	case "literal":
		var v struct {
			Value       json.RawMessage `json:"value"`
			Description string          `json:"description"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		if len(v.Value) == 0 {
			return nil, fmt.Errorf("decode %s type: %w %q", head.ComplexType, ErrMissingField, "value")
		}
		return Literal{Value: v.Value, Description: v.Description}, nil

	case "LuaLazyLoadedValue":
		var v struct {
			Value TypeRef `json:"value"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		if err := requireField(head.ComplexType, "value", v.Value); err != nil {
			return nil, err
		}
		return LazyValue{Value: v.Value.Type}, nil

	case "LuaStruct":
		var v struct {
			Attributes []Attribute `json:"attributes"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		return LuaStruct{Attributes: v.Attributes}, nil

	case "struct":
		return Struct{}, nil

	case "table":
		var v struct {
			Parameters                  []Parameter      `json:"parameters"`
			VariantParameterGroups      []ParameterGroup `json:"variant_parameter_groups"`
			VariantParameterDescription string           `json:"variant_parameter_description"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		return Table{
			Parameters:                  v.Parameters,
			VariantParameterGroups:      v.VariantParameterGroups,
			VariantParameterDescription: v.VariantParameterDescription,
		}, nil

	case "tuple":
		var v struct {
			Values []TypeRef `json:"values"`
		}
		if err := unmarshalVariant(data, head.ComplexType, &v); err != nil {
			return nil, err
		}
		return Tuple{Values: unwrap(v.Values)}, nil

	case "":
		return nil, fmt.Errorf("decode complex type: %w %q", ErrMissingField, "complex_type")
	default:
		return nil, fmt.Errorf("decode complex type: unknown variant %q", head.ComplexType)
	}
}

func unmarshalVariant(data []byte, tag string, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s type: %w", tag, err)
	}
	return nil
}

func requireField(tag, field string, ref TypeRef) error {
	if ref.Type == nil {
		return fmt.Errorf("decode %s type: %w %q", tag, ErrMissingField, field)
	}
	return nil
}

func unwrap(refs []TypeRef) []Type {
	if refs == nil {
		return nil
	}
	out := make([]Type, len(refs))
	for i, r := range refs {
		out[i] = r.Type
	}
	return out
}
