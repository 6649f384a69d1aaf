package apidocs

import (
	"bytes"
	"encoding/json"
	"strings"
)

// dictionaryArrow separates key and value in rendered dictionaries.
const dictionaryArrow = "🡪"

// Render turns a Type into its one-line form. Structured variants that carry
// parameter lists (tables, tuples, structs) collapse to a fixed token.
func Render(t Type) string {
	var b strings.Builder
	writeType(&b, t)
	return b.String()
}

func writeType(b *strings.Builder, t Type) {
	switch v := t.(type) {
	case nil:
	case TypeRef:
		writeType(b, v.Type)
	case Simple:
		b.WriteString(v.Name)
	case TypeAlias:
		writeType(b, v.Value)
	case Builtin:
		b.WriteString("builtin")
	case Union:
		writeJoined(b, v.Options, " or ")
	case Array:
		b.WriteString("array[")
		writeType(b, v.Value)
		b.WriteString("]")
	case Dictionary:
		writeDictionary(b, v.Key, v.Value)
	case CustomTable:
		writeDictionary(b, v.Key, v.Value)
	case Function:
		b.WriteString("function(")
		writeJoined(b, v.Parameters, ", ")
		b.WriteString(")")
	case Literal:
		b.WriteString(renderLiteral(v.Value))
	case LazyValue:
		b.WriteString("LuaLazyLoadedValue(")
		writeType(b, v.Value)
		b.WriteString(")")
	case LuaStruct:
		b.WriteString("LuaStruct")
	case Struct:
		b.WriteString("struct")
	case Table:
		b.WriteString("table")
	case Tuple:
		b.WriteString("tuple")
	}
}

func writeJoined(b *strings.Builder, types []Type, sep string) {
	for i, t := range types {
		if i > 0 {
			b.WriteString(sep)
		}
		writeType(b, t)
	}
}

func writeDictionary(b *strings.Builder, key, value Type) {
	b.WriteString("dictionary[")
	writeType(b, key)
	b.WriteString(" " + dictionaryArrow + " ")
	writeType(b, value)
	b.WriteString("]")
}

// renderLiteral quotes strings and prints bools and numbers in their JSON
// form. Objects, arrays and null render empty.
func renderLiteral(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return `"` + s + `"`
	case c == 't' || c == 'f':
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return ""
		}
		if v {
			return "true"
		}
		return "false"
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	default:
		return ""
	}
}
