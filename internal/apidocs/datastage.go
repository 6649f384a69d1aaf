package apidocs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DataAPI is the decoded prototype-api.json document.
type DataAPI struct {
	Application        string      `json:"application"`
	Stage              string      `json:"stage"`
	ApplicationVersion string      `json:"application_version"`
	APIVersion         int         `json:"api_version"`
	Prototypes         []Prototype `json:"prototypes"`
	Types              []DataType  `json:"types"`
}

// Version returns the application version the corpus documents.
func (a *DataAPI) Version() string { return a.ApplicationVersion }

// HasPrototype reports whether a prototype with exactly this name exists.
func (a *DataAPI) HasPrototype(name string) bool {
	for i := range a.Prototypes {
		if a.Prototypes[i].Name == name {
			return true
		}
	}
	return false
}

// HasType reports whether a type with exactly this name exists.
func (a *DataAPI) HasType(name string) bool {
	for i := range a.Types {
		if a.Types[i].Name == name {
			return true
		}
	}
	return false
}

// Prototype is a data-stage prototype definition.
type Prototype struct {
	Member
	Visibility       []string          `json:"visibility,omitempty"`
	Parent           string            `json:"parent,omitempty"`
	Abstract         bool              `json:"abstract"`
	Typename         string            `json:"typename,omitempty"`
	InstanceLimit    *int              `json:"instance_limit,omitempty"`
	Deprecated       bool              `json:"deprecated"`
	Properties       []Property        `json:"properties"`
	CustomProperties *CustomProperties `json:"custom_properties,omitempty"`
}

// FindProperty looks up a property by case-insensitive name.
func (p *Prototype) FindProperty(name string) (Property, bool) {
	return FindByName(p.Properties, name)
}

// DataType is a data-stage type definition. Properties is nil for types
// that are not structs.
type DataType struct {
	Member
	Parent     string     `json:"parent,omitempty"`
	Abstract   bool       `json:"abstract"`
	Inline     bool       `json:"inline"`
	Type       TypeRef    `json:"type"`
	Properties []Property `json:"properties,omitempty"`
}

// FindProperty looks up a property by case-insensitive name. hasProperties
// is false when the type has no property list at all.
func (t *DataType) FindProperty(name string) (prop Property, found bool, hasProperties bool) {
	if t.Properties == nil {
		return Property{}, false, false
	}
	prop, found = FindByName(t.Properties, name)
	return prop, found, true
}

// Property is a field of a prototype or struct type.
type Property struct {
	Member
	AltName  string           `json:"alt_name,omitempty"`
	Override bool             `json:"override"`
	Type     TypeRef          `json:"type"`
	Optional bool             `json:"optional"`
	Default  *PropertyDefault `json:"default,omitempty"`
}

// PropertyDefault is either a plain description string or a literal type.
type PropertyDefault struct {
	Text string
	Type Type
}

// UnmarshalJSON accepts a string or a complex type object.
func (d *PropertyDefault) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &d.Text)
	}
	t, err := decodeComplex(data)
	if err != nil {
		return fmt.Errorf("decode property default: %w", err)
	}
	d.Type = t
	return nil
}

// String renders the default for display.
func (d PropertyDefault) String() string {
	if d.Type != nil {
		return Render(d.Type)
	}
	return d.Text
}

// CustomProperties documents arbitrary extra keys a prototype accepts.
type CustomProperties struct {
	Description string   `json:"description"`
	Lists       []string `json:"lists,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Images      []Image  `json:"images,omitempty"`
	KeyType     TypeRef  `json:"key_type"`
	ValueType   TypeRef  `json:"value_type"`
}

// DecodeDataAPI decodes a data-stage API document.
func DecodeDataAPI(data []byte) (*DataAPI, error) {
	var api DataAPI
	if err := json.Unmarshal(data, &api); err != nil {
		return nil, fmt.Errorf("decode data api: %w", err)
	}
	return &api, nil
}
