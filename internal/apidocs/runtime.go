package apidocs

import (
	"encoding/json"
	"fmt"
)

// Member holds the fields every documented entity shares.
type Member struct {
	Name        string   `json:"name"`
	Order       int      `json:"order"`
	Description string   `json:"description"`
	Lists       []string `json:"lists,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Images      []Image  `json:"images,omitempty"`
}

// EntityName returns the member's name.
func (m Member) EntityName() string { return m.Name }

// Image is an illustration attached to a member.
type Image struct {
	Filename string `json:"filename"`
	Caption  string `json:"caption,omitempty"`
}

// RuntimeAPI is the decoded runtime-api.json document.
type RuntimeAPI struct {
	Application        string         `json:"application"`
	ApplicationVersion string         `json:"application_version"`
	APIVersion         int            `json:"api_version"`
	Stage              string         `json:"stage"`
	Classes            []Class        `json:"classes"`
	Events             []Event        `json:"events"`
	Defines            []Define       `json:"defines"`
	Concepts           []Concept      `json:"concepts"`
	GlobalObjects      []GlobalObject `json:"global_objects"`
	GlobalFunctions    []Method       `json:"global_functions"`
}

// Version returns the application version the corpus documents.
func (a *RuntimeAPI) Version() string { return a.ApplicationVersion }

// Class is a runtime class with its methods and attributes.
type Class struct {
	Member
	Methods    []Method    `json:"methods"`
	Attributes []Attribute `json:"attributes"`
	Operators  []Operator  `json:"operators"`
	Abstract   bool        `json:"abstract"`
	Parent     string      `json:"parent,omitempty"`
	Visibility []string    `json:"visibility,omitempty"`
}

// Method is a callable member of a class, or a global function.
type Method struct {
	Member
	Raises                      []EventRaised      `json:"raises,omitempty"`
	Subclasses                  []string           `json:"subclasses,omitempty"`
	Parameters                  []Parameter        `json:"parameters"`
	VariantParameterGroups      []ParameterGroup   `json:"variant_parameter_groups,omitempty"`
	VariantParameterDescription string             `json:"variant_parameter_description,omitempty"`
	VariadicParameter           *VariadicParameter `json:"variadic_parameter,omitempty"`
	Format                      MethodFormat       `json:"format"`
	ReturnValues                []ReturnValue      `json:"return_values"`
}

// VariadicParameter describes trailing variadic arguments.
type VariadicParameter struct {
	Type        TypeRef `json:"type"`
	Description string  `json:"description,omitempty"`
}

// MethodFormat controls call punctuation: table-style methods take a single
// table of named arguments.
type MethodFormat struct {
	TakesTable    bool  `json:"takes_table"`
	TableOptional *bool `json:"table_optional,omitempty"`
}

// EventRaised names an event a method or attribute may raise.
type EventRaised struct {
	Member
	Timeframe string `json:"timeframe"`
	Optional  bool   `json:"optional"`
}

// Parameter is a named, typed argument.
type Parameter struct {
	Name        string  `json:"name"`
	Order       int     `json:"order"`
	Description string  `json:"description"`
	Type        TypeRef `json:"type"`
	Optional    bool    `json:"optional"`
}

// ParameterGroup is one alternative set of extra parameters.
type ParameterGroup struct {
	Name        string      `json:"name"`
	Order       int         `json:"order"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// ReturnValue is one value returned by a method.
type ReturnValue struct {
	Order       int     `json:"order"`
	Description string  `json:"description"`
	Type        TypeRef `json:"type"`
	Optional    bool    `json:"optional"`
}

// Attribute is a readable and/or writable field of a class.
type Attribute struct {
	Member
	Visibility []string      `json:"visibility,omitempty"`
	Raises     []EventRaised `json:"raises,omitempty"`
	Subclasses []string      `json:"subclasses,omitempty"`
	Type       TypeRef       `json:"type"`
	Optional   bool          `json:"optional"`
	Read       bool          `json:"read"`
	Write      bool          `json:"write"`
}

// Operator is either a method-like or attribute-like operator. Exactly one
// field is set.
type Operator struct {
	Method    *Method
	Attribute *Attribute
}

// UnmarshalJSON picks the method form when the object has parameters.
func (o *Operator) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("decode operator: %w", err)
	}
	if _, ok := keys["parameters"]; ok {
		var m Method
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode operator method: %w", err)
		}
		o.Method = &m
		return nil
	}
	var a Attribute
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decode operator attribute: %w", err)
	}
	o.Attribute = &a
	return nil
}

// MarshalJSON writes whichever form is set.
func (o Operator) MarshalJSON() ([]byte, error) {
	switch {
	case o.Method != nil:
		return json.Marshal(o.Method)
	case o.Attribute != nil:
		return json.Marshal(o.Attribute)
	default:
		return []byte("null"), nil
	}
}

// Name returns the operator's name.
func (o Operator) Name() string {
	switch {
	case o.Method != nil:
		return o.Method.Name
	case o.Attribute != nil:
		return o.Attribute.Name
	default:
		return ""
	}
}

// Event is a runtime event with its payload fields.
type Event struct {
	Member
	Data   []Parameter `json:"data"`
	Filter string      `json:"filter,omitempty"`
}

// Define is an entry of the defines table, possibly nested.
type Define struct {
	Member
	Values  []Member `json:"values,omitempty"`
	Subkeys []Define `json:"subkeys,omitempty"`
}

// Concept is a named runtime type.
type Concept struct {
	Member
	Type TypeRef `json:"type"`
}

// GlobalObject is a global variable available to scripts.
type GlobalObject struct {
	Name        string  `json:"name"`
	Order       int     `json:"order"`
	Description string  `json:"description"`
	Type        TypeRef `json:"type"`
}

// EntityName returns the global's name.
func (g GlobalObject) EntityName() string { return g.Name }

// FindMethod looks up a method by case-insensitive name.
func (c *Class) FindMethod(name string) (Method, bool) {
	return FindByName(c.Methods, name)
}

// FindAttribute looks up an attribute by case-insensitive name.
func (c *Class) FindAttribute(name string) (Attribute, bool) {
	return FindByName(c.Attributes, name)
}

// MemberNames lists method names followed by attribute names.
func (c *Class) MemberNames() []string {
	names := make([]string, 0, len(c.Methods)+len(c.Attributes))
	for _, m := range c.Methods {
		names = append(names, m.Name)
	}
	for _, a := range c.Attributes {
		names = append(names, a.Name)
	}
	return names
}

// DecodeRuntimeAPI decodes a runtime API document.
func DecodeRuntimeAPI(data []byte) (*RuntimeAPI, error) {
	var api RuntimeAPI
	if err := json.Unmarshal(data, &api); err != nil {
		return nil, fmt.Errorf("decode runtime api: %w", err)
	}
	return &api, nil
}
