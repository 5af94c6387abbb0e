// Package schema turns layout content types into JSON Schema documents and
// validates slide content against them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	googleschema "github.com/google/jsonschema-go/jsonschema"
	"github.com/invopop/jsonschema"

	"slidedeck/internal/pkg/errors"
)

const opConvert = "schema.convert"

var reflector = &jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// Convert reflects t into a draft 2020-12 JSON Schema with every default
// removed. The result is checked to be resolvable before it is returned.
// Failures carry errors.CodeConversion.
func Convert(t reflect.Type) (raw json.RawMessage, err error) {
	if t == nil {
		return nil, errors.New(errors.CodeConversion, "nil type").WithOp(opConvert)
	}

	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, errors.Newf(errors.CodeConversion, "reflect %s: %v", t, r).WithOp(opConvert)
		}
	}()

	s := reflector.ReflectFromType(t)
	StripDefaults(s)

	raw, err = json.Marshal(s)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeConversion, opConvert, "marshal schema for "+t.String())
	}
	raw = UnescapeHTML(raw)
	if _, err := Compile(raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeConversion, opConvert, "unresolvable schema for "+t.String())
	}
	return raw, nil
}

// StripDefaults removes the default keyword from s and every subschema.
// Properties that happen to be named "default" are left alone.
func StripDefaults(s *jsonschema.Schema) {
	if s == nil {
		return
	}

	// Only write when there is something to remove: boolean schemas such as
	// jsonschema.FalseSchema are shared package values.
	if s.Default != nil {
		s.Default = nil
	}
	if _, ok := s.Extras["default"]; ok {
		delete(s.Extras, "default")
	}

	for _, sub := range s.Definitions {
		StripDefaults(sub)
	}
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			StripDefaults(pair.Value)
		}
	}
	for _, sub := range s.PatternProperties {
		StripDefaults(sub)
	}
	for _, sub := range s.DependentSchemas {
		StripDefaults(sub)
	}
	for _, list := range [][]*jsonschema.Schema{s.AllOf, s.AnyOf, s.OneOf, s.PrefixItems} {
		for _, sub := range list {
			StripDefaults(sub)
		}
	}
	for _, sub := range []*jsonschema.Schema{
		s.Not, s.If, s.Then, s.Else,
		s.Items, s.Contains,
		s.AdditionalProperties, s.PropertyNames,
		s.ContentSchema,
	} {
		StripDefaults(sub)
	}
}

var htmlEscapes = map[string]string{
	`\u003c`: "<",
	`\u003e`: ">",
	`\u0026`: "&",
	`\u2028`: "\u2028",
	`\u2029`: "\u2029",
}

// UnescapeHTML rewrites the escapes json.Marshal applies to <, >, &, U+2028
// and U+2029 back to the literal characters. Escaped backslashes are
// consumed in pairs, so `\\u003c` is left as it is.
func UnescapeHTML(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if i+6 <= len(data) {
			if lit, ok := htmlEscapes[string(data[i:i+6])]; ok {
				out = append(out, lit...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// Validator checks instances against a compiled schema.
type Validator struct {
	resolved *googleschema.Resolved
}

// Compile parses and resolves a JSON Schema document.
func Compile(raw json.RawMessage) (*Validator, error) {
	var s googleschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	resolved, err := s.Resolve(&googleschema.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return &Validator{resolved: resolved}, nil
}

// Validate reports the first way instance violates the schema. Instances
// are expected in the shape encoding/json produces for an `any`.
func (v *Validator) Validate(instance any) error {
	return v.resolved.Validate(instance)
}
