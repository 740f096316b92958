// Package schema describes kvconfig field sets declaratively.
//
// A schema maps each key to a type, an optional default and, for enums, a list of
// options. Keys are kept in file order, which becomes the encode order:
//
//	{
//	  "name":    {"type": "str", "default": "eth0"},
//	  "address": {"type": "ip", "default": "192.168.1.10/24"},
//	  "mode":    {"type": "enum", "options": ["static", "dhcp"], "default": "static"}
//	}
//
// Schemas load from JSON, JSON with comments (.jsonc) or YAML. A schema can back a
// dynamic Instance or be turned into Go source by Generate.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang-kvconfig/internal/pkg/ipv4"
	"golang-kvconfig/internal/pkg/kvconfig"

	"github.com/samber/oops"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Kind is the type of a schema field.
type Kind string

const (
	KindString Kind = "str"
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindDouble Kind = "double"
	KindIP     Kind = "ip"
	KindEnum   Kind = "enum"
)

var kinds = map[Kind]bool{
	KindString: true,
	KindBool:   true,
	KindInt:    true,
	KindFloat:  true,
	KindDouble: true,
	KindIP:     true,
	KindEnum:   true,
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Field is one entry of a schema.
type Field struct {
	Name    string
	Kind    Kind
	Default string
	Options []string
}

// Schema is an ordered list of fields.
type Schema struct {
	// Name is derived from the source file name, e.g. "net-iface" for net-iface.json.
	Name   string
	Fields []Field
}

// Load reads and validates a schema file. The extension selects the format:
// .json and .jsonc are read as JSON with comments, anything else as YAML.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	var s *Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		s, err = ParseJSON(name, data)
	default:
		s, err = ParseYAML(name, data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return s, nil
}

// ParseJSON parses a JSON schema. Comments and trailing commas are allowed.
func ParseJSON(name string, data []byte) (*Schema, error) {
	return ParseYAML(name, jsonc.ToJSON(data))
}

// ParseYAML parses a YAML schema (plain JSON is accepted as well) and validates it.
func ParseYAML(name string, data []byte) (*Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, oops.In("schema").Wrapf(err, "invalid document")
	}

	s := &Schema{Name: name}
	if root.Kind == 0 {
		return s, nil
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, oops.In("schema").With("line", doc.Line).Errorf("top level must be a mapping of field names")
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		keyNode, valueNode := doc.Content[i], doc.Content[i+1]

		f, err := parseField(keyNode, valueNode)
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, f)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// parseField reads one field definition. The mapping is walked by hand so that
// the default keeps its scalar text whatever its YAML type.
func parseField(keyNode, valueNode *yaml.Node) (Field, error) {
	f := Field{Name: keyNode.Value, Kind: KindString}
	errb := oops.In("schema").With("field", f.Name).With("line", valueNode.Line)

	if valueNode.Kind == yaml.ScalarNode && valueNode.Tag == "!!null" {
		return f, nil
	}
	if valueNode.Kind != yaml.MappingNode {
		return f, errb.Errorf("invalid field definition: %q must be a mapping", f.Name)
	}

	for i := 0; i+1 < len(valueNode.Content); i += 2 {
		attr, value := valueNode.Content[i], valueNode.Content[i+1]
		switch attr.Value {
		case "type":
			if value.Kind != yaml.ScalarNode {
				return f, errb.Errorf("invalid field definition: type must be a scalar")
			}
			if value.Value != "" {
				f.Kind = Kind(value.Value)
			}
		case "default":
			if value.Kind != yaml.ScalarNode {
				return f, errb.Errorf("default must be a scalar")
			}
			if value.Tag != "!!null" {
				f.Default = value.Value
			}
		case "options":
			if err := value.Decode(&f.Options); err != nil {
				return f, errb.Wrapf(err, "invalid field definition")
			}
		}
	}

	if f.Kind == KindEnum && f.Default == "" && len(f.Options) > 0 {
		f.Default = f.Options[0]
	}
	return f, nil
}

// Validate checks names, kinds, options and defaults.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		errb := oops.In("schema").With("field", f.Name)

		if !identifier.MatchString(f.Name) {
			return errb.Errorf("field name %q is not an identifier", f.Name)
		}
		if seen[f.Name] {
			return errb.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		if !kinds[f.Kind] {
			return errb.Errorf("field %q has unknown type %q", f.Name, f.Kind)
		}
		if f.Kind != KindEnum && len(f.Options) > 0 {
			return errb.Errorf("field %q: options are only valid for enum fields", f.Name)
		}
		if err := f.validateDefault(); err != nil {
			return errb.Wrapf(err, "field %q", f.Name)
		}
	}
	return nil
}

func (f Field) validateDefault() error {
	switch f.Kind {
	case KindBool:
		var b bool
		if f.Default != "" && !kvconfig.CastBool(f.Default, &b) {
			return fmt.Errorf("default %q is not a bool", f.Default)
		}
	case KindInt:
		var n int
		if f.Default != "" && !kvconfig.CastInt(f.Default, &n) {
			return fmt.Errorf("default %q is not an int", f.Default)
		}
	case KindFloat:
		var v float32
		if f.Default != "" && !kvconfig.CastFloat(f.Default, &v) {
			return fmt.Errorf("default %q is not a float", f.Default)
		}
	case KindDouble:
		var v float64
		if f.Default != "" && !kvconfig.CastFloat(f.Default, &v) {
			return fmt.Errorf("default %q is not a double", f.Default)
		}
	case KindIP:
		if f.Default != "" {
			if _, err := ipv4.Parse(f.Default); err != nil {
				return err
			}
		}
	case KindEnum:
		if len(f.Options) == 0 {
			return fmt.Errorf("enum needs at least one option")
		}
		known := make(map[string]bool, len(f.Options))
		for _, opt := range f.Options {
			if !identifier.MatchString(opt) {
				return fmt.Errorf("option %q is not an identifier", opt)
			}
			if known[opt] {
				return fmt.Errorf("duplicate option %q", opt)
			}
			known[opt] = true
		}
		if !known[f.Default] {
			return fmt.Errorf("default %q is not one of the options", f.Default)
		}
	}
	return nil
}

// Field returns the field called name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// optionIndex returns the position of name in the field's options.
func (f Field) optionIndex(name string) int {
	for i, opt := range f.Options {
		if opt == name {
			return i
		}
	}
	return 0
}
