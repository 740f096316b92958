package schema

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"
	"text/template"

	"golang-kvconfig/internal/pkg/kvconfig"

	"github.com/samber/oops"
)

// DefaultModule is the module that provides the kvconfig and ipv4 packages.
const DefaultModule = "golang-kvconfig"

// reserved are identifiers that would shadow the methods promoted from *kvconfig.Table.
var reserved = map[string]bool{
	"Table":       true,
	"Apply":       true,
	"Fields":      true,
	"Clear":       true,
	"SetDefaults": true,
	"IsSet":       true,
	"Names":       true,
	"Len":         true,
}

// GenerateOptions controls Generate.
type GenerateOptions struct {
	Package string // package clause of the generated file
	Type    string // struct name; defaults to the camel-cased schema name + "Config"
	Source  string // recorded in the header comment
	Module  string // module path providing internal/pkg/kvconfig; defaults to DefaultModule
}

type genField struct {
	Key     string
	Ident   string
	GoType  string
	Ctor    string
	Default string
	Enum    *genEnum
}

type genEnum struct {
	Key    string
	Type   string
	Names  string
	Consts []string
	Opts   []string
}

type genData struct {
	Package string
	Type    string
	Source  string
	Module  string
	HasIP   bool
	HasEnum bool
	Fields  []genField
}

var genTemplate = template.Must(template.New("fieldset").Parse(`// Code generated by kvconf gen{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.

package {{.Package}}

import (
{{- if .HasEnum}}
	"strconv"
{{end}}
{{- if .HasIP}}
	"{{.Module}}/internal/pkg/ipv4"
{{- end}}
	"{{.Module}}/internal/pkg/kvconfig"
)

// {{.Type}} is a key=value field set.
type {{.Type}} struct {
{{- range .Fields}}
	{{.Ident}} {{.GoType}}
{{- end}}

	*kvconfig.Table
}

// New{{.Type}} returns a {{.Type}} with every field at its default.
func New{{.Type}}() *{{.Type}} {
	c := &{{.Type}}{}
	c.Table = kvconfig.NewTable(
{{- range .Fields}}
		kvconfig.{{.Ctor}}("{{.Key}}", &c.{{.Ident}}, {{.Default}}{{if .Enum}}, {{.Enum.Names}}...{{end}}),
{{- end}}
	)
	c.SetDefaults()
	return c
}
`))

// enumTemplate renders the type, constants, option names and String method of one enum.
var enumTemplate = template.Must(template.New("enum").Parse(`
// {{.Type}} enumerates the options of the {{.Key}} field.
type {{.Type}} int

const (
{{- range $i, $c := .Consts}}
	{{$c}}{{if eq $i 0}} {{$.Type}} = iota{{end}}
{{- end}}
)

var {{.Names}} = []string{ {{- range $i, $o := .Opts}}{{if $i}}, {{end}}{{printf "%q" $o}}{{end -}} }

// String returns the option name.
func (v {{.Type}}) String() string {
	if v >= 0 && int(v) < len({{.Names}}) {
		return {{.Names}}[v]
	}
	return "{{.Type}}(" + strconv.Itoa(int(v)) + ")"
}
`))

// Generate renders s as Go source: a struct with one exported field per schema
// field that embeds *kvconfig.Table, plus a typed constant set for every enum.
func Generate(s *Schema, opts GenerateOptions) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	data := genData{
		Package: opts.Package,
		Type:    opts.Type,
		Source:  opts.Source,
		Module:  opts.Module,
	}
	if data.Package == "" {
		data.Package = "config"
	}
	if data.Type == "" {
		data.Type = camel(s.Name) + "Config"
	}
	if data.Module == "" {
		data.Module = DefaultModule
	}
	if !token.IsIdentifier(data.Package) || !token.IsIdentifier(data.Type) || !token.IsExported(data.Type) {
		return nil, oops.In("schema").With("package", data.Package).With("type", data.Type).
			Errorf("package and type must be identifiers and the type must be exported")
	}

	idents := make(map[string]string)
	declared := map[string]string{data.Type: "type " + data.Type}
	for _, f := range s.Fields {
		gf, err := buildField(data.Type, f)
		if err != nil {
			return nil, err
		}
		if reserved[gf.Ident] {
			return nil, oops.In("schema").With("field", f.Name).Errorf("field %q maps to reserved identifier %s", f.Name, gf.Ident)
		}
		if other, dup := idents[gf.Ident]; dup {
			return nil, oops.In("schema").With("field", f.Name).Errorf("fields %q and %q both map to %s", other, f.Name, gf.Ident)
		}
		idents[gf.Ident] = f.Name
		if gf.Enum != nil {
			for _, name := range append([]string{gf.Enum.Type, gf.Enum.Names}, gf.Enum.Consts...) {
				if other, dup := declared[name]; dup {
					return nil, oops.In("schema").With("field", f.Name).Errorf("field %q declares %s, already declared by %s", f.Name, name, other)
				}
				declared[name] = fmt.Sprintf("field %q", f.Name)
			}
		}

		data.HasIP = data.HasIP || f.Kind == KindIP
		data.HasEnum = data.HasEnum || f.Kind == KindEnum
		data.Fields = append(data.Fields, gf)
	}

	var buf bytes.Buffer
	if err := genTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render field set: %w", err)
	}
	for _, f := range data.Fields {
		if f.Enum == nil {
			continue
		}
		if err := enumTemplate.Execute(&buf, f.Enum); err != nil {
			return nil, fmt.Errorf("failed to render enum %s: %w", f.Enum.Type, err)
		}
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated source: %w", err)
	}
	return src, nil
}

func buildField(typeName string, f Field) (genField, error) {
	gf := genField{Key: f.Name, Ident: camel(f.Name)}

	switch f.Kind {
	case KindString:
		gf.GoType, gf.Ctor, gf.Default = "string", "String", strconv.Quote(f.Default)
	case KindBool:
		var b bool
		kvconfig.CastBool(f.Default, &b)
		gf.GoType, gf.Ctor, gf.Default = "bool", "Bool", strconv.FormatBool(b)
	case KindInt:
		var n int
		kvconfig.CastInt(f.Default, &n)
		gf.GoType, gf.Ctor, gf.Default = "int", "Int", strconv.Itoa(n)
	case KindFloat:
		var v float32
		kvconfig.CastFloat(f.Default, &v)
		gf.GoType, gf.Ctor, gf.Default = "float32", "Float", strconv.FormatFloat(float64(v), 'g', -1, 32)
	case KindDouble:
		var v float64
		kvconfig.CastFloat(f.Default, &v)
		gf.GoType, gf.Ctor, gf.Default = "float64", "Float", strconv.FormatFloat(v, 'g', -1, 64)
	case KindIP:
		gf.GoType, gf.Ctor, gf.Default = "ipv4.Address", "IPv4", strconv.Quote(f.Default)
	case KindEnum:
		enumType := typeName + gf.Ident
		e := &genEnum{
			Key:   f.Name,
			Type:  enumType,
			Names: lowerFirst(enumType) + "Names",
			Opts:  f.Options,
		}
		consts := make(map[string]string, len(f.Options))
		for _, opt := range f.Options {
			c := enumType + camel(opt)
			if other, dup := consts[c]; dup {
				return gf, oops.In("schema").With("field", f.Name).Errorf("options %q and %q of field %q both map to %s", other, opt, f.Name, c)
			}
			consts[c] = opt
			e.Consts = append(e.Consts, c)
		}
		gf.GoType, gf.Ctor, gf.Default, gf.Enum = enumType, "Enum", e.Consts[f.optionIndex(f.Default)], e
	default:
		return gf, oops.In("schema").With("field", f.Name).Errorf("unknown type %q", f.Kind)
	}
	return gf, nil
}

// camel turns snake_case into CamelCase: "ip_cfg" becomes "IpCfg".
func camel(s string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == '.' }) {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return "X"
	}
	out := b.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "X" + out
	}
	return out
}

func lowerFirst(s string) string {
	return strings.ToLower(s[:1]) + s[1:]
}
