package kvconfig

import (
	"fmt"
	"iter"
	"strings"

	"golang-kvconfig/internal/pkg/ipv4"
)

// Field is one named, typed slot of a Table. Build it with String, Bool, Int,
// Float, Enum or IPv4.
type Field struct {
	name   string
	parse  func(value string) bool
	format func() string
	reset  func()
}

// Name returns the key the field is encoded under.
func (f Field) Name() string {
	return f.name
}

// Table is a FieldSet over an ordered list of fields bound to caller-owned storage.
type Table struct {
	fields []Field
	index  map[string]int
	set    []bool
}

var _ FieldSet = (*Table)(nil)

// NewTable builds a Table. Fields are encoded in the order given. It panics on an
// empty, duplicate or unencodable field name.
func NewTable(fields ...Field) *Table {
	t := &Table{
		fields: fields,
		index:  make(map[string]int, len(fields)),
		set:    make([]bool, len(fields)),
	}
	for i, f := range fields {
		if f.name == "" || strings.ContainsAny(f.name, "="+cutset) {
			panic(fmt.Sprintf("kvconfig: invalid field name %q", f.name))
		}
		if _, dup := t.index[f.name]; dup {
			panic(fmt.Sprintf("kvconfig: duplicate field name %q", f.name))
		}
		t.index[f.name] = i
	}
	return t
}

// Apply implements FieldSet.
func (t *Table) Apply(key, value string) bool {
	i, ok := t.index[key]
	if !ok {
		return false
	}
	if !t.fields[i].parse(value) {
		return false
	}
	t.set[i] = true
	return true
}

// Fields implements FieldSet.
func (t *Table) Fields() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, f := range t.fields {
			if !yield(f.name, f.format()) {
				return
			}
		}
	}
}

// Clear implements FieldSet. Stored values stay in place until SetDefaults.
func (t *Table) Clear() {
	clear(t.set)
}

// SetDefaults implements FieldSet.
func (t *Table) SetDefaults() {
	for i, f := range t.fields {
		if !t.set[i] {
			f.reset()
		}
	}
}

// IsSet reports whether name was assigned since the last Clear.
func (t *Table) IsSet(name string) bool {
	i, ok := t.index[name]
	return ok && t.set[i]
}

// Names returns the field names in encode order.
func (t *Table) Names() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.name
	}
	return names
}

// Len returns the number of fields.
func (t *Table) Len() int {
	return len(t.fields)
}

// String binds a string field. Any non-empty value is accepted verbatim.
func String(name string, p *string, def string) Field {
	return Field{
		name:   name,
		parse:  func(v string) bool { *p = v; return true },
		format: func() string { return *p },
		reset:  func() { *p = def },
	}
}

// Bool binds a boolean field.
func Bool(name string, p *bool, def bool) Field {
	return Field{
		name:  name,
		parse: func(v string) bool { return CastBool(v, p) },
		format: func() string {
			if *p {
				return "true"
			}
			return "false"
		},
		reset: func() { *p = def },
	}
}

// Int binds an integer field.
func Int[T Integer](name string, p *T, def T) Field {
	return Field{
		name:   name,
		parse:  func(v string) bool { return CastInt(v, p) },
		format: func() string { return formatInt(*p) },
		reset:  func() { *p = def },
	}
}

// Float binds a floating point field. Values are encoded in their shortest
// round-trip form.
func Float[T Floating](name string, p *T, def T) Field {
	return Field{
		name:   name,
		parse:  func(v string) bool { return CastFloat(v, p) },
		format: func() string { return formatFloat(*p) },
		reset:  func() { *p = def },
	}
}

// Enum binds an enumerated field backed by an integer. When options are given,
// the value must be an option index or an option name; it is always encoded as the index.
func Enum[T Integer](name string, p *T, def T, options ...string) Field {
	return Field{
		name: name,
		parse: func(v string) bool {
			var n T
			if !CastInt(v, &n) {
				for i, opt := range options {
					if opt == v {
						*p = T(i)
						return true
					}
				}
				return false
			}
			if len(options) > 0 && (n < 0 || uint64(n) >= uint64(len(options))) {
				return false
			}
			*p = n
			return true
		},
		format: func() string { return formatInt(*p) },
		reset:  func() { *p = def },
	}
}

// IPv4 binds an address field. Values that do not parse as an address are rejected;
// def may be empty, which leaves the field as the invalid zero Address.
func IPv4(name string, p *ipv4.Address, def string) Field {
	return Field{
		name: name,
		parse: func(v string) bool {
			a := ipv4.FromString(v)
			if !a.Valid() {
				return false
			}
			*p = a
			return true
		},
		format: func() string { return p.String() },
		reset:  func() { *p = ipv4.FromString(def) },
	}
}
