package schema

import (
	"golang-kvconfig/internal/pkg/ipv4"
	"golang-kvconfig/internal/pkg/kvconfig"

	"gopkg.in/yaml.v3"
)

// slot holds the value of one field; only the member matching the field kind is used.
type slot struct {
	str  string
	b    bool
	i    int
	f32  float32
	f64  float64
	addr ipv4.Address
}

// Instance is a field set built at runtime from a Schema.
type Instance struct {
	schema *Schema
	slots  []slot
	*kvconfig.Table
}

// NewInstance returns an Instance of s with every field at its default.
func (s *Schema) NewInstance() *Instance {
	in := &Instance{
		schema: s,
		slots:  make([]slot, len(s.Fields)),
	}

	fields := make([]kvconfig.Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = in.bind(f, &in.slots[i])
	}
	in.Table = kvconfig.NewTable(fields...)
	in.SetDefaults()
	return in
}

func (in *Instance) bind(f Field, sl *slot) kvconfig.Field {
	switch f.Kind {
	case KindBool:
		var def bool
		kvconfig.CastBool(f.Default, &def)
		return kvconfig.Bool(f.Name, &sl.b, def)
	case KindInt:
		var def int
		kvconfig.CastInt(f.Default, &def)
		return kvconfig.Int(f.Name, &sl.i, def)
	case KindFloat:
		var def float32
		kvconfig.CastFloat(f.Default, &def)
		return kvconfig.Float(f.Name, &sl.f32, def)
	case KindDouble:
		var def float64
		kvconfig.CastFloat(f.Default, &def)
		return kvconfig.Float(f.Name, &sl.f64, def)
	case KindIP:
		return kvconfig.IPv4(f.Name, &sl.addr, f.Default)
	case KindEnum:
		return kvconfig.Enum(f.Name, &sl.i, f.optionIndex(f.Default), f.Options...)
	default:
		return kvconfig.String(f.Name, &sl.str, f.Default)
	}
}

// Schema returns the schema the instance was built from.
func (in *Instance) Schema() *Schema {
	return in.schema
}

// Get returns the current value of name: string, bool, int, float32, float64,
// ipv4.Address, or for enums the option name.
func (in *Instance) Get(name string) (any, bool) {
	for i, f := range in.schema.Fields {
		if f.Name != name {
			continue
		}
		sl := in.slots[i]
		switch f.Kind {
		case KindBool:
			return sl.b, true
		case KindInt:
			return sl.i, true
		case KindFloat:
			return sl.f32, true
		case KindDouble:
			return sl.f64, true
		case KindIP:
			return sl.addr, true
		case KindEnum:
			if sl.i >= 0 && sl.i < len(f.Options) {
				return f.Options[sl.i], true
			}
			return sl.i, true
		default:
			return sl.str, true
		}
	}
	return nil, false
}

// MarshalYAML renders the instance as a mapping in schema order, with typed scalars.
func (in *Instance) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range in.schema.Fields {
		v, _ := in.Get(f.Name)
		val := &yaml.Node{}
		if err := val.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}, val)
	}
	return node, nil
}
