// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Properties, the immutable set of global build properties
// a project is evaluated with.
//
// Why immutable?
//
// A single loader instance serves many load calls, and a solution load needs a
// solution-relative `SolutionDir` property that a plain project load must not
// see. Deriving a fresh value per load, instead of mutating a shared dictionary,
// means concurrent loads can never observe each other's properties.
package model

import (
	"maps"
	"slices"
	"strings"
)

// SolutionDirProperty is the property computed for every solution load.
const SolutionDirProperty = "SolutionDir"

// ConfigurationProperty selects the build configuration of a project.
const ConfigurationProperty = "Configuration"

type property struct {
	name  string
	value string
}

// Properties maps property names (case-insensitive) to string values.
// The zero value is an empty, usable set.
type Properties struct {
	entries map[string]property
}

// NewProperties builds a Properties value from a plain map. When two keys
// differ only in case, the one that sorts last wins.
func NewProperties(m map[string]string) Properties {
	p := Properties{entries: make(map[string]property, len(m))}
	for _, name := range slices.Sorted(maps.Keys(m)) {
		p.entries[strings.ToLower(name)] = property{name: name, value: m[name]}
	}
	return p
}

// Get returns the value of the named property.
func (p Properties) Get(name string) (string, bool) {
	e, ok := p.entries[strings.ToLower(name)]
	return e.value, ok
}

// Len returns the number of properties.
func (p Properties) Len() int {
	return len(p.entries)
}

// With returns a copy of p with name set to value.
func (p Properties) With(name, value string) Properties {
	out := Properties{entries: make(map[string]property, len(p.entries)+1)}
	maps.Copy(out.entries, p.entries)
	out.entries[strings.ToLower(name)] = property{name: name, value: value}
	return out
}

// Merge returns a copy of p overlaid with every property of other.
func (p Properties) Merge(other Properties) Properties {
	if other.Len() == 0 {
		return p
	}
	out := Properties{entries: make(map[string]property, len(p.entries)+len(other.entries))}
	maps.Copy(out.entries, p.entries)
	maps.Copy(out.entries, other.entries)
	return out
}

// Names returns the property names in their original spelling, sorted
// case-insensitively.
func (p Properties) Names() []string {
	keys := slices.Sorted(maps.Keys(p.entries))
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, p.entries[k].name)
	}
	return names
}

// Map returns a plain copy of the properties keyed by their original spelling.
func (p Properties) Map() map[string]string {
	m := make(map[string]string, len(p.entries))
	for _, e := range p.entries {
		m[e.name] = e.value
	}
	return m
}

// Equal reports whether both sets hold the same names (case-insensitive) and values.
func (p Properties) Equal(other Properties) bool {
	if len(p.entries) != len(other.entries) {
		return false
	}
	for k, e := range p.entries {
		o, ok := other.entries[k]
		if !ok || o.value != e.value {
			return false
		}
	}
	return true
}
