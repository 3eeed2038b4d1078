/*
   Copyright 2024 mergekv authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package keydef describes the composite key a merge run compares tuples
// by: an ordered, non-empty list of key parts, each naming a field index,
// a type, nullability, and an optional collation.
package keydef

import "fmt"

// FieldType is the closed set of field types a key part may name.
type FieldType uint8

const (
	FieldInteger FieldType = iota
	FieldUnsigned
	FieldDouble
	FieldString
	FieldBoolean
	FieldBinary
	FieldArray
	FieldMap
	FieldNil
	FieldAny
)

var fieldTypeNames = [...]string{
	FieldInteger:  "integer",
	FieldUnsigned: "unsigned",
	FieldDouble:   "double",
	FieldString:   "string",
	FieldBoolean:  "boolean",
	FieldBinary:   "binary",
	FieldArray:    "array",
	FieldMap:      "map",
	FieldNil:      "nil",
	FieldAny:      "any",
}

func (t FieldType) String() string {
	if int(t) < len(fieldTypeNames) {
		return fieldTypeNames[t]
	}
	return "unknown"
}

// fieldTypeByName mirrors the original's field_type_by_name lookup: an
// unrecognised name is a construction-time error, never a runtime one.
func fieldTypeByName(name string) (FieldType, bool) {
	for i, n := range fieldTypeNames {
		if n == name {
			return FieldType(i), true
		}
	}
	return 0, false
}

// KeyPart describes one part of a composite key: a zero-based field
// index, a type, whether nil is an acceptable value for this field, and
// an optional collation name ("" means the default byte-wise collation).
type KeyPart struct {
	FieldIndex int
	Type       FieldType
	Nullable   bool
	Collation  string
}

// KeyDef is an ordered, non-empty sequence of key parts. It is immutable
// once constructed.
type KeyDef struct {
	parts      []KeyPart
	collations []CompareFunc
}

// New validates parts and constructs a KeyDef. parts must be non-empty;
// each FieldIndex must be >= 0; each Type must be one of the recognised
// FieldType constants (a value past FieldAny is ErrInvalidKeyPart). A
// caller building parts from type names uses NewFromNames instead, so
// unknown names also surface as ErrInvalidKeyPart.
func New(parts []KeyPart) (*KeyDef, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("keydef: %w: empty key part list", ErrInvalidKeyPart)
	}
	collations := make([]CompareFunc, len(parts))
	for i, p := range parts {
		if p.FieldIndex < 0 {
			return nil, fmt.Errorf("keydef: %w: part %d: negative field index %d", ErrInvalidKeyPart, i, p.FieldIndex)
		}
		if p.Type > FieldAny {
			return nil, fmt.Errorf("keydef: %w: part %d: unrecognised field type %d", ErrInvalidKeyPart, i, p.Type)
		}
		name := p.Collation
		if name == "" {
			name = "binary"
		}
		cmp, ok := lookupCollation(name)
		if !ok {
			return nil, fmt.Errorf("keydef: %w: part %d: unknown collation %q", ErrInvalidKeyPart, i, name)
		}
		collations[i] = cmp
	}
	cp := make([]KeyPart, len(parts))
	copy(cp, parts)
	return &KeyDef{parts: cp, collations: collations}, nil
}

// NewFromNames builds a KeyDef from string type names, the same surface
// the original Lua `new({{fieldno=.., type=.., is_nullable=..}, ...})`
// exposes. An unknown type name is ErrInvalidKeyPart, matching
// field_type_by_name's failure mode.
func NewFromNames(parts []RawKeyPart) (*KeyDef, error) {
	built := make([]KeyPart, len(parts))
	for i, p := range parts {
		ft, ok := fieldTypeByName(p.Type)
		if !ok {
			return nil, fmt.Errorf("keydef: %w: part %d: unknown field type %q", ErrInvalidKeyPart, i, p.Type)
		}
		built[i] = KeyPart{
			FieldIndex: p.FieldIndex,
			Type:       ft,
			Nullable:   p.Nullable,
			Collation:  p.Collation,
		}
	}
	return New(built)
}

// RawKeyPart is the string-typed key part descriptor accepted by
// NewFromNames, mirroring the host-language-facing shape from §4.1.
type RawKeyPart struct {
	FieldIndex int
	Type       string
	Nullable   bool
	Collation  string
}

// Parts returns the key definition's parts in order. The returned slice
// must not be mutated.
func (kd *KeyDef) Parts() []KeyPart { return kd.parts }

// Len returns the number of key parts.
func (kd *KeyDef) Len() int { return len(kd.parts) }
