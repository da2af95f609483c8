package ir

import (
	"fmt"
	"strings"
)

// SymbolType is the type of a Symbol.
//
// The set of variants is closed: ScalarType, VectorType, MatrixType,
// *StructType, ArrayType, PointerType, *FunctionType and PatchType.
// Struct and function types are reference types because they carry slices;
// use Equal to compare two SymbolTypes structurally.
type SymbolType interface {
	symbolType()
	String() string
}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarVoid  ScalarKind = iota // No value
	ScalarBool                    // Boolean
	ScalarSint                    // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarFloat                   // Floating point
)

// ScalarType represents scalar types, including void.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bytes
}

func (ScalarType) symbolType() {}

// Common scalar types.
var (
	Void  = ScalarType{Kind: ScalarVoid}
	Bool  = ScalarType{Kind: ScalarBool, Width: 1}
	Int   = ScalarType{Kind: ScalarSint, Width: 4}
	UInt  = ScalarType{Kind: ScalarUint, Width: 4}
	Float = ScalarType{Kind: ScalarFloat, Width: 4}
)

func (s ScalarType) String() string {
	switch s.Kind {
	case ScalarVoid:
		return "void"
	case ScalarBool:
		return "bool"
	case ScalarSint:
		if s.Width == 4 {
			return "int"
		}
		return fmt.Sprintf("int%d", s.Width*8)
	case ScalarUint:
		if s.Width == 4 {
			return "uint"
		}
		return fmt.Sprintf("uint%d", s.Width*8)
	case ScalarFloat:
		switch s.Width {
		case 2:
			return "half"
		case 8:
			return "double"
		}
		return "float"
	}
	return "unknown"
}

// IsNumeric reports whether the scalar is an integer or a float.
func (s ScalarType) IsNumeric() bool {
	return s.Kind == ScalarSint || s.Kind == ScalarUint || s.Kind == ScalarFloat
}

// VectorType represents vector types.
type VectorType struct {
	Scalar ScalarType
	Size   uint32
}

func (VectorType) symbolType() {}

func (v VectorType) String() string {
	return fmt.Sprintf("%s%d", v.Scalar, v.Size)
}

// MatrixType represents column-major matrix types.
type MatrixType struct {
	Scalar  ScalarType
	Rows    uint32
	Columns uint32
}

func (MatrixType) symbolType() {}

func (m MatrixType) String() string {
	return fmt.Sprintf("%s%dx%d", m.Scalar, m.Rows, m.Columns)
}

// ColumnType returns the vector type of one matrix column.
func (m MatrixType) ColumnType() VectorType {
	return VectorType{Scalar: m.Scalar, Size: m.Rows}
}

// ArrayType represents fixed-size arrays.
type ArrayType struct {
	Base SymbolType
	Size uint32
}

func (ArrayType) symbolType() {}

func (a ArrayType) String() string {
	return fmt.Sprintf("%s[%d]", a.Base, a.Size)
}

// StructField is a named member of a StructType.
type StructField struct {
	Name string
	Type SymbolType
}

// StructType represents a named struct. Two struct types with the same name
// and the same fields are the same type.
type StructType struct {
	Name   string
	Fields []StructField
}

func (*StructType) symbolType() {}

func (s *StructType) String() string {
	return s.Name
}

// FieldIndex returns the index of the named field, or -1.
func (s *StructType) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// AddressSpace represents memory address spaces.
type AddressSpace uint8

const (
	SpaceFunction AddressSpace = iota
	SpacePrivate
	SpaceInput
	SpaceOutput
	SpaceWorkGroup
	SpaceUniform
	SpaceUniformConstant
	SpaceStorage
	SpacePushConstant
)

var spaceNames = [...]string{
	SpaceFunction:        "function",
	SpacePrivate:         "private",
	SpaceInput:           "input",
	SpaceOutput:          "output",
	SpaceWorkGroup:       "workgroup",
	SpaceUniform:         "uniform",
	SpaceUniformConstant: "uniform_constant",
	SpaceStorage:         "storage",
	SpacePushConstant:    "push_constant",
}

func (s AddressSpace) String() string {
	if int(s) < len(spaceNames) {
		return spaceNames[s]
	}
	return fmt.Sprintf("space(%d)", s)
}

// ParseAddressSpace converts the lower-case name of an address space.
func ParseAddressSpace(s string) (AddressSpace, bool) {
	for space, name := range spaceNames {
		if name == s {
			return AddressSpace(space), true
		}
	}
	return SpaceFunction, false
}

// PointerType represents pointer types.
type PointerType struct {
	Base  SymbolType
	Space AddressSpace
}

func (PointerType) symbolType() {}

func (p PointerType) String() string {
	return fmt.Sprintf("*%s %s", p.Space, p.Base)
}

// ParameterModifier qualifies a function parameter.
// The primitive modifiers only occur on the first parameter of a geometry
// shader and select its input topology.
type ParameterModifier uint8

const (
	ModifierNone ParameterModifier = iota
	ModifierIn
	ModifierOut
	ModifierInOut
	ModifierPoint
	ModifierLine
	ModifierLineAdjacency
	ModifierTriangle
	ModifierTriangleAdjacency
)

var modifierNames = [...]string{
	ModifierNone:              "",
	ModifierIn:                "in",
	ModifierOut:               "out",
	ModifierInOut:             "inout",
	ModifierPoint:             "point",
	ModifierLine:              "line",
	ModifierLineAdjacency:     "lineadj",
	ModifierTriangle:          "triangle",
	ModifierTriangleAdjacency: "triangleadj",
}

func (m ParameterModifier) String() string {
	if int(m) < len(modifierNames) {
		return modifierNames[m]
	}
	return fmt.Sprintf("modifier(%d)", m)
}

// ParseParameterModifier converts the source spelling of a modifier.
func ParseParameterModifier(s string) (ParameterModifier, bool) {
	for m, name := range modifierNames {
		if name == strings.ToLower(s) {
			return ParameterModifier(m), true
		}
	}
	return ModifierNone, false
}

// IsPrimitive reports whether m selects a geometry input topology.
func (m ParameterModifier) IsPrimitive() bool {
	return m >= ModifierPoint && m <= ModifierTriangleAdjacency
}

// Parameter is one parameter of a FunctionType.
type Parameter struct {
	Type      SymbolType
	Modifiers ParameterModifier
}

// FunctionType represents a function signature.
type FunctionType struct {
	ReturnType SymbolType
	Parameters []Parameter
}

func (*FunctionType) symbolType() {}

func (f *FunctionType) String() string {
	var sb strings.Builder
	sb.WriteString(f.ReturnType.String())
	sb.WriteByte('(')
	for i, p := range f.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Modifiers != ModifierNone {
			sb.WriteString(p.Modifiers.String())
			sb.WriteByte(' ')
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Clone returns a copy whose parameter list can be modified independently.
func (f *FunctionType) Clone() *FunctionType {
	params := make([]Parameter, len(f.Parameters))
	copy(params, f.Parameters)
	return &FunctionType{ReturnType: f.ReturnType, Parameters: params}
}

// ParameterValueType returns the pointee type of parameter i.
// Lowered functions take every parameter by Function-space pointer.
func (f *FunctionType) ParameterValueType(i int) SymbolType {
	if ptr, ok := f.Parameters[i].Type.(PointerType); ok {
		return ptr.Base
	}
	return f.Parameters[i].Type
}

// PatchKind distinguishes InputPatch from OutputPatch.
type PatchKind uint8

const (
	PatchInput PatchKind = iota
	PatchOutput
)

// PatchType is the high-level view over the control points of a
// tessellation patch. It only occurs in hull and domain signatures.
type PatchType struct {
	Base SymbolType
	Size uint32
	Kind PatchKind
}

func (PatchType) symbolType() {}

func (p PatchType) String() string {
	if p.Kind == PatchOutput {
		return fmt.Sprintf("OutputPatch<%s,%d>", p.Base, p.Size)
	}
	return fmt.Sprintf("InputPatch<%s,%d>", p.Base, p.Size)
}

// AsArray returns the flat array equivalent of the patch.
func (p PatchType) AsArray() ArrayType {
	return ArrayType{Base: p.Base, Size: p.Size}
}

// Equal reports whether two types are structurally identical.
func Equal(a, b SymbolType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return TypeKey(a) == TypeKey(b)
}

// ElementScalar returns the scalar type at the leaves of a scalar, vector,
// matrix or array type.
func ElementScalar(t SymbolType) (ScalarType, bool) {
	switch t := t.(type) {
	case ScalarType:
		return t, true
	case VectorType:
		return t.Scalar, true
	case MatrixType:
		return t.Scalar, true
	case ArrayType:
		return ElementScalar(t.Base)
	}
	return ScalarType{}, false
}
