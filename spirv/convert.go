package spirv

import (
	"fmt"
	"math"

	"github.com/gogpu/spvwrap/ir"
)

// ComponentCount returns the number of scalar leaves of a scalar, vector or
// array type, and 0 for any other type.
func ComponentCount(t ir.SymbolType) uint32 {
	switch t := t.(type) {
	case ir.ScalarType:
		if t.Kind == ir.ScalarVoid {
			return 0
		}
		return 1
	case ir.VectorType:
		return t.Size
	case ir.ArrayType:
		return t.Size * ComponentCount(t.Base)
	}
	return 0
}

// convertible reports whether Convert can reshape values of t.
func convertible(t ir.SymbolType) bool {
	switch t := t.(type) {
	case ir.ScalarType:
		return t.Kind != ir.ScalarVoid
	case ir.VectorType:
		return true
	case ir.ArrayType:
		return convertible(t.Base)
	}
	return false
}

type component struct {
	scalar ir.ScalarType
	id     uint32
}

// Convert emits the instructions that turn value, of type from, into a
// value of type to and returns the result id.
//
// Scalars, vectors and arrays of them are flattened to their scalar
// components, each component is converted to the destination scalar kind,
// and the destination shape is rebuilt. Extra components are dropped and
// missing ones are filled with zero. Matrices and structs only convert to
// an identical type.
func (b *CodeBuilder) Convert(from, to ir.SymbolType, value uint32) (uint32, error) {
	if ir.Equal(from, to) {
		return value, nil
	}
	if !convertible(from) || !convertible(to) {
		return 0, fmt.Errorf("cannot convert %s to %s", from, to)
	}

	if fv, ok := from.(ir.VectorType); ok {
		if tv, ok := to.(ir.VectorType); ok && fv.Scalar == tv.Scalar && tv.Size < fv.Size {
			indices := make([]uint32, tv.Size)
			for i := range indices {
				indices[i] = uint32(i)
			}
			return b.AddVectorShuffle(to, value, value, indices...), nil
		}
	}

	toScalar, _ := ir.ElementScalar(to)
	comps := b.flatten(from, value)
	out := make([]uint32, ComponentCount(to))
	for i := range out {
		if i >= len(comps) {
			out[i] = b.Context.Constant(toScalar, 0)
			continue
		}
		id, err := b.convertScalar(comps[i].scalar, toScalar, comps[i].id)
		if err != nil {
			return 0, err
		}
		out[i] = id
	}

	id, _ := b.rebuild(to, out)
	return id, nil
}

func (b *CodeBuilder) flatten(t ir.SymbolType, value uint32) []component {
	switch t := t.(type) {
	case ir.ScalarType:
		return []component{{scalar: t, id: value}}
	case ir.VectorType:
		comps := make([]component, t.Size)
		for i := range comps {
			comps[i] = component{scalar: t.Scalar, id: b.AddCompositeExtract(t.Scalar, value, uint32(i))}
		}
		return comps
	case ir.ArrayType:
		var comps []component
		for i := uint32(0); i < t.Size; i++ {
			element := b.AddCompositeExtract(t.Base, value, i)
			comps = append(comps, b.flatten(t.Base, element)...)
		}
		return comps
	}
	return nil
}

func (b *CodeBuilder) rebuild(t ir.SymbolType, comps []uint32) (uint32, []uint32) {
	switch t := t.(type) {
	case ir.ScalarType:
		return comps[0], comps[1:]
	case ir.VectorType:
		return b.AddCompositeConstruct(t, comps[:t.Size]...), comps[t.Size:]
	case ir.ArrayType:
		elements := make([]uint32, t.Size)
		for i := range elements {
			elements[i], comps = b.rebuild(t.Base, comps)
		}
		return b.AddCompositeConstruct(t, elements...), comps
	}
	return 0, comps
}

func (b *CodeBuilder) convertScalar(from, to ir.ScalarType, value uint32) (uint32, error) {
	if from == to {
		return value, nil
	}
	ctx := b.Context

	switch {
	case from.Kind == ir.ScalarBool:
		one := uint32(1)
		if to.Kind == ir.ScalarFloat {
			one = math.Float32bits(1)
		}
		return b.AddSelect(to, value, ctx.Constant(to, one), ctx.Constant(to, 0)), nil

	case to.Kind == ir.ScalarBool:
		op := OpINotEqual
		if from.Kind == ir.ScalarFloat {
			op = OpFOrdNotEqual
		}
		return b.AddBinaryOp(op, ir.Bool, value, ctx.Constant(from, 0)), nil

	case from.Width != to.Width:
		if from.Kind != to.Kind {
			// Change width first, then kind.
			mid := ir.ScalarType{Kind: from.Kind, Width: to.Width}
			widened, err := b.convertScalar(from, mid, value)
			if err != nil {
				return 0, err
			}
			return b.convertScalar(mid, to, widened)
		}
		switch from.Kind {
		case ir.ScalarFloat:
			return b.AddUnaryOp(OpFConvert, to, value), nil
		case ir.ScalarSint:
			return b.AddUnaryOp(OpSConvert, to, value), nil
		default:
			return b.AddUnaryOp(OpUConvert, to, value), nil
		}
	}

	switch {
	case from.Kind == ir.ScalarFloat && to.Kind == ir.ScalarSint:
		return b.AddUnaryOp(OpConvertFToS, to, value), nil
	case from.Kind == ir.ScalarFloat && to.Kind == ir.ScalarUint:
		return b.AddUnaryOp(OpConvertFToU, to, value), nil
	case from.Kind == ir.ScalarSint && to.Kind == ir.ScalarFloat:
		return b.AddUnaryOp(OpConvertSToF, to, value), nil
	case from.Kind == ir.ScalarUint && to.Kind == ir.ScalarFloat:
		return b.AddUnaryOp(OpConvertUToF, to, value), nil
	case from.IsNumeric() && to.IsNumeric():
		// int <-> uint of the same width
		return b.AddUnaryOp(OpBitcast, to, value), nil
	}
	return 0, fmt.Errorf("cannot convert %s to %s", from, to)
}
