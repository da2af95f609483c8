package ir

import (
	"strconv"
)

// TypeKey creates a unique key for a type based on its structure.
// Two structurally identical types produce the same key.
//
// Parameter modifiers are not part of a function type's key: SPIR-V has no
// way to encode them, and two OpTypeFunction with identical operands are
// invalid.
func TypeKey(t SymbolType) string {
	b := make([]byte, 0, 32)
	return string(appendKey(b, t))
}

func appendKey(b []byte, t SymbolType) []byte {
	switch t := t.(type) {
	case ScalarType:
		b = append(b, "scalar:"...)
		b = strconv.AppendInt(b, int64(t.Kind), 10)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(t.Width), 10)

	case VectorType:
		b = append(b, "vec:"...)
		b = strconv.AppendUint(b, uint64(t.Size), 10)
		b = append(b, ':')
		b = appendKey(b, t.Scalar)

	case MatrixType:
		b = append(b, "mat:"...)
		b = strconv.AppendUint(b, uint64(t.Rows), 10)
		b = append(b, 'x')
		b = strconv.AppendUint(b, uint64(t.Columns), 10)
		b = append(b, ':')
		b = appendKey(b, t.Scalar)

	case ArrayType:
		b = append(b, "array:"...)
		b = strconv.AppendUint(b, uint64(t.Size), 10)
		b = append(b, '(')
		b = appendKey(b, t.Base)
		b = append(b, ')')

	case *StructType:
		b = append(b, "struct:"...)
		b = append(b, t.Name...)
		b = append(b, '{')
		for i, f := range t.Fields {
			if i > 0 {
				b = append(b, ',')
			}
			b = append(b, f.Name...)
			b = append(b, '=')
			b = appendKey(b, f.Type)
		}
		b = append(b, '}')

	case PointerType:
		b = append(b, "ptr:"...)
		b = strconv.AppendUint(b, uint64(t.Space), 10)
		b = append(b, '(')
		b = appendKey(b, t.Base)
		b = append(b, ')')

	case *FunctionType:
		b = append(b, "fn:"...)
		b = appendKey(b, t.ReturnType)
		b = append(b, '(')
		for i, p := range t.Parameters {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendKey(b, p.Type)
		}
		b = append(b, ')')

	case PatchType:
		b = append(b, "patch:"...)
		b = strconv.AppendUint(b, uint64(t.Kind), 10)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(t.Size), 10)
		b = append(b, '(')
		b = appendKey(b, t.Base)
		b = append(b, ')')

	case nil:
		b = append(b, "nil"...)

	default:
		b = append(b, "unknown:"...)
		b = append(b, t.String()...)
	}
	return b
}
