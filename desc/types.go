// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package desc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/spvwrap/ir"
)

var scalarNames = map[string]ir.ScalarType{
	"void":   ir.Void,
	"bool":   ir.Bool,
	"int":    ir.Int,
	"uint":   ir.UInt,
	"float":  ir.Float,
	"half":   {Kind: ir.ScalarFloat, Width: 2},
	"double": {Kind: ir.ScalarFloat, Width: 8},
}

// TypeEnv resolves named struct types while parsing type expressions.
type TypeEnv map[string]ir.SymbolType

// ParseType parses a type expression:
//
//	float uint2 half3 float4x4 bool
//	float[4] uint2[3][2]
//	InputPatch<HS_INPUT,3> OutputPatch<HS_OUTPUT,4>
//	VS_INPUT MyStruct
//
// Struct names are looked up in env.
func ParseType(s string, env TypeEnv) (ir.SymbolType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type")
	}

	// Array suffixes bind outermost-last: T[2][3] is an array of 2 T[3].
	if strings.HasSuffix(s, "]") {
		open := strings.IndexByte(s, '[')
		if open <= 0 {
			return nil, fmt.Errorf("malformed array type %q", s)
		}
		base, err := ParseType(s[:open], env)
		if err != nil {
			return nil, err
		}
		dims, err := parseDims(s[open:])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		t := base
		for i := len(dims) - 1; i >= 0; i-- {
			t = ir.ArrayType{Base: t, Size: dims[i]}
		}
		return t, nil
	}

	if open := strings.IndexByte(s, '<'); open > 0 && strings.HasSuffix(s, ">") {
		var kind ir.PatchKind
		switch s[:open] {
		case "InputPatch":
			kind = ir.PatchInput
		case "OutputPatch":
			kind = ir.PatchOutput
		default:
			return nil, fmt.Errorf("unknown template type %q", s[:open])
		}
		args := strings.Split(s[open+1:len(s)-1], ",")
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes a type and a size", s[:open])
		}
		base, err := ParseType(args[0], env)
		if err != nil {
			return nil, err
		}
		size, err := parseSize(args[1])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		return ir.PatchType{Base: base, Size: size, Kind: kind}, nil
	}

	if t, ok := env[s]; ok {
		return t, nil
	}
	if t, ok := scalarNames[s]; ok {
		return t, nil
	}
	if t, ok := parseNumeric(s); ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", s)
}

func parseDims(s string) ([]uint32, error) {
	var dims []uint32
	for s != "" {
		if s[0] != '[' {
			return nil, fmt.Errorf("unexpected %q", s)
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated array size")
		}
		n, err := parseSize(s[1:end])
		if err != nil {
			return nil, err
		}
		dims = append(dims, n)
		s = s[end+1:]
	}
	return dims, nil
}

func parseSize(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid size %q", strings.TrimSpace(s))
	}
	return uint32(n), nil
}

// parseNumeric parses vector (float3) and matrix (float4x4) names.
func parseNumeric(s string) (ir.SymbolType, bool) {
	end := len(s)
	for end > 0 && (s[end-1] >= '0' && s[end-1] <= '9' || s[end-1] == 'x') {
		end--
	}
	scalar, ok := scalarNames[s[:end]]
	if !ok || scalar.Kind == ir.ScalarVoid || end == len(s) {
		return nil, false
	}

	dims := strings.Split(s[end:], "x")
	sizes := make([]uint32, len(dims))
	for i, d := range dims {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 || n > 4 {
			return nil, false
		}
		sizes[i] = uint32(n)
	}
	switch len(sizes) {
	case 1:
		if sizes[0] == 1 {
			return scalar, true
		}
		return ir.VectorType{Scalar: scalar, Size: sizes[0]}, true
	case 2:
		if sizes[0] < 2 || sizes[1] < 2 {
			return nil, false
		}
		return ir.MatrixType{Scalar: scalar, Rows: sizes[0], Columns: sizes[1]}, true
	}
	return nil, false
}
