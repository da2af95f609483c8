// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"testing"

	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/logging"
	"github.com/gogpu/spvwrap/spirv"
)

var (
	vec3 = ir.VectorType{Scalar: ir.Float, Size: 3}
	vec4 = ir.VectorType{Scalar: ir.Float, Size: 4}
)

// testModule is a module holding lowered functions, as a front end would
// hand them to the adapter.
type testModule struct {
	ctx  *spirv.Context
	code *spirv.Buffer
}

func newTestModule() *testModule {
	return &testModule{ctx: spirv.NewContext(), code: spirv.NewBuffer()}
}

// function emits an empty void function with the given parameters.
func (m *testModule) function(name string, params ...ir.Parameter) *ir.Symbol {
	fnType := &ir.FunctionType{ReturnType: ir.Void, Parameters: params}
	b := spirv.NewCodeBuilder(m.ctx, m.code)
	id := b.AddFunction(fnType, spirv.FunctionControlNone)
	for _, p := range params {
		b.AddFunctionParameter(p.Type)
	}
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	m.ctx.AddName(id, name)
	return &ir.Symbol{Name: name, ID: id, Type: fnType}
}

func (m *testModule) generator() *Generator {
	return NewGenerator(m.ctx, m.code, logging.Nop())
}

func (m *testModule) decode(t *testing.T) *spirv.Module {
	t.Helper()
	mod, err := spirv.Decode(m.ctx.Assemble(m.code))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return mod
}

// ptr wraps a value type in a Function-space pointer parameter.
func ptr(t ir.SymbolType, modifier ir.ParameterModifier) ir.Parameter {
	return ir.Parameter{Type: ir.PointerType{Base: t, Space: ir.SpaceFunction}, Modifiers: modifier}
}

func stream(name, semantic string, t ir.SymbolType, input, output bool) *ir.StreamVariableInfo {
	s := ir.NewStreamVariableInfo(name, semantic, t)
	s.Input = input
	s.Output = output
	return s
}

// decorations returns the OpDecorate operands applied to id.
func decorations(mod *spirv.Module, id uint32) map[spirv.Decoration][]uint32 {
	out := make(map[spirv.Decoration][]uint32)
	for _, inst := range mod.Filter(spirv.OpDecorate) {
		if inst.Words[0] == id {
			out[spirv.Decoration(inst.Words[1])] = inst.Words[2:]
		}
	}
	return out
}

// builtinVariables returns the variables decorated with the given built-in.
func builtinVariables(mod *spirv.Module, builtin spirv.BuiltIn) []uint32 {
	var ids []uint32
	for _, inst := range mod.Filter(spirv.OpDecorate) {
		if spirv.Decoration(inst.Words[1]) == spirv.DecorationBuiltIn && spirv.BuiltIn(inst.Words[2]) == builtin {
			ids = append(ids, inst.Words[0])
		}
	}
	return ids
}

// count returns how many instructions of body have the given opcode.
func count(body []spirv.Instruction, opcode spirv.OpCode) int {
	n := 0
	for _, inst := range body {
		if inst.Opcode == opcode {
			n++
		}
	}
	return n
}

// calls returns the callee and arguments of every OpFunctionCall in body.
func calls(body []spirv.Instruction) [][]uint32 {
	var out [][]uint32
	for _, inst := range body {
		if inst.Opcode == spirv.OpFunctionCall {
			out = append(out, inst.Words[2:])
		}
	}
	return out
}

func executionModes(mod *spirv.Module, target uint32) []spirv.ExecutionMode {
	var out []spirv.ExecutionMode
	for _, inst := range mod.Filter(spirv.OpExecutionMode) {
		if inst.Words[0] == target {
			out = append(out, spirv.ExecutionMode(inst.Words[1]))
		}
	}
	return out
}

func hasDuplicates(ids []uint32) bool {
	seen := make(map[uint32]bool)
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

func contains(ids []uint32, id uint32) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
