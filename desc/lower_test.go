// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package desc

import (
	"path/filepath"
	"testing"

	"github.com/gogpu/spvwrap/adapter"
	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/logging"
	"github.com/gogpu/spvwrap/spirv"
)

// build lowers a testdata description and adapts its entry point.
func build(t *testing.T, name string) (*Module, *adapter.Result, *spirv.Module) {
	t.Helper()
	d, err := Load(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m, err := Lower(d)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	res, err := adapter.NewGenerator(m.Context, m.Code, logging.Nop()).Process(m.Entry)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	mod, err := spirv.Decode(m.Context.Assemble(m.Code))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return m, res, mod
}

func TestLowerVertex(t *testing.T) {
	m, res, mod := build(t, "vertex.toml")

	if res.WrapperName != "VSMain_Wrapper" {
		t.Errorf("wrapper = %s", res.WrapperName)
	}
	streams := m.Entry.Analysis.Streams
	if len(res.Streams.Input) != 2 || len(res.Streams.Output) != 1 {
		t.Fatalf("streams = %d in, %d out", len(res.Streams.Input), len(res.Streams.Output))
	}

	body := mod.Function(res.WrapperID)
	loads, stores := 0, 0
	for _, inst := range body {
		switch {
		case inst.Opcode == spirv.OpLoad && (inst.Words[2] == streams[0].InputID || inst.Words[2] == streams[1].InputID):
			loads++
		case inst.Opcode == spirv.OpStore && inst.Words[0] == streams[2].OutputID:
			stores++
		}
	}
	if loads != 2 || stores != 1 {
		t.Errorf("got %d input loads and %d output stores, want 2 and 1", loads, stores)
	}

	ep := mod.EntryPoints()[0]
	globals := m.Entry.Analysis
	for _, id := range []uint32{globals.Variables[0].ID, globals.CBuffers[0].ID, res.StreamsVariable} {
		found := false
		for _, got := range ep.Interfaces {
			if got == id {
				found = true
			}
		}
		if !found {
			t.Errorf("%%%d missing from interface list %v", id, ep.Interfaces)
		}
	}

	var block, binding bool
	for _, inst := range mod.Filter(spirv.OpDecorate) {
		switch spirv.Decoration(inst.Words[1]) {
		case spirv.DecorationBlock:
			block = true
		case spirv.DecorationBinding:
			binding = inst.Words[0] == globals.CBuffers[0].ID
		}
	}
	if !block || !binding {
		t.Errorf("cbuffer decorations: Block=%v Binding=%v", block, binding)
	}
}

func TestLowerHull(t *testing.T) {
	m, res, mod := build(t, "hull.toml")

	c := 0
	for _, inst := range mod.Function(res.WrapperID) {
		if inst.Opcode == spirv.OpFunctionCall {
			c++
		}
	}
	if c != 2 {
		t.Errorf("wrapper makes %d calls, want 2", c)
	}
	if !m.Entry.Live.IsLive(m.Entry.PatchConstant.ID) {
		t.Error("patch-constant function not marked live")
	}

	var modes []spirv.ExecutionMode
	for _, inst := range mod.Filter(spirv.OpExecutionMode) {
		if inst.Words[0] != res.WrapperID {
			t.Errorf("execution mode %v left on %%%d", spirv.ExecutionMode(inst.Words[1]), inst.Words[0])
		}
		modes = append(modes, spirv.ExecutionMode(inst.Words[1]))
	}
	if len(modes) != 2 || modes[0] != spirv.ExecutionModeOutputVertices || modes[1] != spirv.ExecutionModeTriangles {
		t.Errorf("execution modes = %v", modes)
	}

	input := ir.PointerType{Base: ir.ArrayType{Base: res.Types.Input, Size: 3}, Space: ir.SpaceFunction}
	if got := m.Entry.Function.FunctionType().Parameters[0].Type; !ir.Equal(got, input) {
		t.Errorf("HSMain parameter 0 = %s, want %s", got, input)
	}
}

func TestLowerGeometry(t *testing.T) {
	m, res, mod := build(t, "geometry.toml")

	if n := len(m.Entry.Function.FunctionType().Parameters); n != 1 {
		t.Errorf("GSMain has %d parameters after adaptation, want 1", n)
	}
	want := map[spirv.ExecutionMode]bool{
		spirv.ExecutionModeTriangles:           true,
		spirv.ExecutionModeOutputVertices:      true,
		spirv.ExecutionModeOutputTriangleStrip: true,
		spirv.ExecutionModeInvocations:         true,
	}
	for _, inst := range mod.Filter(spirv.OpExecutionMode) {
		if inst.Words[0] == res.WrapperID {
			delete(want, spirv.ExecutionMode(inst.Words[1]))
		}
	}
	if len(want) != 0 {
		t.Errorf("wrapper lacks execution modes %v", want)
	}
}

func TestLowerCompute(t *testing.T) {
	m, res, mod := build(t, "compute.toml")

	var size []uint32
	for _, inst := range mod.Filter(spirv.OpExecutionMode) {
		if inst.Words[0] == res.WrapperID && spirv.ExecutionMode(inst.Words[1]) == spirv.ExecutionModeLocalSize {
			size = inst.Words[2:]
		}
	}
	if len(size) != 3 || size[0] != 8 || size[1] != 8 || size[2] != 1 {
		t.Errorf("LocalSize = %v, want [8 8 1]", size)
	}

	vars := m.Entry.Analysis.Variables
	counter, unused := vars[0], vars[1]
	if counter.InitializerID == 0 || !m.Entry.Live.IsLive(counter.InitializerID) {
		t.Error("initializer not emitted or not live")
	}
	if mod.Name(counter.InitializerID) != "Counter_init" {
		t.Errorf("initializer name = %q", mod.Name(counter.InitializerID))
	}
	ep := mod.EntryPoints()[0]
	for _, id := range ep.Interfaces {
		if id == unused.ID {
			t.Error("unused global listed in OpEntryPoint")
		}
	}
	if len(m.Entry.Analysis.Resources) != 1 {
		t.Errorf("got %d resources, want 1", len(m.Entry.Analysis.Resources))
	}
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"hull without control points", `[shader]
name = "HSMain"
stage = "hull"`},
		{"bad param type", `[shader]
name = "main"
stage = "vertex"
[[param]]
type = "float9"`},
		{"bad modifier", `[shader]
name = "main"
stage = "vertex"
[[param]]
type = "float"
modifier = "const"`},
		{"cbuffer not a struct", `[shader]
name = "main"
stage = "vertex"
[[global]]
name = "g"
type = "float4"
kind = "cbuffer"`},
		{"initializer on struct", `[shader]
name = "main"
stage = "vertex"
[[struct]]
name = "S"
[[global]]
name = "g"
type = "S"
initializer = true`},
		{"bad domain", `[shader]
name = "DSMain"
stage = "domain"
domain = "hex"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if _, err := Lower(d); err == nil {
				t.Error("expected Lower to fail")
			}
		})
	}
}
