// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// hullModule builds a three-control-point hull shader
//
//	HSMain(InputPatch<HS_INPUT,3> input, out HS_OUTPUT output, uint id : SV_OutputControlPointID)
//	HSConstants(OutputPatch<HS_OUTPUT,3> patch, out HS_CONSTANTS constants)
type hullModule struct {
	*testModule
	main, constants *ir.Symbol
	analysis        *ir.AnalysisResult
	types           StreamTypes
}

func newHullModule(withConstants bool) *hullModule {
	m := newTestModule()
	position := stream("Position", "POSITION", vec4, true, true)
	edges := stream("TessFactor", "SV_TessFactor", ir.ArrayType{Base: ir.Float, Size: 4}, false, true)
	edges.Patch = true
	inside := stream("InsideTessFactor", "SV_InsideTessFactor", ir.ArrayType{Base: ir.Float, Size: 2}, false, true)
	inside.Patch = true
	analysis := &ir.AnalysisResult{Streams: []*ir.StreamVariableInfo{position, edges, inside}}
	types := BuildStreamTypes(spirv.ExecutionModelTessellationControl, analysis.Streams)

	h := &hullModule{testModule: m, analysis: analysis, types: types}
	h.main = m.function("HSMain",
		ptr(ir.PatchType{Base: types.Input, Size: 3, Kind: ir.PatchInput}, ir.ModifierNone),
		ptr(types.Output, ir.ModifierOut),
		ptr(ir.UInt, ir.ModifierIn),
	)
	m.ctx.MemberDecorateString(h.main.ID, 2, spirv.DecorationUserSemantic, "SV_OutputControlPointID")
	m.ctx.AddExecutionMode(h.main.ID, spirv.ExecutionModeOutputVertices, 3)
	m.ctx.AddExecutionMode(h.main.ID, spirv.ExecutionModeTriangles)

	if withConstants {
		h.constants = m.function("HSConstants",
			ptr(ir.PatchType{Base: types.Output, Size: 3, Kind: ir.PatchOutput}, ir.ModifierNone),
			ptr(types.Constants, ir.ModifierOut),
		)
	}
	return h
}

func (h *hullModule) process() (*Result, *ir.LiveAnalysis, error) {
	live := ir.NewLiveAnalysis()
	res, err := h.generator().Process(&EntryPoint{
		Function:      h.main,
		Model:         spirv.ExecutionModelTessellationControl,
		PatchConstant: h.constants,
		Analysis:      h.analysis,
		Live:          live,
	})
	return res, live, err
}

func TestHullWrapper(t *testing.T) {
	h := newHullModule(true)
	res, live, err := h.process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	mod := h.decode(t)
	body := mod.Function(res.WrapperID)

	for _, tt := range []struct {
		op   spirv.OpCode
		want int
	}{
		{spirv.OpControlBarrier, 1},
		{spirv.OpIEqual, 1},
		{spirv.OpSelectionMerge, 1},
		{spirv.OpBranchConditional, 1},
		{spirv.OpBranch, 1},
		{spirv.OpLabel, 3},
	} {
		if got := count(body, tt.op); got != tt.want {
			t.Errorf("wrapper has %d %v, want %d", got, tt.op, tt.want)
		}
	}

	c := calls(body)
	if len(c) != 2 || c[0][0] != h.main.ID || c[1][0] != h.constants.ID {
		t.Fatalf("calls = %v, want HSMain then HSConstants", c)
	}

	// The patch-constant call sits between the branch and the merge.
	var barrierAt, branchAt, constantsAt, mergeAt int
	for i, inst := range body {
		switch inst.Opcode {
		case spirv.OpControlBarrier:
			barrierAt = i
			if inst.Words[0] != h.ctx.ConstantUint(uint32(spirv.ScopeWorkgroup)) ||
				inst.Words[1] != h.ctx.ConstantUint(uint32(spirv.ScopeInvocation)) ||
				inst.Words[2] != h.ctx.ConstantUint(uint32(spirv.MemorySemanticsNone)) {
				t.Errorf("barrier operands = %v", inst.Words)
			}
		case spirv.OpBranchConditional:
			branchAt = i
		case spirv.OpFunctionCall:
			if inst.Words[2] == h.constants.ID {
				constantsAt = i
			}
		case spirv.OpBranch:
			mergeAt = i
		}
	}
	if !(barrierAt < branchAt && branchAt < constantsAt && constantsAt < mergeAt) {
		t.Errorf("order barrier=%d branch=%d call=%d merge=%d", barrierAt, branchAt, constantsAt, mergeAt)
	}

	for _, id := range []uint32{h.main.ID, h.constants.ID, res.WrapperID} {
		if !live.IsLive(id) {
			t.Errorf("%%%d not marked live", id)
		}
	}
}

func TestHullSignatureRewritten(t *testing.T) {
	h := newHullModule(true)
	if _, _, err := h.process(); err != nil {
		t.Fatalf("Process: %v", err)
	}

	inputArray := ir.PointerType{Base: ir.ArrayType{Base: h.types.Input, Size: 3}, Space: ir.SpaceFunction}
	if got := h.main.FunctionType().Parameters[0].Type; !ir.Equal(got, inputArray) {
		t.Errorf("HSMain parameter 0 = %s, want %s", got, inputArray)
	}
	outputArray := ir.PointerType{Base: ir.ArrayType{Base: h.types.Output, Size: 3}, Space: ir.SpaceFunction}
	if got := h.constants.FunctionType().Parameters[0].Type; !ir.Equal(got, outputArray) {
		t.Errorf("HSConstants parameter 0 = %s, want %s", got, outputArray)
	}

	mod := h.decode(t)
	fn := mod.Function(h.main.ID)
	if fn[0].Words[3] != h.ctx.GetOrRegister(h.main.Type) {
		t.Error("OpFunction of HSMain does not reference its new type")
	}
	if fn[1].Opcode != spirv.OpFunctionParameter || fn[1].Words[0] != h.ctx.GetOrRegister(inputArray) {
		t.Errorf("first parameter of HSMain = %v", fn[1])
	}
}

func TestHullInterface(t *testing.T) {
	h := newHullModule(true)
	res, _, err := h.process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	mod := h.decode(t)

	ids := builtinVariables(mod, spirv.BuiltInInvocationID)
	if len(ids) != 1 {
		t.Fatalf("got %d InvocationId variables, want 1", len(ids))
	}
	ep := mod.EntryPoints()[0]
	if ep.Model != spirv.ExecutionModelTessellationControl || hasDuplicates(ep.Interfaces) {
		t.Errorf("entry point = %+v", ep)
	}
	position := h.analysis.Streams[0]
	for _, id := range []uint32{position.InputID, position.OutputID, h.analysis.Streams[1].OutputID, h.analysis.Streams[2].OutputID, ids[0]} {
		if !contains(ep.Interfaces, id) {
			t.Errorf("interface list %v is missing %%%d", ep.Interfaces, id)
		}
	}

	if got := builtinVariables(mod, spirv.BuiltInTessLevelOuter); len(got) != 1 {
		t.Errorf("TessLevelOuter variables = %v", got)
	}

	modes := executionModes(mod, res.WrapperID)
	if len(modes) != 2 || modes[0] != spirv.ExecutionModeOutputVertices || modes[1] != spirv.ExecutionModeTriangles {
		t.Errorf("wrapper execution modes = %v", modes)
	}
	if left := executionModes(mod, h.main.ID); len(left) != 0 {
		t.Errorf("HSMain kept execution modes %v", left)
	}

	hasCap := false
	for _, inst := range mod.Filter(spirv.OpCapability) {
		if spirv.Capability(inst.Words[0]) == spirv.CapabilityTessellation {
			hasCap = true
		}
	}
	if !hasCap {
		t.Error("Tessellation capability missing")
	}
}

func TestHullWithoutPatchConstant(t *testing.T) {
	h := newHullModule(false)
	res, _, err := h.process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	body := h.decode(t).Function(res.WrapperID)
	if n := count(body, spirv.OpControlBarrier); n != 0 {
		t.Errorf("got %d barriers without a patch-constant function", n)
	}
	if c := calls(body); len(c) != 1 {
		t.Errorf("calls = %v, want only HSMain", c)
	}
}

func TestHullRequiresOutputVertices(t *testing.T) {
	m := newTestModule()
	types := BuildStreamTypes(spirv.ExecutionModelTessellationControl, nil)
	fn := m.function("HSMain", ptr(ir.PatchType{Base: types.Input, Size: 3, Kind: ir.PatchInput}, ir.ModifierNone))
	_, err := m.generator().Process(&EntryPoint{Function: fn, Model: spirv.ExecutionModelTessellationControl})
	if !IsInternal(err) {
		t.Fatalf("got %v, want internal error", err)
	}
}

func TestOutputPatchReadTwice(t *testing.T) {
	h := newHullModule(false)
	outputPatch := ptr(ir.PatchType{Base: h.types.Output, Size: 3, Kind: ir.PatchOutput}, ir.ModifierNone)
	h.constants = h.function("HSConstants", outputPatch, outputPatch)
	_, _, err := h.process()
	if !IsInternal(err) {
		t.Fatalf("got %v, want internal error", err)
	}
}

func TestPatchSizeMismatch(t *testing.T) {
	h := newHullModule(false)
	h.constants = h.function("HSConstants",
		ptr(ir.PatchType{Base: h.types.Input, Size: 4, Kind: ir.PatchInput}, ir.ModifierNone))
	_, _, err := h.process()
	var e *Error
	if !errors.As(err, &e) || e.Kind != ErrInternal {
		t.Fatalf("got %v, want internal error", err)
	}
}

func TestOutputPatchSizeMismatch(t *testing.T) {
	h := newHullModule(false)
	h.constants = h.function("HSConstants",
		ptr(ir.PatchType{Base: h.types.Output, Size: 4, Kind: ir.PatchOutput}, ir.ModifierNone),
		ptr(h.types.Constants, ir.ModifierOut))
	_, _, err := h.process()
	var e *Error
	if !errors.As(err, &e) || e.Kind != ErrInternal {
		t.Fatalf("got %v, want internal error", err)
	}
	if !strings.Contains(e.Message, "control points") {
		t.Errorf("message = %q", e.Message)
	}
}

func TestDomainWrapper(t *testing.T) {
	m := newTestModule()
	position := stream("Position", "POSITION", vec4, true, false)
	edges := stream("TessFactor", "SV_TessFactor", ir.ArrayType{Base: ir.Float, Size: 4}, true, false)
	edges.Patch = true
	location := stream("Domain", "SV_DomainLocation", vec3, true, false)
	location.Patch = true
	out := stream("ShadingPosition", "SV_Position", vec4, false, true)
	analysis := &ir.AnalysisResult{Streams: []*ir.StreamVariableInfo{position, edges, location, out}}
	types := BuildStreamTypes(spirv.ExecutionModelTessellationEvaluation, analysis.Streams)

	fn := m.function("DSMain",
		ptr(types.Constants, ir.ModifierIn),
		ptr(ir.PatchType{Base: types.Input, Size: 3, Kind: ir.PatchOutput}, ir.ModifierNone),
		ptr(types.Output, ir.ModifierOut),
	)
	res, err := m.generator().Process(&EntryPoint{Function: fn, Model: spirv.ExecutionModelTessellationEvaluation, Analysis: analysis})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	mod := m.decode(t)
	body := mod.Function(res.WrapperID)
	c := calls(body)
	if len(c) != 1 || len(c[0]) != 4 {
		t.Fatalf("calls = %v, want DSMain with three arguments", c)
	}
	stored := false
	for _, inst := range body {
		if inst.Opcode == spirv.OpStore && inst.Words[0] == out.OutputID {
			stored = true
		}
	}
	if !stored {
		t.Error("domain output not stored directly to its variable")
	}
	if n := count(body, spirv.OpControlBarrier); n != 0 {
		t.Errorf("domain wrapper has %d barriers", n)
	}
	if _, ok := mod.StorageClassOf(position.InputID); !ok {
		t.Error("position input not declared")
	}
}

func TestDomainUnusedPatchInput(t *testing.T) {
	m := newTestModule()
	position := stream("Position", "POSITION", vec4, true, false)
	edges := stream("TessFactor", "SV_TessFactor", ir.ArrayType{Base: ir.Float, Size: 4}, true, false)
	edges.Patch = true
	extra := stream("Extra", "EXTRA", vec4, true, false)
	extra.Patch = true
	extra.UsedThisStage = false
	out := stream("ShadingPosition", "SV_Position", vec4, false, true)
	analysis := &ir.AnalysisResult{Streams: []*ir.StreamVariableInfo{position, edges, extra, out}}
	types := BuildStreamTypes(spirv.ExecutionModelTessellationEvaluation, analysis.Streams)

	fn := m.function("DSMain",
		ptr(types.Constants, ir.ModifierIn),
		ptr(ir.PatchType{Base: types.Input, Size: 3, Kind: ir.PatchOutput}, ir.ModifierNone),
		ptr(types.Output, ir.ModifierOut),
	)
	res, err := m.generator().Process(&EntryPoint{Function: fn, Model: spirv.ExecutionModelTessellationEvaluation, Analysis: analysis})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	ep := m.decode(t).EntryPoints()[0]
	if contains(ep.Interfaces, extra.InputID) {
		t.Errorf("interface list %v contains unused patch input %%%d", ep.Interfaces, extra.InputID)
	}
	for _, id := range []uint32{position.InputID, edges.InputID, out.OutputID} {
		if !contains(ep.Interfaces, id) {
			t.Errorf("interface list %v is missing %%%d", ep.Interfaces, id)
		}
	}
	if ep.Function != res.WrapperID {
		t.Errorf("entry point function = %%%d, want wrapper %%%d", ep.Function, res.WrapperID)
	}
}
