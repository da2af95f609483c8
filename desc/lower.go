// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package desc

import (
	"fmt"

	"github.com/gogpu/spvwrap/adapter"
	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// Module is a description lowered to SPIR-V: the entry function and its
// patch-constant function with empty bodies, the declared globals, and
// the entry point record for the adapter.
type Module struct {
	Context *spirv.Context
	Code    *spirv.Buffer
	Entry   *adapter.EntryPoint
}

// Lower declares everything the description names in a new module.
func Lower(d *Description) (*Module, error) {
	model, err := ParseStage(d.Shader.Stage)
	if err != nil {
		return nil, err
	}
	m := &Module{Context: spirv.NewContext(), Code: spirv.NewBuffer()}

	env := make(TypeEnv)
	for _, s := range d.Structs {
		st := &ir.StructType{Name: s.Name}
		for _, f := range s.Fields {
			t, err := ParseType(f.Type, env)
			if err != nil {
				return nil, fmt.Errorf("struct %s: field %s: %w", s.Name, f.Name, err)
			}
			st.Fields = append(st.Fields, ir.StructField{Name: f.Name, Type: t})
		}
		env[s.Name] = st
	}

	analysis := &ir.AnalysisResult{}
	for _, s := range d.Streams {
		info, err := lowerStream(s, env)
		if err != nil {
			return nil, err
		}
		analysis.Streams = append(analysis.Streams, info)
	}

	// Signatures refer to the stage structs by name.
	types := adapter.BuildStreamTypes(model, analysis.Streams)
	for _, st := range []*ir.StructType{types.Input, types.Output, types.Streams, types.Constants} {
		if st != nil {
			env[st.Name] = st
		}
	}

	entry := &adapter.EntryPoint{Model: model, Analysis: analysis, Live: ir.NewLiveAnalysis()}
	entry.Function, err = m.function(d.Shader.Name, d.Params, env)
	if err != nil {
		return nil, err
	}
	if d.Shader.PatchConstant != "" {
		entry.PatchConstant, err = m.function(d.Shader.PatchConstant, d.PatchParams, env)
		if err != nil {
			return nil, err
		}
	}
	for i, n := range d.Shader.Workgroup {
		entry.WorkgroupSize[i] = uint32(n)
	}

	if err := m.executionModes(d.Shader, model, entry.Function.ID); err != nil {
		return nil, err
	}
	for _, g := range d.Globals {
		if err := m.global(g, env, analysis); err != nil {
			return nil, fmt.Errorf("global %s: %w", g.Name, err)
		}
	}

	m.Entry = entry
	return m, nil
}

func lowerStream(s *Stream, env TypeEnv) (*ir.StreamVariableInfo, error) {
	t, err := ParseType(s.Type, env)
	if err != nil {
		return nil, fmt.Errorf("stream %s: %w", s.Name, err)
	}
	info := ir.NewStreamVariableInfo(s.Name, s.Semantic, t)
	info.Input = s.Input
	info.Output = s.Output
	info.Patch = s.Patch
	if s.Used != nil {
		info.UsedThisStage = *s.Used
	}
	if s.InputLocation != nil {
		loc := uint32(*s.InputLocation)
		info.InputLocation = &loc
	}
	if s.OutputLocation != nil {
		loc := uint32(*s.OutputLocation)
		info.OutputLocation = &loc
	}
	return info, nil
}

// function emits a void function taking every parameter by Function
// pointer, with an empty body.
func (m *Module) function(name string, params []*Param, env TypeEnv) (*ir.Symbol, error) {
	fnType := &ir.FunctionType{ReturnType: ir.Void}
	for i, p := range params {
		t, err := ParseType(p.Type, env)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %d: %w", name, i, err)
		}
		modifier, ok := ir.ParseParameterModifier(p.Modifier)
		if !ok {
			return nil, fmt.Errorf("%s: parameter %d: unknown modifier %q", name, i, p.Modifier)
		}
		fnType.Parameters = append(fnType.Parameters, ir.Parameter{
			Type:      ir.PointerType{Base: t, Space: ir.SpaceFunction},
			Modifiers: modifier,
		})
	}

	b := spirv.NewCodeBuilder(m.Context, m.Code)
	id := b.AddFunction(fnType, spirv.FunctionControlNone)
	for _, p := range fnType.Parameters {
		b.AddFunctionParameter(p.Type)
	}
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	m.Context.AddName(id, name)

	for i, p := range params {
		if p.Semantic != "" {
			m.Context.MemberDecorateString(id, uint32(i), spirv.DecorationUserSemantic, p.Semantic)
		}
	}
	return &ir.Symbol{Name: name, ID: id, Type: fnType}, nil
}

var domainModes = map[string]spirv.ExecutionMode{
	"tri":     spirv.ExecutionModeTriangles,
	"quad":    spirv.ExecutionModeQuads,
	"isoline": spirv.ExecutionModeIsolines,
}

var outputTopologies = map[string]spirv.ExecutionMode{
	"point":    spirv.ExecutionModeOutputPoints,
	"line":     spirv.ExecutionModeOutputLineStrip,
	"triangle": spirv.ExecutionModeOutputTriangleStrip,
}

// executionModes declares the stage settings on the entry function. The
// adapter moves them to the wrapper.
func (m *Module) executionModes(s *Shader, model spirv.ExecutionModel, fn uint32) error {
	ctx := m.Context
	switch model {
	case spirv.ExecutionModelTessellationControl, spirv.ExecutionModelTessellationEvaluation:
		if model == spirv.ExecutionModelTessellationControl {
			if s.OutputControlPoints <= 0 {
				return fmt.Errorf("hull shader %s needs output-control-points", s.Name)
			}
			ctx.AddExecutionMode(fn, spirv.ExecutionModeOutputVertices, uint32(s.OutputControlPoints))
		}
		if s.Domain != "" {
			mode, ok := domainModes[s.Domain]
			if !ok {
				return fmt.Errorf("unknown domain %q", s.Domain)
			}
			ctx.AddExecutionMode(fn, mode)
		}

	case spirv.ExecutionModelGeometry:
		if s.MaxVertexCount > 0 {
			ctx.AddExecutionMode(fn, spirv.ExecutionModeOutputVertices, uint32(s.MaxVertexCount))
		}
		if s.OutputTopology != "" {
			mode, ok := outputTopologies[s.OutputTopology]
			if !ok {
				return fmt.Errorf("unknown output topology %q", s.OutputTopology)
			}
			ctx.AddExecutionMode(fn, mode)
		}
		ctx.AddExecutionMode(fn, spirv.ExecutionModeInvocations, 1)
	}
	return nil
}

// global declares g and records it in the analysis result.
func (m *Module) global(g *Global, env TypeEnv, analysis *ir.AnalysisResult) error {
	t, err := ParseType(g.Type, env)
	if err != nil {
		return err
	}

	kind := g.Kind
	if kind == "" {
		kind = KindVariable
	}
	space := ir.SpacePrivate
	switch kind {
	case KindCBuffer:
		space = ir.SpaceUniform
	case KindResource:
		space = ir.SpaceUniformConstant
	}
	if g.Storage != "" {
		var ok bool
		if space, ok = ir.ParseAddressSpace(g.Storage); !ok {
			return fmt.Errorf("unknown storage %q", g.Storage)
		}
	}

	ctx := m.Context
	usage := ir.GlobalUsage{Name: g.Name, Type: t, Space: space, UsedThisStage: true}
	if g.Used != nil {
		usage.UsedThisStage = *g.Used
	}
	usage.ID = ctx.DeclareVariable(t, space, g.Name)
	if kind == KindCBuffer {
		if _, ok := t.(*ir.StructType); !ok {
			return fmt.Errorf("constant buffer type %s is not a struct", t)
		}
		ctx.Decorate(ctx.GetOrRegister(t), spirv.DecorationBlock)
	}
	if g.Set != nil {
		ctx.Decorate(usage.ID, spirv.DecorationDescriptorSet, uint32(*g.Set))
	}
	if g.Binding != nil {
		ctx.Decorate(usage.ID, spirv.DecorationBinding, uint32(*g.Binding))
	}

	if g.Initializer {
		if kind != KindVariable {
			return fmt.Errorf("only variables take an initializer")
		}
		usage.InitializerID, err = m.initializer(g.Name, t)
		if err != nil {
			return err
		}
	}

	switch kind {
	case KindCBuffer:
		analysis.CBuffers = append(analysis.CBuffers, usage)
	case KindResource:
		analysis.Resources = append(analysis.Resources, usage)
	default:
		analysis.Variables = append(analysis.Variables, usage)
	}
	return nil
}

// initializer emits a function returning the zero value of t.
func (m *Module) initializer(name string, t ir.SymbolType) (uint32, error) {
	if !zeroable(t) {
		return 0, fmt.Errorf("no zero initializer for %s", t)
	}

	b := spirv.NewCodeBuilder(m.Context, m.Code)
	id := b.AddFunction(&ir.FunctionType{ReturnType: t}, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddReturnValue(m.Context.ZeroConstant(t))
	b.AddFunctionEnd()
	m.Context.AddName(id, name+"_init")
	return id, nil
}

func zeroable(t ir.SymbolType) bool {
	switch t := t.(type) {
	case ir.ScalarType:
		return t.Kind != ir.ScalarVoid
	case ir.VectorType:
		return true
	case ir.ArrayType:
		return zeroable(t.Base)
	}
	return false
}
