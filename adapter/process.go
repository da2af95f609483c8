// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// EntryPoint is one lowered shader entry point to adapt.
type EntryPoint struct {
	Function *ir.Symbol
	Model    spirv.ExecutionModel

	// PatchConstant is the hull shader's patch-constant function, if any.
	PatchConstant *ir.Symbol

	Analysis *ir.AnalysisResult
	Live     *ir.LiveAnalysis

	// WorkgroupSize is the compute LocalSize. Zero components default to 1.
	WorkgroupSize [3]uint32
}

// Result describes the wrapper produced for an entry point.
type Result struct {
	WrapperID   uint32
	WrapperName string

	Streams         Streams
	Types           StreamTypes
	StreamsVariable uint32
}

// Process declares the stage interface of ep and wraps it:
//
//  1. stream interface variables and the stage struct types are declared
//  2. the Private streams<STAGE> variable is declared
//  3. the wrapper is generated and registered as the entry point
//  4. execution modes of the function move to the wrapper, and the stage's
//     required modes and capabilities are added
//
// Errors are reported to the generator's logger before being returned.
func (g *Generator) Process(ep *EntryPoint) (*Result, error) {
	res, err := g.process(ep)
	if err != nil {
		g.log.Error("Adapter", err)
	}
	return res, err
}

func (g *Generator) process(ep *EntryPoint) (*Result, error) {
	fn := ep.Function
	if fn == nil || fn.FunctionType() == nil {
		return nil, NewError(ErrInternal, "entry point is not a function")
	}
	if ep.Analysis == nil {
		ep.Analysis = &ir.AnalysisResult{}
	}
	if ep.Live == nil {
		ep.Live = ir.NewLiveAnalysis()
	}

	arrayInputSize, err := inputArraySize(ep.Model, fn)
	if err != nil {
		return nil, withEntry(err, fn.Name)
	}
	var arrayOutputSize uint32
	if ep.Model == spirv.ExecutionModelTessellationControl {
		n, ok := g.ctx.ExecutionModeOperand(fn.ID, spirv.ExecutionModeOutputVertices)
		if !ok {
			return nil, &Error{Kind: ErrInternal, Entry: fn.Name, Message: "hull shader does not declare OutputVertices"}
		}
		arrayOutputSize = n
		if ep.PatchConstant == nil {
			g.log.Warn("Hull", fn.Name+" has no patch-constant function")
		}
	}

	streams := ep.Analysis.Streams
	if err := DeclareStreams(g.ctx, ep.Model, streams, arrayInputSize, arrayOutputSize); err != nil {
		return nil, withEntry(err, fn.Name)
	}
	types := BuildStreamTypes(ep.Model, streams)
	types.Register(g.ctx)

	stage := ep.Model.StageID()
	streamsVariable := g.ctx.DeclareVariable(types.Streams, ir.SpacePrivate, "streams"+stage)

	req := &Request{
		EntryPoint:      fn,
		Model:           ep.Model,
		Analysis:        ep.Analysis,
		Live:            ep.Live,
		Streams:         Partition(streams),
		Types:           types,
		StreamsVariable: streamsVariable,
		ArrayInputSize:  arrayInputSize,
		ArrayOutputSize: arrayOutputSize,
		PatchConstant:   ep.PatchConstant,
	}
	wrapperID, wrapperName, err := g.GenerateWrapper(req)
	if err != nil {
		return nil, err
	}

	moved := retargetExecutionModes(g.ctx, fn.ID, wrapperID)
	g.log.Debugf("%s: %d execution modes moved to %s", fn.Name, moved, wrapperName)

	switch ep.Model {
	case spirv.ExecutionModelFragment:
		if !hasExecutionMode(g.ctx, wrapperID, spirv.ExecutionModeOriginUpperLeft) {
			g.ctx.AddExecutionMode(wrapperID, spirv.ExecutionModeOriginUpperLeft)
		}
	case spirv.ExecutionModelGLCompute:
		if !hasExecutionMode(g.ctx, wrapperID, spirv.ExecutionModeLocalSize) {
			size := ep.WorkgroupSize
			for i := range size {
				if size[i] == 0 {
					size[i] = 1
				}
			}
			g.ctx.AddExecutionMode(wrapperID, spirv.ExecutionModeLocalSize, size[0], size[1], size[2])
		}
	case spirv.ExecutionModelTessellationControl, spirv.ExecutionModelTessellationEvaluation:
		g.ctx.AddCapability(spirv.CapabilityTessellation)
	case spirv.ExecutionModelGeometry:
		g.ctx.AddCapability(spirv.CapabilityGeometry)
	}

	return &Result{
		WrapperID:       wrapperID,
		WrapperName:     wrapperName,
		Streams:         req.Streams,
		Types:           types,
		StreamsVariable: streamsVariable,
	}, nil
}

// inputArraySize returns how many vertices or control points each
// invocation of the stage reads.
func inputArraySize(model spirv.ExecutionModel, fn *ir.Symbol) (uint32, error) {
	fnType := fn.FunctionType()
	switch model {
	case spirv.ExecutionModelGeometry:
		if len(fnType.Parameters) > 0 {
			if arr, ok := fnType.ParameterValueType(0).(ir.ArrayType); ok {
				return arr.Size, nil
			}
		}
		return 0, NewError(ErrInternal, "geometry shader must take its input vertices as an array")

	case spirv.ExecutionModelTessellationControl, spirv.ExecutionModelTessellationEvaluation:
		want := ir.PatchInput
		if model == spirv.ExecutionModelTessellationEvaluation {
			want = ir.PatchOutput
		}
		for i := range fnType.Parameters {
			if patch, ok := fnType.ParameterValueType(i).(ir.PatchType); ok && patch.Kind == want {
				return patch.Size, nil
			}
		}
		return 0, NewError(ErrInternal, "%s shader has no input patch parameter", model)
	}
	return 0, nil
}

// retargetExecutionModes moves the execution modes declared on from to to
// and returns how many moved.
func retargetExecutionModes(ctx *spirv.Context, from, to uint32) int {
	modes := ctx.ExecutionModes()
	n := 0
	modes.Each(func(ref spirv.Ref, inst spirv.Instruction) bool {
		if inst.Words[0] == from {
			words := append([]uint32(nil), inst.Words...)
			words[0] = to
			modes.Set(ref, spirv.Instruction{Opcode: inst.Opcode, Words: words})
			n++
		}
		return true
	})
	return n
}

func hasExecutionMode(ctx *spirv.Context, target uint32, mode spirv.ExecutionMode) bool {
	found := false
	ctx.ExecutionModes().Each(func(_ spirv.Ref, inst spirv.Instruction) bool {
		if inst.Words[0] == target && spirv.ExecutionMode(inst.Words[1]) == mode {
			found = true
			return false
		}
		return true
	})
	return found
}
