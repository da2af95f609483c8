// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// inputTopology maps a primitive modifier to its execution mode.
var inputTopology = map[ir.ParameterModifier]spirv.ExecutionMode{
	ir.ModifierPoint:             spirv.ExecutionModeInputPoints,
	ir.ModifierLine:              spirv.ExecutionModeInputLines,
	ir.ModifierLineAdjacency:     spirv.ExecutionModeInputLinesAdjacency,
	ir.ModifierTriangle:          spirv.ExecutionModeTriangles,
	ir.ModifierTriangleAdjacency: spirv.ExecutionModeInputTrianglesAdjacency,
}

// generateGeometry calls a geometry entry point of the form
//
//	main(triangle GS_INPUT input[3], inout TriangleStream<GS_OUTPUT> stream)
//
// The output stream parameter is dropped; the lowered code emits through
// the output variables directly. The primitive modifier of the input array
// becomes an execution mode of the entry point and is stripped.
func (w *wrapper) generateGeometry(args []uint32) error {
	fn := w.req.EntryPoint
	if len(fn.FunctionType().Parameters) < 2 {
		return NewError(ErrInternal, "%s must take an input array and an output stream", fn.Name)
	}

	if err := spirv.RemoveArgument(w.Context, w.Buffer, fn, 1); err != nil {
		return wrapError(ErrInternal, err, "removing output stream of %s", fn.Name)
	}
	args = append(args[:1], args[2:]...)
	w.log.Debugf("%s: output stream parameter removed", fn.Name)

	modifier := fn.FunctionType().Parameters[0].Modifiers
	mode, ok := inputTopology[modifier]
	if !ok {
		return NewError(ErrInternal, "%s: input primitive type is missing (modifier %s)", fn.Name, modifier)
	}
	w.Context.AddExecutionMode(fn.ID, mode)
	if err := spirv.SetParameterModifier(fn, 0, ir.ModifierNone); err != nil {
		return wrapError(ErrInternal, err, "stripping topology of %s", fn.Name)
	}

	// The lowered code emits through the output variables.
	for _, s := range w.req.Streams.Output {
		w.variable(s)
	}

	args[0] = w.inputs
	_, err := w.call(fn, args)
	return err
}
