// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// outputControlPointID is the system value selecting the control point a
// hull shader invocation writes.
const outputControlPointID = "SV_OutputControlPointID"

// generateTessellation calls a hull or domain entry point and, for hull
// shaders with a patch-constant function, calls it once per patch.
func (w *wrapper) generateTessellation(args []uint32) error {
	fn := w.req.EntryPoint
	if err := w.fillTessellationArguments(fn, args); err != nil {
		return err
	}
	if _, err := w.call(fn, args); err != nil {
		return err
	}
	if err := w.processTessellationArguments(fn, args); err != nil {
		return err
	}

	if w.req.Model == spirv.ExecutionModelTessellationControl && w.req.PatchConstant != nil {
		return w.callPatchConstant(w.req.PatchConstant)
	}
	return nil
}

// fillTessellationArguments fills the patch, output and constants
// parameters of fn. Patch parameters are rewritten to arrays on first use.
//
//nolint:gocyclo,cyclop // one case per parameter kind
func (w *wrapper) fillTessellationArguments(fn *ir.Symbol, args []uint32) error {
	hull := w.req.Model == spirv.ExecutionModelTessellationControl
	types := w.req.Types

	for i := range args {
		if args[i] != 0 {
			continue
		}
		param := fn.FunctionType().Parameters[i]
		valueType := fn.FunctionType().ParameterValueType(i)

		switch t := valueType.(type) {
		case ir.PatchType:
			switch {
			case (t.Kind == ir.PatchInput && hull) || (t.Kind == ir.PatchOutput && !hull):
				if t.Size != w.req.ArrayInputSize {
					return NewError(ErrInternal, "%s of %s: patch size %d, inputs hold %d", t, fn.Name, t.Size, w.req.ArrayInputSize)
				}
				if err := w.replacePatch(fn, i, t, types.Input); err != nil {
					return err
				}
				args[i] = w.inputs

			case t.Kind == ir.PatchOutput && hull:
				if t.Size != w.req.ArrayOutputSize {
					return NewError(ErrInternal, "%s of %s: patch size %d, hull shader outputs %d control points", t, fn.Name, t.Size, w.req.ArrayOutputSize)
				}
				if err := w.replacePatch(fn, i, t, types.Output); err != nil {
					return err
				}
				outputs, err := w.generateHullOutputs(t.Size)
				if err != nil {
					return err
				}
				args[i] = outputs
			}

		case *ir.StructType:
			switch {
			case types.Constants != nil && ir.Equal(t, types.Constants):
				local := w.localVariable(t, "constants")
				if param.Modifiers == ir.ModifierNone || param.Modifiers == ir.ModifierIn {
					if err := w.loadPatchInputs(local); err != nil {
						return err
					}
				}
				args[i] = local

			case param.Modifiers == ir.ModifierOut && ir.Equal(t, types.Output):
				args[i] = w.localVariable(t, "output")
			}
		}

		if args[i] == 0 {
			return NewError(ErrInvalidArgument, "cannot process argument %d (%s) of %s", i, param.Type, fn.Name)
		}
	}
	return nil
}

// replacePatch rewrites parameter index of fn from a patch to the flat
// array of element the wrapper passes.
func (w *wrapper) replacePatch(fn *ir.Symbol, index int, patch ir.PatchType, element *ir.StructType) error {
	if !ir.Equal(patch.Base, element) {
		return NewError(ErrInternal, "%s of %s does not hold %s", patch, fn.Name, element.Name)
	}
	newType := ir.PointerType{Base: patch.AsArray(), Space: ir.SpaceFunction}
	if err := spirv.ReplaceArgument(w.Context, w.Buffer, fn, index, newType); err != nil {
		return wrapError(ErrInternal, err, "rewriting %s", fn.Name)
	}
	w.log.Debugf("%s: parameter %d rewritten to %s", fn.Name, index, newType.Base)
	return nil
}

// generateHullOutputs reads back every control point the hull shader wrote
// into an "outputs" local. A hull shader may only do this once.
func (w *wrapper) generateHullOutputs(size uint32) (uint32, error) {
	if w.outputsGenerated {
		return 0, NewError(ErrInternal, "OutputPatch can only be read once per hull shader")
	}
	w.outputsGenerated = true

	outputs := w.localVariable(ir.ArrayType{Base: w.req.Types.Output, Size: size}, "outputs")
	for i := uint32(0); i < size; i++ {
		point := w.Context.ConstantUint(i)
		for _, s := range w.req.Streams.Output {
			if s.Info.OutputStructFieldIndex < 0 {
				continue
			}
			src := w.AddAccessChain(s.InterfaceType, ir.SpaceOutput, w.variable(s), point)
			value := w.AddLoad(s.InterfaceType, src)
			converted, err := w.Convert(s.InterfaceType, s.Info.Type, value)
			if err != nil {
				return 0, wrapError(ErrInternal, err, "output %s", s.Info.Name)
			}
			field := w.Context.ConstantInt(int32(s.Info.OutputStructFieldIndex))
			dst := w.AddAccessChain(s.Info.Type, ir.SpaceFunction, outputs, point, field)
			w.AddStore(dst, converted)
		}
	}
	return outputs, nil
}

// loadPatchInputs copies the per-patch input streams into a constants local.
func (w *wrapper) loadPatchInputs(local uint32) error {
	for _, s := range w.req.Streams.PatchInput {
		if s.Info.StreamStructFieldIndex < 0 {
			continue
		}
		value := w.AddLoad(s.InterfaceType, w.variable(s))
		converted, err := w.Convert(s.InterfaceType, s.Info.Type, value)
		if err != nil {
			return wrapError(ErrInternal, err, "patch input %s", s.Info.Name)
		}
		field := w.Context.ConstantInt(int32(s.Info.StreamStructFieldIndex))
		w.AddStore(w.AddAccessChain(s.Info.Type, ir.SpaceFunction, local, field), converted)
	}
	return nil
}

// processTessellationArguments copies the out parameters of fn to the
// output interface variables after the call.
func (w *wrapper) processTessellationArguments(fn *ir.Symbol, args []uint32) error {
	fnType := fn.FunctionType()
	types := w.req.Types
	for i, param := range fnType.Parameters {
		if param.Modifiers != ir.ModifierOut {
			continue
		}
		valueType := fnType.ParameterValueType(i)
		switch {
		case ir.Equal(valueType, types.Output):
			if err := w.storeOutputs(w.AddLoad(types.Output, args[i])); err != nil {
				return err
			}
		case types.Constants != nil && ir.Equal(valueType, types.Constants):
			if err := w.storePatchOutputs(w.AddLoad(types.Constants, args[i])); err != nil {
				return err
			}
		}
	}
	return nil
}

// storeOutputs writes an <STAGE>_OUTPUT value to the output variables. Hull
// shaders write the element of their own control point.
func (w *wrapper) storeOutputs(value uint32) error {
	var point uint32
	if w.req.ArrayOutputSize != 0 {
		id, err := w.binder.Resolve(ir.UInt, outputControlPointID)
		if err != nil {
			return err
		}
		point = id
	}

	for _, s := range w.req.Streams.Output {
		if s.Info.OutputStructFieldIndex < 0 {
			continue
		}
		field := w.AddCompositeExtract(s.Info.Type, value, uint32(s.Info.OutputStructFieldIndex))
		converted, err := w.Convert(s.Info.Type, s.InterfaceType, field)
		if err != nil {
			return wrapError(ErrInternal, err, "output %s", s.Info.Name)
		}
		dst := w.variable(s)
		if w.req.ArrayOutputSize != 0 {
			dst = w.AddAccessChain(s.InterfaceType, ir.SpaceOutput, dst, point)
		}
		w.AddStore(dst, converted)
	}
	return nil
}

// storePatchOutputs writes a <STAGE>_CONSTANTS value to the per-patch
// output variables.
func (w *wrapper) storePatchOutputs(value uint32) error {
	for _, s := range w.req.Streams.PatchOutput {
		if s.Info.StreamStructFieldIndex < 0 {
			continue
		}
		field := w.AddCompositeExtract(s.Info.Type, value, uint32(s.Info.StreamStructFieldIndex))
		converted, err := w.Convert(s.Info.Type, s.InterfaceType, field)
		if err != nil {
			return wrapError(ErrInternal, err, "patch output %s", s.Info.Name)
		}
		w.AddStore(w.variable(s), converted)
	}
	return nil
}

// callPatchConstant emits
//
//	barrier
//	if controlPointID == 0 { patchConstant(...) }
//
// so the patch constants are computed once, after every control point of
// the patch has been written.
func (w *wrapper) callPatchConstant(pc *ir.Symbol) error {
	if pc.FunctionType() == nil {
		return NewError(ErrInternal, "patch-constant symbol %s is not a function", pc.Name)
	}

	w.AddControlBarrier(spirv.ScopeWorkgroup, spirv.ScopeInvocation, spirv.MemorySemanticsNone)
	w.req.Live.MarkMethodUsed(pc.ID)

	point, err := w.binder.Resolve(ir.UInt, outputControlPointID)
	if err != nil {
		return err
	}
	first := w.AddBinaryOp(spirv.OpIEqual, ir.Bool, point, w.Context.ConstantUint(0))

	thenLabel := w.Context.AllocID()
	mergeLabel := w.Context.AllocID()
	w.AddSelectionMerge(mergeLabel, spirv.SelectionControlNone)
	w.AddBranchConditional(first, thenLabel, mergeLabel)
	w.AddLabelWithID(thenLabel)

	args := make([]uint32, len(pc.FunctionType().Parameters))
	if err := w.fillSemanticArguments(pc, args); err != nil {
		return err
	}
	if err := w.fillTessellationArguments(pc, args); err != nil {
		return err
	}
	result, err := w.call(pc, args)
	if err != nil {
		return err
	}
	if err := w.processTessellationArguments(pc, args); err != nil {
		return err
	}
	if constants := w.req.Types.Constants; constants != nil && ir.Equal(pc.FunctionType().ReturnType, constants) {
		if err := w.storePatchOutputs(result); err != nil {
			return err
		}
	}

	w.AddBranch(mergeLabel)
	w.AddLabelWithID(mergeLabel)
	return nil
}
