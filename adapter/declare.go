// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"fmt"

	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// DeclareStreams declares the Input and Output interface variables of a
// stage and records their ids, locations and interface types on each
// stream.
//
// Per-vertex streams of geometry and tessellation stages are declared as
// arrays of arrayInputSize (inputs) or arrayOutputSize (outputs) elements;
// zero means not arrayed. System-value semantics become built-ins, every
// other stream gets a Location, taken from the stream when preset and
// otherwise allocated after the highest preset one. Pixel shader
// SV_TargetN outputs without a preset location write render target N.
func DeclareStreams(ctx *spirv.Context, model spirv.ExecutionModel, streams []*ir.StreamVariableInfo, arrayInputSize, arrayOutputSize uint32) error {
	if model == spirv.ExecutionModelFragment {
		renderTargetLocations(streams)
	}

	var nextInput, nextOutput uint32
	for _, stream := range streams {
		if stream.Input && stream.InputLocation != nil {
			nextInput = max(nextInput, *stream.InputLocation+1)
		}
		if stream.Output && stream.OutputLocation != nil {
			nextOutput = max(nextOutput, *stream.OutputLocation+1)
		}
	}

	stage := model.StageID()
	for _, stream := range streams {
		if stream.Input {
			id, t, err := declareStream(ctx, model, stream, spirv.StorageClassInput, arrayInputSize, &stream.InputLocation, &nextInput)
			if err != nil {
				return err
			}
			ctx.AddName(id, fmt.Sprintf("in_%s_%s", stage, stream.Name))
			stream.InputID, stream.InputType = id, t
		}
		if stream.Output {
			id, t, err := declareStream(ctx, model, stream, spirv.StorageClassOutput, arrayOutputSize, &stream.OutputLocation, &nextOutput)
			if err != nil {
				return err
			}
			ctx.AddName(id, fmt.Sprintf("out_%s_%s", stage, stream.Name))
			stream.OutputID, stream.OutputType = id, t
		}
	}
	return nil
}

func renderTargetLocations(streams []*ir.StreamVariableInfo) {
	for _, stream := range streams {
		if stream.Output && stream.OutputLocation == nil && spirv.NormalizeSemantic(stream.Semantic) == "SV_TARGET" {
			loc := spirv.SemanticIndex(stream.Semantic)
			stream.OutputLocation = &loc
		}
	}
}

// declareStream declares one interface variable and returns its id and
// the type of one element.
func declareStream(ctx *spirv.Context, model spirv.ExecutionModel, stream *ir.StreamVariableInfo,
	class spirv.StorageClass, arraySize uint32, location **uint32, next *uint32) (uint32, ir.SymbolType, error) {
	space := ir.SpaceInput
	if class == spirv.StorageClassOutput {
		space = ir.SpaceOutput
	}

	builtin, isBuiltin, err := spirv.LookupBuiltin(model, class, stream.Semantic, stream.Type)
	if err != nil {
		return 0, nil, wrapError(ErrUnknownSemantic, err, "stream %s", stream.Name)
	}
	elementType := stream.Type
	if isBuiltin {
		elementType = builtin.Type
	}

	variableType := elementType
	if !stream.Patch && arraySize != 0 {
		variableType = ir.ArrayType{Base: elementType, Size: arraySize}
	}
	id := ctx.DeclareVariable(variableType, space, "")

	if isBuiltin {
		ctx.DecorateBuiltin(id, builtin.BuiltIn)
		return id, elementType, nil
	}

	if *location == nil {
		loc := *next
		*next++
		*location = &loc
	}
	ctx.Decorate(id, spirv.DecorationLocation, **location)
	if stream.Semantic != "" {
		ctx.DecorateString(id, spirv.DecorationUserSemantic, stream.Semantic)
	}
	if stream.Patch {
		ctx.Decorate(id, spirv.DecorationPatch)
	}
	if isIntegral(stream.Type) {
		ctx.Decorate(id, spirv.DecorationFlat)
	}
	return id, elementType, nil
}

// StreamTypes are the struct types a stage's streams are gathered into.
type StreamTypes struct {
	// Input and Output list the stage's per-vertex inputs and outputs.
	Input  *ir.StructType
	Output *ir.StructType
	// Streams holds every per-vertex stream the stage touches.
	Streams *ir.StructType
	// Constants holds the per-patch streams. Only set for tessellation.
	Constants *ir.StructType
}

// BuildStreamTypes assigns struct field indices to the streams and builds
// the <STAGE>_INPUT, <STAGE>_OUTPUT, <STAGE>_STREAMS and, for tessellation
// stages, <STAGE>_CONSTANTS struct types.
//
// The result only depends on the streams, so a front end lowering the
// entry point's signature can call it ahead of Process and get types equal
// to the ones the wrapper will use.
func BuildStreamTypes(model spirv.ExecutionModel, streams []*ir.StreamVariableInfo) StreamTypes {
	var streamFields, constantFields, inputFields, outputFields []ir.StructField
	for _, stream := range streams {
		stream.StreamStructFieldIndex = -1
		stream.InputStructFieldIndex = -1
		stream.OutputStructFieldIndex = -1

		field := ir.StructField{Name: stream.Name, Type: stream.Type}
		if stream.UsedThisStage {
			if stream.Patch {
				stream.StreamStructFieldIndex = len(constantFields)
				constantFields = append(constantFields, field)
			} else {
				stream.StreamStructFieldIndex = len(streamFields)
				streamFields = append(streamFields, field)
			}
		}
		if stream.Patch {
			continue
		}
		if stream.Input {
			stream.InputStructFieldIndex = len(inputFields)
			inputFields = append(inputFields, field)
		}
		if stream.Output {
			stream.OutputStructFieldIndex = len(outputFields)
			outputFields = append(outputFields, field)
		}
	}

	stage := model.StageID()
	types := StreamTypes{
		Input:   &ir.StructType{Name: stage + "_INPUT", Fields: inputFields},
		Output:  &ir.StructType{Name: stage + "_OUTPUT", Fields: outputFields},
		Streams: &ir.StructType{Name: stage + "_STREAMS", Fields: streamFields},
	}
	if isTessellation(model) {
		types.Constants = &ir.StructType{Name: stage + "_CONSTANTS", Fields: constantFields}
	}
	return types
}

// Register interns every struct so they carry debug names even when the
// wrapper never references them.
func (t StreamTypes) Register(ctx *spirv.Context) {
	for _, st := range []*ir.StructType{t.Input, t.Output, t.Streams, t.Constants} {
		if st != nil {
			ctx.GetOrRegister(st)
		}
	}
}

func isTessellation(model spirv.ExecutionModel) bool {
	return model == spirv.ExecutionModelTessellationControl || model == spirv.ExecutionModelTessellationEvaluation
}
