// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// Streams groups the interface bindings of one stage by direction and
// frequency. Each list keeps the order of the analysis result.
type Streams struct {
	Input       []ir.StreamBinding
	Output      []ir.StreamBinding
	PatchInput  []ir.StreamBinding
	PatchOutput []ir.StreamBinding
}

// Partition splits declared streams into per-vertex and per-patch inputs
// and outputs. Streams without an interface variable in a direction are
// skipped for that direction.
func Partition(streams []*ir.StreamVariableInfo) Streams {
	var s Streams
	for _, info := range streams {
		if info.InputID != 0 {
			b := ir.StreamBinding{Info: info, ID: info.InputID, InterfaceType: interfaceType(info.InputType, info.Type)}
			if info.Patch {
				s.PatchInput = append(s.PatchInput, b)
			} else {
				s.Input = append(s.Input, b)
			}
		}
		if info.OutputID != 0 {
			b := ir.StreamBinding{Info: info, ID: info.OutputID, InterfaceType: interfaceType(info.OutputType, info.Type)}
			if info.Patch {
				s.PatchOutput = append(s.PatchOutput, b)
			} else {
				s.Output = append(s.Output, b)
			}
		}
	}
	return s
}

func interfaceType(declared, internal ir.SymbolType) ir.SymbolType {
	if declared != nil {
		return declared
	}
	return internal
}

// IDs returns the interface variable ids of every binding, inputs first.
func (s Streams) IDs() []uint32 {
	var ids []uint32
	for _, list := range [][]ir.StreamBinding{s.Input, s.Output, s.PatchInput, s.PatchOutput} {
		for _, b := range list {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// SemanticParameter is a parameter of the entry function that reads a
// system value instead of a stream.
type SemanticParameter struct {
	Index    int
	Semantic string
}

// SemanticParameters returns the parameters of fn tagged with a
// UserSemantic member decoration. The decorations only exist to carry the
// tag to this pass and are patched out as they are read.
func SemanticParameters(ctx *spirv.Context, fn *ir.Symbol) []SemanticParameter {
	var params []SemanticParameter
	annotations := ctx.Annotations()
	annotations.Each(func(ref spirv.Ref, inst spirv.Instruction) bool {
		if inst.Opcode != spirv.OpMemberDecorateString || len(inst.Words) < 4 {
			return true
		}
		if inst.Words[0] != fn.ID || spirv.Decoration(inst.Words[2]) != spirv.DecorationUserSemantic {
			return true
		}
		semantic, _ := spirv.DecodeString(inst.Words[3:])
		params = append(params, SemanticParameter{Index: int(inst.Words[1]), Semantic: semantic})
		annotations.Nop(ref)
		return true
	})
	return params
}
