// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// interfaceList collects the ids OpEntryPoint must list: the stream
// variables the wrapper references, the Private streams struct, the used
// globals and the variables the binder declared. Each id appears once, at
// its first position.
//
// Modules targeting SPIR-V before 1.4 only list Input and Output
// variables.
func (w *wrapper) interfaceList() []uint32 {
	req := w.req
	var ids []uint32
	for _, id := range req.Streams.IDs() {
		if _, ok := w.referenced[id]; ok {
			ids = append(ids, id)
		}
	}
	if req.StreamsVariable != 0 {
		ids = append(ids, req.StreamsVariable)
	}
	for _, list := range [][]ir.GlobalUsage{req.Analysis.Variables, req.Analysis.CBuffers, req.Analysis.Resources} {
		for _, g := range list {
			if g.UsedThisStage {
				ids = append(ids, g.ID)
			}
		}
	}
	ids = append(ids, req.ExtraVariables...)
	ids = append(ids, w.binder.Variables()...)
	ids = dedupe(ids)

	if w.Context.Version.Before(spirv.Version1_4) {
		ids = inputsAndOutputs(w.Context, ids)
	}
	return ids
}

// dedupe removes repeated ids, keeping first occurrences in order.
func dedupe(ids []uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// inputsAndOutputs keeps the ids of Input and Output variables.
func inputsAndOutputs(ctx *spirv.Context, ids []uint32) []uint32 {
	out := ids[:0]
	for _, id := range ids {
		t, _ := ctx.TypeOf(id)
		if p, ok := t.(ir.PointerType); ok && (p.Space == ir.SpaceInput || p.Space == ir.SpaceOutput) {
			out = append(out, id)
		}
	}
	return out
}
