// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package adapter turns a lowered shader function into a SPIR-V entry point.
//
// Shader code reads and writes streams: semantically tagged values grouped
// into per-stage structs. SPIR-V instead expects flat Input and Output
// variables, decorated with locations or built-ins and listed on the
// OpEntryPoint instruction. The adapter bridges the two by emitting a
// wrapper function per entry point.
//
// # Pipeline
//
// Process runs the whole pass for one entry point:
//
//	g := adapter.NewGenerator(ctx, code, logging.Nop())
//	res, err := g.Process(&adapter.EntryPoint{
//		Function: vsMain,
//		Model:    spirv.ExecutionModelVertex,
//		Analysis: analysis,
//	})
//
// It declares the interface variables (DeclareStreams), builds the stage
// struct types (BuildStreamTypes) and calls GenerateWrapper, which can also
// be driven directly with a hand-made Request.
//
// # Stages
//
// Vertex, fragment and compute wrappers copy inputs into the Private
// streams struct, call the entry point and copy outputs back out.
// Geometry and tessellation wrappers regroup the per-stream input arrays
// into an array of <STAGE>_INPUT structs and pass it as an argument,
// rewriting patch parameters to plain arrays. Hull wrappers also call the
// patch-constant function from control point 0 after a barrier.
//
// # Errors
//
// Failures are reported as *Error. An ErrInternal error means the module
// disagrees with its own analysis; the module must be discarded.
package adapter
