// Package spirv provides the SPIR-V module model used by the entry-point
// adapter: enumerations, an instruction arena, the per-module context and
// a binary assembler.
//
// # Module Context
//
// A Context owns everything outside function bodies. Types and constants
// are interned, so requesting the same type twice yields the same id:
//
//	ctx := spirv.NewContext()
//	vec4 := ctx.GetOrRegister(ir.VectorType{Scalar: ir.Float, Size: 4})
//	one := ctx.ConstantFloat(1)
//
// # Instruction Buffer
//
// Function code is kept in a Buffer. Instructions are addressed by Ref,
// which stays valid when other instructions are inserted earlier in the
// stream, and can be patched to a no-op in place:
//
//	code := spirv.NewBuffer()
//	b := spirv.NewCodeBuilder(ctx, code)
//	fn := b.AddFunction(&ir.FunctionType{ReturnType: ir.Void}, spirv.FunctionControlNone)
//	_, entry := b.AddLabel()
//	local, _ := b.InsertVariable(entry, ir.Float)
//	b.AddStore(local, one)
//	b.AddReturn()
//	b.AddFunctionEnd()
//
//	binary := ctx.Assemble(code)
//
// # Signature Rewriting
//
// ReplaceArgument and RemoveArgument rewrite a function's own OpFunction
// and OpFunctionParameter instructions without touching any other part of
// the module.
//
// # SPIR-V Structure
//
// Assemble writes the sections in the order the format requires:
//   - Header (magic, version, generator, bound, schema)
//   - Capabilities and extensions
//   - Memory model
//   - Entry points and execution modes
//   - Debug names
//   - Annotations (decorations)
//   - Types, constants and global variables
//   - Functions (code)
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
