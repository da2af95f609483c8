package spirv

import (
	"github.com/gogpu/spvwrap/ir"
)

// CodeBuilder appends function code to a Buffer, allocating result ids and
// interning types through a Context.
type CodeBuilder struct {
	Context *Context
	Buffer  *Buffer
}

// NewCodeBuilder creates a code builder over buf.
func NewCodeBuilder(ctx *Context, buf *Buffer) *CodeBuilder {
	return &CodeBuilder{Context: ctx, Buffer: buf}
}

func (b *CodeBuilder) typeID(t ir.SymbolType) uint32 {
	return b.Context.GetOrRegister(t)
}

// AddFunction adds OpFunction and returns its id.
func (b *CodeBuilder) AddFunction(fnType *ir.FunctionType, control FunctionControl) uint32 {
	return b.AddFunctionWithID(b.Context.AllocID(), fnType, control)
}

// AddFunctionWithID adds OpFunction with a pre-allocated id.
func (b *CodeBuilder) AddFunctionWithID(id uint32, fnType *ir.FunctionType, control FunctionControl) uint32 {
	b.Buffer.Add(NewInstruction(OpFunction, b.typeID(fnType.ReturnType), id, uint32(control), b.typeID(fnType)))
	return id
}

// AddFunctionParameter adds a function parameter.
func (b *CodeBuilder) AddFunctionParameter(t ir.SymbolType) uint32 {
	id := b.Context.AllocID()
	b.Buffer.Add(NewInstruction(OpFunctionParameter, b.typeID(t), id))
	return id
}

// AddLabel adds a label.
func (b *CodeBuilder) AddLabel() (uint32, Ref) {
	id := b.Context.AllocID()
	return id, b.AddLabelWithID(id)
}

// AddLabelWithID adds a label whose id was allocated ahead of time.
func (b *CodeBuilder) AddLabelWithID(id uint32) Ref {
	return b.Buffer.Add(NewInstruction(OpLabel, id))
}

// InsertVariable declares a Function-storage local of type t right after
// the instruction at. It returns the variable id and its Ref, which callers
// use as the next insertion point.
func (b *CodeBuilder) InsertVariable(at Ref, t ir.SymbolType) (uint32, Ref) {
	ptrType := b.typeID(ir.PointerType{Base: t, Space: ir.SpaceFunction})
	id := b.Context.AllocID()
	ref := b.Buffer.InsertAfter(at, NewInstruction(OpVariable, ptrType, id, uint32(StorageClassFunction)))
	return id, ref
}

// AddLoad adds OpLoad.
func (b *CodeBuilder) AddLoad(t ir.SymbolType, pointer uint32) uint32 {
	id := b.Context.AllocID()
	b.Buffer.Add(NewInstruction(OpLoad, b.typeID(t), id, pointer))
	return id
}

// AddStore adds OpStore.
func (b *CodeBuilder) AddStore(pointer uint32, value uint32) {
	b.Buffer.Add(NewInstruction(OpStore, pointer, value))
}

// AddAccessChain adds OpAccessChain. The result is a pointer to t in space.
func (b *CodeBuilder) AddAccessChain(t ir.SymbolType, space ir.AddressSpace, base uint32, indices ...uint32) uint32 {
	id := b.Context.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWords(b.typeID(ir.PointerType{Base: t, Space: space}), id, base)
	builder.AddWords(indices...)
	b.Buffer.Add(builder.Build(OpAccessChain))
	return id
}

// AddCompositeConstruct adds OpCompositeConstruct.
func (b *CodeBuilder) AddCompositeConstruct(t ir.SymbolType, constituents ...uint32) uint32 {
	id := b.Context.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWords(b.typeID(t), id)
	builder.AddWords(constituents...)
	b.Buffer.Add(builder.Build(OpCompositeConstruct))
	return id
}

// AddCompositeExtract adds OpCompositeExtract with literal indices.
func (b *CodeBuilder) AddCompositeExtract(t ir.SymbolType, composite uint32, indices ...uint32) uint32 {
	id := b.Context.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWords(b.typeID(t), id, composite)
	builder.AddWords(indices...)
	b.Buffer.Add(builder.Build(OpCompositeExtract))
	return id
}

// AddVectorShuffle adds OpVectorShuffle.
func (b *CodeBuilder) AddVectorShuffle(t ir.SymbolType, vec1, vec2 uint32, components ...uint32) uint32 {
	id := b.Context.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWords(b.typeID(t), id, vec1, vec2)
	builder.AddWords(components...)
	b.Buffer.Add(builder.Build(OpVectorShuffle))
	return id
}

// AddUnaryOp adds a unary operation instruction.
func (b *CodeBuilder) AddUnaryOp(opcode OpCode, t ir.SymbolType, operand uint32) uint32 {
	id := b.Context.AllocID()
	b.Buffer.Add(NewInstruction(opcode, b.typeID(t), id, operand))
	return id
}

// AddBinaryOp adds a binary operation instruction.
func (b *CodeBuilder) AddBinaryOp(opcode OpCode, t ir.SymbolType, left, right uint32) uint32 {
	id := b.Context.AllocID()
	b.Buffer.Add(NewInstruction(opcode, b.typeID(t), id, left, right))
	return id
}

// AddSelect adds OpSelect.
func (b *CodeBuilder) AddSelect(t ir.SymbolType, condition, accept, reject uint32) uint32 {
	id := b.Context.AllocID()
	b.Buffer.Add(NewInstruction(OpSelect, b.typeID(t), id, condition, accept, reject))
	return id
}

// AddFunctionCall adds OpFunctionCall.
func (b *CodeBuilder) AddFunctionCall(returnType ir.SymbolType, function uint32, args ...uint32) uint32 {
	id := b.Context.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWords(b.typeID(returnType), id, function)
	builder.AddWords(args...)
	b.Buffer.Add(builder.Build(OpFunctionCall))
	return id
}

// AddControlBarrier adds OpControlBarrier. Scope and semantics operands are
// constant ids.
func (b *CodeBuilder) AddControlBarrier(execution, memory Scope, semantics MemorySemantics) {
	ctx := b.Context
	b.Buffer.Add(NewInstruction(OpControlBarrier,
		ctx.ConstantUint(uint32(execution)),
		ctx.ConstantUint(uint32(memory)),
		ctx.ConstantUint(uint32(semantics))))
}

// AddSelectionMerge adds OpSelectionMerge.
func (b *CodeBuilder) AddSelectionMerge(mergeLabel uint32, control SelectionControl) {
	b.Buffer.Add(NewInstruction(OpSelectionMerge, mergeLabel, uint32(control)))
}

// AddBranchConditional adds OpBranchConditional.
func (b *CodeBuilder) AddBranchConditional(condition, trueLabel, falseLabel uint32) {
	b.Buffer.Add(NewInstruction(OpBranchConditional, condition, trueLabel, falseLabel))
}

// AddBranch adds OpBranch.
func (b *CodeBuilder) AddBranch(target uint32) {
	b.Buffer.Add(NewInstruction(OpBranch, target))
}

// AddReturn adds OpReturn.
func (b *CodeBuilder) AddReturn() {
	b.Buffer.Add(NewInstruction(OpReturn))
}

// AddReturnValue adds OpReturnValue.
func (b *CodeBuilder) AddReturnValue(value uint32) {
	b.Buffer.Add(NewInstruction(OpReturnValue, value))
}

// AddFunctionEnd adds OpFunctionEnd.
func (b *CodeBuilder) AddFunctionEnd() {
	b.Buffer.Add(NewInstruction(OpFunctionEnd))
}
