package spirv

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/spvwrap/ir"
)

// Context owns the module-level state of one compilation: the id bound,
// the type and constant intern tables, and every module section except
// function code.
//
// Function bodies live in a separate Buffer handed to Assemble, so passes
// can patch them in place without touching declarations.
type Context struct {
	Version Version

	nextID uint32

	capabilities   []Capability
	extensions     []string
	entryPoints    *Buffer
	executionModes *Buffer
	debugNames     *Buffer // OpName, OpMemberName
	annotations    *Buffer // OpDecorate, OpMemberDecorate, *DecorateString
	declarations   *Buffer // types, constants and global variables

	typeIDs   map[string]uint32
	idTypes   map[uint32]ir.SymbolType
	constants map[string]uint32
	names     map[uint32]string
}

// NewContext creates a context targeting SPIR-V 1.4 with the Shader
// capability declared. From 1.4 on, OpEntryPoint lists every global the
// entry point references, not only Input and Output variables.
func NewContext() *Context {
	c := &Context{
		Version:        Version1_4,
		nextID:         1,
		entryPoints:    NewBuffer(),
		executionModes: NewBuffer(),
		debugNames:     NewBuffer(),
		annotations:    NewBuffer(),
		declarations:   NewBuffer(),
		typeIDs:        make(map[string]uint32),
		idTypes:        make(map[uint32]ir.SymbolType),
		constants:      make(map[string]uint32),
		names:          make(map[uint32]string),
	}
	c.AddCapability(CapabilityShader)
	return c
}

// AllocID allocates a new SPIR-V ID.
func (c *Context) AllocID() uint32 {
	id := c.nextID
	c.nextID++
	return id
}

// Bound returns the current id bound (max id + 1).
func (c *Context) Bound() uint32 {
	return c.nextID
}

// AddCapability declares a capability once.
func (c *Context) AddCapability(capability Capability) {
	for _, existing := range c.capabilities {
		if existing == capability {
			return
		}
	}
	c.capabilities = append(c.capabilities, capability)
}

// Capabilities returns the declared capabilities in declaration order.
func (c *Context) Capabilities() []Capability {
	return c.capabilities
}

// AddExtension declares an extension once.
func (c *Context) AddExtension(name string) {
	for _, existing := range c.extensions {
		if existing == name {
			return
		}
	}
	c.extensions = append(c.extensions, name)
}

// GetOrRegister returns the id of t, declaring it (and every type it
// depends on) on first use.
func (c *Context) GetOrRegister(t ir.SymbolType) uint32 {
	key := ir.TypeKey(t)
	if id, ok := c.typeIDs[key]; ok {
		return id
	}

	builder := NewInstructionBuilder()
	var opcode OpCode
	var id uint32

	switch inner := t.(type) {
	case ir.ScalarType:
		id = c.AllocID()
		builder.AddWord(id)
		switch inner.Kind {
		case ir.ScalarVoid:
			opcode = OpTypeVoid
		case ir.ScalarBool:
			opcode = OpTypeBool
		case ir.ScalarSint:
			opcode = OpTypeInt
			builder.AddWords(uint32(inner.Width)*8, 1)
		case ir.ScalarUint:
			opcode = OpTypeInt
			builder.AddWords(uint32(inner.Width)*8, 0)
		case ir.ScalarFloat:
			opcode = OpTypeFloat
			builder.AddWord(uint32(inner.Width) * 8)
		}
		switch {
		case inner.Kind == ir.ScalarFloat && inner.Width == 2:
			c.AddCapability(CapabilityFloat16)
		case inner.Kind == ir.ScalarFloat && inner.Width == 8:
			c.AddCapability(CapabilityFloat64)
		case (inner.Kind == ir.ScalarSint || inner.Kind == ir.ScalarUint) && inner.Width == 8:
			c.AddCapability(CapabilityInt64)
		}

	case ir.VectorType:
		scalarID := c.GetOrRegister(inner.Scalar)
		id = c.AllocID()
		opcode = OpTypeVector
		builder.AddWords(id, scalarID, inner.Size)

	case ir.MatrixType:
		columnID := c.GetOrRegister(inner.ColumnType())
		id = c.AllocID()
		opcode = OpTypeMatrix
		builder.AddWords(id, columnID, inner.Columns)

	case ir.ArrayType:
		baseID := c.GetOrRegister(inner.Base)
		lengthID := c.ConstantUint(inner.Size)
		id = c.AllocID()
		opcode = OpTypeArray
		builder.AddWords(id, baseID, lengthID)

	case ir.PatchType:
		// A patch is laid out as an array but keeps its own type id, so a
		// parameter declared with it stays distinguishable from a plain array.
		baseID := c.GetOrRegister(inner.Base)
		lengthID := c.ConstantUint(inner.Size)
		id = c.AllocID()
		opcode = OpTypeArray
		builder.AddWords(id, baseID, lengthID)

	case *ir.StructType:
		memberIDs := make([]uint32, len(inner.Fields))
		for i, field := range inner.Fields {
			memberIDs[i] = c.GetOrRegister(field.Type)
		}
		id = c.AllocID()
		opcode = OpTypeStruct
		builder.AddWord(id)
		builder.AddWords(memberIDs...)
		c.AddName(id, inner.Name)
		for i, field := range inner.Fields {
			c.AddMemberName(id, uint32(i), field.Name)
		}

	case ir.PointerType:
		baseID := c.GetOrRegister(inner.Base)
		id = c.AllocID()
		opcode = OpTypePointer
		builder.AddWords(id, uint32(addressSpaceToStorageClass(inner.Space)), baseID)

	case *ir.FunctionType:
		returnID := c.GetOrRegister(inner.ReturnType)
		paramIDs := make([]uint32, len(inner.Parameters))
		for i, param := range inner.Parameters {
			paramIDs[i] = c.GetOrRegister(param.Type)
		}
		id = c.AllocID()
		opcode = OpTypeFunction
		builder.AddWords(id, returnID)
		builder.AddWords(paramIDs...)

	default:
		panic(fmt.Sprintf("unknown symbol type: %T", t))
	}

	c.declarations.Add(builder.Build(opcode))
	c.typeIDs[key] = id
	c.idTypes[id] = t
	return id
}

// TypeOf returns the type registered under a type id, or the pointer
// type of a declared global variable.
func (c *Context) TypeOf(id uint32) (ir.SymbolType, bool) {
	t, ok := c.idTypes[id]
	return t, ok
}

// Constant returns the id of a scalar constant with the given bit
// pattern. Bool constants use zero for false. 64-bit types take bits as
// their low word; the high word is zero.
func (c *Context) Constant(t ir.ScalarType, bits uint32) uint32 {
	key := fmt.Sprintf("%s=%d", ir.TypeKey(t), bits)
	if id, ok := c.constants[key]; ok {
		return id
	}
	typeID := c.GetOrRegister(t)
	id := c.AllocID()
	switch {
	case t.Kind == ir.ScalarBool && bits != 0:
		c.declarations.Add(NewInstruction(OpConstantTrue, typeID, id))
	case t.Kind == ir.ScalarBool:
		c.declarations.Add(NewInstruction(OpConstantFalse, typeID, id))
	case t.Width == 8:
		c.declarations.Add(NewInstruction(OpConstant, typeID, id, bits, 0))
	default:
		c.declarations.Add(NewInstruction(OpConstant, typeID, id, bits))
	}
	c.constants[key] = id
	return id
}

// ConstantUint returns the id of a uint constant.
func (c *Context) ConstantUint(v uint32) uint32 {
	return c.Constant(ir.UInt, v)
}

// ConstantInt returns the id of an int constant.
func (c *Context) ConstantInt(v int32) uint32 {
	return c.Constant(ir.Int, uint32(v))
}

// ConstantFloat returns the id of a float constant.
func (c *Context) ConstantFloat(v float32) uint32 {
	return c.Constant(ir.Float, math.Float32bits(v))
}

// ZeroConstant returns the id of the zero value of a scalar, vector or
// array type.
func (c *Context) ZeroConstant(t ir.SymbolType) uint32 {
	switch t := t.(type) {
	case ir.ScalarType:
		return c.Constant(t, 0)
	case ir.VectorType:
		return c.composite(t, t.Size, c.Constant(t.Scalar, 0))
	case ir.ArrayType:
		return c.composite(t, t.Size, c.ZeroConstant(t.Base))
	}
	panic(fmt.Sprintf("no zero constant for %s", t))
}

func (c *Context) composite(t ir.SymbolType, n uint32, element uint32) uint32 {
	key := fmt.Sprintf("%s=zero", ir.TypeKey(t))
	if id, ok := c.constants[key]; ok {
		return id
	}
	typeID := c.GetOrRegister(t)
	id := c.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWords(typeID, id)
	for i := uint32(0); i < n; i++ {
		builder.AddWord(element)
	}
	c.declarations.Add(builder.Build(OpConstantComposite))
	c.constants[key] = id
	return id
}

// AddName adds a debug name.
func (c *Context) AddName(id uint32, name string) {
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(name)
	c.debugNames.Add(builder.Build(OpName))
	c.names[id] = name
}

// Name returns the debug name of id, if any.
func (c *Context) Name(id uint32) string {
	return c.names[id]
}

// AddMemberName adds a debug member name.
func (c *Context) AddMemberName(structID, member uint32, name string) {
	builder := NewInstructionBuilder()
	builder.AddWords(structID, member)
	builder.AddString(name)
	c.debugNames.Add(builder.Build(OpMemberName))
}

// Decorate adds a decoration.
func (c *Context) Decorate(id uint32, decoration Decoration, params ...uint32) Ref {
	builder := NewInstructionBuilder()
	builder.AddWords(id, uint32(decoration))
	builder.AddWords(params...)
	return c.annotations.Add(builder.Build(OpDecorate))
}

// DecorateString adds a decoration with a string operand.
func (c *Context) DecorateString(id uint32, decoration Decoration, value string) Ref {
	c.requireStringDecorations()
	builder := NewInstructionBuilder()
	builder.AddWords(id, uint32(decoration))
	builder.AddString(value)
	return c.annotations.Add(builder.Build(OpDecorateString))
}

// MemberDecorateString adds a member decoration with a string operand.
func (c *Context) MemberDecorateString(id, member uint32, decoration Decoration, value string) Ref {
	c.requireStringDecorations()
	builder := NewInstructionBuilder()
	builder.AddWords(id, member, uint32(decoration))
	builder.AddString(value)
	return c.annotations.Add(builder.Build(OpMemberDecorateString))
}

func (c *Context) requireStringDecorations() {
	c.AddExtension("SPV_GOOGLE_decorate_string")
	c.AddExtension("SPV_GOOGLE_hlsl_functionality1")
}

// Annotations exposes the decoration section for passes that consume
// intermediate decorations.
func (c *Context) Annotations() *Buffer {
	return c.annotations
}

// DeclareVariable declares a global variable of type t and names it.
func (c *Context) DeclareVariable(t ir.SymbolType, space ir.AddressSpace, name string) uint32 {
	ptrID := c.GetOrRegister(ir.PointerType{Base: t, Space: space})
	id := c.AllocID()
	c.declarations.Add(NewInstruction(OpVariable, ptrID, id, uint32(addressSpaceToStorageClass(space))))
	c.idTypes[id] = ir.PointerType{Base: t, Space: space}
	if name != "" {
		c.AddName(id, name)
	}
	return id
}

// AddEntryPoint adds an entry point.
func (c *Context) AddEntryPoint(model ExecutionModel, funcID uint32, name string, interfaces []uint32) {
	builder := NewInstructionBuilder()
	builder.AddWords(uint32(model), funcID)
	builder.AddString(name)
	builder.AddWords(interfaces...)
	c.entryPoints.Add(builder.Build(OpEntryPoint))
}

// AddExecutionMode adds an execution mode.
func (c *Context) AddExecutionMode(target uint32, mode ExecutionMode, params ...uint32) Ref {
	builder := NewInstructionBuilder()
	builder.AddWords(target, uint32(mode))
	builder.AddWords(params...)
	return c.executionModes.Add(builder.Build(OpExecutionMode))
}

// ExecutionModes exposes the execution mode section.
func (c *Context) ExecutionModes() *Buffer {
	return c.executionModes
}

// ExecutionModeOperand returns the first operand of the given execution
// mode declared on target.
func (c *Context) ExecutionModeOperand(target uint32, mode ExecutionMode) (uint32, bool) {
	var value uint32
	found := false
	c.executionModes.Each(func(_ Ref, inst Instruction) bool {
		if inst.Words[0] == target && ExecutionMode(inst.Words[1]) == mode && len(inst.Words) > 2 {
			value, found = inst.Words[2], true
			return false
		}
		return true
	})
	return value, found
}

// Assemble serializes the module with code as its function section.
func (c *Context) Assemble(code *Buffer) []byte {
	var capabilities, extensions []Instruction
	for _, capability := range c.capabilities {
		capabilities = append(capabilities, NewInstruction(OpCapability, uint32(capability)))
	}
	for _, name := range c.extensions {
		builder := NewInstructionBuilder()
		builder.AddString(name)
		extensions = append(extensions, builder.Build(OpExtension))
	}
	memoryModel := NewInstruction(OpMemoryModel, uint32(AddressingModelLogical), uint32(MemoryModelGLSL450))

	sections := [][]Instruction{
		capabilities,
		extensions,
		{memoryModel},
		c.entryPoints.Instructions(),
		c.executionModes.Instructions(),
		c.debugNames.Instructions(),
		c.annotations.Instructions(),
		c.declarations.Instructions(),
		code.Instructions(),
	}

	totalWords := 5 // header
	for _, section := range sections {
		totalWords += countWords(section)
	}

	buffer := make([]byte, totalWords*4)
	binary.LittleEndian.PutUint32(buffer[0:], MagicNumber)
	binary.LittleEndian.PutUint32(buffer[4:], versionToWord(c.Version))
	binary.LittleEndian.PutUint32(buffer[8:], GeneratorID)
	binary.LittleEndian.PutUint32(buffer[12:], c.nextID)
	binary.LittleEndian.PutUint32(buffer[16:], 0)

	offset := 20
	for _, section := range sections {
		offset = writeInstructions(buffer, offset, section)
	}
	return buffer
}

// addressSpaceToStorageClass maps IR address spaces to SPIR-V storage classes.
func addressSpaceToStorageClass(space ir.AddressSpace) StorageClass {
	switch space {
	case ir.SpaceFunction:
		return StorageClassFunction
	case ir.SpacePrivate:
		return StorageClassPrivate
	case ir.SpaceInput:
		return StorageClassInput
	case ir.SpaceOutput:
		return StorageClassOutput
	case ir.SpaceWorkGroup:
		return StorageClassWorkgroup
	case ir.SpaceUniform:
		return StorageClassUniform
	case ir.SpaceUniformConstant:
		return StorageClassUniformConstant
	case ir.SpaceStorage:
		return StorageClassStorageBuffer
	case ir.SpacePushConstant:
		return StorageClassPushConstant
	default:
		panic(fmt.Sprintf("unknown address space: %v", space))
	}
}

// StorageClassOf maps an IR address space to its SPIR-V storage class.
func StorageClassOf(space ir.AddressSpace) StorageClass {
	return addressSpaceToStorageClass(space)
}
