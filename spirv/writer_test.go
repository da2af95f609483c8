package spirv

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/spvwrap/ir"
)

func TestContext_MinimalModule(t *testing.T) {
	ctx := NewContext()
	data := ctx.Assemble(NewBuffer())

	// Header (5 words) + OpCapability Shader (2) + OpMemoryModel (3)
	if len(data) != (5+2+3)*4 {
		t.Fatalf("Expected %d bytes, got %d", (5+2+3)*4, len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		t.Errorf("Expected magic 0x%08X, got 0x%08X", MagicNumber, magic)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	expectedVersion := uint32(1<<16 | 4<<8)
	if version != expectedVersion {
		t.Errorf("Expected version 0x%08X, got 0x%08X", expectedVersion, version)
	}

	bound := binary.LittleEndian.Uint32(data[12:16])
	if bound != ctx.Bound() {
		t.Errorf("Expected bound %d, got %d", ctx.Bound(), bound)
	}

	schema := binary.LittleEndian.Uint32(data[16:20])
	if schema != 0 {
		t.Errorf("Expected schema 0, got %d", schema)
	}

	t.Logf("Generated minimal SPIR-V module: %d bytes", len(data))
}

func TestContext_SectionOrder(t *testing.T) {
	ctx := NewContext()
	code := NewBuffer()
	b := NewCodeBuilder(ctx, code)

	fn := b.AddFunction(&ir.FunctionType{ReturnType: ir.Void}, FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	position := ctx.DeclareVariable(ir.VectorType{Scalar: ir.Float, Size: 4}, ir.SpaceOutput, "out_Position")
	ctx.DecorateBuiltin(position, BuiltInPosition)
	ctx.DecorateString(position, DecorationUserSemantic, "SV_Position")
	ctx.AddExecutionMode(fn, ExecutionModeOriginUpperLeft)
	ctx.AddEntryPoint(ExecutionModelFragment, fn, "main", []uint32{position})

	m, err := Decode(ctx.Assemble(code))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	order := []OpCode{
		OpCapability, OpExtension, OpMemoryModel, OpEntryPoint, OpExecutionMode,
		OpName, OpDecorate, OpTypeVoid, OpFunction,
	}
	pos := 0
	for _, inst := range m.Instructions {
		if pos < len(order) && inst.Opcode == order[pos] {
			pos++
		}
	}
	if pos != len(order) {
		t.Errorf("Expected sections in order, stopped at %v", order[pos])
	}

	if n := m.Count(OpExtension); n != 2 {
		t.Errorf("Expected 2 extensions for string decorations, got %d", n)
	}
	if m.Header.Bound != ctx.Bound() {
		t.Errorf("Expected bound %d, got %d", ctx.Bound(), m.Header.Bound)
	}
}

func TestContext_TypeDeduplication(t *testing.T) {
	ctx := NewContext()
	vec4 := ir.VectorType{Scalar: ir.Float, Size: 4}

	first := ctx.GetOrRegister(vec4)
	second := ctx.GetOrRegister(ir.VectorType{Scalar: ir.Float, Size: 4})
	if first != second {
		t.Errorf("Expected same ID for identical types, got %d and %d", first, second)
	}

	// float, vec4 and nothing else
	m, err := Decode(ctx.Assemble(NewBuffer()))
	if err != nil {
		t.Fatal(err)
	}
	if n := m.Count(OpTypeFloat) + m.Count(OpTypeVector); n != 2 {
		t.Errorf("Expected 2 type declarations, got %d", n)
	}

	got, ok := ctx.TypeOf(first)
	if !ok || !ir.Equal(got, vec4) {
		t.Errorf("TypeOf(%d) = %v, %v", first, got, ok)
	}
}

func TestContext_StructNames(t *testing.T) {
	ctx := NewContext()
	s := &ir.StructType{Name: "VS_STREAMS", Fields: []ir.StructField{
		{Name: "Position", Type: ir.VectorType{Scalar: ir.Float, Size: 4}},
		{Name: "InstanceID", Type: ir.UInt},
	}}
	id := ctx.GetOrRegister(s)

	m, err := Decode(ctx.Assemble(NewBuffer()))
	if err != nil {
		t.Fatal(err)
	}
	if name := m.Name(id); name != "VS_STREAMS" {
		t.Errorf("Expected struct name VS_STREAMS, got %q", name)
	}
	if n := m.Count(OpMemberName); n != 2 {
		t.Errorf("Expected 2 member names, got %d", n)
	}
}

func TestContext_ConstantDeduplication(t *testing.T) {
	ctx := NewContext()
	if ctx.ConstantUint(3) != ctx.ConstantUint(3) {
		t.Error("Expected same ID for identical constants")
	}
	if ctx.ConstantUint(3) == ctx.ConstantInt(3) {
		t.Error("Expected different IDs for uint and int constants")
	}
	if ctx.ZeroConstant(ir.VectorType{Scalar: ir.Float, Size: 3}) != ctx.ZeroConstant(ir.VectorType{Scalar: ir.Float, Size: 3}) {
		t.Error("Expected zero composites to be interned")
	}
}

func TestContext_WideConstants(t *testing.T) {
	ctx := NewContext()
	double := ir.ScalarType{Kind: ir.ScalarFloat, Width: 8}
	zero := ctx.ZeroConstant(double)
	one := ctx.ConstantFloat(1)

	m, err := Decode(ctx.Assemble(NewBuffer()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	words := map[uint32]int{}
	for _, inst := range m.Filter(OpConstant) {
		words[inst.Words[1]] = len(inst.Words) - 2
	}
	if words[zero] != 2 {
		t.Errorf("Expected a two-word double constant, got %d words", words[zero])
	}
	if words[one] != 1 {
		t.Errorf("Expected a one-word float constant, got %d words", words[one])
	}

	hasFloat64 := false
	for _, inst := range m.Filter(OpCapability) {
		if Capability(inst.Words[0]) == CapabilityFloat64 {
			hasFloat64 = true
		}
	}
	if !hasFloat64 {
		t.Error("Expected Float64 capability for a double type")
	}
}

func TestContext_ExecutionModeOperand(t *testing.T) {
	ctx := NewContext()
	ctx.AddExecutionMode(7, ExecutionModeTriangles)
	ctx.AddExecutionMode(7, ExecutionModeOutputVertices, 4)

	if v, ok := ctx.ExecutionModeOperand(7, ExecutionModeOutputVertices); !ok || v != 4 {
		t.Errorf("ExecutionModeOperand = %d, %v; want 4, true", v, ok)
	}
	if _, ok := ctx.ExecutionModeOperand(7, ExecutionModeTriangles); ok {
		t.Error("Expected no operand for Triangles")
	}
	if _, ok := ctx.ExecutionModeOperand(8, ExecutionModeOutputVertices); ok {
		t.Error("Expected no mode on another target")
	}
}

func TestInstructionBuilder_String(t *testing.T) {
	builder := NewInstructionBuilder()
	builder.AddString("main")
	inst := builder.Build(OpName)

	// "main" + null terminator = 5 bytes, padded to 8 (2 words)
	if len(inst.Words) != 2 {
		t.Errorf("Expected 2 words for 'main', got %d", len(inst.Words))
	}

	s, n := DecodeString(inst.Words)
	if s != "main" || n != 2 {
		t.Errorf("DecodeString = %q, %d; want \"main\", 2", s, n)
	}
}

func TestInstructionBuilder_StringWordBoundary(t *testing.T) {
	builder := NewInstructionBuilder()
	builder.AddString("abcd")
	inst := builder.Build(OpName)

	// Four characters need a whole word for the terminator.
	if len(inst.Words) != 2 {
		t.Errorf("Expected 2 words for 'abcd', got %d", len(inst.Words))
	}
	if inst.Words[1] != 0 {
		t.Errorf("Expected terminator word 0, got 0x%08X", inst.Words[1])
	}
}

func TestInstruction_Encode(t *testing.T) {
	inst := NewInstruction(OpStore, 5, 6)
	words := inst.Encode()
	if len(words) != 3 {
		t.Fatalf("Expected 3 words, got %d", len(words))
	}
	if words[0] != (3<<16)|uint32(OpStore) {
		t.Errorf("Expected opcode word 0x%08X, got 0x%08X", (3<<16)|uint32(OpStore), words[0])
	}
}

func TestContext_IDAllocation(t *testing.T) {
	ctx := NewContext()

	id1 := ctx.AllocID()
	id2 := ctx.AllocID()
	id3 := ctx.AllocID()

	if id1 != 1 || id2 != 2 || id3 != 3 {
		t.Errorf("Expected sequential IDs 1, 2, 3, got %d, %d, %d", id1, id2, id3)
	}
	if ctx.Bound() != 4 {
		t.Errorf("Expected bound 4, got %d", ctx.Bound())
	}
}
