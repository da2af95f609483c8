package spirv

import (
	"fmt"
	"io"
	"strings"
)

var opcodeNames = map[uint32]string{
	0: "OpNop", 1: "OpUndef", 3: "OpSource", 5: "OpName", 6: "OpMemberName", 7: "OpString",
	10: "OpExtension", 11: "OpExtInstImport", 12: "OpExtInst",
	14: "OpMemoryModel", 15: "OpEntryPoint", 16: "OpExecutionMode",
	17: "OpCapability", 19: "OpTypeVoid", 20: "OpTypeBool",
	21: "OpTypeInt", 22: "OpTypeFloat", 23: "OpTypeVector",
	24: "OpTypeMatrix", 25: "OpTypeImage", 26: "OpTypeSampler",
	27: "OpTypeSampledImage", 28: "OpTypeArray", 29: "OpTypeRuntimeArray",
	30: "OpTypeStruct", 32: "OpTypePointer", 33: "OpTypeFunction",
	41: "OpConstantTrue", 42: "OpConstantFalse", 43: "OpConstant",
	44: "OpConstantComposite", 46: "OpConstantNull",
	54: "OpFunction", 55: "OpFunctionParameter", 56: "OpFunctionEnd",
	57: "OpFunctionCall", 59: "OpVariable", 61: "OpLoad", 62: "OpStore",
	63: "OpCopyMemory", 65: "OpAccessChain", 66: "OpInBoundsAccessChain",
	71: "OpDecorate", 72: "OpMemberDecorate",
	77: "OpVectorExtractDynamic", 78: "OpVectorInsertDynamic",
	79: "OpVectorShuffle", 80: "OpCompositeConstruct", 81: "OpCompositeExtract",
	82: "OpCompositeInsert", 83: "OpCopyObject", 84: "OpTranspose",
	109: "OpConvertFToU", 110: "OpConvertFToS", 111: "OpConvertSToF",
	112: "OpConvertUToF", 113: "OpUConvert", 114: "OpSConvert",
	115: "OpFConvert", 124: "OpBitcast",
	126: "OpSNegate", 127: "OpFNegate", 128: "OpIAdd", 129: "OpFAdd",
	130: "OpISub", 131: "OpFSub", 132: "OpIMul", 133: "OpFMul",
	134: "OpUDiv", 135: "OpSDiv", 136: "OpFDiv", 148: "OpDot",
	154: "OpAny", 155: "OpAll", 164: "OpLogicalEqual", 165: "OpLogicalNotEqual",
	166: "OpLogicalOr", 167: "OpLogicalAnd", 168: "OpLogicalNot",
	169: "OpSelect", 170: "OpIEqual", 171: "OpINotEqual",
	172: "OpUGreaterThan", 173: "OpSGreaterThan", 176: "OpULessThan", 177: "OpSLessThan",
	180: "OpFOrdEqual", 182: "OpFOrdNotEqual",
	224: "OpControlBarrier", 225: "OpMemoryBarrier",
	245: "OpPhi", 246: "OpLoopMerge", 247: "OpSelectionMerge",
	248: "OpLabel", 249: "OpBranch", 250: "OpBranchConditional",
	251: "OpSwitch", 252: "OpKill", 253: "OpReturn", 254: "OpReturnValue",
	255: "OpUnreachable",
	5632: "OpDecorateString", 5633: "OpMemberDecorateString",
}

var capabilityNames = map[uint32]string{
	0: "Matrix", 1: "Shader", 2: "Geometry", 3: "Tessellation",
	32: "ClipDistance", 33: "CullDistance", 35: "SampleRateShading",
	4422: "FragmentShadingRateKHR", 4439: "MultiView",
	5013: "StencilExportEXT", 5265: "FragmentFullyCoveredEXT",
	5284: "FragmentBarycentricKHR",
}

var storageClassNames = map[uint32]string{
	0: "UniformConstant", 1: "Input", 2: "Uniform", 3: "Output",
	4: "Workgroup", 5: "CrossWorkgroup", 6: "Private", 7: "Function",
	8: "Generic", 9: "PushConstant", 10: "AtomicCounter", 11: "Image",
	12: "StorageBuffer",
}

var decorationNames = map[uint32]string{
	0: "RelaxedPrecision", 1: "SpecId", 2: "Block", 3: "BufferBlock",
	4: "RowMajor", 5: "ColMajor", 6: "ArrayStride", 7: "MatrixStride",
	11: "BuiltIn", 13: "NoPerspective", 14: "Flat", 15: "Patch",
	16: "Centroid", 17: "Sample", 18: "Invariant",
	30: "Location", 31: "Component", 32: "Index",
	33: "Binding", 34: "DescriptorSet", 35: "Offset",
	5635: "UserSemantic",
}

var builtinNames = map[uint32]string{
	0: "Position", 1: "PointSize", 3: "ClipDistance", 4: "CullDistance",
	5: "VertexId", 6: "InstanceId", 7: "PrimitiveId", 8: "InvocationId",
	9: "Layer", 10: "ViewportIndex", 11: "TessLevelOuter", 12: "TessLevelInner",
	13: "TessCoord", 14: "PatchVertices", 15: "FragCoord", 16: "PointCoord",
	17: "FrontFacing", 18: "SampleId", 19: "SamplePosition", 20: "SampleMask",
	22: "FragDepth", 23: "HelperInvocation", 24: "NumWorkgroups",
	25: "WorkgroupSize", 26: "WorkgroupId", 27: "LocalInvocationId",
	28: "GlobalInvocationId", 29: "LocalInvocationIndex",
	42: "VertexIndex", 43: "InstanceIndex",
	4432: "PrimitiveShadingRateKHR", 4440: "ViewIndex", 4444: "ShadingRateKHR",
	5014: "FragStencilRefEXT", 5264: "FullyCoveredEXT", 5286: "BaryCoordKHR",
	5299: "CullPrimitiveEXT",
}

var executionModeNames = map[uint32]string{
	0: "Invocations", 1: "SpacingEqual", 2: "SpacingFractionalEven",
	3: "SpacingFractionalOdd", 4: "VertexOrderCw", 5: "VertexOrderCcw",
	6: "PixelCenterInteger", 7: "OriginUpperLeft", 8: "OriginLowerLeft",
	9: "EarlyFragmentTests", 10: "PointMode", 11: "Xfb", 12: "DepthReplacing",
	14: "DepthGreater", 15: "DepthLess", 16: "DepthUnchanged",
	17: "LocalSize", 18: "LocalSizeHint", 19: "InputPoints", 20: "InputLines",
	21: "InputLinesAdjacency", 22: "Triangles", 23: "InputTrianglesAdjacency",
	24: "Quads", 25: "Isolines", 26: "OutputVertices", 27: "OutputPoints",
	28: "OutputLineStrip", 29: "OutputTriangleStrip",
}

var executionModelNames = map[uint32]string{
	0: "Vertex", 1: "TessellationControl", 2: "TessellationEvaluation",
	3: "Geometry", 4: "Fragment", 5: "GLCompute", 6: "Kernel",
}

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", v)
}

func (op OpCode) String() string {
	if s, ok := opcodeNames[uint32(op)]; ok {
		return s
	}
	return fmt.Sprintf("Op%d", op)
}

func id(n uint32) string {
	return fmt.Sprintf("%%%d", n)
}

func ids(words []uint32) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = id(w)
	}
	return strings.Join(parts, " ")
}

func literals(words []uint32) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("%d", w)
	}
	return strings.Join(parts, " ")
}

// Disassemble writes a textual listing of a SPIR-V binary to w.
func Disassemble(w io.Writer, data []byte) error {
	m, err := Decode(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "; SPIR-V\n")
	fmt.Fprintf(w, "; Version: %d.%d\n", m.Header.Version.Major, m.Header.Version.Minor)
	fmt.Fprintf(w, "; Generator: 0x%08X\n", m.Header.Generator)
	fmt.Fprintf(w, "; Bound: %d\n", m.Header.Bound)
	fmt.Fprintf(w, "; Schema: %d\n", m.Header.Schema)
	fmt.Fprintln(w)

	for _, inst := range m.Instructions {
		fmt.Fprintln(w, FormatInstruction(inst))
	}
	return nil
}

// DisassembleString returns the listing of a SPIR-V binary.
func DisassembleString(data []byte) (string, error) {
	var sb strings.Builder
	if err := Disassemble(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatInstruction renders one instruction in assembly syntax.
//
//nolint:gocyclo,cyclop,funlen // one case per opcode shape
func FormatInstruction(inst Instruction) string {
	name := inst.Opcode.String()
	ops := inst.Words
	result := func(resultID uint32, rest string) string {
		return fmt.Sprintf("%12s = %s", id(resultID), strings.TrimSpace(name+" "+rest))
	}
	plain := func(rest string) string {
		return fmt.Sprintf("%15s%s", "", strings.TrimSpace(name+" "+rest))
	}

	switch inst.Opcode {
	case OpCapability:
		return plain(lookup(capabilityNames, ops[0]))

	case OpExtension:
		s, _ := DecodeString(ops)
		return plain(fmt.Sprintf("%q", s))

	case OpExtInstImport:
		s, _ := DecodeString(ops[1:])
		return result(ops[0], fmt.Sprintf("%q", s))

	case OpMemoryModel:
		addressing := map[uint32]string{0: "Logical", 1: "Physical32", 2: "Physical64"}
		memory := map[uint32]string{0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan"}
		return plain(lookup(addressing, ops[0]) + " " + lookup(memory, ops[1]))

	case OpEntryPoint:
		s, n := DecodeString(ops[2:])
		return plain(fmt.Sprintf("%s %s %q %s", lookup(executionModelNames, ops[0]), id(ops[1]), s, ids(ops[2+n:])))

	case OpExecutionMode:
		return plain(fmt.Sprintf("%s %s %s", id(ops[0]), lookup(executionModeNames, ops[1]), literals(ops[2:])))

	case OpName:
		s, _ := DecodeString(ops[1:])
		return plain(fmt.Sprintf("%s %q", id(ops[0]), s))

	case OpMemberName:
		s, _ := DecodeString(ops[2:])
		return plain(fmt.Sprintf("%s %d %q", id(ops[0]), ops[1], s))

	case OpDecorate:
		rest := fmt.Sprintf("%s %s", id(ops[0]), lookup(decorationNames, ops[1]))
		if Decoration(ops[1]) == DecorationBuiltIn && len(ops) > 2 {
			return plain(rest + " " + lookup(builtinNames, ops[2]))
		}
		return plain(rest + " " + literals(ops[2:]))

	case OpMemberDecorate:
		return plain(fmt.Sprintf("%s %d %s %s", id(ops[0]), ops[1], lookup(decorationNames, ops[2]), literals(ops[3:])))

	case OpDecorateString:
		s, _ := DecodeString(ops[2:])
		return plain(fmt.Sprintf("%s %s %q", id(ops[0]), lookup(decorationNames, ops[1]), s))

	case OpMemberDecorateString:
		s, _ := DecodeString(ops[3:])
		return plain(fmt.Sprintf("%s %d %s %q", id(ops[0]), ops[1], lookup(decorationNames, ops[2]), s))

	case OpTypeVoid, OpTypeBool, OpLabel:
		return result(ops[0], "")

	case OpTypeInt, OpTypeFloat:
		return result(ops[0], literals(ops[1:]))

	case OpTypeVector, OpTypeMatrix:
		return result(ops[0], fmt.Sprintf("%s %d", id(ops[1]), ops[2]))

	case OpTypeArray, OpTypeStruct, OpTypeFunction:
		return result(ops[0], ids(ops[1:]))

	case OpTypePointer:
		return result(ops[0], fmt.Sprintf("%s %s", lookup(storageClassNames, ops[1]), id(ops[2])))

	case OpConstant:
		return result(ops[1], fmt.Sprintf("%s %s", id(ops[0]), literals(ops[2:])))

	case OpFunction:
		return result(ops[1], fmt.Sprintf("%s None %s", id(ops[0]), id(ops[3])))

	case OpVariable:
		rest := fmt.Sprintf("%s %s", id(ops[0]), lookup(storageClassNames, ops[2]))
		if len(ops) > 3 {
			rest += " " + id(ops[3])
		}
		return result(ops[1], rest)

	case OpCompositeExtract:
		return result(ops[1], fmt.Sprintf("%s %s %s", id(ops[0]), id(ops[2]), literals(ops[3:])))

	case OpVectorShuffle:
		return result(ops[1], fmt.Sprintf("%s %s %s %s", id(ops[0]), id(ops[2]), id(ops[3]), literals(ops[4:])))

	case OpSelectionMerge:
		return plain(fmt.Sprintf("%s None", id(ops[0])))

	case OpStore, OpBranch, OpBranchConditional, OpReturnValue, OpControlBarrier:
		return plain(ids(ops))

	case OpReturn, OpFunctionEnd, OpKill, OpNop:
		return plain("")
	}

	// Generic fallback: result type, result id, id operands.
	if len(ops) >= 2 {
		return result(ops[1], ids(append([]uint32{ops[0]}, ops[2:]...)))
	}
	return plain(ids(ops))
}
