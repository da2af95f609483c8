package spirv

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Before reports whether v is an earlier version than o.
func (v Version) Before(o Version) bool {
	return v.Major < o.Major || (v.Major == o.Major && v.Minor < o.Minor)
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

// SPIR-V magic number and constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes used by the interface adapter and its tests.
const (
	OpNop                  OpCode = 0
	OpUndef                OpCode = 1
	OpSource               OpCode = 3
	OpName                 OpCode = 5
	OpMemberName           OpCode = 6
	OpString               OpCode = 7
	OpExtension            OpCode = 10
	OpExtInstImport        OpCode = 11
	OpExtInst              OpCode = 12
	OpMemoryModel          OpCode = 14
	OpEntryPoint           OpCode = 15
	OpExecutionMode        OpCode = 16
	OpCapability           OpCode = 17
	OpTypeVoid             OpCode = 19
	OpTypeBool             OpCode = 20
	OpTypeInt              OpCode = 21
	OpTypeFloat            OpCode = 22
	OpTypeVector           OpCode = 23
	OpTypeMatrix           OpCode = 24
	OpTypeArray            OpCode = 28
	OpTypeStruct           OpCode = 30
	OpTypePointer          OpCode = 32
	OpTypeFunction         OpCode = 33
	OpConstantTrue         OpCode = 41
	OpConstantFalse        OpCode = 42
	OpConstant             OpCode = 43
	OpConstantComposite    OpCode = 44
	OpConstantNull         OpCode = 46
	OpFunction             OpCode = 54
	OpFunctionParameter    OpCode = 55
	OpFunctionEnd          OpCode = 56
	OpFunctionCall         OpCode = 57
	OpVariable             OpCode = 59
	OpLoad                 OpCode = 61
	OpStore                OpCode = 62
	OpAccessChain          OpCode = 65
	OpDecorate             OpCode = 71
	OpMemberDecorate       OpCode = 72
	OpVectorShuffle        OpCode = 79
	OpCompositeConstruct   OpCode = 80
	OpCompositeExtract     OpCode = 81
	OpConvertFToU          OpCode = 109
	OpConvertFToS          OpCode = 110
	OpConvertSToF          OpCode = 111
	OpConvertUToF          OpCode = 112
	OpUConvert             OpCode = 113
	OpSConvert             OpCode = 114
	OpFConvert             OpCode = 115
	OpBitcast              OpCode = 124
	OpSelect               OpCode = 169
	OpIEqual               OpCode = 170
	OpINotEqual            OpCode = 171
	OpFOrdNotEqual         OpCode = 182
	OpControlBarrier       OpCode = 224
	OpLoopMerge            OpCode = 246
	OpSelectionMerge       OpCode = 247
	OpLabel                OpCode = 248
	OpBranch               OpCode = 249
	OpBranchConditional    OpCode = 250
	OpKill                 OpCode = 252
	OpReturn               OpCode = 253
	OpReturnValue          OpCode = 254
	OpDecorateString       OpCode = 5632
	OpMemberDecorateString OpCode = 5633
)

// Capability represents a SPIR-V capability.
type Capability uint32

// Capabilities
const (
	CapabilityMatrix       Capability = 0
	CapabilityShader       Capability = 1
	CapabilityGeometry     Capability = 2
	CapabilityTessellation Capability = 3
	CapabilityFloat16      Capability = 9
	CapabilityFloat64      Capability = 10
	CapabilityInt64        Capability = 11
	CapabilityClipDistance Capability = 32
	CapabilityCullDistance Capability = 33
	CapabilitySampleRate   Capability = 35
	CapabilityMultiView    Capability = 4439
)

// AddressingModel represents a SPIR-V addressing model.
type AddressingModel uint32

const (
	AddressingModelLogical AddressingModel = 0
)

// MemoryModel represents a SPIR-V memory model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
)

// ExecutionModel represents a SPIR-V execution model (shader stage).
type ExecutionModel uint32

const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5
)

// StageID returns the short stage code used in generated symbol names
// (VS, HS, DS, GS, PS, CS).
func (m ExecutionModel) StageID() string {
	switch m {
	case ExecutionModelVertex:
		return "VS"
	case ExecutionModelTessellationControl:
		return "HS"
	case ExecutionModelTessellationEvaluation:
		return "DS"
	case ExecutionModelGeometry:
		return "GS"
	case ExecutionModelFragment:
		return "PS"
	case ExecutionModelGLCompute:
		return "CS"
	}
	return "??"
}

func (m ExecutionModel) String() string {
	return lookup(executionModelNames, uint32(m))
}

// ExecutionMode represents a SPIR-V execution mode.
type ExecutionMode uint32

const (
	ExecutionModeInvocations             ExecutionMode = 0
	ExecutionModeSpacingEqual            ExecutionMode = 1
	ExecutionModeVertexOrderCw           ExecutionMode = 4
	ExecutionModeVertexOrderCcw          ExecutionMode = 5
	ExecutionModeOriginUpperLeft         ExecutionMode = 7
	ExecutionModeDepthReplacing          ExecutionMode = 12
	ExecutionModeLocalSize               ExecutionMode = 17
	ExecutionModeInputPoints             ExecutionMode = 19
	ExecutionModeInputLines              ExecutionMode = 20
	ExecutionModeInputLinesAdjacency     ExecutionMode = 21
	ExecutionModeTriangles               ExecutionMode = 22
	ExecutionModeInputTrianglesAdjacency ExecutionMode = 23
	ExecutionModeQuads                   ExecutionMode = 24
	ExecutionModeIsolines                ExecutionMode = 25
	ExecutionModeOutputVertices          ExecutionMode = 26
	ExecutionModeOutputPoints            ExecutionMode = 27
	ExecutionModeOutputLineStrip         ExecutionMode = 28
	ExecutionModeOutputTriangleStrip     ExecutionMode = 29
)

func (m ExecutionMode) String() string {
	return lookup(executionModeNames, uint32(m))
}

// StorageClass represents a SPIR-V storage class.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassPushConstant    StorageClass = 9
	StorageClassStorageBuffer   StorageClass = 12
)

func (s StorageClass) String() string {
	return lookup(storageClassNames, uint32(s))
}

// Decoration represents a SPIR-V decoration.
type Decoration uint32

const (
	DecorationBlock         Decoration = 2
	DecorationRowMajor      Decoration = 4
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationNoPerspective Decoration = 13
	DecorationFlat          Decoration = 14
	DecorationPatch         Decoration = 15
	DecorationCentroid      Decoration = 16
	DecorationSample        Decoration = 17
	DecorationLocation      Decoration = 30
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
	DecorationUserSemantic  Decoration = 5635
)

func (d Decoration) String() string {
	return lookup(decorationNames, uint32(d))
}

// BuiltIn represents a SPIR-V built-in variable.
type BuiltIn uint32

const (
	BuiltInPosition                BuiltIn = 0
	BuiltInPointSize               BuiltIn = 1
	BuiltInClipDistance            BuiltIn = 3
	BuiltInCullDistance            BuiltIn = 4
	BuiltInPrimitiveID             BuiltIn = 7
	BuiltInInvocationID            BuiltIn = 8
	BuiltInLayer                   BuiltIn = 9
	BuiltInViewportIndex           BuiltIn = 10
	BuiltInTessLevelOuter          BuiltIn = 11
	BuiltInTessLevelInner          BuiltIn = 12
	BuiltInTessCoord               BuiltIn = 13
	BuiltInPatchVertices           BuiltIn = 14
	BuiltInFragCoord               BuiltIn = 15
	BuiltInPointCoord              BuiltIn = 16
	BuiltInFrontFacing             BuiltIn = 17
	BuiltInSampleID                BuiltIn = 18
	BuiltInSamplePosition          BuiltIn = 19
	BuiltInSampleMask              BuiltIn = 20
	BuiltInFragDepth               BuiltIn = 22
	BuiltInNumWorkgroups           BuiltIn = 24
	BuiltInWorkgroupID             BuiltIn = 26
	BuiltInLocalInvocationID       BuiltIn = 27
	BuiltInGlobalInvocationID      BuiltIn = 28
	BuiltInLocalInvocationIndex    BuiltIn = 29
	BuiltInVertexIndex             BuiltIn = 42
	BuiltInInstanceIndex           BuiltIn = 43
	BuiltInPrimitiveShadingRateKHR BuiltIn = 4432
	BuiltInViewIndex               BuiltIn = 4440
	BuiltInShadingRateKHR          BuiltIn = 4444
	BuiltInFragStencilRefEXT       BuiltIn = 5014
	BuiltInFullyCoveredEXT         BuiltIn = 5264
	BuiltInBaryCoordKHR            BuiltIn = 5286
	BuiltInCullPrimitiveEXT        BuiltIn = 5299
)

func (b BuiltIn) String() string {
	return lookup(builtinNames, uint32(b))
}

// FunctionControl represents function control flags.
type FunctionControl uint32

const (
	FunctionControlNone FunctionControl = 0
)

// SelectionControl represents selection control flags.
type SelectionControl uint32

const (
	SelectionControlNone SelectionControl = 0
)

// Scope represents a SPIR-V execution or memory scope.
type Scope uint32

const (
	ScopeDevice     Scope = 1
	ScopeWorkgroup  Scope = 2
	ScopeSubgroup   Scope = 3
	ScopeInvocation Scope = 4
)

// MemorySemantics represents SPIR-V memory semantics flags.
type MemorySemantics uint32

const (
	MemorySemanticsNone MemorySemantics = 0
)
