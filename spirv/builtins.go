package spirv

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvwrap/ir"
)

// BuiltinBinding is the result of resolving a system-value semantic.
type BuiltinBinding struct {
	BuiltIn BuiltIn
	// Type is the native type of the built-in variable. It can differ from
	// the type the shader asked for; values are converted at the boundary.
	Type ir.SymbolType
}

// NormalizeSemantic upper-cases a semantic and strips the index suffix of
// system values that accept one (SV_ClipDistance0 -> SV_CLIPDISTANCE).
func NormalizeSemantic(semantic string) string {
	s := strings.ToUpper(semantic)
	if !strings.HasPrefix(s, "SV_") {
		return s
	}
	end := len(s)
	for end > 3 && s[end-1] >= '0' && s[end-1] <= '9' {
		end--
	}
	switch s[:end] {
	case "SV_CLIPDISTANCE", "SV_CULLDISTANCE", "SV_TARGET":
		return s[:end]
	}
	return s
}

// SemanticIndex returns the numeric suffix of a semantic, or 0.
func SemanticIndex(semantic string) uint32 {
	end := len(semantic)
	start := end
	for start > 0 && semantic[start-1] >= '0' && semantic[start-1] <= '9' {
		start--
	}
	var n uint32
	for _, c := range semantic[start:end] {
		n = n*10 + uint32(c-'0')
	}
	return n
}

// LookupBuiltin resolves a semantic for the given stage and direction.
//
// It reports false when the semantic is not a built-in, in which case the
// variable is an ordinary user varying. A system-value semantic that the
// stage cannot read or write in that direction is an error.
//
//nolint:gocyclo,cyclop,funlen // one case per system value
func LookupBuiltin(model ExecutionModel, class StorageClass, semantic string, requested ir.SymbolType) (BuiltinBinding, bool, error) {
	sem := NormalizeSemantic(semantic)
	input := class == StorageClassInput
	output := class == StorageClassOutput

	var b BuiltinBinding
	valid := true
	switch sem {
	case "SV_POSITION":
		b.BuiltIn = BuiltInPosition
		if input && model == ExecutionModelFragment {
			b.BuiltIn = BuiltInFragCoord
		}
		b.Type = ir.VectorType{Scalar: ir.Float, Size: 4}
	case "SV_CLIPDISTANCE":
		b = BuiltinBinding{BuiltInClipDistance, floatArray(requested)}
	case "SV_CULLDISTANCE":
		b = BuiltinBinding{BuiltInCullDistance, floatArray(requested)}
	case "SV_VERTEXID":
		valid = input && model == ExecutionModelVertex
		b = BuiltinBinding{BuiltInVertexIndex, integerScalar(requested)}
	case "SV_INSTANCEID":
		valid = input && model == ExecutionModelVertex
		b = BuiltinBinding{BuiltInInstanceIndex, integerScalar(requested)}
	case "SV_DEPTH", "SV_DEPTHGREATEREQUAL", "SV_DEPTHLESSEQUAL":
		valid = output && model == ExecutionModelFragment
		b = BuiltinBinding{BuiltInFragDepth, ir.Float}
	case "SV_ISFRONTFACE":
		valid = input && model == ExecutionModelFragment
		b = BuiltinBinding{BuiltInFrontFacing, ir.Bool}
	case "SV_DISPATCHTHREADID":
		valid = input && model == ExecutionModelGLCompute
		b = BuiltinBinding{BuiltInGlobalInvocationID, uint3}
	case "SV_GROUPID":
		valid = input && model == ExecutionModelGLCompute
		b = BuiltinBinding{BuiltInWorkgroupID, uint3}
	case "SV_GROUPTHREADID":
		valid = input && model == ExecutionModelGLCompute
		b = BuiltinBinding{BuiltInLocalInvocationID, uint3}
	case "SV_GROUPINDEX":
		valid = input && model == ExecutionModelGLCompute
		b = BuiltinBinding{BuiltInLocalInvocationIndex, ir.UInt}
	case "SV_OUTPUTCONTROLPOINTID":
		valid = input && model == ExecutionModelTessellationControl
		b = BuiltinBinding{BuiltInInvocationID, integerScalar(requested)}
	case "SV_GSINSTANCEID":
		valid = input && model == ExecutionModelGeometry
		b = BuiltinBinding{BuiltInInvocationID, integerScalar(requested)}
	case "SV_DOMAINLOCATION":
		valid = input && model == ExecutionModelTessellationEvaluation
		b = BuiltinBinding{BuiltInTessCoord, ir.VectorType{Scalar: ir.Float, Size: 3}}
	case "SV_PRIMITIVEID":
		valid = input || model == ExecutionModelGeometry
		b = BuiltinBinding{BuiltInPrimitiveID, integerScalar(requested)}
	case "SV_TESSFACTOR":
		valid = (output && model == ExecutionModelTessellationControl) ||
			(input && model == ExecutionModelTessellationEvaluation)
		b = BuiltinBinding{BuiltInTessLevelOuter, ir.ArrayType{Base: ir.Float, Size: 4}}
	case "SV_INSIDETESSFACTOR":
		valid = (output && model == ExecutionModelTessellationControl) ||
			(input && model == ExecutionModelTessellationEvaluation)
		b = BuiltinBinding{BuiltInTessLevelInner, ir.ArrayType{Base: ir.Float, Size: 2}}
	case "SV_SAMPLEINDEX":
		valid = input && model == ExecutionModelFragment
		b = BuiltinBinding{BuiltInSampleID, integerScalar(requested)}
	case "SV_STENCILREF":
		valid = output && model == ExecutionModelFragment
		b = BuiltinBinding{BuiltInFragStencilRefEXT, integerScalar(requested)}
	case "SV_BARYCENTRICS":
		valid = input && model == ExecutionModelFragment
		b = BuiltinBinding{BuiltInBaryCoordKHR, ir.VectorType{Scalar: ir.Float, Size: 3}}
	case "SV_RENDERTARGETARRAYINDEX":
		b = BuiltinBinding{BuiltInLayer, integerScalar(requested)}
	case "SV_VIEWPORTARRAYINDEX":
		b = BuiltinBinding{BuiltInViewportIndex, integerScalar(requested)}
	case "SV_COVERAGE":
		valid = model == ExecutionModelFragment
		b = BuiltinBinding{BuiltInSampleMask, ir.ArrayType{Base: ir.UInt, Size: 1}}
	case "SV_INNERCOVERAGE":
		valid = input && model == ExecutionModelFragment
		b = BuiltinBinding{BuiltInFullyCoveredEXT, ir.Bool}
	case "SV_VIEWID":
		valid = input
		b = BuiltinBinding{BuiltInViewIndex, integerScalar(requested)}
	case "SV_SHADINGRATE":
		switch {
		case output:
			b = BuiltinBinding{BuiltInPrimitiveShadingRateKHR, integerScalar(requested)}
		case input && model == ExecutionModelFragment:
			b = BuiltinBinding{BuiltInShadingRateKHR, integerScalar(requested)}
		default:
			valid = false
		}
	case "SV_CULLPRIMITIVE":
		valid = output
		b = BuiltinBinding{BuiltInCullPrimitiveEXT, ir.Bool}
	default:
		return BuiltinBinding{}, false, nil
	}

	if !valid {
		return BuiltinBinding{}, false, fmt.Errorf("semantic %s is not available as %s in %s stage", semantic, class, model)
	}
	return b, true, nil
}

var uint3 = ir.VectorType{Scalar: ir.UInt, Size: 3}

// integerScalar keeps a requested 32-bit integer type and falls back to int.
func integerScalar(requested ir.SymbolType) ir.SymbolType {
	if s, ok := requested.(ir.ScalarType); ok && (s.Kind == ir.ScalarSint || s.Kind == ir.ScalarUint) {
		return ir.ScalarType{Kind: s.Kind, Width: 4}
	}
	return ir.Int
}

// floatArray sizes a clip or cull distance array to the requested components.
func floatArray(requested ir.SymbolType) ir.SymbolType {
	n := ComponentCount(requested)
	if n == 0 {
		n = 1
	}
	return ir.ArrayType{Base: ir.Float, Size: n}
}

// builtinRequirement lists the capability and extension a built-in needs
// beyond Shader.
type builtinRequirement struct {
	capability Capability
	extension  string
}

var builtinRequirements = map[BuiltIn]builtinRequirement{
	BuiltInClipDistance:            {capability: CapabilityClipDistance},
	BuiltInCullDistance:            {capability: CapabilityCullDistance},
	BuiltInSampleID:                {capability: CapabilitySampleRate},
	BuiltInViewIndex:               {capability: CapabilityMultiView, extension: "SPV_KHR_multiview"},
	BuiltInFragStencilRefEXT:       {capability: 5013, extension: "SPV_EXT_shader_stencil_export"},
	BuiltInFullyCoveredEXT:         {capability: 5265, extension: "SPV_EXT_fragment_fully_covered"},
	BuiltInBaryCoordKHR:            {capability: 5284, extension: "SPV_KHR_fragment_shader_barycentric"},
	BuiltInPrimitiveShadingRateKHR: {capability: 4422, extension: "SPV_KHR_fragment_shading_rate"},
	BuiltInShadingRateKHR:          {capability: 4422, extension: "SPV_KHR_fragment_shading_rate"},
}

// DecorateBuiltin attaches the BuiltIn decoration to id and records the
// capability and extension the built-in requires.
func (c *Context) DecorateBuiltin(id uint32, b BuiltIn) {
	c.Decorate(id, DecorationBuiltIn, uint32(b))
	if req, ok := builtinRequirements[b]; ok {
		c.AddCapability(req.capability)
		if req.extension != "" {
			c.AddExtension(req.extension)
		}
	}
}
