package spirv

import (
	"testing"

	"github.com/gogpu/spvwrap/ir"
)

func TestNormalizeSemantic(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sv_position", "SV_POSITION"},
		{"SV_ClipDistance0", "SV_CLIPDISTANCE"},
		{"SV_Target3", "SV_TARGET"},
		{"TEXCOORD1", "TEXCOORD1"},
		{"SV_TessFactor", "SV_TESSFACTOR"},
	}
	for _, tt := range tests {
		if got := NormalizeSemantic(tt.in); got != tt.want {
			t.Errorf("NormalizeSemantic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if SemanticIndex("TEXCOORD12") != 12 || SemanticIndex("COLOR") != 0 {
		t.Error("SemanticIndex misparsed a suffix")
	}
}

func TestLookupBuiltin(t *testing.T) {
	uint3 := ir.VectorType{Scalar: ir.UInt, Size: 3}
	tests := []struct {
		name     string
		model    ExecutionModel
		class    StorageClass
		semantic string
		want     BuiltIn
		typ      ir.SymbolType
	}{
		{"vertex position out", ExecutionModelVertex, StorageClassOutput, "SV_Position", BuiltInPosition, ir.VectorType{Scalar: ir.Float, Size: 4}},
		{"fragment position in", ExecutionModelFragment, StorageClassInput, "SV_Position", BuiltInFragCoord, ir.VectorType{Scalar: ir.Float, Size: 4}},
		{"dispatch id", ExecutionModelGLCompute, StorageClassInput, "SV_DispatchThreadID", BuiltInGlobalInvocationID, uint3},
		{"control point", ExecutionModelTessellationControl, StorageClassInput, "SV_OutputControlPointID", BuiltInInvocationID, ir.UInt},
		{"tess factor", ExecutionModelTessellationControl, StorageClassOutput, "SV_TessFactor", BuiltInTessLevelOuter, ir.ArrayType{Base: ir.Float, Size: 4}},
		{"domain location", ExecutionModelTessellationEvaluation, StorageClassInput, "SV_DomainLocation", BuiltInTessCoord, ir.VectorType{Scalar: ir.Float, Size: 3}},
		{"depth", ExecutionModelFragment, StorageClassOutput, "SV_Depth", BuiltInFragDepth, ir.Float},
		{"clip distance", ExecutionModelVertex, StorageClassOutput, "SV_ClipDistance0", BuiltInClipDistance, ir.ArrayType{Base: ir.Float, Size: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requested := tt.typ
			if tt.want == BuiltInClipDistance {
				requested = ir.VectorType{Scalar: ir.Float, Size: 2}
			}
			b, ok, err := LookupBuiltin(tt.model, tt.class, tt.semantic, requested)
			if err != nil || !ok {
				t.Fatalf("LookupBuiltin = %v, %v", ok, err)
			}
			if b.BuiltIn != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, b.BuiltIn)
			}
			if !ir.Equal(b.Type, tt.typ) {
				t.Errorf("Expected type %s, got %s", tt.typ, b.Type)
			}
		})
	}
}

func TestLookupBuiltin_UserSemantic(t *testing.T) {
	_, ok, err := LookupBuiltin(ExecutionModelVertex, StorageClassInput, "TEXCOORD0", ir.Float)
	if ok || err != nil {
		t.Errorf("Expected a user varying, got ok=%v err=%v", ok, err)
	}
}

func TestLookupBuiltin_WrongStage(t *testing.T) {
	if _, _, err := LookupBuiltin(ExecutionModelVertex, StorageClassInput, "SV_IsFrontFace", ir.Bool); err == nil {
		t.Error("Expected error for SV_IsFrontFace in a vertex shader")
	}
	if _, _, err := LookupBuiltin(ExecutionModelFragment, StorageClassInput, "SV_Depth", ir.Float); err == nil {
		t.Error("Expected error for SV_Depth as an input")
	}
}

func TestDecorateBuiltin_Requirements(t *testing.T) {
	ctx := NewContext()
	ctx.DecorateBuiltin(ctx.AllocID(), BuiltInViewIndex)
	ctx.DecorateBuiltin(ctx.AllocID(), BuiltInPosition)

	found := false
	for _, c := range ctx.Capabilities() {
		if c == CapabilityMultiView {
			found = true
		}
	}
	if !found {
		t.Error("Expected MultiView capability")
	}
	if n := len(ctx.Capabilities()); n != 2 {
		t.Errorf("Expected Shader and MultiView, got %d capabilities", n)
	}

	m, err := Decode(ctx.Assemble(NewBuffer()))
	if err != nil {
		t.Fatal(err)
	}
	if n := m.Count(OpExtension); n != 1 {
		t.Errorf("Expected 1 extension, got %d", n)
	}
}
