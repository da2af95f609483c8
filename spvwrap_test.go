package spvwrap

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/spvwrap/adapter"
	"github.com/gogpu/spvwrap/desc"
	"github.com/gogpu/spvwrap/logging"
	"github.com/gogpu/spvwrap/spirv"
)

// TestCompilePixelShader compiles a minimal pixel shader description.
func TestCompilePixelShader(t *testing.T) {
	source := `
[shader]
name = "PSMain"
stage = "pixel"

[[stream]]
name = "Color"
semantic = "COLOR"
type = "float4"
input = true

[[stream]]
name = "Target"
semantic = "SV_Target0"
type = "float4"
output = true
`
	spirvBytes, err := Compile([]byte(source))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// Check SPIR-V magic number (little-endian: 0x07230203)
	if len(spirvBytes) < 20 {
		t.Fatal("SPIR-V output too short (should have at least 5-word header)")
	}
	magic := binary.LittleEndian.Uint32(spirvBytes[0:4])
	if magic != spirv.MagicNumber {
		t.Errorf("Invalid SPIR-V magic: got 0x%08x, want 0x%08x", magic, spirv.MagicNumber)
	}

	m, err := spirv.Decode(spirvBytes)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	eps := m.EntryPoints()
	if len(eps) != 1 || eps[0].Name != "PSMain_Wrapper" || eps[0].Model != spirv.ExecutionModelFragment {
		t.Fatalf("entry points = %+v", eps)
	}
	found := false
	for _, inst := range m.Filter(spirv.OpExecutionMode) {
		if inst.Words[0] == eps[0].Function && spirv.ExecutionMode(inst.Words[1]) == spirv.ExecutionModeOriginUpperLeft {
			found = true
		}
	}
	if !found {
		t.Error("pixel wrapper lacks OriginUpperLeft")
	}

	t.Logf("Generated %d bytes of SPIR-V", len(spirvBytes))
}

// TestCompileTestdata compiles every description shipped with desc.
func TestCompileTestdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("desc", "testdata", "*.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no testdata")
	}
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			source, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			spirvBytes, err := Compile(source)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			m, err := spirv.Decode(spirvBytes)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if n := m.Count(spirv.OpEntryPoint); n != 1 {
				t.Errorf("got %d entry points, want 1", n)
			}
		})
	}
}

func TestCompileWithVersion(t *testing.T) {
	source := []byte(`
[shader]
name = "CSMain"
stage = "compute"
`)
	opts := DefaultOptions()
	opts.SPIRVVersion = spirv.Version1_6
	spirvBytes, err := CompileWithOptions(source, opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	m, err := spirv.Decode(spirvBytes)
	if err != nil {
		t.Fatal(err)
	}
	if m.Header.Version != spirv.Version1_6 {
		t.Errorf("version = %d.%d, want 1.6", m.Header.Version.Major, m.Header.Version.Minor)
	}
}

// Before 1.4 OpEntryPoint may only list Input and Output variables.
func TestCompileBeforeSPIRV14(t *testing.T) {
	source, err := os.ReadFile(filepath.Join("desc", "testdata", "vertex.toml"))
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.SPIRVVersion = spirv.Version1_0
	spirvBytes, err := CompileWithOptions(source, opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	m, err := spirv.Decode(spirvBytes)
	if err != nil {
		t.Fatal(err)
	}
	if m.Header.Version != spirv.Version1_0 {
		t.Errorf("version = %d.%d, want 1.0", m.Header.Version.Major, m.Header.Version.Minor)
	}

	ep := m.EntryPoints()[0]
	if len(ep.Interfaces) == 0 {
		t.Fatal("no interface variables listed")
	}
	for _, id := range ep.Interfaces {
		class, ok := m.StorageClassOf(id)
		if !ok || (class != spirv.StorageClassInput && class != spirv.StorageClassOutput) {
			t.Errorf("SPIR-V 1.0 entry point lists %%%d with storage class %v", id, class)
		}
	}

	// The same description at 1.4 also lists its Private and Uniform globals.
	spirvBytes, err = Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	m14, err := spirv.Decode(spirvBytes)
	if err != nil {
		t.Fatal(err)
	}
	if n, n14 := len(ep.Interfaces), len(m14.EntryPoints()[0].Interfaces); n14 <= n {
		t.Errorf("1.4 lists %d interface ids, 1.0 lists %d; want more at 1.4", n14, n)
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile([]byte(`[shader]`)); err == nil {
		t.Error("expected parse error")
	}

	// A geometry shader without an input topology is an internal error.
	source := []byte(`
[shader]
name = "GSMain"
stage = "geometry"

[[param]]
type = "GS_INPUT[3]"
`)
	log := logging.Nop()
	_, err := CompileWithOptions(source, CompileOptions{Logger: log})
	if !adapter.IsInternal(err) {
		t.Fatalf("got %v, want internal error", err)
	}
	var e *adapter.Error
	if !errors.As(err, &e) || e.Entry != "GSMain" {
		t.Errorf("error entry = %v", err)
	}
	if log.ErrorCount == 0 {
		t.Error("error not reported to the logger")
	}
}

func TestAdapt(t *testing.T) {
	d, err := desc.Load(filepath.Join("desc", "testdata", "vertex.toml"))
	if err != nil {
		t.Fatal(err)
	}
	m, err := desc.Lower(d)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Adapt(m, nil)
	if err != nil {
		t.Fatalf("Adapt failed: %v", err)
	}
	if res.Types.Streams.Name != "VS_STREAMS" {
		t.Errorf("streams struct = %s", res.Types.Streams.Name)
	}
}
