// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package desc

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/gogpu/spvwrap/spirv"
)

// Description is the interface of one lowered shader as written in TOML.
type Description struct {
	Shader  *Shader   `toml:"shader"`
	Structs []*Struct `toml:"struct"`

	// Params are the entry function's parameters in order.
	Params []*Param `toml:"param"`
	// PatchParams are the patch-constant function's parameters.
	PatchParams []*Param `toml:"patch-param"`

	Streams []*Stream `toml:"stream"`
	Globals []*Global `toml:"global"`
}

// Shader names the entry point and its stage settings.
type Shader struct {
	Name  string `toml:"name"`
	Stage string `toml:"stage"`

	// PatchConstant names the hull shader's patch-constant function.
	PatchConstant       string `toml:"patch-constant,omitempty"`
	OutputControlPoints int    `toml:"output-control-points,omitempty"`
	// Domain is tri, quad or isoline for tessellation stages.
	Domain string `toml:"domain,omitempty"`

	// MaxVertexCount and OutputTopology configure a geometry shader.
	MaxVertexCount int    `toml:"max-vertex-count,omitempty"`
	OutputTopology string `toml:"output-topology,omitempty"`

	Workgroup []int `toml:"workgroup,omitempty"`
}

// Struct is a user struct type.
type Struct struct {
	Name   string   `toml:"name"`
	Fields []*Field `toml:"field"`
}

// Field is a member of a Struct.
type Field struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Param is a function parameter. Semantic is set for system values read
// directly by the function rather than through the streams struct.
type Param struct {
	Type     string `toml:"type"`
	Modifier string `toml:"modifier,omitempty"`
	Semantic string `toml:"semantic,omitempty"`
}

// Stream is a semantically tagged stage input or output.
type Stream struct {
	Name     string `toml:"name"`
	Semantic string `toml:"semantic"`
	Type     string `toml:"type"`
	Input    bool   `toml:"input"`
	Output   bool   `toml:"output"`
	Patch    bool   `toml:"patch"`
	// Used defaults to true; false marks a pass-through stream.
	Used *bool `toml:"used,omitempty"`

	InputLocation  *int `toml:"input-location,omitempty"`
	OutputLocation *int `toml:"output-location,omitempty"`
}

// Global kinds.
const (
	KindVariable = "variable"
	KindCBuffer  = "cbuffer"
	KindResource = "resource"
)

// Global is a module-scope variable, constant buffer or resource.
type Global struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	Kind    string `toml:"kind,omitempty"`
	Storage string `toml:"storage,omitempty"`
	Used    *bool  `toml:"used,omitempty"`
	// Initializer requests a zero-value initializer function.
	Initializer bool `toml:"initializer,omitempty"`

	Binding *int `toml:"binding,omitempty"`
	Set     *int `toml:"set,omitempty"`
}

// Load reads and validates a description file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates a description.
func Parse(data []byte) (*Description, error) {
	d := &Description{}
	if err := toml.Unmarshal(data, d); err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Description) validate() error {
	if d.Shader == nil {
		return fmt.Errorf("missing [shader] table")
	}
	if d.Shader.Name == "" {
		return fmt.Errorf("missing shader name")
	}
	model, err := ParseStage(d.Shader.Stage)
	if err != nil {
		return err
	}
	if d.Shader.PatchConstant != "" && model != spirv.ExecutionModelTessellationControl {
		return fmt.Errorf("patch-constant is only valid for hull shaders")
	}
	if len(d.PatchParams) > 0 && d.Shader.PatchConstant == "" {
		return fmt.Errorf("patch-param given without a patch-constant function")
	}
	if len(d.Shader.Workgroup) > 3 {
		return fmt.Errorf("workgroup has %d dimensions, want at most 3", len(d.Shader.Workgroup))
	}

	seen := make(map[string]bool)
	for _, s := range d.Streams {
		if s.Name == "" {
			return fmt.Errorf("stream without a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate stream %s", s.Name)
		}
		seen[s.Name] = true
	}
	for _, g := range d.Globals {
		switch g.Kind {
		case "", KindVariable, KindCBuffer, KindResource:
		default:
			return fmt.Errorf("global %s: unknown kind %q", g.Name, g.Kind)
		}
	}
	return nil
}

var stageNames = map[string]spirv.ExecutionModel{
	"vertex":   spirv.ExecutionModelVertex,
	"hull":     spirv.ExecutionModelTessellationControl,
	"domain":   spirv.ExecutionModelTessellationEvaluation,
	"geometry": spirv.ExecutionModelGeometry,
	"pixel":    spirv.ExecutionModelFragment,
	"fragment": spirv.ExecutionModelFragment,
	"compute":  spirv.ExecutionModelGLCompute,
}

// ParseStage accepts a stage name (vertex, hull, pixel, ...) or its short
// code (VS, HS, PS, ...).
func ParseStage(s string) (spirv.ExecutionModel, error) {
	if model, ok := stageNames[strings.ToLower(s)]; ok {
		return model, nil
	}
	for _, model := range stageNames {
		if strings.EqualFold(model.StageID(), s) {
			return model, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", s)
}
