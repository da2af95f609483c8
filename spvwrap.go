// Package spvwrap adapts lowered shader entry points to the SPIR-V
// entry-point interface.
//
// A front end lowers a shader's entry function so that it reads and writes
// its stage inputs and outputs through a per-stage streams struct and takes
// system values as ordinary parameters. spvwrap declares the Input and
// Output interface variables of the stage, generates a parameterless
// wrapper that moves values between those variables and the function, and
// registers the wrapper with OpEntryPoint.
//
// The simplest way in is a TOML interface description:
//
//	[shader]
//	name = "VSMain"
//	stage = "vertex"
//
//	[[stream]]
//	name = "Position"
//	semantic = "POSITION"
//	type = "float4"
//	input = true
//
//	spirvBytes, err := spvwrap.Compile(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Front ends that build modules themselves use the adapter package
// directly.
package spvwrap

import (
	"fmt"

	"github.com/gogpu/spvwrap/adapter"
	"github.com/gogpu/spvwrap/desc"
	"github.com/gogpu/spvwrap/logging"
	"github.com/gogpu/spvwrap/spirv"
)

// Version is the spvwrap release.
const Version = "0.1.0-dev"

// CompileOptions configures compilation.
type CompileOptions struct {
	// SPIRVVersion is the target SPIR-V version (default: 1.4). Versions
	// before 1.4 only allow Input and Output variables in OpEntryPoint, so
	// the wrapper lists nothing else when targeting them.
	SPIRVVersion spirv.Version

	// Logger receives progress and errors. Nil discards them.
	Logger *logging.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		SPIRVVersion: spirv.Version1_4,
	}
}

// Compile compiles a TOML interface description to a SPIR-V binary using
// default options.
func Compile(source []byte) ([]byte, error) {
	return CompileWithOptions(source, DefaultOptions())
}

// CompileWithOptions compiles a TOML interface description to a SPIR-V
// binary.
//
// The pipeline is:
//  1. Parse the description
//  2. Lower it to a module with empty entry functions
//  3. Adapt the entry point (Process)
//  4. Assemble the binary
func CompileWithOptions(source []byte, opts CompileOptions) ([]byte, error) {
	d, err := desc.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	m, err := desc.Lower(d)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}

	if opts.SPIRVVersion != (spirv.Version{}) {
		m.Context.Version = opts.SPIRVVersion
	}
	if _, err := Adapt(m, opts.Logger); err != nil {
		return nil, err
	}
	return m.Context.Assemble(m.Code), nil
}

// Adapt wraps the module's entry point.
func Adapt(m *desc.Module, log *logging.Logger) (*adapter.Result, error) {
	g := adapter.NewGenerator(m.Context, m.Code, log)
	res, err := g.Process(m.Entry)
	if err != nil {
		return nil, fmt.Errorf("adapter error: %w", err)
	}
	return res, nil
}
