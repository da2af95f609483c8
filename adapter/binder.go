// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/spirv"
)

// binding is one resolved system value.
type binding struct {
	requested ir.SymbolType
	variable  uint32
	value     uint32
}

// Binder resolves system-value semantics read by a wrapper to loaded,
// converted values. Each semantic is declared and loaded once per stage.
type Binder struct {
	builder *spirv.CodeBuilder
	model   spirv.ExecutionModel

	cache     map[string]binding
	variables []uint32
}

// NewBinder creates a binder emitting into b for the given stage.
func NewBinder(b *spirv.CodeBuilder, model spirv.ExecutionModel) *Binder {
	return &Binder{
		builder: b,
		model:   model,
		cache:   make(map[string]binding),
	}
}

// Resolve returns a value of type t holding the system value semantic.
//
// The first request declares an Input variable decorated with the matching
// built-in, loads it at the current position and converts the native value
// to t. Later requests for the same semantic return the same value and
// must ask for the same type.
func (bd *Binder) Resolve(t ir.SymbolType, semantic string) (uint32, error) {
	sem := strings.ToUpper(semantic)
	if cached, ok := bd.cache[sem]; ok {
		if !ir.Equal(cached.requested, t) {
			return 0, NewError(ErrInternal, "semantic %s requested as %s, already bound as %s", sem, t, cached.requested)
		}
		return cached.value, nil
	}

	native, ok, err := spirv.LookupBuiltin(bd.model, spirv.StorageClassInput, sem, t)
	if err != nil {
		return 0, wrapError(ErrUnknownSemantic, err, "cannot bind %s", sem)
	}
	if !ok {
		return 0, NewError(ErrUnknownSemantic, "%s is not a system value", sem)
	}

	ctx := bd.builder.Context
	variable := ctx.DeclareVariable(native.Type, ir.SpaceInput, fmt.Sprintf("in_%s_%s", bd.model.StageID(), sem))
	ctx.DecorateBuiltin(variable, native.BuiltIn)

	loaded := bd.builder.AddLoad(native.Type, variable)
	value, err := bd.builder.Convert(native.Type, t, loaded)
	if err != nil {
		return 0, wrapError(ErrInternal, err, "semantic %s", sem)
	}

	bd.cache[sem] = binding{requested: t, variable: variable, value: value}
	bd.variables = append(bd.variables, variable)
	return value, nil
}

// Variable returns the interface variable declared for semantic, or 0.
func (bd *Binder) Variable(semantic string) uint32 {
	return bd.cache[strings.ToUpper(semantic)].variable
}

// Variables returns every variable the binder declared, in declaration order.
func (bd *Binder) Variables() []uint32 {
	return bd.variables
}

// isIntegral reports whether t is a scalar, vector or matrix of a
// non-float kind. Such varyings are never interpolated.
func isIntegral(t ir.SymbolType) bool {
	switch t.(type) {
	case ir.ScalarType, ir.VectorType, ir.MatrixType:
	default:
		return false
	}
	s, ok := ir.ElementScalar(t)
	return ok && s.Kind != ir.ScalarFloat
}
