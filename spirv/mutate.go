package spirv

import (
	"fmt"

	"github.com/gogpu/spvwrap/ir"
)

// FunctionDecl locates a function's own declaration inside a code buffer.
type FunctionDecl struct {
	Function   Ref
	Parameters []Ref
}

// FindFunction returns the OpFunction and OpFunctionParameter instructions
// of the function with the given result id.
func FindFunction(code *Buffer, id uint32) (FunctionDecl, error) {
	var decl FunctionDecl
	found := false
	code.Each(func(ref Ref, inst Instruction) bool {
		switch {
		case !found:
			if inst.Opcode == OpFunction && inst.Words[1] == id {
				decl.Function = ref
				found = true
			}
			return true
		case inst.Opcode == OpFunctionParameter:
			decl.Parameters = append(decl.Parameters, ref)
			return true
		default:
			return false
		}
	})
	if !found {
		return FunctionDecl{}, fmt.Errorf("function %%%d not found", id)
	}
	return decl, nil
}

func functionType(fn *ir.Symbol) (*ir.FunctionType, error) {
	fnType, ok := fn.Type.(*ir.FunctionType)
	if !ok {
		return nil, fmt.Errorf("symbol %s is not a function", fn.Name)
	}
	return fnType, nil
}

// setWord rewrites one operand word of the instruction at ref. The word
// slice is copied so instructions sharing storage stay untouched.
func setWord(code *Buffer, ref Ref, index int, value uint32) {
	inst := code.Get(ref)
	words := make([]uint32, len(inst.Words))
	copy(words, inst.Words)
	words[index] = value
	code.Set(ref, Instruction{Opcode: inst.Opcode, Words: words})
}

// ReplaceArgument changes the type of parameter index of fn to newType.
//
// The new function type is interned and written into the function's own
// OpFunction, and the matching OpFunctionParameter gets the new parameter
// type. No other instruction of the module changes.
func ReplaceArgument(ctx *Context, code *Buffer, fn *ir.Symbol, index int, newType ir.SymbolType) error {
	fnType, err := functionType(fn)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(fnType.Parameters) {
		return fmt.Errorf("%s: parameter %d out of range", fn.Name, index)
	}
	decl, err := FindFunction(code, fn.ID)
	if err != nil {
		return err
	}
	if len(decl.Parameters) != len(fnType.Parameters) {
		return fmt.Errorf("%s: declares %d parameters, type has %d", fn.Name, len(decl.Parameters), len(fnType.Parameters))
	}

	updated := fnType.Clone()
	updated.Parameters[index].Type = newType

	setWord(code, decl.Function, 3, ctx.GetOrRegister(updated))
	setWord(code, decl.Parameters[index], 0, ctx.GetOrRegister(newType))
	fn.Type = updated
	return nil
}

// RemoveArgument drops parameter index from fn. Its OpFunctionParameter is
// patched to a no-op in place.
func RemoveArgument(ctx *Context, code *Buffer, fn *ir.Symbol, index int) error {
	fnType, err := functionType(fn)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(fnType.Parameters) {
		return fmt.Errorf("%s: parameter %d out of range", fn.Name, index)
	}
	decl, err := FindFunction(code, fn.ID)
	if err != nil {
		return err
	}
	if len(decl.Parameters) != len(fnType.Parameters) {
		return fmt.Errorf("%s: declares %d parameters, type has %d", fn.Name, len(decl.Parameters), len(fnType.Parameters))
	}

	updated := fnType.Clone()
	updated.Parameters = append(updated.Parameters[:index], updated.Parameters[index+1:]...)

	setWord(code, decl.Function, 3, ctx.GetOrRegister(updated))
	code.Nop(decl.Parameters[index])
	fn.Type = updated
	return nil
}

// SetParameterModifier records a modifier change on fn's type. Modifiers
// have no SPIR-V encoding, so the module itself does not change.
func SetParameterModifier(fn *ir.Symbol, index int, modifier ir.ParameterModifier) error {
	fnType, err := functionType(fn)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(fnType.Parameters) {
		return fmt.Errorf("%s: parameter %d out of range", fn.Name, index)
	}
	updated := fnType.Clone()
	updated.Parameters[index].Modifiers = modifier
	fn.Type = updated
	return nil
}
