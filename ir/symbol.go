package ir

// Symbol is an identifier bound to a type and a SPIR-V result id.
//
// Symbols of globals and functions live for the whole compilation. The Type
// of a function symbol is replaced when its signature is rewritten.
type Symbol struct {
	Name string
	ID   uint32
	Type SymbolType
}

// FunctionType returns the symbol's type as a function type, or nil.
func (s *Symbol) FunctionType() *FunctionType {
	if fn, ok := s.Type.(*FunctionType); ok {
		return fn
	}
	return nil
}
