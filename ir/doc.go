// Package ir defines the typed symbol model shared by the SPIR-V context
// and the entry-point adapter.
//
// The model is deliberately small:
//   - SymbolType: a closed set of shader types (scalar, vector, matrix,
//     struct, array, pointer, function and tessellation patch)
//   - Symbol: a name bound to a type and a SPIR-V result id
//   - StreamVariableInfo: one stage input or output value
//   - AnalysisResult and LiveAnalysis: what the analysis pass reports
//     about globals and reachable functions
//
// Types are compared structurally through TypeKey, which is also the key
// the SPIR-V context interns them under.
package ir
